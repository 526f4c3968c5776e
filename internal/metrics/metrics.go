package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teleperson_generations_total",
		Help: "Demo generation attempts by outcome (ok or error kind).",
	}, []string{"outcome"})

	ChatRepliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teleperson_chat_replies_total",
		Help: "Chat relay attempts by outcome (ok or error kind).",
	}, []string{"outcome"})

	PrototypeServesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teleperson_prototype_serves_total",
		Help: "Prototype page requests by HTTP status.",
	}, []string{"status"})

	PromptsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teleperson_prompts_published_total",
		Help: "Prompt-store publish results (created or exists).",
	}, []string{"result"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teleperson_upstream_duration_seconds",
		Help:    "Latency of outbound calls to the generative API and prompt store.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"upstream", "operation"})
)

// Outcome returns the label used for an operation result: "ok" for a nil
// error, otherwise the error kind (or "error" when unclassified).
func Outcome(kind string, err error) string {
	if err == nil {
		return "ok"
	}
	if kind == "" {
		return "error"
	}
	return kind
}
