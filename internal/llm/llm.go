// Package llm is the generative text API boundary: an ordered list of
// role-tagged messages goes in, the first completion's text comes out.
package llm

import "context"

// Message roles understood by the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Params are the sampling parameters of a single completion. A nil
// Temperature or a zero MaxTokens leaves the provider default in place.
type Params struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Float returns a pointer to v, for Params.Temperature.
func Float(v float64) *float64 { return &v }

// Completer returns the text of the first choice of a chat completion.
type Completer interface {
	Complete(ctx context.Context, messages []Message, params Params) (string, error)
}
