// Package relay answers demo-page chat turns: it looks up the company's
// published prompt and forwards the conversation to the completion API.
package relay

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/errs"
	"github.com/teleperson/demo-generator/internal/llm"
	"github.com/teleperson/demo-generator/internal/metrics"
	"github.com/teleperson/demo-generator/internal/promptstore"
)

// Sampling parameters for chat replies.
const (
	Temperature = 0.7
	MaxTokens   = 500
)

// ChatRequest is one turn sent by the demo page widget. History is the
// client-held conversation so far.
type ChatRequest struct {
	PrototypeID string        `json:"prototypeId"`
	PromptName  string        `json:"promptName"`
	Message     string        `json:"message"`
	History     []llm.Message `json:"history"`
}

// Relay is stateless; every call fetches the prompt afresh.
type Relay struct {
	prompts   promptstore.Fetcher
	completer llm.Completer
	model     string
	logger    *zap.Logger
}

func New(prompts promptstore.Fetcher, completer llm.Completer, model string, logger *zap.Logger) *Relay {
	return &Relay{prompts: prompts, completer: completer, model: model, logger: logger}
}

// Reply returns the assistant's answer to req.
func (r *Relay) Reply(ctx context.Context, req ChatRequest) (reply string, err error) {
	defer func() {
		metrics.ChatRepliesTotal.WithLabelValues(metrics.Outcome(string(errs.KindOf(err)), err)).Inc()
	}()

	if strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.PromptName) == "" {
		return "", errs.New(errs.BadRequest, "Message and promptName are required")
	}

	prompt, err := r.prompts.Fetch(ctx, req.PromptName)
	if err != nil {
		return "", err
	}

	messages := BuildMessages(prompt.SystemContent(), req.History, req.Message)
	r.logger.Debug("relaying chat turn",
		zap.String("prototype_id", req.PrototypeID),
		zap.String("prompt", req.PromptName),
		zap.Int("turns", len(messages)),
	)

	reply, err = r.completer.Complete(ctx, messages, llm.Params{
		Model:       r.model,
		Temperature: llm.Float(Temperature),
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// BuildMessages returns the system turn followed by history exactly as the
// client supplied it. Only when history is empty is the visitor's message
// sent as the single user turn.
func BuildMessages(system string, history []llm.Message, message string) []llm.Message {
	out := make([]llm.Message, 0, len(history)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: system})
	if len(history) == 0 {
		return append(out, llm.Message{Role: llm.RoleUser, Content: message})
	}
	return append(out, history...)
}
