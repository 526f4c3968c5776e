package research

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/errs"
	"github.com/teleperson/demo-generator/internal/llm"
	"github.com/teleperson/demo-generator/internal/sitemeta"
)

// Researcher turns a company URL into a validated CompanyResearch record.
type Researcher interface {
	Research(ctx context.Context, companyURL string) (*CompanyResearch, error)
}

// HintSource supplies what a company's own homepage says about it. Hints
// only enrich the prompt; a failed lookup never fails the research.
type HintSource interface {
	Fetch(ctx context.Context, pageURL string) (sitemeta.Meta, error)
}

// LLMResearcher asks a web-grounded completion model for the record and
// runs the reply through an Extractor.
type LLMResearcher struct {
	completer llm.Completer
	model     string
	prompt    *researchPrompt
	extractor *Extractor
	hints     HintSource
	logger    *zap.Logger
}

// Option configures an LLMResearcher.
type Option func(*LLMResearcher)

// WithHints enables homepage hints. A nil source is ignored.
func WithHints(h HintSource) Option {
	return func(r *LLMResearcher) {
		if h != nil {
			r.hints = h
		}
	}
}

// WithPrompt replaces the embedded research prompt with a YAML document of
// the same shape.
func WithPrompt(src []byte) Option {
	return func(r *LLMResearcher) {
		if p, err := loadPrompt(src); err == nil {
			r.prompt = p
		} else {
			r.logger.Warn("ignoring research prompt override", zap.Error(err))
		}
	}
}

// NewLLMResearcher returns a researcher that uses model through completer.
func NewLLMResearcher(completer llm.Completer, model string, extractor *Extractor, logger *zap.Logger, opts ...Option) (*LLMResearcher, error) {
	p, err := loadPrompt(nil)
	if err != nil {
		return nil, err
	}
	r := &LLMResearcher{
		completer: completer,
		model:     model,
		prompt:    p,
		extractor: extractor,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Research implements Researcher.
func (r *LLMResearcher) Research(ctx context.Context, companyURL string) (*CompanyResearch, error) {
	data := PromptData{URL: companyURL}
	if r.hints != nil {
		meta, err := r.hints.Fetch(ctx, companyURL)
		if err != nil {
			r.logger.Info("site hints unavailable", zap.String("url", companyURL), zap.Error(err))
		} else {
			data.Title, data.Description = meta.Title, meta.Description
		}
	}

	userPrompt, err := r.prompt.render(data)
	if err != nil {
		return nil, fmt.Errorf("render research prompt: %w", err)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: r.prompt.system},
		{Role: llm.RoleUser, Content: userPrompt},
	}
	raw, err := r.completer.Complete(ctx, messages, llm.Params{
		Model:       r.model,
		Temperature: r.prompt.temperature,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("research reply received",
		zap.String("url", companyURL),
		zap.Int("length", len(raw)),
		zap.String("preview", errs.Preview(raw, previewLen)),
	)

	return r.extractor.Extract(raw)
}
