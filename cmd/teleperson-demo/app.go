package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/config"
	"github.com/teleperson/demo-generator/internal/generate"
	"github.com/teleperson/demo-generator/internal/llm"
	"github.com/teleperson/demo-generator/internal/logging"
	"github.com/teleperson/demo-generator/internal/pagestore"
	"github.com/teleperson/demo-generator/internal/promptstore"
	"github.com/teleperson/demo-generator/internal/relay"
	"github.com/teleperson/demo-generator/internal/research"
	"github.com/teleperson/demo-generator/internal/sitemeta"
)

// app is the assembled service graph shared by serve and generate.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	generator *generate.Service
	relay     *relay.Relay
	pages     pagestore.Store
}

// buildApp loads configuration and wires every component. promptFile, when
// set, replaces the embedded research prompt.
func buildApp(promptFile string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	if config.IsPlaceholder(cfg.Perplexity.APIKey) {
		logger.Warn("PERPLEXITY_API_KEY is not configured; research and chat requests will fail")
	}
	if config.IsPlaceholder(cfg.Langfuse.PublicKey) || config.IsPlaceholder(cfg.Langfuse.SecretKey) {
		logger.Warn("Langfuse keys are not configured; publishing and chat requests will fail")
	}

	completer := llm.NewPerplexityClient(cfg, logger.Named("perplexity"))

	var opts []research.Option
	if cfg.Research.FetchSiteHints {
		opts = append(opts, research.WithHints(sitemeta.NewFetcher(cfg.HTTP.ClientTimeout, logger.Named("sitemeta"))))
	}
	if promptFile != "" {
		src, err := os.ReadFile(promptFile)
		if err != nil {
			return nil, fmt.Errorf("read research prompt: %w", err)
		}
		opts = append(opts, research.WithPrompt(src))
	}

	researcher, err := research.NewLLMResearcher(
		completer,
		cfg.Perplexity.ResearchModel,
		research.NewExtractor(cfg.Research.RepairJSON, logger.Named("extract")),
		logger.Named("research"),
		opts...,
	)
	if err != nil {
		return nil, err
	}

	prompts := promptstore.NewClient(cfg, logger.Named("langfuse"))
	pages, err := pagestore.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		generator: generate.NewService(researcher, prompts, pages, logger.Named("generate")),
		relay:     relay.New(prompts, completer, cfg.Perplexity.ChatModel, logger.Named("relay")),
		pages:     pages,
	}, nil
}

func (a *app) close() {
	if c, ok := a.pages.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	_ = a.logger.Sync()
}
