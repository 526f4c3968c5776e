// Package generate runs the demo pipeline: research a company, publish its
// chat prompt, render its demo page and store the page under its slug.
package generate

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/errs"
	"github.com/teleperson/demo-generator/internal/metrics"
	"github.com/teleperson/demo-generator/internal/pagestore"
	"github.com/teleperson/demo-generator/internal/promptstore"
	"github.com/teleperson/demo-generator/internal/prototype"
	"github.com/teleperson/demo-generator/internal/research"
	"github.com/teleperson/demo-generator/internal/slug"
)

// PreviewPath is the route prefix under which stored pages are served.
const PreviewPath = "/prototype/"

// Result describes a generated demo.
type Result struct {
	PrototypeID string `json:"prototypeId"`
	PreviewURL  string `json:"previewUrl"`
	CompanyName string `json:"companyName"`
	Industry    string `json:"industry"`
	PromptName  string `json:"promptName"`
}

type Service struct {
	researcher research.Researcher
	publisher  promptstore.Publisher
	pages      pagestore.Store
	logger     *zap.Logger
}

func NewService(researcher research.Researcher, publisher promptstore.Publisher, pages pagestore.Store, logger *zap.Logger) *Service {
	return &Service{researcher: researcher, publisher: publisher, pages: pages, logger: logger}
}

// Generate builds the demo for the company at rawURL. Steps run in order and
// the first failure aborts the rest; a page is only stored once its prompt
// has been published.
func (s *Service) Generate(ctx context.Context, rawURL string) (res *Result, err error) {
	genID := uuid.NewString()
	log := s.logger.With(zap.String("generation_id", genID))
	defer func() {
		metrics.GenerationsTotal.WithLabelValues(metrics.Outcome(string(errs.KindOf(err)), err)).Inc()
		if err != nil {
			log.Warn("generation failed", zap.String("kind", string(errs.KindOf(err))), zap.Error(err))
		}
	}()

	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("url", target.String()))

	log.Info("researching company")
	record, err := s.researcher.Research(ctx, target.String())
	if err != nil {
		return nil, err
	}

	key := slug.Slugify(record.CompanyName)
	if key == "" {
		key = hostSlug(target)
	}
	promptName := slug.PromptName(key)
	log = log.With(zap.String("slug", key))

	published, err := s.publisher.Publish(ctx, promptstore.PublishRequest{
		Slug:          key,
		Industry:      record.Industry,
		Body:          record.LangfusePrompt,
		CommitMessage: "teleperson demo generation " + genID,
	})
	if err != nil {
		return nil, err
	}
	if published.AlreadyExists {
		log.Info("reusing existing prompt", zap.String("prompt", promptName))
	}

	html, err := prototype.Render(prototype.Page{
		CompanyName:  record.CompanyName,
		Slug:         key,
		PrimaryColor: record.PrimaryColor,
		Services:     record.Services,
		PromptName:   promptName,
	})
	if err != nil {
		return nil, err
	}
	if err := s.pages.Save(ctx, key, html); err != nil {
		return nil, err
	}

	log.Info("demo generated", zap.String("company", record.CompanyName), zap.String("industry", record.Industry))
	return &Result{
		PrototypeID: key,
		PreviewURL:  PreviewPath + key,
		CompanyName: record.CompanyName,
		Industry:    record.Industry,
		PromptName:  promptName,
	}, nil
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errs.New(errs.BadRequest, "URL is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errs.New(errs.BadRequest, "Invalid URL format")
	}
	return u, nil
}

func hostSlug(u *url.URL) string {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if s := slug.Slugify(strings.ReplaceAll(host, ".", " ")); s != "" {
		return s
	}
	return "demo"
}
