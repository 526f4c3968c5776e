// Package sitemeta reads the title and description a company's homepage
// advertises, used as hints for the research prompt.
package sitemeta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	maxBodyBytes = 2 << 20
	maxFieldLen  = 300
	userAgent    = "Mozilla/5.0 (compatible; TelepersonDemoBot/1.0)"
)

// Meta is what a page says about itself.
type Meta struct {
	Title       string
	Description string
}

// Fetcher downloads a page and extracts its Meta.
type Fetcher struct {
	client *http.Client
	logger *zap.Logger
}

func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the page's <title> and its meta or Open Graph description.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (Meta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Meta{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Meta{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Meta{}, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Meta{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	meta := Meta{Title: clean(doc.Find("head title").First().Text())}
	if meta.Title == "" {
		meta.Title = clean(doc.Find("title").First().Text())
	}
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`, `meta[name="twitter:description"]`} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
			meta.Description = clean(content)
			break
		}
	}

	f.logger.Debug("site meta fetched",
		zap.String("url", pageURL),
		zap.String("title", meta.Title),
		zap.Int("description_length", len(meta.Description)),
	)
	return meta, nil
}

func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxFieldLen {
		s = string(r[:maxFieldLen])
	}
	return s
}
