// Package promptstore publishes and fetches chat prompts in Langfuse's prompt
// management API.
package promptstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/config"
	"github.com/teleperson/demo-generator/internal/errs"
	"github.com/teleperson/demo-generator/internal/metrics"
	"github.com/teleperson/demo-generator/internal/slug"
)

const (
	promptsPath  = "/api/public/v2/prompts"
	demoLabel    = "demo"
	maxErrorBody = 500
)

// ChatMessage is one message of a chat prompt.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is a stored chat prompt.
type Prompt struct {
	Name    string        `json:"name"`
	Version int           `json:"version"`
	Type    string        `json:"type"`
	Prompt  []ChatMessage `json:"prompt"`
	Labels  []string      `json:"labels"`
	Tags    []string      `json:"tags"`
}

// SystemContent returns the content of the first system message, or "".
func (p *Prompt) SystemContent() string {
	for _, m := range p.Prompt {
		if m.Role == "system" {
			return m.Content
		}
	}
	return ""
}

// PublishResult describes a publish call. AlreadyExists is set when the
// store answered 409; the existing prompt is then left untouched.
type PublishResult struct {
	Name          string
	Version       int
	AlreadyExists bool
}

// PublishRequest carries what is published for one demo.
type PublishRequest struct {
	Slug          string
	Industry      string
	Body          string
	CommitMessage string
}

// Publisher creates demo prompts.
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
}

// Fetcher reads prompts by name.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (*Prompt, error)
}

// Client is a Langfuse prompt API client authenticating with HTTP Basic
// auth (public key : secret key).
type Client struct {
	host      string
	publicKey string
	secretKey string
	http      *http.Client
	logger    *zap.Logger
}

var (
	_ Publisher = (*Client)(nil)
	_ Fetcher   = (*Client)(nil)
)

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	host := cfg.Langfuse.Host
	if host == "" {
		host = config.DefaultLangfuseHost
	}
	return &Client{
		host:      strings.TrimRight(host, "/"),
		publicKey: cfg.Langfuse.PublicKey,
		secretKey: cfg.Langfuse.SecretKey,
		http:      &http.Client{Timeout: cfg.HTTP.ClientTimeout},
		logger:    logger,
	}
}

type createPromptBody struct {
	Type          string        `json:"type"`
	Name          string        `json:"name"`
	Prompt        []ChatMessage `json:"prompt"`
	Labels        []string      `json:"labels"`
	Tags          []string      `json:"tags"`
	CommitMessage string        `json:"commitMessage,omitempty"`
}

// Publish creates the chat prompt teleperson-demo-<slug> holding a single
// system message, labelled "demo" and tagged with the industry.
func (c *Client) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}

	name := slug.PromptName(req.Slug)
	payload, err := json.Marshal(createPromptBody{
		Type:          "chat",
		Name:          name,
		Prompt:        []ChatMessage{{Role: "system", Content: req.Body}},
		Labels:        []string{demoLabel},
		Tags:          []string{req.Industry},
		CommitMessage: req.CommitMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}

	resp, body, err := c.do(ctx, http.MethodPost, c.host+promptsPath, payload, "publish")
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		metrics.PromptsPublishedTotal.WithLabelValues("exists").Inc()
		c.logger.Info("prompt already exists", zap.String("prompt", name))
		return &PublishResult{Name: name, AlreadyExists: true}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, statusError(resp.StatusCode, body)
	}

	var created Prompt
	if err := json.Unmarshal(body, &created); err != nil {
		c.logger.Warn("unreadable publish response", zap.String("prompt", name), zap.Error(err))
	}
	if created.Name == "" {
		created.Name = name
	}
	metrics.PromptsPublishedTotal.WithLabelValues("created").Inc()
	c.logger.Info("prompt published", zap.String("prompt", created.Name), zap.Int("version", created.Version))
	return &PublishResult{Name: created.Name, Version: created.Version}, nil
}

// Fetch returns the production version of the named prompt.
func (c *Client) Fetch(ctx context.Context, name string) (*Prompt, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}

	resp, body, err := c.do(ctx, http.MethodGet, c.host+promptsPath+"/"+url.PathEscape(name), nil, "fetch")
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errs.New(errs.NotFound, "Prompt not found: %s. Generate the demo first.", name)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, statusError(resp.StatusCode, body)
	}

	var p Prompt
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errs.Wrap(errs.UpstreamFailure, err, "Langfuse API returned an unreadable prompt")
	}
	return &p, nil
}

func (c *Client) checkCredentials() error {
	if config.IsPlaceholder(c.publicKey) || config.IsPlaceholder(c.secretKey) {
		return errs.New(errs.CredentialsNotConfigured, "LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY must be configured. Please add them to your .env file.")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, op string) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.UpstreamDuration.WithLabelValues("langfuse", op).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, errs.Wrap(errs.UpstreamFailure, err, "Langfuse API request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errs.Wrap(errs.UpstreamFailure, err, "read Langfuse response")
	}
	return resp, body, nil
}

func statusError(status int, body []byte) error {
	detail := strings.TrimSpace(errs.Preview(string(body), maxErrorBody))
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return errs.New(errs.AuthFailure, "Langfuse API rejected the credentials (%d). Please check LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY.", status)
	}
	return errs.New(errs.UpstreamFailure, "Langfuse API error (%d): %s", status, detail)
}
