package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/config"
	"github.com/teleperson/demo-generator/internal/errs"
)

const completionBody = `{
  "id": "cmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "sonar",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Hello there"}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
}`

type capturedRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
}

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *PerplexityClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Perplexity.APIKey = apiKey
	cfg.Perplexity.BaseURL = srv.URL + "/"
	cfg.HTTP.ClientTimeout = 5 * time.Second
	return NewPerplexityClient(cfg, zap.NewNop())
}

func TestComplete_OK(t *testing.T) {
	var got capturedRequest
	var auth string
	c := newTestClient(t, "pplx-test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	})

	msgs := []Message{
		{Role: RoleSystem, Content: "be nice"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "prices?"},
	}
	text, err := c.Complete(context.Background(), msgs, Params{Model: "sonar", Temperature: Float(0.7), MaxTokens: 500})
	require.NoError(t, err)

	assert.Equal(t, "Hello there", text)
	assert.Equal(t, "Bearer pplx-test", auth)
	assert.Equal(t, "sonar", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, 500, got.MaxTokens)
	if diff := cmp.Diff(msgs, got.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_PlaceholderKeySkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	for _, key := range []string{"", "your_perplexity_api_key_here"} {
		c := newTestClient(t, key, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})
		_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{Model: "sonar"})
		assert.ErrorIs(t, err, errs.CredentialsNotConfigured)
	}
	assert.Zero(t, calls.Load())
}

func TestComplete_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind errs.Kind
		wantMsg  string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: errs.AuthFailure, wantMsg: "Invalid Perplexity API key"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantKind: errs.UpstreamFailure, wantMsg: "rate limit"},
		{name: "server error", status: http.StatusBadGateway, wantKind: errs.UpstreamFailure, wantMsg: "Perplexity API error (502)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, "pplx-test", func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			})
			_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{Model: "sonar"})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errs.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, int32(1), calls.Load(), "no retries")
		})
	}
}

func TestComplete_NoChoices(t *testing.T) {
	c := newTestClient(t, "pplx-test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","model":"sonar","choices":[]}`))
	})
	_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{Model: "sonar"})
	assert.ErrorIs(t, err, errs.UpstreamFailure)
}

func TestComplete_TemperatureOnlyWhenSet(t *testing.T) {
	tests := []struct {
		name string
		temp *float64
		want *float64
	}{
		{name: "unset", temp: nil, want: nil},
		{name: "explicit zero", temp: Float(0), want: Float(0)},
		{name: "explicit value", temp: Float(0.3), want: Float(0.3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				Temperature *float64 `json:"temperature"`
			}
			c := newTestClient(t, "pplx-test", func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(completionBody))
			})
			_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, Params{Model: "sonar", Temperature: tt.temp})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Temperature)
		})
	}
}

func TestComplete_UnknownRoleSentAsUser(t *testing.T) {
	var got capturedRequest
	c := newTestClient(t, "pplx-test", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	})
	msgs := []Message{{Role: RoleSystem, Content: "sys"}, {Role: "bot", Content: "hello"}}
	_, err := c.Complete(context.Background(), msgs, Params{Model: "sonar"})
	require.NoError(t, err)

	want := []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hello"}}
	if diff := cmp.Diff(want, got.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}
