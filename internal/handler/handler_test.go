package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/errs"
	"github.com/teleperson/demo-generator/internal/generate"
	"github.com/teleperson/demo-generator/internal/pagestore"
	"github.com/teleperson/demo-generator/internal/relay"
)

type fakeGenerator struct {
	res *generate.Result
	err error
	got string
}

func (f *fakeGenerator) Generate(_ context.Context, rawURL string) (*generate.Result, error) {
	f.got = rawURL
	return f.res, f.err
}

type fakeReplier struct {
	reply string
	err   error
	got   relay.ChatRequest
}

func (f *fakeReplier) Reply(_ context.Context, req relay.ChatRequest) (string, error) {
	f.got = req
	return f.reply, f.err
}

type testEnv struct {
	gen    *fakeGenerator
	relay  *fakeReplier
	pages  *pagestore.FS
	router http.Handler
}

// newTestEnv builds a router backed by fakes and a filesystem page store in
// a per-test directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		gen:   &fakeGenerator{},
		relay: &fakeReplier{},
		pages: pagestore.NewFS(filepath.Join(t.TempDir(), "prototypes")),
	}
	e.router = NewRouter(Deps{Generator: e.gen, Relay: e.relay, Pages: e.pages, Logger: zap.NewNop()})
	return e
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v (raw %q)", err, rec.Body.String())
	}
	return body
}

func TestGenerate_OK(t *testing.T) {
	e := newTestEnv(t)
	e.gen.res = &generate.Result{
		PrototypeID: "acme",
		PreviewURL:  "/prototype/acme",
		CompanyName: "Acme",
		Industry:    "Retail",
		PromptName:  "teleperson-demo-acme",
	}

	rec := e.do(t, http.MethodPost, "/generate", `{"url":"https://acme.example"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	if e.gen.got != "https://acme.example" {
		t.Errorf("generator got url %q", e.gen.got)
	}

	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		"prototypeId": "acme",
		"previewUrl":  "/prototype/acme",
		"companyName": "Acme",
		"industry":    "Retail",
		"promptName":  "teleperson-demo-acme",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid json", `{"url":`, nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing url", `{}`, errs.New(errs.BadRequest, "URL is required"), http.StatusBadRequest, "BAD_REQUEST"},
		{"refusal", `{"url":"https://x.example"}`, errs.New(errs.ModelRefusal, "Perplexity refused"), http.StatusInternalServerError, "MODEL_REFUSAL"},
		{"credentials", `{"url":"https://x.example"}`, errs.New(errs.CredentialsNotConfigured, "PERPLEXITY_API_KEY is not configured"), http.StatusInternalServerError, "CREDENTIALS_NOT_CONFIGURED"},
		{"unclassified", `{"url":"https://x.example"}`, context.DeadlineExceeded, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.gen.err = tt.err
			rec := e.do(t, http.MethodPost, "/generate", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeError(t, rec)
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestChat(t *testing.T) {
	e := newTestEnv(t)
	e.relay.reply = "We ship worldwide."

	rec := e.do(t, http.MethodPost, "/chat", `{"prototypeId":"acme","promptName":"teleperson-demo-acme","message":"Do you ship?","history":[{"role":"user","content":"Do you ship?"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	var got chatResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Reply != "We ship worldwide." {
		t.Errorf("reply = %q", got.Reply)
	}
	if e.relay.got.PromptName != "teleperson-demo-acme" || len(e.relay.got.History) != 1 {
		t.Errorf("relay got %+v", e.relay.got)
	}
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"bad request", errs.New(errs.BadRequest, "Message and promptName are required"), http.StatusBadRequest, "required"},
		{"not found", errs.New(errs.NotFound, "Prompt not found: teleperson-demo-ghost. Generate the demo first."), http.StatusNotFound, "teleperson-demo-ghost"},
		{"upstream", errs.New(errs.UpstreamFailure, "Perplexity API error (502)"), http.StatusInternalServerError, "502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.relay.err = tt.err
			rec := e.do(t, http.MethodPost, "/chat", `{"promptName":"x","message":"y"}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeError(t, rec); !strings.Contains(body.Error, tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", body.Error, tt.wantMsg)
			}
		})
	}
}

func TestPrototype(t *testing.T) {
	e := newTestEnv(t)
	if err := e.pages.Save(context.Background(), "acme-inc", "<html>acme</html>"); err != nil {
		t.Fatalf("seed page: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"exact id", "/prototype/acme-inc", http.StatusOK, "<html>acme</html>"},
		{"upper case id", "/prototype/ACME-INC", http.StatusOK, "<html>acme</html>"},
		{"punctuation stripped", "/prototype/acme.inc!", http.StatusNotFound, ""},
		{"unknown id", "/prototype/ghost", http.StatusNotFound, ""},
		{"empty id", "/prototype/", http.StatusBadRequest, ""},
		{"only unsafe characters", "/prototype/...", http.StatusNotFound, ""},
		{"encoded traversal", "/prototype/..%2F..%2Fetc%2Fpasswd", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("GET %s status = %d, want %d", tt.path, rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestLandingAndOps(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `id="generate-form"`) {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/static/app.js", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /static/app.js = %d", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("GET /metrics = %d", rec.Code)
	}
}
