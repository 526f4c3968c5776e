package handler

import (
	"net/http"

	"github.com/teleperson/demo-generator/internal/build"
)

// LandingHandler serves the URL form that starts a generation.
type LandingHandler struct{}

// NewLandingHandler creates a new LandingHandler.
func NewLandingHandler() *LandingHandler { return &LandingHandler{} }

type landingPage struct {
	GenerateEndpoint string
	Version          string
}

// Index serves GET /.
func (h *LandingHandler) Index(w http.ResponseWriter, r *http.Request) {
	render(w, "index.html", landingPage{GenerateEndpoint: "/generate", Version: build.Version})
}

// Healthz serves GET /healthz.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
