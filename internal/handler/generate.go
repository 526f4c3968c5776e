package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/generate"
)

// Generator runs the demo pipeline for a company URL.
type Generator interface {
	Generate(ctx context.Context, rawURL string) (*generate.Result, error)
}

// GenerateHandler serves POST /generate.
type GenerateHandler struct {
	gen    Generator
	logger *zap.Logger
}

func NewGenerateHandler(gen Generator, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{gen: gen, logger: logger}
}

type generateRequest struct {
	URL string `json:"url"`
}

func (h *GenerateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}

	res, err := h.gen.Generate(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("generate failed", zap.String("url", req.URL), zap.Error(err))
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
