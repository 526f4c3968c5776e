package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/errs"
	"github.com/teleperson/demo-generator/internal/metrics"
	"github.com/teleperson/demo-generator/internal/pagestore"
	"github.com/teleperson/demo-generator/internal/slug"
)

// PrototypeHandler serves stored demo pages.
type PrototypeHandler struct {
	pages  pagestore.Store
	logger *zap.Logger
}

func NewPrototypeHandler(pages pagestore.Store, logger *zap.Logger) *PrototypeHandler {
	return &PrototypeHandler{pages: pages, logger: logger}
}

// Show serves GET /prototype/{id}. The id is reduced to [a-z0-9-] before it
// touches storage, so no request can address anything outside the store.
func (h *PrototypeHandler) Show(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	if raw == "" {
		h.fail(w, errs.New(errs.BadRequest, "Prototype ID is required"))
		return
	}

	id := slug.Sanitize(raw)
	if id == "" {
		h.fail(w, errs.New(errs.NotFound, "Prototype not found"))
		return
	}

	html, err := h.pages.Load(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	metrics.PrototypeServesTotal.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (h *PrototypeHandler) fail(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	metrics.PrototypeServesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	if status == http.StatusInternalServerError {
		h.logger.Error("prototype load failed", zap.Error(err))
	}
	writeErr(w, err)
}
