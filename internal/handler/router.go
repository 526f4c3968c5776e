package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/pagestore"
	"github.com/teleperson/demo-generator/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	Generator Generator
	Relay     Replier
	Pages     pagestore.Store
	Logger    *zap.Logger
}

// NewRouter assembles the chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Static assets (embedded). fs.Sub so the file server sees app.css
	// directly rather than static/app.css.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	landing := NewLandingHandler()
	r.Get("/", landing.Index)
	r.Get("/healthz", Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/generate", NewGenerateHandler(deps.Generator, deps.Logger).Create)
	r.Post("/chat", NewChatHandler(deps.Relay, deps.Logger).Reply)

	prototypes := NewPrototypeHandler(deps.Pages, deps.Logger)
	r.Get("/prototype/", prototypes.Show)
	r.Get("/prototype/{id}", prototypes.Show)

	return r
}
