package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/character-explorer/internal/delivery/http/handler"
	"github.com/user/character-explorer/internal/delivery/http/middleware"
	"github.com/user/character-explorer/internal/view"
)

const requestTimeout = 30 * time.Second

func New(h *handler.Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/", h.HandleHome)
	r.Get("/character/{id}", h.HandleCharacter)
	r.Get("/character/name/{name}", h.HandleCharacterByName)
	r.Get("/search", h.HandleSearch)
	r.Get("/search/results", h.HandleSearchResults)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(view.Static()))))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/revalidate", h.HandleRevalidate)
		r.Route("/characters", func(r chi.Router) {
			r.Get("/", h.HandleListCharacters)
			r.Get("/search", h.HandleSearchCharacters)
			r.Get("/{id}", h.HandleGetCharacter)
		})
	})

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(h.HandleNotFound)

	return r
}
