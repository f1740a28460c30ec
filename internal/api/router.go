package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	apimiddleware "github.com/tianzhicdev/dogetionary-sub002/internal/api/middleware"
	"github.com/tianzhicdev/dogetionary-sub002/internal/prefetch"
	"github.com/tianzhicdev/dogetionary-sub002/internal/service/auth"
	"github.com/tianzhicdev/dogetionary-sub002/internal/service/review"
)

// RouterDeps are the services the HTTP routes are built on.
type RouterDeps struct {
	JWTService     auth.JWTService
	ReviewService  review.Service
	Registry       *prefetch.Registry
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter wires the middleware chain and all API routes.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.NewTraceMiddleware(log))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{apimiddleware.TraceIDHeader},
	}).Handler)

	authMiddleware := apimiddleware.NewAuthMiddleware(deps.JWTService, log)
	reviewHandler := NewReviewHandler(deps.ReviewService, log)
	queueHandler := NewQueueHandler(deps.Registry, log)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/review/batch", reviewHandler.GetBatch)

		r.Route("/queue", func(r chi.Router) {
			r.Post("/pop", queueHandler.Pop)
			r.Get("/peek", queueHandler.Peek)
			r.Post("/preload", queueHandler.Preload)
			r.Post("/refresh", queueHandler.Refresh)
			r.Get("/status", queueHandler.Status)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
