package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes builds the router: health outside the API group, form
// endpoints under /api with edge rate limiting applied to submissions.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS - the forms live on static marketing pages, so the allowed
	// origins are explicit, never wildcarded with credentials
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check (no rate limiting)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/forms/{formID}", func(r chi.Router) {
			r.With(s.edgeLimit).Post("/subscriptions", s.handleSubscribe)
			r.Get("/status", s.handleStatus)
			r.Delete("/status", s.handleReset)
		})
	})

	return r
}

// edgeLimit applies the per-client admission limiter. RealIP runs
// earlier in the chain, so RemoteAddr is the client address even
// behind the load balancer.
func (s *Server) edgeLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if s.edge != nil {
			allowed, _ := s.edge.Allow(req.Context(), clientKey(req))
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"too many requests","kind":"rate_limited"}`))
				return
			}
		}
		next.ServeHTTP(w, req)
	})
}
