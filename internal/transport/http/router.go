// Package httptransport assembles the HTTP surface: ops routes at the root,
// the access layer and the authenticated family API under /api.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"familytree/internal/platform/metrics"
	ratelimit "familytree/internal/ratelimit/middleware"
	"familytree/internal/ratelimit/models"
	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/httputil"
	"familytree/pkg/platform/middleware/admin"
	authmw "familytree/pkg/platform/middleware/auth"
	"familytree/pkg/platform/middleware/metadata"
	"familytree/pkg/platform/middleware/request"
	"familytree/pkg/platform/middleware/requesttime"
)

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps is everything the router needs from main.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	MetricsToken   string
	AllowedOrigins []string

	// Public is mounted under /api without authentication.
	Public []Registrar
	// Protected is mounted under /api behind RequireAuth.
	Protected []Registrar

	Validator   authmw.JWTValidator
	Revocations authmw.TokenRevocationChecker
	// RateLimiter is optional.
	RateLimiter *ratelimit.Middleware

	Health map[string]HealthCheck
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter wires middleware and routes.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.Logger))
	r.Use(request.Logger(d.Logger))
	r.Use(request.Latency(d.Metrics))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handleHealth(d.Health))
	r.With(admin.RequireAdminToken(d.MetricsToken, d.Logger)).
		Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Group(func(r chi.Router) {
			if d.RateLimiter != nil {
				r.Use(d.RateLimiter.RateLimit(models.ClassAuth))
			}
			for _, reg := range d.Public {
				reg.Register(r)
			}
		})
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(d.Validator, d.Revocations, d.Logger))
			if d.RateLimiter != nil {
				r.Use(d.RateLimiter.RateLimitAuthenticated())
			}
			for _, reg := range d.Protected {
				reg.Register(r)
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	return r
}

func handleHealth(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				resp.Checks[name] = "down"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "up"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
