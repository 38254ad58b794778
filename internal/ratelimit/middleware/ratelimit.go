// Package middleware enforces per-caller request budgets on HTTP routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"familytree/internal/platform/metrics"
	"familytree/internal/ratelimit/models"
	"familytree/pkg/platform/httputil"
	"familytree/pkg/requestcontext"
)

// BucketStore admits or rejects one request against a keyed budget.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.RateLimitResult, error)
}

type Middleware struct {
	store    BucketStore
	limits   map[models.EndpointClass]models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(store BucketStore, limits map[models.EndpointClass]models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limits: limits,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit budgets class per client IP.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if m.check(w, r, class, models.IPKey(class, requestcontext.ClientIP(ctx))) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RateLimitAuthenticated budgets per user: reads and writes are counted
// separately. Callers without a user id fall back to their IP.
func (m *Middleware) RateLimitAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			class := models.ClassWrite
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				class = models.ClassRead
			}
			key := models.IPKey(class, requestcontext.ClientIP(ctx))
			if userID := requestcontext.UserID(ctx); !userID.IsNil() {
				key = models.UserKey(class, userID.String())
			}
			if m.check(w, r, class, key) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// check reports whether the request may proceed. Store failures fail open.
func (m *Middleware) check(w http.ResponseWriter, r *http.Request, class models.EndpointClass, key string) bool {
	if m.disabled {
		return true
	}
	limit, ok := m.limits[class]
	if !ok || limit.Requests <= 0 {
		return true
	}

	ctx := r.Context()
	result, err := m.store.Allow(ctx, key, limit)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to check rate limit",
			"error", err,
			"class", string(class),
			"request_id", requestcontext.RequestID(ctx),
		)
		return true
	}

	addRateLimitHeaders(w, result)
	if !result.Allowed {
		m.metrics.IncRateLimited(string(class))
		m.logger.WarnContext(ctx, "rate limit exceeded",
			"class", string(class),
			"request_id", requestcontext.RequestID(ctx),
		)
		writeRateLimitExceeded(w, result)
		return false
	}
	return true
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:            "rate_limit_exceeded",
		ErrorDescription: "Too many requests. Please try again later.",
		RetryAfter:       result.RetryAfter,
	})
}
