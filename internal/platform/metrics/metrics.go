package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing, which keeps tests free of registries.
type Metrics struct {
	PersonsCreated          prometheus.Counter
	PersonsDeleted          prometheus.Counter
	PlaceholdersSynthesized *prometheus.CounterVec
	SpouseEdges             *prometheus.CounterVec
	PhotoDeleteFailures     prometheus.Counter
	PhotosUploaded          prometheus.Counter
	LoginAttempts           *prometheus.CounterVec
	RateLimited             *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PersonsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "familytree_persons_created_total",
			Help: "Persons created, including synthesized placeholder ancestors",
		}),
		PersonsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "familytree_persons_deleted_total",
			Help: "Persons deleted",
		}),
		PlaceholdersSynthesized: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familytree_placeholder_ancestors_total",
			Help: "Placeholder parents synthesized for dangling parent references",
		}, []string{"role"}),
		SpouseEdges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familytree_spouse_edges_total",
			Help: "Spouse edge rows written, by operation",
		}, []string{"op"}),
		PhotoDeleteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "familytree_photo_delete_failures_total",
			Help: "Best-effort photo deletions that failed",
		}),
		PhotosUploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "familytree_photos_uploaded_total",
			Help: "Photos stored in the object store",
		}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familytree_login_attempts_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familytree_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter, by endpoint class",
		}, []string{"class"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "familytree_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncPersonsCreated(n int) {
	if m == nil {
		return
	}
	m.PersonsCreated.Add(float64(n))
}

func (m *Metrics) IncPersonsDeleted() {
	if m == nil {
		return
	}
	m.PersonsDeleted.Inc()
}

func (m *Metrics) IncPlaceholder(role string) {
	if m == nil {
		return
	}
	m.PlaceholdersSynthesized.WithLabelValues(role).Inc()
}

// AddSpouseEdges records n rows written; op is "created" or "removed".
func (m *Metrics) AddSpouseEdges(op string, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.SpouseEdges.WithLabelValues(op).Add(float64(n))
}

func (m *Metrics) IncPhotoDeleteFailures() {
	if m == nil {
		return
	}
	m.PhotoDeleteFailures.Inc()
}

func (m *Metrics) IncPhotosUploaded() {
	if m == nil {
		return
	}
	m.PhotosUploaded.Inc()
}

func (m *Metrics) IncLoginAttempt(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) IncRateLimited(class string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(class).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
