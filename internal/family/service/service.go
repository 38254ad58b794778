package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"familytree/internal/family/models"
	"familytree/internal/platform/metrics"
	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
)

// PersonStore holds person rows. It never touches relationships.
type PersonStore interface {
	Create(ctx context.Context, p *models.Person) error
	FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error)
	ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Person, error)
	Update(ctx context.Context, p *models.Person) error
	Delete(ctx context.Context, personID id.PersonID) error
	ClearParentReferences(ctx context.Context, parentID id.PersonID, role models.ParentRole) (int64, error)
}

// RelationshipStore holds directed edge rows. It enforces neither symmetry
// nor uniqueness.
type RelationshipStore interface {
	Find(ctx context.Context, filter models.RelationshipFilter) ([]*models.Relationship, error)
	Create(ctx context.Context, r *models.Relationship) error
	DeleteWhere(ctx context.Context, filter models.RelationshipFilter) (int64, error)
	DeleteTouching(ctx context.Context, personID id.PersonID) (int64, error)
}

// PhotoStore removes stored photos. Deletions are best-effort side effects
// outside the transaction.
type PhotoStore interface {
	Delete(ctx context.Context, key string) error
}

// Service is the family graph consistency engine. Every operation runs in a
// single transaction over the person and relationship stores.
type Service struct {
	tx          StoreTx
	photos      PhotoStore
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	photoPrefix string
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithPhotoPrefix sets the canonical storage path stored in front of bare
// object keys on update.
func WithPhotoPrefix(prefix string) Option {
	return func(s *Service) {
		s.photoPrefix = prefix
	}
}

// New constructs a Service. photos may be nil when no object store is
// configured; photo cleanup is then skipped.
func New(tx StoreTx, photos PhotoStore, opts ...Option) *Service {
	s := &Service{
		tx:     tx,
		photos: photos,
		logger: slog.Default(),
		tracer: otel.Tracer("familytree/internal/family/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// runInTx executes fn in one transaction and classifies uncoded failures
// (begin, commit, driver errors) as internal.
func (s *Service) runInTx(ctx context.Context, op string, fn func(stores TxStores) error) error {
	err := s.tx.RunInTx(ctx, fn)
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func requireActor(actor id.UserID) error {
	if actor.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authenticated user required")
	}
	return nil
}
