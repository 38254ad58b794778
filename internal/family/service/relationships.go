package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"familytree/internal/family/models"
	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
)

// CreateRelationship inserts the edge described by req unless an identical
// edge already exists, in which case the existing row is returned with
// created=false. Symmetric types also get their reverse edge.
func (s *Service) CreateRelationship(ctx context.Context, req *models.CreateRelationshipRequest) (*models.Relationship, bool, error) {
	ctx, span := s.tracer.Start(ctx, "family.CreateRelationship")
	var err error
	defer func() { endSpan(span, err) }()

	if req == nil {
		err = dErrors.New(dErrors.CodeBadRequest, "request body is required")
		return nil, false, err
	}
	if err = req.Validate(); err != nil {
		return nil, false, err
	}
	span.SetAttributes(
		attribute.Int64("relationship.subject_id", int64(req.PersonID)),
		attribute.Int64("relationship.object_id", int64(req.RelatedPersonID)),
		attribute.String("relationship.type", string(req.Type)),
	)

	var (
		rel     *models.Relationship
		created bool
		fx      effects
	)
	err = s.runInTx(ctx, "create relationship", func(stores TxStores) error {
		for _, pid := range []id.PersonID{req.PersonID, req.RelatedPersonID} {
			if _, err := findPerson(ctx, stores.Persons, pid); err != nil {
				return err
			}
		}

		want := models.Edge(req.PersonID, req.RelatedPersonID, req.Type)
		var err error
		rel, created, err = ensureEdge(ctx, stores.Relationships, want)
		if err != nil {
			return err
		}
		if !created || !req.Type.Symmetric() {
			return nil
		}
		fx.edgesCreated++

		_, reverseCreated, err := ensureEdge(ctx, stores.Relationships, want.Reverse())
		if err != nil {
			return err
		}
		if reverseCreated {
			fx.edgesCreated++
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.applyEffects(ctx, &fx)
	return rel, created, nil
}

// ListRelationships returns the raw rows matching filter without symmetry
// expansion.
func (s *Service) ListRelationships(ctx context.Context, filter models.RelationshipFilter) ([]*models.Relationship, error) {
	ctx, span := s.tracer.Start(ctx, "family.ListRelationships")
	var err error
	defer func() { endSpan(span, err) }()

	var out []*models.Relationship
	err = s.runInTx(ctx, "list relationships", func(stores TxStores) error {
		rels, err := stores.Relationships.Find(ctx, filter)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list relationships")
		}
		out = rels
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.Relationship{}
	}
	return out, nil
}
