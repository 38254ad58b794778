package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"familytree/internal/family/models"
	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/sentinel"
)

// ListFamily assembles the family view for owner: every person the user owns
// with the spouse ids found on its outgoing spouse edges. The result is never
// nil.
func (s *Service) ListFamily(ctx context.Context, owner id.UserID) ([]*models.FamilyMember, error) {
	ctx, span := s.tracer.Start(ctx, "family.ListFamily")
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireActor(owner); err != nil {
		return nil, err
	}

	members := []*models.FamilyMember{}
	err = s.runInTx(ctx, "list family", func(stores TxStores) error {
		persons, err := stores.Persons.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if len(persons) == 0 {
			return nil
		}

		subjects := make([]id.PersonID, 0, len(persons))
		for _, p := range persons {
			subjects = append(subjects, p.ID)
		}
		spouse := models.RelationshipSpouse
		edges, err := stores.Relationships.Find(ctx, models.RelationshipFilter{Type: &spouse, SubjectIDs: subjects})
		if err != nil {
			return err
		}

		pids := make(map[id.PersonID][]id.PersonID, len(persons))
		for _, e := range edges {
			pids[e.SubjectID] = append(pids[e.SubjectID], e.ObjectID)
		}
		for _, p := range persons {
			members = append(members, models.NewFamilyMember(p, pids[p.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("family.size", len(members)))
	return members, nil
}

// GetMember returns one person with its current spouse ids.
func (s *Service) GetMember(ctx context.Context, personID id.PersonID) (*models.FamilyMember, error) {
	ctx, span := s.tracer.Start(ctx, "family.GetMember")
	span.SetAttributes(attribute.Int64("person.id", int64(personID)))
	var err error
	defer func() { endSpan(span, err) }()

	var member *models.FamilyMember
	err = s.runInTx(ctx, "get member", func(stores TxStores) error {
		p, err := findPerson(ctx, stores.Persons, personID)
		if err != nil {
			return err
		}
		spouses, err := spouseIDs(ctx, stores.Relationships, personID)
		if err != nil {
			return err
		}
		member = models.NewFamilyMember(p, spouses)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// findPerson loads a person that must exist for the operation to proceed.
func findPerson(ctx context.Context, persons PersonStore, personID id.PersonID) (*models.Person, error) {
	p, err := persons.FindByID(ctx, personID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "family member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load family member")
	}
	return p, nil
}

// personExists reports whether personID resolves. Store failures other than
// not-found are returned.
func personExists(ctx context.Context, persons PersonStore, personID id.PersonID) (bool, error) {
	_, err := persons.FindByID(ctx, personID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	default:
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load family member")
	}
}

func spouseIDs(ctx context.Context, rels RelationshipStore, personID id.PersonID) ([]id.PersonID, error) {
	edges, err := rels.Find(ctx, models.SpousesOf(personID))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load spouses")
	}
	out := make([]id.PersonID, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.ObjectID)
	}
	return out, nil
}
