package service

import (
	"context"
	"errors"
	"path"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"familytree/internal/family/models"
	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/sentinel"
)

const (
	spouseEdgesCreated = "created"
	spouseEdgesRemoved = "removed"
)

// effects collects what a transaction did so metrics and photo cleanup run
// only once it has committed.
type effects struct {
	personsCreated int
	personsDeleted int
	placeholders   []models.ParentRole
	edgesCreated   int64
	edgesRemoved   int64
	photoToDelete  string
}

// CreateMember inserts a person owned by actor and links it to every
// requested spouse that exists. Parent ids are stored as given without an
// existence check. The result echoes the requested pids.
func (s *Service) CreateMember(ctx context.Context, actor id.UserID, req *models.PersonRequest) (*models.MemberResult, error) {
	ctx, span := s.tracer.Start(ctx, "family.CreateMember")
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireActor(actor); err != nil {
		return nil, err
	}
	if req == nil {
		err = dErrors.New(dErrors.CodeBadRequest, "request body is required")
		return nil, err
	}
	req.Normalize()
	if err = req.Validate(); err != nil {
		return nil, err
	}
	gender, _ := models.ParseGender(req.Gender)

	var fx effects
	var created *models.Person
	err = s.runInTx(ctx, "create family member", func(stores TxStores) error {
		p := &models.Person{
			Name:     req.Name,
			Email:    req.Email,
			Gender:   gender,
			Born:     req.Born,
			FatherID: req.FatherID.Ptr(),
			MotherID: req.MotherID.Ptr(),
			UserID:   actor,
		}
		if req.Photo != nil && *req.Photo != "" {
			photo := *req.Photo
			p.Photo = &photo
		}
		if err := stores.Persons.Create(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create family member")
		}
		fx.personsCreated++

		n, skipped, err := linkExistingSpouses(ctx, stores, p.ID, wantedSpouses(p.ID, req.Pids))
		if err != nil {
			return err
		}
		fx.edgesCreated += n
		s.logSkippedSpouses(ctx, p.ID, skipped)

		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.applyEffects(ctx, &fx)
	span.SetAttributes(attribute.Int64("person.id", int64(created.ID)))
	s.logger.InfoContext(ctx, "family member created",
		"person_id", created.ID,
		"user_id", actor.String(),
	)
	return &models.MemberResult{Member: models.NewFamilyMember(created, echoPids(req.Pids))}, nil
}

// UpdateMember fully replaces the attributes of personID.
//
// Dangling parent ids are healed by synthesizing placeholder ancestors owned
// by actor. When both parents resolve they are linked as spouses. Spouses are
// reconciled against req.Pids only when pids was supplied. A replaced or
// cleared photo is removed from the photo store after commit; failures are
// reported as warnings.
func (s *Service) UpdateMember(ctx context.Context, actor id.UserID, personID id.PersonID, req *models.PersonRequest) (*models.MemberResult, error) {
	ctx, span := s.tracer.Start(ctx, "family.UpdateMember")
	span.SetAttributes(attribute.Int64("person.id", int64(personID)))
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireActor(actor); err != nil {
		return nil, err
	}
	if req == nil {
		err = dErrors.New(dErrors.CodeBadRequest, "request body is required")
		return nil, err
	}
	req.Normalize()
	if err = req.Validate(); err != nil {
		return nil, err
	}
	gender, _ := models.ParseGender(req.Gender)

	var fx effects
	var updated *models.Person
	err = s.runInTx(ctx, "update family member", func(stores TxStores) error {
		current, err := findPerson(ctx, stores.Persons, personID)
		if err != nil {
			return err
		}

		fatherID, err := s.resolveParent(ctx, stores, &fx, actor, req.FatherID, models.RoleFather)
		if err != nil {
			return err
		}
		motherID, err := s.resolveParent(ctx, stores, &fx, actor, req.MotherID, models.RoleMother)
		if err != nil {
			return err
		}
		if fatherID != nil && motherID != nil && *fatherID != *motherID {
			n, err := ensureSpouses(ctx, stores.Relationships, *fatherID, *motherID)
			if err != nil {
				return err
			}
			fx.edgesCreated += n
		}

		photo, stale := s.resolvePhoto(current.PhotoValue(), req.Photo)
		fx.photoToDelete = stale

		next := &models.Person{
			ID:       current.ID,
			Name:     req.Name,
			Email:    req.Email,
			Gender:   gender,
			Born:     req.Born,
			Photo:    photo,
			FatherID: fatherID,
			MotherID: motherID,
			UserID:   actor,
		}
		if err := stores.Persons.Update(ctx, next); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update family member")
		}

		if req.Pids != nil {
			added, removed, skipped, err := reconcileSpouses(ctx, stores, personID, req.Pids)
			if err != nil {
				return err
			}
			fx.edgesCreated += added
			fx.edgesRemoved += removed
			s.logSkippedSpouses(ctx, personID, skipped)
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	warnings := s.applyEffects(ctx, &fx)
	s.logger.InfoContext(ctx, "family member updated",
		"person_id", personID,
		"user_id", actor.String(),
		"placeholders", len(fx.placeholders),
	)
	return &models.MemberResult{
		Member:   models.NewFamilyMember(updated, echoPids(req.Pids)),
		Warnings: warnings,
	}, nil
}

// DeleteMember removes personID with every edge touching it. Children keep
// their rows and lose the parent reference.
func (s *Service) DeleteMember(ctx context.Context, personID id.PersonID) (*models.DeleteResult, error) {
	ctx, span := s.tracer.Start(ctx, "family.DeleteMember")
	span.SetAttributes(attribute.Int64("person.id", int64(personID)))
	var err error
	defer func() { endSpan(span, err) }()

	var fx effects
	err = s.runInTx(ctx, "delete family member", func(stores TxStores) error {
		current, err := findPerson(ctx, stores.Persons, personID)
		if err != nil {
			return err
		}
		if old := current.PhotoValue(); old != "" {
			fx.photoToDelete = path.Base(old)
		}

		n, err := stores.Relationships.DeleteTouching(ctx, personID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove relationships")
		}
		fx.edgesRemoved += n

		for _, role := range []models.ParentRole{models.RoleFather, models.RoleMother} {
			if _, err := stores.Persons.ClearParentReferences(ctx, personID, role); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to detach children")
			}
		}

		if err := stores.Persons.Delete(ctx, personID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete family member")
		}
		fx.personsDeleted++
		return nil
	})
	if err != nil {
		return nil, err
	}

	warnings := s.applyEffects(ctx, &fx)
	s.logger.InfoContext(ctx, "family member deleted", "person_id", personID)
	return &models.DeleteResult{ID: personID, Warnings: warnings}, nil
}

// resolveParent returns the parent id to store for role. A supplied id that
// does not resolve is replaced by a freshly synthesized placeholder.
func (s *Service) resolveParent(ctx context.Context, stores TxStores, fx *effects, actor id.UserID, ref models.ParentRef, role models.ParentRole) (*id.PersonID, error) {
	pid, ok := ref.Get()
	if !ok {
		return nil, nil
	}
	exists, err := personExists(ctx, stores.Persons, pid)
	if err != nil {
		return nil, err
	}
	if exists {
		return ref.Ptr(), nil
	}

	placeholder := models.NewPlaceholderParent(role, actor)
	if err := stores.Persons.Create(ctx, placeholder); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create placeholder "+string(role))
	}
	fx.placeholders = append(fx.placeholders, role)
	fx.personsCreated++
	s.logger.InfoContext(ctx, "placeholder ancestor synthesized",
		"role", string(role),
		"requested_id", pid,
		"placeholder_id", placeholder.ID,
	)
	resolved := placeholder.ID
	return &resolved, nil
}

// resolvePhoto decides the photo to store and the object key to delete.
// A nil request keeps the current photo, an empty one clears it, and a bare
// key is stored under the canonical prefix.
func (s *Service) resolvePhoto(current string, requested *string) (*string, string) {
	if requested == nil {
		if current == "" {
			return nil, ""
		}
		keep := current
		return &keep, ""
	}

	next := *requested
	if next != "" && s.photoPrefix != "" && !strings.Contains(next, s.photoPrefix) {
		next = s.photoPrefix + next
	}

	var stale string
	if current != "" && current != next {
		stale = path.Base(current)
	}
	if next == "" {
		return nil, stale
	}
	return &next, stale
}

// applyEffects records metrics and performs photo cleanup for a committed
// transaction. It returns warnings for degraded side effects.
func (s *Service) applyEffects(ctx context.Context, fx *effects) []string {
	s.metrics.IncPersonsCreated(fx.personsCreated)
	for i := 0; i < fx.personsDeleted; i++ {
		s.metrics.IncPersonsDeleted()
	}
	for _, role := range fx.placeholders {
		s.metrics.IncPlaceholder(string(role))
	}
	s.metrics.AddSpouseEdges(spouseEdgesCreated, fx.edgesCreated)
	s.metrics.AddSpouseEdges(spouseEdgesRemoved, fx.edgesRemoved)

	if fx.photoToDelete == "" || s.photos == nil {
		return nil
	}
	if err := s.photos.Delete(ctx, fx.photoToDelete); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.DebugContext(ctx, "photo already gone", "key", fx.photoToDelete)
			return nil
		}
		s.metrics.IncPhotoDeleteFailures()
		s.logger.WarnContext(ctx, "failed to delete photo",
			"key", fx.photoToDelete,
			"error", err,
		)
		return []string{"photo " + fx.photoToDelete + " could not be deleted"}
	}
	return nil
}

func (s *Service) logSkippedSpouses(ctx context.Context, personID id.PersonID, skipped []id.PersonID) {
	if len(skipped) == 0 {
		return
	}
	s.logger.DebugContext(ctx, "skipped missing spouses",
		"person_id", personID,
		"spouse_ids", skipped,
	)
}

// echoPids returns the requested spouse ids as the response field.
func echoPids(pids []id.PersonID) []id.PersonID {
	out := make([]id.PersonID, len(pids))
	copy(out, pids)
	return out
}
