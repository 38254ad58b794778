package service

import (
	"context"

	"familytree/internal/family/models"
	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/dedupe"
)

// ensureEdge inserts want unless an identical row exists. It returns the
// stored row and whether it was created.
func ensureEdge(ctx context.Context, rels RelationshipStore, want *models.Relationship) (*models.Relationship, bool, error) {
	existing, err := rels.Find(ctx, models.EdgeFilter(want.SubjectID, want.ObjectID, want.Type))
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up relationship")
	}
	if len(existing) > 0 {
		return existing[0], false, nil
	}
	if err := rels.Create(ctx, want); err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create relationship")
	}
	return want, true, nil
}

// ensureSpouses links a and b in both directions and returns the number of
// rows inserted.
func ensureSpouses(ctx context.Context, rels RelationshipStore, a, b id.PersonID) (int64, error) {
	var created int64
	edge := models.Edge(a, b, models.RelationshipSpouse)
	for _, e := range []*models.Relationship{edge, edge.Reverse()} {
		_, ok, err := ensureEdge(ctx, rels, e)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// unlinkSpouses removes both directions of the spouse edge between a and b.
func unlinkSpouses(ctx context.Context, rels RelationshipStore, a, b id.PersonID) (int64, error) {
	var removed int64
	for _, pair := range [2][2]id.PersonID{{a, b}, {b, a}} {
		n, err := rels.DeleteWhere(ctx, models.EdgeFilter(pair[0], pair[1], models.RelationshipSpouse))
		if err != nil {
			return removed, dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove spouse relationship")
		}
		removed += n
	}
	return removed, nil
}

// wantedSpouses drops duplicates and self-references from a requested pids
// list while keeping request order.
func wantedSpouses(self id.PersonID, pids []id.PersonID) []id.PersonID {
	out := make([]id.PersonID, 0, len(pids))
	for _, pid := range dedupe.Values(pids) {
		if pid != self && pid > 0 {
			out = append(out, pid)
		}
	}
	return out
}

// linkExistingSpouses links personID to every requested spouse that exists.
// Missing targets are skipped and returned so callers can log them.
func linkExistingSpouses(ctx context.Context, stores TxStores, personID id.PersonID, pids []id.PersonID) (created int64, skipped []id.PersonID, err error) {
	for _, pid := range pids {
		ok, err := personExists(ctx, stores.Persons, pid)
		if err != nil {
			return created, skipped, err
		}
		if !ok {
			skipped = append(skipped, pid)
			continue
		}
		n, err := ensureSpouses(ctx, stores.Relationships, personID, pid)
		if err != nil {
			return created, skipped, err
		}
		created += n
	}
	return created, skipped, nil
}

// reconcileSpouses makes the spouse set of personID equal to the existing
// persons in requested. Spouses no longer requested lose both edge
// directions; kept spouses are left untouched.
func reconcileSpouses(ctx context.Context, stores TxStores, personID id.PersonID, requested []id.PersonID) (added, removed int64, skipped []id.PersonID, err error) {
	current, err := spouseIDs(ctx, stores.Relationships, personID)
	if err != nil {
		return 0, 0, nil, err
	}
	wanted := wantedSpouses(personID, requested)

	wantedSet := make(map[id.PersonID]struct{}, len(wanted))
	for _, pid := range wanted {
		wantedSet[pid] = struct{}{}
	}
	currentSet := make(map[id.PersonID]struct{}, len(current))
	for _, pid := range current {
		currentSet[pid] = struct{}{}
	}

	for _, pid := range dedupe.Values(current) {
		if _, keep := wantedSet[pid]; keep {
			continue
		}
		n, err := unlinkSpouses(ctx, stores.Relationships, personID, pid)
		if err != nil {
			return added, removed, skipped, err
		}
		removed += n
	}

	var toAdd []id.PersonID
	for _, pid := range wanted {
		if _, linked := currentSet[pid]; !linked {
			toAdd = append(toAdd, pid)
		}
	}
	added, skipped, err = linkExistingSpouses(ctx, stores, personID, toAdd)
	return added, removed, skipped, err
}
