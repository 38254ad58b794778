package relationship

import (
	"context"
	"sort"
	"sync"

	"familytree/internal/family/models"
	id "familytree/pkg/domain"
	"familytree/pkg/platform/sentinel"
)

// InMemory stores edges as rows, like the SQL table: no symmetry and no
// uniqueness are enforced here.
type InMemory struct {
	mu     sync.RWMutex
	rows   map[id.RelationshipID]*models.Relationship
	nextID id.RelationshipID
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[id.RelationshipID]*models.Relationship), nextID: 1}
}

func (s *InMemory) Find(_ context.Context, filter models.RelationshipFilter) ([]*models.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Relationship, 0)
	for _, r := range s.rows {
		if filter.Matches(r) {
			c := *r
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Create(_ context.Context, r *models.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID
	s.nextID++
	c := *r
	s.rows[r.ID] = &c
	return nil
}

func (s *InMemory) DeleteWhere(_ context.Context, filter models.RelationshipFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for rid, r := range s.rows {
		if filter.Matches(r) {
			delete(s.rows, rid)
			n++
		}
	}
	return n, nil
}

func (s *InMemory) DeleteTouching(_ context.Context, personID id.PersonID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for rid, r := range s.rows {
		if r.Touches(personID) {
			delete(s.rows, rid)
			n++
		}
	}
	return n, nil
}

// Checkpoint captures the current rows and returns a function restoring them.
func (s *InMemory) Checkpoint() func() {
	s.mu.RLock()
	saved := make(map[id.RelationshipID]*models.Relationship, len(s.rows))
	for k, r := range s.rows {
		c := *r
		saved[k] = &c
	}
	next := s.nextID
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rows = saved
		s.nextID = next
	}
}
