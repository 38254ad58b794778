package person

import (
	"context"
	"sort"
	"sync"

	"familytree/internal/family/models"
	id "familytree/pkg/domain"
	"familytree/pkg/platform/sentinel"
)

// InMemory keeps persons in a map keyed by id. Reads and writes copy records
// so callers never share memory with the store.
type InMemory struct {
	mu      sync.RWMutex
	persons map[id.PersonID]*models.Person
	nextID  id.PersonID
}

func NewInMemory() *InMemory {
	return &InMemory{persons: make(map[id.PersonID]*models.Person), nextID: 1}
}

func (s *InMemory) Create(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.persons[p.ID] = p.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, personID id.PersonID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[personID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemory) ListByOwner(_ context.Context, owner id.UserID) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Person, 0)
	for _, p := range s.persons {
		if p.UserID == owner {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Update(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.persons[p.ID] = p.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[personID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.persons, personID)
	return nil
}

func (s *InMemory) ClearParentReferences(_ context.Context, parentID id.PersonID, role models.ParentRole) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cleared int64
	for _, p := range s.persons {
		if ref := p.Parent(role); ref != nil && *ref == parentID {
			p.ClearParent(role)
			cleared++
		}
	}
	return cleared, nil
}

// Checkpoint captures the current contents and returns a function that puts
// them back. The in-memory transaction runner uses it to roll back.
func (s *InMemory) Checkpoint() func() {
	s.mu.RLock()
	saved := make(map[id.PersonID]*models.Person, len(s.persons))
	for k, p := range s.persons {
		saved[k] = p.Clone()
	}
	next := s.nextID
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.persons = saved
		s.nextID = next
	}
}
