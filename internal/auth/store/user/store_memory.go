package user

import (
	"context"
	"strings"
	"sync"

	"familytree/internal/auth/models"
	id "familytree/pkg/domain"
	"familytree/pkg/platform/sentinel"
)

// InMemoryUserStore keeps accounts in memory. Names are unique
// case-insensitively.
type InMemoryUserStore struct {
	mu     sync.RWMutex
	users  map[id.UserID]*models.User
	byName map[string]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:  make(map[id.UserID]*models.User),
		byName: make(map[string]id.UserID),
	}
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

func (s *InMemoryUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byName[nameKey(u.Name)]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.users[u.ID] = cloneUser(u)
	s.byName[nameKey(u.Name)] = u.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *InMemoryUserStore) FindByName(_ context.Context, name string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byName[nameKey(name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(s.users[userID]), nil
}

// SetRefreshTokenHash stores hash, or clears it when hash is nil.
func (s *InMemoryUserStore) SetRefreshTokenHash(_ context.Context, userID id.UserID, hash *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if hash == nil {
		u.RefreshTokenHash = nil
		return nil
	}
	h := *hash
	u.RefreshTokenHash = &h
	return nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.RefreshTokenHash != nil {
		h := *u.RefreshTokenHash
		c.RefreshTokenHash = &h
	}
	return &c
}
