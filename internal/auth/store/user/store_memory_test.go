package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"familytree/internal/auth/models"
	id "familytree/pkg/domain"
	"familytree/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = New()
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func newUser(name string) *models.User {
	return &models.User{
		ID:           id.UserID(uuid.New()),
		Name:         name,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *InMemoryUserStoreSuite) TestLookup() {
	ctx := context.Background()
	u := newUser("Ada")
	s.Require().NoError(s.store.Create(ctx, u))

	s.Run("by id", func() {
		found, err := s.store.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u, found)
	})

	s.Run("by name ignores case", func() {
		found, err := s.store.FindByName(ctx, "ada")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("missing user is ErrNotFound", func() {
		_, err := s.store.FindByID(ctx, id.UserID(uuid.New()))
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindByName(ctx, "nobody")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryUserStoreSuite) TestDuplicateName() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newUser("Ada")))
	err := s.store.Create(ctx, newUser("ADA"))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *InMemoryUserStoreSuite) TestRefreshTokenHash() {
	ctx := context.Background()
	u := newUser("Ada")
	s.Require().NoError(s.store.Create(ctx, u))

	hash := "digest"
	s.Require().NoError(s.store.SetRefreshTokenHash(ctx, u.ID, &hash))
	found, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.RefreshTokenHash)
	s.Equal("digest", *found.RefreshTokenHash)

	s.Require().NoError(s.store.SetRefreshTokenHash(ctx, u.ID, nil))
	found, err = s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Nil(found.RefreshTokenHash)

	s.ErrorIs(s.store.SetRefreshTokenHash(ctx, id.UserID(uuid.New()), nil), sentinel.ErrNotFound)
}
