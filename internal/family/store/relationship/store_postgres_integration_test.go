//go:build integration

package relationship_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"familytree/internal/family/models"
	"familytree/internal/family/store/person"
	"familytree/internal/family/store/relationship"
	id "familytree/pkg/domain"
	"familytree/pkg/platform/sentinel"
	"familytree/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	persons  *person.PostgresStore
	store    *relationship.PostgresStore
	ids      []id.PersonID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.persons = person.NewPostgres(s.postgres.DB)
	s.store = relationship.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "relationships", "persons"))
	owner := id.UserID(uuid.New())
	s.ids = nil
	for _, name := range []string{"A", "B", "C"} {
		p := &models.Person{Name: name, Gender: models.GenderUnknown, UserID: owner}
		s.Require().NoError(s.persons.Create(ctx, p))
		s.ids = append(s.ids, p.ID)
	}
}

func (s *PostgresStoreSuite) link(a, b id.PersonID) {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, models.Edge(a, b, models.RelationshipSpouse)))
	s.Require().NoError(s.store.Create(ctx, models.Edge(b, a, models.RelationshipSpouse)))
}

func (s *PostgresStoreSuite) TestFind() {
	ctx := context.Background()
	a, b, c := s.ids[0], s.ids[1], s.ids[2]
	s.link(a, b)
	s.link(a, c)

	got, err := s.store.Find(ctx, models.SpousesOf(a))
	s.Require().NoError(err)
	s.Len(got, 2)

	got, err = s.store.Find(ctx, models.EdgeFilter(b, a, models.RelationshipSpouse))
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(b, got[0].SubjectID)
	s.Positive(int64(got[0].ID))

	got, err = s.store.Find(ctx, models.RelationshipFilter{SubjectIDs: []id.PersonID{b, c}})
	s.Require().NoError(err)
	s.Len(got, 2)

	got, err = s.store.Find(ctx, models.RelationshipFilter{SubjectIDs: []id.PersonID{}})
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)

	all, err := s.store.Find(ctx, models.RelationshipFilter{})
	s.Require().NoError(err)
	s.Len(all, 4)
}

func (s *PostgresStoreSuite) TestDeleteWhere() {
	ctx := context.Background()
	a, b := s.ids[0], s.ids[1]
	s.link(a, b)

	n, err := s.store.DeleteWhere(ctx, models.EdgeFilter(a, b, models.RelationshipSpouse))
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	_, err = s.store.DeleteWhere(ctx, models.RelationshipFilter{})
	s.ErrorIs(err, sentinel.ErrInvalidState)

	left, err := s.store.Find(ctx, models.RelationshipFilter{})
	s.Require().NoError(err)
	s.Len(left, 1)
}

func (s *PostgresStoreSuite) TestDeleteTouching() {
	ctx := context.Background()
	a, b, c := s.ids[0], s.ids[1], s.ids[2]
	s.link(a, b)
	s.link(b, c)

	n, err := s.store.DeleteTouching(ctx, b)
	s.Require().NoError(err)
	s.Equal(int64(4), n)

	n, err = s.store.DeleteTouching(ctx, a)
	s.Require().NoError(err)
	s.Zero(n)
}
