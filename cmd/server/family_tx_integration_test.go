//go:build integration

package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"familytree/internal/family/models"
	familyservice "familytree/internal/family/service"
	personstore "familytree/internal/family/store/person"
	relationshipstore "familytree/internal/family/store/relationship"
	id "familytree/pkg/domain"
	"familytree/pkg/platform/sentinel"
	"familytree/pkg/testutil/containers"
)

type FamilyTxSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	runner   *familyPostgresTx
	service  *familyservice.Service
	owner    id.UserID
}

func TestFamilyTxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(FamilyTxSuite))
}

func (s *FamilyTxSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.runner = newFamilyPostgresTx(s.postgres.DB, 2*time.Second)
	s.service = familyservice.New(s.runner, nil)
}

func (s *FamilyTxSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "relationships", "persons"))
	s.owner = id.UserID(uuid.New())
}

func (s *FamilyTxSuite) TestFailedStepRollsBack() {
	ctx := context.Background()
	boom := errors.New("boom")

	var created id.PersonID
	err := s.runner.RunInTx(ctx, func(stores familyservice.TxStores) error {
		p := &models.Person{Name: "Ghost", Gender: models.GenderUnknown, UserID: s.owner}
		if err := stores.Persons.Create(ctx, p); err != nil {
			return err
		}
		created = p.ID
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = personstore.NewPostgres(s.postgres.DB).FindByID(ctx, created)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *FamilyTxSuite) TestUpdateHealsParentsAndLinksSpouses() {
	ctx := context.Background()
	res, err := s.service.CreateMember(ctx, s.owner, &models.PersonRequest{Name: "Kid"})
	s.Require().NoError(err)
	kid := res.Member.ID

	_, err = s.service.UpdateMember(ctx, s.owner, kid, &models.PersonRequest{
		Name:     "Kid",
		FatherID: models.ParentOf(9001),
		MotherID: models.ParentOf(9002),
	})
	s.Require().NoError(err)

	family, err := s.service.ListFamily(ctx, s.owner)
	s.Require().NoError(err)
	s.Len(family, 3, "two placeholder parents were synthesized")

	got, err := s.service.GetMember(ctx, kid)
	s.Require().NoError(err)
	s.Require().NotNil(got.FatherID)
	s.Require().NotNil(got.MotherID)

	dad, err := s.service.GetMember(ctx, *got.FatherID)
	s.Require().NoError(err)
	s.Equal("Unknown Father", dad.Name)
	s.Equal([]id.PersonID{*got.MotherID}, dad.Pids)

	edges, err := relationshipstore.NewPostgres(s.postgres.DB).Find(ctx, models.RelationshipFilter{})
	s.Require().NoError(err)
	s.Len(edges, 2)
}

func (s *FamilyTxSuite) TestDeleteClearsEdgesAndChildren() {
	ctx := context.Background()
	mom, err := s.service.CreateMember(ctx, s.owner, &models.PersonRequest{Name: "Mom", Gender: "female"})
	s.Require().NoError(err)
	dad, err := s.service.CreateMember(ctx, s.owner, &models.PersonRequest{Name: "Dad", Pids: []id.PersonID{mom.Member.ID}})
	s.Require().NoError(err)
	kid, err := s.service.CreateMember(ctx, s.owner, &models.PersonRequest{
		Name:     "Kid",
		MotherID: models.ParentOf(mom.Member.ID),
		FatherID: models.ParentOf(dad.Member.ID),
	})
	s.Require().NoError(err)

	_, err = s.service.DeleteMember(ctx, mom.Member.ID)
	s.Require().NoError(err)

	got, err := s.service.GetMember(ctx, kid.Member.ID)
	s.Require().NoError(err)
	s.Nil(got.MotherID)
	s.Require().NotNil(got.FatherID)

	d, err := s.service.GetMember(ctx, dad.Member.ID)
	s.Require().NoError(err)
	s.Empty(d.Pids)
}
