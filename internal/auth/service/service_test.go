package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"familytree/internal/auth/models"
	"familytree/internal/auth/service/mocks"
	"familytree/internal/auth/store/revocation"
	"familytree/internal/auth/store/user"
	jwttoken "familytree/internal/jwt_token"
	"familytree/internal/platform/metrics"
	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	users   *user.InMemoryUserStore
	tokens  *jwttoken.JWTService
	trl     *revocation.InMemoryTRL
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.users = user.New()
	s.tokens = jwttoken.NewJWTService(jwttoken.Config{
		AccessKey:  "access",
		RefreshKey: "refresh",
		Issuer:     "familytree",
		Audience:   "familytree-web",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	s.trl = revocation.NewInMemoryTRL()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.users, s.tokens, s.trl, WithMetrics(s.metrics))
}

func (s *ServiceSuite) register(name, password string) *models.User {
	u, err := s.service.Register(context.Background(), &models.RegisterRequest{
		Name:         name,
		Password:     password,
		ConfPassword: password,
	})
	s.Require().NoError(err)
	return u
}

func (s *ServiceSuite) TestRegister() {
	ctx := context.Background()

	s.Run("stores a hashed password", func() {
		u := s.register("ada", "password1")
		stored, err := s.users.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		s.NotEqual("password1", stored.PasswordHash)
		s.Nil(stored.RefreshTokenHash)
	})

	s.Run("duplicate name is a conflict", func() {
		_, err := s.service.Register(ctx, &models.RegisterRequest{Name: "ADA", Password: "password1", ConfPassword: "password1"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("mismatched confirmation is a validation error", func() {
		_, err := s.service.Register(ctx, &models.RegisterRequest{Name: "bob", Password: "password1", ConfPassword: "password2"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure is internal", func() {
		ctrl := gomock.NewController(s.T())
		store := mocks.NewMockUserStore(ctrl)
		store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
		svc := New(store, s.tokens, s.trl)

		_, err := svc.Register(ctx, &models.RegisterRequest{Name: "carl", Password: "password1", ConfPassword: "password1"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestLogin() {
	ctx := requestcontext.WithClientMetadata(context.Background(), "10.0.0.7",
		"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	u := s.register("ada", "password1")

	s.Run("valid credentials open a session", func() {
		session, err := s.service.Login(ctx, &models.LoginRequest{Name: "ada", Password: "password1"})
		s.Require().NoError(err)
		s.Equal(u.ID, session.UserID)
		s.NotEmpty(session.AccessToken)
		s.NotEmpty(session.RefreshToken)
		s.True(session.RefreshExpiresAt.After(time.Now()))

		claims, err := s.tokens.ValidateAccessToken(session.AccessToken)
		s.Require().NoError(err)
		s.Equal(u.ID.String(), claims.UserID)
		s.Equal("ada", claims.Name)

		stored, err := s.users.FindByID(ctx, u.ID)
		s.Require().NoError(err)
		s.Require().NotNil(stored.RefreshTokenHash)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.LoginAttempts.WithLabelValues("success")))
	})

	s.Run("wrong password and unknown user look the same", func() {
		_, errPassword := s.service.Login(ctx, &models.LoginRequest{Name: "ada", Password: "nope-nope"})
		_, errUser := s.service.Login(ctx, &models.LoginRequest{Name: "ghost", Password: "password1"})
		s.True(dErrors.HasCode(errPassword, dErrors.CodeUnauthorized))
		s.Equal(errPassword.Error(), errUser.Error())
		s.Equal(float64(2), testutil.ToFloat64(s.metrics.LoginAttempts.WithLabelValues("failure")))
	})
}

func (s *ServiceSuite) TestRefresh() {
	ctx := context.Background()
	s.register("ada", "password1")
	session, err := s.service.Login(ctx, &models.LoginRequest{Name: "ada", Password: "password1"})
	s.Require().NoError(err)

	s.Run("current refresh token yields an access token", func() {
		access, err := s.service.Refresh(ctx, session.RefreshToken)
		s.Require().NoError(err)
		claims, err := s.tokens.ValidateAccessToken(access)
		s.Require().NoError(err)
		s.Equal(session.UserID.String(), claims.UserID)
	})

	s.Run("missing token is unauthorized", func() {
		_, err := s.service.Refresh(ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("garbage token is forbidden", func() {
		_, err := s.service.Refresh(ctx, "not-a-jwt")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("superseded token is forbidden", func() {
		_, err := s.service.Login(ctx, &models.LoginRequest{Name: "ada", Password: "password1"})
		s.Require().NoError(err)
		_, err = s.service.Refresh(ctx, session.RefreshToken)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestLogout() {
	ctx := context.Background()
	s.register("ada", "password1")
	session, err := s.service.Login(ctx, &models.LoginRequest{Name: "ada", Password: "password1"})
	s.Require().NoError(err)
	claims, err := s.tokens.ValidateAccessToken(session.AccessToken)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(ctx, session.RefreshToken, session.AccessToken))

	stored, err := s.users.FindByID(ctx, session.UserID)
	s.Require().NoError(err)
	s.Nil(stored.RefreshTokenHash)

	revoked, err := s.trl.IsTokenRevoked(ctx, claims.ID)
	s.Require().NoError(err)
	s.True(revoked)

	_, err = s.service.Refresh(ctx, session.RefreshToken)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	s.Run("is idempotent", func() {
		s.NoError(s.service.Logout(ctx, session.RefreshToken, session.AccessToken))
		s.NoError(s.service.Logout(ctx, "", ""))
	})
}

func (s *ServiceSuite) TestLogoutRevocationFailure() {
	ctrl := gomock.NewController(s.T())
	trl := mocks.NewMockRevocationList(ctrl)
	svc := New(s.users, s.tokens, trl)
	access, err := s.tokens.GenerateAccessToken(id.UserID(uuid.New()), "ada", time.Now())
	s.Require().NoError(err)

	trl.EXPECT().RevokeToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	err = svc.Logout(context.Background(), "", access)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
