package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"familytree/internal/auth/device"
	"familytree/internal/auth/models"
	"familytree/internal/auth/secrets"
	jwttoken "familytree/internal/jwt_token"
	"familytree/internal/platform/metrics"
	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/sentinel"
	"familytree/pkg/requestcontext"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
	SetRefreshTokenHash(ctx context.Context, userID id.UserID, hash *string) error
}

// TokenIssuer signs and verifies access and refresh tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, name string, now time.Time) (string, error)
	GenerateRefreshToken(userID id.UserID, name string, now time.Time) (string, time.Time, error)
	ValidateAccessToken(token string) (*jwttoken.Claims, error)
	ValidateRefreshToken(token string) (*jwttoken.Claims, error)
}

// RevocationList records access tokens invalidated by logout.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

const (
	loginSuccess = "success"
	loginFailure = "failure"
)

var errBadCredentials = dErrors.New(dErrors.CodeUnauthorized, "wrong name or password")

// Service registers users and manages their login sessions.
type Service struct {
	users   UserStore
	tokens  TokenIssuer
	trl     RevocationList
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(users UserStore, tokens TokenIssuer, trl RevocationList, opts ...Option) *Service {
	s := &Service{
		users:  users,
		tokens: tokens,
		trl:    trl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account. Names are unique.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := secrets.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           id.NewUserID(),
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx).UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "name is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}

// Login checks credentials and opens a session. Unknown names and wrong
// passwords produce the same error.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByName(ctx, req.Name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncLoginAttempt(loginFailure)
			return nil, errBadCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := secrets.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.metrics.IncLoginAttempt(loginFailure)
			return nil, errBadCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	now := requestcontext.Now(ctx)
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Name, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	refresh, refreshExpiresAt, err := s.tokens.GenerateRefreshToken(user.ID, user.Name, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue refresh token")
	}
	digest := secrets.HashToken(refresh)
	if err := s.users.SetRefreshTokenHash(ctx, user.ID, &digest); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store refresh token")
	}

	userAgent := requestcontext.UserAgent(ctx)
	s.metrics.IncLoginAttempt(loginSuccess)
	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"device", device.ParseUserAgent(userAgent),
		"device_fingerprint", device.Fingerprint(userAgent),
		"client_ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.Session{
		UserID:           user.ID,
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// Refresh issues a new access token for a refresh token that is valid and
// still the one stored for its user.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "refresh token required")
	}
	user, err := s.userForRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Name, requestcontext.Now(ctx))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	return access, nil
}

// Logout forgets the stored refresh token and revokes accessToken for the
// rest of its lifetime. Unknown or empty tokens are ignored so logout is
// idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if refreshToken != "" {
		user, err := s.userForRefreshToken(ctx, refreshToken)
		switch {
		case err == nil:
			if err := s.users.SetRefreshTokenHash(ctx, user.ID, nil); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear refresh token")
			}
			s.logger.InfoContext(ctx, "user logged out",
				"user_id", user.ID.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
		case dErrors.HasCode(err, dErrors.CodeInternal):
			return err
		}
	}

	if accessToken == "" {
		return nil
	}
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke access token")
	}
	return nil
}

func (s *Service) userForRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "invalid refresh token")
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "invalid refresh token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "invalid refresh token")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if user.RefreshTokenHash == nil || !secrets.TokenMatches(refreshToken, *user.RefreshTokenHash) {
		return nil, dErrors.New(dErrors.CodeForbidden, "refresh token is no longer valid")
	}
	return user, nil
}
