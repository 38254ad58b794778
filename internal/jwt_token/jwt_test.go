package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "familytree/pkg/domain"
	dErrors "familytree/pkg/domain-errors"
)

var testConfig = Config{
	AccessKey:  "test-access-key",
	RefreshKey: "test-refresh-key",
	Issuer:     "test-issuer",
	Audience:   "test-audience",
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 24 * time.Hour,
}

var userID = id.UserID(uuid.New())

func Test_GenerateAccessToken(t *testing.T) {
	svc := NewJWTService(testConfig)
	now := time.Now()

	token, err := svc.GenerateAccessToken(userID, "ada", now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ada", claims.Name)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, now.Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func Test_RefreshTokenUsesSeparateKey(t *testing.T) {
	svc := NewJWTService(testConfig)
	now := time.Now()

	refresh, expiresAt, err := svc.GenerateRefreshToken(userID, "ada", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(24*time.Hour), expiresAt, time.Second)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)

	_, err = svc.ValidateAccessToken(refresh)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	access, err := svc.GenerateAccessToken(userID, "ada", now)
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(access)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	svc := NewJWTService(testConfig)
	_, err := svc.ValidateAccessToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	svc := NewJWTService(testConfig)
	token, err := svc.GenerateAccessToken(userID, "ada", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token has expired")
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	issuer := NewJWTService(testConfig)
	other := testConfig
	other.Audience = "someone-else"
	verifier := NewJWTService(other)

	token, err := issuer.GenerateAccessToken(userID, "ada", time.Now())
	require.NoError(t, err)
	_, err = verifier.ValidateAccessToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ClockOverride(t *testing.T) {
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewJWTService(testConfig, WithClock(func() time.Time { return issued.Add(time.Minute) }))

	token, err := svc.GenerateAccessToken(userID, "ada", issued)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(token)
	assert.NoError(t, err)
}

func Test_Adapter(t *testing.T) {
	svc := NewJWTService(testConfig)
	token, err := svc.GenerateAccessToken(userID, "ada", time.Now())
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(svc).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ada", claims.Name)
	assert.NotEmpty(t, claims.JTI)
	assert.False(t, claims.ExpiresAt.IsZero())
}
