package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "familytree/pkg/domain-errors"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, VerifyPassword("correct horse", hash))

	err = VerifyPassword("battery staple", hash)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestHashPasswordRejectsEmptyAndOversize(t *testing.T) {
	_, err := HashPassword("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = HashPassword(strings.Repeat("x", 100))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestTokenMatches(t *testing.T) {
	digest := HashToken("refresh-token")
	assert.Len(t, digest, 64)
	assert.True(t, TokenMatches("refresh-token", digest))
	assert.False(t, TokenMatches("other-token", digest))
}
