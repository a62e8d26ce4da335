package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	Init("test-secret", 5, 1)

	token, err := GenerateAccessToken("user-1")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, SubjectAccessToken, claims.Subject)
	assert.Empty(t, claims.TokenID)
}

func TestRefreshTokenCarriesTokenID(t *testing.T) {
	Init("test-secret", 5, 1)

	token, tokenID, err := GenerateRefreshToken("user-2")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, SubjectRefreshToken, claims.Subject)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	Init("secret-a", 5, 1)
	token, err := GenerateAccessToken("user-3")
	require.NoError(t, err)

	Init("secret-b", 5, 1)
	_, err = ParseToken(token)
	assert.Error(t, err)
}
