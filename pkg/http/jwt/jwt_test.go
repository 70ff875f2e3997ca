package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenAndParseToken(t *testing.T) {
	aToken, rToken, err := GenToken("u001", "role_admin", []byte(testSecret), 30, 60)
	require.NoError(t, err)
	require.NotEmpty(t, aToken)
	require.NotEmpty(t, rToken)

	claims, err := ParseToken(aToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u001", claims.UserId)
	assert.Equal(t, "role_admin", claims.RoleId)
	assert.Equal(t, issUser, claims.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	aToken, _, err := GenToken("u001", "role_guest", []byte(testSecret), 30, 60)
	require.NoError(t, err)

	_, err = ParseToken(aToken, "another-secret")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	_, rToken, err := GenToken("u001", "role_member", []byte(testSecret), 30, 60)
	require.NoError(t, err)

	newAccess, err := RefreshToken(testSecret, "u001", "role_member", rToken, 30)
	require.NoError(t, err)

	claims, err := ParseToken(newAccess, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "role_member", claims.RoleId)
}

func TestRefreshTokenInvalid(t *testing.T) {
	_, err := RefreshToken(testSecret, "u001", "role_member", "not-a-token", 30)
	assert.Error(t, err)
}
