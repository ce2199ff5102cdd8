package remote

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestIdentityFromToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub":         "user-1",
		"business_id": "biz-1",
	})

	id, err := IdentityFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "biz-1", id.BusinessID)
}

func TestIdentityFromToken_BusinessIDClaimOptional(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "user-1"})

	id, err := IdentityFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Empty(t, id.BusinessID)
}

func TestIdentityFromToken_MissingSub(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"business_id": "biz-1"})

	_, err := IdentityFromToken(token)
	assert.Error(t, err)
}

func TestIdentityFromToken_Garbage(t *testing.T) {
	_, err := IdentityFromToken("not-a-jwt")
	assert.Error(t, err)
}
