package remote

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the tenant and actor the agent sells on behalf of.
type Identity struct {
	BusinessID string
	UserID     string
}

// IdentityFromToken extracts identity from the backend access token's
// claims (sub → user, business_id → tenant). The parse is deliberately
// unverified: the agent is not the token's audience, the backend verifies
// the signature on every call.
func IdentityFromToken(accessToken string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return Identity{}, fmt.Errorf("remote: parse access token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("remote: access token missing sub claim")
	}
	// business_id is optional here — deployments whose tokens lack the claim
	// configure the tenant explicitly instead.
	businessID, _ := claims["business_id"].(string)
	return Identity{BusinessID: businessID, UserID: sub}, nil
}
