package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a JWT token.
// UserID is the identifier issued by the external sign-in provider.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}
