package lmsclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what can be read from a JWT session token without
// verifying it. The client never trusts these values for access decisions;
// they are for display (whoami) only.
type TokenClaims struct {
	Subject   string
	Issuer    string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type sessionClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ErrOpaqueToken is returned by ParseTokenClaims for tokens that are not JWTs.
var ErrOpaqueToken = errors.New("lmsclient: session token is not a JWT")

// ParseTokenClaims decodes the claims of a JWT session token without
// checking its signature.
func ParseTokenClaims(token string) (*TokenClaims, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	out := &TokenClaims{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
