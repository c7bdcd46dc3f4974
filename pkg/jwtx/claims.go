package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/lmsconsole/pkg/idx"
)

// DefaultAccessTokenTTL is how long a console access token lives unless the
// mock server is configured otherwise.
const DefaultAccessTokenTTL = 15 * time.Minute

// Claims carried by console access tokens. Email and Role are what the
// console shows in whoami; Role also drives RequireRole on the server.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`
}

// NewAccessClaims stamps iat and nbf at now and exp at now+ttl. The jti is a
// ULID so tokens issued by one server sort by issue time.
func NewAccessClaims(subject, email, role, name, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.NewAt(now).String(),
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  role,
		Name:  name,
	}
}

// HasRole reports whether the token grants any of roles.
func (c *Claims) HasRole(roles ...string) bool {
	return c.Role != "" && slices.Contains(roles, c.Role)
}

// Validate checks iss (skipped when issuer is empty) and the exp/nbf window,
// widened by leeway on both ends.
func (c *Claims) Validate(now time.Time, issuer string, leeway time.Duration) error {
	if issuer != "" && c.Issuer != issuer {
		return ErrIssuer
	}
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
