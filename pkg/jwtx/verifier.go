package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Verifier validates a token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EdDSAVerifier validates tokens signed by a Signer.
type EdDSAVerifier struct {
	pub    ed25519.PublicKey
	issuer string
	leeway time.Duration

	// now is replaced in tests
	now func() time.Time
}

var _ Verifier = (*EdDSAVerifier)(nil)

// NewVerifier creates a verifier for tokens signed with pub's private key.
// An empty issuer accepts any issuer.
func NewVerifier(pub ed25519.PublicKey, issuer string, leeway time.Duration) *EdDSAVerifier {
	return &EdDSAVerifier{pub: pub, issuer: issuer, leeway: leeway, now: time.Now}
}

// WithClock replaces the time source used for expiry checks.
func (v *EdDSAVerifier) WithClock(now func() time.Time) *EdDSAVerifier {
	v.now = now
	return v
}

// Verify checks signature, issuer and expiry.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		// Expiry is checked below so it maps onto ErrExpired.
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return v.pub, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := claims.Validate(v.now().UTC(), v.issuer, v.leeway); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
