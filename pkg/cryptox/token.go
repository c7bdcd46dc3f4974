package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// TokenSize256 is 32 random bytes, 43 characters once encoded.
const TokenSize256 = 32

// OpaqueToken is a bearer secret handed to a client together with the
// fingerprint the server keeps in its place.
type OpaqueToken struct {
	Value       string
	Fingerprint string
}

// NewOpaqueToken draws a TokenSize256 secret and fingerprints it.
func NewOpaqueToken() (OpaqueToken, error) {
	value, err := GenerateToken(TokenSize256)
	if err != nil {
		return OpaqueToken{}, err
	}
	return OpaqueToken{Value: value, Fingerprint: FingerprintToken(value)}, nil
}

// GenerateToken returns size random bytes as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken is the unpadded base64url SHA-256 of token. Lookups go by
// fingerprint, so the server never stores a usable refresh token.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
