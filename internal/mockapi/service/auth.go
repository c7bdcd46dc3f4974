package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/cryptox"
	"github.com/aussiebroadwan/lmsconsole/pkg/idx"
	"github.com/aussiebroadwan/lmsconsole/pkg/jwtx"
	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// DefaultRefreshTokenTTL is how long a refresh token can be exchanged.
const DefaultRefreshTokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	Store      store.Store
	Signer     *jwtx.Signer
	Hasher     *cryptox.Hasher
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login checks email and password and starts a new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, domain.User, error) {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.User{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.User{}, ErrInvalidCredentials
		}
		return nil, domain.User{}, err
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		l.Info("login rejected", "user_id", user.ID)
		return nil, domain.User{}, ErrInvalidCredentials
	}

	now := s.now()
	access, err := s.signAccess(user, now)
	if err != nil {
		return nil, domain.User{}, err
	}

	refreshOpaque, refresh, err := s.newRefreshToken(user.ID, now)
	if err != nil {
		return nil, domain.User{}, err
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, refresh); err != nil {
		return nil, domain.User{}, err
	}

	l.Info("login succeeded", "user_id", user.ID, "role", user.Role)
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
	}, user, nil
}

// Refresh exchanges a refresh token for a new access token and rotates the
// refresh token. Presenting an already rotated token revokes every session
// of its user.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, domain.User, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	if refreshOpaque == "" {
		return nil, domain.User{}, ErrInvalidRefresh
	}

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.User{}, ErrInvalidRefresh
		}
		return nil, domain.User{}, err
	}

	if rt.Revoked {
		l.Warn("revoked refresh token reused, revoking user sessions", "user_id", rt.UserID)
		if err := s.Store.RefreshTokens().RevokeUserRefreshTokens(ctx, rt.UserID); err != nil {
			return nil, domain.User{}, err
		}
		return nil, domain.User{}, ErrInvalidRefresh
	}
	if !rt.Active(now) {
		return nil, domain.User{}, ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.User{}, ErrInvalidRefresh
		}
		return nil, domain.User{}, err
	}

	access, err := s.signAccess(user, now)
	if err != nil {
		return nil, domain.User{}, err
	}

	nextOpaque, next, err := s.newRefreshToken(user.ID, now)
	if err != nil {
		return nil, domain.User{}, err
	}
	if err := s.Store.RefreshTokens().RotateRefreshToken(ctx, fp, next); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost a race against a concurrent rotation of the same token.
			return nil, domain.User{}, ErrInvalidRefresh
		}
		return nil, domain.User{}, err
	}

	l.Debug("refresh token rotated", "user_id", user.ID)
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: nextOpaque,
		ExpiresIn:    s.AccessTTL,
	}, user, nil
}

// Logout revokes the given refresh token, or every refresh token of userID
// when none is given. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, userID, refreshOpaque string) error {
	if refreshOpaque == "" {
		return s.Store.RefreshTokens().RevokeUserRefreshTokens(ctx, userID)
	}

	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshOpaque))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// Me returns the user behind an access token subject.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

func (s *AuthService) signAccess(u domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		u.ID,        // subject
		u.Email,     // email
		u.Role,      // role
		u.Name,      // display name
		s.Issuer,    // issuer
		s.AccessTTL, // token lifetime
		now,         // current time
	)
	return s.Signer.Sign(claims)
}

func (s *AuthService) newRefreshToken(userID string, now time.Time) (string, domain.RefreshToken, error) {
	tok, err := cryptox.NewOpaqueToken()
	if err != nil {
		return "", domain.RefreshToken{}, err
	}

	ttl := s.RefreshTTL
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}

	return tok.Value, domain.RefreshToken{
		ID:        idx.NewPrefixed("rt").String(),
		UserID:    userID,
		TokenHash: tok.Fingerprint,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
