package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/pkg/httpx"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

// RefreshCookieName carries the refresh token for browser-style clients
// that keep it out of reach of scripts.
const RefreshCookieName = "lms_refresh"

type AuthHandler struct {
	AuthService *service.AuthService
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login handles POST /auth/login.
//
//	@Summary		Log in
//	@Description	Exchanges email and password for an access token and a refresh token. The refresh token is also set as the lms_refresh cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lmsclient.LoginRequest	true	"Credentials"
//	@Success		200		{object}	lmsclient.LoginResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	httpx.ErrorResponse	"Wrong email or password"
//	@Failure		429		{object}	httpx.ErrorResponse	"Too many attempts"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/auth/login [post].
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req lmsclient.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed login request")
		return
	}

	pair, user, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is wrong")
			return
		}
		log.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "login failed")
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, lmsclient.LoginResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Role:         user.Role,
		User:         toUser(user),
	})
}

// Refresh handles POST /auth/refresh. The refresh token is read from the
// JSON body and falls back to the refresh cookie.
//
//	@Summary		Refresh the access token
//	@Description	Rotates the refresh token. Presenting a token that was already rotated revokes every refresh token of the user.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		refreshTokenRequest	false	"Refresh token, optional when the cookie is sent"
//	@Success		200		{object}	lmsclient.RefreshResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	httpx.ErrorResponse	"Refresh token invalid, expired or revoked"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	refreshOpaque, ok := refreshTokenFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed refresh request")
		return
	}

	pair, _, err := h.AuthService.Refresh(ctx, refreshOpaque)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			clearRefreshCookie(w)
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_refresh_token", "refresh token is invalid or expired")
			return
		}
		log.Error("refresh failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "refresh failed")
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, lmsclient.RefreshResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout handles POST /auth/logout.
//
//	@Summary		Log out
//	@Description	Revokes the presented refresh token, or every refresh token of the user when none is sent.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	refreshTokenRequest	false	"Refresh token to revoke"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorResponse	"Malformed request"
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/auth/logout [post].
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshOpaque, ok := refreshTokenFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed logout request")
		return
	}

	if err := h.AuthService.Logout(ctx, httpx.SubjectFromContext(ctx), refreshOpaque); err != nil {
		writeServiceError(w, r, err)
		return
	}

	clearRefreshCookie(w)
	httpx.WriteNoContent(w)
}

// Me handles GET /auth/me.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	lmsclient.User
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		404	{object}	httpx.ErrorResponse	"Not found"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/auth/me [get].
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.AuthService.Me(ctx, httpx.SubjectFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}

// refreshTokenFrom reads {"refreshToken": ...} from the body, falling back to
// the refresh cookie. An empty body is fine; a malformed one is not.
func refreshTokenFrom(r *http.Request) (string, bool) {
	var req refreshTokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return "", false
	}
	if req.RefreshToken != "" {
		return req.RefreshToken, true
	}
	if c, err := r.Cookie(RefreshCookieName); err == nil {
		return c.Value, true
	}
	return "", true
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, value string) {
	ttl := h.AuthService.RefreshTTL
	if ttl <= 0 {
		ttl = service.DefaultRefreshTokenTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/auth",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
