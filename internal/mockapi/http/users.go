package http

import (
	"net/http"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/httpx"
)

type UsersHandler struct {
	Store store.Store
}

// List handles GET /users.
//
//	@Summary		List users
//	@Description	Requires the admin or teacher role.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		lmsclient.User
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		403	{object}	httpx.ErrorResponse	"Role not allowed"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/users [get].
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.Users().ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(users, toUser))
}

// Get handles GET /users/{id}.
//
//	@Summary		Get a user
//	@Description	Requires the admin or teacher role.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	lmsclient.User
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		403	{object}	httpx.ErrorResponse	"Role not allowed"
//	@Failure		404	{object}	httpx.ErrorResponse	"Not found"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/users/{id} [get].
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Store.Users().GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}
