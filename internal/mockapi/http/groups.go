package http

import (
	"net/http"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/httpx"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

type GroupsHandler struct {
	Store      store.Store
	LMSService *service.LMSService
}

// List handles GET /groups.
//
//	@Summary		List groups
//	@Tags			Groups
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		lmsclient.Group
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/groups [get].
func (h *GroupsHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Store.Groups().ListGroups(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(groups, toGroup))
}

// Create handles POST /groups.
//
//	@Summary		Create a group
//	@Description	Requires the admin or teacher role.
//	@Tags			Groups
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lmsclient.CreateGroupRequest	true	"Group"
//	@Success		201		{object}	lmsclient.Group
//	@Failure		400	{object}	httpx.ErrorResponse	"Malformed or invalid request"
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		403	{object}	httpx.ErrorResponse	"Role not allowed"
//	@Failure		404	{object}	httpx.ErrorResponse	"Not found"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/groups [post].
func (h *GroupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req lmsclient.CreateGroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed group")
		return
	}

	group, err := h.LMSService.CreateGroup(r.Context(), req.Name, req.CourseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toGroup(group))
}

// AddMembers handles POST /groups/{id}/members.
//
//	@Summary		Add group members
//	@Description	Requires the admin or teacher role.
//	@Tags			Groups
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Group ID"
//	@Param			request	body		lmsclient.AddMembersRequest	true	"User IDs"
//	@Success		200		{object}	lmsclient.Group
//	@Failure		400	{object}	httpx.ErrorResponse	"Malformed or invalid request"
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		403	{object}	httpx.ErrorResponse	"Role not allowed"
//	@Failure		404	{object}	httpx.ErrorResponse	"Not found"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/groups/{id}/members [post].
func (h *GroupsHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	var req lmsclient.AddMembersRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed member list")
		return
	}

	group, err := h.LMSService.AddMembers(r.Context(), r.PathValue("id"), req.UserIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toGroup(group))
}
