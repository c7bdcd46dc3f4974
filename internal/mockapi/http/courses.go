package http

import (
	"net/http"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/httpx"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

type CoursesHandler struct {
	Store      store.Store
	LMSService *service.LMSService
}

// List handles GET /courses.
//
//	@Summary		List courses
//	@Tags			Courses
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		lmsclient.Course
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/courses [get].
func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Store.Courses().ListCourses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(courses, toCourse))
}

// Get handles GET /courses/{id}.
//
//	@Summary		Get a course
//	@Tags			Courses
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Course ID"
//	@Success		200	{object}	lmsclient.Course
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		404	{object}	httpx.ErrorResponse	"Not found"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/courses/{id} [get].
func (h *CoursesHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.Store.Courses().GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCourse(course))
}

// Create handles POST /courses.
//
//	@Summary		Create a course
//	@Description	Requires the admin role.
//	@Tags			Courses
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lmsclient.CreateCourseRequest	true	"Course"
//	@Success		201		{object}	lmsclient.Course
//	@Failure		400	{object}	httpx.ErrorResponse	"Malformed or invalid request"
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		403	{object}	httpx.ErrorResponse	"Role not allowed"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/courses [post].
func (h *CoursesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req lmsclient.CreateCourseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed course")
		return
	}

	course, err := h.LMSService.CreateCourse(r.Context(), req.Title, req.Description, req.Published)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCourse(course))
}

// Update handles PUT /courses/{id}.
//
//	@Summary		Update a course
//	@Description	Only the fields present are changed. Requires the admin or teacher role.
//	@Tags			Courses
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Course ID"
//	@Param			request	body		lmsclient.UpdateCourseRequest	true	"Fields to change"
//	@Success		200		{object}	lmsclient.Course
//	@Failure		400	{object}	httpx.ErrorResponse	"Malformed or invalid request"
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		403	{object}	httpx.ErrorResponse	"Role not allowed"
//	@Failure		404	{object}	httpx.ErrorResponse	"Not found"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/courses/{id} [put].
func (h *CoursesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req lmsclient.UpdateCourseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed course update")
		return
	}

	course, err := h.LMSService.UpdateCourse(r.Context(), r.PathValue("id"), service.CoursePatch{
		Title:       req.Title,
		Description: req.Description,
		Published:   req.Published,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCourse(course))
}

// Delete handles DELETE /courses/{id}.
//
//	@Summary		Delete a course
//	@Description	Deletes the course together with its groups and quizzes. Requires the admin role.
//	@Tags			Courses
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Course ID"
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		403	{object}	httpx.ErrorResponse	"Role not allowed"
//	@Failure		404	{object}	httpx.ErrorResponse	"Not found"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/courses/{id} [delete].
func (h *CoursesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Courses().DeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteNoContent(w)
}
