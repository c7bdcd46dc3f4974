package http

import (
	"net/http"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/httpx"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

type QuizzesHandler struct {
	Store      store.Store
	LMSService *service.LMSService
}

// List handles GET /courses/{id}/quizzes.
//
//	@Summary		List a course's quizzes
//	@Tags			Quizzes
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Course ID"
//	@Success		200	{array}		lmsclient.Quiz
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/courses/{id}/quizzes [get].
func (h *QuizzesHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.Store.Quizzes().ListQuizzesByCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(quizzes, toQuiz))
}

// Create handles POST /courses/{id}/quizzes.
//
//	@Summary		Create a quiz
//	@Description	Requires the admin or teacher role.
//	@Tags			Quizzes
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Course ID"
//	@Param			request	body		lmsclient.CreateQuizRequest	true	"Quiz"
//	@Success		201		{object}	lmsclient.Quiz
//	@Failure		400	{object}	httpx.ErrorResponse	"Malformed or invalid request"
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		403	{object}	httpx.ErrorResponse	"Role not allowed"
//	@Failure		404	{object}	httpx.ErrorResponse	"Not found"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/courses/{id}/quizzes [post].
func (h *QuizzesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req lmsclient.CreateQuizRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed quiz")
		return
	}

	quiz, err := h.LMSService.CreateQuiz(r.Context(), r.PathValue("id"), req.Title, fromQuestions(req.Questions))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toQuiz(quiz))
}
