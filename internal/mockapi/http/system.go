package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/pkg/httpx"
	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

// LivezHandler always answers 200 while the process is serving.
//
//	@Summary		Liveness
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	lmsclient.HealthResponse
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, lmsclient.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// StatsHandler handles GET /dashboard/stats.
//
//	@Summary		Dashboard counters
//	@Tags			Dashboard
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	lmsclient.DashboardStats
//	@Failure		401	{object}	httpx.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		500	{object}	httpx.ErrorResponse	"Internal server error"
//	@Router			/dashboard/stats [get].
func StatsHandler(lms *service.LMSService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := lms.Stats(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, lmsclient.DashboardStats{
			Courses: stats.Courses,
			Groups:  stats.Groups,
			Users:   stats.Users,
			Quizzes: stats.Quizzes,
		})
	}
}
