package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/lmsconsole/api/lmsmock" // Swagger docs
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/httpx"
	"github.com/aussiebroadwan/lmsconsole/pkg/jwtx"
	"github.com/aussiebroadwan/lmsconsole/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	LMSService  *service.LMSService

	// LoginLimit throttles POST /auth/login per client IP and email.
	LoginLimit httpx.RateLimitConfig
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		LoginLimit:   httpx.LoginLimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerCourses()
	r.registerGroups()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			LMS Mock API
//	@version		0.1.0
//	@description	Stand-in for the LMS backend the admin console talks to. Access tokens are
//	@description	short-lived EdDSA JWTs; refresh tokens are opaque and rotate on every use.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/lmsconsole
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed wraps h so it only runs for a valid bearer token, and only for the
// given roles when any are listed.
func (r *Router) authed(h http.HandlerFunc, roles ...string) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}
	if len(roles) > 0 {
		mws = append(mws, httpx.RequireRole(roles...))
	}
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.Login),
			httpx.RateLimitLogin(r.LoginLimit),
		),
	)

	// Refresh is authenticated by the refresh token, never by the
	// (expired) access token.
	r.Mux.HandleFunc("POST /auth/refresh", h.Refresh)

	r.Mux.Handle("POST /auth/logout", r.authed(h.Logout))
	r.Mux.Handle("GET /auth/me", r.authed(h.Me))
}

func (r *Router) registerCourses() {
	courses := &CoursesHandler{Store: r.store, LMSService: r.LMSService}
	quizzes := &QuizzesHandler{Store: r.store, LMSService: r.LMSService}

	r.Mux.Handle("GET /courses", r.authed(courses.List))
	r.Mux.Handle("POST /courses", r.authed(courses.Create, domain.RoleAdmin))
	r.Mux.Handle("GET /courses/{id}", r.authed(courses.Get))
	r.Mux.Handle("PUT /courses/{id}", r.authed(courses.Update, domain.RoleAdmin, domain.RoleTeacher))
	r.Mux.Handle("DELETE /courses/{id}", r.authed(courses.Delete, domain.RoleAdmin))

	r.Mux.Handle("GET /courses/{id}/quizzes", r.authed(quizzes.List))
	r.Mux.Handle("POST /courses/{id}/quizzes", r.authed(quizzes.Create, domain.RoleAdmin, domain.RoleTeacher))
}

func (r *Router) registerGroups() {
	h := &GroupsHandler{Store: r.store, LMSService: r.LMSService}

	r.Mux.Handle("GET /groups", r.authed(h.List))
	r.Mux.Handle("POST /groups", r.authed(h.Create, domain.RoleAdmin, domain.RoleTeacher))
	r.Mux.Handle("POST /groups/{id}/members", r.authed(h.AddMembers, domain.RoleAdmin, domain.RoleTeacher))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Store: r.store}

	r.Mux.Handle("GET /users", r.authed(h.List, domain.RoleAdmin, domain.RoleTeacher))
	r.Mux.Handle("GET /users/{id}", r.authed(h.Get, domain.RoleAdmin, domain.RoleTeacher))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /dashboard/stats", r.authed(StatsHandler(r.LMSService)))
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
}
