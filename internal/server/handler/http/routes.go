// Package http provides HTTP routing and middleware configuration
// for the steptrack service.
package http

import (
	"net/http"

	"github.com/avelichka/steptrack/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// steptrack API. It applies content-type enforcement and request logging,
// and mounts the profile and team endpoints under /api.
//
// Routes:
//
//	PUT    /api/profiles/{name}          → profileHandler.Save
//	DELETE /api/profiles/{name}          → profileHandler.Reset
//	POST   /api/profiles/{name}/entries  → profileHandler.AddEntry
//	GET    /api/profiles/{name}/dashboard→ profileHandler.Dashboard
//	GET    /api/profiles/{name}/export   → profileHandler.Export
//	POST   /api/profiles/{name}/import   → profileHandler.Import
//	GET    /api/team/leaderboard         → teamHandler.Leaderboard
//	GET    /api/team/stats               → teamHandler.Stats
//	GET/PUT /api/team/goal               → teamHandler.WeeklyGoal / SetWeeklyGoal
//	GET/POST /api/team/challenge         → teamHandler.Challenge / StartChallenge
//	POST   /api/team/challenge/end       → teamHandler.EndChallenge
//	GET/PUT /api/team/announcement       → teamHandler.Announcement / SetAnnouncement
//	GET    /api/team/backup              → teamHandler.Backup
//	POST   /api/team/restore             → teamHandler.Restore
//	GET    /api/team/members             → teamHandler.Members
//	DELETE /api/team/members             → teamHandler.ClearAll
//	DELETE /api/team/members/{name}      → teamHandler.RemoveMember
func NewRouter(
	profileHandler *ProfileHandler,
	teamHandler *TeamHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow JSON bodies, plus CSV for the import endpoint
	r.Use(chiMiddleware.AllowContentType("application/json", "text/csv"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/profiles/{name}", func(r chi.Router) {
			r.Put("/", profileHandler.Save)
			r.Delete("/", profileHandler.Reset)
			r.Post("/entries", profileHandler.AddEntry)
			r.Get("/dashboard", profileHandler.Dashboard)
			r.Get("/export", profileHandler.Export)
			r.Post("/import", profileHandler.Import)
		})

		r.Route("/team", func(r chi.Router) {
			r.Get("/leaderboard", teamHandler.Leaderboard)
			r.Get("/stats", teamHandler.Stats)
			r.Get("/goal", teamHandler.WeeklyGoal)
			r.Put("/goal", teamHandler.SetWeeklyGoal)
			r.Get("/challenge", teamHandler.Challenge)
			r.Post("/challenge", teamHandler.StartChallenge)
			r.Post("/challenge/end", teamHandler.EndChallenge)
			r.Get("/announcement", teamHandler.Announcement)
			r.Put("/announcement", teamHandler.SetAnnouncement)
			r.Get("/backup", teamHandler.Backup)
			r.Post("/restore", teamHandler.Restore)
			r.Get("/members", teamHandler.Members)
			r.Delete("/members", teamHandler.ClearAll)
			r.Delete("/members/{name}", teamHandler.RemoveMember)
		})
	})

	return r
}
