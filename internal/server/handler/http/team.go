package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelichka/steptrack/internal/models"
	"github.com/avelichka/steptrack/internal/service"
	"github.com/avelichka/steptrack/internal/storage"
)

// TeamService defines the interface for team-wide operations required by
// the TeamHandler.
type TeamService interface {
	Leaderboard(ctx context.Context, period string, today time.Time) ([]service.LeaderboardRow, error)
	Stats(ctx context.Context, today time.Time) (*service.TeamStats, error)
	SetWeeklyGoal(ctx context.Context, goal int, today time.Time) error
	WeeklyGoalProgress(ctx context.Context, today time.Time) (*service.TeamGoalProgress, error)
	StartChallenge(ctx context.Context, teamGoal int, startDate, targetEndDate string) error
	EndChallenge(ctx context.Context, endDate string) error
	Challenge(ctx context.Context, today time.Time) (*service.ChallengeProgress, error)
	Announcement(ctx context.Context) (string, error)
	SetAnnouncement(ctx context.Context, text string) error
	Backup(ctx context.Context) (*models.Backup, error)
	Restore(ctx context.Context, b *models.Backup) error
	Members(ctx context.Context) ([]string, error)
	RemoveMember(ctx context.Context, name string) error
	ClearAll(ctx context.Context) error
}

// TeamHandler handles HTTP requests for team-wide views and settings.
type TeamHandler struct {
	Service TeamService
}

// Leaderboard handles GET /api/team/leaderboard?period=today|week&date=.
func (h *TeamHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	today, err := refDate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "week"
	}
	rows, err := h.Service.Leaderboard(r.Context(), period, today)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, rows)
}

// Stats handles GET /api/team/stats?date=.
func (h *TeamHandler) Stats(w http.ResponseWriter, r *http.Request) {
	today, err := refDate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.Service.Stats(r.Context(), today)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, stats)
}

// SetWeeklyGoalRequest is the JSON payload for setting the weekly team goal.
type SetWeeklyGoalRequest struct {
	Goal int `json:"goal"`
}

// SetWeeklyGoal handles PUT /api/team/goal.
func (h *TeamHandler) SetWeeklyGoal(w http.ResponseWriter, r *http.Request) {
	var req SetWeeklyGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.SetWeeklyGoal(r.Context(), req.Goal, time.Now()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// WeeklyGoal handles GET /api/team/goal?date=.
func (h *TeamHandler) WeeklyGoal(w http.ResponseWriter, r *http.Request) {
	today, err := refDate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	progress, err := h.Service.WeeklyGoalProgress(r.Context(), today)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "no weekly team goal set", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, progress)
}

// StartChallengeRequest is the JSON payload for starting a challenge.
type StartChallengeRequest struct {
	TeamGoal      int    `json:"teamGoal"`
	StartDate     string `json:"startDate"`
	TargetEndDate string `json:"targetEndDate,omitempty"`
}

// StartChallenge handles POST /api/team/challenge.
func (h *TeamHandler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	var req StartChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.StartChallenge(r.Context(), req.TeamGoal, req.StartDate, req.TargetEndDate); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// EndChallengeRequest is the JSON payload for ending the active challenge.
type EndChallengeRequest struct {
	EndDate string `json:"endDate"`
}

// EndChallenge handles POST /api/team/challenge/end.
func (h *TeamHandler) EndChallenge(w http.ResponseWriter, r *http.Request) {
	var req EndChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.EndChallenge(r.Context(), req.EndDate); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// Challenge handles GET /api/team/challenge?date=.
func (h *TeamHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	today, err := refDate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	progress, err := h.Service.Challenge(r.Context(), today)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "no challenge configured", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, progress)
}

// Announcement handles GET /api/team/announcement.
func (h *TeamHandler) Announcement(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Service.Announcement(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": msg})
}

// SetAnnouncementRequest is the JSON payload for the team announcement.
type SetAnnouncementRequest struct {
	Message string `json:"message"`
}

// SetAnnouncement handles PUT /api/team/announcement.
func (h *TeamHandler) SetAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req SetAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.SetAnnouncement(r.Context(), req.Message); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// Backup handles GET /api/team/backup, returning a full store snapshot.
func (h *TeamHandler) Backup(w http.ResponseWriter, r *http.Request) {
	b, err := h.Service.Backup(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="steps-backup.json"`)
	writeJSON(w, b)
}

// Restore handles POST /api/team/restore with a snapshot body, replacing
// the store's contents.
func (h *TeamHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var b models.Backup
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.Restore(r.Context(), &b); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// Members handles GET /api/team/members.
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	names, err := h.Service.Members(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

// RemoveMember handles DELETE /api/team/members/{name}.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveMember(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// ClearAll handles DELETE /api/team/members, removing every profile.
func (h *TeamHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
