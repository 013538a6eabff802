// Package http provides HTTP handlers for profile and team operations.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelichka/steptrack/internal/csvcodec"
	"github.com/avelichka/steptrack/internal/models"
	"github.com/avelichka/steptrack/internal/service"
	"github.com/avelichka/steptrack/internal/storage"
)

// DashboardService defines the interface for per-profile operations
// required by the ProfileHandler.
type DashboardService interface {
	// SaveProfile creates or updates the profile's weekly goal.
	SaveProfile(ctx context.Context, name string, goal int) (*models.UserProfile, error)
	// AddEntry appends one validated step entry.
	AddEntry(ctx context.Context, name, date string, steps int) error
	// ComputeDashboard aggregates the week containing today.
	ComputeDashboard(ctx context.Context, name string, today time.Time) (*service.Dashboard, error)
	// ExportCSV renders the profile's entries as CSV text.
	ExportCSV(ctx context.Context, name string) (string, error)
	// ImportCSV parses and appends entries, all or nothing.
	ImportCSV(ctx context.Context, name, text string) (int, error)
	// Reset removes the stored profile.
	Reset(ctx context.Context, name string) error
}

// ProfileHandler handles HTTP requests for one profile's data.
type ProfileHandler struct {
	// Service performs the underlying dashboard operations.
	Service DashboardService
}

// SaveProfileRequest is the JSON payload for creating or updating a profile.
type SaveProfileRequest struct {
	// WeeklyGoal is the target step count for a Monday-Sunday week.
	WeeklyGoal int `json:"weeklyGoal"`
}

// Save handles PUT /api/profiles/{name}.
// It creates the profile on first save and updates the weekly goal.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	p, err := h.Service.SaveProfile(r.Context(), chi.URLParam(r, "name"), req.WeeklyGoal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"name":       p.Name,
		"weeklyGoal": p.WeeklyGoal,
		"entries":    len(p.Entries),
	})
}

// AddEntryRequest is the JSON payload for logging steps.
type AddEntryRequest struct {
	// Date is the calendar date in YYYY-MM-DD form.
	Date string `json:"date"`
	// Steps is the non-negative step count.
	Steps int `json:"steps"`
}

// AddEntry handles POST /api/profiles/{name}/entries.
func (h *ProfileHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.AddEntry(r.Context(), chi.URLParam(r, "name"), req.Date, req.Steps); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// Dashboard handles GET /api/profiles/{name}/dashboard?date=YYYY-MM-DD.
// The date defaults to today.
func (h *ProfileHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	today, err := refDate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.Service.ComputeDashboard(r.Context(), chi.URLParam(r, "name"), today)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view)
}

// Export handles GET /api/profiles/{name}/export, returning the entries as
// a CSV download.
func (h *ProfileHandler) Export(w http.ResponseWriter, r *http.Request) {
	text, err := h.Service.ExportCSV(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="steps.csv"`)
	_, _ = io.WriteString(w, text)
}

// Import handles POST /api/profiles/{name}/import with a CSV body.
// A malformed document is rejected as a whole, naming the bad line.
func (h *ProfileHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	n, err := h.Service.ImportCSV(r.Context(), chi.URLParam(r, "name"), string(body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"imported": n})
}

// Reset handles DELETE /api/profiles/{name}, removing the stored profile.
func (h *ProfileHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Reset(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// refDate reads the optional ?date= query parameter, defaulting to now.
func refDate(r *http.Request) (time.Time, error) {
	q := r.URL.Query().Get("date")
	if q == "" {
		return time.Now(), nil
	}
	d, err := time.Parse(models.DateLayout, q)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q", models.ErrInvalidInput, q)
	}
	return d, nil
}

// writeJSON writes v as an application/json response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service error kinds onto HTTP statuses: invalid input
// and CSV parse failures are 400, absent records 404, anything else is a
// storage failure.
func writeError(w http.ResponseWriter, err error) {
	var parseErr *csvcodec.ParseError
	switch {
	case errors.As(err, &parseErr):
		http.Error(w, parseErr.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "profile not found", http.StatusNotFound)
	default:
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
	}
}
