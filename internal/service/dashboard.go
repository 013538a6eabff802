// Package service provides the orchestration layer: dashboard operations
// over one profile and team-wide operations over the whole store. Services
// hold no state of their own; every operation loads from the injected
// repository, applies the pure week/csvcodec transforms, and saves back.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelichka/steptrack/internal/csvcodec"
	"github.com/avelichka/steptrack/internal/models"
	"github.com/avelichka/steptrack/internal/storage"
	"github.com/avelichka/steptrack/internal/week"
)

// ProfileRepository defines the persistence operations required by the
// DashboardService.
type ProfileRepository interface {
	// Load fetches the profile for name, or storage.ErrNotFound.
	Load(ctx context.Context, name string) (*models.UserProfile, error)
	// Save validates and persists the profile.
	Save(ctx context.Context, p *models.UserProfile) error
	// Delete removes the stored profile for name.
	Delete(ctx context.Context, name string) error
}

// DashboardService implements the per-profile operations: save profile,
// add entry, weekly dashboard, CSV export/import, and reset.
type DashboardService struct {
	// repo performs the data-layer operations.
	repo ProfileRepository
}

// NewDashboardService constructs a DashboardService using the provided
// repository.
func NewDashboardService(repo ProfileRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// Dashboard is the weekly aggregate view for one profile.
type Dashboard struct {
	// Name is the profile the view belongs to.
	Name string `json:"name"`
	// WeekStart and WeekEnd bound the Monday-Sunday week containing the
	// reference date, inclusive.
	WeekStart string `json:"weekStart"`
	WeekEnd   string `json:"weekEnd"`
	// Total is the step sum over the week.
	Total int `json:"total"`
	// Goal is the profile's weekly goal.
	Goal int `json:"goal"`
	// Percent is Total/Goal*100, 0 when no goal is set, uncapped.
	Percent float64 `json:"percent"`
}

// SaveProfile creates the profile on first save (with empty entries) or
// updates the weekly goal of an existing one, and returns the saved record.
func (s *DashboardService) SaveProfile(ctx context.Context, name string, goal int) (*models.UserProfile, error) {
	if err := models.ValidateName(name); err != nil {
		return nil, err
	}
	if goal < 0 {
		return nil, fmt.Errorf("%w: negative weekly goal %d", models.ErrInvalidInput, goal)
	}
	p, err := s.loadOrInit(ctx, name)
	if err != nil {
		return nil, err
	}
	p.WeeklyGoal = goal
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddEntry validates and appends one step entry to the profile, creating
// the profile if it does not exist yet. Entries for an already-logged date
// are kept alongside the old ones; aggregation sums them.
func (s *DashboardService) AddEntry(ctx context.Context, name, date string, steps int) error {
	if err := models.ValidateName(name); err != nil {
		return err
	}
	entry := models.StepEntry{Date: date, Steps: steps}
	if err := entry.Validate(); err != nil {
		return err
	}
	p, err := s.loadOrInit(ctx, name)
	if err != nil {
		return err
	}
	p.Entries = append(p.Entries, entry)
	return s.repo.Save(ctx, p)
}

// ComputeDashboard loads the profile and aggregates the week containing
// today. An unknown name surfaces storage.ErrNotFound.
func (s *DashboardService) ComputeDashboard(ctx context.Context, name string, today time.Time) (*Dashboard, error) {
	if err := models.ValidateName(name); err != nil {
		return nil, err
	}
	p, err := s.repo.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	start, end := week.BoundsFor(today)
	total := week.Total(p.Entries, start, end)
	return &Dashboard{
		Name:      name,
		WeekStart: start.Format(models.DateLayout),
		WeekEnd:   end.Format(models.DateLayout),
		Total:     total,
		Goal:      p.WeeklyGoal,
		Percent:   week.PercentOfGoal(total, p.WeeklyGoal),
	}, nil
}

// ExportCSV renders the profile's entries as CSV text in list order.
func (s *DashboardService) ExportCSV(ctx context.Context, name string) (string, error) {
	if err := models.ValidateName(name); err != nil {
		return "", err
	}
	p, err := s.repo.Load(ctx, name)
	if err != nil {
		return "", err
	}
	return csvcodec.Encode(p.Entries), nil
}

// ImportCSV parses the whole document first and only then appends the
// parsed entries, so a bad line never leaves a partial import behind.
// It returns the number of entries applied.
func (s *DashboardService) ImportCSV(ctx context.Context, name, text string) (int, error) {
	if err := models.ValidateName(name); err != nil {
		return 0, err
	}
	entries, err := csvcodec.Decode(text)
	if err != nil {
		return 0, err
	}
	p, err := s.loadOrInit(ctx, name)
	if err != nil {
		return 0, err
	}
	p.Entries = append(p.Entries, entries...)
	if err := s.repo.Save(ctx, p); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Reset removes the stored profile entirely; a subsequent load reports the
// name as absent.
func (s *DashboardService) Reset(ctx context.Context, name string) error {
	if err := models.ValidateName(name); err != nil {
		return err
	}
	return s.repo.Delete(ctx, name)
}

// loadOrInit returns the stored profile or a fresh empty one for name.
func (s *DashboardService) loadOrInit(ctx context.Context, name string) (*models.UserProfile, error) {
	p, err := s.repo.Load(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.UserProfile{Name: name, Entries: []models.StepEntry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
