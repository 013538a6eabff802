// Package models defines the core data structures for step-tracking
// profiles, entries, and team-wide state.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used everywhere: ISO-8601,
// no time component.
const DateLayout = "2006-01-02"

// ErrInvalidInput marks user input rejected before any mutation.
var ErrInvalidInput = errors.New("invalid input")

// StepEntry is a single logged step count for one calendar date.
type StepEntry struct {
	// Date is the calendar date in YYYY-MM-DD form.
	Date string `json:"date"`
	// Steps is the non-negative step count for that date.
	Steps int `json:"steps"`
}

// Validate checks the entry's date format and step range.
func (e StepEntry) Validate() error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: malformed date %q", ErrInvalidInput, e.Date)
	}
	if e.Steps < 0 {
		return fmt.Errorf("%w: negative steps %d", ErrInvalidInput, e.Steps)
	}
	return nil
}

// UserProfile is the persisted record for one tracked user,
// stored as a single blob keyed by name.
type UserProfile struct {
	// Name identifies the profile; it is the storage key suffix and is
	// not serialized into the blob.
	Name string `json:"-"`
	// WeeklyGoal is the target step count for a Monday-Sunday week.
	WeeklyGoal int `json:"weeklyGoal"`
	// Entries is the append-only list of logged step counts.
	// Multiple entries may share a date; aggregation sums them all.
	Entries []StepEntry `json:"entries"`
}

// Validate checks the whole profile, including every entry.
func (p *UserProfile) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if p.WeeklyGoal < 0 {
		return fmt.Errorf("%w: negative weekly goal %d", ErrInvalidInput, p.WeeklyGoal)
	}
	for i, e := range p.Entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// ValidateName rejects empty or whitespace-only profile names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidInput)
	}
	return nil
}

// WeeklyTeamGoal is a team-wide step target pinned to the week it was set in.
type WeeklyTeamGoal struct {
	// Goal is the target total team steps for the week.
	Goal int `json:"goal"`
	// WeekStart is the Monday (YYYY-MM-DD) of the week the goal applies to.
	WeekStart string `json:"weekStart"`
}

// Challenge is a long-running team step challenge.
type Challenge struct {
	// Active reports whether the challenge is still running.
	Active bool `json:"active"`
	// TeamGoal is the total step target for the whole challenge.
	TeamGoal int `json:"teamGoal"`
	// StartDate is the first counted date (YYYY-MM-DD).
	StartDate string `json:"startDate"`
	// EndDate is set when the challenge is ended; entries past it no longer count.
	EndDate string `json:"endDate,omitempty"`
	// TargetEndDate is an optional planned finish date used for pace hints.
	TargetEndDate string `json:"targetEndDate,omitempty"`
}

// TeamState holds all team-wide settings, stored as one blob under a
// reserved key separate from the profile namespace.
type TeamState struct {
	// Announcement is a free-form message shown to the whole team.
	Announcement string `json:"announcement,omitempty"`
	// WeeklyGoal is the current weekly team goal, if any.
	WeeklyGoal *WeeklyTeamGoal `json:"weeklyGoal,omitempty"`
	// Challenge is the current or most recent challenge, if any.
	Challenge *Challenge `json:"challenge,omitempty"`
}

// Backup is a full snapshot of the store, suitable for download and restore.
type Backup struct {
	// ID uniquely identifies the snapshot.
	ID string `json:"id"`
	// CreatedAt is the snapshot time in RFC 3339 form.
	CreatedAt string `json:"createdAt"`
	// Profiles maps profile name to its stored record.
	Profiles map[string]*UserProfile `json:"profiles"`
	// Team is the team-wide state at snapshot time.
	Team *TeamState `json:"team,omitempty"`
}
