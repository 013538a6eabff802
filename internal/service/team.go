package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avelichka/steptrack/internal/models"
	"github.com/avelichka/steptrack/internal/storage"
	"github.com/avelichka/steptrack/internal/week"
)

// TeamRepository defines the persistence operations required by the
// TeamService.
type TeamRepository interface {
	// Names lists all stored profile names, sorted.
	Names(ctx context.Context) ([]string, error)
	// Load fetches the profile for name, or storage.ErrNotFound.
	Load(ctx context.Context, name string) (*models.UserProfile, error)
	// Save validates and persists the profile.
	Save(ctx context.Context, p *models.UserProfile) error
	// Delete removes the stored profile for name.
	Delete(ctx context.Context, name string) error
	// LoadTeam fetches the team-wide state (empty state when absent).
	LoadTeam(ctx context.Context) (*models.TeamState, error)
	// SaveTeam persists the team-wide state.
	SaveTeam(ctx context.Context, ts *models.TeamState) error
}

// TeamService implements the team-wide operations: leaderboard, stats,
// weekly team goal, challenge, announcement, backup/restore, and member
// management.
type TeamService struct {
	repo TeamRepository
}

// NewTeamService constructs a TeamService using the provided repository.
func NewTeamService(repo TeamRepository) *TeamService {
	return &TeamService{repo: repo}
}

// LeaderboardRow is one member's standing for a period.
type LeaderboardRow struct {
	Name  string `json:"name"`
	Steps int    `json:"steps"`
	// Goal is the member's weekly goal; for the "today" period the
	// percent is computed against a one-seventh share of it.
	Goal    int     `json:"goal"`
	Percent float64 `json:"percent"`
}

// Leaderboard ranks all members by steps for the given period, "today" or
// "week" (the Monday-Sunday week containing today). Ties break by name.
func (s *TeamService) Leaderboard(ctx context.Context, period string, today time.Time) ([]LeaderboardRow, error) {
	if period != "today" && period != "week" {
		return nil, fmt.Errorf("%w: unknown period %q", models.ErrInvalidInput, period)
	}
	profiles, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	start, end := week.BoundsFor(today)
	todayStr := today.Format(models.DateLayout)

	rows := make([]LeaderboardRow, 0, len(profiles))
	for _, p := range profiles {
		row := LeaderboardRow{Name: p.Name, Goal: p.WeeklyGoal}
		if period == "today" {
			row.Steps = week.TotalOn(p.Entries, todayStr)
			row.Percent = week.PercentOfGoal(row.Steps, p.WeeklyGoal/7)
		} else {
			row.Steps = week.Total(p.Entries, start, end)
			row.Percent = week.PercentOfGoal(row.Steps, p.WeeklyGoal)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Steps != rows[j].Steps {
			return rows[i].Steps > rows[j].Steps
		}
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}

// TeamStats is the aggregate team view.
type TeamStats struct {
	Members          int `json:"members"`
	ActiveToday      int `json:"activeToday"`
	ActiveThisWeek   int `json:"activeThisWeek"`
	StepsToday       int `json:"stepsToday"`
	StepsThisWeek    int `json:"stepsThisWeek"`
	StepsAllTime     int `json:"stepsAllTime"`
	GoalsMetThisWeek int `json:"goalsMetThisWeek"`
	// LongestStreak and AverageStreak count consecutive days ending today
	// with any steps logged.
	LongestStreak int `json:"longestStreak"`
	AverageStreak int `json:"averageStreak"`
}

// Stats computes team-wide aggregates for the week containing today.
func (s *TeamService) Stats(ctx context.Context, today time.Time) (*TeamStats, error) {
	profiles, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	start, end := week.BoundsFor(today)
	todayStr := today.Format(models.DateLayout)

	stats := &TeamStats{Members: len(profiles)}
	streakSum := 0
	for _, p := range profiles {
		dayTotal := week.TotalOn(p.Entries, todayStr)
		weekTotal := week.Total(p.Entries, start, end)

		stats.StepsToday += dayTotal
		stats.StepsThisWeek += weekTotal
		stats.StepsAllTime += week.TotalAll(p.Entries)
		if dayTotal > 0 {
			stats.ActiveToday++
		}
		if weekTotal > 0 {
			stats.ActiveThisWeek++
		}
		if p.WeeklyGoal > 0 && weekTotal >= p.WeeklyGoal {
			stats.GoalsMetThisWeek++
		}

		streak := week.Streak(p.Entries, today)
		streakSum += streak
		if streak > stats.LongestStreak {
			stats.LongestStreak = streak
		}
	}
	if stats.Members > 0 {
		stats.AverageStreak = streakSum / stats.Members
	}
	return stats, nil
}

// TeamGoalProgress reports the current week's team total against the
// weekly team goal.
type TeamGoalProgress struct {
	Goal      int     `json:"goal"`
	WeekStart string  `json:"weekStart"`
	WeekEnd   string  `json:"weekEnd"`
	Steps     int     `json:"steps"`
	Percent   float64 `json:"percent"`
}

// SetWeeklyGoal records a team goal for the week containing today.
func (s *TeamService) SetWeeklyGoal(ctx context.Context, goal int, today time.Time) error {
	if goal < 0 {
		return fmt.Errorf("%w: negative team goal %d", models.ErrInvalidInput, goal)
	}
	ts, err := s.repo.LoadTeam(ctx)
	if err != nil {
		return err
	}
	start, _ := week.BoundsFor(today)
	ts.WeeklyGoal = &models.WeeklyTeamGoal{
		Goal:      goal,
		WeekStart: start.Format(models.DateLayout),
	}
	return s.repo.SaveTeam(ctx, ts)
}

// WeeklyGoalProgress returns the team's progress against the weekly goal
// for the week containing today. storage.ErrNotFound means no goal is set.
func (s *TeamService) WeeklyGoalProgress(ctx context.Context, today time.Time) (*TeamGoalProgress, error) {
	ts, err := s.repo.LoadTeam(ctx)
	if err != nil {
		return nil, err
	}
	if ts.WeeklyGoal == nil {
		return nil, fmt.Errorf("weekly team goal: %w", storage.ErrNotFound)
	}
	start, end := week.BoundsFor(today)
	total, err := s.teamTotalBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &TeamGoalProgress{
		Goal:      ts.WeeklyGoal.Goal,
		WeekStart: start.Format(models.DateLayout),
		WeekEnd:   end.Format(models.DateLayout),
		Steps:     total,
		Percent:   week.PercentOfGoal(total, ts.WeeklyGoal.Goal),
	}, nil
}

// StartChallenge begins a team challenge. Only one challenge runs at a
// time; targetEndDate may be empty.
func (s *TeamService) StartChallenge(ctx context.Context, teamGoal int, startDate, targetEndDate string) error {
	if teamGoal <= 0 {
		return fmt.Errorf("%w: challenge goal must be positive", models.ErrInvalidInput)
	}
	if _, err := time.Parse(models.DateLayout, startDate); err != nil {
		return fmt.Errorf("%w: malformed start date %q", models.ErrInvalidInput, startDate)
	}
	if targetEndDate != "" {
		if _, err := time.Parse(models.DateLayout, targetEndDate); err != nil {
			return fmt.Errorf("%w: malformed target end date %q", models.ErrInvalidInput, targetEndDate)
		}
	}
	ts, err := s.repo.LoadTeam(ctx)
	if err != nil {
		return err
	}
	if ts.Challenge != nil && ts.Challenge.Active {
		return fmt.Errorf("%w: a challenge is already active", models.ErrInvalidInput)
	}
	ts.Challenge = &models.Challenge{
		Active:        true,
		TeamGoal:      teamGoal,
		StartDate:     startDate,
		TargetEndDate: targetEndDate,
	}
	return s.repo.SaveTeam(ctx, ts)
}

// EndChallenge marks the active challenge as finished on endDate. All step
// data is kept.
func (s *TeamService) EndChallenge(ctx context.Context, endDate string) error {
	if _, err := time.Parse(models.DateLayout, endDate); err != nil {
		return fmt.Errorf("%w: malformed end date %q", models.ErrInvalidInput, endDate)
	}
	ts, err := s.repo.LoadTeam(ctx)
	if err != nil {
		return err
	}
	if ts.Challenge == nil || !ts.Challenge.Active {
		return fmt.Errorf("%w: no active challenge", models.ErrInvalidInput)
	}
	ts.Challenge.Active = false
	ts.Challenge.EndDate = endDate
	return s.repo.SaveTeam(ctx, ts)
}

// ChallengeProgress reports team progress through a challenge, with a pace
// hint while the challenge is still running.
type ChallengeProgress struct {
	Challenge models.Challenge `json:"challenge"`
	Steps     int              `json:"steps"`
	Percent   float64          `json:"percent"`
	// DaysLeft and StepsPerDayNeeded are set when a target end date lies
	// ahead; DaysIn and AvgStepsPerDay otherwise. All zero once ended.
	DaysLeft          int     `json:"daysLeft,omitempty"`
	StepsPerDayNeeded int     `json:"stepsPerDayNeeded,omitempty"`
	DaysIn            int     `json:"daysIn,omitempty"`
	AvgStepsPerDay    float64 `json:"avgStepsPerDay,omitempty"`
}

// Challenge returns progress for the configured challenge, counting steps
// from its start date through its end date or today, whichever is earlier
// set. storage.ErrNotFound means no challenge has ever been started.
func (s *TeamService) Challenge(ctx context.Context, today time.Time) (*ChallengeProgress, error) {
	ts, err := s.repo.LoadTeam(ctx)
	if err != nil {
		return nil, err
	}
	if ts.Challenge == nil {
		return nil, fmt.Errorf("challenge: %w", storage.ErrNotFound)
	}
	c := *ts.Challenge

	start, _ := time.Parse(models.DateLayout, c.StartDate)
	end := today
	if c.EndDate != "" {
		end, _ = time.Parse(models.DateLayout, c.EndDate)
	}
	total, err := s.teamTotalBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	progress := &ChallengeProgress{
		Challenge: c,
		Steps:     total,
		Percent:   week.PercentOfGoal(total, c.TeamGoal),
	}
	if c.Active {
		s.fillPace(progress, start, today, total)
	}
	return progress, nil
}

// fillPace computes the pace hint for a running challenge.
func (s *TeamService) fillPace(p *ChallengeProgress, start, today time.Time, total int) {
	c := p.Challenge
	remaining := c.TeamGoal - total
	if remaining < 0 {
		remaining = 0
	}
	if c.TargetEndDate != "" {
		target, err := time.Parse(models.DateLayout, c.TargetEndDate)
		if err == nil && !target.Before(today) {
			p.DaysLeft = daysBetween(today, target)
			if p.DaysLeft > 0 {
				p.StepsPerDayNeeded = remaining / p.DaysLeft
			} else {
				p.StepsPerDayNeeded = remaining
			}
			return
		}
	}
	p.DaysIn = daysBetween(start, today)
	if p.DaysIn == 0 {
		p.DaysIn = 1
	}
	p.AvgStepsPerDay = float64(total) / float64(p.DaysIn)
}

// Announcement returns the current team-wide message, possibly empty.
func (s *TeamService) Announcement(ctx context.Context) (string, error) {
	ts, err := s.repo.LoadTeam(ctx)
	if err != nil {
		return "", err
	}
	return ts.Announcement, nil
}

// SetAnnouncement stores the team-wide message, trimmed. An empty message
// clears it.
func (s *TeamService) SetAnnouncement(ctx context.Context, text string) error {
	ts, err := s.repo.LoadTeam(ctx)
	if err != nil {
		return err
	}
	ts.Announcement = strings.TrimSpace(text)
	return s.repo.SaveTeam(ctx, ts)
}

// Backup snapshots the whole store: every profile plus the team state.
func (s *TeamService) Backup(ctx context.Context) (*models.Backup, error) {
	profiles, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	ts, err := s.repo.LoadTeam(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*models.UserProfile, len(profiles))
	for _, p := range profiles {
		byName[p.Name] = p
	}
	return &models.Backup{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Profiles:  byName,
		Team:      ts,
	}, nil
}

// Restore replaces the store's contents with the backup: profiles absent
// from the backup are removed, profiles present are overwritten, and the
// team state is replaced when the backup carries one. The backup is
// validated in full before anything is written.
func (s *TeamService) Restore(ctx context.Context, b *models.Backup) error {
	if b == nil || b.Profiles == nil {
		return fmt.Errorf("%w: backup has no profiles", models.ErrInvalidInput)
	}
	for name, p := range b.Profiles {
		if p == nil {
			return fmt.Errorf("%w: backup profile %q is empty", models.ErrInvalidInput, name)
		}
		p.Name = name
		if err := p.Validate(); err != nil {
			return fmt.Errorf("backup profile %q: %w", name, err)
		}
	}

	existing, err := s.repo.Names(ctx)
	if err != nil {
		return err
	}
	for _, name := range existing {
		if _, ok := b.Profiles[name]; !ok {
			if err := s.repo.Delete(ctx, name); err != nil {
				return err
			}
		}
	}
	for _, p := range b.Profiles {
		if err := s.repo.Save(ctx, p); err != nil {
			return err
		}
	}
	if b.Team != nil {
		return s.repo.SaveTeam(ctx, b.Team)
	}
	return nil
}

// Members lists all stored profile names.
func (s *TeamService) Members(ctx context.Context) ([]string, error) {
	return s.repo.Names(ctx)
}

// RemoveMember deletes one member's stored profile.
func (s *TeamService) RemoveMember(ctx context.Context, name string) error {
	if err := models.ValidateName(name); err != nil {
		return err
	}
	return s.repo.Delete(ctx, name)
}

// ClearAll deletes every stored profile. Team state is kept.
func (s *TeamService) ClearAll(ctx context.Context) error {
	names, err := s.repo.Names(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.repo.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// loadAll fetches every stored profile in name order.
func (s *TeamService) loadAll(ctx context.Context) ([]*models.UserProfile, error) {
	names, err := s.repo.Names(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]*models.UserProfile, 0, len(names))
	for _, name := range names {
		p, err := s.repo.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// teamTotalBetween sums all members' steps in [start, end] inclusive.
func (s *TeamService) teamTotalBetween(ctx context.Context, start, end time.Time) (int, error) {
	profiles, err := s.loadAll(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, p := range profiles {
		total += week.Total(p.Entries, start, end)
	}
	return total, nil
}

// daysBetween returns whole days from a to b at date granularity.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	a = time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	b = time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
