package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/avelichka/steptrack/internal/models"
)

const (
	// keyPrefix namespaces all profile blobs.
	keyPrefix = "step-tracker:"
	// teamKey is the reserved key for team-wide state. It sits outside
	// the profile prefix so Names never reports it.
	teamKey = "step-tracker-team:state"
)

// ProfileKey returns the storage key for a profile name.
func ProfileKey(name string) string {
	return keyPrefix + name
}

// ProfileStore persists UserProfile and TeamState records over any KV,
// validating decoded blobs before handing them to callers.
type ProfileStore struct {
	kv KV
}

// NewProfileStore wraps the given KV.
func NewProfileStore(kv KV) *ProfileStore {
	return &ProfileStore{kv: kv}
}

// Load fetches the profile stored for name. It returns ErrNotFound when
// the name has never been saved and ErrCorrupt when the stored blob does
// not decode into a valid profile.
func (s *ProfileStore) Load(ctx context.Context, name string) (*models.UserProfile, error) {
	data, err := s.kv.Get(ctx, ProfileKey(name))
	if err != nil {
		return nil, err
	}
	var p models.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: profile %q: %v", ErrCorrupt, name, err)
	}
	p.Name = name
	if p.Entries == nil {
		p.Entries = []models.StepEntry{}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: profile %q: %v", ErrCorrupt, name, err)
	}
	return &p, nil
}

// Save validates and persists the profile under its name key.
func (s *ProfileStore) Save(ctx context.Context, p *models.UserProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Entries == nil {
		p.Entries = []models.StepEntry{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", p.Name, err)
	}
	return s.kv.Put(ctx, ProfileKey(p.Name), data)
}

// Delete removes the stored profile for name. A subsequent Load returns
// ErrNotFound.
func (s *ProfileStore) Delete(ctx context.Context, name string) error {
	return s.kv.Delete(ctx, ProfileKey(name))
}

// Names lists all stored profile names, sorted.
func (s *ProfileStore) Names(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, keyPrefix))
	}
	return names, nil
}

// LoadTeam fetches the team-wide state. An absent record yields an empty
// state, never an error.
func (s *ProfileStore) LoadTeam(ctx context.Context) (*models.TeamState, error) {
	data, err := s.kv.Get(ctx, teamKey)
	if errors.Is(err, ErrNotFound) {
		return &models.TeamState{}, nil
	}
	if err != nil {
		return nil, err
	}
	var ts models.TeamState
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("%w: team state: %v", ErrCorrupt, err)
	}
	return &ts, nil
}

// SaveTeam persists the team-wide state.
func (s *ProfileStore) SaveTeam(ctx context.Context, ts *models.TeamState) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("encode team state: %w", err)
	}
	return s.kv.Put(ctx, teamKey, data)
}
