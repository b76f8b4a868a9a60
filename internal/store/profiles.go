package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/skill-pathway/internal/logging"
	"github.com/jonathan/skill-pathway/internal/proficiency"
	"github.com/jonathan/skill-pathway/internal/schemas"
	"github.com/jonathan/skill-pathway/internal/types"
)

// Profiles is the typed view over a ProfileStore. Unusable stored values are logged and
// read as absent; only store failures are returned as errors.
type Profiles struct {
	store  ProfileStore
	logger *logging.Logger
}

// NewProfiles creates a Profiles repository over s.
func NewProfiles(s ProfileStore, logger *logging.Logger) *Profiles {
	return &Profiles{store: s, logger: logging.OrNop(logger).With("component", "profiles")}
}

// LoadProfile returns the stored onboarding profile, or nil when none is usable.
func (p *Profiles) LoadProfile(ctx context.Context) (*types.OnboardingProfile, error) {
	var profile types.OnboardingProfile
	ok, err := p.loadJSON(ctx, KeyOnboardingProfile, schemas.OnboardingProfile, &profile)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile replaces the stored onboarding profile.
func (p *Profiles) SaveProfile(ctx context.Context, profile *types.OnboardingProfile) error {
	if profile == nil {
		return p.store.Clear(ctx, KeyOnboardingProfile)
	}
	return p.saveJSON(ctx, KeyOnboardingProfile, profile)
}

// LoadSkills returns the stored skill profile, empty when none is usable.
// Entries that cannot be read are dropped one by one; legacy level tags are mapped
// onto the grid.
func (p *Profiles) LoadSkills(ctx context.Context) ([]types.SelectedSkill, error) {
	var entries []json.RawMessage
	ok, err := p.loadJSON(ctx, KeySelectedSkills, schemas.SelectedSkills, &entries)
	if err != nil {
		return nil, err
	}
	skills := make([]types.SelectedSkill, 0, len(entries))
	if !ok {
		return skills, nil
	}
	for i, raw := range entries {
		skill, err := decodeSkill(raw)
		if err != nil {
			p.logger.Warn("ignoring stored skill", "key", KeySelectedSkills, "index", i,
				"error", &DecodeError{Key: KeySelectedSkills, Cause: err})
			continue
		}
		skills = append(skills, skill)
	}
	return skills, nil
}

type storedSkill struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Level any    `json:"level"`
}

func decodeSkill(raw json.RawMessage) (types.SelectedSkill, error) {
	if err := schemas.ValidateBytes(schemas.SelectedSkill, raw); err != nil {
		return types.SelectedSkill{}, err
	}
	var stored storedSkill
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&stored); err != nil {
		return types.SelectedSkill{}, err
	}
	return types.SelectedSkill{
		Key:   stored.Key,
		Label: stored.Label,
		Level: proficiency.CoerceLevel(stored.Level, 0),
	}, nil
}

// SaveSkills replaces the stored skill profile.
func (p *Profiles) SaveSkills(ctx context.Context, skills []types.SelectedSkill) error {
	if skills == nil {
		skills = []types.SelectedSkill{}
	}
	return p.saveJSON(ctx, KeySelectedSkills, skills)
}

// LoadSelection returns the stored job and major choices.
func (p *Profiles) LoadSelection(ctx context.Context) (types.PathwaySelection, error) {
	var sel types.PathwaySelection
	job, err := p.loadItem(ctx, KeySelectedJob)
	if err != nil {
		return sel, err
	}
	major, err := p.loadItem(ctx, KeySelectedMajor)
	if err != nil {
		return sel, err
	}
	sel.Job, sel.Major = job, major
	return sel, nil
}

// SaveJob stores the chosen job. A nil item clears it.
func (p *Profiles) SaveJob(ctx context.Context, item *types.PathwayItem) error {
	return p.saveItem(ctx, KeySelectedJob, item)
}

// SaveMajor stores the chosen major. A nil item clears it.
func (p *Profiles) SaveMajor(ctx context.Context, item *types.PathwayItem) error {
	return p.saveItem(ctx, KeySelectedMajor, item)
}

// Completed reports whether the onboarding completed sentinel is set.
func (p *Profiles) Completed(ctx context.Context) (bool, error) {
	raw, ok, err := p.store.Load(ctx, KeyCompleted)
	if err != nil || !ok {
		return false, err
	}
	switch strings.Trim(strings.TrimSpace(string(raw)), `"`) {
	case "true", "1":
		return true, nil
	default:
		return false, nil
	}
}

// MarkCompleted sets the onboarding completed sentinel.
func (p *Profiles) MarkCompleted(ctx context.Context) error {
	return p.store.Save(ctx, KeyCompleted, []byte("true"))
}

// LastStep returns the stored manual resume marker, or "".
func (p *Profiles) LastStep(ctx context.Context) (string, error) {
	raw, ok, err := p.store.Load(ctx, KeyLastStep)
	if err != nil || !ok {
		return "", err
	}
	var step string
	if err := json.Unmarshal(raw, &step); err != nil {
		return strings.TrimSpace(string(raw)), nil
	}
	return step, nil
}

// SetLastStep stores the manual resume marker. An empty step clears it.
func (p *Profiles) SetLastStep(ctx context.Context, step string) error {
	if strings.TrimSpace(step) == "" {
		return p.store.Clear(ctx, KeyLastStep)
	}
	return p.saveJSON(ctx, KeyLastStep, step)
}

// StartJobSearch clears the job and major so the pathway starts over.
func (p *Profiles) StartJobSearch(ctx context.Context) error {
	return errors.Join(
		p.store.Clear(ctx, KeySelectedJob),
		p.store.Clear(ctx, KeySelectedMajor),
	)
}

// Reset clears every persisted key.
func (p *Profiles) Reset(ctx context.Context) error {
	errs := make([]error, 0, len(AllKeys))
	for _, key := range AllKeys {
		errs = append(errs, p.store.Clear(ctx, key))
	}
	return errors.Join(errs...)
}

func (p *Profiles) loadItem(ctx context.Context, key string) (*types.PathwayItem, error) {
	var item types.PathwayItem
	ok, err := p.loadJSON(ctx, key, schemas.PathwayItem, &item)
	if err != nil || !ok {
		return nil, err
	}
	return &item, nil
}

func (p *Profiles) saveItem(ctx context.Context, key string, item *types.PathwayItem) error {
	if item == nil || strings.TrimSpace(item.ID) == "" {
		return p.store.Clear(ctx, key)
	}
	return p.saveJSON(ctx, key, item)
}

// loadJSON decodes key into out. It reports false when the key is absent or unusable.
func (p *Profiles) loadJSON(ctx context.Context, key, schema string, out any) (bool, error) {
	raw, ok, err := p.store.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok || len(strings.TrimSpace(string(raw))) == 0 {
		return false, nil
	}

	if schema != "" {
		if err := schemas.ValidateBytes(schema, raw); err != nil {
			p.logger.Warn("ignoring stored value", "key", key, "error", &DecodeError{Key: key, Cause: err})
			return false, nil
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		p.logger.Warn("ignoring stored value", "key", key, "error", &DecodeError{Key: key, Cause: err})
		return false, nil
	}
	return true, nil
}

func (p *Profiles) saveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := p.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
