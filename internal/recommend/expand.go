// Package recommend turns a leveled skill profile into the request shapes the
// recommender accepts.
package recommend

import (
	"errors"
	"fmt"

	"github.com/jonathan/skill-pathway/internal/proficiency"
	"github.com/jonathan/skill-pathway/internal/skillid"
	"github.com/jonathan/skill-pathway/internal/types"
)

const (
	// MaxRequestKeys is the recommender's limit on list lengths in one request.
	MaxRequestKeys = 200
	// DefaultTopJobs is used when the caller does not ask for a specific count.
	DefaultTopJobs = 5
)

// ErrEmptyProfile is returned when no skill survives finalization.
var ErrEmptyProfile = errors.New("no skills to recommend from")

// Expand emits each skill's canonical key LegacyLevelWeight(level) times, in input order.
// Skills with an empty key are skipped.
func Expand(skills []types.SelectedSkill) []string {
	total := 0
	for _, s := range skills {
		total += proficiency.LegacyLevelWeight(s.Level)
	}
	keys := make([]string, 0, total)
	for _, s := range skills {
		key := skillid.NormalizeKey(s.Key)
		if key == "" {
			continue
		}
		for n := proficiency.LegacyLevelWeight(s.Level); n > 0; n-- {
			keys = append(keys, key)
		}
	}
	return keys
}

// Leveled converts skills to the recommender's 0-5 form.
func Leveled(skills []types.SelectedSkill) []types.SkillWithLevel {
	out := make([]types.SkillWithLevel, 0, len(skills))
	for _, s := range skills {
		key := skillid.NormalizeKey(s.Key)
		if key == "" {
			continue
		}
		out = append(out, types.SkillWithLevel{SkillKey: key, Level: proficiency.ToLegacyScale(s.Level)})
	}
	return out
}

// BuildJobsRequest builds a validated job recommendation request.
//
// The leveled list is always sent. The expanded key multiset is sent alongside it when it
// fits within MaxRequestKeys; the recommender prefers the leveled list when both are present.
func BuildJobsRequest(skills []types.SelectedSkill, topJobs int) (*types.RecommendJobsRequest, error) {
	if topJobs <= 0 {
		topJobs = DefaultTopJobs
	}
	req := &types.RecommendJobsRequest{
		Skills:  Leveled(skills),
		TopJobs: topJobs,
	}
	if len(req.Skills) == 0 {
		return nil, ErrEmptyProfile
	}
	if expanded := Expand(skills); len(expanded) <= MaxRequestKeys {
		req.SkillKeys = expanded
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend request: %w", err)
	}
	return req, nil
}

// BuildGapsRequest builds a validated major gap request from the profile's distinct keys.
func BuildGapsRequest(skills []types.SelectedSkill) (*types.MajorGapsRequest, error) {
	req := &types.MajorGapsRequest{SkillKeys: make([]string, 0, len(skills))}
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		key := skillid.NormalizeKey(s.Key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		req.SkillKeys = append(req.SkillKeys, key)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gaps request: %w", err)
	}
	return req, nil
}
