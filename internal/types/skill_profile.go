// Package types provides type definitions for the skill profile, onboarding record and
// recommendation payloads shared across the engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SelectedSkill is one entry of a user's skill profile.
// Key is always canonical (see skillid.NormalizeKey); an empty Label means unresolved.
type SelectedSkill struct {
	Key   string  `json:"key" validate:"required"`
	Label string  `json:"label"`
	Level float64 `json:"level" validate:"gte=0,lte=10"`
}

// MappedSkillSuggestion is a skill level inferred from an academic subject and grade.
type MappedSkillSuggestion struct {
	Key     string  `json:"key"`
	Label   string  `json:"label,omitempty"`
	Level   float64 `json:"level"`
	Subject string  `json:"subject,omitempty"`
}

// SkillCandidate is a single skill returned by the subject-to-skill lookup.
// RawLevel is whatever scale the backend emitted (0-5 or 0-10).
type SkillCandidate struct {
	Key      string  `json:"skill_key"`
	Label    string  `json:"name,omitempty"`
	RawLevel float64 `json:"level"`
}

// SkillSearchResult is a candidate returned by free-text skill search.
type SkillSearchResult struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Source string `json:"source,omitempty"`
}

// ExtractedSkill is a skill mention found in free text by the extraction backend.
type ExtractedSkill struct {
	Name string `json:"skill_name"`
	ID   string `json:"skill_id,omitempty"`
}
