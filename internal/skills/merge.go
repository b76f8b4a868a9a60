// Package skills builds a user's skill profile from explicit picks, academic mapping and
// free-text extraction, and keeps its labels resolved.
package skills

import (
	"github.com/jonathan/skill-pathway/internal/proficiency"
	"github.com/jonathan/skill-pathway/internal/skillid"
	"github.com/jonathan/skill-pathway/internal/types"
)

// SourceKind names where a batch of skills came from.
type SourceKind string

const (
	SourceExplicit  SourceKind = "explicit"
	SourceAcademic  SourceKind = "academic"
	SourceExtracted SourceKind = "extracted"
	SourceProfile   SourceKind = "profile"
)

// SkillSource is one batch of skill signals to merge.
type SkillSource struct {
	Kind   SourceKind
	Skills []types.SelectedSkill
}

// Merge combines sources into one profile keyed by canonical key.
//
// Levels only ever go up: an existing entry is replaced only by a strictly higher level.
// An unresolved label is upgraded whenever a later signal carries a resolved one,
// regardless of level. Output keeps first-seen order. Merging a source twice is a no-op.
func Merge(sources ...SkillSource) []types.SelectedSkill {
	merged := make([]types.SelectedSkill, 0)
	index := make(map[string]int)

	for _, src := range sources {
		for _, s := range src.Skills {
			key := skillid.NormalizeKey(s.Key)
			if key == "" {
				continue
			}
			incoming := types.SelectedSkill{
				Key:   key,
				Label: skillid.FormatLabel(s.Label, key),
				Level: proficiency.Quantize(s.Level),
			}
			if i, ok := index[key]; ok {
				merged[i] = addOrUpdateSkill(merged[i], incoming)
				continue
			}
			index[key] = len(merged)
			merged = append(merged, incoming)
		}
	}
	return merged
}

// addOrUpdateSkill applies the monotonic-max rule to an existing entry.
func addOrUpdateSkill(existing, incoming types.SelectedSkill) types.SelectedSkill {
	if incoming.Level > existing.Level {
		existing.Level = incoming.Level
		if skillid.IsResolvedLabel(incoming.Label) {
			existing.Label = incoming.Label
		}
		return existing
	}
	if !skillid.IsResolvedLabel(existing.Label) && skillid.IsResolvedLabel(incoming.Label) {
		existing.Label = incoming.Label
	}
	return existing
}

// Finalize drops purely speculative entries: unresolved label and level 0.
func Finalize(skills []types.SelectedSkill) []types.SelectedSkill {
	out := make([]types.SelectedSkill, 0, len(skills))
	for _, s := range skills {
		if !skillid.IsResolvedLabel(s.Label) && s.Level == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Remove returns skills without the entry for key.
func Remove(skills []types.SelectedSkill, key string) []types.SelectedSkill {
	key = skillid.NormalizeKey(key)
	out := make([]types.SelectedSkill, 0, len(skills))
	for _, s := range skills {
		if skillid.NormalizeKey(s.Key) == key {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SetLevel returns skills with key set to level. This is an explicit user edit and
// the only way a stored level may go down. Returns false when key is absent.
func SetLevel(skills []types.SelectedSkill, key string, level float64) ([]types.SelectedSkill, bool) {
	key = skillid.NormalizeKey(key)
	out := make([]types.SelectedSkill, len(skills))
	copy(out, skills)
	for i := range out {
		if skillid.NormalizeKey(out[i].Key) == key {
			out[i].Level = proficiency.Quantize(level)
			return out, true
		}
	}
	return out, false
}

// Unresolved returns the canonical keys whose labels still need resolving.
func Unresolved(skills []types.SelectedSkill) []string {
	var keys []string
	for _, s := range skills {
		if !skillid.IsResolvedLabel(s.Label) {
			keys = append(keys, s.Key)
		}
	}
	return keys
}
