package skills

import (
	"strings"

	"github.com/jonathan/skill-pathway/internal/types"
)

// ExtractedDefaultLevel is the level given to skills found in free text.
// They are unconfirmed, so an extracted mention with no resolvable label is dropped by Finalize.
const ExtractedDefaultLevel = 0.0

// FromPicks wraps a skill the user picked from search results.
func FromPicks(level float64, picks ...types.SkillSearchResult) SkillSource {
	src := SkillSource{Kind: SourceExplicit, Skills: make([]types.SelectedSkill, 0, len(picks))}
	for _, p := range picks {
		src.Skills = append(src.Skills, types.SelectedSkill{Key: p.Key, Label: p.Label, Level: level})
	}
	return src
}

// FromMapped wraps academic mapping suggestions.
func FromMapped(suggestions []types.MappedSkillSuggestion) SkillSource {
	src := SkillSource{Kind: SourceAcademic, Skills: make([]types.SelectedSkill, 0, len(suggestions))}
	for _, s := range suggestions {
		src.Skills = append(src.Skills, types.SelectedSkill{Key: s.Key, Label: s.Label, Level: s.Level})
	}
	return src
}

// FromExtracted wraps free-text extraction matches. The id, when present, is the key
// and the mention name becomes the label.
func FromExtracted(mentions []types.ExtractedSkill, level float64) SkillSource {
	src := SkillSource{Kind: SourceExtracted, Skills: make([]types.SelectedSkill, 0, len(mentions))}
	for _, m := range mentions {
		key := strings.TrimSpace(m.ID)
		if key == "" {
			key = m.Name
		}
		src.Skills = append(src.Skills, types.SelectedSkill{Key: key, Label: m.Name, Level: level})
	}
	return src
}

// FromProfile wraps an already-stored profile so it can be merged with new signals.
func FromProfile(stored []types.SelectedSkill) SkillSource {
	return SkillSource{Kind: SourceProfile, Skills: stored}
}
