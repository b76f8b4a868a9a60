package academics

import (
	"context"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skill-pathway/internal/logging"
	"github.com/jonathan/skill-pathway/internal/proficiency"
	"github.com/jonathan/skill-pathway/internal/skillid"
	"github.com/jonathan/skill-pathway/internal/types"
)

// DefaultOLevelCap is the ceiling applied to O-level-derived levels, so a perfect
// O-level result never out-ranks an A-level one.
const DefaultOLevelCap = 8.0

// SkillLookup is the external subject-to-skill mapping service.
type SkillLookup interface {
	MappedSkills(ctx context.Context, level types.EducationLevel, subject, grade string) ([]types.SkillCandidate, error)
}

// Mapper converts subject/grade rows into capped, ranked skill suggestions.
type Mapper struct {
	lookup    SkillLookup
	oLevelCap float64
	logger    *logging.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithOLevelCap overrides DefaultOLevelCap. Values outside (0,10] are ignored.
func WithOLevelCap(limit float64) Option {
	return func(m *Mapper) {
		if limit > 0 && limit <= proficiency.MaxLevel {
			m.oLevelCap = proficiency.Quantize(limit)
		}
	}
}

// WithLogger sets the logger used for absorbed lookup failures.
func WithLogger(l *logging.Logger) Option {
	return func(m *Mapper) {
		m.logger = logging.OrNop(l)
	}
}

// NewMapper creates a Mapper backed by lookup.
func NewMapper(lookup SkillLookup, opts ...Option) *Mapper {
	m := &Mapper{
		lookup:    lookup,
		oLevelCap: DefaultOLevelCap,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OLevelCap returns the ceiling applied to O-level suggestions.
func (m *Mapper) OLevelCap() float64 {
	return m.oLevelCap
}

// subjectEntry is a deduplicated subject ready for lookup.
type subjectEntry struct {
	level types.EducationLevel
	name  string
	norm  string
	grade string
}

// MapSubjectsToSkills maps the rows that have passed their section's completeness gate.
//
// Each subject contributes at most one suggestion (its highest-level candidate). O-level
// levels are capped; A-level values then overwrite O-level values for the same key, even
// when lower. A failed lookup only drops that subject. The only error returned is a
// cancelled context.
func (m *Mapper) MapSubjectsToSkills(ctx context.Context, rows []types.SubjectGradeRow, stage types.EducationStage) ([]types.MappedSkillSuggestion, error) {
	olevel, alevel := SplitRows(rows)

	var aEntries []subjectEntry
	if ALevelReady(stage, olevel, alevel) {
		aEntries = dedupeSubjects(types.LevelALevel, alevel)
	}
	var oEntries []subjectEntry
	if OLevelReady(stage, olevel) {
		oEntries = dropSuperseded(dedupeSubjects(types.LevelOLevel, olevel), aEntries)
	}

	entries := make([]subjectEntry, 0, len(oEntries)+len(aEntries))
	entries = append(entries, oEntries...)
	entries = append(entries, aEntries...)
	if len(entries) == 0 {
		return []types.MappedSkillSuggestion{}, nil
	}

	picks, err := m.lookupAll(ctx, entries)
	if err != nil {
		return nil, err
	}

	oMap := make(map[string]types.MappedSkillSuggestion)
	aMap := make(map[string]types.MappedSkillSuggestion)
	for i, e := range entries {
		pick := picks[i]
		if pick == nil {
			continue
		}
		if e.level == types.LevelOLevel {
			pick.Level = math.Min(pick.Level, m.oLevelCap)
			keepHigher(oMap, *pick)
		} else {
			keepHigher(aMap, *pick)
		}
	}

	merged := make(map[string]types.MappedSkillSuggestion, len(oMap)+len(aMap))
	for k, v := range oMap {
		merged[k] = v
	}
	for k, v := range aMap {
		if v.Label == "" {
			v.Label = merged[k].Label
		}
		merged[k] = v
	}

	out := make([]types.MappedSkillSuggestion, 0, len(merged))
	for _, v := range merged {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// lookupAll fires one lookup per subject concurrently and waits for all of them.
func (m *Mapper) lookupAll(ctx context.Context, entries []subjectEntry) ([]*types.MappedSkillSuggestion, error) {
	picks := make([]*types.MappedSkillSuggestion, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entries {
		g.Go(func() error {
			candidates, err := m.lookup.MappedSkills(gctx, e.level, e.name, e.grade)
			if err != nil {
				m.logger.Warn("subject skill lookup failed",
					"subject", e.name, "education_level", string(e.level), "error", err)
				return nil
			}
			picks[i] = dominantSkill(candidates, e.name)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return picks, nil
}

// dominantSkill keeps the single highest-level candidate; ties keep the first.
func dominantSkill(candidates []types.SkillCandidate, subject string) *types.MappedSkillSuggestion {
	var best *types.MappedSkillSuggestion
	for _, c := range candidates {
		key := skillid.NormalizeKey(c.Key)
		if key == "" {
			continue
		}
		level := proficiency.RescaleLegacy(c.RawLevel)
		if best != nil && level <= best.Level {
			continue
		}
		best = &types.MappedSkillSuggestion{
			Key:     key,
			Label:   skillid.FormatLabel(c.Label, key),
			Level:   level,
			Subject: subject,
		}
	}
	return best
}

func keepHigher(m map[string]types.MappedSkillSuggestion, s types.MappedSkillSuggestion) {
	existing, ok := m[s.Key]
	if !ok || s.Level > existing.Level {
		if s.Label == "" && ok {
			s.Label = existing.Label
		}
		m[s.Key] = s
		return
	}
	if existing.Label == "" && s.Label != "" {
		existing.Label = s.Label
		m[s.Key] = existing
	}
}

// dedupeSubjects collapses rows naming the same subject. The better grade wins and
// ties go to the most recently entered row. Rows without a subject name are skipped.
func dedupeSubjects(level types.EducationLevel, rows []types.SubjectGradeRow) []subjectEntry {
	entries := make([]subjectEntry, 0, len(rows))
	index := make(map[string]int)
	for _, r := range rows {
		name := strings.Join(strings.Fields(r.SubjectName), " ")
		if name == "" {
			continue
		}
		e := subjectEntry{
			level: level,
			name:  name,
			norm:  NormalizeSubject(name),
			grade: NormalizeGrade(r.Grade),
		}
		if i, ok := index[e.norm]; ok {
			if gradeRank(e.grade) >= gradeRank(entries[i].grade) {
				entries[i] = e
			}
			continue
		}
		index[e.norm] = len(entries)
		entries = append(entries, e)
	}
	return entries
}

// dropSuperseded removes O-level subjects that also appear at A-level.
func dropSuperseded(olevel, alevel []subjectEntry) []subjectEntry {
	if len(alevel) == 0 {
		return olevel
	}
	taken := make(map[string]bool, len(alevel))
	for _, e := range alevel {
		taken[e.norm] = true
	}
	kept := olevel[:0]
	for _, e := range olevel {
		if !taken[e.norm] {
			kept = append(kept, e)
		}
	}
	return kept
}

// NormalizeSubject is the comparison form of a subject name.
func NormalizeSubject(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
