package academics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skill-pathway/internal/types"
)

// SubjectCatalog lists the subjects offered for an education level.
type SubjectCatalog interface {
	Subjects(ctx context.Context, level types.EducationLevel) ([]string, error)
}

// SubjectMenus holds the subject choices for each level the stage needs.
type SubjectMenus map[types.EducationLevel][]string

// RequiredLevels returns the sections a stage collects, O-level first.
func RequiredLevels(stage types.EducationStage) []types.EducationLevel {
	if stage.IsALevel() {
		return []types.EducationLevel{types.LevelOLevel, types.LevelALevel}
	}
	return []types.EducationLevel{types.LevelOLevel}
}

// LoadSubjectMenus fetches the subject catalog for every level the stage requires.
// Unlike mapping lookups, any failure here is returned as a *CatalogError.
func LoadSubjectMenus(ctx context.Context, catalog SubjectCatalog, stage types.EducationStage) (SubjectMenus, error) {
	if !stage.Valid() {
		return nil, &StageError{Stage: string(stage)}
	}

	levels := RequiredLevels(stage)
	lists := make([][]string, len(levels))

	g, gctx := errgroup.WithContext(ctx)
	for i, level := range levels {
		g.Go(func() error {
			subjects, err := catalog.Subjects(gctx, level)
			if err != nil {
				return &CatalogError{Level: string(level), Cause: err}
			}
			lists[i] = subjects
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	menus := make(SubjectMenus, len(levels))
	for i, level := range levels {
		menus[level] = dedupeNames(lists[i])
	}
	return menus, nil
}

// dedupeNames drops blank and repeated names while keeping catalog order.
func dedupeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		norm := NormalizeSubject(n)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, n)
	}
	return out
}
