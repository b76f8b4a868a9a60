package academics

import (
	"strings"

	"github.com/jonathan/skill-pathway/internal/types"
)

// ParseStage validates a raw education stage string.
func ParseStage(raw string) (types.EducationStage, error) {
	stage := types.EducationStage(strings.ToLower(strings.TrimSpace(raw)))
	if !stage.Valid() {
		return "", &StageError{Stage: raw}
	}
	return stage, nil
}

// SplitRows separates rows by education level, preserving entry order.
// Rows with an unknown level are ignored.
func SplitRows(rows []types.SubjectGradeRow) (olevel, alevel []types.SubjectGradeRow) {
	for _, r := range rows {
		switch types.EducationLevel(strings.ToLower(string(r.EducationLevel))) {
		case types.LevelOLevel:
			olevel = append(olevel, r)
		case types.LevelALevel:
			alevel = append(alevel, r)
		}
	}
	return olevel, alevel
}

// Meaningful reports whether a row has any content.
func Meaningful(r types.SubjectGradeRow) bool {
	return strings.TrimSpace(r.SubjectName) != "" || strings.TrimSpace(r.Grade) != ""
}

// Complete reports whether a row has both a subject and a grade.
func Complete(r types.SubjectGradeRow) bool {
	return strings.TrimSpace(r.SubjectName) != "" && strings.TrimSpace(r.Grade) != ""
}

// NamesComplete reports whether a section has at least one meaningful row and every
// meaningful row names its subject.
func NamesComplete(rows []types.SubjectGradeRow) bool {
	return sectionComplete(rows, func(r types.SubjectGradeRow) bool {
		return strings.TrimSpace(r.SubjectName) != ""
	})
}

// GradesComplete reports whether a section has at least one meaningful row and every
// meaningful row has both subject and grade.
func GradesComplete(rows []types.SubjectGradeRow) bool {
	return sectionComplete(rows, Complete)
}

func sectionComplete(rows []types.SubjectGradeRow, ok func(types.SubjectGradeRow) bool) bool {
	seen := 0
	for _, r := range rows {
		if !Meaningful(r) {
			continue
		}
		if !ok(r) {
			return false
		}
		seen++
	}
	return seen > 0
}

// OLevelReady reports whether the O-level section may be mapped for stage.
func OLevelReady(stage types.EducationStage, olevel []types.SubjectGradeRow) bool {
	switch stage {
	case types.StageOLevelInProgress:
		return NamesComplete(olevel)
	case types.StageOLevelDone, types.StageALevelInProgress, types.StageALevelDone:
		return GradesComplete(olevel)
	default:
		return false
	}
}

// ALevelReady reports whether the A-level section may be mapped for stage.
// A-level mapping always requires a grade-complete O-level section.
func ALevelReady(stage types.EducationStage, olevel, alevel []types.SubjectGradeRow) bool {
	switch stage {
	case types.StageALevelInProgress:
		return GradesComplete(olevel) && NamesComplete(alevel)
	case types.StageALevelDone:
		return GradesComplete(olevel) && GradesComplete(alevel)
	default:
		return false
	}
}

// AcademicsComplete reports whether the academics step is finished for stage.
func AcademicsComplete(stage types.EducationStage, olevel, alevel []types.SubjectGradeRow) bool {
	if stage.IsALevel() {
		return ALevelReady(stage, olevel, alevel)
	}
	return OLevelReady(stage, olevel)
}
