package types

import "slices"

// EducationStage describes where the student is in their schooling.
type EducationStage string

const (
	StageOLevelInProgress EducationStage = "olevel_in_progress"
	StageOLevelDone       EducationStage = "olevel_done"
	StageALevelInProgress EducationStage = "alevel_in_progress"
	StageALevelDone       EducationStage = "alevel_done"
)

// Valid reports whether s is one of the four known stages.
func (s EducationStage) Valid() bool {
	switch s {
	case StageOLevelInProgress, StageOLevelDone, StageALevelInProgress, StageALevelDone:
		return true
	default:
		return false
	}
}

// IsALevel reports whether the stage has reached A-level study.
func (s EducationStage) IsALevel() bool {
	return s == StageALevelInProgress || s == StageALevelDone
}

// EducationLevel identifies the exam section a subject row belongs to.
type EducationLevel string

const (
	LevelOLevel EducationLevel = "olevel"
	LevelALevel EducationLevel = "alevel"
)

// SubjectGradeRow is one subject line entered by the user.
type SubjectGradeRow struct {
	EducationLevel EducationLevel `json:"educationLevel"`
	SubjectName    string         `json:"subjectName"`
	Grade          string         `json:"grade"`
}

// OnboardingProfile is the aggregate record mutated step by step by the onboarding wizard.
// It is persisted as a single blob and replaced whole on every save.
type OnboardingProfile struct {
	Name            string                  `json:"name"`
	EducationStage  EducationStage          `json:"educationStage,omitempty"`
	Interests       []string                `json:"interests,omitempty"`
	OLevelSubjects  []SubjectGradeRow       `json:"olevelSubjects,omitempty"`
	ALevelSubjects  []SubjectGradeRow       `json:"alevelSubjects,omitempty"`
	AboutMe         string                  `json:"aboutMe,omitempty"`
	Goals           string                  `json:"goals,omitempty"`
	ExtractedSkills []ExtractedSkill        `json:"extractedSkills,omitempty"`
	MappedSkills    []MappedSkillSuggestion `json:"mappedSkills,omitempty"`
}

// SubjectRows returns every subject row, O-level first, with the education level filled in.
func (p *OnboardingProfile) SubjectRows() []SubjectGradeRow {
	if p == nil {
		return nil
	}
	rows := make([]SubjectGradeRow, 0, len(p.OLevelSubjects)+len(p.ALevelSubjects))
	for _, r := range p.OLevelSubjects {
		r.EducationLevel = LevelOLevel
		rows = append(rows, r)
	}
	for _, r := range p.ALevelSubjects {
		r.EducationLevel = LevelALevel
		rows = append(rows, r)
	}
	return rows
}

// SameAcademics reports whether p and other hold the same stage and subject rows.
func (p *OnboardingProfile) SameAcademics(other *OnboardingProfile) bool {
	if p.stage() != other.stage() {
		return false
	}
	return slices.Equal(p.SubjectRows(), other.SubjectRows())
}

func (p *OnboardingProfile) stage() EducationStage {
	if p == nil {
		return ""
	}
	return p.EducationStage
}

// AboutText joins the free-text fields used for skill extraction.
func (p *OnboardingProfile) AboutText() string {
	if p == nil {
		return ""
	}
	switch {
	case p.AboutMe != "" && p.Goals != "":
		return p.AboutMe + "\n" + p.Goals
	case p.AboutMe != "":
		return p.AboutMe
	default:
		return p.Goals
	}
}
