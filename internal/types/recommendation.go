package types

import "github.com/go-playground/validator/v10"

// SkillWithLevel is the backend's legacy leveled-skill form (0-5 inclusive).
type SkillWithLevel struct {
	SkillKey string `json:"skill_key" validate:"required"`
	Level    int    `json:"level" validate:"gte=0,lte=5"`
}

// RecommendJobsRequest is the body sent to the job recommender.
// SkillKeys carries the level-expanded key multiset; Skills carries the same profile in leveled form.
type RecommendJobsRequest struct {
	SkillKeys []string         `json:"skill_keys,omitempty" validate:"max=200,dive,required"`
	Skills    []SkillWithLevel `json:"skills,omitempty" validate:"max=200,dive"`
	TopJobs   int              `json:"top_jobs" validate:"gte=1,lte=50"`
}

// Validate validates the RecommendJobsRequest using the validator.
func (r *RecommendJobsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// MajorGapsRequest asks which of a major's skills the user is missing.
type MajorGapsRequest struct {
	SkillKeys []string `json:"skill_keys" validate:"max=200,dive,required"`
}

// Validate validates the MajorGapsRequest using the validator.
func (r *MajorGapsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// RecommendedJob is one ranked job returned by the recommender.
type RecommendedJob struct {
	ID            string   `json:"job_id"`
	Title         string   `json:"title"`
	Score         float64  `json:"score"`
	Rank          int      `json:"rank,omitempty"`
	Source        string   `json:"source,omitempty"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
}

// RecommendedMajor is one ranked major for a chosen job.
type RecommendedMajor struct {
	ID            string  `json:"major_id"`
	Name          string  `json:"major_name"`
	Field         string  `json:"field,omitempty"`
	Score         float64 `json:"score"`
	MatchedSkills int     `json:"matched_skills"`
}

// SkillGap is a skill required by a major that the profile does not cover.
type SkillGap struct {
	Key        string  `json:"skill_key"`
	Label      string  `json:"name"`
	Importance float64 `json:"importance,omitempty"`
}
