// Package pathway derives where a user is in onboarding and in the job/major pathway
// from persisted state alone.
package pathway

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/skill-pathway/internal/academics"
	"github.com/jonathan/skill-pathway/internal/types"
)

// Step is an onboarding wizard step.
type Step string

const (
	StepBasic     Step = "basic"
	StepAcademics Step = "academics"
	StepAbout     Step = "about"
	StepSkills    Step = "skills"
	StepDone      Step = "done"
)

// wizardSteps is the required order. StepDone is terminal and not a resumable marker.
var wizardSteps = []Step{StepBasic, StepAcademics, StepAbout, StepSkills}

// PathwayStep is a step of the post-onboarding job/major chain.
type PathwayStep string

const (
	PathwayJobs   PathwayStep = "jobs"
	PathwayMajors PathwayStep = "majors"
	PathwayPlan   PathwayStep = "plan"
)

const onboardingPathPrefix = "/onboarding/"

// Snapshot is the persisted state the resolvers read. A nil Profile means nothing is stored.
type Snapshot struct {
	Profile        *types.OnboardingProfile
	SelectedSkills int
	Completed      bool
	LastStep       string
}

// ResolveOnboardingStep returns the earliest incomplete onboarding step.
// A completed sentinel wins, then a valid last-visited marker, then the completeness rules.
func ResolveOnboardingStep(s Snapshot) Step {
	if s.Completed {
		return StepDone
	}
	if step, ok := ParseStep(s.LastStep); ok {
		return step
	}

	p := s.Profile
	if p == nil || !basicComplete(p) {
		return StepBasic
	}
	olevel, alevel := academics.SplitRows(p.SubjectRows())
	if !academics.AcademicsComplete(p.EducationStage, olevel, alevel) {
		return StepAcademics
	}
	if s.SelectedSkills == 0 {
		return StepAbout
	}
	return StepDone
}

func basicComplete(p *types.OnboardingProfile) bool {
	return utf8.RuneCountInString(strings.TrimSpace(p.Name)) > 1 && p.EducationStage.Valid()
}

// ResolvePathwayStep returns jobs until a job is chosen, majors until a major is chosen, then plan.
func ResolvePathwayStep(sel types.PathwaySelection) PathwayStep {
	switch {
	case !itemSet(sel.Job):
		return PathwayJobs
	case !itemSet(sel.Major):
		return PathwayMajors
	default:
		return PathwayPlan
	}
}

func itemSet(item *types.PathwayItem) bool {
	return item != nil && strings.TrimSpace(item.ID) != ""
}

// ParseStep accepts a bare wizard step ("academics") or its route ("/onboarding/academics").
// Only resumable wizard steps are accepted.
func ParseStep(raw string) (Step, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, onboardingPathPrefix)
	s = strings.Trim(s, "/")
	for _, step := range wizardSteps {
		if s == string(step) {
			return step, true
		}
	}
	return "", false
}

// Path renders the route form of a step.
func (s Step) Path() string {
	return onboardingPathPrefix + string(s)
}

// Next returns the step after s. StepDone is its own successor.
func Next(s Step) Step {
	for i, step := range wizardSteps {
		if step == s {
			if i+1 < len(wizardSteps) {
				return wizardSteps[i+1]
			}
			return StepDone
		}
	}
	return StepDone
}

// CanEnterPathway reports whether onboarding has finished.
func CanEnterPathway(s Step) bool {
	return s == StepDone
}
