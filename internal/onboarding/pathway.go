package onboarding

import (
	"context"
	"fmt"

	"github.com/jonathan/skill-pathway/internal/pathway"
	"github.com/jonathan/skill-pathway/internal/recommend"
	"github.com/jonathan/skill-pathway/internal/skills"
	"github.com/jonathan/skill-pathway/internal/types"
)

// Snapshot reads the persisted state the step resolvers need.
func (s *Service) Snapshot(ctx context.Context) (pathway.Snapshot, error) {
	var snap pathway.Snapshot

	p, err := s.profiles.LoadProfile(ctx)
	if err != nil {
		return snap, err
	}
	stored, err := s.profiles.LoadSkills(ctx)
	if err != nil {
		return snap, err
	}
	completed, err := s.profiles.Completed(ctx)
	if err != nil {
		return snap, err
	}
	last, err := s.profiles.LastStep(ctx)
	if err != nil {
		return snap, err
	}

	snap.Profile = p
	snap.SelectedSkills = len(skills.Finalize(stored))
	snap.Completed = completed
	snap.LastStep = last
	return snap, nil
}

// CurrentStep resolves the onboarding step from persisted state.
func (s *Service) CurrentStep(ctx context.Context) (pathway.Step, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return pathway.ResolveOnboardingStep(snap), nil
}

// CurrentPathwayStep resolves the job/major step from persisted state.
func (s *Service) CurrentPathwayStep(ctx context.Context) (pathway.PathwayStep, error) {
	sel, err := s.profiles.LoadSelection(ctx)
	if err != nil {
		return "", err
	}
	return pathway.ResolvePathwayStep(sel), nil
}

// SetLastStep stores a manual resume marker. Only wizard steps are accepted.
func (s *Service) SetLastStep(ctx context.Context, raw string) error {
	step, ok := pathway.ParseStep(raw)
	if !ok {
		return fmt.Errorf("not an onboarding step: %q", raw)
	}
	return s.profiles.SetLastStep(ctx, step.Path())
}

// MarkCompleted sets the completed sentinel and drops the resume marker.
func (s *Service) MarkCompleted(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.profiles.MarkCompleted(ctx); err != nil {
		return err
	}
	return s.profiles.SetLastStep(ctx, "")
}

// Recommend requests jobs for the finalized skill profile.
func (s *Service) Recommend(ctx context.Context, topJobs int) ([]types.RecommendedJob, error) {
	token := s.jobs.Begin()

	stored, err := s.profiles.LoadSkills(ctx)
	if err != nil {
		s.jobs.Finish(token, nil, err)
		return nil, err
	}
	req, err := recommend.BuildJobsRequest(skills.Finalize(stored), topJobs)
	if err != nil {
		s.jobs.Finish(token, nil, err)
		return nil, err
	}
	jobs, err := s.api.RecommendJobs(ctx, req)
	s.jobs.Finish(token, jobs, err)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// SelectJob stores the chosen job and clears any chosen major.
func (s *Service) SelectJob(ctx context.Context, job types.PathwayItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.profiles.SaveMajor(ctx, nil); err != nil {
		return err
	}
	return s.profiles.SaveJob(ctx, &job)
}

// SelectMajor stores the chosen major. A job must already be chosen.
func (s *Service) SelectMajor(ctx context.Context, major types.PathwayItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.profiles.LoadSelection(ctx)
	if err != nil {
		return err
	}
	if sel.Job == nil {
		return ErrNoJobSelected
	}
	return s.profiles.SaveMajor(ctx, &major)
}

// MajorsForSelectedJob lists majors for the chosen job.
func (s *Service) MajorsForSelectedJob(ctx context.Context) ([]types.RecommendedMajor, error) {
	sel, err := s.profiles.LoadSelection(ctx)
	if err != nil {
		return nil, err
	}
	if sel.Job == nil {
		return nil, ErrNoJobSelected
	}
	return s.api.MajorsForJob(ctx, sel.Job.ID)
}

// GapsForSelectedMajor lists the chosen major's skills missing from the profile.
func (s *Service) GapsForSelectedMajor(ctx context.Context) ([]types.SkillGap, error) {
	sel, err := s.profiles.LoadSelection(ctx)
	if err != nil {
		return nil, err
	}
	if sel.Major == nil {
		return nil, ErrNoMajorSelected
	}
	stored, err := s.profiles.LoadSkills(ctx)
	if err != nil {
		return nil, err
	}
	req, err := recommend.BuildGapsRequest(skills.Finalize(stored))
	if err != nil {
		return nil, err
	}
	return s.api.MajorGaps(ctx, sel.Major.ID, req.SkillKeys)
}

// StartJobSearch clears the pathway choices.
func (s *Service) StartJobSearch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles.StartJobSearch(ctx)
}

// Reset clears all persisted state and invalidates in-flight refreshes.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapping.Reset()
	s.extracting.Reset()
	s.resolving.Reset()
	s.jobs.Reset()
	return s.profiles.Reset(ctx)
}
