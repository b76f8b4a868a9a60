// Package onboarding wires the normalization engine to persisted state and the backend.
// Every write is a whole-value read-merge-write, and asynchronous refreshes only
// persist their results when they are still the latest run.
package onboarding

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/jonathan/skill-pathway/internal/academics"
	"github.com/jonathan/skill-pathway/internal/asyncstate"
	"github.com/jonathan/skill-pathway/internal/backend"
	"github.com/jonathan/skill-pathway/internal/logging"
	"github.com/jonathan/skill-pathway/internal/skills"
	"github.com/jonathan/skill-pathway/internal/store"
	"github.com/jonathan/skill-pathway/internal/types"
)

// Backend is everything the service needs from the recommendation backend.
type Backend interface {
	academics.SkillLookup
	academics.SubjectCatalog
	skills.Searcher
	skills.LabelSource
	ExtractSkills(ctx context.Context, text string) ([]types.ExtractedSkill, error)
	RecommendJobs(ctx context.Context, req *types.RecommendJobsRequest) ([]types.RecommendedJob, error)
	MajorsForJob(ctx context.Context, jobID string) ([]types.RecommendedMajor, error)
	MajorGaps(ctx context.Context, majorID string, keys []string) ([]types.SkillGap, error)
}

var _ Backend = (*backend.Client)(nil)

var (
	// ErrSkillNotFound is returned when editing a skill that is not in the profile.
	ErrSkillNotFound = errors.New("skill not in profile")
	// ErrNoJobSelected is returned when a major-level call is made before choosing a job.
	ErrNoJobSelected = errors.New("no job selected")
	// ErrNoMajorSelected is returned when gaps are requested before choosing a major.
	ErrNoMajorSelected = errors.New("no major selected")
)

// Service is the onboarding and pathway workflow for one user.
type Service struct {
	profiles *store.Profiles
	api      Backend
	mapper   *academics.Mapper
	labels   *skills.LabelResolver
	search   *skills.SearchCache
	logger   *logging.Logger

	// mu serializes read-merge-write cycles on persisted state.
	mu sync.Mutex

	mapping    asyncstate.Tracker[[]types.MappedSkillSuggestion]
	extracting asyncstate.Tracker[[]types.ExtractedSkill]
	resolving  asyncstate.Tracker[[]types.SelectedSkill]
	jobs       asyncstate.Tracker[[]types.RecommendedJob]
}

type options struct {
	logger     *logging.Logger
	mapperOpts []academics.Option
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithOLevelCap overrides the O-level ceiling used by academic mapping.
func WithOLevelCap(limit float64) Option {
	return func(o *options) {
		o.mapperOpts = append(o.mapperOpts, academics.WithOLevelCap(limit))
	}
}

// NewService creates a Service over profiles and api.
func NewService(profiles *store.Profiles, api Backend, opts ...Option) *Service {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := logging.OrNop(o.logger).With("component", "onboarding")

	return &Service{
		profiles: profiles,
		api:      api,
		mapper:   academics.NewMapper(api, append(o.mapperOpts, academics.WithLogger(logger))...),
		labels:   skills.NewLabelResolver(api, logger),
		search:   skills.NewSearchCache(api),
		logger:   logger,
	}
}

// MappingState is the observable state of the last RefreshMappedSkills.
func (s *Service) MappingState() asyncstate.State[[]types.MappedSkillSuggestion] {
	return s.mapping.Snapshot()
}

// ExtractState is the observable state of the last ExtractFromAbout.
func (s *Service) ExtractState() asyncstate.State[[]types.ExtractedSkill] {
	return s.extracting.Snapshot()
}

// LabelState is the observable state of the last ResolveLabels.
func (s *Service) LabelState() asyncstate.State[[]types.SelectedSkill] {
	return s.resolving.Snapshot()
}

// JobsState is the observable state of the last Recommend.
func (s *Service) JobsState() asyncstate.State[[]types.RecommendedJob] {
	return s.jobs.Snapshot()
}

// Profile returns the stored onboarding profile, or an empty one.
func (s *Service) Profile(ctx context.Context) (*types.OnboardingProfile, error) {
	p, err := s.profiles.LoadProfile(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &types.OnboardingProfile{}
	}
	return p, nil
}

// UpdateProfile applies mutate to the stored profile and saves the result whole.
// Changing the academic record or the free text invalidates a mapping or extraction
// still in flight for the old values.
func (s *Service) UpdateProfile(ctx context.Context, mutate func(*types.OnboardingProfile)) (*types.OnboardingProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	before := *p
	before.OLevelSubjects = slices.Clone(p.OLevelSubjects)
	before.ALevelSubjects = slices.Clone(p.ALevelSubjects)

	mutate(p)
	if err := s.profiles.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	if !before.SameAcademics(p) {
		s.mapping.Reset()
	}
	if before.AboutText() != p.AboutText() {
		s.extracting.Reset()
	}
	return p, nil
}

// SubjectMenus loads the subject choices for the stored education stage.
func (s *Service) SubjectMenus(ctx context.Context) (academics.SubjectMenus, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return academics.LoadSubjectMenus(ctx, s.api, p.EducationStage)
}

// Skills returns the stored skill profile.
func (s *Service) Skills(ctx context.Context) ([]types.SelectedSkill, error) {
	return s.profiles.LoadSkills(ctx)
}

// mergeSkills merges sources into the stored profile. Callers hold s.mu.
func (s *Service) mergeSkills(ctx context.Context, sources ...skills.SkillSource) ([]types.SelectedSkill, error) {
	stored, err := s.profiles.LoadSkills(ctx)
	if err != nil {
		return nil, err
	}
	merged := skills.Merge(append([]skills.SkillSource{skills.FromProfile(stored)}, sources...)...)
	if err := s.profiles.SaveSkills(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
