package onboarding

import (
	"context"

	"github.com/jonathan/skill-pathway/internal/skills"
	"github.com/jonathan/skill-pathway/internal/types"
)

// RefreshMappedSkills maps the stored academic record to skills. When this run is still
// the latest once mapping finishes, the suggestions are stored on the profile and merged
// into the skill profile; otherwise they are returned with applied=false and not persisted.
func (s *Service) RefreshMappedSkills(ctx context.Context) (suggestions []types.MappedSkillSuggestion, applied bool, err error) {
	token := s.mapping.Begin()

	p, err := s.Profile(ctx)
	if err != nil {
		s.mapping.Finish(token, nil, err)
		return nil, false, err
	}

	suggestions, err = s.mapper.MapSubjectsToSkills(ctx, p.SubjectRows(), p.EducationStage)
	if err != nil {
		s.mapping.Finish(token, nil, err)
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mapping.Current(token) {
		s.logger.Debug("dropping stale subject mapping", "suggestions", len(suggestions))
		return suggestions, false, nil
	}

	current, err := s.Profile(ctx)
	if err != nil {
		s.mapping.Finish(token, nil, err)
		return nil, false, err
	}
	if !p.SameAcademics(current) {
		// Edited by another writer; the mapped rows are gone.
		s.mapping.Reset()
		s.logger.Debug("dropping subject mapping for edited academics", "suggestions", len(suggestions))
		return suggestions, false, nil
	}
	current.MappedSkills = suggestions
	if err := s.profiles.SaveProfile(ctx, current); err != nil {
		s.mapping.Finish(token, nil, err)
		return nil, false, err
	}
	if _, err := s.mergeSkills(ctx, skills.FromMapped(suggestions)); err != nil {
		s.mapping.Finish(token, nil, err)
		return nil, false, err
	}

	s.mapping.Finish(token, suggestions, nil)
	s.logger.Info("academic skills mapped", "suggestions", len(suggestions), "stage", string(p.EducationStage))
	return suggestions, true, nil
}

// ExtractFromAbout sends the profile's free text to extraction. When this run is still
// the latest, the matches are stored on the profile and merged into the skill profile;
// otherwise they are returned with applied=false and not persisted.
func (s *Service) ExtractFromAbout(ctx context.Context) (mentions []types.ExtractedSkill, applied bool, err error) {
	token := s.extracting.Begin()

	p, err := s.Profile(ctx)
	if err != nil {
		s.extracting.Finish(token, nil, err)
		return nil, false, err
	}
	mentions, err = s.api.ExtractSkills(ctx, p.AboutText())
	if err != nil {
		s.extracting.Finish(token, nil, err)
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.extracting.Current(token) {
		s.logger.Debug("dropping stale skill extraction", "mentions", len(mentions))
		return mentions, false, nil
	}

	current, err := s.Profile(ctx)
	if err != nil {
		s.extracting.Finish(token, nil, err)
		return nil, false, err
	}
	if current.AboutText() != p.AboutText() {
		s.extracting.Reset()
		return mentions, false, nil
	}
	current.ExtractedSkills = mentions
	if err := s.profiles.SaveProfile(ctx, current); err != nil {
		s.extracting.Finish(token, nil, err)
		return nil, false, err
	}
	if _, err := s.mergeSkills(ctx, skills.FromExtracted(mentions, skills.ExtractedDefaultLevel)); err != nil {
		s.extracting.Finish(token, nil, err)
		return nil, false, err
	}

	s.extracting.Finish(token, mentions, nil)
	return mentions, true, nil
}

// Search runs a cached skill search.
func (s *Service) Search(ctx context.Context, query string) ([]types.SkillSearchResult, error) {
	return s.search.Search(ctx, query)
}

// AddPick merges an explicitly chosen skill at level.
func (s *Service) AddPick(ctx context.Context, pick types.SkillSearchResult, level float64) ([]types.SelectedSkill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeSkills(ctx, skills.FromPicks(level, pick))
}

// RemoveSkill drops key from the skill profile.
func (s *Service) RemoveSkill(ctx context.Context, key string) ([]types.SelectedSkill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.profiles.LoadSkills(ctx)
	if err != nil {
		return nil, err
	}
	out := skills.Remove(stored, key)
	if len(out) == len(stored) {
		return nil, ErrSkillNotFound
	}
	if err := s.profiles.SaveSkills(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetSkillLevel sets key to level, lowering it if asked.
func (s *Service) SetSkillLevel(ctx context.Context, key string, level float64) ([]types.SelectedSkill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.profiles.LoadSkills(ctx)
	if err != nil {
		return nil, err
	}
	out, ok := skills.SetLevel(stored, key, level)
	if !ok {
		return nil, ErrSkillNotFound
	}
	if err := s.profiles.SaveSkills(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveLabels fills in unresolved labels of the stored profile. Results of a run that
// has been superseded are returned with applied=false and not persisted.
func (s *Service) ResolveLabels(ctx context.Context) (resolved []types.SelectedSkill, applied bool, err error) {
	token := s.resolving.Begin()

	stored, err := s.profiles.LoadSkills(ctx)
	if err != nil {
		s.resolving.Finish(token, nil, err)
		return nil, false, err
	}
	resolved, err = s.labels.ResolveMissing(ctx, stored)
	if err != nil {
		s.resolving.Finish(token, nil, err)
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resolving.Current(token) {
		return resolved, false, nil
	}

	current, err := s.profiles.LoadSkills(ctx)
	if err != nil {
		s.resolving.Finish(token, nil, err)
		return nil, false, err
	}
	out := skills.WithLabels(current, resolved)
	if err := s.profiles.SaveSkills(ctx, out); err != nil {
		s.resolving.Finish(token, nil, err)
		return nil, false, err
	}
	s.resolving.Finish(token, out, nil)
	return out, true, nil
}
