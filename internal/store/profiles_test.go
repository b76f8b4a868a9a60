package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/skill-pathway/internal/logging"
	"github.com/jonathan/skill-pathway/internal/types"
)

func newObservedProfiles(t *testing.T) (*Profiles, *MemoryStore, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mem := NewMemoryStore()
	return NewProfiles(mem, &logging.Logger{SugaredLogger: zap.New(core).Sugar()}), mem, logs
}

func TestProfiles_EmptyStoreDefaults(t *testing.T) {
	p := NewProfiles(NewMemoryStore(), nil)
	ctx := context.Background()

	profile, err := p.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile)

	skills, err := p.LoadSkills(ctx)
	require.NoError(t, err)
	assert.NotNil(t, skills)
	assert.Empty(t, skills)

	sel, err := p.LoadSelection(ctx)
	require.NoError(t, err)
	assert.Nil(t, sel.Job)
	assert.Nil(t, sel.Major)

	done, err := p.Completed(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	step, err := p.LastStep(ctx)
	require.NoError(t, err)
	assert.Empty(t, step)
}

func TestProfiles_RoundTrip(t *testing.T) {
	p := NewProfiles(NewMemoryStore(), nil)
	ctx := context.Background()

	profile := &types.OnboardingProfile{
		Name:           "Ama",
		EducationStage: types.StageOLevelDone,
		OLevelSubjects: []types.SubjectGradeRow{{SubjectName: "Mathematics", Grade: "A"}},
	}
	require.NoError(t, p.SaveProfile(ctx, profile))
	require.NoError(t, p.SaveSkills(ctx, []types.SelectedSkill{{Key: "python", Label: "Python", Level: 6}}))
	require.NoError(t, p.SaveJob(ctx, &types.PathwayItem{ID: "42", Title: "Data Analyst"}))
	require.NoError(t, p.MarkCompleted(ctx))
	require.NoError(t, p.SetLastStep(ctx, "/onboarding/about"))

	got, err := p.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	skills, err := p.LoadSkills(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.SelectedSkill{{Key: "python", Label: "Python", Level: 6}}, skills)

	sel, err := p.LoadSelection(ctx)
	require.NoError(t, err)
	require.NotNil(t, sel.Job)
	assert.Equal(t, "42", sel.Job.ID)
	assert.Nil(t, sel.Major)

	done, err := p.Completed(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	step, err := p.LastStep(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/onboarding/about", step)
}

func TestProfiles_MalformedStateIsAbsent(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"corrupt profile json", KeyOnboardingProfile, `{"name": `},
		{"profile wrong shape", KeyOnboardingProfile, `["Ama"]`},
		{"profile bad stage", KeyOnboardingProfile, `{"name": "Ama", "educationStage": "phd"}`},
		{"skills wrong shape", KeySelectedSkills, `{"python": 3}`},
		{"skills entries not objects", KeySelectedSkills, `["python", "sql"]`},
		{"job missing id", KeySelectedJob, `{"title": "Data Analyst"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mem, logs := newObservedProfiles(t)
			ctx := context.Background()
			require.NoError(t, mem.Save(ctx, tt.key, []byte(tt.value)))

			profile, err := p.LoadProfile(ctx)
			require.NoError(t, err)
			skills, err := p.LoadSkills(ctx)
			require.NoError(t, err)
			sel, err := p.LoadSelection(ctx)
			require.NoError(t, err)

			assert.Nil(t, profile)
			assert.Empty(t, skills)
			assert.Nil(t, sel.Job)
			assert.Equal(t, 1, logs.FilterMessage("ignoring stored value").Len())
		})
	}
}

func TestProfiles_LoadSkillsCoercesLevels(t *testing.T) {
	p, mem, logs := newObservedProfiles(t)
	ctx := context.Background()
	require.NoError(t, mem.Save(ctx, KeySelectedSkills, []byte(`[
		{"key": "python", "label": "Python", "level": 8},
		{"key": "sql", "level": "advanced"},
		{"key": "excel", "level": " Beginner "},
		{"key": "go", "level": 6.3},
		{"key": "rust", "level": 42},
		{"key": "typing"}
	]`)))

	skills, err := p.LoadSkills(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.SelectedSkill{
		{Key: "python", Label: "Python", Level: 8},
		{Key: "sql", Level: 10},
		{Key: "excel", Level: 2},
		{Key: "go", Level: 6.5},
		{Key: "rust", Level: 10},
		{Key: "typing", Level: 0},
	}, skills)
	assert.Equal(t, 0, logs.FilterMessage("ignoring stored skill").Len())
}

func TestProfiles_LoadSkillsDropsOnlyBadEntries(t *testing.T) {
	p, mem, logs := newObservedProfiles(t)
	ctx := context.Background()
	require.NoError(t, mem.Save(ctx, KeySelectedSkills, []byte(`[
		{"key": "python", "level": 8},
		{"label": "No Key", "level": 4},
		{"key": "sql", "level": {"nested": true}},
		{"key": "java", "level": "intermediate"}
	]`)))

	skills, err := p.LoadSkills(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.SelectedSkill{
		{Key: "python", Level: 8},
		{Key: "java", Level: 6},
	}, skills)
	assert.Equal(t, 2, logs.FilterMessage("ignoring stored skill").Len())

	// A save after a partial load keeps the readable entries.
	require.NoError(t, p.SaveSkills(ctx, skills))
	again, err := p.LoadSkills(ctx)
	require.NoError(t, err)
	assert.Equal(t, skills, again)
}

func TestProfiles_LegacyMarkers(t *testing.T) {
	p, mem, _ := newObservedProfiles(t)
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, KeyCompleted, []byte(`"1"`)))
	require.NoError(t, mem.Save(ctx, KeyLastStep, []byte(`academics`)))

	done, err := p.Completed(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	step, err := p.LastStep(ctx)
	require.NoError(t, err)
	assert.Equal(t, "academics", step)
}

func TestProfiles_StartJobSearch(t *testing.T) {
	p := NewProfiles(NewMemoryStore(), nil)
	ctx := context.Background()
	require.NoError(t, p.SaveSkills(ctx, []types.SelectedSkill{{Key: "python", Level: 2}}))
	require.NoError(t, p.SaveJob(ctx, &types.PathwayItem{ID: "42"}))
	require.NoError(t, p.SaveMajor(ctx, &types.PathwayItem{ID: "7"}))

	require.NoError(t, p.StartJobSearch(ctx))

	sel, err := p.LoadSelection(ctx)
	require.NoError(t, err)
	assert.Nil(t, sel.Job)
	assert.Nil(t, sel.Major)

	skills, err := p.LoadSkills(ctx)
	require.NoError(t, err)
	assert.Len(t, skills, 1)
}

func TestProfiles_Reset(t *testing.T) {
	mem := NewMemoryStore()
	p := NewProfiles(mem, nil)
	ctx := context.Background()
	require.NoError(t, p.SaveProfile(ctx, &types.OnboardingProfile{Name: "Ama"}))
	require.NoError(t, p.SaveSkills(ctx, []types.SelectedSkill{{Key: "python", Level: 2}}))
	require.NoError(t, p.MarkCompleted(ctx))
	require.NoError(t, p.SetLastStep(ctx, "about"))

	require.NoError(t, p.Reset(ctx))

	for _, key := range AllKeys {
		_, ok, err := mem.Load(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestProfiles_SetLastStepEmptyClears(t *testing.T) {
	mem := NewMemoryStore()
	p := NewProfiles(mem, nil)
	ctx := context.Background()
	require.NoError(t, p.SetLastStep(ctx, "about"))
	require.NoError(t, p.SetLastStep(ctx, " "))

	_, ok, err := mem.Load(ctx, KeyLastStep)
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingStore) Save(context.Context, string, []byte) error         { return f.err }
func (f failingStore) Clear(context.Context, string) error                { return f.err }

func TestProfiles_StoreFailureSurfaces(t *testing.T) {
	boom := errors.New("disk gone")
	p := NewProfiles(failingStore{err: boom}, nil)
	ctx := context.Background()

	_, err := p.LoadProfile(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, p.SaveSkills(ctx, nil), boom)
	assert.ErrorIs(t, p.Reset(ctx), boom)
}
