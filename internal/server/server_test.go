package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-pathway/internal/backend"
	"github.com/jonathan/skill-pathway/internal/onboarding"
	"github.com/jonathan/skill-pathway/internal/server/ratelimit"
	"github.com/jonathan/skill-pathway/internal/store"
	"github.com/jonathan/skill-pathway/internal/types"
)

// stubBackend answers every backend call from fixed data.
type stubBackend struct {
	searchErr error
	jobs      []types.RecommendedJob
}

func (b *stubBackend) Subjects(_ context.Context, _ types.EducationLevel) ([]string, error) {
	return []string{"Mathematics"}, nil
}

func (b *stubBackend) MappedSkills(_ context.Context, _ types.EducationLevel, _, _ string) ([]types.SkillCandidate, error) {
	return []types.SkillCandidate{{Key: "numeracy", Label: "Numeracy", RawLevel: 3}}, nil
}

func (b *stubBackend) SearchSkills(_ context.Context, query string) ([]types.SkillSearchResult, error) {
	if b.searchErr != nil {
		return nil, b.searchErr
	}
	return []types.SkillSearchResult{{Key: query, Label: ""}}, nil
}

func (b *stubBackend) ResolveLabel(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (b *stubBackend) ExtractSkills(_ context.Context, _ string) ([]types.ExtractedSkill, error) {
	return nil, nil
}

func (b *stubBackend) RecommendJobs(_ context.Context, _ *types.RecommendJobsRequest) ([]types.RecommendedJob, error) {
	return b.jobs, nil
}

func (b *stubBackend) MajorsForJob(_ context.Context, _ string) ([]types.RecommendedMajor, error) {
	return []types.RecommendedMajor{{ID: "m1", Name: "Statistics"}}, nil
}

func (b *stubBackend) MajorGaps(_ context.Context, _ string, _ []string) ([]types.SkillGap, error) {
	return []types.SkillGap{}, nil
}

func newTestServer(t *testing.T, api *stubBackend, limits *ratelimit.Config) http.Handler {
	t.Helper()
	if limits == nil {
		limits = &ratelimit.Config{Enabled: false}
	}
	svc := onboarding.NewService(store.NewProfiles(store.NewMemoryStore(), nil), api)
	s := New(Config{Port: 0, RateLimit: limits}, svc, nil)
	t.Cleanup(s.rateLimiter.Stop)
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndCORS(t *testing.T) {
	h := newTestServer(t, &stubBackend{}, nil)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodOptions, "/skills", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProfileAndStep(t *testing.T) {
	h := newTestServer(t, &stubBackend{}, nil)

	rec := do(t, h, http.MethodPut, "/profile", `{"name":"Ada","educationStage":"university"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/profile", `{"name":"Ada","educationStage":"olevel_done"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/onboarding/step", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"step":"academics","path":"/onboarding/academics","can_enter_pathway":false}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/onboarding/step", `{"step":"done"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/onboarding/step", `{"step":"/onboarding/about"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/onboarding/step", "")
	assert.Contains(t, rec.Body.String(), `"step":"about"`)

	rec = do(t, h, http.MethodGet, "/subjects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"olevel":["Mathematics"]}`, rec.Body.String())
}

func TestSkillEndpoints(t *testing.T) {
	h := newTestServer(t, &stubBackend{}, nil)

	rec := do(t, h, http.MethodPost, "/skills", `{"key":"Python","level":"intermediate"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []types.SelectedSkill
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []types.SelectedSkill{{Key: "Python", Label: "Python", Level: 6}}, list)

	rec = do(t, h, http.MethodPost, "/skills", `{"label":"no key","level":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPatch, "/skills", `{"key":"Python","level":2.2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"level":2`)

	rec = do(t, h, http.MethodPatch, "/skills", `{"key":"Go","level":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/skills", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/skills?key=Python", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/skills/search?q=data%20analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"key":"data analysis","label":"data analysis"}]`, rec.Body.String())
}

func TestRefreshAndStatus(t *testing.T) {
	h := newTestServer(t, &stubBackend{}, nil)

	rec := do(t, h, http.MethodPut, "/profile",
		`{"name":"Ada","educationStage":"olevel_done","olevelSubjects":[{"subjectName":"Mathematics","grade":"A"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/skills/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"applied":true`)

	rec = do(t, h, http.MethodGet, "/skills", "")
	assert.JSONEq(t, `[{"key":"numeracy","label":"Numeracy","level":6}]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/skills/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mapping":{"status":"success"}`)
	assert.Contains(t, rec.Body.String(), `"extract":{"status":"idle"}`)

	rec = do(t, h, http.MethodPost, "/skills/extract", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"applied":true`)
	rec = do(t, h, http.MethodGet, "/skills/status", "")
	assert.Contains(t, rec.Body.String(), `"extract":{"status":"success"}`)

	// Replacing the profile keeps the derived suggestions.
	rec = do(t, h, http.MethodPut, "/profile",
		`{"name":"Ada L","educationStage":"olevel_done","olevelSubjects":[{"subjectName":"Mathematics","grade":"A"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mappedSkills"`)
}

func TestPathwayEndpoints(t *testing.T) {
	api := &stubBackend{jobs: []types.RecommendedJob{{ID: "17", Title: "Analyst", Rank: 1}}}
	h := newTestServer(t, api, nil)

	rec := do(t, h, http.MethodPost, "/recommendations/jobs", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	do(t, h, http.MethodPost, "/skills", `{"key":"Python","level":4}`)
	rec = do(t, h, http.MethodPost, "/recommendations/jobs?top_jobs=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/recommendations/jobs?top_jobs=3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"job_id":"17"`)

	rec = do(t, h, http.MethodGet, "/pathway/majors", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPut, "/pathway/job", `{"title":"missing id"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/pathway/job", `{"id":"17","title":"Analyst"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/pathway", "")
	assert.JSONEq(t, `{"step":"majors"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/pathway/majors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"major_id":"m1"`)

	rec = do(t, h, http.MethodPut, "/pathway/major", `{"id":"m1"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/pathway/gaps", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/pathway", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/pathway", "")
	assert.JSONEq(t, `{"step":"jobs"}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/state", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/skills", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBackendFailureIsSanitized(t *testing.T) {
	api := &stubBackend{searchErr: &backend.APICallError{
		Operation:  "search_skills",
		StatusCode: http.StatusInternalServerError,
		Message:    "Traceback: secret internals",
	}}
	h := newTestServer(t, api, nil)

	rec := do(t, h, http.MethodGet, "/skills/search?q=python", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), "temporarily unavailable (500)")
}

func TestRateLimit(t *testing.T) {
	limits := &ratelimit.Config{
		Enabled: true,
		Endpoints: []ratelimit.EndpointConfig{
			{Path: "/skills/search", Method: "GET", Limit: 1, Window: time.Minute, Burst: 1},
		},
	}
	h := newTestServer(t, &stubBackend{}, limits)

	rec := do(t, h, http.MethodGet, "/skills/search?q=go", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = do(t, h, http.MethodGet, "/skills/search?q=go", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
