package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skill-pathway/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestNew_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/api", "localhost"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

func TestSubjects(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/education/subjects", r.URL.Path)
		assert.Equal(t, "olevel", r.URL.Query().Get("stage"))
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		writeJSON(w, `{"items": ["Mathematics", " ", "Physics", {"name": "Biology"}]}`)
	})

	names, err := c.Subjects(context.Background(), types.LevelOLevel)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mathematics", "Physics", "Biology"}, names)
}

func TestMappedSkills_FieldVariants(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/education/subjects/mapped-skills", r.URL.Path)
		assert.Equal(t, "alevel", r.URL.Query().Get("stage"))
		assert.Equal(t, "Further Maths", r.URL.Query().Get("subject"))
		assert.False(t, r.URL.Query().Has("grade"))
		writeJSON(w, `{
			"stage": "alevel",
			"subject": "Further Maths",
			"skills": [
				{"skill_key": "numeracy", "level": 3},
				{"conceptUri": "http://data.europa.eu/esco/skill/abc", "preferredLabel": "apply mathematics", "skill_level": "4"},
				{"name": "no key"}
			]
		}`)
	})

	got, err := c.MappedSkills(context.Background(), types.LevelALevel, "Further Maths", "  ")
	require.NoError(t, err)
	assert.Equal(t, []types.SkillCandidate{
		{Key: "numeracy", RawLevel: 3},
		{Key: "http://data.europa.eu/esco/skill/abc", Label: "apply mathematics", RawLevel: 4},
	}, got)
}

func TestSearchSkills(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id": 7, "skill_key": "python", "name": "Python", "source": "esco"}]`},
		{"results envelope", `{"results": [{"skillKey": "python", "label": "Python", "source": "esco"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "py", r.URL.Query().Get("q"))
				writeJSON(w, tt.body)
			})

			got, err := c.SearchSkills(context.Background(), "py")
			require.NoError(t, err)
			assert.Equal(t, []types.SkillSearchResult{{Key: "python", Label: "Python", Source: "esco"}}, got)
		})
	}
}

func TestResolveLabel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("skill_key") {
		case "known":
			writeJSON(w, `{"skill_key": "known", "skill_name": "Teamwork", "resolved": true}`)
		default:
			writeJSON(w, `{"skill_key": "unknown", "skill_name": null, "resolved": false}`)
		}
	})

	label, err := c.ResolveLabel(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, "Teamwork", label)

	label, err = c.ResolveLabel(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, "", label)
}

func TestExtractSkills(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/recommend/nlp/extract-skills", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "I love coding in Python", body["user_text"])
		writeJSON(w, `{"skills": [{"skill_name": "Python", "skill_id": "skill-001"}, {"skill_name": "communication"}, {}]}`)
	})

	got, err := c.ExtractSkills(context.Background(), "I love coding in Python")
	require.NoError(t, err)
	assert.Equal(t, []types.ExtractedSkill{{Name: "Python", ID: "skill-001"}, {Name: "communication"}}, got)

	got, err = c.ExtractSkills(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, calls)
}

func TestRecommendJobs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recommend/jobs", r.URL.Path)
		var body types.RecommendJobsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"python", "python", "sql"}, body.SkillKeys)
		assert.Equal(t, 3, body.TopJobs)
		writeJSON(w, `[
			{"job_id": 42, "title": "Data Analyst", "score": 0.91, "matched_skills": ["python"]},
			{"jobId": "http://esco/occupation/9", "job_title": "Engineer", "match_score": "0.5", "rankPosition": 5}
		]`)
	})

	got, err := c.RecommendJobs(context.Background(), &types.RecommendJobsRequest{
		SkillKeys: []string{"python", "python", "sql"},
		TopJobs:   3,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.RecommendedJob{ID: "42", Title: "Data Analyst", Score: 0.91, Rank: 1, MatchedSkills: []string{"python"}}, got[0])
	assert.Equal(t, "http://esco/occupation/9", got[1].ID)
	assert.Equal(t, 5, got[1].Rank)
	assert.Equal(t, 0.5, got[1].Score)
}

func TestRecommendJobs_InvalidRequestNotSent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	})

	_, err := c.RecommendJobs(context.Background(), &types.RecommendJobsRequest{TopJobs: 0})
	assert.Error(t, err)
}

func TestMajorsForJob(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs/42/majors", r.URL.Path)
		writeJSON(w, `[{"major_id": 3, "major_name": "Statistics", "field": "Science", "matched_skills": 4, "score": 0.7}]`)
	})

	got, err := c.MajorsForJob(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, []types.RecommendedMajor{{ID: "3", Name: "Statistics", Field: "Science", Score: 0.7, MatchedSkills: 4}}, got)

	_, err = c.MajorsForJob(context.Background(), " ")
	assert.Error(t, err)
}

func TestMajorGaps(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/majors/3/gaps", r.URL.Path)
		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"python"}, body["skill_keys"])
		writeJSON(w, `[{"skill_id": 9, "skill_key": "statistics", "name": "Statistics", "importance": 0.8}]`)
	})

	got, err := c.MajorGaps(context.Background(), "3", []string{"python"})
	require.NoError(t, err)
	assert.Equal(t, []types.SkillGap{{Key: "statistics", Label: "Statistics", Importance: 0.8}}, got)
}

func TestClient_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `Traceback: /srv/app/db.py line 12`, http.StatusInternalServerError)
	})

	_, err := c.SearchSkills(context.Background(), "py")
	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "search_skills", apiErr.Operation)

	msg := UserMessage(err)
	assert.Contains(t, msg, "500")
	assert.NotContains(t, msg, "Traceback")
}

func TestClient_UnparseableResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown envelope", `{"data": []}`},
		{"scalar", `"hello"`},
		{"empty", ``},
		{"array of scalars", `[1, 2]`},
		{"broken json", `[{"skill_key": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.body)
			})
			_, err := c.SearchSkills(context.Background(), "py")
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, err.Error(), "unparseable response")
		})
	}
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[]`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.SearchSkills(ctx, "py")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "The request was cancelled.", UserMessage(err))
}
