package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonathan/skill-pathway/internal/types"
)

// SubjectListLimit is the page size requested from the subject catalog.
const SubjectListLimit = 200

// Subjects returns the catalog's subject names for an education level, in backend order.
func (c *Client) Subjects(ctx context.Context, level types.EducationLevel) ([]string, error) {
	const op = "subjects"
	q := url.Values{}
	q.Set("stage", string(level))
	q.Set("limit", fmt.Sprint(SubjectListLimit))

	raw, err := c.do(ctx, op, http.MethodGet, "/education/subjects", q, nil)
	if err != nil {
		return nil, err
	}
	list, err := decodeList(op, raw)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := rawString(item); ok {
			if s = strings.TrimSpace(s); s != "" {
				names = append(names, s)
			}
			continue
		}
		rec, err := decodeRecord(op, item)
		if err != nil {
			return nil, err
		}
		if name := rec.str("name", "subject", "subject_name", "subjectName", "label"); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// MappedSkills returns the candidate skills for one subject at a grade. Levels are
// returned raw; the caller decides how to rescale them.
func (c *Client) MappedSkills(ctx context.Context, level types.EducationLevel, subject, grade string) ([]types.SkillCandidate, error) {
	const op = "mapped_skills"
	q := url.Values{}
	q.Set("stage", string(level))
	q.Set("subject", subject)
	if g := strings.TrimSpace(grade); g != "" {
		q.Set("grade", g)
	}

	raw, err := c.do(ctx, op, http.MethodGet, "/education/subjects/mapped-skills", q, nil)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(op, raw)
	if err != nil {
		return nil, err
	}

	out := make([]types.SkillCandidate, 0, len(recs))
	for _, rec := range recs {
		key := rec.str(skillKeyFields...)
		if key == "" {
			continue
		}
		lvl, _ := rec.num(levelFields...)
		out = append(out, types.SkillCandidate{
			Key:      key,
			Label:    rec.str(skillNameFields...),
			RawLevel: lvl,
		})
	}
	return out, nil
}

// SearchSkills runs a free-text skill search.
func (c *Client) SearchSkills(ctx context.Context, query string) ([]types.SkillSearchResult, error) {
	const op = "search_skills"
	q := url.Values{}
	q.Set("q", query)

	raw, err := c.do(ctx, op, http.MethodGet, "/skills/search", q, nil)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(op, raw)
	if err != nil {
		return nil, err
	}

	out := make([]types.SkillSearchResult, 0, len(recs))
	for _, rec := range recs {
		out = append(out, types.SkillSearchResult{
			Key:    rec.str(skillKeyFields...),
			Label:  rec.str(skillNameFields...),
			Source: rec.str(sourceFields...),
		})
	}
	return out, nil
}

// ResolveLabel asks the backend for a key's display name. An unknown key yields "".
func (c *Client) ResolveLabel(ctx context.Context, key string) (string, error) {
	const op = "resolve_skill"
	q := url.Values{}
	q.Set("skill_key", key)

	raw, err := c.do(ctx, op, http.MethodGet, "/skills/resolve", q, nil)
	if err != nil {
		return "", err
	}
	rec, err := decodeRecord(op, raw)
	if err != nil {
		return "", err
	}
	if resolved, ok := rec["resolved"]; ok && strings.TrimSpace(string(resolved)) == "false" {
		return "", nil
	}
	return rec.str(resolvedNameFields...), nil
}

type extractRequest struct {
	UserText string `json:"user_text"`
}

// ExtractSkills finds skill mentions in free text. Blank text is not sent.
func (c *Client) ExtractSkills(ctx context.Context, text string) ([]types.ExtractedSkill, error) {
	const op = "extract_skills"
	if strings.TrimSpace(text) == "" {
		return []types.ExtractedSkill{}, nil
	}

	raw, err := c.do(ctx, op, http.MethodPost, "/recommend/nlp/extract-skills", nil, extractRequest{UserText: text})
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(op, raw)
	if err != nil {
		return nil, err
	}

	out := make([]types.ExtractedSkill, 0, len(recs))
	for _, rec := range recs {
		name := rec.str(extractedNameFields...)
		id := rec.str(extractedIDFields...)
		if name == "" && id == "" {
			continue
		}
		out = append(out, types.ExtractedSkill{Name: name, ID: id})
	}
	return out, nil
}

// RecommendJobs returns ranked jobs for a prepared request. Missing ranks are filled
// from response order.
func (c *Client) RecommendJobs(ctx context.Context, req *types.RecommendJobsRequest) ([]types.RecommendedJob, error) {
	const op = "recommend_jobs"
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid request: %w", op, err)
	}

	raw, err := c.do(ctx, op, http.MethodPost, "/recommend/jobs", nil, req)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(op, raw)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecommendedJob, 0, len(recs))
	for i, rec := range recs {
		id := rec.str(jobIDFields...)
		if id == "" {
			continue
		}
		rank := i + 1
		if n, ok := rec.num(rankFields...); ok && n > 0 {
			rank = int(n)
		}
		score, _ := rec.num(scoreFields...)
		out = append(out, types.RecommendedJob{
			ID:            id,
			Title:         rec.str(jobTitleFields...),
			Score:         score,
			Rank:          rank,
			Source:        rec.str(sourceFields...),
			MatchedSkills: rec.strs(matchedFields...),
		})
	}
	return out, nil
}

// MajorsForJob returns the majors that lead to a job.
func (c *Client) MajorsForJob(ctx context.Context, jobID string) ([]types.RecommendedMajor, error) {
	const op = "job_majors"
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("%s: job id is required", op)
	}

	raw, err := c.do(ctx, op, http.MethodGet, "/jobs/"+url.PathEscape(jobID)+"/majors", nil, nil)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(op, raw)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecommendedMajor, 0, len(recs))
	for _, rec := range recs {
		id := rec.str(majorIDFields...)
		if id == "" {
			continue
		}
		score, _ := rec.num(scoreFields...)
		out = append(out, types.RecommendedMajor{
			ID:            id,
			Name:          rec.str(majorNameFields...),
			Field:         rec.str(fieldFields...),
			Score:         score,
			MatchedSkills: rec.count(matchedFields...),
		})
	}
	return out, nil
}

// MajorGaps returns the major's skills not covered by keys.
func (c *Client) MajorGaps(ctx context.Context, majorID string, keys []string) ([]types.SkillGap, error) {
	const op = "major_gaps"
	majorID = strings.TrimSpace(majorID)
	if majorID == "" {
		return nil, fmt.Errorf("%s: major id is required", op)
	}
	req := &types.MajorGapsRequest{SkillKeys: keys}
	if req.SkillKeys == nil {
		req.SkillKeys = []string{}
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid request: %w", op, err)
	}

	raw, err := c.do(ctx, op, http.MethodPost, "/majors/"+url.PathEscape(majorID)+"/gaps", nil, req)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(op, raw)
	if err != nil {
		return nil, err
	}

	out := make([]types.SkillGap, 0, len(recs))
	for _, rec := range recs {
		key := rec.str(skillKeyFields...)
		if key == "" {
			continue
		}
		importance, _ := rec.num(importanceFields...)
		out = append(out, types.SkillGap{
			Key:        key,
			Label:      rec.str(skillNameFields...),
			Importance: importance,
		})
	}
	return out, nil
}
