package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/skill-pathway/internal/pathway"
	"github.com/jonathan/skill-pathway/internal/proficiency"
	"github.com/jonathan/skill-pathway/internal/schemas"
	"github.com/jonathan/skill-pathway/internal/types"
)

const maxRequestBytes = 1 << 20

// readBody reads a bounded request body.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		return nil, &ErrValidation{Field: "body", Message: "could not read request body"}
	}
	if len(body) > maxRequestBytes {
		return nil, &ErrValidation{Field: "body", Message: "request body too large"}
	}
	return body, nil
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	return nil
}

// --- profile ---

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handlePutProfile replaces the editable profile fields. Derived skill lists are kept.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := schemas.ValidateBytes(schemas.OnboardingProfile, body); err != nil {
		s.writeError(w, err)
		return
	}
	var in types.OnboardingProfile
	if err := json.Unmarshal(body, &in); err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}

	p, err := s.svc.UpdateProfile(r.Context(), func(p *types.OnboardingProfile) {
		in.ExtractedSkills = p.ExtractedSkills
		in.MappedSkills = p.MappedSkills
		*p = in
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	menus, err := s.svc.SubjectMenus(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, menus)
}

// --- onboarding steps ---

type stepResponse struct {
	Step            pathway.Step `json:"step"`
	Path            string       `json:"path"`
	CanEnterPathway bool         `json:"can_enter_pathway"`
}

func (s *Server) handleGetStep(w http.ResponseWriter, r *http.Request) {
	step, err := s.svc.CurrentStep(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stepResponse{
		Step:            step,
		Path:            step.Path(),
		CanEnterPathway: pathway.CanEnterPathway(step),
	})
}

func (s *Server) handlePutStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step string `json:"step"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if _, ok := pathway.ParseStep(req.Step); !ok {
		s.writeError(w, &ErrValidation{Field: "step", Message: "not an onboarding step"})
		return
	}
	if err := s.svc.SetLastStep(r.Context(), req.Step); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.MarkCompleted(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- skills ---

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Skills(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

type skillEdit struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Level json.RawMessage `json:"level"`
}

// level accepts a number or a legacy tag.
func (e skillEdit) level() (float64, error) {
	if len(e.Level) == 0 {
		return 0, &ErrValidation{Field: "level", Message: "required"}
	}
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(e.Level)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return 0, &ErrValidation{Field: "level", Message: "must be a number or a level tag"}
	}
	return proficiency.CoerceLevel(raw, proficiency.MinLevel), nil
}

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	var req skillEdit
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		s.writeError(w, &ErrValidation{Field: "key", Message: "required"})
		return
	}
	level, err := req.level()
	if err != nil {
		s.writeError(w, err)
		return
	}
	list, err := s.svc.AddPick(r.Context(), types.SkillSearchResult{Key: req.Key, Label: req.Label}, level)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

func (s *Server) handleSetSkillLevel(w http.ResponseWriter, r *http.Request) {
	var req skillEdit
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	level, err := req.level()
	if err != nil {
		s.writeError(w, err)
		return
	}
	list, err := s.svc.SetSkillLevel(r.Context(), req.Key, level)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

// handleRemoveSkill takes the key as a query parameter since keys may be URIs.
func (s *Server) handleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if strings.TrimSpace(key) == "" {
		s.writeError(w, &ErrValidation{Field: "key", Message: "required"})
		return
	}
	list, err := s.svc.RemoveSkill(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, list)
}

func (s *Server) handleSearchSkills(w http.ResponseWriter, r *http.Request) {
	results, err := s.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, results)
}

func (s *Server) handleRefreshSkills(w http.ResponseWriter, r *http.Request) {
	suggestions, applied, err := s.svc.RefreshMappedSkills(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"suggestions": suggestions, "applied": applied})
}

func (s *Server) handleExtractSkills(w http.ResponseWriter, r *http.Request) {
	mentions, applied, err := s.svc.ExtractFromAbout(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"mentions": mentions, "applied": applied})
}

func (s *Server) handleResolveLabels(w http.ResponseWriter, r *http.Request) {
	list, applied, err := s.svc.ResolveLabels(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"skills": list, "applied": applied})
}

type asyncStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// handleSkillStatus reports the last outcome of each background refresh.
func (s *Server) handleSkillStatus(w http.ResponseWriter, _ *http.Request) {
	mapping := s.svc.MappingState()
	extract := s.svc.ExtractState()
	labels := s.svc.LabelState()
	jobs := s.svc.JobsState()
	s.jsonResponse(w, http.StatusOK, map[string]asyncStatus{
		"mapping": {Status: mapping.Status.String(), Message: mapping.Message},
		"extract": {Status: extract.Status.String(), Message: extract.Message},
		"labels":  {Status: labels.Status.String(), Message: labels.Message},
		"jobs":    {Status: jobs.Status.String(), Message: jobs.Message},
	})
}

// --- pathway ---

func (s *Server) handleRecommendJobs(w http.ResponseWriter, r *http.Request) {
	topJobs := 0
	if raw := r.URL.Query().Get("top_jobs"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, &ErrValidation{Field: "top_jobs", Message: "must be an integer"})
			return
		}
		topJobs = n
	}
	jobs, err := s.svc.Recommend(r.Context(), topJobs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

func (s *Server) handleGetPathway(w http.ResponseWriter, r *http.Request) {
	step, err := s.svc.CurrentPathwayStep(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]pathway.PathwayStep{"step": step})
}

// decodeItem reads and validates a chosen job or major.
func decodeItem(r *http.Request) (types.PathwayItem, error) {
	var item types.PathwayItem
	body, err := readBody(r)
	if err != nil {
		return item, err
	}
	if err := schemas.ValidateBytes(schemas.PathwayItem, body); err != nil {
		return item, err
	}
	if err := json.Unmarshal(body, &item); err != nil {
		return item, &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return item, &ErrValidation{Field: "id", Message: "required"}
	}
	return item, nil
}

func (s *Server) handleSelectJob(w http.ResponseWriter, r *http.Request) {
	item, err := decodeItem(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.SelectJob(r.Context(), item); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectMajor(w http.ResponseWriter, r *http.Request) {
	item, err := decodeItem(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.SelectMajor(r.Context(), item); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMajors(w http.ResponseWriter, r *http.Request) {
	majors, err := s.svc.MajorsForSelectedJob(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, majors)
}

func (s *Server) handleListGaps(w http.ResponseWriter, r *http.Request) {
	gaps, err := s.svc.GapsForSelectedMajor(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, gaps)
}

func (s *Server) handleStartJobSearch(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.StartJobSearch(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context()); err != nil {
		s.writeError(w, fmt.Errorf("failed to reset state: %w", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
