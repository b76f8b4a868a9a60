package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Field-name variants seen across backend versions, most preferred first.
var (
	skillKeyFields   = []string{"skill_key", "key", "skillKey", "id", "uri", "conceptUri"}
	skillNameFields  = []string{"name", "label", "skill_name", "skillName", "preferredLabel"}
	levelFields      = []string{"level", "skill_level", "proficiency"}
	rankFields       = []string{"rank_position", "rank", "rankPosition"}
	scoreFields      = []string{"score", "match_score", "matchScore"}
	sourceFields     = []string{"source", "link_source"}
	matchedFields    = []string{"matched_skills", "matchedSkills"}
	importanceFields = []string{"importance", "weight"}

	extractedNameFields = []string{"skill_name", "skillName", "name", "label"}
	extractedIDFields   = []string{"skill_id", "skillId", "skill_key", "id", "uri"}
	resolvedNameFields  = []string{"skill_name", "skillName", "name", "label", "preferredLabel"}

	jobIDFields     = []string{"job_id", "jobId", "id", "uri"}
	jobTitleFields  = []string{"title", "job_title", "jobTitle", "name"}
	majorIDFields   = []string{"major_id", "majorId", "id"}
	majorNameFields = []string{"major_name", "majorName", "name", "title"}
	fieldFields     = []string{"field", "field_of_study"}

	envelopeFields = []string{"items", "skills", "results"}
)

var errUnknownShape = errors.New("expected an array or an object wrapping one")

// record is one decoded JSON object awaiting field lookup.
type record map[string]json.RawMessage

// decodeList accepts a bare array or an {items|skills|results: [...]} envelope.
func decodeList(op string, raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &ParseError{Operation: op, Cause: errUnknownShape}
	}

	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &ParseError{Operation: op, Cause: err}
		}
		return list, nil
	case '{':
		var obj record
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, &ParseError{Operation: op, Cause: err}
		}
		for _, f := range envelopeFields {
			inner, ok := obj[f]
			if !ok || isNull(inner) {
				continue
			}
			var list []json.RawMessage
			if err := json.Unmarshal(inner, &list); err != nil {
				return nil, &ParseError{Operation: op, Cause: err}
			}
			return list, nil
		}
	}
	return nil, &ParseError{Operation: op, Cause: errUnknownShape}
}

// decodeRecords is decodeList where every element must be an object.
func decodeRecords(op string, raw json.RawMessage) ([]record, error) {
	list, err := decodeList(op, raw)
	if err != nil {
		return nil, err
	}
	out := make([]record, 0, len(list))
	for _, item := range list {
		rec, err := decodeRecord(op, item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeRecord(op string, raw json.RawMessage) (record, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
		if err == nil {
			err = errUnknownShape
		}
		return nil, &ParseError{Operation: op, Cause: err}
	}
	return rec, nil
}

// str returns the first non-empty string-like value among fields. Numbers are kept in
// their literal form so numeric ids survive.
func (r record) str(fields ...string) string {
	for _, f := range fields {
		raw, ok := r[f]
		if !ok || isNull(raw) {
			continue
		}
		if s, ok := rawString(raw); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// num returns the first numeric value among fields, accepting numeric strings.
func (r record) num(fields ...string) (float64, bool) {
	for _, f := range fields {
		raw, ok := r[f]
		if !ok || isNull(raw) {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return n, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// strs returns the first string list among fields. A plain string is a one-element list.
func (r record) strs(fields ...string) []string {
	for _, f := range fields {
		raw, ok := r[f]
		if !ok || isNull(raw) {
			continue
		}
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err == nil {
			out := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := rawString(item); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			return out
		}
		if s, ok := rawString(raw); ok && strings.TrimSpace(s) != "" {
			return []string{strings.TrimSpace(s)}
		}
	}
	return nil
}

// count returns a number among fields, or the length of a list.
func (r record) count(fields ...string) int {
	if n, ok := r.num(fields...); ok {
		return int(n)
	}
	return len(r.strs(fields...))
}

func rawString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
