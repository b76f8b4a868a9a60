package skills

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/skill-pathway/internal/skillid"
	"github.com/jonathan/skill-pathway/internal/types"
)

// Searcher is the backend skill search.
type Searcher interface {
	SearchSkills(ctx context.Context, query string) ([]types.SkillSearchResult, error)
}

// SearchError is returned when skill search is unavailable. The caller must not
// proceed with an empty result list.
type SearchError struct {
	Query string
	Cause error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("skill search failed for %q: %v", e.Query, e.Cause)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// SearchCache memoizes normalized search results per query for the session.
type SearchCache struct {
	searcher Searcher

	mu      sync.Mutex
	results map[string][]types.SkillSearchResult
}

// NewSearchCache creates a cache in front of searcher.
func NewSearchCache(searcher Searcher) *SearchCache {
	return &SearchCache{
		searcher: searcher,
		results:  make(map[string][]types.SkillSearchResult),
	}
}

// Search returns normalized results for query. Blank queries return nothing without
// calling the backend. Failures are not cached.
func (c *SearchCache) Search(ctx context.Context, query string) ([]types.SkillSearchResult, error) {
	q := strings.Join(strings.Fields(query), " ")
	if q == "" {
		return []types.SkillSearchResult{}, nil
	}
	cacheKey := strings.ToLower(q)

	c.mu.Lock()
	cached, ok := c.results[cacheKey]
	c.mu.Unlock()
	if ok {
		return cloneResults(cached), nil
	}

	raw, err := c.searcher.SearchSkills(ctx, q)
	if err != nil {
		return nil, &SearchError{Query: q, Cause: err}
	}
	results := NormalizeSearchResults(raw)

	c.mu.Lock()
	c.results[cacheKey] = results
	c.mu.Unlock()
	return cloneResults(results), nil
}

// NormalizeSearchResults canonicalizes keys, formats labels and drops duplicate keys.
// A plain-name key whose label came back empty or identifier-shaped becomes its own label.
func NormalizeSearchResults(raw []types.SkillSearchResult) []types.SkillSearchResult {
	out := make([]types.SkillSearchResult, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for _, r := range raw {
		key := skillid.NormalizeKey(r.Key)
		if key == "" {
			key = skillid.NormalizeKey(r.Label)
		}
		if key == "" {
			continue
		}
		label := skillid.FormatLabel(r.Label, key)
		if !skillid.IsResolvedLabel(label) && !skillid.IsIdentifier(key) {
			label = key
		}
		res := types.SkillSearchResult{Key: key, Label: label, Source: strings.TrimSpace(r.Source)}

		if i, ok := seen[key]; ok {
			if !skillid.IsResolvedLabel(out[i].Label) && skillid.IsResolvedLabel(label) {
				out[i].Label = label
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, res)
	}
	return out
}

func cloneResults(in []types.SkillSearchResult) []types.SkillSearchResult {
	out := make([]types.SkillSearchResult, len(in))
	copy(out, in)
	return out
}
