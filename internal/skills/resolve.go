package skills

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skill-pathway/internal/logging"
	"github.com/jonathan/skill-pathway/internal/skillid"
	"github.com/jonathan/skill-pathway/internal/types"
)

// LabelSource resolves a canonical key (often a UUID or URI) to a display label.
// An empty label with a nil error means the backend does not know the key.
type LabelSource interface {
	ResolveLabel(ctx context.Context, key string) (string, error)
}

// LabelResolver fills in unresolved labels, caching answers for the life of the resolver.
type LabelResolver struct {
	source LabelSource
	logger *logging.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewLabelResolver creates a resolver backed by source.
func NewLabelResolver(source LabelSource, logger *logging.Logger) *LabelResolver {
	return &LabelResolver{
		source: source,
		logger: logging.OrNop(logger),
		cache:  make(map[string]string),
	}
}

// ResolveMissing returns a copy of skills with unresolved labels filled in where possible.
// Lookups for distinct keys run concurrently. A failed lookup leaves the label unresolved
// and is not cached, so a later call can retry it.
func (r *LabelResolver) ResolveMissing(ctx context.Context, skills []types.SelectedSkill) ([]types.SelectedSkill, error) {
	out := make([]types.SelectedSkill, len(skills))
	copy(out, skills)

	var pending []string
	seen := make(map[string]bool)
	for _, key := range Unresolved(out) {
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := r.cached(key); !ok {
			pending = append(pending, key)
		}
	}

	if len(pending) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		for _, key := range pending {
			g.Go(func() error {
				label, err := r.source.ResolveLabel(gctx, key)
				if err != nil {
					r.logger.Warn("skill label resolve failed", "skill_key", key, "error", err)
					return nil
				}
				label = skillid.FormatLabel(label, "")
				r.store(key, label)
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if skillid.IsResolvedLabel(out[i].Label) {
			continue
		}
		if label, ok := r.cached(out[i].Key); ok && label != "" {
			out[i].Label = label
		}
	}
	return out, nil
}

func (r *LabelResolver) cached(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	label, ok := r.cache[key]
	return label, ok
}

func (r *LabelResolver) store(key, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = label
}

// WithLabels copies resolved labels from resolved onto the unresolved entries of current.
// Levels and order of current are untouched.
func WithLabels(current, resolved []types.SelectedSkill) []types.SelectedSkill {
	labels := make(map[string]string, len(resolved))
	for _, s := range resolved {
		if skillid.IsResolvedLabel(s.Label) {
			labels[skillid.NormalizeKey(s.Key)] = s.Label
		}
	}
	out := make([]types.SelectedSkill, len(current))
	copy(out, current)
	for i := range out {
		if skillid.IsResolvedLabel(out[i].Label) {
			continue
		}
		if label, ok := labels[skillid.NormalizeKey(out[i].Key)]; ok {
			out[i].Label = label
		}
	}
	return out
}
