package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joseph-ayodele/ocr-bench/internal/common"
)

// Registry maps provider identifiers to adapters. A flat map rather than a
// hierarchy: anything satisfying Extractor is substitutable.
type Registry struct {
	extractors map[string]Extractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: map[string]Extractor{}}
}

// Register adds an adapter under id. Re-registering an id replaces the
// previous adapter.
func (r *Registry) Register(id string, e Extractor) {
	id = strings.ToLower(strings.TrimSpace(id))
	r.extractors[id] = e
}

// Get returns the adapter for id.
func (r *Registry) Get(id string) (Extractor, bool) {
	e, ok := r.extractors[id]
	return e, ok
}

// Known returns all registered identifiers, sorted for stable error output.
func (r *Registry) Known() []string {
	ids := make([]string, 0, len(r.extractors))
	for id := range r.extractors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolveList validates a comma-separated provider selection against the
// registry and returns normalized identifiers, duplicates collapsed with
// order preserved. An empty selection or any unknown identifier is a fatal
// configuration error.
func (r *Registry) ResolveList(raw string) ([]string, error) {
	var requested []string
	seen := map[string]struct{}{}
	for _, item := range strings.Split(raw, ",") {
		id := strings.ToLower(strings.TrimSpace(item))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		requested = append(requested, id)
	}
	if len(requested) == 0 {
		return nil, common.NewAppError("CONFIG_ERROR", "no providers were selected", common.ErrInvalidInput)
	}
	var unknown []string
	for _, id := range requested {
		if _, ok := r.extractors[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		msg := fmt.Sprintf("unsupported providers: %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(r.Known(), ", "))
		return nil, common.NewAppError("CONFIG_ERROR", msg, common.ErrUnknownProvider)
	}
	return requested, nil
}
