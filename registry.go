package mockwire

import (
	"sort"
	"sync"

	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// Registry owns the registered definitions, keyed by method and
// normalized path pattern. Each key's list stays sorted by priority,
// descending, with stable order for ties; the sort completes before
// Add returns, so no reader ever observes a partially sorted list.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string][]*Definition
	nextSeq   int
	cfg       func() Config
}

// NewRegistry creates an empty registry. cfg supplies the current
// configuration for default-priority resolution at sort time.
func NewRegistry(cfg func() Config) *Registry {
	return &Registry{
		endpoints: make(map[string][]*Definition),
		cfg:       cfg,
	}
}

func registryKey(method, pattern string) string {
	return method + " " + pattern
}

// Add validates and registers a definition. The definition must not be
// mutated by the caller afterwards.
func (r *Registry) Add(def *Definition) error {
	if err := def.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	def.seq = r.nextSeq
	r.nextSeq++

	key := registryKey(def.Method, def.pattern.raw)
	list := append(r.endpoints[key], def)

	cfg := r.cfg()
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].priorityIn(cfg) > list[j].priorityIn(cfg)
	})
	r.endpoints[key] = list

	return nil
}

// Remove deletes every definition registered under the exact method
// and pattern. Parameterized endpoints must be removed with the
// original pattern string, not a concrete path.
func (r *Registry) Remove(method, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey(method, normalizePath(path))
	if _, ok := r.endpoints[key]; !ok {
		return util.NewMissingResourceError("no endpoint registered", method+" "+path)
	}
	delete(r.endpoints, key)
	return nil
}

// Clear removes every definition.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = make(map[string][]*Definition)
}

// All returns a snapshot of every registered definition. Candidates
// for a request are gathered across the whole registry because one
// request path can match several distinct patterns.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, 0, len(r.endpoints))
	for _, list := range r.endpoints {
		out = append(out, list...)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].seq < out[j].seq
	})
	return out
}

// Count returns the number of registered definitions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, list := range r.endpoints {
		n += len(list)
	}
	return n
}
