// Package hierarchy collects the ancestors of a declaration and classifies
// declarations into stage categories based on those ancestors.
package hierarchy

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pipelinekit/stagegen/internal/compiler/decl"
)

// DefaultCacheSize is the number of ancestor sets memoized per walker
const DefaultCacheSize = 1024

// AncestorSet is the deduplicated set of ancestor names of a declaration.
// Names keep discovery order so output built from the set is stable.
type AncestorSet struct {
	names []string
	index map[string]struct{}
}

func newAncestorSet() *AncestorSet {
	return &AncestorSet{index: make(map[string]struct{})}
}

func (s *AncestorSet) add(name string) {
	if _, ok := s.index[name]; ok {
		return
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
}

// Contains reports whether name is an ancestor
func (s *AncestorSet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Names returns the ancestor names in discovery order
func (s *AncestorSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of ancestors
func (s *AncestorSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Walker performs breadth-first traversal over base-type and interface edges
type Walker struct {
	graph decl.Graph
	cache *lru.Cache[string, *AncestorSet]
}

// NewWalker creates a walker over graph. A cacheSize <= 0 uses DefaultCacheSize.
func NewWalker(graph decl.Graph, cacheSize int) *Walker {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes
	cache, _ := lru.New[string, *AncestorSet](cacheSize)
	return &Walker{graph: graph, cache: cache}
}

// Ancestors returns every type reachable from d through base types and interfaces.
// The result never contains d itself and has no duplicates. Names that do not
// resolve in the graph are included but not expanded further.
func (w *Walker) Ancestors(d *decl.Declaration) *AncestorSet {
	if d == nil {
		return newAncestorSet()
	}
	if cached, ok := w.cache.Get(d.Name); ok {
		return cached
	}

	set := newAncestorSet()
	visited := map[string]bool{d.Name: true}
	queue := d.Supertypes()

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == "" || visited[name] {
			continue
		}
		visited[name] = true
		set.add(name)

		current, ok := w.graph.Lookup(name)
		if !ok {
			continue
		}
		for _, next := range current.Supertypes() {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	w.cache.Add(d.Name, set)
	return set
}

// Reset drops every memoized ancestor set
func (w *Walker) Reset() {
	w.cache.Purge()
}
