// Package graph accumulates the module dependency graph of a run.
package graph

import (
	"encoding/json"
	"sort"
	"sync"
)

// Recorder collects module -> dependency edges. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	edges map[string]map[string]bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{edges: make(map[string]map[string]bool)}
}

// Record adds module as a node and an edge to each dependency. Recording the
// same edges again has no effect.
func (r *Recorder) Record(module string, deps []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.edges[module]
	if !ok {
		set = make(map[string]bool)
		r.edges[module] = set
	}
	for _, d := range deps {
		set[d] = true
	}
}

// Retain drops every node not in keep along with edges pointing at it.
func (r *Recorder) Retain(keep []string) {
	valid := make(map[string]bool, len(keep))
	for _, k := range keep {
		valid[k] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for module, deps := range r.edges {
		if !valid[module] {
			delete(r.edges, module)
			continue
		}
		for d := range deps {
			if !valid[d] {
				delete(deps, d)
			}
		}
	}
}

// Dependencies returns the sorted dependencies of one module.
func (r *Recorder) Dependencies(module string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.edges[module])
}

// Graph returns a copy of the adjacency with sorted dependency lists. Nodes
// without dependencies map to an empty slice.
func (r *Recorder) Graph() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string][]string, len(r.edges))
	for module, deps := range r.edges {
		out[module] = sortedKeys(deps)
	}
	return out
}

// Len returns the number of nodes.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.edges)
}

// MarshalJSON encodes the graph as an object with sorted keys and lists.
func (r *Recorder) MarshalJSON() ([]byte, error) {
	// encoding/json sorts map keys
	return json.Marshal(r.Graph())
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
