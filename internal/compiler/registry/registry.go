// Package registry holds the descriptors accepted during one analysis run.
// A Registry is created per run and discarded when the run ends.
package registry

import (
	"sync"

	"github.com/pipelinekit/stagegen/internal/compiler/descriptor"
)

type stageKey struct {
	name    string
	version string
}

// Registry accumulates stage and error descriptors across the passes of a run
type Registry struct {
	mu sync.Mutex

	stages      []*descriptor.StageDescriptor
	reserved    map[stageKey]struct{}
	stageFailed bool

	errorDef      *descriptor.ErrorDescriptor
	errorDefNames []string
	errorFailed   bool
}

// New creates an empty registry
func New() *Registry {
	return &Registry{reserved: make(map[stageKey]struct{})}
}

// Reserve claims a (name, version) pair. It returns false when the pair was
// already claimed earlier in the run.
func (r *Registry) Reserve(name, version string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := stageKey{name: name, version: version}
	if _, exists := r.reserved[key]; exists {
		return false
	}
	r.reserved[key] = struct{}{}
	return true
}

// AddStage records an accepted stage descriptor, keeping delivery order
func (r *Registry) AddStage(s *descriptor.StageDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, s)
}

// MarkStageFailed records that a stage declaration of the run is invalid
func (r *Registry) MarkStageFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stageFailed = true
}

// StageFailed reports whether any stage declaration of the run was invalid
func (r *Registry) StageFailed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stageFailed
}

// Stages returns the accepted stage descriptors in delivery order
func (r *Registry) Stages() []*descriptor.StageDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*descriptor.StageDescriptor, len(r.stages))
	copy(out, r.stages)
	return out
}

// NoteErrorDef records that an error definition named name was seen and
// returns the names of the error definitions seen before it in the run
func (r *Registry) NoteErrorDef(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous := make([]string, len(r.errorDefNames))
	copy(previous, r.errorDefNames)
	r.errorDefNames = append(r.errorDefNames, name)
	return previous
}

// SetErrorDef records the validated error descriptor
func (r *Registry) SetErrorDef(e *descriptor.ErrorDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorDef = e
}

// MarkErrorFailed records that error-definition validation failed for the run
func (r *Registry) MarkErrorFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorFailed = true
}

// ErrorFailed reports whether error-definition validation failed
func (r *Registry) ErrorFailed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errorFailed
}

// ErrorDef returns the validated error descriptor, or nil when none was accepted
func (r *Registry) ErrorDef() *descriptor.ErrorDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errorDef
}
