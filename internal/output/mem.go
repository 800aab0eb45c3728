package output

import (
	"context"
	"sort"
	"sync"
)

// MemFiler keeps artifacts in memory. It backs dry runs and tests.
type MemFiler struct {
	mu    sync.RWMutex
	files map[string][]byte
	// fail makes Write return the error for the given artifact path
	fail map[string]error
}

// NewMemFiler creates an empty in-memory filer
func NewMemFiler() *MemFiler {
	return &MemFiler{
		files: make(map[string][]byte),
		fail:  make(map[string]error),
	}
}

// Location returns the artifact path
func (f *MemFiler) Location(pkg, name string) string {
	return ArtifactPath(pkg, name)
}

// Write stores a copy of data
func (f *MemFiler) Write(ctx context.Context, pkg, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	key := ArtifactPath(pkg, name)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[key]; ok {
		return err
	}
	f.files[key] = append([]byte(nil), data...)
	return nil
}

// Read returns the artifact stored at (pkg, name)
func (f *MemFiler) Read(ctx context.Context, pkg, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := f.Get(ArtifactPath(pkg, name))
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// FailOn makes every later write of the artifact at path fail with err
func (f *MemFiler) FailOn(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[path] = err
}

// Get returns the artifact stored at path
func (f *MemFiler) Get(path string) ([]byte, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, ok := f.files[path]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Paths returns the stored artifact paths in sorted order
func (f *MemFiler) Paths() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.files))
	for p := range f.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
