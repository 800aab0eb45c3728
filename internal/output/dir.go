package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirFiler writes artifacts below a root directory
type DirFiler struct {
	root string
}

// NewDirFiler creates a filer rooted at dir
func NewDirFiler(dir string) *DirFiler {
	return &DirFiler{root: dir}
}

// Root returns the output directory
func (f *DirFiler) Root() string {
	return f.root
}

// Location returns the file system path of an artifact
func (f *DirFiler) Location(pkg, name string) string {
	return filepath.Join(f.root, filepath.FromSlash(ArtifactPath(pkg, name)))
}

// Write stores data through a temporary file and an atomic rename
func (f *DirFiler) Write(ctx context.Context, pkg, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	target := f.Location(pkg, name)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath := target + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", target, err)
	}
	return nil
}

// Read returns a previously written artifact
func (f *DirFiler) Read(ctx context.Context, pkg, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Location(pkg, name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}
