// Package output writes generated artifacts to a destination: a local
// directory, an S3 compatible bucket or memory.
//
// Artifacts are addressed by a slash separated package path ("" for the root)
// and a file name, e.g. ("com/acme", "FooSource-bundle.properties").
package output

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned when an artifact does not exist
var ErrNotFound = errors.New("artifact not found")

// Filer stores generated artifacts
type Filer interface {
	Write(ctx context.Context, pkg, name string, data []byte) error
	// Location describes where an artifact is written, for messages
	Location(pkg, name string) string
}

// Reader returns previously written artifacts
type Reader interface {
	Read(ctx context.Context, pkg, name string) ([]byte, error)
}

// ArtifactPath joins a package path and a file name into a slash separated path
func ArtifactPath(pkg, name string) string {
	pkg = strings.Trim(strings.TrimSpace(pkg), "/")
	if pkg == "" {
		return name
	}
	return path.Join(pkg, name)
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("artifact name is required")
	}
	if strings.ContainsAny(name, `/\`) {
		return errors.New("artifact name must not contain path separators")
	}
	return nil
}
