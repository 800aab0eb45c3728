package errors

import "fmt"

// ErrEmitFailed indicates an artifact could not be written
const ErrEmitFailed ErrorCode = "GEN800"

// NewEmitFailed creates a GEN800 diagnostic for the artifact at path
func NewEmitFailed(path string, err error) *Diagnostic {
	return &Diagnostic{
		Code:     ErrEmitFailed,
		Type:     "stagegen.emit.failed",
		Category: CategoryEmit,
		Severity: SeverityError,
		Message:  fmt.Sprintf("Could not write %s: %v", path, err),
	}
}
