package errors

import "fmt"

// Error-definition codes
const (
	ErrErrorDefNotEnum  ErrorCode = "ERR700"
	ErrErrorDefNotError ErrorCode = "ERR701"
	ErrErrorDefMultiple ErrorCode = "ERR702"
)

// NewErrorDefNotEnum creates an ERR700 diagnostic
func NewErrorDefNotEnum(decl, kind string) *Diagnostic {
	return newDiagnostic(
		ErrErrorDefNotEnum,
		"stagedeferror.validation.not.an.enum",
		CategoryErrorDef,
		fmt.Sprintf("Stage Error Definition %s is declared as %s. Stage Error Definitions must be enums.", decl, kind),
		decl, "",
	)
}

// NewErrorDefNotError creates an ERR701 diagnostic
func NewErrorDefNotError(decl, contract string) *Diagnostic {
	return newDiagnostic(
		ErrErrorDefNotError,
		"stagedeferror.validation.enum.does.not.implement.interface",
		CategoryErrorDef,
		fmt.Sprintf("Stage Error Definition %s does not implement interface '%s'.", decl, contract),
		decl, "",
	)
}

// NewErrorDefMultiple creates an ERR702 diagnostic
func NewErrorDefMultiple(decl string, others []string) *Diagnostic {
	return newDiagnostic(
		ErrErrorDefMultiple,
		"stagedeferror.validation.multiple.enums",
		CategoryErrorDef,
		fmt.Sprintf("Expected only one enum with 'StageErrorDef' annotation, found %s along with %v.", decl, others),
		decl, "",
	).WithSuggestion("Merge the error codes into a single enum")
}
