package errors

import (
	"fmt"
	"strings"
)

// Structural, duplicate and constructor codes
const (
	// ErrStageNotClass indicates a stage tag on something other than a class
	ErrStageNotClass ErrorCode = "STG100"
	// ErrStageNested indicates a stage declared inside another declaration
	ErrStageNested ErrorCode = "STG101"
	// ErrStageNoBaseType indicates a stage without a recognized base type or interface
	ErrStageNoBaseType ErrorCode = "STG102"
	// ErrStageIsErrorType indicates a stage whose ancestry classifies it as an error definition
	ErrStageIsErrorType ErrorCode = "STG103"
	// ErrStageAmbiguousType indicates ancestors from more than one category
	ErrStageAmbiguousType ErrorCode = "STG104"
	// ErrStageInvalidOnError indicates an on-error policy outside the known tokens
	ErrStageInvalidOnError ErrorCode = "STG105"

	// ErrDuplicateStage indicates a repeated stage name and version pair
	ErrDuplicateStage ErrorCode = "DUP500"

	// ErrNoDefaultConstructor indicates no reachable public no-argument constructor
	ErrNoDefaultConstructor ErrorCode = "CTR600"
)

// NewStageNotClass creates a STG100 diagnostic
func NewStageNotClass(decl, kind string) *Diagnostic {
	return newDiagnostic(
		ErrStageNotClass,
		"stagedef.validation.not.a.class",
		CategoryStructural,
		fmt.Sprintf("Stage %s is declared as %s. Stage implementations must be classes.", decl, kind),
		decl, "",
	)
}

// NewStageNested creates a STG101 diagnostic
func NewStageNested(decl string) *Diagnostic {
	return newDiagnostic(
		ErrStageNested,
		"stagedef.validation.not.outer.class",
		CategoryStructural,
		fmt.Sprintf("Stage %s is an inner class. Inner class Stage implementations are not supported.", simpleName(decl)),
		decl, "",
	).WithSuggestion("Move the stage to its own top-level declaration")
}

// NewStageNoBaseType creates a STG102 diagnostic
func NewStageNoBaseType(decl string) *Diagnostic {
	return newDiagnostic(
		ErrStageNoBaseType,
		"stagedef.validation.does.not.implement.interface",
		CategoryStructural,
		fmt.Sprintf("Stage %s neither extends one of BaseSource, BaseProcessor, BaseTarget classes nor implements one of Source, Processor, Target interface.", decl),
		decl, "",
	)
}

// NewStageIsErrorType creates a STG103 diagnostic
func NewStageIsErrorType(decl string) *Diagnostic {
	return newDiagnostic(
		ErrStageIsErrorType,
		"stagedef.validation.is.error.definition",
		CategoryStructural,
		fmt.Sprintf("Stage %s implements the error code contract instead of a stage contract.", decl),
		decl, "",
	)
}

// NewStageAmbiguousType creates a STG104 diagnostic
func NewStageAmbiguousType(decl string, categories []string) *Diagnostic {
	return newDiagnostic(
		ErrStageAmbiguousType,
		"stagedef.validation.ambiguous.type",
		CategoryStructural,
		fmt.Sprintf("Stage %s has ancestors from more than one stage category: %s.", decl, strings.Join(categories, ", ")),
		decl, "",
	).WithSuggestion("Extend or implement the contract of exactly one stage category")
}

// NewStageInvalidOnError creates a STG105 diagnostic
func NewStageInvalidOnError(decl, onError string) *Diagnostic {
	return newDiagnostic(
		ErrStageInvalidOnError,
		"stagedef.validation.invalid.on.error",
		CategoryStructural,
		fmt.Sprintf("Stage %s declares unknown on-error policy %q.", decl, onError),
		decl, "",
	).WithSuggestion("Use one of DROP_RECORD, TO_ERROR, STOP_PIPELINE")
}

// NewDuplicateStage creates a DUP500 diagnostic
func NewDuplicateStage(decl, name, version string) *Diagnostic {
	return newDiagnostic(
		ErrDuplicateStage,
		"stagedef.validation.duplicate.stages",
		CategoryDuplicate,
		fmt.Sprintf("Multiple stage definitions found with the same name and version. Name %s, Version %s", name, version),
		decl, "",
	)
}

// NewNoDefaultConstructor creates a CTR600 diagnostic
func NewNoDefaultConstructor(decl string) *Diagnostic {
	return newDiagnostic(
		ErrNoDefaultConstructor,
		"stage.validation.no.default.constructor",
		CategoryConstructor,
		fmt.Sprintf("The Stage %s has constructor with arguments but no default constructor.", simpleName(decl)),
		decl, "",
	).WithSuggestion("Add a public constructor without parameters")
}
