// Package errors provides structured diagnostics for the stage analysis.
// It defines diagnostic codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON.
package errors

import (
	"encoding/json"
)

// ErrorCode is the unique code of a diagnostic, e.g. "FLD200"
type ErrorCode string

// ErrorCategory groups diagnostic codes
type ErrorCategory string

const (
	// CategoryStructural covers stage declaration shape (STG100-199)
	CategoryStructural ErrorCategory = "structural"
	// CategoryField covers field modifiers (FLD200-299)
	CategoryField ErrorCategory = "field"
	// CategoryType covers declared kind vs field type mismatches (TYP300-399)
	CategoryType ErrorCategory = "type"
	// CategoryModel covers selector/modifier tags and values providers (MDL400-499)
	CategoryModel ErrorCategory = "model"
	// CategoryDuplicate covers repeated stage name and version pairs (DUP500-599)
	CategoryDuplicate ErrorCategory = "duplicate"
	// CategoryConstructor covers the no-argument construction contract (CTR600-699)
	CategoryConstructor ErrorCategory = "constructor"
	// CategoryErrorDef covers error-definition enums (ERR700-799)
	CategoryErrorDef ErrorCategory = "error_definition"
	// CategoryEmit covers artifact output failures (GEN800-899)
	CategoryEmit ErrorCategory = "emit"
)

// ErrorSeverity indicates the severity level of a diagnostic
type ErrorSeverity string

const (
	// SeverityError indicates a diagnostic that fails the build
	SeverityError ErrorSeverity = "error"
)

// Diagnostic is a single problem found in the declarations
type Diagnostic struct {
	// Code is the unique diagnostic code
	Code ErrorCode `json:"code"`
	// Type is a machine-readable key, e.g. "field.validation.not.public"
	Type     string        `json:"type"`
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	// Declaration is the qualified name of the declaration concerned
	Declaration string `json:"declaration,omitempty"`
	// Field is set when the diagnostic concerns a single field
	Field      string `json:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	return FormatCompact(d)
}

// Format returns a human-readable diagnostic for terminal output
func (d *Diagnostic) Format() string {
	return FormatDiagnostic(d)
}

// ToJSON returns the diagnostic as a JSON string
func (d *Diagnostic) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Subject returns "Decl.field" or "Decl" using simple names
func (d *Diagnostic) Subject() string {
	subject := simpleName(d.Declaration)
	if d.Field != "" {
		subject += "." + d.Field
	}
	return subject
}

// WithSuggestion sets a suggestion for fixing the problem
func (d *Diagnostic) WithSuggestion(suggestion string) *Diagnostic {
	d.Suggestion = suggestion
	return d
}

// DiagnosticList is a collection of diagnostics
type DiagnosticList []*Diagnostic

// Error implements the error interface
func (dl DiagnosticList) Error() string {
	if len(dl) == 0 {
		return "no errors"
	}
	return FormatDiagnosticList(dl)
}

// HasErrors returns true if the list contains any error-severity diagnostic
func (dl DiagnosticList) HasErrors() bool {
	for _, d := range dl {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ToJSON returns all diagnostics as a JSON array
func (dl DiagnosticList) ToJSON() (string, error) {
	if dl == nil {
		dl = DiagnosticList{}
	}
	bytes, err := json.MarshalIndent(dl, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ByCode returns the diagnostics with the given code
func (dl DiagnosticList) ByCode(code ErrorCode) DiagnosticList {
	var out DiagnosticList
	for _, d := range dl {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// ByCategory returns the diagnostics in the given category
func (dl DiagnosticList) ByCategory(category ErrorCategory) DiagnosticList {
	var out DiagnosticList
	for _, d := range dl {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// newDiagnostic creates an error-severity diagnostic
func newDiagnostic(code ErrorCode, typ string, category ErrorCategory, message, declaration, field string) *Diagnostic {
	return &Diagnostic{
		Code:        code,
		Type:        typ,
		Category:    category,
		Severity:    SeverityError,
		Message:     message,
		Declaration: declaration,
		Field:       field,
	}
}

func simpleName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[i+1:]
		}
	}
	return qualified
}
