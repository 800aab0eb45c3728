package errors

import (
	"fmt"
	"strings"
)

// FormatDiagnostic returns a human-readable diagnostic for terminal output
func FormatDiagnostic(d *Diagnostic) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s [%s] in %s\n", categoryDisplayName(d.Category), d.Code, subjectOrUnknown(d))
	fmt.Fprintf(&b, "  %s\n", d.Message)

	if d.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s\n", d.Suggestion)
	}

	return b.String()
}

// FormatDiagnosticList returns a formatted string of all diagnostics
func FormatDiagnosticList(list DiagnosticList) string {
	if len(list) == 0 {
		return "no errors"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stage analysis failed with %d error(s)\n\n", len(list))

	for i, d := range list {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d.Format())
	}

	return b.String()
}

// FormatCompact returns a compact one-line diagnostic
func FormatCompact(d *Diagnostic) string {
	return fmt.Sprintf("%s: %s: %s [%s]", subjectOrUnknown(d), d.Severity, d.Message, d.Code)
}

func subjectOrUnknown(d *Diagnostic) string {
	if d.Declaration == "" {
		return "<run>"
	}
	if d.Field != "" {
		return d.Declaration + "." + d.Field
	}
	return d.Declaration
}

// categoryDisplayName returns a human-readable category name
func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryStructural:
		return "Stage Definition Error"
	case CategoryField:
		return "Config Field Error"
	case CategoryType:
		return "Config Type Error"
	case CategoryModel:
		return "Config Model Error"
	case CategoryDuplicate:
		return "Duplicate Stage Error"
	case CategoryConstructor:
		return "Constructor Error"
	case CategoryErrorDef:
		return "Error Definition Error"
	case CategoryEmit:
		return "Output Error"
	default:
		return "Error"
	}
}
