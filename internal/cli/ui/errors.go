package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func newColor(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ UNKNOWN STATE: RUNING
//	   RUNING is not a pipeline state.
//
//	   Did you mean: RUNNING?
//
//	   → Get help: stagegen state set --help
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelWarning:
		headerColor = newColor(opts.NoColor, color.FgYellow, color.Bold)
		bodyColor = newColor(opts.NoColor, color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = newColor(opts.NoColor, color.FgCyan, color.Bold)
		bodyColor = newColor(opts.NoColor, color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = newColor(opts.NoColor, color.FgRed, color.Bold)
		bodyColor = newColor(opts.NoColor, color.FgRed)
		symbol = "❌"
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		newColor(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := newColor(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return newColor(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// FormatDiagnostics renders analysis diagnostics, one block per diagnostic,
// followed by a summary line
func FormatDiagnostics(list diag.DiagnosticList, noColor bool) string {
	var b strings.Builder

	red := newColor(noColor, color.FgRed, color.Bold)
	gray := newColor(noColor, color.FgHiBlack)
	yellow := newColor(noColor, color.FgYellow)

	for _, d := range list {
		red.Fprintf(&b, "✗ %s", d.Code)
		fmt.Fprintf(&b, " %s\n", d.Subject())
		fmt.Fprintf(&b, "   %s\n", d.Message)
		gray.Fprintf(&b, "   %s\n", d.Type)
		if d.Suggestion != "" {
			yellow.Fprintf(&b, "   → %s\n", d.Suggestion)
		}
	}

	if len(list) > 0 {
		b.WriteString("\n")
		red.Fprintf(&b, "%d error(s) found\n", len(list))
	}
	return b.String()
}

// GenerateError creates the message printed when a run produced diagnostics
func GenerateError(count int, artifactsWritten bool, noColor bool) string {
	consequence := "No stage artifacts were written."
	if artifactsWritten {
		consequence = "Only the artifacts unaffected by the errors were written."
	}
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "GENERATION FAILED",
		Problem:     fmt.Sprintf("Stage analysis reported %d error(s).", count),
		Consequence: consequence,
		HelpCommands: []string{
			"Machine readable report: stagegen generate --json",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"Create a config file: stagegen init",
			"Get help: stagegen --help",
		},
		NoColor: noColor,
	})
}

// UnknownStateError reports a state name that is not a pipeline state
func UnknownStateError(given string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "UNKNOWN STATE",
		Problem:     fmt.Sprintf("%s is not a pipeline state.", given),
		Suggestions: FindSimilar(given, known, nil),
		HelpCommands: []string{
			"Known states: " + strings.Join(known, ", "),
			"Get help: stagegen state set --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}
