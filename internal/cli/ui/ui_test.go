package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
)

func TestFormatError(t *testing.T) {
	out := FormatError(ErrorOptions{
		Context:      "generation failed",
		Problem:      "Stage analysis reported 2 error(s).",
		Consequence:  "No stage artifacts were written.",
		Suggestions:  []string{"RUNNING"},
		HelpCommands: []string{"Get help: stagegen --help"},
		NoColor:      true,
	})

	assert.Contains(t, out, "❌ GENERATION FAILED\n")
	assert.Contains(t, out, "   Stage analysis reported 2 error(s).\n")
	assert.Contains(t, out, "   No stage artifacts were written.\n")
	assert.Contains(t, out, "   Did you mean: RUNNING?\n")
	assert.Contains(t, out, "   → Get help: stagegen --help\n")
}

func TestFormatErrorWithoutContext(t *testing.T) {
	out := Warning("output directory is not empty", true)
	assert.Equal(t, "⚠️ output directory is not empty\n", out)
}

func TestFormatSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "wrote 3 artifact(s)", true)
	assert.Equal(t, "✓ wrote 3 artifact(s)\n", buf.String())
}

func TestFormatDiagnostics(t *testing.T) {
	list := diag.DiagnosticList{
		diag.NewFieldNotPublic("com.acme.FooSource", "enabled"),
		diag.NewStageNested("com.acme.Outer.Inner"),
	}

	out := FormatDiagnostics(list, true)
	assert.Contains(t, out, "✗ FLD200 FooSource.enabled\n")
	assert.Contains(t, out, "   field.validation.not.public\n")
	assert.Contains(t, out, "✗ STG101 Inner\n")
	assert.Contains(t, out, "   → Move the stage to its own top-level declaration\n")
	assert.True(t, strings.HasSuffix(out, "2 error(s) found\n"))

	assert.Empty(t, FormatDiagnostics(nil, true))
}

func TestUnknownStateError(t *testing.T) {
	out := UnknownStateError("RUNING", []string{"NOT_RUNNING", "RUNNING", "STOPPED", "ERROR"}, true)
	assert.Contains(t, out, "UNKNOWN STATE")
	assert.Contains(t, out, "Did you mean: RUNNING")
}

func TestGenerateError(t *testing.T) {
	assert.Contains(t, GenerateError(1, false, true), "No stage artifacts were written.")
	assert.Contains(t, GenerateError(1, true, true), "unaffected by the errors")
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"NOT_RUNNING", "RUNNING", "STOPPED", "ERROR"}

	assert.Equal(t, []string{"RUNNING"}, FindSimilar("runing", candidates, nil))
	assert.Equal(t, []string{"STOPPED"}, FindSimilar("STOPED", candidates, nil))
	assert.Equal(t, []string{"RUNNING"}, FindSimilar("RUNING", candidates, &FuzzyMatchOptions{MaxDistance: 1, CaseSensitive: true}))
	assert.Empty(t, FindSimilar("runing", candidates, &FuzzyMatchOptions{MaxDistance: 1, CaseSensitive: true}))
	assert.Empty(t, FindSimilar("xyzzy-plugh", candidates, nil))
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"état", "etat", 1},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevenshteinDistance(tt.a, tt.b), "%s -> %s", tt.a, tt.b)
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "ARTIFACT", "LOCATION")
	table.AddRow("manifest", "out/PipelineStages.json")
	table.AddRow("bundle")
	assert.Equal(t, 2, table.Len())
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"ARTIFACT  LOCATION",
		"────────  ───────────────────────",
		"manifest  out/PipelineStages.json",
		"bundle    ",
	}, lines)
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("state", "RUNNING")
	table.AddMap(map[string]string{"revision": "3", "name": "default"})
	table.Render()

	assert.Equal(t, "state:    RUNNING\nname:     default\nrevision: 3\n", buf.String())
}
