package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ancestors(names ...string) *AncestorSet {
	set := newAncestorSet()
	for _, n := range names {
		set.add(n)
	}
	return set
}

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name      string
		ancestors []string
		category  Category
		stage     bool
		ambiguous bool
	}{
		{"base source", []string{APIBaseSource}, Source, true, false},
		{"source interface", []string{"a.X", APISource}, Source, true, false},
		{"record processor", []string{APIRecordProcessor}, Processor, true, false},
		{"single lane", []string{APISingleLaneProcessor}, Processor, true, false},
		{"target", []string{APIBaseTarget}, Target, true, false},
		{"error", []string{APIErrorCode}, Error, false, false},
		{"nothing", []string{"java.lang.Object"}, Unclassified, false, false},
		{"source wins precedence", []string{APITarget, APISource}, Source, false, true},
		{"processor and error", []string{APIErrorCode, APIProcessor}, Processor, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(ancestors(tt.ancestors...))

			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.stage, got.IsStage())
			assert.Equal(t, tt.ambiguous, got.Ambiguous())
			assert.Equal(t, tt.category != Unclassified, got.Classified())
		})
	}
}

func TestClassifyMatchesInPrecedenceOrder(t *testing.T) {
	got := NewClassifier(nil).Classify(ancestors(APIErrorCode, APIBaseTarget, APIBaseSource))

	assert.Equal(t, []Category{Source, Target, Error}, got.Matches)
}

func TestCustomTable(t *testing.T) {
	c := NewClassifier([]Rule{{Category: Target, Ancestors: []string{"custom.Sink"}}})

	assert.Equal(t, Target, c.Classify(ancestors("custom.Sink")).Category)
	assert.Equal(t, Unclassified, c.Classify(ancestors(APIBaseSource)).Category)
}
