// Package validator checks stage declarations, their configuration fields and
// the error-definition enum against the structural contract of the runtime.
// Checks never stop at the first problem: every violation found in a
// declaration is returned so a single build reports all of them.
package validator

import (
	"github.com/pipelinekit/stagegen/internal/compiler/decl"
	"github.com/pipelinekit/stagegen/internal/compiler/descriptor"
	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
	"github.com/pipelinekit/stagegen/internal/compiler/hierarchy"
)

// StageIndex records the (name, version) pairs already claimed in the run
type StageIndex interface {
	// Reserve claims the pair and reports whether it was still free
	Reserve(name, version string) bool
}

// Validator checks declarations resolved through a graph
type Validator struct {
	graph      decl.Graph
	walker     *hierarchy.Walker
	classifier *hierarchy.Classifier
}

// New creates a validator. A nil classifier uses the default table.
func New(graph decl.Graph, walker *hierarchy.Walker, classifier *hierarchy.Classifier) *Validator {
	if walker == nil {
		walker = hierarchy.NewWalker(graph, 0)
	}
	if classifier == nil {
		classifier = hierarchy.NewClassifier(nil)
	}
	return &Validator{graph: graph, walker: walker, classifier: classifier}
}

// Classify returns the classification of d from its ancestors
func (v *Validator) Classify(d *decl.Declaration) hierarchy.Classification {
	return v.classifier.Classify(v.walker.Ancestors(d))
}

// CheckStage validates a stage declaration and returns its classification.
// The (name, version) pair is reserved in index only when it is still free,
// so the first occurrence is indexed even if the declaration fails other checks.
func (v *Validator) CheckStage(d *decl.Declaration, index StageIndex) (hierarchy.Classification, diag.DiagnosticList) {
	var diags diag.DiagnosticList

	if d.Kind != decl.KindClass {
		diags = append(diags, diag.NewStageNotClass(d.Name, d.Kind.String()))
	}
	if !d.IsTopLevel() {
		diags = append(diags, diag.NewStageNested(d.Name))
	}

	class := v.Classify(d)
	switch {
	case class.Ambiguous():
		diags = append(diags, diag.NewStageAmbiguousType(d.Name, categoryNames(class.Matches)))
	case class.Category == hierarchy.Error:
		diags = append(diags, diag.NewStageIsErrorType(d.Name))
	case !class.Classified():
		diags = append(diags, diag.NewStageNoBaseType(d.Name))
	}

	if d.Stage != nil {
		if onError, ok := descriptor.ParseOnError(d.Stage.OnError); !ok {
			diags = append(diags, diag.NewStageInvalidOnError(d.Name, onError))
		}
	}

	if d.Stage != nil && index != nil && !index.Reserve(d.Stage.Name, d.Stage.Version) {
		diags = append(diags, diag.NewDuplicateStage(d.Name, d.Stage.Name, d.Stage.Version))
	}

	diags = append(diags, v.CheckConstructors(d)...)

	return class, diags
}

// CheckErrorDef validates an error-definition declaration
func (v *Validator) CheckErrorDef(d *decl.Declaration) diag.DiagnosticList {
	var diags diag.DiagnosticList

	if d.Kind != decl.KindEnum {
		diags = append(diags, diag.NewErrorDefNotEnum(d.Name, d.Kind.String()))
	}

	class := v.Classify(d)
	if !hasCategory(class, hierarchy.Error) {
		diags = append(diags, diag.NewErrorDefNotError(d.Name, hierarchy.APIErrorCode))
	}

	return diags
}

func hasCategory(c hierarchy.Classification, category hierarchy.Category) bool {
	for _, m := range c.Matches {
		if m == category {
			return true
		}
	}
	return false
}

func categoryNames(categories []hierarchy.Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}
