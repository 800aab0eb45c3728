package validator

import (
	"github.com/pipelinekit/stagegen/internal/compiler/decl"
	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
)

// CheckConstructors verifies that d can be instantiated without arguments.
//
// The walk starts at d and ascends the base-type chain while the current type
// declares no constructors. The first type that declares constructors decides:
// it must declare a public no-argument one. Reaching a type that is not in the
// graph, or a type with no base, counts as success because the implicit
// default constructor applies.
func (v *Validator) CheckConstructors(d *decl.Declaration) diag.DiagnosticList {
	visited := make(map[string]bool)

	for current := d; current != nil; {
		if visited[current.Name] {
			return nil
		}
		visited[current.Name] = true

		if len(current.Constructors) > 0 {
			for _, c := range current.Constructors {
				if c.IsPublicNoArg() {
					return nil
				}
			}
			return diag.DiagnosticList{diag.NewNoDefaultConstructor(d.Name)}
		}

		if current.Super == "" {
			return nil
		}
		next, ok := v.graph.Lookup(current.Super)
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}
