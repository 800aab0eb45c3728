package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipelinekit/stagegen/internal/compiler/decl"
	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
	"github.com/pipelinekit/stagegen/internal/compiler/hierarchy"
)

func TestCheckConstructors(t *testing.T) {
	noArg := decl.Constructor{Public: true}
	privateNoArg := decl.Constructor{Public: false}
	withArg := decl.Constructor{Public: true, Params: []decl.TypeRef{decl.NewTypeRef(decl.TypeString)}}

	tests := []struct {
		name      string
		own       []decl.Constructor
		parent    []decl.Constructor
		wantError bool
	}{
		{name: "no constructors anywhere"},
		{name: "public no-arg", own: []decl.Constructor{withArg, noArg}},
		{name: "only arg constructor", own: []decl.Constructor{withArg}, wantError: true},
		{name: "private no-arg", own: []decl.Constructor{privateNoArg}, wantError: true},
		{name: "inherits no-arg", parent: []decl.Constructor{noArg}},
		{name: "inherits arg constructor", parent: []decl.Constructor{withArg}, wantError: true},
		{name: "own no-arg hides parent", own: []decl.Constructor{noArg}, parent: []decl.Constructor{withArg}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := &decl.Declaration{
				Name:         "com.acme.AbstractSource",
				Kind:         decl.KindClass,
				Super:        hierarchy.APIBaseSource,
				Constructors: tt.parent,
			}
			d := stage("com.acme.FooSource", parent.Name)
			d.Constructors = tt.own
			v := newTestValidator(t, parent, d)

			diags := v.CheckConstructors(d)

			if tt.wantError {
				assert.Equal(t, []diag.ErrorCode{diag.ErrNoDefaultConstructor}, codes(diags))
				assert.Equal(t, "com.acme.FooSource", diags[0].Declaration)
			} else {
				assert.Empty(t, diags)
			}
		})
	}
}

func TestCheckConstructorsStopsOnCycle(t *testing.T) {
	a := &decl.Declaration{Name: "com.acme.A", Kind: decl.KindClass, Super: "com.acme.B"}
	b := &decl.Declaration{Name: "com.acme.B", Kind: decl.KindClass, Super: "com.acme.A"}
	v := newTestValidator(t, a, b)

	assert.Empty(t, v.CheckConstructors(a))
}
