package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
		ok    bool
	}{
		{"", KindClass, true},
		{"class", KindClass, true},
		{" Interface ", KindInterface, true},
		{"ENUM", KindEnum, true},
		{"record", KindClass, false},
	}

	for _, tt := range tests {
		got, ok := ParseKind(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestDeclarationNames(t *testing.T) {
	d := &Declaration{Name: "com.acme.stages.FooSource"}

	assert.Equal(t, "FooSource", d.SimpleName())
	assert.Equal(t, "com.acme.stages", d.PackageName())
	assert.True(t, d.IsTopLevel())

	assert.Equal(t, "Foo", SimpleName("Foo"))
	assert.Equal(t, "", PackageName("Foo"))
}

func TestSupertypesOrder(t *testing.T) {
	d := &Declaration{Super: "a.Base", Interfaces: []string{"a.I1", "a.I2"}}
	assert.Equal(t, []string{"a.Base", "a.I1", "a.I2"}, d.Supertypes())

	noBase := &Declaration{Interfaces: []string{"a.I1"}}
	assert.Equal(t, []string{"a.I1"}, noBase.Supertypes())
}

func TestConfigFields(t *testing.T) {
	d := &Declaration{Fields: []*Field{
		{Name: "a", Config: &ConfigDef{}},
		{Name: "b"},
		{Name: "c", Config: &ConfigDef{}},
	}}

	fields := d.ConfigFields()
	require.Len(t, fields, 2)
	assert.Equal(t, "a", fields[0].Name)
	assert.Equal(t, "c", fields[1].Name)
}

func TestConstructorIsPublicNoArg(t *testing.T) {
	assert.True(t, Constructor{Public: true}.IsPublicNoArg())
	assert.False(t, Constructor{Public: false}.IsPublicNoArg())
	assert.False(t, Constructor{Public: true, Params: []TypeRef{NewTypeRef(TypeInt)}}.IsPublicNoArg())
}

func TestValuesProviderRef(t *testing.T) {
	ref, ok := NewFieldModifier("PROVIDED", " com.acme.Values ").ValuesProviderRef()
	assert.True(t, ok)
	assert.Equal(t, "com.acme.Values", ref)

	_, ok = NewFieldModifier("PROVIDED", "").ValuesProviderRef()
	assert.False(t, ok)

	var missing *FieldModifier
	_, ok = missing.ValuesProviderRef()
	assert.False(t, ok)
}

func TestIndex(t *testing.T) {
	a := &Declaration{Name: "a.A"}
	idx, err := NewIndex(a)
	require.NoError(t, err)

	got, ok := idx.Lookup("a.A")
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = idx.Lookup("a.B")
	assert.False(t, ok)

	assert.Error(t, idx.Add(&Declaration{Name: "a.A"}))
	assert.Error(t, idx.Add(&Declaration{}))
	assert.Equal(t, 1, idx.Len())
}

func TestRoundFilters(t *testing.T) {
	round := &Round{Declarations: []*Declaration{
		{Name: "a.Stage", Stage: &StageDef{Name: "s"}},
		{Name: "a.Plain"},
		{Name: "a.Errors", ErrorDef: true},
	}}

	stages := round.StageDeclarations()
	require.Len(t, stages, 1)
	assert.Equal(t, "a.Stage", stages[0].Name)

	errs := round.ErrorDeclarations()
	require.Len(t, errs, 1)
	assert.Equal(t, "a.Errors", errs[0].Name)
}
