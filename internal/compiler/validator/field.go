package validator

import (
	"strings"

	"github.com/pipelinekit/stagegen/internal/compiler/decl"
	"github.com/pipelinekit/stagegen/internal/compiler/descriptor"
	diag "github.com/pipelinekit/stagegen/internal/compiler/errors"
	"github.com/pipelinekit/stagegen/internal/compiler/hierarchy"
)

// Expected field types, as reported in type mismatch diagnostics
const (
	expectBoolean = "boolean"
	expectInteger = "int or long"
	expectString  = "string"
	expectList    = "list<string>"
	expectMap     = "map<string,string>"
)

// CheckField validates a ConfigDef field of owner and derives its value kind.
// The kind is nil whenever diagnostics are returned.
func (v *Validator) CheckField(owner *decl.Declaration, f *decl.Field) (descriptor.ValueKind, diag.DiagnosticList) {
	if f.Config == nil {
		return nil, nil
	}

	var diags diag.DiagnosticList
	if !f.Public {
		diags = append(diags, diag.NewFieldNotPublic(owner.Name, f.Name))
	}
	if f.Final {
		diags = append(diags, diag.NewFieldFinal(owner.Name, f.Name))
	}
	if f.Static {
		diags = append(diags, diag.NewFieldStatic(owner.Name, f.Name))
	}

	kind, kindDiags := v.checkKind(owner, f)
	diags = append(diags, kindDiags...)

	if len(diags) > 0 {
		return nil, diags
	}
	return kind, nil
}

func (v *Validator) checkKind(owner *decl.Declaration, f *decl.Field) (descriptor.ValueKind, diag.DiagnosticList) {
	mismatch := func(code diag.ErrorCode, expected string) diag.DiagnosticList {
		return diag.DiagnosticList{diag.NewFieldTypeMismatch(code, owner.Name, f.Name, expected, f.Type.String())}
	}

	switch descriptor.ConfigType(strings.ToUpper(f.Config.Type)) {
	case descriptor.TypeBoolean:
		if !f.Type.IsBoolean() {
			return nil, mismatch(diag.ErrTypeNotBoolean, expectBoolean)
		}
		return descriptor.Boolean{}, nil

	case descriptor.TypeInteger:
		if !f.Type.IsInteger() {
			return nil, mismatch(diag.ErrTypeNotInteger, expectInteger)
		}
		return descriptor.Integer{}, nil

	case descriptor.TypeString:
		if !f.Type.IsString() {
			return nil, mismatch(diag.ErrTypeNotString, expectString)
		}
		return descriptor.String{}, nil

	case descriptor.TypeModel:
		return v.checkModel(owner, f)

	default:
		return nil, diag.DiagnosticList{diag.NewUnknownConfigType(owner.Name, f.Name, f.Config.Type)}
	}
}

func (v *Validator) checkModel(owner *decl.Declaration, f *decl.Field) (descriptor.ValueKind, diag.DiagnosticList) {
	switch {
	case f.Selector == nil && f.Modifier == nil:
		return nil, diag.DiagnosticList{diag.NewNoModelAnnotation(owner.Name, f.Name)}
	case f.Selector != nil && f.Modifier != nil:
		return nil, diag.DiagnosticList{diag.NewMultipleModelAnnotations(owner.Name, f.Name)}
	case f.Selector != nil:
		if !f.Type.IsStringList() {
			return nil, diag.DiagnosticList{diag.NewFieldTypeMismatch(diag.ErrTypeNotList, owner.Name, f.Name, expectList, f.Type.String())}
		}
		return descriptor.Model{Model: descriptor.FieldSelector{}}, nil
	}

	var diags diag.DiagnosticList
	if !f.Type.IsStringMap() {
		diags = append(diags, diag.NewFieldTypeMismatch(diag.ErrTypeNotMap, owner.Name, f.Name, expectMap, f.Type.String()))
	}

	modType, err := descriptor.ParseModifierType(strings.ToUpper(f.Modifier.Type))
	if err != nil {
		return nil, append(diags, diag.NewUnknownModifierType(owner.Name, f.Name, f.Modifier.Type))
	}

	provider, hasProvider := f.Modifier.ValuesProviderRef()
	if modType == descriptor.ModifierProvided {
		diags = append(diags, v.checkProvider(owner, f, provider, hasProvider)...)
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return descriptor.Model{Model: descriptor.FieldModifier{Type: modType, ValuesProvider: provider}}, nil
}

// checkProvider validates the values provider of a PROVIDED modifier
func (v *Validator) checkProvider(owner *decl.Declaration, f *decl.Field, provider string, ok bool) diag.DiagnosticList {
	if !ok {
		return diag.DiagnosticList{diag.NewProviderNotSupplied(owner.Name, f.Name)}
	}

	p, found := v.graph.Lookup(provider)
	if !found {
		return diag.DiagnosticList{diag.NewProviderUnresolved(owner.Name, f.Name, provider)}
	}

	var diags diag.DiagnosticList
	if !p.IsTopLevel() {
		diags = append(diags, diag.NewProviderNested(owner.Name, f.Name, provider))
	}
	if !v.walker.Ancestors(p).Contains(hierarchy.APIValuesProvider) {
		diags = append(diags, diag.NewProviderContract(owner.Name, f.Name, provider, hierarchy.APIValuesProvider))
	}
	return diags
}
