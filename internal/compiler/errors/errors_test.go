package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeUniqueness(t *testing.T) {
	codes := make(map[ErrorCode]string)

	groups := map[string][]ErrorCode{
		"structural": {
			ErrStageNotClass, ErrStageNested, ErrStageNoBaseType,
			ErrStageIsErrorType, ErrStageAmbiguousType, ErrStageInvalidOnError,
		},
		"field": {ErrFieldNotPublic, ErrFieldFinal, ErrFieldStatic},
		"type": {
			ErrTypeNotBoolean, ErrTypeNotInteger, ErrTypeNotString,
			ErrTypeNotList, ErrTypeNotMap, ErrUnknownConfigType,
		},
		"model": {
			ErrNoModelAnnotation, ErrMultipleModelAnnotations, ErrProviderNotSupplied,
			ErrProviderUnresolved, ErrProviderNested, ErrProviderContract,
			ErrUnknownModifierType,
		},
		"duplicate":   {ErrDuplicateStage},
		"constructor": {ErrNoDefaultConstructor},
		"error":       {ErrErrorDefNotEnum, ErrErrorDefNotError, ErrErrorDefMultiple},
		"emit":        {ErrEmitFailed},
	}

	for group, list := range groups {
		for _, code := range list {
			if prev, exists := codes[code]; exists {
				t.Errorf("Duplicate error code %s (previously used for %s)", code, prev)
			}
			codes[code] = group
		}
	}
}

func TestDiagnosticCategories(t *testing.T) {
	tests := []struct {
		name     string
		diag     *Diagnostic
		category ErrorCategory
		code     ErrorCode
	}{
		{"not a class", NewStageNotClass("a.Foo", "interface"), CategoryStructural, ErrStageNotClass},
		{"nested", NewStageNested("a.Outer.Foo"), CategoryStructural, ErrStageNested},
		{"no base", NewStageNoBaseType("a.Foo"), CategoryStructural, ErrStageNoBaseType},
		{"error type", NewStageIsErrorType("a.Foo"), CategoryStructural, ErrStageIsErrorType},
		{"ambiguous", NewStageAmbiguousType("a.Foo", []string{"SOURCE", "TARGET"}), CategoryStructural, ErrStageAmbiguousType},
		{"on error", NewStageInvalidOnError("a.Foo", "EXPLODE"), CategoryStructural, ErrStageInvalidOnError},
		{"not public", NewFieldNotPublic("a.Foo", "x"), CategoryField, ErrFieldNotPublic},
		{"final", NewFieldFinal("a.Foo", "x"), CategoryField, ErrFieldFinal},
		{"static", NewFieldStatic("a.Foo", "x"), CategoryField, ErrFieldStatic},
		{"mismatch", NewFieldTypeMismatch(ErrTypeNotMap, "a.Foo", "x", "map<string,string>", "int"), CategoryType, ErrTypeNotMap},
		{"unknown type", NewUnknownConfigType("a.Foo", "x", "FLOAT"), CategoryType, ErrUnknownConfigType},
		{"no model", NewNoModelAnnotation("a.Foo", "x"), CategoryModel, ErrNoModelAnnotation},
		{"both models", NewMultipleModelAnnotations("a.Foo", "x"), CategoryModel, ErrMultipleModelAnnotations},
		{"provider missing", NewProviderNotSupplied("a.Foo", "x"), CategoryModel, ErrProviderNotSupplied},
		{"provider unresolved", NewProviderUnresolved("a.Foo", "x", "a.P"), CategoryModel, ErrProviderUnresolved},
		{"provider nested", NewProviderNested("a.Foo", "x", "a.O.P"), CategoryModel, ErrProviderNested},
		{"provider contract", NewProviderContract("a.Foo", "x", "a.P", "pipeline.api.ValuesProvider"), CategoryModel, ErrProviderContract},
		{"modifier type", NewUnknownModifierType("a.Foo", "x", "FIXED"), CategoryModel, ErrUnknownModifierType},
		{"duplicate", NewDuplicateStage("a.Foo", "foo", "1"), CategoryDuplicate, ErrDuplicateStage},
		{"constructor", NewNoDefaultConstructor("a.Foo"), CategoryConstructor, ErrNoDefaultConstructor},
		{"not enum", NewErrorDefNotEnum("a.Errors", "class"), CategoryErrorDef, ErrErrorDefNotEnum},
		{"not error", NewErrorDefNotError("a.Errors", "pipeline.api.ErrorCode"), CategoryErrorDef, ErrErrorDefNotError},
		{"multiple", NewErrorDefMultiple("a.Errors", []string{"a.Other"}), CategoryErrorDef, ErrErrorDefMultiple},
		{"emit", NewEmitFailed("PipelineStages.json", fmt.Errorf("disk full")), CategoryEmit, ErrEmitFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.diag.Code)
			assert.Equal(t, tt.category, tt.diag.Category)
			assert.Equal(t, SeverityError, tt.diag.Severity)
			assert.NotEmpty(t, tt.diag.Type)
			assert.NotEmpty(t, tt.diag.Message)
		})
	}
}

func TestFieldDiagnosticSubject(t *testing.T) {
	d := NewFieldNotPublic("com.acme.FooSource", "port")

	assert.Equal(t, "com.acme.FooSource", d.Declaration)
	assert.Equal(t, "port", d.Field)
	assert.Equal(t, "FooSource.port", d.Subject())
	assert.Contains(t, d.Message, "FooSource.port")
}

func TestFormatCompact(t *testing.T) {
	d := NewNoDefaultConstructor("com.acme.FooSource")

	out := d.Error()
	assert.True(t, strings.HasPrefix(out, "com.acme.FooSource: error: "))
	assert.True(t, strings.HasSuffix(out, "[CTR600]"))

	emit := NewEmitFailed("x.json", fmt.Errorf("boom"))
	assert.True(t, strings.HasPrefix(emit.Error(), "<run>: error: "))
}

func TestFormatDiagnosticIncludesSuggestion(t *testing.T) {
	out := NewStageNested("com.acme.Outer.Inner").Format()

	assert.Contains(t, out, "Stage Definition Error [STG101]")
	assert.Contains(t, out, "Inner is an inner class")
	assert.Contains(t, out, "Suggestion: Move the stage")
}

func TestDiagnosticListFiltering(t *testing.T) {
	list := DiagnosticList{
		NewFieldNotPublic("a.Foo", "x"),
		NewFieldStatic("a.Foo", "y"),
		NewDuplicateStage("a.Bar", "foo", "1"),
	}

	assert.True(t, list.HasErrors())
	assert.Len(t, list.ByCategory(CategoryField), 2)
	assert.Len(t, list.ByCode(ErrDuplicateStage), 1)
	assert.Empty(t, list.ByCode(ErrStageNested))
	assert.Contains(t, list.Error(), "Stage analysis failed with 3 error(s)")

	var empty DiagnosticList
	assert.False(t, empty.HasErrors())
	assert.Equal(t, "no errors", empty.Error())
}

func TestDiagnosticListToJSON(t *testing.T) {
	list := DiagnosticList{NewFieldFinal("a.Foo", "x")}

	out, err := list.ToJSON()
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "FLD201", decoded[0]["code"])
	assert.Equal(t, "field", decoded[0]["category"])
	assert.Equal(t, "x", decoded[0]["field"])
	_, hasSuggestion := decoded[0]["suggestion"]
	assert.False(t, hasSuggestion)

	var empty DiagnosticList
	out, err = empty.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}
