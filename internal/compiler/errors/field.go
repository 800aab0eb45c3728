package errors

import "fmt"

// Field modifier, type and model codes
const (
	ErrFieldNotPublic ErrorCode = "FLD200"
	ErrFieldFinal     ErrorCode = "FLD201"
	ErrFieldStatic    ErrorCode = "FLD202"

	ErrTypeNotBoolean    ErrorCode = "TYP300"
	ErrTypeNotInteger    ErrorCode = "TYP301"
	ErrTypeNotString     ErrorCode = "TYP302"
	ErrTypeNotList       ErrorCode = "TYP303"
	ErrTypeNotMap        ErrorCode = "TYP304"
	ErrUnknownConfigType ErrorCode = "TYP305"

	ErrNoModelAnnotation        ErrorCode = "MDL400"
	ErrMultipleModelAnnotations ErrorCode = "MDL401"
	ErrProviderNotSupplied      ErrorCode = "MDL402"
	ErrProviderUnresolved       ErrorCode = "MDL403"
	ErrProviderNested           ErrorCode = "MDL404"
	ErrProviderContract         ErrorCode = "MDL405"
	ErrUnknownModifierType      ErrorCode = "MDL406"
)

func fieldSubject(decl, field string) string {
	return simpleName(decl) + "." + field
}

// NewFieldNotPublic creates a FLD200 diagnostic
func NewFieldNotPublic(decl, field string) *Diagnostic {
	return newDiagnostic(
		ErrFieldNotPublic,
		"field.validation.not.public",
		CategoryField,
		fmt.Sprintf("The field %s has \"ConfigDef\" annotation but is not declared public. Configuration fields must be declared public.", fieldSubject(decl, field)),
		decl, field,
	)
}

// NewFieldFinal creates a FLD201 diagnostic
func NewFieldFinal(decl, field string) *Diagnostic {
	return newDiagnostic(
		ErrFieldFinal,
		"field.validation.final.field",
		CategoryField,
		fmt.Sprintf("The field %s has \"ConfigDef\" annotation and is declared final. Configuration fields must not be declared final.", fieldSubject(decl, field)),
		decl, field,
	)
}

// NewFieldStatic creates a FLD202 diagnostic
func NewFieldStatic(decl, field string) *Diagnostic {
	return newDiagnostic(
		ErrFieldStatic,
		"field.validation.static.field",
		CategoryField,
		fmt.Sprintf("The field %s has \"ConfigDef\" annotation and is declared static. Configuration fields must not be declared static.", fieldSubject(decl, field)),
		decl, field,
	)
}

// NewFieldTypeMismatch creates the TYP30x diagnostic for the expected type
func NewFieldTypeMismatch(code ErrorCode, decl, field, expected, actual string) *Diagnostic {
	keys := map[ErrorCode]string{
		ErrTypeNotBoolean: "field.validation.type.is.not.boolean",
		ErrTypeNotInteger: "field.validation.type.is.not.int.or.long",
		ErrTypeNotString:  "field.validation.type.is.not.string",
		ErrTypeNotList:    "field.validation.type.is.not.list",
		ErrTypeNotMap:     "field.validation.type.is.not.map",
	}
	return newDiagnostic(
		code,
		keys[code],
		CategoryType,
		fmt.Sprintf("The type of the field %s is expected to be %s but is %s.", fieldSubject(decl, field), expected, actual),
		decl, field,
	)
}

// NewUnknownConfigType creates a TYP305 diagnostic
func NewUnknownConfigType(decl, field, configType string) *Diagnostic {
	return newDiagnostic(
		ErrUnknownConfigType,
		"field.validation.unknown.config.type",
		CategoryType,
		fmt.Sprintf("The field %s declares unknown config type %q.", fieldSubject(decl, field), configType),
		decl, field,
	).WithSuggestion("Use one of BOOLEAN, INTEGER, STRING, MODEL")
}

// NewNoModelAnnotation creates a MDL400 diagnostic
func NewNoModelAnnotation(decl, field string) *Diagnostic {
	return newDiagnostic(
		ErrNoModelAnnotation,
		"field.validation.no.model.annotation",
		CategoryModel,
		fmt.Sprintf("The type of field %s is declared as \"MODEL\". Exactly one of 'FieldSelector' or 'FieldModifier' annotation is expected.", fieldSubject(decl, field)),
		decl, field,
	)
}

// NewMultipleModelAnnotations creates a MDL401 diagnostic
func NewMultipleModelAnnotations(decl, field string) *Diagnostic {
	return newDiagnostic(
		ErrMultipleModelAnnotations,
		"field.validation.multiple.model.annotations",
		CategoryModel,
		fmt.Sprintf("The field %s is annotated with both 'FieldSelector' and 'FieldModifier' annotations. Only one of those annotation is expected.", fieldSubject(decl, field)),
		decl, field,
	)
}

// NewProviderNotSupplied creates a MDL402 diagnostic
func NewProviderNotSupplied(decl, field string) *Diagnostic {
	return newDiagnostic(
		ErrProviderNotSupplied,
		"field.validation.valuesProvider.not.supplied",
		CategoryModel,
		fmt.Sprintf("The field %s marked with FieldModifier annotation and the type is \"PROVIDED\" but no ValuesProvider implementation is supplied.", fieldSubject(decl, field)),
		decl, field,
	)
}

// NewProviderUnresolved creates a MDL403 diagnostic
func NewProviderUnresolved(decl, field, provider string) *Diagnostic {
	return newDiagnostic(
		ErrProviderUnresolved,
		"field.validation.valuesProvider.unresolved",
		CategoryModel,
		fmt.Sprintf("ValuesProvider %s referenced by field %s cannot be resolved.", provider, fieldSubject(decl, field)),
		decl, field,
	)
}

// NewProviderNested creates a MDL404 diagnostic
func NewProviderNested(decl, field, provider string) *Diagnostic {
	return newDiagnostic(
		ErrProviderNested,
		"field.validation.valuesProvider.not.outer.class",
		CategoryModel,
		fmt.Sprintf("ValuesProvider %s is an inner class. Inner class ValuesProvider implementations are not supported.", provider),
		decl, field,
	)
}

// NewProviderContract creates a MDL405 diagnostic
func NewProviderContract(decl, field, provider, contract string) *Diagnostic {
	return newDiagnostic(
		ErrProviderContract,
		"field.validation.valuesProvider.does.not.implement.interface",
		CategoryModel,
		fmt.Sprintf("Class %s does not implement '%s' interface.", provider, contract),
		decl, field,
	)
}

// NewUnknownModifierType creates a MDL406 diagnostic
func NewUnknownModifierType(decl, field, modifierType string) *Diagnostic {
	return newDiagnostic(
		ErrUnknownModifierType,
		"field.validation.unknown.modifier.type",
		CategoryModel,
		fmt.Sprintf("The field %s declares unknown FieldModifier type %q.", fieldSubject(decl, field), modifierType),
		decl, field,
	).WithSuggestion("Use PROVIDED or SUGGESTED")
}
