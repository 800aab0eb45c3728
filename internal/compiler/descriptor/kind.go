package descriptor

import "fmt"

// ConfigType is the wire name of a configuration value kind
type ConfigType string

const (
	TypeBoolean ConfigType = "BOOLEAN"
	TypeInteger ConfigType = "INTEGER"
	TypeString  ConfigType = "STRING"
	TypeModel   ConfigType = "MODEL"
)

// ModelType is the wire name of a model kind
type ModelType string

const (
	ModelFieldSelector ModelType = "FIELD_SELECTOR"
	ModelFieldModifier ModelType = "FIELD_MODIFIER"
)

// ModifierType is the sub-kind of a field modifier
type ModifierType string

const (
	ModifierProvided  ModifierType = "PROVIDED"
	ModifierSuggested ModifierType = "SUGGESTED"
)

// ParseModifierType converts a tag value into a ModifierType. Empty means SUGGESTED.
func ParseModifierType(s string) (ModifierType, error) {
	switch ModifierType(s) {
	case "", ModifierSuggested:
		return ModifierSuggested, nil
	case ModifierProvided:
		return ModifierProvided, nil
	default:
		return "", fmt.Errorf("unknown field modifier type %q", s)
	}
}

// ValueKind is the declared kind of a configuration value.
// It is one of Boolean, Integer, String or Model.
type ValueKind interface {
	ConfigType() ConfigType
	isValueKind()
}

// Boolean is a boolean configuration value
type Boolean struct{}

// Integer is an int or long configuration value
type Integer struct{}

// String is a string configuration value
type String struct{}

// Model is a structured configuration value described by a model
type Model struct {
	Model ModelKind
}

func (Boolean) ConfigType() ConfigType { return TypeBoolean }
func (Integer) ConfigType() ConfigType { return TypeInteger }
func (String) ConfigType() ConfigType  { return TypeString }
func (Model) ConfigType() ConfigType   { return TypeModel }

func (Boolean) isValueKind() {}
func (Integer) isValueKind() {}
func (String) isValueKind()  {}
func (Model) isValueKind()   {}

// ModelKind is either FieldSelector or FieldModifier
type ModelKind interface {
	ModelType() ModelType
	isModelKind()
}

// FieldSelector selects a list of record fields
type FieldSelector struct{}

// FieldModifier maps record fields to values, optionally backed by a values provider
type FieldModifier struct {
	Type ModifierType
	// ValuesProvider is the qualified name of the provider declaration, empty when none
	ValuesProvider string
}

func (FieldSelector) ModelType() ModelType { return ModelFieldSelector }
func (FieldModifier) ModelType() ModelType { return ModelFieldModifier }

func (FieldSelector) isModelKind() {}
func (FieldModifier) isModelKind() {}

// KindFor returns the scalar ValueKind for a config type.
// MODEL is not scalar and needs a model, so it returns false like unknown types.
func KindFor(t ConfigType) (ValueKind, bool) {
	switch t {
	case TypeBoolean:
		return Boolean{}, true
	case TypeInteger:
		return Integer{}, true
	case TypeString:
		return String{}, true
	default:
		return nil, false
	}
}
