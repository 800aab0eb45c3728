// Package descriptor holds the stage descriptor data model produced by the
// analysis and its wire encodings: the JSON manifest and the key=value
// resource bundles.
package descriptor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pipelinekit/stagegen/internal/compiler/hierarchy"
)

// On-error policy tokens
const (
	OnErrorDropRecord   = "DROP_RECORD"
	OnErrorToError      = "TO_ERROR"
	OnErrorStopPipeline = "STOP_PIPELINE"
)

// ParseOnError normalizes a declared on-error policy. An empty value is
// TO_ERROR; anything else must name one of the policy tokens.
func ParseOnError(s string) (string, bool) {
	token := strings.ToUpper(strings.TrimSpace(s))
	switch token {
	case "":
		return OnErrorToError, true
	case OnErrorDropRecord, OnErrorToError, OnErrorStopPipeline:
		return token, true
	default:
		return token, false
	}
}

// StageDescriptor describes one accepted stage declaration
type StageDescriptor struct {
	ClassName   string             `json:"className"`
	Name        string             `json:"name"`
	Version     string             `json:"version"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Type        hierarchy.Category `json:"type"`
	Configs     []ConfigDescriptor `json:"configDefinitions"`
	OnError     string             `json:"onError"`
}

// ConfigDescriptor describes one configuration option of a stage
type ConfigDescriptor struct {
	Name         string
	FieldName    string
	Kind         ValueKind
	Label        string
	Description  string
	DefaultValue string
	Required     bool
	Group        string
}

// ModelDescriptor is the wire form of a model kind
type ModelDescriptor struct {
	ModelType           ModelType    `json:"modelType"`
	FieldModifierType   ModifierType `json:"fieldModifierType,omitempty"`
	ValuesProviderClass string       `json:"valuesProviderClass,omitempty"`
}

// Model returns the model descriptor for model-kind configs, nil otherwise
func (c ConfigDescriptor) Model() *ModelDescriptor {
	m, ok := c.Kind.(Model)
	if !ok {
		return nil
	}
	switch mk := m.Model.(type) {
	case FieldSelector:
		return &ModelDescriptor{ModelType: ModelFieldSelector}
	case FieldModifier:
		return &ModelDescriptor{
			ModelType:           ModelFieldModifier,
			FieldModifierType:   mk.Type,
			ValuesProviderClass: mk.ValuesProvider,
		}
	default:
		return nil
	}
}

type configJSON struct {
	Name         string           `json:"name"`
	Type         ConfigType       `json:"type"`
	Label        string           `json:"label"`
	Description  string           `json:"description"`
	DefaultValue string           `json:"defaultValue"`
	Required     bool             `json:"required"`
	Group        string           `json:"group"`
	FieldName    string           `json:"fieldName"`
	Model        *ModelDescriptor `json:"model"`
}

// MarshalJSON encodes the config with its kind flattened into type and model
func (c ConfigDescriptor) MarshalJSON() ([]byte, error) {
	if c.Kind == nil {
		return nil, fmt.Errorf("config %s has no value kind", c.Name)
	}
	return json.Marshal(configJSON{
		Name:         c.Name,
		Type:         c.Kind.ConfigType(),
		Label:        c.Label,
		Description:  c.Description,
		DefaultValue: c.DefaultValue,
		Required:     c.Required,
		Group:        c.Group,
		FieldName:    c.FieldName,
		Model:        c.Model(),
	})
}

// UnmarshalJSON rebuilds the value kind from type and model
func (c *ConfigDescriptor) UnmarshalJSON(data []byte) error {
	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var kind ValueKind
	if raw.Type == TypeModel {
		if raw.Model == nil {
			return fmt.Errorf("config %s: model type without model", raw.Name)
		}
		switch raw.Model.ModelType {
		case ModelFieldSelector:
			kind = Model{Model: FieldSelector{}}
		case ModelFieldModifier:
			kind = Model{Model: FieldModifier{
				Type:           raw.Model.FieldModifierType,
				ValuesProvider: raw.Model.ValuesProviderClass,
			}}
		default:
			return fmt.Errorf("config %s: unknown model type %q", raw.Name, raw.Model.ModelType)
		}
	} else {
		var ok bool
		if kind, ok = KindFor(raw.Type); !ok {
			return fmt.Errorf("config %s: unknown type %q", raw.Name, raw.Type)
		}
	}

	*c = ConfigDescriptor{
		Name:         raw.Name,
		FieldName:    raw.FieldName,
		Kind:         kind,
		Label:        raw.Label,
		Description:  raw.Description,
		DefaultValue: raw.DefaultValue,
		Required:     raw.Required,
		Group:        raw.Group,
	}
	return nil
}

// ErrorDescriptor describes the validated error-definition enum
type ErrorDescriptor struct {
	EnumName string
	Literals []ErrorLiteral
}

// ErrorLiteral is one enum constant and its display message
type ErrorLiteral struct {
	Name    string
	Message string
}
