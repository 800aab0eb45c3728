// Package decl defines the declaration graph consumed by the stage analysis.
//
// A Declaration is a type definition delivered by the host for the current build:
// its name, its place in the type hierarchy, its fields and the tags attached to
// it. The analysis only ever looks at declarations through this package, so any
// discovery mechanism (declaration files, a source parser, a plugin) can feed it.
package decl

import "strings"

// Kind is the syntactic kind of a declaration
type Kind int

const (
	// KindClass is a concrete or abstract class
	KindClass Kind = iota
	// KindInterface is an interface
	KindInterface
	// KindEnum is an enumeration with named constants
	KindEnum
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name into a Kind
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "class":
		return KindClass, true
	case "interface":
		return KindInterface, true
	case "enum":
		return KindEnum, true
	default:
		return KindClass, false
	}
}

// Declaration is a single type definition in the graph
type Declaration struct {
	// Name is the fully-qualified name, e.g. "com.acme.stages.FooSource"
	Name string
	Kind Kind
	// Enclosing names the declaration this one is nested in. Empty for top-level declarations.
	Enclosing string
	// Super is the base type name. Empty when the declaration has no explicit base type.
	Super        string
	Interfaces   []string
	Constructors []Constructor
	Fields       []*Field
	// Constants holds enum constants in declaration order
	Constants []EnumConstant

	Stage    *StageDef
	ErrorDef bool
}

// SimpleName returns the last dotted segment of the qualified name
func (d *Declaration) SimpleName() string {
	return SimpleName(d.Name)
}

// PackageName returns everything before the last dot of the qualified name
func (d *Declaration) PackageName() string {
	return PackageName(d.Name)
}

// IsTopLevel reports whether the declaration is a direct package member
func (d *Declaration) IsTopLevel() bool {
	return d.Enclosing == ""
}

// Supertypes returns the direct base type followed by the implemented interfaces
func (d *Declaration) Supertypes() []string {
	out := make([]string, 0, len(d.Interfaces)+1)
	if d.Super != "" {
		out = append(out, d.Super)
	}
	return append(out, d.Interfaces...)
}

// ConfigFields returns the fields carrying a ConfigDef tag, in declaration order
func (d *Declaration) ConfigFields() []*Field {
	var out []*Field
	for _, f := range d.Fields {
		if f.Config != nil {
			out = append(out, f)
		}
	}
	return out
}

// Constructor is an explicitly declared constructor
type Constructor struct {
	Public bool
	Params []TypeRef
}

// IsPublicNoArg reports whether the constructor can be used for reflective instantiation
func (c Constructor) IsPublicNoArg() bool {
	return c.Public && len(c.Params) == 0
}

// EnumConstant is one literal of an enum declaration
type EnumConstant struct {
	Name  string
	Value string
}

// Field is a field declared on a declaration
type Field struct {
	Name   string
	Type   TypeRef
	Public bool
	Final  bool
	Static bool

	Config   *ConfigDef
	Selector *FieldSelector
	Modifier *FieldModifier
}

// StageDef is the tag that marks a declaration as a pipeline stage
type StageDef struct {
	Name        string
	Version     string
	Label       string
	Description string
	OnError     string
}

// ConfigDef is the tag that marks a field as a stage configuration option
type ConfigDef struct {
	// Name is the configuration name. Empty means the field name is used.
	Name         string
	Type         string
	Label        string
	Description  string
	DefaultValue string
	Required     bool
}

// FieldSelector marks a model field whose value is a list of record field paths
type FieldSelector struct{}

// FieldModifier marks a model field whose value maps record field paths to values
type FieldModifier struct {
	// Type is PROVIDED or SUGGESTED. Empty is treated as SUGGESTED.
	Type           string
	valuesProvider string
}

// NewFieldModifier creates a modifier tag with an optional values provider reference
func NewFieldModifier(typ, valuesProvider string) *FieldModifier {
	return &FieldModifier{Type: typ, valuesProvider: strings.TrimSpace(valuesProvider)}
}

// ValuesProviderRef returns the referenced values provider declaration name, if one was given
func (m *FieldModifier) ValuesProviderRef() (string, bool) {
	if m == nil || m.valuesProvider == "" {
		return "", false
	}
	return m.valuesProvider, true
}

// SimpleName returns the last dotted segment of a qualified name
func SimpleName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// PackageName returns the qualifier of a qualified name, or "" when there is none
func PackageName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[:i]
	}
	return ""
}
