package decl

import (
	"fmt"
	"strings"
)

// Built-in type names understood by the field type rules.
const (
	TypeBoolean = "boolean"
	TypeInt     = "int"
	TypeLong    = "long"
	TypeString  = "string"
	TypeList    = "list"
	TypeMap     = "map"
)

// TypeRef is a reference to a field or parameter type, e.g. list<string>
type TypeRef struct {
	Name string
	Args []TypeRef
}

// NewTypeRef creates a type reference with optional type arguments
func NewTypeRef(name string, args ...TypeRef) TypeRef {
	return TypeRef{Name: name, Args: args}
}

// String returns the canonical representation of the type reference
func (t TypeRef) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(args, ","))
}

// Equals checks if two type references are structurally equal
func (t TypeRef) Equals(other TypeRef) bool {
	if t.Name != other.Name || len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equals(other.Args[i]) {
			return false
		}
	}
	return true
}

// IsZero reports whether the reference names no type
func (t TypeRef) IsZero() bool {
	return t.Name == ""
}

// IsBoolean reports whether the type is the boolean primitive
func (t TypeRef) IsBoolean() bool {
	return t.Equals(NewTypeRef(TypeBoolean))
}

// IsInteger reports whether the type is int or long
func (t TypeRef) IsInteger() bool {
	return t.Equals(NewTypeRef(TypeInt)) || t.Equals(NewTypeRef(TypeLong))
}

// IsString reports whether the type is string
func (t TypeRef) IsString() bool {
	return t.Equals(NewTypeRef(TypeString))
}

// IsStringList reports whether the type is list<string>
func (t TypeRef) IsStringList() bool {
	return t.Equals(NewTypeRef(TypeList, NewTypeRef(TypeString)))
}

// IsStringMap reports whether the type is map<string,string>
func (t TypeRef) IsStringMap() bool {
	return t.Equals(NewTypeRef(TypeMap, NewTypeRef(TypeString), NewTypeRef(TypeString)))
}

// ParseTypeRef parses the textual form of a type reference.
// Whitespace is ignored; type arguments are enclosed in angle brackets and separated by commas.
func ParseTypeRef(s string) (TypeRef, error) {
	p := &typeParser{src: strings.Join(strings.Fields(s), "")}
	if p.src == "" {
		return TypeRef{}, fmt.Errorf("empty type")
	}
	t, err := p.parse()
	if err != nil {
		return TypeRef{}, fmt.Errorf("invalid type %q: %w", s, err)
	}
	if p.pos != len(p.src) {
		return TypeRef{}, fmt.Errorf("invalid type %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) parse() (TypeRef, error) {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("<>,", rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return TypeRef{}, fmt.Errorf("expected type name at offset %d", start)
	}
	t := TypeRef{Name: p.src[start:p.pos]}

	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return t, nil
	}
	p.pos++ // '<'
	for {
		arg, err := p.parse()
		if err != nil {
			return TypeRef{}, err
		}
		t.Args = append(t.Args, arg)

		if p.pos >= len(p.src) {
			return TypeRef{}, fmt.Errorf("unterminated type arguments")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return t, nil
		default:
			return TypeRef{}, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
		}
	}
}
