package decl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk layout of a declaration file. One file is one round.
type fileSchema struct {
	Declarations []declSchema `yaml:"declarations"`
}

type declSchema struct {
	Name         string           `yaml:"name"`
	Kind         string           `yaml:"kind"`
	Enclosing    string           `yaml:"enclosing"`
	Extends      string           `yaml:"extends"`
	Implements   []string         `yaml:"implements"`
	Constructors []ctorSchema     `yaml:"constructors"`
	Fields       []fieldSchema    `yaml:"fields"`
	Constants    []constantSchema `yaml:"constants"`
	Stage        *stageSchema     `yaml:"stage"`
	ErrorDef     bool             `yaml:"error_def"`
}

type ctorSchema struct {
	Public bool     `yaml:"public"`
	Params []string `yaml:"params"`
}

type constantSchema struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type stageSchema struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	OnError     string `yaml:"on_error"`
}

type fieldSchema struct {
	Name      string          `yaml:"name"`
	Type      string          `yaml:"type"`
	Modifiers []string        `yaml:"modifiers"`
	Config    *configSchema   `yaml:"config"`
	Selector  bool            `yaml:"selector"`
	Modifier  *modifierSchema `yaml:"modifier"`
}

type configSchema struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Default     string `yaml:"default"`
	Required    bool   `yaml:"required"`
}

type modifierSchema struct {
	Type           string `yaml:"type"`
	ValuesProvider string `yaml:"values_provider"`
}

// FindFiles expands paths into declaration files. Files are kept in the order
// given; a directory contributes its *.yml and *.yaml files in name order.
func FindFiles(paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read declarations %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read declarations %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch filepath.Ext(e.Name()) {
			case ".yml", ".yaml":
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no declaration files found in %s", strings.Join(paths, ", "))
	}
	return files, nil
}

// LoadFiles reads one round per file, in the order given. The last round is the terminal one.
// The returned program's graph contains every declaration of every file.
func LoadFiles(paths ...string) (*Program, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no declaration files given")
	}

	prog := &Program{}
	var all []*Declaration
	for _, path := range paths {
		round, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		prog.Rounds = append(prog.Rounds, round)
		all = append(all, round.Declarations...)
	}
	prog.Rounds[len(prog.Rounds)-1].Final = true

	graph, err := NewIndex(all...)
	if err != nil {
		return nil, err
	}
	prog.Graph = graph
	return prog, nil
}

// LoadFile reads a single declaration file into a non-terminal round
func LoadFile(path string) (*Round, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data), path)
}

// Decode parses a declaration document into a non-terminal round
func Decode(r io.Reader, source string) (*Round, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc fileSchema
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Round{Source: source}, nil
		}
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}

	round := &Round{Source: source}
	for i, ds := range doc.Declarations {
		d, err := ds.toDeclaration()
		if err != nil {
			return nil, fmt.Errorf("%s: declaration #%d: %w", source, i+1, err)
		}
		round.Declarations = append(round.Declarations, d)
	}
	return round, nil
}

func (ds declSchema) toDeclaration() (*Declaration, error) {
	name := strings.TrimSpace(ds.Name)
	if name == "" {
		return nil, fmt.Errorf("missing name")
	}
	kind, ok := ParseKind(ds.Kind)
	if !ok {
		return nil, fmt.Errorf("%s: unknown kind %q", name, ds.Kind)
	}

	d := &Declaration{
		Name:       name,
		Kind:       kind,
		Enclosing:  strings.TrimSpace(ds.Enclosing),
		Super:      strings.TrimSpace(ds.Extends),
		Interfaces: trimNames(ds.Implements),
		ErrorDef:   ds.ErrorDef,
	}

	for _, cs := range ds.Constructors {
		ctor := Constructor{Public: cs.Public}
		for _, p := range cs.Params {
			t, err := ParseTypeRef(p)
			if err != nil {
				return nil, fmt.Errorf("%s: constructor parameter: %w", name, err)
			}
			ctor.Params = append(ctor.Params, t)
		}
		d.Constructors = append(d.Constructors, ctor)
	}

	for _, fs := range ds.Fields {
		f, err := fs.toField()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		d.Fields = append(d.Fields, f)
	}

	for _, c := range ds.Constants {
		d.Constants = append(d.Constants, EnumConstant{Name: c.Name, Value: c.Value})
	}

	if ds.Stage != nil {
		d.Stage = &StageDef{
			Name:        ds.Stage.Name,
			Version:     ds.Stage.Version,
			Label:       ds.Stage.Label,
			Description: ds.Stage.Description,
			OnError:     ds.Stage.OnError,
		}
	}

	return d, nil
}

// trimNames trims each name and drops blank entries
func trimNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (fs fieldSchema) toField() (*Field, error) {
	if strings.TrimSpace(fs.Name) == "" {
		return nil, fmt.Errorf("field with missing name")
	}
	t, err := ParseTypeRef(fs.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fs.Name, err)
	}

	f := &Field{Name: fs.Name, Type: t}
	for _, m := range fs.Modifiers {
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "public":
			f.Public = true
		case "final":
			f.Final = true
		case "static":
			f.Static = true
		case "private", "protected":
			// non-public; nothing to record
		default:
			return nil, fmt.Errorf("field %s: unknown modifier %q", fs.Name, m)
		}
	}

	if fs.Config != nil {
		f.Config = &ConfigDef{
			Name:         fs.Config.Name,
			Type:         strings.ToUpper(strings.TrimSpace(fs.Config.Type)),
			Label:        fs.Config.Label,
			Description:  fs.Config.Description,
			DefaultValue: fs.Config.Default,
			Required:     fs.Config.Required,
		}
	}
	if fs.Selector {
		f.Selector = &FieldSelector{}
	}
	if fs.Modifier != nil {
		f.Modifier = NewFieldModifier(strings.ToUpper(strings.TrimSpace(fs.Modifier.Type)), fs.Modifier.ValuesProvider)
	}
	return f, nil
}
