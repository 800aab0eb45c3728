package decl

import "fmt"

// Graph resolves declaration names to declarations.
// Names that do not resolve are types outside the analysed sources (library types).
type Graph interface {
	Lookup(name string) (*Declaration, bool)
}

// Index is an in-memory Graph keyed by qualified name
type Index struct {
	decls map[string]*Declaration
	order []string
}

// NewIndex creates an index holding the given declarations
func NewIndex(decls ...*Declaration) (*Index, error) {
	idx := &Index{decls: make(map[string]*Declaration, len(decls))}
	for _, d := range decls {
		if err := idx.Add(d); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Add registers a declaration. Qualified names must be unique.
func (idx *Index) Add(d *Declaration) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("declaration must have a name")
	}
	if _, exists := idx.decls[d.Name]; exists {
		return fmt.Errorf("declaration %s is defined more than once", d.Name)
	}
	idx.decls[d.Name] = d
	idx.order = append(idx.order, d.Name)
	return nil
}

// Lookup returns the declaration with the given qualified name
func (idx *Index) Lookup(name string) (*Declaration, bool) {
	d, ok := idx.decls[name]
	return d, ok
}

// Len returns the number of indexed declarations
func (idx *Index) Len() int {
	return len(idx.order)
}

// Round is one unit of declaration delivery from the host
type Round struct {
	// Source identifies where the round came from (a file path for declaration files)
	Source       string
	Declarations []*Declaration
	Final        bool
}

// StageDeclarations returns the declarations tagged with a StageDef, in delivery order
func (r *Round) StageDeclarations() []*Declaration {
	var out []*Declaration
	for _, d := range r.Declarations {
		if d.Stage != nil {
			out = append(out, d)
		}
	}
	return out
}

// ErrorDeclarations returns the declarations tagged as error definitions, in delivery order
func (r *Round) ErrorDeclarations() []*Declaration {
	var out []*Declaration
	for _, d := range r.Declarations {
		if d.ErrorDef {
			out = append(out, d)
		}
	}
	return out
}

// Program is the full sequence of rounds for one run together with the graph they resolve against
type Program struct {
	Rounds []*Round
	Graph  *Index
}
