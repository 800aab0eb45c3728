package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelinekit/stagegen/internal/compiler/decl"
)

func graph(t *testing.T, decls ...*decl.Declaration) *decl.Index {
	t.Helper()
	idx, err := decl.NewIndex(decls...)
	require.NoError(t, err)
	return idx
}

func TestAncestorsBreadthFirst(t *testing.T) {
	base := &decl.Declaration{Name: "a.Base", Super: APIBaseSource, Interfaces: []string{"a.Marker"}}
	marker := &decl.Declaration{Name: "a.Marker", Kind: decl.KindInterface, Interfaces: []string{"a.Root"}}
	foo := &decl.Declaration{Name: "a.Foo", Super: "a.Base", Interfaces: []string{"a.Marker"}}

	w := NewWalker(graph(t, base, marker, foo), 0)
	set := w.Ancestors(foo)

	assert.Equal(t, []string{"a.Base", "a.Marker", APIBaseSource, "a.Root"}, set.Names())
	assert.True(t, set.Contains(APIBaseSource))
	assert.False(t, set.Contains("a.Foo"))
}

func TestAncestorsSurviveCycles(t *testing.T) {
	a := &decl.Declaration{Name: "a.A", Interfaces: []string{"a.B"}}
	b := &decl.Declaration{Name: "a.B", Interfaces: []string{"a.C", "a.A"}}
	c := &decl.Declaration{Name: "a.C", Interfaces: []string{"a.B", "a.A"}}

	w := NewWalker(graph(t, a, b, c), 0)

	for _, d := range []*decl.Declaration{a, b, c} {
		set := w.Ancestors(d)
		assert.False(t, set.Contains(d.Name), "%s must not be its own ancestor", d.Name)

		seen := make(map[string]bool)
		for _, name := range set.Names() {
			assert.False(t, seen[name], "duplicate ancestor %s", name)
			seen[name] = true
		}
		assert.Equal(t, 2, set.Len())
	}
}

func TestAncestorsUnresolvedNotExpanded(t *testing.T) {
	foo := &decl.Declaration{Name: "a.Foo", Super: "lib.External"}

	set := NewWalker(graph(t, foo), 0).Ancestors(foo)

	assert.Equal(t, []string{"lib.External"}, set.Names())
}

func TestAncestorsCached(t *testing.T) {
	base := &decl.Declaration{Name: "a.Base"}
	foo := &decl.Declaration{Name: "a.Foo", Super: "a.Base"}
	w := NewWalker(graph(t, base, foo), 4)

	first := w.Ancestors(foo)
	assert.Same(t, first, w.Ancestors(foo))

	w.Reset()
	assert.NotSame(t, first, w.Ancestors(foo))
}

func TestAncestorsNil(t *testing.T) {
	w := NewWalker(graph(t), 0)
	assert.Equal(t, 0, w.Ancestors(nil).Len())

	var set *AncestorSet
	assert.False(t, set.Contains("x"))
	assert.Nil(t, set.Names())
}
