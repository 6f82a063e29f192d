package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDependencyNoCycle(t *testing.T) {
	g := NewGraph()
	a := g.File("a")
	b := g.File("b")
	require.NoError(t, g.AddDependency(a, b))
	assert.Len(t, a.Dependencies(), 1)
}

func TestAddDependencyDetectsDirectCycle(t *testing.T) {
	g := NewGraph()
	a := g.File("a")
	b := g.File("b")
	require.NoError(t, g.AddDependency(a, b))

	err := g.AddDependency(b, a)
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)

	// The edge must have been rolled back.
	assert.Empty(t, b.Dependencies())
}

func TestAddDependencyDetectsTransitiveCycle(t *testing.T) {
	g := NewGraph()
	a, b, c := g.File("a"), g.File("b"), g.File("c")
	require.NoError(t, g.AddDependency(a, b))
	require.NoError(t, g.AddDependency(b, c))

	err := g.AddDependency(c, a)
	require.Error(t, err)
	assert.Empty(t, c.Dependencies())
}

func TestAddDependencySelfImportIsACycle(t *testing.T) {
	g := NewGraph()
	a := g.File("a")
	err := g.AddDependency(a, a)
	require.Error(t, err)
	assert.Empty(t, a.Dependencies())
}

func TestTopoOrderRespectsDependencies(t *testing.T) {
	g := NewGraph()
	a, b, c := g.File("a"), g.File("b"), g.File("c")
	require.NoError(t, g.AddDependency(a, b))
	require.NoError(t, g.AddDependency(b, c))

	order, err := g.TopoOrder()
	require.NoError(t, err)

	index := map[string]int{}
	for i, f := range order {
		index[f.Path] = i
	}
	assert.Less(t, index["c"], index["b"])
	assert.Less(t, index["b"], index["a"])
}

func TestResolveImportPathAbsolute(t *testing.T) {
	r := NewResolver(NewGraph(), "app")
	got, err := r.ResolveImportPath("ui/button", "app.ui.icon", false)
	require.NoError(t, err)
	assert.Equal(t, "app/ui/icon", got)
}

func TestResolveImportPathRelative(t *testing.T) {
	r := NewResolver(NewGraph(), "app")
	got, err := r.ResolveImportPath("ui/button", ".icon", true)
	require.NoError(t, err)
	assert.Equal(t, "ui/icon", got)
}

func TestResolveImportPathRelativeWithoutPackageFails(t *testing.T) {
	r := NewResolver(NewGraph(), "")
	_, err := r.ResolveImportPath("icon", ".sibling", true)
	require.Error(t, err)
	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Contains(t, importErr.Error(), "Cannot import relative path without package")
}

func TestModuleDescriptorRoundTrip(t *testing.T) {
	m := NewModule("app")
	fe := m.AddFileExport("ui/button")
	fe.AddExport("Button", KindComponent)
	fe.AddDependency("ui/icon")
	m.AddLibraryExport("fs")

	data, err := m.MarshalJSON()
	require.NoError(t, err)

	var decoded Module
	require.NoError(t, decoded.UnmarshalJSON(data))
	require.Len(t, decoded.Exports, 2)

	gotFE, ok := decoded.Exports[0].(*FileExport)
	require.True(t, ok)
	assert.Equal(t, "ui/button", gotFE.FileName)
	assert.Equal(t, []NamedExport{{Name: "Button", Kind: KindComponent}}, gotFE.Exports)
	assert.Equal(t, []Dependency{{ImportURI: "ui/icon"}}, gotFE.Dependencies)

	gotLE, ok := decoded.Exports[1].(*LibraryExport)
	require.True(t, ok)
	assert.Equal(t, "fs", gotLE.Name)
}
