package ast

import (
	"testing"

	"github.com/oxhq/lvc/internal/cst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) *Program {
	t.Helper()
	tree := cst.Parse(src)
	prog, err := Build("test.lv", tree)
	require.NoError(t, err)
	return prog
}

func TestBuildComponentDeclarationBasics(t *testing.T) {
	src := `component Foo extends Bar.Base {
  id: root
  String name: "hi"
}`
	prog := build(t, src)
	require.Len(t, prog.Exports, 1)
	cd, ok := prog.Exports[0].(*ComponentDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Foo", cd.Name)
	assert.Equal(t, "Bar.Base", cd.Heritage)
	assert.Equal(t, "root", cd.DeclaredID)
	require.Len(t, cd.Body.Properties, 1)
	assert.Equal(t, "name", cd.Body.Properties[0].Name)
	assert.Equal(t, "String", cd.Body.Properties[0].Type)
	assert.True(t, cd.Body.Properties[0].IsBindingAssignment)
}

func TestBuildNestedChildrenSplitByID(t *testing.T) {
	src := `component Foo {
  id: root
  Bar {
    id: child
  }
  Baz {
  }
}`
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	require.Len(t, cd.Body.IDDeclaredChildren, 1)
	assert.Equal(t, "child", cd.Body.IDDeclaredChildren[0].ID)
	require.Len(t, cd.Body.NestedChildren, 1)
	assert.Equal(t, "Baz", cd.Body.NestedChildren[0].TypeName)
	// The child's own id must also be declared in the enclosing scope.
	assert.True(t, cd.Body.HasDeclared("child"))
}

func TestBuildPropertyAssignmentSplitsDottedPath(t *testing.T) {
	src := `component Foo {
  id: root
  String name: "hi"
  root.name = "bye"
}`
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	require.Len(t, cd.Body.Assignments, 1)
	pa := cd.Body.Assignments[0]
	assert.Equal(t, []string{"root", "name"}, pa.Path)
	assert.False(t, pa.IsBindingAssignment)
}

func TestBuildPropertyBindingExpressionCapturesIdentifier(t *testing.T) {
	src := `component Foo {
  String name: "hi"
  label: name
}`
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	var label *PropertyDeclaration
	for _, p := range cd.Body.Properties {
		if p.Name == "label" {
			label = p
		}
	}
	require.NotNil(t, label)
	require.NotNil(t, label.Binding)
	require.False(t, label.Binding.IsEmpty())
	entries := label.Binding.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "name", entries[0].Root)
	assert.Equal(t, "", entries[0].FirstField)
}

func TestBuildPropertyBindingExpressionCapturesMemberAccess(t *testing.T) {
	src := `component Foo {
  label: user.profile.name
}`
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	label := cd.Body.Properties[0]
	entries := label.Binding.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "user", entries[0].Root)
	assert.Equal(t, "profile", entries[0].FirstField)
	assert.Equal(t, "user.profile.name", entries[0].Path)
}

func TestBuildBindingCaptureDedupesSameRootAndField(t *testing.T) {
	src := `component Foo {
  label: user.profile.name + user.profile.email
}`
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	label := cd.Body.Properties[0]
	// Both reads share (root="user", firstField="profile"), so only one
	// entry should survive the dedup.
	assert.Len(t, label.Binding.Entries(), 1)
}

func TestBuildBindingCaptureStopsAtFunctionBoundary(t *testing.T) {
	src := `component Foo {
  onClick: () => { count }
}`
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	onClick := cd.Body.Properties[0]
	// "count" is read inside an arrow function body, which suppresses
	// binding capture for the enclosing property.
	assert.True(t, onClick.Binding.IsEmpty())
}

func TestBuildBlockFormPropertyValueStillCapturesBindings(t *testing.T) {
	src := `component Foo {
  label: { user.name }
}`
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	label := cd.Body.Properties[0]
	require.NotNil(t, label.Block)
	require.NotNil(t, label.Binding)
	assert.False(t, label.Binding.IsEmpty())
}

func TestBuildListenerAndEventDeclarations(t *testing.T) {
	src := `component Foo {
  event changed(String value)
  listener clicked(e) {
    x
  }
}`
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	require.Len(t, cd.Body.Events, 1)
	assert.Equal(t, "changed", cd.Body.Events[0].Name)
	require.Len(t, cd.Body.Events[0].Params, 1)
	assert.Equal(t, "String", cd.Body.Events[0].Params[0].Type)
	assert.Equal(t, "value", cd.Body.Events[0].Params[0].Name)

	require.Len(t, cd.Body.Listeners, 1)
	assert.Equal(t, "clicked", cd.Body.Listeners[0].Name)
	assert.Equal(t, []string{"e"}, cd.Body.Listeners[0].Params)
}

func TestBuildTaggedComponentExpressionAsChild(t *testing.T) {
	src := "component Foo {\n  Label`hello`\n}"
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	require.Len(t, cd.Body.NestedChildren, 1)
	child := cd.Body.NestedChildren[0]
	assert.Equal(t, "Label", child.TypeName)
	require.Len(t, child.Args, 1)
	tagged, ok := child.Args[0].(*TaggedComponentExpression)
	require.True(t, ok)
	assert.False(t, tagged.Triple)
}

func TestBuildRootComponentInstanceStatement(t *testing.T) {
	src := `Foo {
  id: root
}`
	prog := build(t, src)
	require.Len(t, prog.Exports, 1)
	ne, ok := prog.Exports[0].(*NewComponentExpression)
	require.True(t, ok)
	assert.True(t, ne.IsRoot)
	assert.Equal(t, "root", ne.ID)
}

func TestBuildImportRelativeAndAbsolute(t *testing.T) {
	src := `import .sibling as Sib
import a.b.c
component Foo {
}`
	prog := build(t, src)
	require.Len(t, prog.Imports, 2)
	assert.True(t, prog.Imports[0].IsRelative)
	assert.Equal(t, "Sib", prog.Imports[0].As)
	assert.False(t, prog.Imports[1].IsRelative)
	assert.Equal(t, "a.b.c", prog.Imports[1].Path)
}

func TestBuildJsImportObjectForm(t *testing.T) {
	src := `import { foo, bar } from "pkg"
component Foo {
}`
	prog := build(t, src)
	require.Len(t, prog.JsImports, 1)
	ji := prog.JsImports[0]
	assert.True(t, ji.ObjectImport)
	assert.Equal(t, []string{"foo", "bar"}, ji.Names)
	// Path is read straight off the string_literal token's own span, quotes
	// included — the builder doesn't unescape it.
	assert.Equal(t, `"pkg"`, ji.Path)
}

func TestBuildSyntaxErrorOnGarbageComponentBody(t *testing.T) {
	src := `component Foo {
  123 456 789 +++ ---
}`
	tree := cst.Parse(src)
	_, err := Build("bad.lv", tree)
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestBuildAssertionErrorOnStaticPropertyInAnonymousComponent(t *testing.T) {
	src := `component {
  static int x: 1
}`
	tree := cst.Parse(src)
	_, err := Build("bad.lv", tree)
	require.Error(t, err)
	var assertionErr *AssertionError
	require.ErrorAs(t, err, &assertionErr)
}

func TestDeclaredIDIsUsableAsIdentifier(t *testing.T) {
	src := `component Foo {
  id: root
  clickedRoot: root
}`
	prog := build(t, src)
	cd := prog.Exports[0].(*ComponentDeclaration)
	var clickedRoot *PropertyDeclaration
	for _, p := range cd.Body.Properties {
		if p.Name == "clickedRoot" {
			clickedRoot = p
		}
	}
	require.NotNil(t, clickedRoot)
	entries := clickedRoot.Binding.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "root", entries[0].Root)
}
