// Package ast defines the typed AST the builder produces from a CST, and
// the scope/binding bookkeeping that identifier resolution and lowering
// both depend on (spec.md §3–§4.2).
//
// Rather than a class hierarchy, node kinds are separate Go structs
// implementing a small Node interface — the idiomatic-Go analogue of the
// "tagged variant with exhaustive visitors" spec.md §9 asks for; lowering
// dispatches over them with a type switch. Only the node kinds spec.md §3
// assigns dedicated fields to get their own struct; everything else inside
// a method/listener/accessor body (ordinary JS-like statements and
// expressions) stays an opaque *Opaque wrapping its CST subtree, since
// lowering only ever rewrites their surrounding declaration and otherwise
// passes them through verbatim (spec.md §4.5, "pass through").
package ast

import (
	"github.com/oxhq/lvc/internal/cst"
	"github.com/oxhq/lvc/internal/point"
)

// Node is implemented by every AST struct. Parent is a non-owning
// back-reference; Go's garbage collector makes the arena/weak-pointer
// concern of spec.md §9 moot, so a plain field is used — the owning
// direction is always parent-to-child via each struct's own slice fields.
type Node interface {
	Span() point.Range
	CSTNode() cst.Node
	GetParent() Node
	setParent(Node)
}

type base struct {
	cst    cst.Node
	parent Node
}

func (b *base) Span() point.Range { return b.cst.Range() }
func (b *base) CSTNode() cst.Node { return b.cst }
func (b *base) GetParent() Node   { return b.parent }
func (b *base) setParent(p Node)  { b.parent = p }

// Declared is one identifier declaration recorded against a scope.
type Declared struct {
	Name string
	Pos  point.Point
}

// Used is one identifier read recorded against a scope.
type Used struct {
	Name string
	Pos  point.Point
}

// Scope is embedded by every scope-bearing node kind: Program, JsBlock,
// ComponentBody, PropertyDeclaration, PropertyAssignment and
// NewComponentExpression, root or nested (spec.md §4.2).
// ComponentDeclaration embeds none of its own.
type Scope struct {
	declared []Declared
	used     []Used
}

// Declare appends a declaration to this scope. Called by the builder when
// it is the nearest enclosing scope of a declaring construct.
func (s *Scope) Declare(name string, pos point.Point) {
	s.declared = append(s.declared, Declared{Name: name, Pos: pos})
}

// Use appends an identifier read to this scope.
func (s *Scope) Use(name string, pos point.Point) {
	s.used = append(s.used, Used{Name: name, Pos: pos})
}

// DeclaredNames returns every identifier declared directly in this scope.
func (s *Scope) DeclaredNames() []Declared { return s.declared }

// UsedNames returns every identifier read directly in this scope.
func (s *Scope) UsedNames() []Used { return s.used }

// HasDeclared reports whether name was declared directly in this scope.
func (s *Scope) HasDeclared(name string) bool {
	for _, d := range s.declared {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Opaque wraps a CST subtree the AST builder recognizes as JS-like
// statement/expression content that lowering passes through verbatim. The
// scope-attachment walk still descends into it to find declarations, uses,
// and binding captures (spec.md §4.2/§4.5).
//
// Children is generic Node rather than []*Opaque: a verbatim statement can
// still contain a NewComponentExpression or TaggedComponentExpression deeper
// inside it (e.g. a method that `return`s a component instance, or passes a
// tagged template as a call argument), and lowering has to find those and
// rewrite them in place while leaving the rest of the statement untouched.
// Plain nested structure (sub-expressions with no component/tag content)
// just gets another *Opaque child.
type Opaque struct {
	base
	Children []Node
}

// TaggedComponentExpression is a `` Type`...` `` or triple-backtick
// `` Type```...``` `` tagged string used as shorthand for instantiating a
// component from interpolated text (spec.md §4.5, "tagged template string
// lowering"). Triple distinguishes the two delimiter forms, which lower
// through slightly different escape rules.
type TaggedComponentExpression struct {
	base
	TypeName string
	Raw      string // the literal interior text, unescaped by the builder
	Triple   bool
}

// Program is the AST root for a single file (spec.md §3).
type Program struct {
	base
	Scope

	Imports     []*Import
	JsImports   []*JsImport
	Exports     []Node // *ComponentDeclaration or *NewComponentExpression (root)
	ImportTypes []*ImportTypeRef
}

// Import is the source language's own `import a.b.c [as X]` statement.
type Import struct {
	base
	Path       string
	As         string
	IsRelative bool
}

// JsImport is a passthrough `import {A,B} from "p"` / `import A from "p"`.
type JsImport struct {
	base
	Names        []string
	Path         string
	ObjectImport bool
}

// ImportTypeRef is one free-identifier classification entry in
// Program.ImportTypes (spec.md §4.4).
type ImportTypeRef struct {
	Namespace    string // "" for plain identifiers
	Identifier   string
	Pos          point.Point
	ResolvedPath string // set during import resolution
}

// ComponentDeclaration is a named or anonymous component class (spec.md §3).
type ComponentDeclaration struct {
	base
	Name        string // "" if anonymous
	Heritage    string // dotted heritage chain, "" if absent
	DeclaredID  string // "" if this component declares no id of its own
	Body        *ComponentBody
	AtFileRoot  bool
}

// ComponentBody is the scope-bearing `{ ... }` shared by ComponentDeclaration
// and NewComponentExpression.
type ComponentBody struct {
	base
	Scope

	DeclaredID          string
	Properties          []*PropertyDeclaration
	StaticProperties    []*PropertyDeclaration
	Accessors           []*PropertyAccessor
	Events              []*EventDeclaration
	Listeners           []*ListenerDeclaration
	Methods             []*TypedMethod
	Constructor         *ConstructorDefinition
	Assignments         []*PropertyAssignment
	NestedChildren      []*NewComponentExpression // anonymous/unnamed children
	IDDeclaredChildren  []*NewComponentExpression  // children with `id: x`
}

// NewComponentExpression is a nested child instantiation, or (when IsRoot)
// a file-root / block-scope component-instance statement
// (RootNewComponentExpression).
type NewComponentExpression struct {
	base
	Scope

	TypeName string
	ID       string
	Args     []Node
	Body     *ComponentBody
	IsRoot   bool
}

// Param is a name with an optional type annotation.
type Param struct {
	Type string
	Name string
}

// PropertyDeclaration declares a new property on a component (spec.md §3).
type PropertyDeclaration struct {
	base
	Scope

	Name                string
	Type                string // "" if absent
	Static              bool
	IsBindingAssignment bool // true for ':' , false for '='
	Expr                Node // *Opaque or *TaggedComponentExpression, nil if Block set
	Block               *JsBlock
	Binding             *BindingContainer
}

// PropertyAssignment assigns a (possibly dotted) existing property path.
type PropertyAssignment struct {
	base
	Scope

	Path                []string
	IsBindingAssignment bool
	Expr                Node
	Block               *JsBlock
	Binding             *BindingContainer
}

// AccessorKind distinguishes getters from setters.
type AccessorKind string

const (
	Getter AccessorKind = "get"
	Setter AccessorKind = "set"
)

// PropertyAccessor is a `get`/`set` body matched against a declared property
// by name during lowering.
type PropertyAccessor struct {
	base
	Kind       AccessorKind
	Name       string
	Param      string // setter parameter name, "" for getters
	Body       *JsBlock
	IsAttached bool // true once matched to a PropertyDeclaration
}

// EventDeclaration declares an event signature.
type EventDeclaration struct {
	base
	Name   string
	Params []Param
}

// ListenerDeclaration handles an event by name.
type ListenerDeclaration struct {
	base
	Name   string
	Params []string
	Body   *JsBlock
	Async  bool
}

// TypedMethod is a class method with typed parameters.
type TypedMethod struct {
	base
	Name       string
	Params     []Param
	ReturnType string
	Body       *JsBlock
	Static     bool
	Async      bool
}

// ConstructorDefinition is an explicit `constructor(...)`.
type ConstructorDefinition struct {
	base
	Params      []Param
	Initializer *ConstructorInitializer
	Body        *JsBlock
}

// ConstructorInitializerPair is one `name(expr)` entry.
type ConstructorInitializerPair struct {
	Name string
	Expr Node
}

// ConstructorInitializer is the `: a(x), b(y)` forward list; it may only
// appear directly inside a ConstructorDefinition (spec.md §3 invariants).
type ConstructorInitializer struct {
	base
	Pairs []ConstructorInitializerPair
}

// JsBlock is any `{ ... }` JS-like statement block; scope-bearing (spec.md
// §4.2 lists it alongside Program/ComponentBody/PropertyDeclaration as a
// scope boundary). Statements holds each top-level statement of the block,
// generally *Opaque, occasionally a nested *JsBlock (a bare `{ }` used as
// its own statement) or a component/tagged expression surfaced directly in
// statement position.
type JsBlock struct {
	base
	Scope

	Statements []Node
}
