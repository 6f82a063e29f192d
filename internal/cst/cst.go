// Package cst defines the uniform concrete-syntax-tree contract the AST
// builder consumes. spec.md treats the incremental parser that produces a
// CST as an opaque external collaborator; this package is the seam between
// that collaborator and the rest of the compiler (the "CST Adapter" of
// spec.md §4.1).
//
// No tree-sitter grammar exists for the source language this compiler
// targets, so the Node implementation here is produced by this package's
// own lexer and parser rather than by cgo tree-sitter bindings (see
// DESIGN.md for why github.com/smacker/go-tree-sitter could not be wired).
// The Node contract below mirrors the shape that library exposes — kind
// string, byte and row/column spans, named-field children, an ERROR kind —
// so that a real incremental parser could be substituted later without
// touching internal/ast.
package cst

import "github.com/oxhq/lvc/internal/point"

// Kind is a CST node-kind tag. Unlike an enum, kinds are plain strings so
// the AST builder can walk through unrecognized kinds transparently.
type Kind string

// ErrorKind marks a node the parser could not make sense of.
const ErrorKind Kind = "ERROR"

// Node is the uniform view of a single CST node. Implementations never leak
// parser-internal identity to callers.
type Node interface {
	Kind() Kind
	Range() point.Range

	// ChildCount returns the number of children, named and anonymous.
	ChildCount() int
	// Child returns the i'th child, or nil if out of range.
	Child(i int) Node
	// NamedChildCount returns the number of named (non-punctuation) children.
	NamedChildCount() int
	// NamedChild returns the i'th named child, or nil if out of range.
	NamedChild(i int) Node

	// ChildByFieldName returns the child stored under the given field name,
	// or nil if the node has no such field (or the field was left empty).
	ChildByFieldName(name string) Node

	// Text returns the exact source slice this node spans, by byte offset.
	Text() string

	// IsError reports whether this node (not a descendant) is an ERROR node.
	IsError() bool
}

// Tree is a parsed CST plus the source text it was parsed from.
type Tree struct {
	Root   Node
	Source string
}

// BoolField reports whether a boolean marker field (set via the parser's
// internal marker-node convention) is present on n.
func BoolField(n Node, name string) bool {
	return n.ChildByFieldName(name) != nil
}

// TextField reads a marker field's payload text (used for flags that carry
// a short literal value, such as an operator or declaration keyword, rather
// than a proper source span).
func TextField(n Node, name string) string {
	f := n.ChildByFieldName(name)
	if f == nil {
		return ""
	}
	return string(f.Kind())
}
