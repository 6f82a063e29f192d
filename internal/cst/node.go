package cst

import "github.com/oxhq/lvc/internal/point"

// treeNode is the concrete Node implementation produced by Parse.
type treeNode struct {
	kind     Kind
	rng      point.Range
	source   string
	children []*treeNode
	named    []*treeNode
	fields   map[string]*treeNode
	isError  bool
}

func newNode(kind Kind, start, end point.Point, source string) *treeNode {
	return &treeNode{
		kind:   kind,
		rng:    point.Range{Start: start, End: end},
		source: source,
		fields: map[string]*treeNode{},
	}
}

// addChild appends a structural child. Every child passed here also counts
// as a "named" child: this parser never emits anonymous punctuation nodes,
// mirroring how callers of the CST Adapter only ever care about named
// structure.
func (n *treeNode) addChild(c *treeNode) {
	if c == nil {
		return
	}
	n.children = append(n.children, c)
	n.named = append(n.named, c)
}

// setField records a child under a field name, in addition to (not instead
// of) being an ordinary positional child, matching named-field lookup
// semantics of the adapted CST.
func (n *treeNode) setField(name string, c *treeNode) {
	if c == nil {
		return
	}
	n.fields[name] = c
}

func (n *treeNode) Kind() Kind          { return n.kind }
func (n *treeNode) Range() point.Range  { return n.rng }
func (n *treeNode) ChildCount() int     { return len(n.children) }
func (n *treeNode) NamedChildCount() int { return len(n.named) }
func (n *treeNode) IsError() bool       { return n.isError }

func (n *treeNode) Child(i int) Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *treeNode) NamedChild(i int) Node {
	if i < 0 || i >= len(n.named) {
		return nil
	}
	return n.named[i]
}

func (n *treeNode) ChildByFieldName(name string) Node {
	c, ok := n.fields[name]
	if !ok || c == nil {
		return nil
	}
	return c
}

func (n *treeNode) Text() string {
	if n.rng.Start.Byte < 0 || n.rng.End.Byte > len(n.source) || n.rng.Start.Byte > n.rng.End.Byte {
		return ""
	}
	return n.source[n.rng.Start.Byte:n.rng.End.Byte]
}
