package ast

import "github.com/oxhq/lvc/internal/point"

// BindingEntry is one captured subexpression root inside a property's
// binding expression: a member-expression chain whose root identifier
// resolves outside the property's own scope (spec.md §4.2, "Binding
// capture"). FirstField is the first member access off the root, which is
// what the runtime actually subscribes to for change notification; Path is
// the full dotted text, kept only for diagnostics.
type BindingEntry struct {
	Root       string
	FirstField string // "" when the capture is a bare identifier read
	Path       string
	Pos        point.Point
}

// BindingContainer accumulates the distinct (root, first field) capture
// tuples for a single property declaration or assignment. Two reads of the
// same root.field inside one binding expression collapse to a single
// runtime subscription, since re-subscribing would just fire the same
// recompute twice (spec.md §4.2 dedup rule).
type BindingContainer struct {
	entries []BindingEntry
	seen    map[[2]string]bool
}

// NewBindingContainer returns an empty container.
func NewBindingContainer() *BindingContainer {
	return &BindingContainer{seen: map[[2]string]bool{}}
}

// Capture records one subexpression root. It reports whether this was a new
// (root, firstField) tuple; callers don't need the return value for
// anything but tests.
func (b *BindingContainer) Capture(root, firstField, path string, pos point.Point) bool {
	key := [2]string{root, firstField}
	if b.seen[key] {
		return false
	}
	b.seen[key] = true
	b.entries = append(b.entries, BindingEntry{Root: root, FirstField: firstField, Path: path, Pos: pos})
	return true
}

// Entries returns the captured entries in first-seen order.
func (b *BindingContainer) Entries() []BindingEntry {
	return b.entries
}

// IsEmpty reports whether nothing was captured, meaning the property's
// expression never reads anything outside its own scope and lowering can
// emit a plain assignment instead of a subscribing one.
func (b *BindingContainer) IsEmpty() bool {
	return len(b.entries) == 0
}
