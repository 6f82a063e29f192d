// Package point defines source positions shared by every stage of the
// compiler, from the CST adapter down to the lowering engine.
package point

import "fmt"

// Point is a single location in a source file, measured three ways: the
// editor-facing line/column pair and the byte offset that the lowering
// engine actually operates on.
type Point struct {
	Line   int
	Column int
	Byte   int
}

// String renders a Point as "line:column".
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Range is a half-open span [Start,End) between two Points. Byte offsets are
// authoritative; Line/Column exist for diagnostics only.
type Range struct {
	Start Point
	End   Point
}

// Len returns the byte length of the range.
func (r Range) Len() int {
	return r.End.Byte - r.Start.Byte
}

// Contains reports whether byte offset b falls within [Start.Byte, End.Byte).
func (r Range) Contains(b int) bool {
	return b >= r.Start.Byte && b < r.End.Byte
}

// String renders a Range as "start-end".
func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}
