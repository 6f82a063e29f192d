package ast

import (
	"fmt"

	"github.com/oxhq/lvc/internal/point"
)

// SyntaxError is raised by the builder when it encounters a CST ERROR node,
// or a required field missing from an otherwise well-formed node kind
// (spec.md §4.2, "the builder never silently drops a malformed construct").
type SyntaxError struct {
	File string
	Pos  point.Point
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%s: syntax error: %s", e.File, e.Pos, e.Msg)
}

// AssertionError marks a builder invariant violation that isn't a parse
// failure but a structural one: a static property on an anonymous component
// body that can never be referenced, or more than one constructor in one
// component body — cases spec.md §3 calls out as
// invariants rather than grammar (spec.md §9, "fail fast on invariant
// violations rather than attempt recovery").
type AssertionError struct {
	File string
	Pos  point.Point
	Msg  string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s:%s: assertion failed: %s", e.File, e.Pos, e.Msg)
}
