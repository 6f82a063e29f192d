// Package fragment assembles a rewritten source file out of ordered,
// non-overlapping byte-range edits over the original text — the Source
// Fragment Assembler of spec.md §8. Lowering never mutates source text
// directly; it emits Fragments, and this package linearizes them against
// the untouched original, copying every byte the fragments don't claim.
package fragment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oxhq/lvc/internal/point"
)

// Fragment is one rewrite over [From,To) of the original source. Without
// Nested, Payload replaces that span verbatim; with Nested, Payload is not
// used and the nested fragments are spliced into the source's own [From,To)
// slice at the absolute source offsets they carry (see Render) —
// this is how a statement can be copied through mostly verbatim while one
// nested NewComponentExpression inside it still gets lowered (spec.md §4.5,
// "recursively lowered").
type Fragment struct {
	From    int
	To      int
	Payload string
	Nested  []Fragment
}

// Len reports the byte span this fragment claims in the original source.
func (f Fragment) Len() int { return f.To - f.From }

// Assembler accumulates fragments against one source file and linearizes
// them into the rewritten output.
type Assembler struct {
	source string
	frags  []Fragment
}

// New returns an Assembler over the given original source text.
func New(source string) *Assembler {
	return &Assembler{source: source}
}

// Add registers a fragment. Fragments may be added in any order; Build
// sorts them before linearizing.
func (a *Assembler) Add(f Fragment) {
	a.frags = append(a.frags, f)
}

// AddRange is a convenience constructor from a point.Range.
func (a *Assembler) AddRange(r point.Range, payload string) {
	a.Add(Fragment{From: r.Start.Byte, To: r.End.Byte, Payload: payload})
}

// OverlapError reports two fragments that both claim part of the same byte
// range — always a bug in the lowering engine, never a user-facing error.
type OverlapError struct {
	A, B Fragment
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("fragment [%d,%d) overlaps fragment [%d,%d)", e.A.From, e.A.To, e.B.From, e.B.To)
}

// Build linearizes all added fragments against the original source,
// copying any byte range no fragment claims verbatim, and returns the
// rewritten text. It fails on overlapping fragments (spec.md §8 #1,
// non-overlap) rather than silently picking one.
func (a *Assembler) Build() (string, error) {
	frags := make([]Fragment, len(a.frags))
	copy(frags, a.frags)
	sort.Slice(frags, func(i, j int) bool {
		if frags[i].From != frags[j].From {
			return frags[i].From < frags[j].From
		}
		return frags[i].To < frags[j].To
	})

	var out strings.Builder
	cursor := 0
	for i, f := range frags {
		if f.From < cursor {
			var prev Fragment
			if i > 0 {
				prev = frags[i-1]
			}
			return "", &OverlapError{A: prev, B: f}
		}
		out.WriteString(a.source[cursor:f.From])
		out.WriteString(f.Render(a.source))
		cursor = f.To
	}
	out.WriteString(a.source[cursor:])
	return out.String(), nil
}

// Render splices f's nested fragments into its own payload. Nested.From/To
// are byte offsets into the SAME original source as f (not relative to f's
// payload) — a nested fragment only ever covers a sub-range already inside
// [f.From, f.To), so splicing walks f's own source slice the same way Build
// walks the whole file. A leaf fragment (no Nested) just returns Payload.
func (f Fragment) Render(source string) string {
	if len(f.Nested) == 0 {
		return f.Payload
	}
	nested := make([]Fragment, len(f.Nested))
	copy(nested, f.Nested)
	sort.Slice(nested, func(i, j int) bool { return nested[i].From < nested[j].From })

	var out strings.Builder
	cursor := f.From
	for _, nf := range nested {
		out.WriteString(source[cursor:nf.From])
		out.WriteString(nf.Render(source))
		cursor = nf.To
	}
	out.WriteString(source[cursor:f.To])
	return out.String()
}

// Coverage reports the set of byte ranges claimed by top-level fragments,
// sorted, for tests that check completeness/non-overlap invariants directly
// (spec.md §8 #1–#2) without going through Build's error path.
func (a *Assembler) Coverage() []point.Range {
	frags := make([]Fragment, len(a.frags))
	copy(frags, a.frags)
	sort.Slice(frags, func(i, j int) bool { return frags[i].From < frags[j].From })
	out := make([]point.Range, 0, len(frags))
	for _, f := range frags {
		out = append(out, point.Range{
			Start: point.Point{Byte: f.From},
			End:   point.Point{Byte: f.To},
		})
	}
	return out
}
