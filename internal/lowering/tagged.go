package lowering

import (
	"fmt"
	"strings"

	"github.com/oxhq/lvc/internal/ast"
)

// canonicalizeTagged normalizes a tagged-component-expression's raw interior
// text before it's embedded as a JS string literal (spec.md §4.5, "tagged
// template string lowering").
//
// Triple-backtick text is treated as a literal block: only its outer
// leading/trailing newlines are trimmed (so the author can open the block on
// its own line without an extra blank line ending up in the value), and any
// remaining control characters are escaped so the result is a valid single
// JS string.
//
// Single-backtick text instead collapses: runs of whitespace (space, tab,
// newline) and the explicit `\s` escape both fold down to one space, since
// the single-backtick form is meant for inline text where source-level
// line-wrapping shouldn't leak into the rendered value.
func canonicalizeTagged(raw string, triple bool) string {
	if triple {
		s := strings.Trim(raw, "\n")
		r := strings.NewReplacer("\r", "\\r", "\n", "\\n", "\t", "\\t")
		return r.Replace(s)
	}

	var out strings.Builder
	inRun := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) && raw[i+1] == 's' {
			if !inRun {
				out.WriteByte(' ')
				inRun = true
			}
			i++
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if !inRun {
				out.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		out.WriteByte(c)
	}
	return out.String()
}

// lowerTaggedComponentExpression renders a `` Type`...` `` /
// `` Type```...``` `` shorthand as the same self-applying-function pattern
// NewComponentExpression uses, with the canonicalized text passed straight
// to the constructor (spec.md §4.5).
func (e *Engine) lowerTaggedComponentExpression(t *ast.TaggedComponentExpression) string {
	value := canonicalizeTagged(t.Raw, t.Triple)
	return fmt.Sprintf(
		"(function(parent){ this.setParent(parent); %s.complete(this); return this }.bind(new %s(%q))(this))",
		e.opts.BaseComponent, t.TypeName, value,
	)
}
