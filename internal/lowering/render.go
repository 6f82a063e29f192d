package lowering

import (
	"github.com/oxhq/lvc/internal/ast"
	"github.com/oxhq/lvc/internal/fragment"
)

// render returns n's target-script text: verbatim except for nested
// component/tagged expressions (always rewritten) and, when roots is
// non-nil, bare reads of the names in roots (rewritten to a `this.` access
// — used for binding expressions, where a sibling property can only be
// read at runtime through the instance, spec.md §4.2/§4.5). It delegates
// the actual splicing to a fragment.Assembler scoped to n's own span — the
// same Source Fragment Assembler spec.md §4.3 names, here linearizing one
// node's rewrites instead of a whole file (spec.md §8 #1-#2).
func (e *Engine) render(source string, n ast.Node, roots map[string]bool) (string, error) {
	if n == nil {
		return "", nil
	}
	switch v := n.(type) {
	case *ast.NewComponentExpression:
		return e.lowerNewComponentExpression(source, v, "this")
	case *ast.TaggedComponentExpression:
		return e.lowerTaggedComponentExpression(v), nil
	}

	start, end := n.Span().Start.Byte, n.Span().End.Byte
	asm := fragment.New(source[start:end])
	if err := e.collectRewrites(source, n, start, roots, asm); err != nil {
		return "", err
	}
	return asm.Build()
}

// collectRewrites walks n looking for nested component/tagged expressions
// and (when roots is non-nil) bare identifier reads naming one of roots,
// adding an Assembler fragment for each, offset by base (the enclosing
// render call's own span start) since asm's source is n's span in
// isolation, not the whole file. It never descends into a rewrite it just
// emitted — the replacement text already stands for that whole span.
func (e *Engine) collectRewrites(source string, n ast.Node, base int, roots map[string]bool, asm *fragment.Assembler) error {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *ast.NewComponentExpression:
		lowered, err := e.lowerNewComponentExpression(source, v, "this")
		if err != nil {
			return err
		}
		asm.Add(fragment.Fragment{From: v.Span().Start.Byte - base, To: v.Span().End.Byte - base, Payload: lowered})
		return nil

	case *ast.TaggedComponentExpression:
		asm.Add(fragment.Fragment{
			From: v.Span().Start.Byte - base, To: v.Span().End.Byte - base, Payload: e.lowerTaggedComponentExpression(v),
		})
		return nil

	case *ast.Opaque:
		if roots != nil && v.CSTNode().Kind() == "identifier" {
			name := v.CSTNode().Text()
			if roots[name] {
				asm.Add(fragment.Fragment{
					From: v.Span().Start.Byte - base, To: v.Span().End.Byte - base, Payload: "this." + name,
				})
				return nil
			}
		}
		for _, c := range v.Children {
			if err := e.collectRewrites(source, c, base, roots, asm); err != nil {
				return err
			}
		}
		return nil

	case *ast.JsBlock:
		for _, s := range v.Statements {
			if err := e.collectRewrites(source, s, base, roots, asm); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// propertyNames collects the declared (non-static) property names of a
// component body — the set a binding expression's bare reads must be
// rewritten against, since those are the only names that exist as `this.X`
// rather than a local variable at runtime.
func propertyNames(body *ast.ComponentBody) map[string]bool {
	names := map[string]bool{}
	if body == nil {
		return names
	}
	for _, p := range body.Properties {
		names[p.Name] = true
	}
	return names
}

// bindingRoots narrows a BindingContainer down to the bare-identifier
// captures (FirstField=="") that also name a property of the enclosing
// component — member-chain captures and id-variable reads are already
// valid JS as written and never get rewritten.
func bindingRoots(b *ast.BindingContainer, props map[string]bool) map[string]bool {
	if b == nil {
		return nil
	}
	roots := map[string]bool{}
	for _, e := range b.Entries() {
		if e.FirstField == "" && props[e.Root] {
			roots[e.Root] = true
		}
	}
	if len(roots) == 0 {
		return nil
	}
	return roots
}
