package lowering

import (
	"fmt"
	"strings"

	"github.com/oxhq/lvc/internal/ast"
)

// lowerNewComponentExpression renders the self-applying-function pattern
// spec.md §4.5 gives NewComponentExpression: construct the instance, run
// its body against `this`, then hand back the fully-initialized object.
// parentArg is what the outer call passes as `parent` — "this" for a
// nested child, "null" for a root-level instance statement with nothing
// above it.
func (e *Engine) lowerNewComponentExpression(source string, ne *ast.NewComponentExpression, parentArg string) (string, error) {
	// A tagged-string shorthand gets lifted into a NewComponentExpression
	// wrapper with no body (see ast.TaggedComponentExpression doc); lower
	// it through the tagged path directly rather than double-wrapping.
	if ne.Body == nil && len(ne.Args) == 1 {
		if tagged, ok := ne.Args[0].(*ast.TaggedComponentExpression); ok {
			return e.lowerTaggedComponentExpression(tagged), nil
		}
	}

	argsText, err := e.renderArgs(source, ne.Args)
	if err != nil {
		return "", err
	}

	var lines []string
	if ne.Body != nil {
		lines, err = e.emitBody(source, ne.Body, "this")
		if err != nil {
			return "", err
		}
	}

	var completeCall string
	if ne.Body != nil && len(ne.Body.NestedChildren) > 0 {
		exprs, err := e.renderNestedChildren(source, ne.Body.NestedChildren)
		if err != nil {
			return "", err
		}
		completeCall = fmt.Sprintf("%s.assignChildrenAndComplete(this,[%s])", e.opts.BaseComponent, strings.Join(exprs, ","))
	} else {
		completeCall = fmt.Sprintf("%s.complete(this)", e.opts.BaseComponent)
	}
	lines = append(lines, completeCall)

	return fmt.Sprintf(
		"(function(parent){ this.setParent(parent); %s; return this }.bind(new %s(%s))(%s))",
		strings.Join(lines, "; "), ne.TypeName, argsText, parentArg,
	), nil
}
