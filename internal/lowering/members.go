package lowering

import (
	"fmt"
	"strings"

	"github.com/oxhq/lvc/internal/ast"
)

// accessorPair groups a get/set pair declared under the same name, so a
// property declaration can pull both into its addProperty options object in
// one pass (spec.md §4.5, "getters/setters supplied by matching accessor").
type accessorPair struct {
	get, set *ast.PropertyAccessor
}

func accessorsByName(accessors []*ast.PropertyAccessor) map[string]*accessorPair {
	m := map[string]*accessorPair{}
	for _, a := range accessors {
		p, ok := m[a.Name]
		if !ok {
			p = &accessorPair{}
			m[a.Name] = p
		}
		if a.Kind == ast.Getter {
			p.get = a
		} else {
			p.set = a
		}
	}
	return m
}

// emitBody lowers one ComponentBody's members into __initialize statement
// lines, with target as the receiver every addProperty/addEvent/assignment
// call is made against. Used both for a ComponentDeclaration's own body
// (target "this") and, flattened, for each id-bearing nested child (target
// the child's own local variable) — an id-bearing child is addressable, so
// its members are emitted as direct calls against its id rather than
// wrapped in their own self-applying function (spec.md §4.5 step 3).
func (e *Engine) emitBody(source string, body *ast.ComponentBody, target string) ([]string, error) {
	var lines []string

	needsIDs := body.DeclaredID != "" || len(body.IDDeclaredChildren) > 0
	if needsIDs {
		lines = append(lines, fmt.Sprintf("%s.ids = {}", target))
	}
	if body.DeclaredID != "" {
		lines = append(lines,
			fmt.Sprintf("var %s = %s", body.DeclaredID, target),
			fmt.Sprintf("%s.ids['%s']=%s", target, body.DeclaredID, body.DeclaredID),
		)
	}

	for _, child := range body.IDDeclaredChildren {
		argsText, err := e.renderArgs(source, child.Args)
		if err != nil {
			return nil, err
		}
		lines = append(lines,
			fmt.Sprintf("var %s = new %s(%s)", child.ID, child.TypeName, argsText),
			fmt.Sprintf("%s.ids['%s']=%s", target, child.ID, child.ID),
		)
		if child.Body != nil {
			childLines, err := e.emitMembers(source, child.Body, child.ID)
			if err != nil {
				return nil, err
			}
			lines = append(lines, childLines...)
			if len(child.Body.NestedChildren) > 0 {
				exprs, err := e.renderNestedChildren(source, child.Body.NestedChildren)
				if err != nil {
					return nil, err
				}
				lines = append(lines, fmt.Sprintf("%s.assignChildren(%s,[%s])",
					e.opts.BaseComponent, child.ID, strings.Join(exprs, ",")))
			}
		}
	}

	memberLines, err := e.emitMembers(source, body, target)
	if err != nil {
		return nil, err
	}
	lines = append(lines, memberLines...)
	return lines, nil
}

// emitMembers lowers the member kinds that make sense against an arbitrary
// receiver: property declarations, events, dotted assignments, listeners.
// Standalone methods/accessors/statics are class-shape concerns handled
// only for a component's own body (see emitMethods/emitStandaloneAccessors/
// emitStatics in component.go) — a flattened id-child doesn't get its own
// class, so those don't apply to it.
func (e *Engine) emitMembers(source string, body *ast.ComponentBody, target string) ([]string, error) {
	props := propertyNames(body)
	accessors := accessorsByName(body.Accessors)

	var lines []string
	for _, pd := range body.Properties {
		propLines, err := e.lowerPropertyDeclaration(source, pd, target, props, accessors)
		if err != nil {
			return nil, err
		}
		lines = append(lines, propLines...)
	}
	for _, ev := range body.Events {
		lines = append(lines, lowerEvent(e.opts.BaseComponent, target, ev))
	}
	for _, pa := range body.Assignments {
		paLines, err := e.lowerPropertyAssignment(source, pa, props, target)
		if err != nil {
			return nil, err
		}
		lines = append(lines, paLines...)
	}
	for _, ld := range body.Listeners {
		text, err := e.lowerListener(source, ld, target)
		if err != nil {
			return nil, err
		}
		lines = append(lines, text)
	}
	return lines, nil
}

func (e *Engine) lowerPropertyDeclaration(
	source string, pd *ast.PropertyDeclaration, target string,
	props map[string]bool, accessors map[string]*accessorPair,
) ([]string, error) {
	if pd.Static {
		return nil, nil // statics become class fields, see emitStatics
	}

	optsObj := fmt.Sprintf("{type:'%s', notify:'%sChanged'", pd.Type, pd.Name)
	if ap, ok := accessors[pd.Name]; ok {
		if ap.get != nil {
			getBody, err := e.render(source, ap.get.Body, nil)
			if err != nil {
				return nil, err
			}
			optsObj += fmt.Sprintf(", get: function()%s.bind(%s)", getBody, target)
			ap.get.IsAttached = true
		}
		if ap.set != nil {
			setBody, err := e.render(source, ap.set.Body, nil)
			if err != nil {
				return nil, err
			}
			optsObj += fmt.Sprintf(", set: function(%s)%s.bind(%s)", ap.set.Param, setBody, target)
			ap.set.IsAttached = true
		}
	}
	optsObj += "}"

	lines := []string{fmt.Sprintf("%s.addProperty(%s,'%s',%s)", e.opts.BaseComponent, target, pd.Name, optsObj)}

	roots := bindingRoots(pd.Binding, props)
	line, err := e.lowerValueAssignment(source, target, target, pd.Name, pd.IsBindingAssignment, pd.Expr, pd.Block, pd.Binding, roots)
	if err != nil {
		return nil, err
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines, nil
}

func (e *Engine) lowerPropertyAssignment(source string, pa *ast.PropertyAssignment, props map[string]bool, bindTo string) ([]string, error) {
	name := pa.Path[len(pa.Path)-1]
	targetObj := "this"
	if len(pa.Path) > 1 {
		targetObj = strings.Join(pa.Path[:len(pa.Path)-1], ".")
	}
	roots := bindingRoots(pa.Binding, props)
	line, err := e.lowerValueAssignment(source, targetObj, bindTo, name, pa.IsBindingAssignment, pa.Expr, pa.Block, pa.Binding, roots)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, nil
	}
	return []string{line}, nil
}

// lowerValueAssignment renders one property's value, choosing between a
// change-subscribing assignPropertyExpression call (spec.md §8 S3) and a
// plain one-time assignment, per the ':' / '=' and binding-capture rules of
// spec.md §4.5 step 8/9. targetObj is the receiver the assignment/call is
// made against; bindTo is the enclosing instance the generated function
// literal is bound to (ordinarily the same as targetObj, except for a
// dotted PropertyAssignment, where targetObj is some other id's path but
// the function still closes over the component currently being built).
func (e *Engine) lowerValueAssignment(
	source, targetObj, bindTo, name string, isBinding bool,
	expr ast.Node, block *ast.JsBlock, binding *ast.BindingContainer, roots map[string]bool,
) (string, error) {
	if isBinding && binding != nil && !binding.IsEmpty() {
		var fnBody string
		if block != nil {
			text, err := e.render(source, block, roots)
			if err != nil {
				return "", err
			}
			fnBody = text
		} else {
			exprText, err := e.render(source, expr, roots)
			if err != nil {
				return "", err
			}
			fnBody = "{ return " + exprText + " }"
		}
		subs := renderSubscriptions(binding)
		return fmt.Sprintf("%s.assignPropertyExpression(%s,'%s',function()%s.bind(%s),%s)",
			e.opts.BaseComponent, targetObj, name, fnBody, bindTo, subs), nil
	}
	if block != nil {
		text, err := e.render(source, block, roots)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(function()%s.bind(%s))()", text, bindTo), nil
	}
	if expr != nil {
		text, err := e.render(source, expr, roots)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s = %s", targetObj, name, text), nil
	}
	return "", nil
}

func lowerEvent(base, target string, ev *ast.EventDeclaration) string {
	var pairs []string
	for _, p := range ev.Params {
		pairs = append(pairs, fmt.Sprintf("['%s','%s']", p.Type, p.Name))
	}
	return fmt.Sprintf("%s.addEvent(%s,'%s',[%s])", base, target, ev.Name, strings.Join(pairs, ","))
}

func (e *Engine) lowerListener(source string, ld *ast.ListenerDeclaration, target string) (string, error) {
	bodyText, err := e.render(source, ld.Body, nil)
	if err != nil {
		return "", err
	}
	asyncKw := ""
	if ld.Async {
		asyncKw = "async "
	}
	return fmt.Sprintf("%s.on('%s', %sfunction(%s)%s.bind(%s))",
		target, ld.Name, asyncKw, strings.Join(ld.Params, ","), bodyText, target), nil
}

func (e *Engine) renderNestedChildren(source string, children []*ast.NewComponentExpression) ([]string, error) {
	out := make([]string, 0, len(children))
	for _, c := range children {
		text, err := e.lowerNewComponentExpression(source, c, "this")
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}
