package lowering

import (
	"fmt"
	"strings"

	"github.com/oxhq/lvc/internal/ast"
)

// lowerComponentDeclaration renders a named or anonymous component class,
// assembling the literal constructor/`__initialize` shape spec.md §4.5 and
// §8 scenario S1 describe.
func (e *Engine) lowerComponentDeclaration(source string, cd *ast.ComponentDeclaration) (string, error) {
	heritage := cd.Heritage
	if heritage == "" {
		heritage = e.opts.BaseComponent
	}

	var sb strings.Builder
	if cd.AtFileRoot {
		sb.WriteString("export ")
	}
	sb.WriteString("class ")
	if cd.Name != "" {
		sb.WriteString(cd.Name + " ")
	}
	sb.WriteString("extends " + heritage + " {\n")

	// An anonymous class has no name to call `.prototype.__initialize` on
	// from inside its own constructor, so it uses new.target instead —
	// whichever subclass is actually being constructed.
	ctorTarget := cd.Name
	if ctorTarget == "" {
		ctorTarget = "new.target"
	}
	ctorText, err := e.emitConstructor(source, cd.Body.Constructor, ctorTarget)
	if err != nil {
		return "", err
	}
	sb.WriteString("  " + ctorText + "\n")

	initParams, forwardLines := constructorForwarding(cd.Body.Constructor)

	bodyLines, err := e.emitBody(source, cd.Body, "this")
	if err != nil {
		return "", err
	}
	allLines := append(forwardLines, bodyLines...)
	if len(cd.Body.NestedChildren) > 0 {
		exprs, err := e.renderNestedChildren(source, cd.Body.NestedChildren)
		if err != nil {
			return "", err
		}
		allLines = append(allLines, fmt.Sprintf("%s.assignChildren(this,[%s])", e.opts.BaseComponent, strings.Join(exprs, ",")))
	}

	sb.WriteString(fmt.Sprintf("  __initialize(%s){\n", initParams))
	for _, l := range allLines {
		sb.WriteString("    " + l + "\n")
	}
	sb.WriteString("  }\n")

	accText, err := e.emitStandaloneAccessors(source, cd.Body.Accessors, "this")
	if err != nil {
		return "", err
	}
	sb.WriteString(accText)

	methodsText, err := e.emitMethods(source, cd.Body.Methods)
	if err != nil {
		return "", err
	}
	sb.WriteString(methodsText)

	staticsText, err := e.emitStatics(source, cd.Body.StaticProperties)
	if err != nil {
		return "", err
	}
	sb.WriteString(staticsText)

	if e.opts.OutputComponentMeta {
		sb.WriteString(emitComponentMeta(cd.Body))
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

// emitComponentMeta renders the optional `static __meta` block
// (Options.OutputComponentMeta) host tooling can read without re-parsing
// source: each declared property's name/type and each event's name/params,
// in declaration order.
func emitComponentMeta(body *ast.ComponentBody) string {
	var props []string
	for _, p := range body.Properties {
		props = append(props, fmt.Sprintf("{name:'%s', type:'%s'}", p.Name, p.Type))
	}
	var events []string
	for _, ev := range body.Events {
		var params []string
		for _, p := range ev.Params {
			params = append(params, fmt.Sprintf("{type:'%s', name:'%s'}", p.Type, p.Name))
		}
		events = append(events, fmt.Sprintf("{name:'%s', params:[%s]}", ev.Name, strings.Join(params, ",")))
	}
	return fmt.Sprintf("  static __meta = {properties:[%s], events:[%s]}\n",
		strings.Join(props, ","), strings.Join(events, ","))
}

// constructorForwarding derives __initialize's parameter list and the
// `this.<name> = __<name>__` forwarding lines a ConstructorInitializer
// list asks for (spec.md §4.5 step 7). The explicit constructor body
// itself is left untouched — emitConstructor copies it verbatim, and it's
// on the author to call `this.__initialize(...)` passing these exact names
// in order (an explicit constructor's body is never auto-rewritten, per
// spec.md "the user is responsible for calling super() and
// this.__initialize(...)").
func constructorForwarding(ctor *ast.ConstructorDefinition) (string, []string) {
	if ctor == nil || ctor.Initializer == nil {
		return "", nil
	}
	var names []string
	var forwardLines []string
	for _, pair := range ctor.Initializer.Pairs {
		names = append(names, "__"+pair.Name+"__")
		forwardLines = append(forwardLines, fmt.Sprintf("this.%s = __%s__", pair.Name, pair.Name))
	}
	return strings.Join(names, ","), forwardLines
}

func (e *Engine) emitConstructor(source string, ctor *ast.ConstructorDefinition, ctorTarget string) (string, error) {
	if ctor == nil {
		return fmt.Sprintf("constructor(){ super(); %s.prototype.__initialize.call(this) }", ctorTarget), nil
	}
	params := make([]string, 0, len(ctor.Params))
	for _, p := range ctor.Params {
		params = append(params, p.Name)
	}
	bodyText, err := e.render(source, ctor.Body, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("constructor(%s)%s", strings.Join(params, ","), bodyText), nil
}

func (e *Engine) emitStandaloneAccessors(source string, accessors []*ast.PropertyAccessor, target string) (string, error) {
	var sb strings.Builder
	for _, a := range accessors {
		if a.IsAttached {
			continue
		}
		bodyText, err := e.render(source, a.Body, nil)
		if err != nil {
			return "", err
		}
		if a.Kind == ast.Getter {
			sb.WriteString(fmt.Sprintf("  get %s()%s\n", a.Name, bodyText))
		} else {
			sb.WriteString(fmt.Sprintf("  set %s(%s)%s\n", a.Name, a.Param, bodyText))
		}
	}
	return sb.String(), nil
}

func (e *Engine) emitMethods(source string, methods []*ast.TypedMethod) (string, error) {
	var sb strings.Builder
	for _, m := range methods {
		bodyText, err := e.render(source, m.Body, nil)
		if err != nil {
			return "", err
		}
		params := make([]string, 0, len(m.Params))
		for _, p := range m.Params {
			params = append(params, p.Name)
		}
		prefix := ""
		if m.Static {
			prefix += "static "
		}
		if m.Async {
			prefix += "async "
		}
		sb.WriteString(fmt.Sprintf("  %s%s(%s)%s\n", prefix, m.Name, strings.Join(params, ","), bodyText))
	}
	return sb.String(), nil
}

// emitStatics lowers static property declarations to plain class fields,
// evaluated once at class-definition time rather than per instance — there
// is no per-instance receiver to addProperty against, since a static
// belongs to the class itself (spec.md open question, resolved as a direct
// class-field emission; see DESIGN.md).
func (e *Engine) emitStatics(source string, statics []*ast.PropertyDeclaration) (string, error) {
	var sb strings.Builder
	for _, pd := range statics {
		var text string
		var err error
		switch {
		case pd.Expr != nil:
			text, err = e.render(source, pd.Expr, nil)
		case pd.Block != nil:
			var blockText string
			blockText, err = e.render(source, pd.Block, nil)
			text = fmt.Sprintf("(function()%s)()", blockText)
		}
		if err != nil {
			return "", err
		}
		if text == "" {
			text = "undefined"
		}
		sb.WriteString(fmt.Sprintf("  static %s = %s\n", pd.Name, text))
	}
	return sb.String(), nil
}
