package ast

import (
	"github.com/oxhq/lvc/internal/cst"
	"github.com/oxhq/lvc/internal/point"
)

// scopeLike is whatever the builder's scope stack holds: anything that can
// record a declaration or a use against itself.
type scopeLike interface {
	Declare(name string, pos point.Point)
	Use(name string, pos point.Point)
}

// builder walks a cst.Tree and produces the typed ast.Program, attaching
// scope declarations/uses and binding captures as it goes (spec.md §4.2).
type builder struct {
	file string

	scopes []scopeLike

	// binding is the BindingContainer that identifier reads currently
	// capture into, or nil when the walk has crossed a function/class/
	// listener/new-component-expression boundary since the nearest
	// enclosing property (spec.md §4.2, "Binding capture" stops at the
	// first such boundary). Pushing a property's own container always
	// re-enables capture for its own expression, even under a suppressed
	// outer frame, since a nested child's properties capture relative to
	// themselves.
	binding []*BindingContainer
}

// Build turns a parsed CST into a Program. fileName is used only for error
// messages.
func Build(fileName string, tree *cst.Tree) (prog *Program, err error) {
	b := &builder{file: fileName}
	return b.buildProgram(tree.Root)
}

func (b *builder) syntaxErr(n cst.Node, msg string) error {
	return &SyntaxError{File: b.file, Pos: n.Range().Start, Msg: msg}
}

func (b *builder) assertErr(n cst.Node, msg string) error {
	return &AssertionError{File: b.file, Pos: n.Range().Start, Msg: msg}
}

func (b *builder) pushScope(s scopeLike) { b.scopes = append(b.scopes, s) }
func (b *builder) popScope()             { b.scopes = b.scopes[:len(b.scopes)-1] }
func (b *builder) scope() scopeLike      { return b.scopes[len(b.scopes)-1] }

func (b *builder) pushBinding(c *BindingContainer) { b.binding = append(b.binding, c) }
func (b *builder) popBinding()                     { b.binding = b.binding[:len(b.binding)-1] }
func (b *builder) activeBinding() *BindingContainer {
	if len(b.binding) == 0 {
		return nil
	}
	return b.binding[len(b.binding)-1]
}

func attach(parent, child Node) {
	if child != nil {
		child.setParent(parent)
	}
}

func fieldText(n cst.Node, name string) string {
	f := n.ChildByFieldName(name)
	if f == nil {
		return ""
	}
	return f.Text()
}

// ---- Program ----

func (b *builder) buildProgram(n cst.Node) (*Program, error) {
	prog := &Program{base: base{cst: n}}
	b.pushScope(&prog.Scope)
	defer b.popScope()

	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case cst.ErrorKind:
			return nil, b.syntaxErr(c, errorMessage(c))
		case "js_import_statement":
			ji, err := b.buildJsImport(c)
			if err != nil {
				return nil, err
			}
			attach(prog, ji)
			prog.JsImports = append(prog.JsImports, ji)
		case "import_statement":
			imp, err := b.buildImport(c)
			if err != nil {
				return nil, err
			}
			attach(prog, imp)
			prog.Imports = append(prog.Imports, imp)
		case "component_declaration":
			cd, err := b.buildComponentDeclaration(c, true)
			if err != nil {
				return nil, err
			}
			attach(prog, cd)
			if cd.Name != "" {
				prog.Declare(cd.Name, c.Range().Start)
			}
			prog.Exports = append(prog.Exports, cd)
		default:
			ne, err := b.buildRootStatement(c)
			if err != nil {
				return nil, err
			}
			attach(prog, ne)
			prog.Exports = append(prog.Exports, ne)
		}
	}
	return prog, nil
}

// errorMessage reads the marker payload errAndSkip stashed on an ERROR node.
func errorMessage(n cst.Node) string {
	if m := n.ChildByFieldName("message"); m != nil {
		return string(m.Kind())
	}
	return "unexpected input"
}

func (b *builder) buildRootStatement(n cst.Node) (Node, error) {
	switch n.Kind() {
	case "new_component_expression":
		return b.buildNewComponentExpression(n, true)
	case "tagged_component_expression":
		return taggedAsNewComponentExpression(b.buildTaggedComponentExpression(n, false)), nil
	case "triple_tagged_component_expression":
		return taggedAsNewComponentExpression(b.buildTaggedComponentExpression(n, true)), nil
	default:
		return nil, b.syntaxErr(n, "expected a component declaration or component-instance statement at file scope")
	}
}

func (b *builder) buildImport(n cst.Node) (*Import, error) {
	imp := &Import{base: base{cst: n}}
	imp.Path = fieldText(n, "path")
	imp.As = fieldText(n, "alias")
	imp.IsRelative = cst.BoolField(n, "relative")
	name := imp.As
	if name == "" {
		name = lastSegment(imp.Path)
	}
	if name != "" {
		b.scope().Declare(name, n.Range().Start)
	}
	return imp, nil
}

func (b *builder) buildJsImport(n cst.Node) (*JsImport, error) {
	ji := &JsImport{base: base{cst: n}}
	ji.ObjectImport = cst.BoolField(n, "object_import")
	ji.Path = fieldText(n, "path")
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == "identifier" {
			name := c.Text()
			ji.Names = append(ji.Names, name)
			b.scope().Declare(name, c.Range().Start)
		}
	}
	return ji, nil
}

func lastSegment(dotted string) string {
	last := dotted
	for i := len(dotted) - 1; i >= 0; i-- {
		if dotted[i] == '.' {
			last = dotted[i+1:]
			break
		}
	}
	return last
}

// ---- Components ----

func (b *builder) buildComponentDeclaration(n cst.Node, atFileRoot bool) (*ComponentDeclaration, error) {
	cd := &ComponentDeclaration{base: base{cst: n}, AtFileRoot: atFileRoot}
	cd.Name = fieldText(n, "name")
	cd.Heritage = fieldText(n, "heritage")

	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, b.syntaxErr(n, "component declaration missing a body")
	}
	body, err := b.buildComponentBody(bodyNode)
	if err != nil {
		return nil, err
	}
	if cd.Name == "" && len(body.StaticProperties) > 0 {
		return nil, b.assertErr(bodyNode, "static members may appear only on named component declarations")
	}
	attach(cd, body)
	cd.Body = body
	cd.DeclaredID = body.DeclaredID
	return cd, nil
}

func (b *builder) buildComponentBody(n cst.Node) (*ComponentBody, error) {
	body := &ComponentBody{base: base{cst: n}}
	b.pushScope(&body.Scope)
	defer b.popScope()

	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case cst.ErrorKind:
			return nil, b.syntaxErr(c, errorMessage(c))

		case "id_declaration":
			idNode := c.ChildByFieldName("id")
			body.DeclaredID = idNode.Text()
			body.Declare(body.DeclaredID, idNode.Range().Start)

		case "property_accessor":
			pa, err := b.buildPropertyAccessor(c)
			if err != nil {
				return nil, err
			}
			attach(body, pa)
			body.Accessors = append(body.Accessors, pa)

		case "event_declaration":
			ev, err := b.buildEventDeclaration(c)
			if err != nil {
				return nil, err
			}
			attach(body, ev)
			body.Events = append(body.Events, ev)

		case "listener_declaration":
			ld, err := b.buildListenerDeclaration(c)
			if err != nil {
				return nil, err
			}
			attach(body, ld)
			body.Listeners = append(body.Listeners, ld)

		case "typed_method":
			m, err := b.buildTypedMethod(c)
			if err != nil {
				return nil, err
			}
			attach(body, m)
			body.Methods = append(body.Methods, m)

		case "constructor_definition":
			if body.Constructor != nil {
				return nil, b.assertErr(c, "component body declares more than one constructor")
			}
			ctor, err := b.buildConstructorDefinition(c)
			if err != nil {
				return nil, err
			}
			attach(body, ctor)
			body.Constructor = ctor

		case "property_declaration":
			pd, err := b.buildPropertyDeclaration(c, &body.Scope)
			if err != nil {
				return nil, err
			}
			attach(body, pd)
			if pd.Static {
				body.StaticProperties = append(body.StaticProperties, pd)
			} else {
				body.Properties = append(body.Properties, pd)
			}

		case "property_assignment":
			pa, err := b.buildPropertyAssignment(c, &body.Scope)
			if err != nil {
				return nil, err
			}
			attach(body, pa)
			body.Assignments = append(body.Assignments, pa)

		case "new_component_expression", "tagged_component_expression", "triple_tagged_component_expression":
			var child *NewComponentExpression
			var err error
			switch c.Kind() {
			case "new_component_expression":
				child, err = b.buildNewComponentExpression(c, false)
			default:
				tagged := b.buildTaggedComponentExpression(c, c.Kind() == "triple_tagged_component_expression")
				child = taggedAsNewComponentExpression(tagged)
			}
			if err != nil {
				return nil, err
			}
			attach(body, child)
			if child.ID != "" {
				body.Declare(child.ID, c.Range().Start)
				body.IDDeclaredChildren = append(body.IDDeclaredChildren, child)
			} else {
				body.NestedChildren = append(body.NestedChildren, child)
			}

		default:
			return nil, b.syntaxErr(c, "unrecognized component body member")
		}
	}
	return body, nil
}

// taggedAsNewComponentExpression lifts a tagged-string shorthand into the
// same NewComponentExpression shape nested-child bookkeeping expects;
// lowering switches on whether Body is nil to tell the two apart.
func taggedAsNewComponentExpression(t *TaggedComponentExpression) *NewComponentExpression {
	ne := &NewComponentExpression{base: t.base, TypeName: t.TypeName}
	attach(ne, t)
	ne.Args = []Node{t}
	return ne
}

func (b *builder) buildNewComponentExpression(n cst.Node, isRoot bool) (*NewComponentExpression, error) {
	ne := &NewComponentExpression{base: base{cst: n}, IsRoot: isRoot}
	ne.TypeName = fieldText(n, "type")
	b.pushScope(&ne.Scope)
	defer b.popScope()
	b.pushBinding(nil)
	defer b.popBinding()

	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < args.ChildCount(); i++ {
			a, err := b.buildExprNode(args.Child(i))
			if err != nil {
				return nil, err
			}
			attach(ne, a)
			ne.Args = append(ne.Args, a)
		}
	}

	if bodyNode := n.ChildByFieldName("body"); bodyNode != nil {
		body, err := b.buildComponentBody(bodyNode)
		if err != nil {
			return nil, err
		}
		attach(ne, body)
		ne.Body = body
		ne.ID = body.DeclaredID
	}
	return ne, nil
}

func (b *builder) buildTaggedComponentExpression(n cst.Node, triple bool) *TaggedComponentExpression {
	t := &TaggedComponentExpression{base: base{cst: n}, Triple: triple}
	t.TypeName = fieldText(n, "type")
	if raw := n.ChildByFieldName("value_text"); raw != nil {
		t.Raw = string(raw.Kind())
	}
	return t
}

// ---- Members ----

func (b *builder) buildPropertyAccessor(n cst.Node) (*PropertyAccessor, error) {
	pa := &PropertyAccessor{base: base{cst: n}}
	pa.Name = fieldText(n, "name")
	if cst.TextField(n, "accessor_kind") == string(Setter) {
		pa.Kind = Setter
	} else {
		pa.Kind = Getter
	}
	pa.Param = fieldText(n, "parameter")

	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, b.syntaxErr(n, "accessor missing a body")
	}
	body, err := b.buildJsBlock(bodyNode, nil)
	if err != nil {
		return nil, err
	}
	attach(pa, body)
	pa.Body = body
	return pa, nil
}

func (b *builder) buildEventDeclaration(n cst.Node) (*EventDeclaration, error) {
	ev := &EventDeclaration{base: base{cst: n}}
	ev.Name = fieldText(n, "name")
	if params := n.ChildByFieldName("parameters"); params != nil {
		ev.Params = typedParams(params)
	}
	return ev, nil
}

func (b *builder) buildListenerDeclaration(n cst.Node) (*ListenerDeclaration, error) {
	ld := &ListenerDeclaration{base: base{cst: n}}
	ld.Name = fieldText(n, "name")
	ld.Async = cst.BoolField(n, "async")
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < params.ChildCount(); i++ {
			if name := params.Child(i).ChildByFieldName("name"); name != nil {
				ld.Params = append(ld.Params, name.Text())
			}
		}
	}
	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, b.syntaxErr(n, "listener missing a body")
	}
	body, err := b.buildJsBlock(bodyNode, nil)
	if err != nil {
		return nil, err
	}
	attach(ld, body)
	ld.Body = body
	return ld, nil
}

func (b *builder) buildTypedMethod(n cst.Node) (*TypedMethod, error) {
	m := &TypedMethod{base: base{cst: n}}
	m.Name = fieldText(n, "name")
	m.Static = cst.BoolField(n, "static")
	m.Async = cst.BoolField(n, "async")
	m.ReturnType = fieldText(n, "return_type")
	if params := n.ChildByFieldName("parameters"); params != nil {
		m.Params = typedParams(params)
	}
	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, b.syntaxErr(n, "method missing a body")
	}
	body, err := b.buildJsBlock(bodyNode, nil)
	if err != nil {
		return nil, err
	}
	attach(m, body)
	m.Body = body
	return m, nil
}

func (b *builder) buildConstructorDefinition(n cst.Node) (*ConstructorDefinition, error) {
	ctor := &ConstructorDefinition{base: base{cst: n}}
	if params := n.ChildByFieldName("parameters"); params != nil {
		ctor.Params = typedParams(params)
	}
	if initNode := n.ChildByFieldName("initializer"); initNode != nil {
		init, err := b.buildConstructorInitializer(initNode)
		if err != nil {
			return nil, err
		}
		attach(ctor, init)
		ctor.Initializer = init
	}
	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, b.syntaxErr(n, "constructor missing a body")
	}
	body, err := b.buildJsBlock(bodyNode, nil)
	if err != nil {
		return nil, err
	}
	attach(ctor, body)
	ctor.Body = body
	return ctor, nil
}

func (b *builder) buildConstructorInitializer(n cst.Node) (*ConstructorInitializer, error) {
	init := &ConstructorInitializer{base: base{cst: n}}
	for i := 0; i < n.ChildCount(); i++ {
		pairNode := n.Child(i)
		name := fieldText(pairNode, "name")
		exprNode := pairNode.ChildByFieldName("expression")
		expr, err := b.buildExprNode(exprNode)
		if err != nil {
			return nil, err
		}
		init.Pairs = append(init.Pairs, ConstructorInitializerPair{Name: name, Expr: expr})
	}
	return init, nil
}

func typedParams(n cst.Node) []Param {
	var out []Param
	for i := 0; i < n.ChildCount(); i++ {
		p := n.Child(i)
		out = append(out, Param{Type: fieldText(p, "type"), Name: fieldText(p, "name")})
	}
	return out
}

// ---- Properties ----

func (b *builder) buildPropertyDeclaration(n cst.Node, owner *Scope) (*PropertyDeclaration, error) {
	pd := &PropertyDeclaration{base: base{cst: n}}
	pd.Type = fieldText(n, "type")
	pd.Name = fieldText(n, "name")
	pd.Static = cst.BoolField(n, "static")
	pd.IsBindingAssignment = cst.BoolField(n, "binding")
	owner.Declare(pd.Name, n.Range().Start)

	if err := b.buildPropertyValue(n, &pd.Scope, &pd.Expr, &pd.Block, &pd.Binding); err != nil {
		return nil, err
	}
	return pd, nil
}

func (b *builder) buildPropertyAssignment(n cst.Node, owner *Scope) (*PropertyAssignment, error) {
	pa := &PropertyAssignment{base: base{cst: n}}
	pathNode := n.ChildByFieldName("path")
	pa.Path = splitDotted(pathNode.Text())
	pa.IsBindingAssignment = cst.BoolField(n, "binding")
	owner.Use(pa.Path[0], pathNode.Range().Start)

	if err := b.buildPropertyValue(n, &pa.Scope, &pa.Expr, &pa.Block, &pa.Binding); err != nil {
		return nil, err
	}
	return pa, nil
}

// buildPropertyValue builds the shared `(":"|"=") (block|expr)` tail of a
// property declaration or assignment, attaching a fresh BindingContainer and
// running the expression/block walk under it.
func (b *builder) buildPropertyValue(n cst.Node, scope *Scope, expr *Node, block **JsBlock, binding **BindingContainer) error {
	valueNode := n.ChildByFieldName("value")
	if valueNode == nil {
		return b.syntaxErr(n, "property has no value")
	}
	bc := NewBindingContainer()
	*binding = bc
	b.pushScope(scope)
	defer b.popScope()

	if valueNode.Kind() == "js_block" {
		body, err := b.buildJsBlock(valueNode, bc)
		if err != nil {
			return err
		}
		*block = body
		return nil
	}

	b.pushBinding(bc)
	defer b.popBinding()

	v, err := b.buildExprNode(valueNode)
	if err != nil {
		return err
	}
	*expr = v
	return nil
}

func splitDotted(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// ---- Statements / expressions ----

// buildJsBlock builds a scope-bearing `{ ... }`. bc is the binding container
// active for reads inside it; nil suppresses capture (used for ordinary
// method/listener/accessor/constructor bodies, which are not binding
// expressions themselves — spec.md only captures bindings for a property's
// own value, never for executable statement bodies).
func (b *builder) buildJsBlock(n cst.Node, bc *BindingContainer) (*JsBlock, error) {
	block := &JsBlock{base: base{cst: n}}
	b.pushScope(&block.Scope)
	b.pushBinding(bc) // nil for ordinary statement bodies; a container for a block-bodied property/assignment value
	defer b.popBinding()
	defer b.popScope()

	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == cst.ErrorKind {
			return nil, b.syntaxErr(c, errorMessage(c))
		}
		st, err := b.buildStatement(c)
		if err != nil {
			return nil, err
		}
		attach(block, st)
		block.Statements = append(block.Statements, st)
	}
	return block, nil
}

func (b *builder) buildStatement(n cst.Node) (Node, error) {
	switch n.Kind() {
	case "js_block":
		return b.buildJsBlock(n, nil)
	case "variable_declaration":
		return b.buildVariableDeclaration(n)
	case "if_statement":
		return b.buildIfStatement(n)
	case "for_statement":
		return b.buildForStatement(n)
	case "while_statement":
		return b.buildWhileStatement(n)
	case "return_statement":
		return b.buildReturnStatement(n)
	case "expression_statement":
		inner, err := b.buildExprNode(n.Child(0))
		if err != nil {
			return nil, err
		}
		return b.wrapOpaque(n, inner), nil
	default:
		return nil, b.syntaxErr(n, "unrecognized statement")
	}
}

func (b *builder) wrapOpaque(n cst.Node, children ...Node) *Opaque {
	o := &Opaque{base: base{cst: n}}
	for _, c := range children {
		if c == nil {
			continue
		}
		attach(o, c)
		o.Children = append(o.Children, c)
	}
	return o
}

func (b *builder) buildVariableDeclaration(n cst.Node) (Node, error) {
	var decls []Node
	for i := 0; i < n.ChildCount(); i++ {
		d := n.Child(i)
		nameNode := d.ChildByFieldName("name")
		b.declareBindingTarget(nameNode)
		if val := d.ChildByFieldName("value"); val != nil {
			v, err := b.buildExprNode(val)
			if err != nil {
				return nil, err
			}
			decls = append(decls, v)
		}
	}
	return b.wrapOpaque(n, decls...), nil
}

func (b *builder) declareBindingTarget(n cst.Node) {
	if n == nil {
		return
	}
	if n.Kind() == "destructuring_pattern" {
		for i := 0; i < n.ChildCount(); i++ {
			b.declareBindingTarget(n.Child(i))
		}
		return
	}
	b.scope().Declare(n.Text(), n.Range().Start)
}

func (b *builder) buildIfStatement(n cst.Node) (Node, error) {
	cond, err := b.buildExprNode(n.ChildByFieldName("condition"))
	if err != nil {
		return nil, err
	}
	then, err := b.buildStatement(n.ChildByFieldName("then"))
	if err != nil {
		return nil, err
	}
	var els Node
	if e := n.ChildByFieldName("else"); e != nil {
		els, err = b.buildStatement(e)
		if err != nil {
			return nil, err
		}
	}
	return b.wrapOpaque(n, cond, then, els), nil
}

func (b *builder) buildForStatement(n cst.Node) (Node, error) {
	bodyNode := n.ChildByFieldName("body")
	var children []Node
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == bodyNode {
			continue // handled separately below, as a statement rather than an expression
		}
		switch c.Kind() {
		case "variable_declaration":
			v, err := b.buildVariableDeclaration(c)
			if err != nil {
				return nil, err
			}
			children = append(children, v)
		default:
			v, err := b.buildExprNode(c)
			if err != nil {
				return nil, err
			}
			children = append(children, v)
		}
	}
	body, err := b.buildStatement(bodyNode)
	if err != nil {
		return nil, err
	}
	children = append(children, body)
	return b.wrapOpaque(n, children...), nil
}

func (b *builder) buildWhileStatement(n cst.Node) (Node, error) {
	cond, err := b.buildExprNode(n.ChildByFieldName("condition"))
	if err != nil {
		return nil, err
	}
	body, err := b.buildStatement(n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	return b.wrapOpaque(n, cond, body), nil
}

func (b *builder) buildReturnStatement(n cst.Node) (Node, error) {
	if v := n.ChildByFieldName("value"); v != nil {
		val, err := b.buildExprNode(v)
		if err != nil {
			return nil, err
		}
		return b.wrapOpaque(n, val), nil
	}
	return b.wrapOpaque(n), nil
}

// buildExprNode walks an expression subtree, recording scope uses and
// binding captures along the way, and returns the generic Node lowering
// sees: *Opaque for ordinary JS-like expressions, or a distinguished
// *NewComponentExpression / *TaggedComponentExpression when the expression
// is (or contains at its own position) a component instantiation.
func (b *builder) buildExprNode(n cst.Node) (Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind() {
	case cst.ErrorKind:
		return nil, b.syntaxErr(n, errorMessage(n))

	case "identifier":
		name := n.Text()
		b.scope().Use(name, n.Range().Start)
		if ac := b.activeBinding(); ac != nil {
			ac.Capture(name, "", name, n.Range().Start)
		}
		return b.wrapOpaque(n), nil

	case "member_expression":
		root, firstField, path := decomposeMemberChain(n)
		b.scope().Use(root, n.Range().Start)
		if ac := b.activeBinding(); ac != nil {
			ac.Capture(root, firstField, path, n.Range().Start)
		}
		// The chain was captured whole above; an identifier at its root is
		// not captured a second time as a bare read.
		rootNode := n
		for rootNode.Kind() == "member_expression" {
			rootNode = rootNode.ChildByFieldName("object")
		}
		plainRoot := rootNode.Kind() == "identifier"
		if plainRoot {
			b.pushBinding(nil)
		}
		obj, err := b.buildExprNode(n.ChildByFieldName("object"))
		if plainRoot {
			b.popBinding()
		}
		if err != nil {
			return nil, err
		}
		return b.wrapOpaque(n, obj), nil

	case "this_expression", "parent_expression", "super_expression",
		"number_literal", "string_literal", "boolean_literal", "null_literal",
		"template_literal":
		return b.wrapOpaque(n), nil

	case "new_component_expression":
		return b.buildNewComponentExpression(n, false)
	case "tagged_component_expression":
		return b.buildTaggedComponentExpression(n, false), nil
	case "triple_tagged_component_expression":
		return b.buildTaggedComponentExpression(n, true), nil

	case "new_expression":
		var children []Node
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < args.ChildCount(); i++ {
				a, err := b.buildExprNode(args.Child(i))
				if err != nil {
					return nil, err
				}
				children = append(children, a)
			}
		}
		return b.wrapOpaque(n, children...), nil

	case "call_expression":
		fn, err := b.buildExprNode(n.ChildByFieldName("function"))
		if err != nil {
			return nil, err
		}
		children := []Node{fn}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < args.ChildCount(); i++ {
				a, err := b.buildExprNode(args.Child(i))
				if err != nil {
					return nil, err
				}
				children = append(children, a)
			}
		}
		return b.wrapOpaque(n, children...), nil

	case "index_expression":
		obj, err := b.buildExprNode(n.ChildByFieldName("object"))
		if err != nil {
			return nil, err
		}
		idx, err := b.buildExprNode(n.ChildByFieldName("index"))
		if err != nil {
			return nil, err
		}
		return b.wrapOpaque(n, obj, idx), nil

	case "binary_expression":
		l, err := b.buildExprNode(n.ChildByFieldName("left"))
		if err != nil {
			return nil, err
		}
		r, err := b.buildExprNode(n.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		return b.wrapOpaque(n, l, r), nil

	case "assignment_expression":
		l, err := b.buildExprNode(n.ChildByFieldName("left"))
		if err != nil {
			return nil, err
		}
		r, err := b.buildExprNode(n.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		return b.wrapOpaque(n, l, r), nil

	case "unary_expression":
		v, err := b.buildExprNode(n.ChildByFieldName("operand"))
		if err != nil {
			return nil, err
		}
		return b.wrapOpaque(n, v), nil

	case "parenthesized_expression":
		v, err := b.buildExprNode(n.Child(0))
		if err != nil {
			return nil, err
		}
		return b.wrapOpaque(n, v), nil

	case "array_literal":
		var children []Node
		for i := 0; i < n.ChildCount(); i++ {
			c, err := b.buildExprNode(n.Child(i))
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return b.wrapOpaque(n, children...), nil

	case "object_literal":
		var children []Node
		for i := 0; i < n.ChildCount(); i++ {
			prop := n.Child(i)
			v, err := b.buildExprNode(prop.ChildByFieldName("value"))
			if err != nil {
				return nil, err
			}
			children = append(children, v)
		}
		return b.wrapOpaque(n, children...), nil

	case "function_expression":
		return b.buildFunctionLike(n)

	case "arrow_function":
		return b.buildFunctionLike(n)

	default:
		return nil, b.syntaxErr(n, "unrecognized expression")
	}
}

// buildFunctionLike handles function_expression/arrow_function: both
// introduce a parameter scope and a binding-capture boundary (spec.md
// §4.2, "crossing a function boundary stops binding capture").
func (b *builder) buildFunctionLike(n cst.Node) (Node, error) {
	o := &Opaque{base: base{cst: n}}
	paramScope := &Scope{}
	b.pushScope(paramScope)
	b.pushBinding(nil)
	defer b.popBinding()
	defer b.popScope()

	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < params.ChildCount(); i++ {
			if name := params.Child(i).ChildByFieldName("name"); name != nil {
				paramScope.Declare(name.Text(), name.Range().Start)
			} else if params.Child(i).Kind() == "identifier" {
				paramScope.Declare(params.Child(i).Text(), params.Child(i).Range().Start)
			}
		}
	}

	bodyNode := n.ChildByFieldName("body")
	if bodyNode == nil {
		return o, nil
	}
	if bodyNode.Kind() == "js_block" {
		body, err := b.buildJsBlock(bodyNode, nil)
		if err != nil {
			return nil, err
		}
		attach(o, body)
		o.Children = append(o.Children, body)
		return o, nil
	}
	body, err := b.buildExprNode(bodyNode)
	if err != nil {
		return nil, err
	}
	attach(o, body)
	o.Children = append(o.Children, body)
	return o, nil
}

// decomposeMemberChain walks a left-nested member_expression chain and
// returns the root identifier, the first field accessed off it (what the
// runtime subscribes to), and the full dotted path text for diagnostics.
func decomposeMemberChain(n cst.Node) (root, firstField, path string) {
	var fields []string
	cur := n
	for cur.Kind() == "member_expression" {
		prop := cur.ChildByFieldName("property")
		fields = append([]string{prop.Text()}, fields...)
		cur = cur.ChildByFieldName("object")
	}
	root = cur.Text()
	if len(fields) > 0 {
		firstField = fields[0]
	}
	path = n.Text()
	return root, firstField, path
}
