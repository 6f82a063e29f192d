package cst

import (
	"fmt"

	"github.com/oxhq/lvc/internal/point"
)

// ParseError reports a lexical/syntactic position the parser could not
// make sense of. The AST builder turns these into fatal SyntaxErrors; the
// parser itself never fails outright — it always produces a tree, using
// ERROR nodes to mark the spots it gave up on, exactly as an incremental
// parser would.
type ParseError struct {
	Message string
	At      point.Point
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.At)
}

// Parse tokenizes and parses src into a Tree. It never returns an error:
// recoverable syntax problems are represented as ERROR nodes in the tree,
// which internal/ast turns into a fatal SyntaxError during the build walk.
func Parse(src string) *Tree {
	p := &parser{src: src, toks: Lex(src)}
	root := p.parseProgram()
	return &Tree{Root: root, Source: src}
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) at(i int) token {
	if p.pos+i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+i]
}

func (p *parser) eof() bool { return p.cur().kind == tokEOF }

func (p *parser) advance() token {
	t := p.cur()
	if !p.eof() {
		p.pos++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	t := p.cur()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) isKeyword(s string) bool {
	t := p.cur()
	return t.kind == tokKeyword && t.text == s
}

func (p *parser) acceptPunct(s string) bool {
	if p.isPunct(s) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) acceptKeyword(s string) bool {
	if p.isKeyword(s) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectPunct(s string) {
	if !p.acceptPunct(s) {
		p.errAndSkip(fmt.Sprintf("expected %q", s))
	}
}

// errAndSkip records a skipped token as an ERROR node's span and advances
// one token so the parser always makes progress.
func (p *parser) errAndSkip(msg string) *treeNode {
	t := p.cur()
	n := newNode(ErrorKind, t.start, t.end, p.src)
	n.isError = true
	n.fields["message"] = &treeNode{kind: Kind(msg)}
	if !p.eof() {
		p.advance()
	}
	return n
}

func (p *parser) startPoint() point.Point { return p.cur().start }

// parseProgram builds the Program node: imports/js-imports first, then
// component declarations and component-instance statements in source
// order, per spec.md §3's Program node.
func (p *parser) parseProgram() *treeNode {
	start := p.startPoint()
	node := newNode(Kind("program"), start, start, p.src)

	for !p.eof() && (p.isKeyword("import")) {
		if p.isImportJS() {
			node.addChild(p.parseJsImport())
		} else {
			node.addChild(p.parseImport())
		}
	}

	for !p.eof() {
		node.addChild(p.parseTopLevelItem())
	}

	end := p.prevEnd()
	node.rng = point.Range{Start: start, End: end}
	return node
}

func (p *parser) prevEnd() point.Point {
	if p.pos == 0 {
		return p.cur().start
	}
	return p.toks[p.pos-1].end
}

// isImportJS distinguishes `import { A, B } from "pkg"` / `import A from
// "pkg"` (JsImport) from `import a.b.c [as X]` (the source language's own
// module Import), by lookahead: a js-import always either opens with `{`
// right after `import`, or has a `from` keyword before any `.`-path ends.
func (p *parser) isImportJS() bool {
	if p.at(1).kind == tokPunct && p.at(1).text == "{" {
		return true
	}
	// import Ident from "..."
	if p.at(1).kind == tokIdent && p.at(2).kind == tokKeyword && p.at(2).text == "from" {
		return true
	}
	return false
}

func (p *parser) parseJsImport() *treeNode {
	start := p.startPoint()
	p.acceptKeyword("import")
	node := newNode(Kind("js_import_statement"), start, start, p.src)

	objectImport := false
	if p.acceptPunct("{") {
		objectImport = true
		for !p.isPunct("}") && !p.eof() {
			if p.cur().kind == tokIdent || p.cur().kind == tokKeyword {
				name := p.identNode()
				node.addChild(name)
			} else {
				break
			}
			if !p.acceptPunct(",") {
				break
			}
		}
		p.expectPunct("}")
	} else {
		node.addChild(p.identNode())
	}
	p.acceptKeyword("from")
	if p.cur().kind == tokString {
		pathTok := p.advance()
		pathNode := newNode(Kind("string_literal"), pathTok.start, pathTok.end, p.src)
		node.setField("path", pathNode)
		node.addChild(pathNode)
	}
	if objectImport {
		node.setField("object_import", &treeNode{kind: "true"})
	}
	node.rng.End = p.prevEnd()
	node.rng.Start = start
	return node
}

func (p *parser) identNode() *treeNode {
	t := p.advance()
	n := newNode(Kind("identifier"), t.start, t.end, p.src)
	return n
}

// parseImport parses the source language's own import statement:
// `import a.b.c` or `import a.b.c as X` or the relative `import .` /
// `import .sub as X`, per spec.md §4.4.
func (p *parser) parseImport() *treeNode {
	start := p.startPoint()
	p.acceptKeyword("import")
	node := newNode(Kind("import_statement"), start, start, p.src)

	isRelative := false
	if p.isPunct(".") {
		isRelative = true
		p.advance()
	}

	pathStart := p.startPoint()
	segCount := 0
	for p.cur().kind == tokIdent {
		p.advance()
		segCount++
		if p.isPunct(".") {
			p.advance()
			continue
		}
		break
	}
	pathEnd := p.prevEnd()
	if segCount > 0 {
		pathNode := newNode(Kind("dotted_name"), pathStart, pathEnd, p.src)
		node.setField("path", pathNode)
		node.addChild(pathNode)
	}
	if isRelative {
		node.setField("relative", &treeNode{kind: "true"})
	}

	if p.acceptKeyword("as") {
		alias := p.identNode()
		node.setField("alias", alias)
		node.addChild(alias)
	}
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

// parseTopLevelItem parses either a named component declaration or a bare
// component-instance statement (RootNewComponentExpression).
func (p *parser) parseTopLevelItem() *treeNode {
	if p.isKeyword("component") {
		return p.parseComponentDeclaration()
	}
	return p.parseRootNewComponentStatement()
}

func (p *parser) parseComponentDeclaration() *treeNode {
	start := p.startPoint()
	p.acceptKeyword("component")
	node := newNode(Kind("component_declaration"), start, start, p.src)

	if p.cur().kind == tokIdent {
		name := p.identNode()
		node.setField("name", name)
		node.addChild(name)
	}

	if p.acceptKeyword("extends") {
		heritage := p.parseDottedTypeName()
		node.setField("heritage", heritage)
		node.addChild(heritage)
	}

	body := p.parseComponentBody()
	node.setField("body", body)
	node.addChild(body)
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseDottedTypeName() *treeNode {
	start := p.startPoint()
	for p.cur().kind == tokIdent {
		p.advance()
		if p.isPunct(".") {
			p.advance()
			continue
		}
		break
	}
	return newNode(Kind("dotted_name"), start, p.prevEnd(), p.src)
}

func (p *parser) parseRootNewComponentStatement() *treeNode {
	p.acceptKeyword("default") // decorative marker, no semantic effect
	expr := p.parseNewComponentExpression()
	expr.fields["is_root"] = &treeNode{kind: "true"}
	return expr
}

// parseNewComponentExpression parses `Dotted.Type (args)? { body }?`.
func (p *parser) parseNewComponentExpression() *treeNode {
	start := p.startPoint()
	typeName := p.parseDottedTypeName()
	node := newNode(Kind("new_component_expression"), start, start, p.src)
	node.setField("type", typeName)
	node.addChild(typeName)

	if p.acceptPunct("(") {
		args := p.parseArgumentList()
		node.setField("arguments", args)
		node.addChild(args)
	}

	if p.isPunct("{") {
		body := p.parseComponentBody()
		node.setField("body", body)
		node.addChild(body)
	} else if p.cur().kind == tokTemplate || p.cur().kind == tokTripleTemplate {
		tagged := p.parseTaggedTail(typeName, start)
		return tagged
	}

	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseTaggedTail(typeName *treeNode, start point.Point) *treeNode {
	t := p.advance()
	kind := Kind("tagged_component_expression")
	if t.kind == tokTripleTemplate {
		kind = Kind("triple_tagged_component_expression")
	}
	node := newNode(kind, start, t.end, p.src)
	node.setField("type", typeName)
	node.addChild(typeName)
	valueNode := newNode(Kind("template_value"), t.start, t.end, p.src)
	node.setField("value", valueNode)
	node.fields["value_text"] = &treeNode{kind: Kind(t.value)}
	return node
}

func (p *parser) parseArgumentList() *treeNode {
	start := p.prevEnd()
	node := newNode(Kind("argument_list"), start, start, p.src)
	for !p.isPunct(")") && !p.eof() {
		node.addChild(p.parseExpression())
		if !p.acceptPunct(",") {
			break
		}
	}
	p.expectPunct(")")
	node.rng.End = p.prevEnd()
	return node
}

// parseComponentBody parses the `{ ... }` shared by ComponentDeclaration and
// NewComponentExpression, producing the ordered member lists spec.md §3
// assigns to each.
func (p *parser) parseComponentBody() *treeNode {
	start := p.startPoint()
	node := newNode(Kind("component_body"), start, start, p.src)
	// A missing brace is kept as an ERROR child of the body, so the AST
	// builder reports it as a SyntaxError.
	if !p.acceptPunct("{") {
		node.addChild(p.errAndSkip(`expected "{"`))
	}

	for !p.isPunct("}") && !p.eof() {
		node.addChild(p.parseComponentBodyItem())
	}
	if !p.acceptPunct("}") {
		node.addChild(p.errAndSkip(`expected "}"`))
	}
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseComponentBodyItem() *treeNode {
	start := p.startPoint()

	if p.isKeyword("id") && p.at(1).kind == tokPunct && p.at(1).text == ":" {
		p.advance()
		p.advance()
		idIdent := p.identNode()
		node := newNode(Kind("id_declaration"), start, p.prevEnd(), p.src)
		node.setField("id", idIdent)
		node.addChild(idIdent)
		return node
	}

	static := p.acceptKeyword("static")

	if p.isKeyword("get") || p.isKeyword("set") {
		return p.parsePropertyAccessor(start, static)
	}
	if p.isKeyword("event") {
		return p.parseEventDeclaration(start)
	}
	if p.isKeyword("listener") {
		return p.parseListenerDeclaration(start)
	}
	if p.isKeyword("async") || p.isKeyword("function") {
		return p.parseTypedMethod(start, static)
	}
	if p.isKeyword("constructor") {
		return p.parseConstructorDefinition(start)
	}

	// Either `[Type] name (":"|"=") (expr|block)` (property declaration) or
	// `dotted.path (":"|"=") (expr|block)` (property assignment), or a bare
	// nested new-component expression / component-instance child.
	return p.parsePropertyOrAssignmentOrChild(start, static)
}

func (p *parser) parsePropertyAccessor(start point.Point, static bool) *treeNode {
	kw := p.advance().text // "get" or "set"
	name := p.identNode()
	node := newNode(Kind("property_accessor"), start, start, p.src)
	node.fields["accessor_kind"] = &treeNode{kind: Kind(kw)}
	node.setField("name", name)
	node.addChild(name)
	if static {
		node.fields["static"] = &treeNode{kind: "true"}
	}
	p.expectPunct("(")
	if kw == "set" {
		param := p.identNode()
		node.setField("parameter", param)
		node.addChild(param)
	}
	p.expectPunct(")")
	body := p.parseBlock()
	node.setField("body", body)
	node.addChild(body)
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseEventDeclaration(start point.Point) *treeNode {
	p.advance() // event
	name := p.identNode()
	node := newNode(Kind("event_declaration"), start, start, p.src)
	node.setField("name", name)
	node.addChild(name)
	p.expectPunct("(")
	params := p.parseTypedParameterList()
	node.setField("parameters", params)
	node.addChild(params)
	p.expectPunct(")")
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseListenerDeclaration(start point.Point) *treeNode {
	p.advance() // listener
	name := p.identNode()
	node := newNode(Kind("listener_declaration"), start, start, p.src)
	node.setField("name", name)
	node.addChild(name)
	p.expectPunct("(")
	params := p.parseParameterList()
	node.setField("parameters", params)
	node.addChild(params)
	p.expectPunct(")")
	async := p.acceptKeyword("async")
	if async {
		node.fields["async"] = &treeNode{kind: "true"}
	}
	body := p.parseBlock()
	node.setField("body", body)
	node.addChild(body)
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseTypedMethod(start point.Point, static bool) *treeNode {
	async := p.acceptKeyword("async")
	p.acceptKeyword("function")
	name := p.identNode()
	node := newNode(Kind("typed_method"), start, start, p.src)
	node.setField("name", name)
	node.addChild(name)
	if static {
		node.fields["static"] = &treeNode{kind: "true"}
	}
	if async {
		node.fields["async"] = &treeNode{kind: "true"}
	}
	p.expectPunct("(")
	params := p.parseTypedParameterList()
	node.setField("parameters", params)
	node.addChild(params)
	p.expectPunct(")")
	if p.acceptPunct(":") {
		rt := p.parseDottedTypeName()
		node.setField("return_type", rt)
		node.addChild(rt)
	}
	body := p.parseBlock()
	node.setField("body", body)
	node.addChild(body)
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseConstructorDefinition(start point.Point) *treeNode {
	p.advance() // constructor
	node := newNode(Kind("constructor_definition"), start, start, p.src)
	p.expectPunct("(")
	params := p.parseTypedParameterList()
	node.setField("parameters", params)
	node.addChild(params)
	p.expectPunct(")")

	if p.acceptPunct(":") {
		init := p.parseConstructorInitializer()
		node.setField("initializer", init)
		node.addChild(init)
	}

	body := p.parseBlock()
	node.setField("body", body)
	node.addChild(body)
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseConstructorInitializer() *treeNode {
	start := p.startPoint()
	node := newNode(Kind("constructor_initializer"), start, start, p.src)
	for {
		pairStart := p.startPoint()
		name := p.identNode()
		p.expectPunct("(")
		expr := p.parseExpression()
		p.expectPunct(")")
		pair := newNode(Kind("constructor_initializer_pair"), pairStart, p.prevEnd(), p.src)
		pair.setField("name", name)
		pair.addChild(name)
		pair.setField("expression", expr)
		pair.addChild(expr)
		node.addChild(pair)
		if !p.acceptPunct(",") {
			break
		}
	}
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseTypedParameterList() *treeNode {
	start := p.prevEnd()
	node := newNode(Kind("parameter_list"), start, start, p.src)
	for !p.isPunct(")") && !p.eof() {
		paramStart := p.startPoint()
		// Accept `Type name` or just `name`.
		var typ, name *treeNode
		first := p.identNode()
		if p.cur().kind == tokIdent {
			typ = first
			name = p.identNode()
		} else {
			name = first
		}
		param := newNode(Kind("typed_parameter"), paramStart, p.prevEnd(), p.src)
		if typ != nil {
			param.setField("type", typ)
			param.addChild(typ)
		}
		param.setField("name", name)
		param.addChild(name)
		node.addChild(param)
		if !p.acceptPunct(",") {
			break
		}
	}
	node.rng.End = p.prevEnd()
	return node
}

func (p *parser) parseParameterList() *treeNode {
	start := p.prevEnd()
	node := newNode(Kind("parameter_list"), start, start, p.src)
	for !p.isPunct(")") && !p.eof() {
		name := p.identNode()
		param := newNode(Kind("parameter"), name.rng.Start, name.rng.End, p.src)
		param.setField("name", name)
		param.addChild(name)
		node.addChild(param)
		if !p.acceptPunct(",") {
			break
		}
	}
	node.rng.End = p.prevEnd()
	return node
}

// parsePropertyOrAssignmentOrChild disambiguates the three forms that can
// start with an identifier inside a component body.
func (p *parser) parsePropertyOrAssignmentOrChild(start point.Point, static bool) *treeNode {
	p.acceptKeyword("default") // decorative

	// Look ahead for a dotted path ending in ':' or '=' (property
	// assignment) vs a lone `Type Name` pair (typed property declaration)
	// vs a lone `Name` followed by ':'/'=' (untyped property declaration)
	// vs an identifier that turns out to be a nested component type.
	save := p.pos

	pathStart := p.startPoint()
	if p.cur().kind != tokIdent {
		// Not any of the identifier-led forms; treat as a bare statement
		// (defensive fallback, keeps the parser always making progress).
		return p.parseExpressionStatement()
	}
	first := p.identNode()

	dotted := p.isPunct(".")
	for p.isPunct(".") {
		p.advance()
		if p.cur().kind == tokIdent {
			p.identNode()
		} else {
			break
		}
	}
	pathEnd := p.prevEnd()

	if dotted && (p.isPunct(":") || p.isPunct("=")) {
		isBinding := p.isPunct(":")
		p.advance()
		node := newNode(Kind("property_assignment"), start, start, p.src)
		pathNode := newNode(Kind("dotted_name"), pathStart, pathEnd, p.src)
		node.setField("path", pathNode)
		node.addChild(pathNode)
		if isBinding {
			node.fields["binding"] = &treeNode{kind: "true"}
		}
		p.parsePropertyValue(node)
		node.rng = point.Range{Start: start, End: p.prevEnd()}
		return node
	}

	if !dotted && p.cur().kind == tokIdent {
		// `Type name : expr` or `Type name = expr`
		name := p.identNode()
		if p.isPunct(":") || p.isPunct("=") {
			isBinding := p.isPunct(":")
			p.advance()
			node := newNode(Kind("property_declaration"), start, start, p.src)
			node.setField("type", first)
			node.addChild(first)
			node.setField("name", name)
			node.addChild(name)
			if static {
				node.fields["static"] = &treeNode{kind: "true"}
			}
			if isBinding {
				node.fields["binding"] = &treeNode{kind: "true"}
			}
			p.parsePropertyValue(node)
			node.rng = point.Range{Start: start, End: p.prevEnd()}
			return node
		}
	}

	if !dotted && (p.isPunct(":") || p.isPunct("=")) {
		isBinding := p.isPunct(":")
		p.advance()
		node := newNode(Kind("property_declaration"), start, start, p.src)
		node.setField("name", first)
		node.addChild(first)
		if static {
			node.fields["static"] = &treeNode{kind: "true"}
		}
		if isBinding {
			node.fields["binding"] = &treeNode{kind: "true"}
		}
		p.parsePropertyValue(node)
		node.rng = point.Range{Start: start, End: p.prevEnd()}
		return node
	}

	// Not a property form: this identifier (possibly dotted) is a nested
	// component type name. Rewind and parse as a new-component expression.
	p.pos = save
	return p.parseNewComponentExpression()
}

func (p *parser) parsePropertyValue(node *treeNode) {
	if p.isPunct("{") {
		block := p.parseBlock()
		node.setField("value", block)
		node.addChild(block)
		return
	}
	expr := p.parseExpression()
	node.setField("value", expr)
	node.addChild(expr)
	p.acceptPunct(";")
}

// ---- Statements / expressions (JsBlock contents) ----

func (p *parser) parseBlock() *treeNode {
	start := p.startPoint()
	p.expectPunct("{")
	node := newNode(Kind("js_block"), start, start, p.src)
	for !p.isPunct("}") && !p.eof() {
		node.addChild(p.parseStatement())
	}
	p.expectPunct("}")
	node.rng = point.Range{Start: start, End: p.prevEnd()}
	return node
}

func (p *parser) parseStatement() *treeNode {
	switch {
	case p.isPunct("{"):
		return p.parseBlock()
	case p.isKeyword("var") || p.isKeyword("let") || p.isKeyword("const"):
		return p.parseVariableDeclaration()
	case p.isKeyword("if"):
		return p.parseIfStatement()
	case p.isKeyword("for"):
		return p.parseForStatement()
	case p.isKeyword("while"):
		return p.parseWhileStatement()
	case p.isKeyword("return"):
		return p.parseReturnStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseVariableDeclaration() *treeNode {
	start := p.startPoint()
	kw := p.advance().text
	node := newNode(Kind("variable_declaration"), start, start, p.src)
	node.fields["decl_kind"] = &treeNode{kind: Kind(kw)}
	for {
		declStart := p.startPoint()
		name := p.parseBindingTarget()
		decl := newNode(Kind("variable_declarator"), declStart, declStart, p.src)
		decl.setField("name", name)
		decl.addChild(name)
		if p.acceptPunct("=") {
			val := p.parseExpression()
			decl.setField("value", val)
			decl.addChild(val)
		}
		decl.rng.End = p.prevEnd()
		node.addChild(decl)
		if !p.acceptPunct(",") {
			break
		}
	}
	p.acceptPunct(";")
	node.rng.End = p.prevEnd()
	return node
}

// parseBindingTarget handles a plain identifier or a `{a,b}`/`[a,b]`
// destructuring pattern; every leaf identifier is a declaration per
// spec.md §4.2.
func (p *parser) parseBindingTarget() *treeNode {
	if p.isPunct("{") || p.isPunct("[") {
		close := "}"
		if p.isPunct("[") {
			close = "]"
		}
		start := p.startPoint()
		p.advance()
		node := newNode(Kind("destructuring_pattern"), start, start, p.src)
		for !p.isPunct(close) && !p.eof() {
			if p.cur().kind == tokIdent {
				node.addChild(p.identNode())
			} else {
				p.advance()
			}
			if !p.acceptPunct(",") {
				break
			}
		}
		p.acceptPunct(close)
		node.rng.End = p.prevEnd()
		return node
	}
	return p.identNode()
}

func (p *parser) parseIfStatement() *treeNode {
	start := p.startPoint()
	p.advance() // if
	node := newNode(Kind("if_statement"), start, start, p.src)
	p.expectPunct("(")
	cond := p.parseExpression()
	node.setField("condition", cond)
	node.addChild(cond)
	p.expectPunct(")")
	then := p.parseStatement()
	node.setField("then", then)
	node.addChild(then)
	if p.acceptKeyword("else") {
		els := p.parseStatement()
		node.setField("else", els)
		node.addChild(els)
	}
	node.rng.End = p.prevEnd()
	return node
}

func (p *parser) parseForStatement() *treeNode {
	start := p.startPoint()
	p.advance() // for
	node := newNode(Kind("for_statement"), start, start, p.src)
	p.expectPunct("(")
	for !p.isPunct(")") && !p.eof() {
		node.addChild(p.parseForHeaderPart())
	}
	p.expectPunct(")")
	body := p.parseStatement()
	node.setField("body", body)
	node.addChild(body)
	node.rng.End = p.prevEnd()
	return node
}

func (p *parser) parseForHeaderPart() *treeNode {
	if p.isKeyword("var") || p.isKeyword("let") || p.isKeyword("const") {
		return p.parseVariableDeclaration()
	}
	if p.isPunct(";") {
		p.advance()
		return nil
	}
	e := p.parseExpression()
	p.acceptPunct(";")
	return e
}

func (p *parser) parseWhileStatement() *treeNode {
	start := p.startPoint()
	p.advance() // while
	node := newNode(Kind("while_statement"), start, start, p.src)
	p.expectPunct("(")
	cond := p.parseExpression()
	node.setField("condition", cond)
	node.addChild(cond)
	p.expectPunct(")")
	body := p.parseStatement()
	node.setField("body", body)
	node.addChild(body)
	node.rng.End = p.prevEnd()
	return node
}

func (p *parser) parseReturnStatement() *treeNode {
	start := p.startPoint()
	p.advance() // return
	node := newNode(Kind("return_statement"), start, start, p.src)
	if !p.isPunct(";") && !p.isPunct("}") && !p.eof() {
		val := p.parseExpression()
		node.setField("value", val)
		node.addChild(val)
	}
	p.acceptPunct(";")
	node.rng.End = p.prevEnd()
	return node
}

func (p *parser) parseExpressionStatement() *treeNode {
	start := p.startPoint()
	e := p.parseExpression()
	p.acceptPunct(";")
	node := newNode(Kind("expression_statement"), start, p.prevEnd(), p.src)
	node.addChild(e)
	return node
}

// Pratt-style expression parser. Precedence, low to high: assignment,
// logical-or, logical-and, equality, relational, additive, multiplicative,
// unary, postfix, primary.
func (p *parser) parseExpression() *treeNode {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() *treeNode {
	left := p.parseLogicalOr()
	if p.isPunct("=") || p.isPunct("+=") || p.isPunct("-=") {
		op := p.advance().text
		right := p.parseAssignment()
		node := newNode(Kind("assignment_expression"), left.rng.Start, right.rng.End, p.src)
		node.fields["operator"] = &treeNode{kind: Kind(op)}
		node.setField("left", left)
		node.addChild(left)
		node.setField("right", right)
		node.addChild(right)
		return node
	}
	return left
}

func (p *parser) parseBinaryLevel(next func() *treeNode, ops ...string) *treeNode {
	left := next()
	for {
		matched := ""
		for _, op := range ops {
			if p.isPunct(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return left
		}
		p.advance()
		right := next()
		node := newNode(Kind("binary_expression"), left.rng.Start, right.rng.End, p.src)
		node.fields["operator"] = &treeNode{kind: Kind(matched)}
		node.setField("left", left)
		node.addChild(left)
		node.setField("right", right)
		node.addChild(right)
		left = node
	}
}

func (p *parser) parseLogicalOr() *treeNode {
	return p.parseBinaryLevel(p.parseLogicalAnd, "||")
}
func (p *parser) parseLogicalAnd() *treeNode {
	return p.parseBinaryLevel(p.parseEquality, "&&")
}
func (p *parser) parseEquality() *treeNode {
	return p.parseBinaryLevel(p.parseRelational, "==", "!=")
}
func (p *parser) parseRelational() *treeNode {
	return p.parseBinaryLevel(p.parseAdditive, "<=", ">=", "<", ">")
}
func (p *parser) parseAdditive() *treeNode {
	return p.parseBinaryLevel(p.parseMultiplicative, "+", "-")
}
func (p *parser) parseMultiplicative() *treeNode {
	return p.parseBinaryLevel(p.parseUnary, "*", "/", "%")
}

func (p *parser) parseUnary() *treeNode {
	if p.isPunct("!") || p.isPunct("-") || p.isPunct("+") {
		start := p.startPoint()
		op := p.advance().text
		operand := p.parseUnary()
		node := newNode(Kind("unary_expression"), start, operand.rng.End, p.src)
		node.fields["operator"] = &treeNode{kind: Kind(op)}
		node.setField("operand", operand)
		node.addChild(operand)
		return node
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() *treeNode {
	expr := p.parsePrimary()
	for {
		switch {
		case p.isPunct("."):
			p.advance()
			name := p.identNode()
			node := newNode(Kind("member_expression"), expr.rng.Start, name.rng.End, p.src)
			node.setField("object", expr)
			node.addChild(expr)
			node.setField("property", name)
			node.addChild(name)
			expr = node
		case p.isPunct("("):
			p.advance()
			args := p.parseArgumentList()
			node := newNode(Kind("call_expression"), expr.rng.Start, args.rng.End, p.src)
			node.setField("function", expr)
			node.addChild(expr)
			node.setField("arguments", args)
			node.addChild(args)
			expr = node
		case p.isPunct("["):
			p.advance()
			idx := p.parseExpression()
			p.expectPunct("]")
			node := newNode(Kind("index_expression"), expr.rng.Start, p.prevEnd(), p.src)
			node.setField("object", expr)
			node.addChild(expr)
			node.setField("index", idx)
			node.addChild(idx)
			expr = node
		default:
			return expr
		}
	}
}

func (p *parser) parsePrimary() *treeNode {
	start := p.startPoint()
	t := p.cur()

	switch {
	case t.kind == tokNumber:
		p.advance()
		return newNode(Kind("number_literal"), start, p.prevEnd(), p.src)
	case t.kind == tokString:
		p.advance()
		return newNode(Kind("string_literal"), start, p.prevEnd(), p.src)
	case t.kind == tokTemplate || t.kind == tokTripleTemplate:
		p.advance()
		kind := Kind("template_literal")
		return newNode(kind, start, p.prevEnd(), p.src)
	case p.isKeyword("true") || p.isKeyword("false"):
		p.advance()
		return newNode(Kind("boolean_literal"), start, p.prevEnd(), p.src)
	case p.isKeyword("null"):
		p.advance()
		return newNode(Kind("null_literal"), start, p.prevEnd(), p.src)
	case p.isKeyword("this"):
		p.advance()
		return newNode(Kind("this_expression"), start, p.prevEnd(), p.src)
	case p.isKeyword("parent"):
		p.advance()
		return newNode(Kind("parent_expression"), start, p.prevEnd(), p.src)
	case p.isKeyword("super"):
		p.advance()
		return newNode(Kind("super_expression"), start, p.prevEnd(), p.src)
	case p.isKeyword("new"):
		return p.parseNewExpression()
	case p.isKeyword("function") || p.isKeyword("async"):
		return p.parseFunctionExpression()
	case p.isPunct("("):
		return p.parseParenOrArrow()
	case p.isPunct("["):
		return p.parseArrayLiteral()
	case p.isPunct("{"):
		return p.parseObjectLiteral()
	case t.kind == tokIdent:
		return p.parseIdentOrArrow()
	default:
		return p.errAndSkip("expected expression")
	}
}

func (p *parser) parseIdentOrArrow() *treeNode {
	// Type { ... } in expression position is a nested component instance.
	if p.at(1).kind == tokPunct && p.at(1).text == "{" {
		return p.parseNewComponentExpression()
	}
	// name => expr|block
	if p.at(1).kind == tokPunct && p.at(1).text == "=>" {
		start := p.startPoint()
		param := p.identNode()
		p.advance() // =>
		node := newNode(Kind("arrow_function"), start, start, p.src)
		params := newNode(Kind("parameter_list"), param.rng.Start, param.rng.End, p.src)
		params.addChild(param)
		node.setField("parameters", params)
		node.addChild(params)
		body := p.parseArrowBody()
		node.setField("body", body)
		node.addChild(body)
		node.rng.End = p.prevEnd()
		return node
	}
	return p.identNode()
}

func (p *parser) parseArrowBody() *treeNode {
	if p.isPunct("{") {
		return p.parseBlock()
	}
	return p.parseExpression()
}

func (p *parser) parseParenOrArrow() *treeNode {
	start := p.startPoint()
	// Lookahead: `( ident, ident ) =>` is an arrow function parameter list.
	if p.looksLikeArrowParamList() {
		p.advance() // (
		params := p.parseParameterList()
		p.expectPunct(")")
		p.expectPunct("=>")
		node := newNode(Kind("arrow_function"), start, start, p.src)
		node.setField("parameters", params)
		node.addChild(params)
		body := p.parseArrowBody()
		node.setField("body", body)
		node.addChild(body)
		node.rng.End = p.prevEnd()
		return node
	}
	p.advance() // (
	inner := p.parseExpression()
	p.expectPunct(")")
	node := newNode(Kind("parenthesized_expression"), start, p.prevEnd(), p.src)
	node.addChild(inner)
	return node
}

func (p *parser) looksLikeArrowParamList() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.kind == tokPunct && t.text == "(" {
			depth++
		} else if t.kind == tokPunct && t.text == ")" {
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].kind == tokPunct && p.toks[i+1].text == "=>"
			}
		} else if t.kind == tokEOF {
			return false
		}
	}
	return false
}

func (p *parser) parseNewExpression() *treeNode {
	start := p.startPoint()
	p.advance() // new
	typeName := p.parseDottedTypeName()
	node := newNode(Kind("new_expression"), start, start, p.src)
	node.setField("type", typeName)
	node.addChild(typeName)
	if p.acceptPunct("(") {
		args := p.parseArgumentList()
		node.setField("arguments", args)
		node.addChild(args)
	}
	node.rng.End = p.prevEnd()
	return node
}

func (p *parser) parseFunctionExpression() *treeNode {
	start := p.startPoint()
	async := p.acceptKeyword("async")
	p.acceptKeyword("function")
	node := newNode(Kind("function_expression"), start, start, p.src)
	if async {
		node.fields["async"] = &treeNode{kind: "true"}
	}
	if p.cur().kind == tokIdent {
		name := p.identNode()
		node.setField("name", name)
		node.addChild(name)
	}
	p.expectPunct("(")
	params := p.parseParameterList()
	node.setField("parameters", params)
	node.addChild(params)
	p.expectPunct(")")
	body := p.parseBlock()
	node.setField("body", body)
	node.addChild(body)
	node.rng.End = p.prevEnd()
	return node
}

func (p *parser) parseArrayLiteral() *treeNode {
	start := p.startPoint()
	p.advance() // [
	node := newNode(Kind("array_literal"), start, start, p.src)
	for !p.isPunct("]") && !p.eof() {
		node.addChild(p.parseExpression())
		if !p.acceptPunct(",") {
			break
		}
	}
	p.expectPunct("]")
	node.rng.End = p.prevEnd()
	return node
}

func (p *parser) parseObjectLiteral() *treeNode {
	start := p.startPoint()
	p.advance() // {
	node := newNode(Kind("object_literal"), start, start, p.src)
	for !p.isPunct("}") && !p.eof() {
		keyStart := p.startPoint()
		var key *treeNode
		if p.cur().kind == tokString {
			t := p.advance()
			key = newNode(Kind("string_literal"), t.start, t.end, p.src)
		} else {
			key = p.identNode()
		}
		p.expectPunct(":")
		val := p.parseExpression()
		pair := newNode(Kind("object_property"), keyStart, p.prevEnd(), p.src)
		pair.setField("key", key)
		pair.addChild(key)
		pair.setField("value", val)
		pair.addChild(val)
		node.addChild(pair)
		if !p.acceptPunct(",") {
			break
		}
	}
	p.expectPunct("}")
	node.rng.End = p.prevEnd()
	return node
}
