package cst

import (
	"strings"

	"github.com/oxhq/lvc/internal/point"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokTemplate       // `...`
	tokTripleTemplate // ```...```
	tokKeyword
	tokPunct
)

type token struct {
	kind  tokenKind
	text  string
	value string // for strings/templates: the decoded/interior payload
	start point.Point
	end   point.Point
}

var keywords = map[string]bool{
	"import": true, "as": true, "from": true, "component": true,
	"extends": true, "id": true, "static": true, "get": true, "set": true,
	"event": true, "listener": true, "function": true, "constructor": true,
	"new": true, "this": true, "parent": true, "return": true, "if": true,
	"else": true, "for": true, "while": true, "var": true, "let": true,
	"const": true, "true": true, "false": true, "null": true, "async": true,
	"default": true, "super": true, "class": true, "catch": true, "try": true,
	"finally": true, "throw": true,
}

// lexer produces a flat token stream; the parser does all the structuring.
type lexer struct {
	src    string
	pos    int
	line   int
	col    int
	tokens []token
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) point() point.Point {
	return point.Point{Line: l.line, Column: l.col, Byte: l.pos}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return b
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Lex tokenizes the full source in one pass. Errors never abort lexing —
// an unexpected byte just becomes its own single-character punct token, and
// the parser is responsible for turning that into an ERROR CST node.
func Lex(src string) []token {
	l := newLexer(src)
	for l.pos < len(l.src) {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.src) {
			break
		}
		start := l.point()
		b := l.peekByte()
		switch {
		case isIdentStart(b):
			l.lexIdent(start)
		case isDigit(b):
			l.lexNumber(start)
		case b == '"' || b == '\'':
			l.lexString(start, b)
		case b == '`':
			l.lexTemplate(start)
		default:
			l.lexPunct(start)
		}
	}
	l.tokens = append(l.tokens, token{kind: tokEOF, start: l.point(), end: l.point()})
	return l.tokens
}

func (l *lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case b == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.src) && !(l.peekByte() == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.advance()
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *lexer) lexIdent(start point.Point) {
	for l.pos < len(l.src) && isIdentCont(l.peekByte()) {
		l.advance()
	}
	text := l.src[start.Byte:l.pos]
	kind := tokIdent
	if keywords[text] {
		kind = tokKeyword
	}
	l.tokens = append(l.tokens, token{kind: kind, text: text, start: start, end: l.point()})
}

func (l *lexer) lexNumber(start point.Point) {
	for l.pos < len(l.src) && (isDigit(l.peekByte()) || l.peekByte() == '.') {
		l.advance()
	}
	text := l.src[start.Byte:l.pos]
	l.tokens = append(l.tokens, token{kind: tokNumber, text: text, start: start, end: l.point()})
}

func (l *lexer) lexString(start point.Point, quote byte) {
	l.advance() // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) && l.peekByte() != quote {
		b := l.advance()
		if b == '\\' && l.pos < len(l.src) {
			sb.WriteByte(b)
			sb.WriteByte(l.advance())
			continue
		}
		sb.WriteByte(b)
	}
	if l.pos < len(l.src) {
		l.advance() // closing quote
	}
	text := l.src[start.Byte:l.pos]
	l.tokens = append(l.tokens, token{kind: tokString, text: text, value: sb.String(), start: start, end: l.point()})
}

func (l *lexer) lexTemplate(start point.Point) {
	triple := strings.HasPrefix(l.src[l.pos:], "```")
	delimLen := 1
	if triple {
		delimLen = 3
	}
	for range delimLen {
		l.advance()
	}
	bodyStart := l.pos
	for l.pos < len(l.src) {
		if strings.HasPrefix(l.src[l.pos:], strings.Repeat("`", delimLen)) {
			break
		}
		l.advance()
	}
	body := l.src[bodyStart:l.pos]
	for range delimLen {
		if l.pos < len(l.src) {
			l.advance()
		}
	}
	text := l.src[start.Byte:l.pos]
	kind := tokTemplate
	if triple {
		kind = tokTripleTemplate
	}
	l.tokens = append(l.tokens, token{kind: kind, text: text, value: body, start: start, end: l.point()})
}

var multiCharPuncts = []string{
	"=>", "==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "...",
}

func (l *lexer) lexPunct(start point.Point) {
	for _, mc := range multiCharPuncts {
		if strings.HasPrefix(l.src[l.pos:], mc) {
			for range mc {
				l.advance()
			}
			l.tokens = append(l.tokens, token{kind: tokPunct, text: mc, start: start, end: l.point()})
			return
		}
	}
	l.advance()
	l.tokens = append(l.tokens, token{kind: tokPunct, text: l.src[start.Byte:l.pos], start: start, end: l.point()})
}
