package lowering

import (
	"fmt"
	"strings"

	"github.com/oxhq/lvc/internal/ast"
	"github.com/oxhq/lvc/internal/module"
)

// LowerProgram renders a whole file: the import preamble, then each
// top-level export in source order (spec.md §4.5, §8 scenarios S1/S5).
func (e *Engine) LowerProgram(source string, prog *ast.Program) (string, error) {
	var sb strings.Builder

	preamble, err := e.renderPreamble(prog)
	if err != nil {
		return "", err
	}
	sb.WriteString(preamble)

	for _, exp := range prog.Exports {
		text, err := e.lowerExport(source, exp)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func (e *Engine) lowerExport(source string, n ast.Node) (string, error) {
	switch v := n.(type) {
	case *ast.ComponentDeclaration:
		return e.lowerComponentDeclaration(source, v)
	case *ast.NewComponentExpression:
		return e.lowerNewComponentExpression(source, v, "null")
	default:
		return "", &BuildError{Message: "unexpected top-level export node"}
	}
}

// renderPreamble emits, in order: the base-component import (if
// configured), passthrough JS imports, then the source language's own
// imports — rewritten into plain-identifier imports and namespace-object
// imports grouped by Import.As (spec.md §4.4 ImportTypes, §8 scenario S5).
func (e *Engine) renderPreamble(prog *ast.Program) (string, error) {
	var sb strings.Builder
	if e.opts.BaseComponentImportUri != "" {
		sb.WriteString(fmt.Sprintf("import { %s } from '%s'\n", e.opts.BaseComponent, e.opts.BaseComponentImportUri))
	}
	for _, ji := range prog.JsImports {
		sb.WriteString(renderJsImport(ji))
		sb.WriteString("\n")
	}

	byNS := map[string][]*ast.ImportTypeRef{}
	var nsOrder []string
	var plain []*ast.ImportTypeRef
	for _, it := range prog.ImportTypes {
		if it.Namespace == "" {
			plain = append(plain, it)
			continue
		}
		if _, ok := byNS[it.Namespace]; !ok {
			nsOrder = append(nsOrder, it.Namespace)
		}
		byNS[it.Namespace] = append(byNS[it.Namespace], it)
	}

	for _, it := range plain {
		path, err := e.resolvedPath(it)
		if err != nil {
			return "", err
		}
		sb.WriteString(fmt.Sprintf("import { %s } from '%s'\n", it.Identifier, path))
	}
	for _, ns := range nsOrder {
		var obj []string
		for _, it := range byNS[ns] {
			path, err := e.resolvedPath(it)
			if err != nil {
				return "", err
			}
			alias := fmt.Sprintf("__%s__%s", ns, it.Identifier)
			sb.WriteString(fmt.Sprintf("import { %s as %s } from '%s'\n", it.Identifier, alias, path))
			obj = append(obj, fmt.Sprintf("%s: %s", it.Identifier, alias))
		}
		sb.WriteString(fmt.Sprintf("let %s = { %s }\n", ns, strings.Join(obj, ", ")))
	}
	return sb.String(), nil
}

func (e *Engine) resolvedPath(it *ast.ImportTypeRef) (string, error) {
	if it.ResolvedPath != "" {
		return it.ResolvedPath, nil
	}
	if e.opts.AllowUnresolved {
		return "__UNRESOLVED__", nil
	}
	return "", &module.ImportError{Path: it.Identifier, Message: "unresolved import type"}
}

func renderJsImport(ji *ast.JsImport) string {
	if ji.ObjectImport {
		return fmt.Sprintf("import { %s } from %s", strings.Join(ji.Names, ", "), ji.Path)
	}
	name := ""
	if len(ji.Names) > 0 {
		name = ji.Names[0]
	}
	return fmt.Sprintf("import %s from %s", name, ji.Path)
}
