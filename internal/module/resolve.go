package module

import (
	"fmt"
	"path"
	"strings"
)

// Resolver resolves import/type identifiers from one file against the
// module graph they belong to (spec.md §4.4).
type Resolver struct {
	graph     *Graph
	moduleURI string
}

// NewResolver builds a Resolver for the given graph and module URI. The
// URI only decides whether relative imports are allowed; a relative import
// resolves against the importing file's own directory, not against it.
// moduleURI is empty when a file is compiled standalone, outside any
// package — relative imports have nothing to resolve against in that case.
func NewResolver(g *Graph, moduleURI string) *Resolver {
	return &Resolver{graph: g, moduleURI: moduleURI}
}

// ImportError reports a failure to resolve an import path (spec.md §7,
// kind "ImportError").
type ImportError struct {
	Path    string
	Message string
}

func (e *ImportError) Error() string { return fmt.Sprintf("%s: %s", e.Message, e.Path) }

// ResolveImportPath turns an Import AST node's path into the module-relative
// file path it names, honoring the relative ("." prefixed) vs. absolute
// distinction spec.md §4.4 assigns to Import.IsRelative.
//
// fromFile is the importing file's own path, used as the base directory for
// relative imports. A relative import one level up only ever walks toward
// the module root, never past it, mirroring how an incremental build can't
// resolve "..". A relative import with no enclosing package (moduleURI=="")
// fails outright — there is no base directory to resolve it against.
func (r *Resolver) ResolveImportPath(fromFile, importPath string, isRelative bool) (string, error) {
	if !isRelative {
		return path.Clean(strings.ReplaceAll(importPath, ".", "/")), nil
	}
	// moduleURI=="" is a file compiled standalone; moduleURI=="." is a file
	// whose own package is the unnamed root package (spec.md §8 S6) — both
	// have no enclosing package a relative import can resolve against.
	if r.moduleURI == "" || r.moduleURI == "." {
		return "", &ImportError{Path: importPath, Message: "Cannot import relative path without package"}
	}
	dir := path.Dir(fromFile)
	rel := strings.ReplaceAll(importPath, ".", "/")
	joined := path.Join(dir, rel)
	return path.Clean(joined), nil
}

// ClassifyIdentifier decides whether a free identifier used in a file is a
// namespace reference (the alias bound by a multi-segment or aliased
// import) or a plain reference to a single imported name, per spec.md §4.4
// Program.ImportTypes classification.
func ClassifyIdentifier(identifier string, imports []ImportBinding) (namespace string, isNamespace bool) {
	for _, imp := range imports {
		if imp.Alias == identifier && imp.IsNamespace {
			return imp.Alias, true
		}
	}
	return "", false
}

// ImportBinding is the minimal shape ClassifyIdentifier needs from an
// ast.Import — kept decoupled from the ast package so module doesn't import
// it (the module graph is built from whatever the driver hands it, not
// tied to one AST representation).
type ImportBinding struct {
	Alias       string
	IsNamespace bool
}
