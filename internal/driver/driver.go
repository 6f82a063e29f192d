// Package driver orchestrates one compile end to end: parse, build the
// typed AST, classify and resolve the source language's own imports, then
// lower to target-script text (spec.md §4.6). It runs single-threaded
// (spec.md §5) — a Driver instance has no internal concurrency and isn't
// safe to share across goroutines without external locking.
package driver

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/oxhq/lvc/internal/ast"
	"github.com/oxhq/lvc/internal/cst"
	"github.com/oxhq/lvc/internal/lowering"
	"github.com/oxhq/lvc/internal/module"
)

// Driver ties the pipeline stages together for a single file or a whole
// module. Zero value is not ready to use; build one with New.
type Driver struct {
	opts   lowering.Options
	logger *slog.Logger
}

// New builds a Driver against the given lowering options. A nil logger
// falls back to slog.Default().
func New(opts lowering.Options, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{opts: opts, logger: logger}
}

// Parse runs the CST parser and AST builder over one file's source,
// stopping short of import resolution or lowering — used by callers that
// only need the typed tree (e.g. a descriptor-only compile).
func (d *Driver) Parse(fileName, source string) (*ast.Program, error) {
	tree := cst.Parse(source)
	return ast.Build(fileName, tree)
}

// CompileFile parses and lowers a single file with no enclosing package —
// moduleURI is empty, so a relative import in the source fails (spec.md §8
// scenario S6) rather than silently resolving against nothing.
func (d *Driver) CompileFile(fileName, source string) (string, error) {
	prog, err := d.Parse(fileName, source)
	if err != nil {
		return "", err
	}
	resolver := module.NewResolver(module.NewGraph(), "")
	if err := resolveImportTypes(prog, fileName, resolver); err != nil {
		return "", err
	}
	d.logger.Debug("compiled file", "file", fileName, "exports", len(prog.Exports))

	eng := lowering.New(d.opts)
	return eng.LowerProgram(source, prog)
}

// CompiledFile is one file's outcome from CompileModule.
type CompiledFile struct {
	Path   string
	Output string
}

// CompileModule parses and lowers every file of a package together,
// sharing one module graph so relative imports and dependency cycles are
// resolved across the whole set rather than file by file (spec.md §4.4,
// §4.6). files maps each file's module-relative path to its source text.
func (d *Driver) CompileModule(moduleURI string, files map[string]string) ([]CompiledFile, error) {
	graph := module.NewGraph()
	resolver := module.NewResolver(graph, moduleURI)

	progs := make(map[string]*ast.Program, len(files))
	for path, src := range files {
		prog, err := d.Parse(path, src)
		if err != nil {
			return nil, err
		}
		progs[path] = prog
		graph.File(path).Status = module.StatusParsed
	}

	paths := make([]string, 0, len(progs))
	for path := range progs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	resolved := map[string]bool{}
	for _, path := range paths {
		if err := resolveFileDependencies(graph, resolver, progs, path, resolved, map[string]bool{}); err != nil {
			return nil, err
		}
	}

	order, err := graph.TopoOrder()
	if err != nil {
		return nil, err
	}

	eng := lowering.New(d.opts)
	out := make([]CompiledFile, 0, len(order))
	for _, f := range order {
		prog, ok := progs[f.Path]
		if !ok {
			continue
		}
		f.Status = module.StatusCompiling
		if err := resolveImportTypes(prog, f.Path, resolver); err != nil {
			return nil, err
		}
		text, err := eng.LowerProgram(files[f.Path], prog)
		if err != nil {
			return nil, err
		}
		f.Status = module.StatusCompiled
		out = append(out, CompiledFile{Path: f.Path, Output: text})
	}
	d.logger.Debug("compiled module", "uri", moduleURI, "files", len(out))
	return out, nil
}

// resolveFileDependencies resolves path's own imports into graph edges,
// recursing into each dependency before returning so an ImportError found
// deep in the chain unwinds back through every enclosing import, picking up
// one module.ImportTrace frame per level (spec.md §7). A CycleError from
// AddDependency propagates as-is — cycles aren't part of the import-trace
// story the spec describes, only unresolved imports are. visiting guards
// against re-descending into a file already on the current walk's call
// stack; the graph's own AddDependency still does the authoritative cycle
// check.
func resolveFileDependencies(graph *module.Graph, resolver *module.Resolver, progs map[string]*ast.Program, path string, resolved, visiting map[string]bool) error {
	if resolved[path] {
		return nil
	}
	prog, ok := progs[path]
	if !ok {
		return nil
	}
	visiting[path] = true
	defer delete(visiting, path)

	from := graph.File(path)
	for _, imp := range prog.Imports {
		depPath, err := resolver.ResolveImportPath(path, imp.Path, imp.IsRelative)
		if err != nil {
			return module.WrapImportFrame(err, path)
		}
		if err := graph.AddDependency(from, graph.File(depPath)); err != nil {
			return err
		}
		if visiting[depPath] {
			continue
		}
		if err := resolveFileDependencies(graph, resolver, progs, depPath, resolved, visiting); err != nil {
			var impErr *module.ImportError
			if errors.As(err, &impErr) {
				return module.WrapImportFrame(err, path)
			}
			return err
		}
	}
	from.Status = module.StatusResolved
	resolved[path] = true
	return nil
}

// resolveImportTypes fills in Program.ImportTypes from the source
// language's own import statements (spec.md §4.4) — the AST builder only
// records Program.Imports verbatim and never itself classifies a free
// identifier as namespaced or plain (see DESIGN.md, "Program.ImportTypes
// population"); that wiring lives here.
//
// A namespace import (`import a.b as P`) binds P to every `P.X` heritage
// reference on a top-level component declaration — one ImportTypeRef per
// distinct X.
// A plain import binds its own last path segment (or its alias, if any)
// directly, on the assumption that a single-name import exists to be used
// as a type somewhere; an unreferenced plain import just becomes an unused
// JS binding, not an error.
func resolveImportTypes(prog *ast.Program, fromFile string, resolver *module.Resolver) error {
	heritageIdents := map[string]map[string]bool{} // namespace -> identifier set
	for _, exp := range prog.Exports {
		cd, ok := exp.(*ast.ComponentDeclaration)
		if !ok || cd.Heritage == "" {
			continue
		}
		if ns, ident, ok := splitHeritage(cd.Heritage, prog.Imports); ok {
			if heritageIdents[ns] == nil {
				heritageIdents[ns] = map[string]bool{}
			}
			heritageIdents[ns][ident] = true
		}
	}

	for _, imp := range prog.Imports {
		resolved, err := resolver.ResolveImportPath(fromFile, imp.Path, imp.IsRelative)
		if err != nil {
			return err
		}
		ns := imp.As
		if ns != "" && heritageIdents[ns] != nil {
			for ident := range heritageIdents[ns] {
				prog.ImportTypes = append(prog.ImportTypes, &ast.ImportTypeRef{
					Namespace:    ns,
					Identifier:   ident,
					ResolvedPath: resolved,
				})
			}
			continue
		}
		name := imp.As
		if name == "" {
			name = lastSegment(imp.Path)
		}
		prog.ImportTypes = append(prog.ImportTypes, &ast.ImportTypeRef{
			Identifier:   name,
			ResolvedPath: resolved,
		})
	}
	return nil
}

// splitHeritage decides whether a dotted heritage chain's root names one of
// this file's own namespace imports — "P.B" against `import a.b as P`
// yields ("P", "B", true).
func splitHeritage(heritage string, imports []*ast.Import) (namespace, identifier string, ok bool) {
	root, rest, hasDot := strings.Cut(heritage, ".")
	if !hasDot {
		return "", "", false
	}
	for _, imp := range imports {
		if imp.As == root {
			return root, rest, true
		}
	}
	return "", "", false
}

func lastSegment(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
