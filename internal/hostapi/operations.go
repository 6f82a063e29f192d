package hostapi

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/oxhq/lvc/internal/buildcache"
	"github.com/oxhq/lvc/internal/discover"
	"github.com/oxhq/lvc/internal/driver"
	"github.com/oxhq/lvc/internal/logging"
	"github.com/oxhq/lvc/internal/lowering"
	"github.com/oxhq/lvc/internal/outwriter"
)

// Options is the host-facing option bag spec.md §6 tables out. Its Lowering
// field flows straight into the driver; OutputExtension and
// ModuleURI are purely this package's own concern (output file naming and
// which package a compileModule call belongs to). CacheDSN and ReleaseTag
// are optional — an empty CacheDSN skips the build cache entirely.
type Options struct {
	Lowering        lowering.Options
	OutputExtension string // default ".js"
	ModuleURI       string // required by CompileModule, ignored by Compile
	LogLevel        string // default "info"
	CacheDSN        string // build cache DSN; empty disables caching
	ReleaseTag      string // SPEC_FULL.md §3.2 item 2: scopes the cache key by tag instead of content
	ForceRebuild    bool   // SPEC_FULL.md §3.2 item 2: skip cache.Lookup, still cache.Put the fresh result
}

// DefaultOptions mirrors lowering.DefaultOptions with host-level defaults
// layered on top.
func DefaultOptions() Options {
	return Options{
		Lowering:        lowering.DefaultOptions(),
		OutputExtension: ".js",
		LogLevel:        "info",
	}
}

func newDriver(opts Options) *driver.Driver {
	return driver.New(opts.Lowering, logging.NewStderr(opts.LogLevel))
}

// openCache returns nil, nil when opts.CacheDSN is unset — callers treat a
// nil store as "always miss, don't persist".
func openCache(opts Options) (*buildcache.Store, error) {
	if opts.CacheDSN == "" {
		return nil, nil
	}
	return buildcache.Connect(opts.CacheDSN, false)
}

// resultPath names a compiled file's output per spec.md §6: "<source>.lv
// <outputExtension>" — the file's extension-stripped stem, plus a literal
// ".lv" marker, plus the configured output extension.
func resultPath(sourcePath string, opts Options) string {
	stem := sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))]
	return stem + ".lv" + opts.OutputExtension
}

// Compile is host operation 1: compile(filePath, options) -> resultPath |
// error. It reads filePath, compiles it with no enclosing package, writes
// the result beside it, and returns the path it wrote.
func Compile(filePath string, opts Options) (string, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return "", marshalError(&lowering.BuildError{File: filePath, Message: err.Error()})
	}

	cache, err := openCache(opts)
	if err != nil {
		return "", marshalError(&lowering.BuildError{File: opts.CacheDSN, Message: err.Error()})
	}

	var output string
	if cache != nil && !opts.ForceRebuild {
		if cached, hit, err := cache.Lookup("", filePath, opts.ReleaseTag, string(src)); err != nil {
			return "", marshalError(&lowering.BuildError{File: filePath, Message: err.Error()})
		} else if hit {
			output = cached
		}
	}

	if output == "" {
		output, err = newDriver(opts).CompileFile(filePath, string(src))
		if err != nil {
			return "", marshalError(err)
		}
		if cache != nil {
			if err := cache.Put("", filePath, opts.ReleaseTag, string(src), output); err != nil {
				return "", marshalError(&lowering.BuildError{File: filePath, Message: err.Error()})
			}
		}
	}

	out := resultPath(filePath, opts)
	if err := outwriter.Write(out, output); err != nil {
		return "", marshalError(&lowering.BuildError{File: out, Message: err.Error()})
	}
	return out, nil
}

// CompileModule is host operation 2: compileModule(modulePath, options) ->
// moduleBuildPath | error. It discovers every .lv file under modulePath,
// compiles them together as one package, writes each result under
// modulePath's own "build" subdirectory, and returns that directory.
func CompileModule(modulePath string, opts Options) (string, error) {
	if opts.ModuleURI == "" {
		return "", marshalError(&lowering.BuildError{File: modulePath, Message: "compileModule requires a module URI"})
	}

	paths, err := discover.Walk(context.Background(), discover.DefaultScope(modulePath))
	if err != nil {
		return "", marshalError(&lowering.BuildError{File: modulePath, Message: err.Error()})
	}

	files := make(map[string]string, len(paths))
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return "", marshalError(&lowering.BuildError{File: p, Message: err.Error()})
		}
		rel, err := filepath.Rel(modulePath, p)
		if err != nil {
			return "", marshalError(&lowering.BuildError{File: p, Message: err.Error()})
		}
		key := filepath.ToSlash(rel[:len(rel)-len(filepath.Ext(rel))])
		files[key] = string(src)
	}

	cache, err := openCache(opts)
	if err != nil {
		return "", marshalError(&lowering.BuildError{File: opts.CacheDSN, Message: err.Error()})
	}

	var compiled []driver.CompiledFile
	if cache != nil {
		compiled, err = compileModuleViaCache(cache, opts, files)
	} else {
		compiled, err = newDriver(opts).CompileModule(opts.ModuleURI, files)
	}
	if cache != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		if recErr := cache.RecordRun(uuid.NewString(), opts.ModuleURI, fileHashesJSON(files), status); recErr != nil {
			return "", marshalError(&lowering.BuildError{File: opts.ModuleURI, Message: recErr.Error()})
		}
	}
	if err != nil {
		return "", marshalError(err)
	}

	buildDir := filepath.Join(modulePath, "build")
	for _, cf := range compiled {
		dest := filepath.Join(buildDir, cf.Path+".lv"+opts.OutputExtension)
		if err := outwriter.Write(dest, cf.Output); err != nil {
			return "", marshalError(&lowering.BuildError{File: dest, Message: err.Error()})
		}
	}
	return buildDir, nil
}

// fileHashesJSON summarizes a module's file set as {path: contentHash} for
// CompileRun.FileHashes — the per-run audit record SPEC_FULL.md §2 promises
// alongside the cache itself.
func fileHashesJSON(files map[string]string) []byte {
	hashes := make(map[string]string, len(files))
	for path, src := range files {
		hashes[path] = buildcache.ContentHash(src)
	}
	out, _ := json.Marshal(hashes)
	return out
}

// compileModuleViaCache checks every file's cache entry first, unless
// opts.ForceRebuild is set — only when at least one misses (or a rebuild was
// forced) does it fall through to a real CompileModule run (import
// resolution and cycle detection need the whole file set together, so a
// partial hit still recompiles everything — but a full hit skips the
// driver entirely). Every freshly compiled file is written back to cache.
func compileModuleViaCache(cache *buildcache.Store, opts Options, files map[string]string) ([]driver.CompiledFile, error) {
	hits := make([]driver.CompiledFile, 0, len(files))
	allHit := !opts.ForceRebuild
	if allHit {
		for path, src := range files {
			output, hit, err := cache.Lookup(opts.ModuleURI, path, opts.ReleaseTag, src)
			if err != nil {
				return nil, &lowering.BuildError{File: path, Message: err.Error()}
			}
			if !hit {
				allHit = false
				break
			}
			hits = append(hits, driver.CompiledFile{Path: path, Output: output})
		}
	}
	if allHit {
		return hits, nil
	}

	compiled, err := newDriver(opts).CompileModule(opts.ModuleURI, files)
	if err != nil {
		return nil, err
	}
	for _, cf := range compiled {
		if err := cache.Put(opts.ModuleURI, cf.Path, opts.ReleaseTag, files[cf.Path], cf.Output); err != nil {
			return nil, &lowering.BuildError{File: cf.Path, Message: err.Error()}
		}
	}
	return compiled, nil
}

// Compiler is the handle createCompiler(options) returns: a reusable
// driver configuration that runCompiler drives one file at a time without
// re-reading options or rebuilding a Driver per call.
type Compiler struct {
	opts   Options
	driver *driver.Driver
}

// CreateCompiler is host operation 3a: createCompiler(options) -> handle.
func CreateCompiler(opts Options) *Compiler {
	return &Compiler{opts: opts, driver: newDriver(opts)}
}

// RunResult is runCompiler's success shape: `{ file }` per spec.md §6.
type RunResult struct {
	File string `json:"file"`
}

// RunCompiler is host operation 3b: runCompiler(handle, filePath) ->
// { file } | error.
func (c *Compiler) RunCompiler(filePath string) (RunResult, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return RunResult{}, marshalError(&lowering.BuildError{File: filePath, Message: err.Error()})
	}
	output, err := c.driver.CompileFile(filePath, string(src))
	if err != nil {
		return RunResult{}, marshalError(err)
	}
	out := resultPath(filePath, c.opts)
	if err := outwriter.Write(out, output); err != nil {
		return RunResult{}, marshalError(&lowering.BuildError{File: out, Message: err.Error()})
	}
	return RunResult{File: out}, nil
}
