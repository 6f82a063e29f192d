package hostapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/lvc/internal/ast"
)

func writeSource(t *testing.T, path, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func TestCompileWritesResultBesideSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "button.lv")
	writeSource(t, src, "component Button{}")

	out, err := Compile(src, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "button.lv.js"), out)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), "export class Button extends Element {")
}

func TestCompileMissingFileReturnsBuildError(t *testing.T) {
	_, err := Compile(filepath.Join(t.TempDir(), "missing.lv"), DefaultOptions())
	require.Error(t, err)
	var hostErr *HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "BuildError", hostErr.Code)
}

func TestCompileSyntaxErrorMarshalsSourceInfo(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.lv")
	writeSource(t, src, "component Broken")

	_, err := Compile(src, DefaultOptions())
	require.Error(t, err)
	var hostErr *HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "SyntaxError", hostErr.Code)
	require.NotNil(t, hostErr.Source)
	assert.Equal(t, src, hostErr.Source.File)

	var syn *ast.SyntaxError
	assert.ErrorAs(t, err, &syn)
}

func TestCompileModuleWritesBuildDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "a.lv"), "import app.b as P\ncomponent A extends P.B{}")
	writeSource(t, filepath.Join(dir, "b.lv"), "component B{}")

	opts := DefaultOptions()
	opts.ModuleURI = "app"
	buildDir, err := CompileModule(dir, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "build"), buildDir)

	got, err := os.ReadFile(filepath.Join(buildDir, "a.lv.js"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "extends P.B {")
}

func TestCompileModuleRequiresModuleURI(t *testing.T) {
	_, err := CompileModule(t.TempDir(), DefaultOptions())
	require.Error(t, err)
	var hostErr *HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "BuildError", hostErr.Code)
}

func TestCompileModuleCacheHitsSkipSecondCompile(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "a.lv"), "component A{}")

	opts := DefaultOptions()
	opts.ModuleURI = "app"
	opts.CacheDSN = filepath.Join(t.TempDir(), "cache.db")

	_, err := CompileModule(dir, opts)
	require.NoError(t, err)

	// A second run against unchanged source must hit the cache and still
	// produce the same output.
	buildDir, err := CompileModule(dir, opts)
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(buildDir, "a.lv.js"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "export class A extends Element {")
}

func TestCompileModuleForceRebuildBypassesCacheHit(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.lv")
	writeSource(t, src, "component A{}")

	opts := DefaultOptions()
	opts.ModuleURI = "app"
	opts.CacheDSN = filepath.Join(t.TempDir(), "cache.db")

	_, err := CompileModule(dir, opts)
	require.NoError(t, err)

	// Source is unchanged, so a normal second run would hit the cache.
	// ForceRebuild must skip that lookup and recompile anyway.
	opts.ForceRebuild = true
	buildDir, err := CompileModule(dir, opts)
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(buildDir, "a.lv.js"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "export class A extends Element {")
}

func TestCreateCompilerRunCompilerWritesResult(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "card.lv")
	writeSource(t, src, "component Card{}")

	c := CreateCompiler(DefaultOptions())
	result, err := c.RunCompiler(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "card.lv.js"), result.File)
}
