package buildcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Connect(":memory:", false)
	require.NoError(t, err)
	return s
}

func TestLookupMissesOnEmptyCache(t *testing.T) {
	s := openTestStore(t)
	_, hit, err := s.Lookup("app", "app/a", "", "component A{}")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestPutThenLookupHitsByContentHash(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("app", "app/a", "", "component A{}", "export class A {}"))

	out, hit, err := s.Lookup("app", "app/a", "", "component A{}")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "export class A {}", out)
}

func TestLookupMissesWhenContentChanges(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("app", "app/a", "", "component A{}", "export class A {}"))

	_, hit, err := s.Lookup("app", "app/a", "", "component A{ int x: 1 }")
	require.NoError(t, err)
	assert.False(t, hit, "a content edit must invalidate the content-hash key")
}

func TestReleaseTaggedCacheIgnoresContentChanges(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("app", "app/a", "v1.0.0", "component A{}", "export class A {}"))

	// Same release tag, different source text: still a hit, since a
	// release-tagged key is scoped by tag+path, not content.
	out, hit, err := s.Lookup("app", "app/a", "v1.0.0", "component A{ int x: 1 }")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "export class A {}", out)
}

func TestRecordRunPersists(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.RecordRun("run-1", "app", []byte(`{"app/a":"deadbeef"}`), "ok"))

	var run CompileRun
	require.NoError(t, s.DB().First(&run, "id = ?", "run-1").Error)
	assert.Equal(t, "ok", run.Status)
}
