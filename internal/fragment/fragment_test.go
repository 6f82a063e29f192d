package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblerBuildPassthrough(t *testing.T) {
	src := "hello world"
	a := New(src)
	out, err := a.Build()
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestAssemblerBuildSingleRewrite(t *testing.T) {
	src := "component A { x: 1 }"
	a := New(src)
	a.Add(Fragment{From: 17, To: 18, Payload: "42"})
	out, err := a.Build()
	require.NoError(t, err)
	assert.Equal(t, "component A { x: 42 }", out)
}

func TestAssemblerBuildOutOfOrderFragments(t *testing.T) {
	src := "AAABBBCCC"
	a := New(src)
	a.Add(Fragment{From: 6, To: 9, Payload: "ccc"})
	a.Add(Fragment{From: 0, To: 3, Payload: "aaa"})
	out, err := a.Build()
	require.NoError(t, err)
	assert.Equal(t, "aaaBBBccc", out)
}

func TestAssemblerBuildDetectsOverlap(t *testing.T) {
	src := "0123456789"
	a := New(src)
	a.Add(Fragment{From: 0, To: 5, Payload: "x"})
	a.Add(Fragment{From: 3, To: 8, Payload: "y"})
	_, err := a.Build()
	require.Error(t, err)
	var overlapErr *OverlapError
	require.ErrorAs(t, err, &overlapErr)
}

func TestAssemblerBuildNestedFragment(t *testing.T) {
	src := "outer(inner)tail"
	a := New(src)
	a.Add(Fragment{
		From:    0,
		To:      len(src),
		Payload: "", // Payload is ignored when Nested is set; only the gaps matter.
		Nested: []Fragment{
			{From: 6, To: 11, Payload: "INNER"},
		},
	})
	out, err := a.Build()
	require.NoError(t, err)
	assert.Equal(t, "outer(INNER)tail", out)
}

func TestAssemblerCoverageSorted(t *testing.T) {
	a := New("0123456789")
	a.Add(Fragment{From: 5, To: 7})
	a.Add(Fragment{From: 0, To: 2})
	cov := a.Coverage()
	require.Len(t, cov, 2)
	assert.Equal(t, 0, cov[0].Start.Byte)
	assert.Equal(t, 5, cov[1].Start.Byte)
}

func TestDiffEmptyWhenUnchanged(t *testing.T) {
	assert.Empty(t, Diff("a.lv", "same", "same"))
}

func TestDiffNonEmptyWhenChanged(t *testing.T) {
	d := Diff("a.lv", "one\ntwo\n", "one\nthree\n")
	assert.Contains(t, d, "a.lv")
	assert.Contains(t, d, "-two")
	assert.Contains(t, d, "+three")
}
