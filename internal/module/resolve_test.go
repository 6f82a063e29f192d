package module

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolveImportPathRelativeInRootPackageFails covers spec.md §8
// scenario S6's actual wording: a file whose own package is literally "."
// has no enclosing package a relative import can resolve against, the same
// as the empty-moduleURI case graph_test.go's
// TestResolveImportPathRelativeWithoutPackageFails already exercises.
func TestResolveImportPathRelativeInRootPackageFails(t *testing.T) {
	r := NewResolver(NewGraph(), ".")
	_, err := r.ResolveImportPath("a.lv", ".sibling", true)
	require.Error(t, err)
	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	require.Equal(t, "Cannot import relative path without package", importErr.Message)
}
