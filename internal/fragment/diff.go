package fragment

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the original source and the text
// Build produced from it, for --diff output and debug tooling.
func Diff(fileName, original, rewritten string) string {
	if original == rewritten {
		return ""
	}
	d := difflib.UnifiedDiff{
		A:        strings.Split(original, "\n"),
		B:        strings.Split(rewritten, "\n"),
		FromFile: fileName,
		ToFile:   fileName + " (lowered)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return fmt.Sprintf("--- %s\n+++ %s (lowered)\n@@ changes @@\n%d bytes -> %d bytes",
			fileName, fileName, len(original), len(rewritten))
	}
	return text
}
