package lowering

import (
	"fmt"
	"strings"

	"github.com/oxhq/lvc/internal/ast"
)

// renderSubscriptions turns a BindingContainer into the
// `[[sourceObject,'eventName'],...]` array literal assignPropertyExpression
// takes as its change-notification list (spec.md §4.5, §8 scenario S3).
//
// A bare capture (FirstField=="") subscribes to the enclosing component's
// own `<name>Changed` event; a member-chain capture subscribes to the root
// variable's `<firstField>Changed` event instead, since that's the object
// actually mutating.
func renderSubscriptions(b *ast.BindingContainer) string {
	if b == nil || b.IsEmpty() {
		return "[]"
	}
	var pairs []string
	for _, e := range b.Entries() {
		field := e.FirstField
		if field == "" {
			field = e.Root
			pairs = append(pairs, fmt.Sprintf("[this,'%sChanged']", field))
			continue
		}
		pairs = append(pairs, fmt.Sprintf("[%s,'%sChanged']", e.Root, field))
	}
	return "[" + strings.Join(pairs, ",") + "]"
}
