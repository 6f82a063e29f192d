package lowering

import (
	"strings"

	"github.com/oxhq/lvc/internal/ast"
)

// Engine lowers one Program at a time, using the same Options for every
// export in it.
type Engine struct {
	opts Options
}

// New returns an Engine configured with opts.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// renderArgs lowers a NewComponentExpression's constructor arguments into a
// comma-joined JS argument list.
func (e *Engine) renderArgs(source string, args []ast.Node) (string, error) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		text, err := e.render(source, a, nil)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, ","), nil
}
