package lowering

import "fmt"

// BuildError reports a lowering-time failure that isn't a parse or import
// problem, such as an unexpected top-level export node reaching lowering
// (spec.md §7, kind "BuildError"). An unresolved import with
// Options.AllowUnresolved off is reported as a *module.ImportError instead.
type BuildError struct {
	File    string
	Message string
}

func (e *BuildError) Error() string {
	if e.File == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}
