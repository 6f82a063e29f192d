// Package lowering implements the Lowering Engine (spec.md §4.5): turning a
// Program's typed AST into target-script source text, one export at a time,
// via the Source Fragment Assembler rather than in-place mutation.
package lowering

// Options configures how a Program lowers to output text (spec.md §6
// "Options"). Zero value is not ready to use; call DefaultOptions and
// override from there.
type Options struct {
	// BaseComponent is the runtime class every component extends when the
	// source gives no explicit heritage, and the receiver for every
	// addProperty/addEvent/assignPropertyExpression/complete call.
	BaseComponent string

	// BaseComponentImportUri, when non-empty, makes the Program preamble
	// import BaseComponent from this path. Left empty in most tests, since
	// a host embedding the runtime globally has no need for the import.
	BaseComponentImportUri string

	// AllowUnresolved lets a Program.ImportTypes entry with no
	// ResolvedPath lower anyway, against a placeholder path, instead of
	// failing the whole file. Off in DefaultOptions; config.Load turns it
	// on from LVC_ALLOW_UNRESOLVED.
	AllowUnresolved bool

	// OutputComponentMeta additionally emits a `static __meta = {...}`
	// block on every generated class, describing its declared properties
	// and events for host tooling (inspectors, devtools) to read without
	// re-parsing source.
	OutputComponentMeta bool
}

// DefaultOptions returns the engine's defaults: Element as the implicit
// base, no auto-import, strict unresolved-import handling, no meta output.
func DefaultOptions() Options {
	return Options{
		BaseComponent:   "Element",
		AllowUnresolved: false,
	}
}
