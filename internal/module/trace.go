package module

import (
	"errors"
	"fmt"
	"strings"
)

// ImportTrace wraps an ImportError with the chain of files that enclose the
// import that actually failed, one frame per enclosing import, innermost
// first — the Go shape of spec.md §7's "TracePointException": "ImportErrors
// thrown deep in the graph are wrapped in a trace-accumulating exception...
// so the final message reads as a chain".
type ImportTrace struct {
	Frames []string
	Err    error
}

// WrapImportFrame adds frame to err's trace. If err is already an
// *ImportTrace (from a deeper call in the same import-resolution chain), the
// frame is appended rather than nesting a new trace around it, so repeated
// wrapping as the error unwinds produces one flat, ordered frame list.
func WrapImportFrame(err error, frame string) error {
	var trace *ImportTrace
	if errors.As(err, &trace) {
		frames := make([]string, 0, len(trace.Frames)+1)
		frames = append(frames, trace.Frames...)
		frames = append(frames, frame)
		return &ImportTrace{Frames: frames, Err: trace.Err}
	}
	return &ImportTrace{Frames: []string{frame}, Err: err}
}

func (t *ImportTrace) Error() string {
	var sb strings.Builder
	sb.WriteString(t.Err.Error())
	for _, f := range t.Frames {
		fmt.Fprintf(&sb, ": imported by %s", f)
	}
	return sb.String()
}

// Unwrap exposes the underlying ImportError to errors.As/errors.Is, so
// callers that classify errors by the innermost kind (hostapi's
// marshalError, for instance) don't need to know about ImportTrace at all.
func (t *ImportTrace) Unwrap() error { return t.Err }
