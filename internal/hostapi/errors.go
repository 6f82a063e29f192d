// Package hostapi implements the three host-facing operations spec.md §6
// names as the compiler's only sanctioned entry points — compile,
// compileModule, and the createCompiler/runCompiler handle pair — plus the
// error marshaling spec.md §6/§7 requires of everything that can fail.
package hostapi

import (
	"errors"

	"github.com/oxhq/lvc/internal/ast"
	"github.com/oxhq/lvc/internal/lowering"
	"github.com/oxhq/lvc/internal/module"
)

// SourceInfo is SyntaxError's extra `source` field (spec.md §6).
type SourceInfo struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
}

// internalInfo is every error kind's `__internal` field.
type internalInfo struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// HostError is what every error this package returns marshals to, across
// the boundary to a host embedding the compiler (spec.md §6 "Error surface
// to host").
type HostError struct {
	Message  string        `json:"message"`
	Code     string        `json:"code"`
	Internal internalInfo  `json:"__internal"`
	Source   *SourceInfo   `json:"source,omitempty"`
}

func (e *HostError) Error() string { return e.Message }

// marshalError classifies err into one of spec.md §7's four error kinds
// (SyntaxError, ImportError, BuildError, AssertionError) and shapes it into
// a HostError. An error that matches none of them still marshals, under a
// generic "Error" code, rather than panicking the host binding.
func marshalError(err error) *HostError {
	if err == nil {
		return nil
	}

	var syn *ast.SyntaxError
	if errors.As(err, &syn) {
		return &HostError{
			Message:  err.Error(),
			Code:     "SyntaxError",
			Internal: internalInfo{File: syn.File, Line: syn.Pos.Line + 1},
			Source: &SourceInfo{
				File: syn.File, Line: syn.Pos.Line + 1, Column: syn.Pos.Column + 1, Offset: syn.Pos.Byte,
			},
		}
	}

	var imp *module.ImportError
	if errors.As(err, &imp) {
		return &HostError{
			Message:  err.Error(),
			Code:     "ImportError",
			Internal: internalInfo{},
		}
	}

	var build *lowering.BuildError
	if errors.As(err, &build) {
		return &HostError{
			Message:  err.Error(),
			Code:     "BuildError",
			Internal: internalInfo{File: build.File},
		}
	}

	var assert *ast.AssertionError
	if errors.As(err, &assert) {
		return &HostError{
			Message:  err.Error(),
			Code:     "AssertionError",
			Internal: internalInfo{File: assert.File, Line: assert.Pos.Line + 1},
		}
	}

	var cycle *module.CycleError
	if errors.As(err, &cycle) {
		return &HostError{Message: err.Error(), Code: "ImportError"}
	}

	return &HostError{Message: err.Error(), Code: "Error"}
}
