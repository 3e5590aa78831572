package pipeline

import "path/filepath"

// DefaultInputName is the input file used when no explicit path is given.
const DefaultInputName = "input.simc"

// Invocation carries the per-run context captured at process start:
// the working directory snapshot and the optional explicit input path.
//
// The working directory is captured once, at the start of the run, so
// that input resolution does not depend on ambient process state read
// mid-pipeline.
type Invocation struct {
	// WorkDir is the working directory at the start of the run.
	WorkDir string

	// InputPath is the explicit input file argument, or empty when the
	// caller supplied none.
	InputPath string
}

// ResolveInput returns the input path for the downstream program.
//
// An explicit path is passed through verbatim - it is never re-joined
// against the working directory, so a relative explicit path reaches the
// downstream program exactly as given. Without an explicit path the
// default input file is resolved against the captured working directory.
func (inv Invocation) ResolveInput() string {
	if inv.InputPath != "" {
		return inv.InputPath
	}
	return filepath.Join(inv.WorkDir, DefaultInputName)
}
