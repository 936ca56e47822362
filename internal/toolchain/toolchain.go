package toolchain

import (
	"context"
	"fmt"
)

// Builder compiles the benchmarked program for one sweep parameter.
type Builder interface {
	// Build returns a *BuildError when the compiler exits non-zero.
	Build(ctx context.Context, param int) error
}

// Runner executes the built program once and returns everything it wrote
// to stdout. The output is returned even when the process fails.
type Runner interface {
	Run(ctx context.Context) (string, error)
}

// Cleaner removes state left behind by the previous run.
type Cleaner interface {
	Clean(ctx context.Context) error
}

// BuildError describes a failed build of one sweep point.
type BuildError struct {
	Param      int
	ExitCode   int
	Diagnostic string
	Err        error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed for range %d (exit code %d): %v", e.Param, e.ExitCode, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
