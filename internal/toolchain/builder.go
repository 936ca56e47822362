package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

type CompilerBuilderOpts struct {
	WorkDir          string
	Compiler         string
	Sources          []string
	Libraries        []string
	Output           string
	RangeDefines     []string
	AutomationDefine string
	Logger           *slog.Logger
}

type CompilerBuilderOpt func(opts *CompilerBuilderOpts)

func WithWorkDir(dir string) CompilerBuilderOpt {
	return func(opts *CompilerBuilderOpts) { opts.WorkDir = dir }
}

func WithCompiler(compiler string) CompilerBuilderOpt {
	return func(opts *CompilerBuilderOpts) { opts.Compiler = compiler }
}

func WithSources(sources ...string) CompilerBuilderOpt {
	return func(opts *CompilerBuilderOpts) { opts.Sources = sources }
}

func WithLibraries(libs ...string) CompilerBuilderOpt {
	return func(opts *CompilerBuilderOpts) { opts.Libraries = libs }
}

func WithOutput(output string) CompilerBuilderOpt {
	return func(opts *CompilerBuilderOpts) { opts.Output = output }
}

// WithRangeDefines names the preprocessor macros bound to the sweep parameter.
func WithRangeDefines(names ...string) CompilerBuilderOpt {
	return func(opts *CompilerBuilderOpts) { opts.RangeDefines = names }
}

// WithAutomationDefine names the macro that switches the program into its
// non-interactive mode. Empty disables it.
func WithAutomationDefine(name string) CompilerBuilderOpt {
	return func(opts *CompilerBuilderOpts) { opts.AutomationDefine = name }
}

func WithBuilderLogger(l *slog.Logger) CompilerBuilderOpt {
	return func(opts *CompilerBuilderOpts) { opts.Logger = l }
}

// CompilerBuilder builds the program with a C/C++ compiler driver, binding
// the sweep parameter into compile-time defines.
type CompilerBuilder struct {
	opts   CompilerBuilderOpts
	logger *slog.Logger
}

// NewCompilerBuilder defaults to "cc" in the current directory with no
// sources; callers supply the rest.
func NewCompilerBuilder(opts ...CompilerBuilderOpt) *CompilerBuilder {
	o := CompilerBuilderOpts{Compiler: "cc"}
	for _, opt := range opts {
		opt(&o)
	}

	return &CompilerBuilder{opts: o, logger: loggerOrDiscard(o.Logger)}
}

// Args returns the compiler arguments for param.
func (b *CompilerBuilder) Args(param int) []string {
	args := make([]string, 0, len(b.opts.Sources)+len(b.opts.Libraries)+len(b.opts.RangeDefines)+4)
	args = append(args, b.opts.Sources...)
	args = append(args, lo.Map(b.opts.Libraries, func(l string, _ int) string {
		if strings.HasPrefix(l, "-l") {
			return l
		}
		return "-l" + l
	})...)
	args = append(args, lo.Map(b.opts.RangeDefines, func(name string, _ int) string {
		return fmt.Sprintf("-D%s=%d", name, param)
	})...)
	if b.opts.AutomationDefine != "" {
		args = append(args, "-D"+b.opts.AutomationDefine)
	}
	if b.opts.Output != "" {
		args = append(args, "-o", b.opts.Output)
	}

	return args
}

func (b *CompilerBuilder) Build(ctx context.Context, param int) error {
	args := b.Args(param)
	b.logger.DebugContext(ctx, "building", "compiler", b.opts.Compiler, "args", strings.Join(args, " "))

	out, err := runProcess(ctx, b.opts.WorkDir, b.opts.Compiler, args, nil)
	if err != nil {
		return &BuildError{
			Param:      param,
			ExitCode:   out.exitCode,
			Diagnostic: out.stderr,
			Err:        err,
		}
	}

	return nil
}
