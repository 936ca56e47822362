package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

type BinaryRunnerOpts struct {
	WorkDir    string
	EchoOutput bool
	Logger     *slog.Logger
}

type BinaryRunnerOpt func(opts *BinaryRunnerOpts)

func WithRunWorkDir(dir string) BinaryRunnerOpt {
	return func(opts *BinaryRunnerOpts) { opts.WorkDir = dir }
}

// WithEchoOutput logs every output line of the program at debug level.
func WithEchoOutput(v bool) BinaryRunnerOpt {
	return func(opts *BinaryRunnerOpts) { opts.EchoOutput = v }
}

func WithRunnerLogger(l *slog.Logger) BinaryRunnerOpt {
	return func(opts *BinaryRunnerOpts) { opts.Logger = l }
}

// BinaryRunner runs a fixed command line. The sweep never passes arguments
// to the program; everything it needs was bound at build time.
type BinaryRunner struct {
	command []string
	opts    BinaryRunnerOpts
	logger  *slog.Logger
}

func NewBinaryRunner(command []string, opts ...BinaryRunnerOpt) (*BinaryRunner, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.New("run command is empty")
	}

	o := BinaryRunnerOpts{WorkDir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	return &BinaryRunner{command: command, opts: o, logger: loggerOrDiscard(o.Logger)}, nil
}

func (r *BinaryRunner) Run(ctx context.Context) (string, error) {
	var lineLog *slog.Logger
	if r.opts.EchoOutput {
		lineLog = r.logger
	}

	out, err := runProcess(ctx, r.opts.WorkDir, r.command[0], r.command[1:], lineLog)
	if err != nil {
		return out.stdout, fmt.Errorf("run %s (exit code %d): %w", r.command[0], out.exitCode, err)
	}

	return out.stdout, nil
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
