package toolchain

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"
)

type processOutput struct {
	stdout string
	stderr string
	// exitCode is -1 when the process did not start or was killed by a signal.
	exitCode int
}

// runProcess starts name with args in dir and drains stdout and stderr
// concurrently until both pipes close. When lineLog is non-nil every stdout
// line is also logged at debug level.
func runProcess(ctx context.Context, dir, name string, args []string, lineLog *slog.Logger) (processOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return processOutput{exitCode: -1}, fmt.Errorf("stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return processOutput{exitCode: -1}, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return processOutput{exitCode: -1}, fmt.Errorf("start %s: %w", name, err)
	}

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return pump(stdoutPipe, &stdout, lineLog) })
	g.Go(func() error { return pump(stderrPipe, &stderr, nil) })
	pumpErr := g.Wait()

	waitErr := cmd.Wait()
	out := processOutput{
		stdout:   stdout.String(),
		stderr:   stderr.String(),
		exitCode: exitCode(cmd, waitErr),
	}
	if waitErr != nil {
		return out, waitErr
	}
	if pumpErr != nil {
		return out, fmt.Errorf("read output: %w", pumpErr)
	}

	return out, nil
}

func pump(r io.Reader, dst *bytes.Buffer, lineLog *slog.Logger) error {
	if lineLog == nil {
		_, err := io.Copy(dst, r)
		return err
	}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			dst.WriteString(line)
			lineLog.Debug("program output", "line", strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}

	return -1
}
