// Package launch runs the downstream analysis program.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// Runner invokes the downstream analyzer as a separate process.
//
// The child inherits this process's stdio and runs to natural
// completion; there is no timeout and no retry. Cancellation of ctx is
// only honored before the child finishes on its own.
type Runner struct {
	// Command is the downstream program and its leading arguments,
	// e.g. ["python3", "main.py"]. The resolved input path is appended.
	Command []string

	// Dir is the working directory for the child process.
	Dir string
}

// Launch runs the downstream program with inputPath as its input
// argument and blocks until it terminates.
//
// A non-nil error means the process could not be started at all.
// Otherwise the child's exit code is returned verbatim, zero or not, so
// the caller can forward it unchanged.
func (r *Runner) Launch(ctx context.Context, inputPath string) (int, error) {
	if len(r.Command) == 0 {
		return 0, errors.New("no downstream command configured")
	}

	args := append(append([]string{}, r.Command[1:]...), inputPath)
	cmd := exec.CommandContext(ctx, r.Command[0], args...)
	cmd.Dir = r.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	slog.Debug("starting analyzer", "command", r.Command[0], "input", inputPath)
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("starting %s: %w", r.Command[0], err)
}
