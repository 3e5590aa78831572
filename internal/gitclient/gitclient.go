// Package gitclient implements the pipeline's SourceControlClient over
// the git command line.
package gitclient

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// RunFunc executes an external command in dir. Implementations stream
// the command's output to the operator; a non-nil error means the
// command could not be started or exited non-zero.
type RunFunc func(ctx context.Context, dir, name string, args ...string) error

// Client manages the local clone of the engine source tree.
type Client struct {
	// RepoPath is the local clone directory.
	RepoPath string

	// RemoteURL is the engine's canonical remote location.
	RemoteURL string

	// Runner allows overriding command execution (for testing).
	// If nil, defaults to running the real git binary.
	Runner RunFunc
}

// New creates a client for the clone at repoPath tracking remoteURL.
func New(repoPath, remoteURL string) *Client {
	return &Client{RepoPath: repoPath, RemoteURL: remoteURL}
}

// EnsurePresent clones the remote into RepoPath if no clone exists yet,
// creating parent directories as needed. Reports whether a fresh clone
// was created.
func (c *Client) EnsurePresent(ctx context.Context) (bool, error) {
	_, err := os.Stat(filepath.Join(c.RepoPath, ".git"))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking clone at %s: %w", c.RepoPath, err)
	}

	parent := filepath.Dir(c.RepoPath)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return false, fmt.Errorf("creating clone parent %s: %w", parent, err)
	}

	slog.Debug("cloning engine source", "remote", c.RemoteURL, "path", c.RepoPath)
	if err := c.runner()(ctx, parent, "git", "clone", c.RemoteURL, c.RepoPath); err != nil {
		return false, fmt.Errorf("cloning %s: %w", c.RemoteURL, err)
	}
	return true, nil
}

// UpdateToLatest fast-forwards the existing clone to the remote's latest
// state. A clone that cannot fast-forward (diverged local history) fails
// rather than merging.
func (c *Client) UpdateToLatest(ctx context.Context) error {
	slog.Debug("updating engine source", "path", c.RepoPath)
	if err := c.runner()(ctx, c.RepoPath, "git", "pull", "--ff-only"); err != nil {
		return fmt.Errorf("updating clone at %s: %w", c.RepoPath, err)
	}
	return nil
}

func (c *Client) runner() RunFunc {
	if c.Runner != nil {
		return c.Runner
	}
	return runCommand
}

// runCommand runs name with args in dir, streaming output to the
// operator's terminal.
func runCommand(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
