// Package buildsys implements the pipeline's BuildSystemClient over the
// engine's make-based build tooling.
package buildsys

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ArtifactName is the executable produced by the engine build.
const ArtifactName = "simc"

// RunFunc executes an external command in dir, streaming its output.
type RunFunc func(ctx context.Context, dir, name string, args ...string) error

// OutputFunc executes an external command and returns its combined output.
type OutputFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Make compiles the engine via its own Makefile with a fixed option set.
type Make struct {
	// SourceDir is the synchronized source tree.
	SourceDir string

	// BuildDir is the Makefile directory relative to SourceDir.
	BuildDir string

	// Profile is the build target, e.g. "optimized".
	Profile string

	// OpenSSL enables the engine's OpenSSL integration.
	OpenSSL bool

	// Jobs is the parallel job count handed to make. The parallelism is
	// internal to make's scheduling and opaque to this tool.
	Jobs int

	// Runner allows overriding command execution (for testing).
	Runner RunFunc

	// Output allows overriding probe command execution (for testing).
	Output OutputFunc
}

// Compile builds the engine and returns the absolute artifact path.
// Any non-zero make status is fatal; there is no partial-success state.
func (m *Make) Compile(ctx context.Context) (string, error) {
	args := []string{"-C", m.BuildDir, m.Profile, "-j", strconv.Itoa(m.Jobs)}
	if m.OpenSSL {
		args = append(args, "OPENSSL=1")
	}

	slog.Debug("invoking make", "dir", m.SourceDir, "args", strings.Join(args, " "))
	if err := m.runner()(ctx, m.SourceDir, "make", args...); err != nil {
		return "", fmt.Errorf("make %s: %w", m.Profile, err)
	}

	artifact, err := filepath.Abs(filepath.Join(m.SourceDir, m.BuildDir, ArtifactName))
	if err != nil {
		return "", fmt.Errorf("resolving artifact path: %w", err)
	}
	return artifact, nil
}

// versionRe matches the git build line of the engine's startup banner,
// e.g. "SimulationCraft 1130-01 for World of Warcraft ... (git build thewarwithin 1a2b3c4)".
var versionRe = regexp.MustCompile(`git build \S* (\S+)\)`)

// Probe runs the built artifact once and extracts its git revision from
// the banner. A missing banner line is an error; callers treat probe
// errors as diagnostic only.
func (m *Make) Probe(ctx context.Context, artifact string) (string, error) {
	out, err := m.output()(ctx, artifact)
	if err != nil {
		return "", fmt.Errorf("running %s: %w", artifact, err)
	}
	match := versionRe.FindSubmatch(out)
	if match == nil {
		return "", fmt.Errorf("no git build string in banner of %s", artifact)
	}
	return string(match[1]), nil
}

func (m *Make) runner() RunFunc {
	if m.Runner != nil {
		return m.Runner
	}
	return func(ctx context.Context, dir, name string, args ...string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Dir = dir
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
}

func (m *Make) output() OutputFunc {
	if m.Output != nil {
		return m.Output
	}
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		// The engine exits non-zero when run without arguments; the
		// banner is still printed, so only a start failure matters here.
		out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
		if len(out) > 0 {
			return out, nil
		}
		return out, err
	}
}
