package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simcminmax/simboot/internal/pipeline"
)

func TestGetExitCodeNil(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
}

func TestGetExitCodePlainError(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
}

func TestGetExitCodeExitError(t *testing.T) {
	err := WrapExitError(ExitCommandError, "bad flags", errors.New("boom"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCodeForwardsDownstreamStatus(t *testing.T) {
	stage := pipeline.NewStageError(pipeline.StateLaunching, pipeline.CodeLaunchFailure, "analyzer exited non-zero", nil)
	stage.ExitCode = 42

	// Even wrapped in an ExitError, the downstream status wins.
	wrapped := WrapExitError(ExitFailure, "pipeline failed", stage)
	assert.Equal(t, 42, GetExitCode(wrapped))
}

func TestGetExitCodeStageFailureWithoutDownstreamStatus(t *testing.T) {
	stage := pipeline.NewStageError(pipeline.StateBuilding, pipeline.CodeBuildFailure, "make failed", errors.New("exit status 2"))
	wrapped := WrapExitError(ExitFailure, "pipeline failed", stage)
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestExitErrorMessage(t *testing.T) {
	err := WrapExitError(ExitCommandError, "failed to load config", fmt.Errorf("no such file"))
	assert.Equal(t, "failed to load config: no such file", err.Error())
	assert.Equal(t, "no such file", err.Unwrap().Error())
}

func TestOutputFormatterJSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}
	require.NoError(t, f.Success(map[string]string{"hello": "world"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestOutputFormatterTextError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, f.Error("SCHEMA", "jobs must be positive"))
	assert.Contains(t, buf.String(), "Error [SCHEMA]: jobs must be positive")
}
