package pipeline

import (
	"errors"
	"fmt"
)

// FailureCode categorizes pipeline failures by the stage that produced them.
type FailureCode string

const (
	// CodeSyncFailure indicates the remote was unreachable or the local
	// clone could not be fast-forwarded.
	CodeSyncFailure FailureCode = "SYNC_FAILURE"

	// CodeBuildFailure indicates the engine's build tooling reported a
	// non-zero completion status.
	CodeBuildFailure FailureCode = "BUILD_FAILURE"

	// CodeConfigMissing indicates neither the override file nor the
	// upstream template exists, so there is no key to patch.
	CodeConfigMissing FailureCode = "CONFIG_MISSING"

	// CodePatchFailure indicates the target key was not found in the
	// override file. Never silently skipped.
	CodePatchFailure FailureCode = "PATCH_FAILURE"

	// CodeLaunchFailure indicates the downstream process failed to start
	// or exited non-zero.
	CodeLaunchFailure FailureCode = "LAUNCH_FAILURE"
)

// StageError represents a failure detected during pipeline execution.
//
// It records the stage at which the pipeline halted, a stable failure
// code, and - for launch failures - the downstream process's exit code
// so callers can forward it unchanged.
type StageError struct {
	// Code identifies the failure category.
	Code FailureCode

	// Stage is the state the machine was in when the failure occurred.
	Stage State

	// Message is a human-readable description.
	Message string

	// ExitCode is the downstream process's exit status, for
	// CodeLaunchFailure with a started-but-failed process. Zero otherwise.
	ExitCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a StageError for the given stage and code.
func NewStageError(stage State, code FailureCode, message string, err error) *StageError {
	return &StageError{Code: code, Stage: stage, Message: message, Err: err}
}

// IsConfigMissing reports whether err is a CONFIG_MISSING stage error.
// Uses errors.As to handle wrapped errors.
func IsConfigMissing(err error) bool {
	var se *StageError
	if errors.As(err, &se) {
		return se.Code == CodeConfigMissing
	}
	return false
}

// DownstreamExit extracts the downstream exit code from a launch failure.
// Returns (code, true) when err is a LAUNCH_FAILURE carrying a non-zero
// exit status from a process that did start.
func DownstreamExit(err error) (int, bool) {
	var se *StageError
	if errors.As(err, &se) && se.Code == CodeLaunchFailure && se.ExitCode != 0 {
		return se.ExitCode, true
	}
	return 0, false
}
