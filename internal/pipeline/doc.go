// Package pipeline implements the simboot bootstrap pipeline.
//
// The pipeline is the heart of simboot - it synchronizes the engine
// source tree, compiles it, patches the local settings override to point
// at the fresh artifact, and dispatches the downstream analyzer.
//
// ARCHITECTURE:
//
// Linear State Machine:
// Execution follows a strictly sequential state machine:
//
//	START -> SYNCING -> BUILDING -> PATCHING -> LAUNCHING -> DONE
//
// Any stage transitions directly to the terminal FAILED state on error.
// No stage is re-entered, no stage overlaps another, and DONE/FAILED are
// the only terminal states. Later stages are never observed after an
// earlier failure: a build error leaves the override file untouched and
// never spawns the downstream process.
//
// Collaborators:
// The pipeline depends only on narrow contracts - SourceControlClient,
// BuildSystemClient, ConfigPatcher, Launcher - never on tool-specific
// invocation detail. Production wiring lives in internal/gitclient,
// internal/buildsys, internal/override and internal/launch; tests supply
// fakes to verify ordering and fail-fast properties.
//
// Failure policy:
// Every failure is fatal and fail-fast. No stage retries, compensates,
// or recovers. Each failure carries a StageError with a stable code
// (SYNC_FAILURE, BUILD_FAILURE, CONFIG_MISSING, PATCH_FAILURE,
// LAUNCH_FAILURE) identifying the stage at which output ceased.
package pipeline
