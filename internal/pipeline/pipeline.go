package pipeline

import (
	"context"
	"log/slog"
)

// SourceControlClient is the narrow contract to the engine's source tree.
type SourceControlClient interface {
	// EnsurePresent makes sure a local clone exists, creating parent
	// directories as needed. Reports whether a fresh clone was created.
	EnsurePresent(ctx context.Context) (created bool, err error)

	// UpdateToLatest fetches and fast-forwards an existing clone to the
	// remote's latest state.
	UpdateToLatest(ctx context.Context) error
}

// BuildSystemClient is the narrow contract to the engine's build tooling.
type BuildSystemClient interface {
	// Compile builds the engine from the synchronized source tree and
	// returns the absolute path of the resulting executable.
	Compile(ctx context.Context) (artifact string, err error)
}

// VersionProber optionally reports the version of a built artifact.
// Probe failures are diagnostic only and never fail the pipeline.
type VersionProber interface {
	Probe(ctx context.Context, artifact string) (version string, err error)
}

// ConfigPatcher rewrites the settings override to reference an artifact.
type ConfigPatcher interface {
	// Apply points the override's artifact key at path, preserving every
	// other line byte for byte. ErrMissing-class failures mean no
	// override or template file exists at all.
	Apply(path string) error

	// Missing reports whether an Apply error means the override and
	// template are both absent, as opposed to the key not being found.
	Missing(err error) bool
}

// Launcher runs the downstream analysis program.
type Launcher interface {
	// Launch invokes the downstream program with the resolved input path
	// and blocks until it terminates. A non-nil error means the process
	// could not be started; otherwise the process's exit code is
	// returned, zero or not.
	Launch(ctx context.Context, inputPath string) (exitCode int, err error)
}

// Deps bundles the pipeline's collaborators.
type Deps struct {
	Source   SourceControlClient
	Build    BuildSystemClient
	Prober   VersionProber // optional
	Patcher  ConfigPatcher
	Launcher Launcher
}

// Result describes a finished run, successful or not.
type Result struct {
	FinalState    State
	ArtifactPath  string
	EngineVersion string
	InputPath     string
	ExitCode      int
}

// Pipeline executes the sync/build/patch/launch sequence.
type Pipeline struct {
	deps Deps
}

// New creates a pipeline with the given collaborators.
func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Run executes the full pipeline for one invocation.
func (p *Pipeline) Run(ctx context.Context, inv Invocation) (*Result, error) {
	return p.RunThrough(ctx, inv, StateLaunching)
}

// RunThrough executes the pipeline from START up to and including the
// stage named by last, then stops. last must be one of SYNCING,
// BUILDING, PATCHING or LAUNCHING. Used by the per-stage subcommands; a
// prefix run still walks the same state machine, so fail-fast and
// ordering behavior are identical to a full run.
func (p *Pipeline) RunThrough(ctx context.Context, inv Invocation, last State) (*Result, error) {
	m := NewMachine()
	res := &Result{}

	fail := func(code FailureCode, msg string, err error) (*Result, error) {
		stage := m.Current()
		if terr := m.To(StateFailed); terr != nil {
			// Terminal-state bookkeeping never trumps the real failure.
			slog.Error("state machine error", "error", terr)
		}
		res.FinalState = StateFailed
		return res, NewStageError(stage, code, msg, err)
	}

	// Sync.
	if err := m.To(StateSyncing); err != nil {
		return nil, err
	}
	slog.Info("synchronizing engine source")
	created, err := p.deps.Source.EnsurePresent(ctx)
	if err != nil {
		return fail(CodeSyncFailure, "failed to obtain engine source", err)
	}
	if created {
		slog.Info("cloned engine source")
	} else {
		if err := p.deps.Source.UpdateToLatest(ctx); err != nil {
			return fail(CodeSyncFailure, "failed to update engine source", err)
		}
		slog.Info("engine source up to date")
	}
	if last == StateSyncing {
		return p.finish(m, res)
	}

	// Build.
	if err := m.To(StateBuilding); err != nil {
		return nil, err
	}
	slog.Info("building engine")
	artifact, err := p.deps.Build.Compile(ctx)
	if err != nil {
		return fail(CodeBuildFailure, "engine build failed", err)
	}
	res.ArtifactPath = artifact
	slog.Info("engine built", "artifact", artifact)
	if p.deps.Prober != nil {
		version, err := p.deps.Prober.Probe(ctx, artifact)
		if err != nil {
			slog.Warn("could not determine engine version", "error", err)
		} else {
			res.EngineVersion = version
			slog.Info("engine version", "version", version)
		}
	}
	if last == StateBuilding {
		return p.finish(m, res)
	}

	// Patch.
	if err := m.To(StatePatching); err != nil {
		return nil, err
	}
	slog.Info("patching settings override", "artifact", artifact)
	if err := p.deps.Patcher.Apply(artifact); err != nil {
		if p.deps.Patcher.Missing(err) {
			return fail(CodeConfigMissing, "no settings override or template to patch", err)
		}
		return fail(CodePatchFailure, "failed to patch settings override", err)
	}
	if last == StatePatching {
		return p.finish(m, res)
	}

	// Launch.
	return p.dispatch(ctx, m, res, inv)
}

// Dispatch skips sync, build and patch and launches the downstream
// program against the existing override. The machine still walks every
// intermediate state so DONE remains reachable only through the full
// forward path.
func (p *Pipeline) Dispatch(ctx context.Context, inv Invocation) (*Result, error) {
	m := NewMachine()
	res := &Result{}
	for _, s := range []State{StateSyncing, StateBuilding, StatePatching} {
		if err := m.To(s); err != nil {
			return nil, err
		}
	}
	return p.dispatch(ctx, m, res, inv)
}

func (p *Pipeline) dispatch(ctx context.Context, m *Machine, res *Result, inv Invocation) (*Result, error) {
	if err := m.To(StateLaunching); err != nil {
		return nil, err
	}
	input := inv.ResolveInput()
	res.InputPath = input
	slog.Info("launching analyzer", "input", input)
	code, err := p.deps.Launcher.Launch(ctx, input)
	if err != nil {
		stage := m.Current()
		_ = m.To(StateFailed)
		res.FinalState = StateFailed
		return res, NewStageError(stage, CodeLaunchFailure, "failed to start analyzer", err)
	}
	res.ExitCode = code
	if code != 0 {
		stage := m.Current()
		_ = m.To(StateFailed)
		res.FinalState = StateFailed
		serr := NewStageError(stage, CodeLaunchFailure, "analyzer exited non-zero", nil)
		serr.ExitCode = code
		return res, serr
	}
	return p.finish(m, res)
}

func (p *Pipeline) finish(m *Machine, res *Result) (*Result, error) {
	// A prefix run ends DONE without walking the remaining stages; the
	// machine only enforces order for stages that actually execute.
	if m.Current() == StateLaunching {
		if err := m.To(StateDone); err != nil {
			return nil, err
		}
	}
	res.FinalState = StateDone
	return res, nil
}
