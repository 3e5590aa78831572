package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/simcminmax/simboot/internal/buildsys"
	"github.com/simcminmax/simboot/internal/config"
	"github.com/simcminmax/simboot/internal/gitclient"
	"github.com/simcminmax/simboot/internal/journal"
	"github.com/simcminmax/simboot/internal/launch"
	"github.com/simcminmax/simboot/internal/override"
	"github.com/simcminmax/simboot/internal/pipeline"
)

// buildPipeline wires the production collaborators from the loaded
// configuration. Relative override/template paths resolve against the
// captured working directory; the clone path was already expanded by
// config.Load.
func buildPipeline(cfg config.Config, workdir string) *pipeline.Pipeline {
	mk := &buildsys.Make{
		SourceDir: cfg.Repo.Path,
		BuildDir:  cfg.Build.Dir,
		Profile:   cfg.Build.Profile,
		OpenSSL:   cfg.Build.OpenSSL,
		Jobs:      cfg.Build.Jobs,
	}
	return pipeline.New(pipeline.Deps{
		Source: gitclient.New(cfg.Repo.Path, cfg.Repo.URL),
		Build:  mk,
		Prober: mk,
		Patcher: &override.Patcher{
			Path:         resolvePath(workdir, cfg.Override.Path),
			TemplatePath: resolvePath(workdir, cfg.Override.Template),
			Key:          cfg.Override.Key,
		},
		Launcher: &launch.Runner{
			Command: cfg.Downstream.Command,
			Dir:     workdir,
		},
	})
}

func resolvePath(workdir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workdir, path)
}

// executePipeline is the shared body of the pipeline-running commands.
// inputArg is the optional positional input path ("" when absent); for
// dispatch-only commands the sync/build/patch stages are skipped.
func executePipeline(opts *RootOptions, cmd *cobra.Command, inputArg string, last pipeline.State, dispatchOnly bool) error {
	setupLogging(opts.Verbose)

	// The working directory snapshot is taken once, here, and threaded
	// through the run; nothing reads ambient process state mid-pipeline.
	workdir, err := os.Getwd()
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot determine working directory", err)
	}
	cfg, err := config.Load(opts.Config, workdir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	inv := pipeline.Invocation{WorkDir: workdir, InputPath: inputArg}
	p := buildPipeline(cfg, workdir)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	started := time.Now()
	var res *pipeline.Result
	var runErr error
	if dispatchOnly {
		res, runErr = p.Dispatch(ctx, inv)
	} else {
		res, runErr = p.RunThrough(ctx, inv, last)
	}
	recordRun(ctx, cfg, workdir, started, time.Now(), res, runErr)

	if runErr != nil {
		if code, ok := pipeline.DownstreamExit(runErr); ok {
			return &ExitError{Code: code, Message: "analyzer reported failure", Err: runErr}
		}
		return WrapExitError(ExitFailure, "pipeline failed", runErr)
	}
	return nil
}

// recordRun appends the run outcome to the journal. Best-effort: any
// journal problem is logged and swallowed so telemetry never fails a run.
func recordRun(ctx context.Context, cfg config.Config, workdir string, started, finished time.Time, res *pipeline.Result, runErr error) {
	if cfg.Journal.Path == "" {
		return
	}
	j, err := journal.Open(resolvePath(workdir, cfg.Journal.Path))
	if err != nil {
		slog.Warn("run journal unavailable", "error", err)
		return
	}
	defer j.Close()

	run := journal.Run{
		ID:         journal.NewRunID(),
		StartedAt:  started,
		FinishedAt: finished,
		FinalState: string(pipeline.StateFailed),
	}
	if res != nil {
		run.FinalState = string(res.FinalState)
		run.ArtifactPath = res.ArtifactPath
		run.EngineVersion = res.EngineVersion
		run.InputPath = res.InputPath
		run.ExitCode = res.ExitCode
	}
	var se *pipeline.StageError
	if errors.As(runErr, &se) {
		run.FailureCode = string(se.Code)
	}
	if err := j.WriteRun(ctx, run); err != nil {
		slog.Warn("failed to record run", "error", err)
	}
}
