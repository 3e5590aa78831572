package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/simcminmax/simboot/internal/config"
	"github.com/simcminmax/simboot/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded pipeline runs",
		Long: `List runs from the journal, newest first.

Example:
  simboot history
  simboot history --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs to show (0 for all)")

	return cmd
}

// runView is the JSON shape of a journal row.
type runView struct {
	ID            string `json:"id"`
	StartedAt     string `json:"started_at"`
	FinalState    string `json:"final_state"`
	FailureCode   string `json:"failure_code,omitempty"`
	ArtifactPath  string `json:"artifact_path,omitempty"`
	EngineVersion string `json:"engine_version,omitempty"`
	InputPath     string `json:"input_path,omitempty"`
	ExitCode      int    `json:"exit_code"`
	DurationSecs  int64  `json:"duration_seconds"`
}

func showHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	workdir, err := os.Getwd()
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot determine working directory", err)
	}
	cfg, err := config.Load(opts.Config, workdir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if cfg.Journal.Path == "" {
		return WrapExitError(ExitCommandError, "run journal is disabled in the config", nil)
	}

	path := resolvePath(workdir, cfg.Journal.Path)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("no journal at %s (no runs recorded yet)", path), nil)
	}

	j, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := j.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	if opts.Format == "json" {
		views := make([]runView, 0, len(runs))
		for _, r := range runs {
			views = append(views, runView{
				ID:            r.ID,
				StartedAt:     r.StartedAt.Format(time.RFC3339),
				FinalState:    r.FinalState,
				FailureCode:   r.FailureCode,
				ArtifactPath:  r.ArtifactPath,
				EngineVersion: r.EngineVersion,
				InputPath:     r.InputPath,
				ExitCode:      r.ExitCode,
				DurationSecs:  int64(r.FinishedAt.Sub(r.StartedAt).Seconds()),
			})
		}
		formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return formatter.Success(views)
	}

	printHistory(cmd.OutOrStdout(), runs)
	return nil
}

// printHistory writes the text listing. The printer localizes numbers
// the way the original tool localized its user-facing output.
func printHistory(w io.Writer, runs []journal.Run) {
	p := message.NewPrinter(language.English)

	if len(runs) == 0 {
		p.Fprintf(w, "No runs recorded.\n")
		return
	}
	p.Fprintf(w, "%d run(s), newest first:\n\n", len(runs))
	for _, r := range runs {
		status := r.FinalState
		if r.FailureCode != "" {
			status = fmt.Sprintf("%s (%s)", r.FinalState, r.FailureCode)
		}
		p.Fprintf(w, "%s  %-24s %s\n", r.StartedAt.Format("2006-01-02 15:04:05"), status, r.ID)
		if r.EngineVersion != "" {
			p.Fprintf(w, "    engine %s at %s\n", r.EngineVersion, r.ArtifactPath)
		}
		if r.InputPath != "" {
			p.Fprintf(w, "    input %s, exit %d, took %d seconds\n",
				r.InputPath, r.ExitCode, int64(r.FinishedAt.Sub(r.StartedAt).Seconds()))
		}
	}
}
