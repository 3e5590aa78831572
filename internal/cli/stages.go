package cli

import (
	"github.com/spf13/cobra"

	"github.com/simcminmax/simboot/internal/pipeline"
)

// The per-stage commands run a prefix of the same state machine the run
// command walks, so they share its fail-fast and ordering behavior.

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "sync",
		Short:         "Synchronize the engine source tree",
		Long:          "Clone the engine source tree if absent, otherwise fast-forward it to the remote's latest state.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePipeline(rootOpts, cmd, "", pipeline.StateSyncing, false)
		},
	}
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "build",
		Short:         "Synchronize and build the engine",
		Long:          "Run the sync and build stages: update the source tree and compile the engine with the configured options.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePipeline(rootOpts, cmd, "", pipeline.StateBuilding, false)
		},
	}
}

// NewPatchCommand creates the patch command.
func NewPatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "patch",
		Short: "Sync, build and patch the settings override",
		Long: `Run the sync, build and patch stages. The settings override ends up
pointing at the freshly built engine executable; the analyzer is not
launched.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePipeline(rootOpts, cmd, "", pipeline.StatePatching, false)
		},
	}
}

// NewLaunchCommand creates the launch command.
func NewLaunchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "launch [input-file]",
		Short: "Launch the analyzer against the existing override",
		Long: `Skip sync, build and patch and launch the analyzer directly, using
whatever engine the settings override currently points at. The analyzer's
exit status is forwarded unchanged.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return executePipeline(rootOpts, cmd, input, pipeline.StateLaunching, true)
		},
	}
}
