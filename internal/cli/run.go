package cli

import (
	"github.com/spf13/cobra"

	"github.com/simcminmax/simboot/internal/pipeline"
)

// NewRunCommand creates the run command - the full pipeline.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [input-file]",
		Short: "Sync, build, patch and launch",
		Long: `Run the full bootstrap pipeline: synchronize the engine source tree,
build the engine, patch the settings override to point at the fresh
executable, then launch the analyzer.

The optional input file argument is passed to the analyzer verbatim.
Without it the analyzer reads input.simc from the working directory.

Example:
  simboot run
  simboot run profiles/ret.simc --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return executePipeline(rootOpts, cmd, input, pipeline.StateLaunching, false)
		},
	}
	return cmd
}
