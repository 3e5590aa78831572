package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simcminmax/simboot/internal/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a simboot config file against its schema",
		Long: `Check a config file against the embedded schema without running
anything. Without an argument the --config flag or simboot.yaml in the
working directory is checked.

Example:
  simboot validate
  simboot validate ./simboot.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config
			if len(args) == 1 {
				path = args[0]
			}
			return validateConfig(rootOpts, path, cmd)
		},
	}
	return cmd
}

func validateConfig(opts *RootOptions, path string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if path == "" {
		workdir, err := os.Getwd()
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot determine working directory", err)
		}
		path = filepath.Join(workdir, config.FileName)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("config file not found: %s", path), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read config", err)
	}

	if err := config.ValidateYAML(path, data); err != nil {
		if ferr := formatter.Error("SCHEMA", err.Error()); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "config is invalid", err)
	}
	return formatter.Success(fmt.Sprintf("%s is valid", path))
}
