package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/virusdecode/virusdecode/internal/session"
)

// NewValidateCommand creates the session file validation command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "validate <session.yaml>",
		Short:         "Validate a session file without submitting it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = f.Failure(err.Error())
		return WrapExitError(ExitCommandError, "read session file", err)
	}

	if err := session.ValidateInput(data); err != nil {
		_ = f.Failure(err.Error())
		return WrapExitError(ExitFailure, "invalid session file", err)
	}

	return f.Success(map[string]string{"file": path},
		fmt.Sprintf("%s is a valid session file", path))
}
