package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/virusdecode/virusdecode/internal/api"
	"github.com/virusdecode/virusdecode/internal/payload"
	"github.com/virusdecode/virusdecode/internal/pipeline"
	"github.com/virusdecode/virusdecode/internal/session"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	Trace bool
}

// NewSubmitCommand creates the alignment submission command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{}

	cmd := &cobra.Command{
		Use:   "submit <session.yaml>",
		Short: "Submit a session file for alignment",
		Long: `Load a session file, assemble the alignment request from its
reference id, sequences, and attached files, submit it, and print the
alignment response.

Example:
  virusdecode submit session.yaml
  virusdecode submit session.yaml --trace`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "dump the session journal after submission")
	return cmd
}

func runSubmit(rootOpts *RootOptions, opts *SubmitOptions, path string, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

	in, err := session.LoadInput(path)
	if err != nil {
		_ = f.Failure(err.Error())
		return WrapExitError(ExitCommandError, "load session file", err)
	}

	client := api.NewClient(rootOpts.Config.API,
		api.WithTimeout(timeoutOrDefault(rootOpts.Config.Timeout)))

	s, err := session.New(client,
		session.WithJournalDSN(rootOpts.Config.Journal),
		session.WithBuildOptions(payload.WithCollisionWarning(func(name, dropped, kept string) {
			slog.Warn("duplicate sequence name, keeping the later value",
				"name", name)
		})))
	if err != nil {
		return WrapExitError(ExitCommandError, "open session", err)
	}
	defer func() { _ = s.Close() }()

	ctx := cmd.Context()
	if err := s.ApplyInput(ctx, in); err != nil {
		_ = f.Failure(err.Error())
		return WrapExitError(ExitCommandError, "apply session file", err)
	}

	done, err := s.Submit(ctx)
	if err != nil {
		_ = f.Failure(err.Error())
		return WrapExitError(ExitFailure, "submit", err)
	}
	out := <-done

	if opts.Trace {
		if err := printTrace(s, cmd); err != nil {
			return err
		}
	}

	if out.State != pipeline.StateSucceeded {
		_ = f.Failure(out.Err)
		return NewExitError(ExitFailure, out.Err)
	}

	return f.Success(out.Result, string(out.Result))
}

func printTrace(s *session.Session, cmd *cobra.Command) error {
	events, err := s.Trace(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "read session journal", err)
	}
	for _, ev := range events {
		if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "%4d  %-20s %s\n", ev.Seq, ev.Kind, ev.Detail); err != nil {
			return err
		}
	}
	return nil
}
