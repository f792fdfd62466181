package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/virusdecode/virusdecode/internal/api"
)

// NewReferenceCommand creates the reference lookup command.
func NewReferenceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reference <sequence-id>",
		Short: "Look up reference sequence metadata",
		Long: `Resolve a reference sequence id (e.g. an NCBI accession like
NC_045512.2) to descriptive metadata from the alignment service.

Example:
  virusdecode reference NC_045512.2
  virusdecode reference NC_045512.2 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReference(rootOpts, args[0], cmd)
		},
	}
}

func runReference(opts *RootOptions, sequenceID string, cmd *cobra.Command) error {
	client := api.NewClient(opts.Config.API,
		api.WithTimeout(timeoutOrDefault(opts.Config.Timeout)))

	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOrDefault(opts.Config.Timeout))
	defer cancel()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	fields, err := client.LookupReference(ctx, sequenceID)
	if err != nil {
		_ = f.Failure(err.Error())
		return WrapExitError(ExitFailure, "reference lookup failed", err)
	}

	type kv struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	data := make([]kv, 0, len(fields))
	for _, fl := range fields {
		data = append(data, kv{Key: fl.Key, Value: fl.Value})
	}
	return f.Success(data, api.FormatFields(fields))
}
