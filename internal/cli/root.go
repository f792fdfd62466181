// Package cli is the command line surface of VirusDecode: reference
// metadata lookup, session validation, and alignment submission.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/virusdecode/virusdecode/internal/config"
	"github.com/virusdecode/virusdecode/internal/journal"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the VirusDecode CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()
	config.SetDefaults(v)

	cmd := &cobra.Command{
		Use:   "virusdecode",
		Short: "VirusDecode - viral sequence input and alignment submission",
		Long: `Assemble a reference sequence id plus named sequences and uploaded
files, submit them to the alignment service, and review the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
				return fmt.Errorf("bind flags: %w", err)
			}
			cfg, err := config.New(v)
			if err != nil {
				return err
			}
			opts.Config = cfg

			logLevel := slog.LevelInfo
			if opts.Verbose || cfg.Verbose {
				logLevel = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().String("api", config.DefaultAPI, "alignment service base URL")
	cmd.PersistentFlags().Duration("timeout", config.DefaultTimeout, "overall per-request timeout")
	cmd.PersistentFlags().String("journal", journal.MemoryDSN, "session journal DSN")

	// Add subcommands
	cmd.AddCommand(NewReferenceCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTabsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// timeoutOrDefault guards against a zero timeout from config.
func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return config.DefaultTimeout
	}
	return d
}
