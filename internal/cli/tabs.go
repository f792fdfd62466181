package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/virusdecode/virusdecode/internal/router"
)

// NewTabsCommand creates the command listing the result viewer tabs.
func NewTabsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tabs",
		Short:         "List the result viewer tabs in display order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			names := make([]string, 0, len(router.Tabs()))
			for _, t := range router.Tabs() {
				names = append(names, t.String())
			}
			return f.Success(names, strings.Join(names, "\n"))
		},
	}
}
