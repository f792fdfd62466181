// Command virusdecode submits viral sequence sessions to the
// alignment service and prints the results.
package main

import (
	"fmt"
	"os"

	"github.com/virusdecode/virusdecode/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
