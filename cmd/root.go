package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/debtmap-go/debtmap/pkg/debt"
	"github.com/debtmap-go/debtmap/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "debtmap",
	Short:   "debtmap ranks technical debt across a codebase",
	Long:    "debtmap analyzes a codebase and produces a ranked list of technical-debt\nitems: complexity hot spots, dead code, duplication, god objects,\nboilerplate, and architectural smells, each scored and tiered so the\nworst offenders surface first.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *debt.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(debt.ExitGeneralError)
	}
}
