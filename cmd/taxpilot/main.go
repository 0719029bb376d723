// Command taxpilot runs scenario calculations and calendar expansion against
// a catalog file without a server.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/castlemilk/taxpilot/backend/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "taxpilot",
		Short:        "Tax scenario and deadline calendar CLI",
		Long:         "Calculates tax scenarios and expands deadline calendars from a taxpilot catalog file",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "catalog/config YAML (defaults to the built-in catalog)")

	root.AddCommand(versionCmd())
	root.AddCommand(calculateCmd())
	root.AddCommand(calendarCmd())
	root.AddCommand(configCmd())
	root.AddCommand(searchCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxpilot %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "go %s\n", bi.GoVersion)
			}
		},
	}
}

// loadConfig overlays the --config file and environment on the embedded
// defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
