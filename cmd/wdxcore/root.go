// Package wdxcore is the operator/debugging CLI shell around the core
// service: it is explicitly not the front-end contract (that is consumed by
// callers such as a JSON:API bridge, out of scope here) but a thin command
// line for starting the service and inspecting the loaded device model.
package wdxcore

import (
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

var rootCmd = &cobra.Command{
	Use:   "wdxcore",
	Short: "Operate and inspect the wdx-core parameter/method service",
	Long: `wdxcore starts the core device parameter-and-method service and
provides operator commands for inspecting the loaded WDM model and
registered devices.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "wdxcore version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
