// Package main provides the entrypoint for the OneJourney API server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "onejourney-api"

var rootCmd = &cobra.Command{
	Use:   "onejourney-api",
	Short: "OneJourney smart mobility API",
	Long: `OneJourney plans multimodal trips, pays for them from a travel wallet,
tracks weekly travel challenges and answers travel questions.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (built %s)\n", serviceName, Version, BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
