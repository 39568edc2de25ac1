package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for handlescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handlescan",
		Short: "Find a handle across platforms and correlate its public signals",
		Long: `handlescan checks whether a handle exists on a catalog of platforms,
extracts the public information of every profile it finds (bio, external
links, emails, phone numbers) and correlates identical bios across platforms.

Probes go out directly by default. Use --tor or --proxy to route them
through Tor or a proxy. Finished scans are kept in a local history database
that the compare and serve commands read.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewTargetsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute loads .env from the working directory, then runs the root command.
// Variables already set in the environment win over .env.
func Execute() {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
