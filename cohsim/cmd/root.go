// Package cmd provides the command-line interface of cohsim.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Environment variables that provide flag defaults. They can be set in a .env
// file in the working directory.
const (
	envRecordDB    = "COHSIM_RECORD_DB"
	envMonitorPort = "COHSIM_MONITOR_PORT"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cohsim",
		Short: "cohsim simulates a MESI-coherent two-level cache hierarchy.",
		Long: `cohsim replays a script that configures a memory system made of ` +
			`chips with private L2 caches and a shared L3, then reads and ` +
			`writes memory. It reports the lines touched, their coherence ` +
			`states, and the time spent by each access.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
