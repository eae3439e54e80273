package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "remindme",
	Short: "Inspect @TODO comments the way the RemindMe action sees them",
	Long: `remindme scans source files for structured @TODO comments and prints
the issues the RemindMe GitHub Action would create from them.

A comment is picked up when it contains an @TODO: marker. The fields
@body:, @labels:, @assignees: and @milestones: may follow, each spanning
as many lines as needed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", defaultConfigFile, "path to the configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
