package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"car-evaluator/cmd"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "car-evaluator",
		Short: "Used-car price checker for polovniautomobili.com",
		Long: `car-evaluator scrapes comparable used-car listings, normalizes them, and
tells you whether an asking price is below or above the market.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		cmd.NewEvaluateCmd(),
		cmd.NewAnalyzeCmd(),
		cmd.NewServeCmd(version),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("car-evaluator version %s\n", version)
		},
	}
}
