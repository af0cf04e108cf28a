// Package main provides the entry point for the riskhound CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for riskhound.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "riskhound",
		Short: "Batch URL risk assessment tool",
		Long: `riskhound assesses the risk of URLs hosting illegal or fraudulent content.

For each target it extracts domain, WHOIS, page content, certificate,
network, and subpage features, then scores them into LOW, MEDIUM, or
HIGH risk tiers with an itemized factor list.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
