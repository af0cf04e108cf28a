package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/riskhound/riskhound/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/riskhound.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new riskhound configuration file",
		Long: `Initialize creates a new .riskhound configuration file in the current directory.

The generated file includes:
- Default settings for timeouts, workers, and the subpage cap
- Commented examples for the detection lists (TLDs, brands, registrars)
- Blacklist and keyword file locations

Examples:
  # Create .riskhound in current directory
  riskhound init

  # Create config file at a specific path
  riskhound init -o myconfig.yaml

  # Force overwrite existing file
  riskhound init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.ConfigFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/riskhound.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to adjust settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Timeouts, worker count, and the subpage cap")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Suspicious TLD, brand, and registrar lists")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Blacklist and keyword dictionary locations")

	return nil
}
