package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/handlescan/internal/catalog"
	"github.com/nao1215/handlescan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/handlescan.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a handlescan configuration file and target catalog",
		Long: `Initialize creates a .handlescan configuration file and a sample target
catalog in the current directory.

The configuration file documents every available setting. The catalog
directory receives one file per built-in platform, ready to be edited,
removed or extended.

Examples:
  # Create .handlescan and ./platforms
  handlescan init

  # Create the config file at a specific path, without a catalog
  handlescan init -o myconfig.yaml --no-catalog

  # Overwrite existing files
  handlescan init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")
	cmd.Flags().String("catalog-dir", catalog.DefaultDirName,
		"Directory receiving the sample target catalog")
	cmd.Flags().Bool("no-catalog", false,
		"Do not write the sample target catalog")

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
	catalogDir, err := cmd.Flags().GetString("catalog-dir")
	if err != nil {
		return err
	}
	noCatalog, err := cmd.Flags().GetBool("no-catalog")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/handlescan.yaml")
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

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)

	if !noCatalog {
		written, err := catalog.WriteSample(catalogDir, force)
		if err != nil {
			return fmt.Errorf("failed to write sample catalog: %w", err)
		}
		fmt.Fprintf(out, "Wrote %d target files to %s\n", len(written), catalogDir)
	}

	fmt.Fprintln(out, "\nEdit these files to configure:")
	fmt.Fprintln(out, "  - Probe timeout, concurrency and User-Agent")
	fmt.Fprintln(out, "  - The proxy or Tor daemon to route probes through")
	fmt.Fprintln(out, "  - Which platforms to scan and how much to trust each")

	return nil
}
