package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/nao1215/handlescan/internal/catalog"
	"github.com/nao1215/handlescan/internal/config"
	"github.com/nao1215/handlescan/internal/model"
	"github.com/spf13/cobra"
)

// NewTargetsCmd creates the targets command.
func NewTargetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List the platforms of the target catalog",
		Long: `Targets loads the target catalog the scan command would use and lists it.

Examples:
  # List the catalog in use
  handlescan targets

  # List a specific catalog as JSON
  handlescan targets --catalog ./platforms --json`,
		Args: cobra.NoArgs,
		RunE: runTargetsCmd,
	}

	cmd.Flags().String("catalog", "",
		"Target catalog directory (default: ./platforms, then the XDG config dir, then built-in)")
	cmd.Flags().StringSlice("only", nil, "Only list these targets")
	cmd.Flags().BoolP("json", "j", false, "Output the catalog as JSON")

	return cmd
}

// runTargetsCmd executes the targets command.
func runTargetsCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("catalog")
	if err != nil {
		return err
	}
	only, err := cmd.Flags().GetStringSlice("only")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	targets, source, err := catalog.Open(dir, config.CatalogCandidates()...)
	if err != nil {
		return fmt.Errorf("failed to load target catalog: %w", err)
	}
	targets = catalog.Filter(targets, only)

	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(targets)
	}

	fmt.Fprintf(out, "Target catalog: %s (%d targets)\n\n", source, len(targets))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEXISTS\tWEIGHT\tURL")
	for _, t := range targets {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			t.Name, t.ExpectedStatus(), formatWeight(t), t.URLTemplate)
	}
	return tw.Flush()
}

func formatWeight(t model.Target) string {
	return strconv.FormatFloat(t.ConfidenceWeight, 'f', 2, 64)
}
