package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nao1215/handlescan/internal/compare"
	"github.com/nao1215/handlescan/internal/config"
	"github.com/nao1215/handlescan/internal/database"
	"github.com/nao1215/handlescan/internal/model"
	"github.com/spf13/cobra"
)

// sinceLayout is the date format accepted by --since.
const sinceLayout = "2006-01-02"

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [handle]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays what changed between two scans of the same handle.

It retrieves scans from the history database and shows:
- Platforms where the profile appeared or disappeared
- Platforms that became unreachable
- Changed bios, confidence scores and page contents
- Bios that became shared across platforms

The comparison requires at least two scans of the handle in the database.
Use 'handlescan scan' to perform scans and save results.

Examples:
  # Compare the latest two scans of a handle
  handlescan compare johndoe

  # List all scans of a handle
  handlescan compare --list johndoe

  # Compare the latest scan with a specific one
  handlescan compare --with-scan-id 5 johndoe

  # Compare with the first scan since a date
  handlescan compare --since 2026-01-01 johndoe

  # Output the comparison as JSON
  handlescan compare --json johndoe

  # List all scanned handles
  handlescan compare --list-handles`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified handle")
	cmd.Flags().BoolP("list-handles", "L", false,
		"List all scanned handles in the database")

	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan on or after this date (format: YYYY-MM-DD)")

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
	cmd.MarkFlagsMutuallyExclusive("with-scan-id", "since")

	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data dir)")

	return cmd
}

// compareOptions are the parsed compare flags.
type compareOptions struct {
	handle     string
	withScanID int64
	since      string
	json       bool
	markdown   bool
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listHandles, err := cmd.Flags().GetBool("list-handles")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var handle string
	if !listHandles {
		if len(args) == 0 {
			return errors.New("handle is required (use --list-handles to see available handles)")
		}
		handle = args[0]
		if err := config.ValidateHandle(handle); err != nil {
			return err
		}
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.ReadOnlyOptions())
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return fmt.Errorf("%w (run 'handlescan scan' first)", err)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listHandles {
		return listScannedHandles(ctx, out, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, out, db, handle)
	}

	opts := compareOptions{handle: handle}
	if opts.withScanID, err = cmd.Flags().GetInt64("with-scan-id"); err != nil {
		return err
	}
	if opts.since, err = cmd.Flags().GetString("since"); err != nil {
		return err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}

	return runComparison(ctx, out, db, opts)
}

// listScannedHandles lists every handle with at least one stored scan.
func listScannedHandles(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	handles, err := db.ListScannedHandles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list handles: %w", err)
	}

	if len(handles) == 0 {
		fmt.Fprintln(out, "No scanned handles found in the database.")
		fmt.Fprintln(out, "\nUse 'handlescan scan <handle>' to scan a handle.")
		return nil
	}

	fmt.Fprintf(out, "Scanned handles (%d):\n\n", len(handles))
	for _, h := range handles {
		fmt.Fprintf(out, "  • %s\n", h)
	}
	fmt.Fprintln(out, "\nUse 'handlescan compare --list <handle>' to see the scan history of a handle.")
	return nil
}

// listScanHistory lists all stored scans of handle.
func listScanHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, handle string) error {
	history, err := db.GetScanHistoryWithMetadata(ctx, handle)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", handle)
		fmt.Fprintln(out, "\nUse 'handlescan scan' to scan this handle.")
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", handle, len(history))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tDate\tNetwork\tSummary")
	for _, meta := range history {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n",
			meta.ID,
			meta.StartedAt.Local().Format("2006-01-02 15:04:05"),
			orNA(meta.Network),
			formatSummary(meta.Summary),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nUse 'handlescan compare <handle>' to compare the latest two scans.")
	fmt.Fprintln(out, "Use 'handlescan compare --with-scan-id <id> <handle>' to compare with a specific scan.")
	return nil
}

// formatSummary renders result counts as "found/total" plus errors.
func formatSummary(s model.Summary) string {
	parts := []string{fmt.Sprintf("%d/%d found", s.Found, s.Total)}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	return strings.Join(parts, ", ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// runComparison picks the two scans to compare and prints the diff.
// The latest scan is always the current one.
func runComparison(ctx context.Context, out io.Writer, db *database.HistoryDB, opts compareOptions) error {
	reports, err := db.GetScanHistory(ctx, opts.handle)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}
	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", opts.handle)
	}
	if len(reports) < 2 && opts.withScanID == 0 && opts.since == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	current := reports[0]
	var previous *model.ScanReport

	switch {
	case opts.withScanID > 0:
		previous, err = db.GetScanReportByID(ctx, opts.withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", opts.withScanID, err)
		}
		if previous == nil {
			return fmt.Errorf("scan with ID %d not found", opts.withScanID)
		}
		if previous.Handle != opts.handle {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", opts.withScanID, previous.Handle, opts.handle)
		}

	case opts.since != "":
		since, err := time.ParseInLocation(sinceLayout, opts.since, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
		previous = firstSince(reports, since)
		if previous == nil {
			return fmt.Errorf("no scans found since %s", opts.since)
		}
		if previous == current {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", opts.since)
		}

	default:
		previous = reports[1]
	}

	diff := compare.Compare(previous, current)

	switch {
	case opts.json:
		return compare.WriteJSON(out, diff)
	case opts.markdown:
		return compare.WriteMarkdown(out, diff)
	default:
		return compare.WriteText(out, diff)
	}
}

// firstSince returns the oldest report started at or after since.
// reports are ordered newest first.
func firstSince(reports []*model.ScanReport, since time.Time) *model.ScanReport {
	for i := len(reports) - 1; i >= 0; i-- {
		if !reports[i].StartedAt.Before(since) {
			return reports[i]
		}
	}
	return nil
}
