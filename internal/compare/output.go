package compare

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
)

const dateLayout = "2006-01-02 15:04:05"

// WriteJSON writes d as indented JSON.
func WriteJSON(w io.Writer, d *Diff) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteText writes d for the terminal.
func WriteText(w io.Writer, d *Diff) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Scan Comparison: %s\n", d.Handle)
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Previous scan: %s  (%s)\n", d.Previous.StartedAt.Format(dateLayout), d.Previous.ID)
	fmt.Fprintf(&sb, "Current scan:  %s  (%s)\n", d.Current.StartedAt.Format(dateLayout), d.Current.ID)

	sb.WriteString("\nSummary:\n")
	fmt.Fprintf(&sb, "  %-10s  %-10s  %-10s  %s\n", "Status", "Previous", "Current", "Change")
	sb.WriteString("  " + strings.Repeat("-", 45) + "\n")
	for _, row := range summaryRows(d) {
		fmt.Fprintf(&sb, "  %-10s  %-10d  %-10d  %s\n", row.label, row.before, row.after, formatDelta(row.after-row.before))
	}

	if !d.HasChanges() {
		sb.WriteString("\nNo changes since the previous scan.\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	list := func(title, marker string, platforms []string) {
		if len(platforms) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s (%d):\n", title, len(platforms))
		for _, p := range platforms {
			fmt.Fprintf(&sb, "  [%s] %s\n", marker, p)
		}
	}
	list("Newly Found", "+", d.NewlyFound)
	list("No Longer Found", "-", d.NoLongerFound)
	list("Unreachable", "?", d.Unreachable)
	list("Page Content Changed", "~", d.ContentChanges)

	if len(d.BioChanges) > 0 {
		fmt.Fprintf(&sb, "\nBio Changes (%d):\n", len(d.BioChanges))
		for _, c := range d.BioChanges {
			fmt.Fprintf(&sb, "  [~] %s\n", c.Platform)
			fmt.Fprintf(&sb, "      before: %q\n", c.Before)
			fmt.Fprintf(&sb, "      after:  %q\n", c.After)
		}
	}
	if len(d.ConfidenceChanges) > 0 {
		fmt.Fprintf(&sb, "\nConfidence Changes (%d):\n", len(d.ConfidenceChanges))
		for _, c := range d.ConfidenceChanges {
			fmt.Fprintf(&sb, "  [~] %s: %d%% -> %d%% (%s)\n", c.Platform, c.Before, c.After, formatDelta(c.Delta()))
		}
	}
	if len(d.NewCorrelations) > 0 {
		fmt.Fprintf(&sb, "\nNew Correlations (%d):\n", len(d.NewCorrelations))
		for _, c := range d.NewCorrelations {
			fmt.Fprintf(&sb, "  [+] %q -> %s\n", c.Bio, strings.Join(c.Platforms, ", "))
		}
	}
	if d.Unchanged > 0 {
		fmt.Fprintf(&sb, "\nUnchanged: %d profiles\n", d.Unchanged)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteMarkdown writes d as a Markdown document.
func WriteMarkdown(w io.Writer, d *Diff) error {
	md := markdown.NewMarkdown(w)

	md.H1("Scan Comparison: `" + d.Handle + "`")
	md.PlainText("")

	rows := [][]string{
		{"Date", d.Previous.StartedAt.Format(dateLayout), d.Current.StartedAt.Format(dateLayout), "-"},
	}
	for _, row := range summaryRows(d) {
		rows = append(rows, []string{
			row.label, strconv.Itoa(row.before), strconv.Itoa(row.after), formatDelta(row.after - row.before),
		})
	}
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	if !d.HasChanges() {
		md.Note("No changes since the previous scan.")
		return md.Build()
	}

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		md.H2(fmt.Sprintf("%s (%d)", title, len(items)))
		md.PlainText("")
		md.BulletList(items...)
		md.PlainText("")
	}
	section("Newly Found", d.NewlyFound)
	section("No Longer Found", d.NoLongerFound)
	section("Unreachable", d.Unreachable)
	section("Page Content Changed", d.ContentChanges)

	if len(d.BioChanges) > 0 {
		md.H2(fmt.Sprintf("Bio Changes (%d)", len(d.BioChanges)))
		md.PlainText("")
		bioRows := make([][]string, len(d.BioChanges))
		for i, c := range d.BioChanges {
			bioRows[i] = []string{c.Platform, cell(c.Before), cell(c.After)}
		}
		md.Table(markdown.TableSet{Header: []string{"Platform", "Before", "After"}, Rows: bioRows})
		md.PlainText("")
	}
	if len(d.ConfidenceChanges) > 0 {
		items := make([]string, len(d.ConfidenceChanges))
		for i, c := range d.ConfidenceChanges {
			items[i] = fmt.Sprintf("%s: %d%% → %d%% (%s)", c.Platform, c.Before, c.After, formatDelta(c.Delta()))
		}
		section("Confidence Changes", items)
	}
	if len(d.NewCorrelations) > 0 {
		md.Importantf("%d bio(s) are now shared across platforms.", len(d.NewCorrelations))
		md.PlainText("")
		items := make([]string, len(d.NewCorrelations))
		for i, c := range d.NewCorrelations {
			items[i] = fmt.Sprintf("%q: %s", c.Bio, strings.Join(c.Platforms, ", "))
		}
		section("New Correlations", items)
	}
	if d.Unchanged > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d profiles unchanged*", d.Unchanged)
	}

	return md.Build()
}

type summaryRow struct {
	label         string
	before, after int
}

func summaryRows(d *Diff) []summaryRow {
	return []summaryRow{
		{"Found", d.Previous.Summary.Found, d.Current.Summary.Found},
		{"Not Found", d.Previous.Summary.NotFound, d.Current.Summary.NotFound},
		{"Error", d.Previous.Summary.Errors, d.Current.Summary.Errors},
		{"Total", d.Previous.Summary.Total, d.Current.Summary.Total},
	}
}

func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
