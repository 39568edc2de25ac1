package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/handlescan/internal/confidence"
	"github.com/nao1215/handlescan/internal/model"
)

const ruleWidth = 70

// SimpleWriter renders a plain text report for the terminal.
// It uses no ANSI colors so the output can be piped into files.
type SimpleWriter struct {
	baseWriter

	// foundOnly hides NOT FOUND results.
	foundOnly bool

	// verbose lists the external links of found profiles.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithFoundOnly hides results whose profile does not exist. Errors are
// always shown.
func WithFoundOnly(foundOnly bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.foundOnly = foundOnly
	}
}

// WithVerbose lists external links under each found profile.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders report as text.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeResults(&sb, report)
	w.writeSummary(&sb, report)
	w.writeCorrelation(&sb, report)

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                        HANDLESCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Handle:    %s\n", report.Handle)
	fmt.Fprintf(sb, "Scan ID:   %s\n", report.ID)
	fmt.Fprintf(sb, "Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:  %s\n", report.Duration().Round(time.Millisecond))
	fmt.Fprintf(sb, "Network:   %s\n", orDash(report.Network))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeResults(sb *strings.Builder, report *model.ScanReport) {
	section(sb, "RESULTS")

	shown := 0
	for _, r := range report.Results {
		if w.foundOnly && r.Status == model.StatusNotFound {
			continue
		}
		shown++

		fmt.Fprintf(sb, "%-20s %-10s %3d%%\n", r.Platform, r.Status, r.Confidence)
		switch r.Status {
		case model.StatusFound:
			fmt.Fprintf(sb, "  URL:    %s\n", r.URL)
			for _, reason := range confidence.Explain(r) {
				fmt.Fprintf(sb, "  - %s\n", reason)
			}
			if r.Signals.HasBio() {
				fmt.Fprintf(sb, "  Bio:    %s\n", strings.ReplaceAll(r.Signals.Bio, "\n", " "))
			}
			if len(r.Signals.Contacts.Emails) > 0 {
				fmt.Fprintf(sb, "  Emails: %s\n", strings.Join(r.Signals.Contacts.Emails, ", "))
			}
			if len(r.Signals.Contacts.Phones) > 0 {
				fmt.Fprintf(sb, "  Phones: %s\n", strings.Join(r.Signals.Contacts.Phones, ", "))
			}
			if w.verbose {
				for _, link := range r.Signals.Links {
					fmt.Fprintf(sb, "  Link:   %s\n", link)
				}
			}
		case model.StatusError:
			fmt.Fprintf(sb, "  Error:  %s\n", r.ErrorDetail)
		}
	}

	if shown == 0 {
		sb.WriteString("  No results\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.ScanReport) {
	section(sb, "SUMMARY")

	s := report.Summary()
	fmt.Fprintf(sb, "  %-10s %d\n", statusLabel(model.StatusFound)+":", s.Found)
	fmt.Fprintf(sb, "  %-10s %d\n", statusLabel(model.StatusNotFound)+":", s.NotFound)
	fmt.Fprintf(sb, "  %-10s %d\n", statusLabel(model.StatusError)+":", s.Errors)
	fmt.Fprintf(sb, "  %-10s %d\n", "Total:", s.Total)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCorrelation(sb *strings.Builder, report *model.ScanReport) {
	section(sb, "CORRELATION")

	if len(report.Correlation) == 0 {
		sb.WriteString("  No correlations found.\n\n")
		return
	}
	for _, bio := range report.Correlation.Bios() {
		fmt.Fprintf(sb, "  %q\n", truncate(bio, bioPreviewLength))
		fmt.Fprintf(sb, "    -> %s\n", strings.Join(report.Correlation.Platforms(bio), ", "))
	}
	sb.WriteString("\n")
}
