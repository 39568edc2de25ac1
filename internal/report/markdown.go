package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/handlescan/internal/confidence"
	"github.com/nao1215/handlescan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports as GitHub flavored Markdown with a
// mermaid pie chart of the result statuses.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders report as Markdown.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeResults(md, report)
	w.writeCorrelation(md, report)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by handlescan*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("handlescan report: `" + report.Handle + "`")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Handle", "`" + report.Handle + "`"},
			{"Scan ID", report.ID},
			{"Scan Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Millisecond).String()},
			{"Network", orDash(report.Network)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	s := report.Summary()

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows: [][]string{
			{"🟢 " + statusLabel(model.StatusFound), strconv.Itoa(s.Found)},
			{"⚪ " + statusLabel(model.StatusNotFound), strconv.Itoa(s.NotFound)},
			{"🔴 " + statusLabel(model.StatusError), strconv.Itoa(s.Errors)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Result Status Distribution"),
			piechart.WithShowData(true),
		)
		for _, c := range []struct {
			status model.Status
			count  int
		}{
			{model.StatusFound, s.Found},
			{model.StatusNotFound, s.NotFound},
			{model.StatusError, s.Errors},
		} {
			if c.count > 0 {
				chart.LabelAndIntValue(statusLabel(c.status), uint64(c.count))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.Errors > 0:
		md.Warningf("%d target(s) could not be probed. Their status is unknown, not absent.", s.Errors)
	case s.Found == 0:
		md.Note("No profile was found for this handle.")
	case len(report.Correlation) > 0:
		md.Importantf("%d bio(s) are shared across platforms.", len(report.Correlation))
	default:
		md.Tip("Every target answered.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Results")
	md.PlainText("")

	if len(report.Results) == 0 {
		md.PlainText("No targets were scanned.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Results))
	for i, r := range report.Results {
		info := r.Signals.Bio
		if r.Status == model.StatusError {
			info = r.ErrorDetail
		}
		rows[i] = []string{
			cell(r.Platform),
			string(r.Status),
			strconv.Itoa(r.Confidence) + "%",
			cell(r.URL),
			cell(orDash(truncate(info, 80))),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Platform", "Status", "Confidence", "URL", "Bio / Public Info"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range report.Found() {
		details := confidence.Explain(r)
		if len(r.Signals.Contacts.Emails) > 0 {
			details = append(details, "Emails: "+strings.Join(r.Signals.Contacts.Emails, ", "))
		}
		if len(r.Signals.Contacts.Phones) > 0 {
			details = append(details, "Phones: "+strings.Join(r.Signals.Contacts.Phones, ", "))
		}
		for _, link := range r.Signals.Links {
			details = append(details, "Link: "+link)
		}
		md.Details(r.Platform, strings.Join(details, "\n"))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeCorrelation(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Correlation")
	md.PlainText("")

	if len(report.Correlation) == 0 {
		md.PlainText("No correlations found.")
		md.PlainText("")
		return
	}

	bios := report.Correlation.Bios()
	rows := make([][]string, len(bios))
	for i, bio := range bios {
		rows[i] = []string{
			cell(truncate(bio, bioPreviewLength)),
			strings.Join(report.Correlation.Platforms(bio), ", "),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Bio", "Platforms"},
		Rows:   rows,
	})
	md.PlainText("")
}

// cell makes s safe for a single Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
