package report

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/handlescan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer writes a scan report to the destination it was created with.
type Writer interface {
	// Write renders report and returns the number of bytes written.
	Write(report *model.ScanReport) (int, error)
}

// MultiWriter writes the same report to several Writers. Our Writer
// renders reports, not bytes, so io.MultiWriter does not fit.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes report to every writer in order and stops at the first error.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var titleCaser = cases.Title(language.English)

// statusLabel turns "NOT FOUND" into "Not Found".
func statusLabel(s model.Status) string {
	return titleCaser.String(strings.ToLower(string(s)))
}

// truncate shortens s to at most maxRunes runes, marking the cut with "...".
func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// orDash returns "-" for an empty cell.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
