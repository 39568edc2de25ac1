package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/handlescan/internal/model"
)

// CSVHeader is the first row written by CSVWriter.
var CSVHeader = []string{"Platform", "Status", "Confidence", "Bio / Public Info"}

// CSVWriter outputs one row per result for spreadsheets.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the results of report as CSV, in report order.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(CSVHeader); err != nil {
		return 0, err
	}
	for _, r := range report.Results {
		row := []string{r.Platform, string(r.Status), strconv.Itoa(r.Confidence), r.Signals.Bio}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
