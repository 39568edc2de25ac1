package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/handlescan/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool

	// version is recorded in the document when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indented output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// WithVersion records the handlescan version that produced the document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Document is the JSON shape written by JSONWriter: the scan report's own
// fields plus the status counts.
type Document struct {
	*model.ScanReport

	Summary model.Summary `json:"summary"`
	Version string        `json:"version,omitempty"`
}

// NewDocument wraps report with its summary.
func NewDocument(report *model.ScanReport, version string) Document {
	return Document{ScanReport: report, Summary: report.Summary(), Version: version}
}

// Write outputs report as a single JSON document followed by a newline.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	var (
		data []byte
		err  error
	)
	doc := NewDocument(report, w.version)
	if w.indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
