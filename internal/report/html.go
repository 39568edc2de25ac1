package report

import (
	"bytes"
	"html/template"
	"io"
	"strings"

	"github.com/nao1215/handlescan/internal/model"
)

// Status colours of the dashboard.
const (
	ColorFound   = "#2ecc71"
	ColorError   = "#e74c3c"
	ColorNeutral = "#95a5a6"
)

// bioPreviewLength is how much of a correlated bio is shown.
const bioPreviewLength = 120

// StatusColor returns the dashboard colour of a status.
func StatusColor(s model.Status) string {
	switch s {
	case model.StatusFound:
		return ColorFound
	case model.StatusError:
		return ColorError
	default:
		return ColorNeutral
	}
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"color":   StatusColor,
	"preview": func(s string) string { return truncate(s, bioPreviewLength) },
	"join":    strings.Join,
	"lines":   lines,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>handlescan - {{.Handle}}</title>
<style>
body { background-color: #0e0e0e; color: #eaeaea; font-family: Arial, sans-serif; padding: 20px; }
h1 { color: #00ffff; }
a { color: #00bcd4; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th, td { border: 1px solid #333; padding: 10px; text-align: left; vertical-align: top; }
th { background-color: #1f1f1f; }
tr:nth-child(even) { background-color: #161616; }
.bio { max-width: 600px; word-wrap: break-word; font-size: 0.95em; }
.section { margin-top: 40px; }
</style>
</head>
<body>
<h1>handlescan - {{.Handle}}</h1>
<p>Scanned {{.StartedAt.Format "2006-01-02 15:04:05 MST"}}{{with .Network}} via {{.}}{{end}}.</p>
<div class="section">
<h2>Scan Results</h2>
<table>
<tr><th>Platform</th><th>Status</th><th>Confidence</th><th>Bio / Public Info / Contacts</th></tr>
{{- range .Results}}
<tr>
<td><a href="{{.URL}}">{{.Platform}}</a></td>
<td style="color:{{color .Status}}; font-weight:bold;">{{.Status}}</td>
<td>{{.Confidence}}%</td>
<td class="bio">{{range $i, $l := lines .Signals.Bio}}{{if $i}}<br>{{end}}{{$l}}{{end}}
{{- with .Signals.Contacts.Emails}}<br><strong>Emails:</strong> {{join . ", "}}{{end}}
{{- with .Signals.Contacts.Phones}}<br><strong>Phones:</strong> {{join . ", "}}{{end}}
{{- with .ErrorDetail}}<em>{{.}}</em>{{end}}</td>
</tr>
{{- end}}
</table>
</div>
<div class="section">
<h2>Correlation Analysis</h2>
<ul>
{{- range .Correlations}}
<li><strong>{{preview .Bio}}</strong> Platforms: {{join .Platforms ", "}}</li>
{{- else}}
<li>No correlations found.</li>
{{- end}}
</ul>
</div>
</body>
</html>
`))

// lines splits a bio on newlines so each line is escaped on its own.
func lines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type correlationView struct {
	Bio       string
	Platforms []string
}

type htmlView struct {
	*model.ScanReport
	Correlations []correlationView
}

// HTMLWriter outputs the dashboard page of a report. All report text is
// escaped by html/template.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{baseWriter: newBaseWriter(output)}
}

// Write renders report as a standalone HTML page.
func (w *HTMLWriter) Write(report *model.ScanReport) (int, error) {
	view := htmlView{ScanReport: report}
	for _, bio := range report.Correlation.Bios() {
		view.Correlations = append(view.Correlations, correlationView{
			Bio:       bio,
			Platforms: report.Correlation.Platforms(bio),
		})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
