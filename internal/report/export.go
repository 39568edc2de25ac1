package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/handlescan/internal/model"
)

// Export file names written by ExportDir.
const (
	ExportJSONFile     = "results.json"
	ExportCSVFile      = "report.csv"
	ExportHTMLFile     = "report.html"
	ExportMarkdownFile = "report.md"
)

// ExportDir writes results.json, report.csv, report.html and report.md
// for report under dir/<handle>/ and returns that directory.
func ExportDir(dir string, report *model.ScanReport) (string, error) {
	out := filepath.Join(dir, exportDirName(report.Handle))
	if err := os.MkdirAll(out, 0o750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	files := []struct {
		name   string
		writer func(io.Writer) Writer
	}{
		{ExportJSONFile, func(w io.Writer) Writer { return NewJSONWriter(w, WithPrettyPrint()) }},
		{ExportCSVFile, func(w io.Writer) Writer { return NewCSVWriter(w) }},
		{ExportHTMLFile, func(w io.Writer) Writer { return NewHTMLWriter(w) }},
		{ExportMarkdownFile, func(w io.Writer) Writer { return NewMarkdownWriter(w) }},
	}

	for _, f := range files {
		if err := writeFile(filepath.Join(out, f.name), report, f.writer); err != nil {
			return "", err
		}
	}
	return out, nil
}

func writeFile(path string, report *model.ScanReport, newWriter func(io.Writer) Writer) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is built from the export directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err := newWriter(f).Write(report); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// exportDirName keeps a handle from escaping the export directory.
func exportDirName(handle string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, handle)
	if name == "" || name == "." || name == ".." {
		return "_" + name
	}
	return name
}
