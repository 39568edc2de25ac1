// Package report renders a model.ScanReport for people and tools.
//
// Writers:
//   - SimpleWriter: terminal text with the reasons behind each score
//   - JSONWriter: the full report for tool integration
//   - MarkdownWriter: a shareable document with a status pie chart
//   - CSVWriter: one row per platform for spreadsheets
//   - HTMLWriter: the dashboard page, also served by the dashboard server
//
// Every writer is bound to its destination at construction and implements
// Writer, so writers can be combined with MultiWriter. ExportDir writes
// every file format for one scan at once.
package report
