// Package model defines the data structures shared by the handlescan packages.
//
// This package contains the following main types:
//   - Target: one platform definition from the catalog
//   - Outcome: the transient classification of a single probe
//   - Signals: public information extracted from a profile page
//   - Result: the per-target record produced by a scan
//   - CorrelationMap: bios shared by two or more platforms
//   - ScanReport: everything one scan of one handle produced
//
// Models live in their own package so that the catalog, probe, scanner,
// report and database packages can share them without import cycles.
// Every type here serializes to JSON for reports and history storage.
package model
