// Package database stores scan history in SQLite.
//
// HistoryDB keeps every finished scan report as JSON, together with a
// signals table that indexes the public information each found profile
// exposed (emails, phones, links and bios). The index answers questions a
// single report cannot, such as which other handles published the same
// email address.
//
// The driver is modernc.org/sqlite, so the binary stays CGO-free and the
// whole history is a single file under the XDG data directory.
package database
