package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/handlescan/internal/model"
)

// SignalKind names a kind of indexed public information.
type SignalKind string

// Indexed signal kinds.
const (
	SignalEmail SignalKind = "email"
	SignalPhone SignalKind = "phone"
	SignalLink  SignalKind = "link"
	SignalBio   SignalKind = "bio"
)

// ErrUnknownSignalKind is returned for a kind other than email, phone,
// link or bio.
var ErrUnknownSignalKind = errors.New("unknown signal kind: must be email, phone, link or bio")

// ParseSignalKind parses a case-insensitive signal kind.
func ParseSignalKind(s string) (SignalKind, error) {
	switch k := SignalKind(strings.ToLower(strings.TrimSpace(s))); k {
	case SignalEmail, SignalPhone, SignalLink, SignalBio:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSignalKind, s)
	}
}

type signalRow struct {
	platform string
	kind     SignalKind
	value    string
}

// signalsOf flattens the signals of the found results of report.
func signalsOf(report *model.ScanReport) []signalRow {
	var rows []signalRow
	for _, r := range report.Found() {
		if r.Signals.HasBio() {
			rows = append(rows, signalRow{r.Platform, SignalBio, r.Signals.Bio})
		}
		for _, v := range r.Signals.Contacts.Emails {
			rows = append(rows, signalRow{r.Platform, SignalEmail, v})
		}
		for _, v := range r.Signals.Contacts.Phones {
			rows = append(rows, signalRow{r.Platform, SignalPhone, v})
		}
		for _, v := range r.Signals.Links {
			rows = append(rows, signalRow{r.Platform, SignalLink, v})
		}
	}
	return rows
}

// SignalMatch is a handle whose profile on Platform exposed a signal.
type SignalMatch struct {
	Handle   string `json:"handle"`
	Platform string `json:"platform"`
}

// FindHandlesBySignal returns the handles whose found profiles exposed
// value as kind in any stored scan, ordered by handle then platform.
// Emails are matched case-insensitively; other kinds match exactly.
func (h *HistoryDB) FindHandlesBySignal(ctx context.Context, kind SignalKind, value string) ([]SignalMatch, error) {
	if _, err := ParseSignalKind(string(kind)); err != nil {
		return nil, err
	}

	query := `
	SELECT DISTINCT handle, platform FROM signals
	WHERE kind = ? AND value = ?
	ORDER BY handle, platform
	`
	if kind == SignalEmail {
		query = `
		SELECT DISTINCT handle, platform FROM signals
		WHERE kind = ? AND lower(value) = lower(?)
		ORDER BY handle, platform
		`
	}

	rows, err := h.db.QueryContext(ctx, query, string(kind), value)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	var matches []SignalMatch
	for rows.Next() {
		var m SignalMatch
		if err := rows.Scan(&m.Handle, &m.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
