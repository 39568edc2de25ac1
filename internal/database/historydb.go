package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/handlescan/internal/model"
)

// FileName is the name of the history database file.
const FileName = "history.db"

// HistoryDB provides SQLite-based storage for scan reports.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so the dashboard can read while
	// a scan is being saved.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ReadOnlyOptions opens an existing database without creating it.
func ReadOnlyOptions() Options {
	return Options{EnableWAL: true}
}

// ErrDatabaseNotFound is returned by Open when the database does not exist
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("scan history database not found")

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc"
	} else if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per finished scan. The report itself is stored as JSON.
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL UNIQUE,
		handle TEXT NOT NULL,
		started_at TEXT NOT NULL,
		network TEXT,
		report_json TEXT NOT NULL,
		summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_handle ON scan_reports(handle);

	-- Public information exposed by found profiles, one row per value.
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL REFERENCES scan_reports(id) ON DELETE CASCADE,
		handle TEXT NOT NULL,
		platform TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_signals_lookup ON signals(kind, value);
	CREATE INDEX IF NOT EXISTS idx_signals_handle ON signals(handle);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScanReport stores report and indexes the signals of its found results.
// It returns the database ID of the stored report.
func (h *HistoryDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (id int64, err error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summary())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO scan_reports (scan_id, handle, started_at, network, report_json, summary)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.Handle,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Network,
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan report: %w", err)
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, fmt.Errorf("failed to get report id: %w", err)
	}

	for _, s := range signalsOf(report) {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO signals (report_id, handle, platform, kind, value)
		VALUES (?, ?, ?, ?, ?)
		`, id, report.Handle, s.platform, string(s.kind), s.value)
		if err != nil {
			return 0, fmt.Errorf("failed to save signal: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan report: %w", err)
	}
	return id, nil
}

// GetLatestScanReport returns the most recent report for handle, or nil if
// the handle was never scanned.
func (h *HistoryDB) GetLatestScanReport(ctx context.Context, handle string) (*model.ScanReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `
	SELECT report_json FROM scan_reports
	WHERE handle = ?
	ORDER BY id DESC
	LIMIT 1
	`, handle).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}
	return decodeReport(reportJSON)
}

// GetScanReportByID returns the report stored under the database ID, or nil.
func (h *HistoryDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM scan_reports WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}
	return decodeReport(reportJSON)
}

// GetScanHistory returns every report for handle, newest first.
// Rows that no longer decode are skipped.
func (h *HistoryDB) GetScanHistory(ctx context.Context, handle string) ([]*model.ScanReport, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT report_json FROM scan_reports
	WHERE handle = ?
	ORDER BY id DESC
	`, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScanReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report, err := decodeReport(reportJSON)
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ScanReportMetadata summarizes a stored report without loading it.
type ScanReportMetadata struct {
	// ID is the database ID, accepted by GetScanReportByID.
	ID int64 `json:"id"`

	// ScanID is the report's own UUID.
	ScanID string `json:"scan_id"`

	Handle    string        `json:"handle"`
	StartedAt time.Time     `json:"started_at"`
	Network   string        `json:"network,omitempty"`
	Summary   model.Summary `json:"summary"`
}

// GetScanHistoryWithMetadata returns report metadata for handle, newest first.
func (h *HistoryDB) GetScanHistoryWithMetadata(ctx context.Context, handle string) ([]ScanReportMetadata, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, scan_id, handle, started_at, network, summary
	FROM scan_reports
	WHERE handle = ?
	ORDER BY id DESC
	`, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var (
			meta        ScanReportMetadata
			startedAt   string
			network     sql.NullString
			summaryJSON sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.ScanID, &meta.Handle, &startedAt, &network, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		meta.Network = network.String
		if summaryJSON.Valid && summaryJSON.String != "" {
			_ = json.Unmarshal([]byte(summaryJSON.String), &meta.Summary) //nolint:errcheck // a broken summary is shown as zero counts
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// ListScannedHandles returns every handle with at least one stored report,
// in lexical order.
func (h *HistoryDB) ListScannedHandles(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT handle FROM scan_reports ORDER BY handle`)
	if err != nil {
		return nil, fmt.Errorf("failed to list handles: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var handle string
		if err := rows.Scan(&handle); err != nil {
			return nil, fmt.Errorf("failed to scan handle: %w", err)
		}
		handles = append(handles, handle)
	}
	return handles, rows.Err()
}

func decodeReport(reportJSON string) (*model.ScanReport, error) {
	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampFormats are tried in order when reading timestamps back.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
