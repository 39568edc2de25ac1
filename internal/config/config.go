package config

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each probe. There is no overall scan deadline.
	DefaultTimeout = 15 * time.Second

	// DefaultConcurrency caps how many probes run at once. Catalogs of tens
	// to low hundreds of targets finish in a few rounds.
	DefaultConcurrency = 50

	// AppName is the application name used for XDG directory paths.
	AppName = "handlescan"

	// DefaultUserAgent mimics a common browser. Platforms often serve a
	// login wall or nothing at all to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

	// DefaultMaxBodySize limits how much of a profile page is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultServeAddress is where the dashboard listens.
	DefaultServeAddress = ":8000"

	// DefaultCatalogDirName is the catalog directory looked up in the
	// working directory and under XDGConfigDir.
	DefaultCatalogDirName = "platforms"

	// DBFileName is the scan history database file name.
	DBFileName = "history.db"
)

// Extractor names accepted in the configuration.
const (
	ExtractorRegex = "regex"
	ExtractorHTML  = "html"
)

// Config holds all configuration options for a handlescan run.
// It is populated from the config file and CLI flags, then passed down
// explicitly; no package keeps configuration in globals.
type Config struct {
	// Handles are the identities to search for, scanned one after another.
	Handles []string

	// Timeout bounds each probe.
	Timeout time.Duration

	// Concurrency caps probes in flight. Zero means one goroutine per target.
	Concurrency int

	// Verbose enables debug logging and per-target progress on stderr.
	Verbose bool

	// ConfigFilePath is an explicit config file. When empty, .handlescan is
	// searched in the working directory, then the home directory.
	ConfigFilePath string

	// CatalogDir is the target catalog directory. When empty, ./platforms,
	// then XDGConfigDir()/platforms, then the built-in catalog are used.
	CatalogDir string

	// Only restricts the scan to the named targets.
	Only []string

	// Extractor selects the signal extractor: "regex" (default) or "html".
	Extractor string

	// UserAgent is the User-Agent header sent with every probe.
	UserAgent string

	// MaxBodySize is the maximum number of body bytes read per probe.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// UseTor routes probes through Tor. It wins over UseProxy.
	UseTor bool

	// TorAddress is the SOCKS address of an external Tor daemon. When
	// empty, 127.0.0.1:9050 is used and TOR_ENABLED must be set.
	TorAddress string

	// EmbeddedTor starts a private Tor daemon for the run.
	EmbeddedTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// UseProxy routes probes through ProxyURL, or HTTP_PROXY when empty.
	UseProxy bool

	// ProxyURL is an explicit socks5://, socks5h://, http:// or https:// proxy.
	ProxyURL string

	// JSONReport, MarkdownReport, CSVReport and HTMLReport select the
	// report format. At most one may be set; none means plain text.
	JSONReport     bool
	MarkdownReport bool
	CSVReport      bool
	HTMLReport     bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ExportDir, when set, receives results.json, report.csv, report.html
	// and report.md under a per-handle subdirectory.
	ExportDir string

	// DBDir is the directory holding the scan history database.
	DBDir string

	// SaveToDB stores every finished scan in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		Concurrency:       DefaultConcurrency,
		Extractor:         ExtractorRegex,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for handlescan.
// On Linux: ~/.local/share/handlescan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for handlescan.
// On Linux: ~/.config/handlescan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DBPath returns the path of the history database inside dir.
func DBPath(dir string) string {
	return filepath.Join(dir, DBFileName)
}

// CatalogCandidates returns the implicit catalog directories in lookup order.
func CatalogCandidates() []string {
	return []string{
		DefaultCatalogDirName,
		filepath.Join(XDGConfigDir(), DefaultCatalogDirName),
	}
}

// ReportFormatCount returns how many report formats are selected.
func (c *Config) ReportFormatCount() int {
	n := 0
	for _, set := range []bool{c.JSONReport, c.MarkdownReport, c.CSVReport, c.HTMLReport} {
		if set {
			n++
		}
	}
	return n
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Handles) == 0 {
		return ErrNoHandle
	}
	for _, h := range c.Handles {
		if err := ValidateHandle(h); err != nil {
			return err
		}
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.ReportFormatCount() > 1 {
		return ErrConflictingReportFormats
	}
	switch c.Extractor {
	case "", ExtractorRegex, ExtractorHTML:
	default:
		return ErrUnknownExtractor
	}
	if c.EmbeddedTor && (c.UseProxy || c.ProxyURL != "" || c.TorAddress != "") {
		return ErrConflictingNetworkModes
	}
	return nil
}

// ValidateHandle checks that handle is non-empty and has no whitespace.
func ValidateHandle(handle string) error {
	if handle == "" {
		return ErrInvalidHandle
	}
	if strings.IndexFunc(handle, unicode.IsSpace) >= 0 {
		return ErrInvalidHandle
	}
	return nil
}
