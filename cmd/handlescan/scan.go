package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/handlescan/internal/catalog"
	"github.com/nao1215/handlescan/internal/config"
	"github.com/nao1215/handlescan/internal/database"
	"github.com/nao1215/handlescan/internal/extract"
	"github.com/nao1215/handlescan/internal/log"
	"github.com/nao1215/handlescan/internal/model"
	"github.com/nao1215/handlescan/internal/probe"
	"github.com/nao1215/handlescan/internal/report"
	"github.com/nao1215/handlescan/internal/scanner"
	"github.com/nao1215/handlescan/internal/transport"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <handle>...",
		Short: "Search platforms for a handle and correlate what they expose",
		Long: `Scan probes every platform of the target catalog for each handle.

For every profile that exists it extracts:
- The public bio
- External links
- Email addresses and phone numbers

Each result is scored for confidence and bios shared by two or more
platforms are reported as correlations.

Examples:
  # Scan one handle with the built-in catalog
  handlescan scan johndoe

  # Scan two handles on selected platforms only
  handlescan scan --only GitHub,GitLab johndoe jdoe

  # Route probes through a running Tor daemon
  handlescan scan --tor --tor-address 127.0.0.1:9050 johndoe

  # Start a private Tor daemon for the run
  handlescan scan --embedded-tor johndoe

  # Route probes through a proxy
  handlescan scan --proxy socks5h://127.0.0.1:1080 johndoe

  # Write an HTML dashboard and export every format
  handlescan scan --html -o johndoe.html --export-dir output johndoe

Configuration file (.handlescan) example:
  timeout: 10s
  concurrency: 20
  only:
    - GitHub
    - GitLab
  proxy: socks5h://127.0.0.1:1080`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Target selection
	cmd.Flags().String("catalog", "",
		"Target catalog directory (default: ./platforms, then the XDG config dir, then built-in)")
	cmd.Flags().StringSlice("only", nil,
		"Only scan these targets (comma separated catalog names)")

	// Probe behavior
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each probe")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of probes in flight (0 = one per target)")
	cmd.Flags().String("extractor", config.ExtractorRegex,
		"Signal extractor: regex or html")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every probe")

	// Network routing
	cmd.Flags().Bool("tor", false,
		"Route probes through a running Tor daemon (requires --tor-address or TOR_ENABLED)")
	cmd.Flags().String("tor-address", "",
		"SOCKS address of the Tor daemon (default: 127.0.0.1:9050)")
	cmd.Flags().Bool("embedded-tor", false,
		"Start a private Tor daemon for this run")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().Bool("use-proxy", false,
		"Route probes through the proxy in HTTP_PROXY")
	cmd.Flags().String("proxy", "",
		"Route probes through this proxy (socks5://, socks5h://, http://, https://)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .handlescan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false, "Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report")
	cmd.Flags().Bool("csv", false, "Output CSV report")
	cmd.Flags().Bool("html", false, "Output HTML report")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown", "csv", "html")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file (creates directories if needed)")
	cmd.Flags().String("export-dir", "",
		"Also write results.json, report.csv, report.html and report.md under this directory")

	// History
	cmd.Flags().Bool("no-history", false, "Do not save the scan to the history database")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data dir)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from defaults, the config file and flags, in
// increasing order of precedence. Only flags the user set override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()
	var err error

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit config file must exist; the default ones are optional.
	if configPath := config.FindConfigFile(cfg.ConfigFilePath); configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if flags.Changed("catalog") {
		if cfg.CatalogDir, err = flags.GetString("catalog"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("only") {
		if cfg.Only, err = flags.GetStringSlice("only"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("extractor") {
		if cfg.Extractor, err = flags.GetString("extractor"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("tor-address") {
		if cfg.TorAddress, err = flags.GetString("tor-address"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyURL, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.EmbeddedTor, err = flags.GetBool("embedded-tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	useProxy, err := flags.GetBool("use-proxy")
	if err != nil {
		return nil, err
	}
	cfg.UseProxy = cfg.UseProxy || useProxy

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.CSVReport, err = flags.GetBool("csv"); err != nil {
		return nil, err
	}
	if cfg.HTMLReport, err = flags.GetBool("html"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.ExportDir, err = flags.GetString("export-dir"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	cfg.Handles = args

	return cfg, nil
}

// runScan resolves the network path and the catalog, then scans each handle
// in turn.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	stderr := cmd.ErrOrStderr()

	targets, source, err := catalog.Open(cfg.CatalogDir, config.CatalogCandidates()...)
	if err != nil {
		return fmt.Errorf("failed to load target catalog: %w", err)
	}
	targets = catalog.Filter(targets, cfg.Only)
	if len(targets) == 0 && len(cfg.Only) > 0 {
		return fmt.Errorf("no catalog target matches --only %v (source: %s)", cfg.Only, source)
	}
	logger.Info("target catalog loaded", "source", source, "targets", len(targets))

	settings, stopTor, err := resolveNetwork(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stopTor()

	if settings.Mode() != transport.ModeDirect {
		wait := transport.DefaultWaitOptions()
		wait.Logger = logger
		if err := transport.WaitForProxy(ctx, settings, wait); err != nil {
			return fmt.Errorf("proxy check failed for %s: %w", settings.RedactedProxyURL(), err)
		}
		logger.Info("proxy connection verified", "mode", settings.Mode(), "proxy", settings.RedactedProxyURL())
	}

	extractor, err := extract.New(cfg.Extractor)
	if err != nil {
		return err
	}

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	out, closeOut, err := openReportOutput(cmd.OutOrStdout(), cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOut()

	for _, handle := range cfg.Handles {
		fmt.Fprintf(stderr, "Scanning %s on %d targets (%s)...\n", handle, len(targets), settings.Anonymity())

		scanReport, err := scanHandle(ctx, cfg, settings, extractor, logger, stderr, handle, targets)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return errors.New("scan interrupted")
			}
			return fmt.Errorf("scan of %s failed: %w", handle, err)
		}
		fmt.Fprintf(stderr, "Scan of %s completed in %s\n", handle, scanReport.Duration().Round(time.Millisecond))

		if _, err := newReportWriter(cfg, out).Write(scanReport); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		if db != nil {
			if _, err := db.SaveScanReport(ctx, scanReport); err != nil {
				logger.Error("failed to save scan report", "handle", handle, "error", err)
			} else {
				logger.Debug("scan report saved", "handle", handle, "db", db.Path())
			}
		}

		if cfg.ExportDir != "" {
			dir, err := report.ExportDir(cfg.ExportDir, scanReport)
			if err != nil {
				return fmt.Errorf("failed to export results: %w", err)
			}
			fmt.Fprintf(stderr, "Results exported to %s\n", dir)
		}
	}

	if cfg.ReportFile != "" {
		fmt.Fprintf(stderr, "Report written to: %s\n", cfg.ReportFile)
	}
	return nil
}

// scanHandle runs one scan of handle with an HTTP client of its own, so
// cookies set by a platform during one scan are never sent in another.
func scanHandle(
	ctx context.Context,
	cfg *config.Config,
	settings transport.Settings,
	extractor extract.Extractor,
	logger *slog.Logger,
	stderr io.Writer,
	handle string,
	targets []model.Target,
) (*model.ScanReport, error) {
	client, err := transport.NewHTTPClient(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	defer client.CloseIdleConnections()

	executor := probe.NewExecutor(client,
		probe.WithTimeout(cfg.Timeout),
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithMaxBodySize(cfg.MaxBodySize),
	)

	opts := []scanner.Option{
		scanner.WithConcurrency(cfg.Concurrency),
		scanner.WithExtractor(extractor),
		scanner.WithNetwork(settings.Anonymity()),
		scanner.WithLogger(logger),
	}
	if cfg.Verbose {
		opts = append(opts, scanner.WithProgress(func(r model.Result, done, total int) {
			fmt.Fprintf(stderr, "[%d/%d] %s: %s\n", done, total, r.Platform, r.Status)
		}))
	}

	return scanner.New(executor, opts...).Run(ctx, handle, targets)
}

// resolveNetwork returns the routing settings of the run. When an embedded
// Tor daemon is started, the returned stop function shuts it down.
func resolveNetwork(ctx context.Context, cfg *config.Config, logger *slog.Logger) (transport.Settings, func(), error) {
	noop := func() {}

	if !cfg.EmbeddedTor {
		settings, err := transport.ResolveSettings(transport.Options{
			UseTor:     cfg.UseTor,
			TorAddress: cfg.TorAddress,
			UseProxy:   cfg.UseProxy,
			ProxyURL:   cfg.ProxyURL,
		}, os.Getenv)
		if err != nil {
			return transport.Settings{}, noop, fmt.Errorf("network configuration error: %w", err)
		}
		return settings, noop, nil
	}

	logger.Info("starting embedded Tor daemon", "timeout", cfg.TorStartupTimeout)
	embedded := transport.NewEmbeddedTor(transport.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embedded.Start(ctx); err != nil {
		return transport.Settings{}, noop, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	stop := func() {
		logger.Info("stopping embedded Tor daemon")
		if err := embedded.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}

	opts, err := embedded.Options()
	if err != nil {
		stop()
		return transport.Settings{}, noop, err
	}
	settings, err := transport.ResolveSettings(opts, os.Getenv)
	if err != nil {
		stop()
		return transport.Settings{}, noop, err
	}
	logger.Info("embedded Tor daemon ready", "socks", embedded.SocksAddr())
	return settings, stop, nil
}

// openReportOutput returns stdout, or the report file created with its
// parent directories.
func openReportOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() {
		if err := file.Close(); err != nil {
			slog.Warn("failed to close report file", "path", path, "error", err)
		}
	}, nil
}

// newReportWriter creates the report writer selected in cfg.
func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	case cfg.CSVReport:
		return report.NewCSVWriter(out)
	case cfg.HTMLReport:
		return report.NewHTMLWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}
