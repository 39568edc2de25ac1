// Package scanner fans one probe per catalog target out concurrently and
// assembles the per-target results.
package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/handlescan/internal/confidence"
	"github.com/nao1215/handlescan/internal/correlate"
	"github.com/nao1215/handlescan/internal/extract"
	"github.com/nao1215/handlescan/internal/model"
)

// Prober probes one target for one handle. *probe.Executor implements it.
// Probe must never return a transport failure as a Go error: failures are
// StatusError outcomes.
type Prober interface {
	Probe(ctx context.Context, target model.Target, handle string) (model.Outcome, string)
}

// ProgressFunc is called once per finished target. Calls are serialized;
// done counts finished targets including this one.
type ProgressFunc func(result model.Result, done, total int)

// Scanner is the probing orchestrator.
// A Scanner holds configuration only and can run scans concurrently.
type Scanner struct {
	prober      Prober
	extractor   extract.Extractor
	concurrency int
	network     string
	progress    ProgressFunc
	logger      *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConcurrency caps the number of probes in flight. Non-positive values
// are ignored, leaving one goroutine per target.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithExtractor replaces the default regex extractor.
func WithExtractor(e extract.Extractor) Option {
	return func(s *Scanner) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithNetwork sets the anonymity label recorded in reports.
func WithNetwork(label string) Option {
	return func(s *Scanner) {
		s.network = label
	}
}

// WithProgress sets a callback invoked as targets finish.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scanner) {
		s.progress = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// New creates a Scanner that probes with prober.
func New(prober Prober, opts ...Option) *Scanner {
	s := &Scanner{
		prober:    prober,
		extractor: extract.NewRegexExtractor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Scan probes every target for handle and returns exactly one result per
// target, in target order. It waits for every probe to reach a terminal
// outcome; a slow or failing target never fails the others.
//
// An empty catalog yields an empty result set and a warning. If ctx is
// cancelled the in-flight probes are abandoned and Scan returns the
// context error with no results.
func (s *Scanner) Scan(ctx context.Context, handle string, targets []model.Target) ([]model.Result, error) {
	if len(targets) == 0 {
		s.logger.Warn("target catalog is empty, nothing to scan", "handle", handle)
		return []model.Result{}, nil
	}

	s.logger.Info("starting scan",
		"handle", handle,
		"targets", len(targets),
		"concurrency", s.concurrency,
	)
	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]model.Result, len(targets))

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcome, url := s.prober.Probe(gctx, target, handle)
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.assemble(target, outcome, url)

			s.logger.Debug("probe finished",
				"platform", target.Name,
				"status", results[i].Status,
				"confidence", results[i].Confidence,
			)

			if s.progress != nil {
				mu.Lock()
				done++
				s.progress(results[i], done, len(targets))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warn("scan aborted", "handle", handle, "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("scan complete",
		"handle", handle,
		"targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return results, nil
}

// Run scans handle and correlates the results into a ScanReport.
func (s *Scanner) Run(ctx context.Context, handle string, targets []model.Target) (*model.ScanReport, error) {
	report := model.NewScanReport(handle)
	report.Network = s.network

	results, err := s.Scan(ctx, handle, targets)
	if err != nil {
		return nil, err
	}

	report.Results = results
	report.Correlation = correlate.Correlate(results)
	report.FinishedAt = time.Now()
	return report, nil
}

// assemble turns a probe outcome into a Result. Signals are only extracted
// for found profiles; error results carry no score.
func (s *Scanner) assemble(target model.Target, outcome model.Outcome, url string) model.Result {
	result := model.Result{
		Platform:   target.Name,
		URL:        url,
		Status:     outcome.Status,
		Signals:    model.EmptySignals(),
		HTTPStatus: outcome.HTTPStatus,
	}

	switch outcome.Status {
	case model.StatusError:
		result.ErrorDetail = outcome.ErrorDetail
		return result
	case model.StatusFound:
		result.Signals = extract.Signals(s.extractor, outcome.Body)
		result.Digest = outcome.Digest
	}

	result.Confidence = confidence.ScoreResult(target.ConfidenceWeight, result)
	return result
}
