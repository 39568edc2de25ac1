package scanner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/handlescan/internal/extract"
	"github.com/nao1215/handlescan/internal/model"
	"github.com/nao1215/handlescan/internal/probe"
)

// fakeProber answers from a table keyed by target name.
type fakeProber struct {
	outcomes map[string]model.Outcome
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	calls    atomic.Int32
}

func (f *fakeProber) Probe(ctx context.Context, target model.Target, handle string) (model.Outcome, string) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.Outcome{Status: model.StatusError, ErrorDetail: "request cancelled"}, target.ResolveURL(handle)
		}
	}

	out, ok := f.outcomes[target.Name]
	if !ok {
		out = model.Outcome{Status: model.StatusNotFound, HTTPStatus: http.StatusNotFound}
	}
	return out, target.ResolveURL(handle)
}

const bobPage = `<html><head><meta name="description" content="Hi, I'm Bob"></head>
<body>Contact: bob@example.com</body></html>`

func alpha(url string) model.Target {
	return model.Target{Name: "Alpha", URLTemplate: url + "/{handle}", ExistsStatus: 200, ConfidenceWeight: 0.8}
}

func TestScanEndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("found profile is extracted and scored", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(bobPage))
		}))
		t.Cleanup(server.Close)

		s := New(probe.NewExecutor(server.Client()))
		results, err := s.Scan(context.Background(), "bob", []model.Target{alpha(server.URL)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		got := results[0]
		if got.Platform != "Alpha" || got.Status != model.StatusFound || got.Confidence != 90 {
			t.Errorf("unexpected result %+v", got)
		}
		if got.URL != server.URL+"/bob" {
			t.Errorf("unexpected url %s", got.URL)
		}
		if got.Signals.Bio != "Hi, I'm Bob" {
			t.Errorf("unexpected bio %q", got.Signals.Bio)
		}
		if diff := cmp.Diff([]string{"bob@example.com"}, got.Signals.Contacts.Emails); diff != "" {
			t.Errorf("emails mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("404 is not found with the weight-only score", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(bobPage))
		}))
		t.Cleanup(server.Close)

		results, err := New(probe.NewExecutor(server.Client())).Scan(context.Background(), "bob", []model.Target{alpha(server.URL)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := results[0]
		if got.Status != model.StatusNotFound || got.Confidence != 80 {
			t.Errorf("unexpected result %+v", got)
		}
		if !got.Signals.IsEmpty() {
			t.Errorf("expected empty signals, got %+v", got.Signals)
		}
	})

	t.Run("timeout is an error with zero confidence", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(func() {
			close(release)
			server.Close()
		})

		exec := probe.NewExecutor(server.Client(), probe.WithTimeout(50*time.Millisecond))
		results, err := New(exec).Scan(context.Background(), "bob", []model.Target{alpha(server.URL)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := results[0]
		if got.Status != model.StatusError || got.Confidence != 0 || got.ErrorDetail == "" {
			t.Errorf("unexpected result %+v", got)
		}
		if !got.Signals.IsEmpty() {
			t.Errorf("expected empty signals, got %+v", got.Signals)
		}
	})

	t.Run("shared bios are correlated", func(t *testing.T) {
		t.Parallel()
		page := func(bio string) string {
			return `<meta name="description" content="` + bio + `">`
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.HasPrefix(r.URL.Path, "/a/"), strings.HasPrefix(r.URL.Path, "/b/"):
				w.Write([]byte(page("Hi, I'm Bob")))
			default:
				w.Write([]byte(page("Different")))
			}
		}))
		t.Cleanup(server.Close)

		targets := []model.Target{
			{Name: "Alpha", URLTemplate: server.URL + "/a/{handle}", ConfidenceWeight: 0.5},
			{Name: "Beta", URLTemplate: server.URL + "/b/{handle}", ConfidenceWeight: 0.5},
			{Name: "Gamma", URLTemplate: server.URL + "/c/{handle}", ConfidenceWeight: 0.5},
		}
		report, err := New(probe.NewExecutor(server.Client()), WithNetwork("Direct")).Run(context.Background(), "bob", targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := model.CorrelationMap{"Hi, I'm Bob": {"Alpha", "Beta"}}
		if diff := cmp.Diff(want, report.Correlation); diff != "" {
			t.Errorf("correlation mismatch (-want +got):\n%s", diff)
		}
		if report.Network != "Direct" || report.Handle != "bob" || report.FinishedAt.IsZero() {
			t.Errorf("unexpected report metadata %+v", report)
		}
	})
}

func TestScan(t *testing.T) {
	t.Parallel()

	t.Run("returns one result per target in target order", func(t *testing.T) {
		t.Parallel()
		names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
		targets := make([]model.Target, 0, len(names))
		outcomes := map[string]model.Outcome{
			"B": {Status: model.StatusFound, Body: bobPage},
			"E": {Status: model.StatusError, ErrorDetail: "connection refused"},
		}
		for _, n := range names {
			targets = append(targets, model.Target{Name: n, URLTemplate: "http://" + n + "/{handle}", ConfidenceWeight: 0.5})
		}

		results, err := New(&fakeProber{outcomes: outcomes}).Scan(context.Background(), "bob", targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != len(targets) {
			t.Fatalf("expected %d results, got %d", len(targets), len(results))
		}
		for i, r := range results {
			if r.Platform != names[i] {
				t.Errorf("result %d: expected %s, got %s", i, names[i], r.Platform)
			}
		}
		if results[1].Status != model.StatusFound || results[1].Confidence != 60 {
			t.Errorf("unexpected found result %+v", results[1])
		}
		if results[4].Status != model.StatusError || results[4].ErrorDetail != "connection refused" {
			t.Errorf("unexpected error result %+v", results[4])
		}
	})

	t.Run("empty catalog yields an empty result set and a warning", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

		results, err := New(&fakeProber{}, WithLogger(logger)).Scan(context.Background(), "bob", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results == nil || len(results) != 0 {
			t.Errorf("expected empty non-nil results, got %v", results)
		}
		if !strings.Contains(buf.String(), "catalog is empty") {
			t.Errorf("expected a warning, got %q", buf.String())
		}
	})

	t.Run("concurrency ceiling is respected", func(t *testing.T) {
		t.Parallel()
		targets := make([]model.Target, 20)
		for i := range targets {
			targets[i] = model.Target{Name: string(rune('a' + i)), URLTemplate: "http://x/{handle}"}
		}
		prober := &fakeProber{delay: 10 * time.Millisecond}

		results, err := New(prober, WithConcurrency(3)).Scan(context.Background(), "bob", targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 20 || prober.calls.Load() != 20 {
			t.Errorf("expected 20 probes, got %d results and %d calls", len(results), prober.calls.Load())
		}
		if got := prober.maxSeen.Load(); got > 3 {
			t.Errorf("expected at most 3 probes in flight, saw %d", got)
		}
	})

	t.Run("cancellation aborts the whole scan", func(t *testing.T) {
		t.Parallel()
		targets := []model.Target{
			{Name: "A", URLTemplate: "http://a/{handle}"},
			{Name: "B", URLTemplate: "http://b/{handle}"},
		}
		prober := &fakeProber{delay: time.Minute}
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		start := time.Now()
		results, err := New(prober).Scan(ctx, "bob", targets)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if results != nil {
			t.Errorf("expected no results, got %v", results)
		}
		if time.Since(start) > 10*time.Second {
			t.Error("cancellation was not prompt")
		}
	})

	t.Run("Run returns no report when cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		report, err := New(&fakeProber{}).Run(ctx, "bob", []model.Target{{Name: "A", URLTemplate: "http://a/{handle}"}})
		if !errors.Is(err, context.Canceled) || report != nil {
			t.Errorf("expected cancellation and no report, got %v %v", report, err)
		}
	})

	t.Run("progress is reported for every target", func(t *testing.T) {
		t.Parallel()
		var (
			mu    sync.Mutex
			dones []int
		)
		progress := func(_ model.Result, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			if total != 5 {
				t.Errorf("expected total 5, got %d", total)
			}
			dones = append(dones, done)
		}
		targets := make([]model.Target, 5)
		for i := range targets {
			targets[i] = model.Target{Name: string(rune('A' + i)), URLTemplate: "http://x/{handle}"}
		}
		if _, err := New(&fakeProber{}, WithProgress(progress)).Scan(context.Background(), "bob", targets); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, dones); diff != "" {
			t.Errorf("progress mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("extractor can be swapped", func(t *testing.T) {
		t.Parallel()
		outcomes := map[string]model.Outcome{
			"A": {Status: model.StatusFound, Body: `<meta content="dom bio" name="description">`},
		}
		targets := []model.Target{{Name: "A", URLTemplate: "http://a/{handle}", ConfidenceWeight: 0.5}}

		regex, err := New(&fakeProber{outcomes: outcomes}).Scan(context.Background(), "bob", targets)
		if err != nil {
			t.Fatal(err)
		}
		dom, err := New(&fakeProber{outcomes: outcomes}, WithExtractor(extract.NewHTMLExtractor())).Scan(context.Background(), "bob", targets)
		if err != nil {
			t.Fatal(err)
		}
		if regex[0].Signals.HasBio() {
			t.Errorf("regex extractor should not match reordered attributes, got %q", regex[0].Signals.Bio)
		}
		if dom[0].Signals.Bio != "dom bio" || dom[0].Confidence != 55 {
			t.Errorf("unexpected DOM result %+v", dom[0])
		}
	})
}
