package compare

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/handlescan/internal/model"
)

func found(platform, bio, digest string, confidence int) model.Result {
	s := model.EmptySignals()
	s.Bio = bio
	return model.Result{
		Platform:   platform,
		URL:        "https://example.com/" + platform,
		Status:     model.StatusFound,
		Confidence: confidence,
		Signals:    s,
		Digest:     digest,
	}
}

func withStatus(platform string, status model.Status) model.Result {
	return model.Result{Platform: platform, Status: status, Signals: model.EmptySignals()}
}

func report(results ...model.Result) *model.ScanReport {
	r := model.NewScanReport("alice")
	r.Results = results
	return r
}

func TestCompare(t *testing.T) {
	t.Parallel()

	t.Run("identical scans have no changes", func(t *testing.T) {
		t.Parallel()

		prev := report(found("GitHub", "bio", "d1", 100), withStatus("GitLab", model.StatusNotFound))
		curr := report(found("GitHub", "bio", "d1", 100), withStatus("GitLab", model.StatusNotFound))

		d := Compare(prev, curr)
		if d.HasChanges() {
			t.Errorf("expected no changes, got %+v", d)
		}
		if d.Unchanged != 1 {
			t.Errorf("expected 1 unchanged profile, got %d", d.Unchanged)
		}
	})

	t.Run("profiles appearing and disappearing", func(t *testing.T) {
		t.Parallel()

		prev := report(
			found("GitHub", "", "", 95),
			found("Keybase", "", "", 80),
			found("PyPI", "", "", 70),
			withStatus("GitLab", model.StatusNotFound),
			withStatus("Medium", model.StatusError),
		)
		curr := report(
			withStatus("GitHub", model.StatusNotFound),
			withStatus("Keybase", model.StatusError),
			found("PyPI", "", "", 70),
			found("GitLab", "", "", 85),
			found("Medium", "", "", 60),
			found("Codeberg", "", "", 75),
		)

		d := Compare(prev, curr)
		if diff := cmp.Diff([]string{"Codeberg", "GitLab", "Medium"}, d.NewlyFound); diff != "" {
			t.Errorf("NewlyFound mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"GitHub"}, d.NoLongerFound); diff != "" {
			t.Errorf("NoLongerFound mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Keybase"}, d.Unreachable); diff != "" {
			t.Errorf("Unreachable mismatch (-want +got):\n%s", diff)
		}
		if d.Unchanged != 1 {
			t.Errorf("expected PyPI unchanged, got %d", d.Unchanged)
		}
	})

	t.Run("bio, confidence and content changes", func(t *testing.T) {
		t.Parallel()

		prev := report(found("GitHub", "old", "d1", 95), found("GitLab", "same", "d2", 85))
		curr := report(found("GitHub", "new", "d1", 100), found("GitLab", "same", "d3", 85))

		d := Compare(prev, curr)
		wantBio := []BioChange{{Platform: "GitHub", Before: "old", After: "new"}}
		if diff := cmp.Diff(wantBio, d.BioChanges); diff != "" {
			t.Errorf("BioChanges mismatch (-want +got):\n%s", diff)
		}
		wantConf := []ConfidenceChange{{Platform: "GitHub", Before: 95, After: 100}}
		if diff := cmp.Diff(wantConf, d.ConfidenceChanges); diff != "" {
			t.Errorf("ConfidenceChanges mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"GitLab"}, d.ContentChanges); diff != "" {
			t.Errorf("ContentChanges mismatch (-want +got):\n%s", diff)
		}
		if d.ConfidenceChanges[0].Delta() != 5 {
			t.Errorf("expected delta 5, got %d", d.ConfidenceChanges[0].Delta())
		}
	})

	t.Run("missing digest is not a content change", func(t *testing.T) {
		t.Parallel()

		d := Compare(report(found("GitHub", "", "", 95)), report(found("GitHub", "", "d1", 95)))
		if len(d.ContentChanges) != 0 {
			t.Errorf("expected no content change, got %v", d.ContentChanges)
		}
	})

	t.Run("only new shared bios are reported", func(t *testing.T) {
		t.Parallel()

		prev := report()
		prev.Correlation = model.CorrelationMap{"old shared": {"A", "B"}}
		curr := report()
		curr.Correlation = model.CorrelationMap{
			"old shared": {"A", "B", "C"},
			"new shared": {"B", "D"},
		}

		d := Compare(prev, curr)
		want := []Correlation{{Bio: "new shared", Platforms: []string{"B", "D"}}}
		if diff := cmp.Diff(want, d.NewCorrelations); diff != "" {
			t.Errorf("NewCorrelations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("summaries are carried", func(t *testing.T) {
		t.Parallel()

		prev := report(withStatus("GitHub", model.StatusNotFound))
		curr := report(found("GitHub", "", "", 95))

		d := Compare(prev, curr)
		if d.Previous.Summary.NotFound != 1 || d.Current.Summary.Found != 1 {
			t.Errorf("unexpected summaries: %+v %+v", d.Previous.Summary, d.Current.Summary)
		}
		if d.Previous.ID != prev.ID || d.Current.ID != curr.ID || d.Handle != "alice" {
			t.Errorf("unexpected refs: %+v", d)
		}
	})
}

func changedDiff() *Diff {
	prev := report(found("GitHub", "old", "d1", 95), withStatus("GitLab", model.StatusNotFound))
	curr := report(found("GitHub", "new", "d1", 100), found("GitLab", "new", "d2", 85))
	curr.Correlation = model.CorrelationMap{"new": {"GitHub", "GitLab"}}
	return Compare(prev, curr)
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	t.Run("lists changes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteText(&buf, changedDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Scan Comparison: alice",
			"Newly Found (1):",
			"[+] GitLab",
			"before: \"old\"",
			"GitHub: 95% -> 100% (+5)",
			"New Correlations (1):",
		} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, buf.String())
			}
		}
	})

	t.Run("reports no changes", func(t *testing.T) {
		t.Parallel()

		d := Compare(report(found("GitHub", "", "", 95)), report(found("GitHub", "", "", 95)))
		var buf bytes.Buffer
		if err := WriteText(&buf, d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No changes since the previous scan.") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}

func TestWriteMarkdown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, changedDiff()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"# Scan Comparison: `alice`", "## Summary", "## Newly Found (1)", "## Bio Changes (1)"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, buf.String())
		}
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, changedDiff()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got Diff
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if diff := cmp.Diff([]string{"GitLab"}, got.NewlyFound); diff != "" {
		t.Errorf("NewlyFound mismatch (-want +got):\n%s", diff)
	}
}
