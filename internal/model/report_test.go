package model

import (
	"testing"
	"time"
)

func TestScanReport(t *testing.T) {
	t.Parallel()

	newReport := func() *ScanReport {
		r := NewScanReport("bob")
		r.Results = []Result{
			{Platform: "Alpha", Status: StatusFound, Confidence: 90},
			{Platform: "Beta", Status: StatusNotFound, Confidence: 70},
			{Platform: "Gamma", Status: StatusError, ErrorDetail: "timeout"},
			{Platform: "Delta", Status: StatusFound, Confidence: 60},
		}
		return r
	}

	t.Run("NewScanReport assigns an ID", func(t *testing.T) {
		t.Parallel()
		a := NewScanReport("bob")
		b := NewScanReport("bob")
		if a.ID == "" || a.ID == b.ID {
			t.Errorf("expected unique non-empty IDs, got %q and %q", a.ID, b.ID)
		}
		if a.Results == nil || a.Correlation == nil {
			t.Error("expected initialized results and correlation")
		}
	})

	t.Run("Summary counts each status", func(t *testing.T) {
		t.Parallel()
		got := newReport().Summary()
		want := Summary{Total: 4, Found: 2, NotFound: 1, Errors: 1}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("Found keeps report order", func(t *testing.T) {
		t.Parallel()
		found := newReport().Found()
		if len(found) != 2 || found[0].Platform != "Alpha" || found[1].Platform != "Delta" {
			t.Errorf("unexpected found results: %+v", found)
		}
	})

	t.Run("Result looks up by platform", func(t *testing.T) {
		t.Parallel()
		r := newReport()
		if res, ok := r.Result("Gamma"); !ok || res.ErrorDetail != "timeout" {
			t.Errorf("unexpected result %+v", res)
		}
		if _, ok := r.Result("Omega"); ok {
			t.Error("expected Omega to be missing")
		}
	})

	t.Run("Duration is zero until finished", func(t *testing.T) {
		t.Parallel()
		r := newReport()
		if r.Duration() != 0 {
			t.Error("expected zero duration")
		}
		r.FinishedAt = r.StartedAt.Add(2 * time.Second)
		if r.Duration() != 2*time.Second {
			t.Errorf("expected 2s, got %v", r.Duration())
		}
	})
}

func TestSignals(t *testing.T) {
	t.Parallel()

	t.Run("EmptySignals has no content", func(t *testing.T) {
		t.Parallel()
		s := EmptySignals()
		if !s.IsEmpty() || s.HasBio() || s.HasContacts() {
			t.Errorf("expected empty signals, got %+v", s)
		}
		if s.Links == nil || s.Contacts.Emails == nil || s.Contacts.Phones == nil {
			t.Error("expected non-nil sets")
		}
	})

	t.Run("HasContacts is true for a phone alone", func(t *testing.T) {
		t.Parallel()
		s := Signals{Contacts: Contacts{Phones: []string{"+1 555 0100 200"}}}
		if !s.HasContacts() {
			t.Error("expected contacts")
		}
	})

	t.Run("SortedSet sorts and removes duplicates", func(t *testing.T) {
		t.Parallel()
		got := SortedSet([]string{"b", "a", "b", "c", "a"})
		want := []string{"a", "b", "c"}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("expected %v, got %v", want, got)
			}
		}
		if SortedSet(nil) == nil {
			t.Error("expected non-nil slice for nil input")
		}
	})
}

func TestCorrelationMap(t *testing.T) {
	t.Parallel()

	m := CorrelationMap{
		"zeta":  {"A", "B"},
		"alpha": {"C", "D"},
	}
	bios := m.Bios()
	if len(bios) != 2 || bios[0] != "alpha" || bios[1] != "zeta" {
		t.Errorf("unexpected bios %v", bios)
	}
	if got := m.Platforms("zeta"); len(got) != 2 {
		t.Errorf("unexpected platforms %v", got)
	}
	if got := m.Platforms("missing"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
