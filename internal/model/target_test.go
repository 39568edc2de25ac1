package model

import "testing"

func TestTarget(t *testing.T) {
	t.Parallel()

	t.Run("ResolveURL substitutes the handle verbatim", func(t *testing.T) {
		t.Parallel()
		target := Target{Name: "Alpha", URLTemplate: "http://a/{handle}"}
		if got := target.ResolveURL("bob"); got != "http://a/bob" {
			t.Errorf("expected http://a/bob, got %s", got)
		}
		if got := target.ResolveURL("b o/b"); got != "http://a/b o/b" {
			t.Errorf("expected no percent-encoding, got %s", got)
		}
	})

	t.Run("ResolveURL accepts the legacy placeholder", func(t *testing.T) {
		t.Parallel()
		target := Target{Name: "Beta", URLTemplate: "https://b.example/users/{username}/"}
		if got := target.ResolveURL("alice"); got != "https://b.example/users/alice/" {
			t.Errorf("unexpected url %s", got)
		}
	})

	t.Run("ExpectedStatus defaults to 200", func(t *testing.T) {
		t.Parallel()
		if got := (Target{}).ExpectedStatus(); got != 200 {
			t.Errorf("expected 200, got %d", got)
		}
		if got := (Target{ExistsStatus: 302}).ExpectedStatus(); got != 302 {
			t.Errorf("expected 302, got %d", got)
		}
	})

	t.Run("PlaceholderCount counts both spellings", func(t *testing.T) {
		t.Parallel()
		target := Target{URLTemplate: "http://x/{handle}?u={username}"}
		if got := target.PlaceholderCount(); got != 2 {
			t.Errorf("expected 2, got %d", got)
		}
	})
}

func TestStatus(t *testing.T) {
	t.Parallel()

	t.Run("String returns the report label", func(t *testing.T) {
		t.Parallel()
		if got := StatusNotFound.String(); got != "NOT FOUND" {
			t.Errorf("expected NOT FOUND, got %s", got)
		}
	})

	t.Run("IsValid rejects unknown values", func(t *testing.T) {
		t.Parallel()
		if !StatusError.IsValid() {
			t.Error("expected ERROR to be valid")
		}
		if Status("MAYBE").IsValid() {
			t.Error("expected MAYBE to be invalid")
		}
	})

	t.Run("ParseStatus parses labels", func(t *testing.T) {
		t.Parallel()
		if got, ok := ParseStatus("not_found"); !ok || got != StatusNotFound {
			t.Errorf("expected NOT FOUND, got %v", got)
		}
		if _, ok := ParseStatus("gone"); ok {
			t.Error("expected gone to be rejected")
		}
	})
}
