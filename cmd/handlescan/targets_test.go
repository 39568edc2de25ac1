package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/handlescan/internal/model"
)

func TestTargetsCommand(t *testing.T) {
	t.Parallel()

	srv := newPlatformServer(t)
	catalogDir := filepath.Join(t.TempDir(), "catalog")
	writeCatalog(t, catalogDir, srv)

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		out, _, err := runRoot(t, "targets", "--catalog", catalogDir)
		if err != nil {
			t.Fatalf("targets failed: %v", err)
		}
		if !strings.Contains(out, "(3 targets)") {
			t.Errorf("unexpected header in %q", out)
		}
		for _, want := range []string{"Alpha", "Beta", "Gamma", "0.90"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %q", want, out)
			}
		}
	})

	t.Run("json with only", func(t *testing.T) {
		t.Parallel()

		out, _, err := runRoot(t, "targets", "--catalog", catalogDir, "--json", "--only", "beta")
		if err != nil {
			t.Fatalf("targets failed: %v", err)
		}
		var targets []model.Target
		if err := json.Unmarshal([]byte(out), &targets); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(targets) != 1 || targets[0].Name != "Beta" {
			t.Errorf("unexpected targets %+v", targets)
		}
	})

	t.Run("missing catalog", func(t *testing.T) {
		t.Parallel()

		if _, _, err := runRoot(t, "targets", "--catalog", filepath.Join(t.TempDir(), "none")); err == nil {
			t.Error("expected error for a missing catalog directory")
		}
	})
}
