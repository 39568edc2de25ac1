package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig pins the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 15 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 15*time.Second {
			t.Errorf("expected Timeout to be 15s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Concurrency is 50", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 50 {
			t.Errorf("expected Concurrency to be 50, got %d", cfg.Concurrency)
		}
	})

	t.Run("default Extractor is regex", func(t *testing.T) {
		t.Parallel()
		if cfg.Extractor != ExtractorRegex {
			t.Errorf("expected Extractor to be %q, got %q", ExtractorRegex, cfg.Extractor)
		}
	})

	t.Run("default MaxBodySize is 5MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxBodySize != 5*1024*1024 {
			t.Errorf("expected MaxBodySize to be 5MB, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("default network is direct", func(t *testing.T) {
		t.Parallel()
		if cfg.UseTor || cfg.UseProxy || cfg.EmbeddedTor {
			t.Error("expected direct connection by default")
		}
	})

	t.Run("default TorStartupTimeout is 3 minutes", func(t *testing.T) {
		t.Parallel()
		if cfg.TorStartupTimeout != 3*time.Minute {
			t.Errorf("expected TorStartupTimeout to be 3m, got %v", cfg.TorStartupTimeout)
		}
	})

	t.Run("history is saved by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})
}

// TestConfigValidate tests the Validate method, one rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Handles = []string{"alice"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{
			name:   "no handles",
			modify: func(c *Config) { c.Handles = nil },
			want:   ErrNoHandle,
		},
		{
			name:   "empty handle",
			modify: func(c *Config) { c.Handles = []string{"alice", ""} },
			want:   ErrInvalidHandle,
		},
		{
			name:   "handle with whitespace",
			modify: func(c *Config) { c.Handles = []string{"john doe"} },
			want:   ErrInvalidHandle,
		},
		{
			name:   "zero timeout",
			modify: func(c *Config) { c.Timeout = 0 },
			want:   ErrInvalidTimeout,
		},
		{
			name:   "negative concurrency",
			modify: func(c *Config) { c.Concurrency = -1 },
			want:   ErrInvalidConcurrency,
		},
		{
			name:   "negative max body size",
			modify: func(c *Config) { c.MaxBodySize = -1 },
			want:   ErrInvalidMaxBodySize,
		},
		{
			name: "two report formats",
			modify: func(c *Config) {
				c.JSONReport = true
				c.CSVReport = true
			},
			want: ErrConflictingReportFormats,
		},
		{
			name:   "unknown extractor",
			modify: func(c *Config) { c.Extractor = "xpath" },
			want:   ErrUnknownExtractor,
		},
		{
			name: "embedded tor with proxy",
			modify: func(c *Config) {
				c.EmbeddedTor = true
				c.ProxyURL = "socks5://127.0.0.1:1080"
			},
			want: ErrConflictingNetworkModes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("zero concurrency means unbounded and is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Concurrency = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("tor and proxy together are valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.UseTor = true
		cfg.UseProxy = true
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestValidateHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		handle string
		valid  bool
	}{
		{"alice", true},
		{"alice.dev", true},
		{"ünïcødé", true},
		{"", false},
		{" alice", false},
		{"al\tice", false},
	}

	for _, tt := range tests {
		t.Run(tt.handle, func(t *testing.T) {
			t.Parallel()
			err := ValidateHandle(tt.handle)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateHandle(%q) = %v, want valid=%v", tt.handle, err, tt.valid)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile("/nonexistent/path/.handlescan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cf != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads and applies valid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `timeout: 7s
concurrency: 8
userAgent: test-agent
catalogDir: /srv/catalog
only:
  - GitHub
extractor: html
proxy: socks5h://127.0.0.1:1080
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		if err := cf.Apply(cfg); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if cfg.Timeout != 7*time.Second {
			t.Errorf("expected timeout 7s, got %v", cfg.Timeout)
		}
		if cfg.Concurrency != 8 {
			t.Errorf("expected concurrency 8, got %d", cfg.Concurrency)
		}
		if cfg.UserAgent != "test-agent" {
			t.Errorf("expected user agent, got %q", cfg.UserAgent)
		}
		if cfg.CatalogDir != "/srv/catalog" {
			t.Errorf("expected catalog dir, got %q", cfg.CatalogDir)
		}
		if len(cfg.Only) != 1 || cfg.Only[0] != "GitHub" {
			t.Errorf("expected only [GitHub], got %v", cfg.Only)
		}
		if cfg.Extractor != ExtractorHTML {
			t.Errorf("expected html extractor, got %q", cfg.Extractor)
		}
		if cfg.ProxyURL != "socks5h://127.0.0.1:1080" {
			t.Errorf("expected proxy URL, got %q", cfg.ProxyURL)
		}
		if cfg.MaxBodySize != DefaultMaxBodySize {
			t.Errorf("unset maxBodySize must keep default, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("Apply rejects a malformed timeout", func(t *testing.T) {
		t.Parallel()

		cf := &File{Timeout: "soon"}
		err := cf.Apply(NewConfig())
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("timeout: 5s\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("XDGDataDir ends with app name", func(t *testing.T) {
		t.Parallel()
		if dir := XDGDataDir(); filepath.Base(dir) != AppName {
			t.Errorf("expected dir ending in %q, got %q", AppName, dir)
		}
	})

	t.Run("XDGConfigDir ends with app name", func(t *testing.T) {
		t.Parallel()
		if dir := XDGConfigDir(); filepath.Base(dir) != AppName {
			t.Errorf("expected dir ending in %q, got %q", AppName, dir)
		}
	})

	t.Run("DBPath joins the database file name", func(t *testing.T) {
		t.Parallel()
		if got := DBPath("/data"); got != filepath.Join("/data", "history.db") {
			t.Errorf("unexpected DBPath: %q", got)
		}
	})

	t.Run("catalog candidates start with the working directory", func(t *testing.T) {
		t.Parallel()
		c := CatalogCandidates()
		if len(c) != 2 || c[0] != "platforms" || !strings.HasSuffix(c[1], filepath.Join(AppName, "platforms")) {
			t.Errorf("unexpected candidates: %v", c)
		}
	})
}
