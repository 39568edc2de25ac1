package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".handlescan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .handlescan configuration file.
// Every field is optional; CLI flags override file values.
type File struct {
	// Timeout is a Go duration string such as "15s".
	Timeout string `yaml:"timeout,omitempty"`

	Concurrency int      `yaml:"concurrency,omitempty"`
	UserAgent   string   `yaml:"userAgent,omitempty"`
	MaxBodySize int64    `yaml:"maxBodySize,omitempty"`
	CatalogDir  string   `yaml:"catalogDir,omitempty"`
	Only        []string `yaml:"only,omitempty"`
	Extractor   string   `yaml:"extractor,omitempty"`

	// Proxy is a proxy URL used for every scan.
	Proxy string `yaml:"proxy,omitempty"`

	// TorAddress is the SOCKS address of an external Tor daemon.
	TorAddress string `yaml:"torAddress,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies the values set in the file into cfg.
func (cf *File) Apply(cfg *Config) error {
	if cf.Timeout != "" {
		d, err := time.ParseDuration(cf.Timeout)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
		}
		cfg.Timeout = d
	}
	if cf.Concurrency != 0 {
		cfg.Concurrency = cf.Concurrency
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
	if cf.MaxBodySize != 0 {
		cfg.MaxBodySize = cf.MaxBodySize
	}
	if cf.CatalogDir != "" {
		cfg.CatalogDir = cf.CatalogDir
	}
	if len(cf.Only) > 0 {
		cfg.Only = cf.Only
	}
	if cf.Extractor != "" {
		cfg.Extractor = cf.Extractor
	}
	if cf.Proxy != "" {
		cfg.ProxyURL = cf.Proxy
	}
	if cf.TorAddress != "" {
		cfg.TorAddress = cf.TorAddress
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .handlescan in the current directory
// 3. Look for .handlescan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
