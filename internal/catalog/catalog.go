// Package catalog loads target definitions from disk.
//
// A catalog is a directory holding one target per file. JSON, YAML and TOML
// files are accepted and may be mixed:
//
//	name: GitHub
//	url: https://github.com/{handle}
//	exists_status: 200
//	confidence_weight: 0.9
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/handlescan/internal/model"
)

// DefaultDirName is the catalog directory looked up in the working directory.
const DefaultDirName = "platforms"

// Load reads and validates every target file in dir.
// An existing directory without target files yields an empty catalog.
func Load(dir string) ([]model.Target, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, dir)
		}
		return nil, fmt.Errorf("failed to open catalog %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrCatalogNotFound, dir)
	}
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS reads and validates every target file in dir of fsys. Files are
// read in lexical order; other files and subdirectories are ignored.
func LoadFS(fsys fs.FS, dir string) ([]model.Target, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	targets := make([]model.Target, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsTargetFile(entry.Name()) {
			continue
		}
		name := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		target, err := Parse(entry.Name(), data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		targets = append(targets, target)
	}

	if err := Validate(targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// LoadFile reads one target file.
func LoadFile(filename string) (model.Target, error) {
	data, err := os.ReadFile(filename) //nolint:gosec // catalog paths are user provided
	if err != nil {
		return model.Target{}, err
	}
	target, err := Parse(filename, data)
	if err != nil {
		return model.Target{}, fmt.Errorf("%s: %w", filename, err)
	}
	return target, nil
}

// IsTargetFile reports whether name has a catalog file extension.
func IsTargetFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml", ".toml":
		return true
	default:
		return false
	}
}

// Parse decodes one target. The format is chosen by the extension of name.
func Parse(name string, data []byte) (model.Target, error) {
	var (
		target model.Target
		err    error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		err = json.Unmarshal(data, &target)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &target)
	case ".toml":
		err = toml.Unmarshal(data, &target)
	default:
		return model.Target{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path.Ext(name))
	}
	if err != nil {
		return model.Target{}, fmt.Errorf("failed to parse: %w", err)
	}
	target.Name = strings.TrimSpace(target.Name)
	target.URLTemplate = strings.TrimSpace(target.URLTemplate)
	return target, nil
}

// Validate checks every target and the catalog as a whole.
func Validate(targets []model.Target) error {
	seen := make(map[string]bool, len(targets))
	var errs []error
	for _, t := range targets {
		if err := ValidateTarget(t); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateTarget, t.Name))
		}
		seen[t.Name] = true
	}
	return errors.Join(errs...)
}

// ValidateTarget checks a single target definition.
func ValidateTarget(t model.Target) error {
	if t.Name == "" {
		return fmt.Errorf("%w (url %q)", ErrMissingName, t.URLTemplate)
	}
	if t.PlaceholderCount() != 1 {
		return fmt.Errorf("%s: %w", t.Name, ErrPlaceholder)
	}
	if math.IsNaN(t.ConfidenceWeight) || t.ConfidenceWeight < 0 || t.ConfidenceWeight > 1 {
		return fmt.Errorf("%s: %w (got %v)", t.Name, ErrInvalidWeight, t.ConfidenceWeight)
	}
	if t.ExistsStatus != 0 && (t.ExistsStatus < 100 || t.ExistsStatus > 599) {
		return fmt.Errorf("%s: %w (got %d)", t.Name, ErrInvalidStatusCode, t.ExistsStatus)
	}
	return nil
}

// Resolve picks the catalog directory. An explicit directory must exist.
// Otherwise the first existing candidate wins; "" means none was found and
// the built-in catalog should be used.
func Resolve(explicit string, candidates ...string) (string, error) {
	if explicit != "" {
		if !isDir(explicit) {
			return "", fmt.Errorf("%w: %s", ErrCatalogNotFound, explicit)
		}
		return explicit, nil
	}
	for _, c := range candidates {
		if c != "" && isDir(c) {
			return c, nil
		}
	}
	return "", nil
}

// Open resolves the catalog directory and loads it, falling back to the
// built-in catalog. The returned source names where targets came from.
func Open(explicit string, candidates ...string) ([]model.Target, string, error) {
	dir, err := Resolve(explicit, candidates...)
	if err != nil {
		return nil, "", err
	}
	if dir == "" {
		targets, err := Builtin()
		return targets, BuiltinSource, err
	}
	targets, err := Load(dir)
	return targets, dir, err
}

// Names returns the target names in catalog order.
func Names(targets []model.Target) []string {
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, t.Name)
	}
	return names
}

// Filter keeps the targets whose name is in only (case-insensitive).
// An empty only keeps everything.
func Filter(targets []model.Target, only []string) []model.Target {
	if len(only) == 0 {
		return targets
	}
	return slices.DeleteFunc(slices.Clone(targets), func(t model.Target) bool {
		return !slices.ContainsFunc(only, func(name string) bool {
			return strings.EqualFold(strings.TrimSpace(name), t.Name)
		})
	})
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
