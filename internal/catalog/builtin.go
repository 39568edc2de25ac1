package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nao1215/handlescan/internal/model"
)

// BuiltinSource is the source name reported for the embedded catalog.
const BuiltinSource = "built-in"

//go:embed builtin/*
var builtinFS embed.FS

// Builtin returns the catalog compiled into the binary.
func Builtin() ([]model.Target, error) {
	return LoadFS(builtinFS, "builtin")
}

// WriteSample copies the built-in catalog files into dir, creating it.
// Existing files are only replaced when force is set.
func WriteSample(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}

	var written []string
	for _, entry := range entries {
		if entry.IsDir() || !IsTargetFile(entry.Name()) {
			continue
		}
		dst := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(dst); err == nil && !force {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", dst, err)
		}
		written = append(written, dst)
	}
	return written, nil
}
