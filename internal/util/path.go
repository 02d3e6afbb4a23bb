package util

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	GridFile   = "grid.toml"
	ConfigDir  = "gridcore"
	ConfigFile = "config.toml"
)

// FindGridFile walks up from the current directory to find grid.toml.
func FindGridFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindGridFileFrom(dir)
}

// FindGridFileFrom walks up from the given directory to find grid.toml.
func FindGridFileFrom(start string) (string, error) {
	dir := start
	for {
		path := filepath.Join(dir, GridFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoGridFile
		}
		dir = parent
	}
}

// ResolveRelative resolves a path named inside a grid file against the
// file's directory. Absolute paths and URLs are returned unchanged.
func ResolveRelative(gridFile, path string) string {
	if path == "" || filepath.IsAbs(path) || strings.Contains(path, "://") {
		return path
	}
	return filepath.Join(filepath.Dir(gridFile), filepath.FromSlash(path))
}

// IsBinaryFile checks if a file is binary by looking for NUL bytes in the first 8KB.
func IsBinaryFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return false, err
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true, nil
		}
	}
	return false, nil
}
