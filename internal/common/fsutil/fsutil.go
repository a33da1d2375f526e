package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// ReadFile reads path after home expansion.
func ReadFile(path string) ([]byte, error) {
	p, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// PathExists reports whether path (after home expansion) exists. Errors other
// than not-exist count as existing so callers surface them on open.
func PathExists(path string) bool {
	p, err := ExpandHome(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
