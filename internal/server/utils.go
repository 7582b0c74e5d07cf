package server

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validatePath resolves a request path inside the base directory and rejects
// anything that escapes it.
func validatePath(baseDir, userPath string) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base directory: %w", err)
	}

	absUserPath, err := filepath.Abs(filepath.Join(baseDir, filepath.Clean(userPath)))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	rel, err := filepath.Rel(absBase, absUserPath)
	if err != nil || strings.Contains(rel, "..") {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return absUserPath, nil
}
