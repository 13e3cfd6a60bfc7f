// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"path/filepath"
	"strings"
)

// defaultExecutableName is reported when os.Args carries no program name.
const defaultExecutableName = "tls-cert-hierarchy"

// GetExecutableName returns the base name of os.Args[0] without a ".exe"
// suffix, for cobra usage lines. Windows paths are split on either separator.
//
//   - "/usr/local/bin/tls-cert-hierarchy" gives "tls-cert-hierarchy"
//   - "C:\bin\tls-cert-hierarchy.exe" gives "tls-cert-hierarchy"
func GetExecutableName() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return defaultExecutableName
	}

	// First try filepath.Base which handles the current OS correctly
	name := filepath.Base(os.Args[0])

	// If that didn't extract a proper base name (e.g., Windows path on Unix),
	// try to extract the last component manually by splitting on path separators
	if strings.Contains(name, "\\") || (strings.Contains(name, "/") && !strings.Contains(name, string(filepath.Separator))) {
		// Split on both possible separators and take the last non-empty part
		parts := strings.FieldsFunc(name, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		for i := len(parts) - 1; i >= 0; i-- {
			if parts[i] != "" {
				name = parts[i]
				break
			}
		}
	}

	// Remove common executable extensions for clean CLI display
	// This handles .exe on Windows while preserving other extensions
	name = strings.TrimSuffix(name, ".exe")

	return name
}
