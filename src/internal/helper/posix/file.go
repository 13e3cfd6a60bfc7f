// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Permission bits used for hierarchy material.
const (
	DirMode     fs.FileMode = 0o755
	PublicMode  fs.FileMode = 0o644
	PrivateMode fs.FileMode = 0o600
)

// WriteFileAtomic writes data to path so that readers observe either the old
// content or the new content, never a partial file.
//
// The data goes to a hidden temporary file in the same directory, which is
// chmod'ed to perm before any byte is written, synced, and renamed over path.
// On failure the temporary file is removed and path is left untouched.
//
// Parameters:
//   - path: Destination file
//   - data: Full file content
//   - perm: Permission bits of the new file
//
// Returns:
//   - error: Error if any step fails
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("posix: create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	// Chmod first so a private key is never readable under the umask default.
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("posix: chmod %s: %w", tmpPath, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("posix: write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("posix: sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("posix: close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("posix: rename %s: %w", path, err)
	}
	return nil
}

// IsPortableName reports whether name is usable as a single file name on
// every platform the store runs on: not empty, not a dot entry, and free of
// path separators and NUL bytes.
func IsPortableName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r == 0 {
			return false
		}
	}
	return true
}
