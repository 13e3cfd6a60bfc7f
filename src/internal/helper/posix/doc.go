// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides the file system helpers the certificate store and
// the CLI share, written against [POSIX] semantics with fallbacks for Windows.
//
// Key functions:
//   - WriteFileAtomic: Replaces a file through a temporary file and rename
//   - IsPortableName: Rejects entity names that would escape a directory
//   - GetExecutableName: Returns the executable name without extension for CLI usage
//
// # Usage Examples
//
// Writing a private key that is never visible with wider permissions:
//
//	if err := posix.WriteFileAtomic(path, pemBytes, posix.PrivateMode); err != nil {
//		return err
//	}
//
// Using the executable name in a cobra command:
//
//	rootCmd := &cobra.Command{
//	    Use:   posix.GetExecutableName(),
//	    Short: "Certificate hierarchy tool",
//	}
//
// The rename in WriteFileAtomic is atomic on [POSIX] file systems. On Windows
// it replaces the destination but is not guaranteed atomic.
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
