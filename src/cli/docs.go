// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for building and checking a
// three-tier TLS certificate hierarchy.
//
// It implements a Cobra-based CLI with the subcommands keygen, init, issue,
// validate and inspect. Material is read from and written to a certificate
// store directory; defaults come from the profile loaded by the config
// package. Output goes through the logger package, and every long running
// step honours context cancellation.
package cli
