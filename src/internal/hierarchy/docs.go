// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package hierarchy runs the three tier workflow on top of a certificate
// store: create the root and intermediate authorities, issue server
// certificates with their full-chain bundles, and resolve the trust anchor a
// chain should be validated against.
//
// It is shared by the command line tool and the MCP server. Only the
// intermediate key is loaded when issuing; the root key is written once by
// [Service.Init] and never read back.
package hierarchy
