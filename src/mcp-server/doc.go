// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver exposes the certificate hierarchy as a Model Context
// Protocol ([MCP]) server over stdio.
//
// Tools create the root and intermediate authorities, issue server
// certificates, and validate or render [X509] chains against the stored
// root. Resources describe the server, the profile template and its schema,
// and the store layout. The server is assembled with [ServerBuilder].
//
// [X509]: https://grokipedia.com/page/X.509
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
