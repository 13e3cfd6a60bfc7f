// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// mcp-server exposes the certificate hierarchy to MCP clients over stdio.
//
// The store directory and key sizes come from the profile named by
// $TLS_HIERARCHY_CONFIG_FILE. The key password is read from
// $TLS_HIERARCHY_KEY_PASSWORD, optionally exported by the dotenv file named by
// $TLS_HIERARCHY_ENV_FILE.
//
// Example client configuration:
//
//	{
//	  "mcpServers": {
//	    "tls-cert-hierarchy": {
//	      "command": "mcp-server",
//	      "env": {"TLS_HIERARCHY_CONFIG_FILE": "/etc/tls-hierarchy/profile.yaml"}
//	    }
//	  }
//	}
package main

import (
	"fmt"
	"os"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/mcp-server"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = mcpserver.GetVersion()
	}
}

func main() {
	if err := mcpserver.Run(version); err != nil {
		// stdout belongs to the protocol.
		fmt.Fprintf(os.Stderr, "mcp-server: %v\n", err)
		os.Exit(1)
	}
}
