// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/authority"
	"github.com/mark3labs/mcp-go/mcp"
)

// Output formats accepted by inspect_chain.
const (
	formatTree  = "tree"
	formatTable = "table"
	formatJSON  = "json"
)

// createTools creates and returns all MCP tool definitions with their handlers.
//
// The function defines the following tools:
//   - create_hierarchy: Creates the root and intermediate authorities
//   - issue_certificate: Issues a server certificate and its full-chain bundle
//   - validate_chain: Validates a chain against the stored or a supplied root
//   - inspect_chain: Renders a chain with per-certificate validation status
func createTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("create_hierarchy",
				mcp.WithDescription("Create the root CA and the intermediate CA signed by it, and save both in the certificate store"),
				mcp.WithBoolean("force",
					mcp.Description("Replace an existing hierarchy (default: false)"),
					mcp.DefaultBool(false),
				),
			),
			Handler: handleCreateHierarchy,
			Role:    "hierarchyCreator",
		},
		{
			Tool: mcp.NewTool("issue_certificate",
				mcp.WithDescription("Issue a TLS server certificate signed by the intermediate CA and save it with its key and full-chain bundle"),
				mcp.WithString("domain",
					mcp.Required(),
					mcp.Description("Domain used as common name and first DNS subject alternative name"),
				),
				mcp.WithString("dns_names",
					mcp.Description("Comma-separated additional DNS names"),
				),
				mcp.WithString("ip_addresses",
					mcp.Description("Comma-separated IP addresses (default: "+authority.DefaultLeafIP+")"),
				),
				mcp.WithString("name",
					mcp.Description("Store name for the files (default: the domain)"),
				),
			),
			Handler: handleIssueCertificate,
			Role:    "leafIssuer",
		},
		{
			Tool: mcp.NewTool("validate_chain",
				mcp.WithDescription("Validate a leaf-first certificate chain against a trust anchor, reporting the first failing certificate"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Chain as a file path, PEM text, or base64-encoded PEM/DER data"),
				),
				mcp.WithString("anchor",
					mcp.Description("Trust anchor in the same forms (default: trailing root of the chain, then the stored root)"),
				),
				mcp.WithString("at",
					mcp.Description("Reference time, RFC 3339 or YYYY-MM-DD (default: now)"),
				),
			),
			Handler: handleValidateChain,
			Role:    "chainValidator",
		},
		{
			Tool: mcp.NewTool("inspect_chain",
				mcp.WithDescription("Render a certificate chain with roles, keys, validity and per-certificate validation status"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Chain as a file path, PEM text, or base64-encoded PEM/DER data"),
				),
				mcp.WithString("anchor",
					mcp.Description("Trust anchor in the same forms (default: trailing root of the chain, then the stored root)"),
				),
				mcp.WithString("at",
					mcp.Description("Reference time, RFC 3339 or YYYY-MM-DD (default: now)"),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'tree', 'table', or 'json' (default: tree)"),
					mcp.DefaultString(formatTree),
					mcp.Enum(formatTree, formatTable, formatJSON),
				),
			),
			Handler: handleInspectChain,
			Role:    "chainInspector",
		},
	}
}
