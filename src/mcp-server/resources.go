// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/config"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/mcp-server/templates"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	uriVersion        = "info://version"
	uriConfigTemplate = "config://template"
	uriConfigSchema   = "config://schema"
	uriStoreLayout    = "docs://store-layout"
)

// createResources creates the static resources of the server.
//
// The resources are:
//   - info://version: Server name, version and capabilities
//   - config://template: The default hierarchy profile
//   - config://schema: The JSON Schema profiles are validated against
//   - docs://store-layout: How certificates and keys are laid out on disk
func createResources(deps ServerDependencies) []server.ServerResource {
	resources := []server.ServerResource{
		{
			Resource: mcp.NewResource(uriConfigTemplate, "Profile Template",
				mcp.WithResourceDescription("Default hierarchy profile: subject, key sizes, digests, validity and output directory"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleConfigResource,
		},
		{
			Resource: mcp.NewResource(uriConfigSchema, "Profile Schema",
				mcp.WithResourceDescription("JSON Schema for hierarchy profiles"),
				mcp.WithMIMEType("application/schema+json"),
			),
			Handler: handleSchemaResource,
		},
		{
			Resource: mcp.NewResource(uriStoreLayout, "Store Layout",
				mcp.WithResourceDescription("File names and permissions used by the certificate store"),
				mcp.WithMIMEType("text/markdown"),
			),
			Handler: embeddedResource(deps.Embed, uriStoreLayout, "store-layout.md"),
		},
	}

	uris := []string{uriVersion}
	for _, r := range resources {
		uris = append(uris, r.Resource.URI)
	}
	version := server.ServerResource{
		Resource: mcp.NewResource(uriVersion, "Server Version",
			mcp.WithResourceDescription("Server name, version and capabilities"),
			mcp.WithMIMEType("application/json"),
		),
		Handler: versionResource(deps.Version, deps.Tools, uris),
	}

	return append([]server.ServerResource{version}, resources...)
}

// versionResource returns a handler describing the server, its tools and resources.
func versionResource(version string, tools []ToolDefinition, uris []string) ResourceHandler {
	type toolEntry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	entries := make([]toolEntry, 0, len(tools))
	for _, t := range tools {
		entries = append(entries, toolEntry{Name: t.Tool.Name, Description: t.Tool.Description})
	}

	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		versionInfo := map[string]any{
			"name":    serverName,
			"version": version,
			"type":    "MCP Server",
			"capabilities": map[string]any{
				"tools":     entries,
				"resources": uris,
			},
			"supportedFormats": []string{formatTree, formatTable, formatJSON},
		}

		jsonData, err := json.MarshalIndent(versionInfo, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal version info: %w", err)
		}
		return textContents(uriVersion, "application/json", jsonData), nil
	}
}

// handleConfigResource serves the default profile as JSON.
func handleConfigResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := config.Template()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config template: %w", err)
	}
	return textContents(uriConfigTemplate, "application/json", data), nil
}

// handleSchemaResource serves the embedded profile schema.
func handleSchemaResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return textContents(uriConfigSchema, "application/schema+json", config.Schema()), nil
}

// embeddedResource serves a markdown file from fsys.
func embeddedResource(fsys templates.EmbedFS, uri, name string) ResourceHandler {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := fsys.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return textContents(uri, "text/markdown", data), nil
	}
}

func textContents(uri, mimeType string, data []byte) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeType,
			Text:     string(data),
		},
	}
}

// instructionData holds the data used to populate the MCP server instructions template.
type instructionData struct {
	Tools     []toolInfo
	ToolRoles map[string]string // Maps tool roles to tool names for template use
}

// toolInfo represents information about an MCP tool for template rendering.
type toolInfo struct {
	Name        string
	Description string
}

// loadInstructions renders the instructions template from fsys with the given tools.
//
// Returns:
//   - string: The instruction text sent to clients on initialization
//   - error: If the template cannot be read, parsed or executed
func loadInstructions(fsys templates.EmbedFS, tools []ToolDefinition) (string, error) {
	templateBytes, err := fsys.ReadFile("instructions.md")
	if err != nil {
		return "", fmt.Errorf("failed to load MCP server instructions template: %w", err)
	}

	data := instructionData{ToolRoles: make(map[string]string, len(tools))}
	for _, tool := range tools {
		data.Tools = append(data.Tools, toolInfo{Name: tool.Tool.Name, Description: tool.Tool.Description})
		if tool.Role != "" {
			data.ToolRoles[tool.Role] = tool.Tool.Name
		}
	}

	tmpl, err := template.New("instructions").Option("missingkey=error").Parse(string(templateBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse instructions template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute instructions template: %w", err)
	}
	return buf.String(), nil
}
