// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/hierarchy"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/mcp-server/templates"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// serverName is the name reported to MCP clients.
const serverName = "TLS Certificate Hierarchy"

// ErrMissingService indicates a server built with tools but no [hierarchy.Service].
var ErrMissingService = errors.New("mcpserver: tools require a hierarchy service")

// ToolHandler defines the signature for tool handlers that matches [MCP] server expectations.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolHandlerWithService defines tool handlers that operate on the hierarchy.
//
// Parameters:
//   - ctx: Context for cancellation
//   - request: The MCP tool call request containing arguments and metadata
//   - svc: The hierarchy the server was built with
//
// Returns:
//   - The tool execution result. Failures of the operation itself are reported
//     as error results, not as a Go error.
type ToolHandlerWithService func(ctx context.Context, request mcp.CallToolRequest, svc *hierarchy.Service) (*mcp.CallToolResult, error)

// ResourceHandler defines the signature for resource handlers.
type ResourceHandler = func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)

// ToolDefinition pairs an MCP tool with its implementation.
//
// Fields:
//   - Tool: The MCP tool definition containing name, description, and input schema
//   - Handler: The function that implements the tool's logic
//   - Role: Short label the instructions template uses to refer to the tool
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandlerWithService
	Role    string
}

// bind closes the handler over svc.
func (d ToolDefinition) bind(svc *hierarchy.Service) ToolHandler {
	handler := d.Handler
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handler(ctx, request, svc)
	}
}

// ServerDependencies holds all dependencies needed to create the MCP server.
//
// Fields:
//   - Service: The hierarchy the tools operate on
//   - Embed: Embedded filesystem for templates and documentation
//   - Version: Server version string
//   - Tools: Tool definitions bound to Service at build time
//   - Resources: Static and dynamic resources
//   - Instructions: Text sent to clients on initialization
type ServerDependencies struct {
	Service      *hierarchy.Service
	Embed        templates.EmbedFS
	Version      string
	Tools        []ToolDefinition
	Resources    []server.ServerResource
	Instructions string
}

// ServerBuilder assembles an [server.MCPServer] from [ServerDependencies].
//
// Example usage:
//
//	s, err := NewServerBuilder().
//		WithService(svc).
//		WithVersion(version).
//		WithDefaultTools().
//		WithDefaultResources().
//		Build()
type ServerBuilder struct{ deps ServerDependencies }

// NewServerBuilder creates a new server builder.
func NewServerBuilder() *ServerBuilder {
	return &ServerBuilder{deps: ServerDependencies{Embed: templates.MagicEmbed}}
}

// WithService sets the hierarchy the tools operate on.
func (b *ServerBuilder) WithService(svc *hierarchy.Service) *ServerBuilder {
	b.deps.Service = svc
	return b
}

// WithEmbed sets the embedded filesystem used for templates and documentation.
func (b *ServerBuilder) WithEmbed(embed templates.EmbedFS) *ServerBuilder {
	b.deps.Embed = embed
	return b
}

// WithVersion sets the server version.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.deps.Version = version
	return b
}

// WithTools adds tools to the server.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.deps.Tools = append(b.deps.Tools, tools...)
	return b
}

// WithDefaultTools adds the hierarchy tools from [createTools].
func (b *ServerBuilder) WithDefaultTools() *ServerBuilder {
	return b.WithTools(createTools()...)
}

// WithResources adds resources to the server.
func (b *ServerBuilder) WithResources(resources ...server.ServerResource) *ServerBuilder {
	b.deps.Resources = append(b.deps.Resources, resources...)
	return b
}

// WithDefaultResources adds the resources from [createResources]. It must
// be called after the version, embed and tools are set.
func (b *ServerBuilder) WithDefaultResources() *ServerBuilder {
	return b.WithResources(createResources(b.deps)...)
}

// WithInstructions sets the initialization instructions.
func (b *ServerBuilder) WithInstructions(instructions string) *ServerBuilder {
	b.deps.Instructions = instructions
	return b
}

// Build creates the MCP server with all configured dependencies.
//
// Returns:
//   - *server.MCPServer: The server with every tool and resource registered
//   - error: [ErrMissingService] when tools are configured without a service
func (b *ServerBuilder) Build() (*server.MCPServer, error) {
	if len(b.deps.Tools) > 0 && b.deps.Service == nil {
		return nil, ErrMissingService
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
	}
	if b.deps.Instructions != "" {
		opts = append(opts, server.WithInstructions(b.deps.Instructions))
	}
	s := server.NewMCPServer(serverName, b.deps.Version, opts...)

	for _, tool := range b.deps.Tools {
		s.AddTool(tool.Tool, tool.bind(b.deps.Service))
	}

	for _, resource := range b.deps.Resources {
		s.AddResource(resource.Resource, resource.Handler)
	}

	return s, nil
}
