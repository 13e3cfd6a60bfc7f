// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/config"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/hierarchy"
	x509store "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/store"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/logger"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/mcp-server/templates"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/version"
	"github.com/mark3labs/mcp-go/server"
)

var appVersion = version.Version // default version

// GetVersion returns the current version of the MCP server.
//
// The version is initially set to the default from the version package,
// but is overridden when calling [Run] with a specific version string.
func GetVersion() string {
	return appVersion
}

// Run starts the MCP server on stdio.
//
// Parameters:
//   - version: Version string reported to clients
//
// Returns:
//   - error: Startup or transport error. A SIGINT or SIGTERM shutdown returns nil.
//
// Configuration:
//   - Loads the hierarchy profile from the TLS_HIERARCHY_CONFIG_FILE environment variable
//   - Falls back to the default profile if the variable is not set
//   - Opens the certificate store at the profile output directory
//
// Logs are written to stderr as JSON lines, leaving stdout to the protocol.
func Run(version string) error {
	appVersion = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, os.Stdin, os.Stdout, logger.NewJSONLogger(os.Stderr, false))
}

// serve runs the server on in and out until ctx is done or the input closes.
func serve(ctx context.Context, in io.Reader, out io.Writer, jl *logger.JSONLogger) error {
	if err := config.LoadEnvFile(""); err != nil {
		return err
	}
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	store, err := x509store.Open(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	svc := hierarchy.New(cfg, store, jl.WithComponent("hierarchy"))

	s, err := newServer(svc, appVersion)
	if err != nil {
		return err
	}

	stdioServer := server.NewStdioServer(s)
	stdioServer.SetErrorLogger(log.New(errorWriter{jl.WithComponent("stdio")}, "", 0))

	jl.Printf("%s %s serving on stdio, store %s", serverName, appVersion, store.Dir())
	err = stdioServer.Listen(ctx, in, out)
	if ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
		jl.Println("Shutting down")
		return nil
	}
	return err
}

// newServer builds the server with the default tools and resources.
func newServer(svc *hierarchy.Service, version string) (*server.MCPServer, error) {
	tools := createTools()
	instructions, err := loadInstructions(templates.MagicEmbed, tools)
	if err != nil {
		return nil, fmt.Errorf("failed to load instructions: %w", err)
	}

	s, err := NewServerBuilder().
		WithService(svc).
		WithEmbed(templates.MagicEmbed).
		WithVersion(version).
		WithTools(tools...).
		WithDefaultResources().
		WithInstructions(instructions).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build server: %w", err)
	}
	return s, nil
}

// errorWriter adapts a [logger.Logger] to the *log.Logger the stdio server reports to.
type errorWriter struct{ l logger.Logger }

func (w errorWriter) Write(p []byte) (int, error) {
	w.l.Errorf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
