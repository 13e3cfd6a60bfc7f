// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/hierarchy"
	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/chain"
	"github.com/mark3labs/mcp-go/mcp"
)

// handleCreateHierarchy creates the root and intermediate authorities.
//
// The result lists both certificates and carries the root in PEM form, so a
// client can install it as a trust anchor.
func handleCreateHierarchy(ctx context.Context, request mcp.CallToolRequest, svc *hierarchy.Service) (*mcp.CallToolResult, error) {
	force := request.GetBool("force", false)

	intermediate, err := svc.Init(ctx, force)
	if err != nil {
		if errors.Is(err, hierarchy.ErrExists) {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create hierarchy: %v (set force to replace it)", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to create hierarchy: %v", err)), nil
	}

	root := intermediate.Root()
	var b strings.Builder
	fmt.Fprintf(&b, "Hierarchy created in %s:\n", svc.Store().Dir())
	describeChain(&b, []*x509certs.Certificate{intermediate.Certificate(), root})
	b.WriteString("\nRoot CA certificate:\n")
	b.Write(x509certs.NewCodec().EncodePEM(root))

	return mcp.NewToolResultText(b.String()), nil
}

// handleIssueCertificate issues one server certificate with the stored intermediate.
func handleIssueCertificate(ctx context.Context, request mcp.CallToolRequest, svc *hierarchy.Service) (*mcp.CallToolResult, error) {
	domain, err := request.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("domain parameter required: %v", err)), nil
	}

	req := hierarchy.Request{
		Domain:      domain,
		Name:        request.GetString("name", ""),
		DNSNames:    splitList(request.GetString("dns_names", "")),
		IPAddresses: splitList(request.GetString("ip_addresses", "")),
	}
	issued, err := svc.Issue(ctx, req)
	if err != nil {
		if errors.Is(err, hierarchy.ErrMissing) {
			return mcp.NewToolResultError(fmt.Sprintf("failed to issue certificate: %v (run create_hierarchy first)", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to issue certificate: %v", err)), nil
	}

	leaf := issued[0].Leaf
	store := svc.Store()
	var b strings.Builder
	fmt.Fprintf(&b, "Certificate issued for %q:\n", domain)
	describeChain(&b, leaf.FullChain())
	fmt.Fprintf(&b, "\nFiles:\n- certificate: %s\n- private key: %s\n- full chain: %s\n",
		store.CertificatePath(issued[0].Name), store.KeyPath(issued[0].Name), store.BundlePath(issued[0].Name))
	b.WriteString("\nFull chain:\n")
	b.Write(x509certs.NewCodec().EncodeMultiplePEM(leaf.FullChain()))

	return mcp.NewToolResultText(b.String()), nil
}

// handleValidateChain validates a chain and reports the first failure.
func handleValidateChain(_ context.Context, request mcp.CallToolRequest, svc *hierarchy.Service) (*mcp.CallToolResult, error) {
	below, anchor, at, err := chainInput(request, svc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := x509chain.Validate(below, anchor, at)
	if err != nil {
		var verr *x509chain.ValidationError
		if errors.As(err, &verr) && verr.Index < len(below) {
			return mcp.NewToolResultError(fmt.Sprintf("chain validation failed at %q: %v",
				below[verr.Index].Subject().CommonName(), err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("chain validation failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Chain valid: %d certificate(s) up to %q at %s\n",
		result.Length, anchor.Subject().CommonName(), result.ReferenceTime.UTC().Format(time.RFC3339))
	describeChain(&b, append(slices.Clone(below), anchor))

	return mcp.NewToolResultText(b.String()), nil
}

// handleInspectChain renders a chain as a tree, table or JSON.
// A chain that fails validation is still rendered with the failure marked.
func handleInspectChain(_ context.Context, request mcp.CallToolRequest, svc *hierarchy.Service) (*mcp.CallToolResult, error) {
	format := request.GetString("format", formatTree)
	if !slices.Contains([]string{formatTree, formatTable, formatJSON}, format) {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q: want tree, table or json", format)), nil
	}

	below, anchor, at, err := chainInput(request, svc)
	if err != nil && !errors.Is(err, hierarchy.ErrNoAnchor) {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verr := err
	ch := x509chain.New(below...)
	if anchor != nil {
		_, verr = x509chain.Validate(below, anchor, at)
		ch = x509chain.New(append(slices.Clone(below), anchor)...)
	}
	status := ch.Statuses(verr)

	var output string
	switch format {
	case formatJSON:
		data, err := ch.ToVisualizationJSON(status)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render chain: %v", err)), nil
		}
		output = string(data)
	case formatTable:
		output = ch.RenderTable(status)
	default:
		output = ch.RenderASCIITree(status)
	}

	if verr != nil {
		output += fmt.Sprintf("\nValidation: %v\n", verr)
	} else if format != formatJSON {
		output += "\nValidation: chain is valid\n"
	}
	return mcp.NewToolResultText(output), nil
}

// chainInput reads the certificate, anchor and at arguments shared by the chain tools.
func chainInput(request mcp.CallToolRequest, svc *hierarchy.Service) ([]*x509certs.Certificate, *x509certs.Certificate, time.Time, error) {
	input, err := request.RequireString("certificate")
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("certificate parameter required: %w", err)
	}
	at, err := hierarchy.ParseTime(request.GetString("at", ""))
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	certs, err := readCertificates(input)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("failed to read certificate: %w", err)
	}

	var anchor *x509certs.Certificate
	if a := request.GetString("anchor", ""); a != "" {
		anchors, err := readCertificates(a)
		if err != nil {
			return nil, nil, time.Time{}, fmt.Errorf("failed to read anchor: %w", err)
		}
		anchor = anchors[0]
	}

	below, anchor, err := svc.ResolveAnchor(certs, anchor)
	return below, anchor, at, err
}

// readCertificates decodes input given as PEM text, a file path, or base64
// encoded PEM or DER data, in that order of preference.
func readCertificates(input string) ([]*x509certs.Certificate, error) {
	var data []byte
	switch {
	case strings.Contains(input, "-----BEGIN"):
		data = []byte(input)
	default:
		if fileData, err := os.ReadFile(input); err == nil {
			data = fileData
		} else if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(input)); err == nil {
			data = decoded
		} else {
			return nil, errors.New("not PEM text, a readable file path or base64 data")
		}
	}

	certs, err := x509certs.NewCodec().DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, errors.New("no certificates found")
	}
	return certs, nil
}

// describeChain writes one numbered line per certificate.
func describeChain(b *strings.Builder, certs []*x509certs.Certificate) {
	for i, c := range certs {
		fmt.Fprintf(b, "%d: %s (serial %s, valid until %s)\n", i+1, c.Subject().CommonName(),
			c.SerialNumber().Text(16), c.Validity().NotAfter.UTC().Format(time.DateOnly))
	}
}

// splitList splits a comma-separated argument, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
