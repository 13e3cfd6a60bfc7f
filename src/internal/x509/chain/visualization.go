// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderASCIITree renders the certificate chain as an ASCII tree diagram.
//
// It displays the certificate hierarchy with visual connectors showing the
// relationship between leaf, intermediate, and root certificates.
//
// Parameters:
//   - status: Optional map of certificate serial numbers to validation status, see [Chain.Statuses]
//
// Returns:
//   - string: ASCII tree representation of the certificate chain
func (ch *Chain) RenderASCIITree(status map[string]string) string {
	if len(ch.Certs) == 0 {
		return "No certificates in chain"
	}

	var result strings.Builder
	for i, cert := range ch.Certs {
		isLast := i == len(ch.Certs)-1

		// Certificate icon and connector
		connector := "├── "
		if isLast {
			connector = "└── "
		}

		// Status indicator
		statusIcon := "✓"
		if s, exists := status[cert.SerialNumber().String()]; exists && s != StatusValid {
			statusIcon = "✗"
		}

		// Certificate info
		role := ch.getCertificateRole(i)
		certInfo := fmt.Sprintf("[%s] %s", statusIcon, cert.Subject().CommonName())
		if role != "" {
			certInfo += fmt.Sprintf(" (%s)", role)
		}

		result.WriteString(connector + certInfo + "\n")
	}

	return result.String()
}

// RenderTable renders the certificate chain as a formatted markdown table.
//
// It displays certificate details including role, subject, issuer, validity dates,
// key size, and validation status in a tabular format using tablewriter.
//
// Parameters:
//   - status: Optional map of certificate serial numbers to validation status, see [Chain.Statuses]
//
// Returns:
//   - string: Markdown table representation of the certificate chain
func (ch *Chain) RenderTable(status map[string]string) string {
	if len(ch.Certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	// Headers with emojis
	headers := []string{"🔢 #", "🏷️ Role", "📛 Subject", "🏢 Issuer", "📅 Valid Until", "🔐 Key Size", "✅ Status"}
	table.Header(headers)

	// Prepare rows
	var rows [][]string
	for i, cert := range ch.Certs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			ch.getCertificateRole(i),
			cert.Subject().CommonName(),
			cert.Issuer().CommonName(),
			cert.Validity().NotAfter.Format("2006-01-02"),
			fmt.Sprintf("%d-bit RSA", cert.PublicKey().N.BitLen()),
			statusOf(status, cert),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// ToVisualizationJSON converts the certificate chain to structured JSON for external tools.
//
// It creates a comprehensive data structure including certificate details,
// hierarchical relationships, and validation status suitable for visualization
// tools or programmatic processing.
//
// Parameters:
//   - status: Optional map of certificate serial numbers to validation status, see [Chain.Statuses]
//
// Returns:
//   - []byte: JSON representation of the certificate chain
//   - error: Error if JSON marshaling fails
func (ch *Chain) ToVisualizationJSON(status map[string]string) ([]byte, error) {
	type CertificateVizData struct {
		Index              int       `json:"index"`
		Role               string    `json:"role"`
		Subject            string    `json:"subject"`
		Issuer             string    `json:"issuer"`
		SerialNumber       string    `json:"serialNumber"`
		SignatureAlgorithm string    `json:"signatureAlgorithm"`
		PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
		KeySize            int       `json:"keySize"`
		NotBefore          time.Time `json:"notBefore"`
		NotAfter           time.Time `json:"notAfter"`
		IsCA               bool      `json:"isCA"`
		PathLength         *int      `json:"pathLength,omitempty"`
		KeyUsage           []string  `json:"keyUsage,omitempty"`
		ExtKeyUsage        []string  `json:"extKeyUsage,omitempty"`
		SubjectAltNames    []string  `json:"subjectAltNames,omitempty"`
		Status             string    `json:"status"`
	}

	type RelationshipData struct {
		FromIndex int    `json:"fromIndex"`
		ToIndex   int    `json:"toIndex"`
		Type      string `json:"type"`
	}

	type VisualizationData struct {
		Timestamp     string               `json:"timestamp"`
		ChainLength   int                  `json:"chainLength"`
		Certificates  []CertificateVizData `json:"certificates"`
		Relationships []RelationshipData   `json:"relationships"`
	}

	data := VisualizationData{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ChainLength:   len(ch.Certs),
		Certificates:  make([]CertificateVizData, len(ch.Certs)),
		Relationships: make([]RelationshipData, 0, max(len(ch.Certs)-1, 0)),
	}

	// Convert certificates
	for i, cert := range ch.Certs {
		exts := cert.Extensions()

		var pathLen *int
		if bc, ok := exts.BasicConstraints(); ok {
			if n, ok := bc.PathLen(); ok {
				pathLen = &n
			}
		}

		var keyUsage []string
		if ku, ok := exts.KeyUsage(); ok {
			keyUsage = ku.Names()
		}

		var extKeyUsage []string
		for _, u := range exts.ExtKeyUsage() {
			extKeyUsage = append(extKeyUsage, u.String())
		}

		var sans []string
		if san, ok := exts.SubjectAltName(); ok {
			for _, e := range san.Entries() {
				sans = append(sans, e.String())
			}
		}

		data.Certificates[i] = CertificateVizData{
			Index:              i,
			Role:               ch.getCertificateRole(i),
			Subject:            cert.Subject().String(),
			Issuer:             cert.Issuer().String(),
			SerialNumber:       cert.SerialNumber().String(),
			SignatureAlgorithm: cert.SignatureAlgorithm().String(),
			PublicKeyAlgorithm: "RSA",
			KeySize:            cert.PublicKey().N.BitLen(),
			NotBefore:          cert.Validity().NotBefore,
			NotAfter:           cert.Validity().NotAfter,
			IsCA:               cert.IsCA(),
			PathLength:         pathLen,
			KeyUsage:           keyUsage,
			ExtKeyUsage:        extKeyUsage,
			SubjectAltNames:    sans,
			Status:             statusOf(status, cert),
		}
	}

	// Build relationships (each cert is signed by the next one in chain)
	for i := 0; i < len(ch.Certs)-1; i++ {
		data.Relationships = append(data.Relationships, RelationshipData{
			FromIndex: i,
			ToIndex:   i + 1,
			Type:      "signed_by",
		})
	}

	return json.MarshalIndent(data, "", "  ")
}

// getCertificateRole determines the role of a certificate in the chain.
//
// Roles come from the certificate itself rather than its position, so a
// chain without its root still labels the intermediate correctly.
//
// Parameters:
//   - index: Zero-based position of the certificate in the chain
//
// Returns:
//   - string: Role description ("End-Entity (Server/Leaf) Certificate", "Intermediate CA Certificate", ...)
func (ch *Chain) getCertificateRole(index int) string {
	cert := ch.Certs[index]
	switch {
	case ch.IsRootNode(cert):
		return "Root CA Certificate"
	case cert.IsCA():
		return "Intermediate CA Certificate"
	case len(ch.Certs) == 1 && ch.IsSelfSigned(cert):
		return "Self-Signed Certificate"
	default:
		return "End-Entity (Server/Leaf) Certificate"
	}
}

// statusOf looks up the status of cert, defaulting to unknown.
func statusOf(status map[string]string, cert *x509certs.Certificate) string {
	if s, exists := status[cert.SerialNumber().String()]; exists {
		return s
	}
	return StatusUnknown
}
