// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/helper/gc"
	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")
)

// Codec moves certificates between PEM, DER and PKCS#7.
// The zero value is not usable; create one with [NewCodec].
type Codec struct {
	certBlockType string
}

// NewCodec creates a Codec for "CERTIFICATE" PEM blocks.
func NewCodec() *Codec {
	return &Codec{
		certBlockType: "CERTIFICATE",
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Codec) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// DecodeX509 decodes every certificate in data without restricting key or
// signature algorithms. PEM bundles, concatenated DER and PKCS#7 are accepted.
// It backs reporting on certificates the hierarchy did not issue.
func (c *Codec) DecodeX509(data []byte) ([]*x509.Certificate, error) {
	if c.IsPEM(data) {
		var certs []*x509.Certificate

		for len(data) > 0 {
			block, rest := pem.Decode(data)
			if block == nil {
				break
			}
			if block.Type != c.certBlockType {
				return nil, ErrInvalidBlockType
			}

			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, ErrParseCertificate
			}

			certs = append(certs, cert)
			data = rest
		}

		return certs, nil
	}

	certs, err := x509.ParseCertificates(data)
	if err == nil {
		return certs, nil
	}

	// Attempt to parse as PKCS7 using Cloudflare's library
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParseCertificate
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}

	return p.Content.SignedData.Certificates, nil
}

// DecodeMultiple decodes one or more hierarchy certificates from data.
func (c *Codec) DecodeMultiple(data []byte) ([]*Certificate, error) {
	raw, err := c.DecodeX509(data)
	if err != nil {
		return nil, err
	}

	certs := make([]*Certificate, 0, len(raw))
	for _, std := range raw {
		cert, err := fromX509(std)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// Decode decodes a single certificate from data. For PEM input only the
// first block is read; DER input falls back to PKCS#7.
func (c *Codec) Decode(data []byte) (*Certificate, error) {
	if c.IsPEM(data) {
		block, _ := pem.Decode(data)
		if block.Type != c.certBlockType {
			return nil, ErrInvalidBlockType
		}
		data = block.Bytes
	}

	if std, err := x509.ParseCertificate(data); err == nil {
		return fromX509(std)
	}

	// Attempt to parse as PKCS7 using Cloudflare's library
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParseCertificate
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}

	return fromX509(p.Content.SignedData.Certificates[0])
}

// EncodePEM encodes a certificate to PEM format.
func (c *Codec) EncodePEM(cert *Certificate) []byte {
	block := pem.Block{
		Type:  c.certBlockType,
		Bytes: cert.raw,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeDER encodes a certificate to DER format.
func (c *Codec) EncodeDER(cert *Certificate) []byte { return cert.Raw() }

// EncodeMultiplePEM encodes certs, in order, as one PEM bundle.
func (c *Codec) EncodeMultiplePEM(certs []*Certificate) []byte {
	data, _ := gc.Collect(func(buf gc.Buffer) error {
		for _, cert := range certs {
			if err := pem.Encode(buf, &pem.Block{Type: c.certBlockType, Bytes: cert.raw}); err != nil {
				return err
			}
		}
		return nil
	})
	return data
}

// EncodeMultipleDER concatenates the DER encodings of certs.
func (c *Codec) EncodeMultipleDER(certs []*Certificate) []byte {
	data, _ := gc.Collect(func(buf gc.Buffer) error {
		for _, cert := range certs {
			if _, err := buf.Write(cert.raw); err != nil {
				return err
			}
		}
		return nil
	})
	return data
}
