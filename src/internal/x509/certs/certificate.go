// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"
	"time"

	x509dn "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/dn"
	x509ext "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/ext"
)

var (
	// ErrUnsupportedAlgorithm indicates a certificate that is not an RSA PKCS#1 v1.5 certificate.
	ErrUnsupportedAlgorithm = errors.New("x509certs: unsupported key or signature algorithm")

	// ErrSignatureMismatch indicates a signature that does not verify under the given key.
	ErrSignatureMismatch = errors.New("x509certs: signature does not verify")
)

// Validity is the window during which a certificate is valid, both bounds inclusive.
type Validity struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// ValidFor returns a window starting at from and lasting d.
func ValidFor(from time.Time, d time.Duration) Validity {
	return Validity{NotBefore: from, NotAfter: from.Add(d)}
}

// ValidForDays returns a window starting at from and lasting days whole days.
func ValidForDays(from time.Time, days int) Validity {
	return Validity{NotBefore: from, NotAfter: from.AddDate(0, 0, days)}
}

// Contains reports whether t falls inside the window.
func (v Validity) Contains(t time.Time) bool {
	return !t.Before(v.NotBefore) && !t.After(v.NotAfter)
}

// truncate drops sub-second precision, which X.509 time cannot represent.
func (v Validity) truncate() Validity {
	return Validity{
		NotBefore: v.NotBefore.UTC().Truncate(time.Second),
		NotAfter:  v.NotAfter.UTC().Truncate(time.Second),
	}
}

// Certificate is an immutable, signed X.509 certificate.
type Certificate struct {
	raw        []byte
	subject    x509dn.Name
	issuer     x509dn.Name
	serial     *big.Int
	publicKey  *rsa.PublicKey
	validity   Validity
	extensions x509ext.Set
	digest     Digest
	std        *x509.Certificate
}

// Parse rebuilds a [Certificate] from DER.
//
// Only RSA keys signed with RSA PKCS#1 v1.5 over SHA-256, SHA-384 or SHA-512
// are accepted, and the names and extensions must belong to the supported set.
func Parse(der []byte) (*Certificate, error) {
	std, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
	}
	return fromX509(std)
}

func fromX509(std *x509.Certificate) (*Certificate, error) {
	pub, ok := std.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s key", ErrUnsupportedAlgorithm, std.PublicKeyAlgorithm)
	}

	digest, ok := digestFor(std.SignatureAlgorithm)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, std.SignatureAlgorithm)
	}

	subject, err := x509dn.Decode(std.RawSubject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %w", ErrParseCertificate, err)
	}
	issuer, err := x509dn.Decode(std.RawIssuer)
	if err != nil {
		return nil, fmt.Errorf("%w: issuer: %w", ErrParseCertificate, err)
	}

	exts, err := x509ext.Parse(std.Extensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
	}

	return &Certificate{
		raw:        std.Raw,
		subject:    subject,
		issuer:     issuer,
		serial:     new(big.Int).Set(std.SerialNumber),
		publicKey:  pub,
		validity:   Validity{NotBefore: std.NotBefore.UTC(), NotAfter: std.NotAfter.UTC()},
		extensions: exts,
		digest:     digest,
		std:        std,
	}, nil
}

// Subject returns the subject name.
func (c *Certificate) Subject() x509dn.Name { return c.subject }

// Issuer returns the issuer name.
func (c *Certificate) Issuer() x509dn.Name { return c.issuer }

// SerialNumber returns a copy of the serial number.
func (c *Certificate) SerialNumber() *big.Int { return new(big.Int).Set(c.serial) }

// PublicKey returns the subject public key.
func (c *Certificate) PublicKey() *rsa.PublicKey { return c.publicKey }

// Validity returns the validity window.
func (c *Certificate) Validity() Validity { return c.validity }

// Extensions returns the decoded extension set.
func (c *Certificate) Extensions() x509ext.Set { return c.extensions }

// Digest returns the digest used for the signature.
func (c *Certificate) Digest() Digest { return c.digest }

// SignatureAlgorithm returns the signature algorithm in standard library form.
func (c *Certificate) SignatureAlgorithm() x509.SignatureAlgorithm { return c.std.SignatureAlgorithm }

// Signature returns a copy of the signature bytes.
func (c *Certificate) Signature() []byte { return bytes.Clone(c.std.Signature) }

// TBS returns a copy of the exact bytes covered by the signature.
func (c *Certificate) TBS() []byte { return bytes.Clone(c.std.RawTBSCertificate) }

// Raw returns a copy of the complete DER encoding.
func (c *Certificate) Raw() []byte { return bytes.Clone(c.raw) }

// X509 returns the standard library view of the certificate for reporting.
// Callers must not modify it.
func (c *Certificate) X509() *x509.Certificate { return c.std }

// IsCA reports whether the basic constraints mark the certificate as a CA.
func (c *Certificate) IsCA() bool { return c.extensions.IsCA() }

// IsSelfIssued reports whether subject and issuer are the same name.
func (c *Certificate) IsSelfIssued() bool { return x509dn.Equal(c.subject, c.issuer) }

// Equal reports whether c and other have the same DER encoding.
func (c *Certificate) Equal(other *Certificate) bool {
	if c == nil || other == nil {
		return c == other
	}
	return bytes.Equal(c.raw, other.raw)
}

// VerifySignature recomputes the digest over the TBS bytes and checks the
// signature against pub.
func (c *Certificate) VerifySignature(pub *rsa.PublicKey) error {
	return verify(pub, c.digest, c.std.RawTBSCertificate, c.std.Signature)
}

func verify(pub *rsa.PublicKey, digest Digest, tbs, signature []byte) error {
	if pub == nil {
		return ErrSignatureMismatch
	}
	h := digest.Hash().New()
	h.Write(tbs)
	if err := rsa.VerifyPKCS1v15(pub, digest.Hash(), h.Sum(nil), signature); err != nil {
		return fmt.Errorf("%w: %w", ErrSignatureMismatch, err)
	}
	return nil
}
