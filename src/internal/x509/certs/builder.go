// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	x509dn "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/dn"
	x509ext "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/ext"
)

var (
	// ErrInvalidRequest indicates a request missing its subject, key or issuer.
	ErrInvalidRequest = errors.New("x509certs: invalid certificate request")

	// ErrInvalidValidityWindow indicates NotBefore is not strictly before NotAfter.
	ErrInvalidValidityWindow = errors.New("x509certs: invalid validity window")

	// ErrSelfSignedKeyMismatch indicates a self-signed request whose signer does
	// not hold the private half of the embedded public key.
	ErrSelfSignedKeyMismatch = errors.New("x509certs: self-signed key mismatch")

	// ErrIssuerKeyMismatch indicates a signer that does not belong to the issuing certificate.
	ErrIssuerKeyMismatch = errors.New("x509certs: signer does not match issuer certificate")

	// ErrConstraintConflict is returned when the request's extensions contradict
	// each other. It is the same value as [x509ext.ErrConstraintConflict].
	ErrConstraintConflict = x509ext.ErrConstraintConflict
)

// serialLimit is 2^128; serials are drawn uniformly from [1, serialLimit).
var serialLimit = new(big.Int).Lsh(big.NewInt(1), 128)

// Digest selects the hash used with RSA PKCS#1 v1.5 signatures.
type Digest int

const (
	SHA256 Digest = iota + 1
	SHA384
	SHA512
)

// DefaultDigest is used when a [Request] leaves Digest unset.
const DefaultDigest = SHA256

var digests = []struct {
	digest Digest
	name   string
	hash   crypto.Hash
	alg    x509.SignatureAlgorithm
}{
	{SHA256, "sha256", crypto.SHA256, x509.SHA256WithRSA},
	{SHA384, "sha384", crypto.SHA384, x509.SHA384WithRSA},
	{SHA512, "sha512", crypto.SHA512, x509.SHA512WithRSA},
}

// ParseDigest maps names such as "sha256" or "SHA-384" to a [Digest].
func ParseDigest(name string) (Digest, error) {
	normalized := strings.ReplaceAll(strings.ToLower(name), "-", "")
	for _, d := range digests {
		if d.name == normalized {
			return d.digest, nil
		}
	}
	return 0, fmt.Errorf("%w: digest %q", ErrUnsupportedAlgorithm, name)
}

func (d Digest) String() string {
	for _, e := range digests {
		if e.digest == d {
			return e.name
		}
	}
	return fmt.Sprintf("Digest(%d)", int(d))
}

// Hash returns the crypto.Hash for d.
func (d Digest) Hash() crypto.Hash {
	for _, e := range digests {
		if e.digest == d {
			return e.hash
		}
	}
	return 0
}

func (d Digest) signatureAlgorithm() (x509.SignatureAlgorithm, bool) {
	for _, e := range digests {
		if e.digest == d {
			return e.alg, true
		}
	}
	return x509.UnknownSignatureAlgorithm, false
}

func digestFor(alg x509.SignatureAlgorithm) (Digest, bool) {
	for _, e := range digests {
		if e.alg == alg {
			return e.digest, true
		}
	}
	return 0, false
}

// Issuer identifies who signs a certificate.
type Issuer struct {
	name       x509dn.Name
	signer     crypto.Signer
	selfSigned bool
	cert       *Certificate
}

// SelfSigned returns an issuer whose name is the request subject. The signer
// must hold the private half of the request public key.
func SelfSigned(signer crypto.Signer) Issuer {
	return Issuer{signer: signer, selfSigned: true}
}

// IssuedBy returns an issuer with the given name and signing key.
func IssuedBy(name x509dn.Name, signer crypto.Signer) Issuer {
	return Issuer{name: name, signer: signer}
}

// IssuedByCertificate returns an issuer taken from an authority certificate.
// The signer must hold the private half of the certificate's public key.
func IssuedByCertificate(cert *Certificate, signer crypto.Signer) Issuer {
	return Issuer{name: cert.Subject(), signer: signer, cert: cert}
}

// Request is everything [Build] needs to produce a certificate.
type Request struct {
	Subject    x509dn.Name
	PublicKey  *rsa.PublicKey
	Issuer     Issuer
	Serial     io.Reader // entropy for the serial number; crypto/rand when nil
	Validity   Validity
	Extensions x509ext.Set
	Digest     Digest // DefaultDigest when zero
}

// Build validates req and returns the signed certificate.
//
// Parameters:
//   - req: The certificate request
//
// Returns:
//   - *Certificate: The signed certificate, whose TBS bytes are exactly what was signed
//   - error: [ErrInvalidRequest], [ErrInvalidValidityWindow], [ErrConstraintConflict],
//     [ErrSelfSignedKeyMismatch], [ErrIssuerKeyMismatch] or a signing failure
//
// The serial number is fresh for every call. Uniqueness across an issuer is
// the caller's concern.
func Build(req Request) (*Certificate, error) {
	if req.Subject.IsZero() {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidRequest)
	}
	if req.PublicKey == nil {
		return nil, fmt.Errorf("%w: missing public key", ErrInvalidRequest)
	}
	if req.Issuer.signer == nil {
		return nil, fmt.Errorf("%w: missing issuer signer", ErrInvalidRequest)
	}

	signerPub, ok := req.Issuer.signer.Public().(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: issuer signer is not RSA", ErrUnsupportedAlgorithm)
	}

	issuerName := req.Issuer.name
	switch {
	case req.Issuer.selfSigned:
		if !signerPub.Equal(req.PublicKey) {
			return nil, ErrSelfSignedKeyMismatch
		}
		issuerName = req.Subject
	case req.Issuer.cert != nil:
		if !signerPub.Equal(req.Issuer.cert.PublicKey()) {
			return nil, ErrIssuerKeyMismatch
		}
	}
	if issuerName.IsZero() {
		return nil, fmt.Errorf("%w: missing issuer name", ErrInvalidRequest)
	}

	validity := req.Validity.truncate()
	if !validity.NotBefore.Before(validity.NotAfter) {
		return nil, fmt.Errorf("%w: %s is not before %s", ErrInvalidValidityWindow,
			validity.NotBefore.Format("2006-01-02T15:04:05Z"), validity.NotAfter.Format("2006-01-02T15:04:05Z"))
	}

	digest := req.Digest
	if digest == 0 {
		digest = DefaultDigest
	}
	sigAlg, ok := digest.signatureAlgorithm()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, digest)
	}

	exts, err := req.Extensions.Encode()
	if err != nil {
		return nil, err
	}

	subjectDER, err := req.Subject.Encode()
	if err != nil {
		return nil, err
	}
	issuerDER, err := issuerName.Encode()
	if err != nil {
		return nil, err
	}

	serial, err := newSerial(req.Serial)
	if err != nil {
		return nil, err
	}

	// Every extension comes from exts. Leaving IsCA and SubjectKeyId unset
	// keeps the standard library from adding its own key identifiers.
	template := &x509.Certificate{
		SerialNumber:       serial,
		RawSubject:         subjectDER,
		NotBefore:          validity.NotBefore,
		NotAfter:           validity.NotAfter,
		SignatureAlgorithm: sigAlg,
		ExtraExtensions:    exts,
	}
	parent := &x509.Certificate{
		RawSubject: issuerDER,
		PublicKey:  signerPub,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, req.PublicKey, req.Issuer.signer)
	if err != nil {
		return nil, fmt.Errorf("x509certs: sign certificate: %w", err)
	}

	return Parse(der)
}

// newSerial draws a serial uniformly from [1, 2^128).
func newSerial(random io.Reader) (*big.Int, error) {
	if random == nil {
		random = rand.Reader
	}
	n, err := rand.Int(random, new(big.Int).Sub(serialLimit, big.NewInt(1)))
	if err != nil {
		return nil, fmt.Errorf("x509certs: generate serial number: %w", err)
	}
	return n.Add(n, big.NewInt(1)), nil
}
