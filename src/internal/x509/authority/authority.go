// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package authority

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509dn "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/dn"
	x509ext "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/ext"
	x509keys "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/keys"
)

const (
	// DefaultCAKeyBits is the modulus size of generated root and intermediate keys.
	DefaultCAKeyBits = 4096

	// DefaultLeafKeyBits is the modulus size of generated leaf keys.
	DefaultLeafKeyBits = 2048

	// DefaultValidityDays is the lifetime of every certificate unless overridden.
	DefaultValidityDays = 3650

	// maxSerialAttempts bounds re-issuance after serial collisions.
	maxSerialAttempts = 8
)

var (
	// ErrNotAuthority indicates a certificate that cannot act as a CA.
	ErrNotAuthority = errors.New("authority: certificate is not a CA")

	// ErrKeyMismatch indicates a private key that does not belong to the certificate.
	ErrKeyMismatch = errors.New("authority: key does not match certificate")

	// ErrDuplicateSerial indicates that no fresh serial could be drawn.
	ErrDuplicateSerial = errors.New("authority: duplicate serial number")

	// ErrNoSigningKey indicates an authority loaded without its private key.
	ErrNoSigningKey = errors.New("authority: no signing key")
)

// Params holds what every issued certificate needs.
type Params struct {
	Subject      x509dn.Name
	Key          *x509keys.KeyPair // generated from KeyBits and Exponent when nil
	KeyBits      int
	Exponent     int
	Digest       x509certs.Digest
	NotBefore    time.Time // current time when zero
	ValidityDays int
	Serial       io.Reader // serial entropy, crypto/rand when nil
}

// RootParams describes a self-signed root.
type RootParams struct {
	Params
}

// IntermediateParams describes an intermediate CA. PathLen defaults to 0.
type IntermediateParams struct {
	Params
	PathLen *int
}

// Authority is a CA certificate together with its signing key.
type Authority struct {
	cert    *x509certs.Certificate
	key     *x509keys.KeyPair
	parent  *Authority
	serials *registry
}

// NewRoot generates a self-signed root authority.
//
// The root is a CA without a path length, with key usage digitalSignature,
// keyCertSign and cRLSign and a subject key identifier.
//
// Parameters:
//   - p: Root parameters; zero values take the package defaults
//
// Returns:
//   - *Authority: The root authority
//   - error: Key generation or certificate building failure
func NewRoot(p RootParams) (*Authority, error) {
	kp, err := keyFor(p.Params, DefaultCAKeyBits)
	if err != nil {
		return nil, err
	}

	ids, err := x509ext.NewKeyIdentifiers(kp.Public, nil)
	if err != nil {
		return nil, err
	}
	exts := x509ext.Set{}.
		WithBasicConstraints(x509ext.MustBasicConstraints(true, nil)).
		WithKeyUsage(caKeyUsage).
		WithKeyIdentifiers(ids)

	reg := newRegistry()
	cert, err := reg.build(request(p.Params, kp, x509certs.SelfSigned(kp.Signer()), exts))
	if err != nil {
		return nil, err
	}
	return &Authority{cert: cert, key: kp, serials: reg}, nil
}

// NewIntermediate generates a CA signed by a.
//
// Parameters:
//   - p: Intermediate parameters; PathLen defaults to 0
//
// Returns:
//   - *Authority: The intermediate authority, whose parent is a
//   - error: Key generation or certificate building failure
func (a *Authority) NewIntermediate(p IntermediateParams) (*Authority, error) {
	if a.key == nil {
		return nil, ErrNoSigningKey
	}
	kp, err := keyFor(p.Params, DefaultCAKeyBits)
	if err != nil {
		return nil, err
	}

	pathLen := p.PathLen
	if pathLen == nil {
		pathLen = x509ext.PathLen(0)
	}
	bc, err := x509ext.NewBasicConstraints(true, pathLen)
	if err != nil {
		return nil, err
	}
	ids, err := x509ext.NewKeyIdentifiers(kp.Public, a.key.Public)
	if err != nil {
		return nil, err
	}
	exts := x509ext.Set{}.
		WithBasicConstraints(bc).
		WithKeyUsage(caKeyUsage).
		WithKeyIdentifiers(ids)

	cert, err := a.serials.build(request(p.Params, kp, a.issuer(), exts))
	if err != nil {
		return nil, err
	}
	return &Authority{cert: cert, key: kp, parent: a, serials: a.serials}, nil
}

// Load rebuilds an authority from stored material. parent is nil for a root.
// An authority loaded without key only anchors its children and cannot sign.
//
// Parameters:
//   - cert: The CA certificate
//   - key: The private key for cert, or nil
//   - parent: The authority that signed cert, or nil when cert is self-signed
//
// Returns:
//   - *Authority: The authority
//   - error: [ErrNotAuthority] or [ErrKeyMismatch]
func Load(cert *x509certs.Certificate, key *x509keys.KeyPair, parent *Authority) (*Authority, error) {
	if cert == nil || !cert.IsCA() {
		return nil, ErrNotAuthority
	}
	if key != nil && !key.Public.Equal(cert.PublicKey()) {
		return nil, fmt.Errorf("%w: %q", ErrKeyMismatch, cert.Subject())
	}

	reg := newRegistry()
	if parent != nil {
		reg = parent.serials
	}
	reg.add(cert)
	return &Authority{cert: cert, key: key, parent: parent, serials: reg}, nil
}

// Certificate returns the CA certificate.
func (a *Authority) Certificate() *x509certs.Certificate { return a.cert }

// Key returns the CA key pair, nil when loaded without one.
func (a *Authority) Key() *x509keys.KeyPair { return a.key }

// Parent returns the signing authority, or nil for a root.
func (a *Authority) Parent() *Authority { return a.parent }

// Root returns the anchor at the top of a's hierarchy.
func (a *Authority) Root() *x509certs.Certificate {
	for a.parent != nil {
		a = a.parent
	}
	return a.cert
}

// Chain returns a's certificate followed by every issuing intermediate, up
// to but excluding the root. It is empty for a root.
func (a *Authority) Chain() []*x509certs.Certificate {
	var chain []*x509certs.Certificate
	for ; a.parent != nil; a = a.parent {
		chain = append(chain, a.cert)
	}
	return chain
}

// Issued reports how many serial numbers the hierarchy has handed out.
func (a *Authority) Issued() int { return a.serials.len() }

func (a *Authority) issuer() x509certs.Issuer {
	return x509certs.IssuedByCertificate(a.cert, a.key.Signer())
}

const caKeyUsage = x509ext.KeyUsageDigitalSignature | x509ext.KeyUsageCertSign | x509ext.KeyUsageCRLSign

func keyFor(p Params, defaultBits int) (*x509keys.KeyPair, error) {
	if p.Key != nil {
		return p.Key, nil
	}
	bits := p.KeyBits
	if bits == 0 {
		bits = defaultBits
	}
	exponent := p.Exponent
	if exponent == 0 {
		exponent = x509keys.DefaultExponent
	}
	return x509keys.Generate(bits, exponent)
}

func request(p Params, kp *x509keys.KeyPair, issuer x509certs.Issuer, exts x509ext.Set) x509certs.Request {
	from := p.NotBefore
	if from.IsZero() {
		from = time.Now()
	}
	days := p.ValidityDays
	if days == 0 {
		days = DefaultValidityDays
	}
	return x509certs.Request{
		Subject:    p.Subject,
		PublicKey:  kp.Public,
		Issuer:     issuer,
		Serial:     p.Serial,
		Validity:   x509certs.ValidForDays(from, days),
		Extensions: exts,
		Digest:     p.Digest,
	}
}

// registry records every serial issued within one hierarchy.
type registry struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newRegistry() *registry {
	return &registry{seen: make(map[string]struct{})}
}

// add records cert's serial and reports whether it was new.
func (r *registry) add(cert *x509certs.Certificate) bool {
	serial := cert.SerialNumber().String()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[serial]; dup {
		return false
	}
	r.seen[serial] = struct{}{}
	return true
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// build signs req, signing again with a fresh serial while the drawn one is taken.
func (r *registry) build(req x509certs.Request) (*x509certs.Certificate, error) {
	for range maxSerialAttempts {
		cert, err := x509certs.Build(req)
		if err != nil {
			return nil, err
		}
		if r.add(cert) {
			return cert, nil
		}
	}
	return nil, fmt.Errorf("%w: %q after %d attempts", ErrDuplicateSerial, req.Subject, maxSerialAttempts)
}
