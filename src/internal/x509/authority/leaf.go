// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package authority

import (
	"context"
	"runtime"

	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509ext "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/ext"
	x509keys "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/keys"
	"golang.org/x/sync/errgroup"
)

// DefaultLeafIP is added to the SAN of a leaf that names no DNS or IP entries.
const DefaultLeafIP = "127.0.0.1"

// LeafParams describes a server certificate.
//
// When both DNSNames and IPAddresses are empty, the SAN holds the subject
// common name and [DefaultLeafIP].
type LeafParams struct {
	Params
	DNSNames    []string
	IPAddresses []string
}

// Leaf is an issued server certificate and its key.
type Leaf struct {
	Certificate *x509certs.Certificate
	Key         *x509keys.KeyPair
	issuer      *Authority
}

// FullChain returns the leaf followed by its issuing intermediates, the
// content of a full-chain bundle.
func (l *Leaf) FullChain() []*x509certs.Certificate {
	return append([]*x509certs.Certificate{l.Certificate}, l.issuer.Chain()...)
}

// Anchor returns the root the leaf chains to.
func (l *Leaf) Anchor() *x509certs.Certificate { return l.issuer.Root() }

// IssueLeaf signs a server certificate under a.
//
// The leaf is not a CA, carries key usage digitalSignature and
// keyEncipherment, extended key usage serverAuth, a subject alternative name
// and both key identifiers.
//
// Parameters:
//   - p: Leaf parameters; zero values take the package defaults
//
// Returns:
//   - *Leaf: The certificate and its key
//   - error: Invalid SAN entries, key generation or building failure
func (a *Authority) IssueLeaf(p LeafParams) (*Leaf, error) {
	if a.key == nil {
		return nil, ErrNoSigningKey
	}
	san, err := subjectAltName(p)
	if err != nil {
		return nil, err
	}

	kp, err := keyFor(p.Params, DefaultLeafKeyBits)
	if err != nil {
		return nil, err
	}
	ids, err := x509ext.NewKeyIdentifiers(kp.Public, a.key.Public)
	if err != nil {
		return nil, err
	}
	exts := x509ext.Set{}.
		WithBasicConstraints(x509ext.MustBasicConstraints(false, nil)).
		WithKeyUsage(x509ext.KeyUsageDigitalSignature | x509ext.KeyUsageKeyEncipherment).
		WithExtKeyUsage(x509ext.ExtKeyUsageServerAuth).
		WithSubjectAltName(san).
		WithKeyIdentifiers(ids)

	cert, err := a.serials.build(request(p.Params, kp, a.issuer(), exts))
	if err != nil {
		return nil, err
	}
	return &Leaf{Certificate: cert, Key: kp, issuer: a}, nil
}

// IssueLeaves issues one leaf per entry of params concurrently, at most one
// per CPU at a time. Results keep the order of params. The first failure
// cancels the remaining work.
func (a *Authority) IssueLeaves(ctx context.Context, params []LeafParams) ([]*Leaf, error) {
	leaves := make([]*Leaf, len(params))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range params {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			leaf, err := a.IssueLeaf(p)
			if err != nil {
				return err
			}
			leaves[i] = leaf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return leaves, nil
}

func subjectAltName(p LeafParams) (x509ext.SubjectAltName, error) {
	var entries []x509ext.SAN
	for _, name := range p.DNSNames {
		entries = append(entries, x509ext.DNSName(name))
	}
	for _, ip := range p.IPAddresses {
		entries = append(entries, x509ext.IPAddress(ip))
	}
	if len(entries) == 0 {
		entries = []x509ext.SAN{
			x509ext.DNSName(p.Subject.CommonName()),
			x509ext.IPAddress(DefaultLeafIP),
		}
	}
	return x509ext.NewSubjectAltName(entries...)
}
