// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"sync"
	"testing"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509dn "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/dn"
	x509ext "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/ext"
	x509keys "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/keys"
	"github.com/stretchr/testify/require"
)

const poolSize = 5

var (
	poolOnce sync.Once
	keyPool  [poolSize]*x509keys.KeyPair
	poolErr  error
)

// key returns the i-th shared 2048-bit key pair.
func key(t testing.TB, i int) *x509keys.KeyPair {
	t.Helper()
	poolOnce.Do(func() {
		for n := range keyPool {
			if keyPool[n], poolErr = x509keys.Generate(2048, x509keys.DefaultExponent); poolErr != nil {
				return
			}
		}
	})
	require.NoError(t, poolErr, "Generate() error")
	return keyPool[i]
}

func name(cn string) x509dn.Name {
	return x509dn.MustBuild(
		x509dn.Attribute{Type: x509dn.Country, Value: "BR"},
		x509dn.Attribute{Type: x509dn.State, Value: "ES"},
		x509dn.Attribute{Type: x509dn.Organization, Value: "CT"},
		x509dn.Attribute{Type: x509dn.CommonName, Value: cn},
	)
}

// node is a certificate together with the key that can sign below it.
type node struct {
	cert *x509certs.Certificate
	key  *x509keys.KeyPair
}

var tenYears = x509certs.ValidForDays(time.Now().Add(-time.Minute), 3650)

func caSet(pathLen *int) x509ext.Set {
	return x509ext.Set{}.
		WithBasicConstraints(x509ext.MustBasicConstraints(true, pathLen)).
		WithKeyUsage(x509ext.KeyUsageDigitalSignature | x509ext.KeyUsageCertSign | x509ext.KeyUsageCRLSign)
}

func leafSet(t testing.TB) x509ext.Set {
	t.Helper()
	san, err := x509ext.NewSubjectAltName(x509ext.DNSName("localhost"))
	require.NoError(t, err)
	return x509ext.Set{}.
		WithBasicConstraints(x509ext.MustBasicConstraints(false, nil)).
		WithKeyUsage(x509ext.KeyUsageDigitalSignature | x509ext.KeyUsageKeyEncipherment).
		WithExtKeyUsage(x509ext.ExtKeyUsageServerAuth).
		WithSubjectAltName(san)
}

func newRoot(t testing.TB, cn string, k *x509keys.KeyPair) *node {
	t.Helper()
	cert, err := x509certs.Build(x509certs.Request{
		Subject:    name(cn),
		PublicKey:  k.Public,
		Issuer:     x509certs.SelfSigned(k.Signer()),
		Validity:   tenYears,
		Extensions: caSet(nil),
	})
	require.NoError(t, err, "Build(%s) error", cn)
	return &node{cert: cert, key: k}
}

// issue signs a certificate for subject under parent.
func issue(t testing.TB, parent *node, subject x509dn.Name, k *x509keys.KeyPair, exts x509ext.Set, validity x509certs.Validity) *node {
	t.Helper()
	cert, err := x509certs.Build(x509certs.Request{
		Subject:    subject,
		PublicKey:  k.Public,
		Issuer:     x509certs.IssuedByCertificate(parent.cert, parent.key.Signer()),
		Validity:   validity,
		Extensions: exts,
	})
	require.NoError(t, err, "Build(%s) error", subject)
	return &node{cert: cert, key: k}
}

// hierarchy builds root → intermediate (path length 0) → "localhost" leaf.
func hierarchy(t testing.TB) (root, intermediate, leaf *node) {
	t.Helper()
	root = newRoot(t, "Root CA", key(t, 0))
	intermediate = issue(t, root, name("Intermediate CA"), key(t, 1), caSet(x509ext.PathLen(0)), tenYears)
	leaf = issue(t, intermediate, name("localhost"), key(t, 2), leafSet(t), tenYears)
	return root, intermediate, leaf
}

func certs(nodes ...*node) []*x509certs.Certificate {
	out := make([]*x509certs.Certificate, len(nodes))
	for i, n := range nodes {
		out[i] = n.cert
	}
	return out
}
