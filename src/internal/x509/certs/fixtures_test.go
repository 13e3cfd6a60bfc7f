// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs_test

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

var (
	fixtureOnce sync.Once
	fixtureKeys [3]*x509keys.KeyPair
	fixtureErr  error
)

// testKeys returns three 2048-bit key pairs shared by every test in the package.
func testKeys(t *testing.T) (root, intermediate, leaf *x509keys.KeyPair) {
	t.Helper()
	fixtureOnce.Do(func() {
		for i := range fixtureKeys {
			if fixtureKeys[i], fixtureErr = x509keys.Generate(2048, x509keys.DefaultExponent); fixtureErr != nil {
				return
			}
		}
	})
	require.NoError(t, fixtureErr, "Generate() error")
	return fixtureKeys[0], fixtureKeys[1], fixtureKeys[2]
}

func name(cn string) x509dn.Name {
	return x509dn.MustBuild(
		x509dn.Attribute{Type: x509dn.Country, Value: "BR"},
		x509dn.Attribute{Type: x509dn.Organization, Value: "CT"},
		x509dn.Attribute{Type: x509dn.CommonName, Value: cn},
	)
}

func caExtensions(pathLen *int) x509ext.Set {
	return x509ext.Set{}.
		WithBasicConstraints(x509ext.MustBasicConstraints(true, pathLen)).
		WithKeyUsage(x509ext.KeyUsageDigitalSignature | x509ext.KeyUsageCertSign | x509ext.KeyUsageCRLSign)
}

// testHierarchy builds root, intermediate and a "localhost" leaf valid from now for ten years.
func testHierarchy(t *testing.T) (root, intermediate, leaf *x509certs.Certificate) {
	t.Helper()
	rootKey, intKey, leafKey := testKeys(t)
	validity := x509certs.ValidForDays(time.Now(), 3650)

	root, err := x509certs.Build(x509certs.Request{
		Subject:    name("Root CA"),
		PublicKey:  rootKey.Public,
		Issuer:     x509certs.SelfSigned(rootKey.Signer()),
		Validity:   validity,
		Extensions: caExtensions(nil),
	})
	require.NoError(t, err, "Build(root) error")

	intermediate, err = x509certs.Build(x509certs.Request{
		Subject:    name("Intermediate CA"),
		PublicKey:  intKey.Public,
		Issuer:     x509certs.IssuedByCertificate(root, rootKey.Signer()),
		Validity:   validity,
		Extensions: caExtensions(x509ext.PathLen(0)),
	})
	require.NoError(t, err, "Build(intermediate) error")

	san, err := x509ext.NewSubjectAltName(x509ext.DNSName("localhost"), x509ext.IPAddress("127.0.0.1"))
	require.NoError(t, err)

	leaf, err = x509certs.Build(x509certs.Request{
		Subject:   name("localhost"),
		PublicKey: leafKey.Public,
		Issuer:    x509certs.IssuedByCertificate(intermediate, intKey.Signer()),
		Validity:  validity,
		Extensions: x509ext.Set{}.
			WithBasicConstraints(x509ext.MustBasicConstraints(false, nil)).
			WithKeyUsage(x509ext.KeyUsageDigitalSignature | x509ext.KeyUsageKeyEncipherment).
			WithExtKeyUsage(x509ext.ExtKeyUsageServerAuth).
			WithSubjectAltName(san),
	})
	require.NoError(t, err, "Build(leaf) error")

	return root, intermediate, leaf
}
