// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/chain"
	x509ext "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireValidationError asserts err is a *ValidationError for sentinel at index.
func requireValidationError(t *testing.T, err error, sentinel error, index int, field string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)

	var ve *x509chain.ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %T: %v", err, err)
	assert.Equal(t, index, ve.Index, "failing index")
	if field != "" {
		assert.Equal(t, field, ve.Field, "failing field")
	}
}

// tamper flips the last byte of needle inside the certificate DER and reparses it.
func tamper(t *testing.T, cert *x509certs.Certificate, needle []byte) *x509certs.Certificate {
	t.Helper()
	raw := cert.Raw()
	at := bytes.Index(raw, needle)
	require.GreaterOrEqual(t, at, 0, "needle not found in certificate")
	raw[at+len(needle)-1] ^= 0x01

	tampered, err := x509certs.Parse(raw)
	require.NoError(t, err, "tampered certificate must still parse")
	return tampered
}

func TestValidateEndToEnd(t *testing.T) {
	root, intermediate, leaf := hierarchy(t)
	now := time.Now()

	result, err := x509chain.Validate(certs(leaf, intermediate), root.cert, now)
	require.NoError(t, err, "Validate() error")
	assert.Equal(t, 2, result.Length)
	assert.True(t, now.Equal(result.ReferenceTime))
}

func TestValidateFailures(t *testing.T) {
	root, intermediate, leaf := hierarchy(t)
	now := time.Now()

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Empty chain",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Validate(nil, root.cert, now)
				assert.ErrorIs(t, err, x509chain.ErrEmptyChain)
			},
		},
		{
			name: "Twenty years later",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Validate(certs(leaf, intermediate), root.cert, now.AddDate(20, 0, 0))
				requireValidationError(t, err, x509chain.ErrExpiredCertificate, 0, x509chain.FieldValidity)
			},
		},
		{
			name: "Before the window opens",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Validate(certs(leaf, intermediate), root.cert, now.AddDate(-1, 0, 0))
				requireValidationError(t, err, x509chain.ErrNotYetValid, 0, x509chain.FieldValidity)
			},
		},
		{
			name: "Intermediate expires before the leaf",
			testFunc: func(t *testing.T) {
				short := issue(t, root, name("Short Intermediate"), key(t, 1), caSet(x509ext.PathLen(0)),
					x509certs.ValidForDays(time.Now().Add(-time.Minute), 30))
				child := issue(t, short, name("localhost"), key(t, 2), leafSet(t),
					x509certs.ValidForDays(time.Now().Add(-time.Minute), 60))

				_, err := x509chain.Validate(certs(child, short), root.cert, now.AddDate(0, 0, 45))
				requireValidationError(t, err, x509chain.ErrExpiredCertificate, 1, x509chain.FieldValidity)
			},
		},
		{
			name: "Leaf built against another intermediate name",
			testFunc: func(t *testing.T) {
				other := issue(t, root, name("Other Intermediate"), key(t, 1), caSet(x509ext.PathLen(0)), tenYears)
				stray := issue(t, other, name("localhost"), key(t, 2), leafSet(t), tenYears)

				_, err := x509chain.Validate(certs(stray, intermediate), root.cert, now)
				requireValidationError(t, err, x509chain.ErrIssuerSubjectMismatch, 0, x509chain.FieldIssuer)
			},
		},
		{
			name: "Right name, wrong key",
			testFunc: func(t *testing.T) {
				impostor := issue(t, root, name("Intermediate CA"), key(t, 3), caSet(x509ext.PathLen(0)), tenYears)
				forged := issue(t, impostor, name("localhost"), key(t, 2), leafSet(t), tenYears)

				_, err := x509chain.Validate(certs(forged, intermediate), root.cert, now)
				requireValidationError(t, err, x509chain.ErrSignatureVerification, 0, x509chain.FieldSignature)
			},
		},
		{
			name: "Tampered signature",
			testFunc: func(t *testing.T) {
				tampered := tamper(t, leaf.cert, leaf.cert.Signature())

				_, err := x509chain.Validate([]*x509certs.Certificate{tampered, intermediate.cert}, root.cert, now)
				requireValidationError(t, err, x509chain.ErrSignatureVerification, 0, x509chain.FieldSignature)
			},
		},
		{
			name: "Tampered TBS",
			testFunc: func(t *testing.T) {
				tampered := tamper(t, leaf.cert, leaf.cert.SerialNumber().Bytes())
				require.NotEqual(t, leaf.cert.SerialNumber(), tampered.SerialNumber())

				_, err := x509chain.Validate([]*x509certs.Certificate{tampered, intermediate.cert}, root.cert, now)
				requireValidationError(t, err, x509chain.ErrSignatureVerification, 0, x509chain.FieldSignature)
			},
		},
		{
			name: "Tampered intermediate",
			testFunc: func(t *testing.T) {
				tampered := tamper(t, intermediate.cert, intermediate.cert.Signature())

				_, err := x509chain.Validate([]*x509certs.Certificate{leaf.cert, tampered}, root.cert, now)
				requireValidationError(t, err, x509chain.ErrSignatureVerification, 1, x509chain.FieldSignature)
			},
		},
		{
			name: "Intermediate offered as a leaf",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Validate(certs(intermediate), root.cert, now)
				requireValidationError(t, err, x509chain.ErrLeafIsCA, 0, x509chain.FieldBasicConstraints)
			},
		},
		{
			name: "Issuer is not a CA",
			testFunc: func(t *testing.T) {
				child := issue(t, leaf, name("child"), key(t, 3), leafSet(t), tenYears)

				_, err := x509chain.Validate(certs(child, leaf, intermediate), root.cert, now)
				requireValidationError(t, err, x509chain.ErrCAConstraintViolation, 0, x509chain.FieldBasicConstraints)
			},
		},
		{
			name: "Issuer without keyCertSign",
			testFunc: func(t *testing.T) {
				exts := x509ext.Set{}.
					WithBasicConstraints(x509ext.MustBasicConstraints(true, nil)).
					WithKeyUsage(x509ext.KeyUsageDigitalSignature)
				weak := issue(t, root, name("Weak CA"), key(t, 1), exts, tenYears)
				child := issue(t, weak, name("localhost"), key(t, 2), leafSet(t), tenYears)

				_, err := x509chain.Validate(certs(child, weak), root.cert, now)
				requireValidationError(t, err, x509chain.ErrCAConstraintViolation, 0, x509chain.FieldKeyUsage)
			},
		},
		{
			name: "Anchor is not self-issued",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Validate(certs(leaf), intermediate.cert, now)
				requireValidationError(t, err, x509chain.ErrUntrustedAnchor, 0, x509chain.FieldAnchor)
			},
		},
		{
			name: "Anchor names itself but is signed by another key",
			testFunc: func(t *testing.T) {
				other := key(t, 3)
				fake, err := x509certs.Build(x509certs.Request{
					Subject:    root.cert.Subject(),
					PublicKey:  root.key.Public,
					Issuer:     x509certs.IssuedBy(root.cert.Subject(), other.Signer()),
					Validity:   tenYears,
					Extensions: caSet(nil),
				})
				require.NoError(t, err)

				_, err = x509chain.Validate(certs(leaf, intermediate), fake, now)
				requireValidationError(t, err, x509chain.ErrUntrustedAnchor, 1, x509chain.FieldAnchor)
			},
		},
		{
			name: "Missing anchor",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Validate(certs(leaf, intermediate), nil, now)
				requireValidationError(t, err, x509chain.ErrUntrustedAnchor, 1, x509chain.FieldAnchor)
			},
		},
		{
			name: "Nil certificate in chain",
			testFunc: func(t *testing.T) {
				_, err := x509chain.Validate([]*x509certs.Certificate{leaf.cert, nil}, root.cert, now)
				requireValidationError(t, err, x509chain.ErrEmptyChain, 1, x509chain.FieldChain)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestValidateSingleHop(t *testing.T) {
	root := newRoot(t, "Root CA", key(t, 0))
	leaf := issue(t, root, name("localhost"), key(t, 2), leafSet(t), tenYears)
	now := time.Now()

	_, err := x509chain.Validate(certs(leaf), root.cert, now)
	require.NoError(t, err, "a leaf signed directly by the root validates")

	for _, needle := range [][]byte{leaf.cert.Signature(), leaf.cert.SerialNumber().Bytes()} {
		tampered := tamper(t, leaf.cert, needle)
		_, err := x509chain.Validate([]*x509certs.Certificate{tampered}, root.cert, now)
		requireValidationError(t, err, x509chain.ErrSignatureVerification, 0, x509chain.FieldSignature)
	}
}

func TestValidatePathLength(t *testing.T) {
	root := newRoot(t, "Root CA", key(t, 0))
	now := time.Now()

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Path length zero signs a leaf",
			testFunc: func(t *testing.T) {
				zero := issue(t, root, name("Zero CA"), key(t, 1), caSet(x509ext.PathLen(0)), tenYears)
				leaf := issue(t, zero, name("localhost"), key(t, 2), leafSet(t), tenYears)

				_, err := x509chain.Validate(certs(leaf, zero), root.cert, now)
				assert.NoError(t, err)
			},
		},
		{
			name: "Path length zero rejects a sub-CA",
			testFunc: func(t *testing.T) {
				zero := issue(t, root, name("Zero CA"), key(t, 1), caSet(x509ext.PathLen(0)), tenYears)
				sub := issue(t, zero, name("Sub CA"), key(t, 3), caSet(nil), tenYears)
				leaf := issue(t, sub, name("localhost"), key(t, 2), leafSet(t), tenYears)

				_, err := x509chain.Validate(certs(leaf, sub, zero), root.cert, now)
				requireValidationError(t, err, x509chain.ErrPathLengthExceeded, 1, x509chain.FieldPathLength)
			},
		},
		{
			name: "Path length one allows a sub-CA",
			testFunc: func(t *testing.T) {
				one := issue(t, root, name("One CA"), key(t, 1), caSet(x509ext.PathLen(1)), tenYears)
				sub := issue(t, one, name("Sub CA"), key(t, 3), caSet(x509ext.PathLen(0)), tenYears)
				leaf := issue(t, sub, name("localhost"), key(t, 2), leafSet(t), tenYears)

				result, err := x509chain.Validate(certs(leaf, sub, one), root.cert, now)
				require.NoError(t, err)
				assert.Equal(t, 3, result.Length)
			},
		},
		{
			name: "Anchor path length counts every intermediate",
			testFunc: func(t *testing.T) {
				strict := newRoot(t, "Strict Root", key(t, 4))
				strict.cert = rebuildRoot(t, strict, x509ext.PathLen(1))
				first := issue(t, strict, name("First CA"), key(t, 1), caSet(nil), tenYears)
				second := issue(t, first, name("Second CA"), key(t, 3), caSet(nil), tenYears)
				leaf := issue(t, second, name("localhost"), key(t, 2), leafSet(t), tenYears)

				_, err := x509chain.Validate(certs(leaf, second, first), strict.cert, now)
				requireValidationError(t, err, x509chain.ErrPathLengthExceeded, 2, x509chain.FieldPathLength)
			},
		},
		{
			name: "Self-issued intermediates are not counted",
			testFunc: func(t *testing.T) {
				zero := issue(t, root, name("Zero CA"), key(t, 1), caSet(x509ext.PathLen(0)), tenYears)
				rollover := issue(t, zero, name("Zero CA"), key(t, 3), caSet(nil), tenYears)
				require.True(t, rollover.cert.IsSelfIssued())
				leaf := issue(t, rollover, name("localhost"), key(t, 2), leafSet(t), tenYears)

				_, err := x509chain.Validate(certs(leaf, rollover, zero), root.cert, now)
				assert.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

// rebuildRoot re-signs n's root with a path length.
func rebuildRoot(t *testing.T, n *node, pathLen *int) *x509certs.Certificate {
	t.Helper()
	cert, err := x509certs.Build(x509certs.Request{
		Subject:    n.cert.Subject(),
		PublicKey:  n.key.Public,
		Issuer:     x509certs.SelfSigned(n.key.Signer()),
		Validity:   tenYears,
		Extensions: caSet(pathLen),
	})
	require.NoError(t, err)
	return cert
}

func TestChainValidate(t *testing.T) {
	root, intermediate, leaf := hierarchy(t)
	now := time.Now()

	full := x509chain.New(leaf.cert, intermediate.cert, root.cert)
	below, anchor := full.SplitAnchor()
	require.NotNil(t, anchor, "trailing root must be split off")
	assert.True(t, root.cert.Equal(anchor))
	assert.Len(t, below, 2)

	result, err := full.Validate(nil, now)
	require.NoError(t, err, "Validate() with embedded root")
	assert.Equal(t, 2, result.Length)

	partial := x509chain.New(leaf.cert, intermediate.cert)
	_, anchor = partial.SplitAnchor()
	assert.Nil(t, anchor, "no root to split off")

	_, err = partial.Validate(root.cert, now)
	assert.NoError(t, err, "Validate() with explicit anchor")

	_, err = partial.Validate(nil, now)
	assert.ErrorIs(t, err, x509chain.ErrUntrustedAnchor)
}

func TestChainStatuses(t *testing.T) {
	root, intermediate, leaf := hierarchy(t)
	ch := x509chain.New(leaf.cert, intermediate.cert, root.cert)
	serial := func(n *node) string { return n.cert.SerialNumber().String() }

	valid := ch.Statuses(nil)
	assert.Equal(t, x509chain.StatusValid, valid[serial(leaf)])
	assert.Equal(t, x509chain.StatusValid, valid[serial(root)])

	failed := ch.Statuses(&x509chain.ValidationError{Index: 1, Err: x509chain.ErrSignatureVerification})
	assert.Equal(t, x509chain.StatusValid, failed[serial(leaf)])
	assert.Equal(t, x509chain.StatusInvalid, failed[serial(intermediate)])
	assert.Equal(t, x509chain.StatusUnchecked, failed[serial(root)])

	leafIsCA := ch.Statuses(&x509chain.ValidationError{Index: 0, Err: x509chain.ErrLeafIsCA})
	assert.Equal(t, x509chain.StatusInvalid, leafIsCA[serial(leaf)])
	assert.Equal(t, x509chain.StatusValid, leafIsCA[serial(intermediate)], "links were checked before the leaf")
	assert.Equal(t, x509chain.StatusValid, leafIsCA[serial(root)])

	unknown := ch.Statuses(x509chain.ErrEmptyChain)
	assert.Equal(t, x509chain.StatusUnknown, unknown[serial(leaf)])
}

func BenchmarkValidate(b *testing.B) {
	root, intermediate, leaf := hierarchy(b)
	chain := certs(leaf, intermediate)
	now := time.Now()

	b.ResetTimer()
	for b.Loop() {
		if _, err := x509chain.Validate(chain, root.cert, now); err != nil {
			b.Fatal(err)
		}
	}
}
