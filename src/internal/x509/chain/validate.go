// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"errors"
	"fmt"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
	x509dn "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/dn"
	x509ext "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/ext"
)

var (
	// ErrEmptyChain indicates a chain without certificates.
	ErrEmptyChain = errors.New("x509chain: empty chain")

	// ErrIssuerSubjectMismatch indicates a certificate whose issuer name is not the next subject.
	ErrIssuerSubjectMismatch = errors.New("x509chain: issuer does not match subject")

	// ErrSignatureVerification indicates a signature that does not verify under the issuer key.
	ErrSignatureVerification = errors.New("x509chain: signature verification failed")

	// ErrExpiredCertificate indicates a reference time after NotAfter.
	ErrExpiredCertificate = errors.New("x509chain: certificate has expired")

	// ErrNotYetValid indicates a reference time before NotBefore.
	ErrNotYetValid = errors.New("x509chain: certificate is not yet valid")

	// ErrCAConstraintViolation indicates an issuer that is not allowed to sign certificates.
	ErrCAConstraintViolation = errors.New("x509chain: issuer is not a certificate authority")

	// ErrPathLengthExceeded indicates more intermediates below an issuer than its path length allows.
	ErrPathLengthExceeded = errors.New("x509chain: path length exceeded")

	// ErrUntrustedAnchor indicates a trust anchor that is not a self-signed root.
	ErrUntrustedAnchor = errors.New("x509chain: untrusted anchor")

	// ErrLeafIsCA indicates a chain whose first certificate is a CA.
	ErrLeafIsCA = errors.New("x509chain: leaf certificate is a CA")
)

// Fields reported by [ValidationError].
const (
	FieldChain            = "chain"
	FieldIssuer           = "issuer"
	FieldSignature        = "signature"
	FieldValidity         = "validity"
	FieldBasicConstraints = "basicConstraints"
	FieldKeyUsage         = "keyUsage"
	FieldPathLength       = "pathLength"
	FieldAnchor           = "anchor"
)

// ValidationError reports where and why a chain failed to validate.
type ValidationError struct {
	Index  int    // position in the chain, leaf is 0
	Field  string // failing field, one of the Field constants
	Err    error  // one of the package sentinels
	Detail string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s (certificate %d, %s)", e.Err, e.Index, e.Field)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the sentinel error.
func (e *ValidationError) Unwrap() error { return e.Err }

func fail(index int, field string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Index: index, Field: field, Err: err, Detail: fmt.Sprintf(format, args...)}
}

// Result describes a successfully validated chain.
type Result struct {
	Length        int       // number of certificates in the chain, anchor excluded
	ReferenceTime time.Time // instant the validity windows were checked against
}

// Validate checks chain, ordered leaf first, against anchor at the reference time at.
//
// Parameters:
//   - chain: Certificates from the leaf up to, but excluding, the anchor
//   - anchor: The trusted, self-signed root
//   - at: Reference time for validity checks
//
// Returns:
//   - *Result: Chain length and reference time on success
//   - error: [ErrEmptyChain] or a [*ValidationError] for the first failed check
//
// The anchor's own validity window is not checked; trusting it is the caller's decision.
func Validate(chain []*x509certs.Certificate, anchor *x509certs.Certificate, at time.Time) (*Result, error) {
	if len(chain) == 0 {
		return nil, ErrEmptyChain
	}
	for i, cert := range chain {
		if cert == nil {
			return nil, fail(i, FieldChain, ErrEmptyChain, "missing certificate")
		}
	}
	last := len(chain) - 1
	if anchor == nil {
		return nil, fail(last, FieldAnchor, ErrUntrustedAnchor, "no trust anchor")
	}

	for i, cert := range chain {
		issuer := anchor
		if i < last {
			issuer = chain[i+1]
		}

		if !x509dn.Equal(cert.Issuer(), issuer.Subject()) {
			return nil, fail(i, FieldIssuer, ErrIssuerSubjectMismatch,
				"issuer %q, next subject %q", cert.Issuer(), issuer.Subject())
		}

		if err := cert.VerifySignature(issuer.PublicKey()); err != nil {
			return nil, fail(i, FieldSignature, ErrSignatureVerification, "%v", err)
		}

		validity := cert.Validity()
		switch {
		case at.Before(validity.NotBefore):
			return nil, fail(i, FieldValidity, ErrNotYetValid,
				"valid from %s", validity.NotBefore.Format(time.RFC3339))
		case at.After(validity.NotAfter):
			return nil, fail(i, FieldValidity, ErrExpiredCertificate,
				"expired at %s", validity.NotAfter.Format(time.RFC3339))
		}

		if err := checkIssuerConstraints(i, issuer, chain[1:i+1]); err != nil {
			return nil, err
		}

		if i == last && !isSelfSigned(anchor) {
			return nil, fail(i, FieldAnchor, ErrUntrustedAnchor,
				"anchor %q is not a self-signed root", anchor.Subject())
		}
	}

	if chain[0].IsCA() {
		return nil, fail(0, FieldBasicConstraints, ErrLeafIsCA, "%q", chain[0].Subject())
	}

	return &Result{Length: len(chain), ReferenceTime: at}, nil
}

// checkIssuerConstraints reports whether issuer may sign chain[index], given
// the intermediates that sit between the leaf and issuer.
func checkIssuerConstraints(index int, issuer *x509certs.Certificate, below []*x509certs.Certificate) error {
	exts := issuer.Extensions()

	bc, ok := exts.BasicConstraints()
	if !ok || !bc.IsCA() {
		return fail(index, FieldBasicConstraints, ErrCAConstraintViolation,
			"issuer %q is not a CA", issuer.Subject())
	}
	if ku, ok := exts.KeyUsage(); ok && !ku.Has(x509ext.KeyUsageCertSign) {
		return fail(index, FieldKeyUsage, ErrCAConstraintViolation,
			"issuer %q lacks keyCertSign", issuer.Subject())
	}

	pathLen, ok := bc.PathLen()
	if !ok {
		return nil
	}

	// Self-issued intermediates do not count towards the budget.
	count := 0
	for _, cert := range below {
		if !cert.IsSelfIssued() {
			count++
		}
	}
	if count > pathLen {
		return fail(index, FieldPathLength, ErrPathLengthExceeded,
			"%d intermediates below %q, path length %d", count, issuer.Subject(), pathLen)
	}
	return nil
}

// isSelfSigned reports whether cert names itself as issuer and its signature
// verifies under its own key.
func isSelfSigned(cert *x509certs.Certificate) bool {
	return cert.IsSelfIssued() && cert.VerifySignature(cert.PublicKey()) == nil
}
