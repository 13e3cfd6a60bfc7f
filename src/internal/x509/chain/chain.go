// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"errors"
	"slices"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/certs"
)

// Status values reported per certificate by [Chain.Statuses].
const (
	StatusValid     = "valid"
	StatusInvalid   = "invalid"
	StatusUnchecked = "unchecked"
	StatusUnknown   = "unknown"
)

// Chain is an ordered, leaf-first list of certificates as read from a bundle.
// It may or may not end with its trust anchor.
//
// [X.509]: https://grokipedia.com/page/X.509
type Chain struct {
	Certs []*x509certs.Certificate
}

// New creates a new Chain from certs, ordered leaf first.
func New(certs ...*x509certs.Certificate) *Chain {
	return &Chain{Certs: slices.Clone(certs)}
}

// IsSelfSigned checks if a certificate is self-signed.
//
// It requires matching subject and issuer names and verifies the
// certificate's signature against its own key.
//
// Parameters:
//   - cert: Certificate to check
//
// Returns:
//   - bool: true if self-signed, false otherwise
func (ch *Chain) IsSelfSigned(cert *x509certs.Certificate) bool {
	return isSelfSigned(cert)
}

// IsRootNode determines if a certificate is a root node in the chain.
//
// Parameters:
//   - cert: Certificate to check
//
// Returns:
//   - bool: true if it's a self-signed CA certificate
func (ch *Chain) IsRootNode(cert *x509certs.Certificate) bool {
	return cert.IsCA() && ch.IsSelfSigned(cert)
}

// SplitAnchor separates a trailing root from the rest of the chain.
//
// Returns:
//   - []*x509certs.Certificate: The certificates below the anchor
//   - *x509certs.Certificate: The trailing root, or nil when the chain does not end with one
func (ch *Chain) SplitAnchor() ([]*x509certs.Certificate, *x509certs.Certificate) {
	n := len(ch.Certs)
	if n < 2 || !ch.IsRootNode(ch.Certs[n-1]) {
		return ch.Certs, nil
	}
	return ch.Certs[:n-1], ch.Certs[n-1]
}

// Validate validates the chain at the reference time at.
//
// When anchor is nil the chain must end with a self-signed root, which is
// then used as the anchor; see [Validate] for the checks performed.
func (ch *Chain) Validate(anchor *x509certs.Certificate, at time.Time) (*Result, error) {
	certs := ch.Certs
	if anchor == nil {
		certs, anchor = ch.SplitAnchor()
	}
	return Validate(certs, anchor, at)
}

// Statuses maps every certificate serial in the chain to a status derived
// from a validation outcome: valid up to the failing index, invalid at it and
// unchecked after it. A non-validation error marks everything unknown.
// [ErrLeafIsCA] is reported after every link was checked, so only the leaf is
// marked invalid.
func (ch *Chain) Statuses(err error) map[string]string {
	failed := -1
	var ve *ValidationError
	if errors.As(err, &ve) {
		failed = ve.Index
	}
	walked := errors.Is(err, ErrLeafIsCA)

	status := make(map[string]string, len(ch.Certs))
	for i, cert := range ch.Certs {
		var s string
		switch {
		case err == nil:
			s = StatusValid
		case failed < 0:
			s = StatusUnknown
		case i < failed:
			s = StatusValid
		case i == failed:
			s = StatusInvalid
		case walked:
			s = StatusValid
		default:
			s = StatusUnchecked
		}
		status[cert.SerialNumber().String()] = s
	}
	return status
}
