// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"crypto/x509/pkix"
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"
	"slices"
)

var (
	oidBasicConstraints       = encoding_asn1.ObjectIdentifier{2, 5, 29, 19}
	oidKeyUsage               = encoding_asn1.ObjectIdentifier{2, 5, 29, 15}
	oidExtKeyUsage            = encoding_asn1.ObjectIdentifier{2, 5, 29, 37}
	oidSubjectAltName         = encoding_asn1.ObjectIdentifier{2, 5, 29, 17}
	oidSubjectKeyIdentifier   = encoding_asn1.ObjectIdentifier{2, 5, 29, 14}
	oidAuthorityKeyIdentifier = encoding_asn1.ObjectIdentifier{2, 5, 29, 35}
)

var (
	// ErrInvalidConstraint indicates basic constraints that contradict themselves.
	ErrInvalidConstraint = errors.New("x509ext: invalid basic constraints")

	// ErrConstraintConflict indicates extensions that are individually valid but
	// contradict each other, such as keyCertSign on a non-CA certificate.
	ErrConstraintConflict = errors.New("x509ext: conflicting extensions")

	// ErrEmptySAN indicates a subject alternative name without entries.
	ErrEmptySAN = errors.New("x509ext: subject alternative name has no entries")

	// ErrInvalidSAN indicates a malformed DNS name or IP address entry.
	ErrInvalidSAN = errors.New("x509ext: invalid subject alternative name entry")

	// ErrMalformedExtension indicates extension DER that cannot be decoded.
	ErrMalformedExtension = errors.New("x509ext: malformed extension")

	// ErrUnhandledCritical indicates a critical extension outside the supported set.
	ErrUnhandledCritical = errors.New("x509ext: unhandled critical extension")
)

// Set is the collection of extensions carried by one certificate.
// The zero value carries no extensions.
type Set struct {
	basic    BasicConstraints
	hasBasic bool

	keyUsage KeyUsage

	extKeyUsage []ExtKeyUsage

	san    SubjectAltName
	hasSAN bool

	ids    KeyIdentifiers
	hasIDs bool
}

// WithBasicConstraints returns a copy of s carrying bc.
func (s Set) WithBasicConstraints(bc BasicConstraints) Set {
	s.basic, s.hasBasic = bc, true
	return s
}

// WithKeyUsage returns a copy of s carrying ku. A zero ku removes the extension.
func (s Set) WithKeyUsage(ku KeyUsage) Set {
	s.keyUsage = ku
	return s
}

// WithExtKeyUsage returns a copy of s carrying the given purposes in order.
func (s Set) WithExtKeyUsage(usages ...ExtKeyUsage) Set {
	s.extKeyUsage = slices.Clone(usages)
	return s
}

// WithSubjectAltName returns a copy of s carrying san.
func (s Set) WithSubjectAltName(san SubjectAltName) Set {
	s.san, s.hasSAN = san, len(san.entries) > 0
	return s
}

// WithKeyIdentifiers returns a copy of s carrying ids.
func (s Set) WithKeyIdentifiers(ids KeyIdentifiers) Set {
	s.ids, s.hasIDs = ids, true
	return s
}

// BasicConstraints returns the basic constraints and whether they are present.
func (s Set) BasicConstraints() (BasicConstraints, bool) { return s.basic, s.hasBasic }

// KeyUsage returns the key usage bits and whether the extension is present.
func (s Set) KeyUsage() (KeyUsage, bool) { return s.keyUsage, s.keyUsage != 0 }

// ExtKeyUsage returns a copy of the extended key usage purposes.
func (s Set) ExtKeyUsage() []ExtKeyUsage { return slices.Clone(s.extKeyUsage) }

// SubjectAltName returns the subject alternative name and whether it is present.
func (s Set) SubjectAltName() (SubjectAltName, bool) { return s.san, s.hasSAN }

// KeyIdentifiers returns the key identifiers and whether they are present.
func (s Set) KeyIdentifiers() (KeyIdentifiers, bool) { return s.ids, s.hasIDs }

// IsCA reports whether s marks its certificate as a certification authority.
func (s Set) IsCA() bool { return s.hasBasic && s.basic.isCA }

// Validate cross-checks the extensions against each other.
func (s Set) Validate() error {
	if !s.IsCA() {
		if s.keyUsage.Has(KeyUsageCertSign) || s.keyUsage.Has(KeyUsageCRLSign) {
			return fmt.Errorf("%w: keyCertSign or cRLSign on a non-CA certificate", ErrConstraintConflict)
		}
		if s.hasBasic && s.basic.hasPathLen {
			return fmt.Errorf("%w: path length on a non-CA certificate", ErrConstraintConflict)
		}
	}
	return nil
}

// Encode validates s and returns its extensions in a fixed order:
// basic constraints, key usage and extended key usage (all critical), then
// subject alternative name, subject key identifier and authority key
// identifier (non-critical).
func (s Set) Encode() ([]pkix.Extension, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var exts []pkix.Extension
	add := func(oid encoding_asn1.ObjectIdentifier, critical bool, value []byte, err error) error {
		if err != nil {
			return fmt.Errorf("x509ext: encode %s: %w", oid, err)
		}
		exts = append(exts, pkix.Extension{Id: oid, Critical: critical, Value: value})
		return nil
	}

	if s.hasBasic {
		value, err := s.basic.marshal()
		if err := add(oidBasicConstraints, true, value, err); err != nil {
			return nil, err
		}
	}
	if s.keyUsage != 0 {
		value, err := s.keyUsage.marshal()
		if err := add(oidKeyUsage, true, value, err); err != nil {
			return nil, err
		}
	}
	if len(s.extKeyUsage) > 0 {
		value, err := marshalExtKeyUsage(s.extKeyUsage)
		if err := add(oidExtKeyUsage, true, value, err); err != nil {
			return nil, err
		}
	}
	if s.hasSAN {
		value, err := s.san.marshal()
		if err := add(oidSubjectAltName, false, value, err); err != nil {
			return nil, err
		}
	}
	if s.hasIDs && len(s.ids.subject) > 0 {
		value, err := s.ids.marshalSubject()
		if err := add(oidSubjectKeyIdentifier, false, value, err); err != nil {
			return nil, err
		}
	}
	if s.hasIDs && len(s.ids.authority) > 0 {
		value, err := s.ids.marshalAuthority()
		if err := add(oidAuthorityKeyIdentifier, false, value, err); err != nil {
			return nil, err
		}
	}

	return exts, nil
}

// Parse decodes the supported extensions from exts. Unknown non-critical
// extensions are skipped; unknown critical extensions fail with
// [ErrUnhandledCritical].
func Parse(exts []pkix.Extension) (Set, error) {
	var s Set
	for _, e := range exts {
		var err error
		switch {
		case e.Id.Equal(oidBasicConstraints):
			s.basic, err = parseBasicConstraints(e.Value)
			s.hasBasic = err == nil
		case e.Id.Equal(oidKeyUsage):
			s.keyUsage, err = parseKeyUsage(e.Value)
		case e.Id.Equal(oidExtKeyUsage):
			s.extKeyUsage, err = parseExtKeyUsage(e.Value)
		case e.Id.Equal(oidSubjectAltName):
			s.san, err = parseSubjectAltName(e.Value)
			s.hasSAN = err == nil
		case e.Id.Equal(oidSubjectKeyIdentifier):
			s.ids.subject, err = parseSubjectKeyID(e.Value)
			s.hasIDs = s.hasIDs || err == nil
		case e.Id.Equal(oidAuthorityKeyIdentifier):
			s.ids.authority, err = parseAuthorityKeyID(e.Value)
			s.hasIDs = s.hasIDs || err == nil
		default:
			if e.Critical {
				return Set{}, fmt.Errorf("%w: %s", ErrUnhandledCritical, e.Id)
			}
		}
		if err != nil {
			return Set{}, fmt.Errorf("%w: %s: %w", ErrMalformedExtension, e.Id, err)
		}
	}
	return s, nil
}
