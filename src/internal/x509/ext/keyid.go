// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"bytes"
	"crypto"
	"crypto/sha1"
	"crypto/x509"
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

var tagKeyIdentifier = asn1.Tag(0).ContextSpecific()

// KeyIdentifiers holds the subject key identifier of a certificate and, for
// certificates issued by another key, the authority key identifier.
type KeyIdentifiers struct {
	subject   []byte
	authority []byte
}

// NewKeyIdentifiers derives key identifiers from public keys.
//
// Parameters:
//   - owner: The public key embedded in the certificate
//   - issuer: The issuing key, or nil to omit the authority key identifier
//
// Returns:
//   - KeyIdentifiers: 20-byte SHA-1 identifiers (RFC 5280 section 4.2.1.2, method 1)
//   - error: If a key cannot be marshalled
func NewKeyIdentifiers(owner, issuer crypto.PublicKey) (KeyIdentifiers, error) {
	subject, err := KeyID(owner)
	if err != nil {
		return KeyIdentifiers{}, err
	}

	ids := KeyIdentifiers{subject: subject}
	if issuer != nil {
		if ids.authority, err = KeyID(issuer); err != nil {
			return KeyIdentifiers{}, err
		}
	}
	return ids, nil
}

// KeyID returns the SHA-1 hash of the subjectPublicKey BIT STRING of pub.
func KeyID(pub crypto.PublicKey) ([]byte, error) {
	spki, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("x509ext: marshal public key: %w", err)
	}

	input := cryptobyte.String(spki)
	var (
		info      cryptobyte.String
		algorithm cryptobyte.String
		key       encoding_asn1.BitString
	)
	if !input.ReadASN1(&info, asn1.SEQUENCE) ||
		!info.ReadASN1(&algorithm, asn1.SEQUENCE) ||
		!info.ReadASN1BitString(&key) {
		return nil, errors.New("x509ext: malformed SubjectPublicKeyInfo")
	}

	sum := sha1.Sum(key.Bytes)
	return sum[:], nil
}

// Subject returns a copy of the subject key identifier.
func (k KeyIdentifiers) Subject() []byte { return bytes.Clone(k.subject) }

// Authority returns a copy of the authority key identifier, or nil.
func (k KeyIdentifiers) Authority() []byte { return bytes.Clone(k.authority) }

// Equal reports whether k and other carry the same identifiers.
func (k KeyIdentifiers) Equal(other KeyIdentifiers) bool {
	return bytes.Equal(k.subject, other.subject) && bytes.Equal(k.authority, other.authority)
}

func (k KeyIdentifiers) marshalSubject() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1OctetString(k.subject)
	return b.Bytes()
}

// marshalAuthority encodes AuthorityKeyIdentifier ::= SEQUENCE { keyIdentifier [0] IMPLICIT OCTET STRING }.
func (k KeyIdentifiers) marshalAuthority() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		seq.AddASN1(tagKeyIdentifier, func(id *cryptobyte.Builder) {
			id.AddBytes(k.authority)
		})
	})
	return b.Bytes()
}

func parseSubjectKeyID(der []byte) ([]byte, error) {
	input := cryptobyte.String(der)

	var id cryptobyte.String
	if !input.ReadASN1(&id, asn1.OCTET_STRING) || !input.Empty() || len(id) == 0 {
		return nil, errors.New("invalid subject key identifier")
	}
	return bytes.Clone(id), nil
}

func parseAuthorityKeyID(der []byte) ([]byte, error) {
	input := cryptobyte.String(der)

	var seq cryptobyte.String
	if !input.ReadASN1(&seq, asn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("invalid authority key identifier")
	}

	var (
		id    cryptobyte.String
		found bool
	)
	if !seq.ReadOptionalASN1(&id, &found, tagKeyIdentifier) {
		return nil, errors.New("invalid key identifier")
	}
	if !found {
		return nil, nil
	}
	return bytes.Clone(id), nil
}
