// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// BasicConstraints states whether a certificate is a CA and, optionally, how
// many non-self-issued intermediates may follow it in a path.
type BasicConstraints struct {
	isCA       bool
	pathLen    int
	hasPathLen bool
}

// NewBasicConstraints validates and returns basic constraints.
//
// Parameters:
//   - isCA: Whether the certificate may issue other certificates
//   - pathLen: Optional path length budget; only allowed when isCA is true
//
// Returns:
//   - BasicConstraints: The constraints value
//   - error: [ErrInvalidConstraint] if pathLen is set for a non-CA or negative
func NewBasicConstraints(isCA bool, pathLen *int) (BasicConstraints, error) {
	bc := BasicConstraints{isCA: isCA}
	if pathLen == nil {
		return bc, nil
	}

	switch {
	case !isCA:
		return BasicConstraints{}, fmt.Errorf("%w: path length requires a CA", ErrInvalidConstraint)
	case *pathLen < 0:
		return BasicConstraints{}, fmt.Errorf("%w: negative path length %d", ErrInvalidConstraint, *pathLen)
	}

	bc.pathLen, bc.hasPathLen = *pathLen, true
	return bc, nil
}

// MustBasicConstraints is like [NewBasicConstraints] but panics on error.
func MustBasicConstraints(isCA bool, pathLen *int) BasicConstraints {
	bc, err := NewBasicConstraints(isCA, pathLen)
	if err != nil {
		panic(err)
	}
	return bc
}

// PathLen returns a pointer to n for use with [NewBasicConstraints].
func PathLen(n int) *int { return &n }

// IsCA reports whether the constraints mark a certification authority.
func (bc BasicConstraints) IsCA() bool { return bc.isCA }

// PathLen returns the path length budget and whether one is set.
func (bc BasicConstraints) PathLen() (int, bool) { return bc.pathLen, bc.hasPathLen }

// marshal encodes BasicConstraints ::= SEQUENCE { cA BOOLEAN DEFAULT FALSE, pathLenConstraint INTEGER OPTIONAL }.
func (bc BasicConstraints) marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		if bc.isCA {
			seq.AddASN1Boolean(true)
		}
		if bc.hasPathLen {
			seq.AddASN1Int64(int64(bc.pathLen))
		}
	})
	return b.Bytes()
}

func parseBasicConstraints(der []byte) (BasicConstraints, error) {
	input := cryptobyte.String(der)

	var seq cryptobyte.String
	if !input.ReadASN1(&seq, asn1.SEQUENCE) || !input.Empty() {
		return BasicConstraints{}, errors.New("invalid basic constraints")
	}

	var bc BasicConstraints
	if seq.PeekASN1Tag(asn1.BOOLEAN) {
		if !seq.ReadASN1Boolean(&bc.isCA) {
			return BasicConstraints{}, errors.New("invalid cA flag")
		}
	}
	if seq.PeekASN1Tag(asn1.INTEGER) {
		if !seq.ReadASN1Integer(&bc.pathLen) || bc.pathLen < 0 {
			return BasicConstraints{}, errors.New("invalid path length")
		}
		bc.hasPathLen = true
	}
	if !seq.Empty() {
		return BasicConstraints{}, errors.New("trailing data in basic constraints")
	}
	if bc.hasPathLen && !bc.isCA {
		return BasicConstraints{}, fmt.Errorf("%w: path length requires a CA", ErrInvalidConstraint)
	}
	return bc, nil
}

// KeyUsage is a set of key usage bits. The zero value means the extension is absent.
type KeyUsage uint16

// Key usage bits, in RFC 5280 bit order.
const (
	KeyUsageDigitalSignature KeyUsage = 1 << iota
	KeyUsageContentCommitment
	KeyUsageKeyEncipherment
	KeyUsageDataEncipherment
	KeyUsageKeyAgreement
	KeyUsageCertSign
	KeyUsageCRLSign
	KeyUsageEncipherOnly
	KeyUsageDecipherOnly
)

var keyUsageNames = []string{
	"digitalSignature",
	"contentCommitment",
	"keyEncipherment",
	"dataEncipherment",
	"keyAgreement",
	"keyCertSign",
	"cRLSign",
	"encipherOnly",
	"decipherOnly",
}

// Has reports whether every bit of flag is set in ku.
func (ku KeyUsage) Has(flag KeyUsage) bool { return flag != 0 && ku&flag == flag }

// Names returns the names of the set bits in bit order.
func (ku KeyUsage) Names() []string {
	var names []string
	for i, name := range keyUsageNames {
		if ku&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return names
}

func (ku KeyUsage) String() string { return strings.Join(ku.Names(), "|") }

// marshal encodes ku as a DER BIT STRING with trailing zero bits removed.
// Bit i of the flag set is bit i of the BIT STRING, counted from the most
// significant bit of the first octet.
func (ku KeyUsage) marshal() ([]byte, error) {
	highest := bits.Len16(uint16(ku)) - 1
	octets := make([]byte, highest/8+1)
	for i := 0; i <= highest; i++ {
		if ku&(1<<i) != 0 {
			octets[i/8] |= 0x80 >> (i % 8)
		}
	}
	unused := byte(7 - highest%8)

	var b cryptobyte.Builder
	b.AddASN1(asn1.BIT_STRING, func(bs *cryptobyte.Builder) {
		bs.AddUint8(unused)
		bs.AddBytes(octets)
	})
	return b.Bytes()
}

func parseKeyUsage(der []byte) (KeyUsage, error) {
	input := cryptobyte.String(der)

	var bs encoding_asn1.BitString
	if !input.ReadASN1BitString(&bs) || !input.Empty() {
		return 0, errors.New("invalid key usage")
	}

	var ku KeyUsage
	for i := 0; i < bs.BitLength && i < len(keyUsageNames); i++ {
		if bs.At(i) == 1 {
			ku |= 1 << i
		}
	}
	return ku, nil
}

// ExtKeyUsage is a certificate purpose carried in the extended key usage extension.
type ExtKeyUsage int

// Supported extended key usage purposes.
const (
	ExtKeyUsageServerAuth ExtKeyUsage = iota + 1
	ExtKeyUsageClientAuth
	ExtKeyUsageCodeSigning
	ExtKeyUsageEmailProtection
	ExtKeyUsageTimeStamping
	ExtKeyUsageOCSPSigning
)

var extKeyUsages = []struct {
	usage ExtKeyUsage
	name  string
	oid   encoding_asn1.ObjectIdentifier
}{
	{ExtKeyUsageServerAuth, "serverAuth", encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 1}},
	{ExtKeyUsageClientAuth, "clientAuth", encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 2}},
	{ExtKeyUsageCodeSigning, "codeSigning", encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 3}},
	{ExtKeyUsageEmailProtection, "emailProtection", encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 4}},
	{ExtKeyUsageTimeStamping, "timeStamping", encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 8}},
	{ExtKeyUsageOCSPSigning, "OCSPSigning", encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 9}},
}

func (u ExtKeyUsage) String() string {
	for _, e := range extKeyUsages {
		if e.usage == u {
			return e.name
		}
	}
	return fmt.Sprintf("ExtKeyUsage(%d)", int(u))
}

// OID returns the object identifier of u, or nil if u is unknown.
func (u ExtKeyUsage) OID() encoding_asn1.ObjectIdentifier {
	for _, e := range extKeyUsages {
		if e.usage == u {
			return e.oid
		}
	}
	return nil
}

// ParseExtKeyUsage maps a purpose name such as "serverAuth" to its value.
func ParseExtKeyUsage(name string) (ExtKeyUsage, bool) {
	for _, e := range extKeyUsages {
		if strings.EqualFold(e.name, name) {
			return e.usage, true
		}
	}
	return 0, false
}

func marshalExtKeyUsage(usages []ExtKeyUsage) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		for _, u := range usages {
			oid := u.OID()
			if oid == nil {
				seq.SetError(fmt.Errorf("unknown extended key usage %d", int(u)))
				return
			}
			seq.AddASN1ObjectIdentifier(oid)
		}
	})
	return b.Bytes()
}

func parseExtKeyUsage(der []byte) ([]ExtKeyUsage, error) {
	input := cryptobyte.String(der)

	var seq cryptobyte.String
	if !input.ReadASN1(&seq, asn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("invalid extended key usage")
	}

	var usages []ExtKeyUsage
	for !seq.Empty() {
		var oid encoding_asn1.ObjectIdentifier
		if !seq.ReadASN1ObjectIdentifier(&oid) {
			return nil, errors.New("invalid purpose identifier")
		}

		found := false
		for _, e := range extKeyUsages {
			if e.oid.Equal(oid) {
				usages = append(usages, e.usage)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unsupported purpose %s", oid)
		}
	}
	return usages, nil
}
