// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509dn

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
	"golang.org/x/text/unicode/norm"
)

// AttributeType names one of the supported distinguished name attributes.
type AttributeType string

const (
	Country            AttributeType = "C"
	State              AttributeType = "ST"
	Locality           AttributeType = "L"
	Organization       AttributeType = "O"
	OrganizationalUnit AttributeType = "OU"
	CommonName         AttributeType = "CN"
	Email              AttributeType = "emailAddress"
)

var (
	oidCountry            = encoding_asn1.ObjectIdentifier{2, 5, 4, 6}
	oidState              = encoding_asn1.ObjectIdentifier{2, 5, 4, 8}
	oidLocality           = encoding_asn1.ObjectIdentifier{2, 5, 4, 7}
	oidOrganization       = encoding_asn1.ObjectIdentifier{2, 5, 4, 10}
	oidOrganizationalUnit = encoding_asn1.ObjectIdentifier{2, 5, 4, 11}
	oidCommonName         = encoding_asn1.ObjectIdentifier{2, 5, 4, 3}
	oidEmail              = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
)

var typeOIDs = map[AttributeType]encoding_asn1.ObjectIdentifier{
	Country:            oidCountry,
	State:              oidState,
	Locality:           oidLocality,
	Organization:       oidOrganization,
	OrganizationalUnit: oidOrganizationalUnit,
	CommonName:         oidCommonName,
	Email:              oidEmail,
}

// OID returns the object identifier of t, or nil for an unknown type.
func (t AttributeType) OID() encoding_asn1.ObjectIdentifier {
	oid, ok := typeOIDs[t]
	if !ok {
		return nil
	}
	return slices.Clone(oid)
}

// Valid reports whether t is one of the supported attribute types.
func (t AttributeType) Valid() bool {
	_, ok := typeOIDs[t]
	return ok
}

func typeForOID(oid encoding_asn1.ObjectIdentifier) (AttributeType, bool) {
	for t, known := range typeOIDs {
		if known.Equal(oid) {
			return t, true
		}
	}
	return "", false
}

var (
	// ErrInvalidAttribute indicates a name that cannot be built from the given attributes.
	ErrInvalidAttribute = errors.New("x509dn: invalid attribute")

	// ErrMalformedName indicates DER input that is not an RDNSequence.
	ErrMalformedName = errors.New("x509dn: malformed name")
)

// AttributeError describes which attribute was rejected and why.
// It matches [ErrInvalidAttribute] with errors.Is.
type AttributeError struct {
	Type   AttributeType
	Reason string
}

func (e *AttributeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("x509dn: invalid attribute: %s", e.Reason)
	}
	return fmt.Sprintf("x509dn: invalid attribute %s: %s", e.Type, e.Reason)
}

// Is reports whether target is [ErrInvalidAttribute].
func (e *AttributeError) Is(target error) bool { return target == ErrInvalidAttribute }

// Attribute is a single type/value pair of a distinguished name.
type Attribute struct {
	Type  AttributeType `json:"type" yaml:"type"`
	Value string        `json:"value" yaml:"value"`
}

// Name is an immutable distinguished name. The zero value is an empty name
// that no certificate may carry.
type Name struct {
	attrs []Attribute
}

// Build validates attrs and returns a [Name] preserving their order.
//
// Parameters:
//   - attrs: The attributes in encoding order; a CommonName is required
//
// Returns:
//   - Name: The validated name with NFC-normalised values
//   - error: An [*AttributeError] describing the first rejected attribute
func Build(attrs ...Attribute) (Name, error) {
	out := make([]Attribute, 0, len(attrs))
	hasCN := false

	for _, a := range attrs {
		if !a.Type.Valid() {
			return Name{}, &AttributeError{Type: a.Type, Reason: "unknown attribute type"}
		}
		if !utf8.ValidString(a.Value) {
			return Name{}, &AttributeError{Type: a.Type, Reason: "value is not valid UTF-8"}
		}

		value := norm.NFC.String(a.Value)
		if strings.TrimSpace(value) == "" {
			return Name{}, &AttributeError{Type: a.Type, Reason: "value is empty"}
		}

		switch a.Type {
		case Country:
			if len(value) != 2 || !isPrintable(value) {
				return Name{}, &AttributeError{Type: a.Type, Reason: "must be a two character code"}
			}
		case Email:
			if !isASCII(value) {
				return Name{}, &AttributeError{Type: a.Type, Reason: "must be ASCII"}
			}
		case CommonName:
			hasCN = true
		}

		out = append(out, Attribute{Type: a.Type, Value: value})
	}

	if !hasCN {
		return Name{}, &AttributeError{Type: CommonName, Reason: "common name is required"}
	}

	return Name{attrs: out}, nil
}

// MustBuild is like [Build] but panics on error. It is meant for fixed names
// in tests and package level variables.
func MustBuild(attrs ...Attribute) Name {
	n, err := Build(attrs...)
	if err != nil {
		panic(err)
	}
	return n
}

// Attributes returns a copy of the attributes in encoding order.
func (n Name) Attributes() []Attribute { return slices.Clone(n.attrs) }

// IsZero reports whether n holds no attributes.
func (n Name) IsZero() bool { return len(n.attrs) == 0 }

// Get returns the first value of type t.
func (n Name) Get(t AttributeType) (string, bool) {
	for _, a := range n.attrs {
		if a.Type == t {
			return a.Value, true
		}
	}
	return "", false
}

// CommonName returns the first common name value.
func (n Name) CommonName() string {
	cn, _ := n.Get(CommonName)
	return cn
}

// Equal reports whether a and b carry the same multiset of type/value pairs.
func Equal(a, b Name) bool {
	if len(a.attrs) != len(b.attrs) {
		return false
	}
	return slices.Equal(sortedKeys(a), sortedKeys(b))
}

// Equal is the method form of [Equal].
func (n Name) Equal(other Name) bool { return Equal(n, other) }

func sortedKeys(n Name) []string {
	keys := make([]string, len(n.attrs))
	for i, a := range n.attrs {
		keys[i] = string(a.Type) + "\x00" + a.Value
	}
	slices.Sort(keys)
	return keys
}

// String renders n in RFC 4514 form, most significant attribute last.
func (n Name) String() string {
	parts := make([]string, 0, len(n.attrs))
	for i := len(n.attrs) - 1; i >= 0; i-- {
		a := n.attrs[i]
		parts = append(parts, string(a.Type)+"="+escapeValue(a.Value))
	}
	return strings.Join(parts, ",")
}

// Encode returns the DER RDNSequence for n, one attribute per RDN.
// Country values use PrintableString, email IA5String and every other
// type UTF8String.
func (n Name) Encode() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		for _, a := range n.attrs {
			seq.AddASN1(asn1.SET, func(set *cryptobyte.Builder) {
				set.AddASN1(asn1.SEQUENCE, func(atv *cryptobyte.Builder) {
					atv.AddASN1ObjectIdentifier(typeOIDs[a.Type])
					atv.AddASN1(stringTag(a.Type), func(v *cryptobyte.Builder) {
						v.AddBytes([]byte(a.Value))
					})
				})
			})
		}
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedName, err)
	}
	return der, nil
}

// Decode parses a DER RDNSequence back into a [Name]. The result goes through
// [Build], so the same validation applies.
func Decode(der []byte) (Name, error) {
	input := cryptobyte.String(der)

	var rdns cryptobyte.String
	if !input.ReadASN1(&rdns, asn1.SEQUENCE) || !input.Empty() {
		return Name{}, ErrMalformedName
	}

	var attrs []Attribute
	for !rdns.Empty() {
		var set cryptobyte.String
		if !rdns.ReadASN1(&set, asn1.SET) {
			return Name{}, fmt.Errorf("%w: bad RDN", ErrMalformedName)
		}

		for !set.Empty() {
			var (
				atv   cryptobyte.String
				oid   encoding_asn1.ObjectIdentifier
				value cryptobyte.String
				tag   asn1.Tag
			)
			if !set.ReadASN1(&atv, asn1.SEQUENCE) ||
				!atv.ReadASN1ObjectIdentifier(&oid) ||
				!atv.ReadAnyASN1(&value, &tag) ||
				!atv.Empty() {
				return Name{}, fmt.Errorf("%w: bad attribute", ErrMalformedName)
			}

			switch tag {
			case asn1.PrintableString, asn1.UTF8String, asn1.IA5String:
			default:
				return Name{}, fmt.Errorf("%w: unsupported string tag %d", ErrMalformedName, tag)
			}

			t, ok := typeForOID(oid)
			if !ok {
				return Name{}, &AttributeError{Type: AttributeType(oid.String()), Reason: "unknown attribute type"}
			}

			attrs = append(attrs, Attribute{Type: t, Value: string(value)})
		}
	}

	return Build(attrs...)
}

func stringTag(t AttributeType) asn1.Tag {
	switch t {
	case Country:
		return asn1.PrintableString
	case Email:
		return asn1.IA5String
	default:
		return asn1.UTF8String
	}
}

func isPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case strings.IndexByte(" '()+,-./:=?", c) >= 0:
		default:
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// escapeValue applies the RFC 4514 escaping rules.
func escapeValue(v string) string {
	var sb strings.Builder
	for i, r := range v {
		switch {
		case strings.ContainsRune(`,+"\<>;`, r):
			sb.WriteByte('\\')
		case i == 0 && (r == ' ' || r == '#'):
			sb.WriteByte('\\')
		case i == len(v)-1 && r == ' ':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
