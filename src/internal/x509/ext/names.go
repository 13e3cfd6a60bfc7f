// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// SANKind discriminates subject alternative name entries.
type SANKind int

const (
	SANDNS SANKind = iota + 1
	SANIP
)

func (k SANKind) String() string {
	switch k {
	case SANDNS:
		return "DNS"
	case SANIP:
		return "IP"
	default:
		return fmt.Sprintf("SANKind(%d)", int(k))
	}
}

var (
	tagDNSName   = asn1.Tag(2).ContextSpecific()
	tagIPAddress = asn1.Tag(7).ContextSpecific()
)

// maxDNSNameLength is the longest name a DNS resolver accepts.
const maxDNSNameLength = 253

// SAN is a single subject alternative name entry.
type SAN struct {
	Kind  SANKind
	Value string
}

// DNSName returns a DNS entry for name.
func DNSName(name string) SAN { return SAN{Kind: SANDNS, Value: name} }

// IPAddress returns an IP entry for the textual address ip.
func IPAddress(ip string) SAN { return SAN{Kind: SANIP, Value: ip} }

func (s SAN) String() string { return s.Kind.String() + ":" + s.Value }

// SubjectAltName is an ordered, non-empty list of [SAN] entries.
type SubjectAltName struct {
	entries []SAN
}

// NewSubjectAltName validates entries and returns them in order.
// IP entries are stored in their canonical textual form.
func NewSubjectAltName(entries ...SAN) (SubjectAltName, error) {
	if len(entries) == 0 {
		return SubjectAltName{}, ErrEmptySAN
	}

	out := make([]SAN, 0, len(entries))
	for _, e := range entries {
		switch e.Kind {
		case SANDNS:
			if err := checkDNSName(e.Value); err != nil {
				return SubjectAltName{}, fmt.Errorf("%w: DNS %q: %w", ErrInvalidSAN, e.Value, err)
			}
			out = append(out, e)
		case SANIP:
			addr, err := netip.ParseAddr(e.Value)
			if err != nil || addr.Zone() != "" {
				return SubjectAltName{}, fmt.Errorf("%w: IP %q is not an address literal", ErrInvalidSAN, e.Value)
			}
			out = append(out, SAN{Kind: SANIP, Value: addr.String()})
		default:
			return SubjectAltName{}, fmt.Errorf("%w: unsupported kind %s", ErrInvalidSAN, e.Kind)
		}
	}

	return SubjectAltName{entries: out}, nil
}

// Entries returns a copy of the entries in order.
func (s SubjectAltName) Entries() []SAN { return slices.Clone(s.entries) }

// DNSNames returns the DNS entries in order.
func (s SubjectAltName) DNSNames() []string { return s.values(SANDNS) }

// IPAddresses returns the IP entries in order.
func (s SubjectAltName) IPAddresses() []string { return s.values(SANIP) }

func (s SubjectAltName) values(kind SANKind) []string {
	var out []string
	for _, e := range s.entries {
		if e.Kind == kind {
			out = append(out, e.Value)
		}
	}
	return out
}

func checkDNSName(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	if len(name) > maxDNSNameLength {
		return errors.New("name too long")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c >= 0x7f {
			return errors.New("name must be printable ASCII")
		}
	}
	if strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return errors.New("empty label")
	}
	return nil
}

// marshal encodes GeneralNames with dNSName [2] and iPAddress [7] entries.
func (s SubjectAltName) marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		for _, e := range s.entries {
			switch e.Kind {
			case SANDNS:
				seq.AddASN1(tagDNSName, func(v *cryptobyte.Builder) {
					v.AddBytes([]byte(e.Value))
				})
			case SANIP:
				addr, err := netip.ParseAddr(e.Value)
				if err != nil {
					seq.SetError(err)
					return
				}
				seq.AddASN1(tagIPAddress, func(v *cryptobyte.Builder) {
					v.AddBytes(addr.AsSlice())
				})
			}
		}
	})
	return b.Bytes()
}

func parseSubjectAltName(der []byte) (SubjectAltName, error) {
	input := cryptobyte.String(der)

	var seq cryptobyte.String
	if !input.ReadASN1(&seq, asn1.SEQUENCE) || !input.Empty() {
		return SubjectAltName{}, errors.New("invalid general names")
	}

	var entries []SAN
	for !seq.Empty() {
		var (
			value cryptobyte.String
			tag   asn1.Tag
		)
		if !seq.ReadAnyASN1(&value, &tag) {
			return SubjectAltName{}, errors.New("invalid general name")
		}

		switch tag {
		case tagDNSName:
			entries = append(entries, DNSName(string(value)))
		case tagIPAddress:
			addr, ok := netip.AddrFromSlice(value)
			if !ok {
				return SubjectAltName{}, fmt.Errorf("invalid IP address length %d", len(value))
			}
			entries = append(entries, IPAddress(addr.String()))
		default:
			return SubjectAltName{}, fmt.Errorf("unsupported general name tag %d", tag)
		}
	}

	return NewSubjectAltName(entries...)
}
