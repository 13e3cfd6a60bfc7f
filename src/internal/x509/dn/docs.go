// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509dn builds, compares and encodes X.509 distinguished names.
//
// A [Name] is an immutable, ordered list of attributes drawn from a closed
// set of types (C, ST, L, O, OU, CN and emailAddress). Names are validated
// when built, their values are normalised to Unicode NFC, and they encode to
// the DER RDNSequence of [RFC 5280] with one attribute per RDN.
//
// Example usage:
//
//	name, err := x509dn.Build(
//		x509dn.Attribute{Type: x509dn.Country, Value: "BR"},
//		x509dn.Attribute{Type: x509dn.Organization, Value: "CT"},
//		x509dn.Attribute{Type: x509dn.CommonName, Value: "Root CA"},
//	)
//	if err != nil {
//		// handle error
//	}
//	der, err := name.Encode()
//
// Two names are [Equal] when they hold the same type/value pairs, whatever
// their order.
//
// [RFC 5280]: https://www.rfc-editor.org/rfc/rfc5280#section-4.1.2.4
package x509dn
