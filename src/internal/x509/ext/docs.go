// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509ext models the closed set of certificate extensions used by the
// hierarchy: basic constraints, key usage, extended key usage, subject
// alternative names and the subject/authority key identifiers.
//
// A [Set] is a value type. Every With method returns a modified copy, so a
// Set can be shared between goroutines and reused as a template:
//
//	caExt := x509ext.Set{}.
//		WithBasicConstraints(x509ext.MustBasicConstraints(true, x509ext.PathLen(0))).
//		WithKeyUsage(x509ext.KeyUsageDigitalSignature | x509ext.KeyUsageCertSign | x509ext.KeyUsageCRLSign)
//
//	exts, err := caExt.Encode()
//
// [Set.Encode] emits the extensions in a fixed order with fixed criticality,
// so the same Set always yields the same DER. [Parse] performs the reverse
// operation and refuses certificates carrying critical extensions it does not
// understand.
package x509ext
