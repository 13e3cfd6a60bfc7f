// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509keys generates the RSA key pairs that back every authority and
// leaf in the hierarchy, and converts them to and from PEM.
//
// Private keys are written as [PKCS#8], either in the clear or encrypted with
// a caller supplied password through [pkcs8].
//
// [PKCS#8]: https://www.rfc-editor.org/rfc/rfc5208
// [pkcs8]: https://github.com/youmark/pkcs8
package x509keys
