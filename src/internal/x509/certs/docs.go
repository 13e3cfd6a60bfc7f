// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs builds, signs and encodes the [X.509] certificates of the
// hierarchy.
//
// [Build] turns a [Request] (subject, public key, issuer, validity window,
// extensions and digest) into a signed, immutable [Certificate]. The issuer is
// either the subject itself ([SelfSigned]) or another authority ([IssuedBy],
// [IssuedByCertificate]). Certificates are signed with RSA PKCS#1 v1.5 over
// SHA-256, SHA-384 or SHA-512 and carry a fresh 128-bit random serial.
//
// A [Codec] moves certificates between [PEM], DER and [PKCS7] bundles. Single
// certificates round trip through PEM byte for byte.
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
