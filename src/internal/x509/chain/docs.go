// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain validates [X.509] certificate chains built by the hierarchy
// and renders them for humans and tools.
//
// [Validate] walks a leaf-first chain up to a separately supplied trust anchor
// and stops at the first failure. For every certificate it checks, in order:
//   - the issuer name matches the subject of the next certificate (or anchor)
//   - the signature verifies under that issuer's public key
//   - the reference time lies inside the validity window
//   - the issuer is a CA allowed to sign certificates
//   - the issuer's path length budget is not exceeded
//   - at the last hop, the anchor is self-issued and self-signed
//
// Finally the leaf itself must not be a CA. Failures are reported as a
// [*ValidationError] carrying the chain index and the failing field, and match
// the package sentinels with errors.Is.
//
// There is no network access, revocation checking or path building: the chain
// is validated exactly as given.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
