// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509store persists the certificates and keys of a hierarchy in a
// single directory.
//
// Every entity is stored under a short name:
//
//	{dir}/
//	  ├── {name}.pem            # certificate
//	  ├── {name}.key            # PKCS#8 private key, mode 0600
//	  └── {name}-fullchain.pem  # leaf followed by its issuing intermediates
//
// Files are replaced atomically, so a reader never observes a half written
// certificate or key.
package x509store
