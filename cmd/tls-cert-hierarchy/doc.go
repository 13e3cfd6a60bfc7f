// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// tls-cert-hierarchy is a command-line tool for building a three tier TLS
// certificate hierarchy and for validating and inspecting the chains it issues.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/tls-cert-hierarchy/cmd/tls-cert-hierarchy@latest
//
// # Usage
//
//	tls-cert-hierarchy [--config PROFILE] [--out DIR] COMMAND [FLAGS]
//
// # Commands
//
//	keygen NAME             Generate an RSA key pair and store it as NAME.key
//	init                    Create the root and intermediate CAs
//	issue DOMAIN...         Issue server certificates signed by the intermediate
//	validate FILE           Validate a chain up to its trust anchor
//	inspect FILE            Show a chain as a tree, table or JSON
//
// # Examples
//
// Create the hierarchy and issue a certificate for localhost:
//
//	tls-cert-hierarchy init
//	tls-cert-hierarchy issue localhost --dns www.localhost --ip 127.0.0.1
//
// Validate the issued chain against the stored root:
//
//	tls-cert-hierarchy validate certs/localhost-fullchain.pem
//
// Display the chain as a markdown table:
//
//	tls-cert-hierarchy inspect certs/localhost-fullchain.pem --table
//
// Private keys are encrypted when $TLS_HIERARCHY_KEY_PASSWORD is set.
//
// Verify the output with OpenSSL:
//
//	openssl verify -CAfile certs/ca-root.pem \
//	  -untrusted certs/ca-intermediate.pem certs/localhost.pem
package main
