// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package authority issues the certificates of a three-tier hierarchy: a
// self-signed root, intermediates signed by it and server leaves signed by an
// intermediate.
//
// Each [Authority] pairs a CA certificate with its key and the authority that
// signed it. All authorities of one hierarchy share a serial registry, so a
// serial number is never handed out twice even when leaves are issued
// concurrently with [Authority.IssueLeaves].
package authority
