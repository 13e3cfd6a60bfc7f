// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the hierarchy profile: the subject attributes shared by
// every certificate, the key size, digest and lifetime of each tier, and where
// the material is written.
//
// A profile is read from a JSON or YAML file, chosen by extension, whose path
// is given explicitly or through the TLS_HIERARCHY_CONFIG_FILE environment
// variable. The file is checked against an embedded JSON Schema before it is
// merged over [Default].
package config
