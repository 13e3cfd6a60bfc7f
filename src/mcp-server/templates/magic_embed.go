// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package templates

import (
	"embed"
	"io/fs"
)

//go:embed *.md
var embeddedFS embed.FS

// EmbedFS is the read-only view of the server's markdown templates.
// Tests substitute their own implementation to exercise missing files.
type EmbedFS interface {
	fs.ReadDirFS
	fs.ReadFileFS
}

// embedFS wraps [embed.FS] to implement EmbedFS interface.
type embedFS struct{ fs embed.FS }

func (e *embedFS) ReadFile(name string) ([]byte, error) { return e.fs.ReadFile(name) }

func (e *embedFS) ReadDir(name string) ([]fs.DirEntry, error) { return e.fs.ReadDir(name) }

func (e *embedFS) Open(name string) (fs.File, error) { return e.fs.Open(name) }

// MagicEmbed holds instructions.md, the server instructions template, and
// store-layout.md, served as the docs://store-layout resource.
var MagicEmbed EmbedFS = &embedFS{fs: embeddedFS}
