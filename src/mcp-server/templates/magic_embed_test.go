// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package templates

import (
	"io"
	"strings"
	"testing"
)

func TestMagicEmbed_ReadFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		contains []string
		wantErr  bool
	}{
		{
			name:     "read instructions template",
			filename: "instructions.md",
			contains: []string{"{{range .Tools}}", `{{index .ToolRoles "leafIssuer"}}`},
		},
		{
			name:     "read store layout documentation",
			filename: "store-layout.md",
			contains: []string{"# Certificate Store Layout", "{name}-fullchain.pem", "ca-root"},
		},
		{
			name:     "read non-existent file",
			filename: "non-existent.md",
			wantErr:  true,
		},
		{
			name:     "read file with invalid path",
			filename: "../invalid.md",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MagicEmbed.ReadFile(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MagicEmbed.ReadFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.contains {
				if !strings.Contains(string(data), want) {
					t.Errorf("%s does not contain %q", tt.filename, want)
				}
			}
		})
	}
}

func TestMagicEmbed_ReadDir(t *testing.T) {
	entries, err := MagicEmbed.ReadDir(".")
	if err != nil {
		t.Fatalf("MagicEmbed.ReadDir() error = %v", err)
	}

	found := map[string]bool{"instructions.md": false, "store-layout.md": false}
	for _, entry := range entries {
		if entry.IsDir() {
			t.Errorf("Unexpected directory found: %s", entry.Name())
			continue
		}
		if _, ok := found[entry.Name()]; ok {
			found[entry.Name()] = true
		}
	}
	for name, ok := range found {
		if !ok {
			t.Errorf("Expected file %s not found in directory listing", name)
		}
	}

	if _, err := MagicEmbed.ReadDir("non-existent"); err == nil {
		t.Error("MagicEmbed.ReadDir() expected error for non-existent directory")
	}
}

func TestMagicEmbed_Open(t *testing.T) {
	file, err := MagicEmbed.Open("store-layout.md")
	if err != nil {
		t.Fatalf("MagicEmbed.Open() error = %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("Failed to read from opened file: %v", err)
	}
	info, err := file.Stat()
	if err != nil {
		t.Fatalf("Failed to get file info: %v", err)
	}
	if info.IsDir() || info.Size() != int64(len(data)) {
		t.Errorf("unexpected file info: dir=%v size=%d read=%d", info.IsDir(), info.Size(), len(data))
	}

	if _, err := MagicEmbed.Open("non-existent.md"); err == nil {
		t.Error("MagicEmbed.Open() expected error for non-existent file")
	}
}

func TestMagicEmbed_InterfaceCompliance(t *testing.T) {
	var _ EmbedFS = MagicEmbed
	var _ EmbedFS = &embedFS{}
}
