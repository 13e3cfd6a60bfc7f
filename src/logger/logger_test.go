// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLILogger(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Printf",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				log.Printf("issued %s", "localhost")

				assert.Equal(t, "issued localhost\n", buf.String())
			},
		},
		{
			name: "Println",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				log.Println("chain", "valid")

				assert.Equal(t, "chain valid\n", buf.String())
			},
		},
		{
			name: "Errorf",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				log.Errorf("certificate %d: %s", 0, "expired")

				assert.Equal(t, "error: certificate 0: expired\n", buf.String())
			},
		},
		{
			name: "SetOutput",
			testFunc: func(t *testing.T) {
				var buf1, buf2 bytes.Buffer
				log := logger.NewCLILogger()

				log.SetOutput(&buf1)
				log.Println("first")

				log.SetOutput(&buf2)
				log.Println("second")

				assert.Contains(t, buf1.String(), "first")
				assert.Contains(t, buf2.String(), "second")
				assert.NotContains(t, buf1.String(), "second")
			},
		},
		{
			name: "ConcurrentUsage",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				const numGoroutines = 50
				const messagesPerGoroutine = 10

				var wg sync.WaitGroup
				for i := range numGoroutines {
					wg.Go(func() {
						for j := range messagesPerGoroutine {
							log.Printf("goroutine %d message %d", i, j)
						}
					})
				}
				wg.Wait()

				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				assert.Len(t, lines, numGoroutines*messagesPerGoroutine)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

type line struct {
	Time      string `json:"time"`
	Level     string `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

func parseLines(t *testing.T, output string) []line {
	t.Helper()
	var out []line
	for i, raw := range strings.Split(strings.TrimSpace(output), "\n") {
		var l line
		require.NoError(t, json.Unmarshal([]byte(raw), &l), "line %d: %s", i+1, raw)
		out = append(out, l)
	}
	return out
}

func TestJSONLogger(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Levels and fields",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewJSONLogger(&buf, false)

				log.Printf("issued %s", "localhost")
				log.Println("validated", 2, "certificates")
				log.Errorf("certificate %d: %s", 1, "bad signature")

				lines := parseLines(t, buf.String())
				require.Len(t, lines, 3)

				assert.Equal(t, logger.LevelInfo, lines[0].Level)
				assert.Equal(t, "issued localhost", lines[0].Message)
				assert.Equal(t, "validated2certificates", lines[1].Message)
				assert.Equal(t, logger.LevelError, lines[2].Level)
				assert.Equal(t, "certificate 1: bad signature", lines[2].Message)

				_, err := time.Parse(time.RFC3339, lines[0].Time)
				assert.NoError(t, err)
				assert.Empty(t, lines[0].Component)
			},
		},
		{
			name: "Special characters",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewJSONLogger(&buf, false)

				msg := "CN=\"Acme, Inc\"\n\tSAN: DNS:localhost"
				log.Println(msg)

				lines := parseLines(t, buf.String())
				require.Len(t, lines, 1)
				assert.Equal(t, msg, lines[0].Message)
			},
		},
		{
			name: "Silent",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewJSONLogger(&buf, true)

				log.Printf("hidden")
				log.Errorf("hidden")

				assert.Empty(t, buf.String())
			},
		},
		{
			name: "Nil writer",
			testFunc: func(t *testing.T) {
				log := logger.NewJSONLogger(nil, false)
				assert.NotPanics(t, func() { log.Printf("discarded") })

				log.SetOutput(nil)
				assert.NotPanics(t, func() { log.Println("discarded") })
			},
		},
		{
			name: "Component shares output",
			testFunc: func(t *testing.T) {
				var first, second bytes.Buffer
				root := logger.NewJSONLogger(&first, false)
				tools := root.WithComponent("tools")

				tools.Printf("validate_chain")
				root.SetOutput(&second)
				tools.Printf("inspect_chain")

				lines := parseLines(t, first.String())
				require.Len(t, lines, 1)
				assert.Equal(t, "tools", lines[0].Component)

				lines = parseLines(t, second.String())
				require.Len(t, lines, 1)
				assert.Equal(t, "inspect_chain", lines[0].Message)
			},
		},
		{
			name: "Concurrent",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewJSONLogger(&buf, false)
				issuer := log.WithComponent("authority")

				const numGoroutines = 50
				const messagesPerGoroutine = 10

				var wg sync.WaitGroup
				for i := range numGoroutines {
					wg.Go(func() {
						for j := range messagesPerGoroutine {
							if j%2 == 0 {
								log.Printf("goroutine %d message %d", i, j)
							} else {
								issuer.Errorf("goroutine %d message %d", i, j)
							}
						}
					})
				}
				wg.Wait()

				lines := parseLines(t, buf.String())
				assert.Len(t, lines, numGoroutines*messagesPerGoroutine)
				for _, l := range lines {
					assert.Contains(t, l.Message, "goroutine")
				}
			},
		},
		{
			name: "Write to file",
			testFunc: func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "mcp.log")
				file, err := os.Create(path)
				require.NoError(t, err)
				t.Cleanup(func() { file.Close() })

				log := logger.NewJSONLogger(file, false)
				log.Printf("message %d", 1)
				log.Printf("message %d", 2)
				require.NoError(t, file.Sync())

				content, err := os.ReadFile(path)
				require.NoError(t, err)
				lines := parseLines(t, string(content))
				require.Len(t, lines, 2)
				assert.Equal(t, "message 2", lines[1].Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}
