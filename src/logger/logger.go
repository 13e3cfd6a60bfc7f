// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/helper/gc"
)

// Log levels written by [JSONLogger].
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Logger defines the interface for logging operations.
//
// It is implemented by [CLILogger] for the command line and by [JSONLogger]
// for the [MCP] service, whose stdout belongs to the protocol.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type Logger interface {
	// Printf formats and prints an informational message.
	Printf(format string, v ...any)
	// Println prints an informational message with a newline.
	Println(v ...any)
	// Errorf formats and prints an error message.
	Errorf(format string, v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// Informational output goes to stdout and errors to stderr, without timestamps.
type CLILogger struct {
	logger *log.Logger
	errors *log.Logger
}

// NewCLILogger creates a new CLI logger with timestamps disabled.
func NewCLILogger() *CLILogger {
	return &CLILogger{
		logger: log.New(os.Stdout, "", 0),
		errors: log.New(os.Stderr, "error: ", 0),
	}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// Errorf prints an error message prefixed with "error: ".
func (c *CLILogger) Errorf(format string, v ...any) { c.errors.Printf(format, v...) }

// SetOutput sets the output destination for both informational and error output.
func (c *CLILogger) SetOutput(w io.Writer) {
	c.logger.SetOutput(w)
	c.errors.SetOutput(w)
}

// sink is the destination shared by a [JSONLogger] and its derived loggers.
type sink struct {
	mu     sync.Mutex
	writer io.Writer
}

// JSONLogger writes one JSON object per line with time, level, component and
// message fields. It is silent by default so that it never interferes with a
// stdio transport.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	out       *sink
	silent    bool
	component string
	now       func() time.Time
}

// entry is one JSON log line.
type entry struct {
	Time      string `json:"time"`
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// NewJSONLogger creates a structured logger writing to writer.
// A nil writer discards output.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		out:    &sink{writer: writer},
		silent: silent,
		now:    time.Now,
	}
}

// WithComponent returns a logger that tags every line with name and shares
// the receiver's destination.
func (j *JSONLogger) WithComponent(name string) *JSONLogger {
	derived := *j
	derived.component = name
	return &derived
}

// Printf formats and logs an informational message.
func (j *JSONLogger) Printf(format string, v ...any) {
	j.write(LevelInfo, fmt.Sprintf(format, v...))
}

// Println logs an informational message.
func (j *JSONLogger) Println(v ...any) {
	j.write(LevelInfo, fmt.Sprint(v...))
}

// Errorf formats and logs an error message.
func (j *JSONLogger) Errorf(format string, v ...any) {
	j.write(LevelError, fmt.Sprintf(format, v...))
}

// SetOutput sets the output destination shared with derived loggers.
func (j *JSONLogger) SetOutput(w io.Writer) {
	j.out.mu.Lock()
	defer j.out.mu.Unlock()

	if w == nil {
		j.out.writer = io.Discard
	} else {
		j.out.writer = w
	}
}

func (j *JSONLogger) write(level, msg string) {
	if j.silent {
		return
	}

	line, err := gc.Collect(func(buf gc.Buffer) error {
		// Encode appends the trailing newline.
		return json.NewEncoder(buf).Encode(entry{
			Time:      j.now().UTC().Format(time.RFC3339),
			Level:     level,
			Component: j.component,
			Message:   msg,
		})
	})
	if err != nil {
		return
	}

	j.out.mu.Lock()
	_, _ = j.out.writer.Write(line)
	j.out.mu.Unlock()
}
