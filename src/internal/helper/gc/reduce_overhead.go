// Copyright (c) 2024 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// Buffer defines the interface for a reusable byte buffer.
// It abstracts the [bytebufferpool.ByteBuffer] type to avoid direct dependencies.
type Buffer interface {
	Write(p []byte) (int, error)
	WriteString(s string) (int, error)
	WriteByte(c byte) error
	Bytes() []byte
	Len() int
	Reset()
	ReadFrom(r io.Reader) (int64, error)
}

// Pool defines the interface for buffer pooling.
// It abstracts the [bytebufferpool.Pool] type to avoid direct dependencies.
//
// Pool implementations must be safe for concurrent use by multiple goroutines.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

// pool wraps [bytebufferpool.Pool] to implement Pool interface.
type pool struct{ p *bytebufferpool.Pool }

// Get returns a buffer from the pool.
func (p *pool) Get() Buffer { return p.p.Get() }

// Put returns a buffer to the pool.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		p.p.Put(buf)
	}
}

// Default is the buffer pool shared by the PEM codec and the certificate store.
//
// Example usage for assembling a PEM bundle:
//
//	buf := gc.Default.Get()
//
//	defer func() {
//		buf.Reset()         // Reset the buffer to prevent key material leaking into the next user
//		gc.Default.Put(buf) // Return the buffer to the pool for reuse
//	}()
//
//	for _, block := range blocks {
//		if err := pem.Encode(buf, block); err != nil {
//			return nil, err
//		}
//	}
//
//	out := append([]byte(nil), buf.Bytes()...)
var Default Pool = &pool{p: &bytebufferpool.Pool{}}

// Collect runs fn against a pooled buffer and returns a copy of everything fn wrote.
//
// The buffer is reset and handed back to [Default] before Collect returns, so the
// returned slice never aliases pooled memory.
//
// Parameters:
//   - fn: Callback that writes into the buffer
//
// Returns:
//   - []byte: Copy of the buffer contents
//   - error: Error returned by fn, if any
func Collect(fn func(buf Buffer) error) ([]byte, error) {
	buf := Default.Get()
	defer func() {
		buf.Reset()
		Default.Put(buf)
	}()

	if err := fn(buf); err != nil {
		return nil, err
	}

	return append([]byte(nil), buf.Bytes()...), nil
}

// ReadAll drains r through a pooled buffer and returns a copy of the data.
func ReadAll(r io.Reader) ([]byte, error) {
	return Collect(func(buf Buffer) error {
		_, err := buf.ReadFrom(r)
		return err
	})
}
