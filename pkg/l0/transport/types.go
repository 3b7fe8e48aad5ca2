// Package transport defines the byte stream channel to the I/O peripheral.
package transport

import "errors"

// Transport is a byte stream to the device.
// Read and Write must not block for long: Read returns 0, nil when no
// data is available.
type Transport interface {
	// Name identifies the transport, e.g. the serial device path.
	Name() string
	// Open opens (or reopens after Close) the transport.
	Open() error
	// Close closes the transport. It's safe to call on a closed transport.
	Close() error
	// Read reads available bytes without blocking.
	Read(p []byte) (int, error)
	// Write writes bytes.
	Write(p []byte) (int, error)
}

// Opener creates a Transport from its name.
type Opener func(name string) (Transport, error)

// ErrNotOpen indicates the transport is not opened.
var ErrNotOpen = errors.New("transport not open")
