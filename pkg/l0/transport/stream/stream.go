// Package stream adapts blocking io.ReadWriteClosers to transport.Transport.
package stream

import (
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/iolink/pkg/l0/transport"
)

// DialFunc opens the underlying stream.
type DialFunc func() (io.ReadWriteCloser, error)

// Transport implements transport.Transport.
// A background reader buffers received bytes so Read never blocks.
type Transport struct {
	name string
	dial DialFunc

	conn *conn
	lock sync.Mutex
}

type conn struct {
	rwc  io.ReadWriteCloser
	buf  []byte
	err  error
	lock sync.Mutex
}

// New creates a Transport.
func New(name string, dial DialFunc) *Transport {
	return &Transport{name: name, dial: dial}
}

// Name implements Transport.
func (t *Transport) Name() string {
	return t.name
}

// Open implements Transport.
func (t *Transport) Open() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.conn != nil {
		return nil
	}
	rwc, err := t.dial()
	if err != nil {
		return err
	}
	t.conn = &conn{rwc: rwc}
	go t.conn.readLoop(t.name)
	return nil
}

// Close implements Transport.
func (t *Transport) Close() error {
	t.lock.Lock()
	c := t.conn
	t.conn = nil
	t.lock.Unlock()
	if c == nil {
		return nil
	}
	return c.rwc.Close()
}

// Read implements Transport.
func (t *Transport) Read(p []byte) (int, error) {
	c := t.current()
	if c == nil {
		return 0, transport.ErrNotOpen
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.buf) == 0 {
		return 0, c.err
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

// Write implements Transport.
func (t *Transport) Write(p []byte) (int, error) {
	c := t.current()
	if c == nil {
		return 0, transport.ErrNotOpen
	}
	return c.rwc.Write(p)
}

func (t *Transport) current() *conn {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.conn
}

func (c *conn) readLoop(name string) {
	buf := make([]byte, 256)
	for {
		n, err := c.rwc.Read(buf)
		c.lock.Lock()
		c.buf = append(c.buf, buf[:n]...)
		if err != nil {
			c.err = err
		}
		c.lock.Unlock()
		if err != nil {
			glog.V(2).Infof("%s: reader stopped: %v", name, err)
			return
		}
	}
}
