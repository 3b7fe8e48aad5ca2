package link

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/iolink/pkg/framework"
	"github.com/robotalks/iolink/pkg/l0/transport"
	"github.com/robotalks/iolink/pkg/l0/wire"
)

// Defaults.
const (
	DefaultReadChunk      = 128
	DefaultDecodeChunk    = 64
	DefaultWriteChunk     = 64
	DefaultWriteBudget    = 512
	DefaultWritePause     = 2 * time.Millisecond
	DefaultReconnectDelay = time.Second
)

// Link drives an I/O peripheral over a Transport.
type Link struct {
	// ReadChunk is the max bytes read per tick.
	ReadChunk int
	// DecodeChunk is the max bytes decoded per tick.
	DecodeChunk int
	// WriteChunk is the max bytes per transport write.
	WriteChunk int
	// WriteBudget is the max bytes written per tick.
	WriteBudget int
	// WritePause is the pause between two write chunks.
	WritePause time.Duration
	// ReconnectDelay is the wait between failed reopen attempts.
	ReconnectDelay time.Duration

	transport transport.Transport
	metrics   *Metrics
	sleep     func(time.Duration)
	events    dispatcher

	lock   sync.Mutex
	outQ   []byte
	pins   pinTable
	state  ConnState
	closed bool

	// owned by Tick
	tickLock     sync.Mutex
	inBuf        []byte
	readBuf      []byte
	matcher      *wire.HandshakeMatcher
	reconnecting bool
	reconnectAt  time.Time
}

// Option configures a Link.
type Option func(*Link)

// WithMetrics records statistics to m.
func WithMetrics(m *Metrics) Option {
	return func(l *Link) {
		l.metrics = m
		l.events.metrics = m
	}
}

// WithReconnectDelay sets ReconnectDelay.
func WithReconnectDelay(d time.Duration) Option {
	return func(l *Link) { l.ReconnectDelay = d }
}

// WithWritePause sets WritePause.
func WithWritePause(d time.Duration) Option {
	return func(l *Link) { l.WritePause = d }
}

// WithSleep replaces time.Sleep used for WritePause.
func WithSleep(sleep func(time.Duration)) Option {
	return func(l *Link) { l.sleep = sleep }
}

// New creates a Link and opens the transport.
func New(t transport.Transport, opts ...Option) (*Link, error) {
	l := &Link{
		ReadChunk:      DefaultReadChunk,
		DecodeChunk:    DefaultDecodeChunk,
		WriteChunk:     DefaultWriteChunk,
		WriteBudget:    DefaultWriteBudget,
		WritePause:     DefaultWritePause,
		ReconnectDelay: DefaultReconnectDelay,
		transport:      t,
		sleep:          time.Sleep,
		matcher:        wire.NewHandshakeMatcher(wire.HandshakeMarker),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := t.Open(); err != nil {
		return nil, fmt.Errorf("open %s: %w", t.Name(), err)
	}
	l.metrics.setConnected(false)
	return l, nil
}

// Name is the transport name.
func (l *Link) Name() string {
	return l.transport.Name()
}

// Close closes the transport. Commands fail with ErrClosed afterwards.
func (l *Link) Close() error {
	l.lock.Lock()
	if l.closed {
		l.lock.Unlock()
		return nil
	}
	l.closed = true
	l.lock.Unlock()
	return l.transport.Close()
}

// Tick performs one round of I/O: read, decode and dispatch, then write.
// It returns true if work is left for the next tick.
func (l *Link) Tick(now time.Time) bool {
	l.tickLock.Lock()
	defer l.tickLock.Unlock()
	if l.isClosed() {
		return false
	}
	if l.reconnecting {
		if now.Before(l.reconnectAt) {
			return false
		}
		if l.reconnect(now); l.reconnecting {
			return false
		}
	}
	l.read(now)
	l.decode(now)
	more := l.flush(now)
	return more || len(l.inBuf) > 0
}

// Control implements framework.Controller.
func (l *Link) Control(cc fx.ControlContext) error {
	if l.Tick(cc.Time()) {
		cc.TriggerNext()
	}
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (l *Link) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIO, l)
}

func (l *Link) isClosed() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.closed
}

func (l *Link) read(now time.Time) {
	if l.reconnecting {
		return
	}
	if cap(l.readBuf) < l.ReadChunk {
		l.readBuf = make([]byte, l.ReadChunk)
	}
	n, err := l.transport.Read(l.readBuf[:l.ReadChunk])
	if n > 0 {
		l.metrics.read(n)
		if glog.V(4) {
			glog.Infof("%s: RCV % x", l.Name(), l.readBuf[:n])
		}
		l.inBuf = append(l.inBuf, l.readBuf[:n]...)
	}
	if err != nil {
		l.failed(now, "read", err)
	}
}

func (l *Link) decode(now time.Time) {
	n := len(l.inBuf)
	if n > l.DecodeChunk {
		n = l.DecodeChunk
	}
	for i := 0; i < n; i++ {
		if l.reconnecting {
			// the rest is dropped on reopen.
			n = i
			break
		}
		b := l.inBuf[i]
		if l.matcher.Push(b) {
			l.handshaked(now)
			continue
		}
		if l.State() != Connected {
			continue
		}
		pin, state, ok := wire.DecodeReport(b)
		if !ok {
			l.metrics.report(reportIgnored)
			continue
		}
		l.lock.Lock()
		r, accepted := l.pins.account(pin, state)
		l.lock.Unlock()
		if !accepted {
			l.metrics.report(reportDiscarded)
			continue
		}
		l.metrics.report(reportDispatched)
		l.events.report(r)
	}
	l.inBuf = append(l.inBuf[:0], l.inBuf[n:]...)
}

// flush writes queued bytes in chunks. Bytes are only dropped from the queue
// once written, so a failure leaves the rest for after reconnection.
func (l *Link) flush(now time.Time) bool {
	if l.reconnecting || l.State() != Connected {
		return false
	}
	budget := l.WriteBudget
	for budget > 0 {
		size := l.WriteChunk
		if size > budget {
			size = budget
		}
		l.lock.Lock()
		if size > len(l.outQ) {
			size = len(l.outQ)
		}
		chunk := append([]byte(nil), l.outQ[:size]...)
		l.lock.Unlock()
		if len(chunk) == 0 {
			return false
		}
		n, err := l.transport.Write(chunk)
		if n > 0 {
			l.metrics.written(n)
			if glog.V(4) {
				glog.Infof("%s: SND % x", l.Name(), chunk[:n])
			}
		}
		l.lock.Lock()
		l.outQ = l.outQ[n:]
		remains := len(l.outQ)
		l.lock.Unlock()
		l.metrics.setPending(remains)
		if err != nil {
			l.failed(now, "write", err)
			return false
		}
		if n == 0 || remains == 0 {
			return false
		}
		budget -= n
		if budget > 0 && l.WritePause > 0 {
			l.sleep(l.WritePause)
		}
	}
	return l.Pending() > 0
}
