package link

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/iolink/pkg/l0/wire"
)

// ConnState is the state of the device connection.
type ConnState int

// Connection states.
const (
	Disconnected ConnState = iota
	Connected
)

// String implements fmt.Stringer.
func (s ConnState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// State gets the connection state.
func (l *Link) State() ConnState {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.state
}

// Connected tells whether the device completed the handshake.
func (l *Link) Connected() bool {
	return l.State() == Connected
}

func (l *Link) setState(state ConnState) (prev ConnState) {
	l.lock.Lock()
	prev, l.state = l.state, state
	l.lock.Unlock()
	l.metrics.setConnected(state == Connected)
	return
}

// handshaked handles a complete marker. A marker while connected means the
// device was reset.
func (l *Link) handshaked(now time.Time) {
	l.metrics.handshake()
	if l.setState(Connected) == Connected {
		glog.Infof("%s: device reset", l.Name())
		l.events.connectionChanged(false)
	} else {
		glog.Infof("%s: device connected", l.Name())
	}
	l.events.connectionChanged(true)
	if _, err := l.transport.Write([]byte{wire.AckByte}); err != nil {
		l.failed(now, "ack", err)
		return
	}
	l.metrics.written(1)
}

// failed handles a transport failure: disconnect and schedule one reconnect.
func (l *Link) failed(now time.Time, op string, err error) {
	glog.Warningf("%s: %s failed: %v", l.Name(), op, err)
	l.metrics.transportFailed(op)
	if l.setState(Disconnected) == Connected {
		l.events.connectionChanged(false)
	}
	if l.reconnecting {
		return
	}
	l.reconnecting = true
	l.reconnectAt = now
}

// reconnect closes and reopens the transport. The device must handshake
// again before the Link is connected.
func (l *Link) reconnect(now time.Time) {
	l.metrics.reconnect()
	if err := l.transport.Close(); err != nil {
		glog.V(2).Infof("%s: close: %v", l.Name(), err)
	}
	if err := l.transport.Open(); err != nil {
		glog.Warningf("%s: reopen failed, retry in %s: %v", l.Name(), l.ReconnectDelay, err)
		l.reconnectAt = now.Add(l.ReconnectDelay)
		return
	}
	if l.isClosed() {
		// Close raced with the reopen.
		if err := l.transport.Close(); err != nil {
			glog.V(2).Infof("%s: close: %v", l.Name(), err)
		}
		return
	}
	glog.Infof("%s: reopened, waiting for handshake", l.Name())
	l.reconnecting = false
	l.matcher.Reset()
	l.inBuf = l.inBuf[:0]
}
