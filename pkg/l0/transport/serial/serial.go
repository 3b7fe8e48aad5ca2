// Package serial implements Transport over a serial port.
package serial

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/iolink/pkg/l0/transport"
)

// DefaultBaudRate is used when BaudRate is not set.
const DefaultBaudRate = 115200

// DefaultReadTimeout keeps Read short enough for a tick.
const DefaultReadTimeout = time.Millisecond

// Port implements transport.Transport.
type Port struct {
	Path        string
	BaudRate    int
	ReadTimeout time.Duration

	port serial.Port
	lock sync.Mutex
}

// New creates a Port, it's not opened.
func New(path string, baudRate int) *Port {
	return &Port{
		Path:        path,
		BaudRate:    baudRate,
		ReadTimeout: DefaultReadTimeout,
	}
}

// Opener returns a transport.Opener creating serial ports with baudRate.
func Opener(baudRate int) transport.Opener {
	return func(name string) (transport.Transport, error) {
		return New(name, baudRate), nil
	}
}

// Name implements Transport.
func (p *Port) Name() string {
	return p.Path
}

// Open implements Transport.
func (p *Port) Open() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.port != nil {
		return nil
	}
	baud := p.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(p.Path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", p.Path, err)
	}
	if err = port.SetReadTimeout(p.ReadTimeout); err != nil {
		port.Close()
		return fmt.Errorf("set read timeout %s: %w", p.Path, err)
	}
	if err = port.ResetInputBuffer(); err != nil {
		glog.Warningf("%s: reset input buffer: %v", p.Path, err)
	}
	glog.Infof("%s opened at %d baud", p.Path, baud)
	p.port = port
	return nil
}

// Close implements Transport.
func (p *Port) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

// Read implements Transport.
func (p *Port) Read(buf []byte) (int, error) {
	port := p.current()
	if port == nil {
		return 0, transport.ErrNotOpen
	}
	return port.Read(buf)
}

// Write implements Transport.
func (p *Port) Write(buf []byte) (int, error) {
	port := p.current()
	if port == nil {
		return 0, transport.ErrNotOpen
	}
	return port.Write(buf)
}

func (p *Port) current() serial.Port {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.port
}
