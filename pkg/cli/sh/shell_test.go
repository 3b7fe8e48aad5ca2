package sh

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/iolink/pkg/config"
	"github.com/robotalks/iolink/pkg/l0/link"
	"github.com/robotalks/iolink/pkg/l0/wire"
)

// exclusivePorts fails opening a port which is already open, like a serial
// device.
type exclusivePorts struct {
	lock sync.Mutex
	open map[string]bool
}

type exclusivePort struct {
	ports *exclusivePorts
	name  string
}

func (p *exclusivePort) Name() string { return p.name }

func (p *exclusivePort) Open() error {
	p.ports.lock.Lock()
	defer p.ports.lock.Unlock()
	if p.ports.open[p.name] {
		return fmt.Errorf("%s: device busy", p.name)
	}
	p.ports.open[p.name] = true
	return nil
}

func (p *exclusivePort) Close() error {
	p.ports.lock.Lock()
	defer p.ports.lock.Unlock()
	p.ports.open[p.name] = false
	return nil
}

func (p *exclusivePort) Read([]byte) (int, error)    { return 0, nil }
func (p *exclusivePort) Write(b []byte) (int, error) { return len(b), nil }

func (ps *exclusivePorts) isOpen(name string) bool {
	ps.lock.Lock()
	defer ps.lock.Unlock()
	return ps.open[name]
}

func TestShellReopen(t *testing.T) {
	ports := &exclusivePorts{open: make(map[string]bool)}
	conf := config.NewConfig()
	conf.Tick = time.Millisecond
	s := &Shell{
		Config: conf,
		LinkFactory: func(port string) (*link.Link, error) {
			return link.New(&exclusivePort{ports: ports, name: port})
		},
	}

	require.NoError(t, s.Open("/dev/ttyACM0"))
	first := s.Loop.Link
	require.NoError(t, s.Open("/dev/ttyACM0"))
	require.NotSame(t, first, s.Loop.Link)
	require.Equal(t, link.ErrClosed, first.SetDigital(1, wire.High))
	require.True(t, ports.isOpen("/dev/ttyACM0"))

	require.NoError(t, s.Open("/dev/ttyACM1"))
	require.False(t, ports.isOpen("/dev/ttyACM0"))
	require.Equal(t, "/dev/ttyACM1", s.Loop.Link.Name())

	s.Close()
	require.Nil(t, s.Loop)
	require.False(t, ports.isOpen("/dev/ttyACM1"))
}
