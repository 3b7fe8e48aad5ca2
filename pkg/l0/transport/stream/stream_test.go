package stream

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/iolink/pkg/l0/transport"
)

func readAll(t *testing.T, tr *Transport, size int) []byte {
	var out []byte
	buf := make([]byte, 16)
	require.Eventually(t, func() bool {
		n, err := tr.Read(buf)
		if err != nil {
			return false
		}
		out = append(out, buf[:n]...)
		return len(out) >= size
	}, time.Second, time.Millisecond)
	return out
}

func TestTransport(t *testing.T) {
	local, remote := net.Pipe()
	tr := New("pipe", func() (io.ReadWriteCloser, error) { return local, nil })

	_, err := tr.Read(make([]byte, 1))
	require.Equal(t, transport.ErrNotOpen, err)

	require.NoError(t, tr.Open())
	require.Equal(t, "pipe", tr.Name())

	n, err := tr.Read(make([]byte, 1))
	require.NoError(t, err)
	require.Zero(t, n)

	go remote.Write([]byte{1, 2, 3})
	require.Equal(t, []byte{1, 2, 3}, readAll(t, tr, 3))

	recvCh := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4)
		n, _ := io.ReadFull(remote, buf)
		recvCh <- buf[:n]
	}()
	n, err = tr.Write([]byte{4, 5, 6, 7})
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{4, 5, 6, 7}, <-recvCh)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	_, err = tr.Write([]byte{1})
	require.Equal(t, transport.ErrNotOpen, err)
}

func TestTransportReadError(t *testing.T) {
	local, remote := net.Pipe()
	tr := New("pipe", func() (io.ReadWriteCloser, error) { return local, nil })
	require.NoError(t, tr.Open())
	go func() {
		remote.Write([]byte{9})
		remote.Close()
	}()
	require.Equal(t, []byte{9}, readAll(t, tr, 1))
	require.Eventually(t, func() bool {
		_, err := tr.Read(make([]byte, 1))
		return err != nil
	}, time.Second, time.Millisecond)
}

func TestTransportDialError(t *testing.T) {
	tr := New("bad", func() (io.ReadWriteCloser, error) { return nil, io.ErrUnexpectedEOF })
	require.Equal(t, io.ErrUnexpectedEOF, tr.Open())
	_, err := tr.Read(make([]byte, 1))
	require.Equal(t, transport.ErrNotOpen, err)
}
