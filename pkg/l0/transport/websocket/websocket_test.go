package websocket

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestIsURL(t *testing.T) {
	require.True(t, IsURL("ws://localhost:8080/serial"))
	require.True(t, IsURL("wss://gateway/tty0"))
	require.False(t, IsURL("/dev/ttyACM0"))
	require.False(t, IsURL("COM3"))
}

func TestEcho(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		io.Copy(ws, ws)
	}))
	defer srv.Close()

	tr := New("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, tr.Open())
	defer tr.Close()

	n, err := tr.Write([]byte{0xff, 0xff, 0xff})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	var out []byte
	buf := make([]byte, 8)
	require.Eventually(t, func() bool {
		n, err := tr.Read(buf)
		if err != nil {
			return false
		}
		out = append(out, buf[:n]...)
		return len(out) >= 3
	}, time.Second, time.Millisecond)
	require.Equal(t, []byte{0xff, 0xff, 0xff}, out)
}
