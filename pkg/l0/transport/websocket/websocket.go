// Package websocket implements Transport over a websocket serial gateway.
package websocket

import (
	"io"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/iolink/pkg/l0/transport"
	"github.com/robotalks/iolink/pkg/l0/transport/stream"
)

// IsURL tells whether name should be opened as a websocket.
func IsURL(name string) bool {
	u, err := url.Parse(name)
	return err == nil && (u.Scheme == "ws" || u.Scheme == "wss")
}

// New creates a websocket transport connecting to the URL.
// Bytes are carried in binary frames.
func New(wsURL string) transport.Transport {
	return stream.New(wsURL, func() (io.ReadWriteCloser, error) {
		origin := "http://localhost/"
		if u, err := url.Parse(wsURL); err == nil {
			if u.Scheme == "wss" {
				origin = "https://" + u.Host + "/"
			} else {
				origin = "http://" + u.Host + "/"
			}
		}
		conn, err := websocket.Dial(wsURL, "", origin)
		if err != nil {
			return nil, err
		}
		conn.PayloadType = websocket.BinaryFrame
		return conn, nil
	})
}

// Opener implements transport.Opener.
func Opener(name string) (transport.Transport, error) {
	return New(name), nil
}
