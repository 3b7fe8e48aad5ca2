package link

import "errors"

var (
	// ErrClosed indicates the Link is closed.
	ErrClosed = errors.New("link closed")
)
