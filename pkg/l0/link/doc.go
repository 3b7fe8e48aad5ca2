// Package link drives an I/O peripheral over a transport.Transport.
//
// A Link owns the transport, an output queue of encoded command frames, an
// input buffer of received bytes and the per-pin report accounting. All I/O
// happens in Tick, which is expected to be invoked periodically from a
// single goroutine, usually by a framework.Loop. Commands may be issued from
// any goroutine; they are validated, encoded and queued, and transmitted in
// order on later ticks once the device is connected.
//
// The device announces itself with the wire.HandshakeMarker. The Link
// replies with wire.AckByte and reports ConnectionChanged(true). A marker
// received while connected means the device was reset, and subscribers see
// ConnectionChanged(false) immediately followed by ConnectionChanged(true).
// A failed transport write or read disconnects the Link, which then closes
// and reopens the transport until it succeeds and waits for a new handshake.
// Queued bytes not yet written survive the reconnection.
package link
