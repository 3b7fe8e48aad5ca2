// Package wire provides the L0 I/O peripheral protocol encoding.
package wire

// The protocol is communicated between the I/O peripheral firmware and the
// host and focuses on small transmission size and cheap per-byte decoding.
//
// Outbound, a digital write is a single direct-state byte: the pin number for
// LOW, the pin number plus NumPins for HIGH. Everything else is an extended
// frame starting with an opcode byte (254 for memory writes, 255 for
// generator/listener commands) followed by bit-packed fields.
//
// Inbound, every byte below 2*NumPins is a direct-state report of a pin
// level. The device announces (re)boot by sending the handshake marker, three
// 0xff bytes, and expects a single AckByte in reply.
//
// Producer: host
// Consumer: I/O peripheral firmware
