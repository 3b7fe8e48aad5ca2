package wire

// MarkerByte is the handshake marker byte and the largest protocol byte.
const MarkerByte byte = 0xff

// AckByte is sent back once the handshake marker is received.
const AckByte byte = 'A'

// HandshakeMarker is sent by the device on boot/reset.
var HandshakeMarker = []byte{MarkerByte, MarkerByte, MarkerByte}

// HandshakeMatcher detects a marker sequence in a byte stream.
// It tracks the longest suffix of the pushed bytes which is also a
// prefix of the marker. Matches never overlap: bytes consumed by a full
// match don't start the next one, so ff ff ff ff matches once, at the
// third byte.
type HandshakeMatcher struct {
	marker  []byte
	fail    []int
	matched int
}

// NewHandshakeMatcher creates a matcher for marker.
func NewHandshakeMatcher(marker []byte) *HandshakeMatcher {
	m := &HandshakeMatcher{
		marker: append([]byte(nil), marker...),
		fail:   make([]int, len(marker)),
	}
	for i, k := 1, 0; i < len(marker); i++ {
		for k > 0 && marker[i] != marker[k] {
			k = m.fail[k-1]
		}
		if marker[i] == marker[k] {
			k++
		}
		m.fail[i] = k
	}
	return m
}

// Push consumes one byte and reports whether the marker is now fully matched.
// The match state restarts after a full match so the same bytes never count
// twice.
func (m *HandshakeMatcher) Push(b byte) bool {
	if len(m.marker) == 0 {
		return false
	}
	for m.matched > 0 && b != m.marker[m.matched] {
		m.matched = m.fail[m.matched-1]
	}
	if b == m.marker[m.matched] {
		m.matched++
	}
	if m.matched == len(m.marker) {
		m.matched = 0
		return true
	}
	return false
}

// Matched returns the length of the partial match in progress.
func (m *HandshakeMatcher) Matched() int {
	return m.matched
}

// Reset discards any partial match.
func (m *HandshakeMatcher) Reset() {
	m.matched = 0
}
