package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectState(t *testing.T) {
	seen := make(map[byte]bool)
	for pin := 0; pin < NumPins; pin++ {
		for _, state := range []State{Low, High} {
			b, err := EncodeDigital(pin, state)
			require.NoError(t, err)
			require.False(t, seen[b], "duplicated code %d", b)
			seen[b] = true
			p, s, ok := DecodeReport(b)
			require.True(t, ok)
			require.Equal(t, pin, p)
			require.Equal(t, state, s)
		}
	}
	require.Len(t, seen, 2*NumPins)
	for b := 2 * NumPins; b <= 0xff; b++ {
		_, _, ok := DecodeReport(byte(b))
		require.False(t, ok)
	}
}

func TestEncodeDigitalRange(t *testing.T) {
	for _, pin := range []int{-1, NumPins, 200} {
		_, err := EncodeDigital(pin, High)
		require.ErrorIs(t, err, ErrOutOfRange)
	}
	b, err := EncodeDigital(126, High)
	require.NoError(t, err)
	require.Equal(t, byte(253), b)
}
