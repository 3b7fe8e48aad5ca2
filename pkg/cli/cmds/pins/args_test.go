package pins

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/iolink/pkg/l0/wire"
)

func TestArgs(t *testing.T) {
	a := parseArgs([]string{"10", "0x10", "high"}, "PIN", 1)
	require.NoError(t, a.err)
	require.Equal(t, 10, a.int(0, "PIN", 0))
	require.Equal(t, uint32(16), a.uint32(1, "LOW", 0))
	require.Equal(t, wire.High, a.state(2, "STATE", wire.Low))
	require.Equal(t, uint32(7), a.uint32(3, "REPEATS", 7))
	require.NoError(t, a.err)

	a = parseArgs([]string{"x", "1"}, "PIN STATE", 2)
	require.Equal(t, 0, a.int(0, "PIN", 0))
	require.EqualError(t, a.err, `invalid PIN: "x"`)
	// the first error is kept.
	a.uint32(1, "OTHER", 0)
	require.EqualError(t, a.err, `invalid PIN: "x"`)

	a = parseArgs([]string{"1"}, "PIN STATE", 2)
	require.EqualError(t, a.err, "PIN STATE required")

	a = parseArgs([]string{"-1"}, "DURATION", 1)
	a.uint32(0, "DURATION", 0)
	require.Error(t, a.err)
}

func TestParseState(t *testing.T) {
	testCases := []struct {
		in    string
		state wire.State
		ok    bool
	}{
		{"0", wire.Low, true},
		{"LOW", wire.Low, true},
		{"off", wire.Low, true},
		{"1", wire.High, true},
		{"High", wire.High, true},
		{"on", wire.High, true},
		{"2", wire.Low, false},
		{"", wire.Low, false},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			state, err := parseState(tc.in)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.state, state)
		})
	}
}
