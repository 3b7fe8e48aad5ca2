package wire

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	testCases := []struct {
		name   string
		values []uint32
		widths []uint
		expect []byte
	}{
		{"bytes", []uint32{1, 2, 3}, []uint{8, 8, 8}, []byte{1, 2, 3}},
		{"pin and flag", []uint32{10, 1}, []uint{7, 1}, []byte{21}},
		{"24 bits", []uint32{500000}, []uint{24}, []byte{0x07, 0xa1, 0x20}},
		{"truncate", []uint32{0x1ff, 0x3}, []uint{8, 8}, []byte{0xff, 0x03}},
		{"pad", []uint32{1}, []uint{1}, []byte{0x80}},
		{"nibbles", []uint32{0xa, 0x5, 0xf}, []uint{4, 4, 4}, []byte{0xa5, 0xf0}},
		{"empty", nil, nil, []byte{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Pack(tc.values, tc.widths)
			require.NoError(t, err)
			require.Equal(t, tc.expect, out)
		})
	}
}

func TestPackMismatch(t *testing.T) {
	_, err := Pack([]uint32{1, 2}, []uint{8})
	require.Equal(t, ErrFieldMismatch, err)
}

func TestUnpackShortData(t *testing.T) {
	_, err := Unpack([]byte{1}, []uint{8, 1})
	require.Equal(t, ErrShortData, err)
}

func TestPackUnpack(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for n := 0; n < 200; n++ {
		var values []uint32
		var widths []uint
		var total uint
		for total == 0 || total%8 != 0 {
			w := uint(rnd.Intn(32) + 1)
			widths = append(widths, w)
			values = append(values, rnd.Uint32())
			total += w
		}
		data, err := Pack(values, widths)
		require.NoError(t, err)
		require.Len(t, data, int(total/8))
		out, err := Unpack(data, widths)
		require.NoError(t, err)
		for i, w := range widths {
			mask := uint32(1<<w - 1)
			if w == 32 {
				mask = 0xffffffff
			}
			require.Equalf(t, values[i]&mask, out[i], "case %d field %d width %d", n, i, w)
		}
	}
}
