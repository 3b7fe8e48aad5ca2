package wire

// Pack packs values into a dense MSB-first bitstream. values[i] is truncated
// to its low widths[i] bits. A trailing partial byte is zero padded.
func Pack(values []uint32, widths []uint) ([]byte, error) {
	if len(values) != len(widths) {
		return nil, ErrFieldMismatch
	}
	var total uint
	for _, w := range widths {
		total += w
	}
	out := make([]byte, (total+7)/8)
	var pos uint
	for i, val := range values {
		w := widths[i]
		if w < 32 {
			val &= (1 << w) - 1
		}
		for bit := w; bit > 0; bit-- {
			if val&(1<<(bit-1)) != 0 {
				out[pos/8] |= 0x80 >> (pos % 8)
			}
			pos++
		}
	}
	return out, nil
}

// Unpack reverses Pack.
func Unpack(data []byte, widths []uint) ([]uint32, error) {
	var total uint
	for _, w := range widths {
		total += w
	}
	if total > uint(len(data))*8 {
		return nil, ErrShortData
	}
	values := make([]uint32, len(widths))
	var pos uint
	for i, w := range widths {
		var val uint32
		for bit := uint(0); bit < w; bit++ {
			val <<= 1
			if data[pos/8]&(0x80>>(pos%8)) != 0 {
				val |= 1
			}
			pos++
		}
		values[i] = val
	}
	return values, nil
}
