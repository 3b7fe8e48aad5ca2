package wire

// NumPins is the number of addressable pins.
const NumPins = 127

// State is the level of a pin.
type State byte

// Pin levels.
const (
	Low  State = 0
	High State = 1
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == High {
		return "HIGH"
	}
	return "LOW"
}

// ValidPin checks pin is addressable.
func ValidPin(pin int) error {
	return checkRange("pin", int64(pin), 0, NumPins-1)
}

// EncodeDigital encodes a pin level as a direct-state byte.
func EncodeDigital(pin int, state State) (byte, error) {
	if err := ValidPin(pin); err != nil {
		return 0, err
	}
	if state == High {
		return byte(pin + NumPins), nil
	}
	return byte(pin), nil
}

// DecodeReport decodes an inbound direct-state byte. ok is false for bytes
// reserved for framing.
func DecodeReport(b byte) (pin int, state State, ok bool) {
	switch {
	case b < NumPins:
		return int(b), Low, true
	case b < 2*NumPins:
		return int(b) - NumPins, High, true
	}
	return 0, Low, false
}
