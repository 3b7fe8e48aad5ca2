package wire

// Opcodes of outbound frames.
const (
	OpMemory   byte = 0xfe
	OpExtended byte = 0xff
)

// Commands following OpExtended.
const (
	CmdStop             byte = 0
	CmdPulse            byte = 1
	CmdChirp            byte = 2
	CmdTone             byte = 5
	CmdListenBinary     byte = 255
	CmdListenCapacitive byte = 254
	CmdListenAnalog     byte = 253
	CmdListenRotary     byte = 252
	CmdListenThreshold  byte = 251
)

// Field limits.
const (
	MaxDuration  = 1<<24 - 1
	MaxFrequency = 1<<16 - 1
	MaxByte      = 0xff
	MinFactor    = 1
	MaxFactor    = 0xff
)

// Frame is the encoded bytes of one command.
type Frame []byte

// Listener is a frame configuring an input routine which produces reports.
type Listener interface {
	// Frame validates and encodes the listener.
	Frame() (Frame, error)
	// ReportPin is the pin reports are received for.
	ReportPin() int
	// ReportFactor is the amount each report adds to the pin counter.
	ReportFactor() int
}

type field struct {
	val   uint32
	width uint
}

func extended(cmd byte, fields ...field) Frame {
	values := make([]uint32, 0, len(fields)+2)
	widths := make([]uint, 0, len(fields)+2)
	values = append(values, uint32(OpExtended), uint32(cmd))
	widths = append(widths, 8, 8)
	for _, f := range fields {
		values = append(values, f.val)
		widths = append(widths, f.width)
	}
	data, err := Pack(values, widths)
	if err != nil {
		panic(err)
	}
	return data
}

type checker struct {
	err error
}

func (c *checker) pin(name string, pin int) *checker {
	return c.check(name, int64(pin), 0, NumPins-1)
}

func (c *checker) duration(name string, val uint32) *checker {
	return c.check(name, int64(val), 0, MaxDuration)
}

func (c *checker) byteVal(name string, val int) *checker {
	return c.check(name, int64(val), 0, MaxByte)
}

func (c *checker) factor(val int) *checker {
	return c.check("factor", int64(val), MinFactor, MaxFactor)
}

func (c *checker) check(name string, val, min, max int64) *checker {
	if c.err == nil {
		c.err = checkRange(name, val, min, max)
	}
	return c
}

// DigitalFrame sets a digital output.
func DigitalFrame(pin int, state State) (Frame, error) {
	b, err := EncodeDigital(pin, state)
	if err != nil {
		return nil, err
	}
	return Frame{b}, nil
}

// MemoryFrame writes a value to a device memory address.
func MemoryFrame(address, value int) (Frame, error) {
	var c checker
	if err := c.byteVal("address", address).byteVal("value", value).err; err != nil {
		return nil, err
	}
	return Frame{OpMemory, byte(address), byte(value)}, nil
}

// StopFrame cancels the output (input=false) or input routine on a pin.
func StopFrame(pin int, input bool) (Frame, error) {
	var c checker
	if err := c.pin("pin", pin).err; err != nil {
		return nil, err
	}
	var in uint32
	if input {
		in = 1
	}
	return extended(CmdStop, field{uint32(pin), 7}, field{in, 1}), nil
}

// PulseConfig generates a fixed frequency square wave.
// Durations are in device time units (microseconds).
type PulseConfig struct {
	Pin          int
	StartState   State
	LowDuration  uint32
	HighDuration uint32
	// Repeats is the number of cycles, 0 for infinite.
	Repeats uint32
}

// Frame encodes the config.
func (p PulseConfig) Frame() (Frame, error) {
	var c checker
	c.pin("pin", p.Pin).
		check("start state", int64(p.StartState), int64(Low), int64(High)).
		duration("low duration", p.LowDuration).
		duration("high duration", p.HighDuration).
		duration("repeats", p.Repeats)
	if c.err != nil {
		return nil, c.err
	}
	return extended(CmdPulse,
		field{uint32(p.Pin), 7},
		field{uint32(p.StartState), 1},
		field{p.LowDuration, 24},
		field{p.HighDuration, 24},
		field{p.Repeats, 24},
	), nil
}

// ChirpConfig sweeps the low and high phase durations over time.
type ChirpConfig struct {
	Pin       int
	LowStart  uint32
	LowEnd    uint32
	HighStart uint32
	HighEnd   uint32
	Duration  uint32
}

// Frame encodes the config.
func (p ChirpConfig) Frame() (Frame, error) {
	var c checker
	c.pin("pin", p.Pin).
		duration("low start", p.LowStart).
		duration("low end", p.LowEnd).
		duration("high start", p.HighStart).
		duration("high end", p.HighEnd).
		duration("duration", p.Duration)
	if c.err != nil {
		return nil, c.err
	}
	return extended(CmdChirp,
		field{uint32(p.Pin), 8},
		field{p.LowStart, 24},
		field{p.LowEnd, 24},
		field{p.HighStart, 24},
		field{p.HighEnd, 24},
		field{p.Duration, 24},
	), nil
}

// ToneConfig plays an audio tone.
type ToneConfig struct {
	Pin       int
	Frequency uint32
	Duration  uint32
}

// Frame encodes the config.
func (p ToneConfig) Frame() (Frame, error) {
	var c checker
	c.pin("pin", p.Pin).
		check("frequency", int64(p.Frequency), 0, MaxFrequency).
		duration("duration", p.Duration)
	if c.err != nil {
		return nil, c.err
	}
	return extended(CmdTone,
		field{uint32(p.Pin), 8},
		field{p.Frequency, 16},
		field{p.Duration, 24},
	), nil
}

// BinaryListener reports debounced digital input transitions.
type BinaryListener struct {
	Pin    int
	Rise   uint32
	Fall   uint32
	Factor int
}

// Frame implements Listener.
func (l BinaryListener) Frame() (Frame, error) {
	var c checker
	c.pin("pin", l.Pin).duration("debounce rise", l.Rise).duration("debounce fall", l.Fall).factor(l.Factor)
	if c.err != nil {
		return nil, c.err
	}
	return extended(CmdListenBinary,
		field{uint32(l.Pin), 8},
		field{l.Rise, 24},
		field{l.Fall, 24},
		field{uint32(l.Factor), 8},
	), nil
}

// ReportPin implements Listener.
func (l BinaryListener) ReportPin() int { return l.Pin }

// ReportFactor implements Listener.
func (l BinaryListener) ReportFactor() int { return l.Factor }

// CapacitiveListener reports touches sensed between two pins.
type CapacitiveListener struct {
	PinA    int
	PinB    int
	Samples int
	SNR     int
	Rise    uint32
	Fall    uint32
}

// Frame implements Listener.
func (l CapacitiveListener) Frame() (Frame, error) {
	var c checker
	c.pin("pin A", l.PinA).pin("pin B", l.PinB).
		byteVal("samples", l.Samples).byteVal("snr", l.SNR).
		duration("debounce rise", l.Rise).duration("debounce fall", l.Fall)
	if c.err != nil {
		return nil, c.err
	}
	return extended(CmdListenCapacitive,
		field{uint32(l.PinA), 8},
		field{uint32(l.PinB), 8},
		field{uint32(l.Samples), 8},
		field{uint32(l.SNR), 8},
		field{l.Rise, 24},
		field{l.Fall, 24},
	), nil
}

// ReportPin implements Listener.
func (l CapacitiveListener) ReportPin() int { return l.PinA }

// ReportFactor implements Listener.
func (l CapacitiveListener) ReportFactor() int { return 1 }

// AnalogListener reports analog levels.
type AnalogListener struct {
	Pin  int
	Rise uint32
	Fall uint32
}

// Frame implements Listener.
func (l AnalogListener) Frame() (Frame, error) {
	var c checker
	c.pin("pin", l.Pin).duration("debounce rise", l.Rise).duration("debounce fall", l.Fall)
	if c.err != nil {
		return nil, c.err
	}
	return extended(CmdListenAnalog,
		field{uint32(l.Pin), 8},
		field{l.Rise, 24},
		field{l.Fall, 24},
	), nil
}

// ReportPin implements Listener.
func (l AnalogListener) ReportPin() int { return l.Pin }

// ReportFactor implements Listener.
func (l AnalogListener) ReportFactor() int { return 1 }

// RotaryListener reports quadrature encoder steps.
type RotaryListener struct {
	PinA   int
	PinB   int
	Factor int
}

// Frame implements Listener.
func (l RotaryListener) Frame() (Frame, error) {
	var c checker
	c.pin("pin A", l.PinA).pin("pin B", l.PinB).factor(l.Factor)
	if c.err != nil {
		return nil, c.err
	}
	return extended(CmdListenRotary,
		field{uint32(l.PinA), 8},
		field{uint32(l.PinB), 8},
		field{uint32(l.Factor), 8},
	), nil
}

// ReportPin implements Listener.
func (l RotaryListener) ReportPin() int { return l.PinA }

// ReportFactor implements Listener.
func (l RotaryListener) ReportFactor() int { return l.Factor }

// ThresholdListener reports an analog input crossing a threshold.
type ThresholdListener struct {
	Pin       int
	Threshold int
	Rise      uint32
	Fall      uint32
}

// Frame implements Listener.
func (l ThresholdListener) Frame() (Frame, error) {
	var c checker
	c.pin("pin", l.Pin).byteVal("threshold", l.Threshold).
		duration("debounce rise", l.Rise).duration("debounce fall", l.Fall)
	if c.err != nil {
		return nil, c.err
	}
	return extended(CmdListenThreshold,
		field{uint32(l.Pin), 8},
		field{uint32(l.Threshold), 8},
		field{l.Rise, 24},
		field{l.Fall, 24},
	), nil
}

// ReportPin implements Listener.
func (l ThresholdListener) ReportPin() int { return l.Pin }

// ReportFactor implements Listener.
func (l ThresholdListener) ReportFactor() int { return 1 }
