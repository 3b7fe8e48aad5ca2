package link

import (
	"github.com/robotalks/iolink/pkg/l0/wire"
)

// SetDigital sets a digital output.
func (l *Link) SetDigital(pin int, state wire.State) error {
	return l.enqueue(wire.DigitalFrame(pin, state))
}

// SetMemory writes value at a device memory address.
func (l *Link) SetMemory(address, value int) error {
	return l.enqueue(wire.MemoryFrame(address, value))
}

// Stop cancels the output (input=false) or input routine on a pin.
func (l *Link) Stop(pin int, input bool) error {
	return l.enqueue(wire.StopFrame(pin, input))
}

// Pulse starts a square wave generator.
func (l *Link) Pulse(c wire.PulseConfig) error {
	return l.enqueue(c.Frame())
}

// Chirp starts a frequency sweep.
func (l *Link) Chirp(c wire.ChirpConfig) error {
	return l.enqueue(c.Frame())
}

// Tone plays a tone.
func (l *Link) Tone(c wire.ToneConfig) error {
	return l.enqueue(c.Frame())
}

// ListenBinary starts a filtered digital input listener.
func (l *Link) ListenBinary(c wire.BinaryListener) error {
	return l.Listen(c)
}

// ListenCapacitive starts a touch sensing listener. Reports arrive on PinA.
func (l *Link) ListenCapacitive(c wire.CapacitiveListener) error {
	return l.Listen(c)
}

// ListenAnalog starts an analog level listener.
func (l *Link) ListenAnalog(c wire.AnalogListener) error {
	return l.Listen(c)
}

// ListenRotary starts a quadrature encoder listener. Reports arrive on PinA.
func (l *Link) ListenRotary(c wire.RotaryListener) error {
	return l.Listen(c)
}

// ListenThreshold starts an analog threshold crossing listener.
func (l *Link) ListenThreshold(c wire.ThresholdListener) error {
	return l.Listen(c)
}

// Listen resets the accounting of the report pin and queues the listener.
func (l *Link) Listen(lst wire.Listener) error {
	frame, err := lst.Frame()
	if err != nil {
		return err
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.pins.configure(lst.ReportPin(), lst.ReportFactor())
	l.push(frame)
	return nil
}

// Count returns the accumulated counter of state on pin.
func (l *Link) Count(pin int, state wire.State) (uint64, error) {
	if err := wire.ValidPin(pin); err != nil {
		return 0, err
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.pins.count(pin, state), nil
}

// Value returns the net value (high count minus low count) of pin.
func (l *Link) Value(pin int) (int64, error) {
	if err := wire.ValidPin(pin); err != nil {
		return 0, err
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.pins[pin].value(), nil
}

// Pending returns the number of bytes waiting to be written.
func (l *Link) Pending() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.outQ)
}

// OnConnectionChanged subscribes connection state changes.
func (l *Link) OnConnectionChanged(h ConnectionHandler) *Subscription {
	return l.events.subscribe(&l.events.conn, h)
}

// OnData subscribes reports of all pins.
func (l *Link) OnData(h ReportHandler) *Subscription {
	return l.events.subscribe(&l.events.data, h)
}

// OnPin subscribes reports of a single pin.
func (l *Link) OnPin(pin int, h ReportHandler) (*Subscription, error) {
	if err := wire.ValidPin(pin); err != nil {
		return nil, err
	}
	return l.events.subscribe(&l.events.pins[pin], h), nil
}

func (l *Link) enqueue(frame wire.Frame, err error) error {
	if err != nil {
		return err
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.push(frame)
	return nil
}

func (l *Link) push(frame wire.Frame) {
	l.outQ = append(l.outQ, frame...)
	l.metrics.setPending(len(l.outQ))
}
