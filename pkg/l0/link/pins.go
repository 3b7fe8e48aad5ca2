package link

import (
	"github.com/robotalks/iolink/pkg/l0/wire"
)

type pinEntry struct {
	low      uint64
	high     uint64
	factor   uint64
	awaiting bool
}

// pinTable accounts reports per pin. A zero factor means the pin was never
// configured and counts with factor 1.
type pinTable [wire.NumPins]pinEntry

// configure resets the entry; the next report for the pin is discarded as it
// only reflects the level sampled when the listener started.
func (t *pinTable) configure(pin, factor int) {
	t[pin] = pinEntry{factor: uint64(factor), awaiting: true}
}

func (t *pinTable) account(pin int, state wire.State) (Report, bool) {
	e := &t[pin]
	if e.awaiting {
		e.awaiting = false
		return Report{}, false
	}
	factor := e.factor
	if factor == 0 {
		factor = 1
	}
	r := Report{Pin: pin, State: state}
	if state == wire.High {
		e.high += factor
		r.Count = e.high
	} else {
		e.low += factor
		r.Count = e.low
	}
	r.Value = e.value()
	return r, true
}

func (t *pinTable) count(pin int, state wire.State) uint64 {
	if state == wire.High {
		return t[pin].high
	}
	return t[pin].low
}

func (e *pinEntry) value() int64 {
	return int64(e.high) - int64(e.low)
}
