// Package pins exposes Link operations as shell commands.
package pins

import (
	"fmt"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/iolink/pkg/cli/sh"
	"github.com/robotalks/iolink/pkg/l0/link"
	"github.com/robotalks/iolink/pkg/l0/wire"
)

// defaultWatch is how long watch runs in evaluation mode.
const defaultWatch = 10 * time.Second

func command(name string, aliases []string, help string, required int, fn func(*ishell.Context, *link.Link, *args) error) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: sh.MustBeOpen(func(c *ishell.Context, l *link.Link) {
			a := parseArgs(c.Args, help, required)
			if a.err != nil {
				c.Err(a.err)
				return
			}
			if err := fn(c, l, a); err != nil {
				c.Err(err)
			}
		}),
	}
}

func queued(c *ishell.Context, a *args, do func() error) error {
	if a.err != nil {
		return a.err
	}
	sh.Done(c, do())
	return nil
}

var (
	// DigitalCmd sets a digital output.
	DigitalCmd = command("digital", []string{"d"}, "PIN STATE", 2,
		func(c *ishell.Context, l *link.Link, a *args) error {
			pin, state := a.int(0, "PIN", 0), a.state(1, "STATE", wire.Low)
			return queued(c, a, func() error { return l.SetDigital(pin, state) })
		})

	// MemoryCmd writes device memory.
	MemoryCmd = command("memory", []string{"mem"}, "ADDR VALUE", 2,
		func(c *ishell.Context, l *link.Link, a *args) error {
			addr, val := a.int(0, "ADDR", 0), a.int(1, "VALUE", 0)
			return queued(c, a, func() error { return l.SetMemory(addr, val) })
		})

	// StopCmd cancels the routine on a pin.
	StopCmd = command("stop", nil, "PIN [in|out]", 1,
		func(c *ishell.Context, l *link.Link, a *args) error {
			pin := a.int(0, "PIN", 0)
			input := a.has(1) && a.values[1] == "in"
			return queued(c, a, func() error { return l.Stop(pin, input) })
		})

	// PulseCmd starts a square wave.
	PulseCmd = command("pulse", nil, "PIN LOW(us) HIGH(us) [REPEATS] [START]", 3,
		func(c *ishell.Context, l *link.Link, a *args) error {
			conf := wire.PulseConfig{
				Pin:          a.int(0, "PIN", 0),
				LowDuration:  a.uint32(1, "LOW", 0),
				HighDuration: a.uint32(2, "HIGH", 0),
				Repeats:      a.uint32(3, "REPEATS", 0),
				StartState:   a.state(4, "START", wire.Low),
			}
			return queued(c, a, func() error { return l.Pulse(conf) })
		})

	// ChirpCmd starts a frequency sweep.
	ChirpCmd = command("chirp", nil, "PIN LOW_START LOW_END HIGH_START HIGH_END DURATION", 6,
		func(c *ishell.Context, l *link.Link, a *args) error {
			conf := wire.ChirpConfig{
				Pin:       a.int(0, "PIN", 0),
				LowStart:  a.uint32(1, "LOW_START", 0),
				LowEnd:    a.uint32(2, "LOW_END", 0),
				HighStart: a.uint32(3, "HIGH_START", 0),
				HighEnd:   a.uint32(4, "HIGH_END", 0),
				Duration:  a.uint32(5, "DURATION", 0),
			}
			return queued(c, a, func() error { return l.Chirp(conf) })
		})

	// ToneCmd plays a tone.
	ToneCmd = command("tone", nil, "PIN FREQ(Hz) DURATION", 3,
		func(c *ishell.Context, l *link.Link, a *args) error {
			conf := wire.ToneConfig{
				Pin:       a.int(0, "PIN", 0),
				Frequency: a.uint32(1, "FREQ", 0),
				Duration:  a.uint32(2, "DURATION", 0),
			}
			return queued(c, a, func() error { return l.Tone(conf) })
		})

	// ListenBinaryCmd starts a digital input listener.
	ListenBinaryCmd = command("listen.binary", []string{"lb"}, "PIN [RISE FALL FACTOR]", 1,
		func(c *ishell.Context, l *link.Link, a *args) error {
			conf := wire.BinaryListener{
				Pin:    a.int(0, "PIN", 0),
				Rise:   a.uint32(1, "RISE", 0),
				Fall:   a.uint32(2, "FALL", 0),
				Factor: a.int(3, "FACTOR", 1),
			}
			return queued(c, a, func() error { return l.ListenBinary(conf) })
		})

	// ListenCapacitiveCmd starts a touch sensing listener.
	ListenCapacitiveCmd = command("listen.capacitive", []string{"lc"}, "PIN_A PIN_B [SAMPLES SNR RISE FALL]", 2,
		func(c *ishell.Context, l *link.Link, a *args) error {
			conf := wire.CapacitiveListener{
				PinA:    a.int(0, "PIN_A", 0),
				PinB:    a.int(1, "PIN_B", 0),
				Samples: a.int(2, "SAMPLES", 0),
				SNR:     a.int(3, "SNR", 0),
				Rise:    a.uint32(4, "RISE", 0),
				Fall:    a.uint32(5, "FALL", 0),
			}
			return queued(c, a, func() error { return l.ListenCapacitive(conf) })
		})

	// ListenAnalogCmd starts an analog listener.
	ListenAnalogCmd = command("listen.analog", []string{"la"}, "PIN [RISE FALL]", 1,
		func(c *ishell.Context, l *link.Link, a *args) error {
			conf := wire.AnalogListener{
				Pin:  a.int(0, "PIN", 0),
				Rise: a.uint32(1, "RISE", 0),
				Fall: a.uint32(2, "FALL", 0),
			}
			return queued(c, a, func() error { return l.ListenAnalog(conf) })
		})

	// ListenRotaryCmd starts a quadrature encoder listener.
	ListenRotaryCmd = command("listen.rotary", []string{"lr"}, "PIN_A PIN_B [FACTOR]", 2,
		func(c *ishell.Context, l *link.Link, a *args) error {
			conf := wire.RotaryListener{
				PinA:   a.int(0, "PIN_A", 0),
				PinB:   a.int(1, "PIN_B", 0),
				Factor: a.int(2, "FACTOR", 1),
			}
			return queued(c, a, func() error { return l.ListenRotary(conf) })
		})

	// ListenThresholdCmd starts a threshold listener.
	ListenThresholdCmd = command("listen.threshold", []string{"lt"}, "PIN THRESHOLD [RISE FALL]", 2,
		func(c *ishell.Context, l *link.Link, a *args) error {
			conf := wire.ThresholdListener{
				Pin:       a.int(0, "PIN", 0),
				Threshold: a.int(1, "THRESHOLD", 0),
				Rise:      a.uint32(2, "RISE", 0),
				Fall:      a.uint32(3, "FALL", 0),
			}
			return queued(c, a, func() error { return l.ListenThreshold(conf) })
		})

	// CountCmd prints the counter of a pin state.
	CountCmd = command("count", nil, "PIN STATE", 2,
		func(c *ishell.Context, l *link.Link, a *args) error {
			pin, state := a.int(0, "PIN", 0), a.state(1, "STATE", wire.Low)
			if a.err != nil {
				return a.err
			}
			cnt, err := l.Count(pin, state)
			if err != nil {
				return err
			}
			sh.Print(c, cnt)
			return nil
		})

	// ValueCmd prints the net value of a pin.
	ValueCmd = command("value", []string{"v"}, "PIN", 1,
		func(c *ishell.Context, l *link.Link, a *args) error {
			pin := a.int(0, "PIN", 0)
			if a.err != nil {
				return a.err
			}
			val, err := l.Value(pin)
			if err != nil {
				return err
			}
			sh.Print(c, val)
			return nil
		})

	// WatchCmd prints reports and connection changes.
	WatchCmd = command("watch", []string{"w"}, "[PIN] [DURATION]", 0,
		func(c *ishell.Context, l *link.Link, a *args) error {
			pin := a.int(0, "PIN", -1)
			if a.err != nil {
				return a.err
			}
			var duration time.Duration
			if a.has(1) {
				d, err := time.ParseDuration(a.values[1])
				if err != nil {
					return fmt.Errorf("invalid DURATION: %w", err)
				}
				duration = d
			}
			return watch(c, l, pin, duration)
		})
)

// reportView is the printed form of a Report.
type reportView struct {
	Pin   int    `json:"pin"`
	State string `json:"state"`
	Value int64  `json:"value"`
	Count uint64 `json:"count"`
}

func (v reportView) String() string {
	return fmt.Sprintf("pin %d %s value=%d count=%d", v.Pin, v.State, v.Value, v.Count)
}

func watch(c *ishell.Context, l *link.Link, pin int, duration time.Duration) error {
	handler := func(r link.Report) error {
		sh.Print(c, reportView{Pin: r.Pin, State: r.State.String(), Value: r.Value, Count: r.Count})
		return nil
	}
	var sub *link.Subscription
	if pin < 0 {
		sub = l.OnData(handler)
	} else {
		s, err := l.OnPin(pin, handler)
		if err != nil {
			return err
		}
		sub = s
	}
	defer sub.Close()
	connSub := l.OnConnectionChanged(func(connected bool) error {
		sh.Print(c, map[string]bool{"connected": connected})
		return nil
	})
	defer connSub.Close()

	s := sh.ShellFrom(c)
	switch {
	case duration > 0:
		time.Sleep(duration)
	case s.Interactive:
		c.Println("Press ENTER to stop")
		c.ReadLine()
	default:
		time.Sleep(defaultWatch)
	}
	return nil
}

func init() {
	sh.AddCmds(
		DigitalCmd,
		MemoryCmd,
		StopCmd,
		PulseCmd,
		ChirpCmd,
		ToneCmd,
		ListenBinaryCmd,
		ListenCapacitiveCmd,
		ListenAnalogCmd,
		ListenRotaryCmd,
		ListenThresholdCmd,
		CountCmd,
		ValueCmd,
		WatchCmd,
	)
}
