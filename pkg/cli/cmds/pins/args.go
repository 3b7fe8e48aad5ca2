package pins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/iolink/pkg/l0/wire"
)

// args parses positional command arguments, keeping the first error.
type args struct {
	values []string
	err    error
}

func parseArgs(values []string, usage string, required int) *args {
	a := &args{values: values}
	if len(values) < required {
		a.err = fmt.Errorf("%s required", usage)
	}
	return a
}

func (a *args) has(i int) bool {
	return i < len(a.values)
}

func (a *args) int(i int, name string, def int) int {
	if a.err != nil || !a.has(i) {
		return def
	}
	val, err := strconv.Atoi(a.values[i])
	if err != nil {
		a.err = fmt.Errorf("invalid %s: %q", name, a.values[i])
		return def
	}
	return val
}

func (a *args) uint32(i int, name string, def uint32) uint32 {
	if a.err != nil || !a.has(i) {
		return def
	}
	val, err := strconv.ParseUint(a.values[i], 0, 32)
	if err != nil {
		a.err = fmt.Errorf("invalid %s: %q", name, a.values[i])
		return def
	}
	return uint32(val)
}

func (a *args) state(i int, name string, def wire.State) wire.State {
	if a.err != nil || !a.has(i) {
		return def
	}
	state, err := parseState(a.values[i])
	if err != nil {
		a.err = fmt.Errorf("invalid %s: %w", name, err)
		return def
	}
	return state
}

func parseState(s string) (wire.State, error) {
	switch strings.ToLower(s) {
	case "0", "low", "l", "off":
		return wire.Low, nil
	case "1", "high", "h", "on":
		return wire.High, nil
	}
	return wire.Low, fmt.Errorf("unknown state %q", s)
}
