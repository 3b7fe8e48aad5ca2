// Package config provides common options to set up an iolink Link and the
// services around it.
//
// Values are taken, in increasing precedence, from built-in defaults,
// IOLINK_* environment variables, the YAML file given by -config, and
// explicitly set command line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/iolink/pkg/l0/link"
	"github.com/robotalks/iolink/pkg/l0/transport"
	"github.com/robotalks/iolink/pkg/l0/transport/serial"
	"github.com/robotalks/iolink/pkg/l0/transport/websocket"
)

// Config is the configuration of a Link and its tooling.
type Config struct {
	// Port is a serial device path, or a ws:// or wss:// URL of a gateway.
	Port string `yaml:"port"`
	// Baud is the serial baud rate.
	Baud int `yaml:"baud"`
	// Tick is the I/O loop period.
	Tick           time.Duration `yaml:"tick"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	WritePause     time.Duration `yaml:"write_pause"`
	// DeviceID names the device on MQTT topics.
	DeviceID string `yaml:"device_id"`
	// MQTTURL enables the MQTT bridge.
	// e.g. mqtt://host:port/topic-prefix/?encoding=json
	MQTTURL string `yaml:"mqtt"`
	// MetricsAddr enables the Prometheus metrics endpoint, e.g. :9100.
	MetricsAddr string `yaml:"metrics"`

	// File is the YAML file loaded by Load.
	File string `yaml:"-"`
}

// AppID scopes the machine ID used as the default DeviceID.
const AppID = "iolink"

// Default values.
const (
	DefaultTick = 5 * time.Millisecond
)

var defaultConfig = Config{
	Baud:           serial.DefaultBaudRate,
	Tick:           DefaultTick,
	ReconnectDelay: link.DefaultReconnectDelay,
	WritePause:     link.DefaultWritePause,
}

func init() {
	defaultConfig.DeviceID = MachineID()
	if err := defaultConfig.ApplyEnv(os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "ignored environment: %v\n", err)
	}
}

// MachineID derives a stable device ID from the machine ID, falling back to
// the host name.
func MachineID() string {
	if id, err := machineid.ProtectedID(AppID); err == nil {
		return id[:12]
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return AppID
}

// ApplyEnv overrides values from IOLINK_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if val := getenv("IOLINK_PORT"); val != "" {
		c.Port = val
	}
	if val := getenv("IOLINK_BAUD"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("IOLINK_BAUD: %w", err)
		}
		c.Baud = baud
	}
	if val := getenv("IOLINK_DEVICE_ID"); val != "" {
		c.DeviceID = val
	}
	if val := getenv("IOLINK_MQTT_URL"); val != "" {
		c.MQTTURL = val
	}
	return nil
}

// SetupFlagSet binds the fields to flags.
func (c *Config) SetupFlagSet(fs *flag.FlagSet) {
	fs.StringVar(&c.File, "config", c.File, "YAML config file.")
	fs.StringVar(&c.Port, "port", c.Port, "Serial device or ws:// URL of the I/O board.")
	fs.IntVar(&c.Baud, "baud", c.Baud, "Serial baud rate.")
	fs.DurationVar(&c.Tick, "tick", c.Tick, "I/O loop period.")
	fs.DurationVar(&c.ReconnectDelay, "reconnect-delay", c.ReconnectDelay, "Delay between reopen attempts.")
	fs.DurationVar(&c.WritePause, "write-pause", c.WritePause, "Pause between write chunks.")
	fs.StringVar(&c.DeviceID, "device-id", c.DeviceID, "Device ID used in MQTT topics.")
	fs.StringVar(&c.MQTTURL, "mqtt", c.MQTTURL, "MQTT broker URL, empty to disable.")
	fs.StringVar(&c.MetricsAddr, "metrics", c.MetricsAddr, "Metrics listen address, empty to disable.")
}

// Load reads File, if set, over the current values, then re-applies the
// flags explicitly set in fs, which must be bound to c.
func (c *Config) Load(fs *flag.FlagSet) error {
	if c.File == "" {
		return nil
	}
	explicit := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})
	if err := c.LoadFile(c.File); err != nil {
		return err
	}
	for name, val := range explicit {
		if err := fs.Set(name, val); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads a YAML file over the current values.
func (c *Config) LoadFile(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	return nil
}

// Validate checks the values.
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("port must be specified")
	case c.Baud <= 0:
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	case c.Tick <= 0:
		return fmt.Errorf("invalid tick %s", c.Tick)
	case c.ReconnectDelay < 0 || c.WritePause < 0:
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// SetupFlags binds the default config to command line flags.
func SetupFlags() {
	defaultConfig.SetupFlagSet(flag.CommandLine)
}

// Load loads the default config after flag.Parse.
func Load() error {
	return defaultConfig.Load(flag.CommandLine)
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Opener opens websocket URLs as websocket transports and anything else as
// serial ports.
func (c *Config) Opener() transport.Opener {
	openSerial := serial.Opener(c.Baud)
	return func(name string) (transport.Transport, error) {
		if websocket.IsURL(name) {
			return websocket.Opener(name)
		}
		return openSerial(name)
	}
}

// NewTransport creates the transport of Port.
func (c *Config) NewTransport() (transport.Transport, error) {
	if c.Port == "" {
		return nil, fmt.Errorf("port must be specified")
	}
	return c.Opener()(c.Port)
}

// LinkOptions are the Link options derived from the config.
func (c *Config) LinkOptions() []link.Option {
	return []link.Option{
		link.WithReconnectDelay(c.ReconnectDelay),
		link.WithWritePause(c.WritePause),
	}
}

// NewLink creates a Link on Port.
func (c *Config) NewLink(opts ...link.Option) (*link.Link, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	t, err := c.NewTransport()
	if err != nil {
		return nil, err
	}
	return link.New(t, append(c.LinkOptions(), opts...)...)
}

// NewRegistry creates a Registry using Opener. Metrics are registered with
// reg if not nil.
func (c *Config) NewRegistry(reg prometheus.Registerer) *link.Registry {
	r := link.NewRegistry(c.Opener(), c.LinkOptions()...)
	r.Registerer = reg
	return r
}

// MustNewLink creates a Link and fails on error.
func (c *Config) MustNewLink(opts ...link.Option) *link.Link {
	l, err := c.NewLink(opts...)
	if err != nil {
		glog.Fatalf("open %s: %v", c.Port, err)
	}
	return l
}
