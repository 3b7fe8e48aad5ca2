package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/iolink/pkg/l0/transport/serial"
	"github.com/robotalks/iolink/pkg/l0/transport/stream"
)

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"IOLINK_PORT":      "/dev/ttyACM0",
		"IOLINK_BAUD":      "57600",
		"IOLINK_DEVICE_ID": "bench",
		"IOLINK_MQTT_URL":  "mqtt://broker:1883/io/",
	}
	conf := NewConfig()
	require.NoError(t, conf.ApplyEnv(func(key string) string { return env[key] }))
	require.Equal(t, "/dev/ttyACM0", conf.Port)
	require.Equal(t, 57600, conf.Baud)
	require.Equal(t, "bench", conf.DeviceID)
	require.Equal(t, "mqtt://broker:1883/io/", conf.MQTTURL)
	require.Equal(t, DefaultTick, conf.Tick)

	env["IOLINK_BAUD"] = "fast"
	require.Error(t, conf.ApplyEnv(func(key string) string { return env[key] }))
}

func TestLoadFileWithFlags(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "iolink.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(`
port: ws://gateway:8080/serial
baud: 9600
tick: 2ms
reconnect_delay: 3s
device_id: from-file
mqtt: mqtt://broker/
`), 0644))

	conf := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	conf.SetupFlagSet(fs)
	require.NoError(t, fs.Parse([]string{"-config", fn, "-baud", "230400", "-device-id", "from-flag"}))
	require.NoError(t, conf.Load(fs))

	require.Equal(t, "ws://gateway:8080/serial", conf.Port)
	require.Equal(t, 230400, conf.Baud)
	require.Equal(t, 2*time.Millisecond, conf.Tick)
	require.Equal(t, 3*time.Second, conf.ReconnectDelay)
	require.Equal(t, "from-flag", conf.DeviceID)
	require.Equal(t, "mqtt://broker/", conf.MQTTURL)
	require.Equal(t, fn, conf.File)
	require.NoError(t, conf.Validate())
}

func TestLoadFileErrors(t *testing.T) {
	conf := NewConfig()
	require.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))

	fn := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("tick: often\n"), 0644))
	require.Error(t, conf.LoadFile(fn))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"ok", func(c *Config) {}, true},
		{"no port", func(c *Config) { c.Port = "" }, false},
		{"bad baud", func(c *Config) { c.Baud = 0 }, false},
		{"bad tick", func(c *Config) { c.Tick = 0 }, false},
		{"negative pause", func(c *Config) { c.WritePause = -time.Millisecond }, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			conf.Port = "/dev/ttyUSB0"
			tc.modify(conf)
			if tc.valid {
				require.NoError(t, conf.Validate())
			} else {
				require.Error(t, conf.Validate())
			}
		})
	}
}

func TestOpener(t *testing.T) {
	conf := NewConfig()
	conf.Baud = 9600
	open := conf.Opener()

	tr, err := open("/dev/ttyUSB0")
	require.NoError(t, err)
	port, ok := tr.(*serial.Port)
	require.True(t, ok)
	require.Equal(t, 9600, port.BaudRate)
	require.Equal(t, "/dev/ttyUSB0", tr.Name())

	tr, err = open("wss://gateway/serial")
	require.NoError(t, err)
	require.IsType(t, &stream.Transport{}, tr)
	require.Equal(t, "wss://gateway/serial", tr.Name())

	conf.Port = ""
	_, err = conf.NewTransport()
	require.Error(t, err)
	_, err = conf.NewLink()
	require.Error(t, err)
}

func TestMachineID(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.Equal(t, id, MachineID())
}
