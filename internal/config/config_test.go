package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"code.selman.me/devconsole/internal/console"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Console.CommandKeybind, "ctrl+a")
	assert.Equal(t, cfg.Console.AppName, "")
	assert.Equal(t, cfg.Serial.Device, "")
	assert.Equal(t, cfg.Serial.Baud, 115200)
	assert.Equal(t, cfg.Remote.Enabled, false)
	assert.Equal(t, cfg.Remote.Listen, ":23")
	assert.Equal(t, cfg.Remote.WelcomeDelay(), 100*time.Millisecond)
	assert.Equal(t, cfg.Remote.RetryInterval(), time.Second)
	assert.Equal(t, cfg.Log.Path, "")
	assert.Equal(t, cfg.DisplayFlags(), console.DefaultDisplay)
	assert.Equal(t, cfg.SeverityMask(), console.AllSeverities)
}

func TestLoadMissing(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, Default())
}

func TestLoadPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(`[serial]
device = "/dev/ttyUSB0"
`), 0o600)
	assert.NilError(t, err)

	cfg, err := LoadFrom(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Serial.Device, "/dev/ttyUSB0")
	// Other defaults preserved.
	assert.Equal(t, cfg.Serial.Baud, 115200)
	assert.Equal(t, cfg.Console.CommandKeybind, "ctrl+a")
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(`[console]
app_name = "Sensor Hub"
command_keybind = "ctrl+b"
timestamps = false
milliseconds = true
color = false
severity_tags = true
wide_hexdump = true
verbose = false
debug = false

[serial]
baud = 9600

[remote]
enabled = true
listen = "127.0.0.1:2323"
hostname = "sensorhub"
welcome_delay_ms = 250
retry_interval_ms = 50

[log]
path = "/var/log/devconsole.log.zst"
`), 0o600)
	assert.NilError(t, err)

	cfg, err := LoadFrom(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Console.AppName, "Sensor Hub")
	assert.Equal(t, cfg.Console.CommandKeybind, "ctrl+b")
	assert.Equal(t, cfg.Serial.Baud, 9600)
	assert.Equal(t, cfg.Remote.Enabled, true)
	assert.Equal(t, cfg.Remote.Listen, "127.0.0.1:2323")
	assert.Equal(t, cfg.Remote.Hostname, "sensorhub")
	assert.Equal(t, cfg.Remote.WelcomeDelay(), 250*time.Millisecond)
	assert.Equal(t, cfg.Remote.RetryInterval(), 50*time.Millisecond)
	assert.Equal(t, cfg.Log.Path, "/var/log/devconsole.log.zst")
	assert.Equal(t, cfg.DisplayFlags(), console.ShowMilliseconds|console.ShowSeverity|console.WideHexDump)
	assert.Equal(t, cfg.SeverityMask(), console.SeverityMask(1<<console.Info|1<<console.Warning))
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(`not valid toml {{`), 0o600)
	assert.NilError(t, err)

	_, err = LoadFrom(path)
	assert.Assert(t, err != nil)
}

func TestDefaultPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	path, err := DefaultPath()
	assert.NilError(t, err)
	assert.Equal(t, path, "/tmp/xdg/devconsole/config.toml")
}

func TestDefaultPathHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/dev")

	path, err := DefaultPath()
	assert.NilError(t, err)
	assert.Equal(t, path, "/home/dev/.config/devconsole/config.toml")
}
