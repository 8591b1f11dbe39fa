package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/posener/complete"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"

	"code.selman.me/devconsole/internal/config"
	"code.selman.me/devconsole/internal/console"
	"code.selman.me/devconsole/internal/logsink"
	"code.selman.me/devconsole/internal/stream"
)

func TestRunCmdApply(t *testing.T) {
	t.Run("overrides config", func(t *testing.T) {
		cfg := config.Default()
		cmd := RunCmd{Device: "/dev/ttyUSB0", Baud: 9600, Listen: ":2323", Log: "/tmp/dev.log.zst"}

		cmd.apply(cfg)

		assert.Equal(t, cfg.Serial.Device, "/dev/ttyUSB0")
		assert.Equal(t, cfg.Serial.Baud, 9600)
		assert.Assert(t, cfg.Remote.Enabled)
		assert.Equal(t, cfg.Remote.Listen, ":2323")
		assert.Equal(t, cfg.Log.Path, "/tmp/dev.log.zst")
	})

	t.Run("keeps config when flags are unset", func(t *testing.T) {
		cfg := config.Default()
		want := *cfg

		(&RunCmd{}).apply(cfg)

		assert.DeepEqual(t, *cfg, want)
	})
}

func TestDisplayFlags(t *testing.T) {
	t.Run("color when supported", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		f := displayFlags(config.Default(), true)
		assert.Assert(t, f&console.ShowColor != 0)
	})

	t.Run("no color without a terminal", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		f := displayFlags(config.Default(), false)
		assert.Assert(t, f&console.ShowColor == 0)
		assert.Assert(t, f&console.ShowTimestamps != 0)
	})

	t.Run("NO_COLOR wins", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		f := displayFlags(config.Default(), true)
		assert.Assert(t, f&console.ShowColor == 0)
	})
}

func TestEchoKeys(t *testing.T) {
	var out bytes.Buffer
	in := stream.New(strings.NewReader("a\x03"), &out, nil)
	con := console.New(in, console.WithDisplayFlags(0))

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if con.Available() == 2 {
			return poll.Success()
		}
		return poll.Continue("waiting for input")
	}, poll.WithTimeout(2*time.Second))

	err := echoKeys(con)

	assert.ErrorIs(t, err, errQuit)
	assert.Equal(t, out.String(), "User key 'a' (Decimal value = 97)\r\n")
}

func TestDump(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	path := filepath.Join(t.TempDir(), "blob.bin")
	assert.NilError(t, os.WriteFile(path, []byte{1, 2, 3, 4, 5}, 0o644))

	t.Run("short", func(t *testing.T) {
		var out bytes.Buffer
		cmd := DumpCmd{File: path, Max: 3}

		err := cmd.dump(&out, config.Default(), false)

		assert.NilError(t, err)
		assert.Assert(t, is.Contains(out.String(), "blob.bin"))
		assert.Assert(t, is.Contains(out.String(), "3 bytes 00000000 : 01 02 03 \r\n"))
	})

	t.Run("missing file", func(t *testing.T) {
		cmd := DumpCmd{File: filepath.Join(t.TempDir(), "nope"), Max: 16}

		err := cmd.dump(&bytes.Buffer{}, config.Default(), false)

		assert.ErrorContains(t, err, "open ")
	})
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "config.toml"))

	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, config.Default())
}

func TestDevicePredictor(t *testing.T) {
	for _, dev := range (devicePredictor{}).Predict(complete.Args{}) {
		assert.Assert(t, strings.HasPrefix(dev, "/dev/"), dev)
	}
}

type recordingPort struct {
	suspends, resumes int
}

func (p *recordingPort) Suspend() error { p.suspends++; return nil }
func (p *recordingPort) Resume() error  { p.resumes++; return nil }

// execFailingPlatform runs the restart hooks around an exec that fails.
type execFailingPlatform struct {
	before, failed func()
	restarts       int
}

func (p *execFailingPlatform) Identity() string      { return "test host" }
func (p *execFailingPlatform) Resources() string     { return "CPU Cores: 1" }
func (p *execFailingPlatform) Memory() string        { return "Free: 1 KB" }
func (p *execFailingPlatform) Uptime() time.Duration { return time.Second }
func (p *execFailingPlatform) ResetReason() string   { return "Power On" }
func (p *execFailingPlatform) MinFreeMemory() uint64 { return 0 }

func (p *execFailingPlatform) Restart() error {
	p.restarts++
	p.before()
	p.failed()
	return errors.New("exec denied")
}

func TestFailedRestartKeepsSinksOpen(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	sink, err := logsink.Open(logPath)
	assert.NilError(t, err)
	defer sink.Close()

	port := &recordingPort{}
	plat := &execFailingPlatform{}
	plat.before, plat.failed = restartHooks(port, sink)

	var out bytes.Buffer
	in := stream.New(strings.NewReader("\x01ry\x01"), &out, nil)
	con := console.New(in,
		console.WithDisplayFlags(0),
		console.WithPlatform(plat),
		console.WithRestartDelay(0),
		console.WithLogSink(sink),
	)

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		con.Poll()
		if plat.restarts == 1 && !con.CommandMode() {
			return poll.Success()
		}
		return poll.Continue("restarts=%d", plat.restarts)
	}, poll.WithTimeout(2*time.Second))

	con.Alert("after failed restart")

	assert.Equal(t, port.suspends, 1)
	assert.Equal(t, port.resumes, 1)

	logged, err := os.ReadFile(logPath)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(logged), "Restart failed: exec denied"))
	assert.Assert(t, is.Contains(string(logged), "after failed restart"))
	assert.Assert(t, is.Contains(out.String(), "after failed restart"))
}
