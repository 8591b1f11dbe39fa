package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/benbjohnson/clock"
	kongcompletion "github.com/jotaen/kong-completion"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/posener/complete"
	"golang.org/x/sync/errgroup"

	devconsole "code.selman.me/devconsole"
	"code.selman.me/devconsole/internal/config"
	"code.selman.me/devconsole/internal/console"
	"code.selman.me/devconsole/internal/keybind"
	"code.selman.me/devconsole/internal/logsink"
	"code.selman.me/devconsole/internal/ota"
	"code.selman.me/devconsole/internal/platform"
	"code.selman.me/devconsole/internal/serial"
	"code.selman.me/devconsole/internal/stream"
	"code.selman.me/devconsole/internal/telnet"
)

type CLI struct {
	Version    kong.VersionFlag          `help:"Print version."`
	ConfigFile string                    `help:"Config file path." type:"path" env:"DEVCONSOLE_CONFIG"`
	Run        RunCmd                    `cmd:"" help:"Run the console on a serial device or stdio."`
	Dump       DumpCmd                   `cmd:"" help:"Hex dump a file through the console formatter."`
	Init       InitCmd                   `cmd:"" help:"Create default config file."`
	Config     ConfigCmd                 `cmd:"" help:"Print effective configuration."`
	Completion kongcompletion.Completion `cmd:"" help:"Print shell completion setup instructions."`
}

const pollInterval = 10 * time.Millisecond

// errQuit ends the run loop when the user presses Ctrl-C or Ctrl-D.
var errQuit = errors.New("quit requested")

type RunCmd struct {
	Device    string        `help:"Serial device; stdio when empty." completion-predictor:"device"`
	Baud      int           `help:"Baud rate."`
	Listen    string        `help:"Serve the remote terminal on this address."`
	Log       string        `help:"Append output to this file; .zst and .lz4 compress." type:"path"`
	Heartbeat time.Duration `help:"Interval of the heartbeat line, 0 disables it." default:"5s"`
}

func (cmd *RunCmd) apply(cfg *config.Config) {
	if cmd.Device != "" {
		cfg.Serial.Device = cmd.Device
	}
	if cmd.Baud != 0 {
		cfg.Serial.Baud = cmd.Baud
	}
	if cmd.Listen != "" {
		cfg.Remote.Enabled = true
		cfg.Remote.Listen = cmd.Listen
	}
	if cmd.Log != "" {
		cfg.Log.Path = cmd.Log
	}
}

func (cmd *RunCmd) Run(cfg *config.Config) error {
	cmd.apply(cfg)

	key, err := keybind.Parse(cfg.Console.CommandKeybind)
	if err != nil {
		return fmt.Errorf("invalid command_keybind %q: %w", cfg.Console.CommandKeybind, err)
	}

	var (
		port    *serial.Port
		colorOK = true
	)
	if cfg.Serial.Device == "" {
		port, err = serial.Stdio()
		colorOK = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	} else {
		port, err = serial.Open(cfg.Serial.Device, cfg.Serial.Baud)
	}
	if err != nil {
		return err
	}
	defer port.Close()

	clk := clock.New()
	host := platform.NewHost(clk)
	opts := []console.Option{
		console.WithClock(clk),
		console.WithPlatform(host),
		console.WithAppName(cfg.Console.AppName),
		console.WithCommandKey(key, keybind.Name(key)),
		console.WithDisplayFlags(displayFlags(cfg, colorOK)),
		console.WithSeverityMask(cfg.SeverityMask()),
		console.WithWelcomeDelay(cfg.Remote.WelcomeDelay()),
	}

	var sink *logsink.Sink
	if cfg.Log.Path != "" {
		sink, err = logsink.Open(cfg.Log.Path)
		if err != nil {
			return err
		}
		defer sink.Close()
		opts = append(opts, console.WithLogSink(sink))
	}

	var srv *telnet.Server
	if cfg.Remote.Enabled {
		srv = telnet.NewServer(cfg.Remote.Listen, cfg.Remote.RetryInterval())
		opts = append(opts, console.WithNetwork(srv), console.WithHostname(cfg.Remote.Hostname))
	}

	host.BeforeRestart, host.RestartFailed = restartHooks(port, sink)

	con := console.New(port, opts...)
	con.SetUpdater(ota.NewTracker(con.Tagged("OTA")))
	slog.SetDefault(slog.New(console.NewSlogHandler(con, "devconsole")))

	con.Verbose("Starting %s", cmp.Or(cfg.Console.AppName, "devconsole"))
	con.Info("Console on %s, press %s for command mode", port.Name(), keybind.Name(key))
	if sink != nil {
		con.Info("Logging to %s (%s)", sink.Path(), sink.Compression())
	}
	if srv == nil {
		con.Info("No remote terminal configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if srv != nil {
		g.Go(func() error { return srv.Serve(ctx) })
	}
	g.Go(func() error {
		return runLoop(ctx, con, clk, cmd.Heartbeat, keybind.Name(key))
	})

	err = g.Wait()
	con.Alert("Shutting down")
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func runLoop(ctx context.Context, con *console.Console, clk clock.Clock, heartbeat time.Duration, keyName string) error {
	poll := clk.Ticker(pollInterval)
	defer poll.Stop()

	var beat <-chan time.Time
	if heartbeat > 0 {
		t := clk.Ticker(heartbeat)
		defer t.Stop()
		beat = t.C
	}
	started := clk.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-beat:
			con.Debug("Press %s at any time to toggle mode. Up for %d seconds",
				keyName, int(clk.Since(started)/time.Second))
		case <-poll.C:
			if con.Poll() {
				continue
			}
			if err := echoKeys(con); err != nil {
				return err
			}
		}
	}
}

// echoKeys reports every pending keystroke.
func echoKeys(con *console.Console) error {
	for con.Available() > 0 {
		b, err := con.ReadByte()
		if err != nil {
			return nil
		}
		switch b {
		case 0x03, 0x04:
			return errQuit
		}
		c := rune(b)
		if b < 0x20 || b >= 0x7f {
			c = '.'
		}
		con.Alert("User key '%c' (Decimal value = %d)", c, b)
	}
	return nil
}

func displayFlags(cfg *config.Config, colorOK bool) console.DisplayFlags {
	f := cfg.DisplayFlags()
	if !colorOK || termenv.EnvNoColor() {
		f &^= console.ShowColor
	}
	return f
}

type suspender interface {
	Suspend() error
	Resume() error
}

// restartHooks flushes the log and hands the terminal back before exec.
// Nothing is closed so a failed exec leaves every sink usable.
func restartHooks(port suspender, sink *logsink.Sink) (before, failed func()) {
	before = func() {
		if sink != nil {
			if err := sink.Flush(); err != nil {
				slog.Warn("restart: flush log", "err", err)
			}
		}
		if err := port.Suspend(); err != nil {
			slog.Warn("restart: suspend port", "err", err)
		}
	}
	failed = func() {
		if err := port.Resume(); err != nil {
			slog.Warn("restart: resume port", "err", err)
		}
	}
	return before, failed
}

type DumpCmd struct {
	File string `arg:"" help:"File to dump." type:"existingfile"`
	Max  int    `help:"Dump at most this many bytes." default:"4096"`
	Wide bool   `help:"Use 32 bytes per row."`
}

func (cmd *DumpCmd) Run(cfg *config.Config) error {
	colorOK := isatty.IsTerminal(os.Stdout.Fd())
	return cmd.dump(os.Stdout, cfg, colorOK)
}

func (cmd *DumpCmd) dump(w io.Writer, cfg *config.Config, colorOK bool) error {
	f, err := os.Open(cmd.File)
	if err != nil {
		return fmt.Errorf("open %s: %w", cmd.File, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(cmd.Max)))
	if err != nil {
		return fmt.Errorf("read %s: %w", cmd.File, err)
	}

	flags := displayFlags(cfg, colorOK) &^ console.ShowTimestamps
	if cmd.Wide {
		flags |= console.WideHexDump
	}
	con := console.New(stream.Writer(w), console.WithDisplayFlags(flags))
	con.HexDumpAt(filepath.Base(cmd.File), fmt.Sprintf("%d bytes", len(data)), 0, data, console.Info)
	return nil
}

type InitCmd struct{}

func (cmd *InitCmd) Run(cli *CLI) error {
	path := cli.ConfigFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config.Default()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("created %s\n", path)
	return nil
}

type ConfigCmd struct{}

func (cmd *ConfigCmd) Run(cfg *config.Config) error {
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}

type devicePredictor struct{}

func (devicePredictor) Predict(complete.Args) []string {
	var out []string
	for _, pattern := range []string{"/dev/ttyUSB*", "/dev/ttyACM*", "/dev/ttyS*", "/dev/cu.*"} {
		matches, _ := filepath.Glob(pattern)
		out = append(out, matches...)
	}
	return out
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func main() {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.UsageOnError(),
		kong.Vars{"version": devconsole.Version()},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	kongcompletion.Register(parser, kongcompletion.WithPredictor("device", devicePredictor{}))

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.Printf("%s", err)
		parser.Exit(1)
		return
	}

	cfg, err := loadConfig(cli.ConfigFile)
	ctx.FatalIfErrorf(err)

	ctx.FatalIfErrorf(ctx.Run(cfg, &cli))
}
