package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"code.selman.me/devconsole/internal/console"
)

type Config struct {
	Console ConsoleConfig `toml:"console"`
	Serial  SerialConfig  `toml:"serial"`
	Remote  RemoteConfig  `toml:"remote"`
	Log     LogConfig     `toml:"log"`
}

type ConsoleConfig struct {
	AppName        string `toml:"app_name"`
	CommandKeybind string `toml:"command_keybind"`
	Timestamps     bool   `toml:"timestamps"`
	Milliseconds   bool   `toml:"milliseconds"`
	Date           bool   `toml:"date"`
	Color          bool   `toml:"color"`
	SeverityTags   bool   `toml:"severity_tags"`
	WideHexDump    bool   `toml:"wide_hexdump"`
	Verbose        bool   `toml:"verbose"`
	Debug          bool   `toml:"debug"`
	Info           bool   `toml:"info"`
	Warning        bool   `toml:"warning"`
}

type SerialConfig struct {
	// Device is a tty path; empty means the process stdio.
	Device string `toml:"device"`
	Baud   int    `toml:"baud"`
}

type RemoteConfig struct {
	Enabled         bool   `toml:"enabled"`
	Listen          string `toml:"listen"`
	Hostname        string `toml:"hostname"`
	WelcomeDelayMS  int    `toml:"welcome_delay_ms"`
	RetryIntervalMS int    `toml:"retry_interval_ms"`
}

type LogConfig struct {
	// Path of the persistent log; a .zst or .lz4 suffix selects compression.
	Path string `toml:"path"`
}

func Default() *Config {
	return &Config{
		Console: ConsoleConfig{
			CommandKeybind: "ctrl+a",
			Timestamps:     true,
			Color:          true,
			Verbose:        true,
			Debug:          true,
			Info:           true,
			Warning:        true,
		},
		Serial: SerialConfig{
			Baud: 115200,
		},
		Remote: RemoteConfig{
			Listen:          ":23",
			WelcomeDelayMS:  100,
			RetryIntervalMS: 1000,
		},
	}
}

func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "devconsole", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "devconsole", "config.toml"), nil
}

func (c *Config) DisplayFlags() console.DisplayFlags {
	var f console.DisplayFlags
	set := func(on bool, flag console.DisplayFlags) {
		if on {
			f |= flag
		}
	}
	set(c.Console.Timestamps, console.ShowTimestamps)
	set(c.Console.Milliseconds, console.ShowMilliseconds)
	set(c.Console.Date, console.ShowDate)
	set(c.Console.Color, console.ShowColor)
	set(c.Console.SeverityTags, console.ShowSeverity)
	set(c.Console.WideHexDump, console.WideHexDump)
	return f
}

func (c *Config) SeverityMask() console.SeverityMask {
	var m console.SeverityMask
	set := func(on bool, s console.Severity) {
		if on {
			m |= 1 << s
		}
	}
	set(c.Console.Verbose, console.Verbose)
	set(c.Console.Debug, console.Debug)
	set(c.Console.Info, console.Info)
	set(c.Console.Warning, console.Warning)
	return m
}

func (r RemoteConfig) WelcomeDelay() time.Duration {
	return time.Duration(r.WelcomeDelayMS) * time.Millisecond
}

func (r RemoteConfig) RetryInterval() time.Duration {
	return time.Duration(r.RetryIntervalMS) * time.Millisecond
}
