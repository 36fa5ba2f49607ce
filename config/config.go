// config.go

// Copyright (C) 2017  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package config loads the emulator settings from a YAML file and lets
// command line flags override them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoPort is returned by Validate when a serial line is wanted but no
// device has been named.
var ErrNoPort = errors.New("no serial port configured")

type Config struct {
	Frontend     FrontendConfig  `yaml:"frontend"`
	Sound        SoundSection    `yaml:"sound"`
	Terminal     TerminalSection `yaml:"terminal"`
	Backend      BackendConfig   `yaml:"backend"`
	DataThrottle ThrottleSection `yaml:"data_throttle"`
	TapeReader   ReaderSection   `yaml:"tape_reader"`
	TapePunch    PunchSection    `yaml:"tape_punch"`
	Log          LogConfig       `yaml:"log"`
}

type FrontendConfig struct {
	Type string `yaml:"type"` // gtk or tui
}

type SoundSection struct {
	Config SoundConfig `yaml:"config"`
}

type SoundConfig struct {
	Lid       string `yaml:"lid"`        // up or down
	MuteState string `yaml:"mute_state"` // muted or unmuted
}

type TerminalSection struct {
	Config TerminalConfig `yaml:"config"`
}

type TerminalConfig struct {
	Mode                  string `yaml:"mode"` // line or local
	Columns               int    `yaml:"columns"`
	Rows                  int    `yaml:"rows"`
	Scrollback            int    `yaml:"scrollback"`
	Autowrap              bool   `yaml:"autowrap"`
	KeyboardUppercaseOnly bool   `yaml:"keyboard_uppercase_only"`
	KeyboardParityMode    string `yaml:"keyboard_parity_mode"`
	SendCRAtStartup       bool   `yaml:"send_cr_at_startup"`
	NoPrint               bool   `yaml:"no_print"`
	LocalEcho             bool   `yaml:"local_echo"`
	LocalCRLF             bool   `yaml:"local_crlf"` // CR also feeds a line in local mode
	StripEscapes          bool   `yaml:"strip_escapes"`
	Case                  string `yaml:"case"` // pass, fold or reject
	FontName              string `yaml:"font_name,omitempty"`
	FontSize              int    `yaml:"font_size"`
}

type BackendConfig struct {
	Type   string       `yaml:"type"` // serial, telnet, ssh or pty
	Serial SerialConfig `yaml:"serial_config"`
	SSH    SSHConfig    `yaml:"ssh_config"`
	Telnet TelnetConfig `yaml:"telnet_config"`
}

type SerialConfig struct {
	Port     string `yaml:"port"`
	Baudrate int    `yaml:"baudrate"`
	Databits int    `yaml:"databits"`
	Parity   string `yaml:"parity"`
	Stopbits int    `yaml:"stopbits"`
}

type SSHConfig struct {
	Username            string `yaml:"username"`
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	KeyFilename         string `yaml:"key_filename"`
	Password            string `yaml:"password,omitempty"`
	UseAgent            bool   `yaml:"use_agent"`
	ExpectedFingerprint string `yaml:"expected_fingerprint,omitempty"`
	HostKeyPolicy       string `yaml:"host_key_policy"`
	KnownHostsFile      string `yaml:"known_hosts_file"`
}

type TelnetConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ThrottleSection struct {
	Config ThrottleConfig `yaml:"config"`
}

type ThrottleConfig struct {
	Mode           string `yaml:"mode"` // throttled or unthrottled
	SendRateCPS    int    `yaml:"send_rate_cps"`
	ReceiveRateCPS int    `yaml:"receive_rate_cps"`
}

type ReaderSection struct {
	Config ReaderConfig `yaml:"config"`
}

type ReaderConfig struct {
	MaxRows          int    `yaml:"max_rows"`
	InitialFilePath  string `yaml:"initial_file_path"`
	SkipLeadingNulls bool   `yaml:"skip_leading_nulls"`
	AutoStop         bool   `yaml:"auto_stop"`
	SetMSB           bool   `yaml:"set_msb"`
}

type PunchSection struct {
	Config PunchConfig `yaml:"config"`
}

type PunchConfig struct {
	MaxRows         int    `yaml:"max_rows"`
	InitialFilePath string `yaml:"initial_file_path"`
	Mode            string `yaml:"mode"` // overwrite or append
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Frontend: FrontendConfig{Type: "gtk"},
		Sound:    SoundSection{Config: SoundConfig{Lid: "up", MuteState: "unmuted"}},
		Terminal: TerminalSection{Config: TerminalConfig{
			Mode:               "line",
			Columns:            72,
			Rows:               24,
			Scrollback:         200,
			Autowrap:           true,
			LocalCRLF:          true,
			KeyboardParityMode: "space",
			StripEscapes:       true,
			Case:               "pass",
			FontSize:           20,
		}},
		Backend: BackendConfig{
			Type:   "serial",
			Serial: SerialConfig{Baudrate: 9600, Databits: 8, Parity: "N", Stopbits: 1},
			SSH: SSHConfig{
				Port:           22,
				KeyFilename:    "~/.ssh/id_ed25519",
				UseAgent:       true,
				HostKeyPolicy:  "accept-new",
				KnownHostsFile: "~/.ssh/known_hosts",
			},
			Telnet: TelnetConfig{Port: 23},
		},
		DataThrottle: ThrottleSection{Config: ThrottleConfig{Mode: "throttled", SendRateCPS: 10, ReceiveRateCPS: 10}},
		TapeReader: ReaderSection{Config: ReaderConfig{
			MaxRows:          200,
			InitialFilePath:  ".",
			SkipLeadingNulls: true,
			AutoStop:         true,
		}},
		TapePunch: PunchSection{Config: PunchConfig{MaxRows: 200, InitialFilePath: ".", Mode: "overwrite"}},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads path, or the first file found in SearchPaths when path is
// empty, over the defaults. It returns the file actually used, which is
// empty when none was found.
func Load(path string) (*Config, string, error) {
	cfg := Default()
	if path == "" {
		path = Find()
		if path == "" {
			return cfg, "", nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, path, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%s: %q is not one of %s", field, value, strings.Join(allowed, ", "))
}

// Validate checks the settings that cannot be fixed up silently.
func (c *Config) Validate() error {
	t := c.Terminal.Config
	checks := []error{
		oneOf("terminal.mode", t.Mode, "line", "local"),
		oneOf("terminal.keyboard_parity_mode", t.KeyboardParityMode, "space", "mark", "even", "odd"),
		oneOf("terminal.case", t.Case, "pass", "fold", "reject"),
		oneOf("backend.type", c.Backend.Type, "serial", "telnet", "ssh", "pty"),
		oneOf("backend.serial_config.parity", c.Backend.Serial.Parity, "N", "E", "O"),
		oneOf("data_throttle.mode", c.DataThrottle.Config.Mode, "throttled", "unthrottled"),
		oneOf("tape_punch.mode", c.TapePunch.Config.Mode, "overwrite", "append"),
		oneOf("sound.lid", c.Sound.Config.Lid, "up", "down"),
		oneOf("sound.mute_state", c.Sound.Config.MuteState, "muted", "unmuted"),
	}
	if err := errors.Join(checks...); err != nil {
		return err
	}
	if t.Columns < 1 {
		return fmt.Errorf("terminal.columns must be positive, got %d", t.Columns)
	}
	if c.LineMode() && c.Backend.Type == "serial" && c.Backend.Serial.Port == "" {
		return ErrNoPort
	}
	return nil
}

// LineMode reports whether the machine starts connected to the line.
func (c *Config) LineMode() bool {
	return strings.EqualFold(c.Terminal.Config.Mode, "line")
}

func (c *Config) Muted() bool {
	return strings.EqualFold(c.Sound.Config.MuteState, "muted")
}

func (c *Config) LidUp() bool {
	return !strings.EqualFold(c.Sound.Config.Lid, "down")
}

func (c *Config) Throttled() bool {
	return !strings.EqualFold(c.DataThrottle.Config.Mode, "unthrottled")
}
