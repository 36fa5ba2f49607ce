// flags.go

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

package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds the command line settings. Only flags the user actually gave
// override the configuration file.
type Flags struct {
	ConfigFile string
	Save       bool
	ListPorts  bool

	port, frontend, backend, termMode string
	columns, rows, scrollback         int
	baud, databits, stopbits          int
	parity                            string
	throttleRate                      int
	mute, unthrottled                 bool
	host                              string
	logLevel, logFile                 string

	set *pflag.FlagSet
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	f.set = fs
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "path to YAML config `file`")
	fs.BoolVarP(&f.Save, "save", "s", false, "save current settings to the user config file")
	fs.BoolVarP(&f.ListPorts, "list-ports", "l", false, "list available serial ports and exit")
	fs.StringVarP(&f.port, "port", "p", "", "serial `device`, 'pty' for a local shell or 'none' for local mode")
	fs.StringVarP(&f.frontend, "frontend", "f", "", "front end type")
	fs.StringVarP(&f.backend, "backend", "b", "", "backend type: serial, telnet, ssh or pty")
	fs.StringVar(&f.termMode, "term_mode", "", "terminal mode: line or local")
	fs.IntVar(&f.columns, "columns", 0, "number of terminal columns")
	fs.IntVar(&f.rows, "rows", 0, "number of terminal rows")
	fs.IntVar(&f.scrollback, "scrollback", 0, "number of scrollback lines")
	fs.IntVar(&f.baud, "baud", 0, "serial baud `rate` (e.g. 110, 9600)")
	fs.IntVar(&f.databits, "databits", 0, "serial data bits")
	fs.StringVar(&f.parity, "parity", "", "serial parity: N, E or O")
	fs.IntVar(&f.stopbits, "stopbits", 0, "serial stop bits")
	fs.IntVar(&f.throttleRate, "throttle_rate", 0, "data throttle rate in characters per `second`")
	fs.BoolVar(&f.unthrottled, "unthrottled", false, "start with the data throttle off")
	fs.BoolVar(&f.mute, "mute", false, "start with sound muted")
	fs.StringVar(&f.host, "host", "", "remote host for the telnet and ssh backends")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&f.logFile, "log-file", "", "append logs to `file` instead of stderr")
}

func (f *Flags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}

// Apply copies explicitly set flags into c.
func (f *Flags) Apply(c *Config) {
	if f.changed("port") {
		switch strings.ToLower(f.port) {
		case "none":
			c.Terminal.Config.Mode = "local"
		case "pty", "shell":
			c.Backend.Type = "pty"
		default:
			c.Backend.Serial.Port = f.port
		}
	}
	if f.changed("frontend") {
		c.Frontend.Type = f.frontend
	}
	if f.changed("backend") {
		c.Backend.Type = f.backend
	}
	if f.changed("term_mode") {
		c.Terminal.Config.Mode = f.termMode
	}
	if f.changed("columns") {
		c.Terminal.Config.Columns = f.columns
	}
	if f.changed("rows") {
		c.Terminal.Config.Rows = f.rows
	}
	if f.changed("scrollback") {
		c.Terminal.Config.Scrollback = f.scrollback
	}
	if f.changed("baud") {
		c.Backend.Serial.Baudrate = f.baud
	}
	if f.changed("databits") {
		c.Backend.Serial.Databits = f.databits
	}
	if f.changed("parity") {
		c.Backend.Serial.Parity = strings.ToUpper(f.parity)
	}
	if f.changed("stopbits") {
		c.Backend.Serial.Stopbits = f.stopbits
	}
	if f.changed("throttle_rate") {
		c.DataThrottle.Config.SendRateCPS = f.throttleRate
		c.DataThrottle.Config.ReceiveRateCPS = f.throttleRate
	}
	if f.changed("unthrottled") && f.unthrottled {
		c.DataThrottle.Config.Mode = "unthrottled"
	}
	if f.changed("mute") && f.mute {
		c.Sound.Config.MuteState = "muted"
	}
	if f.changed("host") {
		c.Backend.SSH.Host = f.host
		c.Backend.Telnet.Host = f.host
	}
	if f.changed("log-level") {
		c.Log.Level = f.logLevel
	}
	if f.changed("log-file") {
		c.Log.File = f.logFile
	}
}
