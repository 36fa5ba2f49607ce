// session.go

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

// Package session assembles a working teleprinter from a configuration:
// the engine, its communication line and the sound selector.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/asr33emu/asr33g/audio"
	"github.com/asr33emu/asr33g/config"
	"github.com/asr33emu/asr33g/decoder"
	"github.com/asr33emu/asr33g/engine"
	"github.com/asr33emu/asr33g/modes"
	"github.com/asr33emu/asr33g/tape"
	"github.com/asr33emu/asr33g/transport"
)

const (
	updateBuffSize   = 256
	defaultPunchFile = "punch.tap"
)

// EngineOptions translates the configuration into engine settings.
func EngineOptions(c *config.Config, log *slog.Logger) (engine.Options, error) {
	t := c.Terminal.Config
	caseMode, err := decoder.ParseCaseMode(t.Case)
	if err != nil {
		return engine.Options{}, err
	}
	parity, err := engine.ParseParity(t.KeyboardParityMode)
	if err != nil {
		return engine.Options{}, err
	}
	r := c.TapeReader.Config
	return engine.Options{
		Columns:    t.Columns,
		Scrollback: t.Rows + t.Scrollback,
		Autowrap:   t.Autowrap,
		Decoder: decoder.Options{
			MaskParity:   true,
			StripEscapes: t.StripEscapes,
			Case:         caseMode,
		},
		SendRate:    c.DataThrottle.Config.SendRateCPS,
		ReceiveRate: c.DataThrottle.Config.ReceiveRateCPS,
		Flags: modes.Flags{
			LineMode:        c.LineMode(),
			PrinterEnabled:  !t.NoPrint,
			ThrottleEnabled: c.Throttled(),
			Muted:           c.Muted(),
			LidOpen:         c.LidUp(),
		},
		LocalEcho:      t.LocalEcho,
		LocalLineFeed:  t.LocalCRLF,
		KeyboardParity: parity,
		UppercaseOnly:  t.KeyboardUppercaseOnly,
		Reader: tape.ReaderOptions{
			SkipLeadingNulls: r.SkipLeadingNulls,
			AutoStop:         r.AutoStop,
			SetMSB:           r.SetMSB,
		},
		Logger: log,
	}, nil
}

// TransportOptions translates the configuration into line settings. A
// serial backend with no port means there is no line at all.
func TransportOptions(c *config.Config) transport.Options {
	b := c.Backend
	t := c.Terminal.Config
	opts := transport.Options{
		Backend: b.Type,
		Serial: transport.SerialOptions{
			Port:     b.Serial.Port,
			Baud:     b.Serial.Baudrate,
			DataBits: b.Serial.Databits,
			Parity:   b.Serial.Parity,
			StopBits: b.Serial.Stopbits,
		},
		Telnet: transport.TelnetOptions{Host: b.Telnet.Host, Port: b.Telnet.Port},
		SSH: transport.SSHOptions{
			Host:                b.SSH.Host,
			Port:                b.SSH.Port,
			User:                b.SSH.Username,
			Password:            b.SSH.Password,
			KeyFile:             b.SSH.KeyFilename,
			UseAgent:            b.SSH.UseAgent,
			KnownHostsFile:      b.SSH.KnownHostsFile,
			HostKeyPolicy:       b.SSH.HostKeyPolicy,
			ExpectedFingerprint: b.SSH.ExpectedFingerprint,
			Rows:                t.Rows,
			Cols:                t.Columns,
		},
		PTY: transport.PTYOptions{Rows: uint16(t.Rows), Cols: uint16(t.Columns)},
	}
	if b.Type == transport.BackendSerial && b.Serial.Port == "" {
		opts.Backend = transport.BackendNone
	}
	return opts
}

// Session is a running teleprinter.
type Session struct {
	Config *config.Config
	Engine *engine.Engine
	Sound  *audio.Selector

	log       *slog.Logger
	open      func(transport.Options) (transport.Transport, error)
	updates   chan engine.Event
	sounds    chan engine.Event
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New builds, but does not start, a session.
func New(c *config.Config, player audio.Player, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	opts, err := EngineOptions(c, log)
	if err != nil {
		return nil, fmt.Errorf("terminal settings: %w", err)
	}
	if player == nil {
		player = audio.LogPlayer{Log: log}
	}
	e := engine.New(opts)
	return &Session{
		Config:  c,
		Engine:  e,
		Sound:   audio.NewSelector(player, e.Flags(), log),
		log:     log.With("component", "session"),
		open:    transport.Open,
		updates: make(chan engine.Event, updateBuffSize),
		sounds:  make(chan engine.Event, updateBuffSize),
	}, nil
}

// Updates carries engine events to the front end. Events are dropped when
// the front end falls behind; it should redraw from the engine state.
func (s *Session) Updates() <-chan engine.Event {
	return s.updates
}

// Start opens the line, if any, and sets everything running.
func (s *Session) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	s.Engine.Start(ctx)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.Sound.Run(ctx, s.sounds)
	}()
	go func() {
		defer s.wg.Done()
		s.pump(ctx)
	}()

	if path := s.Config.TapeReader.Config.InitialFilePath; isFile(path) {
		if err := s.Engine.LoadTapeFile(path); err != nil {
			s.log.Warn("could not load initial tape", "path", path, "err", err)
		}
	}
	if err := s.Connect(); err != nil {
		return err
	}
	if s.Config.Terminal.Config.SendCRAtStartup && s.Engine.Connected() {
		if err := s.Engine.SendCR(); err != nil {
			s.log.Warn("could not send start-up CR", "err", err)
		}
	}
	return nil
}

// Connect (re)opens the configured line and attaches it to the engine.
func (s *Session) Connect() error {
	opts := TransportOptions(s.Config)
	t, err := s.open(opts)
	if err != nil {
		return fmt.Errorf("opening %s line: %w", opts.Backend, err)
	}
	if t == nil {
		s.log.Info("no communication line, local use only")
		return nil
	}
	s.Engine.Attach(t)
	return nil
}

// TapeDir is where file choosers open for the reader (punch false) or
// the punch (punch true). The configured path may name a directory or a
// tape image.
func (s *Session) TapeDir(punch bool) string {
	path := s.Config.TapeReader.Config.InitialFilePath
	if punch {
		path = s.Config.TapePunch.Config.InitialFilePath
	}
	switch {
	case path == "":
		return "."
	case isFile(path):
		return filepath.Dir(path)
	}
	return path
}

// PunchFile is where SavePunch writes when given no path.
func (s *Session) PunchFile() string {
	path := s.Config.TapePunch.Config.InitialFilePath
	if path == "" || isDir(path) {
		return filepath.Join(s.TapeDir(true), defaultPunchFile)
	}
	return path
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// SavePunch writes the punched tape to path in the configured file mode.
func (s *Session) SavePunch(path string) error {
	if path == "" {
		path = s.PunchFile()
	}
	mode, err := tape.ParsePunchMode(s.Config.TapePunch.Config.Mode)
	if err != nil {
		return err
	}
	if err := s.Engine.SavePunch(path, mode); err != nil {
		return err
	}
	s.log.Info("punched tape saved", "path", path, "mode", s.Config.TapePunch.Config.Mode)
	return nil
}

// pump fans engine events out to the sound selector and the front end.
func (s *Session) pump(ctx context.Context) {
	events := s.Engine.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			select {
			case s.sounds <- ev:
			default:
			}
			select {
			case s.updates <- ev:
			default:
			}
		}
	}
}

// Close stops the engine and the sound selector.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.Engine.Close()
		s.wg.Wait()
	})
	return nil
}
