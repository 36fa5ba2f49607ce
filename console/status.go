// status.go

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

package console

import (
	"fmt"
	"strings"

	"github.com/asr33emu/asr33g/engine"
	"github.com/asr33emu/asr33g/modes"
	"github.com/asr33emu/asr33g/tape"
)

// Status is what the status line shows.
type Status struct {
	Flags    modes.Flags
	Line     string // "" when no line is attached
	Reader   tape.ReaderStatus
	Punching bool
	Punched  int
}

// Snapshot reads the current status from e.
func Snapshot(e *engine.Engine) Status {
	return Status{
		Flags:    e.Flags(),
		Line:     e.LineInfo(),
		Reader:   e.ReaderStatus(),
		Punching: e.PunchEngaged(),
		Punched:  len(e.PunchedTape()),
	}
}

func (s Status) String() string {
	parts := make([]string, 0, 8)
	if s.Flags.LineMode {
		parts = append(parts, "LINE")
	} else {
		parts = append(parts, "LOCAL")
	}
	switch {
	case s.Line != "":
		parts = append(parts, s.Line)
	case s.Flags.LineMode:
		parts = append(parts, "no line")
	}
	parts = append(parts,
		"PRINT "+onOff(s.Flags.PrinterEnabled),
		"THROTTLE "+onOff(s.Flags.ThrottleEnabled))
	if s.Flags.LidOpen {
		parts = append(parts, "LID UP")
	} else {
		parts = append(parts, "LID DOWN")
	}
	if s.Flags.Muted {
		parts = append(parts, "MUTED")
	}
	reader := fmt.Sprintf("READER %d/%d", s.Reader.Position, s.Reader.Length)
	if s.Reader.Engaged {
		reader += " RUN"
	}
	parts = append(parts, reader)
	if s.Punching {
		parts = append(parts, fmt.Sprintf("PUNCH ON %d", s.Punched))
	} else {
		parts = append(parts, fmt.Sprintf("PUNCH OFF %d", s.Punched))
	}
	return strings.Join(parts, " | ")
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
