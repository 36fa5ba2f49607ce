// events.go

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

package engine

import (
	"fmt"

	"github.com/asr33emu/asr33g/decoder"
	"github.com/asr33emu/asr33g/modes"
)

// EventKind classifies notifications published by the engine.
type EventKind int

const (
	// Processed - one byte passed the routing point
	Processed EventKind = iota
	// FlagsChanged - a mode flag was toggled
	FlagsChanged
	Connected
	Disconnected
	// ReaderIdle - the tape reader stopped supplying bytes
	ReaderIdle
	// Dropped - an outbound byte had nowhere to go
	Dropped
)

func (k EventKind) String() string {
	switch k {
	case Processed:
		return "processed"
	case FlagsChanged:
		return "flags-changed"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case ReaderIdle:
		return "reader-idle"
	case Dropped:
		return "dropped"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Source says where a byte came from.
type Source int

const (
	Host Source = iota
	Keyboard
	Reader
)

func (s Source) String() string {
	switch s {
	case Host:
		return "host"
	case Keyboard:
		return "keyboard"
	case Reader:
		return "reader"
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// Event is a value sent on the engine's event channel. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Source  Source
	Raw     byte
	Decoded decoder.Event // valid when Printed

	Printed     bool // applied to the paper
	Changed     bool // the paper actually changed
	Transmitted bool
	Punched     bool

	Flags modes.Flags
	Info  string // transport description for Connected
	Err   error  // cause of a Disconnected
}
