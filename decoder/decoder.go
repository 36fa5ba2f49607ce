// decoder.go

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

// Package decoder turns the raw byte stream arriving from the line into the
// semantic events the teleprinter mechanism acts upon.
package decoder

import "fmt"

// Kind identifies what the printer should do with a byte.
type Kind int

const (
	Ignored Kind = iota
	PrintChar
	CarriageReturn
	LineFeed
	Bell
	Delete
)

func (k Kind) String() string {
	switch k {
	case PrintChar:
		return "PrintChar"
	case CarriageReturn:
		return "CarriageReturn"
	case LineFeed:
		return "LineFeed"
	case Bell:
		return "Bell"
	case Delete:
		return "Delete"
	}
	return "Ignored"
}

// Event is the result of decoding one byte.
// Char holds the (possibly folded) character for PrintChar, Raw always
// holds the byte as received.
type Event struct {
	Kind Kind
	Char byte
	Raw  byte
}

func (e Event) String() string {
	if e.Kind == PrintChar {
		return fmt.Sprintf("PrintChar(%q)", e.Char)
	}
	return fmt.Sprintf("%s(0x%02x)", e.Kind, e.Raw)
}

// CaseMode controls lower case handling on upper-case-only machines.
type CaseMode int

const (
	CasePass CaseMode = iota
	CaseFold
	CaseReject
)

// ParseCaseMode accepts "pass", "fold" or "reject".
func ParseCaseMode(s string) (CaseMode, error) {
	switch s {
	case "", "pass":
		return CasePass, nil
	case "fold":
		return CaseFold, nil
	case "reject":
		return CaseReject, nil
	}
	return CasePass, fmt.Errorf("unknown case mode %q", s)
}

// Options configure a Decoder.
type Options struct {
	MaskParity   bool
	StripEscapes bool
	Case         CaseMode
}

// DefaultOptions matches a stock ASR-33 talking to a modern host.
func DefaultOptions() Options {
	return Options{MaskParity: true, StripEscapes: true, Case: CasePass}
}

type escState int

const (
	escGround escState = iota
	escStart
	escCSI
	escOSC
	escOSCEsc
)

// Decoder is not safe for concurrent use; the engine owns exactly one.
type Decoder struct {
	opts  Options
	state escState
}

// New returns a Decoder in the ground state.
func New(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

// Reset abandons any escape sequence in progress.
func (d *Decoder) Reset() {
	d.state = escGround
}

// Pending reports whether a multi-byte sequence is being swallowed.
func (d *Decoder) Pending() bool {
	return d.state != escGround
}

// Decode classifies a single byte. It always returns exactly one event.
func (d *Decoder) Decode(raw byte) Event {
	ch := raw
	if d.opts.MaskParity {
		ch &^= parityBit
	}
	if d.opts.StripEscapes && d.swallow(ch) {
		return Event{Kind: Ignored, Raw: raw}
	}

	switch {
	case ch == asciiCR:
		return Event{Kind: CarriageReturn, Raw: raw}
	case ch == asciiLF:
		return Event{Kind: LineFeed, Raw: raw}
	case ch == asciiBell:
		return Event{Kind: Bell, Raw: raw}
	case ch == asciiDelete:
		return Event{Kind: Delete, Raw: raw}
	case ch >= asciiSpace && ch <= asciiTilde:
		if ch >= 'a' && ch <= 'z' {
			switch d.opts.Case {
			case CaseFold:
				ch -= 'a' - 'A'
			case CaseReject:
				return Event{Kind: Ignored, Raw: raw}
			}
		}
		return Event{Kind: PrintChar, Char: ch, Raw: raw}
	}
	return Event{Kind: Ignored, Raw: raw}
}

// swallow advances the escape state machine and reports whether ch is
// part of an escape sequence.
func (d *Decoder) swallow(ch byte) bool {
	switch d.state {
	case escGround:
		if ch == asciiEsc {
			d.state = escStart
			return true
		}
		return false
	case escStart:
		switch ch {
		case '[':
			d.state = escCSI
		case ']':
			d.state = escOSC
		default:
			// single character escape
			d.state = escGround
		}
	case escCSI:
		if ch >= '@' && ch <= '~' {
			d.state = escGround
		}
	case escOSC:
		switch ch {
		case asciiBell:
			d.state = escGround
		case asciiEsc:
			d.state = escOSCEsc
		}
	case escOSCEsc:
		if ch == '\\' {
			d.state = escGround
		} else {
			d.state = escOSC
		}
	}
	return true
}
