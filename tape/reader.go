// reader.go

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

// Package tape emulates the paper tape reader and punch fitted to the
// left of the ASR-33 keyboard. Tape images are plain byte sequences.
package tape

import (
	"fmt"
	"os"
	"sync"
)

const msb = 0x80

// ReaderOptions mirror the knobs of the physical reader.
type ReaderOptions struct {
	SkipLeadingNulls bool // run the blank leader through without sending it
	AutoStop         bool // disengage once the tape runs out
	SetMSB           bool // force the eighth hole on every frame
}

// Reader is an alternate keyboard fed from a loaded tape.
// Safe for concurrent use.
type Reader struct {
	mutex   sync.Mutex
	opts    ReaderOptions
	buffer  []byte
	cursor  int
	engaged bool
	started bool // a non-leader frame has been read
}

// NewReader returns an empty, disengaged reader.
func NewReader(opts ReaderOptions) *Reader {
	return &Reader{opts: opts}
}

// Load replaces the tape and rewinds it. Any byte sequence, including an
// empty one, is a valid tape.
func (r *Reader) Load(data []byte) {
	r.mutex.Lock()
	r.buffer = append([]byte(nil), data...)
	r.cursor = 0
	r.started = false
	r.mutex.Unlock()
}

// LoadFile loads a tape image from disk.
func (r *Reader) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading tape image: %w", err)
	}
	r.Load(data)
	return nil
}

func (r *Reader) Engage() {
	r.mutex.Lock()
	r.engaged = true
	r.mutex.Unlock()
}

func (r *Reader) Disengage() {
	r.mutex.Lock()
	r.engaged = false
	r.mutex.Unlock()
}

// NextByte returns the frame under the read head and advances the tape.
// It returns false when disengaged or when the tape is exhausted.
func (r *Reader) NextByte() (byte, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.engaged {
		return 0, false
	}
	if r.opts.SkipLeadingNulls && !r.started {
		for r.cursor < len(r.buffer) && r.buffer[r.cursor] == 0 {
			r.cursor++
		}
	}
	if r.cursor >= len(r.buffer) {
		if r.opts.AutoStop {
			r.engaged = false
		}
		return 0, false
	}
	b := r.buffer[r.cursor]
	r.cursor++
	r.started = true
	if r.opts.AutoStop && r.cursor >= len(r.buffer) {
		r.engaged = false
	}
	if r.opts.SetMSB {
		b |= msb
	}
	return b, true
}

// ReaderStatus is a snapshot for status displays.
type ReaderStatus struct {
	Position, Length int
	Engaged          bool
}

// Exhausted reports whether the whole tape has been read.
func (s ReaderStatus) Exhausted() bool {
	return s.Position >= s.Length
}

func (r *Reader) Status() ReaderStatus {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return ReaderStatus{Position: r.cursor, Length: len(r.buffer), Engaged: r.engaged}
}

func (r *Reader) Engaged() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.engaged
}

func (r *Reader) Position() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.cursor
}

func (r *Reader) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.buffer)
}

// Exhausted reports whether every frame has passed the read head.
func (r *Reader) Exhausted() bool {
	return r.Status().Exhausted()
}
