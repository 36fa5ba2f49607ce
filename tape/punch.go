// punch.go

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

package tape

import (
	"fmt"
	"os"
	"sync"
)

// PunchMode selects how a punched tape is saved to an existing file.
type PunchMode int

const (
	Overwrite PunchMode = iota
	Append
)

// ParsePunchMode accepts "overwrite" or "append".
func ParsePunchMode(s string) (PunchMode, error) {
	switch s {
	case "", "overwrite":
		return Overwrite, nil
	case "append":
		return Append, nil
	}
	return Overwrite, fmt.Errorf("unknown punch mode %q", s)
}

// Punch records every frame passing the mechanism while it is engaged.
// Safe for concurrent use.
type Punch struct {
	mutex    sync.Mutex
	recorded []byte
	engaged  bool
}

func NewPunch() *Punch {
	return &Punch{}
}

func (p *Punch) Engage() {
	p.mutex.Lock()
	p.engaged = true
	p.mutex.Unlock()
}

func (p *Punch) Disengage() {
	p.mutex.Lock()
	p.engaged = false
	p.mutex.Unlock()
}

func (p *Punch) Engaged() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.engaged
}

// Record punches b if the punch is engaged and reports whether it did.
func (p *Punch) Record(b byte) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.engaged {
		return false
	}
	p.recorded = append(p.recorded, b)
	return true
}

// Export returns a copy of the tape punched so far.
func (p *Punch) Export() []byte {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]byte(nil), p.recorded...)
}

// Clear tears off the punched tape.
func (p *Punch) Clear() {
	p.mutex.Lock()
	p.recorded = nil
	p.mutex.Unlock()
}

func (p *Punch) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.recorded)
}

// WriteFile saves the punched tape to path.
func (p *Punch) WriteFile(path string, mode PunchMode) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mode == Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening tape image: %w", err)
	}
	if _, err := f.Write(p.Export()); err != nil {
		f.Close()
		return fmt.Errorf("writing tape image: %w", err)
	}
	return f.Close()
}
