// modes.go

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

// Package modes holds the switches on the teleprinter's console: the
// LINE/LOCAL knob, printer enable, throttling, sound mute and the lid.
package modes

import (
	"fmt"
	"sync"
)

// Flags is a snapshot of the five switches. All combinations are legal.
type Flags struct {
	LineMode        bool
	PrinterEnabled  bool
	ThrottleEnabled bool
	Muted           bool
	LidOpen         bool
}

func (f Flags) String() string {
	mode := "LOCAL"
	if f.LineMode {
		mode = "LINE"
	}
	return fmt.Sprintf("%s printer=%v throttle=%v muted=%v lid=%v",
		mode, onOff(f.PrinterEnabled), onOff(f.ThrottleEnabled), f.Muted, lidState(f.LidOpen))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func lidState(open bool) string {
	if open {
		return "up"
	}
	return "down"
}

// Controller is safe for concurrent use. Each toggle flips exactly one flag
// and returns the resulting snapshot.
type Controller struct {
	rwMutex sync.RWMutex
	flags   Flags
}

// NewController starts with the given switch positions.
func NewController(initial Flags) *Controller {
	return &Controller{flags: initial}
}

func (c *Controller) toggle(flip func(*Flags)) Flags {
	c.rwMutex.Lock()
	flip(&c.flags)
	f := c.flags
	c.rwMutex.Unlock()
	return f
}

func (c *Controller) ToggleLineMode() Flags {
	return c.toggle(func(f *Flags) { f.LineMode = !f.LineMode })
}

func (c *Controller) TogglePrinter() Flags {
	return c.toggle(func(f *Flags) { f.PrinterEnabled = !f.PrinterEnabled })
}

func (c *Controller) ToggleThrottle() Flags {
	return c.toggle(func(f *Flags) { f.ThrottleEnabled = !f.ThrottleEnabled })
}

func (c *Controller) ToggleMute() Flags {
	return c.toggle(func(f *Flags) { f.Muted = !f.Muted })
}

func (c *Controller) ToggleLid() Flags {
	return c.toggle(func(f *Flags) { f.LidOpen = !f.LidOpen })
}

// Snapshot returns a copy of the current switch positions.
func (c *Controller) Snapshot() Flags {
	c.rwMutex.RLock()
	defer c.rwMutex.RUnlock()
	return c.flags
}
