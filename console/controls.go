// controls.go

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

	"github.com/asr33emu/asr33g/engine"
)

// Control is one switch on the front panel. Front ends bind Controls[i] to
// function key F(i+1).
type Control struct {
	Label string
	Help  string
	Apply func(e *engine.Engine)
}

var Controls = []Control{
	{"LINE/LOCAL", "switch between line and local mode", func(e *engine.Engine) { e.ToggleLineMode() }},
	{"PRINT", "printer on or off", func(e *engine.Engine) { e.TogglePrinter() }},
	{"THROTTLE", "pace data at teleprinter speed", func(e *engine.Engine) { e.ToggleThrottle() }},
	{"MUTE", "sound on or off", func(e *engine.Engine) { e.ToggleMute() }},
	{"LID", "raise or lower the lid", func(e *engine.Engine) { e.ToggleLid() }},
	{"READER", "start or stop the tape reader", ToggleReader},
	{"PUNCH", "punch on or off", TogglePunch},
}

// ToggleReader starts a stopped reader and stops a running one.
func ToggleReader(e *engine.Engine) {
	if e.ReaderStatus().Engaged {
		e.StopReader()
	} else {
		e.StartReader()
	}
}

func TogglePunch(e *engine.Engine) {
	if e.PunchEngaged() {
		e.StopPunch()
	} else {
		e.StartPunch()
	}
}

// Help lists the controls with their keys.
func Help() []string {
	lines := make([]string, len(Controls))
	for i, c := range Controls {
		lines[i] = fmt.Sprintf("F%-2d %s: %s", i+1, c.Label, c.Help)
	}
	return lines
}
