// player.go

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

package audio

import (
	"log/slog"
	"time"
)

// Player makes the noises the Selector asks for. Names carry the lid
// prefix, e.g. "down-hum".
type Player interface {
	// Loop makes name the continuously playing sound.
	Loop(name string)
	// TapeReader starts or stops the reader loop.
	TapeReader(name string, running bool)
	// Effect plays a one-shot sound for at most d.
	Effect(name string, d time.Duration)
	SetMuted(muted bool)
}

// NullPlayer is silent.
type NullPlayer struct{}

func (NullPlayer) Loop(string)                  {}
func (NullPlayer) TapeReader(string, bool)      {}
func (NullPlayer) Effect(string, time.Duration) {}
func (NullPlayer) SetMuted(bool)                {}

// LogPlayer writes each sound change to a logger at debug level, for
// machines without a sound device.
type LogPlayer struct {
	Log *slog.Logger
}

func (p LogPlayer) Loop(name string) {
	p.Log.Debug("sound loop", "name", name)
}

func (p LogPlayer) TapeReader(name string, running bool) {
	p.Log.Debug("sound tape reader", "name", name, "running", running)
}

func (p LogPlayer) Effect(name string, d time.Duration) {
	p.Log.Debug("sound effect", "name", name, "max", d)
}

func (p LogPlayer) SetMuted(muted bool) {
	p.Log.Debug("sound muted", "muted", muted)
}
