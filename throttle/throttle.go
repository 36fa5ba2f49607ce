// throttle.go

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

// Package throttle paces characters to the speed of the mechanism:
// an ASR-33 prints and sends ten characters per second.
package throttle

import (
	"context"
	"sync"
	"time"
)

// DefaultRate is the ASR-33 character rate in characters per second.
const DefaultRate = 10

// Throttle spaces consecutive releases at least 1/rate apart while enabled.
// Switching it off releases a waiting caller at once.
type Throttle struct {
	mutex       sync.Mutex
	interval    time.Duration
	enabled     bool
	nextRelease time.Time
	bypass      chan struct{} // closed when throttling is switched off
}

// New returns a throttle running at cps characters per second. A rate of
// zero or less never waits.
func New(cps int, enabled bool) *Throttle {
	t := &Throttle{enabled: enabled, bypass: make(chan struct{})}
	t.setRate(cps)
	return t
}

func (t *Throttle) setRate(cps int) {
	if cps <= 0 {
		t.interval = 0
		return
	}
	t.interval = time.Second / time.Duration(cps)
}

// SetRate changes the character rate; it applies from the next release.
func (t *Throttle) SetRate(cps int) {
	t.mutex.Lock()
	t.setRate(cps)
	t.mutex.Unlock()
}

// Interval returns the minimum spacing between releases.
func (t *Throttle) Interval() time.Duration {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.interval
}

// Enabled reports whether releases are being paced.
func (t *Throttle) Enabled() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.enabled
}

// SetEnabled switches pacing on or off. Switching off wakes any caller
// blocked in Release; switching on never carries a stale backlog.
func (t *Throttle) SetEnabled(on bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if on == t.enabled {
		return
	}
	t.enabled = on
	if on {
		t.nextRelease = time.Now()
		return
	}
	close(t.bypass)
	t.bypass = make(chan struct{})
}

// Release blocks until the next character may go. It only returns an error
// when ctx ends first.
func (t *Throttle) Release(ctx context.Context) error {
	t.mutex.Lock()
	now := time.Now()
	if !t.enabled || t.interval == 0 {
		t.nextRelease = now
		t.mutex.Unlock()
		return nil
	}
	wait := t.nextRelease.Sub(now)
	bypass := t.bypass
	t.mutex.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-bypass:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	t.mutex.Lock()
	now = time.Now()
	if t.enabled {
		t.nextRelease = now.Add(t.interval)
	} else {
		t.nextRelease = now
	}
	t.mutex.Unlock()
	return nil
}
