// modes_test.go

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

package modes

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEachToggleFlipsOneFlag(t *testing.T) {
	toggles := map[string]struct {
		toggle func(*Controller) Flags
		get    func(Flags) bool
	}{
		"line":     {(*Controller).ToggleLineMode, func(f Flags) bool { return f.LineMode }},
		"printer":  {(*Controller).TogglePrinter, func(f Flags) bool { return f.PrinterEnabled }},
		"throttle": {(*Controller).ToggleThrottle, func(f Flags) bool { return f.ThrottleEnabled }},
		"mute":     {(*Controller).ToggleMute, func(f Flags) bool { return f.Muted }},
		"lid":      {(*Controller).ToggleLid, func(f Flags) bool { return f.LidOpen }},
	}
	initial := Flags{LineMode: true, PrinterEnabled: true, ThrottleEnabled: true}
	for name, tc := range toggles {
		t.Run(name, func(t *testing.T) {
			c := NewController(initial)
			after := tc.toggle(c)
			assert.Equal(t, !tc.get(initial), tc.get(after))
			assert.Equal(t, after, c.Snapshot())

			// only the one flag moved
			flipped := tc.toggle(NewController(after))
			assert.Equal(t, initial, flipped)

			tc.toggle(c)
			assert.Equal(t, initial, c.Snapshot(), "double toggle restores the original")
		})
	}
}

func TestConcurrentToggles(t *testing.T) {
	c := NewController(Flags{})
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ToggleMute()
			_ = c.Snapshot()
		}()
	}
	wg.Wait()
	assert.False(t, c.Snapshot().Muted, "an even number of toggles")
}

func TestFlagsString(t *testing.T) {
	s := Flags{LineMode: true, PrinterEnabled: true, LidOpen: true}.String()
	assert.Equal(t, "LINE printer=on throttle=off muted=false lid=up", s)
}
