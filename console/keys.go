// keys.go

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

// Package console holds what both front ends share: the keyboard mapping,
// the status line and the front panel switches.
package console

import "github.com/asr33emu/asr33g/decoder"

// KeyByte maps a typed rune to the byte the keyboard sends. Enter is CR and
// backspace is RUBOUT. Anything outside 7-bit ASCII has no key.
func KeyByte(ch rune, ctrl bool) (byte, bool) {
	switch {
	case ch == '\n' || ch == '\r':
		return decoder.CR, true
	case ch == '\b' || ch == rune(decoder.DEL):
		return decoder.DEL, true
	case ch < 0 || ch > 0x7f:
		return 0, false
	}
	b := byte(ch)
	if ctrl && b >= '@' {
		b &= 31
	}
	return b, true
}
