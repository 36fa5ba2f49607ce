// chars.go

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

package decoder

// ASR-33 / USASCII-1963 codes the printer mechanism reacts to, plus the
// ones that matter for escape stripping and tape handling.
const (
	asciiNul    = 0
	asciiBell   = 7
	asciiBS     = 8
	asciiHT     = 9
	asciiLF     = 10
	asciiVT     = 11
	asciiFF     = 12
	asciiCR     = 13
	asciiXON    = 17 // DC1 - reader on
	asciiTapeOn = 18 // DC2 - punch on
	asciiXOFF   = 19 // DC3 - reader off
	asciiTapeOf = 20 // DC4 - punch off
	asciiEsc    = 27
	asciiSpace  = 32
	asciiTilde  = 126
	asciiDelete = 0177 // = 127. or 0x7F, rubout

	parityBit = 0x80
)

// Exported for the engine and front ends which need to synthesise bytes.
const (
	NUL  byte = asciiNul
	BEL  byte = asciiBell
	LF   byte = asciiLF
	CR   byte = asciiCR
	XON  byte = asciiXON
	XOFF byte = asciiXOFF
	DEL  byte = asciiDelete
)
