// parity.go

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

package engine

import (
	"fmt"
	"math/bits"
	"strings"
)

// Parity is applied to the eighth bit of keyboard bytes before they leave
// the machine.
type Parity int

const (
	ParitySpace Parity = iota // eighth bit always clear
	ParityMark                // eighth bit always set
	ParityEven
	ParityOdd
)

// ParseParity accepts space, mark, even or odd, in any case.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(s) {
	case "", "space":
		return ParitySpace, nil
	case "mark":
		return ParityMark, nil
	case "even":
		return ParityEven, nil
	case "odd":
		return ParityOdd, nil
	}
	return ParitySpace, fmt.Errorf("unknown parity mode %q", s)
}

func (p Parity) String() string {
	switch p {
	case ParitySpace:
		return "space"
	case ParityMark:
		return "mark"
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	}
	return fmt.Sprintf("parity(%d)", int(p))
}

// Apply returns b with its eighth bit set according to p.
func (p Parity) Apply(b byte) byte {
	b &= 0x7f
	ones := bits.OnesCount8(b)
	switch p {
	case ParityMark:
		b |= 0x80
	case ParityEven:
		if ones%2 == 1 {
			b |= 0x80
		}
	case ParityOdd:
		if ones%2 == 0 {
			b |= 0x80
		}
	}
	return b
}
