// decoder_test.go

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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEveryByteOnce(t *testing.T) {
	for _, opts := range []Options{
		DefaultOptions(),
		{},
		{MaskParity: true, Case: CaseFold},
		{Case: CaseReject},
	} {
		a, b := New(opts), New(opts)
		for i := 0; i < 256; i++ {
			first := a.Decode(byte(i))
			second := b.Decode(byte(i))
			assert.Equal(t, first, second, "byte 0x%02x", i)
			assert.Equal(t, byte(i), first.Raw)
		}
	}
}

func TestDecodeControls(t *testing.T) {
	d := New(Options{MaskParity: true})
	cases := []struct {
		in   byte
		want Kind
	}{
		{'\r', CarriageReturn},
		{'\n', LineFeed},
		{0x07, Bell},
		{0x7f, Delete},
		{0x8d, CarriageReturn}, // CR with parity bit set
		{0x00, Ignored},
		{'\b', Ignored},
		{'\t', Ignored},
		{'\v', Ignored},
		{'\f', Ignored},
		{0x1b, Ignored},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, d.Decode(c.in).Kind, "byte 0x%02x", c.in)
	}
}

func TestDecodePrintable(t *testing.T) {
	d := New(Options{})
	ev := d.Decode('A')
	assert.Equal(t, PrintChar, ev.Kind)
	assert.Equal(t, byte('A'), ev.Char)

	ev = d.Decode(0xc1) // 'A' with parity, not masked
	assert.Equal(t, Ignored, ev.Kind)
}

func TestDecodeCaseModes(t *testing.T) {
	ev := New(Options{Case: CaseFold}).Decode('q')
	assert.Equal(t, PrintChar, ev.Kind)
	assert.Equal(t, byte('Q'), ev.Char)
	assert.Equal(t, byte('q'), ev.Raw)

	ev = New(Options{Case: CaseReject}).Decode('q')
	assert.Equal(t, Ignored, ev.Kind)

	ev = New(Options{Case: CasePass}).Decode('q')
	assert.Equal(t, byte('q'), ev.Char)

	// braces and tilde are not letters and are never folded
	ev = New(Options{Case: CaseFold}).Decode('{')
	assert.Equal(t, byte('{'), ev.Char)
}

func TestParseCaseMode(t *testing.T) {
	m, err := ParseCaseMode("fold")
	require.NoError(t, err)
	assert.Equal(t, CaseFold, m)
	_, err = ParseCaseMode("shout")
	assert.Error(t, err)
}

func decodeString(d *Decoder, s string) []Event {
	var out []Event
	for i := 0; i < len(s); i++ {
		out = append(out, d.Decode(s[i]))
	}
	return out
}

func printed(evs []Event) string {
	var s []byte
	for _, e := range evs {
		if e.Kind == PrintChar {
			s = append(s, e.Char)
		}
	}
	return string(s)
}

func TestStripCSI(t *testing.T) {
	d := New(DefaultOptions())
	in := "A\x1b[1;31mB\x1b[0mC"
	evs := decodeString(d, in)
	require.Len(t, evs, len(in))
	assert.Equal(t, "ABC", printed(evs))
	assert.False(t, d.Pending())
}

func TestStripOSC(t *testing.T) {
	d := New(DefaultOptions())
	evs := decodeString(d, "\x1b]0;title\x07X\x1b]2;t\x1b\\Y")
	assert.Equal(t, "XY", printed(evs))
	for _, e := range evs {
		assert.NotEqual(t, Bell, e.Kind, "BEL terminating OSC must not ring")
	}
}

func TestStripSingleCharEscape(t *testing.T) {
	d := New(DefaultOptions())
	evs := decodeString(d, "\x1b=Z")
	assert.Equal(t, "Z", printed(evs))
}

func TestOSCEscapeNotTerminator(t *testing.T) {
	d := New(DefaultOptions())
	evs := decodeString(d, "\x1b]x\x1bQy\x07Z")
	assert.Equal(t, "Z", printed(evs))
}

func TestResetAbandonsSequence(t *testing.T) {
	d := New(DefaultOptions())
	d.Decode(0x1b)
	d.Decode('[')
	require.True(t, d.Pending())
	d.Reset()
	assert.Equal(t, PrintChar, d.Decode('K').Kind)
}

func TestEscapesPassWhenNotStripping(t *testing.T) {
	d := New(Options{MaskParity: true})
	evs := decodeString(d, "\x1b[2J")
	assert.Equal(t, "[2J", printed(evs))
}
