// tape_test.go

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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderExhaustion(t *testing.T) {
	r := NewReader(ReaderOptions{})
	r.Load([]byte{1, 2, 3})
	r.Engage()

	var got []byte
	for i := 0; i < 4; i++ {
		b, ok := r.NextByte()
		if i < 3 {
			require.True(t, ok)
			got = append(got, b)
		} else {
			assert.False(t, ok)
		}
	}
	assert.Equal(t, []byte{1, 2, 3}, got)
	assert.True(t, r.Status().Exhausted())
	assert.True(t, r.Engaged(), "without auto-stop the reader stays engaged")
}

func TestReaderDisengagedYieldsNothing(t *testing.T) {
	r := NewReader(ReaderOptions{})
	r.Load([]byte("ABC"))
	_, ok := r.NextByte()
	assert.False(t, ok)

	r.Engage()
	b, ok := r.NextByte()
	require.True(t, ok)
	assert.Equal(t, byte('A'), b)

	r.Disengage()
	_, ok = r.NextByte()
	assert.False(t, ok)
	assert.Equal(t, 1, r.Status().Position, "disengaging does not move the tape")
}

func TestReaderReloadRewinds(t *testing.T) {
	r := NewReader(ReaderOptions{})
	r.Load([]byte("XY"))
	r.Engage()
	r.NextByte()
	r.Load([]byte("Q"))
	b, ok := r.NextByte()
	require.True(t, ok)
	assert.Equal(t, byte('Q'), b)
}

func TestReaderEmptyTape(t *testing.T) {
	r := NewReader(ReaderOptions{})
	r.Load(nil)
	r.Engage()
	_, ok := r.NextByte()
	assert.False(t, ok)
}

func TestReaderLoadCopies(t *testing.T) {
	data := []byte("AB")
	r := NewReader(ReaderOptions{})
	r.Load(data)
	data[0] = 'Z'
	r.Engage()
	b, _ := r.NextByte()
	assert.Equal(t, byte('A'), b)
}

func TestReaderOptions(t *testing.T) {
	r := NewReader(ReaderOptions{SkipLeadingNulls: true, AutoStop: true, SetMSB: true})
	r.Load([]byte{0, 0, 0, 'A', 0, 'B'})
	r.Engage()

	var got []byte
	for {
		b, ok := r.NextByte()
		if !ok {
			break
		}
		got = append(got, b)
	}
	// only the leader is skipped, NULs inside the tape are read
	assert.Equal(t, []byte{'A' | 0x80, 0x80, 'B' | 0x80}, got)
	assert.False(t, r.Engaged(), "auto-stop disengages at the end of the tape")
}

func TestReaderLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.tape")
	require.NoError(t, os.WriteFile(path, []byte("10 PRINT\r\n"), 0644))
	r := NewReader(ReaderOptions{})
	require.NoError(t, r.LoadFile(path))
	assert.Equal(t, 10, r.Status().Length)

	assert.Error(t, r.LoadFile(filepath.Join(t.TempDir(), "missing")))
}

func TestPunchRecordsOnlyWhenEngaged(t *testing.T) {
	p := NewPunch()
	assert.False(t, p.Record('A'))
	p.Engage()
	assert.True(t, p.Record('B'))
	assert.True(t, p.Record('C'))
	p.Disengage()
	p.Record('D')
	assert.Equal(t, []byte("BC"), p.Export())

	exported := p.Export()
	exported[0] = 'X'
	assert.Equal(t, []byte("BC"), p.Export(), "export is a copy")

	p.Clear()
	assert.Equal(t, 0, p.Len())
}

func TestPunchWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tape")
	p := NewPunch()
	p.Engage()
	p.Record('1')
	require.NoError(t, p.WriteFile(path, Overwrite))
	require.NoError(t, p.WriteFile(path, Append))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("11"), data)

	require.NoError(t, p.WriteFile(path, Overwrite))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), data)
}

func TestParsePunchMode(t *testing.T) {
	m, err := ParsePunchMode("append")
	require.NoError(t, err)
	assert.Equal(t, Append, m)
	_, err = ParsePunchMode("shred")
	assert.Error(t, err)
}
