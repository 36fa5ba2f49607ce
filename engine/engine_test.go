// engine_test.go

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
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asr33emu/asr33g/decoder"
	"github.com/asr33emu/asr33g/document"
	"github.com/asr33emu/asr33g/modes"
	"github.com/asr33emu/asr33g/tape"
)

const settle = 2 * time.Second

type pipeTransport struct {
	net.Conn
}

func (pipeTransport) Info() string { return "pipe" }

// newTestEngine returns a started engine attached to one end of a pipe,
// along with the host end.
func newTestEngine(t *testing.T, flags modes.Flags, tweak func(*Options)) (*Engine, net.Conn) {
	t.Helper()
	opts := DefaultOptions()
	opts.Flags = flags
	if tweak != nil {
		tweak(&opts)
	}
	e := New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx)
	t.Cleanup(func() {
		cancel()
		e.Close()
	})

	ours, host := net.Pipe()
	e.Attach(pipeTransport{ours})
	t.Cleanup(func() { host.Close() })
	return e, host
}

// waitFor returns the first event matching match.
func waitFor(t *testing.T, e *Engine, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(settle)
	for {
		select {
		case ev := <-e.Events():
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func processed(src Source, b byte) func(Event) bool {
	return func(ev Event) bool {
		return ev.Kind == Processed && ev.Source == src && ev.Raw == b
	}
}

func readHost(t *testing.T, host net.Conn, n int) []byte {
	t.Helper()
	require.NoError(t, host.SetReadDeadline(time.Now().Add(settle)))
	buf := make([]byte, n)
	_, err := io.ReadFull(host, buf)
	require.NoError(t, err)
	return buf
}

func assertHostSilent(t *testing.T, host net.Conn) {
	t.Helper()
	require.NoError(t, host.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	buf := make([]byte, 1)
	_, err := host.Read(buf)
	var nerr net.Error
	require.True(t, errors.As(err, &nerr) && nerr.Timeout(), "host received %q", buf)
}

func TestLineModeRouting(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true, PrinterEnabled: true}, nil)
	e.StartPunch()

	// typed bytes go to the host and the punch but not the paper
	require.True(t, e.Type('A'))
	assert.Equal(t, []byte("A"), readHost(t, host, 1))
	ev := waitFor(t, e, processed(Keyboard, 'A'))
	assert.True(t, ev.Transmitted)
	assert.True(t, ev.Punched)
	assert.False(t, ev.Printed)
	assert.Equal(t, "", e.AllText())

	// the host's reply is printed and punched
	_, err := host.Write([]byte("HI\r\n"))
	require.NoError(t, err)
	waitFor(t, e, processed(Host, '\n'))
	assert.Equal(t, "HI\n", e.AllText())
	assert.Equal(t, []byte("AHI\r\n"), e.PunchedTape())
	row, col := e.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
}

func TestLineModeLocalEcho(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true, PrinterEnabled: true},
		func(o *Options) { o.LocalEcho = true })

	require.True(t, e.Type('Z'))
	readHost(t, host, 1)
	ev := waitFor(t, e, processed(Keyboard, 'Z'))
	assert.True(t, ev.Printed)
	assert.Equal(t, "Z", e.AllText())
}

func TestLocalModeRouting(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{PrinterEnabled: true}, nil)
	e.StartPunch()

	require.True(t, e.Type('X'))
	ev := waitFor(t, e, processed(Keyboard, 'X'))
	assert.True(t, ev.Printed)
	assert.True(t, ev.Punched)
	assert.False(t, ev.Transmitted)
	assert.Equal(t, "X", e.AllText())
	assert.Equal(t, []byte("X"), e.PunchedTape())
	assertHostSilent(t, host)

	// printer off: neither printed, sent nor punched
	e.TogglePrinter()
	require.True(t, e.Type('Y'))
	ev = waitFor(t, e, processed(Keyboard, 'Y'))
	assert.False(t, ev.Printed)
	assert.False(t, ev.Punched)
	assert.Equal(t, "X", e.AllText())
	assert.Equal(t, []byte("X"), e.PunchedTape())
	assertHostSilent(t, host)
}

func TestLocalCarriageReturnFeedsLine(t *testing.T) {
	e, _ := newTestEngine(t, modes.Flags{PrinterEnabled: true}, nil)
	e.StartPunch()

	for _, b := range []byte("AB\rC") {
		require.True(t, e.Type(b))
	}
	ev := waitFor(t, e, processed(Keyboard, '\r'))
	assert.True(t, ev.Changed)
	waitFor(t, e, processed(Keyboard, 'C'))
	assert.Equal(t, "AB\nC", e.AllText())
	row, col := e.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 1, col)
	assert.Equal(t, []byte("AB\rC"), e.PunchedTape(), "only typed bytes are punched")
}

func TestLocalCarriageReturnWithoutLineFeed(t *testing.T) {
	e, _ := newTestEngine(t, modes.Flags{PrinterEnabled: true},
		func(o *Options) { o.LocalLineFeed = false })

	for _, b := range []byte("AB\rC") {
		require.True(t, e.Type(b))
	}
	waitFor(t, e, processed(Keyboard, 'C'))
	assert.Equal(t, "CB", e.AllText())
	row, col := e.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 1, col)
}

func TestPunchIndependentOfPrinter(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true}, nil)
	e.StartPunch()

	_, err := host.Write([]byte("OK\r"))
	require.NoError(t, err)
	waitFor(t, e, processed(Host, '\r'))
	assert.Equal(t, "", e.AllText(), "printer is off")
	assert.Equal(t, []byte("OK\r"), e.PunchedTape())

	e.StopPunch()
	_, err = host.Write([]byte("!"))
	require.NoError(t, err)
	ev := waitFor(t, e, processed(Host, '!'))
	assert.False(t, ev.Punched)
	assert.Equal(t, []byte("OK\r"), e.PunchedTape())
}

func TestBellIsReportedWithPrinterOn(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true, PrinterEnabled: true}, nil)
	_, err := host.Write([]byte{decoder.BEL})
	require.NoError(t, err)
	ev := waitFor(t, e, processed(Host, decoder.BEL))
	assert.Equal(t, decoder.Bell, ev.Decoded.Kind)
	assert.False(t, ev.Changed)
}

func TestBellIsReportedWithPrinterOff(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true}, nil)
	_, err := host.Write([]byte{decoder.BEL, 'A'})
	require.NoError(t, err)
	ev := waitFor(t, e, processed(Host, decoder.BEL))
	assert.Equal(t, decoder.Bell, ev.Decoded.Kind)
	assert.False(t, ev.Printed)
	assert.False(t, ev.Changed)

	ev = waitFor(t, e, processed(Host, 'A'))
	assert.Equal(t, decoder.PrintChar, ev.Decoded.Kind)
	assert.False(t, ev.Printed)
	assert.Equal(t, "", e.AllText())
}

func TestTapeReaderFeedsLocalPrinter(t *testing.T) {
	e, _ := newTestEngine(t, modes.Flags{PrinterEnabled: true}, nil)
	e.LoadTape([]byte("AB\rC"))
	e.StartReader()

	waitFor(t, e, processed(Reader, 'C'))
	assert.Equal(t, "AB\nC", e.AllText())
	assert.Equal(t, "B", e.Text(document.Span{StartCol: 1, EndCol: 1}))
	assert.True(t, e.ReaderStatus().Exhausted())
}

func TestTapeReaderRunsOut(t *testing.T) {
	e, _ := newTestEngine(t, modes.Flags{PrinterEnabled: true}, nil)
	e.LoadTape([]byte("END"))
	e.StartReader()
	waitFor(t, e, func(ev Event) bool { return ev.Kind == ReaderIdle })
	assert.Equal(t, 3, e.ReaderStatus().Position)
}

func TestTapeReaderToHost(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true, PrinterEnabled: true}, nil)
	e.LoadTape([]byte("RUN\r"))
	e.StartReader()
	assert.Equal(t, []byte("RUN\r"), readHost(t, host, 4))
}

func TestTapeReaderStop(t *testing.T) {
	e, _ := newTestEngine(t, modes.Flags{PrinterEnabled: true, ThrottleEnabled: true},
		func(o *Options) { o.SendRate = 20 })
	e.LoadTape([]byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	e.StartReader()
	waitFor(t, e, processed(Reader, 'B'))
	e.StopReader()
	time.Sleep(200 * time.Millisecond)

	pos := e.ReaderStatus().Position
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, pos, e.ReaderStatus().Position)
	assert.Less(t, pos, 26)
}

func TestThrottleToggleReleasesWaitingByte(t *testing.T) {
	e, _ := newTestEngine(t, modes.Flags{PrinterEnabled: true, ThrottleEnabled: true},
		func(o *Options) { o.SendRate = 1 })

	require.True(t, e.Type('a'))
	require.True(t, e.Type('b'))
	waitFor(t, e, processed(Keyboard, 'a'))

	// 'b' is now waiting for a slot a second away
	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	f := e.ToggleThrottle()
	assert.False(t, f.ThrottleEnabled)
	waitFor(t, e, processed(Keyboard, 'b'))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, "ab", e.AllText())
}

func TestDisconnectDropsLineBytes(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true, PrinterEnabled: true}, nil)
	e.StartPunch()
	require.True(t, e.Connected())

	host.Close()
	ev := waitFor(t, e, func(ev Event) bool { return ev.Kind == Disconnected })
	assert.Error(t, ev.Err)
	assert.False(t, e.Connected())

	require.True(t, e.Type('Q'))
	waitFor(t, e, func(ev Event) bool { return ev.Kind == Dropped && ev.Raw == 'Q' })
	assert.Empty(t, e.PunchedTape())
	assert.ErrorIs(t, e.SendCR(), ErrDisconnected)
}

func TestReattach(t *testing.T) {
	e, _ := newTestEngine(t, modes.Flags{LineMode: true, PrinterEnabled: true}, nil)
	ours, host := net.Pipe()
	defer host.Close()
	e.Attach(pipeTransport{ours})
	waitFor(t, e, func(ev Event) bool { return ev.Kind == Connected })

	require.NoError(t, e.SendCR())
	assert.Equal(t, []byte{decoder.CR}, readHost(t, host, 1))
	assert.Equal(t, "pipe", e.LineInfo())

	e.Detach()
	assert.False(t, e.Connected())
	assert.Empty(t, e.LineInfo())
}

func TestDetachStopsThrottledReceive(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true, PrinterEnabled: true, ThrottleEnabled: true},
		func(o *Options) { o.ReceiveRate = 10 })

	go host.Write([]byte("ABCDEFGHIJ"))
	waitFor(t, e, processed(Host, 'A'))
	e.Detach()
	text := e.AllText()

	quiet := time.After(500 * time.Millisecond)
	for {
		select {
		case ev := <-e.Events():
			assert.False(t, ev.Kind == Processed && ev.Source == Host,
				"byte %q processed after detach", ev.Raw)
		case <-quiet:
			assert.Equal(t, text, e.AllText())
			assert.Less(t, len(text), 10)
			return
		}
	}
}

func TestKeyboardParityAndCase(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true, PrinterEnabled: true},
		func(o *Options) {
			o.KeyboardParity = ParityMark
			o.UppercaseOnly = true
		})
	require.True(t, e.Type('a'))
	assert.Equal(t, []byte{'A' | 0x80}, readHost(t, host, 1))
}

func TestPaste(t *testing.T) {
	e, host := newTestEngine(t, modes.Flags{LineMode: true, PrinterEnabled: true}, nil)
	require.NoError(t, e.Paste(context.Background(), "10 GOTO 10\n20 END\r\n"))
	assert.Equal(t, []byte("10 GOTO 10\r20 END\r"), readHost(t, host, 18))
}

func TestToggleEvents(t *testing.T) {
	e, _ := newTestEngine(t, modes.Flags{}, nil)
	e.ToggleMute()
	ev := waitFor(t, e, func(ev Event) bool { return ev.Kind == FlagsChanged })
	assert.True(t, ev.Flags.Muted)
	e.ToggleLid()
	e.ToggleLineMode()
	f := e.Flags()
	assert.True(t, f.LidOpen)
	assert.True(t, f.LineMode)
}

func TestSavePunch(t *testing.T) {
	e, _ := newTestEngine(t, modes.Flags{PrinterEnabled: true}, nil)
	e.StartPunch()
	assert.True(t, e.PunchEngaged())
	require.True(t, e.Type('P'))
	waitFor(t, e, processed(Keyboard, 'P'))

	path := filepath.Join(t.TempDir(), "punch.tape")
	require.NoError(t, e.SavePunch(path, tape.Overwrite))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("P"), data)

	e.ClearPunch()
	assert.Empty(t, e.PunchedTape())
}

func TestParity(t *testing.T) {
	tests := []struct {
		parity Parity
		in     byte
		want   byte
	}{
		{ParitySpace, 'A' | 0x80, 'A'},
		{ParityMark, 'A', 'A' | 0x80},
		{ParityEven, 'A', 'A'},        // 0x41 has two bits set
		{ParityEven, 'C', 'C' | 0x80}, // 0x43 has three
		{ParityOdd, 'A', 'A' | 0x80},
		{ParityOdd, 'C', 'C'},
	}
	for _, tt := range tests {
		t.Run(tt.parity.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.parity.Apply(tt.in))
		})
	}

	p, err := ParseParity("EVEN")
	require.NoError(t, err)
	assert.Equal(t, ParityEven, p)
	_, err = ParseParity("bogus")
	assert.Error(t, err)
}

func TestParityString(t *testing.T) {
	assert.Equal(t, "odd", ParityOdd.String())
	assert.Equal(t, "parity(7)", Parity(7).String())
	assert.Equal(t, "parity(-1)", Parity(-1).String())
}
