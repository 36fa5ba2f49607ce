// engine.go

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

// Package engine joins the printer, keyboard, tape reader, tape punch and
// communication line of the teleprinter. Every byte, whatever its source,
// is routed by a single goroutine so the paper, the punch and the mode flags
// always agree on ordering.
package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/asr33emu/asr33g/decoder"
	"github.com/asr33emu/asr33g/document"
	"github.com/asr33emu/asr33g/modes"
	"github.com/asr33emu/asr33g/tape"
	"github.com/asr33emu/asr33g/throttle"
	"github.com/asr33emu/asr33g/transport"
)

const (
	keyBuffSize   = 200
	hostBuffSize  = 2048
	eventBuffSize = 2048
)

// ErrDisconnected is returned by operations that need a communication line.
var ErrDisconnected = errors.New("no communication line attached")

// Options configure a new Engine.
type Options struct {
	Columns    int
	Scrollback int
	Autowrap   bool
	Decoder    decoder.Options

	SendRate    int // characters per second towards the host
	ReceiveRate int // characters per second from the host
	Flags       modes.Flags

	LocalEcho      bool // print typed bytes in Line mode as well
	LocalLineFeed  bool // a CR printed in Local mode also feeds the paper
	KeyboardParity Parity
	UppercaseOnly  bool

	Reader tape.ReaderOptions
	Logger *slog.Logger
}

// DefaultOptions is a 72 column machine in Line mode with the printer on
// and the throttle off.
func DefaultOptions() Options {
	return Options{
		Columns:     document.DefaultColumns,
		Scrollback:  document.DefaultScrollback,
		Autowrap:    true,
		Decoder:     decoder.DefaultOptions(),
		SendRate:    throttle.DefaultRate,
		ReceiveRate: throttle.DefaultRate,
		Flags:       modes.Flags{LineMode: true, PrinterEnabled: true},

		LocalLineFeed: true,
	}
}

type opKind int

const (
	opInbound opKind = iota
	opOutbound
)

type op struct {
	kind   opKind
	source Source
	b      byte
	link   *link // inbound only
}

// link is one attached transport with its own writer. ctx ends when the
// link is closed, so a receiver held back by the throttle lets go at once.
type link struct {
	transport transport.Transport
	out       chan byte
	done      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newLink(parent context.Context, t transport.Transport) *link {
	ctx, cancel := context.WithCancel(parent)
	return &link{
		transport: t,
		out:       make(chan byte, keyBuffSize),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (l *link) close() {
	l.closeOnce.Do(func() {
		l.cancel()
		close(l.done)
		l.transport.Close()
	})
}

// Engine is the teleprinter.
type Engine struct {
	opts Options
	log  *slog.Logger

	grid         *document.Grid
	modes        *modes.Controller
	inDecoder    *decoder.Decoder // used by run only
	outDecoder   *decoder.Decoder // used by run only
	sendThrottle *throttle.Throttle
	recvThrottle *throttle.Throttle
	reader       *tape.Reader
	punch        *tape.Punch

	ops        chan op
	keys       chan byte
	readerWake chan struct{}
	events     chan Event

	mutex sync.Mutex
	link  *link

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// New builds an engine. Nothing moves until Start is called.
func New(opts Options) *Engine {
	if opts.Columns <= 0 {
		opts.Columns = document.DefaultColumns
	}
	if opts.Scrollback <= 0 {
		opts.Scrollback = document.DefaultScrollback
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		opts:         opts,
		log:          log.With("component", "engine"),
		grid:         document.NewGrid(opts.Columns, opts.Scrollback, opts.Autowrap),
		modes:        modes.NewController(opts.Flags),
		inDecoder:    decoder.New(opts.Decoder),
		outDecoder:   decoder.New(opts.Decoder),
		sendThrottle: throttle.New(opts.SendRate, opts.Flags.ThrottleEnabled),
		recvThrottle: throttle.New(opts.ReceiveRate, opts.Flags.ThrottleEnabled),
		reader:       tape.NewReader(opts.Reader),
		punch:        tape.NewPunch(),
		ops:          make(chan op),
		keys:         make(chan byte, keyBuffSize),
		readerWake:   make(chan struct{}, 1),
		events:       make(chan Event, eventBuffSize),
		ctx:          ctx,
		cancel:       cancel,
	}
	return e
}

// Start launches the routing and feeding goroutines. The engine stops
// when ctx ends or Close is called.
func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		e.wg.Add(2)
		go e.run()
		go e.feed()
		go func() {
			select {
			case <-ctx.Done():
				e.Close()
			case <-e.ctx.Done():
			}
		}()
		e.log.Info("engine started", "flags", e.modes.Snapshot().String())
	})
}

// Close detaches any transport and stops all goroutines.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.cancel()
		e.Detach()
		e.wg.Wait()
		e.log.Info("engine stopped")
	})
	return nil
}

// Events returns the notification channel. Events are dropped rather than
// block the engine when nobody keeps up.
func (e *Engine) Events() <-chan Event {
	return e.events
}

func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.log.Debug("event dropped", "kind", ev.Kind.String())
	}
}

// run is the only place where the paper, the punch and the flags meet.
func (e *Engine) run() {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			return
		case o := <-e.ops:
			switch o.kind {
			case opInbound:
				if o.link != e.currentLink() {
					// left over from a line that has since gone
					continue
				}
				e.inbound(o.b)
			case opOutbound:
				e.outbound(o.source, o.b)
			}
		}
	}
}

func (e *Engine) inbound(b byte) {
	flags := e.modes.Snapshot()
	ev := Event{Kind: Processed, Source: Host, Raw: b, Decoded: e.inDecoder.Decode(b)}
	if flags.PrinterEnabled {
		ev.Changed = e.grid.Apply(ev.Decoded)
		ev.Printed = true
	}
	ev.Punched = e.punch.Record(b)
	e.emit(ev)
}

func (e *Engine) outbound(src Source, b byte) {
	flags := e.modes.Snapshot()
	ev := Event{Kind: Processed, Source: src, Raw: b}

	if !flags.LineMode {
		if !flags.PrinterEnabled {
			e.emit(ev)
			return
		}
		e.print(&ev)
		if e.opts.LocalLineFeed && ev.Decoded.Kind == decoder.CarriageReturn {
			e.grid.Apply(decoder.Event{Kind: decoder.LineFeed})
			ev.Changed = true
		}
		ev.Punched = e.punch.Record(b)
		e.emit(ev)
		return
	}

	l := e.currentLink()
	if l == nil {
		e.log.Warn("byte dropped, line is disconnected", "byte", b, "source", src.String())
		e.emit(Event{Kind: Dropped, Source: src, Raw: b})
		return
	}
	select {
	case l.out <- b:
		ev.Transmitted = true
	case <-l.done:
		e.log.Warn("byte dropped, line closed", "byte", b, "source", src.String())
		e.emit(Event{Kind: Dropped, Source: src, Raw: b})
		return
	case <-e.ctx.Done():
		return
	}
	ev.Punched = e.punch.Record(b)
	if e.opts.LocalEcho && flags.PrinterEnabled {
		e.print(&ev)
	}
	e.emit(ev)
}

func (e *Engine) print(ev *Event) {
	ev.Decoded = e.outDecoder.Decode(ev.Raw)
	ev.Changed = e.grid.Apply(ev.Decoded)
	ev.Printed = true
}

// feed merges the keyboard and the tape reader into one outbound stream.
// A pending keystroke always goes before the next tape frame.
func (e *Engine) feed() {
	defer e.wg.Done()
	readerActive := false
	for {
		var (
			b   byte
			src Source
		)
		select {
		case b = <-e.keys:
			src = Keyboard
		case <-e.ctx.Done():
			return
		default:
			if rb, ok := e.reader.NextByte(); ok {
				b, src = rb, Reader
				readerActive = true
				break
			}
			if readerActive {
				readerActive = false
				e.emit(Event{Kind: ReaderIdle})
			}
			select {
			case b = <-e.keys:
				src = Keyboard
			case <-e.readerWake:
				continue
			case <-e.ctx.Done():
				return
			}
		}
		if err := e.sendThrottle.Release(e.ctx); err != nil {
			return
		}
		select {
		case e.ops <- op{kind: opOutbound, source: src, b: b}:
		case <-e.ctx.Done():
			return
		}
	}
}

func (e *Engine) wakeReader() {
	select {
	case e.readerWake <- struct{}{}:
	default:
	}
}

// Type queues one keystroke. Keyboard parity and upper-case folding are
// applied here. It reports false when the keyboard buffer is full.
func (e *Engine) Type(b byte) bool {
	if e.opts.UppercaseOnly && b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	b = e.opts.KeyboardParity.Apply(b)
	select {
	case e.keys <- b:
		return true
	default:
		e.log.Warn("keyboard buffer full", "byte", b)
		return false
	}
}

// Paste types text as a burst of keystrokes, turning line ends into
// carriage returns. It blocks until every byte is queued or ctx ends.
func (e *Engine) Paste(ctx context.Context, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")
	for i := 0; i < len(text); i++ {
		b := text[i]
		if e.opts.UppercaseOnly && b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		b = e.opts.KeyboardParity.Apply(b)
		select {
		case e.keys <- b:
		case <-ctx.Done():
			return ctx.Err()
		case <-e.ctx.Done():
			return e.ctx.Err()
		}
	}
	return nil
}

func (e *Engine) toggled(f modes.Flags) modes.Flags {
	e.log.Debug("flags changed", "flags", f.String())
	e.emit(Event{Kind: FlagsChanged, Flags: f})
	return f
}

func (e *Engine) ToggleLineMode() modes.Flags { return e.toggled(e.modes.ToggleLineMode()) }
func (e *Engine) TogglePrinter() modes.Flags  { return e.toggled(e.modes.TogglePrinter()) }
func (e *Engine) ToggleMute() modes.Flags     { return e.toggled(e.modes.ToggleMute()) }
func (e *Engine) ToggleLid() modes.Flags      { return e.toggled(e.modes.ToggleLid()) }

// ToggleThrottle switches pacing in both directions. Turning it off lets
// any byte waiting in a throttle go at once.
func (e *Engine) ToggleThrottle() modes.Flags {
	f := e.modes.ToggleThrottle()
	e.sendThrottle.SetEnabled(f.ThrottleEnabled)
	e.recvThrottle.SetEnabled(f.ThrottleEnabled)
	return e.toggled(f)
}

func (e *Engine) Flags() modes.Flags {
	return e.modes.Snapshot()
}

// Rows returns copies of rows [from, to).
func (e *Engine) Rows(from, to int) []document.Row {
	return e.grid.Rows(from, to)
}

// Tail returns copies of the last n rows.
func (e *Engine) Tail(n int) []document.Row {
	return e.grid.Tail(n)
}

func (e *Engine) Text(span document.Span) string {
	return e.grid.Text(span)
}

func (e *Engine) AllText() string {
	return e.grid.AllText()
}

func (e *Engine) Cursor() (row, col int) {
	return e.grid.Cursor()
}

func (e *Engine) Columns() int {
	return e.grid.Width()
}

// LoadTape loads a tape image into the reader and rewinds it.
func (e *Engine) LoadTape(data []byte) {
	e.reader.Load(data)
	e.wakeReader()
}

func (e *Engine) LoadTapeFile(path string) error {
	if err := e.reader.LoadFile(path); err != nil {
		return err
	}
	e.wakeReader()
	return nil
}

func (e *Engine) StartReader() {
	e.reader.Engage()
	e.wakeReader()
}

func (e *Engine) StopReader() {
	e.reader.Disengage()
}

func (e *Engine) ReaderStatus() tape.ReaderStatus {
	return e.reader.Status()
}

func (e *Engine) StartPunch() { e.punch.Engage() }
func (e *Engine) StopPunch()  { e.punch.Disengage() }

func (e *Engine) PunchEngaged() bool { return e.punch.Engaged() }

// PunchedTape returns a copy of everything punched since the last clear.
func (e *Engine) PunchedTape() []byte {
	return e.punch.Export()
}

func (e *Engine) ClearPunch() {
	e.punch.Clear()
}

func (e *Engine) SavePunch(path string, mode tape.PunchMode) error {
	return e.punch.WriteFile(path, mode)
}

// Attach connects a communication line, replacing any previous one.
func (e *Engine) Attach(t transport.Transport) {
	e.Detach()
	l := newLink(e.ctx, t)
	e.mutex.Lock()
	e.link = l
	e.mutex.Unlock()

	e.wg.Add(2)
	go e.receive(l)
	go e.write(l)
	e.log.Info("line attached", "transport", t.Info())
	e.emit(Event{Kind: Connected, Info: t.Info()})
}

// Detach closes the current line, if any. No Disconnected event is sent.
func (e *Engine) Detach() {
	e.mutex.Lock()
	l := e.link
	e.link = nil
	e.mutex.Unlock()
	if l != nil {
		l.close()
		e.log.Info("line detached", "transport", l.transport.Info())
	}
}

func (e *Engine) Connected() bool {
	return e.currentLink() != nil
}

// LineInfo describes the attached line, or returns "" when there is none.
func (e *Engine) LineInfo() string {
	if l := e.currentLink(); l != nil {
		return l.transport.Info()
	}
	return ""
}

func (e *Engine) currentLink() *link {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.link
}

// lost drops l after an I/O failure and reports it once.
func (e *Engine) lost(l *link, err error) {
	e.mutex.Lock()
	current := e.link == l
	if current {
		e.link = nil
	}
	e.mutex.Unlock()
	l.close()
	if current {
		e.log.Warn("line lost", "transport", l.transport.Info(), "err", err)
		e.emit(Event{Kind: Disconnected, Err: err})
	}
}

// SendCR sends a carriage return straight down the line, bypassing the
// printer and punch. Used to wake a host at start-up.
func (e *Engine) SendCR() error {
	l := e.currentLink()
	if l == nil {
		return ErrDisconnected
	}
	select {
	case l.out <- decoder.CR:
		return nil
	case <-l.done:
		return ErrDisconnected
	}
}

func (e *Engine) receive(l *link) {
	defer e.wg.Done()
	hostBytes := make([]byte, hostBuffSize)
	for {
		n, err := l.transport.Read(hostBytes)
		for _, b := range hostBytes[:n] {
			if e.recvThrottle.Release(l.ctx) != nil {
				return
			}
			select {
			case e.ops <- op{kind: opInbound, source: Host, b: b, link: l}:
			case <-l.ctx.Done():
				return
			}
		}
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			e.lost(l, err)
			return
		}
	}
}

func (e *Engine) write(l *link) {
	defer e.wg.Done()
	for {
		select {
		case b := <-l.out:
			if _, err := l.transport.Write([]byte{b}); err != nil {
				e.lost(l, err)
				return
			}
		case <-l.done:
			return
		case <-e.ctx.Done():
			return
		}
	}
}
