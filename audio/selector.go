// selector.go

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

// Package audio decides which teleprinter sounds should be heard and when:
// a continuous loop chosen from recent printing activity, plus one-shot
// effects such as the bell. Producing the actual sound is left to a Player.
package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/asr33emu/asr33g/decoder"
	"github.com/asr33emu/asr33g/engine"
	"github.com/asr33emu/asr33g/modes"
)

// Loop names a continuously playing sound.
type Loop string

const (
	LoopNone       Loop = ""
	LoopChars      Loop = "print-chars"
	LoopSpaces     Loop = "print-spaces"
	LoopHum        Loop = "hum"
	LoopTapeReader Loop = "tape-reader"
)

// Effect names a one-shot sound.
type Effect string

const (
	EffectKey      Effect = "key"
	EffectBell     Effect = "bell"
	EffectCR       Effect = "cr"
	EffectPlaten   Effect = "platen"
	EffectMotorOn  Effect = "motor-on"
	EffectMotorOff Effect = "motor-off"
	EffectLid      Effect = "lid"
)

const (
	InactivityTimeout = 200 * time.Millisecond
	UpdateInterval    = 50 * time.Millisecond
	maxEffects        = 4
	defaultPlayTime   = 500 * time.Millisecond
)

var playTimes = map[Effect]time.Duration{
	EffectKey:      100 * time.Millisecond,
	EffectBell:     500 * time.Millisecond,
	EffectCR:       150 * time.Millisecond,
	EffectPlaten:   100 * time.Millisecond,
	EffectMotorOn:  1500 * time.Millisecond,
	EffectMotorOff: 400 * time.Millisecond,
	EffectLid:      250 * time.Millisecond,
}

// PlayTime is how long an effect is allowed to sound.
func PlayTime(e Effect) time.Duration {
	if d, ok := playTimes[e]; ok {
		return d
	}
	return defaultPlayTime
}

// Selector is the sound state machine. It is safe for concurrent use.
type Selector struct {
	mutex  sync.Mutex
	player Player
	log    *slog.Logger
	now    func() time.Time

	state      Loop
	lastEvent  time.Time
	lidUp      bool
	muted      bool
	readerOn   bool
	effects    []Effect
	effectDone time.Time
}

// NewSelector starts in the hum state with the lid and mute state taken
// from flags.
func NewSelector(p Player, flags modes.Flags, log *slog.Logger) *Selector {
	if log == nil {
		log = slog.Default()
	}
	s := &Selector{
		player: p,
		log:    log.With("component", "audio"),
		now:    time.Now,
		lidUp:  flags.LidOpen,
		muted:  flags.Muted,
	}
	s.lastEvent = s.now()
	p.SetMuted(s.muted)
	s.setLoop(LoopHum)
	return s
}

func (s *Selector) prefix() string {
	if s.lidUp {
		return "up-"
	}
	return "down-"
}

// SoundName is the sound file stem for a loop or effect under the current
// lid position, e.g. "up-bell".
func (s *Selector) SoundName(name string) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.prefix() + name
}

func (s *Selector) setLoop(l Loop) {
	if s.state == l {
		return
	}
	s.state = l
	s.player.Loop(s.prefix() + string(l))
}

// State returns the current continuous loop.
func (s *Selector) State() Loop {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Character reacts to one byte reaching the print head.
func (s *Selector) Character(ch byte) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastEvent = s.now()
	switch {
	case ch == decoder.CR:
		s.queue(EffectCR)
	case ch == decoder.LF:
		s.queue(EffectPlaten)
	case ch == decoder.BEL:
		s.queue(EffectBell)
	case ch <= ' ' || ch > '~':
		s.setLoop(LoopSpaces)
	default:
		s.setLoop(LoopChars)
	}
}

// Play queues a one-shot effect.
func (s *Selector) Play(e Effect) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastEvent = s.now()
	s.queue(e)
}

// queue drops effects once maxEffects are pending, then starts the next
// one if the effect channel is free.
func (s *Selector) queue(e Effect) {
	if len(s.effects) < maxEffects {
		s.effects = append(s.effects, e)
	}
	s.next()
}

func (s *Selector) next() {
	now := s.now()
	if len(s.effects) == 0 || now.Before(s.effectDone) {
		return
	}
	e := s.effects[0]
	s.effects = s.effects[1:]
	d := PlayTime(e)
	s.effectDone = now.Add(d)
	s.player.Effect(s.prefix()+string(e), d)
}

// Pending returns the number of queued effects not yet started.
func (s *Selector) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.effects)
}

// SetMuted silences or restores every sound.
func (s *Selector) SetMuted(muted bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if muted == s.muted {
		return
	}
	s.muted = muted
	s.player.SetMuted(muted)
}

// SetLid switches to the other set of recordings, playing the lid sound
// when the position actually changes.
func (s *Selector) SetLid(up bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if up == s.lidUp {
		return
	}
	s.lidUp = up
	// restart the loops with the new recordings
	s.player.Loop(s.prefix() + string(s.state))
	if s.readerOn {
		s.player.TapeReader(s.prefix()+string(LoopTapeReader), true)
	}
	s.queue(EffectLid)
}

// TapeReader runs the reader sound alongside the main loop.
func (s *Selector) TapeReader(running bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if running == s.readerOn {
		return
	}
	s.readerOn = running
	s.player.TapeReader(s.prefix()+string(LoopTapeReader), running)
}

// Tick falls back to the hum after a pause in printing and starts any
// effect waiting for the effect channel.
func (s *Selector) Tick() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.state != LoopHum && s.now().Sub(s.lastEvent) >= InactivityTimeout {
		s.setLoop(LoopHum)
	}
	s.next()
}

// Handle maps an engine notification onto sounds.
func (s *Selector) Handle(ev engine.Event) {
	switch ev.Kind {
	case engine.Processed:
		if ev.Source == engine.Keyboard {
			s.Play(EffectKey)
		}
		if ev.Source == engine.Reader {
			s.TapeReader(true)
		}
		s.decoded(ev.Decoded, ev.Printed)
	case engine.ReaderIdle:
		s.TapeReader(false)
	case engine.FlagsChanged:
		s.SetMuted(ev.Flags.Muted)
		s.SetLid(ev.Flags.LidOpen)
	}
}

// decoded sounds one decoded byte. The bell rings with the printer off;
// carriage and typebox sounds need the printer.
func (s *Selector) decoded(d decoder.Event, printed bool) {
	switch d.Kind {
	case decoder.Bell:
		s.Character(decoder.BEL)
	case decoder.CarriageReturn:
		if printed {
			s.Character(decoder.CR)
		}
	case decoder.LineFeed:
		if printed {
			s.Character(decoder.LF)
		}
	case decoder.PrintChar:
		if printed {
			s.Character(d.Char)
		}
	}
}

// Run feeds events into the selector until ctx ends, then plays the motor
// off sound. The motor on sound is played at once.
func (s *Selector) Run(ctx context.Context, events <-chan engine.Event) {
	s.Play(EffectMotorOn)
	ticker := time.NewTicker(UpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.mutex.Lock()
			s.effects = nil
			s.effectDone = time.Time{}
			s.queue(EffectMotorOff)
			s.mutex.Unlock()
			s.log.Debug("sound selector stopped")
			return
		case ev := <-events:
			s.Handle(ev)
		case <-ticker.C:
			s.Tick()
		}
	}
}
