// ui.go

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

package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"

	"github.com/asr33emu/asr33g/console"
	"github.com/asr33emu/asr33g/engine"
	"github.com/asr33emu/asr33g/session"
)

const (
	paperView  = "paper"
	statusView = "status"
	promptView = "prompt"

	redrawInterval = 50 * time.Millisecond
	keysHelp       = "F1-F7 panel  F8 load tape  F9 save punch  F10 clear punch  F11 reconnect  F12 quit"
)

type tui struct {
	g *gocui.Gui
	s *session.Session

	mutex  sync.Mutex
	notice string
}

func run(ctx context.Context, s *session.Session) error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return fmt.Errorf("starting text UI: %w", err)
	}
	defer g.Close()
	g.Cursor = true

	t := &tui{g: g, s: s}
	g.SetManagerFunc(t.layout)
	if err := t.keybindings(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go t.follow(ctx)

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (t *tui) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	if v, err := g.SetView(paperView, 0, 0, maxX-1, maxY-4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "ASR-33"
		v.Editable = true
		v.Editor = t
		if _, err := g.SetCurrentView(paperView); err != nil {
			return err
		}
	}
	if v, err := g.SetView(statusView, 0, maxY-3, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = keysHelp
	}
	return nil
}

// Edit sends keystrokes typed on the paper to the keyboard.
func (t *tui) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	if ch == 0 {
		if key > 0x7f {
			return
		}
		ch = rune(key)
	}
	if b, ok := console.KeyByte(ch, false); ok {
		if !t.s.Engine.Type(b) {
			t.say("keyboard buffer full")
		}
	}
}

func (t *tui) keybindings() error {
	fkeys := []gocui.Key{gocui.KeyF1, gocui.KeyF2, gocui.KeyF3, gocui.KeyF4, gocui.KeyF5, gocui.KeyF6, gocui.KeyF7}
	for i, c := range console.Controls {
		if i >= len(fkeys) {
			break
		}
		apply := c.Apply
		if err := t.g.SetKeybinding("", fkeys[i], gocui.ModNone, func(*gocui.Gui, *gocui.View) error {
			apply(t.s.Engine)
			return nil
		}); err != nil {
			return err
		}
	}
	bindings := []struct {
		view    string
		key     gocui.Key
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{"", gocui.KeyF8, t.openPrompt},
		{"", gocui.KeyF9, t.savePunch},
		{"", gocui.KeyF10, t.clearPunch},
		{"", gocui.KeyF11, t.reconnect},
		{"", gocui.KeyF12, quit},
		{promptView, gocui.KeyEnter, t.loadTape},
		{promptView, gocui.KeyEsc, t.closePrompt},
	}
	for _, b := range bindings {
		if err := t.g.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}
	return nil
}

func quit(*gocui.Gui, *gocui.View) error {
	return gocui.ErrQuit
}

func (t *tui) openPrompt(g *gocui.Gui, _ *gocui.View) error {
	maxX, maxY := g.Size()
	v, err := g.SetView(promptView, maxX/6, maxY/2-1, maxX*5/6, maxY/2+1)
	if err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Tape image to load (Enter to load, Esc to cancel)"
		v.Editable = true
		fmt.Fprint(v, t.s.TapeDir(false)+"/")
		v.SetCursor(len(t.s.TapeDir(false))+1, 0)
	}
	_, err = g.SetCurrentView(promptView)
	return err
}

func (t *tui) closePrompt(g *gocui.Gui, _ *gocui.View) error {
	if err := g.DeleteView(promptView); err != nil {
		return err
	}
	_, err := g.SetCurrentView(paperView)
	return err
}

func (t *tui) loadTape(g *gocui.Gui, v *gocui.View) error {
	path := strings.TrimSpace(v.Buffer())
	if err := t.s.Engine.LoadTapeFile(path); err != nil {
		t.say(err.Error())
	} else {
		t.say("loaded " + path)
	}
	return t.closePrompt(g, v)
}

func (t *tui) savePunch(*gocui.Gui, *gocui.View) error {
	if err := t.s.SavePunch(""); err != nil {
		t.say(err.Error())
		return nil
	}
	t.say("punched tape saved to " + t.s.PunchFile())
	return nil
}

func (t *tui) clearPunch(*gocui.Gui, *gocui.View) error {
	t.s.Engine.ClearPunch()
	t.say("punch cleared")
	return nil
}

func (t *tui) reconnect(*gocui.Gui, *gocui.View) error {
	if err := t.s.Connect(); err != nil {
		t.say(err.Error())
	}
	return nil
}

func (t *tui) say(msg string) {
	t.mutex.Lock()
	t.notice = msg
	t.mutex.Unlock()
}

// follow redraws after engine events, at most once per redrawInterval.
func (t *tui) follow(ctx context.Context) {
	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()
	dirty := true
	for {
		select {
		case <-ctx.Done():
			t.g.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
			return
		case ev := <-t.s.Updates():
			dirty = true
			t.note(ev)
		case <-ticker.C:
			if dirty {
				dirty = false
				t.g.Update(t.draw)
			}
		}
	}
}

func (t *tui) note(ev engine.Event) {
	switch ev.Kind {
	case engine.Connected:
		t.say("connected to " + ev.Info)
	case engine.Disconnected:
		t.say(fmt.Sprintf("line lost: %v (F11 to reconnect)", ev.Err))
	case engine.Dropped:
		t.say("not connected, keystroke dropped")
	case engine.ReaderIdle:
		t.say("tape reader idle")
	}
}

func (t *tui) draw(g *gocui.Gui) error {
	paper, err := g.View(paperView)
	if err != nil {
		return err
	}
	_, height := paper.Size()
	rows := t.s.Engine.Tail(height)
	paper.Clear()
	for i, row := range rows {
		if i > 0 {
			fmt.Fprintln(paper)
		}
		fmt.Fprint(paper, row.Text())
	}
	_, col := t.s.Engine.Cursor()
	if len(rows) > 0 && g.CurrentView() == paper {
		paper.SetCursor(col, len(rows)-1)
	}

	status, err := g.View(statusView)
	if err != nil {
		return err
	}
	status.Clear()
	t.mutex.Lock()
	notice := t.notice
	t.mutex.Unlock()
	line := console.Snapshot(t.s.Engine).String()
	if notice != "" {
		line += "  " + notice
	}
	fmt.Fprint(status, line)
	return nil
}
