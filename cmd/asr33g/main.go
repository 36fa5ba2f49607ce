// main.go

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

// Command asr33g is the ASR-33 teleprinter in a GTK window.
package main

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/mattn/go-gtk/gtk"

	"github.com/asr33emu/asr33g/cli"
	"github.com/asr33emu/asr33g/engine"
	"github.com/asr33emu/asr33g/session"
)

const (
	appTitle     = "ASR33G"
	appComment   = "A Teletype Model 33 ASR emulator"
	appCopyright = "Copyright (C) 2017  Steve Merrony"
	appVersion   = "0.3"
	appWebsite   = "https://github.com/asr33emu/asr33g"

	redrawInterval = 50 * time.Millisecond
)

var appAuthors = []string{"Steve Merrony"}

var (
	sess         *session.Session
	appCtx       context.Context
	mainFuncChan = make(chan func(), 8)

	win       *gtk.Window
	statusBar *gtk.Statusbar
	closed    bool

	noticeMutex sync.Mutex
	notice      string
	dirty       = make(chan struct{}, 1)
)

func init() {
	// GTK must only be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	cli.Execute(cli.NewRootCommand("asr33g", "ASR-33 teleprinter emulator", "gtk", run))
}

func run(ctx context.Context, s *session.Session) error {
	sess, appCtx = s, ctx
	gtk.Init(nil)
	win = gtk.NewWindow(gtk.WINDOW_TOPLEVEL)
	setupWindow(win)
	win.ShowAll()
	go follow(ctx)

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()
	for {
		select {
		case f := <-mainFuncChan:
			f()
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			select {
			case <-dirty:
				updatePrintout()
				updateStatus()
			default:
			}
		default:
			for gtk.EventsPending() {
				gtk.MainIterationDo(false)
			}
			if closed {
				return nil
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// doOnMainThread runs f on the GTK thread and waits for it.
func doOnMainThread(f func()) {
	done := make(chan struct{})
	select {
	case mainFuncChan <- func() {
		f()
		close(done)
	}:
		<-done
	case <-appCtx.Done():
	}
}

func setupWindow(win *gtk.Window) {
	win.SetTitle(appTitle)
	win.Connect("destroy", func() { closed = true })
	win.SetDefaultSize(800, 600)
	connectKeyboard(win)
	vbox := gtk.NewVBox(false, 1)
	vbox.PackStart(buildMenu(), false, false, 0)
	vbox.PackStart(buildPrintout(), true, true, 1)
	vbox.PackStart(buildPanel(), false, false, 1)
	statusBar = gtk.NewStatusbar()
	vbox.PackEnd(statusBar, false, false, 0)
	win.Add(vbox)
	markDirty()
}

func markDirty() {
	select {
	case dirty <- struct{}{}:
	default:
	}
}

// follow turns engine events into redraw requests and status notices.
func follow(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sess.Updates():
			switch ev.Kind {
			case engine.Connected:
				say("connected to " + ev.Info)
				setTitle(appTitle + " - " + ev.Info)
			case engine.Disconnected:
				say("line lost: " + errText(ev.Err))
				setTitle(appTitle)
			case engine.Dropped:
				say("not connected, keystroke dropped")
			case engine.ReaderIdle:
				say("tape reader idle")
			}
			markDirty()
		}
	}
}

func setTitle(title string) {
	doOnMainThread(func() { win.SetTitle(title) })
}

func say(msg string) {
	noticeMutex.Lock()
	notice = msg
	noticeMutex.Unlock()
	markDirty()
}

func errText(err error) string {
	if err == nil {
		return "closed"
	}
	return err.Error()
}
