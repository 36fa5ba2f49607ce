// menuHandlers.go

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
	"strings"

	"github.com/mattn/go-gtk/gdk"
	"github.com/mattn/go-gtk/gtk"

	"github.com/asr33emu/asr33g/console"
)

func errorDialog(msg string) {
	ed := gtk.NewMessageDialog(win, gtk.DIALOG_DESTROY_WITH_PARENT, gtk.MESSAGE_ERROR,
		gtk.BUTTONS_CLOSE, "%s", msg)
	ed.Run()
	ed.Destroy()
}

func infoDialog(msg string) {
	id := gtk.NewMessageDialog(win, gtk.DIALOG_DESTROY_WITH_PARENT, gtk.MESSAGE_INFO,
		gtk.BUTTONS_CLOSE, "%s", msg)
	id.Run()
	id.Destroy()
}

func clipboard() *gtk.Clipboard {
	return gtk.NewClipboardGetForDisplay(gdk.DisplayGetDefault(), gdk.SELECTION_CLIPBOARD)
}

func editCopy() {
	span, ok := selectedSpan()
	if !ok {
		errorDialog("Nothing selected to copy")
		return
	}
	clipboard().SetText(sess.Engine.Text(span))
}

func editCopyAll() {
	clipboard().SetText(sess.Engine.AllText())
}

// editPaste types the clipboard. Typing is paced by the throttle, so it
// carries on in the background.
func editPaste() {
	text := clipboard().WaitForText()
	if len(text) == 0 {
		errorDialog("Nothing in Clipboard to Paste")
		return
	}
	go func() {
		if err := sess.Engine.Paste(appCtx, text); err != nil {
			say("paste stopped: " + err.Error())
		}
	}()
}

func fileLoadTape() {
	fd := gtk.NewFileChooserDialog("ASR33G Tape to load", win, gtk.FILE_CHOOSER_ACTION_OPEN,
		"_Cancel", gtk.RESPONSE_CANCEL, "_Load", gtk.RESPONSE_ACCEPT)
	fd.SetCurrentFolder(sess.TapeDir(false))
	res := fd.Run()
	fileName := fd.GetFilename()
	fd.Destroy()
	if res != gtk.RESPONSE_ACCEPT {
		return
	}
	if err := sess.Engine.LoadTapeFile(fileName); err != nil {
		errorDialog("Could not load tape - " + err.Error())
		return
	}
	say("tape loaded, press READER to start")
}

func fileSavePunchDefault() {
	savePunch("")
}

func fileSavePunchAs() {
	fd := gtk.NewFileChooserDialog("ASR33G Save punched tape", win, gtk.FILE_CHOOSER_ACTION_SAVE,
		"_Cancel", gtk.RESPONSE_CANCEL, "_Save", gtk.RESPONSE_ACCEPT)
	fd.SetCurrentFolder(sess.TapeDir(true))
	res := fd.Run()
	fileName := fd.GetFilename()
	fd.Destroy()
	if res == gtk.RESPONSE_ACCEPT {
		savePunch(fileName)
	}
}

func savePunch(path string) {
	if err := sess.SavePunch(path); err != nil {
		errorDialog("Could not save punched tape - " + err.Error())
		return
	}
	if path == "" {
		path = sess.PunchFile()
	}
	say("punched tape saved to " + path)
}

func punchClear() {
	sess.Engine.ClearPunch()
	say("punch cleared")
}

func lineReconnect() {
	if err := sess.Connect(); err != nil {
		errorDialog(err.Error())
	}
}

func lineDisconnect() {
	sess.Engine.Detach()
	win.SetTitle(appTitle)
	say("line closed")
}

func fileQuit() {
	closed = true
}

func helpKeys() {
	infoDialog(strings.Join(append(console.Help(),
		"F8  load tape", "F9  save punched tape", "F10 clear punch", "F11 reconnect", "F12 quit"), "\n"))
}

func helpAbout() {
	ad := gtk.NewAboutDialog()
	ad.SetProgramName(appTitle)
	ad.SetComments(appComment)
	ad.SetAuthors(appAuthors)
	ad.SetVersion(appVersion)
	ad.SetCopyright(appCopyright)
	ad.SetWebsite(appWebsite)
	ad.Run()
	ad.Destroy()
}
