// keyboard.go

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
	"unsafe"

	"github.com/mattn/go-gtk/gdk"
	"github.com/mattn/go-gtk/glib"
	"github.com/mattn/go-gtk/gtk"

	"github.com/asr33emu/asr33g/console"
	"github.com/asr33emu/asr33g/decoder"
)

const escape = 0x1b

var functionKeys = []uint32{
	gdk.KEY_F1, gdk.KEY_F2, gdk.KEY_F3, gdk.KEY_F4, gdk.KEY_F5, gdk.KEY_F6,
	gdk.KEY_F7, gdk.KEY_F8, gdk.KEY_F9, gdk.KEY_F10, gdk.KEY_F11, gdk.KEY_F12,
}

func connectKeyboard(win *gtk.Window) {
	win.Connect("key-press-event", func(ctx *glib.CallbackContext) bool {
		arg := ctx.Args(0)
		kev := *(**gdk.EventKey)(unsafe.Pointer(&arg))
		return keyPressed(uint32(kev.Keyval), uint32(kev.State))
	})
}

// keyPressed handles one key, reporting whether it was used.
func keyPressed(keyval, state uint32) bool {
	for i, fk := range functionKeys {
		if keyval == fk {
			switch {
			case i < len(console.Controls):
				console.Controls[i].Apply(sess.Engine)
			case i-len(console.Controls) < len(extraKeys):
				extraKeys[i-len(console.Controls)]()
			default:
				return false
			}
			markDirty()
			return true
		}
	}
	b, ok := keyByte(keyval, state&uint32(gdk.CONTROL_MASK) != 0)
	if !ok {
		return false
	}
	if !sess.Engine.Type(b) {
		say("keyboard buffer full")
	}
	return true
}

func keyByte(keyval uint32, ctrl bool) (byte, bool) {
	switch keyval {
	case gdk.KEY_Return, gdk.KEY_KP_Enter:
		return decoder.CR, true
	case gdk.KEY_BackSpace, gdk.KEY_Delete:
		return decoder.DEL, true
	case gdk.KEY_Tab:
		return '\t', true
	case gdk.KEY_Escape:
		return escape, true
	}
	return console.KeyByte(rune(keyval), ctrl)
}
