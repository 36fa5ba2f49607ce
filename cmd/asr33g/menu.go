// menu.go

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
	"fmt"

	"github.com/mattn/go-gtk/gtk"

	"github.com/asr33emu/asr33g/console"
)

// extraKeys follow the panel controls on the function keys.
var extraKeys = []func(){fileLoadTape, fileSavePunchDefault, punchClear, lineReconnect, fileQuit}

func menuItem(menu *gtk.Menu, label string, action func()) *gtk.MenuItem {
	item := gtk.NewMenuItemWithLabel(label)
	item.Connect("activate", action)
	menu.Append(item)
	return item
}

func subMenu(menuBar *gtk.MenuBar, label string) *gtk.Menu {
	item := gtk.NewMenuItemWithLabel(label)
	menuBar.Append(item)
	menu := gtk.NewMenu()
	item.SetSubmenu(menu)
	return menu
}

func buildMenu() *gtk.MenuBar {
	menuBar := gtk.NewMenuBar()

	menu := subMenu(menuBar, "File")
	menuItem(menu, "Load Tape... (F8)", fileLoadTape)
	menuItem(menu, "Save Punched Tape (F9)", fileSavePunchDefault)
	menuItem(menu, "Save Punched Tape As...", fileSavePunchAs)
	menu.Append(gtk.NewSeparatorMenuItem())
	menuItem(menu, "Quit (F12)", fileQuit)

	menu = subMenu(menuBar, "Edit")
	menuItem(menu, "Copy", editCopy)
	menuItem(menu, "Copy All", editCopyAll)
	menuItem(menu, "Paste", editPaste)

	menu = subMenu(menuBar, "Teletype")
	for i, c := range console.Controls {
		apply := c.Apply
		menuItem(menu, fmt.Sprintf("%s (F%d)", c.Label, i+1), func() {
			apply(sess.Engine)
			markDirty()
		})
	}
	menu.Append(gtk.NewSeparatorMenuItem())
	menuItem(menu, "Clear Punch (F10)", punchClear)

	menu = subMenu(menuBar, "Line")
	menuItem(menu, "Reconnect (F11)", lineReconnect)
	menuItem(menu, "Disconnect", lineDisconnect)

	menu = subMenu(menuBar, "Help")
	menuItem(menu, "Keys", helpKeys)
	menuItem(menu, "About", helpAbout)

	return menuBar
}
