// panel.go

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

// buildPanel is the row of switches under the paper, one per control.
func buildPanel() *gtk.HBox {
	hbox := gtk.NewHBox(true, 2)
	for i, c := range console.Controls {
		apply := c.Apply
		but := gtk.NewButtonWithLabel(fmt.Sprintf("%s (F%d)", c.Label, i+1))
		but.SetTooltipText(c.Help)
		but.SetCanFocus(false)
		but.Clicked(func() {
			apply(sess.Engine)
			markDirty()
		})
		hbox.PackStart(but, true, true, 0)
	}
	return hbox
}
