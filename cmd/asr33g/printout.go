// printout.go

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
	"strings"

	"github.com/mattn/go-gtk/gtk"
	"github.com/mattn/go-gtk/pango"

	"github.com/asr33emu/asr33g/console"
	"github.com/asr33emu/asr33g/document"
)

const defaultFont = "Monospace"

var (
	printout    *gtk.TextView
	lastPrinted string
)

// buildPrintout is the paper: a read-only text view holding the whole roll.
func buildPrintout() *gtk.ScrolledWindow {
	printout = gtk.NewTextView()
	printout.SetEditable(false)
	printout.SetCursorVisible(false)
	printout.SetWrapMode(gtk.WRAP_NONE)

	t := sess.Config.Terminal.Config
	font := t.FontName
	if font == "" {
		font = defaultFont
	}
	printout.ModifyFont(pango.FontDescriptionFromString(fmt.Sprintf("%s %d", font, t.FontSize)))

	sw := gtk.NewScrolledWindow(nil, nil)
	sw.SetPolicy(gtk.POLICY_AUTOMATIC, gtk.POLICY_ALWAYS)
	sw.Add(printout)
	return sw
}

// updatePrintout shows the roll. Blanks are kept up to the print head so
// the view scrolls with it.
func updatePrintout() {
	t := sess.Config.Terminal.Config
	rows := sess.Engine.Rows(0, t.Rows+t.Scrollback)
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = row.Text()
	}
	if n := len(lines); n > 0 {
		_, col := sess.Engine.Cursor()
		if pad := col - len(lines[n-1]); pad > 0 {
			lines[n-1] += strings.Repeat(" ", pad)
		}
	}
	text := strings.Join(lines, "\n")
	if text == lastPrinted {
		return
	}
	lastPrinted = text
	buffer := printout.GetBuffer()
	buffer.SetText(text)
	var end gtk.TextIter
	buffer.GetEndIter(&end)
	printout.ScrollToIter(&end, 0, false, 0, 0)
}

func updateStatus() {
	noticeMutex.Lock()
	msg := notice
	noticeMutex.Unlock()
	line := console.Snapshot(sess.Engine).String()
	if msg != "" {
		line += "   " + msg
	}
	ctx := statusBar.GetContextId("status")
	statusBar.Pop(ctx)
	statusBar.Push(ctx, line)
}

// selectedSpan maps the text view selection onto the roll. Text view lines
// are roll rows because updatePrintout shows every retained row.
func selectedSpan() (document.Span, bool) {
	var start, end gtk.TextIter
	if !printout.GetBuffer().GetSelectionBounds(&start, &end) {
		return document.Span{}, false
	}
	span := document.Span{
		StartRow: start.GetLine(),
		StartCol: start.GetLineOffset(),
		EndRow:   end.GetLine(),
		EndCol:   end.GetLineOffset() - 1,
	}
	if span.EndCol < 0 {
		if span.EndRow == span.StartRow {
			return document.Span{}, false
		}
		span.EndRow--
		span.EndCol = sess.Engine.Columns() - 1
	}
	return span, true
}
