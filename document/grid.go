// grid.go

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

// Package document holds the printed paper: a bounded roll of fixed-width
// rows whose cells remember every character struck on them.
package document

import (
	"strings"
	"sync"

	"github.com/asr33emu/asr33g/decoder"
)

const (
	DefaultColumns    = 72
	DefaultRows       = 24
	DefaultScrollback = 200
)

// Row is an immutable copy of one printed line.
type Row struct {
	Number int // logical line number, keeps increasing after eviction
	Cells  []Cell
}

// Text returns the display characters of the row with trailing blanks removed.
func (r Row) Text() string {
	var sb strings.Builder
	for i := range r.Cells {
		sb.WriteByte(r.Cells[i].Display())
	}
	return strings.TrimRight(sb.String(), " ")
}

// Span selects printed text for copying. Rows are indices into the retained
// rows (0 is the oldest), columns are inclusive.
type Span struct {
	StartRow, StartCol, EndRow, EndCol int
}

type line struct {
	number int
	cells  []Cell
}

// Grid is the paper roll. The print position is always on the newest row;
// a teleprinter has no way to move the paper backwards.
type Grid struct {
	rwMutex   sync.RWMutex
	width     int
	capacity  int
	autowrap  bool
	lines     []line // circular buffer
	firstLine int
	count     int
	cursorCol int
	nextLine  int
}

// NewGrid returns a roll holding one empty row. width and capacity are
// forced to at least 1.
func NewGrid(width, capacity int, autowrap bool) *Grid {
	if width < 1 {
		width = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	g := &Grid{
		width:    width,
		capacity: capacity,
		autowrap: autowrap,
		lines:    make([]line, capacity),
	}
	g.newLine()
	return g
}

func (g *Grid) Width() int    { return g.width }
func (g *Grid) Capacity() int { return g.capacity }

// Len returns the number of rows currently retained.
func (g *Grid) Len() int {
	g.rwMutex.RLock()
	defer g.rwMutex.RUnlock()
	return g.count
}

// Cursor returns the print position as a retained-row index and column.
func (g *Grid) Cursor() (row, col int) {
	g.rwMutex.RLock()
	defer g.rwMutex.RUnlock()
	return g.count - 1, g.cursorCol
}

// newLine appends a blank row, evicting the oldest when the roll is full.
func (g *Grid) newLine() {
	var ix int
	if g.count < g.capacity {
		ix = (g.firstLine + g.count) % g.capacity
		g.count++
	} else {
		ix = g.firstLine
		g.firstLine++
		if g.firstLine == g.capacity {
			g.firstLine = 0
		}
	}
	cells := g.lines[ix].cells
	if cells == nil {
		cells = make([]Cell, g.width)
	} else {
		for c := range cells {
			cells[c].clear()
		}
	}
	g.lines[ix] = line{number: g.nextLine, cells: cells}
	g.nextLine++
}

func (g *Grid) current() *line {
	return &g.lines[(g.firstLine+g.count-1)%g.capacity]
}

func (g *Grid) at(row int) *line {
	return &g.lines[(g.firstLine+row)%g.capacity]
}

// Apply performs the mechanical effect of one decoded event and reports
// whether the paper or the print position changed.
func (g *Grid) Apply(ev decoder.Event) bool {
	g.rwMutex.Lock()
	defer g.rwMutex.Unlock()

	switch ev.Kind {
	case decoder.PrintChar:
		g.print(ev.Char)
		return true
	case decoder.CarriageReturn:
		changed := g.cursorCol != 0
		g.cursorCol = 0
		return changed
	case decoder.LineFeed:
		g.newLine()
		return true
	case decoder.Delete:
		if g.cursorCol >= g.width {
			return false
		}
		return g.current().cells[g.cursorCol].unstrike()
	}
	// bells and ignored codes leave no mark
	return false
}

func (g *Grid) print(ch byte) {
	g.current().cells[g.cursorCol].strike(ch)
	g.cursorCol++
	if g.cursorCol < g.width {
		return
	}
	if g.autowrap {
		g.newLine()
		g.cursorCol = 0
		return
	}
	// right margin: further characters pile up in the last column
	g.cursorCol = g.width - 1
}

// Clear tears off the paper, leaving a single empty row. Line numbering
// continues from where it was.
func (g *Grid) Clear() {
	g.rwMutex.Lock()
	g.count = 0
	g.firstLine = 0
	g.cursorCol = 0
	g.newLine()
	g.rwMutex.Unlock()
}

// Rows returns copies of retained rows [from, to). Out of range bounds are
// clamped.
func (g *Grid) Rows(from, to int) []Row {
	g.rwMutex.RLock()
	defer g.rwMutex.RUnlock()
	from, to = g.clamp(from, to)
	rows := make([]Row, 0, to-from)
	for r := from; r < to; r++ {
		src := g.at(r)
		row := Row{Number: src.number, Cells: make([]Cell, g.width)}
		for c := range src.cells {
			row.Cells[c].copyFrom(src.cells[c])
		}
		rows = append(rows, row)
	}
	return rows
}

// Tail returns copies of the newest n rows.
func (g *Grid) Tail(n int) []Row {
	g.rwMutex.RLock()
	count := g.count
	g.rwMutex.RUnlock()
	return g.Rows(count-n, count)
}

func (g *Grid) clamp(from, to int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to > g.count {
		to = g.count
	}
	if to < from {
		to = from
	}
	return from, to
}

// Text returns the display characters inside span, one line per row.
func (g *Grid) Text(span Span) string {
	g.rwMutex.RLock()
	defer g.rwMutex.RUnlock()

	if span.EndRow < span.StartRow || (span.EndRow == span.StartRow && span.EndCol < span.StartCol) {
		span.StartRow, span.EndRow = span.EndRow, span.StartRow
		span.StartCol, span.EndCol = span.EndCol, span.StartCol
	}
	first, last := g.clamp(span.StartRow, span.EndRow+1)
	var lines []string
	for r := first; r < last; r++ {
		startCol, endCol := 0, g.width-1
		if r == span.StartRow {
			startCol = max(span.StartCol, 0)
		}
		if r == span.EndRow {
			endCol = min(span.EndCol, g.width-1)
		}
		var sb strings.Builder
		cells := g.at(r).cells
		for c := startCol; c <= endCol; c++ {
			sb.WriteByte(cells[c].Display())
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// AllText returns everything still on the roll.
func (g *Grid) AllText() string {
	g.rwMutex.RLock()
	last := g.count - 1
	g.rwMutex.RUnlock()
	return g.Text(Span{StartRow: 0, StartCol: 0, EndRow: last, EndCol: g.width - 1})
}
