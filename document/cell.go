// cell.go

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

package document

// Cell is one print position on the paper. Every character struck there is
// kept, in order, so that overprinted text can be displayed faithfully.
type Cell struct {
	strikes []byte
}

// Display returns the character the copy operations see: the last one
// struck, or a space for untouched paper.
func (cell *Cell) Display() byte {
	if len(cell.strikes) == 0 {
		return ' '
	}
	return cell.strikes[len(cell.strikes)-1]
}

// Strikes returns a copy of the overstrike stack, oldest first.
func (cell *Cell) Strikes() []byte {
	if len(cell.strikes) == 0 {
		return nil
	}
	return append([]byte(nil), cell.strikes...)
}

// Blank reports whether nothing has been printed here.
func (cell *Cell) Blank() bool {
	return len(cell.strikes) == 0
}

func (cell *Cell) strike(ch byte) {
	cell.strikes = append(cell.strikes, ch)
}

// unstrike removes the most recent character, reporting whether there was one.
func (cell *Cell) unstrike() bool {
	if len(cell.strikes) == 0 {
		return false
	}
	cell.strikes = cell.strikes[:len(cell.strikes)-1]
	return true
}

func (cell *Cell) clear() {
	cell.strikes = nil
}

func (cell *Cell) copyFrom(fromCell Cell) {
	cell.strikes = fromCell.Strikes()
}
