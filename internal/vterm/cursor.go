package vterm

import "github.com/mattn/go-runewidth"

// putChar writes r at the cursor with the current style and advances,
// wrapping first if the previous print left a pending wrap.
func (v *VTerm) putChar(r rune) {
	width := runewidth.RuneWidth(r)
	if width == 0 {
		// Combining marks and other zero-width runes are not stored.
		return
	}
	if width > v.cols {
		width = 1
	}
	autowrap := v.modes.Has(ModeAutoWrap)

	if v.pendingWrap && autowrap {
		v.wrapLine()
	}
	if width == 2 && v.cursor.X == v.cols-1 {
		if autowrap {
			v.active.rows[v.cursor.Y].Cells[v.cursor.X] = blankCell(v.style)
			v.wrapLine()
		} else {
			width = 1
		}
	}
	v.pendingWrap = false

	line := v.active.rows[v.cursor.Y].Cells
	x := v.cursor.X
	if v.modes.Has(ModeInsert) {
		v.shiftRight(line, x, width)
	}
	v.splitWide(line, x)
	if width == 2 {
		v.splitWide(line, x+1)
	}
	line[x] = Cell{Rune: r, Style: v.style, Width: width, Link: v.link}
	if width == 2 {
		line[x+1] = Cell{Style: v.style, Width: 0, Link: v.link}
	}
	v.lastRune = r
	v.markDirtyLine(v.cursor.Y)

	if x+width >= v.cols {
		v.cursor.X = v.cols - 1
		v.pendingWrap = autowrap
		return
	}
	v.cursor.X = x + width
}

// wrapLine marks the current row as soft-wrapped and moves to the next line.
func (v *VTerm) wrapLine() {
	v.active.rows[v.cursor.Y].Wrapped = true
	v.cursor.X = 0
	v.pendingWrap = false
	v.index()
}

// splitWide blanks both halves of a wide character that overlaps x.
func (v *VTerm) splitWide(line []Cell, x int) {
	if x < 0 || x >= len(line) {
		return
	}
	switch line[x].Width {
	case 0:
		if x > 0 {
			line[x-1] = blankCell(line[x-1].Style)
		}
		line[x] = blankCell(line[x].Style)
	case 2:
		if x+1 < len(line) {
			line[x+1] = blankCell(line[x+1].Style)
		}
	}
}

func (v *VTerm) shiftRight(line []Cell, x, n int) {
	if x >= len(line) {
		return
	}
	n = min(n, len(line)-x)
	copy(line[x+n:], line[x:len(line)-n])
	for i := x; i < x+n; i++ {
		line[i] = blankCell(v.style)
	}
	if last := line[len(line)-1]; last.Width == 2 {
		line[len(line)-1] = blankCell(last.Style)
	}
}

// repeatLast is REP: print the previous graphic character n more times.
func (v *VTerm) repeatLast(n int) {
	if v.lastRune == 0 {
		return
	}
	n = min(n, v.cols*v.rows)
	for i := 0; i < n; i++ {
		v.putChar(v.lastRune)
	}
}

func (v *VTerm) carriageReturn() {
	v.cursor.X = 0
	v.pendingWrap = false
	v.damage.markCursor()
}

func (v *VTerm) backspace() {
	if v.cursor.X > 0 {
		v.cursor.X--
	}
	v.pendingWrap = false
	v.damage.markCursor()
}

// verticalBounds are the rows the cursor may reach: the scroll region in
// origin mode, otherwise the whole screen.
func (v *VTerm) verticalBounds() (top, bottom int) {
	if v.modes.Has(ModeOrigin) {
		return v.top, v.bottom
	}
	return 0, v.rows
}

// moveCursor moves relative to the cursor. Vertical motion stops at the
// margins when the cursor starts inside them.
func (v *VTerm) moveCursor(dx, dy int) {
	x := clamp(v.cursor.X+dx, 0, v.cols-1)
	y := v.cursor.Y + dy
	top, bottom := 0, v.rows
	if v.cursor.Y >= v.top && v.cursor.Y < v.bottom {
		top, bottom = v.top, v.bottom
	}
	y = clamp(y, top, bottom-1)
	v.cursor.X, v.cursor.Y = x, y
	v.pendingWrap = false
	v.damage.markCursor()
}

func (v *VTerm) setCursorX(x int) {
	v.cursor.X = clamp(x, 0, v.cols-1)
	v.pendingWrap = false
	v.damage.markCursor()
}

// setCursorY takes a row relative to the origin.
func (v *VTerm) setCursorY(y int) {
	top, bottom := v.verticalBounds()
	v.cursor.Y = clamp(top+y, top, bottom-1)
	v.pendingWrap = false
	v.damage.markCursor()
}

func (v *VTerm) setCursorPos(x, y int) {
	v.setCursorX(x)
	v.setCursorY(y)
}

func (v *VTerm) cursorHome() {
	v.setCursorPos(0, 0)
}

func (v *VTerm) saveCursor() {
	v.active.saved = savedCursor{
		x:           v.cursor.X,
		y:           v.cursor.Y,
		style:       v.style,
		pendingWrap: v.pendingWrap,
		origin:      v.modes.Has(ModeOrigin),
		charsets:    v.charsets,
		link:        v.link,
		valid:       true,
	}
}

// restoreCursor restores DECSC state, or homes the cursor with default
// attributes when nothing was saved.
func (v *VTerm) restoreCursor() {
	s := v.active.saved
	if !s.valid {
		s = savedCursor{charsets: newCharsets()}
	}
	v.cursor.X = clamp(s.x, 0, v.cols-1)
	v.cursor.Y = clamp(s.y, 0, v.rows-1)
	v.style = s.style
	v.pendingWrap = s.pendingWrap && v.cursor.X == v.cols-1
	v.modes = v.modes.with(ModeOrigin, s.origin)
	v.charsets = s.charsets
	v.link = s.link
	v.damage.markCursor()
}

// screenAlignment is DECALN: fill the screen with E and reset margins.
func (v *VTerm) screenAlignment() {
	v.top, v.bottom = 0, v.rows
	for y := range v.active.rows {
		row := Row{Cells: make([]Cell, v.cols)}
		for x := range row.Cells {
			row.Cells[x] = Cell{Rune: 'E', Width: 1}
		}
		v.active.rows[y] = row
	}
	v.cursorHome()
	v.markDirtyRange(0, v.rows)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
