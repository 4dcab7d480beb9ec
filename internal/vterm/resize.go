package vterm

import "fmt"

// Resize changes the grid to cols x rows. The cursor row is kept when it
// still fits; otherwise rows above it leave the screen (into scrollback on the
// primary buffer). Narrowing truncates rows. A same-size call does nothing.
// Non-positive sizes are a programming error and panic.
func (v *VTerm) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		panic(fmt.Sprintf("vterm: invalid size %dx%d", cols, rows))
	}

	v.mu.Lock()
	if cols == v.cols && rows == v.rows {
		v.mu.Unlock()
		return
	}
	v.resizeLocked(cols, rows)
	v.queueChange()
	calls := v.takePending()
	v.mu.Unlock()

	runAll(calls)
}

func (v *VTerm) resizeLocked(cols, rows int) {
	for _, b := range []*Buffer{v.primary, v.alternate} {
		if b == v.active {
			v.cursor.Y = resizeBuffer(b, v.cursor.Y, cols, rows)
			continue
		}
		y := resizeBuffer(b, b.saved.y, cols, rows)
		if b.saved.valid {
			b.saved.y = y
		}
	}
	for _, b := range []*Buffer{v.primary, v.alternate} {
		b.saved.x = clamp(b.saved.x, 0, cols-1)
		b.saved.y = clamp(b.saved.y, 0, rows-1)
	}

	v.cols, v.rows = cols, rows
	v.top, v.bottom = 0, rows
	v.resizeTabs(cols)
	v.cursor.X = clamp(v.cursor.X, 0, cols-1)
	v.cursor.Y = clamp(v.cursor.Y, 0, rows-1)
	v.pendingWrap = false
	v.damage.markFull()
}

// resizeBuffer reshapes b and returns where cursorY ends up.
func resizeBuffer(b *Buffer, cursorY, cols, rows int) int {
	if cursorY >= rows {
		drop := cursorY - rows + 1
		for i := 0; i < drop; i++ {
			b.pushScrollback(b.rows[i])
		}
		b.rows = append(b.rows[:0:0], b.rows[drop:]...)
		cursorY -= drop
	}
	if len(b.rows) > rows {
		b.rows = b.rows[:rows]
	}
	for len(b.rows) < rows {
		b.rows = append(b.rows, blankRow(cols))
	}
	for i := range b.rows {
		b.rows[i] = resizeRow(b.rows[i], cols)
	}
	return cursorY
}

func resizeRow(r Row, cols int) Row {
	n := len(r.Cells)
	switch {
	case n > cols:
		r.Cells = CopyLine(r.Cells[:cols])
		if last := r.Cells[cols-1]; last.Width == 2 {
			r.Cells[cols-1] = blankCell(last.Style)
		}
		r.Wrapped = false
	case n < cols:
		cells := make([]Cell, cols)
		copy(cells, r.Cells)
		for x := n; x < cols; x++ {
			cells[x] = DefaultCell()
		}
		r.Cells = cells
	}
	return r
}

// switchBuffer activates the alternate (alt=true) or primary buffer.
// clearAlt blanks the alternate buffer when entering it.
func (v *VTerm) switchBuffer(alt, clearAlt bool) {
	target := v.primary
	if alt {
		target = v.alternate
		if clearAlt {
			v.alternate.clear(v.cols, Style{})
		}
	}
	if target == v.active {
		if clearAlt {
			v.damage.markFull()
		}
		return
	}
	v.active = target
	v.modes = v.modes.with(ModeAltScreen, alt)
	v.pendingWrap = false
	v.damage.markFull()
}
