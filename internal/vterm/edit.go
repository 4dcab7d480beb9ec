package vterm

// eraseRange blanks cells [from, to) of row y with the current background.
func (v *VTerm) eraseRange(y, from, to int) {
	line := v.active.rows[y].Cells
	from = clamp(from, 0, v.cols)
	to = clamp(to, 0, v.cols)
	if from >= to {
		return
	}
	v.splitWide(line, from)
	v.splitWide(line, to-1)
	for x := from; x < to; x++ {
		line[x] = blankCell(v.style)
	}
	v.markDirtyLine(y)
}

// eraseDisplay is ED.
func (v *VTerm) eraseDisplay(mode int) {
	y := v.cursor.Y
	switch mode {
	case 0:
		v.eraseRange(y, v.cursor.X, v.cols)
		v.active.rows[y].Wrapped = false
		for i := y + 1; i < v.rows; i++ {
			v.eraseLineAt(i)
		}
	case 1:
		for i := 0; i < y; i++ {
			v.eraseLineAt(i)
		}
		v.eraseRange(y, 0, v.cursor.X+1)
	case 2:
		for i := 0; i < v.rows; i++ {
			v.eraseLineAt(i)
		}
	case 3:
		if v.active == v.primary {
			v.primary.scrollback = nil
		}
		v.damage.markFull()
	default:
		return
	}
	v.pendingWrap = false
}

func (v *VTerm) eraseLineAt(y int) {
	v.eraseRange(y, 0, v.cols)
	v.active.rows[y].Wrapped = false
}

// eraseLine is EL.
func (v *VTerm) eraseLine(mode int) {
	y := v.cursor.Y
	switch mode {
	case 0:
		v.eraseRange(y, v.cursor.X, v.cols)
		v.active.rows[y].Wrapped = false
	case 1:
		v.eraseRange(y, 0, v.cursor.X+1)
	case 2:
		v.eraseLineAt(y)
	default:
		return
	}
	v.pendingWrap = false
}

// eraseChars is ECH: blank n cells from the cursor without moving it.
func (v *VTerm) eraseChars(n int) {
	v.eraseRange(v.cursor.Y, v.cursor.X, v.cursor.X+n)
	v.pendingWrap = false
}

// insertChars is ICH.
func (v *VTerm) insertChars(n int) {
	line := v.active.rows[v.cursor.Y].Cells
	v.splitWide(line, v.cursor.X)
	v.shiftRight(line, v.cursor.X, n)
	v.markDirtyLine(v.cursor.Y)
	v.pendingWrap = false
}

// deleteChars is DCH: remove n cells at the cursor, pulling the rest left.
func (v *VTerm) deleteChars(n int) {
	line := v.active.rows[v.cursor.Y].Cells
	x := v.cursor.X
	n = min(n, v.cols-x)
	if n <= 0 {
		return
	}
	v.splitWide(line, x)
	v.splitWide(line, x+n-1)
	copy(line[x:], line[x+n:])
	for i := v.cols - n; i < v.cols; i++ {
		line[i] = blankCell(v.style)
	}
	if line[x].Width == 0 {
		line[x] = blankCell(line[x].Style)
	}
	v.markDirtyLine(v.cursor.Y)
	v.pendingWrap = false
}
