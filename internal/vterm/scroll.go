package vterm

// index moves the cursor down one row, scrolling the region when the cursor
// sits on its bottom margin.
func (v *VTerm) index() {
	switch {
	case v.cursor.Y == v.bottom-1:
		v.scrollUp(1)
	case v.cursor.Y < v.rows-1:
		v.cursor.Y++
		v.damage.markCursor()
	}
}

// reverseIndex moves the cursor up one row, scrolling down at the top margin.
func (v *VTerm) reverseIndex() {
	switch {
	case v.cursor.Y == v.top:
		v.scrollDown(1)
	case v.cursor.Y > 0:
		v.cursor.Y--
		v.damage.markCursor()
	}
}

// scrollUp scrolls the scroll region up by n lines.
func (v *VTerm) scrollUp(n int) {
	v.active.scrollUp(v.top, v.bottom, n, v.cols, v.style)
	v.markDirtyRange(v.top, v.bottom)
}

// scrollDown scrolls the scroll region down by n lines.
func (v *VTerm) scrollDown(n int) {
	v.active.scrollDown(v.top, v.bottom, n, v.cols, v.style)
	v.markDirtyRange(v.top, v.bottom)
}

// setScrollRegion is DECSTBM with 1-based inclusive bounds. Invalid regions
// are ignored. The cursor homes afterwards.
func (v *VTerm) setScrollRegion(top, bottom int) {
	top--
	if bottom > v.rows {
		bottom = v.rows
	}
	if top < 0 || top >= bottom-1 {
		return
	}
	v.top, v.bottom = top, bottom
	v.cursorHome()
}

// insertLines is IL: push rows below the cursor down within the region.
func (v *VTerm) insertLines(n int) {
	if v.cursor.Y < v.top || v.cursor.Y >= v.bottom {
		return
	}
	v.active.scrollDown(v.cursor.Y, v.bottom, n, v.cols, v.style)
	v.markDirtyRange(v.cursor.Y, v.bottom)
	v.cursor.X = 0
	v.pendingWrap = false
}

// deleteLines is DL: pull rows below the cursor up within the region. Deleted
// rows never go to scrollback.
func (v *VTerm) deleteLines(n int) {
	if v.cursor.Y < v.top || v.cursor.Y >= v.bottom {
		return
	}
	v.active.shiftUp(v.cursor.Y, v.bottom, n, v.cols, v.style)
	v.markDirtyRange(v.cursor.Y, v.bottom)
	v.cursor.X = 0
	v.pendingWrap = false
}
