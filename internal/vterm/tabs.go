package vterm

const tabWidth = 8

func (v *VTerm) resetTabs() {
	v.tabs = make([]bool, v.cols)
	for x := tabWidth; x < v.cols; x += tabWidth {
		v.tabs[x] = true
	}
}

// resizeTabs keeps existing stops and adds default ones in new columns.
func (v *VTerm) resizeTabs(cols int) {
	old := v.tabs
	v.tabs = make([]bool, cols)
	copy(v.tabs, old)
	for x := len(old); x < cols; x++ {
		v.tabs[x] = x%tabWidth == 0 && x > 0
	}
}

func (v *VTerm) setTab() {
	v.tabs[v.cursor.X] = true
}

func (v *VTerm) clearTab() {
	v.tabs[v.cursor.X] = false
}

func (v *VTerm) clearAllTabs() {
	clear(v.tabs)
}

// tabForward moves to the n-th next tab stop, or the last column.
func (v *VTerm) tabForward(n int) {
	x := v.cursor.X
	for ; n > 0 && x < v.cols-1; n-- {
		x++
		for x < v.cols-1 && !v.tabs[x] {
			x++
		}
	}
	v.cursor.X = x
	v.pendingWrap = false
	v.damage.markCursor()
}

// tabBackward moves to the n-th previous tab stop, or column 0.
func (v *VTerm) tabBackward(n int) {
	x := v.cursor.X
	for ; n > 0 && x > 0; n-- {
		x--
		for x > 0 && !v.tabs[x] {
			x--
		}
	}
	v.cursor.X = x
	v.pendingWrap = false
	v.damage.markCursor()
}
