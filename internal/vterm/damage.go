package vterm

import "sort"

// Change is one notification to the renderer. Rows lists the rows of the
// active buffer modified since the previous Change; Full means every row must
// be redrawn (resize, buffer swap, reset, scrollback clear).
type Change struct {
	Rows   []int
	Full   bool
	Cursor Cursor
	Modes  ModeSet
}

// damage accumulates dirty rows between notifications.
type damage struct {
	rows    map[int]struct{}
	full    bool
	touched bool
}

func (d *damage) markRow(y int) {
	if d.full {
		return
	}
	if d.rows == nil {
		d.rows = make(map[int]struct{})
	}
	d.rows[y] = struct{}{}
	d.touched = true
}

func (d *damage) markRange(from, to int) {
	for y := from; y < to; y++ {
		d.markRow(y)
	}
}

func (d *damage) markFull() {
	d.full = true
	d.rows = nil
	d.touched = true
}

// markCursor records a change that touches no cells.
func (d *damage) markCursor() {
	d.touched = true
}

func (d *damage) take() (rows []int, full, touched bool) {
	if !d.touched {
		return nil, false, false
	}
	if !d.full {
		rows = make([]int, 0, len(d.rows))
		for y := range d.rows {
			rows = append(rows, y)
		}
		sort.Ints(rows)
	}
	full = d.full
	*d = damage{}
	return rows, full, true
}

func (v *VTerm) markDirtyLine(y int) {
	v.damage.markRow(y)
}

func (v *VTerm) markDirtyRange(from, to int) {
	v.damage.markRange(from, to)
}

// queueChange turns accumulated damage into a pending listener call.
func (v *VTerm) queueChange() {
	rows, full, touched := v.damage.take()
	if !touched || v.listener == nil {
		return
	}
	fn := v.listener
	ch := Change{Rows: rows, Full: full, Cursor: v.cursor, Modes: v.modes}
	v.queue(func() { fn(ch) })
}
