package vterm

// DefaultScrollback is the primary buffer's history limit when none is configured.
const DefaultScrollback = 10000

// savedCursor is the DECSC/DECRC snapshot. Each buffer keeps its own.
type savedCursor struct {
	x, y        int
	style       Style
	pendingWrap bool
	origin      bool
	charsets    charsets
	link        *Hyperlink
	valid       bool
}

// Buffer is one screen grid. Only the primary buffer keeps scrollback.
type Buffer struct {
	rows       []Row
	scrollback []Row
	keepLines  bool
	limit      int // negative means unbounded
	saved      savedCursor
}

func newBuffer(cols, rows int, keepLines bool, limit int) *Buffer {
	b := &Buffer{keepLines: keepLines, limit: limit}
	b.rows = make([]Row, rows)
	for i := range b.rows {
		b.rows[i] = blankRow(cols)
	}
	return b
}

// pushScrollback appends a row that scrolled off the top.
func (b *Buffer) pushScrollback(r Row) {
	if !b.keepLines || b.limit == 0 {
		return
	}
	b.scrollback = append(b.scrollback, r)
	b.trimScrollback()
}

func (b *Buffer) trimScrollback() {
	if b.limit < 0 || len(b.scrollback) <= b.limit {
		return
	}
	drop := len(b.scrollback) - b.limit
	copy(b.scrollback, b.scrollback[drop:])
	for i := len(b.scrollback) - drop; i < len(b.scrollback); i++ {
		b.scrollback[i] = Row{}
	}
	b.scrollback = b.scrollback[:len(b.scrollback)-drop]
}

func (b *Buffer) clear(cols int, style Style) {
	for i := range b.rows {
		b.rows[i] = Row{Cells: make([]Cell, cols)}
		for x := range b.rows[i].Cells {
			b.rows[i].Cells[x] = blankCell(style)
		}
	}
}

// scrollUp moves rows [top, bottom) up by n, filling the gap with blanks.
// Rows leaving a region that starts at row 0 go to scrollback.
func (b *Buffer) scrollUp(top, bottom, n, cols int, style Style) {
	if n <= 0 || top >= bottom {
		return
	}
	if top == 0 {
		for i := 0; i < min(n, bottom); i++ {
			b.pushScrollback(b.rows[i])
		}
	}
	b.shiftUp(top, bottom, n, cols, style)
}

// shiftUp is scrollUp without scrollback.
func (b *Buffer) shiftUp(top, bottom, n, cols int, style Style) {
	if n <= 0 || top >= bottom {
		return
	}
	n = min(n, bottom-top)
	copy(b.rows[top:bottom], b.rows[top+n:bottom])
	for i := bottom - n; i < bottom; i++ {
		b.rows[i] = blankStyledRow(cols, style)
	}
}

// scrollDown moves rows [top, bottom) down by n, filling the top with blanks.
func (b *Buffer) scrollDown(top, bottom, n, cols int, style Style) {
	if n <= 0 || top >= bottom {
		return
	}
	n = min(n, bottom-top)
	copy(b.rows[top+n:bottom], b.rows[top:bottom-n])
	for i := top; i < top+n; i++ {
		b.rows[i] = blankStyledRow(cols, style)
	}
}

func blankStyledRow(cols int, style Style) Row {
	r := Row{Cells: make([]Cell, cols)}
	for i := range r.Cells {
		r.Cells[i] = blankCell(style)
	}
	return r
}
