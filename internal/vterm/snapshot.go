package vterm

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Snapshot is a consistent copy of the visible state. It never reflects a
// partially applied sequence.
type Snapshot struct {
	Cols, Rows int
	Lines      []Row
	Cursor     Cursor
	Modes      ModeSet
	Title      string
	// ScrollbackLen is the number of history lines above Lines.
	ScrollbackLen int
}

// Snapshot copies the active buffer, cursor and modes.
func (v *VTerm) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	lines := make([]Row, len(v.active.rows))
	for i, r := range v.active.rows {
		lines[i] = copyRow(r)
	}
	return Snapshot{
		Cols:          v.cols,
		Rows:          v.rows,
		Lines:         lines,
		Cursor:        v.cursor,
		Modes:         v.modes,
		Title:         v.title,
		ScrollbackLen: len(v.primary.scrollback),
	}
}

// AltScreen reports whether the snapshot was taken on the alternate buffer.
func (s Snapshot) AltScreen() bool {
	return s.Modes.Has(ModeAltScreen)
}

// Text renders the grid as plain text, one line per row, with trailing blank
// lines dropped.
func (s Snapshot) Text() string {
	lines := make([]string, len(s.Lines))
	last := -1
	for i, r := range s.Lines {
		lines[i] = r.Text()
		if lines[i] != "" {
			last = i
		}
	}
	return strings.Join(lines[:last+1], "\n")
}

// ANSI renders the grid with SGR and OSC 8 sequences so it can be replayed on
// another terminal. Each line ends with a reset.
func (s Snapshot) ANSI() string {
	var b strings.Builder
	b.Grow(s.Cols * s.Rows)
	for i, r := range s.Lines {
		if i > 0 {
			b.WriteString("\r\n")
		}
		writeRowANSI(&b, r)
	}
	return b.String()
}

func writeRowANSI(b *strings.Builder, r Row) {
	var cur Style
	var link *Hyperlink
	end := len(r.Cells)
	for end > 0 && r.Cells[end-1] == DefaultCell() {
		end--
	}
	for _, c := range r.Cells[:end] {
		if c.Width == 0 {
			continue
		}
		if c.Link != link {
			if c.Link == nil {
				b.WriteString(ansi.ResetHyperlink())
			} else if c.Link.ID != "" {
				b.WriteString(ansi.SetHyperlink(c.Link.URI, "id="+c.Link.ID))
			} else {
				b.WriteString(ansi.SetHyperlink(c.Link.URI))
			}
			link = c.Link
		}
		b.WriteString(StyleToDeltaANSI(cur, c.Style))
		cur = c.Style
		ch := c.Rune
		if ch == 0 {
			ch = ' '
		}
		b.WriteRune(ch)
	}
	if link != nil {
		b.WriteString(ansi.ResetHyperlink())
	}
	if cur != (Style{}) {
		b.WriteString(ansi.ResetStyle)
	}
}
