package vterm

// Color represents a terminal color
type Color struct {
	Type  ColorType
	Value uint32 // Indexed: 0-255, RGB: 0xRRGGBB
}

type ColorType uint8

const (
	ColorDefault ColorType = iota
	ColorIndexed
	ColorRGB
)

// Indexed returns a palette color.
func Indexed(n int) Color {
	return Color{Type: ColorIndexed, Value: uint32(n & 0xff)}
}

// RGB returns a truecolor value.
func RGB(r, g, b int) Color {
	return Color{Type: ColorRGB, Value: uint32(r&0xff)<<16 | uint32(g&0xff)<<8 | uint32(b&0xff)}
}

// Style holds text styling attributes
type Style struct {
	Fg        Color
	Bg        Color
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	Blink     bool
	Reverse   bool
	Hidden    bool
	Strike    bool
}

// Hyperlink is an OSC 8 link attached to the cells printed while it is active.
type Hyperlink struct {
	ID  string
	URI string
}

// Cell represents a single character cell
type Cell struct {
	Rune  rune
	Style Style
	Width int // 1 normal, 2 wide, 0 continuation
	Link  *Hyperlink
}

// DefaultCell returns a blank cell
func DefaultCell() Cell {
	return Cell{Rune: ' ', Width: 1}
}

// blankCell is a blank carrying the background of style, as erase operations require.
func blankCell(style Style) Cell {
	return Cell{Rune: ' ', Width: 1, Style: Style{Bg: style.Bg}}
}

// Row is one line of the grid. Wrapped marks a soft break into the next row.
type Row struct {
	Cells   []Cell
	Wrapped bool
}

// MakeBlankLine creates a blank line
func MakeBlankLine(width int) []Cell {
	line := make([]Cell, width)
	for i := range line {
		line[i] = DefaultCell()
	}
	return line
}

func blankRow(width int) Row {
	return Row{Cells: MakeBlankLine(width)}
}

// CopyLine deep copies a line
func CopyLine(src []Cell) []Cell {
	dst := make([]Cell, len(src))
	copy(dst, src)
	return dst
}

func copyRow(r Row) Row {
	return Row{Cells: CopyLine(r.Cells), Wrapped: r.Wrapped}
}

// Text returns the row content with continuation cells skipped and trailing
// blanks trimmed.
func (r Row) Text() string {
	buf := make([]rune, 0, len(r.Cells))
	end := 0
	for _, c := range r.Cells {
		if c.Width == 0 {
			continue
		}
		ch := c.Rune
		if ch == 0 {
			ch = ' '
		}
		buf = append(buf, ch)
		if ch != ' ' {
			end = len(buf)
		}
	}
	return string(buf[:end])
}
