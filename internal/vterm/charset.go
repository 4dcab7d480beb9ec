package vterm

// Charset is a 94-character set designated into one of G0-G3.
type Charset byte

const (
	CharsetASCII      Charset = 'B'
	CharsetUK         Charset = 'A'
	CharsetDECSpecial Charset = '0'
)

var decSpecial = map[rune]rune{
	'_': ' ',
	'`': '◆',
	'a': '▒',
	'b': '␉',
	'c': '␌',
	'd': '␍',
	'e': '␊',
	'f': '°',
	'g': '±',
	'h': '␤',
	'i': '␋',
	'j': '┘',
	'k': '┐',
	'l': '┌',
	'm': '└',
	'n': '┼',
	'o': '⎺',
	'p': '⎻',
	'q': '─',
	'r': '⎼',
	's': '⎽',
	't': '├',
	'u': '┤',
	'v': '┴',
	'w': '┬',
	'x': '│',
	'y': '≤',
	'z': '≥',
	'{': 'π',
	'|': '≠',
	'}': '£',
	'~': '·',
}

// charsets tracks G0-G3, the locking shift into GL and a pending single shift.
type charsets struct {
	g      [4]Charset
	gl     int
	single int
}

func newCharsets() charsets {
	return charsets{g: [4]Charset{CharsetASCII, CharsetASCII, CharsetASCII, CharsetASCII}}
}

func (c *charsets) designate(slot int, set Charset) {
	if slot < 0 || slot > 3 {
		return
	}
	switch set {
	case CharsetASCII, CharsetUK, CharsetDECSpecial:
		c.g[slot] = set
	default:
		c.g[slot] = CharsetASCII
	}
}

// translate maps a printable rune through the active set and consumes any
// single shift.
func (c *charsets) translate(r rune) rune {
	slot := c.gl
	if c.single != 0 {
		slot = c.single
		c.single = 0
	}
	if r < 0x20 || r > 0x7e {
		return r
	}
	switch c.g[slot] {
	case CharsetUK:
		if r == '#' {
			return '£'
		}
	case CharsetDECSpecial:
		if m, ok := decSpecial[r]; ok {
			return m
		}
	}
	return r
}
