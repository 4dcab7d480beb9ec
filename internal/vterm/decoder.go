package vterm

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Decoder turns raw PTY bytes into runes. It keeps partial UTF-8 sequences
// between calls so chunk boundaries never change the output.
type Decoder struct {
	buf    [utf8.UTFMax]byte
	n      int
	legacy bool
}

// SetLegacy switches between UTF-8 and ISO-8859-1 decoding. In legacy mode
// bytes 0x80-0x9F come out as C1 controls.
func (d *Decoder) SetLegacy(on bool) {
	d.legacy = on
	d.n = 0
}

// Legacy reports whether 8-bit decoding is active.
func (d *Decoder) Legacy() bool {
	return d.legacy
}

// Pending reports how many bytes of an incomplete UTF-8 sequence are buffered.
func (d *Decoder) Pending() int {
	return d.n
}

// Decode calls emit for every complete rune in p. Invalid input yields
// utf8.RuneError and the byte that broke the sequence is decoded again.
func (d *Decoder) Decode(p []byte, emit func(rune)) {
	for _, b := range p {
		if d.legacy {
			emit(charmap.ISO8859_1.DecodeByte(b))
			continue
		}
		d.feed(b, emit)
	}
}

func (d *Decoder) feed(b byte, emit func(rune)) {
	if d.n == 0 && b < utf8.RuneSelf {
		emit(rune(b))
		return
	}
	d.buf[d.n] = b
	d.n++
	for d.n > 0 && utf8.FullRune(d.buf[:d.n]) {
		r, size := utf8.DecodeRune(d.buf[:d.n])
		copy(d.buf[:], d.buf[size:d.n])
		d.n -= size
		emit(r)
	}
}
