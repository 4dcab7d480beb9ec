package vterm

import "github.com/charmbracelet/x/ansi"

// ansiColor converts c for the x/ansi style builder. Default is nil.
func (c Color) ansiColor() ansi.Color {
	switch c.Type {
	case ColorIndexed:
		if c.Value < 16 {
			return ansi.BasicColor(c.Value)
		}
		return ansi.IndexedColor(c.Value)
	case ColorRGB:
		return ansi.TrueColor(c.Value)
	}
	return nil
}

// StyleToANSI returns a full SGR sequence for s, starting with a reset.
func StyleToANSI(s Style) string {
	st := ansi.Style{}.Reset()
	st = withAttrs(st, Style{}, s)
	if fg := s.Fg.ansiColor(); fg != nil {
		st = st.ForegroundColor(fg)
	}
	if bg := s.Bg.ansiColor(); bg != nil {
		st = st.BackgroundColor(bg)
	}
	return st.String()
}

// StyleToDeltaANSI returns the minimal SGR sequence that turns prev into
// next, or "" when they are equal.
func StyleToDeltaANSI(prev, next Style) string {
	if prev == next {
		return ""
	}

	turningOff := 0
	for _, off := range []bool{
		prev.Bold && !next.Bold,
		prev.Dim && !next.Dim,
		prev.Italic && !next.Italic,
		prev.Underline && !next.Underline,
		prev.Blink && !next.Blink,
		prev.Reverse && !next.Reverse,
		prev.Hidden && !next.Hidden,
		prev.Strike && !next.Strike,
	} {
		if off {
			turningOff++
		}
	}
	// A reset is shorter once more than one attribute goes away.
	if turningOff > 1 {
		return StyleToANSI(next)
	}

	var st ansi.Style
	base := prev
	if (prev.Bold && !next.Bold) || (prev.Dim && !next.Dim) {
		// 22 clears both intensities.
		st = st.Normal()
		base.Bold, base.Dim = false, false
	}
	if prev.Italic && !next.Italic {
		st = st.NoItalic()
	}
	if prev.Underline && !next.Underline {
		st = st.NoUnderline()
	}
	if prev.Blink && !next.Blink {
		st = st.NoBlink()
	}
	if prev.Reverse && !next.Reverse {
		st = st.NoReverse()
	}
	if prev.Hidden && !next.Hidden {
		st = st.NoConceal()
	}
	if prev.Strike && !next.Strike {
		st = st.NoStrikethrough()
	}
	st = withAttrs(st, base, next)

	if prev.Fg != next.Fg {
		st = st.ForegroundColor(next.Fg.ansiColor())
	}
	if prev.Bg != next.Bg {
		st = st.BackgroundColor(next.Bg.ansiColor())
	}
	if len(st) == 0 {
		return ""
	}
	return st.String()
}

// withAttrs appends the attributes set in next but not in prev.
func withAttrs(st ansi.Style, prev, next Style) ansi.Style {
	if next.Bold && !prev.Bold {
		st = st.Bold()
	}
	if next.Dim && !prev.Dim {
		st = st.Faint()
	}
	if next.Italic && !prev.Italic {
		st = st.Italic(true)
	}
	if next.Underline && !prev.Underline {
		st = st.Underline(true)
	}
	if next.Blink && !prev.Blink {
		st = st.Blink(true)
	}
	if next.Reverse && !prev.Reverse {
		st = st.Reverse(true)
	}
	if next.Hidden && !prev.Hidden {
		st = st.Conceal(true)
	}
	if next.Strike && !prev.Strike {
		st = st.Strikethrough(true)
	}
	return st
}
