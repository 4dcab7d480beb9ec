package vterm

import "github.com/charmbracelet/x/ansi"

// selectGraphicRendition applies SGR parameters to the current style.
func (v *VTerm) selectGraphicRendition(params ansi.Params) {
	if len(params) == 0 {
		v.style = Style{}
		return
	}

	st := &v.style
	for i := 0; i < len(params); {
		code := params[i].Param(0)
		sub := subParams(params, i)
		next := i + 1 + len(sub)

		switch code {
		case 0: // Reset
			*st = Style{}
		case 1:
			st.Bold = true
		case 2:
			st.Dim = true
		case 3:
			st.Italic = true
		case 4:
			st.Underline = len(sub) == 0 || sub[0] != 0
		case 5, 6:
			st.Blink = true
		case 7:
			st.Reverse = true
		case 8:
			st.Hidden = true
		case 9:
			st.Strike = true
		case 21:
			st.Underline = true
		case 22:
			st.Bold = false
			st.Dim = false
		case 23:
			st.Italic = false
		case 24:
			st.Underline = false
		case 25:
			st.Blink = false
		case 27:
			st.Reverse = false
		case 28:
			st.Hidden = false
		case 29:
			st.Strike = false
		case 30, 31, 32, 33, 34, 35, 36, 37: // FG colors 0-7
			st.Fg = Indexed(code - 30)
		case 38: // Extended FG
			next = v.extendedColor(params, i, sub, &st.Fg)
		case 39: // Default FG
			st.Fg = Color{}
		case 40, 41, 42, 43, 44, 45, 46, 47: // BG colors 0-7
			st.Bg = Indexed(code - 40)
		case 48: // Extended BG
			next = v.extendedColor(params, i, sub, &st.Bg)
		case 49: // Default BG
			st.Bg = Color{}
		case 58: // Underline color, parsed only to skip its arguments
			var discard Color
			next = v.extendedColor(params, i, sub, &discard)
		case 90, 91, 92, 93, 94, 95, 96, 97: // Bright FG
			st.Fg = Indexed(code - 90 + 8)
		case 100, 101, 102, 103, 104, 105, 106, 107: // Bright BG
			st.Bg = Indexed(code - 100 + 8)
		}
		i = next
	}
}

// subParams returns the colon-separated values following params[i].
func subParams(params ansi.Params, i int) []int {
	var out []int
	for j := i; j < len(params)-1 && params[j].HasMore(); j++ {
		out = append(out, params[j+1].Param(0))
	}
	return out
}

// extendedColor decodes 38/48/58 in either the colon form (38:5:n,
// 38:2:[cs]:r:g:b) or the semicolon form (38;5;n, 38;2;r;g;b) and returns
// the index of the next parameter to process.
func (v *VTerm) extendedColor(params ansi.Params, i int, sub []int, c *Color) int {
	if len(sub) > 0 {
		next := i + 1 + len(sub)
		switch sub[0] {
		case 5:
			if len(sub) >= 2 {
				*c = Indexed(sub[1])
			}
		case 2:
			switch {
			case len(sub) >= 5:
				*c = RGB(sub[2], sub[3], sub[4])
			case len(sub) == 4:
				*c = RGB(sub[1], sub[2], sub[3])
			}
		}
		return next
	}

	arg := func(k int) int {
		n, _, _ := params.Param(k, 0)
		return n
	}
	if i+1 >= len(params) {
		return i + 1
	}
	switch arg(i + 1) {
	case 5: // 256 color
		if i+2 < len(params) {
			*c = Indexed(arg(i + 2))
			return i + 3
		}
	case 2: // RGB
		if i+4 < len(params) {
			*c = RGB(arg(i+2), arg(i+3), arg(i+4))
			return i + 5
		}
	}
	return len(params)
}
