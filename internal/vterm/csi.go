package vterm

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/ansi/parser"
)

// Packed commands: prefix<<8 | intermediate<<16 | final.
const (
	cmdDECSET  = '?'<<parser.PrefixShift | 'h'
	cmdDECRST  = '?'<<parser.PrefixShift | 'l'
	cmdDECRQM  = '?'<<parser.PrefixShift | '$'<<parser.IntermedShift | 'p'
	cmdRQM     = '$'<<parser.IntermedShift | 'p'
	cmdDECXCPR = '?'<<parser.PrefixShift | 'n'
	cmdDA2     = '>'<<parser.PrefixShift | 'c'
	cmdDECSCUS = ' '<<parser.IntermedShift | 'q'
	cmdDECSTR  = '!'<<parser.IntermedShift | 'p'
	cmdDECSED  = '?'<<parser.PrefixShift | 'J'
	cmdDECSEL  = '?'<<parser.PrefixShift | 'K'
)

func (v *VTerm) dispatchCSI(s CSI) {
	switch s.Cmd {
	case 'A': // CUU
		v.moveCursor(0, -s.Param(0, 1))
	case 'B', 'e': // CUD, VPR
		v.moveCursor(0, s.Param(0, 1))
	case 'C', 'a': // CUF, HPR
		v.moveCursor(s.Param(0, 1), 0)
	case 'D': // CUB
		v.moveCursor(-s.Param(0, 1), 0)
	case 'E': // CNL
		v.moveCursor(0, s.Param(0, 1))
		v.carriageReturn()
	case 'F': // CPL
		v.moveCursor(0, -s.Param(0, 1))
		v.carriageReturn()
	case 'G', '`': // CHA, HPA
		v.setCursorX(s.Param(0, 1) - 1)
	case 'd': // VPA
		v.setCursorY(s.Param(0, 1) - 1)
	case 'H', 'f': // CUP, HVP
		v.setCursorPos(s.Param(1, 1)-1, s.Param(0, 1)-1)
	case 'I': // CHT
		v.tabForward(s.Param(0, 1))
	case 'Z': // CBT
		v.tabBackward(s.Param(0, 1))
	case 'J', cmdDECSED: // ED
		v.eraseDisplay(s.RawParam(0, 0))
	case 'K', cmdDECSEL: // EL
		v.eraseLine(s.RawParam(0, 0))
	case 'X': // ECH
		v.eraseChars(s.Param(0, 1))
	case '@': // ICH
		v.insertChars(s.Param(0, 1))
	case 'P': // DCH
		v.deleteChars(s.Param(0, 1))
	case 'L': // IL
		v.insertLines(s.Param(0, 1))
	case 'M': // DL
		v.deleteLines(s.Param(0, 1))
	case 'S': // SU
		v.scrollUp(s.Param(0, 1))
	case 'T': // SD
		if len(s.Params) > 1 {
			// Mouse highlight tracking, not supported.
			logUnhandled(s)
			return
		}
		v.scrollDown(s.Param(0, 1))
	case 'b': // REP
		v.repeatLast(s.Param(0, 1))
	case 'r': // DECSTBM
		v.setScrollRegion(s.Param(0, 1), s.Param(1, v.rows))
	case 'g': // TBC
		switch s.RawParam(0, 0) {
		case 0:
			v.clearTab()
		case 3:
			v.clearAllTabs()
		}
	case 'm': // SGR
		v.selectGraphicRendition(s.Params)
	case 'h':
		v.ansiSet(s, true)
	case 'l':
		v.ansiSet(s, false)
	case cmdDECSET:
		v.decset(s, true)
	case cmdDECRST:
		v.decset(s, false)
	case cmdDECRQM:
		v.reportMode(s, true)
	case cmdRQM:
		v.reportMode(s, false)
	case 's': // SCOSC
		v.saveCursor()
	case 'u': // SCORC
		v.restoreCursor()
	case 'n': // DSR
		switch s.RawParam(0, 0) {
		case 5:
			v.respond("\x1b[0n")
		case 6:
			x, y := v.reportedCursor()
			v.respond(ansi.CursorPositionReport(y, x))
		}
	case cmdDECXCPR:
		if s.RawParam(0, 0) == 6 {
			x, y := v.reportedCursor()
			v.respond(ansi.DECXCPR(y, x, 1))
		}
	case 'c': // DA1
		if s.RawParam(0, 0) == 0 {
			// VT220 with ANSI color.
			v.respond(ansi.PrimaryDeviceAttributes(62, 22))
		}
	case cmdDA2:
		if s.RawParam(0, 0) == 0 {
			v.respond(ansi.SecondaryDeviceAttributes(1, 10, 0))
		}
	case 't': // XTWINOPS
		v.windowOp(s)
	case cmdDECSCUS:
		v.setCursorStyle(s.RawParam(0, 0))
	case cmdDECSTR:
		v.softReset()
	default:
		logUnhandled(s)
	}
}

// reportedCursor is the 1-based cursor position, relative to the margin in
// origin mode.
func (v *VTerm) reportedCursor() (x, y int) {
	y = v.cursor.Y
	if v.modes.Has(ModeOrigin) {
		y -= v.top
	}
	return v.cursor.X + 1, y + 1
}

func (v *VTerm) windowOp(s CSI) {
	switch s.RawParam(0, 0) {
	case 18:
		v.respond(ansi.WindowOp(8, v.rows, v.cols))
	case 22:
		v.titleStack = append(v.titleStack, v.title)
		if len(v.titleStack) > 10 {
			v.titleStack = v.titleStack[1:]
		}
	case 23:
		if n := len(v.titleStack); n > 0 {
			v.setTitle(v.titleStack[n-1])
			v.titleStack = v.titleStack[:n-1]
		}
	default:
		logUnhandled(s)
	}
}

func (v *VTerm) setCursorStyle(n int) {
	switch n {
	case 0, 1:
		v.cursor.Shape, v.cursor.Blink = CursorBlock, true
	case 2:
		v.cursor.Shape, v.cursor.Blink = CursorBlock, false
	case 3:
		v.cursor.Shape, v.cursor.Blink = CursorUnderline, true
	case 4:
		v.cursor.Shape, v.cursor.Blink = CursorUnderline, false
	case 5:
		v.cursor.Shape, v.cursor.Blink = CursorBar, true
	case 6:
		v.cursor.Shape, v.cursor.Blink = CursorBar, false
	default:
		return
	}
	v.modes = v.modes.with(ModeCursorBlink, v.cursor.Blink)
	v.damage.markCursor()
}

// softReset is DECSTR: modes, margins and attributes go back to defaults but
// the screen is kept.
func (v *VTerm) softReset() {
	v.modes = v.modes.with(ModeShowCursor|ModeAutoWrap, true)
	v.modes = v.modes.with(ModeOrigin|ModeInsert|ModeAppCursorKeys|ModeAppKeypad, false)
	v.cursor.Visible = true
	v.style = Style{}
	v.link = nil
	v.charsets = newCharsets()
	v.top, v.bottom = 0, v.rows
	v.pendingWrap = false
	v.active.saved = savedCursor{}
	v.damage.markCursor()
}
