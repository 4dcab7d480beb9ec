package vterm

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/andyrewlee/termcore/internal/logging"
)

// handler feeds parser actions into a VTerm. The parser runs with the state
// lock held, so these hooks stay off the exported surface.
type handler struct{ v *VTerm }

func (h handler) Print(r rune)          { h.v.print(r) }
func (h handler) Execute(r rune)        { h.v.execute(r) }
func (h handler) Dispatch(seq Sequence) { h.v.dispatch(seq) }

func (v *VTerm) print(r rune) {
	v.putChar(v.charsets.translate(r))
}

// execute handles C0 and C1 controls.
func (v *VTerm) execute(r rune) {
	switch r {
	case ansi.BEL:
		if fn := v.onBell; fn != nil {
			v.queue(fn)
		}
	case ansi.BS:
		v.backspace()
	case ansi.HT:
		v.tabForward(1)
	case ansi.LF, ansi.VT, ansi.FF:
		if v.modes.Has(ModeLineFeedNewLine) {
			v.carriageReturn()
		}
		v.index()
	case ansi.CR:
		v.carriageReturn()
	case ansi.SO:
		v.charsets.gl = 1
	case ansi.SI:
		v.charsets.gl = 0
	case ansi.IND:
		v.index()
	case ansi.NEL:
		v.carriageReturn()
		v.index()
	case ansi.HTS:
		v.setTab()
	case ansi.RI:
		v.reverseIndex()
	case ansi.SS2:
		v.charsets.single = 2
	case ansi.SS3:
		v.charsets.single = 3
	}
}

// dispatch routes one sequence. A sequence that changes a mode or forces a
// full redraw is flagged so Write publishes it before the next rune.
func (v *VTerm) dispatch(seq Sequence) {
	before := v.modes
	switch s := seq.(type) {
	case CSI:
		v.dispatchCSI(s)
	case ESC:
		v.dispatchESC(s)
	case OSC:
		v.dispatchOSC(s)
	case DCS:
		logUnhandled(s)
	case StringSequence:
		logUnhandled(s)
	default:
		logUnhandled(seq)
	}
	if v.modes != before || v.damage.full {
		v.damage.markCursor()
		v.urgent = true
	}
}

func logUnhandled(seq Sequence) {
	logging.Debug("vterm: unhandled %s", seq)
}

func (v *VTerm) dispatchESC(s ESC) {
	inter, final := s.Cmd.Intermediate(), s.Cmd.Final()
	switch inter {
	case 0:
	case '(', ')', '*', '+':
		v.charsets.designate(int(inter-'('), Charset(final))
		return
	case '#':
		if final == '8' {
			v.screenAlignment()
			return
		}
		logUnhandled(s)
		return
	case '%':
		switch final {
		case '@':
			v.decoder.SetLegacy(true)
		case 'G':
			v.decoder.SetLegacy(false)
		default:
			logUnhandled(s)
		}
		return
	default:
		logUnhandled(s)
		return
	}

	switch final {
	case '7':
		v.saveCursor()
	case '8':
		v.restoreCursor()
	case 'D':
		v.index()
	case 'E':
		v.carriageReturn()
		v.index()
	case 'H':
		v.setTab()
	case 'M':
		v.reverseIndex()
	case 'N':
		v.charsets.single = 2
	case 'O':
		v.charsets.single = 3
	case 'n':
		v.charsets.gl = 2
	case 'o':
		v.charsets.gl = 3
	case '=':
		v.setMode(ModeAppKeypad, true)
	case '>':
		v.setMode(ModeAppKeypad, false)
	case 'c':
		v.reset()
	case '\\':
		// ST closing a string that was already dispatched.
	default:
		logUnhandled(s)
	}
}
