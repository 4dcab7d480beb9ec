package vterm

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Mode is one terminal mode flag.
type Mode uint32

const (
	ModeShowCursor Mode = 1 << iota
	ModeAutoWrap
	ModeOrigin
	ModeInsert
	ModeLineFeedNewLine
	ModeAppCursorKeys
	ModeAppKeypad
	ModeBracketedPaste
	ModeMouseX10
	ModeMouseNormal
	ModeMouseButtonEvent
	ModeMouseAnyEvent
	ModeMouseSGR
	ModeMouseUTF8
	ModeMouseURXVT
	ModeFocusEvents
	ModeAltScreen
	ModeReverseVideo
	ModeCursorBlink
	ModeSyncOutput
)

// mouseTracking are mutually exclusive: enabling one clears the others.
const mouseTracking = ModeMouseX10 | ModeMouseNormal | ModeMouseButtonEvent | ModeMouseAnyEvent

const defaultModes = ModeShowCursor | ModeAutoWrap

var modeNames = []struct {
	m    Mode
	name string
}{
	{ModeShowCursor, "show-cursor"},
	{ModeAutoWrap, "autowrap"},
	{ModeOrigin, "origin"},
	{ModeInsert, "insert"},
	{ModeLineFeedNewLine, "lnm"},
	{ModeAppCursorKeys, "app-cursor"},
	{ModeAppKeypad, "app-keypad"},
	{ModeBracketedPaste, "bracketed-paste"},
	{ModeMouseX10, "mouse-x10"},
	{ModeMouseNormal, "mouse-normal"},
	{ModeMouseButtonEvent, "mouse-button"},
	{ModeMouseAnyEvent, "mouse-any"},
	{ModeMouseSGR, "mouse-sgr"},
	{ModeMouseUTF8, "mouse-utf8"},
	{ModeMouseURXVT, "mouse-urxvt"},
	{ModeFocusEvents, "focus"},
	{ModeAltScreen, "alt-screen"},
	{ModeReverseVideo, "reverse-video"},
	{ModeCursorBlink, "cursor-blink"},
	{ModeSyncOutput, "sync-output"},
}

// ModeSet is a bitmask of Mode flags.
type ModeSet uint32

// Has reports whether every flag in m is set.
func (s ModeSet) Has(m Mode) bool {
	return Mode(s)&m == m
}

func (s ModeSet) with(m Mode, on bool) ModeSet {
	if on {
		return s | ModeSet(m)
	}
	return s &^ ModeSet(m)
}

func (s ModeSet) String() string {
	var parts []string
	for _, n := range modeNames {
		if s.Has(n.m) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// decModes maps DECSET numbers to flags. 47, 1047, 1048 and 1049 are handled
// separately because they act on buffers.
var decModes = map[ansi.DECMode]Mode{
	ansi.ModeCursorKeys:         ModeAppCursorKeys,
	5:                           ModeReverseVideo,
	ansi.ModeOrigin:             ModeOrigin,
	ansi.ModeAutoWrap:           ModeAutoWrap,
	ansi.ModeMouseX10:           ModeMouseX10,
	12:                          ModeCursorBlink,
	ansi.ModeTextCursorEnable:   ModeShowCursor,
	ansi.ModeNumericKeypad:      ModeAppKeypad,
	ansi.ModeMouseNormal:        ModeMouseNormal,
	ansi.ModeMouseButtonEvent:   ModeMouseButtonEvent,
	ansi.ModeMouseAnyEvent:      ModeMouseAnyEvent,
	ansi.ModeFocusEvent:         ModeFocusEvents,
	ansi.ModeMouseExtUtf8:       ModeMouseUTF8,
	ansi.ModeMouseExtSgr:        ModeMouseSGR,
	ansi.ModeMouseExtUrxvt:      ModeMouseURXVT,
	ansi.ModeBracketedPaste:     ModeBracketedPaste,
	ansi.ModeSynchronizedOutput: ModeSyncOutput,
}

var ansiModes = map[ansi.ANSIMode]Mode{
	ansi.ModeInsertReplace:   ModeInsert,
	ansi.ModeLineFeedNewLine: ModeLineFeedNewLine,
}

// setMode changes one flag and applies its side effects.
func (v *VTerm) setMode(m Mode, on bool) {
	if on && m&mouseTracking != 0 {
		v.modes = v.modes.with(mouseTracking, false)
	}
	v.modes = v.modes.with(m, on)
	switch m {
	case ModeOrigin:
		v.cursorHome()
	case ModeAutoWrap:
		if !on {
			v.pendingWrap = false
		}
	case ModeShowCursor:
		v.cursor.Visible = on
	case ModeCursorBlink:
		v.cursor.Blink = on
	case ModeReverseVideo:
		v.damage.markFull()
	}
}

func (v *VTerm) decset(seq CSI, on bool) {
	for i := range seq.Params {
		n := ansi.DECMode(seq.RawParam(i, -1))
		switch n {
		case 47:
			v.switchBuffer(on, false)
		case ansi.ModeAltScreen:
			if on {
				v.switchBuffer(true, false)
			} else {
				if v.active == v.alternate {
					v.alternate.clear(v.cols, Style{})
				}
				v.switchBuffer(false, false)
			}
		case ansi.ModeSaveCursor:
			if on {
				v.saveCursor()
			} else {
				v.restoreCursor()
			}
		case ansi.ModeAltScreenSaveCursor:
			if on {
				if v.active != v.alternate {
					v.saveCursor()
				}
				v.switchBuffer(true, true)
			} else if v.active == v.alternate {
				v.switchBuffer(false, false)
				v.restoreCursor()
			}
		default:
			if m, ok := decModes[n]; ok {
				v.setMode(m, on)
			} else {
				logUnhandled(seq)
			}
		}
	}
}

func (v *VTerm) ansiSet(seq CSI, on bool) {
	for i := range seq.Params {
		n := ansi.ANSIMode(seq.RawParam(i, -1))
		if m, ok := ansiModes[n]; ok {
			v.setMode(m, on)
		} else {
			logUnhandled(seq)
		}
	}
}

// reportMode answers DECRQM with DECRPM.
func (v *VTerm) reportMode(seq CSI, private bool) {
	n := seq.RawParam(0, 0)
	if private {
		mode := ansi.DECMode(n)
		setting := ansi.ModeNotRecognized
		switch mode {
		case 47, ansi.ModeAltScreen, ansi.ModeAltScreenSaveCursor:
			setting = boolSetting(v.active == v.alternate)
		case ansi.ModeSaveCursor:
			setting = ansi.ModeReset
		default:
			if m, ok := decModes[mode]; ok {
				setting = boolSetting(v.modes.Has(m))
			}
		}
		v.respond(ansi.DECRPM(mode, setting))
		return
	}
	mode := ansi.ANSIMode(n)
	setting := ansi.ModeNotRecognized
	if m, ok := ansiModes[mode]; ok {
		setting = boolSetting(v.modes.Has(m))
	}
	v.respond(ansi.DECRPM(mode, setting))
}

func boolSetting(on bool) ansi.ModeSetting {
	if on {
		return ansi.ModeSet
	}
	return ansi.ModeReset
}
