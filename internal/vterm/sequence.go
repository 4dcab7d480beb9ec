package vterm

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
)

// Sequence is one completed control sequence. The concrete types are CSI,
// ESC, OSC, DCS and StringSequence; values are never mutated after dispatch.
type Sequence interface {
	isSequence()
	fmt.Stringer
}

// CSI is a control sequence: CSI [prefix] params [intermediate] final.
type CSI struct {
	Cmd    ansi.Cmd
	Params ansi.Params
}

// ESC is an escape sequence: ESC [intermediate] final.
type ESC struct {
	Cmd ansi.Cmd
}

// OSC is an operating system command. Num is -1 when the command number is
// missing or not numeric.
type OSC struct {
	Num  int
	Data string
}

// DCS is a device control string with its header and payload.
type DCS struct {
	Cmd    ansi.Cmd
	Params ansi.Params
	Data   []byte
}

// StringKind identifies SOS, PM and APC strings.
type StringKind byte

const (
	KindSOS StringKind = 'X'
	KindPM  StringKind = '^'
	KindAPC StringKind = '_'
)

// StringSequence is an SOS, PM or APC payload.
type StringSequence struct {
	Kind StringKind
	Data []byte
}

func (CSI) isSequence()            {}
func (ESC) isSequence()            {}
func (OSC) isSequence()            {}
func (DCS) isSequence()            {}
func (StringSequence) isSequence() {}

// Param returns parameter i, or def when it is missing or zero.
func (s CSI) Param(i, def int) int {
	v, _, ok := s.Params.Param(i, def)
	if !ok || v == 0 {
		return def
	}
	return v
}

// RawParam returns parameter i, or def only when it is missing.
func (s CSI) RawParam(i, def int) int {
	v, _, _ := s.Params.Param(i, def)
	return v
}

func (s CSI) String() string {
	return "CSI " + cmdString(s.Cmd, s.Params)
}

func (s ESC) String() string {
	return "ESC " + cmdString(s.Cmd, nil)
}

func (s OSC) String() string {
	return fmt.Sprintf("OSC %d;%q", s.Num, s.Data)
}

func (s DCS) String() string {
	return fmt.Sprintf("DCS %s %q", cmdString(s.Cmd, s.Params), s.Data)
}

func (s StringSequence) String() string {
	return fmt.Sprintf("%c-string %q", s.Kind, s.Data)
}

func cmdString(cmd ansi.Cmd, params ansi.Params) string {
	var out []byte
	if p := cmd.Prefix(); p != 0 {
		out = append(out, p)
	}
	for i, p := range params {
		if v := p.Param(-1); v >= 0 {
			out = fmt.Appendf(out, "%d", v)
		}
		if i < len(params)-1 {
			if p.HasMore() {
				out = append(out, ':')
			} else {
				out = append(out, ';')
			}
		}
	}
	if in := cmd.Intermediate(); in != 0 {
		out = append(out, in)
	}
	out = append(out, cmd.Final())
	return string(out)
}
