package vterm

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/ansi/parser"
)

// State is a DEC parser state.
type State uint8

const (
	StateGround State = iota
	StateEscape
	StateEscapeIntermediate
	StateCSIEntry
	StateCSIParam
	StateCSIIntermediate
	StateCSIIgnore
	StateOSCString
	StateDCSEntry
	StateDCSParam
	StateDCSIntermediate
	StateDCSPassthrough
	StateDCSIgnore
	StateSOSString
)

var stateNames = [...]string{
	"Ground",
	"Escape",
	"EscapeIntermediate",
	"CSIEntry",
	"CSIParam",
	"CSIIntermediate",
	"CSIIgnore",
	"OSCString",
	"DCSEntry",
	"DCSParam",
	"DCSIntermediate",
	"DCSPassthrough",
	"DCSIgnore",
	"SOSString",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

const (
	// MaxParams is the number of parameters kept per sequence; extras are dropped.
	MaxParams = parser.MaxParamsSize
	// MaxParamValue caps a single numeric parameter.
	MaxParamValue = parser.MaxParam
	// MaxStringData caps OSC, DCS, SOS, PM and APC payloads.
	MaxStringData = 64 * 1024
)

// Handler receives the parser's actions.
type Handler interface {
	// Print is called for a printable rune in the ground state.
	Print(r rune)
	// Execute is called for C0 and C1 controls.
	Execute(r rune)
	// Dispatch is called once per completed sequence.
	Dispatch(seq Sequence)
}

// Parser is the DEC ANSI state machine. It consumes runes from a Decoder and
// is not safe for concurrent use.
type Parser struct {
	handler Handler
	state   State

	prefix     byte
	inter      byte
	interCount int
	final      byte

	params     [MaxParams]ansi.Param
	nparams    int
	cur        int
	curSet     bool
	paramsSeen bool

	data     []byte
	kind     StringKind
	overflow bool
}

// NewParser creates a parser that reports to h.
func NewParser(h Handler) *Parser {
	return &Parser{handler: h}
}

// State returns the current FSM state.
func (p *Parser) State() State {
	return p.state
}

// Reset drops any in-flight sequence and returns to ground.
func (p *Parser) Reset() {
	p.clear()
	p.data = p.data[:0]
	p.state = StateGround
}

func (p *Parser) clear() {
	p.prefix = 0
	p.inter = 0
	p.interCount = 0
	p.final = 0
	p.nparams = 0
	p.cur = 0
	p.curSet = false
	p.paramsSeen = false
	p.overflow = false
}

// Parse feeds raw bytes through a throwaway UTF-8 decoder. Callers that
// stream data should keep their own Decoder.
func (p *Parser) Parse(data []byte) {
	var d Decoder
	d.Decode(data, p.Advance)
}

// Advance consumes one rune.
func (p *Parser) Advance(r rune) {
	// Transitions valid from every state.
	switch {
	case r == ansi.CAN || r == ansi.SUB:
		p.handler.Execute(r)
		p.Reset()
		return
	case r == ansi.ESC:
		p.endString()
		p.clear()
		p.state = StateEscape
		return
	case r >= 0x80 && r <= 0x9f:
		p.advanceC1(r)
		return
	}

	switch p.state {
	case StateGround:
		p.ground(r)
	case StateEscape:
		p.escape(r)
	case StateEscapeIntermediate:
		p.escapeIntermediate(r)
	case StateCSIEntry, StateCSIParam:
		p.csiParam(r)
	case StateCSIIntermediate:
		p.csiIntermediate(r)
	case StateCSIIgnore:
		p.csiIgnore(r)
	case StateOSCString:
		p.oscString(r)
	case StateDCSEntry, StateDCSParam:
		p.dcsParam(r)
	case StateDCSIntermediate:
		p.dcsIntermediate(r)
	case StateDCSPassthrough, StateSOSString:
		switch {
		case isFormatControl(r) || r == ansi.BEL:
			p.handler.Execute(r)
		case r != ansi.DEL:
			p.put(r)
		}
	case StateDCSIgnore:
	}
}

func (p *Parser) advanceC1(r rune) {
	switch r {
	case ansi.ST:
		p.endString()
		p.Reset()
	case ansi.CSI:
		p.endString()
		p.clear()
		p.state = StateCSIEntry
	case ansi.OSC:
		p.endString()
		p.startString(StateOSCString, 0)
	case ansi.DCS:
		p.endString()
		p.clear()
		p.state = StateDCSEntry
	case ansi.SOS:
		p.endString()
		p.startString(StateSOSString, KindSOS)
	case ansi.PM:
		p.endString()
		p.startString(StateSOSString, KindPM)
	case ansi.APC:
		p.endString()
		p.startString(StateSOSString, KindAPC)
	default:
		p.endString()
		p.Reset()
		p.handler.Execute(r)
	}
}

func isC0(r rune) bool {
	return r < 0x20
}

// isFormatControl reports BS, HT, LF, VT, FF and CR. They execute even inside
// a control string, which keeps collecting afterwards.
func isFormatControl(r rune) bool {
	return r >= ansi.BS && r <= ansi.CR
}

func (p *Parser) ground(r rune) {
	switch {
	case isC0(r):
		p.handler.Execute(r)
	case r == ansi.DEL:
	default:
		p.handler.Print(r)
	}
}

func (p *Parser) escape(r rune) {
	switch {
	case isC0(r):
		p.handler.Execute(r)
	case r >= 0x20 && r <= 0x2f:
		p.collect(r)
		p.state = StateEscapeIntermediate
	case r == '[':
		p.clear()
		p.state = StateCSIEntry
	case r == ']':
		p.startString(StateOSCString, 0)
	case r == 'P':
		p.clear()
		p.state = StateDCSEntry
	case r == 'X':
		p.startString(StateSOSString, KindSOS)
	case r == '^':
		p.startString(StateSOSString, KindPM)
	case r == '_':
		p.startString(StateSOSString, KindAPC)
	case r >= 0x30 && r <= 0x7e:
		p.state = StateGround
		p.handler.Dispatch(ESC{Cmd: ansi.Cmd(ansi.Command(0, 0, byte(r)))})
	case r == ansi.DEL:
	default:
		p.state = StateGround
	}
}

func (p *Parser) escapeIntermediate(r rune) {
	switch {
	case isC0(r):
		p.handler.Execute(r)
	case r >= 0x20 && r <= 0x2f:
		p.collect(r)
	case r >= 0x30 && r <= 0x7e:
		p.state = StateGround
		if p.interCount > 1 {
			return
		}
		p.handler.Dispatch(ESC{Cmd: ansi.Cmd(ansi.Command(0, p.inter, byte(r)))})
	case r == ansi.DEL:
	default:
		p.state = StateGround
	}
}

func (p *Parser) csiParam(r rune) {
	switch {
	case isC0(r):
		p.handler.Execute(r)
	case r >= '0' && r <= '9', r == ';', r == ':':
		p.param(r)
		p.state = StateCSIParam
	case r >= 0x3c && r <= 0x3f:
		if p.state != StateCSIEntry {
			p.state = StateCSIIgnore
			return
		}
		p.prefix = byte(r)
		p.state = StateCSIParam
	case r >= 0x20 && r <= 0x2f:
		p.collect(r)
		p.state = StateCSIIntermediate
	case r >= 0x40 && r <= 0x7e:
		p.dispatchCSI(byte(r))
	case r == ansi.DEL:
	default:
		p.state = StateCSIIgnore
	}
}

func (p *Parser) csiIntermediate(r rune) {
	switch {
	case isC0(r):
		p.handler.Execute(r)
	case r >= 0x20 && r <= 0x2f:
		p.collect(r)
	case r >= 0x40 && r <= 0x7e:
		p.dispatchCSI(byte(r))
	case r == ansi.DEL:
	default:
		p.state = StateCSIIgnore
	}
}

func (p *Parser) csiIgnore(r rune) {
	switch {
	case isC0(r):
		p.handler.Execute(r)
	case r >= 0x40 && r <= 0x7e:
		p.Reset()
	}
}

func (p *Parser) dispatchCSI(final byte) {
	p.state = StateGround
	if p.interCount > 1 {
		return
	}
	p.finishParams()
	p.handler.Dispatch(CSI{
		Cmd:    ansi.Cmd(ansi.Command(p.prefix, p.inter, final)),
		Params: p.takeParams(),
	})
}

func (p *Parser) dcsParam(r rune) {
	switch {
	case isC0(r), r == ansi.DEL:
	case r >= '0' && r <= '9', r == ';', r == ':':
		p.param(r)
		p.state = StateDCSParam
	case r >= 0x3c && r <= 0x3f:
		if p.state != StateDCSEntry {
			p.state = StateDCSIgnore
			return
		}
		p.prefix = byte(r)
		p.state = StateDCSParam
	case r >= 0x20 && r <= 0x2f:
		p.collect(r)
		p.state = StateDCSIntermediate
	case r >= 0x40 && r <= 0x7e:
		p.hookDCS(byte(r))
	default:
		p.state = StateDCSIgnore
	}
}

func (p *Parser) dcsIntermediate(r rune) {
	switch {
	case isC0(r), r == ansi.DEL:
	case r >= 0x20 && r <= 0x2f:
		p.collect(r)
	case r >= 0x40 && r <= 0x7e:
		p.hookDCS(byte(r))
	default:
		p.state = StateDCSIgnore
	}
}

func (p *Parser) hookDCS(final byte) {
	if p.interCount > 1 {
		p.state = StateDCSIgnore
		return
	}
	p.finishParams()
	p.final = final
	p.data = p.data[:0]
	p.state = StateDCSPassthrough
}

func (p *Parser) oscString(r rune) {
	switch {
	case r == ansi.BEL:
		p.endString()
		p.Reset()
	case isFormatControl(r):
		p.handler.Execute(r)
	case isC0(r):
	default:
		p.put(r)
	}
}

func (p *Parser) startString(state State, kind StringKind) {
	p.clear()
	p.data = p.data[:0]
	p.kind = kind
	p.state = state
}

func (p *Parser) put(r rune) {
	if p.overflow {
		return
	}
	if len(p.data)+utf8.RuneLen(r) > MaxStringData {
		p.overflow = true
		return
	}
	p.data = utf8.AppendRune(p.data, r)
}

// endString dispatches the pending string, if any, when it is terminated by
// ST, BEL or an interrupting ESC/C1.
func (p *Parser) endString() {
	switch p.state {
	case StateOSCString:
		p.handler.Dispatch(parseOSC(p.data))
	case StateDCSPassthrough:
		p.handler.Dispatch(DCS{
			Cmd:    ansi.Cmd(ansi.Command(p.prefix, p.inter, p.final)),
			Params: p.takeParams(),
			Data:   append([]byte(nil), p.data...),
		})
	case StateSOSString:
		p.handler.Dispatch(StringSequence{Kind: p.kind, Data: append([]byte(nil), p.data...)})
	default:
		return
	}
	p.data = p.data[:0]
	p.state = StateGround
}

func parseOSC(data []byte) OSC {
	s := string(data)
	num, rest, found := strings.Cut(s, ";")
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return OSC{Num: -1, Data: s}
	}
	if !found {
		rest = ""
	}
	return OSC{Num: n, Data: rest}
}

func (p *Parser) collect(r rune) {
	p.inter = byte(r)
	p.interCount++
}

func (p *Parser) param(r rune) {
	p.paramsSeen = true
	switch r {
	case ';', ':':
		p.pushParam(r == ':')
	default:
		if p.cur <= MaxParamValue {
			p.cur = p.cur*10 + int(r-'0')
		}
		p.curSet = true
	}
}

func (p *Parser) pushParam(hasMore bool) {
	v := parser.MissingParam
	if p.curSet {
		v = min(p.cur, MaxParamValue)
	}
	if p.nparams < MaxParams {
		p.params[p.nparams] = ansi.Param(ansi.Parameter(v, hasMore))
		p.nparams++
	}
	p.cur = 0
	p.curSet = false
}

func (p *Parser) finishParams() {
	if p.paramsSeen {
		p.pushParam(false)
		p.paramsSeen = false
	}
}

func (p *Parser) takeParams() ansi.Params {
	if p.nparams == 0 {
		return nil
	}
	out := make(ansi.Params, p.nparams)
	copy(out, p.params[:p.nparams])
	return out
}
