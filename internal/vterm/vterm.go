package vterm

import (
	"sync"

	"github.com/andyrewlee/termcore/internal/perf"
)

// ResponseWriter is called when the terminal needs to send a response back to the PTY
type ResponseWriter func([]byte)

// Cursor is the cursor position (0-indexed) and its presentation flags.
type Cursor struct {
	X, Y    int
	Visible bool
	Shape   CursorShape
	Blink   bool
}

// CursorShape is the DECSCUSR shape.
type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

// VTerm is a virtual terminal: decoder, parser and screen state for one
// session. Write feeds PTY output; every other method may be called from any
// goroutine.
type VTerm struct {
	// feedMu serializes the decode/parse/dispatch pipeline.
	feedMu sync.Mutex
	// mu guards everything below. It is released only between complete
	// sequences, when queued callbacks run.
	mu sync.RWMutex

	decoder Decoder
	parser  *Parser

	cols, rows int

	primary   *Buffer
	alternate *Buffer
	active    *Buffer

	cursor      Cursor
	pendingWrap bool
	style       Style
	link        *Hyperlink
	charsets    charsets
	modes       ModeSet
	lastRune    rune

	// Scroll region [top, bottom)
	top, bottom int
	tabs        []bool

	title      string
	iconName   string
	titleStack []string
	workingDir string

	damage  damage
	urgent  bool
	pending []func()

	listener       func(Change)
	responseWriter ResponseWriter
	onTitle        func(string)
	onBell         func()
	onClipboard    func(selection string, data []byte)
	onWorkingDir   func(string)
}

// New creates a VTerm with the given dimensions and DefaultScrollback.
func New(cols, rows int) *VTerm {
	return NewWithScrollback(cols, rows, DefaultScrollback)
}

// NewWithScrollback creates a VTerm whose primary buffer keeps at most limit
// lines of history. A negative limit keeps everything.
func NewWithScrollback(cols, rows, limit int) *VTerm {
	if cols <= 0 || rows <= 0 {
		panic("vterm: non-positive size")
	}
	v := &VTerm{
		cols:    cols,
		rows:    rows,
		primary: newBuffer(cols, rows, true, limit),
	}
	v.alternate = newBuffer(cols, rows, false, 0)
	v.parser = NewParser(handler{v})
	v.reset()
	return v
}

// reset puts every piece of state back to power-on defaults (RIS).
func (v *VTerm) reset() {
	v.primary.clear(v.cols, Style{})
	v.primary.scrollback = nil
	v.primary.saved = savedCursor{}
	v.alternate.clear(v.cols, Style{})
	v.alternate.saved = savedCursor{}
	v.active = v.primary
	v.cursor = Cursor{Visible: true}
	v.pendingWrap = false
	v.style = Style{}
	v.link = nil
	v.charsets = newCharsets()
	v.modes = ModeSet(defaultModes)
	v.lastRune = 0
	v.top, v.bottom = 0, v.rows
	v.resetTabs()
	v.title, v.iconName = "", ""
	v.titleStack = nil
	v.decoder.SetLegacy(false)
	v.damage.markFull()
}

// SetScrollbackLimit changes the history limit; shrinking trims oldest lines.
func (v *VTerm) SetScrollbackLimit(limit int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.primary.limit = limit
	v.primary.trimScrollback()
}

// SetResponseWriter sets the callback for terminal query responses
func (v *VTerm) SetResponseWriter(w ResponseWriter) {
	v.mu.Lock()
	v.responseWriter = w
	v.mu.Unlock()
}

// SetListener registers the change notification callback. It runs outside
// the state lock, on the goroutine calling Write or Resize.
func (v *VTerm) SetListener(fn func(Change)) {
	v.mu.Lock()
	v.listener = fn
	v.mu.Unlock()
}

// SetTitleHandler is called when OSC 0 or 2 changes the window title.
func (v *VTerm) SetTitleHandler(fn func(string)) {
	v.mu.Lock()
	v.onTitle = fn
	v.mu.Unlock()
}

// SetBellHandler is called on BEL.
func (v *VTerm) SetBellHandler(fn func()) {
	v.mu.Lock()
	v.onBell = fn
	v.mu.Unlock()
}

// SetClipboardHandler receives decoded OSC 52 writes.
func (v *VTerm) SetClipboardHandler(fn func(selection string, data []byte)) {
	v.mu.Lock()
	v.onClipboard = fn
	v.mu.Unlock()
}

// SetWorkingDirHandler receives OSC 7 working directory updates.
func (v *VTerm) SetWorkingDirHandler(fn func(string)) {
	v.mu.Lock()
	v.onWorkingDir = fn
	v.mu.Unlock()
}

// Write processes input bytes from PTY. It never fails; malformed input is
// dropped by the parser.
func (v *VTerm) Write(p []byte) (int, error) {
	defer perf.Time("vterm_write")()

	v.feedMu.Lock()
	defer v.feedMu.Unlock()

	v.mu.Lock()
	v.decoder.Decode(p, v.advance)
	v.queueChange()
	calls := v.takePending()
	v.mu.Unlock()

	runAll(calls)
	return len(p), nil
}

// WriteString is Write for strings.
func (v *VTerm) WriteString(s string) (int, error) {
	return v.Write([]byte(s))
}

func (v *VTerm) advance(r rune) {
	v.parser.Advance(r)
	if !v.urgent {
		return
	}
	// Publish before the next rune so mode changes are never coalesced away.
	v.urgent = false
	v.queueChange()
	calls := v.takePending()
	v.mu.Unlock()
	runAll(calls)
	v.mu.Lock()
}

// queue defers fn until the state lock is released.
func (v *VTerm) queue(fn func()) {
	v.pending = append(v.pending, fn)
}

func (v *VTerm) takePending() []func() {
	calls := v.pending
	v.pending = nil
	return calls
}

func runAll(calls []func()) {
	for _, fn := range calls {
		fn()
	}
}

func (v *VTerm) respond(s string) {
	if w := v.responseWriter; w != nil {
		data := []byte(s)
		v.queue(func() { w(data) })
	}
}

// Size returns the grid dimensions.
func (v *VTerm) Size() (cols, rows int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cols, v.rows
}

// Cursor returns the cursor state.
func (v *VTerm) Cursor() Cursor {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cursor
}

// CursorVisible reports DECTCEM.
func (v *VTerm) CursorVisible() bool {
	return v.Mode(ModeShowCursor)
}

// Mode reports whether m is set.
func (v *VTerm) Mode(m Mode) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.modes.Has(m)
}

// Modes returns every mode flag.
func (v *VTerm) Modes() ModeSet {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.modes
}

// AltScreen reports whether the alternate buffer is active.
func (v *VTerm) AltScreen() bool {
	return v.Mode(ModeAltScreen)
}

// Title returns the window title set by OSC 0/2.
func (v *VTerm) Title() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.title
}

// IconName returns the icon name set by OSC 0/1.
func (v *VTerm) IconName() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.iconName
}

// WorkingDir returns the path from the last OSC 7.
func (v *VTerm) WorkingDir() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.workingDir
}

// ScrollbackLen returns the number of history lines.
func (v *VTerm) ScrollbackLen() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.primary.scrollback)
}

// ScrollbackRow returns a copy of history line i, oldest first.
func (v *VTerm) ScrollbackRow(i int) (Row, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if i < 0 || i >= len(v.primary.scrollback) {
		return Row{}, false
	}
	return copyRow(v.primary.scrollback[i]), true
}

// Cell returns the cell at (x, y) of the active buffer.
func (v *VTerm) Cell(x, y int) (Cell, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if y < 0 || y >= v.rows || x < 0 || x >= v.cols {
		return Cell{}, false
	}
	return v.active.rows[y].Cells[x], true
}

// LineText returns the text of row y of the active buffer.
func (v *VTerm) LineText(y int) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if y < 0 || y >= v.rows {
		return ""
	}
	return v.active.rows[y].Text()
}

// ScrollRegion returns the 0-based scroll region [top, bottom).
func (v *VTerm) ScrollRegion() (top, bottom int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.top, v.bottom
}
