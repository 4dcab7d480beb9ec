package vterm

import (
	"encoding/base64"
	"net/url"
	"strings"
)

func (v *VTerm) dispatchOSC(s OSC) {
	switch s.Num {
	case 0:
		v.iconName = s.Data
		v.setTitle(s.Data)
	case 1:
		v.iconName = s.Data
	case 2:
		v.setTitle(s.Data)
	case 7:
		v.setWorkingDir(s.Data)
	case 8:
		v.setHyperlink(s.Data)
	case 52:
		v.clipboardWrite(s)
	default:
		logUnhandled(s)
	}
}

func (v *VTerm) setTitle(title string) {
	if title == v.title {
		return
	}
	v.title = title
	if fn := v.onTitle; fn != nil {
		v.queue(func() { fn(title) })
	}
}

// setWorkingDir accepts file://host/path URLs and bare paths.
func (v *VTerm) setWorkingDir(data string) {
	dir := data
	if u, err := url.Parse(data); err == nil && u.Scheme == "file" {
		dir = u.Path
	}
	if dir == "" {
		return
	}
	v.workingDir = dir
	if fn := v.onWorkingDir; fn != nil {
		v.queue(func() { fn(dir) })
	}
}

// setHyperlink handles OSC 8 ; params ; uri. An empty uri ends the link.
func (v *VTerm) setHyperlink(data string) {
	params, uri, ok := strings.Cut(data, ";")
	if !ok || uri == "" {
		v.link = nil
		return
	}
	link := &Hyperlink{URI: uri}
	for _, kv := range strings.Split(params, ":") {
		if id, found := strings.CutPrefix(kv, "id="); found {
			link.ID = id
		}
	}
	v.link = link
}

// clipboardWrite handles OSC 52 ; selection ; base64. Queries ("?") are not
// answered.
func (v *VTerm) clipboardWrite(s OSC) {
	sel, payload, ok := strings.Cut(s.Data, ";")
	if !ok || payload == "?" {
		logUnhandled(s)
		return
	}
	if sel == "" {
		sel = "c"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		logUnhandled(s)
		return
	}
	if fn := v.onClipboard; fn != nil {
		v.queue(func() { fn(sel, data) })
	}
}
