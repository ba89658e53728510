package editor

import "github.com/inkform/docpress/internal/document"

// MaxHistory bounds the undo stack. Snapshots are whole templates, so the
// cap keeps long editing sessions from growing memory without bound.
const MaxHistory = 50

// history is an index-based undo stack of template snapshots. entries[idx]
// is always the current state; undo moves the index left, redo moves it
// right, and a new push discards everything to the right.
type history struct {
	entries []*document.Template
	idx     int
}

func newHistory(initial *document.Template) *history {
	return &history{entries: []*document.Template{snapshot(initial)}}
}

// push records a new current state. Redo entries are discarded and the
// oldest entry is dropped once the cap is reached.
func (h *history) push(t *document.Template) {
	h.entries = append(h.entries[:h.idx+1], snapshot(t))
	if len(h.entries) > MaxHistory {
		h.entries = h.entries[len(h.entries)-MaxHistory:]
	}
	h.idx = len(h.entries) - 1
}

func (h *history) canUndo() bool { return h.idx > 0 }
func (h *history) canRedo() bool { return h.idx < len(h.entries)-1 }

// undo steps back and returns the restored state, or nil at the bottom.
func (h *history) undo() *document.Template {
	if !h.canUndo() {
		return nil
	}
	h.idx--
	return snapshot(h.entries[h.idx])
}

// redo steps forward and returns the restored state, or nil at the top.
func (h *history) redo() *document.Template {
	if !h.canRedo() {
		return nil
	}
	h.idx++
	return snapshot(h.entries[h.idx])
}

// snapshot deep-copies a template so later edits cannot bleed into stored
// history entries.
func snapshot(t *document.Template) *document.Template {
	cp := *t
	cp.Layout = append([]string(nil), t.Layout...)
	cp.Elements = make([]document.Element, len(t.Elements))
	for i, el := range t.Elements {
		cp.Elements[i] = el
		if el.Style != nil {
			style := *el.Style
			cp.Elements[i].Style = &style
		}
	}
	return &cp
}
