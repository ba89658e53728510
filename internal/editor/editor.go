// Package editor implements the headless template editing session: element
// selection, pointer-driven drag and resize with grid snapping, keyboard
// shortcuts, and a bounded undo history. It holds no rendering state; a
// front end feeds it pointer and key events and reads the template back.
package editor

import (
	"go.uber.org/zap"

	"github.com/inkform/docpress/internal/document"
	"github.com/inkform/docpress/internal/geom"
)

// Handle names a resize grip. Only the south-east grip is supported;
// elements resize from their top-left anchor.
type Handle string

const HandleSE Handle = "se"

// gestureMode tracks what the active pointer gesture is doing.
type gestureMode int

const (
	gestureNone gestureMode = iota
	gestureDrag
	gestureResize
)

// elementStart remembers an element's geometry at gesture start so moves
// are computed against the original position, not the last intermediate.
type elementStart struct {
	id     string
	x, y   float64
	w, h   float64
}

// PointerOptions qualify a PointerDown event.
type PointerOptions struct {
	// Additive toggles the element in and out of the selection instead of
	// replacing it (shift or ctrl held).
	Additive bool
	// Handle, when non-empty, starts a resize gesture on that grip.
	Handle Handle
}

// Editor is a single editing session over one template. It is not safe for
// concurrent use; each session belongs to one user interaction stream.
type Editor struct {
	tmpl *document.Template
	hist *history
	log  *zap.Logger

	// selection in click order; the last entry is the most recent.
	selection []string
	zoom      float64

	mode    gestureMode
	startX  float64
	startY  float64
	starts  []elementStart
	changed bool
}

// NewSession starts an editing session. A nil template or one with no
// elements falls back to the built-in default so a session never starts
// with an empty canvas.
func NewSession(tmpl *document.Template, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	if tmpl == nil || len(tmpl.Elements) == 0 {
		if tmpl != nil {
			log.Warn("template has no elements, using default", zap.String("template", tmpl.Name))
		}
		tmpl = document.DefaultTemplate()
	}
	return &Editor{
		tmpl: snapshot(tmpl),
		hist: newHistory(tmpl),
		log:  log,
		zoom: 1.0,
	}
}

// Template returns the session's current template state.
func (e *Editor) Template() *document.Template { return e.tmpl }

// Zoom returns the current screen zoom factor.
func (e *Editor) Zoom() float64 { return e.zoom }

// SetZoom sets the screen zoom, clamped to the supported range. Zoom never
// touches stored geometry and is therefore not a history event.
func (e *Editor) SetZoom(z float64) {
	e.zoom = geom.ClampZoom(z)
}

// Selection returns the selected element ids in click order.
func (e *Editor) Selection() []string {
	return append([]string(nil), e.selection...)
}

// ClearSelection deselects everything.
func (e *Editor) ClearSelection() {
	e.selection = nil
}

// PointerDown starts a gesture on the element with the given id at the
// given screen position. Unknown ids clear the selection (a canvas click).
func (e *Editor) PointerDown(elementID string, screenX, screenY float64, opts PointerOptions) {
	e.startX = screenX
	e.startY = screenY
	e.changed = false

	el := e.tmpl.FindElement(elementID)
	if el == nil {
		e.selection = nil
		e.mode = gestureNone
		return
	}

	if opts.Additive {
		e.toggleSelect(elementID)
	} else if !e.isSelected(elementID) {
		e.selection = []string{elementID}
	} else {
		// Clicking an already-selected element keeps the group so the
		// whole selection can be dragged together.
		e.promote(elementID)
	}

	if opts.Handle == HandleSE {
		e.mode = gestureResize
	} else {
		e.mode = gestureDrag
	}
	e.captureStarts()
}

// PointerMove applies the active gesture at the new screen position.
// Drags move every selected element on the snap grid; resizes grow the
// most recently selected element, floored at the minimum size. Moves
// without a preceding PointerDown are ignored.
func (e *Editor) PointerMove(screenX, screenY float64) {
	if e.mode == gestureNone || len(e.starts) == 0 {
		return
	}
	dx := geom.ScreenToPage(screenX-e.startX, e.zoom)
	dy := geom.ScreenToPage(screenY-e.startY, e.zoom)

	switch e.mode {
	case gestureDrag:
		for _, s := range e.starts {
			el := e.tmpl.FindElement(s.id)
			if el == nil {
				continue
			}
			nx := geom.Snap(s.x + dx)
			ny := geom.Snap(s.y + dy)
			if nx != el.X || ny != el.Y {
				el.X = nx
				el.Y = ny
				e.changed = true
			}
		}
	case gestureResize:
		s := e.starts[len(e.starts)-1]
		el := e.tmpl.FindElement(s.id)
		if el == nil {
			return
		}
		nw := geom.ClampSize(geom.Snap(s.w + dx))
		nh := geom.ClampSize(geom.Snap(s.h + dy))
		if nw != el.Width || nh != el.Height {
			el.Width = nw
			el.Height = nh
			e.changed = true
		}
	}
}

// PointerUp ends the gesture. If anything moved, exactly one history entry
// is pushed for the whole gesture regardless of how many intermediate
// moves occurred.
func (e *Editor) PointerUp() {
	if e.mode == gestureNone {
		return
	}
	if e.changed {
		e.commit()
	}
	e.mode = gestureNone
	e.starts = nil
	e.changed = false
}

// KeyEvent is a keyboard event in the editor's terms. Key follows DOM
// naming ("z", "Delete", "ArrowLeft").
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
}

// HandleKey applies a keyboard shortcut. It returns true when the event
// was consumed.
func (e *Editor) HandleKey(ev KeyEvent) bool {
	mod := ev.Ctrl || ev.Meta
	switch {
	case mod && (ev.Key == "z" || ev.Key == "Z") && ev.Shift:
		return e.Redo()
	case mod && (ev.Key == "z" || ev.Key == "Z"):
		return e.Undo()
	case mod && (ev.Key == "y" || ev.Key == "Y"):
		return e.Redo()
	case ev.Key == "Delete" || ev.Key == "Backspace":
		return e.DeleteSelection()
	case ev.Key == "ArrowLeft":
		return e.nudge(-e.nudgeStep(ev.Shift), 0)
	case ev.Key == "ArrowRight":
		return e.nudge(e.nudgeStep(ev.Shift), 0)
	case ev.Key == "ArrowUp":
		return e.nudge(0, -e.nudgeStep(ev.Shift))
	case ev.Key == "ArrowDown":
		return e.nudge(0, e.nudgeStep(ev.Shift))
	}
	return false
}

func (e *Editor) nudgeStep(shift bool) float64 {
	if shift {
		return geom.SnapGrid
	}
	return 1
}

// nudge moves the whole selection by a page-unit delta and commits once.
func (e *Editor) nudge(dx, dy float64) bool {
	if len(e.selection) == 0 {
		return false
	}
	for _, id := range e.selection {
		if el := e.tmpl.FindElement(id); el != nil {
			el.X += dx
			el.Y += dy
		}
	}
	e.commit()
	return true
}

// DeleteSelection removes every selected element and commits.
func (e *Editor) DeleteSelection() bool {
	if len(e.selection) == 0 {
		return false
	}
	e.tmpl.DeleteElements(e.selection...)
	e.selection = nil
	e.commit()
	return true
}

// AddElement appends a fresh element, selects it, and commits.
func (e *Editor) AddElement(typ document.ElementType) (document.Element, error) {
	el, err := e.tmpl.AddElement(typ)
	if err != nil {
		return document.Element{}, err
	}
	e.selection = []string{el.ID}
	e.commit()
	return el, nil
}

// UpdateElement applies a property patch to one element and commits. Used
// for inspector edits (content, binding, style) rather than gestures.
func (e *Editor) UpdateElement(id string, patch document.ElementPatch) bool {
	if !e.tmpl.UpdateElement(id, patch) {
		return false
	}
	e.commit()
	return true
}

// Undo restores the previous history entry. Selection is dropped because
// the restored state may not contain the selected elements.
func (e *Editor) Undo() bool {
	prev := e.hist.undo()
	if prev == nil {
		return false
	}
	e.tmpl = prev
	e.selection = nil
	return true
}

// Redo restores the next history entry.
func (e *Editor) Redo() bool {
	next := e.hist.redo()
	if next == nil {
		return false
	}
	e.tmpl = next
	e.selection = nil
	return true
}

// CanUndo reports whether an undo step is available.
func (e *Editor) CanUndo() bool { return e.hist.canUndo() }

// CanRedo reports whether a redo step is available.
func (e *Editor) CanRedo() bool { return e.hist.canRedo() }

func (e *Editor) commit() {
	e.hist.push(e.tmpl)
}

func (e *Editor) isSelected(id string) bool {
	for _, s := range e.selection {
		if s == id {
			return true
		}
	}
	return false
}

// toggleSelect adds the id, or removes it when already selected.
func (e *Editor) toggleSelect(id string) {
	for i, s := range e.selection {
		if s == id {
			e.selection = append(e.selection[:i], e.selection[i+1:]...)
			return
		}
	}
	e.selection = append(e.selection, id)
}

// promote moves an already-selected id to the most-recent position.
func (e *Editor) promote(id string) {
	for i, s := range e.selection {
		if s == id {
			e.selection = append(append(e.selection[:i], e.selection[i+1:]...), id)
			return
		}
	}
}

func (e *Editor) captureStarts() {
	e.starts = e.starts[:0]
	for _, id := range e.selection {
		if el := e.tmpl.FindElement(id); el != nil {
			e.starts = append(e.starts, elementStart{
				id: id, x: el.X, y: el.Y, w: el.Width, h: el.Height,
			})
		}
	}
}
