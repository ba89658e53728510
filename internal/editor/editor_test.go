package editor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkform/docpress/internal/document"
)

func testTemplate() *document.Template {
	return &document.Template{
		Name: "Test",
		Elements: []document.Element{
			{ID: "a", Type: document.ElementText, X: 100, Y: 100, Width: 200, Height: 50},
			{ID: "b", Type: document.ElementBox, X: 300, Y: 300, Width: 100, Height: 100},
			{ID: "c", Type: document.ElementText, X: 500, Y: 500, Width: 200, Height: 50},
		},
	}
}

func TestNewSessionFallsBackToDefault(t *testing.T) {
	for _, tmpl := range []*document.Template{nil, {Name: "empty"}} {
		e := NewSession(tmpl, nil)
		assert.NotEmpty(t, e.Template().Elements, "session must never start with an empty canvas")
	}
}

func TestNewSessionCopiesTemplate(t *testing.T) {
	tmpl := testTemplate()
	e := NewSession(tmpl, nil)

	tmpl.Elements[0].X = -999
	assert.Equal(t, 100.0, e.Template().Elements[0].X)
}

func TestSelectReplaceAndAdditive(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerUp()
	assert.Equal(t, []string{"a"}, e.Selection())

	// Plain click on another element replaces the selection.
	e.PointerDown("b", 0, 0, PointerOptions{})
	e.PointerUp()
	assert.Equal(t, []string{"b"}, e.Selection())

	// Additive click extends it.
	e.PointerDown("a", 0, 0, PointerOptions{Additive: true})
	e.PointerUp()
	assert.Equal(t, []string{"b", "a"}, e.Selection())

	// Additive click on a selected element removes it.
	e.PointerDown("b", 0, 0, PointerOptions{Additive: true})
	e.PointerUp()
	assert.Equal(t, []string{"a"}, e.Selection())

	// Canvas click clears everything.
	e.PointerDown("", 0, 0, PointerOptions{})
	e.PointerUp()
	assert.Empty(t, e.Selection())
}

func TestDragSnapsToGrid(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerMove(23, 38)
	e.PointerUp()

	el := e.Template().FindElement("a")
	assert.Equal(t, 120.0, el.X) // 100+23 snapped to 120
	assert.Equal(t, 140.0, el.Y) // 100+38 snapped to 140
}

func TestDragMovesWholeSelection(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerDown("b", 0, 0, PointerOptions{Additive: true})
	e.PointerMove(50, 0)
	e.PointerUp()

	assert.Equal(t, 150.0, e.Template().FindElement("a").X)
	assert.Equal(t, 350.0, e.Template().FindElement("b").X)
	// Y untouched.
	assert.Equal(t, 100.0, e.Template().FindElement("a").Y)
}

func TestDragHonorsZoom(t *testing.T) {
	e := NewSession(testTemplate(), nil)
	e.SetZoom(0.5)

	// 50 screen pixels at 0.5x zoom is 100 page units.
	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerMove(50, 0)
	e.PointerUp()

	assert.Equal(t, 200.0, e.Template().FindElement("a").X)
}

func TestResizeClampsToMinimum(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{Handle: HandleSE})
	e.PointerMove(-500, -500)
	e.PointerUp()

	el := e.Template().FindElement("a")
	assert.Equal(t, 20.0, el.Width)
	assert.Equal(t, 20.0, el.Height)
	// Position never changes during a resize.
	assert.Equal(t, 100.0, el.X)
	assert.Equal(t, 100.0, el.Y)
}

func TestResizeTargetsMostRecentSelection(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerDown("b", 0, 0, PointerOptions{Additive: true, Handle: HandleSE})
	e.PointerMove(60, 40)
	e.PointerUp()

	// Only b, the most recent selection, resized.
	assert.Equal(t, 160.0, e.Template().FindElement("b").Width)
	assert.Equal(t, 140.0, e.Template().FindElement("b").Height)
	assert.Equal(t, 200.0, e.Template().FindElement("a").Width)
}

func TestGestureCommitsOnce(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	// Many intermediate moves, one gesture, one undo step.
	e.PointerDown("a", 0, 0, PointerOptions{})
	for i := 1; i <= 30; i++ {
		e.PointerMove(float64(i*10), 0)
	}
	e.PointerUp()

	assert.Equal(t, 400.0, e.Template().FindElement("a").X)
	require.True(t, e.Undo())
	assert.Equal(t, 100.0, e.Template().FindElement("a").X)
	assert.False(t, e.CanUndo())
}

func TestGestureWithoutMovementDoesNotCommit(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerUp()

	assert.False(t, e.CanUndo())
}

func TestUndoRedo(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerMove(100, 0)
	e.PointerUp()
	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerMove(100, 0)
	e.PointerUp()

	assert.Equal(t, 300.0, e.Template().FindElement("a").X)

	require.True(t, e.Undo())
	assert.Equal(t, 200.0, e.Template().FindElement("a").X)
	require.True(t, e.Redo())
	assert.Equal(t, 300.0, e.Template().FindElement("a").X)
	assert.False(t, e.Redo())

	// A new edit after undo discards the redo branch.
	require.True(t, e.Undo())
	e.PointerDown("b", 0, 0, PointerOptions{})
	e.PointerMove(0, 100)
	e.PointerUp()
	assert.False(t, e.CanRedo())
}

func TestHistoryBounded(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	for i := 0; i < MaxHistory+25; i++ {
		e.PointerDown("a", 0, 0, PointerOptions{})
		e.PointerMove(10, 0)
		e.PointerUp()
	}

	undos := 0
	for e.Undo() {
		undos++
	}
	assert.Equal(t, MaxHistory-1, undos, "undo depth must stay bounded")
}

func TestKeyboardShortcuts(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerMove(100, 0)
	e.PointerUp()

	// Ctrl+Z undoes, Ctrl+Y and Ctrl+Shift+Z redo.
	assert.True(t, e.HandleKey(KeyEvent{Key: "z", Ctrl: true}))
	assert.Equal(t, 100.0, e.Template().FindElement("a").X)
	assert.True(t, e.HandleKey(KeyEvent{Key: "y", Ctrl: true}))
	assert.Equal(t, 200.0, e.Template().FindElement("a").X)
	assert.True(t, e.HandleKey(KeyEvent{Key: "z", Ctrl: true}))
	assert.True(t, e.HandleKey(KeyEvent{Key: "Z", Ctrl: true, Shift: true}))
	assert.Equal(t, 200.0, e.Template().FindElement("a").X)

	// Cmd works where Ctrl does.
	assert.True(t, e.HandleKey(KeyEvent{Key: "z", Meta: true}))
	assert.Equal(t, 100.0, e.Template().FindElement("a").X)

	// Plain z is not a shortcut.
	assert.False(t, e.HandleKey(KeyEvent{Key: "z"}))
}

func TestArrowNudge(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerUp()

	assert.True(t, e.HandleKey(KeyEvent{Key: "ArrowRight"}))
	assert.Equal(t, 101.0, e.Template().FindElement("a").X)

	assert.True(t, e.HandleKey(KeyEvent{Key: "ArrowDown", Shift: true}))
	assert.Equal(t, 110.0, e.Template().FindElement("a").Y)

	// Each nudge is one undo step.
	assert.True(t, e.Undo())
	assert.Equal(t, 100.0, e.Template().FindElement("a").Y)
	assert.Equal(t, 101.0, e.Template().FindElement("a").X)

	// No selection, no nudge.
	e.ClearSelection()
	assert.False(t, e.HandleKey(KeyEvent{Key: "ArrowLeft"}))
}

func TestDeleteSelection(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerDown("c", 0, 0, PointerOptions{Additive: true})
	assert.True(t, e.HandleKey(KeyEvent{Key: "Delete"}))

	require.Len(t, e.Template().Elements, 1)
	assert.Equal(t, "b", e.Template().Elements[0].ID)
	assert.Empty(t, e.Selection())

	// Undo restores the deleted elements.
	require.True(t, e.Undo())
	assert.Len(t, e.Template().Elements, 3)

	assert.False(t, e.HandleKey(KeyEvent{Key: "Backspace"}), "delete with nothing selected")
}

func TestAddElementCommits(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	el, err := e.AddElement(document.ElementBox)
	require.NoError(t, err)
	assert.Equal(t, []string{el.ID}, e.Selection())
	assert.Len(t, e.Template().Elements, 4)

	require.True(t, e.Undo())
	assert.Len(t, e.Template().Elements, 3)

	_, err = e.AddElement(document.ElementType("bogus"))
	assert.Error(t, err)
}

func TestUpdateElementCommits(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	content := "Invoice No:"
	require.True(t, e.UpdateElement("a", document.ElementPatch{Content: &content}))
	assert.Equal(t, "Invoice No:", e.Template().FindElement("a").Content)

	require.True(t, e.Undo())
	assert.Equal(t, "", e.Template().FindElement("a").Content)

	assert.False(t, e.UpdateElement("missing", document.ElementPatch{Content: &content}))
}

func TestSetZoomClamped(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.SetZoom(0.05)
	assert.Equal(t, 0.3, e.Zoom())
	e.SetZoom(9)
	assert.Equal(t, 1.5, e.Zoom())
	e.SetZoom(1.0)
	assert.Equal(t, 1.0, e.Zoom())
}

func TestUndoDoesNotBleedIntoHistory(t *testing.T) {
	e := NewSession(testTemplate(), nil)

	e.PointerDown("a", 0, 0, PointerOptions{})
	e.PointerMove(100, 0)
	e.PointerUp()

	require.True(t, e.Undo())
	// Mutating the restored template must not corrupt the redo entry.
	e.Template().FindElement("a").X = -1
	require.True(t, e.Redo())
	assert.Equal(t, 200.0, e.Template().FindElement("a").X)
}

func previewRecord(lines int) *document.Record {
	rec := &document.Record{Currency: "USD"}
	for i := 0; i < lines; i++ {
		rec.AddLine(document.Line{
			Description: fmt.Sprintf("Line %d", i+1),
			Quantity:    2,
			Unit:        "Day",
			Rate:        100,
		})
	}
	return rec
}

func TestPreviewResolvesBindings(t *testing.T) {
	tmpl := &document.Template{
		Name: "p",
		Elements: []document.Element{
			{ID: "t1", Type: document.ElementText, Y: 10, Binding: "metadata.clientName"},
			{ID: "t2", Type: document.ElementText, Y: 20, Content: "static label"},
			{ID: "b1", Type: document.ElementBox, Y: 5},
		},
	}
	rec := previewRecord(1)
	rec.Metadata.ClientName = "QatarEnergy LNG"

	e := NewSession(tmpl, nil)
	views := Preview(e.Template(), rec)
	require.Len(t, views, 3)

	// Paint order: the box comes first.
	assert.Equal(t, "b1", views[0].Element.ID)
	assert.Equal(t, "QatarEnergy LNG", views[1].Text)
	assert.Equal(t, "static label", views[2].Text)
}

func TestPreviewTruncatesTableRows(t *testing.T) {
	tmpl := &document.Template{
		Name: "p",
		Elements: []document.Element{
			{ID: "tbl", Type: document.ElementTable, Y: 10},
		},
	}
	e := NewSession(tmpl, nil)

	views := Preview(e.Template(), previewRecord(MaxPreviewRows+3))
	require.Len(t, views, 1)
	assert.Len(t, views[0].Rows, MaxPreviewRows)
	assert.Equal(t, 3, views[0].Omitted)

	// Formatting matches the print path.
	assert.Equal(t, []string{"Line 1", "2 Day", "100.00", "200.00"}, views[0].Rows[0])
}
