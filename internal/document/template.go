package document

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkform/docpress/internal/geom"
)

// ElementPatch is a partial update merged into an existing element.
// Nil fields leave the current value untouched; Style is merged field by
// field rather than replaced wholesale.
type ElementPatch struct {
	Label   *string     `json:"label,omitempty"`
	X       *float64    `json:"x,omitempty"`
	Y       *float64    `json:"y,omitempty"`
	Width   *float64    `json:"width,omitempty"`
	Height  *float64    `json:"height,omitempty"`
	Content *string     `json:"content,omitempty"`
	Binding *string     `json:"binding,omitempty"`
	Style   *StylePatch `json:"style,omitempty"`
}

// StylePatch is a partial style update. Nil fields keep the current value.
type StylePatch struct {
	FontSize        *float64 `json:"fontSize,omitempty"`
	FontWeight      *string  `json:"fontWeight,omitempty"`
	FontStyle       *string  `json:"fontStyle,omitempty"`
	TextDecoration  *string  `json:"textDecoration,omitempty"`
	Align           *string  `json:"align,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	Color           *string  `json:"color,omitempty"`
}

// NewElement creates an element of the given type with the default
// geometry and style for that type.
func NewElement(t ElementType) Element {
	el := Element{
		ID:     "el_" + uuid.NewString(),
		Type:   t,
		Label:  "New " + string(t),
		X:      50,
		Y:      50,
		Width:  200,
		Height: 50,
		Style:  &Style{FontSize: 12, Color: "#000000", Align: "left"},
	}
	switch t {
	case ElementTable:
		el.Width = 600
		el.Height = 200
	case ElementText:
		el.Content = "Double click to edit"
	}
	return el
}

// AddElement appends a fresh element of the given type and returns it.
func (t *Template) AddElement(typ ElementType) (Element, error) {
	if !typ.Valid() {
		return Element{}, fmt.Errorf("document: unknown element type %q", typ)
	}
	el := NewElement(typ)
	t.Elements = append(t.Elements, el)
	return el, nil
}

// UpdateElement merges a partial patch into the element with the given id.
// Width and height are clamped to the minimum element size. It returns
// false when no element has that id.
func (t *Template) UpdateElement(id string, patch ElementPatch) bool {
	for i := range t.Elements {
		el := &t.Elements[i]
		if el.ID != id {
			continue
		}
		applyPatch(el, patch)
		return true
	}
	return false
}

// DeleteElements removes every element whose id is in ids.
func (t *Template) DeleteElements(ids ...string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := t.Elements[:0]
	for _, el := range t.Elements {
		if !drop[el.ID] {
			kept = append(kept, el)
		}
	}
	t.Elements = kept
}

// FindElement returns a pointer to the element with the given id, or nil.
func (t *Template) FindElement(id string) *Element {
	for i := range t.Elements {
		if t.Elements[i].ID == id {
			return &t.Elements[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the template with a cleared ID and a
// "(Copy)" name suffix, ready to be saved as a new template.
func (t *Template) Clone() *Template {
	cp := *t
	cp.ID = ""
	cp.Name = t.Name + " (Copy)"
	cp.Layout = append([]string(nil), t.Layout...)
	cp.Elements = make([]Element, len(t.Elements))
	for i, el := range t.Elements {
		cp.Elements[i] = el
		if el.Style != nil {
			style := *el.Style
			cp.Elements[i].Style = &style
		}
	}
	return &cp
}

func applyPatch(el *Element, patch ElementPatch) {
	if patch.Label != nil {
		el.Label = *patch.Label
	}
	if patch.X != nil {
		el.X = *patch.X
	}
	if patch.Y != nil {
		el.Y = *patch.Y
	}
	if patch.Width != nil {
		el.Width = geom.ClampSize(*patch.Width)
	}
	if patch.Height != nil {
		el.Height = geom.ClampSize(*patch.Height)
	}
	if patch.Content != nil {
		el.Content = *patch.Content
	}
	if patch.Binding != nil {
		el.Binding = *patch.Binding
	}
	if patch.Style != nil {
		if el.Style == nil {
			el.Style = &Style{}
		}
		applyStylePatch(el.Style, *patch.Style)
	}
}

func applyStylePatch(s *Style, patch StylePatch) {
	if patch.FontSize != nil {
		s.FontSize = *patch.FontSize
	}
	if patch.FontWeight != nil {
		s.FontWeight = *patch.FontWeight
	}
	if patch.FontStyle != nil {
		s.FontStyle = *patch.FontStyle
	}
	if patch.TextDecoration != nil {
		s.TextDecoration = *patch.TextDecoration
	}
	if patch.Align != nil {
		s.Align = *patch.Align
	}
	if patch.BackgroundColor != nil {
		s.BackgroundColor = *patch.BackgroundColor
	}
	if patch.Color != nil {
		s.Color = *patch.Color
	}
}

// templateBody is the generic data bag of a persisted template row. The
// row hoists id and name out of the bag.
type templateBody struct {
	Metadata    Metadata    `json:"metadata"`
	BankDetails BankDetails `json:"bankDetails"`
	Layout      []string    `json:"layout,omitempty"`
	Elements    []Element   `json:"elements,omitempty"`
}

// TemplateRow is the persisted shape of a template:
// { id, name, data: { metadata, bankDetails, layout, elements } }.
type TemplateRow struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// ToRow serializes the template into its persisted row shape.
func (t *Template) ToRow() (TemplateRow, error) {
	body, err := json.Marshal(templateBody{
		Metadata:    t.Metadata,
		BankDetails: t.BankDetails,
		Layout:      t.Layout,
		Elements:    t.Elements,
	})
	if err != nil {
		return TemplateRow{}, fmt.Errorf("document: encoding template %q: %w", t.Name, err)
	}
	return TemplateRow{ID: t.ID, Name: t.Name, Data: body}, nil
}

// FromRow rebuilds a template from its persisted row shape.
func FromRow(row TemplateRow) (*Template, error) {
	var body templateBody
	if err := json.Unmarshal(row.Data, &body); err != nil {
		return nil, fmt.Errorf("document: decoding template %q: %w", row.Name, err)
	}
	return &Template{
		ID:          row.ID,
		Name:        row.Name,
		Metadata:    body.Metadata,
		BankDetails: body.BankDetails,
		Layout:      body.Layout,
		Elements:    body.Elements,
	}, nil
}
