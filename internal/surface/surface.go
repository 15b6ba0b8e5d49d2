/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package surface

import (
	"strconv"
	"sync"

	"pagecomposer/internal/geometry"
	"pagecomposer/internal/model"
)

// CanvasID is the id of the root element of every surface.
const CanvasID = "canvas"

// Editor-only vocabulary. Elements carrying one of the affordance classes are
// editing chrome and never part of a component's content or exported markup.
const (
	ClassResizer       = "resizer"
	ClassControls      = "component-controls"
	ClassDeleteIcon    = "delete-icon"
	ClassLabel         = "component-label"
	ClassDropPreview   = "grid-drop-preview"
	ClassGuide         = "alignment-guide"
	ClassLinkEdit      = "link-edit-widget"
	ClassTableRowsCtrl = "table-row-buttons"

	ClassSelected  = "selected"
	ClassResizable = "resizable"
	ClassPending   = "pending"
)

var affordanceClasses = []string{
	ClassResizer, ClassControls, ClassDeleteIcon, ClassLabel,
	ClassDropPreview, ClassGuide, ClassLinkEdit, ClassTableRowsCtrl,
}

// EditorStateClasses are class tokens describing editor state only.
var EditorStateClasses = []string{ClassSelected, ClassResizable, ClassPending}

// EditorAttributes are attributes set only while editing.
var EditorAttributes = []string{"contenteditable", "draggable"}

// IsAffordance reports whether el is editor chrome.
func IsAffordance(el *Element) bool {
	if el == nil || el.IsText() {
		return false
	}
	for _, c := range affordanceClasses {
		if el.HasClass(c) {
			return true
		}
	}
	return false
}

// NotAffordance is a keep-filter for markup conversion.
func NotAffordance(el *Element) bool { return !IsAffordance(el) }

// Surface owns the root canvas element and reports geometry and computed
// style for elements attached to it.
type Surface struct {
	// Origin is the client-space position of the canvas; Scroll its scroll offset.
	Origin geometry.Pt
	Scroll geometry.Pt

	root *Element

	mu        sync.Mutex
	observers map[*Element][]func(geometry.Rect)
}

// New returns a surface whose canvas has the given size.
func New(width, height float64) *Surface {
	root := NewElement("div")
	root.SetID(CanvasID)
	root.SetClasses([]string{"canvas"})
	root.Box = geometry.R(0, 0, width, height)
	return &Surface{root: root, observers: make(map[*Element][]func(geometry.Rect))}
}

// Root returns the canvas element.
func (s *Surface) Root() *Element { return s.root }

// ClientBounds is the canvas rectangle in client coordinates.
func (s *Surface) ClientBounds() geometry.Rect {
	return geometry.R(s.Origin.X, s.Origin.Y, s.root.Box.W, s.root.Box.H)
}

// BoundsOf returns el's box in canvas coordinates, including live offsets.
func (s *Surface) BoundsOf(el *Element) geometry.Rect {
	r := geometry.R(0, 0, el.Box.W, el.Box.H)
	for x := el; x != nil && x != s.root; x = x.parent {
		r.X += x.Box.X + x.Offset.X
		r.Y += x.Box.Y + x.Offset.Y
	}
	return r
}

// Attached reports whether el is inside this surface.
func (s *Surface) Attached(el *Element) bool { return el != nil && s.root.Contains(el) }

// Observe registers fn to run whenever SetBox changes el's size.
func (s *Surface) Observe(el *Element, fn func(geometry.Rect)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers[el] = append(s.observers[el], fn)
}

// Unobserve drops all size observers of el and its descendants.
func (s *Surface) Unobserve(el *Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el.Walk(func(x *Element) bool {
		delete(s.observers, x)
		return true
	})
}

// SetBox updates el's geometry and notifies size observers on a size change.
func (s *Surface) SetBox(el *Element, r geometry.Rect) {
	resized := el.Box.W != r.W || el.Box.H != r.H
	el.Box = r
	if !resized {
		return
	}
	s.mu.Lock()
	fns := append([]func(geometry.Rect){}, s.observers[el]...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(r)
	}
}

// Computed returns el's effective style: user-agent defaults, then
// overrides, then inline declarations, then the measured size.
func (s *Surface) Computed(el *Element) model.Style {
	st := defaultsFor(el.Tag)
	st = st.Merge(el.overrides)
	for _, p := range PaintProperties {
		if v, ok := el.Attr(p); ok {
			st.Set(p, v)
		}
	}
	for _, d := range el.Style() {
		st.Set(d.Property, StripImportant(d.Value))
	}
	if el.Box.W > 0 {
		st.Set("width", Px(el.Box.W))
	}
	if el.Box.H > 0 {
		st.Set("height", Px(el.Box.H))
	}
	return st
}

// PaintProperties are the vector-graphic paint properties, which may also be
// given as presentation attributes.
var PaintProperties = []string{
	"fill", "fill-opacity", "fill-rule",
	"stroke", "stroke-width", "stroke-opacity", "stroke-linecap", "stroke-linejoin", "stroke-dasharray",
	"opacity",
}

// Px formats a pixel length.
func Px(v float64) string { return strconv.FormatFloat(geometry.FloatRound(v, 3), 'f', -1, 64) + "px" }

// ParsePx reads a pixel length; ok is false for other units.
func ParsePx(v string) (float64, bool) {
	if len(v) < 3 || v[len(v)-2:] != "px" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v[:len(v)-2], 64)
	return f, err == nil
}

var uaDefaults = map[string]model.Style{
	"div":     {{Property: "display", Value: "block"}},
	"p":       {{Property: "display", Value: "block"}, {Property: "margin-top", Value: "16px"}, {Property: "margin-bottom", Value: "16px"}},
	"h1":      {{Property: "display", Value: "block"}, {Property: "font-size", Value: "32px"}, {Property: "font-weight", Value: "700"}},
	"h2":      {{Property: "display", Value: "block"}, {Property: "font-size", Value: "24px"}, {Property: "font-weight", Value: "700"}},
	"header":  {{Property: "display", Value: "block"}},
	"nav":     {{Property: "display", Value: "block"}},
	"span":    {{Property: "display", Value: "inline"}},
	"a":       {{Property: "display", Value: "inline"}, {Property: "color", Value: "rgb(0, 0, 238)"}, {Property: "cursor", Value: "pointer"}, {Property: "text-decoration", Value: "underline"}},
	"img":     {{Property: "display", Value: "inline-block"}},
	"video":   {{Property: "display", Value: "inline-block"}},
	"table":   {{Property: "display", Value: "table"}, {Property: "border-collapse", Value: "separate"}},
	"tbody":   {{Property: "display", Value: "table-row-group"}},
	"tr":      {{Property: "display", Value: "table-row"}},
	"td":      {{Property: "display", Value: "table-cell"}, {Property: "padding", Value: "1px"}},
	"th":      {{Property: "display", Value: "table-cell"}, {Property: "font-weight", Value: "700"}},
	"button":  {{Property: "display", Value: "inline-block"}, {Property: "cursor", Value: "default"}},
	"svg":     {{Property: "display", Value: "inline"}},
	"section": {{Property: "display", Value: "block"}},
}

func defaultsFor(tag string) model.Style {
	if st, ok := uaDefaults[tag]; ok {
		return st.Clone()
	}
	return model.Style{}
}

// DefaultStyle returns the user-agent style of tag.
func DefaultStyle(tag string) model.Style { return defaultsFor(tag) }
