/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package surface is a headless rendering surface for the canvas editor.
// It models the rendered page as an element tree that can report geometry and
// computed style, and converts to and from HTML markup through
// golang.org/x/net/html. Everything above this package (snapping, history,
// serialisation, code generation) works on Elements only.
package surface

import (
	"strings"

	"golang.org/x/net/html"

	"pagecomposer/internal/geometry"
	"pagecomposer/internal/model"
)

// Element is one node of the surface tree. Text nodes have an empty Tag.
// Box is relative to the parent element; Offset is the live visual transform
// applied during a drag and is never serialised.
type Element struct {
	Tag  string
	Text string

	Box    geometry.Rect
	Offset geometry.Pt

	attrs     []html.Attribute
	children  []*Element
	parent    *Element
	overrides model.Style
}

// NewElement returns a detached element.
func NewElement(tag string) *Element { return &Element{Tag: strings.ToLower(tag)} }

// NewText returns a detached text node.
func NewText(s string) *Element { return &Element{Text: s} }

func (e *Element) IsText() bool { return e.Tag == "" }

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute, keeping first-seen order.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.attrs {
		if a.Key == key {
			e.attrs[i].Val = val
			return
		}
	}
	e.attrs = append(e.attrs, html.Attribute{Key: key, Val: val})
}

func (e *Element) RemoveAttr(key string) {
	out := e.attrs[:0]
	for _, a := range e.attrs {
		if a.Key != key {
			out = append(out, a)
		}
	}
	e.attrs = out
}

// Attrs returns a copy of the attribute list.
func (e *Element) Attrs() []html.Attribute { return append([]html.Attribute(nil), e.attrs...) }

func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

func (e *Element) SetID(id string) {
	if id == "" {
		e.RemoveAttr("id")
		return
	}
	e.SetAttr("id", id)
}

// Classes returns the class tokens in order.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(names ...string) {
	cls := e.Classes()
	for _, n := range names {
		found := false
		for _, c := range cls {
			if c == n {
				found = true
				break
			}
		}
		if !found {
			cls = append(cls, n)
		}
	}
	e.SetClasses(cls)
}

func (e *Element) RemoveClass(names ...string) {
	cls := e.Classes()
	out := cls[:0]
	for _, c := range cls {
		drop := false
		for _, n := range names {
			if c == n {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, c)
		}
	}
	e.SetClasses(out)
}

// SetClasses replaces the class list; duplicates are dropped.
func (e *Element) SetClasses(cls []string) {
	seen := make(map[string]bool, len(cls))
	out := make([]string, 0, len(cls))
	for _, c := range cls {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(out, " "))
}

// InlineStyle returns the raw style attribute.
func (e *Element) InlineStyle() string {
	v, _ := e.Attr("style")
	return v
}

func (e *Element) SetInlineStyle(s string) {
	if strings.TrimSpace(s) == "" {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", s)
}

// Style returns the parsed inline declarations.
func (e *Element) Style() model.Style { return ParseInline(e.InlineStyle()) }

// SetStyle sets one inline declaration.
func (e *Element) SetStyle(prop, val string) {
	st := e.Style()
	st.Set(prop, val)
	e.SetInlineStyle(st.String())
}

func (e *Element) RemoveStyle(props ...string) {
	st := e.Style()
	for _, p := range props {
		st.Delete(p)
	}
	e.SetInlineStyle(st.String())
}

// Overrides are declarations applied below the inline style, the way a
// per-element stylesheet rule would be.
func (e *Element) Overrides() model.Style { return e.overrides.Clone() }

func (e *Element) SetOverride(prop, val string) { e.overrides.Set(prop, val) }

func (e *Element) ClearOverrides() { e.overrides = nil }

// DataAttributes returns all data-* attributes keyed by full attribute name.
func (e *Element) DataAttributes() map[string]string {
	var out map[string]string
	for _, a := range e.attrs {
		if strings.HasPrefix(a.Key, "data-") {
			if out == nil {
				out = make(map[string]string)
			}
			out[a.Key] = a.Val
		}
	}
	return out
}

func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the child list, text nodes included.
func (e *Element) Children() []*Element { return append([]*Element(nil), e.children...) }

// ElementChildren returns child elements, skipping text nodes.
func (e *Element) ElementChildren() []*Element {
	out := make([]*Element, 0, len(e.children))
	for _, c := range e.children {
		if !c.IsText() {
			out = append(out, c)
		}
	}
	return out
}

func (e *Element) IndexOf(c *Element) int {
	for i, x := range e.children {
		if x == c {
			return i
		}
	}
	return -1
}

// AppendChild detaches c from its current parent and appends it to e.
func (e *Element) AppendChild(c *Element) {
	c.Remove()
	c.parent = e
	e.children = append(e.children, c)
}

// InsertChild inserts c at index i (clamped to the valid range).
func (e *Element) InsertChild(i int, c *Element) {
	c.Remove()
	if i < 0 {
		i = 0
	}
	if i > len(e.children) {
		i = len(e.children)
	}
	c.parent = e
	e.children = append(e.children, nil)
	copy(e.children[i+1:], e.children[i:])
	e.children[i] = c
}

func (e *Element) RemoveChild(c *Element) bool {
	i := e.IndexOf(c)
	if i < 0 {
		return false
	}
	e.children = append(e.children[:i], e.children[i+1:]...)
	c.parent = nil
	return true
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

func (e *Element) ClearChildren() {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
}

// Walk visits e and its descendants in document order. Returning false from
// fn skips the subtree of that element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children() {
		c.Walk(fn)
	}
}

// Find returns the first descendant (not e itself) matching pred.
func (e *Element) Find(pred func(*Element) bool) *Element {
	var found *Element
	for _, c := range e.children {
		c.Walk(func(x *Element) bool {
			if found != nil {
				return false
			}
			if !x.IsText() && pred(x) {
				found = x
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant matching pred in document order.
func (e *Element) FindAll(pred func(*Element) bool) []*Element {
	var out []*Element
	for _, c := range e.children {
		c.Walk(func(x *Element) bool {
			if !x.IsText() && pred(x) {
				out = append(out, x)
			}
			return true
		})
	}
	return out
}

func (e *Element) FindByID(id string) *Element {
	return e.Find(func(x *Element) bool { return x.ID() == id })
}

func (e *Element) FirstByClass(class string) *Element {
	return e.Find(func(x *Element) bool { return x.HasClass(class) })
}

func (e *Element) FirstByTag(tag string) *Element {
	return e.Find(func(x *Element) bool { return x.Tag == tag })
}

// Closest returns e or its nearest ancestor matching pred.
func (e *Element) Closest(pred func(*Element) bool) *Element {
	for x := e; x != nil; x = x.parent {
		if !x.IsText() && pred(x) {
			return x
		}
	}
	return nil
}

// Contains reports whether o is e or one of its descendants.
func (e *Element) Contains(o *Element) bool {
	for x := o; x != nil; x = x.parent {
		if x == e {
			return true
		}
	}
	return false
}

// Clone returns a detached deep copy of e.
func (e *Element) Clone() *Element {
	c := &Element{
		Tag:       e.Tag,
		Text:      e.Text,
		Box:       e.Box,
		Offset:    e.Offset,
		attrs:     append([]html.Attribute(nil), e.attrs...),
		overrides: e.overrides.Clone(),
	}
	for _, ch := range e.children {
		cc := ch.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}
