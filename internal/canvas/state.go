/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"pagecomposer/internal/geometry"
	"pagecomposer/internal/model"
	"pagecomposer/internal/surface"
)

// canvasStyleAllowed is the allow-list of canvas properties kept in the
// canvas record.
func canvasStyleAllowed(prop string) bool {
	return strings.HasPrefix(prop, "background") ||
		strings.HasPrefix(prop, "padding") ||
		strings.HasPrefix(prop, "margin") ||
		prop == "min-height"
}

// GetState serialises the canvas record followed by one record per
// top-level component in order.
func (c *Canvas) GetState() model.Design {
	root := c.surf.Root()
	canvas := model.ComponentRecord{
		ID:          model.CanvasID,
		Type:        model.CanvasType,
		InlineStyle: root.InlineStyle(),
		Classes:     root.Classes(),
	}
	for _, d := range c.surf.Computed(root).WithoutNoise() {
		if canvasStyleAllowed(d.Property) {
			canvas.Style = append(canvas.Style, d)
		}
	}
	out := make(model.Design, 0, len(c.components)+1)
	out = append(out, canvas)
	for _, el := range c.components {
		out = append(out, c.record(el))
	}
	return out
}

func (c *Canvas) record(el *surface.Element) model.ComponentRecord {
	r := model.ComponentRecord{
		ID:             el.ID(),
		Type:           typeOf(el),
		Position:       model.Position{X: el.Box.X, Y: el.Box.Y},
		Dimensions:     model.Dimensions{Width: el.Box.W, Height: el.Box.H},
		Style:          c.surf.Computed(el).WithoutNoise(),
		InlineStyle:    el.InlineStyle(),
		Classes:        el.Classes(),
		DataAttributes: el.DataAttributes(),
	}
	if img := el.FirstByTag("img"); img != nil {
		r.ImageSrc, _ = img.Attr("src")
	}
	if v := el.FirstByTag("video"); v != nil {
		r.VideoSrc, _ = v.Attr("src")
	}
	if isCustom(el) {
		r.Props = map[string]any{}
		if raw, ok := el.Attr(attrProps); ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &r.Props); err != nil {
				c.log.Warn("custom props unreadable", slog.String("id", r.ID), slog.Any("err", err))
				r.Props = map[string]any{}
			}
		}
		return r
	}
	content, err := surface.InnerHTML(el, surface.NotAffordance)
	if err != nil {
		c.log.Warn("component content unreadable", slog.String("id", r.ID), slog.Any("err", err))
	}
	r.Content = content
	return r
}

// RestoreState replaces the live collection with the components of d and
// reapplies the canvas record. Records of unknown types are skipped.
// Restoring neither captures history nor notifies observers.
func (c *Canvas) RestoreState(d model.Design) {
	defer c.mute()()
	l := c.log.With(slog.String("op", "restore"))
	d = d.Clone()
	root := c.surf.Root()
	for i, r := range d {
		if r.ID == model.CanvasID && r.Type == model.CanvasType {
			root.SetInlineStyle(r.InlineStyle)
			root.SetClasses(r.Classes)
			d = append(d[:i], d[i+1:]...)
			break
		}
	}

	c.ctrl.Cancel()
	c.clearComponents()

	for _, r := range d {
		el := c.restoreRecord(r)
		if el == nil {
			l.Warn("record skipped", slog.String("id", r.ID), slog.String("type", r.Type))
			continue
		}
		root.AppendChild(el)
		c.components = append(c.components, el)
	}
	l.Debug("restored", slog.Int("components", len(c.components)))
}

func (c *Canvas) restoreRecord(r model.ComponentRecord) *surface.Element {
	settings := r.DataAttributes[attrCustomSettings]
	el := c.create(r.Type, settings, "", "", r.ID)
	if el == nil {
		return nil
	}
	custom := isCustom(el)
	if !custom {
		if err := el.SetInnerHTML(c.sanitize(r.Content)); err != nil {
			c.log.Warn("restore content", slog.String("id", r.ID), slog.Any("err", err))
		}
	}
	el.Box = geometry.R(r.Position.X, r.Position.Y, r.Dimensions.Width, r.Dimensions.Height)

	cls := make([]string, 0, len(r.Classes))
	for _, cl := range r.Classes {
		if cl == surface.ClassSelected {
			continue
		}
		if cl == surface.ClassResizable && !c.opts.Editable {
			continue
		}
		cls = append(cls, cl)
	}
	if len(cls) > 0 {
		el.SetClasses(cls)
	}
	el.SetInlineStyle(r.InlineStyle)

	el.ClearOverrides()
	computed := c.surf.Computed(el)
	for _, decl := range r.Style {
		if v, ok := computed.Get(decl.Property); !ok || v != decl.Value {
			el.SetOverride(decl.Property, decl.Value)
		}
	}
	for k, v := range r.DataAttributes {
		el.SetAttr(k, v)
	}
	if r.ImageSrc != "" {
		if img := el.FirstByTag("img"); img != nil {
			img.SetAttr("src", r.ImageSrc)
		}
	}
	if r.VideoSrc != "" {
		if v := el.FirstByTag("video"); v != nil {
			v.SetAttr("src", r.VideoSrc)
		}
	}
	if custom {
		props := r.Props
		if props == nil {
			props = map[string]any{}
		}
		if b, err := json.Marshal(props); err == nil {
			el.SetAttr(attrProps, string(b))
		}
	}
	if c.opts.Editable {
		c.attachAffordances(el, r.Type)
		c.wireDrag(el)
	}
	c.restorePass(el, r.Type)
	return el
}

// restorePass runs the type-specific resync for every restored component.
func (c *Canvas) restorePass(el *surface.Element, typ string) {
	switch typ {
	case TypeContainer:
		c.resyncNested(el)
	case TypeTwoCol, TypeThreeCol:
		cols := el.FindAll(func(x *surface.Element) bool { return x.HasClass(ClassColumn) })
		if len(cols) == 0 {
			c.log.Warn("column layout without columns", slog.String("id", el.ID()))
		}
		for _, col := range cols {
			c.resyncNested(col)
		}
	case TypeImage:
		if c.opts.Editable && el.FirstByTag("input") == nil {
			el.AppendChild(uploadInput())
		}
	case TypeTable:
		c.setEditability(el, typ)
		c.decorate(el, typ)
	case TypeLink:
		if el.FirstByTag("a") == nil {
			c.log.Warn("link without anchor", slog.String("id", el.ID()))
			return
		}
		c.decorate(el, typ)
	case TypeHeader:
		if el.FirstByClass("header-title") == nil {
			c.log.Warn("header without title", slog.String("id", el.ID()))
			return
		}
		c.setEditability(el, typ)
	case TypeText:
		if el.FirstByClass("text-content") == nil {
			c.log.Warn("text without body", slog.String("id", el.ID()))
			return
		}
		c.setEditability(el, typ)
	}
}

// setEditability marks the inner editing surfaces of tables, headers and
// text blocks. Creation and restore share it so both yield the same markup.
func (c *Canvas) setEditability(el *surface.Element, typ string) {
	v := strconv.FormatBool(c.opts.Editable)
	switch typ {
	case TypeTable:
		for _, td := range el.FindAll(func(x *surface.Element) bool { return x.Tag == "td" || x.Tag == "th" }) {
			td.SetAttr("contenteditable", v)
		}
	case TypeHeader:
		if title := el.FirstByClass("header-title"); title != nil {
			title.SetAttr("contenteditable", v)
		}
	case TypeText:
		if body := el.FirstByClass("text-content"); body != nil {
			body.SetAttr("contenteditable", v)
		}
	}
}

// resyncNested restores geometry and affordances of components dropped
// into zone. Their geometry travels in the inline style.
func (c *Canvas) resyncNested(zone *surface.Element) {
	for _, child := range zone.ElementChildren() {
		if !isComponent(child) {
			continue
		}
		st := child.Style()
		box := child.Box
		for _, f := range []struct {
			prop string
			dst  *float64
		}{{"left", &box.X}, {"top", &box.Y}, {"width", &box.W}, {"height", &box.H}} {
			if v, ok := st.Get(f.prop); ok {
				if px, ok := surface.ParsePx(v); ok {
					*f.dst = px
				}
			}
		}
		child.Box = box
		if c.opts.Editable {
			c.attachAffordances(child, typeOf(child))
			c.decorate(child, typeOf(child))
		}
		c.surf.Observe(child, func(geometry.Rect) { c.notify(ReasonResized) })
	}
}

// decorate adds the type-specific editing widgets of tables and links.
func (c *Canvas) decorate(el *surface.Element, typ string) {
	if !c.opts.Editable {
		return
	}
	switch typ {
	case TypeTable:
		el.AppendChild(tableRowButtons())
	case TypeLink:
		if a := el.FirstByTag("a"); a != nil {
			el.AppendChild(linkEditWidget(a))
		}
	}
}

func tableRowButtons() *surface.Element {
	w := surface.NewElement("div")
	w.AddClass(surface.ClassTableRowsCtrl)
	for _, label := range []string{"+ row", "- row"} {
		b := surface.NewElement("button")
		b.AppendChild(surface.NewText(label))
		w.AppendChild(b)
	}
	return w
}

func linkEditWidget(a *surface.Element) *surface.Element {
	w := surface.NewElement("div")
	w.AddClass(surface.ClassLinkEdit)
	in := surface.NewElement("input")
	in.SetAttr("type", "url")
	href, _ := a.Attr("href")
	in.SetAttr("value", href)
	w.AppendChild(in)
	return w
}

// clearComponents detaches every top-level component.
func (c *Canvas) clearComponents() {
	for _, el := range c.components {
		c.surf.Unobserve(el)
		el.Remove()
	}
	c.components = nil
	c.selected = nil
}
