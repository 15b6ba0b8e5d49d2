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
	"strings"

	"pagecomposer/internal/geometry"
	"pagecomposer/internal/interact"
	"pagecomposer/internal/model"
	"pagecomposer/internal/surface"
)

// Built-in component types.
const (
	TypeText      = "text"
	TypeImage     = "image"
	TypeTable     = "table"
	TypeContainer = "container"
	TypeTwoCol    = "twoCol"
	TypeThreeCol  = "threeCol"
	TypeLink      = "link"
	TypeHeader    = "header"
	TypeVideo     = "video"
)

const (
	componentSuffix = "-component"
	// ClassCustom flags components created from a registered custom tag.
	ClassCustom = "custom-component"
	// ClassColumn marks the drop zones of column layouts.
	ClassColumn = "column"

	attrProps          = "props"
	attrCustomSettings = "data-custom-settings"
)

// Factory builds the element of a built-in type. settings is the optional
// custom-settings payload of the drop.
type Factory func(settings string) *surface.Element

// CustomTag binds an externally registered type to the tag it renders as.
type CustomTag struct {
	Type  string
	Tag   string
	Props map[string]any
	Size  geometry.Rect
}

// PaletteEntry is a palette item; DefaultSettings substitutes a drop that
// carried no settings of its own.
type PaletteEntry struct {
	Type            string
	Label           string
	DefaultSettings string
}

var defaultSizes = map[string]geometry.Rect{
	TypeText:      geometry.R(0, 0, 200, 50),
	TypeImage:     geometry.R(0, 0, 200, 150),
	TypeTable:     geometry.R(0, 0, 300, 120),
	TypeContainer: geometry.R(0, 0, 600, 200),
	TypeTwoCol:    geometry.R(0, 0, 600, 200),
	TypeThreeCol:  geometry.R(0, 0, 600, 200),
	TypeLink:      geometry.R(0, 0, 120, 30),
	TypeHeader:    geometry.R(0, 0, 600, 80),
	TypeVideo:     geometry.R(0, 0, 320, 180),
}

// containerTypes accept drops of their own.
var containerTypes = map[string]bool{TypeContainer: true, TypeTwoCol: true, TypeThreeCol: true}

// selfEditing types manage content-editability on inner elements.
var selfEditing = map[string]bool{TypeImage: true, TypeHeader: true, TypeText: true, TypeTable: true}

func builtinFactories() map[string]Factory {
	return map[string]Factory{
		TypeText: func(string) *surface.Element {
			el := surface.NewElement("div")
			body := surface.NewElement("div")
			body.AddClass("text-content")
			body.AppendChild(surface.NewText("Edit text"))
			el.AppendChild(body)
			return el
		},
		TypeImage: func(string) *surface.Element {
			el := surface.NewElement("div")
			img := surface.NewElement("img")
			img.AddClass("image-display")
			img.SetAttr("alt", "")
			el.AppendChild(img)
			el.AppendChild(uploadInput())
			return el
		},
		TypeTable: func(string) *surface.Element {
			el := surface.NewElement("div")
			table := surface.NewElement("table")
			tbody := surface.NewElement("tbody")
			for r := 0; r < 2; r++ {
				tr := surface.NewElement("tr")
				for c := 0; c < 2; c++ {
					td := surface.NewElement("td")
					tr.AppendChild(td)
				}
				tbody.AppendChild(tr)
			}
			table.AppendChild(tbody)
			el.AppendChild(table)
			return el
		},
		TypeContainer: func(string) *surface.Element { return surface.NewElement("div") },
		TypeTwoCol:    func(string) *surface.Element { return columns(2) },
		TypeThreeCol:  func(string) *surface.Element { return columns(3) },
		TypeLink: func(string) *surface.Element {
			el := surface.NewElement("div")
			a := surface.NewElement("a")
			a.SetAttr("href", "#")
			a.AppendChild(surface.NewText("Link"))
			el.AppendChild(a)
			return el
		},
		TypeHeader: func(string) *surface.Element {
			el := surface.NewElement("div")
			h := surface.NewElement("header")
			title := surface.NewElement("h1")
			title.AddClass("header-title")
			title.AppendChild(surface.NewText("Title"))
			h.AppendChild(title)
			h.AppendChild(surface.NewElement("nav"))
			el.AppendChild(h)
			return el
		},
		TypeVideo: func(string) *surface.Element {
			el := surface.NewElement("div")
			v := surface.NewElement("video")
			v.SetAttr("controls", "")
			el.AppendChild(v)
			return el
		},
	}
}

func columns(n int) *surface.Element {
	el := surface.NewElement("div")
	for i := 0; i < n; i++ {
		col := surface.NewElement("div")
		col.AddClass(ClassColumn)
		el.AppendChild(col)
	}
	return el
}

func uploadInput() *surface.Element {
	in := surface.NewElement("input")
	in.SetAttr("type", "file")
	in.SetAttr("accept", "image/*")
	in.AddClass("image-upload")
	return in
}

// RegisterFactory adds or replaces the factory of a built-in type.
func (c *Canvas) RegisterFactory(typ string, f Factory, size geometry.Rect) {
	c.factories[typ] = f
	if size.W > 0 && size.H > 0 {
		c.sizes[typ] = size
	}
}

// RegisterCustomTag makes t.Type creatable as a generic element rendered
// with t.Tag.
func (c *Canvas) RegisterCustomTag(t CustomTag) {
	if t.Type == "" || t.Tag == "" {
		return
	}
	c.customTags[t.Type] = t
}

// RegisterPaletteEntry records palette defaults for a type.
func (c *Canvas) RegisterPaletteEntry(e PaletteEntry) { c.palette[e.Type] = e }

// CreateComponent builds a detached component of the given type, or returns
// nil when no factory or custom tag resolves. The element gets a fresh id
// and, when editing is enabled, its editor affordances.
func (c *Canvas) CreateComponent(typ, settings, content string) *surface.Element {
	return c.create(typ, settings, content, "", "")
}

// create builds a component. id, when given, is used verbatim; otherwise a
// fresh id is generated inside scope.
func (c *Canvas) create(typ, settings, content, scope, id string) *surface.Element {
	if settings != "" && !json.Valid([]byte(settings)) {
		c.log.Warn("custom settings are not valid JSON; ignored", slog.String("type", typ), slog.String("settings", settings))
		settings = ""
	}
	var el *surface.Element
	custom := false
	if f, ok := c.factories[typ]; ok {
		el = f(settings)
	} else if t, ok := c.customTags[typ]; ok {
		el = surface.NewElement(t.Tag)
		custom = true
		props := t.Props
		if props == nil {
			props = map[string]any{}
		}
		if b, err := json.Marshal(props); err == nil {
			el.SetAttr(attrProps, string(b))
		}
	}
	if el == nil {
		c.log.Warn("unknown component type", slog.String("type", typ))
		return nil
	}
	if id == "" {
		id = c.GenerateUniqueID(typ, scope)
	}
	el.SetID(id)
	classes := []string{id, typ + componentSuffix}
	if custom {
		classes = append(classes, ClassCustom)
	}
	el.AddClass(classes...)
	if settings != "" {
		el.SetAttr(attrCustomSettings, settings)
	}
	if content != "" && !custom {
		if err := el.SetInnerHTML(c.sanitize(content)); err != nil {
			c.log.Warn("component content rejected", slog.String("id", id), slog.Any("err", err))
		}
	}
	if !custom {
		c.setEditability(el, typ)
	}
	el.Box = c.sizeFor(typ)
	if c.opts.Editable {
		c.attachAffordances(el, typ)
		c.decorate(el, typ)
		if !selfEditing[typ] && !custom {
			el.SetAttr("contenteditable", "true")
		}
	}
	c.surf.Observe(el, func(geometry.Rect) { c.notify(ReasonResized) })
	return el
}

func (c *Canvas) sizeFor(typ string) geometry.Rect {
	if r, ok := c.sizes[typ]; ok {
		return r
	}
	if t, ok := c.customTags[typ]; ok && t.Size.W > 0 {
		return geometry.R(0, 0, t.Size.W, t.Size.H)
	}
	return geometry.R(0, 0, 200, 100)
}

// attachAffordances replaces el's editor chrome: four resize handles (none
// for containers in grid mode) and the control strip with label and delete
// icon.
func (c *Canvas) attachAffordances(el *surface.Element, typ string) {
	for _, ch := range el.ElementChildren() {
		if surface.IsAffordance(ch) {
			ch.Remove()
		}
	}
	if !(c.opts.Layout == LayoutGrid && containerTypes[typ]) {
		el.AddClass(surface.ClassResizable)
		for _, corner := range interact.Corners {
			h := surface.NewElement("div")
			h.AddClass(surface.ClassResizer, corner.String())
			el.AppendChild(h)
		}
	}
	ctrl := surface.NewElement("div")
	ctrl.AddClass(surface.ClassControls)
	label := surface.NewElement("span")
	label.AddClass(surface.ClassLabel)
	label.AppendChild(surface.NewText(typ))
	del := surface.NewElement("span")
	del.AddClass(surface.ClassDeleteIcon)
	del.AppendChild(surface.NewText("×"))
	ctrl.AppendChild(label)
	ctrl.AppendChild(del)
	el.AppendChild(ctrl)
}

// typeOf derives the component type from the first class token.
func typeOf(el *surface.Element) string {
	cls := el.Classes()
	if len(cls) == 0 {
		return ""
	}
	return model.TypeFromClass(cls[0])
}

func isComponent(el *surface.Element) bool {
	if el == nil || el.IsText() || el.ID() == "" {
		return false
	}
	for _, cl := range el.Classes() {
		if strings.HasSuffix(cl, componentSuffix) {
			return true
		}
	}
	return false
}

func isCustom(el *surface.Element) bool { return el.HasClass(ClassCustom) }

func isContainer(el *surface.Element) bool { return isComponent(el) && containerTypes[typeOf(el)] }
