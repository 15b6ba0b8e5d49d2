/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package codegen

import (
	"fmt"
	"strings"

	"pagecomposer/internal/model"
	"pagecomposer/internal/surface"
)

const baseCommon = `*, *::before, *::after { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, sans-serif; }
.page-root { width: 100%; }
img, video { max-width: 100%; }
`

var baseByLayout = map[string]string{
	LayoutGrid: `.grid-layout > .canvas { display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 20px; padding: 20px; }
.grid-layout .column { min-height: 40px; }
.grid-layout .twoCol-component > div, .grid-layout .threeCol-component > div { display: flex; gap: 20px; }
`,
	LayoutAbsolute: `.absolute-layout > .canvas { position: relative; min-height: 100vh; }
.absolute-layout .canvas > * { position: absolute; }
.absolute-layout .column { position: relative; min-height: 40px; }
`,
}

// gridOwned are the properties grid placement controls.
var gridOwned = []string{
	"position", "left", "top", "right", "bottom",
	"width", "height", "min-width", "min-height", "max-width", "max-height",
	"cursor", "resize",
}

func isGridOwned(p string) bool {
	for _, g := range gridOwned {
		if p == g {
			return true
		}
	}
	return false
}

func isPaint(p string) bool {
	for _, q := range surface.PaintProperties {
		if p == q {
			return true
		}
	}
	return false
}

type rule struct {
	selector string
	decls    model.Style
}

func (g *Generator) css(root *surface.Element) string {
	var b strings.Builder
	b.WriteString(baseCommon)
	b.WriteString(baseByLayout[g.opts.Layout])

	seen := make(map[string]bool)
	var rules []rule
	root.Walk(func(el *surface.Element) bool {
		if el.IsText() {
			return false
		}
		r, ok := g.ruleFor(el)
		if !ok {
			return true
		}
		if seen[r.selector] {
			return true
		}
		seen[r.selector] = true
		rules = append(rules, r)
		return true
	})
	for _, r := range rules {
		b.WriteByte('\n')
		b.WriteString(r.selector)
		b.WriteString(" {\n")
		for _, d := range r.decls {
			fmt.Fprintf(&b, "  %s: %s;\n", d.Property, d.Value)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// ruleFor collects the non-default style of el. Inside vector graphics only
// paint properties are kept, forced to override presentation attributes.
func (g *Generator) ruleFor(el *surface.Element) (rule, bool) {
	computed := g.surf.Computed(el)
	defaults := surface.DefaultStyle(el.Tag)
	graphic := svgAncestor(el)

	var decls model.Style
	for _, d := range computed {
		if model.IsNoiseValue(d.Value) {
			continue
		}
		if v, ok := defaults.Get(d.Property); ok && v == d.Value {
			continue
		}
		if graphic != nil {
			if isPaint(d.Property) {
				decls = append(decls, model.Declaration{Property: d.Property, Value: d.Value + " !important"})
			}
			continue
		}
		if g.opts.Layout == LayoutGrid && isGridOwned(d.Property) {
			continue
		}
		decls = append(decls, d)
	}
	if len(decls) == 0 {
		return rule{}, false
	}
	var sel string
	if graphic != nil {
		sel = selectorFor(graphic, nil) + " > " + selectorFor(el, graphic)
	} else {
		sel = selectorFor(el, nil)
	}
	return rule{selector: sel, decls: decls}, true
}

// svgAncestor returns the nearest enclosing svg element, excluding el.
func svgAncestor(el *surface.Element) *surface.Element {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Tag == "svg" {
			return p
		}
	}
	return nil
}

// selectorFor returns #id when el has one; otherwise a child-combinator
// path of tag, classes and :nth-of-type that stops at the first ancestor
// with an id. A non-nil scope bounds the path instead; ids are not used
// below it.
func selectorFor(el, scope *surface.Element) string {
	if id := el.ID(); id != "" && scope == nil {
		return "#" + cssIdent(id)
	}
	var parts []string
	for x := el; x != nil && x != scope; x = x.Parent() {
		if id := x.ID(); id != "" && x != el && scope == nil {
			parts = append(parts, "#"+cssIdent(id))
			break
		}
		parts = append(parts, segment(x))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func segment(el *surface.Element) string {
	var b strings.Builder
	b.WriteString(el.Tag)
	for _, c := range el.Classes() {
		if isEditorClass(c) {
			continue
		}
		b.WriteByte('.')
		b.WriteString(cssIdent(c))
	}
	if p := el.Parent(); p != nil {
		n := 0
		for _, sib := range p.ElementChildren() {
			if sib.Tag == el.Tag {
				n++
			}
			if sib == el {
				break
			}
		}
		fmt.Fprintf(&b, ":nth-of-type(%d)", n)
	}
	return b.String()
}

// cssIdent escapes characters that cannot appear in an identifier.
func cssIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '-' || r == '_' || r >= 0x80,
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				fmt.Fprintf(&b, "\\3%c ", r)
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
