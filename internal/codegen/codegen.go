/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package codegen turns the live canvas into a standalone page: an HTML
// document with an embedded stylesheet, the stylesheet on its own, and a
// Markdown rendition of the text content.
package codegen

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"slices"
	"strings"

	applog "pagecomposer/internal/log"
	"pagecomposer/internal/surface"
)

// ErrNoSurface is returned when the generator has no canvas to read.
var ErrNoSurface = errors.New("codegen: no surface")

const (
	LayoutGrid     = "grid"
	LayoutAbsolute = "absolute"
)

// Options selects the base ruleset and the document title.
type Options struct {
	Layout string
	Title  string
}

// Generator reads a surface; it never mutates it.
type Generator struct {
	surf *surface.Surface
	opts Options
	log  *slog.Logger
}

func New(s *surface.Surface, opts Options) *Generator {
	if opts.Layout != LayoutAbsolute {
		opts.Layout = LayoutGrid
	}
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = "Page"
	}
	return &Generator{surf: s, opts: opts, log: applog.WithComponent("codegen")}
}

// GenerateHTML returns a complete document: doctype, head with the
// generated stylesheet, and the cleaned canvas inside the page root.
func (g *Generator) GenerateHTML() (string, error) {
	root, err := g.cleaned()
	if err != nil {
		return "", err
	}
	css := g.css(root)
	body, err := surface.Render(root, nil)
	if err != nil {
		return "", fmt.Errorf("generate html: %w", err)
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(g.opts.Title))
	b.WriteString("<style>\n")
	b.WriteString(css)
	b.WriteString("</style>\n</head>\n<body>\n")
	fmt.Fprintf(&b, "<div class=\"page-root %s-layout\">\n", g.opts.Layout)
	b.WriteString(body)
	b.WriteString("\n</div>\n</body>\n</html>\n")
	g.log.Debug("html generated", slog.Int("bytes", b.Len()))
	return b.String(), nil
}

// GenerateCSS returns the base ruleset followed by one rule per distinct
// selector carrying non-default style.
func (g *Generator) GenerateCSS() (string, error) {
	root, err := g.cleaned()
	if err != nil {
		return "", err
	}
	return g.css(root), nil
}

// cleaned returns a detached copy of the canvas without editor chrome.
func (g *Generator) cleaned() (*surface.Element, error) {
	if g == nil || g.surf == nil || g.surf.Root() == nil {
		return nil, ErrNoSurface
	}
	root := g.surf.Root().Clone()
	strip(root)
	return root, nil
}

// strip removes affordances, raw inputs, editor state classes and editor
// attributes from el's subtree.
func strip(el *surface.Element) {
	for _, ch := range el.Children() {
		if ch.IsText() {
			continue
		}
		if surface.IsAffordance(ch) || ch.Tag == "input" {
			ch.Remove()
			continue
		}
		strip(ch)
	}
	el.RemoveClass(surface.EditorStateClasses...)
	for _, a := range surface.EditorAttributes {
		el.RemoveAttr(a)
	}
}

func isEditorClass(c string) bool { return slices.Contains(surface.EditorStateClasses, c) }
