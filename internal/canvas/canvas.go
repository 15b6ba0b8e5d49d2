/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas owns the live component collection of the page composer:
// creation, deletion, ordering and selection of components, unique ids,
// serialisation to and from a model.Design, and the design-changed
// notifications that drive persistence. A Canvas is an explicit context
// object; it is not safe for concurrent use.
package canvas

import (
	"errors"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"pagecomposer/internal/geometry"
	"pagecomposer/internal/grid"
	"pagecomposer/internal/history"
	"pagecomposer/internal/interact"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/storage"
	"pagecomposer/internal/surface"
)

// ErrUnknownComponent is returned for ids that name no live component.
var ErrUnknownComponent = errors.New("unknown component")

// Layout is the placement model of the canvas.
type Layout string

const (
	LayoutGrid     Layout = "grid"
	LayoutAbsolute Layout = "absolute"
)

// Options configures a Canvas. Zero sizes fall back to package defaults.
type Options struct {
	Editable      bool
	Layout        Layout
	Width, Height float64
	Grid          grid.Options
	SnapThreshold float64
	MinSize       float64
	HistoryDepth  int
	// Sanitize filters restored and programmatic content through an HTML
	// policy before it reaches the surface.
	Sanitize bool
}

// DefaultOptions returns an editable grid canvas of 1200x800.
func DefaultOptions() Options {
	return Options{Editable: true, Layout: LayoutGrid, Width: 1200, Height: 800}
}

// Canvas is the orchestrator of one editing session.
type Canvas struct {
	opts  Options
	surf  *surface.Surface
	grid  *grid.Manager
	ctrl  *interact.Controller
	hist  *history.Manager
	store storage.Store
	log   *slog.Logger

	factories  map[string]Factory
	sizes      map[string]geometry.Rect
	customTags map[string]CustomTag
	palette    map[string]PaletteEntry
	policy     *bluemonday.Policy

	components []*surface.Element
	selected   *surface.Element

	observers []observerEntry
	nextObs   int
	muted     int
}

// New returns an empty canvas. store may be nil; when set, every design
// change is saved to it and undo past the first entry falls back to it.
func New(opts Options, store storage.Store) *Canvas {
	if opts.Layout == "" {
		opts.Layout = LayoutGrid
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	c := &Canvas{
		opts:       opts,
		surf:       surface.New(opts.Width, opts.Height),
		store:      store,
		log:        applog.WithComponent("canvas"),
		factories:  builtinFactories(),
		sizes:      make(map[string]geometry.Rect, len(defaultSizes)),
		customTags: make(map[string]CustomTag),
		palette:    make(map[string]PaletteEntry),
	}
	for k, v := range defaultSizes {
		c.sizes[k] = v
	}
	c.grid = grid.NewManager(c.surf, opts.Grid)
	c.grid.InitPreview()
	c.ctrl = interact.NewController(c.surf, interact.Options{
		SnapThreshold: opts.SnapThreshold,
		MinSize:       opts.MinSize,
		Absolute:      opts.Layout == LayoutAbsolute,
	}, c.commitGesture)
	var loader history.Loader
	if store != nil {
		loader = store
	}
	c.hist = history.NewManager(c, loader, history.Config{MaxDepth: opts.HistoryDepth})
	if opts.Sanitize {
		c.policy = contentPolicy()
	}
	if store != nil {
		c.Subscribe(c.persist)
	}
	return c
}

func contentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id", "contenteditable", "style").Globally()
	p.AllowDataAttributes()
	p.AllowElements("header", "nav", "section", "video", "input")
	p.AllowAttrs("controls", "src", "poster").OnElements("video")
	p.AllowAttrs("type", "accept").OnElements("input")
	return p
}

func (c *Canvas) sanitize(markup string) string {
	if c.policy == nil {
		return markup
	}
	return c.policy.Sanitize(markup)
}

// Options returns the effective configuration.
func (c *Canvas) Options() Options { return c.opts }

// Surface returns the rendering surface.
func (c *Canvas) Surface() *surface.Surface { return c.surf }

// History returns the undo manager.
func (c *Canvas) History() *history.Manager { return c.hist }

// Grid returns the grid manager.
func (c *Canvas) Grid() *grid.Manager { return c.grid }

// Controller returns the gesture controller.
func (c *Canvas) Controller() *interact.Controller { return c.ctrl }

// Len returns the number of top-level components.
func (c *Canvas) Len() int { return len(c.components) }

// IDs returns the ids of the top-level components in order.
func (c *Canvas) IDs() []string {
	out := make([]string, len(c.components))
	for i, el := range c.components {
		out[i] = el.ID()
	}
	return out
}

// Component returns the live element of a component, nested ones included.
func (c *Canvas) Component(id string) (*surface.Element, bool) {
	if id == "" {
		return nil, false
	}
	for _, el := range c.components {
		if el.ID() == id {
			return el, true
		}
		if n := el.FindByID(id); n != nil && isComponent(n) {
			return n, true
		}
	}
	return nil, false
}

// Selected returns the selected component, or nil.
func (c *Canvas) Selected() *surface.Element { return c.selected }

func (c *Canvas) indexOf(el *surface.Element) int {
	for i, x := range c.components {
		if x == el {
			return i
		}
	}
	return -1
}
