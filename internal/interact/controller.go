/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact implements the modal move and resize gestures of the
// canvas editor. Moves snap against sibling geometry and draw alignment
// guides; resizes enforce a minimum size and stay inside the parent.
package interact

import (
	"log/slog"
	"math"

	"pagecomposer/internal/geometry"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/surface"
)

// DefaultMinSize is the smallest width or height a resize may produce.
const DefaultMinSize = 20

// Corner identifies the resize handle being dragged.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// Corners lists all handles in the order they are attached.
var Corners = []Corner{TopLeft, TopRight, BottomLeft, BottomRight}

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	default:
		return "bottom-right"
	}
}

// ParseCorner maps a handle class back to a Corner.
func ParseCorner(s string) (Corner, bool) {
	for _, c := range Corners {
		if c.String() == s {
			return c, true
		}
	}
	return BottomRight, false
}

// Options configures snapping and the resize floor.
type Options struct {
	SnapThreshold float64
	MinSize       float64
	// Absolute writes committed positions into the inline left/top.
	Absolute bool
}

// CommitFunc runs after a gesture ends with a change; reason is "move" or "resize".
type CommitFunc func(el *surface.Element, reason string)

type kind int

const (
	moveGesture kind = iota + 1
	resizeGesture
	containerResizeGesture
)

type gesture struct {
	kind    kind
	el      *surface.Element
	start   geometry.Pt
	base    geometry.Pt // offset at gesture start
	offset  geometry.Pt
	box     geometry.Rect // element box at start (parent-relative)
	targets []geometry.Rect
	corner  Corner
	changed bool
}

// Controller owns at most one active gesture per pointer device.
type Controller struct {
	surf   *surface.Surface
	opts   Options
	commit CommitFunc
	log    *slog.Logger

	cur    *gesture
	guides []geometry.Guide
	lines  []*surface.Element
}

func NewController(s *surface.Surface, opts Options, commit CommitFunc) *Controller {
	if opts.SnapThreshold <= 0 {
		opts.SnapThreshold = geometry.DefaultSnapThreshold
	}
	if opts.MinSize <= 0 {
		opts.MinSize = DefaultMinSize
	}
	return &Controller{surf: s, opts: opts, commit: commit, log: applog.WithComponent("interact")}
}

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool { return c.cur != nil }

// Target returns the element of the active gesture, or nil.
func (c *Controller) Target() *surface.Element {
	if c.cur == nil {
		return nil
	}
	return c.cur.el
}

// Guides returns the alignment guides currently drawn.
func (c *Controller) Guides() []geometry.Guide { return append([]geometry.Guide(nil), c.guides...) }

// BeginMove starts a move gesture. Snap targets are the boxes of every other
// attached sibling; editor chrome is never a target. It returns false while another gesture is active.
func (c *Controller) BeginMove(el *surface.Element, pointer geometry.Pt, siblings []*surface.Element) bool {
	if !c.begin(el) {
		return false
	}
	g := &gesture{kind: moveGesture, el: el, start: pointer, base: el.Offset, offset: el.Offset, box: el.Box}
	for _, s := range siblings {
		if s == el || surface.IsAffordance(s) || !c.surf.Attached(s) {
			continue
		}
		g.targets = append(g.targets, c.surf.BoundsOf(s))
	}
	c.cur = g
	return true
}

// BeginResize starts a resize gesture on a component handle.
func (c *Controller) BeginResize(el *surface.Element, corner Corner, pointer geometry.Pt) bool {
	return c.beginResize(el, corner, pointer, resizeGesture)
}

// BeginContainerResize starts the container variant: same handles and floor,
// no parent clamping.
func (c *Controller) BeginContainerResize(el *surface.Element, corner Corner, pointer geometry.Pt) bool {
	return c.beginResize(el, corner, pointer, containerResizeGesture)
}

func (c *Controller) beginResize(el *surface.Element, corner Corner, pointer geometry.Pt, k kind) bool {
	if !c.begin(el) {
		return false
	}
	c.cur = &gesture{kind: k, el: el, start: pointer, box: el.Box, corner: corner}
	return true
}

func (c *Controller) begin(el *surface.Element) bool {
	if c.cur != nil {
		c.log.Debug("gesture ignored; another is active", slog.String("id", el.ID()), slog.String("active", c.cur.el.ID()))
		return false
	}
	if !c.surf.Attached(el) {
		c.log.Warn("gesture on detached element", slog.String("id", el.ID()))
		return false
	}
	return true
}

// Move feeds a pointer position into the active gesture.
func (c *Controller) Move(pointer geometry.Pt) {
	if c.cur == nil {
		return
	}
	switch c.cur.kind {
	case moveGesture:
		c.move(pointer)
	default:
		c.resize(pointer)
	}
}

func (c *Controller) move(pointer geometry.Pt) {
	g := c.cur
	off := g.base.Add(pointer.Sub(g.start))
	// Prospective box: committed position plus the accumulated offset.
	el := g.el
	el.Offset = geometry.Pt{}
	prospective := c.surf.BoundsOf(el).Translate(off)
	adj, guides := geometry.Snap(prospective, g.targets, geometry.SnapOptions{Threshold: c.opts.SnapThreshold})
	off = off.Add(adj)
	el.Offset = off
	g.offset = off
	g.changed = g.changed || off != g.base
	c.drawGuides(guides)
}

func (c *Controller) resize(pointer geometry.Pt) {
	g := c.cur
	d := pointer.Sub(g.start)
	b := g.box
	r := b
	minSize := c.opts.MinSize
	switch g.corner {
	case BottomRight:
		r.W = math.Max(b.W+d.X, minSize)
		r.H = math.Max(b.H+d.Y, minSize)
	case BottomLeft:
		r.W = math.Max(b.W-d.X, minSize)
		r.H = math.Max(b.H+d.Y, minSize)
		r.X = b.Right() - r.W
	case TopRight:
		r.W = math.Max(b.W+d.X, minSize)
		r.H = math.Max(b.H-d.Y, minSize)
		r.Y = b.Bottom() - r.H
	case TopLeft:
		r.W = math.Max(b.W-d.X, minSize)
		r.H = math.Max(b.H-d.Y, minSize)
		r.X = b.Right() - r.W
		r.Y = b.Bottom() - r.H
	}
	if g.kind == resizeGesture {
		if p := g.el.Parent(); p != nil {
			r = constrain(r, b, g.corner, p.Box)
		}
	}
	c.surf.SetBox(g.el, r)
	g.el.SetStyle("width", surface.Px(r.W))
	g.el.SetStyle("height", surface.Px(r.H))
	if c.opts.Absolute && (r.X != b.X || r.Y != b.Y) {
		g.el.SetStyle("left", surface.Px(r.X))
		g.el.SetStyle("top", surface.Px(r.Y))
	}
	g.changed = g.changed || r != b
}

// constrain keeps r inside the parent while the edges opposite the dragged
// corner stay where they were.
func constrain(r, start geometry.Rect, corner Corner, parent geometry.Rect) geometry.Rect {
	if parent.W <= 0 || parent.H <= 0 {
		return r
	}
	switch corner {
	case TopLeft, BottomLeft:
		if r.X < 0 {
			r.X = 0
			r.W = start.Right()
		}
	default:
		if r.X+r.W > parent.W {
			r.W = parent.W - r.X
		}
	}
	switch corner {
	case TopLeft, TopRight:
		if r.Y < 0 {
			r.Y = 0
			r.H = start.Bottom()
		}
	default:
		if r.Y+r.H > parent.H {
			r.H = parent.H - r.Y
		}
	}
	return r
}

// End finishes the active gesture. A move folds its offset into the
// permanent position; both kinds then report a commit if anything changed.
func (c *Controller) End() {
	g := c.cur
	if g == nil {
		return
	}
	c.cur = nil
	if g.kind == moveGesture {
		el := g.el
		el.Box.X += g.offset.X
		el.Box.Y += g.offset.Y
		el.Offset = geometry.Pt{}
		if c.opts.Absolute {
			el.SetStyle("left", surface.Px(el.Box.X))
			el.SetStyle("top", surface.Px(el.Box.Y))
		}
	}
	c.clearGuides()
	if g.changed && c.commit != nil {
		reason := "move"
		if g.kind != moveGesture {
			reason = "resize"
		}
		c.commit(g.el, reason)
	}
}

// Cancel abandons the active gesture and restores the starting geometry.
func (c *Controller) Cancel() {
	g := c.cur
	if g == nil {
		return
	}
	c.cur = nil
	if g.kind == moveGesture {
		g.el.Offset = g.base
	} else {
		c.surf.SetBox(g.el, g.box)
		g.el.SetStyle("width", surface.Px(g.box.W))
		g.el.SetStyle("height", surface.Px(g.box.H))
		if c.opts.Absolute {
			g.el.SetStyle("left", surface.Px(g.box.X))
			g.el.SetStyle("top", surface.Px(g.box.Y))
		}
	}
	c.clearGuides()
}

func (c *Controller) drawGuides(guides []geometry.Guide) {
	c.clearGuides()
	c.guides = guides
	root := c.surf.Root()
	for _, g := range guides {
		line := surface.NewElement("div")
		line.AddClass(surface.ClassGuide, g.Orientation)
		if g.Orientation == geometry.Vertical {
			line.Box = geometry.R(g.Position, g.From.Y, 1, g.To.Y-g.From.Y)
		} else {
			line.Box = geometry.R(g.From.X, g.Position, g.To.X-g.From.X, 1)
		}
		line.SetInlineStyle("position: absolute; pointer-events: none;")
		line.SetStyle("left", surface.Px(line.Box.X))
		line.SetStyle("top", surface.Px(line.Box.Y))
		line.SetStyle("width", surface.Px(line.Box.W))
		line.SetStyle("height", surface.Px(line.Box.H))
		root.AppendChild(line)
		c.lines = append(c.lines, line)
	}
}

func (c *Controller) clearGuides() {
	for _, l := range c.lines {
		l.Remove()
	}
	c.lines = nil
	c.guides = nil
}
