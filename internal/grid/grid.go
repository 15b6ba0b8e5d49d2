/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package grid quantizes pointer positions onto the canvas grid and owns the
// drop-preview indicator shown while a component is dragged over the canvas.
package grid

import (
	"math"

	"pagecomposer/internal/geometry"
	"pagecomposer/internal/surface"
)

const (
	DefaultGridSize = 10
	DefaultPadding  = 20
	DefaultCellSize = 20
)

// Options configures the grid; zero values fall back to the defaults.
type Options struct {
	GridSize float64
	Padding  float64
	CellSize float64
}

// Manager quantizes drop coordinates for one surface.
type Manager struct {
	surf    *surface.Surface
	opts    Options
	preview *surface.Element
}

func NewManager(s *surface.Surface, opts Options) *Manager {
	if opts.GridSize <= 0 {
		opts.GridSize = DefaultGridSize
	}
	if opts.Padding <= 0 {
		opts.Padding = DefaultPadding
	}
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultCellSize
	}
	return &Manager{surf: s, opts: opts}
}

// Options returns the effective settings.
func (m *Manager) Options() Options { return m.opts }

// Quantize converts a client-space pointer position into a grid-aligned
// canvas coordinate: surface-local (scroll included), rounded to the nearest
// grid multiple, minus the padding, never below the padding.
func (m *Manager) Quantize(pointer geometry.Pt) geometry.Pt {
	return Quantize(pointer, m.surf.ClientBounds(), m.surf.Scroll, m.opts)
}

// Quantize is the pure form of Manager.Quantize.
func Quantize(pointer geometry.Pt, bounds geometry.Rect, scroll geometry.Pt, opts Options) geometry.Pt {
	local := geometry.Pt{X: pointer.X - bounds.X + scroll.X, Y: pointer.Y - bounds.Y + scroll.Y}
	snap := func(v float64) float64 {
		q := math.Round(v/opts.GridSize) * opts.GridSize
		return math.Max(q-opts.Padding, opts.Padding)
	}
	return geometry.Pt{X: snap(local.X), Y: snap(local.Y)}
}

// InitPreview (re)creates the drop-preview indicator; any earlier instance is
// removed first so at most one exists per surface.
func (m *Manager) InitPreview() *surface.Element {
	m.RemovePreview()
	for _, old := range m.surf.Root().FindAll(func(e *surface.Element) bool { return e.HasClass(surface.ClassDropPreview) }) {
		old.Remove()
	}
	p := surface.NewElement("div")
	p.AddClass(surface.ClassDropPreview)
	p.SetInlineStyle("position: absolute; display: none; pointer-events: none;")
	p.Box = geometry.R(0, 0, m.opts.CellSize, m.opts.CellSize)
	p.SetStyle("width", surface.Px(m.opts.CellSize))
	p.SetStyle("height", surface.Px(m.opts.CellSize))
	m.surf.Root().AppendChild(p)
	m.preview = p
	return p
}

// ShowPreview moves the indicator to the quantized pointer position.
func (m *Manager) ShowPreview(pointer geometry.Pt) geometry.Pt {
	if m.preview == nil || !m.surf.Attached(m.preview) {
		m.InitPreview()
	}
	at := m.Quantize(pointer)
	m.preview.Box.X, m.preview.Box.Y = at.X, at.Y
	m.preview.SetStyle("left", surface.Px(at.X))
	m.preview.SetStyle("top", surface.Px(at.Y))
	m.preview.SetStyle("display", "block")
	return at
}

// HidePreview hides the indicator without removing it.
func (m *Manager) HidePreview() {
	if m.preview != nil {
		m.preview.SetStyle("display", "none")
	}
}

// RemovePreview detaches the indicator.
func (m *Manager) RemovePreview() {
	if m.preview != nil {
		m.preview.Remove()
		m.preview = nil
	}
}

// Preview returns the current indicator, or nil.
func (m *Manager) Preview() *surface.Element { return m.preview }
