/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

// Alignment snapping for interactive moves. Candidates are checked in a fixed
// priority order and the first one within the threshold wins, so the result
// never depends on which of two equally close targets was "closer".

import "math"

// DefaultSnapThreshold is the distance below which an edge or center snaps.
const DefaultSnapThreshold = 5

// Orientation of a guide line.
const (
	Vertical   = "vertical"
	Horizontal = "horizontal"
)

// Guide describes an alignment line produced by a snap. Vertical guides sit
// at an x coordinate, horizontal guides at a y coordinate. From and To span
// the moving box and the target it aligned with.
type Guide struct {
	Orientation string
	Kind        string // "edge" or "center"
	Position    float64
	From        Pt
	To          Pt
}

// SnapOptions controls the threshold; zero means DefaultSnapThreshold.
type SnapOptions struct {
	Threshold float64
}

type candidate struct {
	own    func(Rect) float64
	target func(Rect) float64
	kind   string
}

// Priority order per axis: own-left/target-left, own-left/target-right,
// own-right/target-left, own-right/target-right, center/center.
var (
	xCandidates = []candidate{
		{Rect.Left, Rect.Left, "edge"},
		{Rect.Left, Rect.Right, "edge"},
		{Rect.Right, Rect.Left, "edge"},
		{Rect.Right, Rect.Right, "edge"},
		{Rect.CenterX, Rect.CenterX, "center"},
	}
	yCandidates = []candidate{
		{Rect.Top, Rect.Top, "edge"},
		{Rect.Top, Rect.Bottom, "edge"},
		{Rect.Bottom, Rect.Top, "edge"},
		{Rect.Bottom, Rect.Bottom, "edge"},
		{Rect.CenterY, Rect.CenterY, "center"},
	}
)

// Snap computes the adjustment that aligns moving with the first matching
// target on each axis. It returns the correction to add to the moving box and
// at most one guide per axis.
func Snap(moving Rect, targets []Rect, opts SnapOptions) (Pt, []Guide) {
	th := opts.Threshold
	if th <= 0 {
		th = DefaultSnapThreshold
	}
	var adj Pt
	var guides []Guide
	if d, g, ok := snapAxis(moving, targets, xCandidates, th, Vertical); ok {
		adj.X = d
		guides = append(guides, g)
	}
	if d, g, ok := snapAxis(moving, targets, yCandidates, th, Horizontal); ok {
		adj.Y = d
		guides = append(guides, g)
	}
	return adj, guides
}

func snapAxis(moving Rect, targets []Rect, cands []candidate, th float64, orient string) (float64, Guide, bool) {
	for _, t := range targets {
		for _, c := range cands {
			at := c.target(t)
			d := at - c.own(moving)
			if math.Abs(d) < th {
				if orient == Vertical {
					return d, verticalGuide(at, moving, t, c.kind), true
				}
				return d, horizontalGuide(at, moving, t, c.kind), true
			}
		}
	}
	return 0, Guide{}, false
}

func verticalGuide(x float64, a, b Rect, kind string) Guide {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Bottom(), b.Bottom())
	x = FloatRound(x, 3)
	return Guide{Orientation: Vertical, Kind: kind, Position: x, From: Pt{x, minY}, To: Pt{x, maxY}}
}

func horizontalGuide(y float64, a, b Rect, kind string) Guide {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.Right(), b.Right())
	y = FloatRound(y, 3)
	return Guide{Orientation: Horizontal, Kind: kind, Position: y, From: Pt{minX, y}, To: Pt{maxX, y}}
}
