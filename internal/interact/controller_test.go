/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"testing"

	"pagecomposer/internal/geometry"
	"pagecomposer/internal/surface"
)

type commitRecorder struct {
	reasons []string
}

func (r *commitRecorder) fn(_ *surface.Element, reason string) { r.reasons = append(r.reasons, reason) }

func setup(t *testing.T) (*surface.Surface, *surface.Element, *surface.Element, *Controller, *commitRecorder) {
	t.Helper()
	s := surface.New(800, 600)
	sibling := surface.NewElement("div")
	sibling.SetID("text1")
	sibling.Box = geometry.R(100, 300, 80, 40)
	moving := surface.NewElement("div")
	moving.SetID("text2")
	moving.Box = geometry.R(0, 0, 50, 20)
	s.Root().AppendChild(sibling)
	s.Root().AppendChild(moving)
	rec := &commitRecorder{}
	c := NewController(s, Options{Absolute: true}, rec.fn)
	return s, sibling, moving, c, rec
}

func guideCount(s *surface.Surface) int {
	return len(s.Root().FindAll(func(e *surface.Element) bool { return e.HasClass(surface.ClassGuide) }))
}

func TestMoveSnapsWithinThreshold(t *testing.T) {
	s, sibling, moving, c, rec := setup(t)
	if !c.BeginMove(moving, geometry.Pt{}, []*surface.Element{sibling, moving}) {
		t.Fatalf("begin move refused")
	}
	c.Move(geometry.Pt{X: 104, Y: 10})
	if moving.Offset.X != 100 {
		t.Fatalf("expected live offset snapped to 100, got %v", moving.Offset.X)
	}
	g := c.Guides()
	if len(g) != 1 || g[0].Orientation != geometry.Vertical || g[0].Position != 100 {
		t.Fatalf("expected vertical guide at 100, got %+v", g)
	}
	if guideCount(s) != 1 {
		t.Fatalf("expected one guide element drawn")
	}
	c.End()
	if moving.Box.X != 100 || moving.Box.Y != 10 {
		t.Fatalf("position not committed: %+v", moving.Box)
	}
	if moving.Offset != (geometry.Pt{}) {
		t.Fatalf("offset not reset: %+v", moving.Offset)
	}
	if guideCount(s) != 0 || len(c.Guides()) != 0 {
		t.Fatalf("guides not cleared")
	}
	if v, _ := moving.Style().Get("left"); v != "100px" {
		t.Fatalf("inline left not written: %q", v)
	}
	if len(rec.reasons) != 1 || rec.reasons[0] != "move" {
		t.Fatalf("expected one move commit, got %v", rec.reasons)
	}
}

func TestMoveOutsideThresholdDoesNotSnap(t *testing.T) {
	s, sibling, moving, c, _ := setup(t)
	c.BeginMove(moving, geometry.Pt{}, []*surface.Element{sibling})
	c.Move(geometry.Pt{X: 106, Y: 10})
	if len(c.Guides()) != 0 || guideCount(s) != 0 {
		t.Fatalf("no guide expected")
	}
	c.End()
	if moving.Box.X != 106 {
		t.Fatalf("expected x=106, got %v", moving.Box.X)
	}
}

func TestGesturesAreModal(t *testing.T) {
	_, sibling, moving, c, _ := setup(t)
	if !c.BeginMove(moving, geometry.Pt{}, nil) {
		t.Fatalf("first gesture refused")
	}
	if c.BeginMove(moving, geometry.Pt{}, nil) || c.BeginResize(sibling, BottomRight, geometry.Pt{}) {
		t.Fatalf("second gesture must be refused while one is active")
	}
	if c.Target() != moving {
		t.Fatalf("target changed")
	}
	c.End()
	if c.Active() {
		t.Fatalf("gesture still active after end")
	}
	if !c.BeginResize(sibling, BottomRight, geometry.Pt{}) {
		t.Fatalf("gesture refused after end")
	}
}

func TestEndWithoutChangeDoesNotCommit(t *testing.T) {
	_, _, moving, c, rec := setup(t)
	c.BeginMove(moving, geometry.Pt{X: 5, Y: 5}, nil)
	c.Move(geometry.Pt{X: 5, Y: 5})
	c.End()
	if len(rec.reasons) != 0 {
		t.Fatalf("unexpected commit %v", rec.reasons)
	}
}

func TestResizeCornersAndFloor(t *testing.T) {
	cases := []struct {
		name   string
		corner Corner
		to     geometry.Pt
		want   geometry.Rect
	}{
		{"bottom-right grows", BottomRight, geometry.Pt{X: 30, Y: 10}, geometry.R(100, 100, 130, 110)},
		{"bottom-right floors", BottomRight, geometry.Pt{X: -95, Y: -200}, geometry.R(100, 100, 20, 20)},
		{"top-left keeps opposite edge", TopLeft, geometry.Pt{X: 30, Y: 30}, geometry.R(130, 130, 70, 70)},
		{"top-left floors against opposite edge", TopLeft, geometry.Pt{X: 95, Y: 95}, geometry.R(180, 180, 20, 20)},
		{"top-right", TopRight, geometry.Pt{X: 10, Y: -10}, geometry.R(100, 90, 110, 110)},
		{"bottom-left", BottomLeft, geometry.Pt{X: -10, Y: 10}, geometry.R(90, 100, 110, 110)},
		{"clamped to parent on the left", TopLeft, geometry.Pt{X: -150, Y: 0}, geometry.R(0, 100, 200, 100)},
		{"clamped to parent on the right", BottomRight, geometry.Pt{X: 1000, Y: 0}, geometry.R(100, 100, 700, 100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := surface.New(800, 600)
			el := surface.NewElement("div")
			el.Box = geometry.R(100, 100, 100, 100)
			s.Root().AppendChild(el)
			rec := &commitRecorder{}
			c := NewController(s, Options{Absolute: true}, rec.fn)
			c.BeginResize(el, tc.corner, geometry.Pt{})
			c.Move(tc.to)
			c.End()
			if el.Box != tc.want {
				t.Fatalf("got %+v want %+v", el.Box, tc.want)
			}
			if len(rec.reasons) != 1 || rec.reasons[0] != "resize" {
				t.Fatalf("expected resize commit, got %v", rec.reasons)
			}
		})
	}
}

func TestResizeDoesNotSnap(t *testing.T) {
	s, sibling, moving, c, _ := setup(t)
	_ = sibling
	c.BeginResize(moving, BottomRight, geometry.Pt{})
	c.Move(geometry.Pt{X: 48, Y: 0}) // right edge at 98, 2 from sibling left
	if moving.Box.W != 98 || guideCount(s) != 0 {
		t.Fatalf("resize must not snap: %+v", moving.Box)
	}
	c.End()
}

func TestContainerResizeIsNotClamped(t *testing.T) {
	s := surface.New(300, 300)
	el := surface.NewElement("div")
	el.Box = geometry.R(0, 0, 100, 100)
	s.Root().AppendChild(el)
	c := NewController(s, Options{}, nil)
	c.BeginContainerResize(el, BottomRight, geometry.Pt{})
	c.Move(geometry.Pt{X: 500, Y: -90})
	c.End()
	if el.Box.W != 600 || el.Box.H != 20 {
		t.Fatalf("unexpected container box %+v", el.Box)
	}
}

func TestCancelRestores(t *testing.T) {
	_, sibling, moving, c, rec := setup(t)
	c.BeginMove(moving, geometry.Pt{}, []*surface.Element{sibling})
	c.Move(geometry.Pt{X: 104, Y: 0})
	c.Cancel()
	if moving.Offset != (geometry.Pt{}) || moving.Box.X != 0 || len(c.Guides()) != 0 {
		t.Fatalf("cancel did not restore: %+v %+v", moving.Box, moving.Offset)
	}
	c.BeginResize(moving, BottomRight, geometry.Pt{})
	c.Move(geometry.Pt{X: 40, Y: 40})
	c.Cancel()
	if moving.Box != geometry.R(0, 0, 50, 20) {
		t.Fatalf("resize cancel did not restore: %+v", moving.Box)
	}
	if len(rec.reasons) != 0 {
		t.Fatalf("cancel must not commit")
	}
}

func TestParseCorner(t *testing.T) {
	for _, c := range Corners {
		got, ok := ParseCorner(c.String())
		if !ok || got != c {
			t.Fatalf("round trip %v", c)
		}
	}
	if _, ok := ParseCorner("middle"); ok {
		t.Fatalf("unknown corner parsed")
	}
}

func TestMoveIgnoresEditorChrome(t *testing.T) {
	s, sibling, moving, c, _ := setup(t)
	handle := surface.NewElement("div")
	handle.AddClass(surface.ClassResizer)
	s.Root().AppendChild(handle)
	moving.Box = geometry.R(30, 100, 50, 20)
	if !c.BeginMove(moving, geometry.Pt{}, []*surface.Element{handle, sibling, moving}) {
		t.Fatalf("begin move refused")
	}
	c.Move(geometry.Pt{X: -27})
	if moving.Offset.X != -27 {
		t.Fatalf("snapped to a resize handle: offset %v", moving.Offset.X)
	}
	if g := c.Guides(); len(g) != 0 {
		t.Fatalf("guides = %+v, want none", g)
	}
	c.End()
}
