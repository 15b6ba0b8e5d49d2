/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import "testing"

func TestSnapWithinThreshold(t *testing.T) {
	sibling := R(100, 300, 80, 40)
	moving := R(104, 10, 50, 20)
	adj, guides := Snap(moving, []Rect{sibling}, SnapOptions{Threshold: 5})
	if got := moving.X + adj.X; got != 100 {
		t.Fatalf("expected x snapped to 100, got %v", got)
	}
	if len(guides) != 1 || guides[0].Orientation != Vertical || guides[0].Position != 100 {
		t.Fatalf("expected one vertical guide at 100, got %+v", guides)
	}
}

func TestSnapOutsideThreshold(t *testing.T) {
	sibling := R(100, 300, 80, 40)
	moving := R(106, 10, 50, 20)
	adj, guides := Snap(moving, []Rect{sibling}, SnapOptions{Threshold: 5})
	if adj.X != 0 || adj.Y != 0 {
		t.Fatalf("expected no adjustment, got %+v", adj)
	}
	if len(guides) != 0 {
		t.Fatalf("expected no guides, got %+v", guides)
	}
}

func TestSnapPriorityOrderBeatsDistance(t *testing.T) {
	// left-to-right (4 away) is checked before right-to-right (1 away).
	target := R(0, 500, 100, 10)
	moving := R(96, 0, 5, 10)
	adj, guides := Snap(moving, []Rect{target}, SnapOptions{})
	if adj.X != 4 {
		t.Fatalf("expected left edge aligned to target right, adj=%v", adj.X)
	}
	if guides[0].Position != 100 {
		t.Fatalf("guide at %v", guides[0].Position)
	}
}

func TestSnapFirstTargetWins(t *testing.T) {
	first := R(202, 500, 50, 10)
	second := R(200, 700, 50, 10)
	moving := R(200, 0, 30, 10)
	adj, _ := Snap(moving, []Rect{first, second}, SnapOptions{})
	if adj.X != 2 {
		t.Fatalf("expected first target to win, adj=%v", adj.X)
	}
}

func TestSnapAxesIndependent(t *testing.T) {
	a := R(0, 0, 100, 100)
	moving := R(300, 97, 50, 50)
	adj, guides := Snap(moving, []Rect{a}, SnapOptions{})
	if adj.X != 0 || moving.Y+adj.Y != 100 {
		t.Fatalf("expected y-only snap to bottom edge, got %+v", adj)
	}
	if len(guides) != 1 || guides[0].Orientation != Horizontal {
		t.Fatalf("expected a single horizontal guide, got %+v", guides)
	}
}

func TestSnapCenters(t *testing.T) {
	a := R(0, 0, 200, 100)
	moving := R(48, 300, 100, 60) // centerX 98 vs 100; edges far away
	adj, guides := Snap(moving, []Rect{a}, SnapOptions{})
	if adj.X != 2 {
		t.Fatalf("expected center snap, adj=%v", adj.X)
	}
	if guides[0].Kind != "center" {
		t.Fatalf("expected center guide, got %s", guides[0].Kind)
	}
}

func TestClampInside(t *testing.T) {
	r := R(-5, 90, 50, 20).ClampInside(R(0, 0, 100, 100))
	if r.X != 0 || r.Y != 80 {
		t.Fatalf("unexpected clamp %+v", r)
	}
	big := R(10, 10, 500, 500).ClampInside(R(0, 0, 100, 100))
	if big.W != 100 || big.H != 100 || big.X != 0 || big.Y != 0 {
		t.Fatalf("unexpected shrink %+v", big)
	}
}
