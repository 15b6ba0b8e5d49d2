/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"errors"
	"fmt"
	"testing"

	"pagecomposer/internal/model"
)

// fakeCanvas holds a design value and records restores.
type fakeCanvas struct {
	state    model.Design
	restores int
}

func (f *fakeCanvas) GetState() model.Design { return f.state.Clone() }
func (f *fakeCanvas) RestoreState(d model.Design) { f.state = d.Clone(); f.restores++ }

type fakeStore struct {
	d   model.Design
	err error
}

func (s fakeStore) Load() (model.Design, error) { return s.d, s.err }

func design(ids ...string) model.Design {
	d := model.Design{{ID: model.CanvasID, Type: model.CanvasType}}
	for _, id := range ids {
		d = append(d, model.ComponentRecord{ID: id, Type: "text", Classes: []string{id, "text-component"}})
	}
	return d
}

func TestCaptureDedupAndEmpty(t *testing.T) {
	c := &fakeCanvas{}
	m := NewManager(c, nil, Config{})
	if m.Capture() {
		t.Fatalf("empty design must not be captured")
	}
	c.state = design("text1")
	if !m.Capture() {
		t.Fatalf("first capture refused")
	}
	for i := 0; i < 5; i++ {
		if m.Capture() {
			t.Fatalf("unchanged design captured again")
		}
	}
	if u, _ := m.Stats(); u != 1 {
		t.Fatalf("undo depth = %d, want 1", u)
	}
}

func TestCaptureIsIndependentCopy(t *testing.T) {
	c := &fakeCanvas{state: design("text1")}
	m := NewManager(c, nil, Config{})
	m.Capture()
	c.state[1].Content = "changed"
	top, _ := m.Top()
	if top.Design[1].Content != "" {
		t.Fatalf("snapshot aliased live state")
	}
}

func TestBoundedDepth(t *testing.T) {
	c := &fakeCanvas{}
	m := NewManager(c, nil, Config{})
	for i := 0; i < 25; i++ {
		c.state = design(fmt.Sprintf("text%d", i+1))
		m.Capture()
	}
	if u, _ := m.Stats(); u != DefaultMaxDepth {
		t.Fatalf("undo depth = %d, want %d", u, DefaultMaxDepth)
	}
	// Oldest five were evicted: walking back 19 steps lands on text6.
	for i := 0; i < DefaultMaxDepth-1; i++ {
		m.Undo()
	}
	if c.state[1].ID != "text6" {
		t.Fatalf("oldest retained entry = %s, want text6", c.state[1].ID)
	}
}

func TestUndoRedoInverse(t *testing.T) {
	c := &fakeCanvas{}
	m := NewManager(c, nil, Config{})
	c.state = design("text1")
	m.Capture()
	c.state = design("text1", "text2")
	m.Capture()

	before := c.GetState()
	if !m.Undo() {
		t.Fatalf("undo refused")
	}
	if !c.state.Equal(design("text1")) {
		t.Fatalf("undo restored %+v", c.state)
	}
	if !m.Redo() {
		t.Fatalf("redo refused")
	}
	if !c.state.Equal(before) {
		t.Fatalf("redo did not return to the pre-undo design")
	}
	if m.Redo() {
		t.Fatalf("redo with empty stack must no-op")
	}
}

func TestCaptureClearsRedo(t *testing.T) {
	c := &fakeCanvas{}
	m := NewManager(c, nil, Config{})
	c.state = design("text1")
	m.Capture()
	c.state = design("text1", "text2")
	m.Capture()
	m.Undo()
	if !m.CanRedo() {
		t.Fatalf("redo expected after undo")
	}
	c.state = design("text1", "image1")
	m.Capture()
	if m.CanRedo() {
		t.Fatalf("new capture must invalidate redo")
	}
}

func TestUndoPastFirstFallsBackToStore(t *testing.T) {
	saved := design("saved1")
	cases := []struct {
		name  string
		store Loader
		want  model.Design
	}{
		{"persisted", fakeStore{d: saved}, saved},
		{"nothing persisted", fakeStore{}, model.Design{}},
		{"store error", fakeStore{err: errors.New("disk gone")}, model.Design{}},
		{"no store", nil, model.Design{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &fakeCanvas{state: design("text1")}
			m := NewManager(c, tc.store, Config{})
			m.Capture()
			if !m.Undo() {
				t.Fatalf("undo refused")
			}
			if len(c.state) != len(tc.want) || (len(tc.want) > 0 && !c.state.Equal(tc.want)) {
				t.Fatalf("restored %+v, want %+v", c.state, tc.want)
			}
			if m.CanUndo() || !m.CanRedo() {
				t.Fatalf("stacks after undo-past-first: undo=%v redo=%v", m.CanUndo(), m.CanRedo())
			}
		})
	}
}

func TestUndoEmptyNoop(t *testing.T) {
	c := &fakeCanvas{}
	m := NewManager(c, nil, Config{})
	if m.Undo() || c.restores != 0 {
		t.Fatalf("undo on empty stack must not restore")
	}
}

func TestCustomDepthAndClear(t *testing.T) {
	c := &fakeCanvas{}
	m := NewManager(c, nil, Config{MaxDepth: 3})
	for i := 0; i < 6; i++ {
		c.state = design(fmt.Sprintf("t%d", i))
		m.Capture()
	}
	if u, _ := m.Stats(); u != 3 {
		t.Fatalf("depth = %d", u)
	}
	m.Clear()
	if u, r := m.Stats(); u != 0 || r != 0 {
		t.Fatalf("clear left %d/%d", u, r)
	}
}
