/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"pagecomposer/internal/model"
)

func sampleDesign() model.Design {
	canvas := model.ComponentRecord{ID: model.CanvasID, Type: model.CanvasType, InlineStyle: "background-color: rgb(255, 255, 255);"}
	canvas.Style.Set("background-color", "rgb(255, 255, 255)")
	canvas.Style.Set("padding-top", "20px")
	text := model.ComponentRecord{
		ID:             "text1",
		Type:           "text",
		Content:        "<p>Hello</p>",
		Position:       model.Position{X: 40, Y: 60},
		Dimensions:     model.Dimensions{Width: 200, Height: 80},
		Classes:        []string{"text1", "text-component"},
		DataAttributes: map[string]string{"data-visibility": "desktop"},
	}
	text.Style.Set("z-index", "2")
	text.Style.Set("color", "rgb(0, 0, 0)")
	custom := model.ComponentRecord{
		ID:      "rating1",
		Type:    "rating",
		Classes: []string{"rating1", "custom-component"},
		Props:   map[string]any{"stars": float64(4), "label": "Great"},
	}
	return model.Design{canvas, text, custom}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFileStore(filepath.Join(dir, "state", "design.json"))
	if err != nil {
		t.Fatal(err)
	}
	sq, err := OpenSQLite(filepath.Join(dir, "design.db"), "")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Store{"file": fs, "sqlite": sq, "memory": NewMemoryStore()}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			d, err := s.Load()
			if err != nil || d != nil {
				t.Fatalf("empty store Load = %v, %v", d, err)
			}
			want := sampleDesign()
			if err := s.Save(want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := s.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !got.Equal(want) {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
			if v, _ := got[0].Style.Get("padding-top"); v != "20px" || got[0].Style[0].Property != "background-color" {
				t.Fatalf("style order lost: %+v", got[0].Style)
			}

			// last write wins
			next := want[:2].Clone()
			if err := s.Save(next); err != nil {
				t.Fatal(err)
			}
			if got, _ := s.Load(); len(got) != 2 {
				t.Fatalf("expected overwrite, got %d records", len(got))
			}

			if err := s.Remove(); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if got, err := s.Load(); err != nil || got != nil {
				t.Fatalf("after Remove Load = %v, %v", got, err)
			}
			if err := s.Remove(); err != nil {
				t.Fatalf("second Remove: %v", err)
			}
		})
	}
}

func TestSaveRejectsMisplacedCanvas(t *testing.T) {
	d := sampleDesign()
	d[0], d[1] = d[1], d[0]
	for name, s := range backends(t) {
		if err := s.Save(d); !errors.Is(err, ErrInvalidDesign) {
			t.Fatalf("%s: expected ErrInvalidDesign, got %v", name, err)
		}
	}
}

func TestFileLoadRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":        "{oops",
		"not an array":    `{"id":"canvas"}`,
		"missing type":    `[{"id":"text1"}]`,
		"numeric style":   `[{"id":"text1","type":"text","style":{"z-index":2}}]`,
		"bad data prefix": `[{"id":"text1","type":"text","dataAttributes":{"visibility":"x"}}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "design.json")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatal(err)
			}
			s, _ := NewFileStore(path)
			d, err := s.Load()
			if !errors.Is(err, ErrInvalidDesign) || d != nil {
				t.Fatalf("Load = %v, %v; want ErrInvalidDesign", d, err)
			}
		})
	}
}

func TestFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(filepath.Join(dir, "design.json"))
	for i := 0; i < 3; i++ {
		if err := s.Save(sampleDesign()); err != nil {
			t.Fatal(err)
		}
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 || ents[0].Name() != "design.json" {
		t.Fatalf("unexpected files: %v", ents)
	}
}

func TestSQLiteReopenKeepsDesignPerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.db")
	a, err := OpenSQLite(path, "page-a")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Save(sampleDesign()); err != nil {
		t.Fatal(err)
	}
	_ = a.Close()

	b, err := OpenSQLite(path, "page-b")
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := b.Load(); d != nil {
		t.Fatalf("other key must be empty")
	}
	_ = b.Close()

	a, err = OpenSQLite(path, "page-a")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	d, err := a.Load()
	if err != nil || !d.Equal(sampleDesign()) {
		t.Fatalf("reopen lost design: %v %v", d, err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		backend string
		path    string
	}{
		{"", filepath.Join(dir, "a.json")},
		{"FILE", filepath.Join(dir, "b.json")},
		{"sqlite", filepath.Join(dir, "c.db")},
		{"memory", ""},
	} {
		s, err := Open(Options{Backend: tc.backend, Path: tc.path})
		if err != nil {
			t.Fatalf("Open(%q): %v", tc.backend, err)
		}
		if c, ok := s.(io.Closer); ok {
			_ = c.Close()
		}
	}
	if _, err := Open(Options{Backend: "postgres"}); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	if _, err := Open(Options{Backend: "file"}); err == nil {
		t.Fatalf("file backend without path must fail")
	}
}

func TestSchemaCompiles(t *testing.T) {
	if _, err := compiled(); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if len(DesignSchema()) == 0 {
		t.Fatalf("embedded schema empty")
	}
}
