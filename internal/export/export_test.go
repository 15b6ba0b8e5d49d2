/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagecomposer/internal/canvas"
	"pagecomposer/internal/codegen"
	"pagecomposer/internal/geometry"
	"pagecomposer/internal/model"
)

func sampleCanvas(t *testing.T) *canvas.Canvas {
	t.Helper()
	opts := canvas.DefaultOptions()
	opts.Layout = canvas.LayoutAbsolute
	c := canvas.New(opts, nil)
	for _, typ := range []string{canvas.TypeHeader, canvas.TypeText, canvas.TypeImage} {
		if c.OnDrop(canvas.DropEvent{Type: typ, Pointer: geometry.Pt{X: 100, Y: float64(100 + 200*c.Len())}}) == nil {
			t.Fatalf("drop %s refused", typ)
		}
	}
	return c
}

func TestExportWritesArchive(t *testing.T) {
	dir := t.TempDir()
	var notices []Notice
	res, err := Export(sampleCanvas(t), Options{
		Dir:      dir,
		Name:     "landing",
		Title:    "Landing",
		Layout:   codegen.LayoutAbsolute,
		Markdown: true,
		PDF:      true,
		Notify:   func(n Notice) { notices = append(notices, n) },
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Archive != filepath.Join(dir, "landing.zip") {
		t.Fatalf("archive path = %s", res.Archive)
	}
	zr, err := zip.OpenReader(res.Archive)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer func() { _ = zr.Close() }()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "index.html,styles.css,page.md" {
		t.Fatalf("entries = %v", names)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Contains(doc, []byte(`<div class="page-root absolute-layout">`)) || bytes.Contains(doc, []byte("resizer")) {
		t.Fatalf("unexpected document:\n%s", doc)
	}

	if st, err := os.Stat(res.PDF); err != nil || st.Size() == 0 {
		t.Fatalf("layout proof missing: %v", err)
	}
	if len(notices) != 1 || notices[0].Err != nil || notices[0].Message != "Exported landing.zip" || notices[0].TTL != NoticeTTL {
		t.Fatalf("notices = %+v", notices)
	}
	assertNoTemp(t, dir)
}

func TestExportFailureNotifies(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "taken.zip"), 0o755); err != nil {
		t.Fatal(err)
	}
	var notices []Notice
	_, err := Export(sampleCanvas(t), Options{Dir: dir, Name: "taken", Notify: func(n Notice) { notices = append(notices, n) }})
	if err == nil {
		t.Fatalf("export over a directory succeeded")
	}
	if len(notices) != 1 || notices[0].Err == nil {
		t.Fatalf("notices = %+v", notices)
	}
	assertNoTemp(t, dir)
}

func TestWriteArchiveNames(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")
	cases := []struct {
		name, want string
	}{
		{"", filepath.Join(dir, "page.zip")},
		{"site", filepath.Join(dir, "site.zip")},
		{"Site.ZIP", filepath.Join(dir, "Site.ZIP")},
		{"nested/site", filepath.Join(dir, "nested", "site.zip")},
		{abs, abs + ".zip"},
	}
	for _, tc := range cases {
		got, err := WriteArchive(dir, tc.name, []byte("PK"))
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%q -> %s, want %s", tc.name, got, tc.want)
		}
		if b, _ := os.ReadFile(got); string(b) != "PK" {
			t.Fatalf("%s content = %q", got, b)
		}
	}
	assertNoTemp(t, dir)
}

func TestBundleWithoutMarkdown(t *testing.T) {
	entries, err := Bundle(codegen.New(sampleCanvas(t).Surface(), codegen.Options{}), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Name != EntryHTML || entries[1].Name != EntryCSS {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestLayoutProofPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "proofs", "page.pdf")
	d := model.Design{
		{ID: model.CanvasID, Type: model.CanvasType},
		{ID: "text1", Type: "text", Position: model.Position{X: 20, Y: 20}, Dimensions: model.Dimensions{Width: 200, Height: 50}},
		{ID: "ghost1", Type: "text"},
	}
	if err := LayoutProofPDF(d, out, ProofOptions{Width: 600, Height: 400, GridSize: 20}); err != nil {
		t.Fatalf("proof: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
}

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	_ = filepath.WalkDir(dir, func(p string, e os.DirEntry, err error) error {
		if err == nil && strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", p)
		}
		return nil
	})
}
