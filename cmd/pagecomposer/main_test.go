/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagecomposer/internal/canvas"
	"pagecomposer/internal/config"
	"pagecomposer/internal/geometry"
	"pagecomposer/internal/model"
	"pagecomposer/internal/storage"
	"pagecomposer/internal/version"
)

// workspace points the CLI at a fresh config dir and seeds the file store
// with a two-component design.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, filepath.Join(dir, "config.yaml"))
	for _, env := range []string{config.EnvStoreBackend, config.EnvStorePath, config.EnvExportDir, config.EnvLayoutMode, config.EnvLogFile} {
		t.Setenv(env, "")
	}
	fs, err := storage.NewFileStore(filepath.Join(dir, "design.json"))
	if err != nil {
		t.Fatal(err)
	}
	c := canvas.New(canvas.DefaultOptions(), fs)
	c.OnDrop(canvas.DropEvent{Type: canvas.TypeHeader, Pointer: geometry.Pt{X: 10, Y: 10}})
	c.OnDrop(canvas.DropEvent{Type: canvas.TypeText, Pointer: geometry.Pt{X: 10, Y: 200}})
	if err := c.SetContent("text1", "<p>Hello from the CLI</p>"); err != nil {
		t.Fatal(err)
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(nil)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspect(t *testing.T) {
	workspace(t)
	out, err := run(t, "inspect")
	if err != nil {
		t.Fatal(err)
	}
	d, err := model.Unmarshal([]byte(out))
	if err != nil {
		t.Fatalf("inspect output is not a design: %v\n%s", err, out)
	}
	if ids := d.Components(); len(ids) != 2 || ids[0].ID != "header1" || ids[1].ID != "text1" {
		t.Fatalf("components = %+v", ids)
	}

	out, err = run(t, "inspect", "--format", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "id: text1") {
		t.Fatalf("yaml output:\n%s", out)
	}
	if _, err := run(t, "inspect", "-f", "xml"); err == nil {
		t.Fatalf("unknown format accepted")
	}
}

func TestSourceCommands(t *testing.T) {
	workspace(t)
	html, err := run(t, "html", "--title", "Hello")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(html, "<!DOCTYPE html>") || !strings.Contains(html, "<title>Hello</title>") || !strings.Contains(html, "Hello from the CLI") {
		t.Fatalf("html:\n%s", html)
	}
	css, err := run(t, "css")
	if err != nil || !strings.Contains(css, ".grid-layout") {
		t.Fatalf("css: %v\n%s", err, css)
	}
	md, err := run(t, "markdown")
	if err != nil || !strings.Contains(md, "Hello from the CLI") {
		t.Fatalf("markdown: %v\n%s", err, md)
	}
}

func TestExportAndClear(t *testing.T) {
	dir := workspace(t)
	out, err := run(t, "export", "site", "--markdown")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "exports", "site.zip")
	if strings.TrimSpace(out) != want {
		t.Fatalf("export printed %q, want %q", out, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("archive missing: %v", err)
	}

	if _, err := run(t, "clear"); err != nil {
		t.Fatal(err)
	}
	fs, _ := storage.NewFileStore(filepath.Join(dir, "design.json"))
	if d, err := fs.Load(); err != nil || d != nil {
		t.Fatalf("store not cleared: %v %v", d, err)
	}
}

func TestDesignFileAndValidate(t *testing.T) {
	dir := workspace(t)
	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`[{"id":"canvas","type":"canvas"},{"id":"image1","type":"image","position":{"x":0,"y":0},"dimensions":{"width":100,"height":80},"content":"<img class=\"image-display\" alt=\"\"/>","imageSrc":"https://example.test/a.png"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"type":"text"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "validate", good)
	if err != nil || strings.TrimSpace(out) != "ok: 1 components" {
		t.Fatalf("validate good: %v %q", err, out)
	}
	if _, err := run(t, "validate", bad); err == nil {
		t.Fatalf("invalid design accepted")
	}

	html, err := run(t, "--design", good, "html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `src="https://example.test/a.png"`) || strings.Contains(html, "Hello from the CLI") {
		t.Fatalf("design file not used:\n%s", html)
	}
}

func TestVersion(t *testing.T) {
	workspace(t)
	out, err := run(t, "version")
	if err != nil || !strings.Contains(out, version.String()) {
		t.Fatalf("version: %v %q", err, out)
	}
}

func TestBadConfig(t *testing.T) {
	dir := workspace(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("editor:\n  layout_mode: circus\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "inspect"); err == nil || !strings.Contains(err.Error(), "layout_mode") {
		t.Fatalf("expected layout_mode error, got %v", err)
	}
}
