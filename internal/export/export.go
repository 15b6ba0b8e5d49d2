/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export packages the generated page into a downloadable archive
// and renders a printable layout proof.
package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"pagecomposer/internal/archive"
	"pagecomposer/internal/codegen"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/model"
	"pagecomposer/internal/surface"
)

// Archive entry names.
const (
	EntryHTML     = "index.html"
	EntryCSS      = "styles.css"
	EntryMarkdown = "page.md"
)

// NoticeTTL is how long a transient notice stays visible.
const NoticeTTL = 3 * time.Second

// Notice is a short-lived status message for the user.
type Notice struct {
	Message string
	Err     error
	TTL     time.Duration
}

type Notifier func(Notice)

// Source is the canvas being exported.
type Source interface {
	Surface() *surface.Surface
	GetState() model.Design
}

// Options controls one export run.
type Options struct {
	Dir      string
	Name     string
	Title    string
	Layout   string
	Markdown bool
	PDF      bool
	Notify   Notifier
}

// Result lists what was written.
type Result struct {
	Archive string
	PDF     string
	Entries []string
	Bytes   int
}

// Bundle generates the archive entries: the document, the stylesheet and,
// when asked, the Markdown rendition.
func Bundle(gen *codegen.Generator, markdown bool) ([]archive.Entry, error) {
	doc, err := gen.GenerateHTML()
	if err != nil {
		return nil, err
	}
	css, err := gen.GenerateCSS()
	if err != nil {
		return nil, err
	}
	entries := []archive.Entry{archive.Text(EntryHTML, doc), archive.Text(EntryCSS, css)}
	if markdown {
		md, err := gen.GenerateMarkdown()
		if err != nil {
			return nil, err
		}
		entries = append(entries, archive.Text(EntryMarkdown, md))
	}
	return entries, nil
}

// Export runs generation, packaging and writing. The caller is notified of
// the outcome either way.
func Export(src Source, opts Options) (res Result, err error) {
	l := applog.WithOperation(applog.WithComponent("export"), "export")
	defer func() {
		if opts.Notify == nil {
			return
		}
		if err != nil {
			opts.Notify(Notice{Message: "Export failed", Err: err, TTL: NoticeTTL})
			return
		}
		opts.Notify(Notice{Message: "Exported " + filepath.Base(res.Archive), TTL: NoticeTTL})
	}()

	gen := codegen.New(src.Surface(), codegen.Options{Layout: opts.Layout, Title: opts.Title})
	entries, err := Bundle(gen, opts.Markdown)
	if err != nil {
		return res, fmt.Errorf("generate page: %w", err)
	}
	data, err := archive.Build(entries)
	if err != nil {
		return res, fmt.Errorf("build archive: %w", err)
	}
	path, err := WriteArchive(opts.Dir, opts.Name, data)
	if err != nil {
		return res, err
	}
	res.Archive, res.Bytes = path, len(data)
	for _, e := range entries {
		res.Entries = append(res.Entries, e.Name)
	}
	if opts.PDF {
		root := src.Surface().Root()
		pdfPath := replaceExt(path, ".pdf")
		if err := LayoutProofPDF(src.GetState(), pdfPath, ProofOptions{Width: root.Box.W, Height: root.Box.H, Title: opts.Title}); err != nil {
			return res, err
		}
		res.PDF = pdfPath
	}
	l.Info("export written", slog.String("path", path), slog.Int("bytes", len(data)), slog.Int("entries", len(entries)))
	return res, nil
}
