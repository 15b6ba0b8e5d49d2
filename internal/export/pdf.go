/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"pagecomposer/internal/model"
)

// ProofOptions controls the layout proof. One canvas pixel maps to one point.
type ProofOptions struct {
	Width, Height float64
	Title         string
	// GridSize draws a light background grid when positive.
	GridSize float64
}

type rgb struct{ r, g, b int }

var (
	frameColor = rgb{160, 160, 160}
	gridColor  = rgb{230, 230, 230}
	boxColor   = rgb{30, 90, 200}
	labelColor = rgb{40, 40, 40}
)

// LayoutProofPDF draws every component of d as a labelled rectangle on a
// single page the size of the canvas.
func LayoutProofPDF(d model.Design, outPath string, opt ProofOptions) error {
	w, h := opt.Width, opt.Height
	if w <= 0 || h <= 0 {
		w, h = 1200, 800
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	title := opt.Title
	if title == "" {
		title = "Layout proof"
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("pagecomposer", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if opt.GridSize > 0 {
		setDrawColor(pdf, gridColor)
		pdf.SetLineWidth(0.2)
		for x := opt.GridSize; x < w; x += opt.GridSize {
			pdf.Line(x, 0, x, h)
		}
		for y := opt.GridSize; y < h; y += opt.GridSize {
			pdf.Line(0, y, w, y)
		}
	}
	setDrawColor(pdf, frameColor)
	pdf.SetLineWidth(0.5)
	pdf.Rect(0, 0, w, h, "D")

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range d.Components() {
		x, y := r.Position.X, r.Position.Y
		bw, bh := r.Dimensions.Width, r.Dimensions.Height
		if bw <= 0 || bh <= 0 {
			continue
		}
		setDrawColor(pdf, boxColor)
		pdf.SetLineWidth(1)
		pdf.Rect(x, y, bw, bh, "D")
		pdf.SetTextColor(labelColor.r, labelColor.g, labelColor.b)
		pdf.Text(x+3, y+11, fmt.Sprintf("%s (%s)", r.ID, r.Type))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
