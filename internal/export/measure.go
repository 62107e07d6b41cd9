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

	"trisheet/internal/domain"
	"trisheet/internal/figure"
	"trisheet/internal/layout"
	"trisheet/internal/storage"
	"trisheet/internal/styles"
	"trisheet/internal/textlayout"
)

// Shared question-block preparation. Every exporter that paginates (PDF,
// PNG pages) measures blocks here so they all agree with layout.Paginate
// on what ends up on which page.

const (
	// ptPerUnit converts figure units to points at scale 1, matching the
	// TikZ default of one unit per centimeter.
	ptPerUnit = 72.0 / 2.54

	// numberIndent is the hanging indent reserved for the question number.
	numberIndent = 18.0

	// textFigGap separates a prompt from its figure, in points.
	textFigGap = 8.0

	// maxFigureH caps a rendered figure so one oversized triangle cannot
	// claim a whole column.
	maxFigureH = 240.0

	// figPad grows the drawn bounds, in figure units, so anchored label
	// glyphs have room beyond their reference points.
	figPad = 0.45

	defaultFontPt = 11.0
)

// qblock is one question prepared for rendering: the wrapped prompt plus the
// resolved figure, sized against one column of the page grid.
type qblock struct {
	Q    *domain.Question
	Text textlayout.Wrapped
	Res  *figure.Resolved // nil when the question has no figure
	FigW float64          // points, fitted to the column
	FigH float64
}

// prepareBlocks resolves and measures every question of a worksheet. The
// returned Measured slice is index-aligned with the blocks and ready for
// layout.Paginate. Resolution failures abort with the question ID in the
// error; exporters never render a partial sheet.
func prepareBlocks(ws *domain.Worksheet, sheet *styles.StyleSheet, spec layout.PageSpec, prov textlayout.Provider, fontPt float64) ([]qblock, []layout.Measured, error) {
	colW := spec.ColumnWidth()
	blocks := make([]qblock, 0, len(ws.Questions))
	measured := make([]layout.Measured, 0, len(ws.Questions))
	for i := range ws.Questions {
		q := &ws.Questions[i]
		st := sheet.Effective(ws, q)
		size := st.FontSize
		if size <= 0 {
			size = fontPt
		}
		wr := textlayout.Wrap(prov, textlayout.FontSpec{SizePt: size}, q.Prompt, colW-numberIndent)
		b := qblock{Q: q, Text: wr}
		if q.Figure != nil {
			res, err := figure.Resolve(q.Figure, st)
			if err != nil {
				return nil, nil, fmt.Errorf("question %s: %w", q.ID, err)
			}
			b.Res = res
			b.FigW, b.FigH = fitFigure(res, colW)
		}
		m := layout.Measured{ID: q.ID, TextH: wr.Height}
		if b.Res != nil {
			m.FigureH = b.FigH + textFigGap
		}
		blocks = append(blocks, b)
		measured = append(measured, m)
	}
	return blocks, measured, nil
}

// fitFigure sizes a resolved figure for one column: natural size is padded
// bounds times the figure scale at one centimeter per unit, shrunk to fit
// the column width and the height cap.
func fitFigure(res *figure.Resolved, colW float64) (w, h float64) {
	b := paddedBounds(res)
	if b.W <= 0 || b.H <= 0 {
		return 0, 0
	}
	w = b.W * res.Scale * ptPerUnit
	h = b.H * res.Scale * ptPerUnit
	if w > colW {
		h *= colW / w
		w = colW
	}
	if h > maxFigureH {
		w *= maxFigureH / h
		h = maxFigureH
	}
	return w, h
}

// paddedBounds is the figure rect every renderer draws into.
func paddedBounds(res *figure.Resolved) figure.Rect {
	return res.Bounds().Inset(-figPad, -figPad)
}

// projectStyles builds the style cascade for a project: builtins overlaid
// with whatever the styles/ directory defines.
func projectStyles(ph *storage.ProjectHandle) (*styles.StyleSheet, error) {
	sheet := styles.NewStyleSheet()
	dir := filepath.Join(ph.Root, "styles")
	if _, err := os.Stat(dir); err != nil {
		return sheet, nil
	}
	over, err := styles.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load project styles: %w", err)
	}
	return sheet.WithWorksheet(over), nil
}

// resolveOutPath places relative outputs under the project's exports folder
// and makes sure the parent directory exists.
func resolveOutPath(ph *storage.ProjectHandle, outPath string) (string, error) {
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	return outPath, nil
}

func pageIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

// subtitle joins the descriptive worksheet metadata for header lines.
func subtitle(ws *domain.Worksheet) string {
	var parts []string
	for _, s := range []string{ws.Subject, ws.Level, ws.Metadata.Author} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " - " + p
	}
	return out
}
