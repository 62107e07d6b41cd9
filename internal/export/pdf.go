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
	"math"

	"github.com/jung-kurt/gofpdf"
	"trisheet/internal/domain"
	"trisheet/internal/figure"
	"trisheet/internal/geom"
	"trisheet/internal/layout"
	"trisheet/internal/storage"
	"trisheet/internal/textlayout"
)

// PDFOptions controls worksheet PDF export.
// Units are points (pt) unless otherwise noted.
// Text uses built-in Helvetica to keep it vector without font embedding;
// non-cp1252 characters in prompts degrade to their closest translation.
//
// Coordinates:
// - Page origin is top-left, matching the pagination plan.
// - Figures are fitted into their column rect with the y axis flipped, so
//   figure angles keep their on-paper meaning and ArcRenderParams degrees
//   feed gofpdf.Arc unchanged.
type PDFOptions struct {
	IncludeAnswerKey bool
	Pages            []int               // if empty, export all pages
	FontPt           float64             // base prompt size, default 11
	Provider         textlayout.Provider // measurement; nil uses the basicfont fallback
}

const (
	titlePt           = 16.0
	defaultStrokeW    = 0.8
	defaultArcStrokeW = 0.6
	defaultLabelPt    = 10.0
	centerDotR        = 1.6
)

// ExportWorksheetPDF compiles the worksheet into a single multi-page PDF at
// outPath. Relative paths land under the project's exports folder.
func ExportWorksheetPDF(ph *storage.ProjectHandle, outPath string, opt PDFOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	doc, err := buildWorksheetPDF(ph, opt)
	if err != nil {
		return err
	}
	outPath, err = resolveOutPath(ph, outPath)
	if err != nil {
		return err
	}
	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// buildWorksheetPDF assembles the document in memory. ExportBundle reuses it
// to stream the PDF into the zip without touching disk twice.
func buildWorksheetPDF(ph *storage.ProjectHandle, opt PDFOptions) (*gofpdf.Fpdf, error) {
	ws := &ph.Worksheet
	sheet, err := projectStyles(ph)
	if err != nil {
		return nil, err
	}
	spec := layout.FromSetup(ws.Page).Normalized()
	fontPt := opt.FontPt
	if fontPt <= 0 {
		fontPt = defaultFontPt
	}
	blocks, measured, err := prepareBlocks(ws, sheet, spec, opt.Provider, fontPt)
	if err != nil {
		return nil, err
	}
	plans := layout.Paginate(measured, spec)

	// Points map 1:1 from the layout plan to the PDF.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: spec.Width, Ht: spec.Height},
		OrientationStr: "",
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(ws.Title), true)
	if ws.Metadata.Author != "" {
		pdf.SetAuthor(tr(ws.Metadata.Author), true)
	}
	pdf.SetFont("Helvetica", "", fontPt)

	pages := pageIndexes(len(plans), opt.Pages)
	for _, pidx := range pages {
		if pidx < 0 || pidx >= len(plans) {
			continue
		}
		plan := plans[pidx]
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: spec.Width, Ht: spec.Height})
		if plan.Number == 1 {
			drawTitleBlock(pdf, tr, ws, spec)
		}
		drawFooter(pdf, tr, ws, spec, plan.Number, len(plans))
		for _, pl := range plan.Blocks {
			// Placement index is 1-based over the same ordered blocks.
			drawQuestionPDF(pdf, tr, blocks[pl.Index-1], pl, fontPt)
		}
	}
	if opt.IncludeAnswerKey {
		drawAnswerKey(pdf, tr, ws, spec, opt.Provider, fontPt)
	}
	return pdf, nil
}

// drawTitleBlock puts the worksheet header inside the top margin band of the
// first page, leaving the paginated area untouched.
func drawTitleBlock(pdf *gofpdf.Fpdf, tr func(string) string, ws *domain.Worksheet, spec layout.PageSpec) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", titlePt)
	pdf.Text(spec.Margin, spec.Margin-26, tr(ws.Title))
	if sub := subtitle(ws); sub != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(90, 90, 90)
		pdf.Text(spec.Margin, spec.Margin-14, tr(sub))
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.8)
	pdf.Line(spec.Margin, spec.Margin-8, spec.Width-spec.Margin, spec.Margin-8)
	pdf.SetTextColor(0, 0, 0)
}

func drawFooter(pdf *gofpdf.Fpdf, tr func(string) string, ws *domain.Worksheet, spec layout.PageSpec, page, total int) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(130, 130, 130)
	s := fmt.Sprintf("%s - page %d/%d", ws.Title, page, total)
	w := pdf.GetStringWidth(s)
	pdf.Text((spec.Width-w)/2, spec.Height-spec.Margin/2, tr(s))
	pdf.SetTextColor(0, 0, 0)
}

// drawQuestionPDF renders one placed block: hanging number, wrapped prompt,
// then the figure centered below.
func drawQuestionPDF(pdf *gofpdf.Fpdf, tr func(string) string, b qblock, pl layout.Placement, fontPt float64) {
	r := pl.Rect
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", fontPt)
	pdf.Text(r.X, r.Y+fontPt, fmt.Sprintf("%d.", pl.Index))
	pdf.SetFont("Helvetica", "", fontPt)
	y := r.Y + fontPt
	for _, line := range b.Text.Lines {
		pdf.Text(r.X+numberIndent, y, tr(line))
		y += b.Text.LineHeight
	}
	if b.Res == nil {
		return
	}
	dst := figure.R(r.X+(r.W-b.FigW)/2, r.Y+b.Text.Height+textFigGap, b.FigW, b.FigH)
	drawFigurePDF(pdf, tr, b.Res, dst)
}

// drawFigurePDF renders one resolved figure into dst page coordinates.
func drawFigurePDF(pdf *gofpdf.Fpdf, tr func(string) string, res *figure.Resolved, dst figure.Rect) {
	m := figure.FitTransform(paddedBounds(res), dst)
	s := math.Abs(m.A)

	stroke := res.Style.Stroke
	if stroke.Width <= 0 {
		stroke.Width = defaultStrokeW
	}
	setDrawColor(pdf, stroke.Color)
	pdf.SetLineWidth(stroke.Width)
	pts := res.Triangle.Points()
	for i := range pts {
		a := m.Apply(pts[i])
		b := m.Apply(pts[(i+1)%3])
		pdf.Line(a.X, a.Y, b.X, b.Y)
	}

	arcStroke := res.Style.ArcStroke
	if arcStroke.Width <= 0 {
		arcStroke.Width = defaultArcStrokeW
	}
	setDrawColor(pdf, arcStroke.Color)
	pdf.SetLineWidth(arcStroke.Width)
	for _, a := range res.Arcs {
		if a.Kind == geom.ArcKindRightAngle {
			corner := a.Arm1Point.Add(a.Arm2Point).Sub(a.Vertex)
			p1, pc, p2 := m.Apply(a.Arm1Point), m.Apply(corner), m.Apply(a.Arm2Point)
			pdf.Line(p1.X, p1.Y, pc.X, pc.Y)
			pdf.Line(pc.X, pc.Y, p2.X, p2.Y)
			continue
		}
		start, end := figure.InteriorSweep(a)
		c := m.Apply(a.Center)
		pdf.Arc(c.X, c.Y, a.Radius*s, a.Radius*s, 0, start, end, "D")
	}

	labelPt := res.Style.FontSize
	if labelPt <= 0 {
		labelPt = defaultLabelPt
	}
	pdf.SetFont("Helvetica", "I", labelPt)
	for _, l := range res.VertexLabels {
		drawAnchoredText(pdf, m.Apply(l.Placement.Reference), l.Placement.Anchor, 0, tr(l.Text), labelPt)
	}
	for _, l := range res.SideLabels {
		drawAnchoredText(pdf, m.Apply(l.Placement.Reference), l.Placement.Anchor, l.Placement.RotationDeg, tr(l.Text), labelPt)
	}
	for _, l := range res.AngleLabels {
		drawAnchoredText(pdf, m.Apply(l.Placement.Reference), l.Placement.Anchor, 0, tr(l.Text), labelPt)
	}

	if len(res.Centers) > 0 {
		setDrawColor(pdf, stroke.Color)
		setFillColor(pdf, stroke.Color)
		pdf.SetFont("Helvetica", "", labelPt*0.8)
		for _, cp := range res.Centers {
			p := m.Apply(cp.Point)
			pdf.Circle(p.X, p.Y, centerDotR, "F")
			pdf.Text(p.X+3, p.Y-3, tr(cp.Name))
		}
	}
	pdf.SetFont("Helvetica", "", defaultFontPt)
}

// drawAnchoredText draws s so its box sits on the anchor side of p, matching
// the engine's label convention. Rotation happens around p, so offsets are
// computed before the rotation and turn with the text.
func drawAnchoredText(pdf *gofpdf.Fpdf, p geom.Point, a geom.Anchor, rotDeg float64, s string, sizePt float64) {
	w := pdf.GetStringWidth(s)
	const pad = 2.0
	x := p.X - w/2
	y := p.Y + sizePt*0.35
	switch a {
	case geom.AnchorNorth:
		y = p.Y - pad
	case geom.AnchorSouth:
		y = p.Y + pad + sizePt
	case geom.AnchorEast:
		x = p.X + pad
	case geom.AnchorWest:
		x = p.X - w - pad
	case geom.AnchorNorthEast:
		x, y = p.X+pad, p.Y-pad
	case geom.AnchorNorthWest:
		x, y = p.X-w-pad, p.Y-pad
	case geom.AnchorSouthEast:
		x, y = p.X+pad, p.Y+pad+sizePt
	case geom.AnchorSouthWest:
		x, y = p.X-w-pad, p.Y+pad+sizePt
	}
	if rotDeg != 0 {
		pdf.TransformBegin()
		pdf.TransformRotate(rotDeg, p.X, p.Y)
		pdf.Text(x, y, s)
		pdf.TransformEnd()
		return
	}
	pdf.Text(x, y, s)
}

// drawAnswerKey appends the key: a heading plus one numbered line per
// answered question, flowed down the same column grid.
func drawAnswerKey(pdf *gofpdf.Fpdf, tr func(string) string, ws *domain.Worksheet, spec layout.PageSpec, prov textlayout.Provider, fontPt float64) {
	type ans struct {
		n    int
		text textlayout.Wrapped
	}
	colW := spec.ColumnWidth()
	var list []ans
	for i := range ws.Questions {
		if ws.Questions[i].Answer == "" {
			continue
		}
		wr := textlayout.Wrap(prov, textlayout.FontSpec{SizePt: fontPt}, ws.Questions[i].Answer, colW-numberIndent)
		list = append(list, ans{n: i + 1, text: wr})
	}
	if len(list) == 0 {
		return
	}
	newPage := func() {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: spec.Width, Ht: spec.Height})
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", titlePt)
		pdf.Text(spec.Margin, spec.Margin-26, tr("Answer key"))
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.8)
		pdf.Line(spec.Margin, spec.Margin-8, spec.Width-spec.Margin, spec.Margin-8)
	}
	newPage()
	bottom := spec.Height - spec.Margin
	col, y := 0, spec.Margin
	for _, a := range list {
		if y > spec.Margin && y+a.text.Height > bottom {
			col++
			y = spec.Margin
			if col >= spec.Columns {
				col = 0
				newPage()
			}
		}
		x := spec.Margin + float64(col)*(colW+spec.Gutter)
		pdf.SetFont("Helvetica", "B", fontPt)
		pdf.Text(x, y+fontPt, fmt.Sprintf("%d.", a.n))
		pdf.SetFont("Helvetica", "", fontPt)
		ly := y + fontPt
		for _, line := range a.text.Lines {
			pdf.Text(x+numberIndent, ly, tr(line))
			ly += a.text.LineHeight
		}
		y += a.text.Height + spec.Spacing/2
	}
}

func setDrawColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
