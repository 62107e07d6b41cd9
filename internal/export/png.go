/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"trisheet/internal/domain"
	"trisheet/internal/figure"
	"trisheet/internal/geom"
	"trisheet/internal/layout"
	"trisheet/internal/storage"
	"trisheet/internal/textlayout"
)

// RenderOptions controls single-figure rasterization.
// DPI sets pixel density against the figure's physical size; the preview
// cache and the GUI canvas both go through here.
type RenderOptions struct {
	DPI int // default 150
}

// PNGOptions controls full-page PNG export.
type PNGOptions struct {
	DPI      int   // default 150
	Pages    []int // if empty, export all pages
	Provider textlayout.Provider
}

const defaultPNGDPI = 150

// RenderSize reports the pixel dimensions RenderFigure will produce for res
// at the given options. Cache keys depend on it staying in sync with the
// actual render.
func RenderSize(res *figure.Resolved, opt RenderOptions) (int, int) {
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = defaultPNGDPI
	}
	px := float64(dpi) / 72.0
	b := paddedBounds(res)
	w := int(math.Round(b.W * res.Scale * ptPerUnit * px))
	h := int(math.Round(b.H * res.Scale * ptPerUnit * px))
	if w < 16 {
		w = 16
	}
	if h < 16 {
		h = 16
	}
	return w, h
}

// RenderFigure rasterizes one resolved figure on a white background. Labels
// use the fixed basicfont face and stay horizontal; only the PDF path
// rotates side labels.
func RenderFigure(res *figure.Resolved, opt RenderOptions) (*image.RGBA, error) {
	if res == nil {
		return nil, fmt.Errorf("resolved figure is nil")
	}
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = defaultPNGDPI
	}
	px := float64(dpi) / 72.0
	w, h := RenderSize(res, opt)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
	drawFigureRaster(img, res, figure.R(0, 0, float64(w), float64(h)), px)
	return img, nil
}

// FigurePNG is RenderFigure encoded, for the preview cache and HTML inlining.
func FigurePNG(res *figure.Resolved, opt RenderOptions) ([]byte, error) {
	img, err := RenderFigure(res, opt)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportWorksheetPNGPages exports each planned page as page-<n>.png under
// outDir. Relative outDir lands under the project's exports folder. The
// pagination is identical to the PDF's.
func ExportWorksheetPNGPages(ph *storage.ProjectHandle, outDir string, opt PNGOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	ws := &ph.Worksheet
	sheet, err := projectStyles(ph)
	if err != nil {
		return err
	}
	spec := layout.FromSetup(ws.Page).Normalized()
	blocks, measured, err := prepareBlocks(ws, sheet, spec, opt.Provider, defaultFontPt)
	if err != nil {
		return err
	}
	plans := layout.Paginate(measured, spec)

	dpi := opt.DPI
	if dpi <= 0 {
		dpi = defaultPNGDPI
	}
	px := float64(dpi) / 72.0
	pixW := int(math.Round(spec.Width * px))
	pixH := int(math.Round(spec.Height * px))

	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(ph.Root, "exports", outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	black := color.RGBA{0, 0, 0, 255}
	pages := pageIndexes(len(plans), opt.Pages)
	for _, pidx := range pages {
		if pidx < 0 || pidx >= len(plans) {
			continue
		}
		plan := plans[pidx]

		img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

		if plan.Number == 1 {
			drawTextRaster(img, int(spec.Margin*px), int((spec.Margin-20)*px), ws.Title, black)
			fillRect(img,
				int(spec.Margin*px), int((spec.Margin-10)*px),
				int((spec.Width-spec.Margin)*px), int((spec.Margin-10)*px)+1, black)
		}

		for _, pl := range plan.Blocks {
			b := blocks[pl.Index-1]
			r := pl.Rect
			baseY := int((r.Y + defaultFontPt) * px)
			drawTextRaster(img, int(r.X*px), baseY, fmt.Sprintf("%d.", pl.Index), black)
			y := baseY
			for _, line := range b.Text.Lines {
				drawTextRaster(img, int((r.X+numberIndent)*px), y, line, black)
				y += int(math.Round(b.Text.LineHeight * px))
			}
			if b.Res == nil {
				continue
			}
			dst := figure.R(
				(r.X+(r.W-b.FigW)/2)*px,
				(r.Y+b.Text.Height+textFigGap)*px,
				b.FigW*px, b.FigH*px)
			drawFigureRaster(img, b.Res, dst, px)
		}

		name := filepath.Join(outDir, fmt.Sprintf("page-%d.png", plan.Number))
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("create png: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode png: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close png: %w", err)
		}
	}
	return nil
}

// drawFigureRaster renders a resolved figure into dst pixel coordinates.
// pxPerPt converts the style's point widths to device pixels.
func drawFigureRaster(img *image.RGBA, res *figure.Resolved, dst figure.Rect, pxPerPt float64) {
	m := figure.FitTransform(paddedBounds(res), dst)

	stroke := res.Style.Stroke
	if stroke.Width <= 0 {
		stroke.Width = defaultStrokeW
	}
	sw := stroke.Width * pxPerPt
	sc := toRGBA(stroke.Color)
	if sc.A == 0 {
		sc = color.RGBA{0, 0, 0, 255}
	}
	pts := res.Triangle.Points()
	for i := range pts {
		a := m.Apply(pts[i])
		b := m.Apply(pts[(i+1)%3])
		strokeLine(img, a, b, sw, sc)
	}

	arcStroke := res.Style.ArcStroke
	if arcStroke.Width <= 0 {
		arcStroke.Width = defaultArcStrokeW
	}
	aw := arcStroke.Width * pxPerPt
	ac := toRGBA(arcStroke.Color)
	if ac.A == 0 {
		ac = color.RGBA{0, 0, 0, 255}
	}
	for _, a := range res.Arcs {
		if a.Kind == geom.ArcKindRightAngle {
			corner := a.Arm1Point.Add(a.Arm2Point).Sub(a.Vertex)
			strokeLine(img, m.Apply(a.Arm1Point), m.Apply(corner), aw, ac)
			strokeLine(img, m.Apply(corner), m.Apply(a.Arm2Point), aw, ac)
			continue
		}
		// Walk the arc in figure space and transform each sample; the
		// renderer never has to reason about sweep direction.
		start, end := figure.InteriorSweep(a)
		n := int((end-start)/4) + 2
		prev := arcPoint(a, start)
		for i := 1; i <= n; i++ {
			t := start + (end-start)*float64(i)/float64(n)
			cur := arcPoint(a, t)
			strokeLine(img, m.Apply(prev), m.Apply(cur), aw, ac)
			prev = cur
		}
	}

	black := color.RGBA{0, 0, 0, 255}
	for _, l := range res.VertexLabels {
		drawAnchoredRaster(img, m.Apply(l.Placement.Reference), l.Placement.Anchor, l.Text, black)
	}
	for _, l := range res.SideLabels {
		drawAnchoredRaster(img, m.Apply(l.Placement.Reference), l.Placement.Anchor, l.Text, black)
	}
	for _, l := range res.AngleLabels {
		drawAnchoredRaster(img, m.Apply(l.Placement.Reference), l.Placement.Anchor, l.Text, black)
	}
	for _, cp := range res.Centers {
		p := m.Apply(cp.Point)
		stampDot(img, p.X, p.Y, math.Max(1.5, 1.5*pxPerPt), sc)
		drawTextRaster(img, int(p.X)+3, int(p.Y)-3, cp.Name, black)
	}
}

// arcPoint samples the arc at deg degrees in figure space.
func arcPoint(a geom.ArcRenderParams, deg float64) geom.Point {
	rad := deg * math.Pi / 180
	return geom.Point{X: a.Center.X + a.Radius*math.Cos(rad), Y: a.Center.Y + a.Radius*math.Sin(rad)}
}

// strokeLine draws a line of width w pixels by stamping discs along the
// Bresenham walk between the endpoints.
func strokeLine(img *image.RGBA, a, b geom.Point, w float64, col color.RGBA) {
	x0, y0 := int(math.Round(a.X)), int(math.Round(a.Y))
	x1, y1 := int(math.Round(b.X)), int(math.Round(b.Y))
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	r := w / 2
	for {
		stampDot(img, float64(x0), float64(y0), r, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// stampDot fills a disc of radius r; r at or below 0.6 degrades to a single
// pixel so hairlines stay one pixel wide.
func stampDot(img *image.RGBA, cx, cy, r float64, col color.RGBA) {
	if r <= 0.6 {
		img.SetRGBA(int(math.Round(cx)), int(math.Round(cy)), col)
		return
	}
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			ddx, ddy := float64(x)-cx, float64(y)-cy
			if ddx*ddx+ddy*ddy <= r*r {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// degreeAdvance is the pen advance of the synthesized degree sign; the fixed
// face stops at ASCII.
const degreeAdvance = 5

// rasterTextWidth measures s the way drawTextRaster draws it.
func rasterTextWidth(s string) int {
	w := 0
	for _, r := range s {
		if r == '°' {
			w += degreeAdvance
		} else {
			w += basicfont.Face7x13.Advance
		}
	}
	return w
}

// drawTextRaster draws s with the fixed 7x13 face, baseline at (x, y).
// Degree signs are drawn as a small ring because the face has no glyph for
// them and angle labels use them constantly.
func drawTextRaster(img *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	for _, r := range s {
		if r != '°' {
			d.DrawString(string(r))
			continue
		}
		cx := float64(d.Dot.X.Round()) + 2
		cy := float64(y) - 7
		for i := 0; i < 12; i++ {
			a := float64(i) * math.Pi / 6
			img.SetRGBA(int(math.Round(cx+1.5*math.Cos(a))), int(math.Round(cy+1.5*math.Sin(a))), col)
		}
		d.Dot.X += fixed.I(degreeAdvance)
	}
}

// drawAnchoredRaster positions s on the anchor side of p like the PDF path,
// using the basicfont metrics.
func drawAnchoredRaster(img *image.RGBA, p geom.Point, a geom.Anchor, s string, col color.RGBA) {
	face := basicfont.Face7x13
	w := float64(rasterTextWidth(s))
	asc := float64(face.Metrics().Ascent.Round())
	const pad = 2.0
	x := p.X - w/2
	y := p.Y + asc*0.4
	switch a {
	case geom.AnchorNorth:
		y = p.Y - pad
	case geom.AnchorSouth:
		y = p.Y + pad + asc
	case geom.AnchorEast:
		x = p.X + pad
	case geom.AnchorWest:
		x = p.X - w - pad
	case geom.AnchorNorthEast:
		x, y = p.X+pad, p.Y-pad
	case geom.AnchorNorthWest:
		x, y = p.X-w-pad, p.Y-pad
	case geom.AnchorSouthEast:
		x, y = p.X+pad, p.Y+pad+asc
	case geom.AnchorSouthWest:
		x, y = p.X-w-pad, p.Y+pad+asc
	}
	drawTextRaster(img, int(math.Round(x)), int(math.Round(y)), s, col)
}

func toRGBA(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
