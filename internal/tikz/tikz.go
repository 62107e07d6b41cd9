/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tikz turns resolved figures into TikZ picture source for the LaTeX
// export path. It is a pure string emitter; compiling the LaTeX is the
// caller's problem.
package tikz

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"trisheet/internal/domain"
	"trisheet/internal/figure"
	"trisheet/internal/geom"
)

// Emit renders one figure as a tikzpicture environment. Coordinates stay in
// figure units; the picture's scale option carries the figure's scale factor.
func Emit(res *figure.Resolved) (string, error) {
	if res == nil {
		return "", fmt.Errorf("resolved figure is nil")
	}
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("\\begin{tikzpicture}[scale=%s]\n", num(res.Scale))

	tri := res.Triangle
	wf("  \\draw[%s] (%s,%s) -- (%s,%s) -- (%s,%s) -- cycle;\n",
		strokeOptions(res.Style.Stroke),
		num(tri.P1.X), num(tri.P1.Y), num(tri.P2.X), num(tri.P2.Y), num(tri.P3.X), num(tri.P3.Y))

	for _, a := range res.Arcs {
		if a.Kind == geom.ArcKindRightAngle {
			// Square marker: out along one arm, across the corner, back in
			// along the other.
			corner := a.Arm1Point.Add(a.Arm2Point).Sub(a.Vertex)
			wf("  \\draw[%s] (%s,%s) -- (%s,%s) -- (%s,%s);\n",
				strokeOptions(res.Style.ArcStroke),
				num(a.Arm1Point.X), num(a.Arm1Point.Y),
				num(corner.X), num(corner.Y),
				num(a.Arm2Point.X), num(a.Arm2Point.Y))
			continue
		}
		start, end := figure.InteriorSweep(a)
		wf("  \\draw[%s] ([shift=(%s:%s)]%s,%s) arc[start angle=%s, end angle=%s, radius=%s];\n",
			strokeOptions(res.Style.ArcStroke),
			num(start), num(a.Radius),
			num(a.Center.X), num(a.Center.Y),
			num(start), num(end), num(a.Radius))
	}

	writeLabels := func(labels []figure.Label) {
		for _, l := range labels {
			opts := "anchor=" + anchorName(l.Placement.Anchor)
			if l.Placement.RotationDeg != 0 {
				opts += ", rotate=" + num(l.Placement.RotationDeg)
			}
			wf("  \\node[%s] at (%s,%s) {%s};\n",
				opts, num(l.Placement.Reference.X), num(l.Placement.Reference.Y), escTeX(l.Text))
		}
	}
	writeLabels(res.VertexLabels)
	writeLabels(res.SideLabels)
	writeLabels(res.AngleLabels)

	for _, c := range res.Centers {
		wf("  \\fill (%s,%s) circle[radius=0.05];\n", num(c.Point.X), num(c.Point.Y))
		wf("  \\node[anchor=south west, font=\\scriptsize] at (%s,%s) {%s};\n",
			num(c.Point.X), num(c.Point.Y), escTeX(c.Name))
	}

	wf("\\end{tikzpicture}\n")
	if werr != nil {
		return "", fmt.Errorf("emit tikz: %w", werr)
	}
	return buf.String(), nil
}

// strokeOptions renders a domain stroke as TikZ draw options. Zero values
// mean the document default: black at 0.6pt.
func strokeOptions(s domain.Stroke) string {
	w := s.Width
	if w <= 0 {
		w = 0.6
	}
	opts := "line width=" + num(w) + "pt"
	if s.Color != (domain.Color{}) && !isBlack(s.Color) {
		opts += fmt.Sprintf(", color={rgb,255:red,%d;green,%d;blue,%d}", s.Color.R, s.Color.G, s.Color.B)
	}
	return opts
}

func isBlack(c domain.Color) bool { return c.R == 0 && c.G == 0 && c.B == 0 }

// anchorName maps the engine's compass anchors onto TikZ node anchors. TikZ
// flips the reading: a label north of its point needs anchor=south.
func anchorName(a geom.Anchor) string {
	switch a {
	case geom.AnchorNorth:
		return "south"
	case geom.AnchorSouth:
		return "north"
	case geom.AnchorEast:
		return "west"
	case geom.AnchorWest:
		return "east"
	case geom.AnchorNorthEast:
		return "south west"
	case geom.AnchorNorthWest:
		return "south east"
	case geom.AnchorSouthEast:
		return "north west"
	case geom.AnchorSouthWest:
		return "north east"
	default:
		return "center"
	}
}

// num formats a coordinate with enough precision for print output and no
// trailing float noise.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

var texReplacer = strings.NewReplacer(
	"\\", "\\textbackslash{}",
	"&", "\\&",
	"%", "\\%",
	"$", "\\$",
	"#", "\\#",
	"_", "\\_",
	"{", "\\{",
	"}", "\\}",
	"~", "\\textasciitilde{}",
	"^", "\\textasciicircum{}",
)

// escTeX escapes the TeX special characters in label text.
func escTeX(s string) string { return texReplacer.Replace(s) }
