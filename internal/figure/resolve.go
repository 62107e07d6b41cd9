/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package figure resolves declarative figure descriptions into a renderable
// scene: vertices, angle marks, and placed labels, all still in figure
// units. Renderers (TikZ, PDF, PNG, the preview canvas) consume the resolved
// scene and never call the geometry engine directly.
package figure

import (
	"fmt"
	"math"

	"trisheet/internal/domain"
	"trisheet/internal/geom"
)

// DefaultLabelOffset is used when a style does not set one, in figure units.
const DefaultLabelOffset = 0.35

// Label is a text with its computed placement.
type Label struct {
	Text      string
	Placement geom.LabelPlacement
}

// CenterPoint is a named center marker.
type CenterPoint struct {
	Name  string
	Point geom.Point
}

// Resolved is a figure after all geometry has been computed.
type Resolved struct {
	Triangle geom.Triangle
	Scale    float64
	Style    domain.FigureStyle

	VertexLabels []Label
	SideLabels   []Label
	AngleLabels  []Label
	Arcs         []geom.ArcRenderParams
	Centers      []CenterPoint
}

// Resolve runs a declarative figure through the geometry engine. Any engine
// error aborts the resolution; there is no partial figure and no placeholder
// geometry.
func Resolve(f *domain.Figure, style domain.FigureStyle) (*Resolved, error) {
	if f == nil {
		return nil, fmt.Errorf("figure is nil")
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validate figure: %w", err)
	}
	tri, err := f.Def.Build()
	if err != nil {
		return nil, fmt.Errorf("construct triangle: %w", err)
	}
	scale := f.Scale
	if scale <= 0 {
		scale = 1
	}
	offset := style.LabelOffset
	if offset <= 0 {
		offset = DefaultLabelOffset
	}

	res := &Resolved{Triangle: tri, Scale: scale, Style: style}
	pts := tri.Points()

	for i, text := range f.VertexLabels {
		if text == "" {
			continue
		}
		o1, o2 := otherTwo(pts, i)
		pl, err := geom.PlaceLabel(geom.VertexLabel{Vertex: pts[i], Other1: o1, Other2: o2}, offset)
		if err != nil {
			return nil, fmt.Errorf("place vertex label %q: %w", text, err)
		}
		res.VertexLabels = append(res.VertexLabels, Label{Text: text, Placement: pl})
	}

	// Side i is opposite vertex i, running between the other two vertices.
	for i, text := range f.SideLabels {
		if text == "" {
			continue
		}
		from, to := otherTwo(pts, i)
		pl, err := geom.PlaceLabel(geom.SideLabel{From: from, To: to, Opposite: pts[i]}, offset)
		if err != nil {
			return nil, fmt.Errorf("place side label %q: %w", text, err)
		}
		res.SideLabels = append(res.SideLabels, Label{Text: text, Placement: pl})
	}

	for _, m := range f.AngleMarks {
		v := pts[m.Vertex-1]
		arm1, arm2 := otherTwo(pts, m.Vertex-1)
		radius := geom.AutoRadius()
		if m.Radius > 0 {
			radius = geom.FixedRadius(m.Radius)
		} else if style.ArcRadius > 0 {
			radius = geom.FixedRadius(style.ArcRadius)
		}
		arc, err := geom.ArcParams(v, arm1, arm2, radius, m.RightAngle)
		if err != nil {
			return nil, fmt.Errorf("angle mark at vertex %d: %w", m.Vertex, err)
		}
		res.Arcs = append(res.Arcs, arc)
		if m.Label != "" {
			pl, err := geom.PlaceLabel(geom.AngleValueLabel{Vertex: v, Arm1: arm1, Arm2: arm2}, offset/2)
			if err != nil {
				return nil, fmt.Errorf("angle label at vertex %d: %w", m.Vertex, err)
			}
			res.AngleLabels = append(res.AngleLabels, Label{Text: m.Label, Placement: pl})
		}
	}

	for _, name := range f.ShowCenters {
		var p geom.Point
		switch name {
		case "centroid":
			p = geom.Centroid(tri)
		case "incenter":
			p, err = geom.Incenter(tri)
		case "circumcenter":
			p, err = geom.Circumcenter(tri)
		case "orthocenter":
			p, err = geom.Orthocenter(tri)
		}
		if err != nil {
			return nil, fmt.Errorf("compute %s: %w", name, err)
		}
		res.Centers = append(res.Centers, CenterPoint{Name: name, Point: p})
	}
	return res, nil
}

// otherTwo returns the two vertices that are not at index i, in order.
func otherTwo(pts [3]geom.Point, i int) (geom.Point, geom.Point) {
	switch i {
	case 0:
		return pts[1], pts[2]
	case 1:
		return pts[0], pts[2]
	default:
		return pts[0], pts[1]
	}
}

// Bounds returns the figure-unit bounds of everything that will be drawn:
// vertices, label references, arc extents, and center markers.
func (r *Resolved) Bounds() Rect {
	pts := make([]geom.Point, 0, 16)
	tp := r.Triangle.Points()
	pts = append(pts, tp[0], tp[1], tp[2])
	for _, l := range r.VertexLabels {
		pts = append(pts, l.Placement.Reference)
	}
	for _, l := range r.SideLabels {
		pts = append(pts, l.Placement.Reference)
	}
	for _, l := range r.AngleLabels {
		pts = append(pts, l.Placement.Reference)
	}
	for _, a := range r.Arcs {
		if a.Kind == geom.ArcKindArc {
			pts = append(pts,
				a.Center.Add(geom.Point{X: a.Radius, Y: a.Radius}),
				a.Center.Sub(geom.Point{X: a.Radius, Y: a.Radius}))
		} else {
			pts = append(pts, a.Arm1Point, a.Arm2Point)
		}
	}
	for _, c := range r.Centers {
		pts = append(pts, c.Point)
	}
	return BoundsOf(pts)
}

// InteriorSweep converts an arc's raw arm angles into a start/end pair in
// degrees that sweeps the interior (non-reflex) angle counterclockwise,
// matching the convention TikZ and most renderers use. The engine leaves its
// angles unnormalized on purpose; this is the shared normalization policy.
func InteriorSweep(a geom.ArcRenderParams) (startDeg, endDeg float64) {
	start := a.StartAngleRad * 180 / math.Pi
	end := a.EndAngleRad * 180 / math.Pi
	for end < start {
		end += 360
	}
	if end-start > 180 {
		start, end = end, start+360
	}
	return start, end
}
