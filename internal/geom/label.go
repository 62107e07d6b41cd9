/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Anchor names the text-anchor compass positions a renderer can align on.
// The placement heuristics below always return AnchorCenter today; the enum
// exists so renderers share one vocabulary.
type Anchor int

const (
	AnchorCenter Anchor = iota
	AnchorNorth
	AnchorNorthEast
	AnchorEast
	AnchorSouthEast
	AnchorSouth
	AnchorSouthWest
	AnchorWest
	AnchorNorthWest
)

func (a Anchor) String() string {
	switch a {
	case AnchorCenter:
		return "center"
	case AnchorNorth:
		return "north"
	case AnchorNorthEast:
		return "north east"
	case AnchorEast:
		return "east"
	case AnchorSouthEast:
		return "south east"
	case AnchorSouth:
		return "south"
	case AnchorSouthWest:
		return "south west"
	case AnchorWest:
		return "west"
	case AnchorNorthWest:
		return "north west"
	default:
		return "center"
	}
}

// LabelPlacement is where and how to draw one label.
type LabelPlacement struct {
	Reference   Point
	Anchor      Anchor
	RotationDeg float64
}

// LabelTarget selects what a label attaches to: a vertex, a side, or an
// angle value. The set is closed; each target carries the points its
// heuristic needs.
type LabelTarget interface {
	validate() error
	place(offset float64) (LabelPlacement, error)
}

// PlaceLabel computes the placement for a label at offset distance from its
// target. Shape validation runs before any geometry.
func PlaceLabel(t LabelTarget, offset float64) (LabelPlacement, error) {
	if t == nil {
		return LabelPlacement{}, validationErrorf("target", "required")
	}
	if !finiteScalar(offset) {
		return LabelPlacement{}, validationErrorf("offset", "must be finite, got %g", offset)
	}
	if err := t.validate(); err != nil {
		return LabelPlacement{}, err
	}
	return t.place(offset)
}

// VertexLabel places a name label outside the corner at Vertex, pushed away
// from the interior along the reversed angle bisector.
type VertexLabel struct {
	Vertex Point
	Other1 Point
	Other2 Point
}

func (l VertexLabel) validate() error {
	return validatePoints(
		pointField{"Vertex", l.Vertex},
		pointField{"Other1", l.Other1},
		pointField{"Other2", l.Other2},
	)
}

func (l VertexLabel) place(offset float64) (LabelPlacement, error) {
	dir, err := outwardDirection(l.Vertex, l.Other1, l.Other2)
	if err != nil {
		return LabelPlacement{}, err
	}
	return LabelPlacement{
		Reference:   l.Vertex.Add(dir.Scale(offset)),
		Anchor:      AnchorCenter,
		RotationDeg: 0,
	}, nil
}

// SideLabel places a length label beside the side from From to To, on the
// side facing away from the Opposite vertex. Rotation follows the side so
// the text runs along it, normalized into [-90, 90] degrees so it never
// renders upside-down.
type SideLabel struct {
	From     Point
	To       Point
	Opposite Point
}

func (l SideLabel) validate() error {
	return validatePoints(
		pointField{"From", l.From},
		pointField{"To", l.To},
		pointField{"Opposite", l.Opposite},
	)
}

func (l SideLabel) place(offset float64) (LabelPlacement, error) {
	d := l.To.Sub(l.From)
	length := d.Norm()
	if length < Epsilon {
		return LabelPlacement{}, definitionErrorf("side endpoints coincide at (%g, %g)", l.From.X, l.From.Y)
	}
	mid := l.From.Add(l.To).Scale(0.5)
	normal := d.Scale(1 / length).Perp()
	if normal.Dot(l.Opposite.Sub(mid)) > 0 {
		normal = normal.Scale(-1)
	}
	deg := math.Atan2(d.Y, d.X) * 180 / math.Pi
	if deg > 90 {
		deg -= 180
	} else if deg < -90 {
		deg += 180
	}
	return LabelPlacement{
		Reference:   mid.Add(normal.Scale(offset)),
		Anchor:      AnchorCenter,
		RotationDeg: deg,
	}, nil
}

// AngleValueLabel places a value label inside the angle at Vertex, on the
// bisector just past where the angle arc is drawn.
type AngleValueLabel struct {
	Vertex Point
	Arm1   Point
	Arm2   Point
}

func (l AngleValueLabel) validate() error {
	return validatePoints(
		pointField{"Vertex", l.Vertex},
		pointField{"Arm1", l.Arm1},
		pointField{"Arm2", l.Arm2},
	)
}

func (l AngleValueLabel) place(offset float64) (LabelPlacement, error) {
	v1 := l.Arm1.Sub(l.Vertex)
	v2 := l.Arm2.Sub(l.Vertex)
	len1 := v1.Norm()
	len2 := v2.Norm()
	if len1 < Epsilon || len2 < Epsilon {
		return LabelPlacement{}, definitionErrorf("arm length too short for an angle label at (%g, %g)", l.Vertex.X, l.Vertex.Y)
	}
	bisector := bisectorDirection(v1.Scale(1/len1), v2.Scale(1/len2))
	distance := autoRadius(AngleLabelArcRatio, len1, len2) + offset
	return LabelPlacement{
		Reference:   l.Vertex.Add(bisector.Scale(distance)),
		Anchor:      AnchorCenter,
		RotationDeg: 0,
	}, nil
}

// outwardDirection is the unit direction away from the corner at vertex:
// the negated sum of the unit vectors toward the two other points.
func outwardDirection(vertex, o1, o2 Point) (Point, error) {
	v1 := o1.Sub(vertex)
	v2 := o2.Sub(vertex)
	len1 := v1.Norm()
	len2 := v2.Norm()
	if len1 < Epsilon || len2 < Epsilon {
		return Point{}, definitionErrorf("arm length too short for a vertex label at (%g, %g)", vertex.X, vertex.Y)
	}
	return bisectorDirection(v1.Scale(1/len1), v2.Scale(1/len2)).Scale(-1), nil
}

// bisectorDirection normalizes the sum of two unit vectors. When the arms
// are anti-parallel the sum vanishes and a perpendicular of the first arm is
// used instead. That fallback is a known approximation: nothing checks which
// of the two perpendiculars faces outward, and inputs that reach it do not
// form a valid triangle in the first place.
func bisectorDirection(u1, u2 Point) Point {
	sum := u1.Add(u2)
	n := sum.Norm()
	if n < Epsilon {
		return u1.Perp()
	}
	return sum.Scale(1 / n)
}

type pointField struct {
	name string
	p    Point
}

func validatePoints(fields ...pointField) error {
	for _, f := range fields {
		if !f.p.finite() {
			return validationErrorf(f.name, "coordinates must be finite, got (%g, %g)", f.p.X, f.p.Y)
		}
	}
	return nil
}
