/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Centroid returns the arithmetic mean of the vertices. It is defined for
// every input, degenerate or not, and therefore returns no error.
func Centroid(t Triangle) Point {
	return Point{
		X: (t.P1.X + t.P2.X + t.P3.X) / 3,
		Y: (t.P1.Y + t.P2.Y + t.P3.Y) / 3,
	}
}

// Incenter returns the center of the inscribed circle, the side-length
// weighted mean of the vertices. Coincident or collinear vertices are
// rejected with a DefinitionError.
func Incenter(t Triangle) (Point, error) {
	if err := validateVertices(t); err != nil {
		return Point{}, err
	}
	a, b, c := t.SideLengths()
	perimeter := a + b + c
	if perimeter < Epsilon {
		return Point{}, definitionErrorf("vertices are coincident")
	}
	if err := checkTriangleInequality(a, b, c); err != nil {
		return Point{}, err
	}
	weighted := t.P1.Scale(a).Add(t.P2.Scale(b)).Add(t.P3.Scale(c))
	return weighted.Scale(1 / perimeter), nil
}

// Circumcenter returns the center of the circumscribed circle via the
// standard determinant formula. Collinear vertices are rejected.
func Circumcenter(t Triangle) (Point, error) {
	if err := validateVertices(t); err != nil {
		return Point{}, err
	}
	d := circumDet(t)
	if math.Abs(d) < Epsilon {
		return Point{}, definitionErrorf("vertices are collinear")
	}
	s1 := t.P1.Dot(t.P1)
	s2 := t.P2.Dot(t.P2)
	s3 := t.P3.Dot(t.P3)
	return Point{
		X: (s1*(t.P2.Y-t.P3.Y) + s2*(t.P3.Y-t.P1.Y) + s3*(t.P1.Y-t.P2.Y)) / d,
		Y: (s1*(t.P3.X-t.P2.X) + s2*(t.P1.X-t.P3.X) + s3*(t.P2.X-t.P1.X)) / d,
	}, nil
}

// Orthocenter returns the intersection of the altitudes. A vertex with a
// right angle is its own orthocenter and is returned directly; intersecting
// altitudes there is numerically unstable. Otherwise two altitudes are
// intersected, with explicit branches for axis-aligned sides so no zero
// slope is ever divided by.
func Orthocenter(t Triangle) (Point, error) {
	if err := validateVertices(t); err != nil {
		return Point{}, err
	}
	for _, v := range [...]struct {
		at, o1, o2 Point
	}{
		{t.P1, t.P2, t.P3},
		{t.P2, t.P1, t.P3},
		{t.P3, t.P1, t.P2},
	} {
		if math.Abs(v.o1.Sub(v.at).Dot(v.o2.Sub(v.at))) <= Epsilon {
			return v.at, nil
		}
	}
	if math.Abs(circumDet(t)) < Epsilon {
		return Point{}, definitionErrorf("vertices are collinear")
	}
	// Altitude from P3 onto side P1P2 and altitude from P2 onto side P1P3.
	altA := altitudeThrough(t.P3, t.P1, t.P2)
	altB := altitudeThrough(t.P2, t.P1, t.P3)
	return intersectAltitudes(altA, altB)
}

// circumDet is the D denominator of the circumcenter formula, proportional
// to the signed area. Orthocenter shares it for its collinearity check.
func circumDet(t Triangle) float64 {
	return 2 * (t.P1.X*(t.P2.Y-t.P3.Y) + t.P2.X*(t.P3.Y-t.P1.Y) + t.P3.X*(t.P1.Y-t.P2.Y))
}

func validateVertices(t Triangle) error {
	for _, s := range [...]struct {
		name string
		p    Point
	}{{"P1", t.P1}, {"P2", t.P2}, {"P3", t.P3}} {
		if !s.p.finite() {
			return validationErrorf(s.name, "coordinates must be finite, got (%g, %g)", s.p.X, s.p.Y)
		}
	}
	return nil
}

// altitude is a line through p perpendicular to the side from s1 to s2,
// classified up front so axis-aligned sides take their own branch.
type altitude struct {
	vertical   bool // side horizontal, altitude is x = p.X
	horizontal bool // side vertical, altitude is y = p.Y
	slope      float64
	p          Point
}

func altitudeThrough(p, s1, s2 Point) altitude {
	dx := s2.X - s1.X
	dy := s2.Y - s1.Y
	switch {
	case math.Abs(dy) < Epsilon:
		return altitude{vertical: true, p: p}
	case math.Abs(dx) < Epsilon:
		return altitude{horizontal: true, p: p}
	default:
		return altitude{slope: -dx / dy, p: p}
	}
}

func (a altitude) yAt(x float64) float64 { return a.slope*(x-a.p.X) + a.p.Y }
func (a altitude) xAt(y float64) float64 { return (y-a.p.Y)/a.slope + a.p.X }

func intersectAltitudes(a, b altitude) (Point, error) {
	switch {
	case a.vertical && b.vertical, a.horizontal && b.horizontal:
		return Point{}, definitionErrorf("altitudes are parallel, vertices are nearly collinear")
	case a.vertical:
		if b.horizontal {
			return Point{a.p.X, b.p.Y}, nil
		}
		return Point{a.p.X, b.yAt(a.p.X)}, nil
	case b.vertical:
		if a.horizontal {
			return Point{b.p.X, a.p.Y}, nil
		}
		return Point{b.p.X, a.yAt(b.p.X)}, nil
	case a.horizontal:
		return Point{b.xAt(a.p.Y), a.p.Y}, nil
	case b.horizontal:
		return Point{a.xAt(b.p.Y), b.p.Y}, nil
	default:
		if math.Abs(a.slope-b.slope) < Epsilon {
			return Point{}, definitionErrorf("altitude slopes coincide, vertices are nearly collinear")
		}
		x := (a.slope*a.p.X - b.slope*b.p.X + b.p.Y - a.p.Y) / (a.slope - b.slope)
		return Point{x, a.yAt(x)}, nil
	}
}
