/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Epsilon is the tolerance used for every near-zero and near-equal float
// comparison in this package: degeneracy checks, angle-range margins, the
// discriminant clamp band. It is a single package-wide tunable; callers that
// work at unusual scales may adjust it before use.
var Epsilon = 1e-9

// Point is a 2D point or direction vector. Value type, copied freely.
type Point struct{ X, Y float64 }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Norm() float64         { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return q.Sub(p).Norm() }

// Perp returns p rotated 90 degrees counterclockwise.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func finiteScalar(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Triangle is three vertices. Triangles produced by Build place P1 at the
// origin and P2 on the positive x-axis with P3 above the base; triangles made
// from raw coordinates carry whatever the caller supplied.
type Triangle struct{ P1, P2, P3 Point }

// Points returns the vertices in order, convenient for range loops.
func (t Triangle) Points() [3]Point { return [3]Point{t.P1, t.P2, t.P3} }

// SideLengths returns the side lengths opposite each vertex:
// a = |P2P3| opposite P1, b = |P1P3| opposite P2, c = |P1P2| opposite P3.
func (t Triangle) SideLengths() (a, b, c float64) {
	return t.P2.Dist(t.P3), t.P1.Dist(t.P3), t.P1.Dist(t.P2)
}

// Angles returns the interior angles at P1, P2, P3 in radians, via the law of
// cosines. Results are meaningless for degenerate triangles.
func (t Triangle) Angles() (a1, a2, a3 float64) {
	a, b, c := t.SideLengths()
	a1 = lawOfCosines(a, b, c)
	a2 = lawOfCosines(b, a, c)
	a3 = lawOfCosines(c, a, b)
	return a1, a2, a3
}

// lawOfCosines returns the angle opposite side opp in a triangle with the
// other two sides p and q. The cosine is clamped into [-1, 1] so round-off
// near flat or needle triangles cannot push acos out of its domain.
func lawOfCosines(opp, p, q float64) float64 {
	cos := (p*p + q*q - opp*opp) / (2 * p * q)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// Area returns the unsigned area of the triangle.
func (t Triangle) Area() float64 {
	return math.Abs(t.P1.X*(t.P2.Y-t.P3.Y)+t.P2.X*(t.P3.Y-t.P1.Y)+t.P3.X*(t.P1.Y-t.P2.Y)) / 2
}

// checkTriangleInequality enforces the strict inequality with an Epsilon
// margin, so genuine degeneracy is caught without tripping on round-off.
func checkTriangleInequality(a, b, c float64) error {
	if a+b <= c+Epsilon || a+c <= b+Epsilon || b+c <= a+Epsilon {
		return definitionErrorf("sides %g, %g, %g violate the triangle inequality", a, b, c)
	}
	return nil
}

func checkAngleOpen(name string, rad float64) error {
	if rad <= 0 || rad >= math.Pi {
		return definitionErrorf("angle %s must lie in (0, π), got %g rad", name, rad)
	}
	return nil
}
