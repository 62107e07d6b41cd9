/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func TestEquilateralCentersCoincide(t *testing.T) {
	const s = 2.0
	tri, err := Build(SSS{A: s, B: s, C: s})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := Point{s / 2, s * math.Sqrt(3) / 6}
	if got := Centroid(tri); !approxPt(got, want, 1e-7) {
		t.Fatalf("centroid %+v, want %+v", got, want)
	}
	in, err := Incenter(tri)
	if err != nil {
		t.Fatalf("incenter: %v", err)
	}
	cc, err := Circumcenter(tri)
	if err != nil {
		t.Fatalf("circumcenter: %v", err)
	}
	oc, err := Orthocenter(tri)
	if err != nil {
		t.Fatalf("orthocenter: %v", err)
	}
	for name, got := range map[string]Point{"incenter": in, "circumcenter": cc, "orthocenter": oc} {
		if !approxPt(got, want, 1e-7) {
			t.Fatalf("%s %+v, want %+v", name, got, want)
		}
	}
}

func TestRightTriangleCenters(t *testing.T) {
	// Right angle at the origin: orthocenter is that vertex, circumcenter
	// the hypotenuse midpoint.
	tri := Triangle{P1: Point{0, 0}, P2: Point{4, 0}, P3: Point{0, 3}}
	oc, err := Orthocenter(tri)
	if err != nil {
		t.Fatalf("orthocenter: %v", err)
	}
	if oc != tri.P1 {
		t.Fatalf("orthocenter %+v, want the right-angle vertex %+v", oc, tri.P1)
	}
	cc, err := Circumcenter(tri)
	if err != nil {
		t.Fatalf("circumcenter: %v", err)
	}
	if !approxPt(cc, Point{2, 1.5}, 1e-9) {
		t.Fatalf("circumcenter %+v, want hypotenuse midpoint (2, 1.5)", cc)
	}
	in, err := Incenter(tri)
	if err != nil {
		t.Fatalf("incenter: %v", err)
	}
	if !approxPt(in, Point{1, 1}, 1e-9) { // r = (3+4-5)/2 = 1
		t.Fatalf("incenter %+v, want (1, 1)", in)
	}
}

func TestCircumcenterEquidistant(t *testing.T) {
	tri, err := Build(SSS{A: 4, B: 6, C: 7})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	cc, err := Circumcenter(tri)
	if err != nil {
		t.Fatalf("circumcenter: %v", err)
	}
	d1 := cc.Dist(tri.P1)
	d2 := cc.Dist(tri.P2)
	d3 := cc.Dist(tri.P3)
	if !approx(d1, d2, 1e-9) || !approx(d2, d3, 1e-9) {
		t.Fatalf("circumcenter not equidistant: %g, %g, %g", d1, d2, d3)
	}
}

func TestOrthocenterAltitudeProperty(t *testing.T) {
	cases := []struct {
		name string
		tri  Triangle
	}{
		{"scalene", Triangle{P1: Point{0, 0}, P2: Point{7, 1}, P3: Point{2, 5}}},
		{"obtuse", Triangle{P1: Point{0, 0}, P2: Point{6, 0}, P3: Point{-2, 2}}},
		{"horizontal base", Triangle{P1: Point{0, 0}, P2: Point{6, 0}, P3: Point{1, 4}}},
		{"vertical side", Triangle{P1: Point{0, 0}, P2: Point{3, 5}, P3: Point{0, 4}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := Orthocenter(tc.tri)
			if err != nil {
				t.Fatalf("orthocenter: %v", err)
			}
			// Each vertex-to-orthocenter segment must be perpendicular to the
			// opposite side.
			if d := h.Sub(tc.tri.P1).Dot(tc.tri.P3.Sub(tc.tri.P2)); !approx(d, 0, 1e-7) {
				t.Fatalf("altitude through P1 not perpendicular, dot %g", d)
			}
			if d := h.Sub(tc.tri.P2).Dot(tc.tri.P3.Sub(tc.tri.P1)); !approx(d, 0, 1e-7) {
				t.Fatalf("altitude through P2 not perpendicular, dot %g", d)
			}
		})
	}
}

func TestCentersRejectDegenerate(t *testing.T) {
	collinear := Triangle{P1: Point{0, 0}, P2: Point{1, 1}, P3: Point{2, 2}}
	if _, err := Incenter(collinear); err == nil || !IsDefinition(err) {
		t.Fatalf("incenter should reject collinear vertices, got %v", err)
	}
	if _, err := Circumcenter(collinear); err == nil || !IsDefinition(err) {
		t.Fatalf("circumcenter should reject collinear vertices, got %v", err)
	}
	if _, err := Orthocenter(collinear); err == nil || !IsDefinition(err) {
		t.Fatalf("orthocenter should reject collinear vertices, got %v", err)
	}
	coincident := Triangle{P1: Point{1, 2}, P2: Point{1, 2}, P3: Point{1, 2}}
	if _, err := Incenter(coincident); err == nil || !IsDefinition(err) {
		t.Fatalf("incenter should reject coincident vertices, got %v", err)
	}
	// Centroid stays defined regardless.
	if got := Centroid(collinear); !approxPt(got, Point{1, 1}, 1e-12) {
		t.Fatalf("centroid of collinear points %+v", got)
	}
}

func TestCentroidRoundTripAllModes(t *testing.T) {
	defs := []Definition{
		SSS{A: 3, B: 4, C: 5},
		SAS{Side1: 4, AngleRad: 1.1, Side2: 3},
		ASA{Angle1Rad: 0.8, Side: 5, Angle2Rad: 0.7},
		AAS{Angle1Rad: 0.9, Angle2Rad: 1.2, SideA: 4},
		Coordinates{P1: Point{-1, 2}, P2: Point{3, -2}, P3: Point{0.5, 7}},
	}
	for _, d := range defs {
		tri, err := Build(d)
		if err != nil {
			t.Fatalf("build %T: %v", d, err)
		}
		want := Point{(tri.P1.X + tri.P2.X + tri.P3.X) / 3, (tri.P1.Y + tri.P2.Y + tri.P3.Y) / 3}
		if got := Centroid(tri); got != want {
			t.Fatalf("centroid of %T drifted from the plain mean: %+v vs %+v", d, got, want)
		}
	}
}

func TestCentersValidateVertices(t *testing.T) {
	bad := Triangle{P1: Point{math.NaN(), 0}, P2: Point{1, 0}, P3: Point{0, 1}}
	if _, err := Incenter(bad); err == nil || !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := Orthocenter(bad); err == nil || !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
