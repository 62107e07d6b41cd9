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

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func approxPt(p, q Point, tol float64) bool {
	return approx(p.X, q.X, tol) && approx(p.Y, q.Y, tol)
}

func TestBuildSSS345(t *testing.T) {
	tri, err := Build(SSS{A: 3, B: 4, C: 5})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !approxPt(tri.P1, Point{0, 0}, 1e-7) || !approxPt(tri.P2, Point{5, 0}, 1e-7) {
		t.Fatalf("unexpected base: %+v", tri)
	}
	if !approxPt(tri.P3, Point{3.2, 2.4}, 1e-7) {
		t.Fatalf("unexpected apex: %+v", tri.P3)
	}
}

func TestBuildSSSRecoversSideLengths(t *testing.T) {
	cases := []struct {
		name    string
		a, b, c float64
	}{
		{"scalene", 4, 5, 6},
		{"isosceles", 5, 5, 3},
		{"equilateral", 2, 2, 2},
		{"thin", 10, 10, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tri, err := Build(SSS{A: tc.a, B: tc.b, C: tc.c})
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			a, b, c := tri.SideLengths()
			if !approx(a, tc.a, 1e-7) || !approx(b, tc.b, 1e-7) || !approx(c, tc.c, 1e-7) {
				t.Fatalf("sides came back as %g, %g, %g; want %g, %g, %g", a, b, c, tc.a, tc.b, tc.c)
			}
		})
	}
}

func TestBuildSSSRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		a, b, c float64
	}{
		{"inequality violated", 1, 2, 5},
		{"zero side", 0, 4, 5},
		{"negative side", 3, -4, 5},
		{"degenerate flat", 2, 3, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(SSS{A: tc.a, B: tc.b, C: tc.c})
			if err == nil {
				t.Fatalf("expected error for sides %g, %g, %g", tc.a, tc.b, tc.c)
			}
			if !IsDefinition(err) {
				t.Fatalf("expected a definition error, got %v", err)
			}
		})
	}
}

func TestBuildSAS(t *testing.T) {
	tri, err := Build(SAS{Side1: 4, AngleRad: math.Pi / 3, Side2: 3})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !approxPt(tri.P2, Point{4, 0}, 1e-9) {
		t.Fatalf("P2 should sit on the x-axis: %+v", tri.P2)
	}
	if !approxPt(tri.P3, Point{1.5, 3 * math.Sin(math.Pi/3)}, 1e-9) {
		t.Fatalf("unexpected P3: %+v", tri.P3)
	}
	a1, _, _ := tri.Angles()
	if !approx(a1, math.Pi/3, 1e-9) {
		t.Fatalf("included angle came back as %g", a1)
	}
}

func TestBuildSASRejectsBadAngle(t *testing.T) {
	for _, angle := range []float64{0, math.Pi, -0.5, 4} {
		if _, err := Build(SAS{Side1: 3, AngleRad: angle, Side2: 4}); err == nil || !IsDefinition(err) {
			t.Fatalf("angle %g: expected definition error, got %v", angle, err)
		}
	}
}

func TestBuildASA(t *testing.T) {
	tri, err := Build(ASA{Angle1Rad: math.Pi / 3, Side: 6, Angle2Rad: math.Pi / 3})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	a1, a2, a3 := tri.Angles()
	if !approx(a1, math.Pi/3, 1e-9) || !approx(a2, math.Pi/3, 1e-9) || !approx(a3, math.Pi/3, 1e-9) {
		t.Fatalf("angles came back as %g, %g, %g", a1, a2, a3)
	}
	_, _, c := tri.SideLengths()
	if !approx(c, 6, 1e-9) {
		t.Fatalf("base length %g, want 6", c)
	}
}

func TestBuildASARejectsAngleSum(t *testing.T) {
	_, err := Build(ASA{Angle1Rad: math.Pi / 2, Side: 4, Angle2Rad: math.Pi / 2})
	if err == nil || !IsDefinition(err) {
		t.Fatalf("expected definition error, got %v", err)
	}
}

func TestBuildAAS(t *testing.T) {
	tri, err := Build(AAS{Angle1Rad: math.Pi / 4, Angle2Rad: math.Pi / 3, SideA: 5})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	a, _, _ := tri.SideLengths()
	if !approx(a, 5, 1e-9) {
		t.Fatalf("side opposite the first angle came back as %g, want 5", a)
	}
	a1, a2, _ := tri.Angles()
	if !approx(a1, math.Pi/4, 1e-9) || !approx(a2, math.Pi/3, 1e-9) {
		t.Fatalf("angles came back as %g, %g", a1, a2)
	}
}

func TestBuildCoordinatesPassThrough(t *testing.T) {
	want := Triangle{P1: Point{1, 1}, P2: Point{4, 1}, P3: Point{2, 5}}
	tri, err := Build(Coordinates{P1: want.P1, P2: want.P2, P3: want.P3})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tri != want {
		t.Fatalf("coordinates were not passed through: %+v", tri)
	}
	// Degenerate coordinates are accepted here; the centers reject them later.
	if _, err := Build(Coordinates{P1: Point{0, 0}, P2: Point{1, 1}, P3: Point{2, 2}}); err != nil {
		t.Fatalf("collinear coordinates should pass through: %v", err)
	}
}

func TestBuildValidatesShapeBeforeGeometry(t *testing.T) {
	// The NaN must win over the negative side: shape checks run first.
	_, err := Build(SSS{A: math.NaN(), B: -1, C: 2})
	if err == nil || !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = Build(Coordinates{P1: Point{math.Inf(1), 0}})
	if err == nil || !IsValidation(err) {
		t.Fatalf("expected validation error for infinite coordinate, got %v", err)
	}
	if _, err := Build(nil); err == nil || !IsValidation(err) {
		t.Fatalf("expected validation error for nil definition, got %v", err)
	}
}
