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
	"strings"
	"testing"
)

func TestArcParamsRawAngles(t *testing.T) {
	p, err := ArcParams(Point{0, 0}, Point{1, 0}, Point{0, 1}, FixedRadius(0.5), false)
	if err != nil {
		t.Fatalf("arc params: %v", err)
	}
	if p.Kind != ArcKindArc {
		t.Fatalf("unexpected kind %v", p.Kind)
	}
	if p.Center != (Point{0, 0}) || p.Radius != 0.5 {
		t.Fatalf("unexpected center/radius: %+v", p)
	}
	if !approx(p.StartAngleRad, 0, 1e-12) || !approx(p.EndAngleRad, math.Pi/2, 1e-12) {
		t.Fatalf("unexpected angles %g..%g", p.StartAngleRad, p.EndAngleRad)
	}
	// Angles are raw atan2 output; a third-quadrant arm stays negative.
	p, err = ArcParams(Point{0, 0}, Point{-1, -1}, Point{1, 0}, FixedRadius(0.5), false)
	if err != nil {
		t.Fatalf("arc params: %v", err)
	}
	if !approx(p.StartAngleRad, -3*math.Pi/4, 1e-12) {
		t.Fatalf("expected raw negative angle, got %g", p.StartAngleRad)
	}
}

func TestArcParamsArmTooShort(t *testing.T) {
	v := Point{2, 3}
	_, err := ArcParams(v, v, Point{5, 3}, AutoRadius(), false)
	if err == nil || !IsDefinition(err) {
		t.Fatalf("expected definition error, got %v", err)
	}
	if !strings.Contains(err.Error(), "arm length too short") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestArcParamsFixedRadius(t *testing.T) {
	p, err := ArcParams(Point{0, 0}, Point{10, 0}, Point{0, 10}, FixedRadius(2.5), false)
	if err != nil {
		t.Fatalf("arc params: %v", err)
	}
	if p.Radius != 2.5 {
		t.Fatalf("fixed radius not passed through: %g", p.Radius)
	}
	for _, bad := range []float64{0, -1} {
		if _, err := ArcParams(Point{0, 0}, Point{1, 0}, Point{0, 1}, FixedRadius(bad), false); err == nil || !IsDefinition(err) {
			t.Fatalf("radius %g: expected definition error, got %v", bad, err)
		}
	}
}

func TestAutoRadiusClamped(t *testing.T) {
	cases := []struct {
		name string
		arm  float64
		want float64
	}{
		{"tiny arms clamp up", 0.2, MinAutoRadius},
		{"huge arms clamp down", 100, MaxAutoRadius},
		{"mid arms scale", 3, 3 * DefaultArcRatio},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ArcParams(Point{0, 0}, Point{tc.arm, 0}, Point{0, tc.arm}, AutoRadius(), false)
			if err != nil {
				t.Fatalf("arc params: %v", err)
			}
			if !approx(p.Radius, tc.want, 1e-12) {
				t.Fatalf("radius %g, want %g", p.Radius, tc.want)
			}
			if p.Radius < MinAutoRadius || p.Radius > MaxAutoRadius {
				t.Fatalf("auto radius %g escaped the clamp band", p.Radius)
			}
		})
	}
	// The shorter arm governs.
	p, err := ArcParams(Point{0, 0}, Point{2, 0}, Point{0, 50}, AutoRadius(), false)
	if err != nil {
		t.Fatalf("arc params: %v", err)
	}
	if !approx(p.Radius, 2*DefaultArcRatio, 1e-12) {
		t.Fatalf("radius %g, want %g from the shorter arm", p.Radius, 2*DefaultArcRatio)
	}
}

func TestRightAngleSymbol(t *testing.T) {
	p, err := ArcParams(Point{0, 0}, Point{2, 0}, Point{0, 2}, FixedRadius(0.5), true)
	if err != nil {
		t.Fatalf("arc params: %v", err)
	}
	if p.Kind != ArcKindRightAngle {
		t.Fatalf("unexpected kind %v", p.Kind)
	}
	if !approxPt(p.Arm1Point, Point{0.5, 0}, 1e-12) || !approxPt(p.Arm2Point, Point{0, 0.5}, 1e-12) {
		t.Fatalf("unexpected marker points: %+v", p)
	}
	if p.Vertex != (Point{0, 0}) || p.Size != 0.5 {
		t.Fatalf("unexpected vertex/size: %+v", p)
	}
}

func TestArcParamsValidatesPoints(t *testing.T) {
	_, err := ArcParams(Point{math.NaN(), 0}, Point{1, 0}, Point{0, 1}, AutoRadius(), false)
	if err == nil || !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
