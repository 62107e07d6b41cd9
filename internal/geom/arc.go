/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Arc sizing defaults, in figure units.
const (
	// DefaultArcRatio scales an auto radius from the shorter arm.
	DefaultArcRatio = 0.15
	// MinAutoRadius and MaxAutoRadius clamp auto radii so arcs stay legible
	// on both tiny and huge figures.
	MinAutoRadius = 0.25
	MaxAutoRadius = 0.6
	// AngleLabelArcRatio is the smaller ratio used when placing angle-value
	// labels, which sit just outside their arc.
	AngleLabelArcRatio = 0.1
)

// Radius configures an angle-arc radius. The zero value selects automatic
// sizing (a clamped fraction of the shorter arm); FixedRadius pins it.
type Radius struct {
	fixed   float64
	isFixed bool
}

// FixedRadius returns a Radius pinned to v. Non-positive values are rejected
// when the radius is used, not here, so configs stay plain data.
func FixedRadius(v float64) Radius { return Radius{fixed: v, isFixed: true} }

// AutoRadius returns the automatic-sizing Radius. Equivalent to Radius{}.
func AutoRadius() Radius { return Radius{} }

func (r Radius) resolve(len1, len2 float64) (float64, error) {
	if r.isFixed {
		if r.fixed <= 0 {
			return 0, definitionErrorf("fixed arc radius must be positive, got %g", r.fixed)
		}
		return r.fixed, nil
	}
	return autoRadius(DefaultArcRatio, len1, len2), nil
}

func autoRadius(ratio, len1, len2 float64) float64 {
	r := math.Min(len1, len2) * ratio
	if r < MinAutoRadius {
		return MinAutoRadius
	}
	if r > MaxAutoRadius {
		return MaxAutoRadius
	}
	return r
}

// ArcKind tags the two shapes an angle mark can take.
type ArcKind int

const (
	// ArcKindArc is a circular arc spanning the angle.
	ArcKindArc ArcKind = iota
	// ArcKindRightAngle is the square marker drawn for 90-degree angles.
	ArcKindRightAngle
)

// ArcRenderParams is everything a renderer needs to draw one angle mark.
// Kind selects which field group is meaningful.
type ArcRenderParams struct {
	Kind ArcKind

	// Arc fields. StartAngleRad and EndAngleRad are the raw atan2 results
	// for the two arms, deliberately unnormalized: which way to sweep, and
	// how to handle wraparound, depends on the target markup's angle
	// convention and is the renderer's decision.
	Center        Point
	Radius        float64
	StartAngleRad float64
	EndAngleRad   float64

	// Right-angle fields: the vertex plus the marker endpoints Size units
	// out along each arm.
	Vertex    Point
	Arm1Point Point
	Arm2Point Point
	Size      float64
}

// ArcParams computes render parameters for the angle mark at vertex, with
// arms toward arm1 and arm2. With rightAngle set it produces the square
// marker instead of an arc.
func ArcParams(vertex, arm1, arm2 Point, r Radius, rightAngle bool) (ArcRenderParams, error) {
	for _, s := range [...]struct {
		name string
		p    Point
	}{{"vertex", vertex}, {"arm1", arm1}, {"arm2", arm2}} {
		if !s.p.finite() {
			return ArcRenderParams{}, validationErrorf(s.name, "coordinates must be finite, got (%g, %g)", s.p.X, s.p.Y)
		}
	}
	v1 := arm1.Sub(vertex)
	v2 := arm2.Sub(vertex)
	len1 := v1.Norm()
	len2 := v2.Norm()
	if len1 < Epsilon || len2 < Epsilon {
		return ArcRenderParams{}, definitionErrorf("arm length too short for an angle mark at (%g, %g)", vertex.X, vertex.Y)
	}
	radius, err := r.resolve(len1, len2)
	if err != nil {
		return ArcRenderParams{}, err
	}
	if rightAngle {
		return ArcRenderParams{
			Kind:      ArcKindRightAngle,
			Vertex:    vertex,
			Arm1Point: vertex.Add(v1.Scale(radius / len1)),
			Arm2Point: vertex.Add(v2.Scale(radius / len2)),
			Size:      radius,
		}, nil
	}
	return ArcRenderParams{
		Kind:          ArcKindArc,
		Center:        vertex,
		Radius:        radius,
		StartAngleRad: math.Atan2(v1.Y, v1.X),
		EndAngleRad:   math.Atan2(v2.Y, v2.X),
	}, nil
}
