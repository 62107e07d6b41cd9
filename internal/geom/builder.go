/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Definition is one of the five triangle parameterizations: SSS, SAS, ASA,
// AAS, or Coordinates. The set is closed; each mode carries exactly the
// fields it needs, so invalid parameter combinations cannot be expressed.
type Definition interface {
	// validate rejects malformed numbers before any geometry runs.
	validate() error
	// build constructs the vertices, assuming validate has passed.
	build() (Triangle, error)
}

// Build constructs a triangle from a definition. Validation runs in two
// stages: the shape pass (finiteness) first, then the geometric pass inside
// build. Errors from the first are ValidationError, from the second
// DefinitionError.
func Build(d Definition) (Triangle, error) {
	if d == nil {
		return Triangle{}, validationErrorf("definition", "required")
	}
	if err := d.validate(); err != nil {
		return Triangle{}, err
	}
	return d.build()
}

// SSS defines a triangle by its three side lengths: A = |P2P3| (opposite P1),
// B = |P1P3| (opposite P2), C = |P1P2| (opposite P3).
type SSS struct {
	A, B, C float64
}

func (d SSS) validate() error {
	for _, s := range [...]struct {
		name string
		v    float64
	}{{"A", d.A}, {"B", d.B}, {"C", d.C}} {
		if !finiteScalar(s.v) {
			return validationErrorf(s.name, "side length must be finite, got %g", s.v)
		}
	}
	return nil
}

func (d SSS) build() (Triangle, error) {
	if d.A <= 0 || d.B <= 0 || d.C <= 0 {
		return Triangle{}, definitionErrorf("side lengths must be positive, got %g, %g, %g", d.A, d.B, d.C)
	}
	if err := checkTriangleInequality(d.A, d.B, d.C); err != nil {
		return Triangle{}, err
	}
	// P1 at the origin, P2 on the x-axis. P3 follows from intersecting the
	// circles of radius B around P1 and radius A around P2.
	x := (d.B*d.B + d.C*d.C - d.A*d.A) / (2 * d.C)
	disc := d.B*d.B - x*x
	if disc < -Epsilon {
		return Triangle{}, definitionErrorf("sides %g, %g, %g admit no real apex", d.A, d.B, d.C)
	}
	y := math.Sqrt(math.Max(0, disc))
	return Triangle{P1: Point{0, 0}, P2: Point{d.C, 0}, P3: Point{x, y}}, nil
}

// SAS defines a triangle by two sides and the included angle at P1:
// Side1 = |P1P2|, Side2 = |P1P3|, AngleRad between them.
type SAS struct {
	Side1    float64
	AngleRad float64
	Side2    float64
}

func (d SAS) validate() error {
	for _, s := range [...]struct {
		name string
		v    float64
	}{{"Side1", d.Side1}, {"AngleRad", d.AngleRad}, {"Side2", d.Side2}} {
		if !finiteScalar(s.v) {
			return validationErrorf(s.name, "must be finite, got %g", s.v)
		}
	}
	return nil
}

func (d SAS) build() (Triangle, error) {
	if d.Side1 <= 0 || d.Side2 <= 0 {
		return Triangle{}, definitionErrorf("side lengths must be positive, got %g and %g", d.Side1, d.Side2)
	}
	if err := checkAngleOpen("AngleRad", d.AngleRad); err != nil {
		return Triangle{}, err
	}
	return Triangle{
		P1: Point{0, 0},
		P2: Point{d.Side1, 0},
		P3: Point{d.Side2 * math.Cos(d.AngleRad), d.Side2 * math.Sin(d.AngleRad)},
	}, nil
}

// ASA defines a triangle by the angles at P1 and P2 and the included side
// Side = |P1P2|.
type ASA struct {
	Angle1Rad float64
	Side      float64
	Angle2Rad float64
}

func (d ASA) validate() error {
	for _, s := range [...]struct {
		name string
		v    float64
	}{{"Angle1Rad", d.Angle1Rad}, {"Side", d.Side}, {"Angle2Rad", d.Angle2Rad}} {
		if !finiteScalar(s.v) {
			return validationErrorf(s.name, "must be finite, got %g", s.v)
		}
	}
	return nil
}

func (d ASA) build() (Triangle, error) {
	if d.Side <= 0 {
		return Triangle{}, definitionErrorf("side length must be positive, got %g", d.Side)
	}
	if err := checkAngleOpen("Angle1Rad", d.Angle1Rad); err != nil {
		return Triangle{}, err
	}
	if err := checkAngleOpen("Angle2Rad", d.Angle2Rad); err != nil {
		return Triangle{}, err
	}
	angle3 := math.Pi - d.Angle1Rad - d.Angle2Rad
	if angle3 <= 0 {
		return Triangle{}, definitionErrorf("angles %g and %g rad sum to at least π", d.Angle1Rad, d.Angle2Rad)
	}
	// Law of sines gives |P1P3|; P3 then lies along the Angle1 direction.
	sideB := d.Side * math.Sin(d.Angle2Rad) / math.Sin(angle3)
	return Triangle{
		P1: Point{0, 0},
		P2: Point{d.Side, 0},
		P3: Point{sideB * math.Cos(d.Angle1Rad), sideB * math.Sin(d.Angle1Rad)},
	}, nil
}

// AAS defines a triangle by the angles at P1 and P2 plus the side opposite
// Angle1, SideA = |P2P3|.
type AAS struct {
	Angle1Rad float64
	Angle2Rad float64
	SideA     float64
}

func (d AAS) validate() error {
	for _, s := range [...]struct {
		name string
		v    float64
	}{{"Angle1Rad", d.Angle1Rad}, {"Angle2Rad", d.Angle2Rad}, {"SideA", d.SideA}} {
		if !finiteScalar(s.v) {
			return validationErrorf(s.name, "must be finite, got %g", s.v)
		}
	}
	return nil
}

func (d AAS) build() (Triangle, error) {
	if d.SideA <= 0 {
		return Triangle{}, definitionErrorf("side length must be positive, got %g", d.SideA)
	}
	if err := checkAngleOpen("Angle1Rad", d.Angle1Rad); err != nil {
		return Triangle{}, err
	}
	if err := checkAngleOpen("Angle2Rad", d.Angle2Rad); err != nil {
		return Triangle{}, err
	}
	angle3 := math.Pi - d.Angle1Rad - d.Angle2Rad
	if angle3 <= 0 {
		return Triangle{}, definitionErrorf("angles %g and %g rad sum to at least π", d.Angle1Rad, d.Angle2Rad)
	}
	// Two law-of-sines steps: the base from the given opposite side, then the
	// remaining side along the Angle1 direction.
	sideC := d.SideA * math.Sin(angle3) / math.Sin(d.Angle1Rad)
	sideB := sideC * math.Sin(d.Angle2Rad) / math.Sin(angle3)
	return Triangle{
		P1: Point{0, 0},
		P2: Point{sideC, 0},
		P3: Point{sideB * math.Cos(d.Angle1Rad), sideB * math.Sin(d.Angle1Rad)},
	}, nil
}

// Coordinates passes three vertices through unchanged. No degeneracy check
// runs; collinear or coincident points are accepted here and surface later
// from the operations that cannot handle them.
type Coordinates struct {
	P1, P2, P3 Point
}

func (d Coordinates) validate() error {
	for _, s := range [...]struct {
		name string
		p    Point
	}{{"P1", d.P1}, {"P2", d.P2}, {"P3", d.P3}} {
		if !s.p.finite() {
			return validationErrorf(s.name, "coordinates must be finite, got (%g, %g)", s.p.X, s.p.Y)
		}
	}
	return nil
}

func (d Coordinates) build() (Triangle, error) {
	return Triangle{P1: d.P1, P2: d.P2, P3: d.P3}, nil
}
