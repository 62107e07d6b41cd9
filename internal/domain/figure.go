/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"math"

	"trisheet/internal/geom"
)

// Construction mode tags as they appear in manifests and recipes.
const (
	ModeSSS         = "sss"
	ModeSAS         = "sas"
	ModeASA         = "asa"
	ModeAAS         = "aas"
	ModeCoordinates = "coordinates"
)

// FigureDef is the serializable form of a triangle construction. Mode selects
// which field group is read; the manifest stores angles in degrees because
// teachers author them that way, and they are converted at the engine
// boundary.
type FigureDef struct {
	Mode string `json:"mode"`

	// sss
	SideA float64 `json:"sideA,omitempty"`
	SideB float64 `json:"sideB,omitempty"`
	SideC float64 `json:"sideC,omitempty"`

	// sas
	Side1    float64 `json:"side1,omitempty"`
	AngleDeg float64 `json:"angleDeg,omitempty"`
	Side2    float64 `json:"side2,omitempty"`

	// asa and aas
	Angle1Deg float64 `json:"angle1Deg,omitempty"`
	Angle2Deg float64 `json:"angle2Deg,omitempty"`
	Side      float64 `json:"side,omitempty"`               // asa: the included side
	SideOppA1 float64 `json:"sideOppositeAngle1,omitempty"` // aas

	// coordinates
	Points []Coord `json:"points,omitempty"`
}

// ToDefinition maps the serialized parameters onto the engine's construction
// types. Unknown modes and malformed coordinate lists are rejected here;
// everything numeric is validated by the engine itself.
func (d FigureDef) ToDefinition() (geom.Definition, error) {
	switch d.Mode {
	case ModeSSS:
		return geom.SSS{A: d.SideA, B: d.SideB, C: d.SideC}, nil
	case ModeSAS:
		return geom.SAS{Side1: d.Side1, AngleRad: degToRad(d.AngleDeg), Side2: d.Side2}, nil
	case ModeASA:
		return geom.ASA{Angle1Rad: degToRad(d.Angle1Deg), Side: d.Side, Angle2Rad: degToRad(d.Angle2Deg)}, nil
	case ModeAAS:
		return geom.AAS{Angle1Rad: degToRad(d.Angle1Deg), Angle2Rad: degToRad(d.Angle2Deg), SideA: d.SideOppA1}, nil
	case ModeCoordinates:
		if len(d.Points) != 3 {
			return nil, fmt.Errorf("coordinates mode needs exactly 3 points, got %d", len(d.Points))
		}
		return geom.Coordinates{
			P1: geom.Point{X: d.Points[0].X, Y: d.Points[0].Y},
			P2: geom.Point{X: d.Points[1].X, Y: d.Points[1].Y},
			P3: geom.Point{X: d.Points[2].X, Y: d.Points[2].Y},
		}, nil
	case "":
		return nil, fmt.Errorf("figure definition has no mode")
	default:
		return nil, fmt.Errorf("unknown construction mode %q", d.Mode)
	}
}

// Build runs the construction through the engine.
func (d FigureDef) Build() (geom.Triangle, error) {
	def, err := d.ToDefinition()
	if err != nil {
		return geom.Triangle{}, err
	}
	return geom.Build(def)
}

// Validate checks the annotation references of a figure against its shape:
// vertex indexes in range, label counts not exceeding three.
func (f *Figure) Validate() error {
	if f == nil {
		return nil
	}
	if _, err := f.Def.ToDefinition(); err != nil {
		return err
	}
	if len(f.VertexLabels) > 3 {
		return fmt.Errorf("at most 3 vertex labels, got %d", len(f.VertexLabels))
	}
	if len(f.SideLabels) > 3 {
		return fmt.Errorf("at most 3 side labels, got %d", len(f.SideLabels))
	}
	for _, m := range f.AngleMarks {
		if m.Vertex < 1 || m.Vertex > 3 {
			return fmt.Errorf("angle mark vertex %d out of range 1..3", m.Vertex)
		}
		if m.Radius < 0 {
			return fmt.Errorf("angle mark radius must not be negative, got %g", m.Radius)
		}
	}
	for _, c := range f.ShowCenters {
		switch c {
		case "centroid", "incenter", "circumcenter", "orthocenter":
		default:
			return fmt.Errorf("unknown center %q", c)
		}
	}
	if f.Scale < 0 {
		return fmt.Errorf("figure scale must not be negative, got %g", f.Scale)
	}
	return nil
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
