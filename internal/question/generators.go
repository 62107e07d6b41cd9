/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package question

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"trisheet/internal/domain"
	"trisheet/internal/geom"
)

func init() {
	Register("missing-side", missingSide{})
	Register("missing-angle", missingAngle{})
	Register("classify-triangle", classifyTriangle{})
	Register("center-construction", centerConstruction{})
}

// missingSide produces "compute the third side" questions. The figure is a
// SAS construction whose unknown side is labelled x; in right mode the
// enclosed angle is 90° and the question asks for the hypotenuse.
//
// Options: mode=sas|right, min=<int>, max=<int>, unit=<string>.
type missingSide struct{}

func (missingSide) Name() string { return "missing-side" }

func (missingSide) Generate(spec GenSpec, rng *rand.Rand) (domain.Question, error) {
	d := clampDifficulty(spec.Difficulty)
	unit := spec.optString("unit", "cm")
	mode := spec.optString("mode", "")
	if mode == "" {
		mode = "sas"
		if rng.Intn(10) < 3 {
			mode = "right"
		}
	}
	lo, hi, err := sideRange(spec, d)
	if err != nil {
		return domain.Question{}, err
	}

	s1 := float64(intBetween(rng, lo, hi))
	s2 := float64(intBetween(rng, lo, hi))
	var angle float64
	var prompt string
	mark := domain.AngleMark{Vertex: 1}
	switch mode {
	case "sas":
		angle = float64(snappedAngle(rng, 25, 140, angleStep(d)))
		mark.Label = fmtDeg(angle)
		prompt = fmt.Sprintf("In triangle ABC the sides AB = %s and AC = %s enclose an angle of %s at A. Compute the length of the missing side x = BC.",
			fmtLen(s1, unit), fmtLen(s2, unit), fmtDeg(angle))
	case "right":
		angle = 90
		mark.RightAngle = true
		prompt = fmt.Sprintf("Triangle ABC has a right angle at A, with legs AB = %s and AC = %s. Compute the length of the hypotenuse x = BC.",
			fmtLen(s1, unit), fmtLen(s2, unit))
	default:
		return domain.Question{}, fmt.Errorf("missing-side: unknown mode %q", mode)
	}

	def := domain.FigureDef{Mode: domain.ModeSAS, Side1: s1, AngleDeg: angle, Side2: s2}
	tri, err := def.Build()
	if err != nil {
		return domain.Question{}, fmt.Errorf("missing-side: %w", err)
	}
	a, _, _ := tri.SideLengths()

	return domain.Question{
		Prompt:     prompt,
		Answer:     "x = " + fmtLen(a, unit),
		Difficulty: d,
		Tags:       []string{"triangle", "missing-side", mode},
		Figure: &domain.Figure{
			Def:          def,
			VertexLabels: []string{"A", "B", "C"},
			SideLabels:   []string{"x", fmtLen(s2, unit), fmtLen(s1, unit)},
			AngleMarks:   []domain.AngleMark{mark},
		},
	}, nil
}

// missingAngle produces "find the third angle" questions: two marked angles,
// the one at C labelled x. In asa mode the figure fixes the side between the
// known angles, in aas mode the side opposite the first.
//
// Options: mode=asa|aas.
type missingAngle struct{}

func (missingAngle) Name() string { return "missing-angle" }

func (missingAngle) Generate(spec GenSpec, rng *rand.Rand) (domain.Question, error) {
	d := clampDifficulty(spec.Difficulty)
	mode := spec.optString("mode", "")
	if mode == "" {
		mode = "asa"
		if rng.Intn(2) == 1 {
			mode = "aas"
		}
	}

	step := angleStep(d)
	a1 := float64(snappedAngle(rng, 25, 100, step))
	a2 := float64(snappedAngle(rng, 20, 160-int(a1)-10, step))
	side := float64(intBetween(rng, 4, 9))

	var def domain.FigureDef
	switch mode {
	case "asa":
		def = domain.FigureDef{Mode: domain.ModeASA, Angle1Deg: a1, Angle2Deg: a2, Side: side}
	case "aas":
		def = domain.FigureDef{Mode: domain.ModeAAS, Angle1Deg: a1, Angle2Deg: a2, SideOppA1: side}
	default:
		return domain.Question{}, fmt.Errorf("missing-angle: unknown mode %q", mode)
	}
	tri, err := def.Build()
	if err != nil {
		return domain.Question{}, fmt.Errorf("missing-angle: %w", err)
	}
	_, _, g := tri.Angles()

	prompt := fmt.Sprintf("Two angles of triangle ABC are given: %s at A and %s at B. Determine the missing angle x at C.",
		fmtDeg(a1), fmtDeg(a2))
	return domain.Question{
		Prompt:     prompt,
		Answer:     "x = " + fmtDeg(radToDeg(g)),
		Difficulty: d,
		Tags:       []string{"triangle", "missing-angle", mode},
		Figure: &domain.Figure{
			Def:          def,
			VertexLabels: []string{"A", "B", "C"},
			AngleMarks: []domain.AngleMark{
				{Vertex: 1, Label: fmtDeg(a1)},
				{Vertex: 2, Label: fmtDeg(a2)},
				{Vertex: 3, Label: "x"},
			},
		},
	}, nil
}

// classifyTriangle produces classification questions. The requested kind only
// steers generation; the answer is always derived from the built triangle, so
// figure and answer cannot drift apart.
//
// Options: kind=equilateral|isosceles|right|scalene, min=<int>, max=<int>,
// unit=<string>.
type classifyTriangle struct{}

func (classifyTriangle) Name() string { return "classify-triangle" }

var rightTriples = [][3]int{{3, 4, 5}, {5, 12, 13}, {8, 15, 17}, {6, 8, 10}, {7, 24, 25}}

func (classifyTriangle) Generate(spec GenSpec, rng *rand.Rand) (domain.Question, error) {
	d := clampDifficulty(spec.Difficulty)
	unit := spec.optString("unit", "cm")
	kind := spec.optString("kind", "")
	if kind == "" {
		kind = []string{"equilateral", "isosceles", "right", "scalene"}[rng.Intn(4)]
	}
	lo, hi, err := sideRange(spec, d)
	if err != nil {
		return domain.Question{}, err
	}

	var a, b, c int
	switch kind {
	case "equilateral":
		a = intBetween(rng, lo, hi)
		b, c = a, a
	case "isosceles":
		a = intBetween(rng, lo+1, hi)
		b = a
		for i := 0; ; i++ {
			c = intBetween(rng, lo, hi)
			if c != a && c < 2*a {
				break
			}
			if i > 32 {
				c = a + 1
				break
			}
		}
	case "right":
		t := rightTriples[rng.Intn(len(rightTriples))]
		a, b, c = t[0], t[1], t[2]
	case "scalene":
		for i := 0; ; i++ {
			a = intBetween(rng, lo, hi)
			b = intBetween(rng, lo, hi)
			c = intBetween(rng, lo, hi)
			if a != b && b != c && a != c && a+b > c && a+c > b && b+c > a && !isRightTriple(a, b, c) {
				break
			}
			if i > 64 {
				a, b, c = lo, lo+1, lo+2
				break
			}
		}
	default:
		return domain.Question{}, fmt.Errorf("classify-triangle: unknown kind %q", kind)
	}

	def := domain.FigureDef{Mode: domain.ModeSSS, SideA: float64(a), SideB: float64(b), SideC: float64(c)}
	tri, err := def.Build()
	if err != nil {
		return domain.Question{}, fmt.Errorf("classify-triangle: %w", err)
	}
	bySides, byAngles := classify(tri)

	prompt := fmt.Sprintf("Classify the triangle with side lengths a = %s, b = %s and c = %s by its sides and by its angles.",
		fmtLen(float64(a), unit), fmtLen(float64(b), unit), fmtLen(float64(c), unit))
	return domain.Question{
		Prompt:     prompt,
		Answer:     bySides + " and " + byAngles,
		Difficulty: d,
		Tags:       []string{"triangle", "classify", bySides, byAngles},
		Figure: &domain.Figure{
			Def:        def,
			SideLabels: []string{fmtLen(float64(a), unit), fmtLen(float64(b), unit), fmtLen(float64(c), unit)},
		},
	}, nil
}

// centerConstruction produces compass-and-straightedge construction tasks on
// a lattice triangle, with the requested center drawn into the answer figure.
//
// Options: center=centroid|incenter|circumcenter|orthocenter|random,
// grid=<int>.
type centerConstruction struct{}

func (centerConstruction) Name() string { return "center-construction" }

var constructionHints = map[string]string{
	"centroid":     "construct the centroid by drawing the three medians",
	"incenter":     "construct the incenter by bisecting two of the angles",
	"circumcenter": "construct the circumcenter using the perpendicular bisectors of the sides",
	"orthocenter":  "construct the orthocenter by drawing the three altitudes",
}

func (centerConstruction) Generate(spec GenSpec, rng *rand.Rand) (domain.Question, error) {
	d := clampDifficulty(spec.Difficulty)
	center := spec.optString("center", "")
	if center == "" || center == "random" {
		pool := []string{"centroid", "incenter"}
		if d >= 3 {
			pool = append(pool, "circumcenter", "orthocenter")
		}
		center = pool[rng.Intn(len(pool))]
	}
	if _, ok := constructionHints[center]; !ok {
		return domain.Question{}, fmt.Errorf("center-construction: unknown center %q", center)
	}
	grid, err := spec.optInt("grid", 5+d)
	if err != nil {
		return domain.Question{}, fmt.Errorf("center-construction: %w", err)
	}
	if grid < 3 {
		return domain.Question{}, fmt.Errorf("center-construction: grid %d too small, need at least 3", grid)
	}

	// Reroll until the lattice triangle has a workable area; flat slivers
	// make the construction unreadable even when they are formally valid.
	var pts [3]domain.Coord
	var tri geom.Triangle
	minArea := float64(grid*grid) / 8
	for i := 0; ; i++ {
		for j := range pts {
			pts[j] = domain.Coord{X: float64(rng.Intn(grid + 1)), Y: float64(rng.Intn(grid + 1))}
		}
		def := domain.FigureDef{Mode: domain.ModeCoordinates, Points: pts[:]}
		t, err := def.Build()
		if err == nil && t.Area() >= minArea {
			tri = t
			break
		}
		if i > 256 {
			return domain.Question{}, fmt.Errorf("center-construction: no usable triangle on a %d grid", grid)
		}
	}

	var p geom.Point
	switch center {
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
		return domain.Question{}, fmt.Errorf("center-construction: %w", err)
	}

	prompt := fmt.Sprintf("Plot triangle ABC with A(%s, %s), B(%s, %s) and C(%s, %s), then %s.",
		fmtNum(pts[0].X), fmtNum(pts[0].Y), fmtNum(pts[1].X), fmtNum(pts[1].Y), fmtNum(pts[2].X), fmtNum(pts[2].Y),
		constructionHints[center])
	return domain.Question{
		Prompt:     prompt,
		Answer:     fmt.Sprintf("%s at (%s, %s)", center, fmtNum(p.X), fmtNum(p.Y)),
		Difficulty: d,
		Tags:       []string{"triangle", "construction", center},
		Figure: &domain.Figure{
			Def:          domain.FigureDef{Mode: domain.ModeCoordinates, Points: pts[:]},
			VertexLabels: []string{"A", "B", "C"},
			ShowCenters:  []string{center},
		},
	}, nil
}

// classify names a triangle by its sides and by its largest angle. The
// tolerance is relative so rebuilt integer triangles classify exactly.
func classify(t geom.Triangle) (bySides, byAngles string) {
	a, b, c := t.SideLengths()
	eq := func(x, y float64) bool { return math.Abs(x-y) <= 1e-9*(x+y) }
	switch {
	case eq(a, b) && eq(b, c):
		bySides = "equilateral"
	case eq(a, b) || eq(b, c) || eq(a, c):
		bySides = "isosceles"
	default:
		bySides = "scalene"
	}
	a1, a2, a3 := t.Angles()
	largest := math.Max(a1, math.Max(a2, a3))
	switch {
	case math.Abs(largest-math.Pi/2) <= 1e-9:
		byAngles = "right"
	case largest > math.Pi/2:
		byAngles = "obtuse"
	default:
		byAngles = "acute"
	}
	return bySides, byAngles
}

func isRightTriple(a, b, c int) bool {
	x, y, z := a*a, b*b, c*c
	return x+y == z || x+z == y || y+z == x
}

// sideRange resolves the min/max options against the difficulty default.
func sideRange(spec GenSpec, d int) (lo, hi int, err error) {
	lo, err = spec.optInt("min", 2)
	if err != nil {
		return 0, 0, err
	}
	hi, err = spec.optInt("max", 6+2*d)
	if err != nil {
		return 0, 0, err
	}
	if lo < 1 || hi < lo {
		return 0, 0, fmt.Errorf("side range %d..%d is not usable", lo, hi)
	}
	return lo, hi, nil
}

// angleStep returns the degree grid for generated angles: easy sheets get
// round numbers, hard sheets get arbitrary ones.
func angleStep(d int) int {
	switch {
	case d <= 2:
		return 10
	case d <= 4:
		return 5
	default:
		return 1
	}
}

func clampDifficulty(d int) int {
	if d < 1 {
		return 2
	}
	if d > 5 {
		return 5
	}
	return d
}

func intBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// snappedAngle picks a degree value in [lo, hi] on the given step grid.
func snappedAngle(rng *rand.Rand, lo, hi, step int) int {
	if hi < lo {
		hi = lo
	}
	v := intBetween(rng, lo, hi)
	v = (v / step) * step
	if v < lo {
		v += step
	}
	if v > hi {
		v = hi
	}
	return v
}

func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// fmtNum prints a value with up to two decimals, trimming trailing zeros.
func fmtNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func fmtLen(v float64, unit string) string {
	if unit == "" {
		return fmtNum(v)
	}
	return fmtNum(v) + " " + unit
}

func fmtDeg(deg float64) string { return fmtNum(deg) + "°" }
