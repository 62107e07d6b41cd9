/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement and line breaking for question prompts. All measurement
// goes through a Provider so the raster exporters and the pagination code
// agree on line counts regardless of which font file is configured.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font. Worksheet text is single-family;
// only size and boldness vary.
type FontSpec struct {
	SizePt float64
	Bold   bool
}

// Metrics provides resolved face metrics in pixels.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// LineHeight is the advance from one baseline to the next.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Provider maps a FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13: no font files needed and
// fully deterministic, which the tests and fallback paths rely on.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Wrapped is prompt text broken into lines that fit a column width.
type Wrapped struct {
	Lines      []string
	Width      float64 // widest line
	LineHeight float64
	Height     float64
}

// Wrap breaks text on spaces, honoring explicit newlines. A word wider than
// maxWidth gets a line of its own rather than being split mid-word. A
// non-positive maxWidth disables breaking.
func Wrap(p Provider, spec FontSpec, text string, maxWidth float64) Wrapped {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	drawer := &font.Drawer{Face: face}
	spaceW := advance(drawer, " ")

	out := Wrapped{LineHeight: met.LineHeight()}
	var cur strings.Builder
	var curW float64
	flush := func() {
		out.Lines = append(out.Lines, cur.String())
		if curW > out.Width {
			out.Width = curW
		}
		cur.Reset()
		curW = 0
	}
	for _, para := range strings.Split(text, "\n") {
		for _, word := range strings.Fields(para) {
			w := advance(drawer, word)
			if curW > 0 && maxWidth > 0 && curW+spaceW+w > maxWidth {
				flush()
			}
			if curW > 0 {
				cur.WriteByte(' ')
				curW += spaceW
			}
			cur.WriteString(word)
			curW += w
		}
		flush()
	}
	if len(out.Lines) == 0 {
		out.Lines = []string{""}
	}
	out.Height = float64(len(out.Lines)) * out.LineHeight
	return out
}

// MeasureString returns the advance width of s without any line breaking.
func MeasureString(p Provider, spec FontSpec, s string) float64 {
	if p == nil {
		p = BasicProvider{}
	}
	face, _ := p.Resolve(spec)
	return advance(&font.Drawer{Face: face}, s)
}

func advance(d *font.Drawer, s string) float64 {
	return float64(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}
