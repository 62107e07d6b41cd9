/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FontLibrary holds the worksheet text fonts: one regular face and an
// optional bold one for headings and answers.
type FontLibrary struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// LoadTTF parses a font file into the library slot selected by bold.
func (fl *FontLibrary) LoadTTF(path string, bold bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	if bold {
		fl.bold = f
	} else {
		fl.regular = f
	}
	return nil
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	if spec.Bold && fl.bold != nil {
		return fl.bold
	}
	return fl.regular
}

// OTProvider resolves specs against a FontLibrary and falls back to another
// Provider (BasicProvider when nil) for missing faces or parse failures.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 11
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.SizePt, DPI: dpi, Hinting: font.HintingFull})
		if err == nil {
			m := face.Metrics()
			return face, Metrics{
				Ascent:  float64(m.Ascent.Round()),
				Descent: float64(m.Descent.Round()),
				LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
			}
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
