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
	"time"
)

// This file defines the worksheet data model. A worksheet serializes to a
// human-readable JSON manifest (worksheet.json); figures are stored
// declaratively as construction parameters, never as precomputed coordinates,
// so regenerating a figure always goes back through the geometry engine.

// SchemaVersion is the manifest schema this build reads and writes.
// Older manifests are migrated up on open.
const SchemaVersion = 1

// Worksheet is the manifest root: one printable problem sheet.
type Worksheet struct {
	SchemaVersion int        `json:"schemaVersion"`
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Subject       string     `json:"subject,omitempty"`
	Level         string     `json:"level,omitempty"`
	Metadata      Metadata   `json:"metadata,omitempty"`
	Page          PageSetup  `json:"page"`
	StyleRef      string     `json:"styleRef,omitempty"`
	Topics        []string   `json:"topics,omitempty"`
	Questions     []Question `json:"questions"`
}

// Metadata contains optional descriptive metadata for a worksheet.
type Metadata struct {
	Author   string    `json:"author,omitempty"`
	School   string    `json:"school,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Created  time.Time `json:"created,omitempty"`
	Modified time.Time `json:"modified,omitempty"`
}

// PageSetup captures page geometry in points plus the question grid.
type PageSetup struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Margin  float64 `json:"margin"`
	Columns int     `json:"columns"`
	Gutter  float64 `json:"gutter"`
}

// A4 page with a two-column question grid, the default for new worksheets.
func DefaultPageSetup() PageSetup {
	return PageSetup{Width: 595.28, Height: 841.89, Margin: 48, Columns: 2, Gutter: 24}
}

// Question is one numbered exercise, usually with a figure.
type Question struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Answer     string   `json:"answer,omitempty"`
	Difficulty int      `json:"difficulty,omitempty"` // 1 (easy) to 5 (hard)
	Tags       []string `json:"tags,omitempty"`
	Figure     *Figure  `json:"figure,omitempty"`
	StyleRef   string   `json:"styleRef,omitempty"`
	Generator  string   `json:"generator,omitempty"`
	Seed       int64    `json:"seed,omitempty"`
}

// Figure describes one triangle figure: how to construct it and which
// annotations to draw. Sizes are figure units; Scale maps them to points.
type Figure struct {
	Def          FigureDef   `json:"def"`
	VertexLabels []string    `json:"vertexLabels,omitempty"` // for P1, P2, P3 in order
	SideLabels   []string    `json:"sideLabels,omitempty"`   // for the sides opposite P1, P2, P3
	AngleMarks   []AngleMark `json:"angleMarks,omitempty"`
	ShowCenters  []string    `json:"showCenters,omitempty"` // centroid, incenter, circumcenter, orthocenter
	Scale        float64     `json:"scale,omitempty"`
}

// AngleMark requests an angle arc or right-angle symbol at one vertex.
type AngleMark struct {
	Vertex     int     `json:"vertex"` // 1, 2, or 3
	Label      string  `json:"label,omitempty"`
	RightAngle bool    `json:"rightAngle,omitempty"`
	Radius     float64 `json:"radius,omitempty"` // 0 selects automatic sizing
}

// Coord is a JSON-friendly coordinate pair.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Stroke pairs a color with a line width in points.
type Stroke struct {
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// FigureStyle collects the visual knobs of a rendered figure. Zero fields
// fall back to the style cascade's defaults.
type FigureStyle struct {
	Name        string  `json:"name,omitempty"`
	Stroke      Stroke  `json:"stroke,omitempty"`
	ArcStroke   Stroke  `json:"arcStroke,omitempty"`
	LabelOffset float64 `json:"labelOffset,omitempty"` // figure units
	FontSize    float64 `json:"fontSize,omitempty"`    // points
	ArcRadius   float64 `json:"arcRadius,omitempty"`   // figure units, 0 = auto
}

// NewWorksheet returns an empty worksheet with defaults filled in.
func NewWorksheet(id, title string) *Worksheet {
	now := time.Now().UTC()
	return &Worksheet{
		SchemaVersion: SchemaVersion,
		ID:            id,
		Title:         title,
		Metadata:      Metadata{Created: now, Modified: now},
		Page:          DefaultPageSetup(),
		Questions:     []Question{},
	}
}

// Touch updates the modification timestamp.
func (w *Worksheet) Touch() { w.Metadata.Modified = time.Now().UTC() }

// Question returns the question with the given ID, or nil.
func (w *Worksheet) Question(id string) *Question {
	for i := range w.Questions {
		if w.Questions[i].ID == id {
			return &w.Questions[i]
		}
	}
	return nil
}

// NextQuestionID returns the first q-NNN identifier not yet in use.
func (w *Worksheet) NextQuestionID() string {
	used := make(map[string]bool, len(w.Questions))
	for _, q := range w.Questions {
		used[q.ID] = true
	}
	for n := len(w.Questions) + 1; ; n++ {
		id := fmt.Sprintf("q-%03d", n)
		if !used[id] {
			return id
		}
	}
}
