/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package styles resolves figure style presets. Resolution is hierarchical:
// question-level overrides beat worksheet-level ones, which beat global
// styles loaded from the project's styles directory, which beat builtins.
package styles

import (
	"sort"

	"trisheet/internal/domain"
)

var black = domain.Color{A: 255}

var builtinStyles = map[string]domain.FigureStyle{
	// Sizes in points, figure-space offsets in figure units.
	// Users can override any of these per project.
	"default": {
		Name:        "default",
		Stroke:      domain.Stroke{Color: black, Width: 0.8},
		ArcStroke:   domain.Stroke{Color: black, Width: 0.6},
		LabelOffset: 0.35,
		FontSize:    11,
	},
	"exam": {
		Name:        "exam",
		Stroke:      domain.Stroke{Color: black, Width: 1.0},
		ArcStroke:   domain.Stroke{Color: black, Width: 0.8},
		LabelOffset: 0.4,
		FontSize:    12,
	},
	"compact": {
		Name:        "compact",
		Stroke:      domain.Stroke{Color: black, Width: 0.6},
		ArcStroke:   domain.Stroke{Color: black, Width: 0.5},
		LabelOffset: 0.3,
		FontSize:    9,
	},
}

// GetStyle returns a builtin style preset by name. The second return value
// is false if the style is not found.
func GetStyle(name string) (domain.FigureStyle, bool) { s, ok := builtinStyles[name]; return s, ok }

// ListStyles lists the names of the builtin styles in stable order.
func ListStyles() []string {
	return []string{"default", "exam", "compact"}
}

// StyleSheet provides hierarchical resolution of figure styles.
// Precedence is Question > Worksheet > Global > Builtin. Builtins are always
// reachable, so "default" resolves even on an empty sheet.
type StyleSheet struct {
	Global    map[string]domain.FigureStyle
	Worksheet map[string]domain.FigureStyle
	Question  map[string]domain.FigureStyle
}

// NewStyleSheet creates a stylesheet with empty scopes and the builtins
// copied into Global for convenience.
func NewStyleSheet() *StyleSheet {
	ss := &StyleSheet{
		Global:    map[string]domain.FigureStyle{},
		Worksheet: map[string]domain.FigureStyle{},
		Question:  map[string]domain.FigureStyle{},
	}
	for _, name := range ListStyles() {
		if st, ok := GetStyle(name); ok {
			ss.Global[name] = st
		}
	}
	return ss
}

// WithWorksheet returns a copy with the worksheet-level overrides merged.
func (s *StyleSheet) WithWorksheet(over map[string]domain.FigureStyle) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.Worksheet[k] = v
	}
	return cp
}

// WithQuestion returns a copy with the question-level overrides merged.
func (s *StyleSheet) WithQuestion(over map[string]domain.FigureStyle) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.Question[k] = v
	}
	return cp
}

// Resolve returns the effective style by name using precedence
// Question > Worksheet > Global > Builtin. The second return value is false
// if the name cannot be resolved at any level.
func (s *StyleSheet) Resolve(name string) (domain.FigureStyle, bool) {
	if s == nil {
		return domain.FigureStyle{}, false
	}
	if st, ok := s.Question[name]; ok {
		return st, true
	}
	if st, ok := s.Worksheet[name]; ok {
		return st, true
	}
	if st, ok := s.Global[name]; ok {
		return st, true
	}
	if st, ok := GetStyle(name); ok {
		return st, true
	}
	return domain.FigureStyle{}, false
}

// Effective picks the style a question renders with: the question's style
// ref wins over the worksheet's; empty or unresolvable refs fall back to
// the default builtin.
func (s *StyleSheet) Effective(ws *domain.Worksheet, q *domain.Question) domain.FigureStyle {
	name := ""
	if ws != nil {
		name = ws.StyleRef
	}
	if q != nil && q.StyleRef != "" {
		name = q.StyleRef
	}
	if name != "" {
		if st, ok := s.Resolve(name); ok {
			return st
		}
	}
	st, _ := GetStyle("default")
	return st
}

// Names returns the known style names considering all scopes. Builtins come
// first in their stable order, then scope additions sorted by name.
func (s *StyleSheet) Names() []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range ListStyles() {
		out = append(out, name)
		seen[name] = true
	}
	var extra []string
	collect := func(m map[string]domain.FigureStyle) {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	collect(s.Global)
	collect(s.Worksheet)
	collect(s.Question)
	sort.Strings(extra)
	return append(out, extra...)
}

func (s *StyleSheet) clone() *StyleSheet {
	cp := &StyleSheet{
		Global:    make(map[string]domain.FigureStyle, len(s.Global)),
		Worksheet: make(map[string]domain.FigureStyle, len(s.Worksheet)),
		Question:  make(map[string]domain.FigureStyle, len(s.Question)),
	}
	for k, v := range s.Global {
		cp.Global[k] = v
	}
	for k, v := range s.Worksheet {
		cp.Worksheet[k] = v
	}
	for k, v := range s.Question {
		cp.Question[k] = v
	}
	return cp
}
