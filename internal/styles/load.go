/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package styles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"trisheet/internal/domain"
)

// Style files live under <project>/styles as YAML documents:
//
//	styles:
//	  exam-bold:
//	    stroke: {width: 1.2, color: "#202020"}
//	    fontSize: 12
//
// Omitted fields inherit from the default builtin so partial overrides work.

type styleDoc struct {
	Styles map[string]styleDef `yaml:"styles"`
}

type styleDef struct {
	Stroke      strokeDef `yaml:"stroke"`
	ArcStroke   strokeDef `yaml:"arcStroke"`
	LabelOffset float64   `yaml:"labelOffset"`
	FontSize    float64   `yaml:"fontSize"`
	ArcRadius   float64   `yaml:"arcRadius"`
}

type strokeDef struct {
	Width float64 `yaml:"width"`
	Color string  `yaml:"color"` // #rgb or #rrggbb
}

// LoadFile parses one style YAML file.
func LoadFile(path string) (map[string]domain.FigureStyle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read styles %s: %w", path, err)
	}
	var doc styleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse styles %s: %w", path, err)
	}
	out := make(map[string]domain.FigureStyle, len(doc.Styles))
	for name, def := range doc.Styles {
		st, err := def.toStyle(name)
		if err != nil {
			return nil, fmt.Errorf("style %q in %s: %w", name, path, err)
		}
		out[name] = st
	}
	return out, nil
}

// LoadDir loads every *.yaml/*.yml under dir in lexical order, later files
// overriding earlier definitions of the same name. A missing directory is
// not an error; projects without custom styles are common.
func LoadDir(dir string) (map[string]domain.FigureStyle, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]domain.FigureStyle{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read styles dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	out := map[string]domain.FigureStyle{}
	for _, name := range files {
		m, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		for k, v := range m {
			out[k] = v
		}
	}
	return out, nil
}

func (d styleDef) toStyle(name string) (domain.FigureStyle, error) {
	base, _ := GetStyle("default")
	st := domain.FigureStyle{
		Name:        name,
		Stroke:      base.Stroke,
		ArcStroke:   base.ArcStroke,
		LabelOffset: base.LabelOffset,
		FontSize:    base.FontSize,
		ArcRadius:   d.ArcRadius,
	}
	if d.Stroke.Width > 0 {
		st.Stroke.Width = d.Stroke.Width
	}
	if d.ArcStroke.Width > 0 {
		st.ArcStroke.Width = d.ArcStroke.Width
	}
	if d.Stroke.Color != "" {
		c, err := parseColor(d.Stroke.Color)
		if err != nil {
			return domain.FigureStyle{}, err
		}
		st.Stroke.Color = c
	}
	if d.ArcStroke.Color != "" {
		c, err := parseColor(d.ArcStroke.Color)
		if err != nil {
			return domain.FigureStyle{}, err
		}
		st.ArcStroke.Color = c
	}
	if d.LabelOffset > 0 {
		st.LabelOffset = d.LabelOffset
	}
	if d.FontSize > 0 {
		st.FontSize = d.FontSize
	}
	return st, nil
}

// parseColor accepts #rgb and #rrggbb hex notation.
func parseColor(s string) (domain.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return domain.Color{}, fmt.Errorf("color %q: expected #rgb or #rrggbb", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return domain.Color{}, fmt.Errorf("color %q: expected #rgb or #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return domain.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return domain.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
