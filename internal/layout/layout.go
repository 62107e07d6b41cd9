/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

// Pagination of question blocks into a column grid. The algorithm is
// deterministic for identical inputs: all exporters and the preview pane
// call it with the same measured blocks and get the same page plan.

import (
	"trisheet/internal/domain"
	"trisheet/internal/figure"
)

// PageSpec describes the printable geometry of one worksheet page.
// All units are points. Zero fields are filled with A4 defaults, two
// columns, when the spec is normalized.
//
// Spacing is the vertical gap between consecutive blocks in a column.
// Gutter is the horizontal gap between columns.
type PageSpec struct {
	Width, Height float64
	Margin        float64
	Columns       int
	Gutter        float64
	Spacing       float64
}

// FromSetup maps a manifest page setup onto a PageSpec.
func FromSetup(p domain.PageSetup) PageSpec {
	return PageSpec{
		Width:   p.Width,
		Height:  p.Height,
		Margin:  p.Margin,
		Columns: p.Columns,
		Gutter:  p.Gutter,
	}
}

// Normalized fills zero fields with defaults. Paginate applies it
// internally; callers that measure blocks against ColumnWidth should
// normalize first so both sides see the same geometry.
func (s PageSpec) Normalized() PageSpec {
	if s.Width <= 0 {
		s.Width = 595.28 // A4
	}
	if s.Height <= 0 {
		s.Height = 841.89
	}
	if s.Margin <= 0 {
		s.Margin = 48
	}
	if s.Columns <= 0 {
		s.Columns = 2
	}
	if s.Gutter <= 0 {
		s.Gutter = 24
	}
	if s.Spacing <= 0 {
		s.Spacing = 18
	}
	return s
}

// ColumnWidth is the content width of a single column.
func (s PageSpec) ColumnWidth() float64 {
	return (s.Width - 2*s.Margin - float64(s.Columns-1)*s.Gutter) / float64(s.Columns)
}

func (s PageSpec) usableHeight() float64 { return s.Height - 2*s.Margin }

// Measured is one question block ready for placement: the wrapped prompt
// height plus the figure height, both already scaled to the column width.
type Measured struct {
	ID      string
	TextH   float64
	FigureH float64
}

func (m Measured) height() float64 { return m.TextH + m.FigureH }

// Placement pins one block to a page, a column and a content rect.
// Rect is in page coordinates, y growing downward. Index is the 1-based
// question number across the whole sheet.
type Placement struct {
	Measured
	Index int
	Col   int
	Rect  figure.Rect
}

// PagePlan lists the placements of one page. Number is 1-based.
type PagePlan struct {
	Number int
	Blocks []Placement
}

// Paginate flows blocks in order into the column grid, opening new pages
// as columns fill up, then rebalances each page so its columns end up
// roughly equal while preserving reading order (down the first column,
// then the next). A block taller than the printable height is clamped.
func Paginate(blocks []Measured, spec PageSpec) []PagePlan {
	spec = spec.Normalized()
	usable := spec.usableHeight()
	colW := spec.ColumnWidth()

	heights := make([]float64, len(blocks))
	for i, b := range blocks {
		h := b.height()
		if h > usable {
			h = usable
		}
		heights[i] = h
	}

	// Greedy fill determines which blocks share a page. Filling every
	// column to capacity before moving on uses the fewest pages for an
	// order-preserving flow.
	var pages [][]int
	var cur []int
	col, colH := 0, 0.0
	for i := range blocks {
		need := heights[i]
		if len(cur) > 0 && colH > 0 {
			need += spec.Spacing
		}
		if colH > 0 && colH+need > usable {
			col++
			colH = 0
			need = heights[i]
			if col >= spec.Columns {
				pages = append(pages, cur)
				cur = nil
				col = 0
			}
		}
		cur = append(cur, i)
		colH += need
	}
	if len(cur) > 0 {
		pages = append(pages, cur)
	}

	plans := make([]PagePlan, 0, len(pages))
	for pi, idxs := range pages {
		hs := make([]float64, len(idxs))
		for j, bi := range idxs {
			hs[j] = heights[bi]
		}
		cuts := bestSplit(hs, spec.Columns, usable, spec.Spacing)

		plan := PagePlan{Number: pi + 1}
		start := 0
		for c := 0; c <= len(cuts); c++ {
			end := len(idxs)
			if c < len(cuts) {
				end = cuts[c]
			}
			x := spec.Margin + float64(c)*(colW+spec.Gutter)
			y := spec.Margin
			for _, j := range idxs[start:end] {
				plan.Blocks = append(plan.Blocks, Placement{
					Measured: blocks[j],
					Index:    j + 1,
					Col:      c,
					Rect:     figure.R(x, y, colW, heights[j]),
				})
				y += heights[j] + spec.Spacing
			}
			start = end
		}
		plans = append(plans, plan)
	}
	return plans
}

// bestSplit picks cut positions that partition hs into cols ordered runs,
// minimizing the tallest column with a small penalty for imbalance and a
// tiny bias toward filling earlier columns first. Runs must be packed to
// the left: an empty column may only be followed by empty columns. The
// greedy packing is always a feasible candidate, so a result exists.
func bestSplit(hs []float64, cols int, usable, spacing float64) []int {
	n := len(hs)
	if cols <= 1 || n == 0 {
		return nil
	}
	colHeight := func(from, to int) float64 {
		if from >= to {
			return 0
		}
		h := 0.0
		for _, v := range hs[from:to] {
			h += v
		}
		return h + float64(to-from-1)*spacing
	}

	var best []int
	bestCost := 1e18
	cuts := make([]int, cols-1)
	var walk func(k, from int)
	walk = func(k, from int) {
		if k < cols-1 {
			for c := from; c <= n; c++ {
				cuts[k] = c
				walk(k+1, c)
			}
			return
		}
		cost := 0.0
		tallest, shortest := 0.0, 1e18
		prev := 0
		for c := 0; c < cols; c++ {
			end := n
			if c < cols-1 {
				end = cuts[c]
			}
			h := colHeight(prev, end)
			if h > usable {
				return // column overflows
			}
			if prev >= end && end < n {
				return // empty column before a filled one
			}
			if h > tallest {
				tallest = h
			}
			if h < shortest {
				shortest = h
			}
			cost += h * float64(c) * 0.001 // prefer weight on the left
			prev = end
		}
		cost += tallest
		cost += (tallest - shortest) * 0.01
		if cost < bestCost {
			bestCost = cost
			best = append(best[:0], cuts...)
		}
	}
	walk(0, 0)
	if best == nil {
		// Fall back to everything in the first column.
		best = make([]int, cols-1)
		for i := range best {
			best[i] = n
		}
	}
	return best
}
