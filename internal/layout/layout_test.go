/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"testing"

	"trisheet/internal/domain"
)

func testSpec() PageSpec {
	return PageSpec{Width: 200, Height: 300, Margin: 20, Columns: 2, Gutter: 10, Spacing: 5}
}

func TestPaginateBalancesColumns(t *testing.T) {
	blocks := []Measured{
		{ID: "q-001", TextH: 10, FigureH: 40},
		{ID: "q-002", TextH: 10, FigureH: 60},
		{ID: "q-003", TextH: 20, FigureH: 30},
	}
	plans := Paginate(blocks, testSpec())
	if len(plans) != 1 {
		t.Fatalf("expected one page, got %d", len(plans))
	}
	p := plans[0]
	if p.Number != 1 || len(p.Blocks) != 3 {
		t.Fatalf("unexpected plan: %+v", p)
	}
	// First two blocks share the left column, the third balances the right.
	wantCols := []int{0, 0, 1}
	for i, b := range p.Blocks {
		if b.Col != wantCols[i] {
			t.Fatalf("block %d in column %d, want %d", i, b.Col, wantCols[i])
		}
		if b.Index != i+1 {
			t.Fatalf("block %d has index %d", i, b.Index)
		}
	}
	// Column width (200-40-10)/2 = 75; stacking with spacing 5.
	if r := p.Blocks[0].Rect; r.X != 20 || r.Y != 20 || r.W != 75 || r.H != 50 {
		t.Fatalf("block 0 rect: %+v", r)
	}
	if r := p.Blocks[1].Rect; r.X != 20 || r.Y != 75 || r.H != 70 {
		t.Fatalf("block 1 rect: %+v", r)
	}
	if r := p.Blocks[2].Rect; r.X != 105 || r.Y != 20 || r.H != 50 {
		t.Fatalf("block 2 rect: %+v", r)
	}
}

func TestPaginateOverflowsToNewPage(t *testing.T) {
	var blocks []Measured
	for i := 0; i < 5; i++ {
		blocks = append(blocks, Measured{ID: "q", FigureH: 120})
	}
	plans := Paginate(blocks, testSpec())
	if len(plans) != 2 {
		t.Fatalf("expected two pages, got %d", len(plans))
	}
	if got := len(plans[0].Blocks); got != 4 {
		t.Fatalf("page 1 has %d blocks, want 4", got)
	}
	if got := len(plans[1].Blocks); got != 1 {
		t.Fatalf("page 2 has %d blocks, want 1", got)
	}
	if b := plans[1].Blocks[0]; b.Index != 5 || b.Col != 0 || plans[1].Number != 2 {
		t.Fatalf("overflow block landed wrong: %+v on page %d", b, plans[1].Number)
	}
	// Two blocks per column on the full page.
	wantCols := []int{0, 0, 1, 1}
	for i, b := range plans[0].Blocks {
		if b.Col != wantCols[i] {
			t.Fatalf("page 1 block %d in column %d, want %d", i, b.Col, wantCols[i])
		}
	}
}

func TestPaginateClampsOversizeBlock(t *testing.T) {
	plans := Paginate([]Measured{{ID: "big", FigureH: 1000}}, testSpec())
	if len(plans) != 1 || len(plans[0].Blocks) != 1 {
		t.Fatalf("unexpected plans: %+v", plans)
	}
	if h := plans[0].Blocks[0].Rect.H; h != 260 {
		t.Fatalf("expected clamp to printable height 260, got %g", h)
	}
}

func TestPaginateZeroSpecUsesDefaults(t *testing.T) {
	plans := Paginate([]Measured{{ID: "q", TextH: 20, FigureH: 100}}, PageSpec{})
	if len(plans) != 1 {
		t.Fatalf("expected one page, got %d", len(plans))
	}
	if r := plans[0].Blocks[0].Rect; r.X != 48 || r.Y != 48 {
		t.Fatalf("expected A4 default margin 48, got %+v", r)
	}
}

func TestFromSetup(t *testing.T) {
	s := FromSetup(domain.DefaultPageSetup()).Normalized()
	if s.Width != 595.28 || s.Height != 841.89 {
		t.Fatalf("unexpected page size: %+v", s)
	}
	if s.Columns != 2 || s.Gutter != 24 || s.Margin != 48 {
		t.Fatalf("unexpected grid: %+v", s)
	}
	if s.ColumnWidth() <= 0 {
		t.Fatalf("column width must be positive")
	}
}
