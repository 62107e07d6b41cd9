//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate helpers of the Fyne-based studio. They are gated behind
// the "fyne" build tag so CI (which is headless) does not need Fyne or a
// display. To run locally:
//
//	go test -tags fyne ./internal/ui
//
// Ensure you have the Fyne dependencies installed and a working OS driver.
package ui

import (
	"strings"
	"testing"

	"trisheet/internal/domain"
)

func TestQuestionSummary(t *testing.T) {
	q := domain.Question{ID: "q-001", Prompt: "Compute the hypotenuse of a right triangle with legs 3 and 4.", Difficulty: 2}
	row := questionSummary(q)
	if !strings.HasPrefix(row, "q-001 d2 ") {
		t.Fatalf("unexpected row prefix: %q", row)
	}
	if strings.Contains(row, "△") {
		t.Fatalf("no figure marker expected without a figure: %q", row)
	}
	q.Figure = &domain.Figure{}
	if row := questionSummary(q); !strings.Contains(row, "△") {
		t.Fatalf("expected figure marker, got %q", row)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	// Degree signs are multi-byte; truncation must not split them.
	s := strings.Repeat("60°", 50)
	got := truncate(s, 10)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if n := len([]rune(got)); n != 11 {
		t.Fatalf("expected 10 runes plus ellipsis, got %d in %q", n, got)
	}
	if short := truncate("abc", 10); short != "abc" {
		t.Fatalf("short strings stay untouched, got %q", short)
	}
}

func TestSplitTagsCSV(t *testing.T) {
	tags := splitTagsCSV(" Pythagoras,  RIGHT Triangle ,, algebra ")
	want := []string{"pythagoras", "right triangle", "algebra"}
	if len(tags) != len(want) {
		t.Fatalf("expected %d tags, got %v", len(want), tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tag %d: expected %q, got %q", i, want[i], tags[i])
		}
	}
	if out := splitTagsCSV("   "); out != nil {
		t.Fatalf("expected nil for blank input, got %v", out)
	}
}

func TestParseOptionsCSV(t *testing.T) {
	opts := parseOptionsCSV("Mode=sas, unit = cm, bad, =x")
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %v", opts)
	}
	if opts["mode"] != "sas" || opts["unit"] != "cm" {
		t.Fatalf("unexpected options: %v", opts)
	}
	if parseOptionsCSV("") != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestWorksheetIDFromTitle(t *testing.T) {
	if id := worksheetIDFromTitle("Pythagoras Basics 1"); id != "pythagoras-basics-1" {
		t.Fatalf("unexpected id %q", id)
	}
	if id := worksheetIDFromTitle("!!!"); !strings.HasPrefix(id, "ws-") {
		t.Fatalf("expected fallback id, got %q", id)
	}
}

func TestBankQuestionsFromWorksheet(t *testing.T) {
	ws := domain.Worksheet{ID: "ws-demo"}
	ws.Questions = []domain.Question{
		{ID: "q-001", Prompt: "p1", Answer: "a1", Difficulty: 3, Generator: "pythagoras", Seed: 42, Tags: []string{"t1"}},
		{ID: "q-002", Prompt: "p2", Figure: &domain.Figure{}},
	}
	out := bankQuestionsFromWorksheet(ws)
	if len(out) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(out))
	}
	if out[0].UID == "" || out[0].UID == out[1].UID {
		t.Fatalf("expected distinct non-empty UIDs, got %q and %q", out[0].UID, out[1].UID)
	}
	if out[0].Source != "ws-demo" || out[0].Seed != 42 {
		t.Fatalf("unexpected wire question: %+v", out[0])
	}
	if out[0].Figure != nil {
		t.Fatalf("expected no figure payload for q-001")
	}
	if out[1].Figure == nil {
		t.Fatalf("expected figure payload for q-002")
	}
}
