/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"reflect"
	"testing"

	"trisheet/internal/domain"
)

func newTestHandle(t *testing.T, id string) *ProjectHandle {
	t.Helper()
	ph, err := InitProject(t.TempDir(), *domain.NewWorksheet(id, "Question Test"))
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	return ph
}

func questionOrder(ph *ProjectHandle) []string {
	ids := make([]string, 0, len(ph.Worksheet.Questions))
	for _, q := range ph.Worksheet.Questions {
		ids = append(ids, q.ID)
	}
	return ids
}

func TestAddQuestionAssignsSequentialIDs(t *testing.T) {
	ph := newTestHandle(t, "ws-add")

	got, err := AddQuestion(ph, domain.Question{Prompt: "first"})
	if err != nil {
		t.Fatalf("AddQuestion error: %v", err)
	}
	if got.ID != "q-001" {
		t.Fatalf("expected q-001, got %s", got.ID)
	}
	got, err = AddQuestion(ph, domain.Question{Prompt: "second"})
	if err != nil {
		t.Fatalf("AddQuestion error: %v", err)
	}
	if got.ID != "q-002" {
		t.Fatalf("expected q-002, got %s", got.ID)
	}

	if _, err := AddQuestion(ph, domain.Question{ID: "q-001", Prompt: "dup"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := AddQuestion(ph, domain.Question{Prompt: "   "}); err == nil {
		t.Fatalf("expected empty prompt error")
	}
	if _, err := AddQuestion(ph, domain.Question{Prompt: "hard", Difficulty: 9}); err == nil {
		t.Fatalf("expected difficulty range error")
	}
}

func TestMoveQuestionReordersAndClamps(t *testing.T) {
	ph := newTestHandle(t, "ws-move")
	for _, p := range []string{"a", "b", "c"} {
		if _, err := AddQuestion(ph, domain.Question{Prompt: p}); err != nil {
			t.Fatalf("AddQuestion error: %v", err)
		}
	}

	if err := MoveQuestion(ph, "q-002", -1); err != nil {
		t.Fatalf("MoveQuestion error: %v", err)
	}
	if got := questionOrder(ph); !reflect.DeepEqual(got, []string{"q-002", "q-001", "q-003"}) {
		t.Fatalf("unexpected order after move up: %v", got)
	}

	// Moving past the front clamps
	if err := MoveQuestion(ph, "q-002", -5); err != nil {
		t.Fatalf("MoveQuestion error: %v", err)
	}
	if got := questionOrder(ph); got[0] != "q-002" {
		t.Fatalf("clamp at front failed: %v", got)
	}

	// Large positive delta clamps at the end
	if err := MoveQuestion(ph, "q-002", 10); err != nil {
		t.Fatalf("MoveQuestion error: %v", err)
	}
	if got := questionOrder(ph); !reflect.DeepEqual(got, []string{"q-001", "q-003", "q-002"}) {
		t.Fatalf("unexpected order after move down: %v", got)
	}

	if err := MoveQuestion(ph, "q-404", 1); err == nil {
		t.Fatalf("expected error for unknown question")
	}
}

func TestUpdateQuestionMeta(t *testing.T) {
	ph := newTestHandle(t, "ws-meta")
	for _, p := range []string{"alpha", "beta"} {
		if _, err := AddQuestion(ph, domain.Question{Prompt: p}); err != nil {
			t.Fatalf("AddQuestion error: %v", err)
		}
	}

	if err := UpdateQuestionMeta(ph, "q-001", "q-100", "new prompt", "new answer"); err != nil {
		t.Fatalf("UpdateQuestionMeta error: %v", err)
	}
	q := ph.Worksheet.Question("q-100")
	if q == nil {
		t.Fatalf("renamed question not found")
	}
	if q.Prompt != "new prompt" || q.Answer != "new answer" {
		t.Fatalf("meta not updated: %+v", q)
	}

	// Renaming onto an existing id must fail
	if err := UpdateQuestionMeta(ph, "q-100", "q-002", "x", "y"); err == nil {
		t.Fatalf("expected id collision error")
	}
}

func TestRemoveQuestion(t *testing.T) {
	ph := newTestHandle(t, "ws-remove")
	for _, p := range []string{"one", "two"} {
		if _, err := AddQuestion(ph, domain.Question{Prompt: p}); err != nil {
			t.Fatalf("AddQuestion error: %v", err)
		}
	}

	removed, err := RemoveQuestion(ph, "q-001")
	if err != nil {
		t.Fatalf("RemoveQuestion error: %v", err)
	}
	if removed.Prompt != "one" {
		t.Fatalf("unexpected removed question: %+v", removed)
	}
	if len(ph.Worksheet.Questions) != 1 || ph.Worksheet.Questions[0].ID != "q-002" {
		t.Fatalf("unexpected remaining questions: %v", questionOrder(ph))
	}
	if _, err := RemoveQuestion(ph, "q-001"); err == nil {
		t.Fatalf("expected error removing missing question")
	}
}

func TestBankPutGetDeleteRoundTrip(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	q := domain.Question{
		Prompt:     "Given two sides 7 and 9 enclosing 40 degrees, find the third side.",
		Answer:     "5.84",
		Difficulty: 3,
		Tags:       []string{"Law-of-Cosines", "sas"},
		Figure: &domain.Figure{
			Def: domain.FigureDef{Mode: domain.ModeSAS, Side1: 7, AngleDeg: 40, Side2: 9},
		},
		Generator: "missing-side",
		Seed:      42,
	}

	if err := PutQuestion(ctx, root, "server/abc123", q, "server"); err != nil {
		t.Fatalf("PutQuestion error: %v", err)
	}

	got, ok, err := GetQuestion(ctx, root, "server/abc123")
	if err != nil {
		t.Fatalf("GetQuestion error: %v", err)
	}
	if !ok {
		t.Fatalf("expected question to exist")
	}
	if got.Prompt != q.Prompt || got.Answer != q.Answer || got.Difficulty != q.Difficulty || got.Seed != q.Seed {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Figure == nil || got.Figure.Def.Mode != domain.ModeSAS || got.Figure.Def.Side2 != 9 {
		t.Fatalf("figure not restored: %+v", got.Figure)
	}
	if !reflect.DeepEqual(got.Tags, []string{"law-of-cosines", "sas"}) {
		t.Fatalf("tags not normalized and sorted: %v", got.Tags)
	}

	entries, err := ListBankQuestions(ctx, root, 0, 0)
	if err != nil {
		t.Fatalf("ListBankQuestions error: %v", err)
	}
	if len(entries) != 1 || entries[0].UID != "server/abc123" || entries[0].Source != "server" {
		t.Fatalf("unexpected listing: %+v", entries)
	}
	if !reflect.DeepEqual(entries[0].Tags, []string{"law-of-cosines", "sas"}) {
		t.Fatalf("listing tags mismatch: %v", entries[0].Tags)
	}

	deleted, err := DeleteBankQuestion(ctx, root, "server/abc123")
	if err != nil {
		t.Fatalf("DeleteBankQuestion error: %v", err)
	}
	if !deleted {
		t.Fatalf("expected delete to report a removed row")
	}
	if _, ok, err := GetQuestion(ctx, root, "server/abc123"); err != nil || ok {
		t.Fatalf("question still present after delete (ok=%v err=%v)", ok, err)
	}
}
