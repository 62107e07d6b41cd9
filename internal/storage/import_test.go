package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"trisheet/internal/domain"
)

func TestImportQuestionsMergesForeignManifest(t *testing.T) {
	ph := newTestHandle(t, "ws-import")
	if _, err := AddQuestion(ph, domain.Question{Prompt: "Shared prompt"}); err != nil {
		t.Fatalf("AddQuestion error: %v", err)
	}

	other := domain.NewWorksheet("ws-other", "Other Sheet")
	other.Questions = []domain.Question{
		{ID: "q-001", Prompt: "Shared prompt", Answer: "dup"},
		{
			ID:         "q-002",
			Prompt:     "Fresh prompt about angle sums.",
			Difficulty: 2,
			Figure: &domain.Figure{
				Def: domain.FigureDef{Mode: domain.ModeASA, Angle1Deg: 50, Angle2Deg: 60, Side: 8},
			},
		},
	}
	raw, err := json.MarshalIndent(other, "", "  ")
	if err != nil {
		t.Fatalf("marshal foreign manifest: %v", err)
	}
	path := filepath.Join(t.TempDir(), "other.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write foreign manifest: %v", err)
	}

	added, err := ImportQuestions(ph, path)
	if err != nil {
		t.Fatalf("ImportQuestions error: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected 1 added question, got %d", added)
	}
	if len(ph.Worksheet.Questions) != 2 {
		t.Fatalf("expected 2 questions on sheet, got %d", len(ph.Worksheet.Questions))
	}
	got := ph.Worksheet.Questions[1]
	if got.ID != "q-002" {
		t.Fatalf("imported question did not get a fresh id: %q", got.ID)
	}
	if got.Figure == nil || got.Figure.Def.Mode != domain.ModeASA {
		t.Fatalf("imported figure lost: %+v", got.Figure)
	}
}

func TestImportQuestionsRejectsInvalidFile(t *testing.T) {
	ph := newTestHandle(t, "ws-import-bad")
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"title":"no version, no page"}`), 0o644); err != nil {
		t.Fatalf("write bad manifest: %v", err)
	}

	added, err := ImportQuestions(ph, path)
	if err == nil {
		t.Fatalf("expected schema rejection")
	}
	if added != 0 {
		t.Fatalf("expected 0 added questions, got %d", added)
	}
	if len(ph.Worksheet.Questions) != 0 {
		t.Fatalf("sheet mutated by rejected import")
	}
}
