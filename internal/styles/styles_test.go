/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package styles

import (
	"testing"

	"trisheet/internal/domain"
)

func TestStyleSheetResolvePrecedence(t *testing.T) {
	ss := NewStyleSheet()
	base, ok := ss.Resolve("default")
	if !ok {
		t.Fatalf("expected builtin default")
	}

	wsOver := base
	wsOver.Stroke.Width = 1.5
	ss = ss.WithWorksheet(map[string]domain.FigureStyle{"default": wsOver})
	got, ok := ss.Resolve("default")
	if !ok || got.Stroke.Width != 1.5 {
		t.Fatalf("worksheet override not applied: %+v", got)
	}
	if got.FontSize != base.FontSize {
		t.Fatalf("worksheet override should not change font size")
	}

	qOver := got
	qOver.FontSize = 14
	ss = ss.WithQuestion(map[string]domain.FigureStyle{"default": qOver})
	got2, ok := ss.Resolve("default")
	if !ok || got2.FontSize != 14 {
		t.Fatalf("question override not applied: %+v", got2)
	}
	if got2.Stroke.Width != 1.5 {
		t.Fatalf("question scope should inherit worksheet stroke width")
	}
}

func TestStyleSheetFallbackBuiltin(t *testing.T) {
	ss := &StyleSheet{
		Global:    map[string]domain.FigureStyle{},
		Worksheet: map[string]domain.FigureStyle{},
		Question:  map[string]domain.FigureStyle{},
	}
	if _, ok := ss.Resolve("exam"); !ok {
		t.Fatalf("expected builtin fallback for exam")
	}
	if _, ok := ss.Resolve("nonexistent"); ok {
		t.Fatalf("unexpected resolve of unknown style")
	}
}

func TestEffectiveStyle(t *testing.T) {
	ss := NewStyleSheet()
	ws := &domain.Worksheet{StyleRef: "compact"}
	q := &domain.Question{}

	st := ss.Effective(ws, q)
	if st.Name != "compact" {
		t.Fatalf("expected worksheet ref, got %q", st.Name)
	}
	q.StyleRef = "exam"
	if st := ss.Effective(ws, q); st.Name != "exam" {
		t.Fatalf("question ref should win, got %q", st.Name)
	}
	q.StyleRef = "no-such-style"
	if st := ss.Effective(ws, q); st.Name != "default" {
		t.Fatalf("unresolvable ref should fall back to default, got %q", st.Name)
	}
}

func TestNamesDeterministic(t *testing.T) {
	ss := NewStyleSheet()
	ss = ss.WithQuestion(map[string]domain.FigureStyle{"custom": {Name: "custom"}})
	names := ss.Names()
	if len(names) != 4 {
		t.Fatalf("expected 4 names, got %v", names)
	}
	if names[0] != "default" || names[1] != "exam" || names[2] != "compact" {
		t.Fatalf("unexpected builtin order: %v", names)
	}
	if names[3] != "custom" {
		t.Fatalf("custom style missing: %v", names)
	}
}
