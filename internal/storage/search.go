/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SearchQuery filters the question bank. Text uses FTS5 match syntax; the
// remaining fields narrow the result set and may be combined freely.
type SearchQuery struct {
	Text          string
	Tags          []string
	Generator     string
	Source        string
	DifficultyMin int
	DifficultyMax int
	WithFigure    bool
	Limit         int
	Offset        int
}

// SearchResult is one bank hit. Snippet is only set for text searches.
type SearchResult struct {
	UID        string
	Prompt     string
	Difficulty int
	Source     string
	Snippet    string
}

// SearchQuestions runs a query against the project's question bank.
func SearchQuestions(ctx context.Context, projectRoot string, q SearchQuery) ([]SearchResult, error) {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		sb   strings.Builder
		args []any
	)
	text := strings.TrimSpace(q.Text)
	if text != "" {
		sb.WriteString(`SELECT qs.uid, qs.prompt, qs.difficulty, COALESCE(qs.source,''),
			snippet(question_fts, -1, '[', ']', '…', 10)
			FROM question_fts JOIN questions qs ON question_fts.rowid = qs.id
			WHERE question_fts MATCH ?`)
		args = append(args, text)
	} else {
		sb.WriteString(`SELECT qs.uid, qs.prompt, qs.difficulty, COALESCE(qs.source,''), ''
			FROM questions qs WHERE 1=1`)
	}
	if q.DifficultyMin > 0 && q.DifficultyMax > 0 {
		sb.WriteString(` AND qs.difficulty BETWEEN ? AND ?`)
		args = append(args, q.DifficultyMin, q.DifficultyMax)
	} else if q.DifficultyMin > 0 {
		sb.WriteString(` AND qs.difficulty >= ?`)
		args = append(args, q.DifficultyMin)
	} else if q.DifficultyMax > 0 {
		sb.WriteString(` AND qs.difficulty <= ?`)
		args = append(args, q.DifficultyMax)
	}
	if g := strings.ToLower(strings.TrimSpace(q.Generator)); g != "" {
		sb.WriteString(` AND LOWER(COALESCE(qs.generator,'')) = ?`)
		args = append(args, g)
	}
	if s := strings.TrimSpace(q.Source); s != "" {
		sb.WriteString(` AND qs.source = ?`)
		args = append(args, s)
	}
	if q.WithFigure {
		sb.WriteString(` AND qs.figure IS NOT NULL AND qs.figure != ''`)
	}
	for _, t := range q.Tags {
		name := NormalizeTag(t)
		if name == "" {
			continue
		}
		sb.WriteString(` AND EXISTS (SELECT 1 FROM question_tags qt JOIN tags tg ON tg.id = qt.tag_id
			WHERE qt.question_id = qs.id AND tg.name = ?)`)
		args = append(args, name)
	}
	sb.WriteString(` ORDER BY qs.difficulty, qs.id LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.UID, &r.Prompt, &r.Difficulty, &r.Source, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// WorksheetUse records that a bank question appears on a worksheet at a
// 1-based position.
type WorksheetUse struct {
	WorksheetID string
	Position    int
}

// WhereUsed lists the worksheets a bank question appears on.
func WhereUsed(ctx context.Context, projectRoot, questionUID string, limit, offset int) ([]WorksheetUse, error) {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := db.QueryContext(ctx, `SELECT worksheet_id, position FROM usages
		WHERE question_uid = ? ORDER BY worksheet_id, position LIMIT ? OFFSET ?`,
		questionUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query usages: %w", err)
	}
	defer rows.Close()
	var out []WorksheetUse
	for rows.Next() {
		var u WorksheetUse
		if err := rows.Scan(&u.WorksheetID, &u.Position); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// placeholders renders "?,?,?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
