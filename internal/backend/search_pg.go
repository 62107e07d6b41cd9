/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"trisheet/internal/storage"
)

// SearchBankPG executes a search over one bank's rows using the generated
// tsvector, mapped to storage.SearchResult so server hits line up with the
// local bank's. A text query that matches nothing is retried as a plain
// ILIKE containment, which catches fragments tsquery stemming drops.
func SearchBankPG(ctx context.Context, db *sql.DB, bankID int64, q storage.SearchQuery) ([]storage.SearchResult, error) {
	res, err := searchBankPG(ctx, db, bankID, q, true)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 && strings.TrimSpace(q.Text) != "" {
		return searchBankPG(ctx, db, bankID, q, false)
	}
	return res, nil
}

func searchBankPG(ctx context.Context, db *sql.DB, bankID int64, q storage.SearchQuery, fts bool) ([]storage.SearchResult, error) {
	var (
		args []any
		b    strings.Builder
	)
	text := strings.TrimSpace(q.Text)
	switch {
	case text != "" && fts:
		b.WriteString("SELECT bq.uid, bq.prompt, bq.difficulty, COALESCE(bq.source,''), ")
		b.WriteString("COALESCE(ts_headline('simple', bq.prompt || ' ' || COALESCE(bq.answer,''), websearch_to_tsquery('simple', $1), 'StartSel=[, StopSel=], MaxFragments=1, MaxWords=12'), '') ")
		b.WriteString("FROM bank_questions bq WHERE bq.bank_id = $2 AND bq.search_vector @@ websearch_to_tsquery('simple', $1) ")
		args = append(args, text, bankID)
	case text != "":
		b.WriteString("SELECT bq.uid, bq.prompt, bq.difficulty, COALESCE(bq.source,''), '' ")
		b.WriteString("FROM bank_questions bq WHERE bq.bank_id = $1 AND (bq.prompt ILIKE $2 OR COALESCE(bq.answer,'') ILIKE $2) ")
		args = append(args, bankID, "%"+text+"%")
	default:
		b.WriteString("SELECT bq.uid, bq.prompt, bq.difficulty, COALESCE(bq.source,''), '' ")
		b.WriteString("FROM bank_questions bq WHERE bq.bank_id = $1 ")
		args = append(args, bankID)
	}

	// Helper to add a parameter and return its $n placeholder.
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.DifficultyMin > 0 && q.DifficultyMax > 0 && q.DifficultyMax >= q.DifficultyMin {
		b.WriteString(" AND bq.difficulty BETWEEN " + place(q.DifficultyMin) + " AND " + place(q.DifficultyMax) + " ")
	} else if q.DifficultyMin > 0 {
		b.WriteString(" AND bq.difficulty >= " + place(q.DifficultyMin) + " ")
	} else if q.DifficultyMax > 0 {
		b.WriteString(" AND bq.difficulty <= " + place(q.DifficultyMax) + " ")
	}
	if g := strings.ToLower(strings.TrimSpace(q.Generator)); g != "" {
		b.WriteString(" AND lower(COALESCE(bq.generator,'')) = " + place(g) + " ")
	}
	if s := strings.TrimSpace(q.Source); s != "" {
		b.WriteString(" AND bq.source = " + place(s) + " ")
	}
	if q.WithFigure {
		b.WriteString(" AND bq.figure IS NOT NULL ")
	}
	// All requested tags must be present.
	if tags := joinTags(q.Tags); tags != "" {
		b.WriteString(" AND bq.tags @> string_to_array(" + place(tags) + ", ',') ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" ORDER BY bq.difficulty, bq.id ")
	b.WriteString(" LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search bank query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []storage.SearchResult
	for rows.Next() {
		var r storage.SearchResult
		if err := rows.Scan(&r.UID, &r.Prompt, &r.Difficulty, &r.Source, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
