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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"trisheet/internal/domain"
)

// AddQuestion appends a question to the in-memory worksheet. If q.ID is empty
// a unique one will be generated. Returns the stored question.
func AddQuestion(ph *ProjectHandle, q domain.Question) (domain.Question, error) {
	if ph == nil {
		return domain.Question{}, errors.New("project handle is nil")
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return domain.Question{}, errors.New("question prompt is required")
	}
	if q.Difficulty < 0 || q.Difficulty > 5 {
		return domain.Question{}, fmt.Errorf("difficulty %d out of range 0..5", q.Difficulty)
	}
	if q.ID == "" {
		q.ID = ph.Worksheet.NextQuestionID()
	} else {
		// ensure unique
		for _, ex := range ph.Worksheet.Questions {
			if ex.ID == q.ID {
				return domain.Question{}, fmt.Errorf("question id %s already exists", q.ID)
			}
		}
	}
	ph.Worksheet.Questions = append(ph.Worksheet.Questions, q)
	return q, nil
}

// findQuestion returns slice index and pointer, or an error.
func findQuestion(ph *ProjectHandle, id string) (int, *domain.Question, error) {
	if ph == nil {
		return -1, nil, errors.New("project handle is nil")
	}
	for i := range ph.Worksheet.Questions {
		if ph.Worksheet.Questions[i].ID == id {
			return i, &ph.Worksheet.Questions[i], nil
		}
	}
	return -1, nil, fmt.Errorf("question %s not found", id)
}

// MoveQuestion shifts the question by delta positions in the sheet order
// (-1 moves toward the front). The move clamps at both ends.
func MoveQuestion(ph *ProjectHandle, id string, delta int) error {
	idx, _, err := findQuestion(ph, id)
	if err != nil {
		return err
	}
	qs := ph.Worksheet.Questions
	newIdx := idx + delta
	if newIdx < 0 {
		newIdx = 0
	}
	if newIdx >= len(qs) {
		newIdx = len(qs) - 1
	}
	if newIdx == idx {
		return nil
	}
	q := qs[idx]
	if newIdx < idx {
		copy(qs[newIdx+1:idx+1], qs[newIdx:idx])
	} else {
		copy(qs[idx:newIdx], qs[idx+1:newIdx+1])
	}
	qs[newIdx] = q
	return nil
}

// UpdateQuestionMeta updates question ID (if non-empty and unique), prompt and
// answer. Figure, tags, generator and seed are preserved.
func UpdateQuestionMeta(ph *ProjectHandle, id, newID, prompt, answer string) error {
	_, q, err := findQuestion(ph, id)
	if err != nil {
		return err
	}
	if newID != "" && newID != q.ID {
		// ensure unique
		for _, ex := range ph.Worksheet.Questions {
			if ex.ID == newID {
				return fmt.Errorf("question id %s already exists", newID)
			}
		}
		q.ID = newID
	}
	q.Prompt = prompt
	q.Answer = answer
	return nil
}

// RemoveQuestion deletes a question from the worksheet and returns it.
func RemoveQuestion(ph *ProjectHandle, id string) (domain.Question, error) {
	idx, _, err := findQuestion(ph, id)
	if err != nil {
		return domain.Question{}, err
	}
	q := ph.Worksheet.Questions[idx]
	ph.Worksheet.Questions = append(ph.Worksheet.Questions[:idx], ph.Worksheet.Questions[idx+1:]...)
	return q, nil
}

// upsertQuestionTx writes one question row (and its tag assignment) inside an
// open transaction and returns the rowid.
func upsertQuestionTx(ctx context.Context, tx *sql.Tx, uid string, q domain.Question, source, now string) (int64, error) {
	var fig any
	if q.Figure != nil {
		b, err := json.Marshal(q.Figure)
		if err != nil {
			return 0, fmt.Errorf("marshal figure: %w", err)
		}
		fig = string(b)
	}
	var ans, gen any
	if q.Answer != "" {
		ans = q.Answer
	}
	if q.Generator != "" {
		gen = q.Generator
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO questions(uid, prompt, answer, difficulty, figure, generator, seed, source, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(uid) DO UPDATE SET prompt=excluded.prompt, answer=excluded.answer, difficulty=excluded.difficulty,
			figure=excluded.figure, generator=excluded.generator, seed=excluded.seed, source=excluded.source, updated_at=excluded.updated_at`,
		uid, q.Prompt, ans, q.Difficulty, fig, gen, q.Seed, source, now, now); err != nil {
		return 0, fmt.Errorf("upsert question %s: %w", uid, err)
	}
	var rowID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM questions WHERE uid = ?`, uid).Scan(&rowID); err != nil {
		return 0, fmt.Errorf("resolve question row: %w", err)
	}
	// Refresh tag assignment.
	if _, err := tx.ExecContext(ctx, `DELETE FROM question_tags WHERE question_id = ?`, rowID); err != nil {
		return 0, fmt.Errorf("clear question tags: %w", err)
	}
	for _, t := range q.Tags {
		name := NormalizeTag(t)
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO tags(name) VALUES(?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
			return 0, fmt.Errorf("ensure tag %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO question_tags(question_id, tag_id)
			SELECT ?, id FROM tags WHERE name = ?`, rowID, name); err != nil {
			return 0, fmt.Errorf("assign tag %s: %w", name, err)
		}
	}
	return rowID, nil
}

// PutQuestion upserts a single question into the bank under the given uid.
// Used for questions that do not come from a local worksheet, e.g. rows pulled
// from a shared bank server.
func PutQuestion(ctx context.Context, projectRoot, uid string, q domain.Question, source string) error {
	if strings.TrimSpace(uid) == "" {
		return errors.New("question uid is required")
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return errors.New("question prompt is required")
	}
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := upsertQuestionTx(ctx, tx, uid, q, source, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// GetQuestion loads a bank question by uid. The returned question has no
// manifest ID; AddQuestion assigns one when the row is attached to a sheet.
// The second return is false when the uid is unknown.
func GetQuestion(ctx context.Context, projectRoot, uid string) (domain.Question, bool, error) {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return domain.Question{}, false, err
	}
	defer db.Close()
	var (
		rowID         int64
		q             domain.Question
		ans, fig, gen sql.NullString
		seed          sql.NullInt64
	)
	err = db.QueryRowContext(ctx, `SELECT id, prompt, answer, difficulty, figure, generator, seed FROM questions WHERE uid = ?`, uid).
		Scan(&rowID, &q.Prompt, &ans, &q.Difficulty, &fig, &gen, &seed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, false, nil
	}
	if err != nil {
		return domain.Question{}, false, fmt.Errorf("query question: %w", err)
	}
	if ans.Valid {
		q.Answer = ans.String
	}
	if gen.Valid {
		q.Generator = gen.String
	}
	if seed.Valid {
		q.Seed = seed.Int64
	}
	if fig.Valid && fig.String != "" {
		var f domain.Figure
		if err := json.Unmarshal([]byte(fig.String), &f); err != nil {
			return domain.Question{}, false, fmt.Errorf("parse stored figure: %w", err)
		}
		q.Figure = &f
	}
	rows, err := db.QueryContext(ctx, `SELECT tg.name FROM question_tags qt JOIN tags tg ON tg.id = qt.tag_id WHERE qt.question_id = ? ORDER BY tg.name`, rowID)
	if err != nil {
		return domain.Question{}, false, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return domain.Question{}, false, err
		}
		q.Tags = append(q.Tags, t)
	}
	return q, true, rows.Err()
}

// DeleteBankQuestion removes a bank question; tag assignments go with it via
// the cascading foreign key. Returns true when a row was deleted.
func DeleteBankQuestion(ctx context.Context, projectRoot, uid string) (bool, error) {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return false, err
	}
	defer db.Close()
	res, err := db.ExecContext(ctx, `DELETE FROM questions WHERE uid = ?`, uid)
	if err != nil {
		return false, fmt.Errorf("delete question: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		_, _ = db.ExecContext(ctx, `DELETE FROM usages WHERE question_uid = ?`, uid)
	}
	return n > 0, nil
}

// BankEntry is one row of a bank listing.
type BankEntry struct {
	UID        string
	Prompt     string
	Difficulty int
	Tags       []string
	Source     string
	UpdatedAt  time.Time
}

// ListBankQuestions returns bank rows ordered by most recently updated.
func ListBankQuestions(ctx context.Context, projectRoot string, limit, offset int) ([]BankEntry, error) {
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
	rows, err := db.QueryContext(ctx, `SELECT qs.uid, qs.prompt, qs.difficulty, COALESCE(qs.source,''), qs.updated_at,
			COALESCE(GROUP_CONCAT(tg.name, ','), '')
		FROM questions qs
		LEFT JOIN question_tags qt ON qt.question_id = qs.id
		LEFT JOIN tags tg ON tg.id = qt.tag_id
		GROUP BY qs.id
		ORDER BY qs.updated_at DESC, qs.id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()
	var out []BankEntry
	for rows.Next() {
		var e BankEntry
		var upd, tags string
		if err := rows.Scan(&e.UID, &e.Prompt, &e.Difficulty, &e.Source, &upd, &tags); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if ts, perr := time.Parse(time.RFC3339, upd); perr == nil {
			e.UpdatedAt = ts
		}
		if tags != "" {
			e.Tags = strings.Split(tags, ",")
			sort.Strings(e.Tags)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
