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
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trisheet/internal/domain"

	_ "modernc.org/sqlite"
)

// openDirect opens the bank file with a plain DSN, bypassing InitOrOpenBank.
func openDirect(t *testing.T, path string) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestBankInitCreatesWALAndMetaVersion(t *testing.T) {
	root := t.TempDir()
	ws := domain.NewWorksheet("ws-bank", "Bank Test")
	ph, err := InitProject(root, *ws)
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	if ph == nil {
		t.Fatalf("expected project handle")
	}
	bankPath := BankPath(root)
	if _, err := os.Stat(bankPath); err != nil {
		t.Fatalf("bank file missing at %s: %v", bankPath, err)
	}
	db := openDirect(t, bankPath)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	// Check meta/version tables exist
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected 2 meta tables, got %d", cnt)
	}
	// Check core schema tables exist (including virtual table)
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('questions','question_fts','tags','question_tags','usages','snapshots','previews')").Scan(&cnt); err != nil {
		t.Fatalf("query core tables: %v", err)
	}
	if cnt != 7 {
		t.Fatalf("expected 7 core tables, got %d", cnt)
	}
}

func TestBankFTSTriggersFollowQuestionRows(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenBank(root)
	if err != nil {
		t.Fatalf("InitOrOpenBank error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.ExecContext(ctx, `INSERT INTO questions(uid, prompt, answer, difficulty, source, created_at, updated_at)
		VALUES('ws-x/q-900','find the hypotenuse length','13',2,'ws-x',?,?)`, now, now); err != nil {
		t.Fatalf("insert question: %v", err)
	}
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM question_fts WHERE question_fts MATCH 'hypotenuse'`).Scan(&cnt); err != nil {
		t.Fatalf("fts query: %v", err)
	}
	if cnt == 0 {
		t.Fatalf("expected FTS to find inserted question")
	}

	// Update must re-index the new prompt and drop the old one
	if _, err := db.ExecContext(ctx, `UPDATE questions SET prompt='compute the perimeter' WHERE uid='ws-x/q-900'`); err != nil {
		t.Fatalf("update question: %v", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM question_fts WHERE question_fts MATCH 'hypotenuse'`).Scan(&cnt); err != nil {
		t.Fatalf("fts query after update: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("stale FTS entry survived update: %d", cnt)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM question_fts WHERE question_fts MATCH 'perimeter'`).Scan(&cnt); err != nil {
		t.Fatalf("fts query for new prompt: %v", err)
	}
	if cnt == 0 {
		t.Fatalf("expected FTS to find updated prompt")
	}

	// Delete must clear the index entry
	if _, err := db.ExecContext(ctx, `DELETE FROM questions WHERE uid='ws-x/q-900'`); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM question_fts WHERE question_fts MATCH 'perimeter'`).Scan(&cnt); err != nil {
		t.Fatalf("fts query after delete: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("stale FTS entry survived delete: %d", cnt)
	}
}

func TestBankMigrationsUpgradeOlderSchema(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Fabricate a first-release bank: meta/version present at schema 1,
	// core tables without the later indexes.
	db := openDirect(t, BankPath(root))
	stmts := []string{
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'trisheet 0.0.1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z');`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed old bank: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close seeded bank: %v", err)
	}

	// Opening through the normal path must migrate to the current schema.
	db2, err := InitOrOpenBank(root)
	if err != nil {
		t.Fatalf("InitOrOpenBank error: %v", err)
	}
	defer db2.Close()
	var cur int
	if err := db2.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if cur != schemaVersion {
		t.Fatalf("schema not migrated: got %d want %d", cur, schemaVersion)
	}
	var cnt int
	if err := db2.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name IN ('idx_questions_difficulty','idx_question_tags_tag','idx_usages_ws')`).Scan(&cnt); err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	if cnt != 3 {
		t.Fatalf("expected 3 migration indexes, got %d", cnt)
	}
}

func TestSyncWorksheetMirrorsAddAndRemove(t *testing.T) {
	root := t.TempDir()
	ws := domain.NewWorksheet("ws-sync", "Sync Test")
	ws.Questions = []domain.Question{
		{ID: "q-001", Prompt: "first prompt", Difficulty: 1},
		{ID: "q-002", Prompt: "second prompt", Difficulty: 3},
	}
	ctx := context.Background()
	if err := SyncWorksheet(ctx, root, *ws); err != nil {
		t.Fatalf("SyncWorksheet error: %v", err)
	}

	db := openDirect(t, BankPath(root))
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE source='ws-sync'`).Scan(&cnt); err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected 2 bank rows, got %d", cnt)
	}
	var pos int
	if err := db.QueryRowContext(ctx, `SELECT position FROM usages WHERE question_uid=? AND worksheet_id='ws-sync'`, QuestionUID("ws-sync", "q-002")).Scan(&pos); err != nil {
		t.Fatalf("read usage: %v", err)
	}
	if pos != 2 {
		t.Fatalf("expected position 2, got %d", pos)
	}

	// Dropping a question from the sheet prunes its bank row on re-sync
	ws.Questions = ws.Questions[:1]
	if err := SyncWorksheet(ctx, root, *ws); err != nil {
		t.Fatalf("re-sync error: %v", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE source='ws-sync'`).Scan(&cnt); err != nil {
		t.Fatalf("count after re-sync: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 bank row after removal, got %d", cnt)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE uid=?`, QuestionUID("ws-sync", "q-002")).Scan(&cnt); err != nil {
		t.Fatalf("probe removed row: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("removed question still in bank")
	}
}
