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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"trisheet/internal/domain"
	applog "trisheet/internal/log"
	"trisheet/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// BankFileName is the per-project SQLite question bank, stored next to the manifest.
	BankFileName = "bank.db"

	// schemaVersion tracks the local SQLite schema for the question bank.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// BankPath returns the full path to the project's question bank database file.
func BankPath(projectRoot string) string {
	return filepath.Join(projectRoot, BankFileName)
}

// QuestionUID derives the stable bank identity of a worksheet question.
// Manifest IDs like q-001 repeat across worksheets; prefixing the worksheet ID
// keeps bank rows from different sheets apart.
func QuestionUID(worksheetID, questionID string) string {
	return worksheetID + "/" + questionID
}

// InitOrOpenBank ensures that the per-project SQLite bank exists at <root>/bank.db,
// opens the database, enables WAL mode, and ensures the meta/version tables exist.
// The returned *sql.DB is ready for use. Callers may close it when no longer needed.
func InitOrOpenBank(projectRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "bank_init").With(
		slog.String("root", projectRoot),
	)
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	// Ensure directory exists
	if err := os.MkdirAll(projectRoot, 0o755); err != nil {
		l.Error("create project root failed", slog.Any("err", err))
		return nil, fmt.Errorf("create project root: %w", err)
	}

	path := BankPath(projectRoot)
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Set reasonable connection pool limits for embedded usage.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Ensure WAL mode is active.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	// question_tags relies on cascading deletes.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureBankSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure bank schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("bank ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	// Create tables if not exist
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	// Seed or update single-row version info
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Insert new row with current schemaVersion for a fresh DB
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			// Filter and lookup indexes introduced after the first release.
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_questions_difficulty ON questions(difficulty);`,
				`CREATE INDEX IF NOT EXISTS idx_question_tags_tag ON question_tags(tag_id);`,
				`CREATE INDEX IF NOT EXISTS idx_usages_ws ON usages(worksheet_id);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
			// Best-effort FTS optimize (outside the tx)
			_, _ = db.ExecContext(ctx, `INSERT INTO question_fts(question_fts) VALUES('optimize')`)
		default:
			// Unknown future step; nothing to do.
		}
		cur = next
	}
	return nil
}

// ensureBankSchema creates bank tables and FTS structures if they do not exist.
func ensureBankSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// Core questions table: one row per bank question, keyed by a stable uid.
		// The figure column holds the construction parameters as JSON.
		`CREATE TABLE IF NOT EXISTS questions (
			id         INTEGER PRIMARY KEY,
			uid        TEXT    NOT NULL UNIQUE,
			prompt     TEXT    NOT NULL,
			answer     TEXT,
			difficulty INTEGER NOT NULL DEFAULT 0,
			figure     TEXT,
			generator  TEXT,
			seed       INTEGER,
			source     TEXT,
			created_at TEXT    NOT NULL,
			updated_at TEXT    NOT NULL
		);`,

		// External-content FTS5 index over questions, kept in sync by the
		// triggers below. snippet() reads the text from the content table.
		`CREATE VIRTUAL TABLE IF NOT EXISTS question_fts USING fts5(
			prompt,
			answer,
			content='questions',
			content_rowid='id',
			tokenize = 'unicode61'
		);`,

		// Tag vocabulary and assignment.
		`CREATE TABLE IF NOT EXISTS tags (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS question_tags (
			question_id INTEGER NOT NULL,
			tag_id      INTEGER NOT NULL,
			PRIMARY KEY(question_id, tag_id),
			FOREIGN KEY(question_id) REFERENCES questions(id) ON DELETE CASCADE,
			FOREIGN KEY(tag_id)      REFERENCES tags(id)      ON DELETE CASCADE
		);`,

		// Which worksheets include a question, and at what position (where-used).
		`CREATE TABLE IF NOT EXISTS usages (
			question_uid TEXT    NOT NULL,
			worksheet_id TEXT    NOT NULL,
			position     INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(question_uid, worksheet_id)
		);`,

		// Worksheet snapshots (version history of whole manifests).
		`CREATE TABLE IF NOT EXISTS snapshots (
			id           INTEGER PRIMARY KEY,
			worksheet_id TEXT NOT NULL,
			ts           TEXT NOT NULL,
			label        TEXT,
			blob         BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ws_ts ON snapshots(worksheet_id, ts);`,

		// Rendered figure previews (PNG cache with LRU bookkeeping).
		`CREATE TABLE IF NOT EXISTS previews (
			id           INTEGER PRIMARY KEY,
			question_uid TEXT    NOT NULL,
			hash         TEXT    NOT NULL,
			w            INTEGER NOT NULL DEFAULT 0,
			h            INTEGER NOT NULL DEFAULT 0,
			png          BLOB,
			size         INTEGER NOT NULL DEFAULT 0,
			updated_at   TEXT    NOT NULL,
			last_access  TEXT
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_previews_variant ON previews(question_uid, hash, w, h);`,
		`CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure bank schema: %w", err)
		}
	}
	// Triggers for contentless FTS synchronization with questions.
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS questions_ai AFTER INSERT ON questions BEGIN
			INSERT INTO question_fts(rowid, prompt, answer) VALUES (new.id, new.prompt, new.answer);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS questions_ad AFTER DELETE ON questions BEGIN
			INSERT INTO question_fts(question_fts, rowid, prompt, answer) VALUES ('delete', old.id, old.prompt, old.answer);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS questions_au AFTER UPDATE OF prompt, answer ON questions BEGIN
			INSERT INTO question_fts(question_fts, rowid, prompt, answer) VALUES ('delete', old.id, old.prompt, old.answer);
			INSERT INTO question_fts(rowid, prompt, answer) VALUES (new.id, new.prompt, new.answer);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// BuildBankIfEmpty populates the bank from the worksheet when it holds no questions yet.
func BuildBankIfEmpty(ctx context.Context, projectRoot string, ws domain.Worksheet) error {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions;").Scan(&cnt); err != nil {
		return fmt.Errorf("check questions count: %w", err)
	}
	if cnt > 0 {
		return nil // already built
	}
	return syncWorksheetDB(ctx, db, ws)
}

// SyncWorksheet mirrors the worksheet's questions into the bank. Rows this
// worksheet contributed earlier but no longer contains are removed; rows from
// other worksheets are left alone.
func SyncWorksheet(ctx context.Context, projectRoot string, ws domain.Worksheet) error {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	return syncWorksheetDB(ctx, db, ws)
}

func syncWorksheetDB(ctx context.Context, db *sql.DB, ws domain.Worksheet) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `DELETE FROM usages WHERE worksheet_id = ?`, ws.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear usages: %w", err)
	}
	for i, q := range ws.Questions {
		uid := QuestionUID(ws.ID, q.ID)
		if _, err := upsertQuestionTx(ctx, tx, uid, q, ws.ID, now); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO usages(question_uid, worksheet_id, position) VALUES(?,?,?)
			ON CONFLICT(question_uid, worksheet_id) DO UPDATE SET position=excluded.position`, uid, ws.ID, i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record usage: %w", err)
		}
	}
	// Drop rows this worksheet once contributed that no sheet references anymore.
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE source = ?
		AND uid NOT IN (SELECT question_uid FROM usages)`, ws.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prune stale questions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sync: %w", err)
	}
	return nil
}

// RebuildBank drops and recreates the core bank tables and refills them from the
// given worksheet. Meta/version, snapshots and previews are preserved when the
// database file itself survives. Rows contributed by other worksheets are lost
// until those sheets are re-synced.
func RebuildBank(ctx context.Context, projectRoot string, ws domain.Worksheet) error {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	// Drop core tables inside a transaction and recreate schema
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS question_tags;",
		"DROP TABLE IF EXISTS tags;",
		"DROP TABLE IF EXISTS usages;",
		"DROP TRIGGER IF EXISTS questions_ai;",
		"DROP TRIGGER IF EXISTS questions_ad;",
		"DROP TRIGGER IF EXISTS questions_au;",
		"DROP TABLE IF EXISTS questions;",
		"DROP TABLE IF EXISTS question_fts;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	// Recreate schema and populate
	if err := ensureBankSchema(ctx, db); err != nil {
		return err
	}
	return syncWorksheetDB(ctx, db, ws)
}

// DetectAndRebuildBank checks for corruption or missing schema and rebuilds the bank if needed.
// It returns true when a rebuild was performed.
func DetectAndRebuildBank(ctx context.Context, projectRoot string, ws domain.Worksheet) (bool, error) {
	path := BankPath(projectRoot)
	// Try to open; if that fails, attempt backup+delete+rebuild
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		backupBankFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildBank(ctx, projectRoot, ws); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	defer db.Close()
	needs := false
	// quick_check for corruption
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	// Probe core table
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM questions LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	backupBankFile(path)
	_ = os.Remove(path)
	if err := RebuildBank(ctx, projectRoot, ws); err != nil {
		return false, err
	}
	return true, nil
}

// backupBankFile copies the current bank file into a timestamped backup under backups/.
func backupBankFile(bankPath string) {
	bdir := filepath.Join(filepath.Dir(bankPath), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(bankPath), stamp))
	if data, err := os.ReadFile(bankPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
