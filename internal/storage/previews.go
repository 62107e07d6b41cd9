/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"trisheet/internal/domain"
)

const defaultPreviewCapBytes = 64 * 1024 * 1024

// FigureHash fingerprints a figure together with the style it is rendered in.
// The hash keys preview variants so a style or geometry edit invalidates the
// cached raster without an explicit purge.
func FigureHash(fig *domain.Figure, style domain.FigureStyle) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(fig)
	_ = enc.Encode(style)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// GetPreview returns the cached PNG for a preview variant, bumping its
// last_access stamp, or nil when the variant has not been rendered yet.
func GetPreview(ctx context.Context, projectRoot, questionUID, hash string, w, h int) ([]byte, error) {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var blob []byte
	err = db.QueryRowContext(ctx, `SELECT png FROM previews WHERE question_uid=? AND hash=? AND w=? AND h=?`,
		questionUID, hash, w, h).Scan(&blob)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("query preview: %w", err)
	}
	// touch, best effort
	_, _ = db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE question_uid=? AND hash=? AND w=? AND h=?`,
		time.Now().UTC().Format(time.RFC3339), questionUID, hash, w, h)
	return blob, nil
}

// PutPreview upserts a rendered PNG and then evicts least-recently-used
// variants until the cache fits its byte cap again.
func PutPreview(ctx context.Context, projectRoot, questionUID, hash string, w, h int, png []byte) error {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.ExecContext(ctx, `INSERT INTO previews(question_uid,hash,w,h,png,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(question_uid,hash,w,h) DO UPDATE SET png=excluded.png, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		questionUID, hash, w, h, png, len(png), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if capBytes := MaxPreviewsBytesFromEnv(); capBytes > 0 {
		return EvictPreviewsToFit(ctx, db, capBytes)
	}
	return nil
}

// GetOrCreatePreview fetches a preview or renders and stores it using the
// provided generator. A nil generator turns misses into nil results.
func GetOrCreatePreview(ctx context.Context, projectRoot, questionUID, hash string, w, h int, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	b, err := GetPreview(ctx, projectRoot, questionUID, hash, w, h)
	if err != nil || b != nil {
		return b, err
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil || data == nil {
		return nil, err
	}
	if err := PutPreview(ctx, projectRoot, questionUID, hash, w, h, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EvictPreviewsToFit deletes rows in least-recently-used order until the
// tracked size is at most capBytes. Variants never read since insert rank
// before every read one.
func EvictPreviewsToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	victims, err := previewVictims(ctx, db, total-capBytes)
	if err != nil || len(victims) == 0 {
		return err
	}
	args := make([]any, len(victims))
	for i, id := range victims {
		args[i] = id
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM previews WHERE id IN (`+placeholders(len(victims))+`)`, args...); err != nil {
		return fmt.Errorf("evict previews: %w", err)
	}
	return nil
}

// previewVictims ranks rows by last_access (NULL first, then oldest) and
// returns ids whose combined size covers at least need bytes. The cursor is
// drained before the caller issues the delete; SQLite will not take the
// write lock while a reader holds the connection.
func previewVictims(ctx context.Context, db *sql.DB, need int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY last_access IS NOT NULL, last_access, id`)
	if err != nil {
		return nil, fmt.Errorf("rank previews: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var freed int64
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		if freed += sz; freed >= need {
			break
		}
	}
	return ids, rows.Err()
}

// TotalPreviewBytes reports the bytes tracked by previews.size.
func TotalPreviewBytes(ctx context.Context, projectRoot string) (int64, error) {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxPreviewsBytesFromEnv reads TRISHEET_PREVIEWS_MAX_BYTES. Unset, invalid
// or non-positive values fall back to the 64MB default.
func MaxPreviewsBytesFromEnv() int64 {
	v := os.Getenv("TRISHEET_PREVIEWS_MAX_BYTES")
	if v == "" {
		return defaultPreviewCapBytes
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return defaultPreviewCapBytes
	}
	return n
}
