/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"trisheet/internal/domain"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(worksheet_id, ts, label, blob) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT ts, blob FROM snapshots WHERE worksheet_id = ? ORDER BY ts DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, ts, COALESCE(label,''), length(blob) FROM snapshots WHERE worksheet_id = ? ORDER BY ts DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const selectSnapshotByIDSQL = `SELECT blob FROM snapshots WHERE id = ? AND worksheet_id = ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE worksheet_id = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE worksheet_id = ? ORDER BY ts DESC LIMIT ?
)`

// SnapshotInfo describes one stored worksheet snapshot.
type SnapshotInfo struct {
	ID    int64
	TS    time.Time
	Label string
	Size  int64
}

// SaveSnapshot persists the handle's current worksheet state as a snapshot
// blob with a timestamp. The label is optional and shows up in listings.
func SaveSnapshot(ctx context.Context, ph *ProjectHandle, label string, ts time.Time) error {
	if ph == nil {
		return errors.New("nil ProjectHandle")
	}
	blob, err := json.Marshal(ph.Worksheet)
	if err != nil {
		return err
	}
	db, err := InitOrOpenBank(ph.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	var lbl any
	if label != "" {
		lbl = label
	}
	_, err = db.ExecContext(ctx, insertSnapshotSQL, ph.Worksheet.ID, ts.UTC().Format(time.RFC3339Nano), lbl, blob)
	return err
}

// GetLatestSnapshot returns the newest snapshot blob for the worksheet or nil
// if none exists.
func GetLatestSnapshot(ctx context.Context, ph *ProjectHandle) ([]byte, time.Time, error) {
	if ph == nil {
		return nil, time.Time{}, errors.New("nil ProjectHandle")
	}
	db, err := InitOrOpenBank(ph.Root)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = db.Close() }()
	var tsStr string
	var blob []byte
	err = db.QueryRowContext(ctx, selectLatestSnapshotSQL, ph.Worksheet.ID).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return blob, time.Time{}, nil // return blob even if ts parse fails
	}
	return blob, ts, nil
}

// ListSnapshots returns up to limit most recent snapshots for the worksheet.
func ListSnapshots(ctx context.Context, ph *ProjectHandle, limit int) ([]SnapshotInfo, error) {
	if ph == nil {
		return nil, errors.New("nil ProjectHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenBank(ph.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listSnapshotsSQL, ph.Worksheet.ID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var tsStr string
		if err := rows.Scan(&info.ID, &tsStr, &info.Label, &info.Size); err != nil {
			return nil, err
		}
		info.TS, _ = time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, info)
	}
	return out, rows.Err()
}

// RestoreSnapshot replaces the handle's in-memory worksheet with the stored
// snapshot state. The manifest on disk is untouched until the caller saves.
func RestoreSnapshot(ctx context.Context, ph *ProjectHandle, id int64) error {
	if ph == nil {
		return errors.New("nil ProjectHandle")
	}
	db, err := InitOrOpenBank(ph.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	var blob []byte
	err = db.QueryRowContext(ctx, selectSnapshotByIDSQL, id, ph.Worksheet.ID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("snapshot not found")
	}
	if err != nil {
		return err
	}
	var ws domain.Worksheet
	if err := json.Unmarshal(blob, &ws); err != nil {
		return err
	}
	ph.Worksheet = ws
	return nil
}

// PruneOldSnapshots keeps at most keepLast snapshots for the worksheet and
// deletes older ones.
func PruneOldSnapshots(ctx context.Context, ph *ProjectHandle, keepLast int) (int64, error) {
	if ph == nil {
		return 0, errors.New("nil ProjectHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenBank(ph.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, ph.Worksheet.ID, ph.Worksheet.ID, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
