/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot is one reversible worksheet state. The blob is the serialized
// manifest and stays opaque to the manager; its size counts as len(Blob).
// TS is when the snapshot was captured.
type Snapshot struct {
	SheetID string
	Blob    []byte
	TS      time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; the oldest entries are pruned when exceeded.
	MaxBytes int
	// MaxPerSheet limits snapshots kept per worksheet (0 means unlimited).
	MaxPerSheet int
	// MinInterval coalesces snapshots captured within the interval for the
	// same worksheet, replacing the previous one instead of pushing a new
	// entry. Keeps slider drags and rapid regenerates from flooding history.
	MinInterval time.Duration
}

// Manager keeps in-memory undo/redo stacks per worksheet with caps so a long
// editing session cannot grow without bound. Safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo map[string][]Snapshot
	redo map[string][]Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// PushSnapshot records a snapshot. Within MinInterval of the previous snapshot
// for the same worksheet it replaces that entry. Any push clears the redo
// stack for the worksheet.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.SheetID]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			m.totalBytes -= len(last.Blob)
			m.totalBytes += len(s.Blob)
			stack[n-1] = s
			m.undo[s.SheetID] = stack
			m.redo[s.SheetID] = nil
			m.enforceCapsLocked(s.SheetID)
			return
		}
	}
	stack = append(stack, s)
	m.undo[s.SheetID] = stack
	m.totalBytes += len(s.Blob)
	m.redo[s.SheetID] = nil
	m.enforceCapsLocked(s.SheetID)
}

// Undo exchanges the live worksheet state for the newest recorded one. The
// live blob is parked on the redo stack so Redo can bring it back. Byte
// accounting covers the undo stacks; redo depth is bounded by the undo cap.
func (m *Manager) Undo(sheetID string, live []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[sheetID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[sheetID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[sheetID] = append(m.redo[sheetID], Snapshot{SheetID: sheetID, Blob: live, TS: time.Now()})
	return s, true
}

// Redo exchanges the live state for the newest undone one. The live blob goes
// back onto the undo stack so the step stays reversible.
func (m *Manager) Redo(sheetID string, live []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[sheetID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[sheetID] = r[:len(r)-1]
	m.undo[sheetID] = append(m.undo[sheetID], Snapshot{SheetID: sheetID, Blob: live, TS: time.Now()})
	m.totalBytes += len(live)
	m.enforceCapsLocked(sheetID)
	return s, true
}

// Depths reports the undo and redo stack sizes for a worksheet. The UI uses
// this to enable or gray out the edit menu entries.
func (m *Manager) Depths(sheetID string) (undoDepth, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[sheetID]), len(m.redo[sheetID])
}

// ClearSheet drops both stacks for a worksheet, e.g. when it is closed.
func (m *Manager) ClearSheet(sheetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[sheetID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, sheetID)
	delete(m.redo, sheetID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, sheets int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sheets = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, sheets, totalSnapshots
}

func (m *Manager) enforceCapsLocked(sheetID string) {
	if m.cfg.MaxPerSheet > 0 {
		stack := m.undo[sheetID]
		if len(stack) > m.cfg.MaxPerSheet {
			toDrop := len(stack) - m.cfg.MaxPerSheet
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[sheetID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: evict the oldest snapshot across all worksheets
	// until the total fits again.
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestSheet := ""
		oldestIdx := -1
		var oldestTS time.Time
		for sheet, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestSheet = sheet
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestSheet]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestSheet] = stack[1:]
		if len(m.undo[oldestSheet]) == 0 {
			delete(m.undo, oldestSheet)
		}
	}
}
