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
	"testing"
	"time"
)

func TestClearSheetAndStats(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxPerSheet: 10, MinInterval: time.Millisecond})
	ws := "ws-cleared"
	m.PushSnapshot(Snapshot{SheetID: ws, Blob: []byte("abcdef"), TS: time.Now()})
	tb, sheets, total := m.Stats()
	if tb == 0 || sheets != 1 || total != 1 {
		t.Fatalf("unexpected stats before clear: tb=%d sheets=%d total=%d", tb, sheets, total)
	}
	m.ClearSheet(ws)
	tb2, sheets2, total2 := m.Stats()
	if tb2 != 0 || sheets2 != 0 || total2 != 0 {
		t.Fatalf("expected cleared stats to be zero, got tb=%d sheets=%d total=%d", tb2, sheets2, total2)
	}
}

func TestGlobalPruneAcrossSheets(t *testing.T) {
	// Very small MaxBytes so pruning triggers across worksheets
	m := NewManager(Config{MaxBytes: 8, MaxPerSheet: 0, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(Snapshot{SheetID: "ws-old", Blob: []byte("xxxx"), TS: t0})
	m.PushSnapshot(Snapshot{SheetID: "ws-new", Blob: []byte("yyyy"), TS: t0.Add(time.Second)})

	// The third snapshot exceeds the cap and must evict the oldest one.
	m.PushSnapshot(Snapshot{SheetID: "ws-new", Blob: []byte("zzzz"), TS: t0.Add(2 * time.Second)})

	_, sheets, total := m.Stats()
	if sheets == 0 || total == 0 {
		t.Fatalf("expected some snapshots to remain")
	}
	if _, ok := m.Undo("ws-old", []byte("live")); ok {
		t.Fatalf("expected ws-old to have been pruned")
	}
	if _, ok := m.Undo("ws-new", []byte("live")); !ok {
		t.Fatalf("expected ws-new to have snapshots")
	}
}
