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

func TestUndoRedoRoundTrip(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerSheet: 10, MinInterval: 10 * time.Millisecond})
	ws := "ws-pythagoras"
	// States a and b were captured before two mutations; the live state is c.
	m.PushSnapshot(Snapshot{SheetID: ws, Blob: []byte("a"), TS: time.Now()})
	m.PushSnapshot(Snapshot{SheetID: ws, Blob: []byte("b"), TS: time.Now().Add(20 * time.Millisecond)})
	if _, sheets, total := m.Stats(); sheets != 1 || total != 2 {
		t.Fatalf("expected 1 sheet and 2 snapshots, got sheets=%d total=%d", sheets, total)
	}
	s, ok := m.Undo(ws, []byte("c"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	// Redo must bring back the state that was live before the undo.
	s, ok = m.Redo(ws, []byte("b"))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Undo(ws, []byte("c"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("second undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestCoalesce(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerSheet: 10, MinInterval: 50 * time.Millisecond})
	ws := "ws-angles"
	t0 := time.Now()
	m.PushSnapshot(Snapshot{SheetID: ws, Blob: []byte("1"), TS: t0})
	m.PushSnapshot(Snapshot{SheetID: ws, Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)}) // coalesce
	_, _, total := m.Stats()
	if total != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", total)
	}
	s, ok := m.Undo(ws, []byte("live"))
	if !ok || string(s.Blob) != "2" {
		t.Fatalf("expected coalesced snapshot '2', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxPerSheet: 2, MinInterval: 1 * time.Millisecond})
	ws := "ws-centers"
	for i := 0; i < 10; i++ {
		m.PushSnapshot(Snapshot{SheetID: ws, Blob: []byte("xxxxx"), TS: time.Now().Add(time.Duration(i) * time.Millisecond)})
	}
	_, _, total := m.Stats()
	if total > 2 {
		t.Fatalf("expected MaxPerSheet cap to limit to 2, got %d", total)
	}
}

func TestDepthsTrackStacks(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxPerSheet: 10, MinInterval: time.Millisecond})
	ws := "ws-depths"
	if u, r := m.Depths(ws); u != 0 || r != 0 {
		t.Fatalf("expected empty depths, got undo=%d redo=%d", u, r)
	}
	t0 := time.Now()
	m.PushSnapshot(Snapshot{SheetID: ws, Blob: []byte("a"), TS: t0})
	m.PushSnapshot(Snapshot{SheetID: ws, Blob: []byte("b"), TS: t0.Add(10 * time.Millisecond)})
	if u, r := m.Depths(ws); u != 2 || r != 0 {
		t.Fatalf("after pushes: undo=%d redo=%d", u, r)
	}
	m.Undo(ws, []byte("live"))
	if u, r := m.Depths(ws); u != 1 || r != 1 {
		t.Fatalf("after undo: undo=%d redo=%d", u, r)
	}
	// A new push invalidates redo.
	m.PushSnapshot(Snapshot{SheetID: ws, Blob: []byte("c"), TS: t0.Add(30 * time.Millisecond)})
	if u, r := m.Depths(ws); u != 2 || r != 0 {
		t.Fatalf("after push-over-redo: undo=%d redo=%d", u, r)
	}
}
