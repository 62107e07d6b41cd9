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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trisheet/internal/domain"
)

func TestDetectAndRebuildBank_OnCorruption(t *testing.T) {
	root := t.TempDir()
	// Create a small project with some content
	ws := domain.NewWorksheet("ws-corrupt", "Corrupt Test")
	ws.Questions = []domain.Question{
		{ID: "q-001", Prompt: "Find the circumcenter of the triangle with vertices at the origin.", Difficulty: 3},
	}
	ph, err := InitProject(root, *ws)
	if err != nil || ph == nil {
		t.Fatalf("InitProject error: %v", err)
	}
	// Corrupt the DB file by writing junk
	bank := BankPath(root)
	if err := os.WriteFile(bank, []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	// Attempt detect and rebuild
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rebuilt, err := DetectAndRebuildBank(ctx, root, *ws)
	if err != nil {
		t.Fatalf("DetectAndRebuildBank: %v", err)
	}
	if !rebuilt {
		t.Fatalf("expected rebuild to occur")
	}
	// Verify DB looks healthy and serves searches again
	st, err := os.Stat(BankPath(root))
	if err != nil || st.Size() == 0 {
		t.Fatalf("rebuilt bank missing or empty: %v", err)
	}
	hits, err := SearchQuestions(ctx, root, SearchQuery{Text: "circumcenter"})
	if err != nil {
		t.Fatalf("search after rebuild: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected rebuilt bank to find the question, got %d hits", len(hits))
	}
	// Backup of the broken file should exist next to the manifest backups
	entries, _ := os.ReadDir(filepath.Join(root, BackupsDirName))
	var bankBaks int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), BankFileName+".") && strings.HasSuffix(e.Name(), ".bak") {
			bankBaks++
		}
	}
	if bankBaks == 0 {
		t.Fatalf("expected bank backup file under %s", BackupsDirName)
	}
}
