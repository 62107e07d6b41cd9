/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trisheet/internal/storage"
)

func TestExportWorksheetHTML_EmbedsFigures(t *testing.T) {
	ph := testProject(t)
	out := filepath.Join(ph.Root, "exports", "sheet.html")
	if err := ExportWorksheetHTML(ph, out, HTMLOptions{IncludeAnswerKey: true, DPI: 72}); err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	doc := string(b)
	if !strings.Contains(doc, "<h1>Triangle practice</h1>") {
		t.Fatalf("missing title")
	}
	if n := strings.Count(doc, "data:image/png;base64,"); n != 2 {
		t.Fatalf("expected 2 inlined figures, got %d", n)
	}
	if !strings.Contains(doc, "Answer key") {
		t.Fatalf("missing answer section")
	}

	// Both rasters must land in the bank's preview cache.
	total, err := storage.TotalPreviewBytes(context.Background(), ph.Root)
	if err != nil {
		t.Fatalf("preview bytes: %v", err)
	}
	if total <= 0 {
		t.Fatalf("export did not populate the preview cache")
	}
}

func TestExportWorksheetHTML_ExtensionEnforced(t *testing.T) {
	ph := testProject(t)
	if err := ExportWorksheetHTML(ph, "share", HTMLOptions{DPI: 72}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ph.Root, "exports", "share.html")); err != nil {
		t.Fatalf("expected .html suffix enforced: %v", err)
	}
}

func TestEscHTML(t *testing.T) {
	if got := escHTML(`2 < 3 & "x"`); got != "2 &lt; 3 &amp; &quot;x&quot;" {
		t.Fatalf("escHTML: %q", got)
	}
}
