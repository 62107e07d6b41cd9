/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"trisheet/internal/domain"
	applog "trisheet/internal/log"
)

// ImportQuestions merges the questions of another worksheet manifest into the
// open sheet. The source file must conform to the worksheet schema. Questions
// whose prompt already exists on the sheet are skipped; imported questions get
// fresh IDs. Returns the number of questions added. Only the in-memory
// worksheet is mutated; the caller saves and re-syncs the bank.
func ImportQuestions(ph *ProjectHandle, path string) (int, error) {
	if ph == nil {
		return 0, errors.New("project handle is nil")
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "import").With(
		slog.String("path", path),
	)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read import file: %w", err)
	}
	if err := ValidateManifest(data); err != nil {
		l.Warn("import rejected", slog.String("error", err.Error()))
		return 0, err
	}
	var src domain.Worksheet
	if err := json.Unmarshal(data, &src); err != nil {
		return 0, fmt.Errorf("parse import file: %w", err)
	}

	have := make(map[string]struct{}, len(ph.Worksheet.Questions))
	for _, q := range ph.Worksheet.Questions {
		have[strings.TrimSpace(q.Prompt)] = struct{}{}
	}
	added := 0
	for _, q := range src.Questions {
		prompt := strings.TrimSpace(q.Prompt)
		if prompt == "" {
			continue
		}
		if _, dup := have[prompt]; dup {
			continue
		}
		q.ID = "" // AddQuestion assigns a sheet-local ID
		if _, err := AddQuestion(ph, q); err != nil {
			return added, fmt.Errorf("import question: %w", err)
		}
		have[prompt] = struct{}{}
		added++
	}
	l.Info("import merged",
		slog.Int("added", added),
		slog.Int("offered", len(src.Questions)),
	)
	return added, nil
}
