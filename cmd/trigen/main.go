/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command trigen drives worksheet generation, export and the question bank
// without the GUI. Recipes are the line format of question.ParseRecipe.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trisheet/internal/backend"
	"trisheet/internal/crash"
	"trisheet/internal/domain"
	"trisheet/internal/export"
	applog "trisheet/internal/log"
	"trisheet/internal/question"
	"trisheet/internal/storage"
	"trisheet/internal/version"
)

func usage() {
	fmt.Println("trigen - headless worksheet generation and export")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  trigen version|-v|--version              Show version")
	fmt.Println("  trigen generate <dir> <recipe> [seed]    Generate questions from a recipe file into the project at <dir>")
	fmt.Println("  trigen export <dir> web|print            Export the worksheet with a preset")
	fmt.Println("  trigen bank export <dir> <out.json>      Write the project question bank to a JSON file")
	fmt.Println("  trigen bank import <dir> <in.json>       Merge a JSON bank file into the project question bank")
	fmt.Println("  trigen search <dir> <text>               Search the project question bank")
	fmt.Println()
	fmt.Println("Generators:", strings.Join(question.Names(), ", "))
}

// ph is the open project, kept package wide so the crash handler can
// autosave whichever project a subcommand had open.
var ph *storage.ProjectHandle

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer func() {
		if r := recover(); r != nil {
			crash.Handle(ph, r)
		}
	}()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("trigen", version.String())
			return
		case "generate":
			if len(args) < 4 {
				fmt.Println("generate requires <dir> and <recipe>")
				usage()
				os.Exit(2)
			}
			runGenerate(l, args[2], args[3], args[4:])
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and a preset (web or print)")
				usage()
				os.Exit(2)
			}
			runExport(l, args[2], args[3])
			return
		case "bank":
			if len(args) < 5 || (args[2] != "export" && args[2] != "import") {
				fmt.Println("bank requires export|import, <dir> and a JSON file")
				usage()
				os.Exit(2)
			}
			if args[2] == "export" {
				runBankExport(l, args[3], args[4])
			} else {
				runBankImport(l, args[3], args[4])
			}
			return
		case "search":
			if len(args) < 4 {
				fmt.Println("search requires <dir> and search text")
				usage()
				os.Exit(2)
			}
			runSearch(l, args[2], strings.Join(args[3:], " "))
			return
		}
	}

	usage()
}

func runGenerate(l *slog.Logger, dir, recipePath string, rest []string) {
	abs, _ := filepath.Abs(dir)
	data, err := os.ReadFile(recipePath)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	rec, perrs := question.ParseRecipe(string(data))
	if len(perrs) > 0 {
		for _, e := range perrs {
			fmt.Println("Error:", e)
		}
		os.Exit(1)
	}
	if len(rec.Specs) == 0 {
		fmt.Println("Error: recipe has no generator lines")
		os.Exit(1)
	}
	seed := time.Now().UnixNano()
	if len(rest) > 0 {
		seed, err = strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			fmt.Printf("seed %q must be an integer\n", rest[0])
			os.Exit(2)
		}
	}

	l.Info("generate", slog.String("root", abs), slog.String("recipe", recipePath), slog.Int64("seed", seed))
	h, err := storage.Open(abs)
	if err != nil {
		// No project yet: create one named after the recipe title.
		title := rec.Title
		if title == "" {
			title = filepath.Base(abs)
		}
		h, err = storage.InitProject(abs, *domain.NewWorksheet(slugID(filepath.Base(abs)), title))
		if err != nil {
			l.Error("init failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Created project at", abs)
	}
	ph = h

	qs, err := question.GenerateRecipe(rec, seed)
	if err != nil {
		l.Error("generate failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	for _, q := range qs {
		if _, err := storage.AddQuestion(h, q); err != nil {
			l.Error("add question failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	}
	h.Worksheet.Touch()
	if err := storage.Save(h); err != nil {
		l.Error("save failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := storage.SyncWorksheet(ctx, h.Root, h.Worksheet); err != nil {
		l.Warn("bank sync failed", slog.Any("err", err))
	}
	fmt.Printf("Generated %d question(s) with seed %d.\n", len(qs), seed)
}

func runExport(l *slog.Logger, dir, presetArg string) {
	preset := export.PresetName(strings.ToLower(presetArg))
	if preset != export.PresetWeb && preset != export.PresetPrint {
		fmt.Printf("unknown preset %q; use web or print\n", presetArg)
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(dir)
	l.Info("export", slog.String("root", abs), slog.String("preset", string(preset)))
	h, err := storage.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	ph = h
	if err := export.BatchExport(h, export.BatchOptions{Preset: preset}); err != nil {
		l.Error("export failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println("Exported to", filepath.Join(h.Root, "exports", string(preset)))
}

func runBankExport(l *slog.Logger, dir, outPath string) {
	abs, _ := filepath.Abs(dir)
	l.Info("bank export", slog.String("root", abs), slog.String("out", outPath))
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	entries, err := storage.ListBankQuestions(ctx, abs, 10000, 0)
	if err != nil {
		l.Error("bank list failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	rows := make([]backend.BankQuestion, 0, len(entries))
	for _, e := range entries {
		q, ok, err := storage.GetQuestion(ctx, abs, e.UID)
		if err != nil {
			l.Error("bank read failed", slog.String("uid", e.UID), slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		if !ok {
			continue
		}
		row := backend.BankQuestion{
			UID:        e.UID,
			Prompt:     q.Prompt,
			Answer:     q.Answer,
			Difficulty: q.Difficulty,
			Generator:  q.Generator,
			Seed:       q.Seed,
			Source:     e.Source,
			Tags:       q.Tags,
			UpdatedAt:  e.UpdatedAt,
		}
		if q.Figure != nil {
			if b, err := json.Marshal(q.Figure); err == nil {
				row.Figure = b
			}
		}
		rows = append(rows, row)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d bank question(s) to %s\n", len(rows), outPath)
}

func runBankImport(l *slog.Logger, dir, inPath string) {
	abs, _ := filepath.Abs(dir)
	l.Info("bank import", slog.String("root", abs), slog.String("in", inPath))
	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	var rows []backend.BankQuestion
	if err := json.Unmarshal(data, &rows); err != nil {
		fmt.Println("Error:", fmt.Errorf("parse bank file: %w", err))
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	added := 0
	for _, row := range rows {
		q := domain.Question{
			Prompt:     row.Prompt,
			Answer:     row.Answer,
			Difficulty: row.Difficulty,
			Tags:       row.Tags,
			Generator:  row.Generator,
			Seed:       row.Seed,
		}
		if len(row.Figure) > 0 {
			var f domain.Figure
			if err := json.Unmarshal(row.Figure, &f); err != nil {
				l.Warn("bad figure on import", slog.String("uid", row.UID), slog.Any("err", err))
			} else {
				q.Figure = &f
			}
		}
		if err := storage.PutQuestion(ctx, abs, row.UID, q, row.Source); err != nil {
			l.Error("bank put failed", slog.String("uid", row.UID), slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		added++
	}
	fmt.Printf("Imported %d bank question(s).\n", added)
}

func runSearch(l *slog.Logger, dir, text string) {
	abs, _ := filepath.Abs(dir)
	l.Info("search", slog.String("root", abs), slog.String("text", text))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	res, err := storage.SearchQuestions(ctx, abs, storage.SearchQuery{Text: text, Limit: 20})
	if err != nil {
		l.Error("search failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if len(res) == 0 {
		fmt.Println("No matches.")
		return
	}
	for _, r := range res {
		fmt.Printf("%-44s d%d  %s\n", r.UID, r.Difficulty, r.Snippet)
	}
}

// slugID turns a directory name into a worksheet id.
func slugID(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	id := strings.Trim(b.String(), "-")
	if id == "" {
		id = fmt.Sprintf("ws-%d", time.Now().Unix())
	}
	return id
}
