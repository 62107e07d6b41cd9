/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trisheet/internal/crash"
	"trisheet/internal/domain"
	"trisheet/internal/figure"
	applog "trisheet/internal/log"
	"trisheet/internal/storage"
	"trisheet/internal/styles"
	"trisheet/internal/ui"
	"trisheet/internal/version"
)

func usage() {
	fmt.Println("Trisheet - triangle worksheet studio")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  trisheet version|-v|--version        Show version")
	fmt.Println("  trisheet new <dir> <title>           Create a new worksheet project at <dir>")
	fmt.Println("  trisheet open <dir>                  Open the project at <dir> and print a summary")
	fmt.Println("  trisheet doctor <dir>                Check manifest, figures and question bank")
	fmt.Println("  trisheet ui [<dir>]                  Launch the desktop studio (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	// ph is assigned after the defer runs its statement, so recover must
	// happen here and the value be handed to crash.Handle.
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
			fmt.Println("Trisheet - triangle worksheet studio")
			fmt.Println(version.String())
			return
		case "new":
			if len(args) < 4 {
				fmt.Println("new requires <dir> and <title>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			title := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("new project", slog.String("root", abs), slog.String("title", title))
			ws := domain.NewWorksheet(slugID(filepath.Base(abs)), title)
			h, err := storage.InitProject(abs, *ws)
			if err != nil {
				l.Error("new failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			fmt.Println("Created project at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			abs, _ := filepath.Abs(dir)
			l.Info("open project", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			fmt.Printf("Opened worksheet: %s\n", h.Worksheet.Title)
			fmt.Printf("Questions: %d\n", len(h.Worksheet.Questions))
			fmt.Println("Root:", h.Root)
			return
		case "doctor":
			if len(args) < 3 {
				fmt.Println("doctor requires <dir>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			abs, _ := filepath.Abs(dir)
			l.Info("doctor", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("doctor open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			if n := runDoctor(h); n > 0 {
				fmt.Printf("%d problem(s) found.\n", n)
				os.Exit(1)
			}
			fmt.Println("No problems found.")
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

// runDoctor re-validates the manifest on disk, resolves every figure under
// the effective style and checks whether the question bank matches the
// manifest. One line per finding; returns the number of problems.
func runDoctor(h *storage.ProjectHandle) int {
	problems := 0

	raw, err := os.ReadFile(filepath.Join(h.Root, storage.ManifestFileName))
	if err != nil {
		fmt.Println("manifest:", err)
		problems++
	} else if err := storage.ValidateManifest(raw); err != nil {
		fmt.Println("manifest:", err)
		problems++
	} else {
		fmt.Println("manifest: ok")
	}

	overrides, err := styles.LoadDir(filepath.Join(h.Root, "styles"))
	if err != nil {
		fmt.Println("styles:", err)
		problems++
		overrides = nil
	}
	sheet := styles.NewStyleSheet().WithWorksheet(overrides)
	figures, bad := 0, 0
	for i := range h.Worksheet.Questions {
		q := &h.Worksheet.Questions[i]
		if q.Figure == nil {
			continue
		}
		figures++
		if _, err := figure.Resolve(q.Figure, sheet.Effective(&h.Worksheet, q)); err != nil {
			fmt.Printf("figure %s: %v\n", q.ID, err)
			bad++
		}
	}
	problems += bad
	if bad == 0 {
		fmt.Printf("figures: %d ok\n", figures)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	rebuilt, err := storage.DetectAndRebuildBank(ctx, h.Root, h.Worksheet)
	switch {
	case err != nil:
		fmt.Println("bank:", err)
		problems++
	case rebuilt:
		fmt.Println("bank: was stale, rebuilt")
	default:
		fmt.Println("bank: in sync")
	}
	return problems
}

// slugID turns a directory or title fragment into a worksheet id.
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
