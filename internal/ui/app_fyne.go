//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"log/slog"

	"trisheet/internal/backend"
	"trisheet/internal/config"
	"trisheet/internal/crash"
	"trisheet/internal/domain"
	"trisheet/internal/export"
	"trisheet/internal/figure"
	applog "trisheet/internal/log"
	"trisheet/internal/question"
	"trisheet/internal/storage"
	"trisheet/internal/styles"
	"trisheet/internal/undo"
	"trisheet/internal/version"
)

// Run starts the Fyne-based worksheet studio: question list on the left,
// live figure preview in the middle, prompt editor on the right.
func Run(projectDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	var ph *storage.ProjectHandle
	defer func() {
		if r := recover(); r != nil {
			crash.Handle(ph, r)
		}
	}()

	appCfg, bankToken, cfgErr := config.Load()
	if cfgErr != nil {
		l.Warn("load config failed, using defaults", slog.Any("err", cfgErr))
	}

	fyneApp := app.NewWithID("trisheet")
	w := fyneApp.NewWindow("Trisheet")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")

	// Edit history. Snapshots capture the whole worksheet manifest; the same
	// blob also goes to the bank's snapshots table for version history.
	undoMgr := undo.NewManager(undo.Config{
		MaxBytes:    16 * 1024 * 1024,
		MaxPerSheet: 30,
		MinInterval: 300 * time.Millisecond,
	})

	// Style cascade for previews, reloaded when a project opens.
	sheet := styles.NewStyleSheet()
	reloadStyles := func() {
		sheet = styles.NewStyleSheet()
		if ph == nil {
			return
		}
		dir := filepath.Join(ph.Root, "styles")
		if _, err := os.Stat(dir); err != nil {
			return
		}
		over, err := styles.LoadDir(dir)
		if err != nil {
			l.Warn("load project styles failed", slog.Any("err", err))
			return
		}
		sheet = sheet.WithWorksheet(over)
	}

	captureSnapshot := func() ([]byte, error) {
		if ph == nil {
			return nil, fmt.Errorf("no worksheet open")
		}
		return json.Marshal(ph.Worksheet)
	}

	// Assigned once the edit menu exists; keeps Undo/Redo enablement current.
	var refreshEditItems func()

	// pushUndo records the current state before a mutation.
	pushUndo := func(label string) {
		blob, err := captureSnapshot()
		if err != nil {
			return
		}
		now := time.Now()
		undoMgr.PushSnapshot(undo.Snapshot{SheetID: ph.Worksheet.ID, Blob: blob, TS: now})
		refreshEditItems()
		go func(h *storage.ProjectHandle) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := storage.SaveSnapshot(ctx, h, label, now); err != nil {
				l.Warn("persist snapshot failed", slog.Any("err", err))
			}
		}(ph)
	}

	// Question list (left)
	qDisplay := []string{}
	qIDs := []string{}
	selectedQ := -1
	questionFilter := ""
	questionList := widget.NewList(
		func() int { return len(qDisplay) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(qDisplay) {
				o.(*widget.Label).SetText(qDisplay[i])
			} else {
				o.(*widget.Label).SetText("")
			}
		},
	)
	filterEntry := widget.NewEntry()
	filterEntry.SetPlaceHolder("Filter questions (Ctrl+K)")

	// Figure preview (center)
	previewImg := canvas.NewImageFromImage(nil)
	previewImg.FillMode = canvas.ImageFillContain
	previewImg.SetMinSize(fyne.NewSize(420, 360))
	previewInfo := widget.NewLabel("")
	previewInfo.Wrapping = fyne.TextWrapWord

	// Editor (right)
	idEntry := widget.NewEntry()
	promptEntry := widget.NewMultiLineEntry()
	promptEntry.SetPlaceHolder("Question prompt")
	promptEntry.Wrapping = fyne.TextWrapWord
	answerEntry := widget.NewEntry()
	answerEntry.SetPlaceHolder("Answer (shown in the answer key)")
	difficultySelect := widget.NewSelect([]string{"", "1", "2", "3", "4", "5"}, nil)
	tagsEntry := widget.NewEntry()
	tagsEntry.SetPlaceHolder("Tags, comma separated")

	currentQuestion := func() *domain.Question {
		if ph == nil || selectedQ < 0 || selectedQ >= len(qIDs) {
			return nil
		}
		return ph.Worksheet.Question(qIDs[selectedQ])
	}

	refreshPreview := func() {
		q := currentQuestion()
		if q == nil || q.Figure == nil {
			previewImg.Image = nil
			previewImg.Refresh()
			if q == nil {
				previewInfo.SetText("")
			} else {
				previewInfo.SetText("No figure on this question.")
			}
			return
		}
		st := sheet.Effective(&ph.Worksheet, q)
		res, err := figure.Resolve(q.Figure, st)
		if err != nil {
			previewImg.Image = nil
			previewImg.Refresh()
			previewInfo.SetText("Figure error: " + err.Error())
			return
		}
		img, err := export.RenderFigure(res, export.RenderOptions{DPI: 150})
		if err != nil {
			previewImg.Image = nil
			previewImg.Refresh()
			previewInfo.SetText("Render error: " + err.Error())
			return
		}
		previewImg.Image = img
		previewImg.Refresh()
		a, b, c := res.Triangle.SideLengths()
		previewInfo.SetText(fmt.Sprintf("Sides a=%.2f b=%.2f c=%.2f, area %.2f", a, b, c, res.Triangle.Area()))
	}

	loadEditor := func() {
		q := currentQuestion()
		if q == nil {
			idEntry.SetText("")
			promptEntry.SetText("")
			answerEntry.SetText("")
			difficultySelect.SetSelected("")
			tagsEntry.SetText("")
			refreshPreview()
			return
		}
		idEntry.SetText(q.ID)
		promptEntry.SetText(q.Prompt)
		answerEntry.SetText(q.Answer)
		if q.Difficulty > 0 {
			difficultySelect.SetSelected(strconv.Itoa(q.Difficulty))
		} else {
			difficultySelect.SetSelected("")
		}
		tagsEntry.SetText(strings.Join(q.Tags, ", "))
		refreshPreview()
	}

	refreshQuestions := func() {
		qDisplay = qDisplay[:0]
		qIDs = qIDs[:0]
		if ph == nil {
			questionList.Refresh()
			loadEditor()
			return
		}
		for _, q := range ph.Worksheet.Questions {
			row := questionSummary(q)
			if questionFilter != "" && !strings.Contains(strings.ToLower(row), questionFilter) {
				continue
			}
			qIDs = append(qIDs, q.ID)
			qDisplay = append(qDisplay, row)
		}
		questionList.Refresh()
		if selectedQ >= len(qIDs) {
			selectedQ = len(qIDs) - 1
		}
		if selectedQ >= 0 {
			questionList.Select(selectedQ)
		}
		loadEditor()
	}
	questionList.OnSelected = func(id widget.ListItemID) {
		selectedQ = int(id)
		loadEditor()
	}
	filterEntry.OnChanged = func(s string) {
		questionFilter = strings.ToLower(strings.TrimSpace(s))
		refreshQuestions()
	}

	// saveSheet persists the manifest and mirrors the worksheet into the
	// local question bank in the background.
	saveSheet := func() error {
		if ph == nil {
			return fmt.Errorf("no worksheet open")
		}
		ph.Worksheet.Touch()
		if err := storage.Save(ph); err != nil {
			return err
		}
		go func(h *storage.ProjectHandle, ws domain.Worksheet) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := storage.SyncWorksheet(ctx, h.Root, ws); err != nil {
				l.Warn("bank sync failed", slog.Any("err", err))
			}
		}(ph, ph.Worksheet)
		return nil
	}

	applyEdits := func() {
		q := currentQuestion()
		if q == nil {
			return
		}
		pushUndo("edit " + q.ID)
		if err := storage.UpdateQuestionMeta(ph, q.ID, strings.TrimSpace(idEntry.Text), promptEntry.Text, answerEntry.Text); err != nil {
			dialog.ShowError(err, w)
			return
		}
		if d, err := strconv.Atoi(difficultySelect.Selected); err == nil {
			q.Difficulty = d
		} else {
			q.Difficulty = 0
		}
		q.Tags = splitTagsCSV(tagsEntry.Text)
		if err := saveSheet(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		refreshQuestions()
		status.SetText("Question updated.")
	}
	applyBtn := widget.NewButton("Apply", applyEdits)

	regenerateSelected := func() {
		q := currentQuestion()
		if q == nil {
			dialog.ShowInformation("Regenerate", "Select a question first.", w)
			return
		}
		nq, err := question.Regenerate(*q, time.Now().UnixNano())
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		pushUndo("regenerate " + q.ID)
		*q = nq
		if err := saveSheet(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		refreshQuestions()
		status.SetText("Regenerated " + q.ID + " with a fresh seed.")
	}
	regenBtn := widget.NewButton("Regenerate", regenerateSelected)

	moveQuestion := func(delta int) {
		q := currentQuestion()
		if q == nil {
			return
		}
		pushUndo("move " + q.ID)
		if err := storage.MoveQuestion(ph, q.ID, delta); err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := saveSheet(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		selectedQ += delta
		if selectedQ < 0 {
			selectedQ = 0
		}
		if selectedQ >= len(qIDs) {
			selectedQ = len(qIDs) - 1
		}
		refreshQuestions()
	}
	btnUp := widget.NewButton("Up", func() { moveQuestion(-1) })
	btnDown := widget.NewButton("Down", func() { moveQuestion(+1) })

	deleteSelected := func() {
		q := currentQuestion()
		if q == nil {
			return
		}
		id := q.ID
		confirm := dialog.NewConfirm("Delete Question", fmt.Sprintf("Delete %s? You can Undo this action.", id), func(ok bool) {
			if !ok {
				return
			}
			pushUndo("delete " + id)
			if _, err := storage.RemoveQuestion(ph, id); err != nil {
				dialog.ShowError(err, w)
				return
			}
			if err := saveSheet(); err != nil {
				dialog.ShowError(err, w)
				return
			}
			if selectedQ >= len(ph.Worksheet.Questions) {
				selectedQ = len(ph.Worksheet.Questions) - 1
			}
			refreshQuestions()
			status.SetText("Deleted " + id)
		}, w)
		confirm.SetConfirmText("Delete")
		confirm.SetDismissText("Cancel")
		confirm.Show()
	}
	btnDelete := widget.NewButton("Delete", deleteSelected)

	left := container.NewBorder(
		container.NewVBox(widget.NewLabel("Questions"), filterEntry),
		container.NewHBox(btnUp, btnDown, btnDelete),
		nil, nil,
		questionList,
	)
	center := container.NewBorder(nil, previewInfo, nil, nil, previewImg)
	right := container.NewVBox(
		widget.NewLabel("Question"),
		widget.NewForm(
			widget.NewFormItem("ID", idEntry),
			widget.NewFormItem("Difficulty", difficultySelect),
			widget.NewFormItem("Tags", tagsEntry),
		),
		widget.NewLabel("Prompt"),
		promptEntry,
		widget.NewLabel("Answer"),
		answerEntry,
		container.NewHBox(applyBtn, regenBtn),
	)
	editorContent := container.NewBorder(nil, status, left, right, center)
	root := container.NewMax(editorContent)
	w.SetContent(root)

	// Forward declarations for view switchers used in callbacks defined below
	var showEditor func()
	var showDashboard func()

	// afterOpen wires up the UI state once a project handle is live.
	var closeProjItem *fyne.MenuItem
	afterOpen := func() {
		w.SetTitle(fmt.Sprintf("Trisheet: %s", ph.Worksheet.Title))
		reloadStyles()
		selectedQ = -1
		if len(ph.Worksheet.Questions) > 0 {
			selectedQ = 0
		}
		refreshQuestions()
		closeProjItem.Disabled = false
		refreshEditItems()
		addRecentProject(prefs, ph.Root)
		go func(h *storage.ProjectHandle, ws domain.Worksheet) {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			if rebuilt, err := storage.DetectAndRebuildBank(ctx, h.Root, ws); err != nil {
				l.Warn("bank check failed", slog.Any("err", err))
			} else if rebuilt {
				l.Info("question bank rebuilt after corruption")
			}
		}(ph, ph.Worksheet)
		showEditor()
	}

	// Build menus
	newItem := fyne.NewMenuItem("New…", func() {
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				l.Error("new dialog error", slog.Any("err", err))
				return
			}
			if uri == nil {
				return
			}
			abs := uri.Path()
			titleEntry := widget.NewEntry()
			titleEntry.SetPlaceHolder("Worksheet Title")
			subjectEntry := widget.NewEntry()
			subjectEntry.SetPlaceHolder("e.g. Geometry")
			form := dialog.NewForm("New Worksheet", "Create", "Cancel", []*widget.FormItem{
				widget.NewFormItem("Title", titleEntry),
				widget.NewFormItem("Subject", subjectEntry),
			}, func(ok bool) {
				if !ok {
					return
				}
				title := strings.TrimSpace(titleEntry.Text)
				if title == "" {
					dialog.ShowInformation("New Worksheet", "Please enter a title.", w)
					return
				}
				ws := domain.NewWorksheet(worksheetIDFromTitle(title), title)
				ws.Subject = strings.TrimSpace(subjectEntry.Text)
				h, ierr := storage.InitProject(abs, *ws)
				if ierr != nil {
					l.Error("init project failed", slog.Any("err", ierr))
					dialog.ShowError(ierr, w)
					return
				}
				ph = h
				status.SetText("Created worksheet project: " + abs)
				afterOpen()
			}, w)
			form.Show()
		}, w)
		fd.Show()
	})

	openItem := fyne.NewMenuItem("Open…", func() {
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				l.Error("open dialog error", slog.Any("err", err))
				return
			}
			if uri == nil {
				return
			}
			abs := uri.Path()
			if err := openProject(abs, &ph, l, status); err != nil {
				dialog.ShowError(err, w)
				return
			}
			afterOpen()
		}, w)
		fd.Show()
	})

	saveItem := fyne.NewMenuItem("Save", func() {
		if ph == nil {
			dialog.ShowInformation("Save", "No worksheet open.", w)
			return
		}
		if err := saveSheet(); err != nil {
			l.Error("save failed", slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved worksheet.")
	})

	importQuestionsItem := fyne.NewMenuItem("Import Questions…", func() {
		if ph == nil {
			dialog.ShowInformation("Import Questions", "No worksheet open.", w)
			return
		}
		open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if ur == nil {
				return
			}
			path := ur.URI().Path()
			_ = ur.Close()
			pushUndo("import questions")
			n, ierr := storage.ImportQuestions(ph, path)
			if ierr != nil {
				dialog.ShowError(ierr, w)
				return
			}
			if err := saveSheet(); err != nil {
				dialog.ShowError(err, w)
				return
			}
			refreshQuestions()
			dialog.ShowInformation("Import Questions", fmt.Sprintf("Imported %d questions.", n), w)
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		open.Show()
	})

	importStylesItem := fyne.NewMenuItem("Import Style Pack…", func() {
		if ph == nil {
			dialog.ShowInformation("Import Style Pack", "No worksheet open.", w)
			return
		}
		open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if ur == nil {
				return
			}
			path := ur.URI().Path()
			_ = ur.Close()
			installed, ierr := styles.InstallPack(ph.Root, path)
			if ierr != nil {
				dialog.ShowError(ierr, w)
				return
			}
			reloadStyles()
			refreshPreview()
			dialog.ShowInformation("Import Style Pack", fmt.Sprintf("Installed %d files into styles/", installed), w)
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		open.Show()
	})
	exportStylesItem := fyne.NewMenuItem("Export Styles as Pack…", func() {
		if ph == nil {
			dialog.ShowInformation("Export Style Pack", "No worksheet open.", w)
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
				outPath += ".zip"
			}
			if err := styles.ExportPack(ph.Root, outPath); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export Style Pack", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("styles-pack.zip")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		save.Show()
	})

	closeProjItem = fyne.NewMenuItem("Close Project", func() {
		if ph == nil {
			return
		}
		undoMgr.ClearSheet(ph.Worksheet.ID)
		ph = nil
		w.SetTitle("Trisheet")
		selectedQ = -1
		refreshQuestions()
		closeProjItem.Disabled = true
		refreshEditItems()
		status.SetText("Project closed.")
		showDashboard()
	})
	closeProjItem.Disabled = true

	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierControl}
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}
	closeProjItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}

	fileMenu := fyne.NewMenu("File",
		newItem, openItem, saveItem,
		fyne.NewMenuItemSeparator(),
		importQuestionsItem, importStylesItem, exportStylesItem,
		fyne.NewMenuItemSeparator(),
		closeProjItem,
	)

	// Edit menu
	applySnapshot := func(blob []byte) error {
		var ws domain.Worksheet
		if err := json.Unmarshal(blob, &ws); err != nil {
			return err
		}
		ph.Worksheet = ws
		if err := saveSheet(); err != nil {
			return err
		}
		refreshQuestions()
		return nil
	}
	undoMenuItem := fyne.NewMenuItem("Undo", func() {
		if ph == nil {
			dialog.ShowInformation("Undo", "No worksheet open.", w)
			return
		}
		live, err := captureSnapshot()
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if s, ok := undoMgr.Undo(ph.Worksheet.ID, live); ok {
			if err := applySnapshot(s.Blob); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Undid last change.")
		} else {
			dialog.ShowInformation("Undo", "Nothing to undo.", w)
		}
		refreshEditItems()
	})
	redoMenuItem := fyne.NewMenuItem("Redo", func() {
		if ph == nil {
			dialog.ShowInformation("Redo", "No worksheet open.", w)
			return
		}
		live, err := captureSnapshot()
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if s, ok := undoMgr.Redo(ph.Worksheet.ID, live); ok {
			if err := applySnapshot(s.Blob); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Redid last change.")
		} else {
			dialog.ShowInformation("Redo", "Nothing to redo.", w)
		}
		refreshEditItems()
	})
	undoMenuItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}
	redoMenuItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}
	refreshEditItems = func() {
		if ph == nil {
			undoMenuItem.Disabled = true
			redoMenuItem.Disabled = true
			return
		}
		ud, rd := undoMgr.Depths(ph.Worksheet.ID)
		undoMenuItem.Disabled = ud == 0
		redoMenuItem.Disabled = rd == 0
	}
	refreshEditItems()

	addQuestionItem := fyne.NewMenuItem("Add Question…", func() {
		if ph == nil {
			dialog.ShowInformation("Add Question", "No worksheet open.", w)
			return
		}
		pEntry := widget.NewMultiLineEntry()
		pEntry.SetPlaceHolder("Prompt")
		aEntry := widget.NewEntry()
		aEntry.SetPlaceHolder("Answer")
		form := dialog.NewForm("Add Question", "Add", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Prompt", pEntry),
			widget.NewFormItem("Answer", aEntry),
		}, func(ok bool) {
			if !ok {
				return
			}
			pushUndo("add question")
			q, err := storage.AddQuestion(ph, domain.Question{Prompt: pEntry.Text, Answer: aEntry.Text})
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if err := saveSheet(); err != nil {
				dialog.ShowError(err, w)
				return
			}
			selectedQ = len(ph.Worksheet.Questions) - 1
			refreshQuestions()
			status.SetText("Added " + q.ID)
		}, w)
		form.Resize(fyne.NewSize(500, 300))
		form.Show()
	})

	generateItem := fyne.NewMenuItem("Generate Questions…", func() {
		if ph == nil {
			dialog.ShowInformation("Generate", "No worksheet open.", w)
			return
		}
		genSelect := widget.NewSelect(question.Names(), nil)
		if names := question.Names(); len(names) > 0 {
			genSelect.SetSelected(names[0])
		}
		countEntry := widget.NewEntry()
		countEntry.SetText("3")
		diffSelect := widget.NewSelect([]string{"", "1", "2", "3", "4", "5"}, nil)
		optsEntry := widget.NewEntry()
		optsEntry.SetPlaceHolder("mode=sas, unit=cm")
		form := dialog.NewForm("Generate Questions", "Generate", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Generator", genSelect),
			widget.NewFormItem("Count", countEntry),
			widget.NewFormItem("Difficulty", diffSelect),
			widget.NewFormItem("Options", optsEntry),
		}, func(ok bool) {
			if !ok {
				return
			}
			count, err := strconv.Atoi(strings.TrimSpace(countEntry.Text))
			if err != nil || count < 1 {
				dialog.ShowError(fmt.Errorf("count must be a positive integer"), w)
				return
			}
			diff := 0
			if d, err := strconv.Atoi(diffSelect.Selected); err == nil {
				diff = d
			}
			spec := question.GenSpec{
				Generator:  genSelect.Selected,
				Count:      count,
				Difficulty: diff,
				Options:    parseOptionsCSV(optsEntry.Text),
			}
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			qs, err := question.Generate(spec, rng)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			pushUndo("generate " + spec.Generator)
			for _, q := range qs {
				if _, err := storage.AddQuestion(ph, q); err != nil {
					dialog.ShowError(err, w)
					return
				}
			}
			if err := saveSheet(); err != nil {
				dialog.ShowError(err, w)
				return
			}
			selectedQ = len(ph.Worksheet.Questions) - 1
			refreshQuestions()
			status.SetText(fmt.Sprintf("Generated %d questions.", len(qs)))
		}, w)
		form.Resize(fyne.NewSize(480, 280))
		form.Show()
	})

	regenItem := fyne.NewMenuItem("Regenerate Selected", regenerateSelected)
	regenItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierControl}
	deleteItem := fyne.NewMenuItem("Delete Selected…", deleteSelected)

	editMenu := fyne.NewMenu("Edit",
		undoMenuItem, redoMenuItem,
		fyne.NewMenuItemSeparator(),
		addQuestionItem, generateItem, regenItem, deleteItem,
	)

	// Worksheet menu
	pageSetupItem := fyne.NewMenuItem("Page Setup…", func() {
		if ph == nil {
			dialog.ShowInformation("Page Setup", "No worksheet open.", w)
			return
		}
		showPageSetupDialog(w, ph, func(np domain.PageSetup) {
			pushUndo("page setup")
			ph.Worksheet.Page = np
			if err := saveSheet(); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Page setup updated.")
		})
	})

	propsItem := fyne.NewMenuItem("Properties…", func() {
		if ph == nil {
			dialog.ShowInformation("Properties", "No worksheet open.", w)
			return
		}
		titleEntry := widget.NewEntry()
		titleEntry.SetText(ph.Worksheet.Title)
		subjectEntry := widget.NewEntry()
		subjectEntry.SetText(ph.Worksheet.Subject)
		levelEntry := widget.NewEntry()
		levelEntry.SetText(ph.Worksheet.Level)
		form := dialog.NewForm("Worksheet Properties", "Save", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Title", titleEntry),
			widget.NewFormItem("Subject", subjectEntry),
			widget.NewFormItem("Level", levelEntry),
		}, func(ok bool) {
			if !ok {
				return
			}
			pushUndo("properties")
			ph.Worksheet.Title = strings.TrimSpace(titleEntry.Text)
			ph.Worksheet.Subject = strings.TrimSpace(subjectEntry.Text)
			ph.Worksheet.Level = strings.TrimSpace(levelEntry.Text)
			if err := saveSheet(); err != nil {
				dialog.ShowError(err, w)
				return
			}
			w.SetTitle(fmt.Sprintf("Trisheet: %s", ph.Worksheet.Title))
			status.SetText("Properties updated.")
		}, w)
		form.Show()
	})

	snapshotsItem := fyne.NewMenuItem("Snapshots…", func() {
		if ph == nil {
			dialog.ShowInformation("Snapshots", "No worksheet open.", w)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		infos, err := storage.ListSnapshots(ctx, ph, 50)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if len(infos) == 0 {
			dialog.ShowInformation("Snapshots", "No snapshots recorded yet.", w)
			return
		}
		items := make([]string, len(infos))
		for i, info := range infos {
			lbl := info.Label
			if lbl == "" {
				lbl = "(no label)"
			}
			items[i] = fmt.Sprintf("%s · %s · %d bytes", info.TS.Local().Format("2006-01-02 15:04:05"), lbl, info.Size)
		}
		list := widget.NewList(
			func() int { return len(items) },
			func() fyne.CanvasObject { return widget.NewLabel("") },
			func(i widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(items[i]) },
		)
		var d dialog.Dialog
		list.OnSelected = func(id widget.ListItemID) {
			if id < 0 || int(id) >= len(infos) {
				return
			}
			info := infos[id]
			confirm := dialog.NewConfirm("Restore Snapshot", "Replace the current worksheet with this snapshot?", func(ok bool) {
				if !ok {
					return
				}
				pushUndo("restore snapshot")
				rctx, rcancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer rcancel()
				if err := storage.RestoreSnapshot(rctx, ph, info.ID); err != nil {
					dialog.ShowError(err, w)
					return
				}
				if err := saveSheet(); err != nil {
					dialog.ShowError(err, w)
					return
				}
				refreshQuestions()
				status.SetText("Snapshot restored.")
				if d != nil {
					d.Hide()
				}
			}, w)
			confirm.Show()
		}
		d = dialog.NewCustom("Snapshots", "Close", container.NewMax(list), w)
		d.Resize(fyne.NewSize(560, 400))
		d.Show()
	})

	rebuildBankItem := fyne.NewMenuItem("Rebuild Question Bank", func() {
		if ph == nil {
			dialog.ShowInformation("Rebuild Bank", "No worksheet open.", w)
			return
		}
		status.SetText("Rebuilding bank…")
		go func(h *storage.ProjectHandle, ws domain.Worksheet) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			err := storage.RebuildBank(ctx, h.Root, ws)
			fyne.Do(func() {
				if err != nil {
					l.Error("rebuild bank failed", slog.Any("err", err))
					dialog.ShowError(err, w)
					status.SetText("Rebuild failed.")
					return
				}
				status.SetText("Question bank rebuilt.")
			})
		}(ph, ph.Worksheet)
	})

	worksheetMenu := fyne.NewMenu("Worksheet", pageSetupItem, propsItem, fyne.NewMenuItemSeparator(), snapshotsItem, rebuildBankItem)

	// Export menu
	exportPDFItem := fyne.NewMenuItem("Worksheet as PDF…", func() {
		if ph == nil {
			dialog.ShowInformation("Export PDF", "No worksheet open.", w)
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := export.ExportWorksheetPDF(ph, outPath, export.PDFOptions{IncludeAnswerKey: appCfg.Export.AnswerKey}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export PDF", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("worksheet.pdf")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".pdf"}))
		save.Show()
	})
	exportPNGItem := fyne.NewMenuItem("Worksheet as PNG pages…", func() {
		if ph == nil {
			dialog.ShowInformation("Export PNG", "No worksheet open.", w)
			return
		}
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uri == nil {
				return
			}
			outDir := uri.Path()
			if err := export.ExportWorksheetPNGPages(ph, outDir, export.PNGOptions{}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export PNG", "Exported pages to "+outDir, w)
		}, w)
		fd.Show()
	})
	exportTeXItem := fyne.NewMenuItem("Worksheet as LaTeX…", func() {
		if ph == nil {
			dialog.ShowInformation("Export LaTeX", "No worksheet open.", w)
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := export.ExportWorksheetTeX(ph, outPath, export.TeXOptions{IncludeAnswerKey: appCfg.Export.AnswerKey}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export LaTeX", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("worksheet.tex")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".tex"}))
		save.Show()
	})
	exportHTMLItem := fyne.NewMenuItem("Worksheet as HTML…", func() {
		if ph == nil {
			dialog.ShowInformation("Export HTML", "No worksheet open.", w)
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := export.ExportWorksheetHTML(ph, outPath, export.HTMLOptions{}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export HTML", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("worksheet.html")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".html"}))
		save.Show()
	})
	exportBundleItem := fyne.NewMenuItem("Worksheet Bundle (zip)…", func() {
		if ph == nil {
			dialog.ShowInformation("Export Bundle", "No worksheet open.", w)
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if err := export.ExportBundle(ph, outPath, export.BundleOptions{IncludeAnswerKey: appCfg.Export.AnswerKey}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export Bundle", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("worksheet-bundle.zip")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		save.Show()
	})
	runPreset := func(p export.PresetName) {
		if ph == nil {
			dialog.ShowInformation("Export Preset", "No worksheet open.", w)
			return
		}
		status.SetText("Exporting " + string(p) + " preset…")
		go func(h *storage.ProjectHandle) {
			err := export.BatchExport(h, export.BatchOptions{Preset: p})
			fyne.Do(func() {
				if err != nil {
					l.Error("preset export failed", slog.Any("err", err))
					dialog.ShowError(err, w)
					status.SetText("Export failed.")
					return
				}
				out := filepath.Join(h.Root, "exports", string(p))
				status.SetText("Exported to " + out)
				dialog.ShowInformation("Export Preset", "Exported to "+out, w)
			})
		}(ph)
	}
	presetPrintItem := fyne.NewMenuItem("Print Preset (PDF + LaTeX)", func() { runPreset(export.PresetPrint) })
	presetWebItem := fyne.NewMenuItem("Web Preset (HTML + PNG)", func() { runPreset(export.PresetWeb) })

	exportMenu := fyne.NewMenu("Export",
		exportPDFItem, exportPNGItem, exportTeXItem, exportHTMLItem, exportBundleItem,
		fyne.NewMenuItemSeparator(),
		presetPrintItem, presetWebItem,
	)

	// Bank menu: local SQLite bank plus the shared Postgres-backed service.
	searchLocalItem := fyne.NewMenuItem("Search Question Bank…", func() {
		if ph == nil {
			dialog.ShowInformation("Search", "No worksheet open.", w)
			return
		}
		qEntry := widget.NewEntry()
		qEntry.SetPlaceHolder("Search terms")
		tagEntry := widget.NewEntry()
		tagEntry.SetPlaceHolder("Tags, comma separated")
		form := dialog.NewForm("Search Question Bank", "Search", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Query", qEntry),
			widget.NewFormItem("Tags", tagEntry),
		}, func(ok bool) {
			if !ok {
				return
			}
			sq := storage.SearchQuery{
				Text:  strings.TrimSpace(qEntry.Text),
				Tags:  splitTagsCSV(tagEntry.Text),
				Limit: 100,
			}
			status.SetText("Searching…")
			go func(h *storage.ProjectHandle) {
				ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
				defer cancel()
				res, err := storage.SearchQuestions(ctx, h.Root, sq)
				fyne.Do(func() {
					if err != nil {
						l.Error("bank search failed", slog.Any("err", err))
						dialog.ShowError(err, w)
						status.SetText("Search failed.")
						return
					}
					status.SetText(fmt.Sprintf("%d results", len(res)))
					showBankResults(w, res, func(uid string) {
						gctx, gcancel := context.WithTimeout(context.Background(), 10*time.Second)
						defer gcancel()
						q, found, gerr := storage.GetQuestion(gctx, h.Root, uid)
						if gerr != nil || !found {
							dialog.ShowError(fmt.Errorf("load %s: %v", uid, gerr), w)
							return
						}
						pushUndo("insert from bank")
						q.ID = "" // a fresh sheet-local id is assigned
						added, aerr := storage.AddQuestion(ph, q)
						if aerr != nil {
							dialog.ShowError(aerr, w)
							return
						}
						if err := saveSheet(); err != nil {
							dialog.ShowError(err, w)
							return
						}
						selectedQ = len(ph.Worksheet.Questions) - 1
						refreshQuestions()
						status.SetText("Inserted " + added.ID + " from the bank.")
					})
				})
			}(ph)
		}, w)
		form.Resize(fyne.NewSize(480, 200))
		form.Show()
	})

	signInItem := fyne.NewMenuItem("Sign In to Shared Bank…", func() {
		subjectEntry := widget.NewEntry()
		subjectEntry.SetPlaceHolder("Your account name")
		form := dialog.NewForm("Sign In", "Sign In", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Account", subjectEntry),
		}, func(ok bool) {
			if !ok {
				return
			}
			subject := strings.TrimSpace(subjectEntry.Text)
			status.SetText("Signing in…")
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				c := backend.NewClient(appCfg.Backend.BaseURL, "")
				tok, exp, err := c.Login(ctx, subject, 12*time.Hour)
				fyne.Do(func() {
					if err != nil {
						l.Error("sign in failed", slog.Any("err", err))
						dialog.ShowError(err, w)
						status.SetText("Sign in failed.")
						return
					}
					bankToken = tok
					if err := config.Save(appCfg, tok); err != nil {
						l.Warn("store token failed", slog.Any("err", err))
					}
					status.SetText("Signed in until " + exp.Local().Format("15:04"))
				})
			}()
		}, w)
		form.Show()
	})

	searchSharedItem := fyne.NewMenuItem("Search Shared Bank…", func() {
		if ph == nil {
			dialog.ShowInformation("Shared Bank", "No worksheet open.", w)
			return
		}
		if bankToken == "" {
			dialog.ShowInformation("Shared Bank", "Sign in first (Bank menu).", w)
			return
		}
		bankEntry := widget.NewEntry()
		bankEntry.SetPlaceHolder("Bank ID (number)")
		qEntry := widget.NewEntry()
		qEntry.SetPlaceHolder("Search terms")
		form := dialog.NewForm("Search Shared Bank", "Search", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Bank", bankEntry),
			widget.NewFormItem("Query", qEntry),
		}, func(ok bool) {
			if !ok {
				return
			}
			bankID, err := strconv.ParseInt(strings.TrimSpace(bankEntry.Text), 10, 64)
			if err != nil {
				dialog.ShowError(fmt.Errorf("bank id must be a number"), w)
				return
			}
			sq := storage.SearchQuery{Text: strings.TrimSpace(qEntry.Text), Limit: 100}
			status.SetText("Searching shared bank…")
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
				defer cancel()
				c := backend.NewClient(appCfg.Backend.BaseURL, bankToken)
				res, err := c.SearchBank(ctx, bankID, sq)
				fyne.Do(func() {
					if err != nil {
						l.Error("shared search failed", slog.Any("err", err))
						dialog.ShowError(err, w)
						status.SetText("Search failed.")
						return
					}
					status.SetText(fmt.Sprintf("%d shared results", len(res)))
					showBankResults(w, res, nil)
				})
			}()
		}, w)
		form.Show()
	})

	pushSharedItem := fyne.NewMenuItem("Push Worksheet to Shared Bank…", func() {
		if ph == nil {
			dialog.ShowInformation("Shared Bank", "No worksheet open.", w)
			return
		}
		if bankToken == "" {
			dialog.ShowInformation("Shared Bank", "Sign in first (Bank menu).", w)
			return
		}
		if len(ph.Worksheet.Questions) == 0 {
			dialog.ShowInformation("Shared Bank", "The worksheet has no questions.", w)
			return
		}
		bankEntry := widget.NewEntry()
		bankEntry.SetPlaceHolder("Bank ID (number)")
		form := dialog.NewForm("Push to Shared Bank", "Push", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Bank", bankEntry),
		}, func(ok bool) {
			if !ok {
				return
			}
			bankID, err := strconv.ParseInt(strings.TrimSpace(bankEntry.Text), 10, 64)
			if err != nil {
				dialog.ShowError(fmt.Errorf("bank id must be a number"), w)
				return
			}
			qs := bankQuestionsFromWorksheet(ph.Worksheet)
			status.SetText(fmt.Sprintf("Pushing %d questions…", len(qs)))
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				c := backend.NewClient(appCfg.Backend.BaseURL, bankToken)
				ver, err := c.PushQuestions(ctx, bankID, qs)
				fyne.Do(func() {
					if err != nil {
						l.Error("push failed", slog.Any("err", err))
						dialog.ShowError(err, w)
						status.SetText("Push failed.")
						return
					}
					status.SetText(fmt.Sprintf("Pushed %d questions, bank version %d.", len(qs), ver))
				})
			}()
		}, w)
		form.Show()
	})

	bankMenu := fyne.NewMenu("Bank", searchLocalItem, fyne.NewMenuItemSeparator(), signInItem, searchSharedItem, pushSharedItem)

	aboutItem := fyne.NewMenuItem("About Trisheet", func() {
		exe, _ := os.Executable()
		info := fmt.Sprintf("Trisheet\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe)
		dialog.ShowInformation("About", info, w)
	})
	aboutMenu := fyne.NewMenu("About", aboutItem)

	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, worksheetMenu, exportMenu, bankMenu, aboutMenu))

	// Shortcut: focus the question filter with Ctrl+K
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyK, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		w.Canvas().Focus(filterEntry)
	})

	// Dashboard with recent projects
	showEditor = func() {
		root.Objects = []fyne.CanvasObject{editorContent}
		root.Refresh()
	}
	var dashboard fyne.CanvasObject
	buildDashboard := func() fyne.CanvasObject {
		title := widget.NewLabel("Trisheet Worksheet Studio")
		title.TextStyle = fyne.TextStyle{Bold: true}
		newBtn := widget.NewButton("New Worksheet…", func() { newItem.Action() })
		openBtn := widget.NewButton("Open Worksheet…", func() { openItem.Action() })
		recent := loadRecentProjects(prefs)
		recList := widget.NewList(
			func() int { return len(recent) },
			func() fyne.CanvasObject { return widget.NewLabel("") },
			func(i widget.ListItemID, o fyne.CanvasObject) {
				if i >= 0 && int(i) < len(recent) {
					o.(*widget.Label).SetText(recent[i])
				} else {
					o.(*widget.Label).SetText("")
				}
			},
		)
		recList.OnSelected = func(id widget.ListItemID) {
			if id < 0 || int(id) >= len(recent) {
				return
			}
			path := recent[id]
			if err := openProject(path, &ph, l, status); err != nil {
				dialog.ShowError(err, w)
				return
			}
			afterOpen()
		}
		header := widget.NewLabel("Recent Worksheets")
		return container.NewBorder(
			container.NewVBox(title, widget.NewSeparator(), container.NewHBox(newBtn, openBtn)),
			nil, nil, nil,
			container.NewBorder(header, nil, nil, nil, recList),
		)
	}
	showDashboard = func() {
		if dashboard == nil {
			dashboard = buildDashboard()
		}
		root.Objects = []fyne.CanvasObject{dashboard}
		root.Refresh()
	}

	// Persist preferences on close
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	// Try to open a project if provided
	if projectDir != "" {
		if err := openProject(projectDir, &ph, l, status); err != nil {
			l.Error("auto-open project failed", slog.Any("err", err))
		} else {
			afterOpen()
		}
	}
	if ph == nil {
		showDashboard()
	}

	w.ShowAndRun()
	return nil
}

// openProject opens the worksheet at dir and stores the handle.
func openProject(dir string, ph **storage.ProjectHandle, l *slog.Logger, status *widget.Label) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	h, err := storage.Open(abs)
	if err != nil {
		return fmt.Errorf("open worksheet: %w", err)
	}
	*ph = h
	l.Info("worksheet opened", slog.String("root", abs), slog.String("title", h.Worksheet.Title))
	status.SetText("Opened " + h.Worksheet.Title)
	return nil
}

// showPageSetupDialog edits the page geometry. The collected setup goes to
// apply, which decides how to store it.
func showPageSetupDialog(w fyne.Window, ph *storage.ProjectHandle, apply func(domain.PageSetup)) {
	p := ph.Worksheet.Page
	sizeSelect := widget.NewSelect([]string{"A4 portrait", "A4 landscape", "Letter portrait"}, nil)
	switch {
	case p.Width == 612 && p.Height == 792:
		sizeSelect.SetSelected("Letter portrait")
	case p.Width > p.Height:
		sizeSelect.SetSelected("A4 landscape")
	default:
		sizeSelect.SetSelected("A4 portrait")
	}
	marginEntry := widget.NewEntry()
	marginEntry.SetText(strconv.FormatFloat(p.Margin, 'f', -1, 64))
	columnsSelect := widget.NewSelect([]string{"1", "2"}, nil)
	columnsSelect.SetSelected(strconv.Itoa(p.Columns))
	form := dialog.NewForm("Page Setup", "Save", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Paper", sizeSelect),
		widget.NewFormItem("Margin (pt)", marginEntry),
		widget.NewFormItem("Columns", columnsSelect),
	}, func(ok bool) {
		if !ok {
			return
		}
		np := p
		switch sizeSelect.Selected {
		case "A4 landscape":
			np.Width, np.Height = 841.89, 595.28
		case "Letter portrait":
			np.Width, np.Height = 612, 792
		default:
			np.Width, np.Height = 595.28, 841.89
		}
		if m, err := strconv.ParseFloat(strings.TrimSpace(marginEntry.Text), 64); err == nil && m >= 0 {
			np.Margin = m
		}
		if c, err := strconv.Atoi(columnsSelect.Selected); err == nil {
			np.Columns = c
		}
		apply(np)
	}, w)
	form.Show()
}

// showBankResults lists search hits. If onInsert is non-nil each selected hit
// offers to copy the question into the open worksheet.
func showBankResults(w fyne.Window, res []storage.SearchResult, onInsert func(uid string)) {
	items := make([]string, len(res))
	for i, r := range res {
		sn := strings.TrimSpace(r.Snippet)
		if sn == "" {
			sn = r.Prompt
		}
		items[i] = fmt.Sprintf("d%d · %s · %s", r.Difficulty, r.UID, truncate(sn, 100))
	}
	list := widget.NewList(
		func() int { return len(items) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(items[i]) },
	)
	var d dialog.Dialog
	if onInsert != nil {
		list.OnSelected = func(id widget.ListItemID) {
			if id < 0 || int(id) >= len(res) {
				return
			}
			uid := res[id].UID
			confirm := dialog.NewConfirm("Insert Question", "Copy "+uid+" into the worksheet?", func(ok bool) {
				if !ok {
					return
				}
				onInsert(uid)
				if d != nil {
					d.Hide()
				}
			}, w)
			confirm.Show()
		}
	}
	d = dialog.NewCustom("Bank Results", "Close", container.NewMax(list), w)
	d.Resize(fyne.NewSize(700, 400))
	d.Show()
}

// bankQuestionsFromWorksheet converts worksheet questions to the push wire
// form. UIDs are stable per worksheet and question id.
func bankQuestionsFromWorksheet(ws domain.Worksheet) []backend.BankQuestion {
	out := make([]backend.BankQuestion, 0, len(ws.Questions))
	for _, q := range ws.Questions {
		bq := backend.BankQuestion{
			UID:        storage.QuestionUID(ws.ID, q.ID),
			Prompt:     q.Prompt,
			Answer:     q.Answer,
			Difficulty: q.Difficulty,
			Generator:  q.Generator,
			Seed:       q.Seed,
			Source:     ws.ID,
			Tags:       q.Tags,
		}
		if q.Figure != nil {
			if b, err := json.Marshal(q.Figure); err == nil {
				bq.Figure = b
			}
		}
		out = append(out, bq)
	}
	return out
}

// questionSummary is the one-line list row for a question.
func questionSummary(q domain.Question) string {
	var sb strings.Builder
	sb.WriteString(q.ID)
	if q.Difficulty > 0 {
		sb.WriteString(fmt.Sprintf(" d%d", q.Difficulty))
	}
	if q.Figure != nil {
		sb.WriteString(" △") // triangle marker for questions with a figure
	}
	sb.WriteString(" ")
	sb.WriteString(truncate(strings.TrimSpace(q.Prompt), 70))
	return sb.String()
}

// truncate shortens s to at most n runes, appending an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// splitTagsCSV parses a comma separated tag list, normalizing each entry.
func splitTagsCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		t := storage.NormalizeTag(part)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseOptionsCSV parses "key=value, key=value" into generator options.
func parseOptionsCSV(s string) map[string]string {
	opts := map[string]string{}
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		v := strings.TrimSpace(kv[1])
		if k != "" && v != "" {
			opts[k] = v
		}
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

// worksheetIDFromTitle derives a slug-like id from the title.
func worksheetIDFromTitle(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('-')
		}
	}
	id := strings.Trim(sb.String(), "-")
	if id == "" {
		id = fmt.Sprintf("ws-%d", time.Now().Unix())
	}
	return id
}

// Recent projects are kept in the app preferences as a short MRU list.
const recentKey = "recent.projects"
const recentMax = 8

func loadRecentProjects(p fyne.Preferences) []string {
	raw := p.String(recentKey)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, it := range strings.Split(raw, "\n") {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentProjects(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	p.SetString(recentKey, strings.Join(items, "\n"))
}

func addRecentProject(p fyne.Preferences, path string) {
	items := loadRecentProjects(p)
	out := []string{path}
	for _, it := range items {
		if it != path {
			out = append(out, it)
		}
	}
	saveRecentProjects(p, out)
}
