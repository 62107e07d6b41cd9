/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"trisheet/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across multiple formats.
//
// Path semantics:
//   - If OutDir is empty or relative, it is created under
//     <project>/exports/<preset>/.
//   - Single-file formats write worksheet.pdf, worksheet.tex, worksheet.html
//     and worksheet-bundle.zip in OutDir.
//   - PNG pages go to the png/ subfolder of OutDir.
type BatchOptions struct {
	Preset      PresetName
	Formats     []string // allowed: pdf, tex, png, html, bundle; empty means preset defaults
	Pages       []int    // applies to per-page exporters
	DPIOverride int      // when > 0 overrides the preset's raster DPI
	AnswerKey   *bool    // when set, overrides the preset's answer-key default
	OutDir      string
}

// BatchExport runs exports according to the given preset.
func BatchExport(ph *storage.ProjectHandle, opt BatchOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	if len(ph.Worksheet.Questions) == 0 {
		return fmt.Errorf("worksheet has no questions")
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(ph.Root, "exports", baseOut)
	}

	dpi := presetDPI(opt.Preset)
	if opt.DPIOverride > 0 {
		dpi = opt.DPIOverride
	}
	answers := presetAnswerKey(opt.Preset)
	if opt.AnswerKey != nil {
		answers = *opt.AnswerKey
	}

	for _, f := range formats {
		switch f {
		case "pdf":
			out := filepath.Join(baseOut, "worksheet.pdf")
			if err := ExportWorksheetPDF(ph, out, PDFOptions{IncludeAnswerKey: answers, Pages: opt.Pages}); err != nil {
				return fmt.Errorf("pdf: %w", err)
			}
		case "tex":
			out := filepath.Join(baseOut, "worksheet.tex")
			if err := ExportWorksheetTeX(ph, out, TeXOptions{IncludeAnswerKey: answers}); err != nil {
				return fmt.Errorf("tex: %w", err)
			}
		case "png":
			outDir := filepath.Join(baseOut, "png")
			if err := ExportWorksheetPNGPages(ph, outDir, PNGOptions{DPI: dpi, Pages: opt.Pages}); err != nil {
				return fmt.Errorf("png: %w", err)
			}
		case "html":
			out := filepath.Join(baseOut, "worksheet.html")
			if err := ExportWorksheetHTML(ph, out, HTMLOptions{IncludeAnswerKey: answers, DPI: dpi}); err != nil {
				return fmt.Errorf("html: %w", err)
			}
		case "bundle":
			out := filepath.Join(baseOut, "worksheet-bundle.zip")
			if err := ExportBundle(ph, out, BundleOptions{IncludeAnswerKey: answers, DPI: dpi}); err != nil {
				return fmt.Errorf("bundle: %w", err)
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"html", "png"}
	case PresetPrint:
		return []string{"pdf", "tex"}
	default:
		return []string{"pdf"}
	}
}

func presetDPI(p PresetName) int {
	switch p {
	case PresetPrint:
		return 300
	default:
		return 150
	}
}

func presetAnswerKey(p PresetName) bool {
	switch p {
	case PresetWeb:
		return false
	default:
		return true
	}
}
