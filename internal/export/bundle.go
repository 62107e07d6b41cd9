/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trisheet/internal/figure"
	"trisheet/internal/storage"
)

// BundleOptions controls the all-formats zip bundle.
// The bundle carries the compiled PDF, the editable LaTeX source, one PNG
// per figure and a manifest, so a worksheet can be handed over complete.
type BundleOptions struct {
	IncludeAnswerKey bool
	DPI              int // figure PNG density, default 150
}

// ExportBundle writes a zip at outPath containing worksheet.pdf,
// worksheet.tex, figures/<question-id>.png and manifest.xml. Relative paths
// land under the project's exports folder; a .zip extension is enforced.
func ExportBundle(ph *storage.ProjectHandle, outPath string, opt BundleOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	ws := &ph.Worksheet
	sheet, err := projectStyles(ph)
	if err != nil {
		return err
	}

	outPath, err = resolveOutPath(ph, outPath)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}
	zw, f, err := createZip(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	doc, err := buildWorksheetPDF(ph, PDFOptions{IncludeAnswerKey: opt.IncludeAnswerKey})
	if err != nil {
		return err
	}
	var pdfBuf bytes.Buffer
	if err := doc.Output(&pdfBuf); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := addZipFile(zw, "worksheet.pdf", pdfBuf.Bytes()); err != nil {
		return fmt.Errorf("zip add pdf: %w", err)
	}

	tex, err := buildWorksheetTeX(ph, TeXOptions{IncludeAnswerKey: opt.IncludeAnswerKey})
	if err != nil {
		return err
	}
	if err := addZipFile(zw, "worksheet.tex", []byte(tex)); err != nil {
		return fmt.Errorf("zip add tex: %w", err)
	}

	var figNames []string
	for i := range ws.Questions {
		q := &ws.Questions[i]
		if q.Figure == nil {
			continue
		}
		res, rerr := figure.Resolve(q.Figure, sheet.Effective(ws, q))
		if rerr != nil {
			return fmt.Errorf("question %s: %w", q.ID, rerr)
		}
		data, perr := FigurePNG(res, RenderOptions{DPI: opt.DPI})
		if perr != nil {
			return fmt.Errorf("question %s: %w", q.ID, perr)
		}
		name := "figures/" + q.ID + ".png"
		if err := addZipFile(zw, name, data); err != nil {
			return fmt.Errorf("zip add figure: %w", err)
		}
		figNames = append(figNames, name)
	}

	manifest, merr := buildBundleManifestXML(ph, figNames)
	if merr != nil {
		return fmt.Errorf("build manifest: %w", merr)
	}
	if err := addZipFile(zw, "manifest.xml", []byte(manifest)); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create zip: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func buildBundleManifestXML(ph *storage.ProjectHandle, figNames []string) (string, error) {
	ws := &ph.Worksheet
	buf := &bytes.Buffer{}
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(buf, format, args...)
	}
	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<WorksheetBundle>\n")
	wf("  <Id>%s</Id>\n", xmlEsc(ws.ID))
	wf("  <Title>%s</Title>\n", xmlEsc(ws.Title))
	if ws.Subject != "" {
		wf("  <Subject>%s</Subject>\n", xmlEsc(ws.Subject))
	}
	if ws.Level != "" {
		wf("  <Level>%s</Level>\n", xmlEsc(ws.Level))
	}
	if ws.Metadata.Author != "" {
		wf("  <Author>%s</Author>\n", xmlEsc(ws.Metadata.Author))
	}
	wf("  <QuestionCount>%d</QuestionCount>\n", len(ws.Questions))
	wf("  <Generated>%s</Generated>\n", time.Now().UTC().Format(time.RFC3339))
	wf("  <Files>\n")
	wf("    <File>worksheet.pdf</File>\n")
	wf("    <File>worksheet.tex</File>\n")
	for _, n := range figNames {
		wf("    <File>%s</File>\n", xmlEsc(n))
	}
	wf("  </Files>\n")
	wf("</WorksheetBundle>\n")
	if werr != nil {
		return "", fmt.Errorf("build xml: %w", werr)
	}
	return buf.String(), nil
}

func xmlEsc(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\'':
			out = append(out, '&', 'a', 'p', 'o', 's', ';')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
