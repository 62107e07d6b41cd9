/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"trisheet/internal/figure"
	"trisheet/internal/storage"
)

// HTMLOptions controls HTML export behavior.
// The output is a single self-contained file: styles inline, figures as
// base64 data URIs, nothing to host alongside it.
type HTMLOptions struct {
	IncludeAnswerKey bool
	DPI              int // figure raster density, default 150
}

// ExportWorksheetHTML writes the worksheet as one shareable HTML file at
// outPath. Relative paths land under the project's exports folder. The
// browser does the line wrapping; pagination only applies to print formats.
func ExportWorksheetHTML(ph *storage.ProjectHandle, outPath string, opt HTMLOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	ws := &ph.Worksheet
	sheet, err := projectStyles(ph)
	if err != nil {
		return err
	}
	cols := ws.Page.Columns
	if cols <= 0 {
		cols = 2
	}

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	wf("<meta charset=\"utf-8\">\n")
	wf("<title>%s</title>\n", escHTML(ws.Title))
	wf("<style>\n")
	wf("body{font-family:Helvetica,Arial,sans-serif;max-width:52rem;margin:2rem auto;padding:0 1rem;color:#111}\n")
	wf("header{border-bottom:2px solid #111;margin-bottom:1.5rem;padding-bottom:.5rem}\n")
	wf("header h1{margin:0 0 .2rem 0;font-size:1.5rem}\n")
	wf("header p{margin:0;color:#555;font-size:.85rem}\n")
	wf("ol.questions{columns:%d;column-gap:2rem;padding-left:1.5rem}\n", cols)
	wf("ol.questions li{break-inside:avoid;margin-bottom:1.2rem}\n")
	wf("ol.questions img{display:block;margin:.5rem auto 0 auto;max-width:100%%}\n")
	wf("section.answers{margin-top:2rem;border-top:1px solid #999;padding-top:1rem}\n")
	wf("section.answers ol{columns:%d;column-gap:2rem}\n", cols)
	wf("</style>\n</head>\n<body>\n")

	wf("<header>\n<h1>%s</h1>\n", escHTML(ws.Title))
	if sub := subtitle(ws); sub != "" {
		wf("<p>%s</p>\n", escHTML(sub))
	}
	wf("</header>\n")

	ctx := context.Background()
	wf("<ol class=\"questions\">\n")
	for i := range ws.Questions {
		q := &ws.Questions[i]
		wf("  <li>%s\n", escHTML(q.Prompt))
		if q.Figure != nil {
			st := sheet.Effective(ws, q)
			res, rerr := figure.Resolve(q.Figure, st)
			if rerr != nil {
				return fmt.Errorf("question %s: %w", q.ID, rerr)
			}
			ropt := RenderOptions{DPI: opt.DPI}
			pxW, pxH := RenderSize(res, ropt)
			// Rasters go through the bank's preview cache; a cache failure
			// falls back to a direct render.
			data, perr := storage.GetOrCreatePreview(ctx, ph.Root,
				storage.QuestionUID(ws.ID, q.ID), storage.FigureHash(q.Figure, st),
				pxW, pxH, func(context.Context) ([]byte, error) {
					return FigurePNG(res, ropt)
				})
			if perr != nil || data == nil {
				if data, perr = FigurePNG(res, ropt); perr != nil {
					return fmt.Errorf("question %s: %w", q.ID, perr)
				}
			}
			w, h := fitFigure(res, 300)
			wf("    <img width=\"%d\" height=\"%d\" alt=\"figure for question %d\" src=\"data:image/png;base64,%s\">\n",
				int(w), int(h), i+1, base64.StdEncoding.EncodeToString(data))
		}
		wf("  </li>\n")
	}
	wf("</ol>\n")

	if opt.IncludeAnswerKey {
		wf("<section class=\"answers\">\n<h2>Answer key</h2>\n<ol>\n")
		for i := range ws.Questions {
			if ws.Questions[i].Answer == "" {
				continue
			}
			wf("  <li value=\"%d\">%s</li>\n", i+1, escHTML(ws.Questions[i].Answer))
		}
		wf("</ol>\n</section>\n")
	}

	wf("</body>\n</html>\n")
	if werr != nil {
		return fmt.Errorf("build html: %w", werr)
	}

	outPath, err = resolveOutPath(ph, outPath)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".html") {
		outPath += ".html"
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

func escHTML(s string) string {
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
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
