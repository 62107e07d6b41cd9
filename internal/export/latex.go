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
	"fmt"
	"os"
	"strings"

	"trisheet/internal/figure"
	"trisheet/internal/storage"
	"trisheet/internal/tikz"
)

// TeXOptions controls LaTeX export behavior.
// The output is a complete compilable document; figures are embedded as
// tikzpicture environments in figure units, so the .tex stays editable.
type TeXOptions struct {
	IncludeAnswerKey bool
	DocumentClass    string // default "article"
}

// ExportWorksheetTeX writes the worksheet as a LaTeX document at outPath.
// Relative paths land under the project's exports folder.
func ExportWorksheetTeX(ph *storage.ProjectHandle, outPath string, opt TeXOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	src, err := buildWorksheetTeX(ph, opt)
	if err != nil {
		return err
	}
	outPath, err = resolveOutPath(ph, outPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
		return fmt.Errorf("write tex: %w", err)
	}
	return nil
}

// buildWorksheetTeX assembles the document source. ExportBundle reuses it.
func buildWorksheetTeX(ph *storage.ProjectHandle, opt TeXOptions) (string, error) {
	ws := &ph.Worksheet
	sheet, err := projectStyles(ph)
	if err != nil {
		return "", err
	}
	class := opt.DocumentClass
	if class == "" {
		class = "article"
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

	wf("\\documentclass[11pt,a4paper]{%s}\n", class)
	wf("\\usepackage[T1]{fontenc}\n")
	wf("\\usepackage[margin=%gbp]{geometry}\n", ws.Page.Margin)
	wf("\\usepackage{tikz}\n")
	if cols > 1 {
		wf("\\usepackage{multicol}\n")
	}
	wf("\\setlength{\\parindent}{0pt}\n")
	wf("\\begin{document}\n\n")

	wf("\\begin{center}\n")
	wf("  {\\Large\\bfseries %s}\\\\[2pt]\n", texEsc(ws.Title))
	if sub := subtitle(ws); sub != "" {
		wf("  {\\small %s}\\\\[2pt]\n", texEsc(sub))
	}
	wf("  \\rule{\\linewidth}{0.8pt}\n")
	wf("\\end{center}\n\n")

	if cols > 1 {
		wf("\\begin{multicols}{%d}\n", cols)
	}
	wf("\\begin{enumerate}\n")
	for i := range ws.Questions {
		q := &ws.Questions[i]
		wf("  \\item %s\n", texEsc(q.Prompt))
		if q.Figure == nil {
			continue
		}
		res, rerr := figure.Resolve(q.Figure, sheet.Effective(ws, q))
		if rerr != nil {
			return "", fmt.Errorf("question %s: %w", q.ID, rerr)
		}
		pic, perr := tikz.Emit(res)
		if perr != nil {
			return "", fmt.Errorf("question %s: %w", q.ID, perr)
		}
		wf("\n  \\begin{center}\n%s  \\end{center}\n", indent(pic, "  "))
	}
	wf("\\end{enumerate}\n")
	if cols > 1 {
		wf("\\end{multicols}\n")
	}

	if opt.IncludeAnswerKey {
		wf("\n\\newpage\n")
		wf("\\section*{Answer key}\n")
		if cols > 1 {
			wf("\\begin{multicols}{%d}\n", cols)
		}
		wf("\\begin{enumerate}\n")
		for i := range ws.Questions {
			if ws.Questions[i].Answer == "" {
				continue
			}
			wf("  \\item[%d.] %s\n", i+1, texEsc(ws.Questions[i].Answer))
		}
		wf("\\end{enumerate}\n")
		if cols > 1 {
			wf("\\end{multicols}\n")
		}
	}

	wf("\n\\end{document}\n")
	if werr != nil {
		return "", fmt.Errorf("build tex: %w", werr)
	}
	return buf.String(), nil
}

// indent prefixes every non-empty line, keeping embedded tikz readable
// inside the enumerate body.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

var texEscaper = strings.NewReplacer(
	"\\", "\\textbackslash{}",
	"&", "\\&",
	"%", "\\%",
	"$", "\\$",
	"#", "\\#",
	"_", "\\_",
	"{", "\\{",
	"}", "\\}",
	"~", "\\textasciitilde{}",
	"^", "\\textasciicircum{}",
)

// texEsc escapes TeX special characters in prompt and answer text.
func texEsc(s string) string { return texEscaper.Replace(s) }
