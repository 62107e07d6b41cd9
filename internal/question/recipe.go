/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package question

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Recipe is a parsed worksheet recipe: an optional title plus one generation
// request per generator line.
type Recipe struct {
	Title string
	Specs []GenSpec
}

// Error is a recipe parse error with position context.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Message
}

// ParseRecipe parses the line-oriented recipe format:
//
//   - Comments: lines starting with "#" are skipped.
//   - Title: an optional "title: My sheet" line.
//   - Requests: "generator | count | difficulty | key=value, key=value"
//     where every field after the generator name may be omitted. Count
//     defaults to 1, difficulty to the generator's own default. Options are
//     comma-separated key=value pairs.
//
// Parsing continues past bad lines so a recipe surfaces all its problems at
// once; requests with errors are not included in the result. Generator names
// are not checked against the registry here; GenerateRecipe reports unknown
// names with the same line numbers.
func ParseRecipe(input string) (Recipe, []Error) {
	rec := Recipe{}
	var errs []Error

	reTitle := regexp.MustCompile(`^(?i)title\s*:\s*(.+)$`)
	reName := regexp.MustCompile(`^[a-z][a-z0-9\-]*$`)
	reOpt := regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_\-]*)\s*=\s*(\S+)$`)

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := reTitle.FindStringSubmatch(line); m != nil {
			rec.Title = strings.TrimSpace(m[1])
			continue
		}

		fields := strings.Split(line, "|")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		name := fields[0]
		if !reName.MatchString(name) {
			errs = append(errs, Error{Line: lineNo, Message: "unrecognized line; expected \"generator | count | difficulty | options\""})
			continue
		}
		spec := GenSpec{Generator: name, Count: 1, LineNo: lineNo}
		bad := false
		if len(fields) > 1 && fields[1] != "" {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				errs = append(errs, Error{Line: lineNo, Message: "count " + strconv.Quote(fields[1]) + " must be a positive integer"})
				bad = true
			} else {
				spec.Count = n
			}
		}
		if len(fields) > 2 && fields[2] != "" {
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 1 || n > 5 {
				errs = append(errs, Error{Line: lineNo, Message: "difficulty " + strconv.Quote(fields[2]) + " must be 1 to 5"})
				bad = true
			} else {
				spec.Difficulty = n
			}
		}
		if len(fields) > 3 && fields[3] != "" {
			opts := map[string]string{}
			for _, pair := range strings.Split(fields[3], ",") {
				pair = strings.TrimSpace(pair)
				if pair == "" {
					continue
				}
				m := reOpt.FindStringSubmatch(pair)
				if m == nil {
					errs = append(errs, Error{Line: lineNo, Message: "bad option " + strconv.Quote(pair) + "; expected key=value"})
					bad = true
					continue
				}
				opts[strings.ToLower(m[1])] = m[2]
			}
			if len(opts) > 0 {
				spec.Options = opts
			}
		}
		if len(fields) > 4 {
			errs = append(errs, Error{Line: lineNo, Message: "too many fields"})
			bad = true
		}
		if !bad {
			rec.Specs = append(rec.Specs, spec)
		}
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Message: err.Error()})
	}
	return rec, errs
}
