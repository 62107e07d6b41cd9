/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"trisheet/internal/domain"
)

// NormalizeTag lowercases and trims a tag so "Pythagoras " and "pythagoras"
// count as the same topic.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// UsedTagSet collects the normalized tags of all questions on the sheet.
func UsedTagSet(ws domain.Worksheet) map[string]struct{} {
	set := make(map[string]struct{})
	for _, q := range ws.Questions {
		for _, t := range q.Tags {
			name := NormalizeTag(t)
			if name == "" {
				continue
			}
			set[name] = struct{}{}
		}
	}
	return set
}

// TagList returns the sheet's used tags sorted alphabetically.
func TagList(ws domain.Worksheet) []string {
	set := UsedTagSet(ws)
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// UncoveredTopics lists declared worksheet topics that no question is tagged
// with yet. Useful to spot gaps before handing the sheet out.
func UncoveredTopics(ws domain.Worksheet) []string {
	used := UsedTagSet(ws)
	var out []string
	for _, topic := range ws.Topics {
		name := NormalizeTag(topic)
		if name == "" {
			continue
		}
		if _, ok := used[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// TagQuestion adds a tag to a worksheet question. Adding a tag the question
// already carries is a no-op.
func TagQuestion(ph *ProjectHandle, questionID, tag string) error {
	name := NormalizeTag(tag)
	if name == "" {
		return errors.New("tag is empty")
	}
	_, q, err := findQuestion(ph, questionID)
	if err != nil {
		return err
	}
	for _, ex := range q.Tags {
		if NormalizeTag(ex) == name {
			return nil
		}
	}
	q.Tags = append(q.Tags, name)
	return nil
}

// TagCount is one row of the bank-wide tag listing.
type TagCount struct {
	Name      string
	Questions int
}

// ListTags returns every known bank tag with the number of questions that
// carry it, ordered by name. Tags with zero questions stay listed until the
// bank is rebuilt.
func ListTags(ctx context.Context, projectRoot string) ([]TagCount, error) {
	db, err := InitOrOpenBank(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, `SELECT tg.name, COUNT(qt.question_id)
		FROM tags tg
		LEFT JOIN question_tags qt ON qt.tag_id = tg.id
		GROUP BY tg.id
		ORDER BY tg.name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Name, &tc.Questions); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
