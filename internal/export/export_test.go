/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"testing"

	"trisheet/internal/domain"
	"trisheet/internal/storage"
)

// testProject initializes a small worksheet project: a right triangle with
// labels and a right-angle mark, an SAS triangle with an angle arc, and one
// text-only question.
func testProject(t *testing.T) *storage.ProjectHandle {
	t.Helper()
	ws := domain.Worksheet{
		ID:      "ws-test",
		Title:   "Triangle practice",
		Subject: "Geometry",
		Level:   "Grade 8",
		Page:    domain.DefaultPageSetup(),
		Questions: []domain.Question{
			{
				ID:     "q-001",
				Prompt: "Triangle ABC has legs a = 3 cm and b = 4 cm. Compute the length of the hypotenuse c.",
				Answer: "c = 5 cm",
				Figure: &domain.Figure{
					Def:          domain.FigureDef{Mode: domain.ModeSSS, SideA: 3, SideB: 4, SideC: 5},
					VertexLabels: []string{"A", "B", "C"},
					SideLabels:   []string{"a", "b", "c"},
					AngleMarks:   []domain.AngleMark{{Vertex: 3, RightAngle: true}},
				},
			},
			{
				ID:     "q-002",
				Prompt: "Two sides of 5 cm and 7 cm enclose an angle of 40 degrees. Find the third side.",
				Answer: "about 4.51 cm",
				Figure: &domain.Figure{
					Def:        domain.FigureDef{Mode: domain.ModeSAS, Side1: 5, AngleDeg: 40, Side2: 7},
					AngleMarks: []domain.AngleMark{{Vertex: 1, Label: "40°"}},
				},
			},
			{
				ID:     "q-003",
				Prompt: "State the triangle inequality in your own words.",
			},
		},
	}
	ph, err := storage.InitProject(t.TempDir(), ws)
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	return ph
}
