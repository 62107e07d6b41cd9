/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package question generates worksheet content: parameterized exercise
// generators registered by name, driven either directly or from a
// line-oriented recipe file. Generators pick integer-ish parameters, build
// the figure definition and compute the answer through the geometry engine,
// so prompt, figure and answer can never disagree.
package question

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"

	"trisheet/internal/domain"
)

// GenSpec is one generation request: which generator, how many questions, at
// what difficulty, plus generator-specific options. LineNo carries the recipe
// source line when the request came from a parsed recipe, for error context.
type GenSpec struct {
	Generator  string
	Count      int
	Difficulty int // 1 (easy) to 5 (hard); 0 lets the generator default
	Options    map[string]string
	LineNo     int
}

// optInt returns the integer option for key, or def when absent.
func (s GenSpec) optInt(key string, def int) (int, error) {
	v, ok := s.Options[key]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("option %s: %q is not an integer", key, v)
	}
	return n, nil
}

// optString returns the string option for key, or def when absent.
func (s GenSpec) optString(key, def string) string {
	if v, ok := s.Options[key]; ok && v != "" {
		return v
	}
	return def
}

// Generator produces one question per call. The rng is dedicated to the
// call and seeded from the question's recorded seed, so a generation can be
// replayed exactly.
type Generator interface {
	Name() string
	Generate(spec GenSpec, rng *rand.Rand) (domain.Question, error)
}

var (
	regMu    sync.RWMutex
	registry = map[string]Generator{}
)

// Register adds a generator under name, replacing any previous registration.
func Register(name string, g Generator) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = g
}

// Lookup returns the generator registered under name.
func Lookup(name string) (Generator, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	g, ok := registry[name]
	return g, ok
}

// Names lists the registered generator names, sorted.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Generate produces spec.Count questions from the named generator. Each
// question gets its own child seed drawn from rng and recorded on the
// question, together with the generator name, so it can be regenerated.
// Question IDs are left empty; the caller assigns them when inserting into a
// worksheet.
func Generate(spec GenSpec, rng *rand.Rand) ([]domain.Question, error) {
	gen, ok := Lookup(spec.Generator)
	if !ok {
		return nil, fmt.Errorf("unknown generator %q", spec.Generator)
	}
	count := spec.Count
	if count <= 0 {
		count = 1
	}
	out := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		seed := rng.Int63()
		q, err := gen.Generate(spec, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Generator, err)
		}
		q.Generator = spec.Generator
		q.Seed = seed
		if q.Difficulty == 0 {
			q.Difficulty = spec.Difficulty
		}
		out = append(out, q)
	}
	return out, nil
}

// GenerateRecipe runs every request of a recipe off one deterministic seed.
// Failures carry the recipe line number when one is recorded.
func GenerateRecipe(rec Recipe, seed int64) ([]domain.Question, error) {
	rng := rand.New(rand.NewSource(seed))
	var out []domain.Question
	for _, spec := range rec.Specs {
		qs, err := Generate(spec, rng)
		if err != nil {
			if spec.LineNo > 0 {
				return nil, fmt.Errorf("line %d: %w", spec.LineNo, err)
			}
			return nil, err
		}
		out = append(out, qs...)
	}
	return out, nil
}

// Regenerate produces a replacement for q from its recorded generator and
// difficulty under a new seed, keeping the question ID stable.
func Regenerate(q domain.Question, seed int64) (domain.Question, error) {
	if q.Generator == "" {
		return domain.Question{}, fmt.Errorf("question %s was not generated", q.ID)
	}
	gen, ok := Lookup(q.Generator)
	if !ok {
		return domain.Question{}, fmt.Errorf("unknown generator %q", q.Generator)
	}
	spec := GenSpec{Generator: q.Generator, Difficulty: q.Difficulty}
	nq, err := gen.Generate(spec, rand.New(rand.NewSource(seed)))
	if err != nil {
		return domain.Question{}, fmt.Errorf("%s: %w", q.Generator, err)
	}
	nq.ID = q.ID
	nq.Generator = q.Generator
	nq.Seed = seed
	if nq.Difficulty == 0 {
		nq.Difficulty = q.Difficulty
	}
	return nq, nil
}
