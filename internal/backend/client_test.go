/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trisheet/internal/storage"
)

// newStubServer fakes the API surface the client talks to, so client tests
// run without Postgres.
func newStubServer(t *testing.T) (*httptest.Server, *http.Request) {
	t.Helper()
	var lastReq http.Request
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"token":      "tok-123",
			"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/api/banks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusCreated, Bank{ID: 7, StableID: "sb", Name: "Grade 8"})
			return
		}
		writeJSON(w, http.StatusOK, []Bank{{ID: 7, Name: "Grade 8", Questions: 2}})
	})
	mux.HandleFunc("/api/banks/7/questions", func(w http.ResponseWriter, r *http.Request) {
		lastReq = *r
		writeJSON(w, http.StatusOK, map[string]any{
			"bank_id": 7,
			"count":   1,
			"questions": []BankQuestion{
				{UID: "q-abc", Prompt: "Compute x.", Difficulty: 2, Tags: []string{"triangle"}},
			},
		})
	})
	mux.HandleFunc("/api/banks/7/push", func(w http.ResponseWriter, r *http.Request) {
		lastReq = *r
		var req struct {
			Questions []BankQuestion `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"bank_id": 7, "upserted": len(req.Questions), "version": 4,
		})
	})
	mux.HandleFunc("/api/banks/7/search", func(w http.ResponseWriter, r *http.Request) {
		lastReq = *r
		writeJSON(w, http.StatusOK, map[string]any{
			"bank_id": 7,
			"count":   1,
			"results": []storage.SearchResult{{UID: "q-abc", Prompt: "Compute x.", Difficulty: 2}},
		})
	})
	mux.HandleFunc("/api/banks/404/questions", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("no such bank"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastReq
}

func TestClientLoginAndPull(t *testing.T) {
	srv, lastReq := newStubServer(t)
	c := NewClient(srv.URL+"/", "")
	ctx := context.Background()

	tok, exp, err := c.Login(ctx, "teacher-1", 30*time.Minute)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok != "tok-123" || c.Token != "tok-123" {
		t.Fatalf("token not stored: %q / %q", tok, c.Token)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", exp)
	}

	qs, err := c.PullQuestions(ctx, 7, 50, 0)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if len(qs) != 1 || qs[0].UID != "q-abc" {
		t.Fatalf("unexpected pull result: %+v", qs)
	}
	if got := lastReq.Header.Get("Authorization"); got != "Bearer tok-123" {
		t.Fatalf("pull sent auth %q", got)
	}
	if lastReq.URL.Query().Get("limit") != "50" {
		t.Fatalf("limit not sent: %s", lastReq.URL.RawQuery)
	}
}

func TestClientPushAndSearch(t *testing.T) {
	srv, lastReq := newStubServer(t)
	c := NewClient(srv.URL, "tok-123")
	ctx := context.Background()

	ver, err := c.PushQuestions(ctx, 7, []BankQuestion{
		{UID: "q-1", Prompt: "One"},
		{UID: "q-2", Prompt: "Two"},
	})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if ver != 4 {
		t.Fatalf("expected version 4, got %d", ver)
	}

	res, err := c.SearchBank(ctx, 7, storage.SearchQuery{
		Text:          "hypotenuse",
		Tags:          []string{"triangle", "missing-side"},
		DifficultyMin: 1,
		DifficultyMax: 3,
		WithFigure:    true,
		Limit:         10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 1 || res[0].UID != "q-abc" {
		t.Fatalf("unexpected search result: %+v", res)
	}
	qv := lastReq.URL.Query()
	if qv.Get("q") != "hypotenuse" || qv.Get("tags") != "triangle,missing-side" ||
		qv.Get("dmin") != "1" || qv.Get("dmax") != "3" || qv.Get("figure") != "1" || qv.Get("limit") != "10" {
		t.Fatalf("query params not forwarded: %s", lastReq.URL.RawQuery)
	}
}

func TestClientSurfacesServerErrors(t *testing.T) {
	srv, _ := newStubServer(t)
	c := NewClient(srv.URL, "tok-123")
	_, err := c.PullQuestions(context.Background(), 404, 10, 0)
	if err == nil {
		t.Fatal("expected error for missing bank")
	}
	if got := err.Error(); !strings.Contains(got, "no such bank") {
		t.Fatalf("error should carry the server message, got %q", got)
	}
}
