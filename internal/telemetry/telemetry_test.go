/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// collector records everything posted to it, by path.
type collector struct {
	mu     sync.Mutex
	bodies map[string][][]byte
	ctypes map[string][]string
}

func newCollector() *collector {
	return &collector{bodies: map[string][][]byte{}, ctypes: map[string][]string{}}
}

func (c *collector) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		c.mu.Lock()
		c.bodies[r.URL.Path] = append(c.bodies[r.URL.Path], b)
		c.ctypes[r.URL.Path] = append(c.ctypes[r.URL.Path], r.Header.Get("Content-Type"))
		c.mu.Unlock()
	})
}

func (c *collector) count(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies[path])
}

func (c *collector) first(path string) ([]byte, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.bodies[path]) == 0 {
		return nil, ""
	}
	return c.bodies[path][0], c.ctypes[path][0]
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestReporterDeliversEventsAndCrashReports(t *testing.T) {
	col := newCollector()
	srv := httptest.NewServer(col.handler())
	defer srv.Close()

	r := New(Config{
		OptIn:     true,
		EventsURL: srv.URL + "/events",
		CrashURL:  srv.URL + "/crash",
		Timeout:   2 * time.Second,
	})
	defer r.Close()

	if !r.Enabled() {
		t.Fatal("reporter with opt-in and URL should be enabled")
	}

	r.Event("worksheet_exported", map[string]any{"format": "pdf"})
	r.Flush(context.Background())
	if !waitUntil(t, 2*time.Second, func() bool { return col.count("/events") > 0 }) {
		t.Fatal("event never reached the collector")
	}
	body, ctype := col.first("/events")
	if ctype != "application/json" {
		t.Fatalf("event content type = %q", ctype)
	}
	var ev struct {
		Name    string         `json:"name"`
		TS      string         `json:"ts"`
		Version string         `json:"version"`
		Props   map[string]any `json:"props"`
	}
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatalf("event body is not JSON: %v", err)
	}
	if ev.Name != "worksheet_exported" || ev.TS == "" || ev.Version == "" {
		t.Fatalf("event fields incomplete: %+v", ev)
	}
	if ev.Props["format"] != "pdf" {
		t.Fatalf("props not carried: %+v", ev.Props)
	}

	r.UploadCrash([]byte("panic: boom\n\ngoroutine 1"))
	if !waitUntil(t, 2*time.Second, func() bool { return col.count("/crash") > 0 }) {
		t.Fatal("crash report never reached the collector")
	}
	if body, ctype := col.first("/crash"); ctype != "text/plain; charset=utf-8" || len(body) == 0 {
		t.Fatalf("crash upload: ctype=%q len=%d", ctype, len(body))
	}
}

func TestFromEnvAndDefaultReporter(t *testing.T) {
	t.Setenv("TRISHEET_TELEMETRY_OPT_IN", "yes")
	t.Setenv("TRISHEET_TELEMETRY_URL", "http://127.0.0.1:0/events")
	t.Setenv("TRISHEET_CRASH_UPLOAD_URL", "")
	t.Setenv("TRISHEET_TELEMETRY_TIMEOUT_MS", "250")

	cfg := FromEnv()
	if !cfg.OptIn {
		t.Fatal("opt-in env not honored")
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v, want 250ms", cfg.Timeout)
	}
	if cfg.CrashURL != "" {
		t.Fatalf("crash URL should stay empty, got %q", cfg.CrashURL)
	}

	SetDefault(cfg)
	if !Enabled() {
		t.Fatal("package-level reporter should be enabled after SetDefault")
	}
	SetDefault(Config{})
	if Enabled() {
		t.Fatal("zero config must disable the package-level reporter")
	}
}

func TestTruthyForms(t *testing.T) {
	for _, s := range []string{"1", "true", "YES", " on "} {
		if !truthy(s) {
			t.Errorf("truthy(%q) = false", s)
		}
	}
	for _, s := range []string{"", "0", "no", "off", "enable"} {
		if truthy(s) {
			t.Errorf("truthy(%q) = true", s)
		}
	}
}
