/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry ships anonymous usage events and crash reports to a
// collector endpoint. Everything is strictly opt-in: without the opt-in flag
// and a configured URL every call is a no-op.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	applog "trisheet/internal/log"
	"trisheet/internal/version"
)

// Config selects the collector endpoints and posting behavior. The zero
// value is a disabled reporter.
//
// FromEnv reads:
//
//	TRISHEET_TELEMETRY_OPT_IN      "1", "true", "yes" or "on" enables sending
//	TRISHEET_TELEMETRY_URL         collector URL for JSON usage events
//	TRISHEET_CRASH_UPLOAD_URL      collector URL for crash report text
//	TRISHEET_TELEMETRY_TIMEOUT_MS  request timeout in ms, default 1500
//	TRISHEET_TELEMETRY_DEBUG       non-empty logs each send attempt
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

const defaultTimeout = 1500 * time.Millisecond

// FromEnv builds a Config from the TRISHEET_* variables.
func FromEnv() Config {
	cfg := Config{
		OptIn:        truthy(os.Getenv("TRISHEET_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("TRISHEET_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("TRISHEET_CRASH_UPLOAD_URL")),
		Timeout:      defaultTimeout,
		DebugLogging: os.Getenv("TRISHEET_TELEMETRY_DEBUG") != "",
	}
	if raw := strings.TrimSpace(os.Getenv("TRISHEET_TELEMETRY_TIMEOUT_MS")); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			cfg.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	return cfg
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// event is the wire form of one usage event. Props must never carry
// personal data; the fixed fields identify only the build and platform.
type event struct {
	Name    string         `json:"name"`
	TS      string         `json:"ts"`
	Version string         `json:"version"`
	OS      string         `json:"os"`
	Arch    string         `json:"arch"`
	Props   map[string]any `json:"props,omitempty"`
}

// Reporter queues events and posts them from one background worker. Every
// caller-facing path is non-blocking: a full queue drops the event, a failed
// post is forgotten.
type Reporter struct {
	cfg  Config
	log  *slog.Logger
	http *http.Client

	queue chan event
	done  chan struct{}
	stop  sync.Once
}

// New starts a reporter for cfg.
func New(cfg Config) *Reporter {
	r := &Reporter{
		cfg:   cfg,
		log:   applog.WithComponent("telemetry"),
		http:  &http.Client{Timeout: cfg.Timeout},
		queue: make(chan event, 64),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Enabled reports whether usage events would actually leave the process.
func (r *Reporter) Enabled() bool {
	return r != nil && r.cfg.OptIn && r.cfg.EventsURL != ""
}

// Event queues one usage event.
func (r *Reporter) Event(name string, props map[string]any) {
	if !r.Enabled() || name == "" {
		return
	}
	ev := event{
		Name:    name,
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Props:   props,
	}
	select {
	case r.queue <- ev:
	case <-r.done:
	default: // full queue, drop
	}
}

// Flush waits up to half a second for the queue to drain. A nil ctx is
// allowed and only the deadline applies.
func (r *Reporter) Flush(ctx context.Context) {
	if r == nil {
		return
	}
	deadline := time.Now().Add(500 * time.Millisecond)
	for len(r.queue) > 0 && time.Now().Before(deadline) {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(25 * time.Millisecond):
			}
			continue
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// Close stops the worker. Events still queued are dropped.
func (r *Reporter) Close() {
	if r == nil {
		return
	}
	r.stop.Do(func() { close(r.done) })
}

func (r *Reporter) run() {
	for {
		select {
		case <-r.done:
			return
		case ev := <-r.queue:
			body, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			r.post(r.cfg.EventsURL, "application/json", body, "event")
		}
	}
}

// post delivers one payload, best effort. Shared by the event worker and
// crash uploads.
func (r *Reporter) post(url, contentType string, body []byte, what string) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := r.http.Do(req)
	if err != nil {
		if r.cfg.DebugLogging {
			r.log.Debug("telemetry post failed", slog.String("what", what), slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if r.cfg.DebugLogging {
		r.log.Debug("telemetry posted", slog.String("what", what))
	}
}

// UploadCrash posts a serialized crash report. Crash uploads ride on the
// same opt-in flag but have their own URL, so crash reporting can be
// configured without usage events.
func (r *Reporter) UploadCrash(report []byte) {
	if r == nil || !r.cfg.OptIn || r.cfg.CrashURL == "" {
		return
	}
	body := append([]byte(nil), report...)
	go r.post(r.cfg.CrashURL, "text/plain; charset=utf-8", body, "crash report")
}

// The package-level reporter is built lazily from the environment, so
// binaries that never opt in pay only for one mutex acquisition.
var (
	stdMu sync.Mutex
	std   *Reporter
)

func standard() *Reporter {
	stdMu.Lock()
	defer stdMu.Unlock()
	if std == nil {
		std = New(FromEnv())
	}
	return std
}

// SetDefault replaces the package-level reporter, closing the previous one.
// Used by tests and by callers that layer config-file opt-ins over the
// environment defaults.
func SetDefault(cfg Config) {
	stdMu.Lock()
	defer stdMu.Unlock()
	if std != nil {
		std.Close()
	}
	std = New(cfg)
}

// Enabled reports on the package-level reporter.
func Enabled() bool { return standard().Enabled() }

// Event queues a usage event on the package-level reporter.
func Event(name string, props map[string]any) { standard().Event(name, props) }

// UploadCrash posts a crash report through the package-level reporter.
func UploadCrash(report []byte) { standard().UploadCrash(report) }
