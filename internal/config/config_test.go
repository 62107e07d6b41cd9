/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"testing"
	"time"
)

// memStore keeps tokens in memory so tests never touch the OS keychain.
type memStore map[string]string

func (m memStore) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (m memStore) Set(service, key, value string) error { m[service+"/"+key] = value; return nil }
func (m memStore) Delete(service, key string) error     { delete(m, service+"/"+key); return nil }

func swapTokenStore(t *testing.T) memStore {
	t.Helper()
	old := tokenStore
	m := memStore{}
	tokenStore = m
	t.Cleanup(func() { tokenStore = old })
	return m
}

func TestEnvOverridesBackendURL(t *testing.T) {
	swapTokenStore(t)
	t.Setenv(EnvBackendURL, "https://example.test:8443")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	swapTokenStore(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestMergeCarriesBooleansAndStyle(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.General.EnableSync = true
	src.General.DefaultStyle = "exam"
	src.Export.AnswerKey = true
	mergeInto(&dst, &src)
	if !dst.General.EnableSync || !dst.Export.AnswerKey {
		t.Fatalf("booleans not merged: %+v", dst)
	}
	if dst.General.DefaultStyle != "exam" {
		t.Fatalf("default style not merged: %+v", dst.General)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/trisheet.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/trisheet.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	swapTokenStore(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/tmp/override.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/override.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := swapTokenStore(t)
	if err := tokenStore.Set(keyringService, keyringToken, "s3cret"); err != nil {
		t.Fatalf("set: %v", err)
	}
	_, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "s3cret" {
		t.Fatalf("token not loaded from store: %q", tok)
	}
	if err := ClearToken(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := m.Get(keyringService, keyringToken); err == nil {
		t.Fatalf("token not removed")
	}
}

func TestEnvOverrideFor(t *testing.T) {
	t.Setenv(EnvBackendURL, "http://x")
	if env, ok := EnvOverrideFor("backend.base_url"); !ok || env != EnvBackendURL {
		t.Fatalf("EnvOverrideFor mismatch: %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("no.such.key"); ok {
		t.Fatalf("unknown key should not report override")
	}
}

func TestBackendTimeout(t *testing.T) {
	b := BackendConfig{TimeoutMs: 250}
	if b.Timeout() != 250*time.Millisecond {
		t.Fatalf("timeout mismatch: %v", b.Timeout())
	}
	if (BackendConfig{}).Timeout() != 15*time.Second {
		t.Fatalf("zero timeout should fall back to default")
	}
}
