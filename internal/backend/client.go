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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trisheet/internal/storage"
)

// Client is a minimal HTTP client for the shared-bank API, used by the
// desktop app and cmd/trigen.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a backend client. baseURL may include a trailing slash;
// it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server %s %s: %s: %s", method, u.Path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Login obtains a bearer token for the subject and stores it on the client.
// ttl of zero leaves the server default in place.
func (c *Client) Login(ctx context.Context, subject string, ttl time.Duration) (string, time.Time, error) {
	req := map[string]any{"subject": subject}
	if ttl > 0 {
		req["ttl_seconds"] = int64(ttl / time.Second)
	}
	var resp struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", req, &resp); err != nil {
		return "", time.Time{}, err
	}
	exp, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse expiry: %w", err)
	}
	c.Token = resp.Token
	return resp.Token, exp, nil
}

// ListBanks returns the shared banks, most recently updated first.
func (c *Client) ListBanks(ctx context.Context) ([]Bank, error) {
	var list []Bank
	if err := c.doJSON(ctx, http.MethodGet, "/api/banks", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateBank creates a new shared bank.
func (c *Client) CreateBank(ctx context.Context, name, description string) (Bank, error) {
	var out Bank
	req := map[string]string{"name": name, "description": description}
	if err := c.doJSON(ctx, http.MethodPost, "/api/banks", req, &out); err != nil {
		return Bank{}, err
	}
	return out, nil
}

// PullQuestions fetches one page of bank rows for merging into the local
// question bank.
func (c *Client) PullQuestions(ctx context.Context, bankID int64, limit, offset int) ([]BankQuestion, error) {
	var env struct {
		Questions []BankQuestion `json:"questions"`
	}
	path := fmt.Sprintf("/api/banks/%d/questions?limit=%d&offset=%d", bankID, limit, offset)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Questions, nil
}

// PushQuestions uploads rows into a bank and returns the bank's new version.
func (c *Client) PushQuestions(ctx context.Context, bankID int64, qs []BankQuestion) (int64, error) {
	var resp struct {
		Upserted int64 `json:"upserted"`
		Version  int64 `json:"version"`
	}
	path := fmt.Sprintf("/api/banks/%d/push", bankID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]any{"questions": qs}, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

// SearchBank runs a server-side search. The query mirrors the local bank's
// SearchQuery so the UI can reuse one form for both.
func (c *Client) SearchBank(ctx context.Context, bankID int64, q storage.SearchQuery) ([]storage.SearchResult, error) {
	vals := url.Values{}
	if s := strings.TrimSpace(q.Text); s != "" {
		vals.Set("q", s)
	}
	if len(q.Tags) > 0 {
		vals.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.Generator != "" {
		vals.Set("generator", q.Generator)
	}
	if q.Source != "" {
		vals.Set("source", q.Source)
	}
	if q.DifficultyMin > 0 {
		vals.Set("dmin", strconv.Itoa(q.DifficultyMin))
	}
	if q.DifficultyMax > 0 {
		vals.Set("dmax", strconv.Itoa(q.DifficultyMax))
	}
	if q.WithFigure {
		vals.Set("figure", "1")
	}
	if q.Limit > 0 {
		vals.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		vals.Set("offset", strconv.Itoa(q.Offset))
	}
	path := fmt.Sprintf("/api/banks/%d/search", bankID)
	if enc := vals.Encode(); enc != "" {
		path += "?" + enc
	}
	var env struct {
		Results []storage.SearchResult `json:"results"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}
