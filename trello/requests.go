/*
 * trelloboards - Trello boards, lists and cards
 * Copyright (C) 2022  Joao Eduardo Luis <joao@wipwd.dev>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.trello.com/1"
	DefaultTimeout = 30 * time.Second

	// Trello error bodies can be large HTML pages; keep a bounded prefix.
	// Lenient mode reads the whole body since it is parsed as data.
	maxErrorBody = 64 * 1024
)

// Credentials identify the user on whose behalf every request is made.
type Credentials struct {
	UserID string
	Key    string
	Token  string
}

func (c Credentials) Validate() error {
	if c.Key == "" {
		return errors.New("trello: missing API key")
	}
	if c.Token == "" {
		return errors.New("trello: missing access token")
	}
	return nil
}

// Request is a single read against the API. Path is relative to the
// executor's base URL and must already be escaped.
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

// Executor performs one request and returns the response body as JSON.
type Executor interface {
	Execute(ctx context.Context, req Request) (json.RawMessage, error)
}

// HTTPExecutor runs requests against the REST API over HTTP.
type HTTPExecutor struct {
	BaseURL string
	Client  *http.Client

	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// Retries is the number of extra attempts on transport failures.
	// API and parse errors are never retried. Negative means none.
	Retries    int
	RetryDelay time.Duration

	// Lenient logs non-2xx responses and parses their body as data
	// instead of returning an *APIError.
	Lenient bool

	Logger *slog.Logger
}

var _ Executor = (*HTTPExecutor)(nil)

func NewHTTPExecutor(baseURL string) *HTTPExecutor {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPExecutor{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Client:     &http.Client{},
		Timeout:    DefaultTimeout,
		RetryDelay: 500 * time.Millisecond,
	}
}

func (e *HTTPExecutor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *HTTPExecutor) endpoint(req Request) string {
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	ep := strings.TrimRight(e.BaseURL, "/") + path
	if len(req.Query) > 0 {
		ep += "?" + req.Query.Encode()
	}
	return ep
}

func (e *HTTPExecutor) Execute(
	ctx context.Context,
	req Request,
) (json.RawMessage, error) {

	if req.Method == "" {
		req.Method = http.MethodGet
	}
	ep := e.endpoint(req)

	retries := e.Retries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * e.RetryDelay
			e.logger().Debug("retrying request",
				"path", req.Path, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, &TransportError{URL: redact(ep), Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		body, err := e.once(ctx, req, ep)
		if err == nil {
			return body, nil
		}
		var terr *TransportError
		if !errors.As(err, &terr) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (e *HTTPExecutor) once(
	ctx context.Context,
	req Request,
	ep string,
) (json.RawMessage, error) {

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, ep, nil)
	if err != nil {
		return nil, fmt.Errorf("trello: building request for %s: %w",
			redact(ep), scrub(err))
	}
	httpReq.Header.Set("Accept", "application/json")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{URL: redact(ep), Err: scrub(err)}
	}
	defer resp.Body.Close()

	e.logger().Debug("api request",
		"method", req.Method, "path", req.Path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if !e.Lenient {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, newAPIError(resp.StatusCode, body)
		}
		e.logger().Warn("api returned non-success status, parsing body anyway",
			"path", req.Path, "status", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: redact(ep), Err: scrub(err)}
	}
	return decode(body)
}

func decode(body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, &ParseError{Body: truncate(body), Err: errors.New("invalid JSON")}
	}
	return json.RawMessage(body), nil
}

// escapeSegment percent-encodes a single path segment, including '@'
// and spaces.
func escapeSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// redact strips credential query values from a URL so it can be logged.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	for _, k := range []string{"key", "token"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()

	// The member-by-token endpoint carries the token in the path.
	segments := strings.Split(u.EscapedPath(), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "tokens" {
			segments[i+1] = "REDACTED"
		}
	}
	out := u.Scheme + "://" + u.Host + strings.Join(segments, "/")
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out
}

// scrub drops the *url.Error wrapper, whose message embeds the full
// request URL along with its credentials.
func scrub(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
