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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// TransportError is a failure to complete the HTTP exchange: DNS,
// connection, TLS, timeout or cancellation.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("trello: transport error for %s: %s", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a response body is not the JSON we
// expected.
type ParseError struct {
	Body []byte
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trello: parsing response: %s", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx response. Body holds the raw response;
// Message is filled when the body is a JSON object with a "message"
// field, otherwise it is the body text.
type APIError struct {
	StatusCode int
	Body       []byte
	Message    string
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: body}
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		apiErr.Message = parsed.Message
	} else {
		apiErr.Message = string(truncate(body))
	}
	return apiErr
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("trello: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("trello: HTTP %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether the API rejected our key or token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized ||
			apiErr.StatusCode == http.StatusForbidden)
}

func truncate(body []byte) []byte {
	const max = 512
	if len(body) <= max {
		return body
	}
	return body[:max]
}
