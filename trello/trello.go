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
	"log/slog"
	"net/http"
	"net/url"
)

// Info is a single JSON record as returned by the API.
type Info map[string]interface{}

func (i Info) Field(key string) string {
	s, _ := i[key].(string)
	return s
}

func (i Info) ID() string {
	return i.Field("id")
}

func (i Info) Name() string {
	return i.Field("name")
}

// Source selects how a List or Card is populated on construction:
// fetched from its own endpoint, or taken from a record the caller
// already holds.
type Source struct {
	info   Info
	seeded bool
}

func FromNetwork() Source {
	return Source{}
}

func FromPayload(info Info) Source {
	if info == nil {
		info = Info{}
	}
	return Source{info: info, seeded: true}
}

type State int

const (
	Unpopulated State = iota
	Populated
	Failed
)

func (s State) String() string {
	switch s {
	case Unpopulated:
		return "unpopulated"
	case Populated:
		return "populated"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Resource is implemented by every entity in the tree.
type Resource interface {
	Refresh(ctx context.Context) error
	State() State
	Err() error
}

var (
	_ Resource = (*User)(nil)
	_ Resource = (*Boards)(nil)
	_ Resource = (*Board)(nil)
	_ Resource = (*Lists)(nil)
	_ Resource = (*List)(nil)
	_ Resource = (*Cards)(nil)
	_ Resource = (*Card)(nil)
)

// status tracks the outcome of the last refresh. A failed refresh
// leaves the previously populated fields untouched.
type status struct {
	state State
	err   error
}

func (s *status) State() State {
	return s.state
}

func (s *status) Err() error {
	return s.err
}

func (s *status) ok() error {
	s.state = Populated
	s.err = nil
	return nil
}

func (s *status) fail(err error) error {
	s.state = Failed
	s.err = err
	return err
}

// session is copied by value into every node a parent creates.
type session struct {
	creds  Credentials
	exec   Executor
	logger *slog.Logger
}

func (s session) authQuery() url.Values {
	return url.Values{
		"token": {s.creds.Token},
		"key":   {s.creds.Key},
	}
}

func (s session) get(
	ctx context.Context,
	path string,
	query url.Values,
) (json.RawMessage, error) {
	return s.exec.Execute(ctx, Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

func (s session) getObject(
	ctx context.Context,
	path string,
	query url.Values,
) (Info, error) {
	raw, err := s.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, &ParseError{Body: truncate(raw), Err: err}
	}
	return info, nil
}

// getRecords fetches a collection endpoint. Every record must carry an
// id.
func (s session) getRecords(
	ctx context.Context,
	path string,
) ([]Info, error) {
	raw, err := s.get(ctx, path, s.authQuery())
	if err != nil {
		return nil, err
	}
	var records []Info
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &ParseError{Body: truncate(raw), Err: err}
	}
	for i, rec := range records {
		if rec.ID() == "" {
			return nil, &ParseError{
				Body: truncate(raw),
				Err:  fmt.Errorf("record without id at index %d", i),
			}
		}
	}
	return records, nil
}

// Trello is the root of the client. It holds no state beyond the
// credentials and the executor handed to every node it creates.
type Trello struct {
	session
}

type Option func(*Trello)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Trello) {
		t.logger = logger
	}
}

func New(creds Credentials, exec Executor, opts ...Option) (*Trello, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if exec == nil {
		return nil, errors.New("trello: nil executor")
	}
	t := &Trello{session: session{creds: creds, exec: exec}}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t, nil
}

func (t *Trello) Credentials() Credentials {
	return t.creds
}

func (t *Trello) User(ctx context.Context) (*User, error) {
	return newUser(ctx, t.session)
}

func (t *Trello) Boards(ctx context.Context) (*Boards, error) {
	return newBoards(ctx, t.session)
}

func (t *Trello) Board(ctx context.Context, boardID string) (*Board, error) {
	return newBoard(ctx, t.session, boardID)
}

func (t *Trello) Lists(ctx context.Context, boardID string) (*Lists, error) {
	return newLists(ctx, t.session, boardID)
}

func (t *Trello) List(
	ctx context.Context,
	listID string,
	src Source,
) (*List, error) {
	return newList(ctx, t.session, listID, src)
}

func (t *Trello) Cards(ctx context.Context, scope CardsScope) (*Cards, error) {
	return newCards(ctx, t.session, scope)
}

func (t *Trello) Card(
	ctx context.Context,
	cardID string,
	src Source,
) (*Card, error) {
	return newCard(ctx, t.session, cardID, src)
}
