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
	"reflect"
	"strings"
	"testing"
)

type stubResponse struct {
	body string
	err  error
}

// stubExecutor answers by request path and records every request.
type stubExecutor struct {
	responses map[string]stubResponse
	requests  []Request
}

func newStub(responses map[string]stubResponse) *stubExecutor {
	return &stubExecutor{responses: responses}
}

func (s *stubExecutor) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	s.requests = append(s.requests, req)
	resp, ok := s.responses[req.Path]
	if !ok {
		return nil, newAPIError(404, []byte(`{"message":"not found"}`))
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return json.RawMessage(resp.body), nil
}

func (s *stubExecutor) paths() []string {
	var out []string
	for _, req := range s.requests {
		out = append(out, req.Path)
	}
	return out
}

var testCreds = Credentials{UserID: "jane", Key: "the-key", Token: "the-token"}

func newTestTrello(t *testing.T, exec Executor) *Trello {
	t.Helper()
	client, err := New(testCreds, exec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func samePointer(a, b Info) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func assertAuthQuery(t *testing.T, req Request) {
	t.Helper()
	if got := req.Query.Get("token"); got != testCreds.Token {
		t.Errorf("token = %q, want %q", got, testCreds.Token)
	}
	if got := req.Query.Get("key"); got != testCreds.Key {
		t.Errorf("key = %q, want %q", got, testCreds.Key)
	}
}

func TestNew_RejectsMissingCredentials(t *testing.T) {
	if _, err := New(Credentials{Token: "t"}, newStub(nil)); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := New(Credentials{Key: "k"}, newStub(nil)); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := New(testCreds, nil); err == nil {
		t.Error("expected error for nil executor")
	}
}

func TestUser_Endpoint(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/tokens/the-token/member": {body: `{"id":"u1","username":"jane","fullName":"Jane Doe"}`},
	})
	user, err := newTestTrello(t, stub).User(context.Background())
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if len(stub.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(stub.requests))
	}
	req := stub.requests[0]
	if req.Method != "GET" {
		t.Errorf("method = %q", req.Method)
	}
	if req.Query.Get("key") != "the-key" || req.Query.Has("token") {
		t.Errorf("unexpected query %v", req.Query)
	}
	if user.DisplayName() != "Jane Doe" {
		t.Errorf("DisplayName = %q", user.DisplayName())
	}
	if user.State() != Populated {
		t.Errorf("state = %s", user.State())
	}
}

func TestBoards_RoundTrip(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/members/jane": {body: `{"id":"u1","idBoards":["b1","b2"]}`},
		"/boards/b1":    {body: `{"id":"b1","name":"A"}`},
		"/boards/b2":    {body: `{"id":"b2","name":"B"}`},
	})
	boards, err := newTestTrello(t, stub).Boards(context.Background())
	if err != nil {
		t.Fatalf("Boards: %v", err)
	}

	want := []string{"/members/jane", "/boards/b1", "/boards/b2"}
	if got := stub.paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for _, req := range stub.requests {
		assertAuthQuery(t, req)
	}

	items := boards.Items()
	ids := boards.BoardIDs()
	if len(items) != len(ids) || len(items) != 2 {
		t.Fatalf("items = %d, ids = %d", len(items), len(ids))
	}
	for i := range items {
		if items[i].ID() != ids[i] {
			t.Errorf("items[%d].ID() = %q, ids[%d] = %q", i, items[i].ID(), i, ids[i])
		}
	}
	if items[0].Info().Name() != "A" || items[1].Info().Name() != "B" {
		t.Errorf("names = %q, %q", items[0].Info().Name(), items[1].Info().Name())
	}
}

func TestBoards_PercentEncodesUserID(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/members/jane%20doe%40example.com": {body: `{"idBoards":["b1"]}`},
		"/boards/b1":                        {body: `{"id":"b1"}`},
	})
	creds := testCreds
	creds.UserID = "jane doe@example.com"
	client, err := New(creds, stub)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Boards(context.Background()); err != nil {
		t.Fatalf("Boards: %v", err)
	}
	for i, req := range stub.requests {
		encoded := req.Query.Encode()
		if strings.Contains(encoded, "jane") {
			t.Errorf("request %d query leaks user id: %s", i, encoded)
		}
		if i > 0 && strings.Contains(req.Path, "jane") {
			t.Errorf("request %d path mentions user id: %s", i, req.Path)
		}
	}
}

func TestBoards_EmptyUserIDUsesTokenOwner(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/members/me": {body: `{"idBoards":[]}`},
	})
	creds := testCreds
	creds.UserID = ""
	client, _ := New(creds, stub)
	boards, err := client.Boards(context.Background())
	if err != nil {
		t.Fatalf("Boards: %v", err)
	}
	if len(boards.Items()) != 0 || len(boards.BoardIDs()) != 0 {
		t.Errorf("expected no boards")
	}
}

func TestBoards_FailFastKeepsPreviousItems(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/members/jane": {body: `{"idBoards":["b1"]}`},
		"/boards/b1":    {body: `{"id":"b1","name":"A"}`},
	})
	boards, err := newTestTrello(t, stub).Boards(context.Background())
	if err != nil {
		t.Fatalf("Boards: %v", err)
	}

	stub.responses["/members/jane"] = stubResponse{body: `{"idBoards":["b1","gone"]}`}
	err = boards.Refresh(context.Background())
	if !IsNotFound(err) {
		t.Fatalf("Refresh err = %v, want not found", err)
	}
	if boards.State() != Failed || boards.Err() == nil {
		t.Errorf("state = %s, err = %v", boards.State(), boards.Err())
	}
	if !reflect.DeepEqual(boards.BoardIDs(), []string{"b1"}) || len(boards.Items()) != 1 {
		t.Errorf("partial batch leaked: ids = %v", boards.BoardIDs())
	}
}

func TestLists_SeedsChildrenFromListing(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/boards/b1/lists": {body: `[{"id":"l1","name":"Todo"},{"id":"l2","name":"Done"}]`},
	})
	lists, err := newTestTrello(t, stub).Lists(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}
	if len(stub.requests) != 1 {
		t.Fatalf("requests = %v, want only the listing", stub.paths())
	}
	assertAuthQuery(t, stub.requests[0])

	if !reflect.DeepEqual(lists.ListIDs(), []string{"l1", "l2"}) {
		t.Errorf("ids = %v", lists.ListIDs())
	}
	for i, list := range lists.Items() {
		if list.ID() != lists.ListIDs()[i] {
			t.Errorf("items[%d].ID() = %q", i, list.ID())
		}
		if list.State() != Populated {
			t.Errorf("items[%d] state = %s", i, list.State())
		}
	}
	if lists.Items()[1].Info().Name() != "Done" {
		t.Errorf("name = %q", lists.Items()[1].Info().Name())
	}
}

func TestLists_EmptyBoard(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/boards/b1/lists": {body: `[]`},
	})
	board := &Board{session: newTestTrello(t, stub).session, boardID: "b1"}
	lists, err := board.Lists(context.Background())
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}
	if lists.ListIDs() == nil || len(lists.ListIDs()) != 0 || len(lists.Items()) != 0 {
		t.Errorf("ids = %#v, items = %d", lists.ListIDs(), len(lists.Items()))
	}
}

func TestList_FromPayloadSkipsNetwork(t *testing.T) {
	stub := newStub(nil)
	payload := Info{"id": "l1", "name": "Todo"}
	list, err := newTestTrello(t, stub).List(context.Background(), "l1", FromPayload(payload))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stub.requests) != 0 {
		t.Errorf("requests = %v, want none", stub.paths())
	}
	if !samePointer(list.Info(), payload) {
		t.Error("info is not the supplied payload")
	}
}

func TestList_FromNetwork(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/lists/l1": {body: `{"id":"l1","name":"Todo","closed":false}`},
	})
	list, err := newTestTrello(t, stub).List(context.Background(), "l1", FromNetwork())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(stub.paths(), []string{"/lists/l1"}) {
		t.Fatalf("paths = %v", stub.paths())
	}
	assertAuthQuery(t, stub.requests[0])
	want := Info{"id": "l1", "name": "Todo", "closed": false}
	if !reflect.DeepEqual(list.Info(), want) {
		t.Errorf("info = %v, want %v", list.Info(), want)
	}
}

func TestCard_FromPayloadAndRefresh(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/cards/c1": {body: `{"id":"c1","name":"fresh"}`},
	})
	client := newTestTrello(t, stub)
	payload := Info{"id": "c1", "name": "seeded"}
	card, err := client.Card(context.Background(), "c1", FromPayload(payload))
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	if len(stub.requests) != 0 || !samePointer(card.Info(), payload) {
		t.Fatalf("seeded card went to the network or lost its payload")
	}

	if err := card.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if card.Info().Name() != "fresh" || card.Info().ID() != "c1" {
		t.Errorf("info = %v", card.Info())
	}
	if _, merged := card.Info()["seeded"]; merged || payload.Name() != "seeded" {
		t.Error("refresh mutated or merged the seeded payload")
	}
}

func TestCards_ListScopeTakesPrecedence(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/lists/l1/cards":  {body: `[{"id":"c1","name":"One"}]`},
		"/boards/b1/cards": {body: `[{"id":"wrong"}]`},
	})
	cards, err := newTestTrello(t, stub).Cards(context.Background(), CardsScope{BoardID: "b1", ListID: "l1"})
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if !reflect.DeepEqual(stub.paths(), []string{"/lists/l1/cards"}) {
		t.Errorf("paths = %v", stub.paths())
	}
	if !reflect.DeepEqual(cards.CardIDs(), []string{"c1"}) {
		t.Errorf("ids = %v", cards.CardIDs())
	}
}

func TestCards_BoardAndListHelpers(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/boards/b1/cards": {body: `[{"id":"c1"},{"id":"c2"}]`},
		"/lists/l1/cards":  {body: `[{"id":"c3"}]`},
	})
	s := newTestTrello(t, stub).session

	board := &Board{session: s, boardID: "b1"}
	boardCards, err := board.Cards(context.Background())
	if err != nil {
		t.Fatalf("board cards: %v", err)
	}
	if !reflect.DeepEqual(boardCards.CardIDs(), []string{"c1", "c2"}) {
		t.Errorf("board card ids = %v", boardCards.CardIDs())
	}

	list := &List{session: s, listID: "l1"}
	listCards, err := list.Cards(context.Background())
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	if listCards.Scope() != (CardsScope{ListID: "l1"}) || listCards.Items()[0].ID() != "c3" {
		t.Errorf("unexpected list cards %v", listCards.CardIDs())
	}
}

func TestCards_NoScope(t *testing.T) {
	stub := newStub(nil)
	_, err := newTestTrello(t, stub).Cards(context.Background(), CardsScope{})
	if !errors.Is(err, ErrNoCardsScope) {
		t.Errorf("err = %v", err)
	}
	if len(stub.requests) != 0 {
		t.Errorf("requests = %v", stub.paths())
	}
}

func TestCollection_RecordWithoutID(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/boards/b1/lists": {body: `[{"id":"l1"},{"name":"anonymous"}]`},
	})
	_, err := newTestTrello(t, stub).Lists(context.Background(), "b1")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("err = %v, want *ParseError", err)
	}
}

func TestCollection_NotAnArray(t *testing.T) {
	stub := newStub(map[string]stubResponse{
		"/lists/l1/cards": {body: `{"id":"l1"}`},
	})
	_, err := newTestTrello(t, stub).Cards(context.Background(), CardsScope{ListID: "l1"})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("err = %v, want *ParseError", err)
	}
}

func TestRefresh_FailureLeavesInfoUntouched(t *testing.T) {
	transportErr := &TransportError{URL: "x", Err: errors.New("connection refused")}
	stub := newStub(map[string]stubResponse{
		"/lists/l1": {err: transportErr},
	})
	payload := Info{"id": "l1"}
	list, _ := newTestTrello(t, stub).List(context.Background(), "l1", FromPayload(payload))

	err := list.Refresh(context.Background())
	if !errors.Is(err, transportErr) {
		t.Fatalf("err = %v", err)
	}
	if list.State() != Failed || list.Err() != err {
		t.Errorf("state = %s, err = %v", list.State(), list.Err())
	}
	if !samePointer(list.Info(), payload) {
		t.Error("failed refresh replaced info")
	}
}

func TestAPIError_NotUsedAsData(t *testing.T) {
	stub := newStub(nil)
	_, err := newTestTrello(t, stub).Board(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 404 || string(apiErr.Body) != `{"message":"not found"}` {
		t.Errorf("apiErr = %+v", apiErr)
	}
}
