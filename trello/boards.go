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
	"fmt"
)

// Boards is the set of boards the user is a member of, in the order
// the member record lists them.
type Boards struct {
	session
	status

	boardIDs []string
	items    []*Board
}

func newBoards(ctx context.Context, s session) (*Boards, error) {
	boards := &Boards{session: s}
	if err := boards.Refresh(ctx); err != nil {
		return nil, err
	}
	return boards, nil
}

// memberPath addresses the configured user, or the token's owner when
// no user id was given.
func (boards *Boards) memberPath() string {
	uid := boards.creds.UserID
	if uid == "" {
		uid = "me"
	}
	return "/members/" + escapeSegment(uid)
}

// Refresh fetches the member's board ids and then each board in turn.
// Any failure discards the whole batch.
func (boards *Boards) Refresh(ctx context.Context) error {
	raw, err := boards.get(ctx, boards.memberPath(), boards.authQuery())
	if err != nil {
		boards.logger.Error("error obtaining boards", "user", boards.creds.UserID, "err", err)
		return boards.fail(err)
	}
	var member struct {
		IDBoards []string `json:"idBoards"`
	}
	if err := json.Unmarshal(raw, &member); err != nil {
		return boards.fail(&ParseError{Body: truncate(raw), Err: err})
	}

	ids := make([]string, 0, len(member.IDBoards))
	items := make([]*Board, 0, len(member.IDBoards))
	for _, id := range member.IDBoards {
		board, err := newBoard(ctx, boards.session, id)
		if err != nil {
			return boards.fail(fmt.Errorf("trello: board %s: %w", id, err))
		}
		ids = append(ids, id)
		items = append(items, board)
	}

	boards.boardIDs = ids
	boards.items = items
	boards.logger.Debug("refreshed boards", "user", boards.creds.UserID, "count", len(items))
	return boards.ok()
}

func (boards *Boards) BoardIDs() []string {
	return boards.boardIDs
}

func (boards *Boards) Items() []*Board {
	return boards.items
}

type Board struct {
	session
	status

	boardID string
	info    Info
}

func newBoard(ctx context.Context, s session, boardID string) (*Board, error) {
	board := &Board{session: s, boardID: boardID}
	if err := board.Refresh(ctx); err != nil {
		return nil, err
	}
	return board, nil
}

func (board *Board) Refresh(ctx context.Context) error {
	info, err := board.getObject(ctx, "/boards/"+board.boardID, board.authQuery())
	if err != nil {
		board.logger.Error("error obtaining board", "board", board.boardID, "err", err)
		return board.fail(err)
	}
	board.info = info
	return board.ok()
}

func (board *Board) ID() string {
	return board.boardID
}

func (board *Board) Info() Info {
	return board.info
}

func (board *Board) Lists(ctx context.Context) (*Lists, error) {
	return newLists(ctx, board.session, board.boardID)
}

func (board *Board) Cards(ctx context.Context) (*Cards, error) {
	return newCards(ctx, board.session, CardsScope{BoardID: board.boardID})
}
