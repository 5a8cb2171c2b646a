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
)

// Lists holds the lists of one board, in API order.
type Lists struct {
	session
	status

	boardID string
	listIDs []string
	items   []*List
}

func newLists(ctx context.Context, s session, boardID string) (*Lists, error) {
	lists := &Lists{session: s, boardID: boardID}
	if err := lists.Refresh(ctx); err != nil {
		return nil, err
	}
	return lists, nil
}

func (lists *Lists) Refresh(ctx context.Context) error {
	records, err := lists.getRecords(ctx, "/boards/"+lists.boardID+"/lists")
	if err != nil {
		lists.logger.Error("error obtaining lists", "board", lists.boardID, "err", err)
		return lists.fail(err)
	}

	ids := make([]string, 0, len(records))
	items := make([]*List, 0, len(records))
	for _, rec := range records {
		list, err := newList(ctx, lists.session, rec.ID(), FromPayload(rec))
		if err != nil {
			return lists.fail(err)
		}
		ids = append(ids, rec.ID())
		items = append(items, list)
	}

	lists.listIDs = ids
	lists.items = items
	return lists.ok()
}

func (lists *Lists) BoardID() string {
	return lists.boardID
}

func (lists *Lists) ListIDs() []string {
	return lists.listIDs
}

func (lists *Lists) Items() []*List {
	return lists.items
}

type List struct {
	session
	status

	listID string
	info   Info
}

// newList only goes to the network when src is FromNetwork.
func newList(
	ctx context.Context,
	s session,
	listID string,
	src Source,
) (*List, error) {
	list := &List{session: s, listID: listID}
	if src.seeded {
		list.info = src.info
		list.ok()
		return list, nil
	}
	if err := list.Refresh(ctx); err != nil {
		return nil, err
	}
	return list, nil
}

func (list *List) Refresh(ctx context.Context) error {
	info, err := list.getObject(ctx, "/lists/"+list.listID, list.authQuery())
	if err != nil {
		list.logger.Error("error obtaining list", "list", list.listID, "err", err)
		return list.fail(err)
	}
	list.info = info
	return list.ok()
}

func (list *List) ID() string {
	return list.listID
}

func (list *List) Info() Info {
	return list.info
}

func (list *List) Cards(ctx context.Context) (*Cards, error) {
	return newCards(ctx, list.session, CardsScope{ListID: list.listID})
}
