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
	"errors"
)

var ErrNoCardsScope = errors.New("trello: cards need a board or list id")

// CardsScope selects the cards endpoint. ListID wins when both are set.
type CardsScope struct {
	BoardID string
	ListID  string
}

func (scope CardsScope) path() (string, error) {
	switch {
	case scope.ListID != "":
		return "/lists/" + scope.ListID + "/cards", nil
	case scope.BoardID != "":
		return "/boards/" + scope.BoardID + "/cards", nil
	}
	return "", ErrNoCardsScope
}

type Cards struct {
	session
	status

	scope   CardsScope
	cardIDs []string
	items   []*Card
}

func newCards(ctx context.Context, s session, scope CardsScope) (*Cards, error) {
	if _, err := scope.path(); err != nil {
		return nil, err
	}
	cards := &Cards{session: s, scope: scope}
	if err := cards.Refresh(ctx); err != nil {
		return nil, err
	}
	return cards, nil
}

func (cards *Cards) Refresh(ctx context.Context) error {
	path, err := cards.scope.path()
	if err != nil {
		return cards.fail(err)
	}
	records, err := cards.getRecords(ctx, path)
	if err != nil {
		cards.logger.Error("error obtaining cards", "path", path, "err", err)
		return cards.fail(err)
	}

	ids := make([]string, 0, len(records))
	items := make([]*Card, 0, len(records))
	for _, rec := range records {
		card, err := newCard(ctx, cards.session, rec.ID(), FromPayload(rec))
		if err != nil {
			return cards.fail(err)
		}
		ids = append(ids, rec.ID())
		items = append(items, card)
	}

	cards.cardIDs = ids
	cards.items = items
	return cards.ok()
}

func (cards *Cards) Scope() CardsScope {
	return cards.scope
}

func (cards *Cards) CardIDs() []string {
	return cards.cardIDs
}

func (cards *Cards) Items() []*Card {
	return cards.items
}

type Card struct {
	session
	status

	cardID string
	info   Info
}

func newCard(
	ctx context.Context,
	s session,
	cardID string,
	src Source,
) (*Card, error) {
	card := &Card{session: s, cardID: cardID}
	if src.seeded {
		card.info = src.info
		card.ok()
		return card, nil
	}
	if err := card.Refresh(ctx); err != nil {
		return nil, err
	}
	return card, nil
}

func (card *Card) Refresh(ctx context.Context) error {
	info, err := card.getObject(ctx, "/cards/"+card.cardID, card.authQuery())
	if err != nil {
		card.logger.Error("error obtaining card", "card", card.cardID, "err", err)
		return card.fail(err)
	}
	card.info = info
	return card.ok()
}

func (card *Card) ID() string {
	return card.cardID
}

func (card *Card) Info() Info {
	return card.info
}
