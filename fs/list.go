/*
 * trelloboards - Trello boards, lists and cards
 * Copyright (C) 2022  Joao Eduardo Luis <joao@wipwd.dev>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */
package fs

import (
	"context"
	"time"

	"github.com/jecluis/trelloboards/trello"
)

const listInterval = 30 * time.Second

type FSList struct {
	BaseFSNode

	BoardNode *FSBoard
	List      *trello.List

	cards    *trello.Cards
	children []FSNode
	byID     map[string]*FSCard
}

func (node *FSList) ShouldUpdate() bool {
	return node.shouldUpdate(listInterval)
}

func (node *FSList) Update(ctx context.Context) ([]FSNode, error) {
	if node.cards == nil {
		cards, err := node.List.Cards(ctx)
		if err != nil {
			node.logger.Error("error updating cards for list",
				"list", node.GetTrelloID(), "board", node.BoardNode.GetTrelloID(), "err", err)
			return nil, err
		}
		node.cards = cards
	} else if err := node.cards.Refresh(ctx); err != nil {
		node.logger.Error("error updating cards for list",
			"list", node.GetTrelloID(), "board", node.BoardNode.GetTrelloID(), "err", err)
		return nil, err
	}

	var newNodes []FSNode
	node.children, node.byID, newNodes = updateCards(
		&node.BaseFSNode, node.byID, node.cards.Items(),
	)
	node.markUpdated()
	node.logger.Debug("updated cards for list",
		"list", node.GetTrelloID(), "new", len(newNodes), "cards", len(node.children))
	return newNodes, nil
}

func (node *FSList) LookupChild(name string) (FSNode, error) {
	return lookupIn(node.children, name)
}

func (node *FSList) ReadDir(dst []byte, offset int) int {
	return node.readDirEntries(dst, offset, node.children)
}
