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

const rootInterval = 60 * time.Second

// TrelloTreeRoot lists the user's boards.
type TrelloTreeRoot struct {
	BaseFSNode

	client *trello.Trello
	boards *trello.Boards

	children []FSNode
	byID     map[string]*FSBoard
}

func (node *TrelloTreeRoot) ShouldUpdate() bool {
	return node.shouldUpdate(rootInterval)
}

func (node *TrelloTreeRoot) Update(ctx context.Context) ([]FSNode, error) {

	if node.boards == nil {
		boards, err := node.client.Boards(ctx)
		if err != nil {
			node.logger.Error("error updating boards for root node", "err", err)
			return nil, err
		}
		node.boards = boards
	} else if err := node.boards.Refresh(ctx); err != nil {
		node.logger.Error("error updating boards for root node", "err", err)
		return nil, err
	}

	items := node.boards.Items()
	names := make([]string, len(items))
	ids := make([]string, len(items))
	for i, board := range items {
		names[i] = board.Info().Name()
		ids[i] = board.ID()
	}
	names = uniqueNames(names, ids)

	var newNodes []FSNode
	children := make([]FSNode, 0, len(items))
	byID := make(map[string]*FSBoard, len(items))
	for i, board := range items {
		existing, ok := node.byID[board.ID()]
		if !ok {
			existing = &FSBoard{}
			node.initChild(&existing.BaseFSNode, names[i], board.ID(), true)
			newNodes = append(newNodes, existing)
			node.logger.Debug("update root: new board",
				"name", names[i], "board", board.ID())
		}
		existing.setName(names[i])
		existing.Board = board
		children = append(children, existing)
		byID[board.ID()] = existing
	}
	node.children = children
	node.byID = byID

	node.markUpdated()
	node.logger.Debug("updated root",
		"new", len(newNodes), "boards", len(children))
	return newNodes, nil
}

func (node *TrelloTreeRoot) LookupChild(name string) (FSNode, error) {
	return lookupIn(node.children, name)
}

func (node *TrelloTreeRoot) ReadDir(dst []byte, offset int) int {
	return node.readDirEntries(dst, offset, node.children)
}
