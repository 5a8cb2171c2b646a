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

const (
	boardCardsInterval = 30 * time.Second
	boardListsInterval = 60 * time.Second
)

// FSBoardCardsDirMeta is the board's "cards" directory: every card on
// the board regardless of list.
type FSBoardCardsDirMeta struct {
	BaseFSNode

	BoardNode *FSBoard

	cards    *trello.Cards
	children []FSNode
	byID     map[string]*FSCard
}

func (node *FSBoardCardsDirMeta) ShouldUpdate() bool {
	return node.shouldUpdate(boardCardsInterval)
}

func (node *FSBoardCardsDirMeta) Update(ctx context.Context) ([]FSNode, error) {
	board := node.BoardNode.Board

	if node.cards == nil {
		cards, err := board.Cards(ctx)
		if err != nil {
			node.logger.Error("error updating cards for board",
				"board", board.ID(), "err", err)
			return nil, err
		}
		node.cards = cards
	} else if err := node.cards.Refresh(ctx); err != nil {
		node.logger.Error("error updating cards for board",
			"board", board.ID(), "err", err)
		return nil, err
	}

	var newNodes []FSNode
	node.children, node.byID, newNodes = updateCards(
		&node.BaseFSNode, node.byID, node.cards.Items(),
	)
	node.markUpdated()
	node.logger.Debug("updated cards for board",
		"board", board.ID(), "new", len(newNodes), "cards", len(node.children))
	return newNodes, nil
}

func (node *FSBoardCardsDirMeta) LookupChild(name string) (FSNode, error) {
	return lookupIn(node.children, name)
}

func (node *FSBoardCardsDirMeta) ReadDir(dst []byte, offset int) int {
	return node.readDirEntries(dst, offset, node.children)
}

// FSBoardListsDirMeta is the board's "lists" directory.
type FSBoardListsDirMeta struct {
	BaseFSNode

	BoardNode *FSBoard

	lists    *trello.Lists
	children []FSNode
	byID     map[string]*FSList
}

func (node *FSBoardListsDirMeta) ShouldUpdate() bool {
	return node.shouldUpdate(boardListsInterval)
}

func (node *FSBoardListsDirMeta) Update(ctx context.Context) ([]FSNode, error) {
	board := node.BoardNode.Board

	if node.lists == nil {
		lists, err := board.Lists(ctx)
		if err != nil {
			node.logger.Error("error updating lists for board",
				"board", board.ID(), "err", err)
			return nil, err
		}
		node.lists = lists
	} else if err := node.lists.Refresh(ctx); err != nil {
		node.logger.Error("error updating lists for board",
			"board", board.ID(), "err", err)
		return nil, err
	}

	items := node.lists.Items()
	names := make([]string, len(items))
	ids := make([]string, len(items))
	for i, list := range items {
		names[i] = list.Info().Name()
		ids[i] = list.ID()
	}
	names = uniqueNames(names, ids)

	var newNodes []FSNode
	children := make([]FSNode, 0, len(items))
	byID := make(map[string]*FSList, len(items))
	for i, list := range items {
		existing, ok := node.byID[list.ID()]
		if !ok {
			existing = &FSList{BoardNode: node.BoardNode}
			node.initChild(&existing.BaseFSNode, names[i], list.ID(), true)
			newNodes = append(newNodes, existing)
			node.logger.Debug("new list on board",
				"list", list.ID(), "board", board.ID())
		}
		existing.setName(names[i])
		existing.List = list
		children = append(children, existing)
		byID[list.ID()] = existing
	}
	node.children = children
	node.byID = byID

	node.markUpdated()
	node.logger.Debug("updated lists for board",
		"board", board.ID(), "new", len(newNodes), "lists", len(children))
	return newNodes, nil
}

func (node *FSBoardListsDirMeta) LookupChild(name string) (FSNode, error) {
	return lookupIn(node.children, name)
}

func (node *FSBoardListsDirMeta) ReadDir(dst []byte, offset int) int {
	return node.readDirEntries(dst, offset, node.children)
}

// FSBoard holds the fixed "cards" and "lists" directories. Its own
// record is refreshed along with the root.
type FSBoard struct {
	BaseFSNode

	MetaCardsDir *FSBoardCardsDirMeta
	MetaListsDir *FSBoardListsDirMeta

	Board *trello.Board
}

func (node *FSBoard) ShouldUpdate() bool {
	return node.MetaCardsDir == nil || node.MetaListsDir == nil
}

func (node *FSBoard) Update(ctx context.Context) ([]FSNode, error) {
	if node.MetaCardsDir != nil && node.MetaListsDir != nil {
		return nil, nil
	}

	node.MetaCardsDir = &FSBoardCardsDirMeta{BoardNode: node}
	node.initChild(&node.MetaCardsDir.BaseFSNode,
		"cards", node.GetTrelloID()+"/cards", true)
	node.MetaListsDir = &FSBoardListsDirMeta{BoardNode: node}
	node.initChild(&node.MetaListsDir.BaseFSNode,
		"lists", node.GetTrelloID()+"/lists", true)

	node.markUpdated()
	return []FSNode{node.MetaCardsDir, node.MetaListsDir}, nil
}

func (node *FSBoard) entries() []FSNode {
	if node.MetaCardsDir == nil || node.MetaListsDir == nil {
		return nil
	}
	return []FSNode{node.MetaCardsDir, node.MetaListsDir}
}

func (node *FSBoard) LookupChild(name string) (FSNode, error) {
	return lookupIn(node.entries(), name)
}

func (node *FSBoard) ReadDir(dst []byte, offset int) int {
	return node.readDirEntries(dst, offset, node.entries())
}
