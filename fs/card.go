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
	"io"
	"time"

	"github.com/jecluis/trelloboards/trello"

	"github.com/jacobsa/fuse"
)

const cardInterval = 30 * time.Second

type FSCardMetaFile struct {
	BaseFSNode

	contents []byte
}

func (node *FSCardMetaFile) ShouldUpdate() bool {
	return false
}

func (node *FSCardMetaFile) Update(ctx context.Context) ([]FSNode, error) {
	return nil, fuse.EINVAL
}

func (node *FSCardMetaFile) setContents(contents []byte) {
	node.contents = contents
	node.NodeAttrs.Size = uint64(len(contents))
	node.NodeAttrs.Mtime = node.clock.Now()
}

func (node *FSCardMetaFile) ReadAt(dst []byte, offset int64) (int, error) {
	if offset >= int64(len(node.contents)) {
		return 0, io.EOF
	}

	n := copy(dst, node.contents[offset:])
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

// FSCard exposes one file per scalar field of the card record.
type FSCard struct {
	BaseFSNode

	Card *trello.Card

	// fresh is set while Card holds a record that arrived with its
	// parent's listing and has not been turned into files yet.
	fresh bool

	MetaFiles []FSNode
	ByName    map[string]*FSCardMetaFile
}

func (node *FSCard) setCard(card *trello.Card) {
	node.Card = card
	node.fresh = true
}

func (node *FSCard) ShouldUpdate() bool {
	return node.fresh || node.shouldUpdate(cardInterval)
}

func (node *FSCard) Update(ctx context.Context) ([]FSNode, error) {
	if !node.fresh {
		if err := node.Card.Refresh(ctx); err != nil {
			node.logger.Error("error updating card",
				"card", node.GetTrelloID(), "err", err)
			return nil, err
		}
	}
	node.fresh = false

	var newNodes []FSNode
	files := make([]FSNode, 0, len(node.MetaFiles))
	byName := make(map[string]*FSCardMetaFile, len(node.MetaFiles))
	for _, entry := range getMeta(node.Card.Info(), node.logger) {
		metaFile, ok := node.ByName[entry.Name]
		if !ok {
			metaFile = &FSCardMetaFile{}
			node.initChild(&metaFile.BaseFSNode, entry.Name,
				node.GetTrelloID()+"/_meta/"+entry.Name, false)
			newNodes = append(newNodes, metaFile)
		}
		metaFile.setContents(entry.Contents)
		files = append(files, metaFile)
		byName[entry.Name] = metaFile
	}
	node.MetaFiles = files
	node.ByName = byName

	node.markUpdated()
	return newNodes, nil
}

func (node *FSCard) LookupChild(name string) (FSNode, error) {
	return lookupIn(node.MetaFiles, name)
}

func (node *FSCard) ReadDir(dst []byte, offset int) int {
	return node.readDirEntries(dst, offset, node.MetaFiles)
}

// updateCards rebuilds a card directory's children from a fresh
// listing, keeping existing nodes for cards that are still present.
func updateCards(
	parent *BaseFSNode,
	current map[string]*FSCard,
	items []*trello.Card,
) ([]FSNode, map[string]*FSCard, []FSNode) {

	names := make([]string, len(items))
	ids := make([]string, len(items))
	for i, card := range items {
		names[i] = card.Info().Name()
		ids[i] = card.ID()
	}
	names = uniqueNames(names, ids)

	var newNodes []FSNode
	children := make([]FSNode, 0, len(items))
	byID := make(map[string]*FSCard, len(items))
	for i, card := range items {
		existing, ok := current[card.ID()]
		if !ok {
			existing = &FSCard{}
			parent.initChild(&existing.BaseFSNode, names[i], card.ID(), true)
			newNodes = append(newNodes, existing)
		}
		existing.setName(names[i])
		existing.setCard(card)
		children = append(children, existing)
		byID[card.ID()] = existing
	}
	return children, byID, newNodes
}
