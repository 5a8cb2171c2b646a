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

	"github.com/jacobsa/fuse/fuseops"
)

// FSNode is one entry in the mounted tree. Update refreshes the node
// from Trello and returns the children it created, which the
// filesystem then assigns inode ids to.
type FSNode interface {
	ShouldUpdate() bool
	Update(ctx context.Context) ([]FSNode, error)
	GetName() string
	GetTrelloID() string
	GetNodeID() fuseops.InodeID
	GetNodeAttrs() fuseops.InodeAttributes
	SetNodeID(fuseops.InodeID)
	IsDir() bool

	LookupChild(string) (FSNode, error)

	ReadDir([]byte, int) int
	ReadAt([]byte, int64) (int, error)
}
