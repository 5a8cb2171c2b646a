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
	"github.com/jacobsa/fuse/fuseops"
)

// inodeTable maps inode ids to nodes. Ids are never reused; an entry
// is dropped once the kernel has forgotten every lookup of it.
type inodeTable struct {
	nodes   map[fuseops.InodeID]FSNode
	lookups map[fuseops.InodeID]uint64
	next    fuseops.InodeID
}

func newInodeTable(root FSNode) *inodeTable {
	table := &inodeTable{
		nodes:   make(map[fuseops.InodeID]FSNode),
		lookups: make(map[fuseops.InodeID]uint64),
		next:    fuseops.RootInodeID + 1,
	}
	root.SetNodeID(fuseops.RootInodeID)
	table.nodes[fuseops.RootInodeID] = root
	return table
}

func (table *inodeTable) get(id fuseops.InodeID) (FSNode, bool) {
	node, ok := table.nodes[id]
	return node, ok
}

// register gives every node without an id a fresh one.
func (table *inodeTable) register(nodes []FSNode) {
	for _, node := range nodes {
		table.add(node)
	}
}

func (table *inodeTable) add(node FSNode) {
	if node.GetNodeID() == 0 {
		node.SetNodeID(table.next)
		table.next++
	}
	table.nodes[node.GetNodeID()] = node
}

func (table *inodeTable) lookedUp(node FSNode) {
	table.add(node)
	table.lookups[node.GetNodeID()]++
}

func (table *inodeTable) forget(id fuseops.InodeID, n uint64) {
	if id == fuseops.RootInodeID {
		return
	}
	count := table.lookups[id]
	if n >= count {
		delete(table.lookups, id)
		delete(table.nodes, id)
		return
	}
	table.lookups[id] = count - n
}
