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
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"
)

const (
	dirMode  = 0500 | os.ModeDir
	fileMode = 0400
)

type BaseFSNode struct {
	name string

	uid uint32
	gid uint32

	NodeID    fuseops.InodeID
	NodeAttrs fuseops.InodeAttributes

	isDir    bool
	TrelloID string

	lastUpdate time.Time

	clock  timeutil.Clock
	logger *slog.Logger
}

// initChild sets up child with the ownership, clock and logger of base.
func (base *BaseFSNode) initChild(
	child *BaseFSNode,
	name string,
	trelloID string,
	isDir bool,
) {
	now := base.clock.Now()
	mode := os.FileMode(fileMode)
	nlink := uint32(1)
	if isDir {
		mode = dirMode
		nlink = 2
	}
	child.name = name
	child.uid = base.uid
	child.gid = base.gid
	child.isDir = isDir
	child.TrelloID = trelloID
	child.clock = base.clock
	child.logger = base.logger
	child.NodeAttrs = fuseops.InodeAttributes{
		Mode:   mode,
		Nlink:  nlink,
		Uid:    base.uid,
		Gid:    base.gid,
		Atime:  now,
		Mtime:  now,
		Ctime:  now,
		Crtime: now,
	}
}

func (base *BaseFSNode) GetName() string {
	return base.name
}

func (base *BaseFSNode) setName(name string) {
	base.name = name
}

func (base *BaseFSNode) GetNodeID() fuseops.InodeID {
	return base.NodeID
}

func (base *BaseFSNode) GetNodeAttrs() fuseops.InodeAttributes {
	return base.NodeAttrs
}

func (base *BaseFSNode) GetTrelloID() string {
	return base.TrelloID
}

func (base *BaseFSNode) SetNodeID(id fuseops.InodeID) {
	base.NodeID = id
}

func (base *BaseFSNode) IsDir() bool {
	return base.isDir
}

func (base *BaseFSNode) markUpdated() {
	base.lastUpdate = base.clock.Now()
	base.NodeAttrs.Mtime = base.lastUpdate
}

func (base *BaseFSNode) shouldUpdate(interval time.Duration) bool {
	if base.lastUpdate.IsZero() {
		return true
	}
	return base.clock.Now().Sub(base.lastUpdate) >= interval
}

func (base *BaseFSNode) LookupChild(name string) (FSNode, error) {
	return nil, fuse.ENOENT
}

func (base *BaseFSNode) ReadDir(dst []byte, offset int) int {
	return 0
}

func (base *BaseFSNode) ReadAt(dst []byte, offset int64) (int, error) {
	return 0, fuse.EINVAL
}

func lookupIn(children []FSNode, name string) (FSNode, error) {
	for _, child := range children {
		if child.GetName() == name {
			return child, nil
		}
	}
	return nil, fuse.ENOENT
}

// readDirEntries writes dirents for children starting at offset and
// returns the number of bytes written into dst.
func (base *BaseFSNode) readDirEntries(
	dst []byte,
	offset int,
	children []FSNode,
) int {
	var size int
	for i := offset; i < len(children); i++ {
		child := children[i]
		direntType := fuseutil.DT_File
		if child.IsDir() {
			direntType = fuseutil.DT_Directory
		}
		tmp := fuseutil.WriteDirent(dst[size:], fuseutil.Dirent{
			Name:   child.GetName(),
			Inode:  child.GetNodeID(),
			Type:   direntType,
			Offset: fuseops.DirOffset(i + 1),
		})
		if tmp == 0 {
			base.logger.Debug("read dir: no more space for dirent",
				"dir", base.name, "entry", child.GetName())
			break
		}
		size += tmp
	}
	return size
}

// entryName maps a Trello name onto a single path component.
func entryName(name string, id string) string {
	name = strings.ReplaceAll(name, "/", "-")
	if name == "" || name == "." || name == ".." {
		return id
	}
	return name
}

// uniqueNames assigns each (name, id) pair a distinct entry name,
// appending the id to later duplicates.
func uniqueNames(names []string, ids []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i := range names {
		n := entryName(names[i], ids[i])
		if seen[n] {
			n = fmt.Sprintf("%s (%s)", n, ids[i])
		}
		seen[n] = true
		out[i] = n
	}
	return out
}
