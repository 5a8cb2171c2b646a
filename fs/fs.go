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
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jecluis/trelloboards/trello"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"
)

// How long the kernel may cache attributes and entries.
const attrTTL = 10 * time.Second

type trelloFS struct {
	fuseutil.NotImplementedFileSystem

	uid uint32
	gid uint32

	// lock serializes every operation; Trello requests are issued
	// while it is held.
	lock sync.Mutex

	inodes *inodeTable

	Clock  timeutil.Clock
	logger *slog.Logger
}

// NewTrelloFS returns a read-only FUSE server exposing the boards
// reachable through client.
func NewTrelloFS(
	uid uint32,
	gid uint32,
	client *trello.Trello,
	logger *slog.Logger,
) (fuse.Server, error) {
	if client == nil {
		return nil, errors.New("fs: nil trello client")
	}
	fs := newTrelloFS(uid, gid, client, timeutil.RealClock(), logger)
	return fuseutil.NewFileSystemServer(fs), nil
}

func newTrelloFS(
	uid uint32,
	gid uint32,
	client *trello.Trello,
	clock timeutil.Clock,
	logger *slog.Logger,
) *trelloFS {
	if logger == nil {
		logger = slog.Default()
	}
	root := &TrelloTreeRoot{client: client}
	root.name = "/"
	root.uid = uid
	root.gid = gid
	root.isDir = true
	root.clock = clock
	root.logger = logger
	now := clock.Now()
	root.NodeAttrs = fuseops.InodeAttributes{
		Mode:   dirMode,
		Nlink:  2,
		Uid:    uid,
		Gid:    gid,
		Atime:  now,
		Mtime:  now,
		Ctime:  now,
		Crtime: now,
	}

	return &trelloFS{
		uid:    uid,
		gid:    gid,
		inodes: newInodeTable(root),
		Clock:  clock,
		logger: logger,
	}
}

// refresh updates node if its interval has passed and registers any
// children it created.
func (fs *trelloFS) refresh(ctx context.Context, node FSNode) error {
	if !node.ShouldUpdate() {
		return nil
	}
	newNodes, err := node.Update(ctx)
	if err != nil {
		fs.logger.Error("refresh failed",
			"node", node.GetName(), "trello_id", node.GetTrelloID(), "err", err)
		return fuse.EIO
	}
	fs.inodes.register(newNodes)
	return nil
}

func (fs *trelloFS) StatFS(
	ctx context.Context,
	op *fuseops.StatFSOp,
) error {
	return nil
}

func (fs *trelloFS) LookUpInode(
	ctx context.Context,
	op *fuseops.LookUpInodeOp,
) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	parent, ok := fs.inodes.get(op.Parent)
	if !ok {
		return fuse.ENOENT
	}
	if err := fs.refresh(ctx, parent); err != nil {
		return err
	}
	child, err := parent.LookupChild(op.Name)
	if err != nil {
		return err
	}
	fs.inodes.lookedUp(child)

	expiration := fs.Clock.Now().Add(attrTTL)
	op.Entry.Child = child.GetNodeID()
	op.Entry.Attributes = child.GetNodeAttrs()
	op.Entry.AttributesExpiration = expiration
	op.Entry.EntryExpiration = expiration
	return nil
}

func (fs *trelloFS) GetInodeAttributes(
	ctx context.Context,
	op *fuseops.GetInodeAttributesOp,
) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	node, ok := fs.inodes.get(op.Inode)
	if !ok {
		return fuse.ENOENT
	}
	op.Attributes = node.GetNodeAttrs()
	op.AttributesExpiration = fs.Clock.Now().Add(attrTTL)
	return nil
}

func (fs *trelloFS) SetInodeAttributes(
	ctx context.Context,
	op *fuseops.SetInodeAttributesOp,
) error {
	return fuse.EIO
}

func (fs *trelloFS) ForgetInode(
	ctx context.Context,
	op *fuseops.ForgetInodeOp,
) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.inodes.forget(op.Inode, op.N)
	return nil
}

func (fs *trelloFS) OpenDir(
	ctx context.Context,
	op *fuseops.OpenDirOp,
) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	node, ok := fs.inodes.get(op.Inode)
	if !ok {
		return fuse.ENOENT
	}
	if !node.IsDir() {
		return fuse.ENOTDIR
	}
	return nil
}

func (fs *trelloFS) ReadDir(
	ctx context.Context,
	op *fuseops.ReadDirOp,
) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	node, ok := fs.inodes.get(op.Inode)
	if !ok {
		return fuse.ENOENT
	}
	// Only refresh at the start of a listing so offsets stay coherent.
	if op.Offset == 0 {
		if err := fs.refresh(ctx, node); err != nil {
			return err
		}
	}
	op.BytesRead = node.ReadDir(op.Dst, int(op.Offset))
	return nil
}

func (fs *trelloFS) OpenFile(
	ctx context.Context,
	op *fuseops.OpenFileOp,
) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	node, ok := fs.inodes.get(op.Inode)
	if !ok {
		return fuse.ENOENT
	}
	if node.IsDir() {
		return fuse.EINVAL
	}
	return nil
}

func (fs *trelloFS) ReadFile(
	ctx context.Context,
	op *fuseops.ReadFileOp,
) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	node, ok := fs.inodes.get(op.Inode)
	if !ok {
		return fuse.ENOENT
	}
	n, err := node.ReadAt(op.Dst, op.Offset)
	op.BytesRead = n
	if err == io.EOF {
		return nil
	}
	return err
}
