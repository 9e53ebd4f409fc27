/*
 * This file is part of then Oberon Disk Image Tool ("odit")
 * Copyright (C) 2025 Andreas Signer <asigner@gmail.com>
 *
 * odit is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * odit is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with Oberon Disk Image Tool.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package fffsfuse projects a mounted message log as a read-only
// directory of files, one per message: name "0000000042" is message
// id 42, its contents are the message's payload. There is no way to
// create, rename, or delete a file through this projection; the log
// itself is the only writer.
package fffsfuse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"

	fuse "bazil.org/fuse"
	fuse_fs "bazil.org/fuse/fs"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/asig/fffs"
)

// nameWidth is wide enough for the largest uint32 id, so every name
// sorts the same lexicographically as numerically.
const nameWidth = 10

func nameFor(id uint32) string {
	return fmt.Sprintf("%0*d", nameWidth, id)
}

func idFor(name string) (uint32, bool) {
	if len(name) != nameWidth {
		return 0, false
	}
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return 0, false
	}
	// Reject non-canonical spellings (e.g. leading/trailing junk ParseUint
	// would tolerate) so each id has exactly one name.
	if nameFor(uint32(n)) != name {
		return 0, false
	}
	return uint32(n), true
}

// FS is the root of the projection.
type FS struct {
	vol *fffs.Volume
	uid uint32
	gid uint32
}

type dirNode struct {
	vol *fffs.Volume
	uid uint32
	gid uint32
}

type fileNode struct {
	vol  *fffs.Volume
	id   uint32
	uid  uint32
	gid  uint32
}

type fileHandle struct {
	file *fileNode
}

// NewFS wraps a mounted Volume as a bazil.org/fuse filesystem.
func NewFS(vol *fffs.Volume) fuse_fs.FS {
	return FS{
		vol: vol,
		uid: uint32(os.Getuid()),
		gid: uint32(os.Getgid()),
	}
}

func (f FS) Root() (fuse_fs.Node, error) {
	return &dirNode{vol: f.vol, uid: f.uid, gid: f.gid}, nil
}

func (d dirNode) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = 1
	a.Mode = os.ModeDir | 0555
	a.Uid = d.uid
	a.Gid = d.gid
	return nil
}

func (d dirNode) Lookup(ctx context.Context, name string) (fuse_fs.Node, error) {
	log.Debug().Msgf("FUSE Lookup for %s", name)
	id, ok := idFor(name)
	if !ok {
		return nil, syscall.ENOENT
	}
	if _, err := d.vol.ReadLen(ctx, id); err != nil {
		if errors.Is(err, fffs.ErrNotFound) {
			return nil, syscall.ENOENT
		}
		return nil, pkgerrors.Wrapf(err, "looking up message %d", id)
	}
	return &fileNode{vol: d.vol, id: id, uid: d.uid, gid: d.gid}, nil
}

func (d dirNode) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	log.Debug().Msgf("FUSE ReadDirAll")
	next, err := d.vol.NextMessageID(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing messages")
	}
	res := make([]fuse.Dirent, 0, next)
	for id := uint32(0); id < next; id++ {
		res = append(res, fuse.Dirent{
			Inode: uint64(id) + 2,
			Name:  nameFor(id),
			Type:  fuse.DT_File,
		})
	}
	return res, nil
}

func (f fileNode) Attr(ctx context.Context, a *fuse.Attr) error {
	log.Debug().Msgf("FUSE Attr for message %d", f.id)
	size, err := f.vol.ReadLen(ctx, f.id)
	if err != nil {
		return pkgerrors.Wrapf(err, "stat message %d", f.id)
	}
	a.Inode = uint64(f.id) + 2
	a.Mode = 0444
	a.Size = uint64(size)
	a.Uid = f.uid
	a.Gid = f.gid
	return nil
}

func (f fileNode) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fuse_fs.Handle, error) {
	log.Debug().Msgf("FUSE Open for message %d: req = %+v", f.id, req)
	return fileHandle{file: &f}, nil
}

func (h fileHandle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	log.Debug().Msgf("FUSE Read for message %d: offset = %d, size = %d", h.file.id, req.Offset, req.Size)
	payload, err := h.file.vol.Read(ctx, h.file.id)
	if err != nil {
		return pkgerrors.Wrapf(err, "reading message %d", h.file.id)
	}
	if req.Offset >= int64(len(payload)) {
		resp.Data = []byte{}
		return nil
	}
	end := req.Offset + int64(req.Size)
	if end > int64(len(payload)) {
		end = int64(len(payload))
	}
	resp.Data = payload[req.Offset:end]
	return nil
}

func (h fileHandle) Flush(ctx context.Context, req *fuse.FlushRequest) error {
	return nil
}

func (h fileHandle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	return nil
}
