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

// Package fffs is the append-only message log for raw block devices: a
// monotonically numbered sequence of variable-length binary messages
// with O(1) amortized append and bounded random-access read through a
// two-level sparse index. Volume is the single entry point; it
// serializes every operation against the engine with a bounded-wait
// mutex so callers from multiple goroutines never race on the shared
// scratch buffer.
package fffs

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/asig/fffs/internal/blockdevice"
	"github.com/asig/fffs/internal/engine"
)

// Re-exported error kinds and sentinels, so callers never need to import
// internal/engine directly.
type Kind = engine.Kind

const (
	KindIoError         = engine.KindIoError
	KindInvalidSize     = engine.KindInvalidSize
	KindInvalidArgument = engine.KindInvalidArgument
	KindNotFound        = engine.KindNotFound
	KindDeviceFull      = engine.KindDeviceFull
	KindNotFormatted    = engine.KindNotFormatted
	KindBusy            = engine.KindBusy
)

var (
	ErrIoError         = engine.ErrIoError
	ErrInvalidSize     = engine.ErrInvalidSize
	ErrInvalidArgument = engine.ErrInvalidArgument
	ErrNotFound        = engine.ErrNotFound
	ErrDeviceFull      = engine.ErrDeviceFull
	ErrNotFormatted    = engine.ErrNotFormatted
	ErrBusy            = engine.ErrBusy
)

// acquireTimeout bounds how long an operation waits to take the
// volume's mutex before giving up with ErrBusy, mirroring the cooperative
// scheduler's spin-with-timeout acquire in the source this design is
// based on.
const acquireTimeout = 200 * time.Millisecond

// BlockDevice is the sector I/O primitive Volume is layered on top of.
type BlockDevice = blockdevice.BlockDevice

// NewFileDevice opens path as a BlockDevice with room for
// capacitySectors 512-byte sectors, creating and sizing the file if
// needed.
func NewFileDevice(path string, capacitySectors uint32) (*blockdevice.FileDevice, error) {
	return blockdevice.NewFileDevice(path, capacitySectors)
}

// NewMemoryDevice allocates a deterministic in-RAM BlockDevice, for
// tests and throwaway volumes.
func NewMemoryDevice(capacitySectors uint32) *blockdevice.MemoryDevice {
	return blockdevice.NewMemoryDevice(capacitySectors)
}

// Volume is a mounted message log. The zero value is not usable; obtain
// one from Mount.
type Volume struct {
	eng *engine.Engine
	sem *semaphore.Weighted
}

// Format initializes dev as an empty FFFS volume. partitionSize and
// sectorSize are header byte fields (0 means 1) expressing partition and
// sector extents as multiples of the fixed 256 MiB / 128 KiB units.
func Format(dev BlockDevice, partitionSize, sectorSize uint8, messageRotate bool) error {
	return engine.Format(dev, partitionSize, sectorSize, messageRotate)
}

// Mount recovers the append cursor from dev and returns a ready Volume.
// If formatIfUnformatted is true and dev's boot block doesn't carry a
// valid magic number, dev is formatted with default parameters before
// mounting. If rescanActiveBlock is true, the active data block's
// in-band slot encoding is re-scanned and reconciled against the sector
// index, recovering from a write whose payload reached disk but whose
// index update did not (see the design notes on recovery scan depth).
func Mount(dev BlockDevice, formatIfUnformatted bool, rescanActiveBlock bool) (*Volume, error) {
	eng, err := engine.Mount(dev,
		engine.WithFormatIfUnformatted(formatIfUnformatted),
		engine.WithActiveBlockRescan(rescanActiveBlock),
	)
	if err != nil {
		return nil, err
	}
	return &Volume{eng: eng, sem: semaphore.NewWeighted(1)}, nil
}

func (v *Volume) acquire(ctx context.Context) error {
	start := time.Now()
	defer func() {
		engine.GlobalMetrics().SemaphoreWaitSeconds.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()
	if ctx.Err() != nil || v.sem.Acquire(ctx, 1) != nil {
		return ErrBusy
	}
	return nil
}

func (v *Volume) release() {
	v.sem.Release(1)
}

// Write appends payload as a new message and returns its assigned id.
// 1 <= len(payload) <= 510.
func (v *Volume) Write(ctx context.Context, payload []byte) (uint32, error) {
	if err := v.acquire(ctx); err != nil {
		return 0, err
	}
	defer v.release()
	return v.eng.Write(payload)
}

// Read returns a copy of message id's payload.
func (v *Volume) Read(ctx context.Context, id uint32) ([]byte, error) {
	if err := v.acquire(ctx); err != nil {
		return nil, err
	}
	defer v.release()
	return v.eng.Read(id)
}

// ReadLen returns the length of message id's payload without copying it.
func (v *Volume) ReadLen(ctx context.Context, id uint32) (int, error) {
	if err := v.acquire(ctx); err != nil {
		return 0, err
	}
	defer v.release()
	return v.eng.ReadLen(id)
}

// Erase zero-fills message id's payload in place, preserving its length.
// id must be a message already written; an out-of-range id returns
// ErrInvalidArgument (not ErrNotFound, which is reserved for Read).
func (v *Volume) Erase(ctx context.Context, id uint32) error {
	if err := v.acquire(ctx); err != nil {
		return err
	}
	defer v.release()
	return v.eng.Erase(id)
}

// Update overwrites message id's payload in place. newPayload must be
// exactly as long as the original message, or ErrInvalidSize is
// returned. An out-of-range id returns ErrInvalidArgument (not
// ErrNotFound, which is reserved for Read).
func (v *Volume) Update(ctx context.Context, id uint32, newPayload []byte) error {
	if err := v.acquire(ctx); err != nil {
		return err
	}
	defer v.release()
	return v.eng.Update(id, newPayload)
}

// NextMessageID returns the id that will be assigned to the next
// successful write.
func (v *Volume) NextMessageID(ctx context.Context) (uint32, error) {
	if err := v.acquire(ctx); err != nil {
		return 0, err
	}
	defer v.release()
	return v.eng.MessageID(), nil
}

// DebugReadBlock reads a single raw device block without interpreting
// it, for low-level inspection tooling.
func (v *Volume) DebugReadBlock(ctx context.Context, lba uint32) ([blockdevice.SectorSize]byte, error) {
	if err := v.acquire(ctx); err != nil {
		return [blockdevice.SectorSize]byte{}, err
	}
	defer v.release()
	return v.eng.DebugReadBlock(lba)
}

// Unmount releases the volume. The underlying BlockDevice is not closed;
// callers that opened a FileDevice are responsible for closing it.
func (v *Volume) Unmount() error {
	return nil
}
