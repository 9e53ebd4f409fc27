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

package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/asig/fffs/internal/blockdevice"
	"github.com/asig/fffs/internal/layout"
	"github.com/asig/fffs/internal/util"
)

// defaultFormatPartitionSize and defaultFormatSectorSize are the
// fallback arguments used when Mount is asked to format an unformatted
// device itself, matching the original driver's own fixed call
// (fffs_format(vol, 2, 1, false)) made from its init routine.
const (
	defaultFormatPartitionSize = 2
	defaultFormatSectorSize    = 1
)

// MountOption configures optional Mount behavior.
type MountOption func(*mountOptions)

type mountOptions struct {
	formatIfUnformatted bool
	activeBlockRescan   bool
}

// WithFormatIfUnformatted formats dev with the default parameters if its
// boot block doesn't carry a valid magic number, instead of failing.
func WithFormatIfUnformatted(format bool) MountOption {
	return func(o *mountOptions) { o.formatIfUnformatted = format }
}

// WithActiveBlockRescan re-scans the active data block's in-band slot
// encoding after the normal recovery walk and reconciles
// messages_in_block against what's actually there. This recovers from
// the partial-failure case in which a write's payload was persisted but
// the following sector-header update was lost (see the design notes on
// recovery scan depth).
func WithActiveBlockRescan(enabled bool) MountOption {
	return func(o *mountOptions) { o.activeBlockRescan = enabled }
}

// Mount reads the boot block of dev and walks the partition/sector jump
// chains to recover the append cursor.
func Mount(dev blockdevice.BlockDevice, opts ...MountOption) (*Engine, error) {
	var o mountOptions
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{dev: dev, metrics: GlobalMetrics()}

	if err := e.readBlock(0); err != nil {
		return nil, err
	}
	ph := layout.PartitionHeader(e.scratch[:])

	if !ph.IsValid() {
		if !o.formatIfUnformatted {
			return nil, newErr(KindNotFormatted, "boot block magic number mismatch")
		}
		if err := Format(dev, defaultFormatPartitionSize, defaultFormatSectorSize, false); err != nil {
			return nil, wrapErr(KindNotFormatted, err, "auto-format failed")
		}
		if err := e.readBlock(0); err != nil {
			return nil, err
		}
		ph = layout.PartitionHeader(e.scratch[:])
	}

	if ph.CardFull() {
		return nil, newErr(KindDeviceFull, "device is marked full")
	}

	e.partitionSize = ph.PartitionSize()
	e.sectorSize = ph.SectorSize()

	capacity := dev.CapacitySectors()
	partitionLBA := uint32(0)
	partitionID := uint8(0)
	for ph.JumpToNextPartition() {
		partitionID++
		partitionLBA = uint32(partitionID) * e.partitionSizeBlocks()
		if partitionLBA >= capacity {
			return nil, newErr(KindDeviceFull, "partition chain runs past device capacity")
		}
		if err := e.readBlock(partitionLBA); err != nil {
			return nil, err
		}
		ph = layout.PartitionHeader(e.scratch[:])
	}
	e.currentPartitionLBA = partitionLBA
	e.currentPartitionID = partitionID

	sectorLBA := partitionLBA
	for ph.JumpToNextSector() {
		sectorLBA += e.sectorSizeBlocks()
		if err := e.readBlock(sectorLBA); err != nil {
			return nil, err
		}
		ph = layout.PartitionHeader(e.scratch[:])
	}
	e.currentSectorLBA = sectorLBA

	sh := layout.SectorHeader(e.scratch[:])
	e.currentBlock = ph.LastBlock()
	e.messageID = ph.MessageID()

	blockIndex := 0
	for sh.MessageCountAt(blockIndex+1) > 0 {
		blockIndex++
	}
	e.blockIndex = blockIndex
	e.messagesInBlock = sh.MessageCountAt(blockIndex)

	if o.activeBlockRescan {
		if err := e.rescanActiveBlock(); err != nil {
			return nil, err
		}
	}

	log.Info().
		Uint32("partition_lba", e.currentPartitionLBA).
		Uint32("sector_lba", e.currentSectorLBA).
		Uint32("block", e.currentBlock).
		Uint32("message_id", e.messageID).
		Msg("fffs mount: recovered cursor")

	return e, nil
}

// rescanActiveBlock walks the active data block's own slot encoding and
// corrects messagesInBlock if it disagrees with what was actually
// persisted — the extension named in the design notes for the case
// where a write's sector-header update was lost after the payload made
// it to disk.
func (e *Engine) rescanActiveBlock() error {
	if err := e.readBlock(e.currentBlock); err != nil {
		return err
	}
	count := 0
	offset := 0
	free := layout.ScanFreeOffset(e.scratch[:])
	var slotStarts []int
	for offset < free {
		slotStarts = append(slotStarts, offset)
		offset = layout.StepOffset(e.scratch[:], offset)
		count++
	}
	if uint8(count) != e.messagesInBlock {
		delta := uint32(count) - uint32(e.messagesInBlock)
		log.Info().
			Int("scanned", count).
			Uint8("indexed", e.messagesInBlock).
			Uint32("block", e.currentBlock).
			Msg("fffs mount: active block rescan found a mismatch, reconciling")
		log.Debug().Msg("fffs mount: active block contents, slot starts marked\n" + util.HexDump(e.scratch[:], 0, free, slotStarts...))
		e.messagesInBlock = uint8(count)
		e.messageID += delta
	}
	return nil
}
