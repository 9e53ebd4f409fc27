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
	"github.com/asig/fffs/internal/blockdevice"
	"github.com/asig/fffs/internal/layout"
)

// Write appends payload as a new message and returns its assigned id.
func (e *Engine) Write(payload []byte) (uint32, error) {
	maxLen := layout.MaxPayloadLen(blockdevice.SectorSize)
	if len(payload) == 0 || len(payload) > maxLen {
		return 0, newErr(KindInvalidSize, "payload length %d out of range [1, %d]", len(payload), maxLen)
	}

	for {
		if err := e.readBlock(e.currentBlock); err != nil {
			return 0, err
		}

		i := layout.ScanFreeOffset(e.scratch[:])
		if i+layout.SlotSize(len(payload)) > blockdevice.SectorSize {
			if err := e.nextBlock(); err != nil {
				return 0, err
			}
			continue
		}

		layout.EncodeSlot(e.scratch[:], i, payload)
		if err := e.writeBlock(e.currentBlock); err != nil {
			return 0, err
		}

		e.messagesInBlock++
		id := e.messageID
		e.messageID++

		if err := e.persistSectorHeader(); err != nil {
			return 0, err
		}

		e.metrics.MessagesWritten.Inc()
		e.metrics.BytesWritten.Add(float64(len(payload)))
		return id, nil
	}
}

// persistSectorHeader writes last_block, message_id and the active
// block's running message count back to the active sector header.
func (e *Engine) persistSectorHeader() error {
	if err := e.readBlock(e.currentSectorLBA); err != nil {
		return err
	}
	sh := layout.SectorHeader(e.scratch[:])
	ph := sh.Header()
	ph.SetLastBlock(e.currentBlock)
	ph.SetMessageID(e.messageID)
	sh.SetMessageCountAt(e.blockIndex, e.messagesInBlock)
	return e.writeBlock(e.currentSectorLBA)
}

// nextBlock advances the cursor to a new data block, sealing and
// creating partition/sector headers as the cursor crosses their
// boundaries, and handling full-device exhaustion.
func (e *Engine) nextBlock() error {
	e.currentBlock++
	if e.currentBlock >= e.dev.CapacitySectors() {
		return e.handleExhaustion()
	}

	if err := e.zeroBlock(e.currentBlock); err != nil {
		return err
	}

	if e.currentBlock%e.partitionSizeBlocks() == 0 {
		if err := e.sealPartition(); err != nil {
			return err
		}
	}

	if e.currentBlock%e.sectorSizeBlocks() == 0 {
		e.logSeal("sector_cross", map[string]any{"block": e.currentBlock})
		return e.createSector()
	}

	if e.currentBlock%BlocksInSector == 0 {
		if e.messagesInBlock > 0 {
			e.blockIndex++
		}
		e.messagesInBlock = 0
		return nil
	}

	return nil
}

// sealPartition marks the current partition's header sealed and
// advances the partition id. The new partition's own header was already
// written at format time; nextBlock only needs to record the hand-off.
func (e *Engine) sealPartition() error {
	if err := e.readBlock(e.currentPartitionLBA); err != nil {
		return err
	}
	ph := layout.PartitionHeader(e.scratch[:])
	ph.SetJumpToNextPartition(true)
	if err := e.writeBlock(e.currentPartitionLBA); err != nil {
		return err
	}
	e.currentPartitionLBA = e.currentBlock
	e.currentPartitionID++
	e.metrics.PartitionsSealed.Inc()
	e.logSeal("partition_sealed", map[string]any{"next_partition_lba": e.currentPartitionLBA})
	return nil
}

// createSector seals the previous sector header and writes a fresh one
// at the cursor, then recurses into nextBlock so the data block
// immediately following the new header becomes the active one.
func (e *Engine) createSector() error {
	if err := e.readBlock(e.currentSectorLBA); err != nil {
		return err
	}
	old := layout.SectorHeader(e.scratch[:])
	old.Header().SetJumpToNextSector(true)
	if err := e.writeBlock(e.currentSectorLBA); err != nil {
		return err
	}

	sh := layout.SectorHeader(e.scratch[:])
	ph := sh.Header()
	ph.SetJumpToNextSector(false)
	ph.SetPartitionID(e.currentPartitionID)
	ph.SetMagicNumber(layout.MagicNumber)
	sh.SetFirstMessage(e.messageID)
	for i := 0; i < sh.IndexCapacity(); i++ {
		sh.SetMessageCountAt(i, 0)
	}

	e.currentSectorLBA = e.currentBlock
	e.messagesInBlock = 0
	e.blockIndex = 0

	if err := e.writeBlock(e.currentSectorLBA); err != nil {
		return err
	}
	e.metrics.SectorsSealed.Inc()

	return e.nextBlock()
}

// handleExhaustion marks the device full on the boot header and, if
// message_rotate is set, restarts the cursor at partition 0 and
// overwrites from the beginning; otherwise fails with DeviceFull.
func (e *Engine) handleExhaustion() error {
	e.metrics.DeviceExhausted.Inc()

	if err := e.readBlock(0); err != nil {
		return err
	}
	ph := layout.PartitionHeader(e.scratch[:])
	ph.SetCardFull(true)
	ph.SetJumpToNextSector(false)
	rotate := ph.MessageRotate()
	if err := e.writeBlock(0); err != nil {
		return err
	}

	if !rotate {
		return ErrDeviceFull
	}

	if err := e.readBlock(0); err != nil {
		return err
	}
	ph = layout.PartitionHeader(e.scratch[:])
	ph.SetJumpToNextPartition(false)
	if err := e.writeBlock(0); err != nil {
		return err
	}

	e.logSeal("device_rotated", nil)

	e.currentPartitionLBA = 0
	e.currentPartitionID = 0
	e.currentSectorLBA = 0
	e.currentBlock = 0
	e.blockIndex = 0
	e.messagesInBlock = 0
	return e.nextBlock()
}
