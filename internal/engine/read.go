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

import "github.com/asig/fffs/internal/layout"

// resolve locates the data block and in-block slot offset holding
// targetID, following the jump_to_next_partition / jump_to_next_sector
// chains purely (not also gating on message_id < target, which the
// original source did and which can terminate early against a stale
// message_id on a partition header whose last sector seal never
// refreshed it).
func (e *Engine) resolve(targetID uint32) (blockLBA uint32, offset int, err error) {
	if targetID >= e.messageID {
		return 0, 0, newErr(KindNotFound, "message %d >= next id %d", targetID, e.messageID)
	}

	if err := e.readBlock(0); err != nil {
		return 0, 0, err
	}
	ph := layout.PartitionHeader(e.scratch[:])
	partitionLBA := uint32(0)
	for ph.JumpToNextPartition() {
		partitionLBA += e.partitionSizeBlocks()
		if err := e.readBlock(partitionLBA); err != nil {
			return 0, 0, err
		}
		ph = layout.PartitionHeader(e.scratch[:])
	}

	sectorLBA := partitionLBA
	for ph.JumpToNextSector() {
		sectorLBA += e.sectorSizeBlocks()
		if err := e.readBlock(sectorLBA); err != nil {
			return 0, 0, err
		}
		ph = layout.PartitionHeader(e.scratch[:])
	}

	sh := layout.SectorHeader(e.scratch[:])
	messageBase := sh.FirstMessage()
	oldBase := messageBase
	i := 0
	for {
		oldBase = messageBase
		messageBase += uint32(sh.MessageCountAt(i))
		i++
		if messageBase > targetID {
			break
		}
		if sh.MessageCountAt(i) == 0 {
			break
		}
	}
	dataBlockLBA := sectorLBA + uint32(i)

	if err := e.readBlock(dataBlockLBA); err != nil {
		return 0, 0, err
	}

	off := 0
	for k := uint32(0); k < targetID-oldBase; k++ {
		off = layout.StepOffset(e.scratch[:], off)
	}

	return dataBlockLBA, off, nil
}

// ReadLen returns the length of message targetID without copying its
// payload.
func (e *Engine) ReadLen(targetID uint32) (int, error) {
	_, offset, err := e.resolve(targetID)
	if err != nil {
		return 0, err
	}
	length, _ := layout.DecodeSlot(e.scratch[:], offset)
	return length, nil
}

// Read returns a copy of message targetID's payload.
func (e *Engine) Read(targetID uint32) ([]byte, error) {
	_, offset, err := e.resolve(targetID)
	if err != nil {
		return nil, err
	}
	length, payloadOffset := layout.DecodeSlot(e.scratch[:], offset)
	out := make([]byte, length)
	copy(out, e.scratch[payloadOffset:payloadOffset+length])
	e.metrics.MessagesRead.Inc()
	return out, nil
}
