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

// Package engine implements the append-only message log: formatting,
// mount/recovery, the append cursor, and the random-access read
// resolver. It is the sole owner of the DMA-style scratch buffer through
// which every structural read/write flows.
package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/asig/fffs/internal/blockdevice"
)

const (
	// BlocksPerPartitionUnit is PARTITION_SIZE: 256 MiB expressed in
	// 512-byte device blocks. A header's partition_size field is a
	// multiplier against this.
	BlocksPerPartitionUnit = 256 * 1024 * 1024 / blockdevice.SectorSize

	// BlocksPerSectorUnit is SECTOR_SIZE: 128 KiB expressed in device
	// blocks. A header's sector_size field is a multiplier against this.
	BlocksPerSectorUnit = 128 * 1024 / blockdevice.SectorSize

	// BlocksInSector is the granularity at which sector_message_index
	// records a running message count. Fixed at 1: one counter byte per
	// data block.
	BlocksInSector = 1
)

// Engine holds the mounted volume's cursor and the scratch buffer all
// device I/O flows through. It is not safe for concurrent use; the root
// fffs.Volume serializes access with a mutex.
type Engine struct {
	dev blockdevice.BlockDevice

	scratch [blockdevice.SectorSize]byte

	partitionSize uint8 // raw header byte; 0 means 1
	sectorSize    uint8 // raw header byte; 0 means 1

	currentPartitionLBA uint32
	currentPartitionID  uint8
	currentSectorLBA    uint32
	currentBlock        uint32 // == last_block once an operation completes
	blockIndex          int
	messagesInBlock     uint8
	messageID           uint32

	metrics *Metrics
}

func (e *Engine) partitionSizeBlocks() uint32 {
	n := e.partitionSize
	if n == 0 {
		n = 1
	}
	return uint32(n) * BlocksPerPartitionUnit
}

func (e *Engine) sectorSizeBlocks() uint32 {
	n := e.sectorSize
	if n == 0 {
		n = 1
	}
	return uint32(n) * BlocksPerSectorUnit
}

func (e *Engine) readBlock(lba uint32) error {
	if err := e.dev.ReadSectors(e.scratch[:], lba, 1); err != nil {
		e.metrics.IoErrors.Inc()
		return wrapErr(KindIoError, err, "reading block %d", lba)
	}
	return nil
}

func (e *Engine) writeBlock(lba uint32) error {
	if err := e.dev.WriteSectors(e.scratch[:], lba, 1); err != nil {
		e.metrics.IoErrors.Inc()
		return wrapErr(KindIoError, err, "writing block %d", lba)
	}
	return nil
}

func (e *Engine) zeroBlock(lba uint32) error {
	var zero [blockdevice.SectorSize]byte
	if err := e.dev.WriteSectors(zero[:], lba, 1); err != nil {
		e.metrics.IoErrors.Inc()
		return wrapErr(KindIoError, err, "zeroing block %d", lba)
	}
	return nil
}

// MessageID returns the id that will be assigned to the next successful
// write (equivalently, the number of messages written so far).
func (e *Engine) MessageID() uint32 {
	return e.messageID
}

// DebugReadBlock reads a single raw device block without interpreting
// it, for low-level inspection tooling. It does not touch cursor state.
func (e *Engine) DebugReadBlock(lba uint32) ([blockdevice.SectorSize]byte, error) {
	var buf [blockdevice.SectorSize]byte
	if err := e.dev.ReadSectors(buf[:], lba, 1); err != nil {
		return buf, wrapErr(KindIoError, err, "reading block %d", lba)
	}
	return buf, nil
}

func (e *Engine) logSeal(event string, fields map[string]any) {
	l := log.Info().Str("event", event)
	for k, v := range fields {
		l = l.Interface(k, v)
	}
	l.Msg("fffs engine")
}
