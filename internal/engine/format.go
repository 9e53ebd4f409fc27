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
)

// Format initializes every partition header across dev's full capacity.
// partitionSize and sectorSize are header byte fields (0 means 1, in
// units of BlocksPerPartitionUnit / BlocksPerSectorUnit respectively).
// messageRotate controls whether exhaustion wraps back to partition 0.
//
// Cost is O(capacity / (partitionSize*BlocksPerPartitionUnit)): every
// partition header is touched, but data blocks beyond each partition's
// first logical sector are left untouched.
func Format(dev blockdevice.BlockDevice, partitionSize, sectorSize uint8, messageRotate bool) error {
	capacity := dev.CapacitySectors()
	stride := uint32(resolveUnit(partitionSize)) * BlocksPerPartitionUnit
	sectorBlocks := uint32(resolveUnit(sectorSize)) * BlocksPerSectorUnit

	var scratch [blockdevice.SectorSize]byte
	var zero [blockdevice.SectorSize]byte

	partitionID := uint8(0)
	for lba := uint32(0); lba < capacity; lba += stride {
		// Zero the partition's boot sector plus the rest of its first
		// logical sector, so no stale magic number or index survives.
		for i := uint32(0); i < sectorBlocks && lba+i < capacity; i++ {
			if err := dev.WriteSectors(zero[:], lba+i, 1); err != nil {
				return wrapErr(KindIoError, err, "zeroing block %d", lba+i)
			}
		}

		for i := range scratch {
			scratch[i] = 0
		}
		sh := layout.SectorHeader(scratch[:])
		ph := sh.Header()
		ph.SetJumpToNextPartition(false)
		ph.SetJumpToNextSector(false)
		ph.SetCardFull(false)
		ph.SetMessageRotate(messageRotate)
		ph.SetPartitionSize(partitionSize)
		ph.SetSectorSize(sectorSize)
		ph.SetPartitionID(partitionID)
		ph.SetLastBlock(1)
		ph.SetMessageID(0)
		ph.SetMagicNumber(layout.MagicNumber)
		sh.SetFirstMessage(0)
		for i := 0; i < sh.IndexCapacity(); i++ {
			sh.SetMessageCountAt(i, 0)
		}

		if err := dev.WriteSectors(scratch[:], lba, 1); err != nil {
			return wrapErr(KindIoError, err, "writing partition header at block %d", lba)
		}

		log.Info().Uint8("partition_id", partitionID).Uint32("lba", lba).Msg("fffs format: partition created")
		partitionID++
	}

	log.Info().Uint8("partitions", partitionID).Msg("fffs format: complete")
	return nil
}

func resolveUnit(v uint8) uint8 {
	if v == 0 {
		return 1
	}
	return v
}
