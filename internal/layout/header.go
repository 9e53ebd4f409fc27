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

// Package layout owns every byte-level field placement for FFFS's
// on-media structures: the partition header, the sector header, and the
// data-block slot encoding. No other package computes field or slot
// offsets; the engine only copies payload bytes at the offsets
// DecodeSlot returns.
package layout

import "github.com/asig/fffs/internal/util"

const (
	// MagicNumber identifies a valid partition or sector header.
	MagicNumber = uint64(0xFFFF_FFFE_FDFD_FBFB)

	// PartitionHeaderSize is the number of bytes the partition header
	// occupies at the start of every partition and sector header block.
	PartitionHeaderSize = 32

	ofsFlags         = 0
	ofsPartitionSize = 1
	ofsSectorSize    = 2
	ofsPartitionID   = 3
	ofsLastBlock     = 4
	ofsMessageID     = 8
	// Bytes 12-23 are reserved padding, kept zero, mirroring the natural
	// alignment gap the original C struct leaves before its 64-bit field.
	ofsMagicNumber = 24

	// Bit positions within the flags byte at offset 0. Each flag is a
	// 2-bit sub-field; only 0 (clear) and 1 (set) are ever written.
	flagShiftJumpToNextPartition = 0
	flagShiftJumpToNextSector    = 2
	flagShiftCardFull            = 4
	flagShiftMessageRotate       = 6
	flagMask                     = 0x3
)

// PartitionHeader is a zero-copy view over the first PartitionHeaderSize
// bytes of a partition's boot block, or of any sector header (a sector
// header embeds a partition header as its own prefix). It never copies
// the underlying bytes; every accessor reads or writes buf directly.
type PartitionHeader []byte

func flagBit(b byte, shift uint) bool {
	return (b>>shift)&flagMask != 0
}

func setFlagBit(b byte, shift uint, v bool) byte {
	b &^= flagMask << shift
	if v {
		b |= 1 << shift
	}
	return b
}

func (h PartitionHeader) JumpToNextPartition() bool {
	return flagBit(h[ofsFlags], flagShiftJumpToNextPartition)
}

func (h PartitionHeader) SetJumpToNextPartition(v bool) {
	h[ofsFlags] = setFlagBit(h[ofsFlags], flagShiftJumpToNextPartition, v)
}

func (h PartitionHeader) JumpToNextSector() bool {
	return flagBit(h[ofsFlags], flagShiftJumpToNextSector)
}

func (h PartitionHeader) SetJumpToNextSector(v bool) {
	h[ofsFlags] = setFlagBit(h[ofsFlags], flagShiftJumpToNextSector, v)
}

func (h PartitionHeader) CardFull() bool {
	return flagBit(h[ofsFlags], flagShiftCardFull)
}

func (h PartitionHeader) SetCardFull(v bool) {
	h[ofsFlags] = setFlagBit(h[ofsFlags], flagShiftCardFull, v)
}

func (h PartitionHeader) MessageRotate() bool {
	return flagBit(h[ofsFlags], flagShiftMessageRotate)
}

func (h PartitionHeader) SetMessageRotate(v bool) {
	h[ofsFlags] = setFlagBit(h[ofsFlags], flagShiftMessageRotate, v)
}

// PartitionSize returns the configured partition size in units of
// PARTITION_SIZE device blocks. 0 means "1" (the default).
func (h PartitionHeader) PartitionSize() uint8 {
	return h[ofsPartitionSize]
}

func (h PartitionHeader) SetPartitionSize(v uint8) {
	h[ofsPartitionSize] = v
}

// SectorSize returns the configured sector size in units of SECTOR_SIZE
// device blocks. 0 means "1" (the default).
func (h PartitionHeader) SectorSize() uint8 {
	return h[ofsSectorSize]
}

func (h PartitionHeader) SetSectorSize(v uint8) {
	h[ofsSectorSize] = v
}

func (h PartitionHeader) PartitionID() uint8 {
	return h[ofsPartitionID]
}

func (h PartitionHeader) SetPartitionID(v uint8) {
	h[ofsPartitionID] = v
}

func (h PartitionHeader) LastBlock() uint32 {
	return util.ReadLEUint32(h, ofsLastBlock)
}

func (h PartitionHeader) SetLastBlock(v uint32) {
	util.WriteLEUint32(h, ofsLastBlock, v)
}

func (h PartitionHeader) MessageID() uint32 {
	return util.ReadLEUint32(h, ofsMessageID)
}

func (h PartitionHeader) SetMessageID(v uint32) {
	util.WriteLEUint32(h, ofsMessageID, v)
}

func (h PartitionHeader) MagicNumber() uint64 {
	return util.ReadLEUint64(h, ofsMagicNumber)
}

func (h PartitionHeader) SetMagicNumber(v uint64) {
	util.WriteLEUint64(h, ofsMagicNumber, v)
}

// IsValid reports whether this header carries the FFFS magic number.
func (h PartitionHeader) IsValid() bool {
	return h.MagicNumber() == MagicNumber
}

// PartitionSizeBlocks returns PartitionSize() with the 0-means-1
// convention resolved, in units of PARTITION_SIZE device blocks.
func (h PartitionHeader) PartitionSizeBlocks() uint8 {
	if v := h.PartitionSize(); v != 0 {
		return v
	}
	return 1
}

// SectorSizeBlocks returns SectorSize() with the 0-means-1 convention
// resolved, in units of SECTOR_SIZE device blocks.
func (h PartitionHeader) SectorSizeBlocks() uint8 {
	if v := h.SectorSize(); v != 0 {
		return v
	}
	return 1
}
