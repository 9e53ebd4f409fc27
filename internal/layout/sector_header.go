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

package layout

import "github.com/asig/fffs/internal/util"

const (
	ofsFirstMessage = 32
	ofsMessageIndex = 36

	// SectorHeaderFixedSize is the number of bytes occupied before the
	// per-block message-count index begins.
	SectorHeaderFixedSize = ofsMessageIndex
)

// SectorHeader is a zero-copy view over a full sector-header block: a
// PartitionHeader prefix, the id of the first message stored in this
// sector, and a one-byte-per-block message count used to narrow
// a lookup to a single data block before scanning its slots.
type SectorHeader []byte

// Header returns the embedded PartitionHeader sharing this sector
// header's backing bytes.
func (s SectorHeader) Header() PartitionHeader {
	return PartitionHeader(s)
}

func (s SectorHeader) FirstMessage() uint32 {
	return util.ReadLEUint32(s, ofsFirstMessage)
}

func (s SectorHeader) SetFirstMessage(v uint32) {
	util.WriteLEUint32(s, ofsFirstMessage, v)
}

// IndexCapacity is the number of blocks this sector header can index,
// bounded by how many index bytes fit after the fixed header fields.
func (s SectorHeader) IndexCapacity() int {
	return len(s) - SectorHeaderFixedSize
}

// MessageCountAt returns the number of messages stored in data block i
// alone (0-based, relative to the sector's first data block), not a
// running total across blocks 0..i - callers that need the cumulative
// count up to a block accumulate MessageCountAt themselves (see
// read.go's resolve).
func (s SectorHeader) MessageCountAt(i int) uint8 {
	return s[ofsMessageIndex+i]
}

func (s SectorHeader) SetMessageCountAt(i int, v uint8) {
	s[ofsMessageIndex+i] = v
}
