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

// Package blockdevice models the raw sector I/O primitives that FFFS is
// layered on top of (component A of the design: host driver, pin and bus
// initialization are external collaborators, not part of this package).
package blockdevice

// SectorSize is the fixed device block size FFFS is designed around.
const SectorSize = 512

// BlockDevice performs fixed-size sector I/O by logical block address
// (LBA). Implementations need not be safe for concurrent use; callers
// serialize access themselves (see the root fffs.Volume).
type BlockDevice interface {
	// ReadSectors reads count sectors starting at lba into buf[0:count*SectorSize].
	ReadSectors(buf []byte, lba uint32, count uint32) error

	// WriteSectors writes count sectors starting at lba from buf[0:count*SectorSize].
	WriteSectors(buf []byte, lba uint32, count uint32) error

	// CapacitySectors reports the total number of addressable sectors.
	CapacitySectors() uint32

	// SectorSize reports the device's fixed sector size in bytes. Expected
	// to be 512 for any device FFFS can mount.
	SectorSize() int
}
