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

package blockdevice

import "fmt"

// MemoryDevice is a deterministic, in-RAM BlockDevice used by tests. It
// has no persistence and no I/O error injection: any error FFFS sees
// against it is a genuine logic bug, not a flaky disk.
type MemoryDevice struct {
	data     []byte
	capacity uint32
}

// NewMemoryDevice allocates a zero-filled in-RAM device of capacitySectors
// sectors.
func NewMemoryDevice(capacitySectors uint32) *MemoryDevice {
	return &MemoryDevice{
		data:     make([]byte, int(capacitySectors)*SectorSize),
		capacity: capacitySectors,
	}
}

func (d *MemoryDevice) CapacitySectors() uint32 {
	return d.capacity
}

func (d *MemoryDevice) SectorSize() int {
	return SectorSize
}

func (d *MemoryDevice) ReadSectors(buf []byte, lba uint32, count uint32) error {
	if err := d.checkRange(lba, count); err != nil {
		return err
	}
	need := int(count) * SectorSize
	if len(buf) < need {
		return fmt.Errorf("ReadSectors: short buffer, need %d bytes, got %d", need, len(buf))
	}
	copy(buf, d.data[int(lba)*SectorSize:int(lba)*SectorSize+need])
	return nil
}

func (d *MemoryDevice) WriteSectors(buf []byte, lba uint32, count uint32) error {
	if err := d.checkRange(lba, count); err != nil {
		return err
	}
	need := int(count) * SectorSize
	if len(buf) < need {
		return fmt.Errorf("WriteSectors: short buffer, need %d bytes, got %d", need, len(buf))
	}
	copy(d.data[int(lba)*SectorSize:int(lba)*SectorSize+need], buf[:need])
	return nil
}

func (d *MemoryDevice) checkRange(lba uint32, count uint32) error {
	if count == 0 {
		return fmt.Errorf("checkRange: zero sector count")
	}
	if uint64(lba)+uint64(count) > uint64(d.capacity) {
		return fmt.Errorf("checkRange: LBA range [%d, %d) exceeds capacity %d", lba, uint64(lba)+uint64(count), d.capacity)
	}
	return nil
}
