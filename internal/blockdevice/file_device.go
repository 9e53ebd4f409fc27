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

import (
	"fmt"
	"os"
)

// FileDevice is a BlockDevice backed by a regular host file, standing in
// for the SD-over-SPI driver in deployments where the target is a disk
// image rather than a real card.
type FileDevice struct {
	f        *os.File
	capacity uint32
}

// NewFileDevice opens (creating if necessary) path as a BlockDevice with
// room for capacitySectors sectors. If the file is shorter than that, it
// is extended (sparsely) to the required size.
func NewFileDevice(path string, capacitySectors uint32) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening device file %q: %w", path, err)
	}

	size := int64(capacitySectors) * SectorSize
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("checking size of device file %q: %w", path, err)
	}
	if fi.Size() < size {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, fmt.Errorf("sizing device file %q to %d bytes: %w", path, size, err)
		}
	}

	return &FileDevice{f: f, capacity: capacitySectors}, nil
}

func (d *FileDevice) Close() error {
	return d.f.Close()
}

func (d *FileDevice) CapacitySectors() uint32 {
	return d.capacity
}

func (d *FileDevice) SectorSize() int {
	return SectorSize
}

func (d *FileDevice) ReadSectors(buf []byte, lba uint32, count uint32) error {
	if err := d.checkRange(lba, count); err != nil {
		return err
	}
	need := int(count) * SectorSize
	if len(buf) < need {
		return fmt.Errorf("ReadSectors: short buffer, need %d bytes, got %d", need, len(buf))
	}

	n, err := d.f.ReadAt(buf[:need], int64(lba)*SectorSize)
	if err != nil {
		return fmt.Errorf("ReadSectors: reading %d sector(s) at LBA %d: %w", count, lba, err)
	}
	if n < need {
		return fmt.Errorf("ReadSectors: short read at LBA %d, wanted %d bytes, got %d", lba, need, n)
	}
	return nil
}

func (d *FileDevice) WriteSectors(buf []byte, lba uint32, count uint32) error {
	if err := d.checkRange(lba, count); err != nil {
		return err
	}
	need := int(count) * SectorSize
	if len(buf) < need {
		return fmt.Errorf("WriteSectors: short buffer, need %d bytes, got %d", need, len(buf))
	}

	n, err := d.f.WriteAt(buf[:need], int64(lba)*SectorSize)
	if err != nil {
		return fmt.Errorf("WriteSectors: writing %d sector(s) at LBA %d: %w", count, lba, err)
	}
	if n < need {
		return fmt.Errorf("WriteSectors: short write at LBA %d, wanted %d bytes, wrote %d", lba, need, n)
	}
	return nil
}

func (d *FileDevice) checkRange(lba uint32, count uint32) error {
	if count == 0 {
		return fmt.Errorf("checkRange: zero sector count")
	}
	if uint64(lba)+uint64(count) > uint64(d.capacity) {
		return fmt.Errorf("checkRange: LBA range [%d, %d) exceeds capacity %d", lba, uint64(lba)+uint64(count), d.capacity)
	}
	return nil
}
