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
	"bytes"
	"testing"
)

func TestMemoryDeviceRoundTrip(t *testing.T) {
	dev := NewMemoryDevice(16)

	want := bytes.Repeat([]byte{0xAB}, SectorSize)
	if err := dev.WriteSectors(want, 3, 1); err != nil {
		t.Fatalf("WriteSectors failed: %v", err)
	}

	got := make([]byte, SectorSize)
	if err := dev.ReadSectors(got, 3, 1); err != nil {
		t.Fatalf("ReadSectors failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("read back %x, want %x", got[:4], want[:4])
	}

	// Sectors that were never written stay zero.
	zero := make([]byte, SectorSize)
	if err := dev.ReadSectors(got, 4, 1); err != nil {
		t.Fatalf("ReadSectors failed: %v", err)
	}
	if !bytes.Equal(got, zero) {
		t.Errorf("untouched sector not zero")
	}
}

func TestMemoryDeviceRejectsOutOfRange(t *testing.T) {
	dev := NewMemoryDevice(4)
	buf := make([]byte, SectorSize)
	if err := dev.ReadSectors(buf, 3, 2); err == nil {
		t.Errorf("expected error reading past capacity")
	}
	if err := dev.WriteSectors(buf, 10, 1); err == nil {
		t.Errorf("expected error writing past capacity")
	}
}
