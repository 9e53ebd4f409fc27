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

import "testing"

func TestPartitionHeaderFlags(t *testing.T) {
	buf := make([]byte, PartitionHeaderSize)
	h := PartitionHeader(buf)

	h.SetJumpToNextSector(true)
	h.SetCardFull(true)

	if !h.JumpToNextSector() || !h.CardFull() {
		t.Fatalf("flags not set: %08b", buf[0])
	}
	if h.JumpToNextPartition() || h.MessageRotate() {
		t.Fatalf("unrelated flags disturbed: %08b", buf[0])
	}

	h.SetJumpToNextSector(false)
	if h.JumpToNextSector() {
		t.Fatalf("flag clear didn't take: %08b", buf[0])
	}
	if !h.CardFull() {
		t.Fatalf("clearing one flag disturbed another: %08b", buf[0])
	}
}

func TestPartitionHeaderFields(t *testing.T) {
	buf := make([]byte, PartitionHeaderSize)
	h := PartitionHeader(buf)

	h.SetPartitionSize(3)
	h.SetSectorSize(7)
	h.SetPartitionID(2)
	h.SetLastBlock(0xCAFEBABE)
	h.SetMessageID(12345)
	h.SetMagicNumber(MagicNumber)

	if h.PartitionSize() != 3 || h.SectorSize() != 7 || h.PartitionID() != 2 {
		t.Fatalf("byte fields mismatch: %+v", buf[:4])
	}
	if h.LastBlock() != 0xCAFEBABE {
		t.Errorf("LastBlock = %#x, want 0xCAFEBABE", h.LastBlock())
	}
	if h.MessageID() != 12345 {
		t.Errorf("MessageID = %d, want 12345", h.MessageID())
	}
	if !h.IsValid() {
		t.Errorf("IsValid() = false after setting the magic number")
	}
}

func TestPartitionHeaderZeroMeansOne(t *testing.T) {
	h := PartitionHeader(make([]byte, PartitionHeaderSize))
	if h.PartitionSizeBlocks() != 1 || h.SectorSizeBlocks() != 1 {
		t.Errorf("zero-valued size fields should resolve to 1")
	}
}

func TestPartitionHeaderInvalidByDefault(t *testing.T) {
	h := PartitionHeader(make([]byte, PartitionHeaderSize))
	if h.IsValid() {
		t.Errorf("a zeroed header should not be valid")
	}
}
