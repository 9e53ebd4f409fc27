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

package util

import (
	"testing"
)

func TestLEUint16RoundTrip(t *testing.T) {
	b := make([]byte, 4)
	WriteLEUint16(b, 1, 0xBEEF)
	if got := ReadLEUint16(b, 1); got != 0xBEEF {
		t.Errorf("ReadLEUint16 = 0x%04X, want 0xBEEF", got)
	}
	if b[1] != 0xEF || b[2] != 0xBE {
		t.Errorf("unexpected byte layout: %x", b)
	}
}

func TestLEUint32RoundTrip(t *testing.T) {
	b := make([]byte, 8)
	WriteLEUint32(b, 2, 0xDEADBEEF)
	if got := ReadLEUint32(b, 2); got != 0xDEADBEEF {
		t.Errorf("ReadLEUint32 = 0x%08X, want 0xDEADBEEF", got)
	}
}

func TestLEUint64RoundTrip(t *testing.T) {
	b := make([]byte, 16)
	const want = uint64(0xFFFF_FFFE_FDFD_FBFB)
	WriteLEUint64(b, 8, want)
	if got := ReadLEUint64(b, 8); got != want {
		t.Errorf("ReadLEUint64 = 0x%016X, want 0x%016X", got, want)
	}
	// Magic number's low byte must land first (little-endian).
	if b[8] != 0xFB {
		t.Errorf("expected low byte 0xFB at offset 8, got 0x%02X", b[8])
	}
}
