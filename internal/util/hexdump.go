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
	"fmt"
	"strings"
	"unicode"
)

func hexLine(b *strings.Builder, data []byte, length int) {
	var hex, ascii strings.Builder
	for i := 0; i < length; i++ {
		if i < len(data) {
			fmt.Fprintf(&hex, "%02x  ", data[i])
			if unicode.IsPrint(rune(data[i])) {
				ascii.WriteByte(data[i])
			} else {
				ascii.WriteByte('.')
			}
		} else {
			hex.WriteString("    ")
			ascii.WriteByte(' ')
		}
	}
	b.WriteString(hex.String())
	b.WriteString("| ")
	b.WriteString(ascii.String())
}

// HexDump renders data[start:start+length] as a conventional 16-byte
// hex/ASCII dump. Any offset passed in slotBoundaries marks the start of
// a data-block message slot: the line it falls on is flagged with a
// leading ">" instead of a space, so mount.go's rescanActiveBlock can
// show at a glance where the slot scan disagreed with the sector index.
// Callers with no slot structure to show, like cmd/fffsctl's raw LBA
// dump, just pass none.
func HexDump(data []byte, start, length int, slotBoundaries ...int) string {
	boundary := make(map[int]bool, len(slotBoundaries))
	for _, off := range slotBoundaries {
		boundary[off] = true
	}

	var b strings.Builder
	for length > 0 {
		n := length
		if n > 16 {
			n = 16
		}
		marker := byte(' ')
		for off := start; off < start+n; off++ {
			if boundary[off] {
				marker = '>'
				break
			}
		}
		b.WriteByte(marker)
		fmt.Fprintf(&b, "%08x: ", start)
		hexLine(&b, data[start:], n)
		b.WriteByte('\n')
		start += n
		length -= n
	}
	return b.String()
}
