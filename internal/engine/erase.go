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

import "github.com/asig/fffs/internal/layout"

// checkTargetRange validates targetID for Erase/Update, which - unlike
// Read - report an out-of-range id as InvalidArgument rather than
// NotFound (spec's error design reserves NotFound for the read path).
func (e *Engine) checkTargetRange(targetID uint32) error {
	if targetID >= e.messageID {
		return newErr(KindInvalidArgument, "message id %d out of range for erase/update (next id %d)", targetID, e.messageID)
	}
	return nil
}

// Erase zero-fills an existing message's payload bytes in place. The
// slot's length prefix is untouched, so the message keeps its id and
// length; a subsequent Read returns a zero-filled buffer of the
// original length. There is no message-level erase in the source this
// spec distills from to ground a different contract on.
func (e *Engine) Erase(targetID uint32) error {
	if err := e.checkTargetRange(targetID); err != nil {
		return err
	}
	blockLBA, offset, err := e.resolve(targetID)
	if err != nil {
		return err
	}
	length, payloadOffset := layout.DecodeSlot(e.scratch[:], offset)
	for i := 0; i < length; i++ {
		e.scratch[payloadOffset+i] = 0
	}
	return e.writeBlock(blockLBA)
}

// Update overwrites an existing message's payload in place. newPayload
// must be exactly as long as the original message; a size-changing
// update is rejected rather than silently padded or truncated (padding
// would change the length a reader gets back, truncation would drop
// data), and storing the new length instead would change the slot's
// encoded size and corrupt the offset of every slot after it in the
// block.
func (e *Engine) Update(targetID uint32, newPayload []byte) error {
	if err := e.checkTargetRange(targetID); err != nil {
		return err
	}
	blockLBA, offset, err := e.resolve(targetID)
	if err != nil {
		return err
	}
	length, payloadOffset := layout.DecodeSlot(e.scratch[:], offset)
	if len(newPayload) != length {
		return newErr(KindInvalidSize, "update changes encoded length from %d to %d", length, len(newPayload))
	}
	copy(e.scratch[payloadOffset:payloadOffset+length], newPayload)
	return e.writeBlock(blockLBA)
}
