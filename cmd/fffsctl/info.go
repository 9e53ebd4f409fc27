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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asig/fffs/internal/util"
)

var infoRawBlock int64

var infoCmd = &cobra.Command{
	Use:                   "info",
	Short:                 "Show the volume's append cursor, or hex-dump a raw block",
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		vol, closeFn, err := openVolume(false)
		if err != nil {
			fatalf("%v", err)
		}
		defer closeFn()

		ctx := context.Background()

		if infoRawBlock >= 0 {
			buf, err := vol.DebugReadBlock(ctx, uint32(infoRawBlock))
			if err != nil {
				fatalf("reading block %d: %v", infoRawBlock, err)
			}
			fmt.Print(util.HexDump(buf[:], 0, len(buf)))
			return
		}

		next, err := vol.NextMessageID(ctx)
		if err != nil {
			fatalf("info: %v", err)
		}
		fmt.Printf("device:           %s\n", flagDevice)
		fmt.Printf("size:             %d MiB\n", flagSizeMiB)
		fmt.Printf("next message id:  %d\n", next)
		fmt.Printf("messages written: %d\n", next)
	},
}

func init() {
	infoCmd.Flags().Int64Var(&infoRawBlock, "raw", -1, "hex-dump raw device block at this LBA instead of printing cursor info")
	rootCmd.AddCommand(infoCmd)
}
