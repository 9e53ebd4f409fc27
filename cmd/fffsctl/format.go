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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asig/fffs"
)

var (
	formatPartitionSize uint8
	formatSectorSize    uint8
	formatRotate        bool
)

var formatCmd = &cobra.Command{
	Use:                   "format",
	Short:                 "Initialize the device as an empty FFFS volume",
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		dev, closeFn, err := openDevice()
		if err != nil {
			fatalf("%v", err)
		}
		defer closeFn()

		if err := fffs.Format(dev, formatPartitionSize, formatSectorSize, formatRotate); err != nil {
			fatalf("format: %v", err)
		}
		fmt.Printf("formatted %s (%d MiB, partition_size=%d, sector_size=%d, rotate=%v)\n",
			flagDevice, flagSizeMiB, formatPartitionSize, formatSectorSize, formatRotate)
	},
}

func init() {
	formatCmd.Flags().Uint8Var(&formatPartitionSize, "partition-size", 1, "partition size, as a multiple of 256 MiB (0 means 1)")
	formatCmd.Flags().Uint8Var(&formatSectorSize, "sector-size", 1, "sector size, as a multiple of 128 KiB (0 means 1)")
	formatCmd.Flags().BoolVar(&formatRotate, "rotate", false, "wrap back to partition 0 instead of failing when the device fills up")
	rootCmd.AddCommand(formatCmd)
}
