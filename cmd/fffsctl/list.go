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
)

var listCmd = &cobra.Command{
	Use:                   "list",
	Short:                 "List every message id and length currently on the volume",
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		vol, closeFn, err := openVolume(false)
		if err != nil {
			fatalf("%v", err)
		}
		defer closeFn()

		ctx := context.Background()
		next, err := vol.NextMessageID(ctx)
		if err != nil {
			fatalf("listing: %v", err)
		}
		for id := uint32(0); id < next; id++ {
			n, err := vol.ReadLen(ctx, id)
			if err != nil {
				fmt.Printf("%d: error: %v\n", id, err)
				continue
			}
			fmt.Printf("%d (%d bytes)\n", id, n)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
