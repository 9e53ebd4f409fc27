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
	"os"

	"github.com/spf13/cobra"
)

var writeFromFile string

var writeCmd = &cobra.Command{
	Use:                   "write [PAYLOAD]",
	Short:                 "Append a message and print its assigned id",
	Args:                  cobra.MaximumNArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		var payload []byte
		switch {
		case writeFromFile != "":
			b, err := os.ReadFile(writeFromFile)
			if err != nil {
				fatalf("reading %s: %v", writeFromFile, err)
			}
			payload = b
		case len(args) == 1:
			payload = []byte(args[0])
		default:
			fatalf("write needs either a PAYLOAD argument or --file")
		}

		vol, closeFn, err := openVolume(false)
		if err != nil {
			fatalf("%v", err)
		}
		defer closeFn()

		id, err := vol.Write(context.Background(), payload)
		if err != nil {
			fatalf("write: %v", err)
		}
		fmt.Println(id)
	},
}

func init() {
	writeCmd.Flags().StringVar(&writeFromFile, "file", "", "read the payload from this host file instead of an argument")
	rootCmd.AddCommand(writeCmd)
}
