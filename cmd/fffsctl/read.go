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
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var readToFile string

var readCmd = &cobra.Command{
	Use:                   "read ID",
	Short:                 "Read a message's payload by id",
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fatalf("invalid id %q: %v", args[0], err)
		}

		vol, closeFn, err := openVolume(false)
		if err != nil {
			fatalf("%v", err)
		}
		defer closeFn()

		payload, err := vol.Read(context.Background(), uint32(id))
		if err != nil {
			fatalf("read %d: %v", id, err)
		}

		if readToFile != "" {
			if err := os.WriteFile(readToFile, payload, 0644); err != nil {
				fatalf("writing %s: %v", readToFile, err)
			}
			return
		}
		os.Stdout.Write(payload)
	},
}

func init() {
	readCmd.Flags().StringVar(&readToFile, "file", "", "write the payload to this host file instead of stdout")
	rootCmd.AddCommand(readCmd)
}
