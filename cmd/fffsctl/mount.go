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
	"os"
	"os/signal"
	"syscall"

	bazilfuse "bazil.org/fuse"
	fuse_fs "bazil.org/fuse/fs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/asig/fffs/internal/fffsfuse"
)

var mountCmd = &cobra.Command{
	Use:                   "mount MOUNTPOINT",
	Short:                 "Project the message log as a read-only directory, one file per message",
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		mountpoint := args[0]

		vol, closeFn, err := openVolume(false)
		if err != nil {
			fatalf("%v", err)
		}
		defer closeFn()

		c, err := bazilfuse.Mount(
			mountpoint,
			bazilfuse.FSName("fffs"),
			bazilfuse.Subtype("fffs"),
			bazilfuse.ReadOnly(),
		)
		if err != nil {
			fatalf("mounting FUSE at %s: %v", mountpoint, err)
		}
		defer c.Close()

		errc := make(chan error, 1)
		go func() {
			errc <- fuse_fs.Serve(c, fffsfuse.NewFS(vol))
		}()

		<-c.Ready
		if err := c.MountError; err != nil {
			fatalf("mount error: %v", err)
		}
		log.Info().Msgf("serving %s on %s", flagDevice, mountpoint)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errc:
			if err != nil {
				fatalf("FUSE serve: %v", err)
			}
		case <-sig:
			log.Info().Msgf("unmounting %s", mountpoint)
			if err := bazilfuse.Unmount(mountpoint); err != nil {
				fatalf("unmounting %s: %v", mountpoint, err)
			}
			<-errc
		}
	},
}

func init() {
	rootCmd.AddCommand(mountCmd)
}
