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
	"os"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/asig/fffs"
)

const version = "v0.1"

var (
	flagDevice   string
	flagSizeMiB  uint32
	flagLogLevel = logLevelFlag{level: zerolog.InfoLevel}
	flagRescan   bool
)

// logLevelFlag implements pflag.Value for zerolog.Level.
type logLevelFlag struct {
	level zerolog.Level
}

func (f *logLevelFlag) String() string { return f.level.String() }
func (f *logLevelFlag) Type() string   { return "level" }
func (f *logLevelFlag) Set(value string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(value))
	if err != nil {
		return err
	}
	f.level = level
	return nil
}

var rootCmd = &cobra.Command{
	Use:     "fffsctl",
	Version: version,
	Short:   "Inspect and drive an FFFS message log device",
	Long: `fffsctl formats, writes to, reads from, and inspects an FFFS
message log, either a real block device or a regular file standing in
for one.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging(flagLogLevel.level)
	},
}

func initLogging(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = zerolog.
		New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    false,
		}).
		With().Timestamp().Caller().
		Logger()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDevice, "device", "", "path to the device file (required)")
	rootCmd.PersistentFlags().Uint32Var(&flagSizeMiB, "size-mib", 4, "device capacity in MiB; a missing or shorter device file is extended to this size")
	rootCmd.PersistentFlags().Var(&flagLogLevel, "log-level", "log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().BoolVar(&flagRescan, "rescan", false, "re-scan the active data block's slots at mount, recovering from a write whose index update didn't land")
	rootCmd.MarkPersistentFlagRequired("device")
}

// openDevice opens flagDevice as a BlockDevice sized flagSizeMiB MiB.
func openDevice() (fffs.BlockDevice, func() error, error) {
	capacitySectors := flagSizeMiB * 1024 * 1024 / 512
	dev, err := fffs.NewFileDevice(flagDevice, capacitySectors)
	if err != nil {
		return nil, nil, pkgerrors.Wrapf(err, "opening device %q", flagDevice)
	}
	return dev, dev.Close, nil
}

// openVolume opens flagDevice and mounts it, optionally auto-formatting
// an unformatted device.
func openVolume(formatIfUnformatted bool) (*fffs.Volume, func() error, error) {
	dev, closeFn, err := openDevice()
	if err != nil {
		return nil, nil, err
	}
	vol, err := fffs.Mount(dev, formatIfUnformatted, flagRescan)
	if err != nil {
		closeFn()
		return nil, nil, pkgerrors.Wrapf(err, "mounting %q", flagDevice)
	}
	return vol, closeFn, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
