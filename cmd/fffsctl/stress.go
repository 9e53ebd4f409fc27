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
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/spf13/cobra"
)

var (
	stressWriters   int
	stressPerWriter int
	stressPayload   int
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Hammer the volume with concurrent writers, read everything back, and report any corruption",
	Long: `stress drives --writers goroutines, each writing --per-writer random
payloads of --payload-size bytes, and checks that every assigned id is
unique and reads back exactly what was written.`,
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		vol, closeFn, err := openVolume(true)
		if err != nil {
			fatalf("%v", err)
		}
		defer closeFn()

		ctx := context.Background()

		type result struct {
			id      uint32
			payload []byte
			err     error
		}

		results := make(chan result, stressWriters*stressPerWriter)
		var wg sync.WaitGroup
		for w := 0; w < stressWriters; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(int64(w) + 1))
				for i := 0; i < stressPerWriter; i++ {
					payload := make([]byte, stressPayload)
					rng.Read(payload)
					id, err := vol.Write(ctx, payload)
					results <- result{id, payload, err}
				}
			}(w)
		}
		wg.Wait()
		close(results)

		seen := make(map[uint32][]byte)
		var writeErrors, dupes int
		for r := range results {
			if r.err != nil {
				writeErrors++
				continue
			}
			if _, ok := seen[r.id]; ok {
				dupes++
				continue
			}
			seen[r.id] = r.payload
		}

		var readErrors, mismatches int
		for id, payload := range seen {
			got, err := vol.Read(ctx, id)
			if err != nil {
				readErrors++
				continue
			}
			if !bytes.Equal(got, payload) {
				mismatches++
			}
		}

		fmt.Printf("writes attempted: %d\n", stressWriters*stressPerWriter)
		fmt.Printf("write errors:     %d\n", writeErrors)
		fmt.Printf("duplicate ids:    %d\n", dupes)
		fmt.Printf("read errors:      %d\n", readErrors)
		fmt.Printf("payload mismatch: %d\n", mismatches)
		if dupes > 0 || readErrors > 0 || mismatches > 0 {
			fatalf("stress found corruption")
		}
		fmt.Println("ok")
	},
}

func init() {
	stressCmd.Flags().IntVar(&stressWriters, "writers", 4, "number of concurrent writer goroutines")
	stressCmd.Flags().IntVar(&stressPerWriter, "per-writer", 100, "messages written by each goroutine")
	stressCmd.Flags().IntVar(&stressPayload, "payload-size", 64, "payload size in bytes (1-510)")
	rootCmd.AddCommand(stressCmd)
}
