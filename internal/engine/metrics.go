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

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors the allocator-style counters bb-storage keeps for its
// block-device-backed allocator: one counter per structural event, plus
// a wait-time histogram for the volume's bounded-wait mutex.
type Metrics struct {
	MessagesWritten      prometheus.Counter
	BytesWritten         prometheus.Counter
	MessagesRead         prometheus.Counter
	SectorsSealed        prometheus.Counter
	PartitionsSealed     prometheus.Counter
	DeviceExhausted      prometheus.Counter
	IoErrors             prometheus.Counter
	SemaphoreWaitSeconds prometheus.Histogram
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// GlobalMetrics returns the process-wide engine metrics, registering them
// with the default Prometheus registry on first use.
func GlobalMetrics() *Metrics {
	metricsOnce.Do(func() {
		m := &Metrics{
			MessagesWritten: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "fffs",
				Subsystem: "engine",
				Name:      "messages_written_total",
				Help:      "Number of messages successfully appended.",
			}),
			BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "fffs",
				Subsystem: "engine",
				Name:      "bytes_written_total",
				Help:      "Sum of payload bytes successfully appended.",
			}),
			MessagesRead: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "fffs",
				Subsystem: "engine",
				Name:      "messages_read_total",
				Help:      "Number of messages successfully read.",
			}),
			SectorsSealed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "fffs",
				Subsystem: "engine",
				Name:      "sectors_sealed_total",
				Help:      "Number of logical sectors sealed with jump_to_next_sector.",
			}),
			PartitionsSealed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "fffs",
				Subsystem: "engine",
				Name:      "partitions_sealed_total",
				Help:      "Number of partitions sealed with jump_to_next_partition.",
			}),
			DeviceExhausted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "fffs",
				Subsystem: "engine",
				Name:      "device_exhausted_total",
				Help:      "Number of times the device was found exhausted (card_full set).",
			}),
			IoErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "fffs",
				Subsystem: "engine",
				Name:      "io_errors_total",
				Help:      "Number of underlying BlockDevice read/write failures.",
			}),
			SemaphoreWaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "fffs",
				Subsystem: "engine",
				Name:      "semaphore_wait_seconds",
				Help:      "Time callers spent waiting to acquire the volume's bounded-wait mutex.",
				Buckets:   prometheus.DefBuckets,
			}),
		}
		prometheus.MustRegister(
			m.MessagesWritten,
			m.BytesWritten,
			m.MessagesRead,
			m.SectorsSealed,
			m.PartitionsSealed,
			m.DeviceExhausted,
			m.IoErrors,
			m.SemaphoreWaitSeconds,
		)
		metrics = m
	})
	return metrics
}
