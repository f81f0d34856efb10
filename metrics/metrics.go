// go-ant
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-ant.
//
// go-ant is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-ant is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-ant; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package metrics exposes Prometheus metrics for the ANT stack. A nil
// *Collector is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ant"

// Write results
const (
	WriteOK    = "ok"
	WriteShort = "short"
	WriteError = "error"
)

// NewRegistry creates a registry with the Go and process collectors registered
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler serving reg
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Collector holds the protocol metrics
type Collector struct {
	Frames         prometheus.Counter
	Dropped        prometheus.Counter
	Noise          prometheus.Counter
	Routed         *prometheus.CounterVec // labels: id
	Unrouted       prometheus.Counter
	Readings       *prometheus.CounterVec // labels: sensor, kind
	RxFails        *prometheus.CounterVec // labels: sensor
	SearchTimeouts *prometheus.CounterVec // labels: sensor
	Writes         *prometheus.CounterVec // labels: result
	BytesWritten   prometheus.Counter
	ActiveChannels prometheus.Gauge
}

// NewCollector creates the protocol metrics and registers them with reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Checksum-valid frames received from the radio.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Frame candidates discarded for a bad length or checksum.",
		}),
		Noise: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "noise_bytes_total",
			Help:      "Bytes skipped while looking for a sync byte.",
		}),
		Routed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_routed_total",
			Help:      "Decoded messages by message id.",
		}, []string{"id"}),
		Unrouted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_unrouted_total",
			Help:      "Messages for channels that are not allocated.",
		}),
		Readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Sensor readings emitted.",
		}, []string{"sensor", "kind"}),
		RxFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rx_fail_reports_total",
			Help:      "Reported runs of consecutive receive failures.",
		}, []string{"sensor"}),
		SearchTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_timeouts_total",
			Help:      "Searches that ended without finding a sensor.",
		}, []string{"sensor"}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Frames written to the radio by result.",
		}, []string{"result"}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes written to the radio.",
		}),
		ActiveChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_channels",
			Help:      "Channels currently allocated.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.Frames, c.Dropped, c.Noise, c.Routed, c.Unrouted, c.Readings,
		c.RxFails, c.SearchTimeouts, c.Writes, c.BytesWritten, c.ActiveChannels,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FrameReceived counts a valid frame
func (c *Collector) FrameReceived() {
	if c == nil {
		return
	}
	c.Frames.Inc()
}

// AssemblerDiscards adds newly dropped candidates and noise bytes
func (c *Collector) AssemblerDiscards(dropped, noise uint64) {
	if c == nil {
		return
	}
	if dropped > 0 {
		c.Dropped.Add(float64(dropped))
	}
	if noise > 0 {
		c.Noise.Add(float64(noise))
	}
}

// MessageRouted counts a decoded message
func (c *Collector) MessageRouted(id string) {
	if c == nil {
		return
	}
	c.Routed.WithLabelValues(id).Inc()
}

// MessageUnrouted counts a message nobody owns
func (c *Collector) MessageUnrouted() {
	if c == nil {
		return
	}
	c.Unrouted.Inc()
}

// Reading counts an emitted sensor reading
func (c *Collector) Reading(sensor, kind string) {
	if c == nil {
		return
	}
	c.Readings.WithLabelValues(sensor, kind).Inc()
}

// RxFail counts a reported receive failure run
func (c *Collector) RxFail(sensor string) {
	if c == nil {
		return
	}
	c.RxFails.WithLabelValues(sensor).Inc()
}

// SearchTimeout counts a failed search
func (c *Collector) SearchTimeout(sensor string) {
	if c == nil {
		return
	}
	c.SearchTimeouts.WithLabelValues(sensor).Inc()
}

// Write counts a write attempt and the bytes it wrote
func (c *Collector) Write(result string, n int) {
	if c == nil {
		return
	}
	c.Writes.WithLabelValues(result).Inc()
	if n > 0 {
		c.BytesWritten.Add(float64(n))
	}
}

// SetActiveChannels sets the allocated channel gauge
func (c *Collector) SetActiveChannels(n int) {
	if c == nil {
		return
	}
	c.ActiveChannels.Set(float64(n))
}
