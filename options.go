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

package ant

import (
	"io"
	"time"

	"github.com/ZaparooProject/go-ant/metrics"
	"go.uber.org/zap"
)

// Option is a functional option for configuring a Dispatcher
type Option func(*Dispatcher) error

// WithConfig replaces the protocol configuration
func WithConfig(config *Config) Option {
	return func(d *Dispatcher) error {
		if config == nil {
			return ErrInvalidParameter
		}
		if err := config.Validate(); err != nil {
			return err
		}
		d.config = config.Clone()
		return nil
	}
}

// WithLogger sets the structured logger; the default discards everything
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = zap.NewNop()
		}
		d.logger = logger
		return nil
	}
}

// WithCallbacks sets the event callbacks
func WithCallbacks(callbacks Callbacks) Option {
	return func(d *Dispatcher) error {
		d.callbacks = callbacks
		return nil
	}
}

// WithWireLog enables the diagnostic wire log
func WithWireLog(w io.Writer) Option {
	return func(d *Dispatcher) error {
		d.wireLog = newWireLogger(w)
		return nil
	}
}

// WithMetrics enables Prometheus metrics
func WithMetrics(collector *metrics.Collector) Option {
	return func(d *Dispatcher) error {
		d.metrics = collector
		return nil
	}
}

// WithClock replaces the time source, mainly for tests
func WithClock(clock func() time.Time) Option {
	return func(d *Dispatcher) error {
		if clock == nil {
			return ErrInvalidParameter
		}
		d.clock = clock
		return nil
	}
}

// WithNetworkKey sets the network key loaded during initialization
func WithNetworkKey(key [8]byte) Option {
	return func(d *Dispatcher) error {
		d.config.NetworkKey = key
		return nil
	}
}

// WithSettleTime sets the delay between reset and the network key
func WithSettleTime(settle time.Duration) Option {
	return func(d *Dispatcher) error {
		if settle < 0 {
			return ErrInvalidParameter
		}
		d.config.SettleTime = settle
		return nil
	}
}

// SearchOption configures a single sensor search
type SearchOption func(*searchConfig)

type searchConfig struct {
	transmissionType uint8
	quick            bool
}

// QuickSearch searches with the short timeout first and falls back once to
// the normal timeout before reporting the sensor as not found
func QuickSearch() SearchOption {
	return func(c *searchConfig) {
		c.quick = true
	}
}

// WithTransmissionType pins the transmission type instead of the wildcard
func WithTransmissionType(transmissionType uint8) SearchOption {
	return func(c *searchConfig) {
		c.transmissionType = transmissionType
	}
}
