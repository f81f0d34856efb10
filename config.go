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
	"time"

	"github.com/ZaparooProject/go-ant/message"
)

// ANTPlusNetworkKey is the public ANT+ managed network key
var ANTPlusNetworkKey = [8]byte{0xB9, 0xA5, 0x21, 0xFB, 0xBD, 0x72, 0xC3, 0x45}

// Protocol defaults
const (
	DefaultNetworkNumber    = 1
	DefaultRFFrequency      = 57 // 2457 MHz
	DefaultSettleTime       = 600 * time.Millisecond
	DefaultAckQueueCapacity = 8
	DefaultMaxChannels      = 8
)

// Config contains protocol tuning for the Dispatcher
type Config struct {
	// NetworkKey is loaded on NetworkNumber during initialization
	NetworkKey [8]byte
	// SettleTime is the delay between system reset and the network key
	SettleTime time.Duration
	// ReadyTimeout bounds the wait for the transport to report ready
	ReadyTimeout time.Duration
	// NetworkKeyTimeout bounds the wait for the network key confirmation
	NetworkKeyTimeout time.Duration
	// AckRetryInterval is how long an acknowledged message may stay unconfirmed
	AckRetryInterval time.Duration
	// SearchTimeout is the normal high priority search timeout
	SearchTimeout time.Duration
	// QuickSearchTimeout is used first by channels opened with QuickSearch
	QuickSearchTimeout time.Duration
	// RxFailReportInterval limits how often RX failures are reported upward
	RxFailReportInterval time.Duration
	// AckQueueCapacity bounds the per-channel acknowledged message queue
	AckQueueCapacity int
	// RxFailThreshold is the number of consecutive RX failures before reporting
	RxFailThreshold int
	// MaxChannels is used when the transport cannot report its channel count
	MaxChannels int
	// NetworkNumber is the network channels are assigned to
	NetworkNumber uint8
	// RFFrequency is the channel frequency offset from 2400 MHz
	RFFrequency uint8
}

// DefaultConfig returns the ANT+ defaults
func DefaultConfig() *Config {
	return &Config{
		NetworkKey:           ANTPlusNetworkKey,
		NetworkNumber:        DefaultNetworkNumber,
		RFFrequency:          DefaultRFFrequency,
		SettleTime:           DefaultSettleTime,
		ReadyTimeout:         3 * time.Second,
		NetworkKeyTimeout:    2 * time.Second,
		AckRetryInterval:     1 * time.Second,
		SearchTimeout:        30 * time.Second,
		QuickSearchTimeout:   10 * time.Second,
		RxFailReportInterval: 1 * time.Second,
		AckQueueCapacity:     DefaultAckQueueCapacity,
		RxFailThreshold:      4,
		MaxChannels:          DefaultMaxChannels,
	}
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	switch {
	case c.AckQueueCapacity < 1:
		return ErrInvalidParameter
	case c.MaxChannels < 1:
		return ErrInvalidParameter
	case c.SettleTime < 0, c.ReadyTimeout <= 0, c.NetworkKeyTimeout <= 0:
		return ErrInvalidParameter
	case c.AckRetryInterval <= 0:
		return ErrInvalidParameter
	default:
		return nil
	}
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

func (c *Config) searchTimeoutUnits(quick bool) uint8 {
	if quick {
		return message.SearchTimeoutUnits(c.QuickSearchTimeout)
	}
	return message.SearchTimeoutUnits(c.SearchTimeout)
}
