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

// Package spi lists SPI buses an ANT module may be wired to
package spi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ZaparooProject/go-ant/detection"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

type busRef struct {
	name    string
	aliases []string
	number  int
}

// detector implements the Detector interface for SPI buses. A bus cannot
// be identified without driving the handshake pins, so every match is Low.
type detector struct {
	list func() ([]busRef, error)
}

// New creates a new SPI detector
func New() detection.Detector {
	return &detector{list: listBuses}
}

func init() {
	detection.RegisterDetector(New())
}

func listBuses() ([]busRef, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	refs := spireg.All()
	buses := make([]busRef, 0, len(refs))
	for _, ref := range refs {
		buses = append(buses, busRef{name: ref.Name, aliases: ref.Aliases, number: ref.Number})
	}
	return buses, nil
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "spi"
}

// Detect lists SPI buses. Passive scans skip them, they are never more
// than a guess.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if opts.Mode == detection.Passive {
		return nil, detection.ErrNoDevicesFound
	}

	buses, err := d.list()
	if err != nil {
		return nil, err
	}

	devices := make([]detection.DeviceInfo, 0, len(buses))
	for _, bus := range buses {
		if ctx.Err() != nil {
			return devices, detection.ErrDetectionTimeout
		}
		if detection.IsPathIgnored(bus.name, opts.IgnorePaths) {
			continue
		}
		device := detection.DeviceInfo{
			Transport:  "spi",
			Path:       bus.name,
			Name:       "SPI bus " + bus.name,
			Confidence: detection.Low,
			Metadata:   map[string]string{"number": strconv.Itoa(bus.number)},
		}
		if len(bus.aliases) > 0 {
			device.Metadata["alias"] = bus.aliases[0]
		}
		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}
