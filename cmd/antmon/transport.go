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

package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	ant "github.com/ZaparooProject/go-ant"
	"github.com/ZaparooProject/go-ant/internal/config"
	"github.com/ZaparooProject/go-ant/transport/spi"
	"github.com/ZaparooProject/go-ant/transport/uart"
)

const (
	virtualChannels       = 8
	virtualBroadcastEvery = 250 * time.Millisecond
	virtualDeviceBase     = 1000
)

// openTransport creates the radio named by the device config
func openTransport(ctx context.Context, cfg config.DeviceConfig) (ant.Transport, error) {
	switch cfg.Transport {
	case "virtual":
		return newVirtualRadio(ctx, cfg.Channels), nil
	case "spi":
		t, err := spi.New(cfg.SPIBus, cfg.ReadyPin, cfg.RequestPin)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return t, nil
	case "uart":
		return openUART(cfg.Port, cfg.Baud, cfg.Channels)
	default:
		if cfg.Port != "" {
			return openUART(cfg.Port, cfg.Baud, cfg.Channels)
		}
		device, err := firstDevice(ctx)
		if err != nil {
			return nil, fmt.Errorf("auto-detect: %w", err)
		}
		baud := cfg.Baud
		if baud == 0 {
			baud, _ = strconv.Atoi(device.Metadata["baud"])
		}
		return openUART(device.Path, baud, cfg.Channels)
	}
}

func openUART(port string, baud, channels int) (ant.Transport, error) {
	var opts []uart.Option
	if baud > 0 {
		opts = append(opts, uart.WithBaudRate(baud))
	}
	if channels > 0 {
		opts = append(opts, uart.WithChannels(channels))
	}
	t, err := uart.New(port, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create UART transport: %w", err)
	}
	return t, nil
}

// newVirtualRadio serves one simulated sensor of every type, broadcasting
// at the ANT+ 4 Hz rate until ctx ends
func newVirtualRadio(ctx context.Context, channels int) *ant.VirtualRadio {
	if channels <= 0 {
		channels = virtualChannels
	}
	sensors := make([]ant.VirtualSensor, 0, len(ant.SensorTypes()))
	for i, t := range ant.SensorTypes() {
		sensors = append(sensors, ant.VirtualSensor{Sensor: t, DeviceNumber: uint16(virtualDeviceBase + i)})
	}
	radio := ant.NewVirtualRadio(channels, sensors...)

	go func() {
		ticker := time.NewTicker(virtualBroadcastEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				radio.Broadcast()
			}
		}
	}()
	return radio
}
