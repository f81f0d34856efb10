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

// Package uart detects ANT USB sticks on serial ports
package uart

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-ant/detection"
	"github.com/ZaparooProject/go-ant/transport/uart"
	"go.bug.st/serial/enumerator"
)

// detector implements the Detector interface for serial ports
type detector struct {
	list   func() ([]*enumerator.PortDetails, error)
	access func(path string) error
}

// New creates a new serial port detector
func New() detection.Detector {
	return &detector{
		list:   enumerator.GetDetailedPortsList,
		access: checkAccess,
	}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "uart"
}

// Detect lists serial ports that belong to ANT sticks
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		device, ok := d.classify(port, opts)
		if ok {
			devices = append(devices, device)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func (d *detector) classify(port *enumerator.PortDetails, opts *detection.Options) (detection.DeviceInfo, bool) {
	if detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	vidpid := ""
	if port.IsUSB {
		vidpid = strings.ToUpper(port.VID + ":" + port.PID)
		if detection.IsBlocked(vidpid, opts.Blocklist) {
			return detection.DeviceInfo{}, false
		}
	}

	device := detection.DeviceInfo{
		Transport:  "uart",
		Path:       port.Name,
		Name:       port.Name,
		Confidence: detection.Low,
		Metadata:   map[string]string{},
	}

	switch name, known := detection.KnownDevice(vidpid); {
	case known:
		device.Name = name
		device.Confidence = detection.High
	case strings.EqualFold(port.VID, detection.VendorDynastream):
		device.Name = "Dynastream USB device"
		device.Confidence = detection.Medium
	case opts.Mode != detection.Full:
		return detection.DeviceInfo{}, false
	}

	if port.IsUSB {
		device.Metadata["vid_pid"] = vidpid
		device.Metadata["baud"] = strconv.Itoa(uart.BaudForProduct(strings.ToUpper(port.PID)))
		if port.SerialNumber != "" {
			device.Metadata["serial"] = port.SerialNumber
		}
	}

	if opts.Mode != detection.Passive {
		if err := d.access(port.Name); err != nil {
			device.Metadata["access"] = err.Error()
		} else {
			device.Metadata["access"] = "ok"
		}
	}

	return device, true
}
