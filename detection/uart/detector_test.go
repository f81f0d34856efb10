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

package uart

import (
	"context"
	"errors"
	"testing"

	"github.com/ZaparooProject/go-ant/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func fakeDetector(ports ...*enumerator.PortDetails) *detector {
	return &detector{
		list: func() ([]*enumerator.PortDetails, error) { return ports, nil },
		access: func(path string) error {
			if path == "/dev/ttyUSB9" {
				return errors.New("permission denied")
			}
			return nil
		},
	}
}

var (
	usb2 = &enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0fcf", PID: "1008", SerialNumber: "123"}
	usbm = &enumerator.PortDetails{Name: "/dev/ttyUSB9", IsUSB: true, VID: "0FCF", PID: "1009"}
	odd  = &enumerator.PortDetails{Name: "/dev/ttyUSB3", IsUSB: true, VID: "0FCF", PID: "4242"}
	ftdi = &enumerator.PortDetails{Name: "/dev/ttyUSB1", IsUSB: true, VID: "0403", PID: "6001"}
	tty  = &enumerator.PortDetails{Name: "/dev/ttyS0"}
)

func TestDetect_Passive(t *testing.T) {
	t.Parallel()

	opts := detection.DefaultOptions()
	found, err := fakeDetector(usb2, ftdi, tty, odd).Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "/dev/ttyUSB0", found[0].Path)
	assert.Equal(t, "ANTUSB2 Stick", found[0].Name)
	assert.Equal(t, detection.High, found[0].Confidence)
	assert.Equal(t, "57600", found[0].Metadata["baud"])
	assert.Equal(t, "0FCF:1008", found[0].Metadata["vid_pid"])
	assert.Equal(t, "123", found[0].Metadata["serial"])
	assert.NotContains(t, found[0].Metadata, "access")

	assert.Equal(t, detection.Medium, found[1].Confidence)
}

func TestDetect_SafeChecksAccess(t *testing.T) {
	t.Parallel()

	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe
	found, err := fakeDetector(usb2, usbm).Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "ok", found[0].Metadata["access"])
	assert.Equal(t, "115200", found[1].Metadata["baud"])
	assert.Contains(t, found[1].Metadata["access"], "permission denied")
}

func TestDetect_FullListsEverything(t *testing.T) {
	t.Parallel()

	opts := detection.DefaultOptions()
	opts.Mode = detection.Full
	found, err := fakeDetector(ftdi, tty).Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, detection.Low, found[0].Confidence)
	assert.NotContains(t, found[1].Metadata, "vid_pid")
}

func TestDetect_Filters(t *testing.T) {
	t.Parallel()

	opts := detection.DefaultOptions()
	opts.Blocklist = []string{"0FCF:1008"}
	opts.IgnorePaths = []string{"/dev/ttyUSB9"}

	_, err := fakeDetector(usb2, usbm).Detect(context.Background(), &opts)
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)
}

func TestDetect_EnumerationError(t *testing.T) {
	t.Parallel()

	d := &detector{list: func() ([]*enumerator.PortDetails, error) {
		return nil, errors.New("no udev")
	}}
	opts := detection.DefaultOptions()
	_, err := d.Detect(context.Background(), &opts)
	require.Error(t, err)
}

func TestTransport(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "uart", New().Transport())
}
