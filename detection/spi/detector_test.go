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

package spi

import (
	"context"
	"testing"

	"github.com/ZaparooProject/go-ant/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeDetector(buses ...busRef) *detector {
	return &detector{list: func() ([]busRef, error) { return buses, nil }}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	d := fakeDetector(
		busRef{name: "/dev/spidev0.0", aliases: []string{"SPI0.0"}, number: 0},
		busRef{name: "/dev/spidev0.1", number: 1},
	)

	opts := detection.DefaultOptions()
	_, err := d.Detect(context.Background(), &opts)
	require.ErrorIs(t, err, detection.ErrNoDevicesFound, "passive scans skip SPI")

	opts.Mode = detection.Safe
	opts.IgnorePaths = []string{"/dev/spidev0.1"}
	found, err := d.Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "/dev/spidev0.0", found[0].Path)
	assert.Equal(t, detection.Low, found[0].Confidence)
	assert.Equal(t, "SPI0.0", found[0].Metadata["alias"])
	assert.Equal(t, "0", found[0].Metadata["number"])
}

func TestDetect_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := detection.DefaultOptions()
	opts.Mode = detection.Full
	_, err := fakeDetector(busRef{name: "SPI0.0"}).Detect(ctx, &opts)
	require.ErrorIs(t, err, detection.ErrDetectionTimeout)
}

func TestTransport(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "spi", New().Transport())
}
