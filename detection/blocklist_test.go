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

package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		expected    bool
	}{
		{name: "empty ignore list", devicePath: "/dev/ttyUSB0", ignorePaths: []string{}},
		{name: "empty device path", devicePath: "", ignorePaths: []string{"/dev/ttyUSB0"}},
		{
			name:        "exact match unix path",
			devicePath:  "/dev/ttyUSB0",
			ignorePaths: []string{"/dev/ttyUSB0"},
			expected:    true,
		},
		{name: "exact match windows path", devicePath: "COM2", ignorePaths: []string{"COM2"}, expected: true},
		{name: "windows case insensitive", devicePath: "com3", ignorePaths: []string{"COM3"}, expected: true},
		{name: "no match", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"/dev/ttyUSB1"}},
		{
			name:        "multiple paths with match",
			devicePath:  "/dev/ttyUSB1",
			ignorePaths: []string{"/dev/ttyUSB0", "/dev/ttyUSB1"},
			expected:    true,
		},
		{
			name:        "spi bus name",
			devicePath:  "SPI0.0",
			ignorePaths: []string{"spi0.0"},
			expected:    true,
		},
		{
			name:        "relative components",
			devicePath:  "/dev/../dev/ttyACM0",
			ignorePaths: []string{"/dev/ttyACM0"},
			expected:    true,
		},
		{name: "empty strings in ignore list", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"", ""}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsPathIgnored(tt.devicePath, tt.ignorePaths))
		})
	}
}

func TestParseVIDPID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		descriptor string
		expected   string
	}{
		{name: "plain", descriptor: "0fcf:1008", expected: "0FCF:1008"},
		{name: "labelled", descriptor: "USB VID:0FCF PID:1009", expected: "0FCF:1009"},
		{name: "windows hardware id", descriptor: `USB\VID=0FCF&PID=1008`, expected: "0FCF:1008"},
		{name: "sysfs style", descriptor: "vendor=0fcf product=1004", expected: "0FCF:1004"},
		{name: "garbage", descriptor: "not a usb device", expected: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ParseVIDPID(tt.descriptor))
		})
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{" 1234:abcd "}
	assert.True(t, IsBlocked("1234:ABCD", blocklist))
	assert.False(t, IsBlocked("0FCF:1008", blocklist))
	assert.False(t, IsBlocked("0FCF:1008", DefaultBlocklist()))
}

func TestKnownDevice(t *testing.T) {
	t.Parallel()

	name, ok := KnownDevice("0fcf:1008")
	assert.True(t, ok)
	assert.Equal(t, "ANTUSB2 Stick", name)

	name, ok = KnownDevice("0FCF:1009")
	assert.True(t, ok)
	assert.Equal(t, "ANTUSB-m Stick", name)

	_, ok = KnownDevice("10C4:EA60")
	assert.False(t, ok)
}
