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

package frame

import "testing"

func TestCalculateChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{
			name: "empty data",
			data: []byte{},
			want: 0,
		},
		{
			name: "single byte",
			data: []byte{0x42},
			want: 0x42,
		},
		{
			name: "identical bytes cancel",
			data: []byte{0x5A, 0x5A},
			want: 0x00,
		},
		{
			name: "open channel 0 header",
			data: []byte{0xA4, 0x01, 0x4B, 0x00},
			want: 0xEE,
		},
		{
			name: "system reset",
			data: []byte{0xA4, 0x01, 0x4A, 0x00},
			want: 0xEF,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateChecksum(tt.data); got != tt.want {
				t.Errorf("CalculateChecksum() = %#02x, want %#02x", got, tt.want)
			}
		})
	}
}

func TestValidateChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		frame []byte
		want  bool
	}{
		{
			name:  "valid open channel",
			frame: []byte{0xA4, 0x01, 0x4B, 0x00, 0xEE},
			want:  true,
		},
		{
			name:  "corrupted checksum",
			frame: []byte{0xA4, 0x01, 0x4B, 0x00, 0xEF},
			want:  false,
		},
		{
			name:  "too short",
			frame: []byte{0xA4, 0xA4},
			want:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidateChecksum(tt.frame); got != tt.want {
				t.Errorf("ValidateChecksum() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestBuildProperty verifies that every built frame validates and that its
// declared length matches the payload
func TestBuildProperty(t *testing.T) {
	t.Parallel()
	for n := 0; n <= MaxPayloadLength; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i*31 + n)
		}
		frm := Build(0x4E, payload)
		if len(frm) != Overhead+n {
			t.Fatalf("frame length %d, want %d", len(frm), Overhead+n)
		}
		if int(frm[1]) != n {
			t.Errorf("declared length %d, want %d", frm[1], n)
		}
		if !ValidateChecksum(frm) {
			t.Errorf("built frame with %d payload bytes does not validate", n)
		}
	}
}
