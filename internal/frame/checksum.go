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

// CalculateChecksum XORs all bytes together
func CalculateChecksum(data []byte) byte {
	var checksum byte
	for _, b := range data {
		checksum ^= b
	}
	return checksum
}

// ValidateChecksum reports whether the last byte of a frame matches the XOR of
// every preceding byte. Frames shorter than the minimum are never valid.
func ValidateChecksum(frm []byte) bool {
	if len(frm) < MinFrameLength {
		return false
	}
	last := len(frm) - 1
	return CalculateChecksum(frm[:last]) == frm[last]
}

// Build assembles a complete frame: sync, length, id, payload and checksum
func Build(id byte, payload []byte) []byte {
	frm := make([]byte, 0, Overhead+len(payload))
	frm = append(frm, Sync, byte(len(payload)), id)
	frm = append(frm, payload...)
	return append(frm, CalculateChecksum(frm))
}
