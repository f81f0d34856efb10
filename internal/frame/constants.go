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

// Package frame provides framing, checksums and stream reassembly for the ANT serial protocol
package frame

// Frame markers
const (
	Sync     = 0xA4 // Sync byte for frames in both directions on async serial
	SyncRead = 0xA5 // Sync byte used by the chip for reads on synchronous serial
)

// Frame size limits
const (
	HeaderLength     = 3  // sync + length + message id
	Overhead         = 4  // header + checksum
	MaxPayloadLength = 32 // Largest payload this stack parses (extended messages included)
	MinFrameLength   = Overhead
)
