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

// Transport is the raw byte contract of an ANT radio device. It can be
// implemented by USB serial sticks, synchronous serial modules or simulators.
type Transport interface {
	// ReadBytes drains whatever has arrived since the last call without
	// blocking; an empty slice means nothing is available
	ReadBytes() ([]byte, error)

	// WriteBytes writes raw bytes; callers compare the count against the
	// requested length
	WriteBytes(data []byte) (int, error)

	// NumberOfChannels returns the radio's concurrent channel limit, or 0 when
	// the transport cannot tell
	NumberOfChannels() int

	// IsReady returns true once the radio accepts commands
	IsReady() bool

	// Close closes the transport connection
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents USB serial sticks.
	TransportUART TransportType = "uart"
	// TransportSPI represents synchronous serial modules.
	TransportSPI TransportType = "spi"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
	// TransportVirtual represents the simulated radio
	TransportVirtual TransportType = "virtual"
)
