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

package message

import (
	"encoding/binary"
	"time"
)

// NewAssignChannel assigns a channel number to a channel type on a network
func NewAssignChannel(channel uint8, channelType ChannelType, network uint8) *Generic {
	return NewGeneric(IDAssignChannel, []byte{channel, byte(channelType), network})
}

// NewUnassignChannel releases a channel number
func NewUnassignChannel(channel uint8) *Generic {
	return NewGeneric(IDUnassignChannel, []byte{channel})
}

// NewOpenChannel starts searching on a configured channel
func NewOpenChannel(channel uint8) *Generic {
	return NewGeneric(IDOpenChannel, []byte{channel})
}

// NewCloseChannel stops a channel; the radio answers with a channel-closed event
func NewCloseChannel(channel uint8) *Generic {
	return NewGeneric(IDCloseChannel, []byte{channel})
}

// NewSetNetworkKey loads an 8-byte key for a network number
func NewSetNetworkKey(network uint8, key [8]byte) *Generic {
	payload := make([]byte, 0, 9)
	payload = append(payload, network)
	return NewGeneric(IDSetNetworkKey, append(payload, key[:]...))
}

// NewSetChannelFrequency sets the RF frequency as an offset in MHz from
// BaseFrequencyMHz
func NewSetChannelFrequency(channel, offsetMHz uint8) *Generic {
	return NewGeneric(IDSetChannelFrequency, []byte{channel, offsetMHz})
}

// NewSetChannelPeriod sets the message period in 1/32768 s units
func NewSetChannelPeriod(channel uint8, period uint16) *Generic {
	payload := []byte{channel, 0, 0}
	binary.LittleEndian.PutUint16(payload[1:], period)
	return NewGeneric(IDSetChannelPeriod, payload)
}

// NewSetSearchTimeout sets the high priority search timeout in 2.5 s units.
// SearchTimeoutInfinite keeps searching forever.
func NewSetSearchTimeout(channel, timeout uint8) *Generic {
	return NewGeneric(IDSetSearchTimeout, []byte{channel, timeout})
}

// NewSetLowPrioritySearchTimeout sets the low priority search timeout in 2.5 s units
func NewSetLowPrioritySearchTimeout(channel, timeout uint8) *Generic {
	return NewGeneric(IDSetLowPrioritySearchTimeout, []byte{channel, timeout})
}

// NewRequestMessage asks the radio to send message id for a channel
func NewRequestMessage(channel uint8, id ID) *Generic {
	return NewGeneric(IDRequestMessage, []byte{channel, byte(id)})
}

// NewSystemReset resets the radio
func NewSystemReset() *Generic {
	return NewGeneric(IDSystemReset, []byte{0x00})
}

// SearchTimeoutUnits converts a duration to set-search-timeout units of 2.5 s,
// rounding up and clamping below the infinite sentinel
func SearchTimeoutUnits(d time.Duration) uint8 {
	const unit = 2500 * time.Millisecond
	if d <= 0 {
		return SearchTimeoutDisabled
	}
	units := (d + unit - 1) / unit
	if units >= time.Duration(SearchTimeoutInfinite) {
		return SearchTimeoutInfinite - 1
	}
	return uint8(units)
}

// PeriodFromHz converts a message rate to set-channel-period units
func PeriodFromHz(hz float64) uint16 {
	if hz <= 0 {
		return 0
	}
	period := PeriodUnitsPerSecond/hz + 0.5
	if period > 0xFFFF {
		return 0xFFFF
	}
	return uint16(period)
}
