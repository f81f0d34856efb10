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

// Package testing builds raw ANT frames and sensor data pages for tests.
// It only depends on the wire format so that it can be used from every
// package, the root package included.
package testing

import "encoding/binary"

// Message ids used by the builders
const (
	IDChannelEvent   = 0x40
	IDBroadcastData  = 0x4E
	IDAcknowledged   = 0x4F
	IDSetChannelID   = 0x51
	IDCapabilities   = 0x54
	IDStartup        = 0x6F
	IDRFEvent        = 0x01
	ResponseNoError  = 0x00
	EventSearchTO    = 0x01
	EventRxFail      = 0x02
	EventTxCompleted = 0x05
	EventTxFailed    = 0x06
	EventClosed      = 0x07
	EventGoToSearch  = 0x08
	WrongState       = 0x15
)

// BuildFrame wraps a payload in sync, length and checksum
func BuildFrame(id byte, payload ...byte) []byte {
	out := make([]byte, 0, len(payload)+4)
	out = append(out, 0xA4, byte(len(payload)), id)
	out = append(out, payload...)

	var sum byte
	for _, b := range out {
		sum ^= b
	}
	return append(out, sum)
}

// BuildResponse builds a channel response confirming or rejecting command
func BuildResponse(channel, command, code byte) []byte {
	return BuildFrame(IDChannelEvent, channel, command, code)
}

// BuildOK builds a RESPONSE_NO_ERROR for command
func BuildOK(channel, command byte) []byte {
	return BuildResponse(channel, command, ResponseNoError)
}

// BuildEvent builds an RF channel event
func BuildEvent(channel, code byte) []byte {
	return BuildFrame(IDChannelEvent, channel, IDRFEvent, code)
}

// BuildBroadcast builds a broadcast data message carrying page
func BuildBroadcast(channel byte, page [8]byte) []byte {
	return BuildFrame(IDBroadcastData, append([]byte{channel}, page[:]...)...)
}

// BuildChannelID builds a channel id message as sent by the radio after a
// request
func BuildChannelID(channel byte, deviceNumber uint16, deviceType, transmissionType byte) []byte {
	payload := []byte{channel, 0, 0, deviceType, transmissionType}
	binary.LittleEndian.PutUint16(payload[1:3], deviceNumber)
	return BuildFrame(IDSetChannelID, payload...)
}

// BuildCapabilities builds a capabilities reply
func BuildCapabilities(channels, networks byte) []byte {
	return BuildFrame(IDCapabilities, channels, networks, 0, 0)
}

// BuildStartup builds the message sent by the radio after a reset
func BuildStartup() []byte {
	return BuildFrame(IDStartup, 0x20)
}

// Concat joins frames into one byte stream
func Concat(frames ...[]byte) []byte {
	var out []byte
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}
