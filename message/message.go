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

// Package message implements the ANT message codec: typed views over
// validated frames and constructors for every outgoing command.
package message

import (
	"encoding/binary"

	"github.com/ZaparooProject/go-ant/internal/frame"
)

// Message is a decoded or constructible ANT message. The concrete type is one
// of *ChannelEvent, *Broadcast, *SetChannelID, *Capabilities or *Generic;
// consumers use a type switch.
type Message interface {
	ID() ID
	Payload() []byte
	isMessage()
}

// Generic is any message without a dedicated typed view
type Generic struct {
	payload []byte
	id      ID
}

// NewGeneric creates a message from an id and a raw payload
func NewGeneric(id ID, payload []byte) *Generic {
	return &Generic{id: id, payload: append([]byte(nil), payload...)}
}

// ID returns the message id
func (g *Generic) ID() ID { return g.id }

// Payload returns a copy of the payload
func (g *Generic) Payload() []byte { return append([]byte(nil), g.payload...) }

func (*Generic) isMessage() {}

// ChannelEvent reports the outcome of a command or an RF event on a channel.
// MessageID is the command being answered, or IDRFEvent for RF events.
type ChannelEvent struct {
	Channel   uint8
	MessageID ID
	Code      EventCode
}

// NewChannelEvent creates a channel event
func NewChannelEvent(channel uint8, id ID, code EventCode) *ChannelEvent {
	return &ChannelEvent{Channel: channel, MessageID: id, Code: code}
}

// ID returns IDChannelEvent
func (*ChannelEvent) ID() ID { return IDChannelEvent }

// Payload encodes channel, message id and code
func (e *ChannelEvent) Payload() []byte {
	return []byte{e.Channel, byte(e.MessageID), byte(e.Code)}
}

// IsResponse reports whether the event answers a command rather than
// describing an RF event
func (e *ChannelEvent) IsResponse() bool {
	return e.MessageID != IDRFEvent
}

func (*ChannelEvent) isMessage() {}

// Broadcast carries one 8-byte data page from or to a sensor. Acknowledged
// selects the acknowledged-data message id instead of broadcast-data.
type Broadcast struct {
	Data         [8]byte
	Channel      uint8
	Acknowledged bool
}

// NewBroadcastData creates a broadcast-data message
func NewBroadcastData(channel uint8, data [8]byte) *Broadcast {
	return &Broadcast{Channel: channel, Data: data}
}

// NewAcknowledgedData creates an acknowledged-data message
func NewAcknowledgedData(channel uint8, data [8]byte) *Broadcast {
	return &Broadcast{Channel: channel, Data: data, Acknowledged: true}
}

// ID returns IDBroadcastData or IDAcknowledgedData
func (b *Broadcast) ID() ID {
	if b.Acknowledged {
		return IDAcknowledgedData
	}
	return IDBroadcastData
}

// Payload encodes the channel followed by the data page
func (b *Broadcast) Payload() []byte {
	payload := make([]byte, 0, 9)
	payload = append(payload, b.Channel)
	return append(payload, b.Data[:]...)
}

// DataPage returns the page selector in the first data byte
func (b *Broadcast) DataPage() byte {
	return b.Data[0]
}

func (*Broadcast) isMessage() {}

// SetChannelID identifies the device a channel talks to. It is both sent to
// configure a channel and received in answer to a channel-id request.
type SetChannelID struct {
	DeviceNumber     uint16
	Channel          uint8
	DeviceType       uint8
	TransmissionType uint8
	Pairing          bool
}

// NewSetChannelID creates a set-channel-id message. Only the low 7 bits of
// deviceType are used.
func NewSetChannelID(channel uint8, deviceNumber uint16, deviceType uint8, pairing bool,
	transmissionType uint8,
) *SetChannelID {
	return &SetChannelID{
		Channel:          channel,
		DeviceNumber:     deviceNumber,
		DeviceType:       deviceType & 0x7F,
		Pairing:          pairing,
		TransmissionType: transmissionType,
	}
}

// ID returns IDSetChannelID
func (*SetChannelID) ID() ID { return IDSetChannelID }

// Payload encodes channel, little-endian device number, type with pairing bit
// and transmission type
func (s *SetChannelID) Payload() []byte {
	payload := []byte{s.Channel, 0, 0, s.DeviceType & 0x7F, s.TransmissionType}
	binary.LittleEndian.PutUint16(payload[1:3], s.DeviceNumber)
	if s.Pairing {
		payload[3] |= 0x80
	}
	return payload
}

func (*SetChannelID) isMessage() {}

// Capabilities describes the radio, answering a capabilities request
type Capabilities struct {
	Options     []byte
	MaxChannels uint8
	MaxNetworks uint8
}

// ID returns IDCapabilities
func (*Capabilities) ID() ID { return IDCapabilities }

// Payload encodes channel and network counts followed by option bytes
func (c *Capabilities) Payload() []byte {
	payload := []byte{c.MaxChannels, c.MaxNetworks}
	return append(payload, c.Options...)
}

func (*Capabilities) isMessage() {}

// Decode maps a validated frame to its typed message. Unknown ids and payloads
// too short for their typed view decode to *Generic.
func Decode(f frame.Frame) Message {
	id := ID(f.ID)
	p := f.Payload

	switch id {
	case IDChannelEvent:
		if len(p) >= 3 {
			return &ChannelEvent{Channel: p[0], MessageID: ID(p[1]), Code: EventCode(p[2])}
		}
	case IDBroadcastData, IDAcknowledgedData:
		if len(p) >= 9 {
			b := &Broadcast{Channel: p[0], Acknowledged: id == IDAcknowledgedData}
			copy(b.Data[:], p[1:9])
			return b
		}
	case IDSetChannelID:
		if len(p) >= 5 {
			return &SetChannelID{
				Channel:          p[0],
				DeviceNumber:     binary.LittleEndian.Uint16(p[1:3]),
				DeviceType:       p[3] & 0x7F,
				Pairing:          p[3]&0x80 != 0,
				TransmissionType: p[4],
			}
		}
	case IDCapabilities:
		if len(p) >= 2 {
			return &Capabilities{
				MaxChannels: p[0],
				MaxNetworks: p[1],
				Options:     append([]byte(nil), p[2:]...),
			}
		}
	default:
	}

	return NewGeneric(id, p)
}

// Encode serializes a message into a complete frame
func Encode(m Message) []byte {
	return frame.Build(byte(m.ID()), m.Payload())
}
