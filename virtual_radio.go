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

import (
	"encoding/binary"
	"sync"

	"github.com/ZaparooProject/go-ant/internal/frame"
	"github.com/ZaparooProject/go-ant/message"
)

// VirtualSensor is a simulated sensor served by a VirtualRadio
type VirtualSensor struct {
	// Page returns the data page for the n-th broadcast; nil uses a built-in
	// generator for the sensor type
	Page             func(n int) [8]byte
	Sensor           SensorType
	DeviceNumber     uint16
	TransmissionType uint8
}

type virtualChannel struct {
	sensor   *VirtualSensor
	sent     int
	assigned bool
	open     bool
	devType  uint8
	device   uint16
}

// VirtualRadio simulates an ANT stick. It answers configuration commands the
// way a real radio does and produces broadcasts for open channels whose
// channel id matches one of its sensors.
type VirtualRadio struct {
	assembler   *frame.Assembler
	sensors     []*VirtualSensor
	channels    []virtualChannel
	pending     []byte
	acks        [][8]byte
	ackFailures int
	mu          sync.Mutex
	closed      bool
}

// NewVirtualRadio creates a simulated radio with the given channel count
func NewVirtualRadio(channels int, sensors ...VirtualSensor) *VirtualRadio {
	r := &VirtualRadio{
		assembler: frame.NewAssembler(),
		channels:  make([]virtualChannel, channels),
	}
	for i := range sensors {
		s := sensors[i]
		r.sensors = append(r.sensors, &s)
	}
	return r
}

// FailNextAcks makes the next n acknowledged transfers fail
func (r *VirtualRadio) FailNextAcks(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ackFailures = n
}

// Acknowledged returns the acknowledged pages delivered so far
func (r *VirtualRadio) Acknowledged() [][8]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][8]byte, len(r.acks))
	copy(out, r.acks)
	return out
}

// Broadcast queues one broadcast for every open channel tracking a sensor
func (r *VirtualRadio) Broadcast() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.channels {
		ch := &r.channels[i]
		if !ch.open {
			continue
		}
		if ch.sensor == nil {
			ch.sensor = r.match(ch.devType, ch.device)
		}
		if ch.sensor == nil {
			continue
		}
		r.queue(message.NewBroadcastData(uint8(i), ch.sensor.page(ch.sent)))
		ch.sent++
	}
}

// SearchTimeout makes an open channel give up its search
func (r *VirtualRadio) SearchTimeout(channel int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if channel < 0 || channel >= len(r.channels) || !r.channels[channel].open {
		return
	}
	r.channels[channel].open = false
	r.queue(message.NewChannelEvent(uint8(channel), message.IDRFEvent, message.EventRxSearchTimeout))
	r.queue(message.NewChannelEvent(uint8(channel), message.IDRFEvent, message.EventChannelClosed))
}

// ReadBytes drains everything the radio has produced
func (r *VirtualRadio) ReadBytes() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrTransportClosed
	}
	out := r.pending
	r.pending = nil
	return out, nil
}

// WriteBytes accepts host frames and queues the radio's answers
func (r *VirtualRadio) WriteBytes(data []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrTransportClosed
	}
	for _, f := range r.assembler.Submit(data) {
		r.respond(message.Decode(f))
	}
	return len(data), nil
}

// NumberOfChannels returns the simulated channel count
func (r *VirtualRadio) NumberOfChannels() int {
	return len(r.channels)
}

// IsReady is true until the radio is closed
func (r *VirtualRadio) IsReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Close stops the radio
func (r *VirtualRadio) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Type returns TransportVirtual
func (*VirtualRadio) Type() TransportType {
	return TransportVirtual
}

func (r *VirtualRadio) queue(m message.Message) {
	r.pending = append(r.pending, message.Encode(m)...)
}

func (r *VirtualRadio) ok(channel uint8, command message.ID) {
	r.queue(message.NewChannelEvent(channel, command, message.ResponseNoError))
}

func (r *VirtualRadio) reject(channel uint8, command message.ID, code message.EventCode) {
	r.queue(message.NewChannelEvent(channel, command, code))
}

func (r *VirtualRadio) channel(n uint8) *virtualChannel {
	if int(n) >= len(r.channels) {
		return nil
	}
	return &r.channels[n]
}

func (r *VirtualRadio) match(devType uint8, device uint16) *VirtualSensor {
	for _, s := range r.sensors {
		if devType != 0 && s.Sensor.DeviceType() != devType {
			continue
		}
		if device != 0 && s.DeviceNumber != device {
			continue
		}
		return s
	}
	return nil
}

//nolint:gocyclo,revive // one case per command keeps the simulation readable
func (r *VirtualRadio) respond(m message.Message) {
	switch v := m.(type) {
	case *message.SetChannelID:
		if ch := r.channel(v.Channel); ch != nil && ch.assigned {
			ch.devType = v.DeviceType
			ch.device = v.DeviceNumber
			ch.sensor = nil
			r.ok(v.Channel, message.IDSetChannelID)
			return
		}
		r.reject(v.Channel, message.IDSetChannelID, message.ChannelInWrongState)
	case *message.Broadcast:
		if !v.Acknowledged {
			return
		}
		if r.ackFailures > 0 {
			r.ackFailures--
			r.queue(message.NewChannelEvent(v.Channel, message.IDRFEvent, message.EventTransferTxFailed))
			return
		}
		r.acks = append(r.acks, v.Data)
		r.queue(message.NewChannelEvent(v.Channel, message.IDRFEvent, message.EventTransferTxCompleted))
	default:
		r.respondCommand(m.ID(), m.Payload())
	}
}

func (r *VirtualRadio) respondCommand(id message.ID, payload []byte) {
	if len(payload) == 0 {
		return
	}
	n := payload[0]
	ch := r.channel(n)

	switch id {
	case message.IDSystemReset:
		for i := range r.channels {
			r.channels[i] = virtualChannel{}
		}
		r.queue(message.NewGeneric(message.IDStartup, []byte{0x20}))
	case message.IDSetNetworkKey:
		r.ok(n, id)
	case message.IDAssignChannel:
		if ch == nil || ch.assigned {
			r.reject(n, id, message.ChannelInWrongState)
			return
		}
		ch.assigned = true
		r.ok(n, id)
	case message.IDUnassignChannel:
		if ch == nil || ch.open {
			r.reject(n, id, message.ChannelInWrongState)
			return
		}
		*ch = virtualChannel{}
		r.ok(n, id)
	case message.IDSetChannelFrequency, message.IDSetChannelPeriod, message.IDSetSearchTimeout,
		message.IDSetLowPrioritySearchTimeout:
		if ch == nil || !ch.assigned {
			r.reject(n, id, message.ChannelInWrongState)
			return
		}
		r.ok(n, id)
	case message.IDOpenChannel:
		if ch == nil || !ch.assigned || ch.open {
			r.reject(n, id, message.ChannelInWrongState)
			return
		}
		ch.open = true
		r.ok(n, id)
	case message.IDCloseChannel:
		if ch == nil || !ch.open {
			r.reject(n, id, message.ChannelInWrongState)
			return
		}
		ch.open = false
		r.ok(n, id)
		r.queue(message.NewChannelEvent(n, message.IDRFEvent, message.EventChannelClosed))
	case message.IDRequestMessage:
		if len(payload) < 2 {
			return
		}
		r.respondRequest(n, message.ID(payload[1]))
	default:
	}
}

func (r *VirtualRadio) respondRequest(n uint8, requested message.ID) {
	switch requested {
	case message.IDSetChannelID:
		ch := r.channel(n)
		if ch == nil || ch.sensor == nil {
			return
		}
		r.queue(message.NewSetChannelID(n, ch.sensor.DeviceNumber, ch.sensor.Sensor.DeviceType(), false,
			ch.sensor.transmissionType()))
	case message.IDCapabilities:
		caps := &message.Capabilities{MaxChannels: uint8(len(r.channels)), MaxNetworks: 8}
		r.queue(caps)
	default:
	}
}

func (s *VirtualSensor) transmissionType() uint8 {
	if s.TransmissionType == 0 {
		return 0x01
	}
	return s.TransmissionType
}

func (s *VirtualSensor) page(n int) [8]byte {
	if s.Page != nil {
		return s.Page(n)
	}
	return simulatedPage(s.Sensor, n)
}

// simulatedPage produces a steady effort: 75 bpm, 200 W at 90 rpm, one
// crank and wheel revolution per second
func simulatedPage(t SensorType, n int) [8]byte {
	var page [8]byte
	seq := uint16(n)

	switch t {
	case SensorHeartRate:
		page = [8]byte{0x04, 0xFF, 0xFF, 0xFF}
		binary.LittleEndian.PutUint16(page[4:6], seq*819)
		page[6] = uint8(n)
		page[7] = 75
	case SensorPower:
		page = [8]byte{0x10, uint8(n), 0xFF, 90}
		binary.LittleEndian.PutUint16(page[4:6], seq*200)
		binary.LittleEndian.PutUint16(page[6:8], 200)
	case SensorCadence, SensorSpeed:
		binary.LittleEndian.PutUint16(page[4:6], seq*1024)
		binary.LittleEndian.PutUint16(page[6:8], seq)
	case SensorSpeedAndCadence:
		binary.LittleEndian.PutUint16(page[0:2], seq*1024)
		binary.LittleEndian.PutUint16(page[2:4], seq)
		binary.LittleEndian.PutUint16(page[4:6], seq*1024)
		binary.LittleEndian.PutUint16(page[6:8], seq)
	case SensorSmartTrainer:
		if n%2 == 0 {
			page = [8]byte{0x19, uint8(n / 2), 90, 0, 0, 200, 0, 0x30}
		} else {
			page = [8]byte{0x10, 25, uint8(n), 0, 0, 0, 0xFF, 0x24}
			binary.LittleEndian.PutUint16(page[4:6], 8333)
		}
	case SensorUnknown:
	default:
	}
	return page
}
