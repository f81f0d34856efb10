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
	"fmt"
	"time"

	"github.com/ZaparooProject/go-ant/message"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ChannelState is the lifecycle state of a Channel
type ChannelState int

// Channel states. The configuration states are named after the last command
// sent; the next command goes out when the radio confirms it.
const (
	StateClosed ChannelState = iota
	StateAssigned
	StateIDSet
	StateFrequencySet
	StatePeriodSet
	StateTimeoutSet
	StateOpened
	StateSearching
	StateTracking
	StateSearchTimedOut
	StateClosing
	StateUnassigned
	StateReleased
)

var channelStateNames = [...]string{
	StateClosed:         "closed",
	StateAssigned:       "assigned",
	StateIDSet:          "id-set",
	StateFrequencySet:   "frequency-set",
	StatePeriodSet:      "period-set",
	StateTimeoutSet:     "timeout-set",
	StateOpened:         "opened",
	StateSearching:      "searching",
	StateTracking:       "tracking",
	StateSearchTimedOut: "search-timed-out",
	StateClosing:        "closing",
	StateUnassigned:     "unassigned",
	StateReleased:       "released",
}

func (s ChannelState) String() string {
	if s < 0 || int(s) >= len(channelStateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return channelStateNames[s]
}

// channelHost is the owner side of a Channel. The Dispatcher implements it.
type channelHost interface {
	send(m message.Message)
	now() time.Time
	reading(r Reading)
	sensorFound(c *Channel)
	searchTimedOut(c *Channel)
	rxFail(c *Channel, count int)
	released(c *Channel)
	channelError(c *Channel, err error)
}

// Channel is the state machine of one radio channel bound to one sensor type.
// A Channel is owned by its Dispatcher and must only be used from the
// Dispatcher's goroutine.
type Channel struct {
	host             channelHost
	logger           *zap.Logger
	config           *Config
	decoder          payloadDecoder
	acks             *ackQueue
	rxLimiter        *rate.Limiter
	state            ChannelState
	sensor           SensorType
	rxFails          int
	deviceNumber     uint16
	number           uint8
	transmissionType uint8
	awaiting         message.ID
	quick            bool
	fallbackUsed     bool
	reopenPending    bool
	broadcastSeen    bool
	searchExtended   bool
}

func newChannel(host channelHost, config *Config, logger *zap.Logger, number uint8,
	sensor SensorType, deviceNumber uint16, search searchConfig,
) *Channel {
	return &Channel{
		host:             host,
		config:           config,
		logger:           logger.Named(fmt.Sprintf("ch%d", number)).With(zap.Stringer("sensor", sensor)),
		decoder:          newDecoder(sensor),
		acks:             newAckQueue(config.AckQueueCapacity),
		rxLimiter:        rate.NewLimiter(rate.Every(config.RxFailReportInterval), 1),
		number:           number,
		sensor:           sensor,
		deviceNumber:     deviceNumber,
		transmissionType: search.transmissionType,
		quick:            search.quick,
	}
}

// Number returns the radio channel number
func (c *Channel) Number() int {
	return int(c.number)
}

// SensorType returns the sensor profile the channel searches for
func (c *Channel) SensorType() SensorType {
	return c.sensor
}

// DeviceNumber returns the bound device number, 0 while unbound
func (c *Channel) DeviceNumber() uint16 {
	return c.deviceNumber
}

// TransmissionType returns the transmission type, 0 while unbound
func (c *Channel) TransmissionType() uint8 {
	return c.transmissionType
}

// State returns the current lifecycle state
func (c *Channel) State() ChannelState {
	return c.state
}

// PendingAcks returns the number of queued acknowledged pages
func (c *Channel) PendingAcks() int {
	return c.acks.len()
}

// Released reports whether the channel has reached its terminal state
func (c *Channel) Released() bool {
	return c.state == StateReleased
}

// initialize starts the configuration pipeline
func (c *Channel) initialize() {
	if c.state != StateClosed {
		c.logger.Warn("initialize in wrong state", zap.Stringer("state", c.state))
		return
	}
	c.command(message.NewAssignChannel(c.number, message.ChannelTypeBidirectionalSlave, c.config.NetworkNumber),
		StateAssigned)
}

// command sends a configuration command and records it as awaiting confirmation
func (c *Channel) command(m message.Message, next ChannelState) {
	c.awaiting = m.ID()
	c.transition(next)
	c.host.send(m)
}

func (c *Channel) transition(next ChannelState) {
	if c.state == next {
		return
	}
	c.logger.Debug("state change", zap.Stringer("from", c.state), zap.Stringer("to", next))
	c.state = next
}

// handle processes one message routed to this channel
func (c *Channel) handle(m message.Message) {
	switch v := m.(type) {
	case *message.ChannelEvent:
		if v.IsResponse() {
			c.handleResponse(v)
		} else {
			c.handleEvent(v.Code)
		}
	case *message.Broadcast:
		c.handleBroadcast(v)
	case *message.SetChannelID:
		c.handleChannelID(v)
	default:
		c.logger.Debug("ignoring message", zap.Stringer("id", m.ID()))
	}
}

func (c *Channel) handleResponse(ev *message.ChannelEvent) {
	if ev.MessageID == message.IDAcknowledgedData {
		if ev.Code != message.ResponseNoError {
			c.logger.Debug("acknowledged data refused", zap.Stringer("code", ev.Code))
			c.acks.failed()
		}
		return
	}

	if ev.Code != message.ResponseNoError {
		if ev.MessageID == message.IDCloseChannel && ev.Code == message.ChannelInWrongState &&
			c.state == StateClosing {
			// the radio already closed the channel on its own
			c.unassign()
			return
		}
		c.logger.Warn("command rejected",
			zap.Stringer("command", ev.MessageID), zap.Stringer("code", ev.Code))
		c.host.channelError(c, &ResponseError{Channel: int(c.number), Command: ev.MessageID, Code: ev.Code})
		return
	}

	if ev.MessageID != c.awaiting {
		c.logger.Warn("unexpected confirmation",
			zap.Stringer("command", ev.MessageID),
			zap.Stringer("awaiting", c.awaiting),
			zap.Stringer("state", c.state))
		return
	}
	c.awaiting = 0

	switch c.state {
	case StateAssigned:
		c.command(message.NewSetChannelID(c.number, c.deviceNumber, c.sensor.DeviceType(), false,
			c.transmissionType), StateIDSet)
	case StateIDSet:
		c.command(message.NewSetChannelFrequency(c.number, c.config.RFFrequency), StateFrequencySet)
	case StateFrequencySet:
		c.command(message.NewSetChannelPeriod(c.number, c.sensor.Period()), StatePeriodSet)
	case StatePeriodSet:
		c.command(message.NewSetSearchTimeout(c.number, c.config.searchTimeoutUnits(c.quick)), StateTimeoutSet)
	case StateTimeoutSet:
		c.command(message.NewOpenChannel(c.number), StateOpened)
	case StateOpened:
		c.transition(StateSearching)
	case StateUnassigned:
		c.transition(StateReleased)
		c.host.released(c)
	case StateClosed, StateSearching, StateTracking, StateSearchTimedOut, StateClosing, StateReleased:
		// confirmations that do not advance the pipeline
	default:
	}
}

func (c *Channel) handleEvent(code message.EventCode) {
	switch code {
	case message.EventRxSearchTimeout:
		c.handleSearchTimeout()
	case message.EventRxFail:
		c.rxFails++
		if c.rxFails >= c.config.RxFailThreshold && c.rxLimiter.AllowN(c.host.now(), 1) {
			c.host.rxFail(c, c.rxFails)
		}
	case message.EventRxFailGoToSearch:
		if c.state == StateTracking {
			c.logger.Info("sensor lost, searching again", zap.Uint16("device", c.deviceNumber))
			c.transition(StateSearching)
		}
	case message.EventTransferTxCompleted:
		c.acks.completed()
	case message.EventTransferTxFailed:
		c.logger.Debug("acknowledged transfer failed")
		c.acks.failed()
	case message.EventChannelClosed:
		c.handleChannelClosed()
	default:
		c.logger.Debug("channel event", zap.Stringer("code", code))
	}
}

func (c *Channel) handleSearchTimeout() {
	if c.state != StateSearching && c.state != StateOpened {
		c.logger.Debug("search timeout ignored", zap.Stringer("state", c.state))
		return
	}

	if c.quick && !c.fallbackUsed {
		c.logger.Info("quick search timed out, retrying with normal timeout")
		c.fallbackUsed = true
		c.reopenPending = true
		c.transition(StateSearchTimedOut)
		return
	}

	c.transition(StateSearchTimedOut)
	c.host.searchTimedOut(c)
}

func (c *Channel) handleChannelClosed() {
	switch c.state {
	case StateSearchTimedOut:
		if c.reopenPending {
			c.reopenPending = false
			c.command(message.NewSetSearchTimeout(c.number, c.config.searchTimeoutUnits(false)), StateTimeoutSet)
			return
		}
		c.unassign()
	case StateClosing:
		c.unassign()
	case StateOpened, StateSearching, StateTracking:
		c.logger.Warn("channel closed by radio", zap.Stringer("state", c.state))
		c.acks.clear()
		c.unassign()
	case StateClosed, StateAssigned, StateIDSet, StateFrequencySet, StatePeriodSet, StateTimeoutSet,
		StateUnassigned, StateReleased:
		c.logger.Debug("channel closed event ignored", zap.Stringer("state", c.state))
	default:
	}
}

func (c *Channel) unassign() {
	c.command(message.NewUnassignChannel(c.number), StateUnassigned)
}

func (c *Channel) handleBroadcast(b *message.Broadcast) {
	c.rxFails = 0

	switch c.state {
	case StateOpened, StateSearching:
		c.transition(StateTracking)
		if c.deviceNumber == 0 {
			c.host.send(message.NewRequestMessage(c.number, message.IDSetChannelID))
		} else {
			c.extendSearch()
			c.host.sensorFound(c)
		}
	case StateTracking:
	default:
		c.logger.Debug("broadcast ignored", zap.Stringer("state", c.state))
		return
	}

	c.decode(b.Data)
	c.broadcastSeen = true
	c.pumpAcks()
}

func (c *Channel) decode(data [8]byte) {
	if c.decoder == nil {
		return
	}
	now := c.host.now()
	c.decoder.decode(data, func(kind ValueKind, value float64) {
		c.host.reading(Reading{
			At:           now,
			Kind:         kind,
			Sensor:       c.sensor,
			Value:        value,
			Channel:      int(c.number),
			DeviceNumber: c.deviceNumber,
		})
	})
}

func (c *Channel) handleChannelID(id *message.SetChannelID) {
	if c.state != StateTracking && c.state != StateSearching {
		c.logger.Debug("channel id ignored", zap.Stringer("state", c.state))
		return
	}
	if id.DeviceNumber == 0 {
		return
	}

	if c.deviceNumber == 0 {
		c.deviceNumber = id.DeviceNumber
		c.transmissionType = id.TransmissionType
		c.logger.Info("sensor bound", zap.Uint16("device", c.deviceNumber))
		c.extendSearch()
		c.host.sensorFound(c)
		return
	}

	if id.DeviceNumber != c.deviceNumber {
		c.logger.Warn("channel id does not match bound device",
			zap.Uint16("bound", c.deviceNumber), zap.Uint16("reported", id.DeviceNumber))
	}
}

// extendSearch makes a bound channel search forever once its sensor is lost
func (c *Channel) extendSearch() {
	if c.searchExtended {
		return
	}
	c.searchExtended = true
	c.awaiting = message.IDSetSearchTimeout
	c.host.send(message.NewSetSearchTimeout(c.number, message.SearchTimeoutInfinite))
}

// enqueueAck queues an acknowledged data page for the sensor
func (c *Channel) enqueueAck(page [8]byte) error {
	switch c.state {
	case StateClosing, StateUnassigned, StateReleased, StateSearchTimedOut:
		return fmt.Errorf("%w: channel %d is %s", ErrNoSuchChannel, c.number, c.state)
	default:
	}

	if c.acks.push(page) {
		c.logger.Warn("acknowledged queue full, dropped oldest page")
	}
	c.pumpAcks()
	return nil
}

// pumpAcks sends the head of the ack queue once a broadcast has been received
// since the last send
func (c *Channel) pumpAcks() {
	if c.state != StateTracking || c.acks.inFlight || !c.broadcastSeen {
		return
	}
	page, ok := c.acks.head()
	if !ok {
		return
	}
	now := c.host.now()
	c.acks.markSent(now.Add(c.config.AckRetryInterval))
	c.broadcastSeen = false
	c.host.send(message.NewAcknowledgedData(c.number, page))
}

// tick expires the in-flight acknowledged transfer
func (c *Channel) tick(now time.Time) {
	if c.acks.expired(now) {
		c.logger.Debug("acknowledged transfer unconfirmed, will resend")
		c.acks.failed()
		c.pumpAcks()
	}
}

// close starts the close handshake from any state
func (c *Channel) close() {
	c.acks.clear()
	c.reopenPending = false

	switch c.state {
	case StateClosed:
		c.transition(StateReleased)
		c.host.released(c)
	case StateAssigned, StateIDSet, StateFrequencySet, StatePeriodSet, StateTimeoutSet:
		c.unassign()
	case StateOpened, StateSearching, StateTracking:
		c.command(message.NewCloseChannel(c.number), StateClosing)
	case StateSearchTimedOut, StateClosing, StateUnassigned, StateReleased:
		// already on the way out
	default:
	}
}
