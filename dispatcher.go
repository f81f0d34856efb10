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

	"github.com/ZaparooProject/go-ant/internal/frame"
	"github.com/ZaparooProject/go-ant/message"
	"github.com/ZaparooProject/go-ant/metrics"
	"go.uber.org/zap"
)

// Callbacks receives events from the Dispatcher. Nil fields are skipped. All
// callbacks run on the goroutine driving the Dispatcher.
type Callbacks struct {
	// OnInitialized reports the outcome of Initialize
	OnInitialized func(err error)
	// OnReading delivers decoded sensor values
	OnReading func(r Reading)
	// OnSensorFound reports that a channel acquired a sensor
	OnSensorFound func(sensor SensorType, channel int, deviceNumber uint16)
	// OnSearchTimeout reports a search that gave up
	OnSearchTimeout func(sensor SensorType)
	// OnRxFail reports a run of missed messages
	OnRxFail func(sensor SensorType, count int)
	// OnChannelReleased reports that a channel slot is free again
	OnChannelReleased func(sensor SensorType, channel int)
	// OnChannelError reports a command the radio rejected
	OnChannelError func(sensor SensorType, err error)
	// OnError reports transport write failures
	OnError func(err error)
}

type initPhase int

const (
	initIdle initPhase = iota
	initWaitReady
	initSettling
	initAwaitKey
	initDone
	initFailed
)

// Dispatcher owns the radio transport and the channel table. It assembles
// incoming bytes into messages, routes them to channels and serializes all
// outgoing commands. A Dispatcher is not safe for concurrent use; drive it
// from one goroutine (see polling.RadioActor).
type Dispatcher struct {
	deadline    time.Time
	transport   Transport
	initErr     error
	config      *Config
	logger      *zap.Logger
	metrics     *metrics.Collector
	wireLog     *wireLogger
	clock       func() time.Time
	assembler   *frame.Assembler
	callbacks   Callbacks
	channels    []*Channel
	phase       initPhase
	lastDropped uint64
	lastNoise   uint64
}

// New creates a Dispatcher for the transport
func New(transport Transport, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		transport: transport,
		config:    DefaultConfig(),
		logger:    zap.NewNop(),
		clock:     time.Now,
		assembler: frame.NewAssembler(),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return d, nil
}

// Initialize starts the radio setup: wait for the transport to be ready,
// reset the radio, let it settle and load the network key. The sequence is
// driven by Tick and its outcome is reported through OnInitialized. Calling
// Initialize again restarts the sequence and forgets all channels.
func (d *Dispatcher) Initialize() error {
	if d.transport == nil {
		return ErrNoDevice
	}

	d.channels = make([]*Channel, d.capacity())
	d.metrics.SetActiveChannels(0)
	d.assembler.Reset()
	d.lastDropped, d.lastNoise = 0, 0
	d.initErr = nil

	now := d.clock()
	d.phase = initWaitReady
	d.deadline = now.Add(d.config.ReadyTimeout)
	d.logger.Debug("initializing radio", zap.Int("channels", len(d.channels)))
	d.advanceInit(now)
	return nil
}

func (d *Dispatcher) capacity() int {
	if n := d.transport.NumberOfChannels(); n > 0 {
		return n
	}
	return d.config.MaxChannels
}

func (d *Dispatcher) advanceInit(now time.Time) {
	if d.phase == initWaitReady {
		if !d.transport.IsReady() {
			if !now.Before(d.deadline) {
				d.failInit(ErrDeviceNotReady)
			}
			return
		}
		d.send(message.NewSystemReset())
		d.phase = initSettling
		d.deadline = now.Add(d.config.SettleTime)
	}

	if d.phase == initSettling {
		if now.Before(d.deadline) {
			return
		}
		d.send(message.NewSetNetworkKey(d.config.NetworkNumber, d.config.NetworkKey))
		d.phase = initAwaitKey
		d.deadline = now.Add(d.config.NetworkKeyTimeout)
		return
	}

	if d.phase == initAwaitKey && !now.Before(d.deadline) {
		d.failInit(ErrInitTimeout)
	}
}

func (d *Dispatcher) failInit(err error) {
	d.phase = initFailed
	d.initErr = err
	d.logger.Error("radio initialization failed", zap.Error(err))
	if d.callbacks.OnInitialized != nil {
		d.callbacks.OnInitialized(err)
	}
}

// Ready reports whether initialization completed successfully
func (d *Dispatcher) Ready() bool {
	return d.phase == initDone
}

// InitResult reports whether initialization has finished and its error
func (d *Dispatcher) InitResult() (done bool, err error) {
	return d.phase == initDone || d.phase == initFailed, d.initErr
}

// NumberOfChannels returns the size of the channel table
func (d *Dispatcher) NumberOfChannels() int {
	return len(d.channels)
}

// RequestCapabilities asks the radio for its capabilities; the reply resizes
// the channel table when the transport could not report a channel count
func (d *Dispatcher) RequestCapabilities() error {
	if d.transport == nil {
		return ErrNoDevice
	}
	d.send(message.NewRequestMessage(0, message.IDCapabilities))
	return nil
}

// SearchForSensor allocates a free channel and starts searching for a sensor
// of type t. A deviceNumber of 0 pairs with the first sensor found.
func (d *Dispatcher) SearchForSensor(t SensorType, deviceNumber uint16, opts ...SearchOption) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSensorType, int(t))
	}
	if !d.Ready() {
		return ErrNotInitialized
	}
	if d.Channel(t) != nil {
		return fmt.Errorf("%w: %s", ErrSensorAlreadyOpen, t)
	}

	slot := -1
	for i, c := range d.channels {
		if c == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return fmt.Errorf("%w: %d channels in use", ErrNoFreeChannel, len(d.channels))
	}

	search := searchConfig{}
	for _, opt := range opts {
		opt(&search)
	}

	c := newChannel(d, d.config, d.logger, uint8(slot), t, deviceNumber, search)
	d.channels[slot] = c
	d.metrics.SetActiveChannels(d.activeChannels())
	d.logger.Info("searching for sensor",
		zap.Stringer("sensor", t), zap.Int("channel", slot), zap.Uint16("device", deviceNumber))
	c.initialize()
	return nil
}

// Channel returns the channel allocated to sensor type t, or nil
func (d *Dispatcher) Channel(t SensorType) *Channel {
	for _, c := range d.channels {
		if c != nil && c.sensor == t {
			return c
		}
	}
	return nil
}

// Channels returns the allocated channels in channel number order
func (d *Dispatcher) Channels() []*Channel {
	out := make([]*Channel, 0, len(d.channels))
	for _, c := range d.channels {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (d *Dispatcher) activeChannels() int {
	n := 0
	for _, c := range d.channels {
		if c != nil {
			n++
		}
	}
	return n
}

// CloseChannel starts closing the channel allocated to sensor type t
func (d *Dispatcher) CloseChannel(t SensorType) error {
	c := d.Channel(t)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNoSuchChannel, t)
	}
	c.close()
	return nil
}

// CloseAllChannels starts closing every allocated channel
func (d *Dispatcher) CloseAllChannels() {
	for _, c := range d.channels {
		if c != nil {
			c.close()
		}
	}
}

// SendAcknowledged queues an acknowledged data page for the sensor of type t
func (d *Dispatcher) SendAcknowledged(t SensorType, data [8]byte) error {
	c := d.Channel(t)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNoSuchChannel, t)
	}
	return c.enqueueAck(data)
}

// SetSlope sets the simulated grade of the smart trainer in percent
func (d *Dispatcher) SetSlope(grade float64) error {
	page, err := trackResistancePage(grade)
	if err != nil {
		return err
	}
	return d.SendAcknowledged(SensorSmartTrainer, page)
}

// SetTargetPower puts the smart trainer in ERG mode at watts
func (d *Dispatcher) SetTargetPower(watts float64) error {
	page, err := targetPowerPage(watts)
	if err != nil {
		return err
	}
	return d.SendAcknowledged(SensorSmartTrainer, page)
}

// SetBasicResistance sets the smart trainer resistance in percent of maximum
func (d *Dispatcher) SetBasicResistance(percent float64) error {
	page, err := basicResistancePage(percent)
	if err != nil {
		return err
	}
	return d.SendAcknowledged(SensorSmartTrainer, page)
}

// Poll reads whatever the transport has buffered, routes it and advances
// timers. It is meant to be called periodically.
func (d *Dispatcher) Poll() error {
	if d.transport == nil {
		return ErrNoDevice
	}
	data, err := d.transport.ReadBytes()
	if len(data) > 0 {
		d.Submit(data)
	}
	// timers keep running while the transport fails
	d.Tick(d.clock())
	if err != nil {
		return fmt.Errorf("poll: %w", err)
	}
	return nil
}

// Submit feeds raw bytes received from the radio and routes every complete
// message
func (d *Dispatcher) Submit(data []byte) {
	frames := d.assembler.Submit(data)
	d.recordAssemblerStats()

	now := d.clock()
	for _, f := range frames {
		d.wireLog.log(now, wireIn, f.Raw)
		d.metrics.FrameReceived()
		d.route(message.Decode(f))
	}
}

func (d *Dispatcher) recordAssemblerStats() {
	dropped, noise := d.assembler.Dropped(), d.assembler.Noise()
	d.metrics.AssemblerDiscards(dropped-d.lastDropped, noise-d.lastNoise)
	d.lastDropped, d.lastNoise = dropped, noise
}

// Tick advances initialization and acknowledged message deadlines
func (d *Dispatcher) Tick(now time.Time) {
	switch d.phase {
	case initWaitReady, initSettling, initAwaitKey:
		d.advanceInit(now)
	case initIdle, initDone, initFailed:
	default:
	}

	for _, c := range d.channels {
		if c != nil {
			c.tick(now)
		}
	}
}

func (d *Dispatcher) route(m message.Message) {
	d.metrics.MessageRouted(m.ID().String())

	switch v := m.(type) {
	case *message.ChannelEvent:
		if v.MessageID == message.IDSetNetworkKey || v.MessageID == message.IDSystemReset {
			d.handleSystemResponse(v)
			return
		}
		d.routeToChannel(v.Channel, m)
	case *message.Broadcast:
		d.routeToChannel(v.Channel, m)
	case *message.SetChannelID:
		d.routeToChannel(v.Channel, m)
	case *message.Capabilities:
		d.handleCapabilities(v)
	case *message.Generic:
		if v.ID() == message.IDStartup {
			d.logger.Debug("radio startup", zap.Binary("reason", v.Payload()))
			return
		}
		d.logger.Debug("unhandled message", zap.Stringer("id", v.ID()))
		d.metrics.MessageUnrouted()
	}
}

func (d *Dispatcher) routeToChannel(number uint8, m message.Message) {
	if int(number) >= len(d.channels) || d.channels[number] == nil {
		d.logger.Debug("message for unallocated channel",
			zap.Uint8("channel", number), zap.Stringer("id", m.ID()))
		d.metrics.MessageUnrouted()
		return
	}
	d.channels[number].handle(m)
}

func (d *Dispatcher) handleSystemResponse(ev *message.ChannelEvent) {
	if ev.MessageID != message.IDSetNetworkKey || d.phase != initAwaitKey {
		d.logger.Debug("system response", zap.Stringer("command", ev.MessageID), zap.Stringer("code", ev.Code))
		return
	}

	if ev.Code != message.ResponseNoError {
		d.failInit(&ResponseError{Channel: int(ev.Channel), Command: ev.MessageID, Code: ev.Code})
		return
	}

	d.phase = initDone
	d.logger.Info("radio initialized", zap.Int("channels", len(d.channels)))
	if d.callbacks.OnInitialized != nil {
		d.callbacks.OnInitialized(nil)
	}
}

func (d *Dispatcher) handleCapabilities(caps *message.Capabilities) {
	n := int(caps.MaxChannels)
	d.logger.Info("radio capabilities",
		zap.Uint8("channels", caps.MaxChannels), zap.Uint8("networks", caps.MaxNetworks))
	if n <= 0 || d.transport.NumberOfChannels() > 0 {
		return
	}

	for len(d.channels) < n {
		d.channels = append(d.channels, nil)
	}
	// only free slots at the end can go away
	for len(d.channels) > n && d.channels[len(d.channels)-1] == nil {
		d.channels = d.channels[:len(d.channels)-1]
	}
}

// send implements channelHost and is the only path to the transport
func (d *Dispatcher) send(m message.Message) {
	data := message.Encode(m)
	d.wireLog.log(d.clock(), wireOut, data)

	n, err := d.transport.WriteBytes(data)
	switch {
	case err != nil:
		d.metrics.Write(metrics.WriteError, n)
		d.reportError(fmt.Errorf("write %s: %w", m.ID(), err))
	case n < len(data):
		d.metrics.Write(metrics.WriteShort, n)
		d.reportError(fmt.Errorf("%w: %s wrote %d of %d bytes", ErrShortWrite, m.ID(), n, len(data)))
	default:
		d.metrics.Write(metrics.WriteOK, n)
	}
}

func (d *Dispatcher) reportError(err error) {
	d.logger.Warn("radio write failed", zap.Error(err))
	if d.callbacks.OnError != nil {
		d.callbacks.OnError(err)
	}
}

func (d *Dispatcher) now() time.Time {
	return d.clock()
}

func (d *Dispatcher) reading(r Reading) {
	d.metrics.Reading(r.Sensor.String(), r.Kind.String())
	if d.callbacks.OnReading != nil {
		d.callbacks.OnReading(r)
	}
}

func (d *Dispatcher) sensorFound(c *Channel) {
	d.logger.Info("sensor found",
		zap.Stringer("sensor", c.sensor), zap.Int("channel", c.Number()), zap.Uint16("device", c.deviceNumber))
	if d.callbacks.OnSensorFound != nil {
		d.callbacks.OnSensorFound(c.sensor, c.Number(), c.deviceNumber)
	}
}

func (d *Dispatcher) searchTimedOut(c *Channel) {
	d.logger.Info("sensor search timed out", zap.Stringer("sensor", c.sensor))
	d.metrics.SearchTimeout(c.sensor.String())
	if d.callbacks.OnSearchTimeout != nil {
		d.callbacks.OnSearchTimeout(c.sensor)
	}
}

func (d *Dispatcher) rxFail(c *Channel, count int) {
	d.metrics.RxFail(c.sensor.String())
	if d.callbacks.OnRxFail != nil {
		d.callbacks.OnRxFail(c.sensor, count)
	}
}

func (d *Dispatcher) released(c *Channel) {
	if int(c.number) < len(d.channels) && d.channels[c.number] == c {
		d.channels[c.number] = nil
	}
	d.metrics.SetActiveChannels(d.activeChannels())
	d.logger.Debug("channel released", zap.Int("channel", c.Number()), zap.Stringer("sensor", c.sensor))
	if d.callbacks.OnChannelReleased != nil {
		d.callbacks.OnChannelReleased(c.sensor, c.Number())
	}
}

func (d *Dispatcher) channelError(c *Channel, err error) {
	if d.callbacks.OnChannelError != nil {
		d.callbacks.OnChannelError(c.sensor, err)
	}
}
