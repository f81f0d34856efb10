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

package polling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	ant "github.com/ZaparooProject/go-ant"
)

// ErrActorStopped is returned for requests made after the actor stopped
var ErrActorStopped = errors.New("radio actor stopped")

// RadioMetrics tracks operational metrics for a RadioActor
type RadioMetrics struct {
	PollCycles      int64         // Total number of polling cycles
	PollErrors      int64         // Number of failed transport reads
	Requests        int64         // Number of requests executed
	LastPollLatency time.Duration // Duration of last polling operation
}

// ChannelInfo is a snapshot of a channel safe to use outside the actor
type ChannelInfo struct {
	Sensor       ant.SensorType
	State        ant.ChannelState
	Number       int
	PendingAcks  int
	DeviceNumber uint16
}

type request struct {
	fn    func(d *ant.Dispatcher) error
	reply chan error
}

// RadioActor owns a Dispatcher on a dedicated goroutine. It polls the
// transport on a ticker and runs requests from other goroutines between polls,
// so the Dispatcher never needs locking.
type RadioActor struct {
	dispatcher *ant.Dispatcher
	config     *Config
	requests   chan request
	stopChan   chan struct{}
	done       chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once
	started    atomic.Bool
	// Atomic counters for metrics
	pollCycles      int64
	pollErrors      int64
	requestCount    int64
	lastPollLatency int64 // in nanoseconds
	// Adaptive polling state
	currentInterval int64 // in nanoseconds
	lastActivity    int64 // unix nanoseconds
}

// NewRadioActor creates an actor for dispatcher; a nil config uses defaults
func NewRadioActor(dispatcher *ant.Dispatcher, config *Config) *RadioActor {
	if config == nil {
		config = DefaultConfig()
	}
	return &RadioActor{
		dispatcher:      dispatcher,
		config:          config,
		requests:        make(chan request),
		stopChan:        make(chan struct{}),
		done:            make(chan struct{}),
		currentInterval: config.PollInterval.Nanoseconds(),
		lastActivity:    time.Now().UnixNano(),
	}
}

// Start launches the actor goroutine. It stops when ctx is cancelled or Stop
// is called.
func (ra *RadioActor) Start(ctx context.Context) error {
	ra.startOnce.Do(func() {
		ra.started.Store(true)
		go ra.loop(ctx)
	})
	return nil
}

func (ra *RadioActor) loop(ctx context.Context) {
	defer close(ra.done)

	ticker := time.NewTicker(ra.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ra.poll()
			ticker.Reset(time.Duration(atomic.LoadInt64(&ra.currentInterval)))
		case req := <-ra.requests:
			atomic.AddInt64(&ra.requestCount, 1)
			atomic.StoreInt64(&ra.lastActivity, time.Now().UnixNano())
			req.reply <- req.fn(ra.dispatcher)
		case <-ra.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (ra *RadioActor) poll() {
	start := time.Now()
	err := ra.dispatcher.Poll()
	atomic.AddInt64(&ra.pollCycles, 1)
	atomic.StoreInt64(&ra.lastPollLatency, time.Since(start).Nanoseconds())
	if err != nil {
		atomic.AddInt64(&ra.pollErrors, 1)
	}

	if done, _ := ra.dispatcher.InitResult(); !done || len(ra.dispatcher.Channels()) > 0 {
		atomic.StoreInt64(&ra.lastActivity, start.UnixNano())
	}
	ra.adjustPollInterval()
}

// adjustPollInterval slows polling down while nothing needs the radio
func (ra *RadioActor) adjustPollInterval() {
	idleFor := time.Duration(time.Now().UnixNano() - atomic.LoadInt64(&ra.lastActivity))
	if idleFor > ra.config.IdleAfter && ra.config.IdleInterval > ra.config.PollInterval {
		atomic.StoreInt64(&ra.currentInterval, ra.config.IdleInterval.Nanoseconds())
		return
	}
	atomic.StoreInt64(&ra.currentInterval, ra.config.PollInterval.Nanoseconds())
}

// Do runs fn on the actor goroutine and returns its error
func (ra *RadioActor) Do(ctx context.Context, fn func(d *ant.Dispatcher) error) error {
	if !ra.started.Load() {
		return ErrActorStopped
	}

	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case ra.requests <- req:
	case <-ra.done:
		return ErrActorStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// an accepted request finishes before Do returns, even if ctx ends
	select {
	case err := <-req.reply:
		return err
	case <-ra.done:
		return ErrActorStopped
	}
}

// Stop ends the actor goroutine and waits for it to exit
func (ra *RadioActor) Stop(ctx context.Context) error {
	if !ra.started.Load() {
		return nil
	}
	ra.stopOnce.Do(func() { close(ra.stopChan) })

	select {
	case <-ra.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Initialize runs the radio setup and waits for its outcome
func (ra *RadioActor) Initialize(ctx context.Context) error {
	if err := ra.Do(ctx, func(d *ant.Dispatcher) error { return d.Initialize() }); err != nil {
		return err
	}

	ticker := time.NewTicker(ra.config.PollInterval)
	defer ticker.Stop()

	for {
		var done bool
		var initErr error
		err := ra.Do(ctx, func(d *ant.Dispatcher) error {
			done, initErr = d.InitResult()
			return nil
		})
		if err != nil {
			return err
		}
		if done {
			return initErr
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SearchForSensor starts a sensor search on the actor goroutine
func (ra *RadioActor) SearchForSensor(ctx context.Context, t ant.SensorType, deviceNumber uint16,
	opts ...ant.SearchOption,
) error {
	return ra.Do(ctx, func(d *ant.Dispatcher) error {
		return d.SearchForSensor(t, deviceNumber, opts...)
	})
}

// CloseChannel closes the channel of sensor type t
func (ra *RadioActor) CloseChannel(ctx context.Context, t ant.SensorType) error {
	return ra.Do(ctx, func(d *ant.Dispatcher) error {
		return d.CloseChannel(t)
	})
}

// CloseAllChannels closes every channel
func (ra *RadioActor) CloseAllChannels(ctx context.Context) error {
	return ra.Do(ctx, func(d *ant.Dispatcher) error {
		d.CloseAllChannels()
		return nil
	})
}

// SetSlope forwards a grade to the smart trainer
func (ra *RadioActor) SetSlope(ctx context.Context, grade float64) error {
	return ra.Do(ctx, func(d *ant.Dispatcher) error {
		return d.SetSlope(grade)
	})
}

// SetTargetPower forwards an ERG target to the smart trainer
func (ra *RadioActor) SetTargetPower(ctx context.Context, watts float64) error {
	return ra.Do(ctx, func(d *ant.Dispatcher) error {
		return d.SetTargetPower(watts)
	})
}

// SetBasicResistance forwards a resistance level to the smart trainer
func (ra *RadioActor) SetBasicResistance(ctx context.Context, percent float64) error {
	return ra.Do(ctx, func(d *ant.Dispatcher) error {
		return d.SetBasicResistance(percent)
	})
}

// Channels returns a snapshot of the allocated channels
func (ra *RadioActor) Channels(ctx context.Context) ([]ChannelInfo, error) {
	var out []ChannelInfo
	err := ra.Do(ctx, func(d *ant.Dispatcher) error {
		for _, c := range d.Channels() {
			out = append(out, ChannelInfo{
				Number:       c.Number(),
				Sensor:       c.SensorType(),
				DeviceNumber: c.DeviceNumber(),
				State:        c.State(),
				PendingAcks:  c.PendingAcks(),
			})
		}
		return nil
	})
	return out, err
}

// GetMetrics returns current operational metrics
func (ra *RadioActor) GetMetrics() RadioMetrics {
	return RadioMetrics{
		PollCycles:      atomic.LoadInt64(&ra.pollCycles),
		PollErrors:      atomic.LoadInt64(&ra.pollErrors),
		Requests:        atomic.LoadInt64(&ra.requestCount),
		LastPollLatency: time.Duration(atomic.LoadInt64(&ra.lastPollLatency)),
	}
}

// GetCurrentPollInterval returns the current adaptive polling interval
func (ra *RadioActor) GetCurrentPollInterval() time.Duration {
	return time.Duration(atomic.LoadInt64(&ra.currentInterval))
}
