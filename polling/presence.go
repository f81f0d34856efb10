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
	"sync"
	"time"

	ant "github.com/ZaparooProject/go-ant"
)

// PresenceState describes whether a sensor is still delivering readings
type PresenceState int

const (
	// PresenceAbsent means no reading since the channel opened or released
	PresenceAbsent PresenceState = iota
	// PresenceActive means readings arrive within the stale timeout
	PresenceActive
	// PresenceStale means the channel is open but readings stopped
	PresenceStale
)

func (s PresenceState) String() string {
	switch s {
	case PresenceActive:
		return "active"
	case PresenceStale:
		return "stale"
	default:
		return "absent"
	}
}

// SensorPresence is the presence record of one sensor
type SensorPresence struct {
	LastSeen     time.Time
	staleTimer   *time.Timer
	Readings     int64
	State        PresenceState
	DeviceNumber uint16
}

// safeTimerStop stops a timer and drains its channel if it already fired
func safeTimerStop(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

func (p *SensorPresence) transitionToActive(r ant.Reading, timeout time.Duration, onTimeout func()) {
	p.State = PresenceActive
	p.LastSeen = r.At
	p.DeviceNumber = r.DeviceNumber
	p.Readings++
	safeTimerStop(p.staleTimer)
	p.staleTimer = time.AfterFunc(timeout, onTimeout)
}

func (p *SensorPresence) transitionToAbsent() {
	safeTimerStop(p.staleTimer)
	*p = SensorPresence{}
}

// PresenceTracker notices sensors that stop sending while their channel
// stays open, e.g. a heart rate strap taken off. Readings are fed from
// Dispatcher callbacks; stale notifications run on a timer goroutine.
type PresenceTracker struct {
	sensors map[ant.SensorType]*SensorPresence
	onStale func(sensor ant.SensorType, lastSeen time.Time)
	timeout time.Duration
	mu      sync.Mutex
}

// NewPresenceTracker creates a tracker; onStale may be nil
func NewPresenceTracker(timeout time.Duration, onStale func(ant.SensorType, time.Time)) *PresenceTracker {
	return &PresenceTracker{
		sensors: make(map[ant.SensorType]*SensorPresence),
		onStale: onStale,
		timeout: timeout,
	}
}

// Observe records a reading and restarts the sensor's stale timer
func (pt *PresenceTracker) Observe(r ant.Reading) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	p, ok := pt.sensors[r.Sensor]
	if !ok {
		p = &SensorPresence{}
		pt.sensors[r.Sensor] = p
	}
	p.transitionToActive(r, pt.timeout, func() { pt.markStale(r.Sensor, p) })
}

func (pt *PresenceTracker) markStale(sensor ant.SensorType, p *SensorPresence) {
	pt.mu.Lock()
	if pt.sensors[sensor] != p || p.State != PresenceActive {
		pt.mu.Unlock()
		return
	}
	p.State = PresenceStale
	lastSeen := p.LastSeen
	pt.mu.Unlock()

	if pt.onStale != nil {
		pt.onStale(sensor, lastSeen)
	}
}

// Forget drops a sensor, typically when its channel is released
func (pt *PresenceTracker) Forget(sensor ant.SensorType) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if p, ok := pt.sensors[sensor]; ok {
		p.transitionToAbsent()
		delete(pt.sensors, sensor)
	}
}

// Presence returns a copy of the sensor's record
func (pt *PresenceTracker) Presence(sensor ant.SensorType) SensorPresence {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	p, ok := pt.sensors[sensor]
	if !ok {
		return SensorPresence{}
	}
	out := *p
	out.staleTimer = nil
	return out
}

// Stop cancels all pending stale timers
func (pt *PresenceTracker) Stop() {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	for sensor, p := range pt.sensors {
		p.transitionToAbsent()
		delete(pt.sensors, sensor)
	}
}
