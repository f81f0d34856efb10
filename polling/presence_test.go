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
	"testing"
	"time"

	ant "github.com/ZaparooProject/go-ant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heartRate(device uint16) ant.Reading {
	return ant.Reading{
		At:           time.Now(),
		Kind:         ant.ValueHeartRate,
		Sensor:       ant.SensorHeartRate,
		Value:        72,
		DeviceNumber: device,
	}
}

func TestPresenceTracker_GoesStale(t *testing.T) {
	t.Parallel()

	stale := make(chan ant.SensorType, 1)
	pt := NewPresenceTracker(30*time.Millisecond, func(s ant.SensorType, _ time.Time) { stale <- s })
	defer pt.Stop()

	pt.Observe(heartRate(1234))
	p := pt.Presence(ant.SensorHeartRate)
	assert.Equal(t, PresenceActive, p.State)
	assert.Equal(t, uint16(1234), p.DeviceNumber)
	assert.Equal(t, int64(1), p.Readings)

	select {
	case s := <-stale:
		assert.Equal(t, ant.SensorHeartRate, s)
	case <-time.After(time.Second):
		require.FailNow(t, "stale callback not called")
	}
	assert.Equal(t, PresenceStale, pt.Presence(ant.SensorHeartRate).State)

	pt.Observe(heartRate(1234))
	assert.Equal(t, PresenceActive, pt.Presence(ant.SensorHeartRate).State)
	assert.Equal(t, int64(2), pt.Presence(ant.SensorHeartRate).Readings)
}

func TestPresenceTracker_ReadingsKeepActive(t *testing.T) {
	t.Parallel()

	pt := NewPresenceTracker(200*time.Millisecond, func(ant.SensorType, time.Time) {
		t.Error("sensor reported stale while sending")
	})
	defer pt.Stop()

	for i := 0; i < 5; i++ {
		pt.Observe(heartRate(1))
		time.Sleep(20 * time.Millisecond)
	}
	assert.Equal(t, PresenceActive, pt.Presence(ant.SensorHeartRate).State)
}

func TestPresenceTracker_Forget(t *testing.T) {
	t.Parallel()

	pt := NewPresenceTracker(20*time.Millisecond, func(ant.SensorType, time.Time) {
		t.Error("forgotten sensor reported stale")
	})

	pt.Observe(heartRate(1))
	pt.Forget(ant.SensorHeartRate)
	pt.Forget(ant.SensorPower)

	assert.Equal(t, PresenceAbsent, pt.Presence(ant.SensorHeartRate).State)
	time.Sleep(60 * time.Millisecond)
}

func TestPresenceState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "absent", PresenceAbsent.String())
	assert.Equal(t, "active", PresenceActive.String())
	assert.Equal(t, "stale", PresenceStale.String())
}
