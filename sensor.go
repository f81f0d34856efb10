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
	"strings"
	"time"
)

// SensorType is the closed set of sensor profiles the stack can pair with
type SensorType int

// Sensor types
const (
	SensorUnknown SensorType = iota
	SensorHeartRate
	SensorPower
	SensorCadence
	SensorSpeed
	SensorSpeedAndCadence
	SensorSmartTrainer
)

// sensorProfile holds the ANT+ device profile constants for a sensor type
type sensorProfile struct {
	name          string
	period        uint16 // 1/32768 s
	deviceType    uint8
	nullThreshold int // unchanged messages before a zero reading
}

var sensorProfiles = map[SensorType]sensorProfile{
	SensorHeartRate:       {name: "heart-rate", deviceType: 120, period: 8070, nullThreshold: 12},
	SensorPower:           {name: "power", deviceType: 11, period: 8182, nullThreshold: 6},
	SensorCadence:         {name: "cadence", deviceType: 122, period: 8102, nullThreshold: 12},
	SensorSpeed:           {name: "speed", deviceType: 123, period: 8118, nullThreshold: 12},
	SensorSpeedAndCadence: {name: "speed-cadence", deviceType: 121, period: 8086, nullThreshold: 12},
	SensorSmartTrainer:    {name: "smart-trainer", deviceType: 17, period: 8192, nullThreshold: 6},
}

// SensorTypes returns every valid sensor type
func SensorTypes() []SensorType {
	return []SensorType{
		SensorHeartRate, SensorPower, SensorCadence, SensorSpeed, SensorSpeedAndCadence, SensorSmartTrainer,
	}
}

// Valid reports whether t is a known sensor type
func (t SensorType) Valid() bool {
	_, ok := sensorProfiles[t]
	return ok
}

// DeviceType returns the ANT+ device type id of the profile
func (t SensorType) DeviceType() uint8 {
	return sensorProfiles[t].deviceType
}

// Period returns the channel period of the profile in 1/32768 s units
func (t SensorType) Period() uint16 {
	return sensorProfiles[t].period
}

func (t SensorType) String() string {
	if p, ok := sensorProfiles[t]; ok {
		return p.name
	}
	return "unknown"
}

// ParseSensorType converts a sensor name as returned by String
func ParseSensorType(name string) (SensorType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range SensorTypes() {
		if t.String() == name {
			return t, nil
		}
	}
	return SensorUnknown, fmt.Errorf("%w: %q", ErrInvalidSensorType, name)
}

// ValueKind identifies the quantity carried by a Reading
type ValueKind int

// Value kinds
const (
	ValueHeartRate  ValueKind = iota + 1 // beats per minute
	ValuePower                           // watts
	ValueCadence                         // crank revolutions per minute
	ValueWheelSpeed                      // wheel revolutions per minute
	ValueSpeed                           // meters per second
)

func (k ValueKind) String() string {
	switch k {
	case ValueHeartRate:
		return "heart-rate"
	case ValuePower:
		return "power"
	case ValueCadence:
		return "cadence"
	case ValueWheelSpeed:
		return "wheel-speed"
	case ValueSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// Unit returns the unit symbol of the value kind
func (k ValueKind) Unit() string {
	switch k {
	case ValueHeartRate:
		return "bpm"
	case ValuePower:
		return "W"
	case ValueCadence, ValueWheelSpeed:
		return "rpm"
	case ValueSpeed:
		return "m/s"
	default:
		return ""
	}
}

// Reading is a decoded sensor value
type Reading struct {
	At           time.Time
	Kind         ValueKind
	Sensor       SensorType
	Value        float64
	Channel      int
	DeviceNumber uint16
}

func (r Reading) String() string {
	return fmt.Sprintf("%s %s=%.1f%s (device %d)", r.Sensor, r.Kind, r.Value, r.Kind.Unit(), r.DeviceNumber)
}
