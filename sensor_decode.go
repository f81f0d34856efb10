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

import "encoding/binary"

// Data pages decoded by the stack
const (
	pagePowerOnly        = 0x10
	pageGeneralFE        = 0x10
	pageTrainerData      = 0x19
	invalidCadence       = 0xFF
	invalidTrainerPower  = 0x0FFF
	invalidTrainerSpeed  = 0xFFFF
	revolutionTimeUnits  = 1024 // event time resolution, 1/1024 s
	trainerSpeedUnitsSec = 0.001
)

type emitFunc func(kind ValueKind, value float64)

// payloadDecoder interprets the 8-byte data page of one sensor profile
type payloadDecoder interface {
	decode(data [8]byte, emit emitFunc)
}

// newDecoder returns the payload decoder for a sensor type
func newDecoder(t SensorType) payloadDecoder {
	threshold := sensorProfiles[t].nullThreshold

	switch t {
	case SensorHeartRate:
		return &heartRateDecoder{threshold: threshold}
	case SensorPower:
		return &powerDecoder{threshold: threshold}
	case SensorCadence:
		return &revolutionDecoder{kind: ValueCadence, threshold: threshold}
	case SensorSpeed:
		return &revolutionDecoder{kind: ValueWheelSpeed, threshold: threshold}
	case SensorSpeedAndCadence:
		return &speedCadenceDecoder{threshold: threshold}
	case SensorSmartTrainer:
		return &trainerDecoder{threshold: threshold}
	case SensorUnknown:
		return nil
	default:
		return nil
	}
}

// heartRateDecoder emits the computed heart rate whenever the beat event time
// advances
type heartRateDecoder struct {
	threshold int
	unchanged int
	lastTime  uint16
	primed    bool
}

func (h *heartRateDecoder) decode(data [8]byte, emit emitFunc) {
	eventTime := binary.LittleEndian.Uint16(data[4:6])

	if h.primed && eventTime == h.lastTime {
		h.unchanged++
		if h.unchanged == h.threshold {
			emit(ValueHeartRate, 0)
		}
		return
	}

	h.primed = true
	h.lastTime = eventTime
	h.unchanged = 0
	emit(ValueHeartRate, float64(data[7]))
}

// powerDecoder handles the standard power-only page. Power is averaged over
// the events elapsed since the previous page so missed pages do not skew it.
type powerDecoder struct {
	threshold int
	unchanged int
	lastAccum uint16
	lastCount uint8
	primed    bool
}

func (p *powerDecoder) decode(data [8]byte, emit emitFunc) {
	if data[0] != pagePowerOnly {
		return
	}

	count := data[1]
	cadence := data[3]
	accum := binary.LittleEndian.Uint16(data[4:6])
	instant := binary.LittleEndian.Uint16(data[6:8])

	if !p.primed {
		p.primed = true
		p.lastCount = count
		p.lastAccum = accum
		emit(ValuePower, float64(instant))
		if cadence != invalidCadence {
			emit(ValueCadence, float64(cadence))
		}
		return
	}

	events := count - p.lastCount
	if events == 0 {
		p.unchanged++
		if p.unchanged == p.threshold {
			emit(ValuePower, 0)
			emit(ValueCadence, 0)
		}
		return
	}

	p.unchanged = 0
	power := float64(accum-p.lastAccum) / float64(events)
	p.lastCount = count
	p.lastAccum = accum

	emit(ValuePower, power)
	if cadence != invalidCadence {
		emit(ValueCadence, float64(cadence))
	}
}

// revolutionCounter converts cumulative revolution counts and event times into
// revolutions per minute
type revolutionCounter struct {
	unchanged int
	lastTime  uint16
	lastRevs  uint16
	primed    bool
}

func (r *revolutionCounter) update(eventTime, revs uint16, threshold int) (float64, bool) {
	if !r.primed {
		r.primed = true
		r.lastTime = eventTime
		r.lastRevs = revs
		return 0, false
	}

	elapsed := eventTime - r.lastTime
	if elapsed == 0 {
		r.unchanged++
		return 0, r.unchanged == threshold
	}

	turns := revs - r.lastRevs
	r.unchanged = 0
	r.lastTime = eventTime
	r.lastRevs = revs
	return revolutionTimeUnits * 60 * float64(turns) / float64(elapsed), true
}

// revolutionDecoder handles the standalone cadence and speed profiles, which
// carry event time in bytes 4-5 and revolutions in bytes 6-7 on every page
type revolutionDecoder struct {
	counter   revolutionCounter
	threshold int
	kind      ValueKind
}

func (r *revolutionDecoder) decode(data [8]byte, emit emitFunc) {
	rpm, ok := r.counter.update(
		binary.LittleEndian.Uint16(data[4:6]),
		binary.LittleEndian.Uint16(data[6:8]),
		r.threshold,
	)
	if ok {
		emit(r.kind, rpm)
	}
}

// speedCadenceDecoder handles the combined profile, which has no page byte
type speedCadenceDecoder struct {
	crank     revolutionCounter
	wheel     revolutionCounter
	threshold int
}

func (s *speedCadenceDecoder) decode(data [8]byte, emit emitFunc) {
	if rpm, ok := s.crank.update(
		binary.LittleEndian.Uint16(data[0:2]),
		binary.LittleEndian.Uint16(data[2:4]),
		s.threshold,
	); ok {
		emit(ValueCadence, rpm)
	}

	if rpm, ok := s.wheel.update(
		binary.LittleEndian.Uint16(data[4:6]),
		binary.LittleEndian.Uint16(data[6:8]),
		s.threshold,
	); ok {
		emit(ValueWheelSpeed, rpm)
	}
}

// trainerDecoder handles the fitness equipment trainer and general pages
type trainerDecoder struct {
	threshold     int
	unchanged     int
	lastCount     uint8
	lastElapsed   uint8
	primed        bool
	elapsedPrimed bool
}

func (f *trainerDecoder) decode(data [8]byte, emit emitFunc) {
	switch data[0] {
	case pageTrainerData:
		f.decodeTrainerData(data, emit)
	case pageGeneralFE:
		f.decodeGeneral(data, emit)
	default:
	}
}

func (f *trainerDecoder) decodeTrainerData(data [8]byte, emit emitFunc) {
	count := data[1]
	if f.primed && count == f.lastCount {
		f.unchanged++
		if f.unchanged == f.threshold {
			emit(ValuePower, 0)
			emit(ValueCadence, 0)
		}
		return
	}

	f.primed = true
	f.lastCount = count
	f.unchanged = 0

	power := uint16(data[5]) | uint16(data[6]&0x0F)<<8
	if power != invalidTrainerPower {
		emit(ValuePower, float64(power))
	}
	if data[2] != invalidCadence {
		emit(ValueCadence, float64(data[2]))
	}
}

func (f *trainerDecoder) decodeGeneral(data [8]byte, emit emitFunc) {
	elapsed := data[2]
	if f.elapsedPrimed && elapsed == f.lastElapsed {
		return
	}
	f.elapsedPrimed = true
	f.lastElapsed = elapsed

	speed := binary.LittleEndian.Uint16(data[4:6])
	if speed != invalidTrainerSpeed {
		emit(ValueSpeed, float64(speed)*trainerSpeedUnitsSec)
	}
}
