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

package testing

import "encoding/binary"

// HeartRatePage builds a heart rate data page with the beat event time in
// 1/1024 s and the computed heart rate
func HeartRatePage(eventTime uint16, count, bpm byte) [8]byte {
	page := [8]byte{0x04, 0xFF, 0xFF, 0xFF}
	binary.LittleEndian.PutUint16(page[4:6], eventTime)
	page[6] = count
	page[7] = bpm
	return page
}

// PowerPage builds a standard power-only page
func PowerPage(eventCount, cadence byte, accumulated, instant uint16) [8]byte {
	page := [8]byte{0x10, eventCount, 0xFF, cadence}
	binary.LittleEndian.PutUint16(page[4:6], accumulated)
	binary.LittleEndian.PutUint16(page[6:8], instant)
	return page
}

// RevolutionPage builds a standalone cadence or speed page
func RevolutionPage(eventTime, revolutions uint16) [8]byte {
	page := [8]byte{0x00, 0xFF, 0xFF, 0xFF}
	binary.LittleEndian.PutUint16(page[4:6], eventTime)
	binary.LittleEndian.PutUint16(page[6:8], revolutions)
	return page
}

// SpeedCadencePage builds a combined speed and cadence page
func SpeedCadencePage(crankTime, crankRevs, wheelTime, wheelRevs uint16) [8]byte {
	var page [8]byte
	binary.LittleEndian.PutUint16(page[0:2], crankTime)
	binary.LittleEndian.PutUint16(page[2:4], crankRevs)
	binary.LittleEndian.PutUint16(page[4:6], wheelTime)
	binary.LittleEndian.PutUint16(page[6:8], wheelRevs)
	return page
}

// TrainerDataPage builds a specific trainer data page, power is 12 bits
func TrainerDataPage(eventCount, cadence byte, accumulated, power uint16) [8]byte {
	page := [8]byte{0x19, eventCount, cadence}
	binary.LittleEndian.PutUint16(page[3:5], accumulated)
	page[5] = byte(power)
	page[6] = byte(power>>8) & 0x0F
	page[7] = 0x30
	return page
}

// GeneralFEPage builds a general fitness equipment page with speed in
// 0.001 m/s
func GeneralFEPage(elapsed byte, speed uint16) [8]byte {
	page := [8]byte{0x10, 25, elapsed, 0}
	binary.LittleEndian.PutUint16(page[4:6], speed)
	page[6] = 0xFF
	page[7] = 0x24
	return page
}
