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
	"fmt"
)

// Fitness equipment control pages
const (
	pageBasicResistance = 0x30
	pageTargetPower     = 0x31
	pageTrackResistance = 0x33

	maxGradePercent    = 200.0
	maxTargetPowerWatt = 4000.0
)

// trackResistancePage encodes a simulated grade in percent. Grade is sent in
// 0.01% units offset by -200%; rolling resistance is left at the trainer default.
func trackResistancePage(grade float64) ([8]byte, error) {
	if grade < -maxGradePercent || grade > maxGradePercent {
		return [8]byte{}, fmt.Errorf("%w: grade %.2f%% out of range", ErrInvalidParameter, grade)
	}

	page := [8]byte{pageTrackResistance, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0xFF}
	raw := uint16((grade+maxGradePercent)*100 + 0.5)
	binary.LittleEndian.PutUint16(page[5:7], raw)
	return page, nil
}

// targetPowerPage encodes an ERG mode target in 0.25 W units
func targetPowerPage(watts float64) ([8]byte, error) {
	if watts < 0 || watts > maxTargetPowerWatt {
		return [8]byte{}, fmt.Errorf("%w: target power %.0f W out of range", ErrInvalidParameter, watts)
	}

	page := [8]byte{pageTargetPower, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0}
	binary.LittleEndian.PutUint16(page[6:8], uint16(watts*4+0.5))
	return page, nil
}

// basicResistancePage encodes a resistance in 0.5% units
func basicResistancePage(percent float64) ([8]byte, error) {
	if percent < 0 || percent > 100 {
		return [8]byte{}, fmt.Errorf("%w: resistance %.1f%% out of range", ErrInvalidParameter, percent)
	}

	page := [8]byte{pageBasicResistance, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0}
	page[7] = uint8(percent*2 + 0.5)
	return page, nil
}
