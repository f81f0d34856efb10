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

import "time"

// Config controls how often a RadioActor polls its transport
type Config struct {
	// PollInterval is the polling period while channels are active
	PollInterval time.Duration
	// IdleInterval is the polling period once no channel has been active
	// for IdleAfter
	IdleInterval time.Duration
	// IdleAfter is how long the radio must be idle before slowing down
	IdleAfter time.Duration
	// StaleAfter is how long a sensor may go without a reading before a
	// PresenceTracker reports it stale
	StaleAfter time.Duration
}

// DefaultConfig returns polling defaults suited to ANT message rates of 4 Hz
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 10 * time.Millisecond,
		IdleInterval: 100 * time.Millisecond,
		IdleAfter:    5 * time.Second,
		StaleAfter:   5 * time.Second,
	}
}
