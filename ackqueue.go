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

import "time"

// ackQueue holds acknowledged data pages waiting to be sent on one channel.
// Only the head entry is ever on the air; it stays queued until the radio
// reports the transfer completed.
type ackQueue struct {
	deadline time.Time
	pages    [][8]byte
	capacity int
	inFlight bool
}

func newAckQueue(capacity int) *ackQueue {
	if capacity < 1 {
		capacity = DefaultAckQueueCapacity
	}
	return &ackQueue{
		pages:    make([][8]byte, 0, capacity),
		capacity: capacity,
	}
}

// push appends a page, dropping the oldest one when full. It reports whether
// a page was dropped.
func (q *ackQueue) push(page [8]byte) bool {
	dropped := false
	if len(q.pages) >= q.capacity {
		q.pages = q.pages[1:]
		// the dropped head may have been the in-flight transfer
		q.inFlight = false
		q.deadline = time.Time{}
		dropped = true
	}
	q.pages = append(q.pages, page)
	return dropped
}

func (q *ackQueue) len() int {
	return len(q.pages)
}

func (q *ackQueue) head() ([8]byte, bool) {
	if len(q.pages) == 0 {
		return [8]byte{}, false
	}
	return q.pages[0], true
}

// markSent records the head as in flight until deadline
func (q *ackQueue) markSent(deadline time.Time) {
	q.inFlight = true
	q.deadline = deadline
}

// completed removes the confirmed head
func (q *ackQueue) completed() {
	if !q.inFlight {
		return
	}
	if len(q.pages) > 0 {
		q.pages = q.pages[1:]
	}
	q.inFlight = false
	q.deadline = time.Time{}
}

// failed keeps the head queued for a resend
func (q *ackQueue) failed() {
	q.inFlight = false
	q.deadline = time.Time{}
}

// expired reports whether the in-flight transfer has outlived its deadline
func (q *ackQueue) expired(now time.Time) bool {
	return q.inFlight && !now.Before(q.deadline)
}

func (q *ackQueue) clear() {
	q.pages = q.pages[:0]
	q.inFlight = false
	q.deadline = time.Time{}
}
