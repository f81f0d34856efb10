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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAckQueue_DropsOldestWhenFull(t *testing.T) {
	t.Parallel()

	q := newAckQueue(3)
	for i := 0; i < 3; i++ {
		assert.False(t, q.push([8]byte{byte(i)}))
	}
	assert.True(t, q.push([8]byte{3}))
	assert.Equal(t, 3, q.len())

	head, ok := q.head()
	assert.True(t, ok)
	assert.Equal(t, byte(1), head[0])
}

func TestAckQueue_DroppingInFlightHeadClearsTransfer(t *testing.T) {
	t.Parallel()

	q := newAckQueue(1)
	q.push([8]byte{1})
	q.markSent(testEpoch.Add(time.Second))

	q.push([8]byte{2})
	assert.False(t, q.inFlight)
	assert.False(t, q.expired(testEpoch.Add(time.Hour)))
}

func TestAckQueue_CompleteFailExpire(t *testing.T) {
	t.Parallel()

	q := newAckQueue(4)
	q.push([8]byte{1})
	q.push([8]byte{2})

	q.completed()
	assert.Equal(t, 2, q.len(), "completion without a transfer is ignored")

	q.markSent(testEpoch.Add(time.Second))
	assert.False(t, q.expired(testEpoch))
	assert.True(t, q.expired(testEpoch.Add(time.Second)))

	q.failed()
	assert.Equal(t, 2, q.len())
	assert.False(t, q.inFlight)

	q.markSent(testEpoch)
	q.completed()
	head, _ := q.head()
	assert.Equal(t, byte(2), head[0])

	q.clear()
	assert.Equal(t, 0, q.len())
	_, ok := q.head()
	assert.False(t, ok)
}

func TestAckQueue_DefaultCapacity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultAckQueueCapacity, newAckQueue(0).capacity)
}
