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

package frame

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var openChannelZero = []byte{0xA4, 0x01, 0x4B, 0x00, 0xEE}

func concatFrames() []byte {
	var stream []byte
	stream = append(stream, Build(0x4B, []byte{0x00})...)
	stream = append(stream, Build(0x40, []byte{0x00, 0x42, 0x00})...)
	stream = append(stream, Build(0x4E, []byte{0x01, 0x04, 0xFF, 0xFF, 0xA4, 0x10, 0x22, 0x33, 0x48})...)
	stream = append(stream, Build(0x51, []byte{0x01, 0x34, 0x12, 0x78, 0x01})...)
	stream = append(stream, Build(0x6F, []byte{0x20})...)
	return stream
}

func TestAssembler_SingleFrame(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	frames := a.Submit(openChannelZero)

	require.Len(t, frames, 1)
	assert.Equal(t, byte(0x4B), frames[0].ID)
	assert.Equal(t, []byte{0x00}, frames[0].Payload)
	assert.Equal(t, openChannelZero, frames[0].Raw)
	assert.Zero(t, a.Buffered())
}

func TestAssembler_SplitFrame(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	assert.Empty(t, a.Submit(openChannelZero[:2]))
	assert.Equal(t, 2, a.Buffered())

	frames := a.Submit(openChannelZero[2:])
	require.Len(t, frames, 1)
	assert.Equal(t, byte(0x4B), frames[0].ID)
	assert.Equal(t, []byte{0x00}, frames[0].Payload)
}

func TestAssembler_RejectsBadChecksum(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	assert.Empty(t, a.Submit([]byte{0xA4, 0x01, 0x4B, 0x00, 0xEF}))
	assert.Equal(t, uint64(1), a.Dropped())
	assert.Zero(t, a.Buffered())
}

func TestAssembler_SingleBitFlips(t *testing.T) {
	t.Parallel()

	valid := Build(0x4E, []byte{0x00, 0x04, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77})
	for i := HeaderLength; i < len(valid)-1; i++ {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), valid...)
			corrupted[i] ^= 1 << bit
			a := NewAssembler()
			assert.Empty(t, a.Submit(corrupted), "byte %d bit %d", i, bit)
		}
	}
}

func TestAssembler_ResyncAfterNoise(t *testing.T) {
	t.Parallel()

	stream := []byte{0x00, 0x13, 0xA4, 0x01, 0x99, 0x00, 0x00}
	stream = append(stream, openChannelZero...)

	a := NewAssembler()
	frames := a.Submit(stream)
	require.Len(t, frames, 1)
	assert.Equal(t, byte(0x4B), frames[0].ID)
	assert.Equal(t, uint64(1), a.Dropped())
	assert.Equal(t, uint64(6), a.Noise())
}

func TestAssembler_ShortLengthStalls(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	assert.Empty(t, a.Submit([]byte{0xA4, 0x03, 0x40, 0x00}))
	assert.Equal(t, 4, a.Buffered())

	frames := a.Submit([]byte{0x46, 0x00, 0xA4 ^ 0x03 ^ 0x40 ^ 0x46})
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x00, 0x46, 0x00}, frames[0].Payload)
}

func TestAssembler_OversizedLengthIsNoise(t *testing.T) {
	t.Parallel()

	stream := append([]byte{0xA4, 0xF0}, openChannelZero...)

	a := NewAssembler()
	frames := a.Submit(stream)
	require.Len(t, frames, 1)
	assert.Equal(t, uint64(1), a.Dropped())
}

func TestAssembler_ArbitraryChunking(t *testing.T) {
	t.Parallel()

	stream := concatFrames()
	whole := NewAssembler().Submit(stream)
	require.Len(t, whole, 5)

	t.Run("OneByteChunks", func(t *testing.T) {
		t.Parallel()
		a := NewAssembler()
		var got []Frame
		for _, b := range stream {
			got = append(got, a.Submit([]byte{b})...)
		}
		assert.Equal(t, whole, got)
	})

	t.Run("RandomSplits", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewSource(42))
		for iteration := 0; iteration < 200; iteration++ {
			a := NewAssembler()
			var got []Frame
			for pos := 0; pos < len(stream); {
				n := 1 + rng.Intn(len(stream)-pos)
				got = append(got, a.Submit(stream[pos:pos+n])...)
				pos += n
			}
			require.Equal(t, whole, got, "iteration %d", iteration)
		}
	})
}

func TestAssembler_Reset(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	a.Submit(openChannelZero[:3])
	a.Reset()
	assert.Zero(t, a.Buffered())
	assert.Empty(t, a.Submit(openChannelZero[3:]))
}
