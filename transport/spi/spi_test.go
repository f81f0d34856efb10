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

package spi

import (
	"errors"
	"testing"
	"time"

	ant "github.com/ZaparooProject/go-ant"
	"github.com/ZaparooProject/go-ant/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

type fakeBus struct {
	err     error
	pending []byte
	written [][]byte
}

func (b *fakeBus) Tx(w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	if w != nil {
		b.written = append(b.written, append([]byte(nil), w...))
	}
	n := copy(r, b.pending)
	b.pending = b.pending[n:]
	return nil
}

type fakePin struct {
	outs  []gpio.Level
	level gpio.Level
}

func (p *fakePin) Read() gpio.Level { return p.level }

func (p *fakePin) Out(l gpio.Level) error {
	p.outs = append(p.outs, l)
	return nil
}

func newFake(pending []byte, readyLevel gpio.Level) (*Transport, *fakeBus, *fakePin) {
	b := &fakeBus{pending: pending}
	req := &fakePin{}
	t := newTransport("SPI0.0", b, &fakePin{level: readyLevel}, req)
	return t, b, req
}

func TestReadBytes_NormalizesSync(t *testing.T) {
	t.Parallel()

	// Startup message as sent by the module on the synchronous port
	sent := frame.Build(0x6F, []byte{0x20})
	sent[0] = frame.SyncRead
	sent[len(sent)-1] ^= 0x01

	tr, _, _ := newFake(sent, gpio.Low)

	got, err := tr.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, frame.Build(0x6F, []byte{0x20}), got)
	assert.True(t, frame.ValidateChecksum(got))
}

func TestReadBytes_IdleWhenNotSignalling(t *testing.T) {
	t.Parallel()

	tr, _, _ := newFake([]byte{0xA5, 0x01}, gpio.High)

	got, err := tr.ReadBytes()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadBytes_Noise(t *testing.T) {
	t.Parallel()

	tr, _, _ := newFake([]byte{0x13, 0x37}, gpio.Low)

	got, err := tr.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x13}, got)
}

func TestReadBytes_BusError(t *testing.T) {
	t.Parallel()

	tr, b, _ := newFake(nil, gpio.Low)
	b.err = errors.New("bus fault")

	_, err := tr.ReadBytes()
	require.ErrorIs(t, err, ant.ErrTransportRead)
	assert.True(t, ant.IsRetryable(err))
}

func TestWriteBytes(t *testing.T) {
	t.Parallel()

	tr, b, req := newFake(nil, gpio.Low)
	reset := frame.Build(0x4A, []byte{0x00})

	n, err := tr.WriteBytes(reset)
	require.NoError(t, err)
	assert.Equal(t, len(reset), n)
	require.Len(t, b.written, 1)
	assert.Equal(t, reset, b.written[0])
	assert.Equal(t, []gpio.Level{gpio.Low, gpio.High}, req.outs)
}

func TestWriteBytes_TimesOut(t *testing.T) {
	t.Parallel()

	tr, b, _ := newFake(nil, gpio.High)
	tr.SetTimeout(5 * time.Millisecond)

	_, err := tr.WriteBytes([]byte{0xA4})
	require.ErrorIs(t, err, ant.ErrTransportTimeout)
	assert.Empty(t, b.written)
}

func TestClose(t *testing.T) {
	t.Parallel()

	tr, _, _ := newFake(nil, gpio.Low)
	closed := 0
	tr.closer = func() error {
		closed++
		return nil
	}

	assert.Equal(t, ant.TransportSPI, tr.Type())
	assert.Zero(t, tr.NumberOfChannels())
	assert.True(t, tr.IsReady())

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.Equal(t, 1, closed)
	assert.False(t, tr.IsReady())

	_, err := tr.ReadBytes()
	require.ErrorIs(t, err, ant.ErrTransportClosed)
	_, err = tr.WriteBytes([]byte{0xA4})
	require.ErrorIs(t, err, ant.ErrTransportClosed)
}
