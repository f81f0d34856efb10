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

// Package spi provides the synchronous serial transport for ANT modules
// wired directly to a host bus, such as the nRF24AP2 on a Raspberry Pi.
package spi

import (
	"fmt"
	"sync"
	"time"

	ant "github.com/ZaparooProject/go-ant"
	"github.com/ZaparooProject/go-ant/internal/frame"
	"github.com/ZaparooProject/go-ant/internal/transport"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	maxClockFreq   = 500 * physic.KiloHertz
	defaultTimeout = 50 * time.Millisecond
)

type bus interface {
	Tx(w, r []byte) error
}

type inputPin interface {
	Read() gpio.Level
}

type outputPin interface {
	Out(l gpio.Level) error
}

// Transport implements ant.Transport over SPI with two handshake lines.
// The module pulls the ready line low when it has a message or can accept
// one, and the host pulls the request line low to start a transfer.
type Transport struct {
	conn     bus
	ready    inputPin
	request  outputPin
	closer   func() error
	busName  string
	timeout  time.Duration
	channels int
	mu       sync.Mutex
	closed   bool
}

// New opens busName and the two handshake pins by their GPIO names
func New(busName, readyPin, requestPin string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI bus %s: %w", busName, err)
	}

	conn, err := port.Connect(maxClockFreq, spi.Mode3, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure SPI bus %s: %w", busName, err)
	}

	ready := gpioreg.ByName(readyPin)
	request := gpioreg.ByName(requestPin)
	if ready == nil || request == nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: unknown handshake pin %q or %q", ant.ErrInvalidParameter, readyPin, requestPin)
	}
	if err := ready.In(gpio.PullUp, gpio.NoEdge); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure %s: %w", readyPin, err)
	}
	if err := request.Out(gpio.High); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure %s: %w", requestPin, err)
	}

	t := newTransport(busName, conn, ready, request)
	t.closer = port.Close
	return t, nil
}

func newTransport(busName string, conn bus, ready inputPin, request outputPin) *Transport {
	return &Transport{
		conn:    conn,
		ready:   ready,
		request: request,
		busName: busName,
		timeout: defaultTimeout,
	}
}

// ReadBytes reads one message if the module is signalling one
func (t *Transport) ReadBytes() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ant.ErrTransportClosed
	}
	if t.ready.Read() == gpio.High {
		return nil, nil
	}

	header := make([]byte, 2)
	if err := t.transfer(nil, header); err != nil {
		return nil, err
	}
	if header[0] != frame.SyncRead && header[0] != frame.Sync {
		// Not a frame start. The assembler discards it as noise.
		return header[:1], nil
	}

	rest := make([]byte, int(header[1])+2)
	if err := t.transfer(nil, rest); err != nil {
		return nil, err
	}
	return normalizeSync(append(header, rest...)), nil
}

// normalizeSync rewrites the module sync byte to the one the assembler
// expects. Sync is covered by the checksum so its low bit flips too.
func normalizeSync(raw []byte) []byte {
	if len(raw) == 0 || raw[0] != frame.SyncRead {
		return raw
	}
	raw[0] = frame.Sync
	raw[len(raw)-1] ^= frame.SyncRead ^ frame.Sync
	return raw
}

// WriteBytes waits for the module to accept a message and sends data
func (t *Transport) WriteBytes(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ant.ErrTransportClosed
	}

	if err := t.request.Out(gpio.Low); err != nil {
		return 0, ant.NewTransportError("write", t.busName, err, ant.ErrorTypeTransient)
	}
	defer func() { _ = t.request.Out(gpio.High) }()

	_, err := transport.TimeoutRetry(t.timeout, t.busName, func() (struct{}, bool, error) {
		return struct{}{}, t.ready.Read() == gpio.High, nil
	})
	if err != nil {
		return 0, err
	}

	if err := t.conn.Tx(data, nil); err != nil {
		return 0, ant.NewTransportError("write", t.busName,
			fmt.Errorf("%w: %w", ant.ErrTransportWrite, err), ant.ErrorTypeTransient)
	}
	return len(data), nil
}

func (t *Transport) transfer(w, r []byte) error {
	if err := t.conn.Tx(w, r); err != nil {
		return ant.NewTransportError("read", t.busName,
			fmt.Errorf("%w: %w", ant.ErrTransportRead, err), ant.ErrorTypeTransient)
	}
	return nil
}

// NumberOfChannels returns 0, the Dispatcher learns the count from the
// capabilities message
func (t *Transport) NumberOfChannels() int {
	return t.channels
}

// IsReady returns true while the bus is open
func (t *Transport) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// Close releases the bus
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	_ = t.request.Out(gpio.High)
	if t.closer != nil {
		if err := t.closer(); err != nil {
			return fmt.Errorf("failed to close SPI bus %s: %w", t.busName, err)
		}
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() ant.TransportType {
	return ant.TransportSPI
}

// SetTimeout sets how long a write waits for the module
func (t *Transport) SetTimeout(timeout time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
}
