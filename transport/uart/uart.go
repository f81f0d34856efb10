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

// Package uart provides the serial transport for USB ANT sticks
package uart

import (
	"fmt"
	"sync"
	"time"

	ant "github.com/ZaparooProject/go-ant"
	"github.com/ZaparooProject/go-ant/internal/transport"
	"go.bug.st/serial"
)

// Baud rates of the common ANT USB sticks
const (
	BaudUSB2 = 57600  // ANTUSB2, product 0x1008
	BaudUSBm = 115200 // ANTUSB-m, product 0x1009
)

const (
	defaultReadTimeout = 5 * time.Millisecond
	defaultChannels    = 8
	readChunk          = 256
	maxWriteRetries    = 3
)

// BaudForProduct returns the baud rate for a USB product id in hex
func BaudForProduct(pid string) int {
	if pid == "1009" {
		return BaudUSBm
	}
	return BaudUSB2
}

// Option configures a Transport
type Option func(*Transport)

// WithBaudRate overrides the serial speed
func WithBaudRate(baud int) Option {
	return func(t *Transport) {
		t.baudRate = baud
	}
}

// WithChannels sets the channel count reported to the Dispatcher
func WithChannels(n int) Option {
	return func(t *Transport) {
		t.channels = n
	}
}

// WithReadTimeout sets how long a read waits for the first byte
func WithReadTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		t.readTimeout = timeout
	}
}

// Transport implements ant.Transport over a serial port
type Transport struct {
	port        serial.Port
	portName    string
	buf         []byte
	readTimeout time.Duration
	baudRate    int
	channels    int
	mu          sync.Mutex
}

// New opens portName
func New(portName string, opts ...Option) (*Transport, error) {
	t := newTransport(portName, opts...)

	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: t.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, ant.NewTransportError("open", portName, err, ant.ErrorTypePermanent)
	}

	if err := t.attach(port); err != nil {
		_ = port.Close()
		return nil, err
	}
	return t, nil
}

func newTransport(portName string, opts ...Option) *Transport {
	t := &Transport{
		portName:    portName,
		baudRate:    BaudUSB2,
		channels:    defaultChannels,
		readTimeout: defaultReadTimeout,
		buf:         make([]byte, readChunk),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) attach(port serial.Port) error {
	if err := port.SetReadTimeout(t.readTimeout); err != nil {
		return ant.NewTransportError("configure", t.portName, err, ant.ErrorTypePermanent)
	}
	if err := port.ResetInputBuffer(); err != nil {
		return ant.NewTransportError("configure", t.portName, err, ant.ErrorTypeTransient)
	}
	t.port = port
	return nil
}

// ReadBytes drains the bytes the stick has sent. Each read waits at most the
// read timeout, so an idle port returns an empty slice quickly.
func (t *Transport) ReadBytes() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil, ant.ErrTransportClosed
	}

	var out []byte
	for {
		n, err := t.port.Read(t.buf)
		if err != nil {
			return out, ant.NewTransportError("read", t.portName, fmt.Errorf("%w: %w", ant.ErrTransportRead, err),
				ant.ErrorTypeTransient)
		}
		out = append(out, t.buf[:n]...)
		if n < len(t.buf) {
			return out, nil
		}
	}
}

// WriteBytes writes data, retrying partial writes
func (t *Transport) WriteBytes(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return 0, ant.ErrTransportClosed
	}

	written := 0
	_, err := transport.WithRetry(transport.RetryConfig{
		Description: "write",
		Port:        t.portName,
		MaxRetries:  maxWriteRetries,
		RetryDelay:  time.Millisecond,
	}, func() (struct{}, bool, error) {
		n, err := t.port.Write(data[written:])
		written += n
		if err != nil {
			return struct{}{}, false, ant.NewTransportError("write", t.portName,
				fmt.Errorf("%w: %w", ant.ErrTransportWrite, err), ant.ErrorTypeTransient)
		}
		return struct{}{}, written < len(data), nil
	})
	if err != nil {
		return written, err
	}
	return written, nil
}

// NumberOfChannels returns the configured channel count
func (t *Transport) NumberOfChannels() int {
	return t.channels
}

// IsReady returns true while the port is open
func (t *Transport) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return ant.NewTransportError("close", t.portName, err, ant.ErrorTypePermanent)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() ant.TransportType {
	return ant.TransportUART
}

// PortName returns the serial port name
func (t *Transport) PortName() string {
	return t.portName
}

// BaudRate returns the configured serial speed
func (t *Transport) BaudRate() int {
	return t.baudRate
}
