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
	"sync"
)

// MockTransport is a scripted Transport for tests. Reads are served from a
// queue of chunks and every write is recorded.
type MockTransport struct {
	readErr    error
	writeErr   error
	reads      [][]byte
	writes     [][]byte
	channels   int
	shortWrite int
	mu         sync.Mutex
	ready      bool
	closed     bool
}

// NewMockTransport creates a ready mock reporting the given channel count
func NewMockTransport(channels int) *MockTransport {
	return &MockTransport{
		channels: channels,
		ready:    true,
	}
}

// QueueRead appends chunks that subsequent ReadBytes calls return one at a time
func (m *MockTransport) QueueRead(chunks ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.reads = append(m.reads, append([]byte(nil), c...))
	}
}

// ReadBytes returns the next queued chunk or nothing
func (m *MockTransport) ReadBytes() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrTransportClosed
	}
	if len(m.reads) == 0 {
		return nil, m.readErr
	}
	chunk := m.reads[0]
	m.reads = m.reads[1:]
	return chunk, m.readErr
}

// WriteBytes records data
func (m *MockTransport) WriteBytes(data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrTransportClosed
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}

	m.writes = append(m.writes, append([]byte(nil), data...))
	if m.shortWrite > 0 && m.shortWrite < len(data) {
		return len(data) - m.shortWrite, nil
	}
	return len(data), nil
}

// Writes returns a copy of every recorded write
func (m *MockTransport) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// LastWrite returns the most recent write, or nil
func (m *MockTransport) LastWrite() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return nil
	}
	return m.writes[len(m.writes)-1]
}

// ClearWrites forgets recorded writes
func (m *MockTransport) ClearWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// SetReady controls IsReady
func (m *MockTransport) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

// SetReadError makes ReadBytes fail with err. Queued chunks are still
// returned alongside the error.
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetWriteError makes WriteBytes fail with err
func (m *MockTransport) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// SetShortWrite makes WriteBytes report n fewer bytes than requested
func (m *MockTransport) SetShortWrite(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortWrite = n
}

// NumberOfChannels returns the configured channel count
func (m *MockTransport) NumberOfChannels() int {
	return m.channels
}

// IsReady reports the configured readiness
func (m *MockTransport) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready && !m.closed
}

// Close marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}
