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

import "bytes"

// Frame is a checksum-validated ANT frame
type Frame struct {
	Payload []byte
	Raw     []byte
	ID      byte
}

// Assembler turns an arbitrarily chunked byte stream into validated frames.
//
// Bytes that do not belong to a valid frame are discarded and the assembler
// resynchronizes on the next sync byte. A partial frame stays buffered until
// enough bytes arrive to complete it.
type Assembler struct {
	buf     []byte
	dropped uint64
	noise   uint64
}

// NewAssembler creates an empty assembler
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Submit appends data to the internal buffer and returns every frame that
// could be completed. Malformed or corrupted frames are dropped silently.
func (a *Assembler) Submit(data []byte) []Frame {
	a.buf = append(a.buf, data...)

	var frames []Frame
	for {
		frm, ok := a.next()
		if !ok {
			break
		}
		frames = append(frames, frm)
	}

	if len(a.buf) == 0 {
		a.buf = a.buf[:0:0]
	}
	return frames
}

// next extracts a single frame from the head of the buffer
func (a *Assembler) next() (Frame, bool) {
	for {
		idx := bytes.IndexByte(a.buf, Sync)
		if idx < 0 {
			a.noise += uint64(len(a.buf))
			a.buf = a.buf[:0]
			return Frame{}, false
		}
		if idx > 0 {
			a.noise += uint64(idx)
			a.buf = a.buf[idx:]
		}

		// Need the length byte before anything can be decided
		if len(a.buf) < 2 {
			return Frame{}, false
		}

		length := int(a.buf[1])
		if length > MaxPayloadLength {
			a.discardCandidate()
			continue
		}

		total := Overhead + length
		if len(a.buf) < total {
			// Incomplete, keep it at the front for the next call
			return Frame{}, false
		}

		candidate := a.buf[:total]
		if !ValidateChecksum(candidate) {
			a.discardCandidate()
			continue
		}

		raw := make([]byte, total)
		copy(raw, candidate)
		a.buf = a.buf[total:]

		return Frame{
			ID:      raw[2],
			Payload: raw[HeaderLength : total-1],
			Raw:     raw,
		}, true
	}
}

// discardCandidate skips the sync byte of a rejected frame so scanning resumes
// right after it
func (a *Assembler) discardCandidate() {
	a.dropped++
	a.buf = a.buf[1:]
}

// Buffered returns the number of bytes waiting for more data
func (a *Assembler) Buffered() int {
	return len(a.buf)
}

// Dropped returns the number of frame candidates rejected so far
func (a *Assembler) Dropped() uint64 {
	return a.dropped
}

// Noise returns the number of bytes skipped while looking for a sync byte
func (a *Assembler) Noise() uint64 {
	return a.noise
}

// Reset discards any buffered bytes
func (a *Assembler) Reset() {
	a.buf = nil
}
