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
	"fmt"
	"io"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Wire log directions
const (
	wireIn  = "IN"
	wireOut = "OUT"
)

// wireLogger writes one line per frame:
//
//	<RFC3339Nano UTC>\t<IN|OUT>\t<hex bytes>
type wireLogger struct {
	w io.Writer
}

func newWireLogger(w io.Writer) *wireLogger {
	if w == nil {
		return nil
	}
	return &wireLogger{w: w}
}

func (l *wireLogger) log(at time.Time, direction string, data []byte) {
	if l == nil {
		return
	}
	// write errors are not worth failing radio traffic for
	_, _ = fmt.Fprintf(l.w, "%s\t%s\t% X\n", at.UTC().Format(time.RFC3339Nano), direction, data)
}

// WireLogFile configures a size-rotated wire log file
type WireLogFile struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewWireLogFile opens a rotating writer suitable for WithWireLog
func NewWireLogFile(cfg WireLogFile) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
