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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-ant/message"
)

// Dispatcher errors
var (
	ErrNoDevice          = errors.New("no radio device")
	ErrNotInitialized    = errors.New("radio not initialized")
	ErrInitTimeout       = errors.New("network key confirmation timeout")
	ErrDeviceNotReady    = errors.New("radio device not ready")
	ErrNoFreeChannel     = errors.New("no free channel")
	ErrSensorAlreadyOpen = errors.New("channel already open for sensor type")
	ErrInvalidSensorType = errors.New("invalid sensor type")
	ErrNoSuchChannel     = errors.New("no channel for sensor type")
	ErrInvalidParameter  = errors.New("invalid parameter")
)

// Transport errors
var (
	ErrTransportClosed  = errors.New("transport closed")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrShortWrite       = errors.New("short write")
	ErrTransportTimeout = errors.New("transport timeout")
)

// ErrorType classifies transport errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent errors will not succeed on retry
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may succeed on retry
	ErrorTypeTransient
	// ErrorTypeTimeout errors were caused by a deadline
	ErrorTypeTimeout
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// TransportError wraps a transport failure with the operation and port
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError; transient and timeout errors
// are retryable
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a retryable timeout error
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// IsRetryable reports whether err is worth retrying. A TransportError decides
// for itself; bare transport sentinels are retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	return errors.Is(err, ErrTransportTimeout) ||
		errors.Is(err, ErrTransportRead) ||
		errors.Is(err, ErrTransportWrite) ||
		errors.Is(err, ErrShortWrite)
}

// GetErrorType returns the ErrorType of err, ErrorTypePermanent if unknown
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead), errors.Is(err, ErrTransportWrite), errors.Is(err, ErrShortWrite):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// ResponseError is a non-zero response code to a channel command
type ResponseError struct {
	Channel int
	Command message.ID
	Code    message.EventCode
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("channel %d: %s rejected: %s", e.Channel, e.Command, e.Code)
}
