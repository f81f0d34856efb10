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

/*
Package ant provides a pure Go ANT+ protocol stack for reading fitness
sensors through an ANT radio.

It assembles frames from the radio byte stream, decodes messages, runs one
state machine per radio channel and decodes the ANT+ device profiles for
heart rate, bicycle power, cadence, speed, combined speed and cadence and
FE-C smart trainers.

Features:
  - USB stick (UART) and SPI module transports
  - Channel setup, search, device pairing and close handshakes
  - Quick search with a single fallback to the normal search timeout
  - Acknowledged messages with a bounded queue and retry, used for trainer
    control (slope, target power, basic resistance)
  - Radio detection, Prometheus metrics, zap logging and a wire log
  - A simulated radio for tests and demos

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-ant"
	    "github.com/ZaparooProject/go-ant/transport/uart"
	)

	transport, err := uart.New("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	d, err := ant.New(transport, ant.WithCallbacks(ant.Callbacks{
	    OnReading: func(r ant.Reading) {
	        fmt.Println(r)
	    },
	}))
	if err != nil {
	    log.Fatal(err)
	}
	if err := d.Initialize(); err != nil {
	    log.Fatal(err)
	}

	for !d.Ready() {
	    if err := d.Poll(); err != nil {
	        log.Fatal(err)
	    }
	    time.Sleep(10 * time.Millisecond)
	}
	if err := d.SearchForSensor(ant.SensorHeartRate, 0); err != nil {
	    log.Fatal(err)
	}
	for {
	    _ = d.Poll()
	    time.Sleep(10 * time.Millisecond)
	}

Transport Selection:

  - UART: ANTUSB2 (57600 baud) and ANTUSB-m (115200 baud) sticks
  - SPI: nRF24AP2 style modules on a host SPI bus with two handshake lines

Error Handling:

Operations return sentinel errors that can be inspected:

	if errors.Is(err, ant.ErrNoFreeChannel) {
	    // close another sensor first
	}

Transport failures are *TransportError values carrying an ErrorType and a
Retryable flag. Protocol problems reported by the radio surface through
Callbacks.OnChannelError as *ResponseError.

Thread Safety:

Dispatcher and Channel are not thread-safe and must stay on one goroutine.
polling.RadioActor owns a Dispatcher on its own goroutine and accepts
requests from any goroutine.
*/
package ant
