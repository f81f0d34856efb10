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

// Package detection finds ANT radios attached to the host. Transport
// specific detectors register themselves on import.
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNoDevicesFound is returned when no radio was found
	ErrNoDevicesFound = errors.New("no ANT devices found")
	// ErrDetectionTimeout is returned when the context ends mid scan
	ErrDetectionTimeout = errors.New("detection timed out")
	// ErrUnsupportedPlatform is returned by detectors with nothing to scan
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// Mode controls how intrusive detection is
type Mode int

const (
	// Passive only enumerates, no device nodes are opened
	Passive Mode = iota
	// Safe enumerates and checks the device nodes are accessible
	Safe
	// Full also lists devices that do not look like ANT radios
	Full
)

func (m Mode) String() string {
	switch m {
	case Passive:
		return "passive"
	case Safe:
		return "safe"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Confidence is how sure a detector is that a device is an ANT radio
type Confidence int

const (
	// Low means the device could be a radio
	Low Confidence = iota
	// Medium means the device matches a radio by name or bus
	Medium
	// High means the device matches a known radio by USB id
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("confidence(%d)", int(c))
	}
}

// MarshalText renders the confidence by name
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// DeviceInfo describes a detected device
type DeviceInfo struct {
	Metadata   map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Transport  string            `yaml:"transport" json:"transport"`
	Path       string            `yaml:"path" json:"path"`
	Name       string            `yaml:"name" json:"name"`
	Confidence Confidence        `yaml:"confidence" json:"confidence"`
}

// Options configures detection
type Options struct {
	Blocklist   []string
	IgnorePaths []string
	Timeout     time.Duration
	Mode        Mode
}

// DefaultOptions returns options for a passive scan
func DefaultOptions() Options {
	return Options{
		Mode:      Passive,
		Timeout:   5 * time.Second,
		Blocklist: DefaultBlocklist(),
	}
}

// Detector finds devices of one transport type
type Detector interface {
	Transport() string
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	detectorsMu sync.RWMutex
	detectors   = map[string]Detector{}
)

// RegisterDetector adds a detector, replacing one for the same transport
func RegisterDetector(d Detector) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	detectors[d.Transport()] = d
}

// Detectors returns the registered detectors sorted by transport
func Detectors() []Detector {
	detectorsMu.RLock()
	defer detectorsMu.RUnlock()

	out := make([]Detector, 0, len(detectors))
	for _, d := range detectors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Transport() < out[j].Transport()
	})
	return out
}

// DetectAll runs every registered detector
func DetectAll(opts *Options) ([]DeviceInfo, error) {
	return DetectAllContext(context.Background(), opts)
}

// DetectAllContext runs every registered detector. Detector failures are
// skipped; the result is sorted by confidence, best first.
func DetectAllContext(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var all []DeviceInfo
	for _, d := range Detectors() {
		if ctx.Err() != nil {
			if len(all) > 0 {
				break
			}
			return nil, ErrDetectionTimeout
		}
		found, err := d.Detect(ctx, opts)
		if err != nil {
			continue
		}
		all = append(all, found...)
	}

	if len(all) == 0 {
		return nil, ErrNoDevicesFound
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})
	return all, nil
}
