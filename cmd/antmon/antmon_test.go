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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	ant "github.com/ZaparooProject/go-ant"
	"github.com/ZaparooProject/go-ant/detection"
	"github.com/ZaparooProject/go-ant/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := parseMode("SAFE")
	require.NoError(t, err)
	assert.Equal(t, detection.Safe, mode)

	_, err = parseMode("aggressive")
	require.Error(t, err)
}

func TestWriteDevices(t *testing.T) {
	t.Parallel()

	devices := []detection.DeviceInfo{{
		Transport:  "uart",
		Path:       "/dev/ttyUSB0",
		Name:       "ANTUSB2 Stick",
		Confidence: detection.High,
		Metadata:   map[string]string{"vid_pid": "0FCF:1008", "baud": "57600"},
	}}

	var table bytes.Buffer
	require.NoError(t, writeDevices(&table, devices, "table"))
	assert.Contains(t, table.String(), "TRANSPORT")
	assert.Contains(t, table.String(), "baud=57600 vid_pid=0FCF:1008")
	assert.Contains(t, table.String(), "high")

	var out bytes.Buffer
	require.NoError(t, writeDevices(&out, devices, "yaml"))
	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "/dev/ttyUSB0", decoded[0]["path"])
	assert.Equal(t, "high", decoded[0]["confidence"])

	require.Error(t, writeDevices(&out, devices, "xml"))
}

func TestParseSensors(t *testing.T) {
	t.Parallel()

	got, err := parseSensors([]string{"power:4321", "heart-rate"}, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []sensorRequest{
		{sensor: ant.SensorPower, deviceNumber: 4321, quick: true},
		{sensor: ant.SensorHeartRate, quick: true},
	}, got)

	got, err = parseSensors(nil, []config.SensorConfig{{Type: "cadence", DeviceNumber: 7, Quick: true}}, false)
	require.NoError(t, err)
	assert.Equal(t, []sensorRequest{{sensor: ant.SensorCadence, deviceNumber: 7, quick: true}}, got)

	got, err = parseSensors(nil, nil, false)
	require.NoError(t, err)
	assert.Len(t, got, len(ant.SensorTypes()))

	_, err = parseSensors([]string{"power:big"}, nil, false)
	require.ErrorIs(t, err, ant.ErrInvalidParameter)
	_, err = parseSensors([]string{"toaster"}, nil, false)
	require.ErrorIs(t, err, ant.ErrInvalidSensorType)
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "antmon dev")
}

type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunMonitor_Virtual(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeTestConfig(t))
	require.NoError(t, err)
	cfg.Device.Transport = "virtual"

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var out syncBuffer
	flags := &monitorFlags{sensors: []string{"heart-rate"}}
	require.NoError(t, runMonitor(ctx, cfg, flags, &out, zap.NewNop()))

	text := out.String()
	assert.Contains(t, text, "heart-rate heart-rate=75.0bpm")
	assert.Contains(t, text, "(device 1000)", "readings carry the bound device number")
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "antmon.yaml")
	body := "protocol:\n  settleTime: 10ms\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
