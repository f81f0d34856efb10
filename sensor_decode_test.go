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
	"testing"

	testutil "github.com/ZaparooProject/go-ant/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	kind  ValueKind
	value float64
}

func decodeAll(t *testing.T, sensor SensorType, pages ...[8]byte) []emitted {
	t.Helper()

	dec := newDecoder(sensor)
	require.NotNil(t, dec)

	var out []emitted
	for _, p := range pages {
		dec.decode(p, func(kind ValueKind, value float64) {
			out = append(out, emitted{kind: kind, value: value})
		})
	}
	return out
}

func repeatPage(page [8]byte, n int) [][8]byte {
	out := make([][8]byte, n)
	for i := range out {
		out[i] = page
	}
	return out
}

func TestHeartRate_DuplicateEventTimeSuppressed(t *testing.T) {
	t.Parallel()

	got := decodeAll(t, SensorHeartRate,
		testutil.HeartRatePage(1000, 1, 70),
		testutil.HeartRatePage(1000, 1, 70),
	)

	assert.Equal(t, []emitted{{ValueHeartRate, 70}}, got)
}

func TestHeartRate_NewEventTimeEmits(t *testing.T) {
	t.Parallel()

	got := decodeAll(t, SensorHeartRate,
		testutil.HeartRatePage(1000, 1, 70),
		testutil.HeartRatePage(1850, 2, 72),
		testutil.HeartRatePage(2700, 3, 71),
	)

	assert.Equal(t, []emitted{{ValueHeartRate, 70}, {ValueHeartRate, 72}, {ValueHeartRate, 71}}, got)
}

func TestHeartRate_ZeroAfterTwelveUnchanged(t *testing.T) {
	t.Parallel()

	pages := append([][8]byte{testutil.HeartRatePage(1000, 1, 70)},
		repeatPage(testutil.HeartRatePage(1000, 1, 70), 15)...)
	got := decodeAll(t, SensorHeartRate, pages...)

	assert.Equal(t, []emitted{{ValueHeartRate, 70}, {ValueHeartRate, 0}}, got, "zero is emitted once")
}

func TestPower_AveragesOverEvents(t *testing.T) {
	t.Parallel()

	got := decodeAll(t, SensorPower,
		testutil.PowerPage(10, 90, 1000, 210),
		testutil.PowerPage(12, 92, 1400, 190),
	)

	require.Len(t, got, 4)
	assert.Equal(t, emitted{ValuePower, 210}, got[0])
	assert.Equal(t, emitted{ValueCadence, 90}, got[1])
	assert.Equal(t, emitted{ValuePower, 200}, got[2])
	assert.Equal(t, emitted{ValueCadence, 92}, got[3])
}

func TestPower_CounterWraparound(t *testing.T) {
	t.Parallel()

	got := decodeAll(t, SensorPower,
		testutil.PowerPage(255, 0xFF, 65500, 100),
		testutil.PowerPage(0, 0xFF, 200, 100),
	)

	require.Len(t, got, 2, "invalid cadence is not emitted")
	assert.Equal(t, emitted{ValuePower, 236}, got[1])
}

func TestPower_ZeroAfterSixUnchanged(t *testing.T) {
	t.Parallel()

	page := testutil.PowerPage(5, 80, 500, 150)
	pages := append([][8]byte{page}, repeatPage(page, 7)...)
	got := decodeAll(t, SensorPower, pages...)

	assert.Equal(t, []emitted{
		{ValuePower, 150}, {ValueCadence, 80},
		{ValuePower, 0}, {ValueCadence, 0},
	}, got)
}

func TestPower_IgnoresOtherPages(t *testing.T) {
	t.Parallel()

	page := testutil.PowerPage(5, 80, 500, 150)
	page[0] = 0x50
	assert.Empty(t, decodeAll(t, SensorPower, page))
}

func TestRevolutions_RPM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sensor SensorType
		kind   ValueKind
		first  [8]byte
		second [8]byte
		want   float64
	}{
		{
			name:   "cadence one rev per second",
			sensor: SensorCadence,
			kind:   ValueCadence,
			first:  testutil.RevolutionPage(1024, 10),
			second: testutil.RevolutionPage(2048, 11),
			want:   60,
		},
		{
			name:   "speed two revs in half a second",
			sensor: SensorSpeed,
			kind:   ValueWheelSpeed,
			first:  testutil.RevolutionPage(1000, 100),
			second: testutil.RevolutionPage(1512, 102),
			want:   240,
		},
		{
			name:   "time and revolutions wrap",
			sensor: SensorCadence,
			kind:   ValueCadence,
			first:  testutil.RevolutionPage(65024, 65535),
			second: testutil.RevolutionPage(512, 0),
			want:   60,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := decodeAll(t, tt.sensor, tt.first, tt.second)
			require.Len(t, got, 1, "first page only primes the counter")
			assert.Equal(t, tt.kind, got[0].kind)
			assert.InDelta(t, tt.want, got[0].value, 0.001)
		})
	}
}

func TestRevolutions_ZeroAfterTwelveUnchanged(t *testing.T) {
	t.Parallel()

	pages := [][8]byte{testutil.RevolutionPage(1024, 1), testutil.RevolutionPage(2048, 2)}
	pages = append(pages, repeatPage(testutil.RevolutionPage(2048, 2), 13)...)
	got := decodeAll(t, SensorCadence, pages...)

	assert.Equal(t, []emitted{{ValueCadence, 60}, {ValueCadence, 0}}, got)
}

func TestSpeedAndCadence_BothValues(t *testing.T) {
	t.Parallel()

	got := decodeAll(t, SensorSpeedAndCadence,
		testutil.SpeedCadencePage(0, 0, 0, 0),
		testutil.SpeedCadencePage(1024, 1, 512, 1),
	)

	assert.Equal(t, []emitted{{ValueCadence, 60}, {ValueWheelSpeed, 120}}, got)
}

func TestTrainer_PowerCadenceAndSpeed(t *testing.T) {
	t.Parallel()

	got := decodeAll(t, SensorSmartTrainer,
		testutil.TrainerDataPage(1, 85, 0, 0x123),
		testutil.TrainerDataPage(1, 85, 0, 0x123),
		testutil.GeneralFEPage(4, 8333),
		testutil.GeneralFEPage(4, 8333),
		testutil.GeneralFEPage(5, 0xFFFF),
	)

	require.Len(t, got, 3)
	assert.Equal(t, emitted{ValuePower, 0x123}, got[0])
	assert.Equal(t, emitted{ValueCadence, 85}, got[1])
	assert.Equal(t, ValueSpeed, got[2].kind)
	assert.InDelta(t, 8.333, got[2].value, 0.0001)
}

func TestTrainer_InvalidPowerSkipped(t *testing.T) {
	t.Parallel()

	got := decodeAll(t, SensorSmartTrainer, testutil.TrainerDataPage(1, 0xFF, 0, 0xFFF))
	assert.Empty(t, got)
}

func TestNewDecoder_UnknownSensor(t *testing.T) {
	t.Parallel()

	assert.Nil(t, newDecoder(SensorUnknown))
}
