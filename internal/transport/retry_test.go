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

package transport

import (
	"errors"
	"testing"
	"time"

	ant "github.com/ZaparooProject/go-ant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	t.Parallel()

	permanent := errors.New("permanent")

	tests := []struct {
		wantErr     error
		name        string
		succeedOn   int
		failOn      int
		maxRetries  int
		wantCalls   int
		wantRetries int
	}{
		{name: "first attempt", succeedOn: 1, maxRetries: 3, wantCalls: 1},
		{name: "after retries", succeedOn: 3, maxRetries: 3, wantCalls: 3, wantRetries: 2},
		{name: "exhausted", succeedOn: 10, maxRetries: 2, wantCalls: 3, wantRetries: 2, wantErr: ant.ErrTransportWrite},
		{name: "permanent error", succeedOn: 10, failOn: 2, maxRetries: 5, wantCalls: 2, wantRetries: 1,
			wantErr: permanent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls, retries := 0, 0
			got, err := WithRetry(RetryConfig{
				MaxRetries: tt.maxRetries,
				Port:       "/dev/ttyANT0",
				OnRetry: func() error {
					retries++
					return nil
				},
			}, func() (int, bool, error) {
				calls++
				if calls == tt.failOn {
					return 0, false, permanent
				}
				if calls >= tt.succeedOn {
					return calls, false, nil
				}
				return 0, true, nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantRetries, retries)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.succeedOn, got)
		})
	}
}

func TestWithRetry_ExhaustedIsRetryable(t *testing.T) {
	t.Parallel()

	_, err := WithRetry(RetryConfig{MaxRetries: 1, Description: "write"}, func() (struct{}, bool, error) {
		return struct{}{}, true, nil
	})

	require.Error(t, err)
	assert.True(t, ant.IsRetryable(err))
	assert.Contains(t, err.Error(), "write")
}

func TestWithRetry_OnRetryFailedOverridesError(t *testing.T) {
	t.Parallel()

	custom := errors.New("gave up")
	_, err := WithRetry(RetryConfig{
		MaxRetries:    0,
		OnRetryFailed: func() error { return custom },
	}, func() (int, bool, error) { return 0, true, nil })

	require.ErrorIs(t, err, custom)
}

func TestTimeoutRetry(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := TimeoutRetry(time.Second, "spi0", func() (string, bool, error) {
		calls++
		return "ready", calls < 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ready", got)

	_, err = TimeoutRetry(5*time.Millisecond, "spi0", func() (string, bool, error) {
		return "", true, nil
	})
	require.ErrorIs(t, err, ant.ErrTransportTimeout)
	assert.Equal(t, ant.ErrorTypeTimeout, ant.GetErrorType(err))
}
