// Copyright 2026 OneOffTech
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parxy

import (
	"sync"
	"testing"
	"time"

	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/stretchr/testify/require"
)

func TestBreakerStartsClosed(t *testing.T) {
	state := NewCircuitBreakerState()
	require.False(t, state.IsOpen("pdfact"))
	require.Nil(t, state.TripError("pdfact"))
	require.Empty(t, state.OpenDrivers())
}

func TestBreakerTripsOnPoisoningFailures(t *testing.T) {
	for _, err := range []error{
		driver.NewAuthenticationError("d", "bad key", nil),
		driver.NewQuotaExceededError("d", "quota spent", nil),
		driver.NewRateLimitError("d", "throttled", time.Minute, nil),
	} {
		state := NewCircuitBreakerState()
		require.True(t, state.RecordFailure("d", err))
		require.True(t, state.IsOpen("d"))
		require.Same(t, err, state.TripError("d"))
	}
}

func TestBreakerIgnoresPerFileFailures(t *testing.T) {
	state := NewCircuitBreakerState()
	require.False(t, state.RecordFailure("d", driver.NewFileNotFoundError("d", "missing", nil)))
	require.False(t, state.RecordFailure("d", driver.NewParsingError("d", "corrupt", nil)))
	require.False(t, state.RecordFailure("d", driver.NewValidationError("d", "bad level")))
	require.False(t, state.RecordFailure("d", nil))
	require.False(t, state.IsOpen("d"))
}

func TestBreakerFirstWriterWins(t *testing.T) {
	state := NewCircuitBreakerState()
	first := driver.NewAuthenticationError("d", "first", nil)
	second := driver.NewQuotaExceededError("d", "second", nil)

	require.True(t, state.RecordFailure("d", first))
	require.False(t, state.RecordFailure("d", second))
	require.Same(t, first, state.TripError("d"))
}

func TestBreakerIsolatesDrivers(t *testing.T) {
	state := NewCircuitBreakerState()
	require.True(t, state.RecordFailure("a", driver.NewAuthenticationError("a", "bad key", nil)))

	require.True(t, state.IsOpen("a"))
	require.False(t, state.IsOpen("b"))
	require.ElementsMatch(t, []string{"a"}, state.OpenDrivers())
}

func TestBreakerConcurrentRecording(t *testing.T) {
	state := NewCircuitBreakerState()
	errs := make([]error, 32)
	for i := range errs {
		errs[i] = driver.NewAuthenticationError("d", "bad key", nil)
	}

	var wg sync.WaitGroup
	var opened sync.Map
	for i, err := range errs {
		wg.Add(1)
		go func(i int, err error) {
			defer wg.Done()
			if state.RecordFailure("d", err) {
				opened.Store(i, true)
			}
		}(i, err)
	}
	wg.Wait()

	// Exactly one writer wins, and the stored error is that writer's.
	count := 0
	winner := -1
	opened.Range(func(key, _ any) bool {
		count++
		winner = key.(int)
		return true
	})
	require.Equal(t, 1, count)
	require.Same(t, errs[winner], state.TripError("d"))
}
