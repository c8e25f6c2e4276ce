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
	"context"
	"testing"

	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/stretchr/testify/require"
)

func tasksFor(paths ...string) []BatchTask {
	tasks := make([]BatchTask, len(paths))
	for i, path := range paths {
		tasks[i] = BatchTask{File: driver.FromBytes(path, []byte("content of " + path))}
	}
	return tasks
}

func TestBatchAllSucceed(t *testing.T) {
	fake := newFakeDriver("fake")
	f := newTestFactory(t, fake)

	results := f.Batch(context.Background(), tasksFor("a.pdf", "b.pdf", "c.pdf"), BatchOptions{})
	require.Len(t, results, 3)
	for _, result := range results {
		require.True(t, result.Success())
		require.False(t, result.Failed())
		require.Empty(t, result.ErrorMessage())
		require.Equal(t, "fake", result.Driver)
	}
	require.Equal(t, int64(3), fake.calls.Load())
}

func TestBatchAuthFailureShortCircuits(t *testing.T) {
	fake := newFakeDriver("fake")
	authErr := driver.NewAuthenticationError("fake", "invalid api key", nil)
	fake.fail = func(string) error { return authErr }
	f := newTestFactory(t, fake)

	results := f.Batch(context.Background(), tasksFor("a.pdf", "b.pdf", "c.pdf"), BatchOptions{Workers: 1})
	require.Len(t, results, 3)

	// One real call trips the breaker; the remaining tasks fail with the
	// same error instance without reaching the backend.
	require.Equal(t, int64(1), fake.calls.Load())
	for _, result := range results {
		require.True(t, result.Failed())
		require.Same(t, authErr, result.Err)
	}
}

func TestBatchFileNotFoundDoesNotShortCircuit(t *testing.T) {
	fake := newFakeDriver("fake")
	fake.fail = func(ref string) error {
		if ref == "a.pdf" {
			return driver.NewFileNotFoundError("fake", "a.pdf missing", nil)
		}
		return nil
	}
	f := newTestFactory(t, fake)

	results := f.Batch(context.Background(), tasksFor("a.pdf", "b.pdf", "c.pdf"), BatchOptions{Workers: 1})
	require.Len(t, results, 3)
	require.Equal(t, int64(3), fake.calls.Load())

	failures := 0
	for _, result := range results {
		if result.Failed() {
			failures++
			require.Equal(t, driver.KindFileNotFound, driver.KindOf(result.Err))
		}
	}
	require.Equal(t, 1, failures)
}

func TestBatchBreakerIsolationBetweenDrivers(t *testing.T) {
	broken := newFakeDriver("broken")
	broken.fail = func(string) error {
		return driver.NewAuthenticationError("broken", "invalid api key", nil)
	}
	healthy := newFakeDriver("healthy")
	f := newTestFactory(t, healthy, broken)

	results := f.Batch(context.Background(), tasksFor("a.pdf", "b.pdf"), BatchOptions{
		Drivers: []string{"broken", "healthy"},
		Workers: 1,
	})
	require.Len(t, results, 4)

	byDriver := map[string][]BatchResult{}
	for _, result := range results {
		byDriver[result.Driver] = append(byDriver[result.Driver], result)
	}
	for _, result := range byDriver["broken"] {
		require.True(t, result.Failed())
	}
	for _, result := range byDriver["healthy"] {
		require.True(t, result.Success())
	}
	require.Equal(t, int64(1), broken.calls.Load())
	require.Equal(t, int64(2), healthy.calls.Load())
}

func TestBatchPerTaskOverrides(t *testing.T) {
	first := newFakeDriver("first")
	second := newFakeDriver("second")
	f := newTestFactory(t, first, second)

	tasks := []BatchTask{
		{File: driver.FromBytes("a.pdf", []byte("a"))},
		{File: driver.FromBytes("b.pdf", []byte("b")), Drivers: []string{"second"}, Level: document.LevelBlock},
	}
	results := f.Batch(context.Background(), tasks, BatchOptions{Workers: 1})
	require.Len(t, results, 2)

	require.Equal(t, int64(1), first.calls.Load())
	require.Equal(t, int64(1), second.calls.Load())

	for _, result := range results {
		require.True(t, result.Success())
		if result.Driver == "second" {
			require.NotNil(t, result.Document.Pages[0].Blocks)
		} else {
			require.Nil(t, result.Document.Pages[0].Blocks)
		}
	}
}

func TestBatchCartesianExpansion(t *testing.T) {
	first := newFakeDriver("first")
	second := newFakeDriver("second")
	f := newTestFactory(t, first, second)

	results := f.Batch(context.Background(), tasksFor("a.pdf", "b.pdf", "c.pdf"), BatchOptions{
		Drivers: []string{"first", "second"},
	})
	require.Len(t, results, 6)
	require.Equal(t, int64(3), first.calls.Load())
	require.Equal(t, int64(3), second.calls.Load())
}

func TestBatchStopOnErrorHaltsDelivery(t *testing.T) {
	fake := newFakeDriver("fake")
	fake.fail = func(ref string) error {
		if ref == "b.pdf" {
			return driver.NewParsingError("fake", "corrupt", nil)
		}
		return nil
	}
	f := newTestFactory(t, fake)

	results := f.Batch(context.Background(), tasksFor("a.pdf", "b.pdf", "c.pdf"), BatchOptions{
		Workers:     1,
		StopOnError: true,
	})

	// Delivery stops at the failure; earlier successes are kept.
	require.Len(t, results, 2)
	require.True(t, results[0].Success())
	require.True(t, results[1].Failed())
}

func TestBatchUnknownDriverProducesFailedResults(t *testing.T) {
	f := newTestFactory(t, newFakeDriver("fake"))

	results := f.Batch(context.Background(), tasksFor("a.pdf"), BatchOptions{
		Drivers: []string{"nonexistent"},
	})
	require.Len(t, results, 1)
	require.True(t, results[0].Failed())
	require.Contains(t, results[0].ErrorMessage(), "not supported")
}

func TestBatchStreamDeliversAllResults(t *testing.T) {
	fake := newFakeDriver("fake")
	f := newTestFactory(t, fake)

	seen := 0
	for result := range f.BatchStream(context.Background(), tasksFor("a.pdf", "b.pdf", "c.pdf"), BatchOptions{Workers: 2}) {
		require.True(t, result.Success())
		seen++
	}
	require.Equal(t, 3, seen)
}

func TestBatchEmptyTaskList(t *testing.T) {
	f := newTestFactory(t, newFakeDriver("fake"))
	require.Empty(t, f.Batch(context.Background(), nil, BatchOptions{}))
}

func TestBatchCancelledContext(t *testing.T) {
	fake := newFakeDriver("fake")
	f := newTestFactory(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.Batch(ctx, tasksFor("a.pdf", "b.pdf"), BatchOptions{Workers: 1})
	require.Len(t, results, 2)
	for _, result := range results {
		require.True(t, result.Failed())
	}
	require.Zero(t, fake.calls.Load())
}
