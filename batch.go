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
	"time"

	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchTask is one file to parse, with optional per-task overrides for the
// batch-level driver list and extraction level.
type BatchTask struct {
	// File is the input to parse.
	File driver.Input `json:"file"`
	// Drivers overrides the batch driver list for this file.
	Drivers []string `json:"drivers,omitempty"`
	// Level overrides the batch extraction level for this file.
	Level document.Level `json:"level,omitempty"`
	// Options is handed to the driver unchanged.
	Options any `json:"-"`
}

// BatchResult is the outcome of parsing one file with one driver.
type BatchResult struct {
	// File identifies the input that was processed.
	File string `json:"file"`
	// Driver is the driver name used.
	Driver string `json:"driver"`
	// Document is the parse result, nil on failure.
	Document *document.Document `json:"document,omitempty"`
	// Err is the failure, nil on success. Results short-circuited by an
	// open breaker carry the error that tripped it.
	Err error `json:"-"`
}

// Success reports whether the task produced a document.
func (r BatchResult) Success() bool { return r.Document != nil }

// Failed reports whether the task failed.
func (r BatchResult) Failed() bool { return r.Err != nil }

// ErrorMessage returns the failure message, empty on success.
func (r BatchResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// BatchOptions configures a batch run.
type BatchOptions struct {
	// Drivers is the default driver list for tasks that name none. Empty
	// means the factory's default driver.
	Drivers []string
	// Level is the default extraction level, page when unset.
	Level document.Level
	// Workers bounds concurrency. Zero falls back to the configured
	// worker count. One worker processes items in submission order, which
	// makes breaker short-circuiting deterministic.
	Workers int
	// StopOnError stops delivering results after the first failure.
	// Tasks already running still finish; their results are discarded.
	StopOnError bool
}

// batchItem is one (file, driver) pair after cartesian expansion.
type batchItem struct {
	file    driver.Input
	driver  string
	level   document.Level
	options any
}

// expand normalizes tasks against the batch defaults and produces one item
// per (file, driver) combination, preserving submission order.
func (f *Factory) expand(tasks []BatchTask, opts BatchOptions) []batchItem {
	defaultDrivers := opts.Drivers
	if len(defaultDrivers) == 0 {
		defaultDrivers = []string{f.cfg.DefaultDriver}
	}
	defaultLevel := opts.Level
	if !defaultLevel.Valid() {
		defaultLevel = document.LevelPage
	}

	var items []batchItem
	for _, task := range tasks {
		drivers := task.Drivers
		if len(drivers) == 0 {
			drivers = defaultDrivers
		}
		level := task.Level
		if !level.Valid() {
			level = defaultLevel
		}
		for _, name := range drivers {
			if name == "" {
				name = f.cfg.DefaultDriver
			}
			items = append(items, batchItem{
				file:    task.File,
				driver:  name,
				level:   level,
				options: task.Options,
			})
		}
	}
	return items
}

// BatchStream parses every task concurrently and streams results in
// completion order. The returned channel is closed once all items finished.
//
// A fresh circuit breaker guards the run: the first authentication, quota
// or rate-limit failure for a driver opens its breaker, and every later
// item for that driver is failed immediately with the tripping error
// instead of calling the backend again. Other drivers are unaffected.
func (f *Factory) BatchStream(ctx context.Context, tasks []BatchTask, opts BatchOptions) <-chan BatchResult {
	items := f.expand(tasks, opts)

	workers := opts.Workers
	if workers <= 0 {
		workers = f.cfg.Workers
	}

	// Buffered to item count so workers never block on a consumer that
	// stopped reading early.
	results := make(chan BatchResult, len(items))

	breaker := NewCircuitBreakerState()
	started := time.Now()

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	go func() {
		defer close(results)
		for _, item := range items {
			item := item
			group.Go(func() error {
				results <- f.runItem(ctx, item, breaker)
				return nil
			})
		}
		_ = group.Wait()
		RecordBatchDuration(time.Since(started).Seconds())
	}()

	return results
}

// Batch parses every task and collects the results. With StopOnError set,
// collection stops at the first failed result; in-flight tasks finish in
// the background but their results are dropped.
func (f *Factory) Batch(ctx context.Context, tasks []BatchTask, opts BatchOptions) []BatchResult {
	var collected []BatchResult
	for result := range f.BatchStream(ctx, tasks, opts) {
		collected = append(collected, result)
		if opts.StopOnError && result.Failed() {
			break
		}
	}
	return collected
}

// runItem executes one (file, driver) pair, consulting the breaker before
// any real backend call and recording trip-worthy failures after it.
func (f *Factory) runItem(ctx context.Context, item batchItem, breaker *CircuitBreakerState) BatchResult {
	result := BatchResult{File: item.file.Ref(), Driver: item.driver}

	if tripErr := breaker.TripError(item.driver); tripErr != nil {
		RecordBreakerShortCircuit(item.driver)
		f.logger.Debug("skipping call, breaker open",
			zap.String("driver", item.driver),
			zap.String("file", result.File))
		result.Err = tripErr
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	batchTasksInFlight.Inc()
	doc, err := f.Parse(ctx, item.file, item.driver, item.level, item.options)
	batchTasksInFlight.Dec()

	if err != nil {
		if breaker.RecordFailure(item.driver, err) {
			RecordBreakerTrip(item.driver, kindLabel(err))
			f.logger.Warn("circuit breaker opened",
				zap.String("driver", item.driver),
				zap.Error(err))
		}
		result.Err = err
		return result
	}

	result.Document = doc
	return result
}
