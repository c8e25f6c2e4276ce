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

// Package parxy is a document-parsing gateway: it resolves parsing backends
// (drivers) by name, normalizes their output into one canonical document
// model, and runs concurrent batches with a per-driver circuit breaker.
//
// The Factory is the unit of composition; applications construct one with
// their configuration and resolve drivers through it. The package-level
// functions operate on a lazily created process-wide factory for callers
// that do not need their own.
package parxy

import (
	"context"
	"sync"

	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
)

var (
	defaultMu      sync.Mutex
	defaultFactory *Factory
	defaultOpts    []FactoryOption
	defaultCfg     Config
)

// SetDefault replaces the process-wide factory configuration. It takes
// effect on the next Default call; an already built factory is closed.
func SetDefault(cfg Config, opts ...FactoryOption) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultFactory != nil {
		defaultFactory.Close()
		defaultFactory = nil
	}
	defaultCfg = cfg
	defaultOpts = opts
}

// Default returns the process-wide factory, building it on first use.
func Default() *Factory {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultFactory == nil {
		defaultFactory = NewFactory(defaultCfg, defaultOpts...)
	}
	return defaultFactory
}

// Reset discards the process-wide factory and its configuration. Intended
// for tests that register drivers on the shared instance.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultFactory != nil {
		defaultFactory.Close()
		defaultFactory = nil
	}
	defaultCfg = Config{}
	defaultOpts = nil
}

// Parse parses one input with the named driver via the process-wide
// factory. An empty driver name uses the default driver; an unset level
// defaults to page extraction.
func Parse(ctx context.Context, in driver.Input, driverName string, level document.Level, opts any) (*document.Document, error) {
	return Default().Parse(ctx, in, driverName, level, opts)
}

// Driver resolves a driver by name via the process-wide factory.
func Driver(name string) (driver.Driver, error) {
	return Default().Driver(name)
}

// Drivers lists the driver names registered on the process-wide factory.
func Drivers() []string {
	return Default().Drivers()
}

// DefaultDriverName returns the process-wide factory's default driver.
func DefaultDriverName() string {
	return Default().DefaultDriverName()
}

// Extend registers a driver constructor on the process-wide factory.
func Extend(name string, ctor DriverConstructor) error {
	return Default().Extend(name, ctor)
}

// Batch runs a batch on the process-wide factory and collects the results.
func Batch(ctx context.Context, tasks []BatchTask, opts BatchOptions) []BatchResult {
	return Default().Batch(ctx, tasks, opts)
}

// BatchStream runs a batch on the process-wide factory, streaming results
// in completion order.
func BatchStream(ctx context.Context, tasks []BatchTask, opts BatchOptions) <-chan BatchResult {
	return Default().BatchStream(ctx, tasks, opts)
}
