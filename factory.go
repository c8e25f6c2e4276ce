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
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/OneOffTech/parxy-sub000/lib/trace"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

// DriverConstructor builds a driver instance from the factory's config.
type DriverConstructor func(cfg Config, logger *zap.Logger, tracer trace.Tracer) (driver.Driver, error)

// Factory resolves drivers by name and owns their instances. Construction
// is lazy: a driver is built on first use, kept in a TTL cache, and closed
// when evicted. Names can be extended at runtime but never overwritten.
type Factory struct {
	cfg    Config
	logger *zap.Logger
	tracer trace.Tracer

	mu           sync.RWMutex
	constructors map[string]DriverConstructor

	instances *ttlcache.Cache[string, driver.Driver]

	// resultCache is shared across drivers when caching is enabled.
	resultCache *ttlcache.Cache[string, *document.Document]
}

// FactoryOption customizes a Factory.
type FactoryOption func(*Factory)

// WithLogger sets the factory logger; defaults to a no-op logger.
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithTracer sets the tracer handed to drivers; defaults to the no-op
// tracer.
func WithTracer(tracer trace.Tracer) FactoryOption {
	return func(f *Factory) {
		if tracer != nil {
			f.tracer = tracer
		}
	}
}

// WithDrivers seeds additional constructors at build time.
func WithDrivers(constructors map[string]DriverConstructor) FactoryOption {
	return func(f *Factory) {
		for name, ctor := range constructors {
			f.constructors[name] = ctor
		}
	}
}

// builtin constructors are registered by the driver adapter packages via
// RegisterBuiltin in their init functions.
var (
	builtinMu sync.RWMutex
	builtin   = map[string]DriverConstructor{}
)

// RegisterBuiltin makes a driver available to every factory created
// afterwards. Adapter packages call this from init; duplicate names panic
// since they indicate two adapters claiming the same identity.
func RegisterBuiltin(name string, ctor DriverConstructor) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	if _, dup := builtin[name]; dup {
		panic(fmt.Sprintf("parxy: driver %q registered twice", name))
	}
	builtin[name] = ctor
}

// NewFactory builds a driver factory over the built-in adapters.
func NewFactory(cfg Config, opts ...FactoryOption) *Factory {
	cfg = cfg.Normalize()

	f := &Factory{
		cfg:          cfg,
		logger:       zap.NewNop(),
		tracer:       trace.Nop(),
		constructors: make(map[string]DriverConstructor),
	}

	builtinMu.RLock()
	for name, ctor := range builtin {
		f.constructors[name] = ctor
	}
	builtinMu.RUnlock()

	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.Named("factory")

	if cfg.CacheTTL > 0 {
		f.resultCache = ttlcache.New(
			ttlcache.WithTTL[string, *document.Document](cfg.CacheTTL),
			ttlcache.WithCapacity[string, *document.Document](cfg.CacheCapacity),
		)
		go f.resultCache.Start()
	}

	f.instances = ttlcache.New(
		ttlcache.WithTTL[string, driver.Driver](ttlcache.NoTTL),
	)
	f.instances.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, item *ttlcache.Item[string, driver.Driver]) {
		if closer, ok := item.Value().(driver.Closer); ok {
			if err := closer.Close(); err != nil {
				f.logger.Warn("closing evicted driver",
					zap.String("driver", item.Key()),
					zap.Error(err))
			}
		}
	})

	return f
}

// Config returns the factory's normalized configuration.
func (f *Factory) Config() Config { return f.cfg }

// DefaultDriverName returns the name resolved for empty driver names.
func (f *Factory) DefaultDriverName() string { return f.cfg.DefaultDriver }

// Drivers lists the registered driver names, sorted.
func (f *Factory) Drivers() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extend registers a driver constructor under a new name at runtime.
// Registering over an existing name fails and leaves the first registration
// active.
func (f *Factory) Extend(name string, ctor DriverConstructor) error {
	if name == "" {
		return fmt.Errorf("driver name must not be empty")
	}
	if ctor == nil {
		return fmt.Errorf("driver [%s] has no constructor", name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.constructors[name]; dup {
		return fmt.Errorf("driver [%s] already registered", name)
	}
	f.constructors[name] = ctor
	f.logger.Info("driver registered", zap.String("driver", name))
	return nil
}

// Driver resolves a driver by name, building it on first use. An empty
// name resolves the configured default driver.
func (f *Factory) Driver(name string) (driver.Driver, error) {
	if name == "" {
		name = f.cfg.DefaultDriver
	}

	if item := f.instances.Get(name); item != nil {
		return item.Value(), nil
	}

	f.mu.RLock()
	ctor, known := f.constructors[name]
	f.mu.RUnlock()
	if !known {
		return nil, fmt.Errorf("driver [%s] not supported, expected one of [%s]",
			name, strings.Join(f.Drivers(), ", "))
	}

	return f.buildDriver(name, ctor)
}

// buildDriver constructs and caches a driver instance. The write lock
// serializes construction so concurrent resolutions of the same name build
// it once.
func (f *Factory) buildDriver(name string, ctor DriverConstructor) (driver.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring the lock.
	if item := f.instances.Get(name); item != nil {
		return item.Value(), nil
	}

	d, err := ctor(f.cfg, f.logger.Named(name), f.tracer)
	if err != nil {
		return nil, fmt.Errorf("building driver [%s]: %w", name, err)
	}

	if f.resultCache != nil {
		d = driver.NewCached(d, f.resultCache, f.logger)
	}

	f.instances.Set(name, d, ttlcache.DefaultTTL)
	RecordDriverCreation(name)
	f.logger.Debug("driver built", zap.String("driver", name))
	return d, nil
}

// Parse resolves the named driver and parses the input with it. An empty
// driver name uses the default, an unset level defaults to page.
func (f *Factory) Parse(ctx context.Context, in driver.Input, driverName string, level document.Level, opts any) (*document.Document, error) {
	d, err := f.Driver(driverName)
	if err != nil {
		return nil, err
	}
	if !level.Valid() {
		level = document.LevelPage
	}
	return d.Parse(ctx, in, level, opts)
}

// Close releases every cached driver instance.
func (f *Factory) Close() {
	f.instances.DeleteAll()
	f.instances.Stop()
	if f.resultCache != nil {
		f.resultCache.Stop()
	}
}
