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
	"sync/atomic"
	"testing"

	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/OneOffTech/parxy-sub000/lib/trace"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDriver is a scriptable in-memory backend for factory and batch tests.
type fakeDriver struct {
	name   string
	levels []document.Level
	calls  atomic.Int64
	closed atomic.Bool

	// fail decides per input reference whether the call errors.
	fail func(ref string) error
}

func newFakeDriver(name string) *fakeDriver {
	return &fakeDriver{
		name:   name,
		levels: []document.Level{document.LevelPage, document.LevelBlock, document.LevelLine, document.LevelSpan, document.LevelCharacter},
	}
}

func (d *fakeDriver) Name() string { return d.name }

func (d *fakeDriver) SupportedLevels() []document.Level { return d.levels }

func (d *fakeDriver) Parse(_ context.Context, in driver.Input, level document.Level, _ any) (*document.Document, error) {
	d.calls.Add(1)
	if d.fail != nil {
		if err := d.fail(in.Ref()); err != nil {
			return nil, err
		}
	}
	doc := &document.Document{
		Filename: in.Filename(),
		Pages:    []document.Page{{Number: 1, Text: "content of " + in.Ref()}},
	}
	if level.Covers(document.LevelBlock) {
		doc.Pages[0].Blocks = []document.Block{
			document.NewTextBlock(document.BlockBase{Page: 1}, doc.Pages[0].Text),
		}
	}
	return doc, nil
}

func (d *fakeDriver) Close() error {
	d.closed.Store(true)
	return nil
}

func constructorFor(d driver.Driver) DriverConstructor {
	return func(Config, *zap.Logger, trace.Tracer) (driver.Driver, error) {
		return d, nil
	}
}

func newTestFactory(t *testing.T, drivers ...driver.Driver) *Factory {
	t.Helper()
	constructors := make(map[string]DriverConstructor, len(drivers))
	for _, d := range drivers {
		constructors[d.Name()] = constructorFor(d)
	}
	cfg := Config{}
	if len(drivers) > 0 {
		cfg.DefaultDriver = drivers[0].Name()
	}
	f := NewFactory(cfg, WithDrivers(constructors))
	t.Cleanup(f.Close)
	return f
}

func TestFactoryResolvesByName(t *testing.T) {
	fake := newFakeDriver("fake")
	f := newTestFactory(t, fake)

	d, err := f.Driver("fake")
	require.NoError(t, err)
	require.Equal(t, "fake", d.Name())
}

func TestFactoryEmptyNameUsesDefault(t *testing.T) {
	fake := newFakeDriver("fake")
	f := newTestFactory(t, fake)

	d, err := f.Driver("")
	require.NoError(t, err)
	require.Equal(t, "fake", d.Name())
	require.Equal(t, "fake", f.DefaultDriverName())
}

func TestFactoryUnknownDriver(t *testing.T) {
	f := newTestFactory(t, newFakeDriver("fake"))

	_, err := f.Driver("nonexistent")
	require.Error(t, err)
	require.Contains(t, err.Error(), "driver [nonexistent] not supported")
	require.Contains(t, err.Error(), "fake")
}

func TestFactoryReusesInstances(t *testing.T) {
	fake := newFakeDriver("fake")
	var builds atomic.Int64
	f := NewFactory(Config{DefaultDriver: "fake"}, WithDrivers(map[string]DriverConstructor{
		"fake": func(Config, *zap.Logger, trace.Tracer) (driver.Driver, error) {
			builds.Add(1)
			return fake, nil
		},
	}))
	t.Cleanup(f.Close)

	first, err := f.Driver("fake")
	require.NoError(t, err)
	second, err := f.Driver("fake")
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, int64(1), builds.Load())
}

func TestFactoryExtend(t *testing.T) {
	f := newTestFactory(t, newFakeDriver("fake"))

	custom := newFakeDriver("custom")
	require.NoError(t, f.Extend("custom", constructorFor(custom)))

	d, err := f.Driver("custom")
	require.NoError(t, err)
	require.Equal(t, "custom", d.Name())
	require.Contains(t, f.Drivers(), "custom")
}

func TestFactoryExtendDuplicateKeepsFirst(t *testing.T) {
	first := newFakeDriver("dup")
	f := newTestFactory(t, newFakeDriver("fake"))
	require.NoError(t, f.Extend("dup", constructorFor(first)))

	err := f.Extend("dup", constructorFor(newFakeDriver("dup")))
	require.Error(t, err)
	require.Contains(t, err.Error(), "driver [dup] already registered")

	d, err := f.Driver("dup")
	require.NoError(t, err)
	require.Same(t, first, d)
}

func TestFactoryCloseClosesDrivers(t *testing.T) {
	fake := newFakeDriver("fake")
	f := newTestFactory(t, fake)

	_, err := f.Driver("fake")
	require.NoError(t, err)

	f.Close()
	require.True(t, fake.closed.Load())
}

func TestFactoryParseDefaultsLevelToPage(t *testing.T) {
	fake := newFakeDriver("fake")
	f := newTestFactory(t, fake)

	doc, err := f.Parse(context.Background(), driver.FromBytes("a.txt", []byte("x")), "", 0, nil)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	// Page-level parse must not materialize blocks.
	require.Nil(t, doc.Pages[0].Blocks)
}

func TestFactoryResultCacheWrapsDrivers(t *testing.T) {
	fake := newFakeDriver("fake")
	cfg := DefaultConfig()
	cfg.DefaultDriver = "fake"
	f := NewFactory(cfg, WithDrivers(map[string]DriverConstructor{"fake": constructorFor(fake)}))
	t.Cleanup(f.Close)

	in := driver.FromBytes("a.txt", []byte("same bytes"))
	_, err := f.Parse(context.Background(), in, "fake", document.LevelPage, nil)
	require.NoError(t, err)
	_, err = f.Parse(context.Background(), in, "fake", document.LevelPage, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), fake.calls.Load())
}

func TestDefaultFactoryAccessor(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	SetDefault(Config{DefaultDriver: "shared"})
	require.NoError(t, Extend("shared", constructorFor(newFakeDriver("shared"))))

	doc, err := Parse(context.Background(), driver.FromBytes("a.txt", []byte("x")), "", document.LevelPage, nil)
	require.NoError(t, err)
	require.False(t, doc.IsEmpty())
	require.Equal(t, "shared", DefaultDriverName())
	require.Contains(t, Drivers(), "shared")

	// Reset discards the registration.
	Reset()
	SetDefault(Config{DefaultDriver: "shared"})
	_, err = Driver("shared")
	require.Error(t, err)
}
