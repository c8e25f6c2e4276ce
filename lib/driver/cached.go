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

package driver

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ParseCacheTTL is the default TTL for cached parse results.
const ParseCacheTTL = 5 * time.Minute

// Cached wraps a driver with a content-addressed result cache. Identical
// requests (same driver, input, level and options) within the TTL reuse the
// previous document, and concurrent identical requests collapse into one
// backend call via singleflight.
type Cached struct {
	driver  Driver
	cache   *ttlcache.Cache[string, *document.Document]
	sfGroup *singleflight.Group
	logger  *zap.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
	sfHits atomic.Uint64
}

// NewCached wraps a driver with caching. The cache is owned by the caller
// so multiple drivers can share one with a common capacity bound.
func NewCached(d Driver, cache *ttlcache.Cache[string, *document.Document], logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		driver:  d,
		cache:   cache,
		sfGroup: &singleflight.Group{},
		logger:  logger.Named("cache"),
	}
}

// Name implements Driver.
func (c *Cached) Name() string { return c.driver.Name() }

// SupportedLevels implements Driver.
func (c *Cached) SupportedLevels() []document.Level { return c.driver.SupportedLevels() }

// Close releases the wrapped driver's resources, if it holds any.
func (c *Cached) Close() error {
	if closer, ok := c.driver.(Closer); ok {
		return closer.Close()
	}
	return nil
}

// Parse implements Driver with caching. Only successful parses are cached;
// failures always reach the backend again.
func (c *Cached) Parse(ctx context.Context, in Input, level document.Level, opts any) (*document.Document, error) {
	key := c.cacheKey(in, level, opts)

	if item := c.cache.Get(key); item != nil {
		c.hits.Add(1)
		c.logger.Debug("parse cache hit",
			zap.String("driver", c.driver.Name()),
			zap.String("file", in.Ref()))
		return item.Value(), nil
	}

	result, err, shared := c.sfGroup.Do(key, func() (any, error) {
		c.misses.Add(1)
		doc, err := c.driver.Parse(ctx, in, level, opts)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, doc, ttlcache.DefaultTTL)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.sfHits.Add(1)
		c.logger.Debug("singleflight hit for parse request",
			zap.String("driver", c.driver.Name()),
			zap.String("file", in.Ref()))
	}
	return result.(*document.Document), nil
}

// Stats reports cache hit, miss and singleflight-share counts.
func (c *Cached) Stats() (hits, misses, sfHits uint64) {
	return c.hits.Load(), c.misses.Load(), c.sfHits.Load()
}

// cacheKey derives a key from the driver name, input identity, level and
// options. Byte inputs hash their content; path and URL inputs hash the
// reference.
func (c *Cached) cacheKey(in Input, level document.Level, opts any) string {
	h := xxhash.New()

	_, _ = h.WriteString(c.driver.Name())
	_, _ = h.WriteString("|l:")
	_, _ = h.WriteString(level.String())
	_, _ = h.WriteString("|f:")
	if in.Data != nil {
		_, _ = h.Write(in.Data)
	} else {
		_, _ = h.WriteString(in.Ref())
	}
	if opts != nil {
		_, _ = h.WriteString("|o:")
		if encoded, err := sonic.Marshal(opts); err == nil {
			_, _ = h.Write(encoded)
		}
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h.Sum64())
	return string(buf[:])
}
