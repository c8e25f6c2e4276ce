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

// Package driver defines the contract every parsing backend satisfies and
// the shared machinery around it: input resolution, level validation, error
// normalization, span timing, and a content-addressed result cache. Backend
// adapters implement only the backend-specific conversion to the canonical
// document model.
package driver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/trace"
	"go.uber.org/zap"
)

// ParsingMetadataElapsedMS is the parsing metadata key recording wall-clock
// parse time in milliseconds.
const ParsingMetadataElapsedMS = "elapsed_ms"

// Driver is the contract every parsing backend satisfies.
type Driver interface {
	// Name returns the registry name of the backend.
	Name() string
	// SupportedLevels returns the extraction levels the backend can
	// actually produce.
	SupportedLevels() []document.Level
	// Parse converts the input into the canonical document model,
	// materialized down to the requested level. opts is a backend-specific
	// options value; each adapter narrows and validates it itself. Errors
	// are always *Error values.
	Parse(ctx context.Context, in Input, level document.Level, opts any) (*document.Document, error)
}

// Closer is implemented by drivers holding resources that outlive a single
// parse. The registry closes evicted instances.
type Closer interface {
	Close() error
}

// ParseFunc is the backend-specific conversion a Base wraps. It receives the
// already-resolved file content; shared validation and error normalization
// have run by the time it is called.
type ParseFunc func(ctx context.Context, data []byte, in Input, level document.Level, opts any) (*document.Document, error)

// Base supplies the shared half of the Driver contract. Adapters embed or
// wrap one, providing their name, supported levels, and a ParseFunc.
type Base struct {
	name   string
	levels []document.Level
	parse  ParseFunc
	logger *zap.Logger
	tracer trace.Tracer
	client *http.Client

	skipURLResolve bool
}

// BaseOption customizes a Base.
type BaseOption func(*Base)

// WithLogger sets the logger; defaults to a no-op logger.
func WithLogger(logger *zap.Logger) BaseOption {
	return func(b *Base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithTracer sets the tracer; defaults to the no-op tracer.
func WithTracer(tracer trace.Tracer) BaseOption {
	return func(b *Base) {
		if tracer != nil {
			b.tracer = tracer
		}
	}
}

// WithHTTPClient sets the client used to resolve URL inputs.
func WithHTTPClient(client *http.Client) BaseOption {
	return func(b *Base) {
		if client != nil {
			b.client = client
		}
	}
}

// WithoutURLResolution leaves URL inputs unresolved: the ParseFunc receives
// nil data and the input's URL. For backends that fetch the file
// themselves, such as remote services taking a URL.
func WithoutURLResolution() BaseOption {
	return func(b *Base) {
		b.skipURLResolve = true
	}
}

// NewBase builds the shared driver machinery for a named backend.
func NewBase(name string, levels []document.Level, parse ParseFunc, opts ...BaseOption) *Base {
	b := &Base{
		name:   name,
		levels: levels,
		parse:  parse,
		logger: zap.NewNop(),
		tracer: trace.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Named(name)
	return b
}

// Name implements Driver.
func (b *Base) Name() string { return b.name }

// SupportedLevels implements Driver.
func (b *Base) SupportedLevels() []document.Level {
	levels := make([]document.Level, len(b.levels))
	copy(levels, b.levels)
	return levels
}

// Supports reports whether the backend can produce the given level.
func (b *Base) Supports(level document.Level) bool {
	for _, l := range b.levels {
		if l == level {
			return true
		}
	}
	return false
}

// Parse implements Driver. The level is validated before any I/O, the input
// is resolved (local read or remote fetch), the adapter's ParseFunc runs,
// and any failure is normalized into a typed *Error. Elapsed time is
// recorded in the document's parsing metadata.
func (b *Base) Parse(ctx context.Context, in Input, level document.Level, opts any) (doc *document.Document, err error) {
	if !b.Supports(level) {
		return nil, NewValidationError(b.name, fmt.Sprintf(
			"the level is not supported, expected one of [%s], received %q",
			levelList(b.levels), level))
	}

	span := b.tracer.StartSpan("driver.parse",
		trace.String("driver", b.name),
		trace.String("file", in.Ref()),
		trace.String("level", level.String()),
	)
	defer span.End()

	started := time.Now()
	defer func() {
		if err != nil {
			err = Classify(b.name, err)
			span.RecordError(err)
			b.tracer.Count("driver.parse.failure",
				trace.String("driver", b.name),
				trace.String("kind", KindOf(err).String()))
			b.logger.Warn("parse failed",
				zap.String("file", in.Ref()),
				zap.String("level", level.String()),
				zap.Error(err))
			return
		}
		elapsed := time.Since(started)
		doc.SetParsingMetadata(ParsingMetadataElapsedMS, elapsed.Milliseconds())
		b.tracer.Count("driver.parse.success", trace.String("driver", b.name))
		b.logger.Debug("parse completed",
			zap.String("file", in.Ref()),
			zap.String("level", level.String()),
			zap.Int("pages", len(doc.Pages)),
			zap.Duration("elapsed", elapsed))
	}()

	var data []byte
	if !b.skipURLResolve || in.URL == "" {
		data, err = in.Resolve(ctx, b.client, b.name)
		if err != nil {
			return nil, err
		}
	}

	doc, err = b.parse(ctx, data, in, level, opts)
	if err != nil {
		return nil, err
	}
	if doc.Filename == "" {
		doc.Filename = in.Filename()
	}
	return doc, nil
}

func levelList(levels []document.Level) string {
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = l.String()
	}
	return strings.Join(names, ", ")
}
