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

// Package trace defines a narrow tracing facade for the parsing pipeline.
// Drivers and the batch engine report spans and counters through the Tracer
// interface; implementations decide where they go. The package ships a
// no-op tracer and a zap-backed one, while the root package wires counters
// into Prometheus.
package trace

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Attribute is a key/value pair attached to spans and counts.
type Attribute struct {
	Key   string
	Value any
}

// String builds a string attribute.
func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }

// Int builds an integer attribute.
func Int(key string, value int) Attribute { return Attribute{Key: key, Value: value} }

// Span is one timed operation.
type Span interface {
	// SetAttribute attaches an attribute to the span.
	SetAttribute(attr Attribute)
	// RecordError marks the span failed.
	RecordError(err error)
	// End closes the span.
	End()
}

// Tracer receives spans and counters from the pipeline.
type Tracer interface {
	// StartSpan opens a span; callers must End it.
	StartSpan(name string, attrs ...Attribute) Span
	// Count bumps a named counter.
	Count(name string, attrs ...Attribute)
}

// Nop returns a tracer that discards everything.
func Nop() Tracer { return nopTracer{} }

type nopTracer struct{}

func (nopTracer) StartSpan(string, ...Attribute) Span { return nopSpan{} }
func (nopTracer) Count(string, ...Attribute)          {}

type nopSpan struct{}

func (nopSpan) SetAttribute(Attribute) {}
func (nopSpan) RecordError(error)      {}
func (nopSpan) End()                   {}

// NewLogging returns a tracer that emits spans and counters as structured
// log entries. Useful as a default when no metrics backend is wired.
func NewLogging(logger *zap.Logger) Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggingTracer{logger: logger.Named("trace")}
}

type loggingTracer struct {
	logger *zap.Logger
}

func (t *loggingTracer) StartSpan(name string, attrs ...Attribute) Span {
	return &loggingSpan{
		logger:  t.logger,
		name:    name,
		spanID:  uuid.NewString(),
		started: time.Now(),
		attrs:   attrs,
	}
}

func (t *loggingTracer) Count(name string, attrs ...Attribute) {
	t.logger.Debug("count", append(fields(attrs), zap.String("name", name))...)
}

type loggingSpan struct {
	logger  *zap.Logger
	name    string
	spanID  string
	started time.Time
	attrs   []Attribute
	err     error
}

func (s *loggingSpan) SetAttribute(attr Attribute) {
	s.attrs = append(s.attrs, attr)
}

func (s *loggingSpan) RecordError(err error) {
	s.err = err
}

func (s *loggingSpan) End() {
	f := append(fields(s.attrs),
		zap.String("span", s.name),
		zap.String("span_id", s.spanID),
		zap.Duration("elapsed", time.Since(s.started)),
	)
	if s.err != nil {
		s.logger.Warn("span failed", append(f, zap.Error(s.err))...)
		return
	}
	s.logger.Debug("span completed", f...)
}

func fields(attrs []Attribute) []zap.Field {
	f := make([]zap.Field, 0, len(attrs)+3)
	for _, attr := range attrs {
		f = append(f, zap.Any(attr.Key, attr.Value))
	}
	return f
}
