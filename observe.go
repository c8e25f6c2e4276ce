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
	"time"

	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/OneOffTech/parxy-sub000/lib/trace"
	"go.uber.org/zap"
)

// NewTracer returns the standard tracer: spans are logged through zap and
// parse outcomes feed the Prometheus collectors.
func NewTracer(logger *zap.Logger) trace.Tracer {
	return &promTracer{delegate: trace.NewLogging(logger)}
}

// promTracer layers Prometheus recording on top of the logging tracer. It
// recognizes the span and counter names emitted by the driver machinery and
// ignores everything else.
type promTracer struct {
	delegate trace.Tracer
}

func (t *promTracer) StartSpan(name string, attrs ...trace.Attribute) trace.Span {
	span := &promSpan{
		delegate: t.delegate.StartSpan(name, attrs...),
		name:     name,
		started:  time.Now(),
	}
	for _, attr := range attrs {
		span.record(attr)
	}
	return span
}

func (t *promTracer) Count(name string, attrs ...trace.Attribute) {
	switch name {
	case "driver.parse.success":
		RecordParse(attrString(attrs, "driver"))
	case "driver.parse.failure":
		RecordParse(attrString(attrs, "driver"))
		RecordParseFailure(attrString(attrs, "driver"), attrString(attrs, "kind"))
	}
	t.delegate.Count(name, attrs...)
}

type promSpan struct {
	delegate trace.Span
	name     string
	started  time.Time
	driver   string
	level    string
	err      error
}

func (s *promSpan) SetAttribute(attr trace.Attribute) {
	s.record(attr)
	s.delegate.SetAttribute(attr)
}

func (s *promSpan) record(attr trace.Attribute) {
	value, ok := attr.Value.(string)
	if !ok {
		return
	}
	switch attr.Key {
	case "driver":
		s.driver = value
	case "level":
		s.level = value
	}
}

func (s *promSpan) RecordError(err error) {
	s.err = err
	s.delegate.RecordError(err)
}

func (s *promSpan) End() {
	if s.name == "driver.parse" && s.err == nil {
		RecordParseDuration(s.driver, s.level, time.Since(s.started).Seconds())
	}
	s.delegate.End()
}

func attrString(attrs []trace.Attribute, key string) string {
	for _, attr := range attrs {
		if attr.Key == key {
			if v, ok := attr.Value.(string); ok {
				return v
			}
		}
	}
	return ""
}

// kindLabel formats an error's failure class for metric labels.
func kindLabel(err error) string {
	return driver.KindOf(err).String()
}
