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

package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNopTracerIsSafe(t *testing.T) {
	tr := Nop()
	span := tr.StartSpan("noop", String("k", "v"))
	span.SetAttribute(Int("n", 1))
	span.RecordError(errors.New("ignored"))
	span.End()
	tr.Count("noop.count")
}

func TestLoggingTracerEmitsSpanOnEnd(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tr := NewLogging(zap.New(core))

	span := tr.StartSpan("driver.parse", String("driver", "pdfcpu"))
	span.SetAttribute(String("level", "page"))
	span.End()

	entries := logs.FilterMessage("span completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "driver.parse", fields["span"])
	require.Equal(t, "pdfcpu", fields["driver"])
	require.Equal(t, "page", fields["level"])
	require.NotEmpty(t, fields["span_id"])
}

func TestLoggingTracerWarnsOnFailedSpan(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tr := NewLogging(zap.New(core))

	span := tr.StartSpan("driver.parse")
	span.RecordError(errors.New("backend exploded"))
	span.End()

	entries := logs.FilterMessage("span failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.WarnLevel, entries[0].Level)
	require.Equal(t, "backend exploded", entries[0].ContextMap()["error"])
}

func TestLoggingTracerCount(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tr := NewLogging(zap.New(core))

	tr.Count("driver.parse.success", String("driver", "pdfact"))

	entries := logs.FilterMessage("count").All()
	require.Len(t, entries, 1)
	require.Equal(t, "driver.parse.success", entries[0].ContextMap()["name"])
}

func TestNewLoggingNilLogger(t *testing.T) {
	tr := NewLogging(nil)
	require.NotNil(t, tr)
	tr.StartSpan("ok").End()
}
