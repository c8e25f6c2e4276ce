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

import "github.com/prometheus/client_golang/prometheus"

var (
	parseOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oneofftech",
			Subsystem: "parxy",
			Name:      "parse_ops_total",
			Help:      "The total number of parse requests.",
		},
		[]string{"driver"},
	)
	parseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oneofftech",
			Subsystem: "parxy",
			Name:      "parse_failures_total",
			Help:      "The total number of failed parse requests.",
		},
		[]string{"driver", "kind"},
	)

	parseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oneofftech",
			Subsystem: "parxy",
			Name:      "parse_duration_seconds",
			Help:      "Time taken to parse a document.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"driver", "level"},
	)

	driverCreationOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oneofftech",
			Subsystem: "parxy",
			Name:      "driver_creation_ops_total",
			Help:      "The total number of driver instantiations.",
		},
		[]string{"driver"},
	)

	breakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oneofftech",
			Subsystem: "parxy",
			Name:      "breaker_trips_total",
			Help:      "The total number of circuit breaker trips.",
		},
		[]string{"driver", "kind"},
	)
	breakerShortCircuits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oneofftech",
			Subsystem: "parxy",
			Name:      "breaker_short_circuits_total",
			Help:      "The total number of calls skipped because a breaker was open.",
		},
		[]string{"driver"},
	)

	batchTasksInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "oneofftech",
			Subsystem: "parxy",
			Name:      "batch_tasks_in_flight",
			Help:      "Number of batch tasks currently being processed.",
		},
	)

	batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "oneofftech",
			Subsystem: "parxy",
			Name:      "batch_duration_seconds",
			Help:      "Time taken to complete a batch run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)
)

func init() {
	prometheus.MustRegister(parseOps)
	prometheus.MustRegister(parseFailures)
	prometheus.MustRegister(parseDuration)
	prometheus.MustRegister(driverCreationOps)
	prometheus.MustRegister(breakerTrips)
	prometheus.MustRegister(breakerShortCircuits)
	prometheus.MustRegister(batchTasksInFlight)
	prometheus.MustRegister(batchDuration)
}

// RecordParse increments the parse request counter
func RecordParse(driverName string) {
	parseOps.WithLabelValues(driverName).Inc()
}

// RecordParseFailure increments the failed-parse counter
func RecordParseFailure(driverName, kind string) {
	parseFailures.WithLabelValues(driverName, kind).Inc()
}

// RecordParseDuration records how long a parse took
func RecordParseDuration(driverName, level string, seconds float64) {
	parseDuration.WithLabelValues(driverName, level).Observe(seconds)
}

// RecordDriverCreation increments the driver instantiation counter
func RecordDriverCreation(driverName string) {
	driverCreationOps.WithLabelValues(driverName).Inc()
}

// RecordBreakerTrip increments the breaker trip counter
func RecordBreakerTrip(driverName, kind string) {
	breakerTrips.WithLabelValues(driverName, kind).Inc()
}

// RecordBreakerShortCircuit increments the short-circuit counter
func RecordBreakerShortCircuit(driverName string) {
	breakerShortCircuits.WithLabelValues(driverName).Inc()
}

// RecordBatchDuration records how long a batch run took
func RecordBatchDuration(seconds float64) {
	batchDuration.Observe(seconds)
}
