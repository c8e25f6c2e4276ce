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
	"sync"

	"github.com/OneOffTech/parxy-sub000/lib/driver"
)

// CircuitBreakerState tracks, per driver, the first failure that makes
// every subsequent call to that driver pointless within one batch run. A
// fresh state is created per run and discarded with it; nothing persists
// across batches.
//
// Only authentication, quota and rate-limit failures trip a breaker:
// they poison the whole backend, unlike per-file failures such as a
// missing input. The first trip-worthy error recorded for a driver wins;
// later ones are ignored so every result for that driver carries the same
// root cause.
type CircuitBreakerState struct {
	mu      sync.Mutex
	tripped map[string]error
}

// NewCircuitBreakerState returns an empty, closed-everywhere state.
func NewCircuitBreakerState() *CircuitBreakerState {
	return &CircuitBreakerState{tripped: make(map[string]error)}
}

// RecordFailure registers err against the driver. Non-trip errors and
// repeat trips are ignored. Returns true when this call opened the breaker.
func (s *CircuitBreakerState) RecordFailure(driverName string, err error) bool {
	if err == nil || !driver.Trips(err) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, open := s.tripped[driverName]; open {
		return false
	}
	s.tripped[driverName] = err
	return true
}

// IsOpen reports whether the driver's breaker has tripped.
func (s *CircuitBreakerState) IsOpen(driverName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, open := s.tripped[driverName]
	return open
}

// TripError returns the error that opened the driver's breaker, or nil
// when it is closed.
func (s *CircuitBreakerState) TripError(driverName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tripped[driverName]
}

// OpenDrivers lists the drivers whose breakers have tripped.
func (s *CircuitBreakerState) OpenDrivers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tripped))
	for name := range s.tripped {
		names = append(names, name)
	}
	return names
}
