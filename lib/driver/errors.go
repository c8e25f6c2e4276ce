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
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Kind classifies a parse failure. Every error that escapes a driver is an
// *Error carrying exactly one Kind, so callers can branch on failure class
// without knowing which backend produced it.
type Kind int

const (
	// KindParsing is the catch-all for backend conversion failures.
	KindParsing Kind = iota
	// KindValidation flags a request the driver cannot serve, such as an
	// unsupported extraction level. Raised before any I/O happens.
	KindValidation
	// KindFileNotFound flags a missing input file or a 404 on a remote one.
	KindFileNotFound
	// KindAuthentication flags rejected credentials (HTTP 401/403).
	KindAuthentication
	// KindRateLimit flags backend throttling (HTTP 429), optionally with a
	// retry-after hint.
	KindRateLimit
	// KindQuotaExceeded flags an exhausted account quota (HTTP 402).
	KindQuotaExceeded
	// KindInputValidation flags input the backend rejected as unprocessable
	// (HTTP 422).
	KindInputValidation
)

var kindNames = map[Kind]string{
	KindParsing:         "parsing",
	KindValidation:      "validation",
	KindFileNotFound:    "file_not_found",
	KindAuthentication:  "authentication",
	KindRateLimit:       "rate_limit",
	KindQuotaExceeded:   "quota_exceeded",
	KindInputValidation: "input_validation",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single error type drivers surface. Driver names the backend
// that failed, Details carries optional backend-specific context, and Err
// preserves the underlying cause for errors.Is/As chains.
type Error struct {
	Kind       Kind
	Driver     string
	Message    string
	RetryAfter time.Duration
	Details    map[string]any
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Driver != "" {
		return fmt.Sprintf("%s: %s: %s", e.Driver, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports a request the driver refuses to serve.
func NewValidationError(driverName, message string) *Error {
	return &Error{Kind: KindValidation, Driver: driverName, Message: message}
}

// NewFileNotFoundError reports a missing input.
func NewFileNotFoundError(driverName, message string, cause error) *Error {
	return &Error{Kind: KindFileNotFound, Driver: driverName, Message: message, Err: cause}
}

// NewAuthenticationError reports rejected credentials.
func NewAuthenticationError(driverName, message string, cause error) *Error {
	return &Error{Kind: KindAuthentication, Driver: driverName, Message: message, Err: cause}
}

// NewRateLimitError reports backend throttling. retryAfter may be zero when
// the backend gave no hint.
func NewRateLimitError(driverName, message string, retryAfter time.Duration, cause error) *Error {
	return &Error{Kind: KindRateLimit, Driver: driverName, Message: message, RetryAfter: retryAfter, Err: cause}
}

// NewQuotaExceededError reports an exhausted account quota.
func NewQuotaExceededError(driverName, message string, cause error) *Error {
	return &Error{Kind: KindQuotaExceeded, Driver: driverName, Message: message, Err: cause}
}

// NewInputValidationError reports input the backend rejected.
func NewInputValidationError(driverName, message string, cause error) *Error {
	return &Error{Kind: KindInputValidation, Driver: driverName, Message: message, Err: cause}
}

// NewParsingError reports a backend conversion failure.
func NewParsingError(driverName, message string, cause error) *Error {
	return &Error{Kind: KindParsing, Driver: driverName, Message: message, Err: cause}
}

// AsError extracts the typed error from err's chain.
func AsError(err error) (*Error, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// KindOf returns the kind of err, defaulting to KindParsing for untyped
// errors.
func KindOf(err error) Kind {
	if typed, ok := AsError(err); ok {
		return typed.Kind
	}
	return KindParsing
}

// Classify normalizes an arbitrary error escaping a driver into an *Error.
// Already-typed errors pass through unchanged, so classification is
// idempotent. Missing-file errors from the filesystem become
// KindFileNotFound; everything else is a parsing failure.
func Classify(driverName string, err error) *Error {
	if typed, ok := AsError(err); ok {
		return typed
	}
	if errors.Is(err, fs.ErrNotExist) {
		return NewFileNotFoundError(driverName, err.Error(), err)
	}
	return NewParsingError(driverName, err.Error(), err)
}

// Trips reports whether err should open a backend's circuit breaker. Only
// failures that poison every subsequent call to the same backend qualify:
// bad credentials, exhausted quota, and throttling. Per-file failures never
// trip.
func Trips(err error) bool {
	switch KindOf(err) {
	case KindAuthentication, KindQuotaExceeded, KindRateLimit:
		return true
	default:
		return false
	}
}
