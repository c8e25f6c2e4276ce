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
	"runtime"
	"time"
)

// FallbackDriverName is the driver used when no default is configured.
const FallbackDriverName = "pdfcpu"

// Config holds the runtime configuration for a Factory. The CLI populates
// it from flags, config file and PARXY_* environment variables; library
// consumers fill it directly. The zero value is usable after Normalize.
type Config struct {
	// DefaultDriver is the driver resolved for empty driver names.
	DefaultDriver string `json:"default_driver" mapstructure:"default_driver"`

	// Workers bounds batch concurrency. Zero means one worker per CPU.
	Workers int `json:"workers" mapstructure:"workers"`

	// CacheTTL bounds how long parse results are reused. Zero disables
	// result caching.
	CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl"`

	// CacheCapacity bounds the number of cached documents.
	CacheCapacity uint64 `json:"cache_capacity" mapstructure:"cache_capacity"`

	// HTTPTimeout bounds remote file fetches and backend calls.
	HTTPTimeout time.Duration `json:"http_timeout" mapstructure:"http_timeout"`

	// Pdfact configures the pdfact remote backend.
	Pdfact PdfactConfig `json:"pdfact" mapstructure:"pdfact"`
}

// PdfactConfig configures the pdfact remote backend.
type PdfactConfig struct {
	// BaseURL is the pdfact service endpoint.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// Timeout bounds a single pdfact request. Zero falls back to the
	// global HTTP timeout.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultPdfactBaseURL is where a locally run pdfact service listens.
const DefaultPdfactBaseURL = "http://localhost:4567/"

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		DefaultDriver: FallbackDriverName,
		Workers:       runtime.GOMAXPROCS(0),
		CacheTTL:      5 * time.Minute,
		CacheCapacity: 128,
		HTTPTimeout:   2 * time.Minute,
		Pdfact: PdfactConfig{
			BaseURL: DefaultPdfactBaseURL,
		},
	}
}

// Normalize fills unset fields with defaults and returns the config.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.DefaultDriver == "" {
		c.DefaultDriver = def.DefaultDriver
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.CacheCapacity == 0 {
		c.CacheCapacity = def.CacheCapacity
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = def.HTTPTimeout
	}
	if c.Pdfact.BaseURL == "" {
		c.Pdfact.BaseURL = def.Pdfact.BaseURL
	}
	if c.Pdfact.Timeout <= 0 {
		c.Pdfact.Timeout = c.HTTPTimeout
	}
	return c
}
