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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxRemoteSize caps how much is read from a remote file.
const maxRemoteSize = 512 << 20

// Input identifies the file to parse: a local path, an HTTP(S) URL, or
// in-memory bytes. Exactly one source is set; the zero value is invalid.
type Input struct {
	// Path is a local filesystem path.
	Path string `json:"path,omitempty"`
	// URL is an http:// or https:// location.
	URL string `json:"url,omitempty"`
	// Data holds in-memory file content.
	Data []byte `json:"-"`
	// Name is a display name for byte inputs.
	Name string `json:"name,omitempty"`
}

// FromPath builds an input backed by a local file. Strings that parse as
// http(s) URLs are treated as remote files instead, so callers can pass
// either form through one entry point.
func FromPath(pathOrURL string) Input {
	if u, err := url.Parse(pathOrURL); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return Input{URL: pathOrURL}
	}
	return Input{Path: pathOrURL}
}

// FromURL builds an input backed by a remote file.
func FromURL(rawURL string) Input {
	return Input{URL: rawURL}
}

// FromBytes builds an input backed by in-memory content.
func FromBytes(name string, data []byte) Input {
	return Input{Name: name, Data: data}
}

// Ref returns a human-readable identifier for the input, used in results
// and log fields.
func (in Input) Ref() string {
	switch {
	case in.Path != "":
		return in.Path
	case in.URL != "":
		return in.URL
	case in.Name != "":
		return in.Name
	default:
		return "<bytes>"
	}
}

// Filename returns the base name of the input, best effort.
func (in Input) Filename() string {
	switch {
	case in.Path != "":
		return filepath.Base(in.Path)
	case in.URL != "":
		if u, err := url.Parse(in.URL); err == nil {
			if base := filepath.Base(u.Path); base != "." && base != "/" {
				return base
			}
		}
		return ""
	default:
		return in.Name
	}
}

// Valid reports whether exactly one source is set.
func (in Input) Valid() bool {
	sources := 0
	if in.Path != "" {
		sources++
	}
	if in.URL != "" {
		sources++
	}
	if in.Data != nil {
		sources++
	}
	return sources == 1
}

// Resolve materializes the input's content. Remote failures are mapped onto
// the failure taxonomy: 401/403 become authentication errors, 404 becomes a
// missing file. driverName tags the resulting errors; client may be nil to
// use a default with a sane timeout.
func (in Input) Resolve(ctx context.Context, client *http.Client, driverName string) ([]byte, error) {
	switch {
	case in.Data != nil:
		return in.Data, nil
	case in.Path != "":
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return nil, Classify(driverName, err)
		}
		return data, nil
	case in.URL != "":
		return in.fetch(ctx, client, driverName)
	default:
		return nil, NewValidationError(driverName, "no input source provided")
	}
}

func (in Input) fetch(ctx context.Context, client *http.Client, driverName string) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.URL, nil)
	if err != nil {
		return nil, NewValidationError(driverName, fmt.Sprintf("invalid url %q: %v", in.URL, err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewParsingError(driverName, fmt.Sprintf("fetching %s: %v", in.URL, err), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewAuthenticationError(driverName, fmt.Sprintf("access to %s denied (%s)", in.URL, resp.Status), nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewFileNotFoundError(driverName, fmt.Sprintf("%s not found", in.URL), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, NewParsingError(driverName, fmt.Sprintf("fetching %s: unexpected status %s", in.URL, resp.Status), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return nil, NewParsingError(driverName, fmt.Sprintf("reading %s: %v", in.URL, err), err)
	}
	return data, nil
}

// ParseRetryAfter interprets a Retry-After header value as a duration.
// Returns zero when the header is absent or malformed.
func ParseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := time.ParseDuration(header + "s"); err == nil && secs > 0 {
		return secs
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
