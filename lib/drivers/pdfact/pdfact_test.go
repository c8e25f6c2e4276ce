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

package pdfact

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"fonts": [{"id": "f1", "name": "cmr10", "is-bold": true, "is-italic": false}],
	"colors": [{"id": "c1", "r": 0, "g": 0, "b": 0}],
	"paragraphs": [
		{"paragraph": {
			"role": "heading",
			"text": "Introduction",
			"positions": [{"page": 1, "minX": 56.7, "minY": 700.2, "maxX": 200.1, "maxY": 712.8}],
			"color": {"id": "c1"},
			"font": {"id": "f1", "font-size": 14.3}
		}},
		{"paragraph": {
			"role": "body",
			"text": "First paragraph of the body.",
			"positions": [{"page": 1, "minX": 56.7, "minY": 650.0, "maxX": 500.0, "maxY": 690.0}],
			"color": {"id": "c1"},
			"font": {"id": "f1", "font-size": 10.9}
		}},
		{"paragraph": {
			"role": "body",
			"text": "Second page text.",
			"positions": [{"page": 2, "minX": 56.7, "minY": 700.0, "maxX": 500.0, "maxY": 712.0}],
			"color": {"id": "c1"},
			"font": {"id": "f1", "font-size": 10.9}
		}}
	]
}`

func newTestService(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Driver) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	d, err := New(server.URL, server.Client(), nil, nil)
	require.NoError(t, err)
	return server, d
}

func TestParseBuildsDocument(t *testing.T) {
	var gotBody map[string]any
	_, d := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/pdf/parse", r.URL.Path)
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &gotBody))
		_, _ = w.Write([]byte(sampleResponse))
	})

	doc, err := d.Parse(context.Background(), driver.FromBytes("paper.pdf", []byte("%PDF-1.7")), document.LevelBlock, nil)
	require.NoError(t, err)
	require.Equal(t, "paragraph", gotBody["unit"])

	require.Len(t, doc.Pages, 2)
	require.Equal(t, 1, doc.Pages[0].Number)
	require.Equal(t, "Introduction\nFirst paragraph of the body.", doc.Pages[0].Text)
	require.Len(t, doc.Pages[0].Blocks, 2)

	heading := doc.Pages[0].Blocks[0].(*document.TextBlock)
	require.Equal(t, "heading", heading.Role)
	require.Equal(t, "Introduction", heading.Text)
	require.Equal(t, "cmr10", heading.Style.FontName)
	require.Equal(t, "bold", heading.Style.FontStyle)
	require.Equal(t, "#000000", heading.Style.Color)
	require.InDelta(t, 14.3, heading.Style.FontSize, 0.001)
	require.InDelta(t, 56.7, heading.BBox.X0, 0.001)

	require.Equal(t, "Second page text.", doc.Pages[1].Text)
}

func TestParsePageLevelOmitsBlocks(t *testing.T) {
	_, d := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	})

	doc, err := d.Parse(context.Background(), driver.FromBytes("paper.pdf", []byte("%PDF-1.7")), document.LevelPage, nil)
	require.NoError(t, err)
	require.Nil(t, doc.Pages[0].Blocks)
	require.NotEmpty(t, doc.Pages[0].Text)
}

func TestParseLineLevelEstimatesLines(t *testing.T) {
	_, d := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	})

	doc, err := d.Parse(context.Background(), driver.FromBytes("paper.pdf", []byte("%PDF-1.7")), document.LevelLine, nil)
	require.NoError(t, err)

	heading := doc.Pages[0].Blocks[0].(*document.TextBlock)
	require.Len(t, heading.Lines, 1)
	require.Equal(t, "Introduction", heading.Lines[0].Text)
	require.NotNil(t, heading.Lines[0].BBox)

	// Block-level requests keep lines unmaterialized.
	doc, err = d.Parse(context.Background(), driver.FromBytes("paper.pdf", []byte("%PDF-1.7")), document.LevelBlock, nil)
	require.NoError(t, err)
	require.Nil(t, doc.Pages[0].Blocks[0].(*document.TextBlock).Lines)
}

func TestParseSendsRoles(t *testing.T) {
	var gotBody map[string]any
	_, d := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &gotBody))
		_, _ = w.Write([]byte(`{"paragraphs": []}`))
	})

	_, err := d.Parse(context.Background(), driver.FromBytes("paper.pdf", []byte("%PDF-1.7")), document.LevelPage, &Options{Roles: []string{"heading", "body"}})
	require.NoError(t, err)
	require.Equal(t, []any{"heading", "body"}, gotBody["roles"])
}

func TestParseRejectsUnsupportedLevel(t *testing.T) {
	_, d := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an unsupported level")
	})

	_, err := d.Parse(context.Background(), driver.FromBytes("paper.pdf", []byte("%PDF-1.7")), document.LevelCharacter, nil)
	require.Error(t, err)
	require.Equal(t, driver.KindValidation, driver.KindOf(err))
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   driver.Kind
	}{
		{http.StatusUnauthorized, driver.KindAuthentication},
		{http.StatusForbidden, driver.KindAuthentication},
		{http.StatusPaymentRequired, driver.KindQuotaExceeded},
		{http.StatusUnprocessableEntity, driver.KindInputValidation},
		{http.StatusTooManyRequests, driver.KindRateLimit},
		{http.StatusInternalServerError, driver.KindParsing},
	}

	for _, tc := range cases {
		_, d := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		})

		_, err := d.Parse(context.Background(), driver.FromBytes("paper.pdf", []byte("%PDF-1.7")), document.LevelPage, nil)
		require.Error(t, err, "status %d", tc.status)
		require.Equal(t, tc.kind, driver.KindOf(err), "status %d", tc.status)
	}
}

func TestRateLimitCarriesRetryAfter(t *testing.T) {
	_, d := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := d.Parse(context.Background(), driver.FromBytes("paper.pdf", []byte("%PDF-1.7")), document.LevelPage, nil)
	require.Error(t, err)

	typed, ok := driver.AsError(err)
	require.True(t, ok)
	require.Equal(t, driver.KindRateLimit, typed.Kind)
	require.Equal(t, 30*time.Second, typed.RetryAfter)
}

func TestURLInputIsForwardedNotDownloaded(t *testing.T) {
	var gotBody map[string]any
	_, d := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(payload, &gotBody))
		_, _ = w.Write([]byte(`{"paragraphs": []}`))
	})

	_, err := d.Parse(context.Background(), driver.FromURL("https://example.com/paper.pdf"), document.LevelPage, nil)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/paper.pdf", gotBody["url"])
	require.Nil(t, gotBody["data"])
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("", nil, nil, nil)
	require.Error(t, err)
}
