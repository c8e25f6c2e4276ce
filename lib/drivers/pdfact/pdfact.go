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

// Package pdfact adapts the pdfact layout-analysis service as a remote
// parsing backend. pdfact returns role-annotated paragraphs with geometry,
// fonts and colors, so it serves page and block extraction natively; line
// boxes are estimated from paragraph geometry when requested. Spans and
// finer levels are not available from the service.
package pdfact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	parxy "github.com/OneOffTech/parxy-sub000"
	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/OneOffTech/parxy-sub000/lib/trace"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Name is the registry name of the backend.
const Name = "pdfact"

func init() {
	parxy.RegisterBuiltin(Name, func(cfg parxy.Config, logger *zap.Logger, tracer trace.Tracer) (driver.Driver, error) {
		return New(cfg.Pdfact.BaseURL, &http.Client{Timeout: cfg.Pdfact.Timeout}, logger, tracer)
	})
}

// SupportedLevels is what the service can produce: paragraphs with page
// grouping. Lines are estimated from paragraph geometry, not measured.
var SupportedLevels = []document.Level{
	document.LevelPage,
	document.LevelParagraph,
	document.LevelBlock,
	document.LevelLine,
}

// Options steers a pdfact request.
type Options struct {
	// Roles restricts extraction to paragraphs with these semantic roles
	// (e.g. "heading", "body"). Empty extracts everything.
	Roles []string `json:"roles,omitempty"`
}

// Driver calls a pdfact service over HTTP.
type Driver struct {
	base    *driver.Base
	baseURL string
	client  *http.Client
}

// New builds the pdfact driver against the given service URL.
func New(baseURL string, client *http.Client, logger *zap.Logger, tracer trace.Tracer) (*Driver, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("pdfact base url must not be empty")
	}
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	d := &Driver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
	d.base = driver.NewBase(Name, SupportedLevels, d.convert,
		driver.WithLogger(logger),
		driver.WithTracer(tracer),
		driver.WithHTTPClient(client),
		driver.WithoutURLResolution(),
	)
	return d, nil
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return Name }

// SupportedLevels implements driver.Driver.
func (d *Driver) SupportedLevels() []document.Level { return d.base.SupportedLevels() }

// Parse implements driver.Driver.
func (d *Driver) Parse(ctx context.Context, in driver.Input, level document.Level, opts any) (*document.Document, error) {
	return d.base.Parse(ctx, in, level, opts)
}

// request is the pdfact service request body.
type request struct {
	URL   string   `json:"url,omitempty"`
	Data  []byte   `json:"data,omitempty"`
	Unit  string   `json:"unit"`
	Roles []string `json:"roles,omitempty"`
}

// response mirrors the pdfact service response.
type response struct {
	Fonts []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		IsBold   bool   `json:"is-bold"`
		IsItalic bool   `json:"is-italic"`
	} `json:"fonts"`
	Colors []struct {
		ID string `json:"id"`
		R  int    `json:"r"`
		G  int    `json:"g"`
		B  int    `json:"b"`
	} `json:"colors"`
	Paragraphs []struct {
		Paragraph struct {
			Role      string `json:"role"`
			Text      string `json:"text"`
			Positions []struct {
				Page int     `json:"page"`
				MinX float64 `json:"minX"`
				MinY float64 `json:"minY"`
				MaxX float64 `json:"maxX"`
				MaxY float64 `json:"maxY"`
			} `json:"positions"`
			Color struct {
				ID string `json:"id"`
			} `json:"color"`
			Font struct {
				ID       string  `json:"id"`
				FontSize float64 `json:"font-size"`
			} `json:"font"`
		} `json:"paragraph"`
	} `json:"paragraphs"`
}

// convert posts the file to the service and maps the reply onto the
// canonical model.
func (d *Driver) convert(ctx context.Context, data []byte, in driver.Input, level document.Level, opts any) (*document.Document, error) {
	body := request{Unit: "paragraph"}
	if in.URL != "" {
		body.URL = in.URL
	} else {
		body.Data = data
	}
	if o, ok := opts.(*Options); ok && o != nil {
		body.Roles = o.Roles
	} else if o, ok := opts.(Options); ok {
		body.Roles = o.Roles
	}

	res, err := d.post(ctx, body)
	if err != nil {
		return nil, err
	}
	return buildDocument(res, level), nil
}

func (d *Driver) post(ctx context.Context, body request) (*response, error) {
	encoded, err := sonic.Marshal(body)
	if err != nil {
		return nil, driver.NewParsingError(Name, fmt.Sprintf("encoding request: %v", err), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/pdf/parse", bytes.NewReader(encoded))
	if err != nil {
		return nil, driver.NewParsingError(Name, fmt.Sprintf("building request: %v", err), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, driver.NewParsingError(Name, fmt.Sprintf("calling pdfact: %v", err), err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, driver.NewParsingError(Name, fmt.Sprintf("reading response: %v", err), err)
	}

	var res response
	if err := sonic.Unmarshal(payload, &res); err != nil {
		return nil, driver.NewParsingError(Name, fmt.Sprintf("decoding response: %v", err), err)
	}
	return &res, nil
}

// statusError maps pdfact's HTTP status codes onto the failure taxonomy.
func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return driver.NewAuthenticationError(Name, fmt.Sprintf("pdfact rejected credentials (%s)", resp.Status), nil)
	case http.StatusPaymentRequired:
		return driver.NewQuotaExceededError(Name, "pdfact quota exhausted", nil)
	case http.StatusUnprocessableEntity:
		return driver.NewInputValidationError(Name, "pdfact rejected the input as unprocessable", nil)
	case http.StatusTooManyRequests:
		retryAfter := driver.ParseRetryAfter(resp.Header.Get("Retry-After"))
		return driver.NewRateLimitError(Name, "pdfact throttled the request", retryAfter, nil)
	default:
		return driver.NewParsingError(Name, fmt.Sprintf("pdfact returned %s", resp.Status), nil)
	}
}

// buildDocument groups paragraphs by page and materializes blocks when the
// level asks for them. Page text is always derived from the paragraphs.
func buildDocument(res *response, level document.Level) *document.Document {
	fontNames := make(map[string]string, len(res.Fonts))
	fontStyles := make(map[string]string, len(res.Fonts))
	for _, font := range res.Fonts {
		fontNames[font.ID] = font.Name
		switch {
		case font.IsBold && font.IsItalic:
			fontStyles[font.ID] = "bold italic"
		case font.IsBold:
			fontStyles[font.ID] = "bold"
		case font.IsItalic:
			fontStyles[font.ID] = "italic"
		}
	}
	colors := make(map[string]string, len(res.Colors))
	for _, color := range res.Colors {
		colors[color.ID] = fmt.Sprintf("#%02x%02x%02x", color.R, color.G, color.B)
	}

	type pageAccum struct {
		texts  []string
		blocks []document.Block
	}
	pages := make(map[int]*pageAccum)

	for _, wrapper := range res.Paragraphs {
		para := wrapper.Paragraph
		pageNr := 1
		if len(para.Positions) > 0 {
			pageNr = para.Positions[0].Page
		}
		accum := pages[pageNr]
		if accum == nil {
			accum = &pageAccum{}
			pages[pageNr] = accum
		}
		accum.texts = append(accum.texts, para.Text)

		if !level.Covers(document.LevelBlock) {
			continue
		}

		base := document.BlockBase{
			Role:     para.Role,
			Category: para.Role,
			Page:     pageNr,
		}
		if len(para.Positions) > 0 {
			pos := para.Positions[0]
			base.BBox = &document.BoundingBox{X0: pos.MinX, Y0: pos.MinY, X1: pos.MaxX, Y1: pos.MaxY}
		}
		block := document.NewTextBlock(base, para.Text)
		block.Style = &document.Style{
			FontName:  fontNames[para.Font.ID],
			FontSize:  para.Font.FontSize,
			FontStyle: fontStyles[para.Font.ID],
			Color:     colors[para.Color.ID],
		}
		if level.Covers(document.LevelLine) {
			document.EstimateLines(block)
		}
		accum.blocks = append(accum.blocks, block)
	}

	numbers := make([]int, 0, len(pages))
	for nr := range pages {
		numbers = append(numbers, nr)
	}
	sort.Ints(numbers)

	doc := &document.Document{}
	for _, nr := range numbers {
		accum := pages[nr]
		doc.Pages = append(doc.Pages, document.Page{
			Number: nr,
			Text:   strings.Join(accum.texts, "\n"),
			Blocks: accum.blocks,
		})
	}
	return doc
}
