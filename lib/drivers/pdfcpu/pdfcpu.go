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

// Package pdfcpu adapts the pdfcpu PDF library as a local parsing backend.
// It works byte-accurately on the PDF content streams, so it can serve the
// full extraction range down to single characters without any network
// dependency. It is the default backend.
package pdfcpu

import (
	"bytes"
	"context"
	"fmt"
	"io"

	parxy "github.com/OneOffTech/parxy-sub000"
	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/OneOffTech/parxy-sub000/lib/trace"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdflib "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// Name is the registry name of the backend.
const Name = "pdfcpu"

func init() {
	parxy.RegisterBuiltin(Name, func(cfg parxy.Config, logger *zap.Logger, tracer trace.Tracer) (driver.Driver, error) {
		return New(logger, tracer), nil
	})
}

// SupportedLevels spans the full hierarchy except word splitting, which the
// content streams do not delimit reliably.
var SupportedLevels = []document.Level{
	document.LevelPage,
	document.LevelParagraph,
	document.LevelBlock,
	document.LevelLine,
	document.LevelSpan,
	document.LevelCharacter,
}

// New builds the pdfcpu driver.
func New(logger *zap.Logger, tracer trace.Tracer) driver.Driver {
	return driver.NewBase(Name, SupportedLevels, parse,
		driver.WithLogger(logger),
		driver.WithTracer(tracer),
	)
}

func parse(_ context.Context, data []byte, _ driver.Input, level document.Level, _ any) (*document.Document, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, driver.NewParsingError(Name, fmt.Sprintf("reading pdf: %v", err), err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		// Geometry is optional; pages without dimensions are still parsed.
		dims = nil
	}

	doc := &document.Document{}
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		page := document.Page{Number: pageNr}
		if pageNr-1 < len(dims) {
			page.Width = dims[pageNr-1].Width
			page.Height = dims[pageNr-1].Height
		}

		blocks := extractPageBlocks(ctx, pageNr)
		page.Text = joinBlocks(blocks)

		if level.Covers(document.LevelBlock) {
			for _, lines := range blocks {
				page.Blocks = append(page.Blocks, buildTextBlock(pageNr, lines, level))
			}
			if hasImages(ctx, pageNr) {
				base := document.BlockBase{Role: "figure", Page: pageNr}
				page.Blocks = append(page.Blocks, document.NewImageBlock(base, "", ""))
			}
		}

		doc.Pages = append(doc.Pages, page)
	}

	if len(doc.Pages) == 0 {
		return nil, driver.NewParsingError(Name, "pdf has no pages", nil)
	}
	return doc, nil
}

// buildTextBlock assembles one block from its lines, materializing child
// collections down to the requested level. Parent text is always derived
// from the children so bubble-up holds by construction.
func buildTextBlock(pageNr int, lineTexts []string, level document.Level) *document.TextBlock {
	block := document.NewTextBlock(document.BlockBase{Role: "paragraph", Page: pageNr}, joinLines(lineTexts))

	if !level.Covers(document.LevelLine) {
		return block
	}

	for _, text := range lineTexts {
		line := document.Line{Text: text, Page: pageNr}
		if level.Covers(document.LevelSpan) {
			// Content streams carry no style runs once flattened, so a
			// line maps to a single span.
			span := document.Span{Text: text, Page: pageNr}
			if level.Covers(document.LevelCharacter) {
				for _, r := range text {
					span.Characters = append(span.Characters, document.Character{
						Text: string(r),
						Page: pageNr,
					})
				}
			}
			line.Spans = []document.Span{span}
		}
		block.Lines = append(block.Lines, line)
	}
	return block
}

// extractPageBlocks pulls the page's content stream and decodes it into
// text blocks, each a list of lines.
func extractPageBlocks(ctx *model.Context, pageNr int) [][]string {
	r, err := pdflib.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil
	}
	return blocksFromStream(data)
}

// hasImages reports whether the page references image XObjects.
func hasImages(ctx *model.Context, pageNr int) bool {
	if ctx.Optimize == nil {
		return false
	}
	return len(pdflib.ImageObjNrs(ctx, pageNr)) > 0
}

func joinLines(lines []string) string {
	var sb bytes.Buffer
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func joinBlocks(blocks [][]string) string {
	var sb bytes.Buffer
	for i, lines := range blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(joinLines(lines))
	}
	return sb.String()
}
