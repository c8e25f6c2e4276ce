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

// Package document defines the canonical, driver-agnostic representation of
// a parsed document. Every driver converts its native output into this tree:
// Character -> Span -> Line -> TextBlock -> Page -> Document, with child
// collections materialized only down to the requested extraction Level.
//
// Nodes are value objects: drivers build them once and callers treat them as
// immutable. A nil child slice means "not materialized at this level"; the
// node's own text is always populated from the driver's coarser output.
package document

import (
	"fmt"
	"strings"
)

// BoundingBox is a rectangle in page coordinate space.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Style carries font information for text-bearing nodes. All fields are
// optional; drivers fill in what their backend exposes.
type Style struct {
	FontName  string  `json:"font_name,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
	FontStyle string  `json:"font_style,omitempty"`
	Color     string  `json:"color,omitempty"`
	Alpha     int     `json:"alpha,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
}

// SourceData is an opaque bag for driver-specific extras that do not fit
// the canonical schema.
type SourceData map[string]any

// Character is a single glyph.
type Character struct {
	Text       string       `json:"text"`
	BBox       *BoundingBox `json:"bbox,omitempty"`
	Style      *Style       `json:"style,omitempty"`
	Page       int          `json:"page,omitempty"`
	SourceData SourceData   `json:"source_data,omitempty"`
}

// IsEmpty reports whether the character carries no visible text.
func (c Character) IsEmpty() bool { return strings.TrimSpace(c.Text) == "" }

// Span is a run of characters sharing one style.
type Span struct {
	Text       string       `json:"text"`
	BBox       *BoundingBox `json:"bbox,omitempty"`
	Style      *Style       `json:"style,omitempty"`
	Characters []Character  `json:"characters,omitempty"`
	Page       int          `json:"page,omitempty"`
	SourceData SourceData   `json:"source_data,omitempty"`
}

// IsEmpty reports whether the span carries no visible text.
func (s Span) IsEmpty() bool { return strings.TrimSpace(s.Text) == "" }

// Line is a sequence of spans laid out on one baseline.
type Line struct {
	Text       string       `json:"text"`
	BBox       *BoundingBox `json:"bbox,omitempty"`
	Style      *Style       `json:"style,omitempty"`
	Spans      []Span       `json:"spans,omitempty"`
	Page       int          `json:"page,omitempty"`
	SourceData SourceData   `json:"source_data,omitempty"`
}

// IsEmpty reports whether the line carries no visible text.
func (l Line) IsEmpty() bool { return strings.TrimSpace(l.Text) == "" }

// BlockType discriminates the closed set of block variants.
type BlockType string

const (
	BlockTypeText  BlockType = "text"
	BlockTypeImage BlockType = "image"
	BlockTypeTable BlockType = "table"
)

// BlockBase holds the fields shared by every block variant.
//
// Role is the normalized semantic tag (heading, paragraph, figure,
// page-footer, ...) while Category keeps the driver's native label.
type BlockBase struct {
	Type       BlockType    `json:"type"`
	Role       string       `json:"role,omitempty"`
	BBox       *BoundingBox `json:"bbox,omitempty"`
	Page       int          `json:"page,omitempty"`
	Category   string       `json:"category,omitempty"`
	SourceData SourceData   `json:"source_data,omitempty"`
}

// Block is the closed interface over the block variants. Only TextBlock,
// ImageBlock and TableBlock implement it.
type Block interface {
	// Kind returns the variant discriminator.
	Kind() BlockType
	// Base returns the shared block fields.
	Base() BlockBase
}

// TextBlock is a block of text, optionally split into lines.
type TextBlock struct {
	BlockBase
	Style *Style `json:"style,omitempty"`
	Level int    `json:"level,omitempty"`
	Lines []Line `json:"lines,omitempty"`
	Text  string `json:"text"`
}

// Kind implements Block.
func (b *TextBlock) Kind() BlockType { return BlockTypeText }

// Base implements Block.
func (b *TextBlock) Base() BlockBase { return b.BlockBase }

// IsEmpty reports whether the block carries no visible text.
func (b *TextBlock) IsEmpty() bool { return strings.TrimSpace(b.Text) == "" }

// ImageBlock is a block holding a raster or vector image.
type ImageBlock struct {
	BlockBase
	Name    string `json:"name,omitempty"`
	AltText string `json:"alt_text,omitempty"`
}

// Kind implements Block.
func (b *ImageBlock) Kind() BlockType { return BlockTypeImage }

// Base implements Block.
func (b *ImageBlock) Base() BlockBase { return b.BlockBase }

// TableBlock is a table with pre-rendered text (typically Markdown table
// syntax produced by the driver).
type TableBlock struct {
	BlockBase
	Text string `json:"text"`
}

// Kind implements Block.
func (b *TableBlock) Kind() BlockType { return BlockTypeTable }

// Base implements Block.
func (b *TableBlock) Base() BlockBase { return b.BlockBase }

// IsEmpty reports whether the table carries no visible text.
func (b *TableBlock) IsEmpty() bool { return strings.TrimSpace(b.Text) == "" }

// NewTextBlock builds a TextBlock, forcing the type discriminator. Passing a
// base with a conflicting non-empty type is a programming error and panics
// at construction rather than surfacing later during rendering.
func NewTextBlock(base BlockBase, text string) *TextBlock {
	if base.Type != "" && base.Type != BlockTypeText {
		panic(fmt.Sprintf("document: text block constructed with type %q", base.Type))
	}
	base.Type = BlockTypeText
	return &TextBlock{BlockBase: base, Text: text}
}

// NewImageBlock builds an ImageBlock, forcing the type discriminator.
func NewImageBlock(base BlockBase, name, altText string) *ImageBlock {
	if base.Type != "" && base.Type != BlockTypeImage {
		panic(fmt.Sprintf("document: image block constructed with type %q", base.Type))
	}
	base.Type = BlockTypeImage
	return &ImageBlock{BlockBase: base, Name: name, AltText: altText}
}

// NewTableBlock builds a TableBlock, forcing the type discriminator.
func NewTableBlock(base BlockBase, text string) *TableBlock {
	if base.Type != "" && base.Type != BlockTypeTable {
		panic(fmt.Sprintf("document: table block constructed with type %q", base.Type))
	}
	base.Type = BlockTypeTable
	return &TableBlock{BlockBase: base, Text: text}
}

// Page is one page of the document. Blocks is nil when the requested level
// did not cover block extraction; Text is populated either way.
type Page struct {
	Number     int          `json:"number"`
	Width      float64      `json:"width,omitempty"`
	Height     float64      `json:"height,omitempty"`
	Blocks     []Block      `json:"blocks,omitempty"`
	Text       string       `json:"text"`
	SourceData SourceData   `json:"source_data,omitempty"`
}

// IsEmpty reports whether the page's own text is blank, independent of
// whether blocks are materialized.
func (p Page) IsEmpty() bool { return strings.TrimSpace(p.Text) == "" }

// Metadata holds optional document-level metadata. Absence of any field is
// a valid terminal state, not an error.
type Metadata struct {
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Keywords  string `json:"keywords,omitempty"`
	Creator   string `json:"creator,omitempty"`
	Producer  string `json:"producer,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Document is the root of the canonical tree.
type Document struct {
	Filename        string         `json:"filename,omitempty"`
	Language        string         `json:"language,omitempty"`
	Metadata        *Metadata      `json:"metadata,omitempty"`
	Pages           []Page         `json:"pages"`
	Outline         []string       `json:"outline,omitempty"`
	SourceData      SourceData     `json:"source_data,omitempty"`
	ParsingMetadata map[string]any `json:"parsing_metadata,omitempty"`
}

// IsEmpty reports whether every page's text is blank.
func (d *Document) IsEmpty() bool {
	for _, page := range d.Pages {
		if !page.IsEmpty() {
			return false
		}
	}
	return true
}

// DefaultPageSeparator separates pages in Text output.
const DefaultPageSeparator = "---"

// Text returns the full text content of the document, skipping blank pages.
// The separator is placed on its own line between pages; pass an empty
// string to join pages with a single newline.
func (d *Document) Text(pageSeparator string) string {
	if len(d.Pages) == 0 {
		return ""
	}

	texts := make([]string, 0, len(d.Pages))
	for _, page := range d.Pages {
		if page.Text == "" {
			continue
		}
		texts = append(texts, strings.TrimSpace(page.Text))
	}
	if len(texts) == 0 {
		return ""
	}

	if pageSeparator != "" {
		return strings.Join(texts, "\n"+pageSeparator+"\n")
	}
	return strings.Join(texts, "\n")
}

// SetParsingMetadata records a key in the parsing metadata bag, allocating
// it on first use.
func (d *Document) SetParsingMetadata(key string, value any) {
	if d.ParsingMetadata == nil {
		d.ParsingMetadata = make(map[string]any)
	}
	d.ParsingMetadata[key] = value
}
