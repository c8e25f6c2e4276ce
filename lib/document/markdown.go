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

package document

import (
	"fmt"
	"strings"
)

// headingTags are the category/role values rendered as Markdown headings.
var headingTags = map[string]struct{}{
	"heading": {},
	"title":   {},
	"header":  {},
}

// blockTag returns the semantic tag used for Markdown rendering: the
// backend's native category when set, otherwise the normalized role.
func blockTag(base BlockBase) string {
	if base.Category != "" {
		return strings.ToLower(base.Category)
	}
	return strings.ToLower(base.Role)
}

func isHeading(base BlockBase) bool {
	_, ok := headingTags[blockTag(base)]
	return ok
}

func isList(base BlockBase) bool {
	return blockTag(base) == "list"
}

// Markdown renders the document as Markdown, preserving structure where the
// block annotations allow it: heading blocks become "#" headings sized by
// the block level (defaulting to h2, capped at h6), list blocks become
// bullet points, tables keep their pre-rendered text, and images become
// fenced blocks tagged with the image extension. Pages without materialized
// blocks fall back to their own text.
func (d *Document) Markdown() string {
	if len(d.Pages) == 0 {
		return ""
	}

	var parts []string
	for _, page := range d.Pages {
		if len(page.Blocks) == 0 {
			if text := strings.TrimSpace(page.Text); text != "" {
				parts = append(parts, text)
			}
			continue
		}

		var pageParts []string
		for _, block := range page.Blocks {
			switch b := block.(type) {
			case *TextBlock:
				pageParts = appendTextBlock(pageParts, b, 0)
			case *ImageBlock:
				pageParts = append(pageParts, renderImageFence(b))
			case *TableBlock:
				if text := strings.TrimSpace(b.Text); text != "" {
					pageParts = append(pageParts, text)
				}
			}
		}
		if len(pageParts) > 0 {
			parts = append(parts, strings.Join(pageParts, "\n\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

// appendTextBlock renders one text block into parts. headingShift bumps
// heading levels (used by ContentMD so the document title keeps the sole h1).
func appendTextBlock(parts []string, b *TextBlock, headingShift int) []string {
	switch {
	case isHeading(b.BlockBase):
		level := b.Level
		if level == 0 {
			if headingShift > 0 {
				level = 1
			} else {
				level = 2
			}
		}
		level += headingShift
		if level > 6 {
			level = 6
		}
		return append(parts, strings.Repeat("#", level)+" "+strings.TrimSpace(b.Text))
	case isList(b.BlockBase):
		for _, line := range strings.Split(b.Text, "\n") {
			if item := strings.TrimSpace(line); item != "" {
				parts = append(parts, "- "+item)
			}
		}
		return parts
	default:
		if text := strings.TrimSpace(b.Text); text != "" {
			return append(parts, text)
		}
		return parts
	}
}

func renderImageFence(b *ImageBlock) string {
	lang := "image"
	if idx := strings.LastIndex(b.Name, "."); idx >= 0 && idx < len(b.Name)-1 {
		lang = "image:" + b.Name[idx+1:]
	}
	return fmt.Sprintf("```%s\n%s\n```", lang, b.AltText)
}

// ContentMDOptions overrides the frontmatter fields emitted by ContentMD.
// Unset fields fall back to document metadata where available.
type ContentMDOptions struct {
	Title       string
	Description string
	Date        string
	License     string
	Author      string
}

// ContentMD renders the document in content-md form: a YAML frontmatter
// header followed by Markdown where every heading is shifted down one level
// so the resolved title occupies the sole h1, and images are emitted as
// <figure> elements instead of fenced blocks.
func (d *Document) ContentMD(opts ContentMDOptions) string {
	title := opts.Title
	if title == "" && d.Metadata != nil {
		title = d.Metadata.Title
	}
	if title == "" {
		title = d.guessTitleFromFirstPage()
	}
	if title == "" {
		title = d.Filename
	}
	if title == "" {
		title = "Untitled"
	}

	date := opts.Date
	if date == "" && d.Metadata != nil {
		date = d.Metadata.CreatedAt
		if date == "" {
			date = d.Metadata.UpdatedAt
		}
	}
	author := opts.Author
	if author == "" && d.Metadata != nil {
		author = d.Metadata.Author
	}

	fm := []string{"---", "title: " + yamlString(title)}
	if opts.Description != "" {
		fm = append(fm, "description: "+yamlString(opts.Description))
	}
	if date != "" {
		fm = append(fm, "date: "+yamlString(date))
	}
	if opts.License != "" {
		fm = append(fm, "license: "+yamlString(opts.License))
	}
	if author != "" {
		fm = append(fm, "author: "+yamlString(author))
	}
	fm = append(fm, "---")
	frontmatter := strings.Join(fm, "\n")

	if len(d.Pages) == 0 {
		return frontmatter + "\n\n# " + title + "\n"
	}

	parts := []string{"# " + title}
	for _, page := range d.Pages {
		if len(page.Blocks) == 0 {
			if text := strings.TrimSpace(page.Text); text != "" {
				parts = append(parts, text)
			}
			continue
		}
		for _, block := range page.Blocks {
			switch b := block.(type) {
			case *TextBlock:
				parts = appendTextBlock(parts, b, 1)
			case *ImageBlock:
				parts = append(parts, fmt.Sprintf("<figure>\n%s\n</figure>", b.AltText))
			case *TableBlock:
				if text := strings.TrimSpace(b.Text); text != "" {
					parts = append(parts, text)
				}
			}
		}
	}
	return frontmatter + "\n\n" + strings.Join(parts, "\n\n") + "\n"
}

// guessTitleFromFirstPage picks the highest-ranking heading block on the
// first page, when blocks are materialized.
func (d *Document) guessTitleFromFirstPage() string {
	if len(d.Pages) == 0 {
		return ""
	}
	var best *TextBlock
	for _, block := range d.Pages[0].Blocks {
		b, ok := block.(*TextBlock)
		if !ok || !isHeading(b.BlockBase) || strings.TrimSpace(b.Text) == "" {
			continue
		}
		if best == nil || headingRank(b) < headingRank(best) {
			best = b
		}
	}
	if best == nil {
		return ""
	}
	return strings.TrimSpace(best.Text)
}

func headingRank(b *TextBlock) int {
	if b.Level == 0 {
		return 1
	}
	return b.Level
}

func yamlString(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
