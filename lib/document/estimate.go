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

import "strings"

// DefaultFontSize is assumed when a block carries no style information.
const DefaultFontSize = 11

// EstimateLines populates a text block's lines by splitting its text on
// newlines and distributing the block's bounding box evenly across them.
// Backends that only report block-level geometry use this to satisfy
// line-level extraction requests. Blocks without text or a bounding box,
// or with lines already present, are returned unchanged.
func EstimateLines(block *TextBlock) *TextBlock {
	if block.Text == "" || block.BBox == nil || block.Lines != nil {
		return block
	}

	rawLines := strings.Split(strings.TrimRight(block.Text, "\n"), "\n")
	n := len(rawLines)

	fontSize := float64(DefaultFontSize)
	if block.Style != nil && block.Style.FontSize > 0 {
		fontSize = block.Style.FontSize
	}

	lineHeight := fontSize * 1.1
	if n > 1 {
		lineHeight = (block.BBox.Y1 - block.BBox.Y0) / float64(n)
	}

	block.Lines = make([]Line, 0, n)
	for i, text := range rawLines {
		y0 := block.BBox.Y0 + float64(i)*lineHeight
		block.Lines = append(block.Lines, Line{
			Text:       text,
			BBox:       &BoundingBox{X0: block.BBox.X0, Y0: y0, X1: block.BBox.X1, Y1: y0 + lineHeight},
			Style:      block.Style,
			Page:       block.Page,
			SourceData: SourceData{"source": "split_from_block"},
		})
	}
	return block
}
