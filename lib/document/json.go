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
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// pageAlias mirrors Page with raw block payloads so that the closed Block
// interface can be decoded by switching on the "type" discriminator.
type pageAlias struct {
	Number     int               `json:"number"`
	Width      float64           `json:"width,omitempty"`
	Height     float64           `json:"height,omitempty"`
	Blocks     []json.RawMessage `json:"blocks,omitempty"`
	Text       string            `json:"text"`
	SourceData SourceData        `json:"source_data,omitempty"`
}

// UnmarshalJSON decodes a page, dispatching each block payload to its
// concrete variant based on the "type" field.
func (p *Page) UnmarshalJSON(data []byte) error {
	var alias pageAlias
	if err := sonic.Unmarshal(data, &alias); err != nil {
		return err
	}

	p.Number = alias.Number
	p.Width = alias.Width
	p.Height = alias.Height
	p.Text = alias.Text
	p.SourceData = alias.SourceData
	p.Blocks = nil

	for i, raw := range alias.Blocks {
		block, err := unmarshalBlock(raw)
		if err != nil {
			return fmt.Errorf("page %d: block %d: %w", alias.Number, i, err)
		}
		p.Blocks = append(p.Blocks, block)
	}
	return nil
}

func unmarshalBlock(data []byte) (Block, error) {
	var head struct {
		Type BlockType `json:"type"`
	}
	if err := sonic.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case BlockTypeText:
		var b TextBlock
		if err := sonic.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return &b, nil
	case BlockTypeImage:
		var b ImageBlock
		if err := sonic.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return &b, nil
	case BlockTypeTable:
		var b TableBlock
		if err := sonic.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return &b, nil
	default:
		return nil, fmt.Errorf("unknown block type %q", head.Type)
	}
}
