// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parsers

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// AnthropicParser parses Anthropic /v1/models pages.
type AnthropicParser struct{}

// NewAnthropicParser creates a new Anthropic parser.
func NewAnthropicParser() *AnthropicParser {
	return &AnthropicParser{}
}

// ParsePage decodes {"data":[{"id","display_name","created_at"}],"has_more","last_id"}.
func (p *AnthropicParser) ParsePage(content []byte) (Page, error) {
	if !gjson.ValidBytes(content) {
		return Page{}, ErrInvalidJSON
	}
	data := gjson.GetBytes(content, "data")
	if !data.IsArray() {
		return Page{}, fmt.Errorf("unexpected response shape: missing data array")
	}

	var page Page
	data.ForEach(func(_, m gjson.Result) bool {
		id := m.Get("id").String()
		if id == "" {
			return true
		}
		page.Items = append(page.Items, Item{
			ID:          id,
			DisplayName: m.Get("display_name").String(),
			Created:     rfc3339Time(m.Get("created_at")),
			OwnedBy:     "anthropic",
		})
		return true
	})

	if gjson.GetBytes(content, "has_more").Bool() {
		page.NextCursor = gjson.GetBytes(content, "last_id").String()
	}
	return page, nil
}
